package domain

// Dialog is the ordered, branchable script of a mission step.
// Step is a back reference by id into the storyline arena, not ownership.
type Dialog struct {
	Step  StepRef
	Items []DialogItem

	index map[string]int
}

// NewDialog creates an empty dialog owned by the given step.
func NewDialog(step StepRef) *Dialog {
	return &Dialog{
		Step:  step,
		index: make(map[string]int),
	}
}

// Add appends an item and indexes its id (if any) as a jump target.
// A repeated id points at the latest item.
func (d *Dialog) Add(item DialogItem) {
	d.Items = append(d.Items, item)
	if id := item.Base().ID; id != "" {
		if d.index == nil {
			d.index = make(map[string]int)
		}
		d.index[id] = len(d.Items) - 1
	}
}

// IndexOf resolves a jump target id.
func (d *Dialog) IndexOf(id string) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// At returns the item at index i, or nil when i is outside the dialog.
func (d *Dialog) At(i int) DialogItem {
	if i < 0 || i >= len(d.Items) {
		return nil
	}
	return d.Items[i]
}

// Len returns the number of items.
func (d *Dialog) Len() int {
	return len(d.Items)
}
