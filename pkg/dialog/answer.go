package dialog

import "strconv"

// Answer is the player's response to the current item.
// The zero value means "no answer", which is what lines, messages and iframes take.
type Answer struct {
	set    bool
	choice int
	text   string
}

// NoAnswer acknowledges an item without responding.
func NoAnswer() Answer { return Answer{} }

// Choose picks the choice at index i of a Select item.
func Choose(i int) Answer { return Answer{set: true, choice: i, text: strconv.Itoa(i)} }

// Reply submits free text to a Prompt item.
func Reply(text string) Answer { return Answer{set: true, choice: -1, text: text} }

// IsSet reports whether an answer was given.
func (a Answer) IsSet() bool { return a.set }

// Choice returns the selected index, if the answer was made with Choose.
func (a Answer) Choice() (int, bool) {
	if !a.set || a.choice < 0 {
		return 0, false
	}
	return a.choice, true
}

// Text returns the submitted text.
func (a Answer) Text() string { return a.text }
