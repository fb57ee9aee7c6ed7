package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/ports"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding of the lint.
type Issue struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// Report is the ordered result of Validate.
type Report []Issue

// Errors returns only the error-level issues.
func (r Report) Errors() Report {
	var out Report
	for _, i := range r {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Err folds the error-level issues into a single error, or nil when there are none.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, issue := range errs {
		lines[i] = issue.Path + ": " + issue.Message
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// Validate lints a storyline against a world. A nil world skips the target checks.
func Validate(sl *domain.Storyline, world ports.World) Report {
	v := &linter{sl: sl, world: world, written: writtenKeys(sl)}
	for _, id := range sl.MissionIDs() {
		v.mission(sl.Missions[id])
	}

	// Parse diagnostics not already covered by a structural error.
	seen := make(map[string]bool, len(v.report))
	for _, i := range v.report {
		seen[i.Path] = true
	}
	for _, d := range sl.Diagnostics {
		if !seen[d.Path] {
			v.add(SeverityWarning, d.Path, "%s", d.Message)
		}
	}

	sort.SliceStable(v.report, func(i, j int) bool {
		if v.report[i].Severity != v.report[j].Severity {
			return v.report[i].Severity == SeverityError
		}
		return v.report[i].Path < v.report[j].Path
	})
	return v.report
}

type linter struct {
	sl      *domain.Storyline
	world   ports.World
	written map[string]bool
	report  Report
}

func (v *linter) add(sev Severity, path, format string, args ...any) {
	v.report = append(v.report, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *linter) mission(m *domain.Mission) {
	path := "missions." + m.ID
	if _, ok := m.Step(m.FirstStep); !ok {
		v.add(SeverityError, path+".firstStep", "first step %q is not defined", m.FirstStep)
	}

	for i, dep := range m.Depend {
		v.dependency(fmt.Sprintf("%s.depend[%d]", path, i), dep)
	}

	for _, id := range m.StepIDs() {
		step := m.Steps[id]
		stepPath := path + ".steps." + id
		if step.NextStep != "" {
			if _, ok := m.Step(step.NextStep); !ok {
				v.add(SeverityError, stepPath+".nextStep", "next step %q is not defined", step.NextStep)
			}
		}
		for i, item := range step.Dialog.Items {
			if next := item.Base().NextStep; next != "" {
				if _, ok := m.Step(next); !ok {
					v.add(SeverityError, fmt.Sprintf("%s.dialog[%d].nextStep", stepPath, i), "next step %q is not defined", next)
				}
			}
		}
		v.targets(stepPath, step)
	}

	reachable := reachableSteps(m)
	for _, id := range m.StepIDs() {
		if !reachable[id] {
			v.add(SeverityWarning, path+".steps."+id, "step is unreachable from %q", m.FirstStep)
		}
	}
}

func (v *linter) targets(path string, step *domain.MissionStep) {
	if v.world == nil {
		return
	}
	if step.NPCID != "" {
		if _, ok := v.world.Character(step.NPCID); !ok {
			v.add(SeverityError, path+".npcId", "unknown npc %q", step.NPCID)
		}
	}
	if step.LocationID != "" && step.NPCID == "" {
		if _, ok := v.world.Location(step.LocationID); !ok {
			v.add(SeverityError, path+".locationId", "unknown location %q", step.LocationID)
		}
	}
	if step.MoveTo != "" {
		if _, ok := v.world.Location(step.MoveTo); !ok {
			v.add(SeverityError, path+".moveTo", "unknown location %q", step.MoveTo)
		}
	}
}

func (v *linter) dependency(path string, dep domain.Dependency) {
	if ref, ok := doneKeyRef(dep.StoreKey); ok {
		if _, found := v.sl.Step(ref); !found {
			v.add(SeverityWarning, path, "depends on unknown step %q", ref.DialogID())
		}
		return
	}
	if !v.written[dep.StoreKey] {
		v.add(SeverityWarning, path, "no dialog item ever writes %q", dep.StoreKey)
	}
}

// doneKeyRef recognizes "<mission>/<step>/done" keys.
func doneKeyRef(key string) (domain.StepRef, bool) {
	id, ok := strings.CutSuffix(key, "/done")
	if !ok {
		return domain.StepRef{}, false
	}
	return domain.ParseDialogID(id)
}

func writtenKeys(sl *domain.Storyline) map[string]bool {
	keys := map[string]bool{domain.PlayerNameKey: true}
	for _, m := range sl.Missions {
		for _, step := range m.Steps {
			for _, item := range step.Dialog.Items {
				switch it := item.(type) {
				case *domain.Select:
					if it.StoreKey != "" {
						keys[it.StoreKey] = true
					}
				case *domain.Prompt:
					if it.StoreKey != "" {
						keys[it.StoreKey] = true
					}
				}
			}
		}
	}
	return keys
}

// reachableSteps follows nextStep links, default and per item, from the first step.
func reachableSteps(m *domain.Mission) map[string]bool {
	seen := make(map[string]bool)
	queue := []string{m.FirstStep}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		step, ok := m.Step(id)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if step.NextStep != "" {
			queue = append(queue, step.NextStep)
		}
		for _, item := range step.Dialog.Items {
			if next := item.Base().NextStep; next != "" {
				queue = append(queue, next)
			}
		}
	}
	return seen
}
