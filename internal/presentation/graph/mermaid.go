package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/questline/pkg/domain"
)

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	// Answers marks every step whose done key is present as completed.
	Answers domain.AnswerView
	// Active is the dialog id ("<mission>/<step>") currently running.
	Active string
}

// GenerateMermaid produces a Mermaid flowchart of the storyline.
// Each mission is a subgraph. Step shapes follow the trigger:
// - First step: ((Circle))
// - NPC: [Rectangle]
// - Location: [/Parallelogram/]
// - Queue: {{Hexagon}}
// Default successors are solid edges, item overrides dotted, and mission dependencies on
// done keys are drawn from the step to the dependent mission's first step.
func GenerateMermaid(sl *domain.Storyline, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var deps []string
	for _, missionID := range sl.MissionIDs() {
		m := sl.Missions[missionID]
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID(m.ID), escape(m.Title))

		for _, stepID := range m.StepIDs() {
			step := m.Steps[stepID]
			safeID := nodeID(step.Ref())

			opener, closer := "[", "]"
			switch {
			case stepID == m.FirstStep:
				opener, closer = "((", "))"
			case step.TriggerMode() == domain.TriggerLocation:
				opener, closer = "[/", "/]"
			case step.TriggerMode() == domain.TriggerQueue:
				opener, closer = "{{", "}}"
			}

			label := step.ID
			if target := stepTarget(step); target != "" {
				label = fmt.Sprintf("%s <br/> %s: %s", step.ID, step.TriggerMode(), target)
			}
			fmt.Fprintf(&sb, "        %s%s\"%s\"%s\n", safeID, opener, escape(label), closer)

			if step.NextStep != "" {
				fmt.Fprintf(&sb, "        %s --> %s\n", safeID, nodeID(domain.StepRef{MissionID: m.ID, StepID: step.NextStep}))
			}
			overrides := make(map[string]bool)
			for _, item := range step.Dialog.Items {
				next := item.Base().NextStep
				if next == "" || next == step.NextStep || overrides[next] {
					continue
				}
				overrides[next] = true
				fmt.Fprintf(&sb, "        %s -.-> %s\n", safeID, nodeID(domain.StepRef{MissionID: m.ID, StepID: next}))
			}
		}
		sb.WriteString("    end\n")

		first := nodeID(domain.StepRef{MissionID: m.ID, StepID: m.FirstStep})
		for _, dep := range m.Depend {
			if ref, ok := doneKeyRef(dep.StoreKey); ok {
				deps = append(deps, fmt.Sprintf("    %s ==> %s\n", nodeID(ref), first))
				continue
			}
			keyID := "key_" + sanitizeMermaidID(dep.StoreKey)
			deps = append(deps, fmt.Sprintf("    %s>\"%s\"] ==> %s\n", keyID, escape(dep.String()), first))
		}
	}
	for _, d := range deps {
		sb.WriteString(d)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef done fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		if overlay.Answers != nil {
			for _, missionID := range sl.MissionIDs() {
				m := sl.Missions[missionID]
				for _, stepID := range m.StepIDs() {
					ref := m.Steps[stepID].Ref()
					if _, ok := overlay.Answers.Get(ref.DoneKey()); ok {
						fmt.Fprintf(&sb, "    class %s done;\n", nodeID(ref))
					}
				}
			}
		}
		if ref, ok := domain.ParseDialogID(overlay.Active); ok {
			fmt.Fprintf(&sb, "    class %s active;\n", nodeID(ref))
		}
	}

	return sb.String()
}

func stepTarget(step *domain.MissionStep) string {
	switch step.TriggerMode() {
	case domain.TriggerNPC:
		return step.NPCID
	case domain.TriggerLocation:
		return step.LocationID
	}
	return ""
}

func doneKeyRef(key string) (domain.StepRef, bool) {
	id, ok := strings.CutSuffix(key, "/done")
	if !ok {
		return domain.StepRef{}, false
	}
	return domain.ParseDialogID(id)
}

func nodeID(ref domain.StepRef) string {
	return sanitizeMermaidID(ref.MissionID + "__" + ref.StepID)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
