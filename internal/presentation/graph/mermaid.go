package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/patchbay/pkg/analysis"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/protocol"
)

// GenerateMermaid produces a Mermaid flowchart of a patch, signal flowing
// left to right into the engine.
// Shapes:
// - Engine: ((Circle))
// - Object without inputs: [/Parallelogram/]
// - Default: [Rectangle]
// Edges are labelled with the input slot they feed. When a report is given,
// feedback loops and idle objects are styled.
func GenerateMermaid(patch []*protocol.Object, report *analysis.Report) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	objects := append([]*protocol.Object(nil), patch...)
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })

	for _, o := range objects {
		safeID := sanitizeMermaidID(o.Name)

		opener, closer := "[", "]"
		switch {
		case o.Kind == domain.EngineKind:
			opener, closer = "((", "))"
		case len(o.Input) == 0:
			opener, closer = "[/", "/]"
		}

		text := o.Name
		if o.Display.Label != "" {
			text = fmt.Sprintf("%s <br/> %s", o.Name, escape(o.Display.Label))
		} else if o.Kind == "value" {
			text = fmt.Sprintf("%s <br/> %g", o.Name, o.Value)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, text, closer)
	}

	for _, o := range objects {
		slots := make([]string, 0, len(o.Input))
		for slot := range o.Input {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", sanitizeMermaidID(o.Input[slot]), escape(slot), sanitizeMermaidID(o.Name))
		}
	}

	if report != nil && (len(report.Cycles) > 0 || len(report.Idle) > 0) {
		sb.WriteString("\n    %% Analysis Styles\n")
		sb.WriteString("    classDef feedback fill:#ffe0e0,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef idle fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4 2,color:#000;\n")

		seen := make(map[string]bool)
		for _, cycle := range report.Cycles {
			for _, name := range cycle {
				if !seen[name] {
					seen[name] = true
					fmt.Fprintf(&sb, "    class %s feedback;\n", sanitizeMermaidID(name))
				}
			}
		}
		for _, name := range report.Idle {
			if !seen[name] {
				fmt.Fprintf(&sb, "    class %s idle;\n", sanitizeMermaidID(name))
			}
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "#", "_")
	return s
}
