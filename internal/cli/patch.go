package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/patchbay/internal/presentation/graph"
	"github.com/aretw0/patchbay/internal/presentation/tui"
	"github.com/aretw0/patchbay/pkg/analysis"
	"github.com/aretw0/patchbay/pkg/catalog"
	"github.com/aretw0/patchbay/pkg/library"
	"github.com/aretw0/patchbay/pkg/protocol"
)

// ListPatches prints the saved patch names.
func ListPatches(ctx context.Context, lib *library.Manager, out io.Writer) error {
	names, err := lib.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing patches: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(out, "No saved patches found.")
		return nil
	}
	fmt.Fprintln(out, "Saved Patches:")
	for _, name := range names {
		fmt.Fprintln(out, "- "+name)
	}
	return nil
}

// ShowPatch renders a saved patch with its signal-flow analysis.
func ShowPatch(ctx context.Context, lib *library.Manager, name string, out io.Writer, render tui.Renderer) error {
	patch, err := lib.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("error loading patch '%s': %w", name, err)
	}
	text, err := render(PatchMarkdown(name, patch))
	if err != nil {
		return fmt.Errorf("error rendering patch: %w", err)
	}
	fmt.Fprint(out, text)
	return nil
}

// GraphPatch prints a saved patch as a Mermaid flowchart.
func GraphPatch(ctx context.Context, lib *library.Manager, name string, out io.Writer) error {
	patch, err := lib.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("error loading patch '%s': %w", name, err)
	}
	report := analysis.Analyze(patch)
	fmt.Fprint(out, graph.GenerateMermaid(patch, &report))
	return nil
}

// RemovePatches deletes each named patch, reporting every failure.
func RemovePatches(ctx context.Context, lib *library.Manager, names []string, out io.Writer) error {
	failed := 0
	for _, name := range names {
		if err := lib.Delete(ctx, name); err != nil {
			fmt.Fprintf(out, "Error removing '%s': %v\n", name, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "Removed patch '%s'\n", name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d patches could not be removed", failed, len(names))
	}
	return nil
}

// PatchMarkdown describes a patch as markdown: its objects, its wiring and
// the order in which the engine evaluates it.
func PatchMarkdown(name string, patch []*protocol.Object) string {
	report := analysis.Analyze(patch)
	objects := append([]*protocol.Object(nil), patch...)
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)

	sb.WriteString("## Objects\n\n")
	sb.WriteString("| name | kind | value | label | position |\n|---|---|---|---|---|\n")
	for _, o := range objects {
		value := ""
		if o.Kind == "value" {
			value = fmt.Sprintf("%g", o.Value)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %d,%d |\n", o.Name, o.Kind, value, o.Display.Label, o.Display.Top, o.Display.Left)
	}

	sb.WriteString("\n## Connections\n\n")
	wired := false
	for _, o := range objects {
		slots := make([]string, 0, len(o.Input))
		for slot := range o.Input {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			fmt.Fprintf(&sb, "- `%s` → `%s.%s`\n", o.Input[slot], o.Name, slot)
			wired = true
		}
	}
	if !wired {
		sb.WriteString("_none_\n")
	}

	sb.WriteString("\n## Signal flow\n\n")
	if report.Acyclic() {
		fmt.Fprintf(&sb, "Evaluation order: %s\n", strings.Join(report.Order, " → "))
	} else {
		sb.WriteString("Feedback loops:\n\n")
		for _, cycle := range report.Cycles {
			fmt.Fprintf(&sb, "- %s\n", strings.Join(cycle, ", "))
		}
	}
	if len(report.Idle) > 0 {
		fmt.Fprintf(&sb, "\nNot heard by the engine: %s\n", strings.Join(report.Idle, ", "))
	}
	for _, c := range report.Dangling {
		fmt.Fprintf(&sb, "\nMissing source `%s` for `%s.%s`\n", c.From, c.To, c.Input)
	}
	return sb.String()
}

// PrintKinds lists the kinds of cat with their input slots.
func PrintKinds(cat *catalog.Catalog, out io.Writer) {
	inputs := cat.KindInputs()
	for _, name := range cat.Names() {
		if len(inputs[name]) == 0 {
			fmt.Fprintf(out, "%-10s (source)\n", name)
			continue
		}
		fmt.Fprintf(out, "%-10s %s\n", name, strings.Join(inputs[name], ", "))
	}
}
