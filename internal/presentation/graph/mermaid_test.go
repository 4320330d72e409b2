package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/patchbay/internal/presentation/graph"
	"github.com/aretw0/patchbay/pkg/analysis"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/protocol"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		patch    []*protocol.Object
		contains []string
		excludes []string
	}{
		{
			name: "Engine Shape",
			patch: []*protocol.Object{
				{Name: domain.EngineName, Kind: domain.EngineKind, Input: map[string]string{"root": "sin1"}},
			},
			contains: []string{
				`engine(("engine"))`,
			},
		},
		{
			name: "Source Shape",
			patch: []*protocol.Object{
				{Name: "noise1", Kind: "noise"},
				{Name: "value1", Kind: "value", Value: 0.25},
			},
			contains: []string{
				`noise1[/"noise1"/]`,
				`value1[/"value1 <br/> 0.25"/]`,
			},
		},
		{
			name: "Labels And Sanitization",
			patch: []*protocol.Object{
				{Name: "note.a-1", Kind: "value", Display: protocol.Display{Label: `c#5`}},
			},
			contains: []string{
				`note_a_1[/"note.a-1 <br/> c#5"/]`,
			},
		},
		{
			name: "Edges Carry Slots",
			patch: []*protocol.Object{
				{Name: "mul1", Kind: "mul", Input: map[string]string{"b": "value2", "a": "sin1"}},
			},
			contains: []string{
				`mul1["mul1"]`,
				`sin1 -- "a" --> mul1`,
				`value2 -- "b" --> mul1`,
			},
			excludes: []string{"classDef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.patch, nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
		})
	}
}

func TestGenerateMermaid_Report(t *testing.T) {
	patch := []*protocol.Object{
		{Name: domain.EngineName, Kind: domain.EngineKind, Input: map[string]string{"root": "sum1"}},
		{Name: "sum1", Kind: "sum", Input: map[string]string{"a": "delay1"}},
		{Name: "delay1", Kind: "delay", Input: map[string]string{"in": "sum1"}},
		{Name: "noise1", Kind: "noise"},
	}
	report := analysis.Analyze(patch)

	got := graph.GenerateMermaid(patch, &report)
	for _, want := range []string{
		"class delay1 feedback;",
		"class sum1 feedback;",
		"class noise1 idle;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
		}
	}
}
