// Package analysis inspects the signal flow of a saved patch.
package analysis

import (
	"sort"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/protocol"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// Report describes how signal flows through a patch.
type Report struct {
	// Order lists objects so that every object comes after its sources.
	// It is empty when the patch contains feedback.
	Order []string `json:"order"`
	// Cycles are the feedback loops, each sorted by name.
	Cycles [][]string `json:"cycles,omitempty"`
	// Idle lists objects whose output never reaches the engine.
	Idle []string `json:"idle,omitempty"`
	// Dangling lists edges whose source is not part of the patch.
	Dangling []domain.Connection `json:"dangling,omitempty"`
}

// Acyclic reports whether the patch has no feedback loops.
func (r Report) Acyclic() bool {
	return len(r.Cycles) == 0
}

// patchGraph maps object names onto a gonum graph.
type patchGraph struct {
	flow  *simple.DirectedGraph
	back  *simple.DirectedGraph
	ids   map[string]int64
	names []string
}

func newPatchGraph(patch []*protocol.Object) (*patchGraph, []domain.Connection, [][]string) {
	pg := &patchGraph{
		flow: simple.NewDirectedGraph(),
		back: simple.NewDirectedGraph(),
		ids:  make(map[string]int64, len(patch)),
	}
	for _, o := range patch {
		if _, ok := pg.ids[o.Name]; ok {
			continue
		}
		pg.names = append(pg.names, o.Name)
	}
	sort.Strings(pg.names)
	for i, name := range pg.names {
		pg.ids[name] = int64(i)
		pg.flow.AddNode(simple.Node(i))
		pg.back.AddNode(simple.Node(i))
	}

	var dangling []domain.Connection
	var loops [][]string
	looped := make(map[string]bool)
	for _, o := range patch {
		for slot, from := range o.Input {
			src, ok := pg.ids[from]
			if !ok {
				dangling = append(dangling, domain.Connection{From: from, To: o.Name, Input: slot})
				continue
			}
			dst := pg.ids[o.Name]
			if src == dst {
				if !looped[o.Name] {
					looped[o.Name] = true
					loops = append(loops, []string{o.Name})
				}
				continue
			}
			if !pg.flow.HasEdgeFromTo(src, dst) {
				pg.flow.SetEdge(pg.flow.NewEdge(pg.flow.Node(src), pg.flow.Node(dst)))
				pg.back.SetEdge(pg.back.NewEdge(pg.back.Node(dst), pg.back.Node(src)))
			}
		}
	}
	sort.Slice(dangling, func(i, j int) bool {
		a, b := dangling[i], dangling[j]
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Input < b.Input
	})
	return pg, dangling, loops
}

func (pg *patchGraph) name(n graph.Node) string {
	return pg.names[n.ID()]
}

// Analyze computes the evaluation order, feedback loops and idle objects of patch.
func Analyze(patch []*protocol.Object) Report {
	pg, dangling, cycles := newPatchGraph(patch)
	r := Report{Dangling: dangling}

	for _, scc := range topo.TarjanSCC(pg.flow) {
		if len(scc) < 2 {
			continue
		}
		cycle := make([]string, len(scc))
		for i, n := range scc {
			cycle[i] = pg.name(n)
		}
		sort.Strings(cycle)
		cycles = append(cycles, cycle)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	r.Cycles = cycles

	if r.Acyclic() {
		sorted, err := topo.SortStabilized(pg.flow, byID)
		if err == nil {
			r.Order = make([]string, len(sorted))
			for i, n := range sorted {
				r.Order[i] = pg.name(n)
			}
		}
	}

	r.Idle = pg.idle()
	return r
}

// idle returns the objects the engine cannot hear.
func (pg *patchGraph) idle() []string {
	heard := make(map[int64]bool, len(pg.names))
	if id, ok := pg.ids[domain.EngineName]; ok {
		bfs := traverse.BreadthFirst{
			Visit: func(n graph.Node) { heard[n.ID()] = true },
		}
		bfs.Walk(pg.back, pg.back.Node(id), nil)
	}

	var idle []string
	for i, name := range pg.names {
		if name == domain.EngineName || heard[int64(i)] {
			continue
		}
		idle = append(idle, name)
	}
	return idle
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}
