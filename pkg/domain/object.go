package domain

import (
	"maps"
	"sort"
)

// Display holds the presentation-only attributes of an object.
type Display struct {
	Top   int    `json:"top"`
	Left  int    `json:"left"`
	Label string `json:"label,omitempty"`
}

// Offset returns d moved by delta. The label is kept.
func (d Display) Offset(delta Display) Display {
	d.Top += delta.Top
	d.Left += delta.Left
	return d
}

// Object is a node of the patch.
// Inputs maps every slot declared by the kind to the name of its source,
// or to the empty string when the slot is not connected.
type Object struct {
	Name    string            `json:"name"`
	Kind    string            `json:"kind"`
	Value   float64           `json:"value,omitempty"`
	Display Display           `json:"display"`
	Inputs  map[string]string `json:"inputs"`
}

// NewObject builds an object with every slot initialized to none.
func NewObject(name string, kind string, slots []string) *Object {
	inputs := make(map[string]string, len(slots))
	for _, s := range slots {
		inputs[s] = ""
	}
	return &Object{Name: name, Kind: kind, Inputs: inputs}
}

// IsEngine reports whether o is the engine object.
func (o *Object) IsEngine() bool {
	return o.Kind == EngineKind
}

// Clone returns a deep copy of o, so callers can't mutate store state by pointer.
func (o *Object) Clone() *Object {
	c := *o
	c.Inputs = maps.Clone(o.Inputs)
	if c.Inputs == nil {
		c.Inputs = make(map[string]string)
	}
	return &c
}

// SortedSlots returns the input slot names in lexical order, not the kind's declared order.
func (o *Object) SortedSlots() []string {
	slots := make([]string, 0, len(o.Inputs))
	for s := range o.Inputs {
		slots = append(slots, s)
	}
	sort.Strings(slots)
	return slots
}

// Connection is an edge of the patch, derived from a non-empty input.
type Connection struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Input string `json:"input"`
}

// SortConnections orders connections by target, slot and source.
func SortConnections(conns []Connection) {
	sort.Slice(conns, func(i, j int) bool {
		a, b := conns[i], conns[j]
		if a.To != b.To {
			return a.To < b.To
		}
		if a.Input != b.Input {
			return a.Input < b.Input
		}
		return a.From < b.From
	})
}
