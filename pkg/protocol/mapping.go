package protocol

import (
	"maps"

	"github.com/aretw0/patchbay/pkg/domain"
)

// DisplayFromDomain converts a domain display to its wire form.
func DisplayFromDomain(d domain.Display) Display {
	return Display{Top: d.Top, Left: d.Left, Label: d.Label}
}

// Domain converts the wire display to a domain display.
func (d Display) Domain() domain.Display {
	return domain.Display{Top: d.Top, Left: d.Left, Label: d.Label}
}

// ObjectFromDomain converts a domain object to its wire form.
// Unconnected slots are dropped: the wire only carries edges.
func ObjectFromDomain(o *domain.Object) *Object {
	w := &Object{
		Name:    o.Name,
		Kind:    o.Kind,
		Value:   o.Value,
		Display: DisplayFromDomain(o.Display),
	}
	for slot, from := range o.Inputs {
		if from == "" {
			continue
		}
		if w.Input == nil {
			w.Input = make(map[string]string)
		}
		w.Input[slot] = from
	}
	return w
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	c := *o
	c.Input = maps.Clone(o.Input)
	return &c
}

// NewObjectMessage builds the "new" intent announcing o.
func NewObjectMessage(o *domain.Object) *Message {
	m := &Message{Action: ActionNew, Name: o.Name, Kind: o.Kind}
	if o.Kind == domain.ValueKind {
		m.Value = o.Value
	}
	return m
}

// ConnectionMessage builds a "connect" or "disconnect" message for c.
func ConnectionMessage(action string, c domain.Connection) *Message {
	return &Message{Action: action, From: c.From, To: c.To, Input: c.Input}
}

// SetDisplayMessage builds a "setDisplay" message.
func SetDisplayMessage(name string, d domain.Display) *Message {
	wd := DisplayFromDomain(d)
	return &Message{Action: ActionSetDisplay, Name: name, Display: &wd}
}

// Connection extracts the edge carried by a connect/disconnect message.
func (m *Message) Connection() domain.Connection {
	return domain.Connection{From: m.From, To: m.To, Input: m.Input}
}
