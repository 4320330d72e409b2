package graph

import (
	"fmt"
	"sort"

	"github.com/aretw0/patchbay/pkg/domain"
)

// DefaultOffset is how far clones are placed from their originals.
var DefaultOffset = domain.Display{Top: 50, Left: 50}

// Duplicator clones a selection of objects together with the wiring internal to it.
type Duplicator struct {
	store  *Store
	offset domain.Display
}

// DuplicatorOption configures the Duplicator.
type DuplicatorOption func(*Duplicator)

// WithOffset sets the displacement of clones relative to their originals.
func WithOffset(offset domain.Display) DuplicatorOption {
	return func(d *Duplicator) {
		d.offset = offset
	}
}

// NewDuplicator creates a Duplicator working on store.
func NewDuplicator(store *Store, opts ...DuplicatorOption) *Duplicator {
	d := &Duplicator{store: store, offset: DefaultOffset}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Duplicate clones every selected object except the engine, which is silently
// excluded. Clones get fresh names, the same kind and label, an offset
// position and, for value objects, the same value. Only edges whose source is
// also selected are replicated: a clone never inherits wiring to objects it
// wasn't copied with.
//
// The selection is validated before anything is created. The clones are
// returned in the order of their originals' names.
func (d *Duplicator) Duplicate(selection []string) ([]*domain.Object, error) {
	var originals []*domain.Object
	seen := make(map[string]bool, len(selection))
	for _, name := range selection {
		if seen[name] {
			continue
		}
		seen[name] = true

		o, err := d.store.lookup(name)
		if err != nil {
			return nil, err
		}
		if o.IsEngine() {
			continue
		}
		originals = append(originals, o.Clone())
	}
	sort.Slice(originals, func(i, j int) bool { return originals[i].Name < originals[j].Name })

	renamed := make(map[string]string, len(originals))
	clones := make([]string, 0, len(originals))
	for _, o := range originals {
		c, err := d.store.Create(o.Kind, o.Display.Offset(d.offset))
		if err != nil {
			return d.collect(clones), fmt.Errorf("duplicate %s: %w", o.Name, err)
		}
		renamed[o.Name] = c.Name
		clones = append(clones, c.Name)

		if o.Kind == domain.ValueKind {
			if err := d.store.SetValue(c.Name, o.Value); err != nil {
				return d.collect(clones), fmt.Errorf("duplicate %s: %w", o.Name, err)
			}
		}
	}

	for _, o := range originals {
		for _, slot := range o.SortedSlots() {
			src, internal := renamed[o.Inputs[slot]]
			if !internal {
				continue
			}
			if err := d.store.Connect(src, renamed[o.Name], slot); err != nil {
				return d.collect(clones), fmt.Errorf("duplicate edge %s -> %s.%s: %w", o.Inputs[slot], o.Name, slot, err)
			}
		}
	}

	return d.collect(clones), nil
}

func (d *Duplicator) collect(names []string) []*domain.Object {
	out := make([]*domain.Object, 0, len(names))
	for _, n := range names {
		if o, ok := d.store.Object(n); ok {
			out = append(out, o)
		}
	}
	return out
}
