package editor

import (
	"fmt"
	"sort"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/notes"
	"github.com/aretw0/patchbay/pkg/protocol"
)

// Create places a new object of kind. Its name is chosen locally.
func (s *Session) Create(kind string, d domain.Display) (*domain.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	return s.store.Create(kind, d)
}

// Connect feeds input slot of to from object from.
func (s *Session) Connect(from, to, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	return s.store.Connect(from, to, slot)
}

// Disconnect removes the edge from -> to.slot if it exists.
func (s *Session) Disconnect(from, to, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	return s.store.Disconnect(from, to, slot)
}

// SetValue sets the scalar of a value object.
func (s *Session) SetValue(name string, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	return s.store.SetValue(name, v)
}

// SetValueText sets a value object from user text: a note name such as
// "c#5" (which also becomes the label) or a number.
func (s *Session) SetValueText(name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}

	o, ok := s.store.Object(name)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownObject, name)
	}
	if o.Kind != domain.ValueKind {
		return fmt.Errorf("%w: %s is a %s", domain.ErrInvalidKind, name, o.Kind)
	}
	v, isNote, err := notes.ParseValue(text)
	if err != nil {
		return err
	}
	if isNote {
		if err := s.store.SetLabel(name, text); err != nil {
			return err
		}
	}
	return s.store.SetValue(name, v)
}

// Move changes the position of an object, keeping its label.
func (s *Session) Move(name string, top, left int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	o, ok := s.store.Object(name)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownObject, name)
	}
	d := o.Display
	d.Top, d.Left = top, left
	return s.store.SetDisplay(name, d)
}

// SetLabel changes the label shown for an object.
func (s *Session) SetLabel(name, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	return s.store.SetLabel(name, label)
}

// Destroy removes an object. The engine cannot be destroyed.
func (s *Session) Destroy(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	return s.store.Destroy(name)
}

// DestroySelection removes every selected object except the engine, in name order.
func (s *Session) DestroySelection(selection []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(selection))
	names := make([]string, 0, len(selection))
	for _, name := range selection {
		if name == domain.EngineName || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.store.Destroy(name); err != nil {
			return err
		}
	}
	return nil
}

// Duplicate clones the selection and the edges internal to it.
func (s *Session) Duplicate(selection []string) ([]*domain.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}
	return s.dup.Duplicate(selection)
}

// Load asks the backend for a saved patch. See persistence.Bridge.Load.
func (s *Session) Load(name string, confirm func() bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	return s.bridge.Load(name, confirm)
}

// Save asks the backend to save the graph under name.
func (s *Session) Save(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	return s.bridge.Save(name)
}

// Object returns a copy of the named object.
func (s *Session) Object(name string) (*domain.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Object(name)
}

// Objects returns copies of every object, sorted by name.
func (s *Session) Objects() []*domain.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Objects()
}

// Connections returns every edge of the graph.
func (s *Session) Connections() []domain.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Connections()
}

// Snapshot returns the graph in wire form.
func (s *Session) Snapshot() []*protocol.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Kinds returns every kind announced by the backend.
func (s *Session) Kinds() []string {
	return s.kinds.Kinds()
}

// Palette returns the kinds a user may create.
func (s *Session) Palette() []string {
	return s.kinds.Palette()
}

// Inputs returns the input slots of kind.
func (s *Session) Inputs(kind string) ([]string, error) {
	return s.kinds.InputsFor(kind)
}

// IsDirty reports whether there are unsaved local changes.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bridge.IsDirty()
}

// Current returns the name of the last loaded or saved patch.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bridge.Current()
}
