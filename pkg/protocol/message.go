package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/aretw0/patchbay/pkg/domain"
)

// Actions understood by editors and backends.
const (
	// Backend -> editor only.
	ActionHello    = "hello"
	ActionSetGraph = "setGraph"
	ActionMessage  = "message"

	// Both directions.
	ActionNew        = "new"
	ActionConnect    = "connect"
	ActionDisconnect = "disconnect"
	ActionSet        = "set"
	ActionSetDisplay = "setDisplay"
	ActionDestroy    = "destroy"

	// Editor -> backend only.
	ActionLoad = "load"
	ActionSave = "save"
)

// ErrMissingAction is returned by Decode for frames without an Action.
var ErrMissingAction = errors.New("frame has no Action")

// Message is a single protocol frame.
type Message struct {
	Action string

	// "new", "set", "destroy", "save", "load", "setDisplay"
	Name string `json:",omitempty"`

	// "new"
	Kind string `json:",omitempty"`

	// "new", "set" (value kind only)
	Value float64 `json:",omitempty"`

	// "connect", "disconnect"
	From  string `json:",omitempty"`
	To    string `json:",omitempty"`
	Input string `json:",omitempty"`

	// "new", "setDisplay"
	Display *Display `json:",omitempty"`

	// "hello"
	KindInputs map[string][]string `json:",omitempty"`

	// "setGraph"
	Graph []*Object `json:",omitempty"`

	// "message"
	Message string `json:",omitempty"`
}

// Object is the wire form of a patch object, used by setGraph and saved patches.
type Object struct {
	Name    string
	Kind    string
	Value   float64           `json:",omitempty"`
	Input   map[string]string `json:",omitempty"`
	Display Display
}

// Display is the wire form of domain.Display.
type Display struct {
	Top   int
	Left  int
	Label string `json:",omitempty"`
}

// Encode serializes m into a single text frame.
func Encode(m *Message) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q message: %w", m.Action, err)
	}
	return b, nil
}

// Decode parses a single text frame.
func Decode(frame []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(frame, &m); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	if m.Action == "" {
		return nil, ErrMissingAction
	}
	return &m, nil
}

var validPatchName = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidatePatchName checks that name is safe to use as a storage key or file name.
func ValidatePatchName(name string) error {
	if !validPatchName.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q doesn't match %v", domain.ErrInvalidPatchName, name, validPatchName)
	}
	return nil
}
