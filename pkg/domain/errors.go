package domain

import "errors"

// ErrUnknownKind is returned when a kind was never registered by the backend greeting.
var ErrUnknownKind = errors.New("unknown kind")

// ErrUnknownObject is returned when an object name is not present in the graph.
var ErrUnknownObject = errors.New("unknown object")

// ErrUnknownSlot is returned when an input slot is not declared by the target's kind.
var ErrUnknownSlot = errors.New("unknown input slot")

// ErrInvalidKind is returned when an operation does not apply to the object's kind
// (e.g. setting the value of anything but a value object).
var ErrInvalidKind = errors.New("invalid kind for operation")

// ErrProtectedObject is returned when an operation would destroy, duplicate
// or draw an output from the engine object.
var ErrProtectedObject = errors.New("protected object")

// ErrSelfConnection is returned when an object's input would be fed by itself.
var ErrSelfConnection = errors.New("object cannot connect to itself")

// ErrDisconnected is returned once the session channel has been lost.
// The state is terminal: no intent is accepted afterwards.
var ErrDisconnected = errors.New("disconnected from backend")

// ErrPatchNotFound is returned when a saved patch cannot be found in the store.
var ErrPatchNotFound = errors.New("patch not found")

// ErrInvalidPatchName is returned when a patch name is not a safe file-like name.
var ErrInvalidPatchName = errors.New("invalid patch name")
