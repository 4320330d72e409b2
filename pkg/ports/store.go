package ports

import (
	"context"

	"github.com/aretw0/patchbay/pkg/protocol"
)

// PatchStore defines the interface for persisting saved patches.
// A patch is the wire form of every object of a graph, edges included.
type PatchStore interface {
	// Save persists the patch under name, replacing any previous version.
	Save(ctx context.Context, name string, patch []*protocol.Object) error

	// Load retrieves the patch saved under name.
	// Returns domain.ErrPatchNotFound if the patch does not exist.
	Load(ctx context.Context, name string) ([]*protocol.Object, error)

	// Delete removes the patch. Deleting a missing patch is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all saved patches.
	List(ctx context.Context) ([]string, error)
}
