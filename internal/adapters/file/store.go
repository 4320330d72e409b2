package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/protocol"
)

const ext = ".json"

// Store implements ports.PatchStore using the local filesystem.
// Each patch is an indented JSON array of objects in <BasePath>/<name>.json.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "patch".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = "patch"
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(name string) (string, error) {
	if err := protocol.ValidatePatchName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.BasePath, name+ext), nil
}

// Save writes the patch atomically: to a temporary file first, synced, then
// renamed over the destination.
func (s *Store) Save(ctx context.Context, name string, patch []*protocol.Object) error {
	destPath, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure patch directory: %w", err)
	}

	if patch == nil {
		patch = []*protocol.Object{}
	}
	data, err := json.MarshalIndent(patch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal patch: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing patch for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to patch: %w", err)
	}
	return nil
}

// Load reads a patch. Besides the array layout it accepts an object keyed by
// object name.
func (s *Store) Load(ctx context.Context, name string) ([]*protocol.Object, error) {
	filePath, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPatchNotFound, name)
		}
		return nil, fmt.Errorf("failed to read patch file: %w", err)
	}
	return decode(name, data)
}

func decode(name string, data []byte) ([]*protocol.Object, error) {
	var patch []*protocol.Object
	arrErr := json.Unmarshal(data, &patch)
	if arrErr == nil {
		return patch, nil
	}

	var keyed map[string]*protocol.Object
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patch %s: %w", name, arrErr)
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o := keyed[k]
		if o == nil {
			continue
		}
		if o.Name == "" {
			o.Name = k
		}
		patch = append(patch, o)
	}
	return patch, nil
}

// Delete removes the patch file.
func (s *Store) Delete(ctx context.Context, name string) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete patch file: %w", err)
	}
	return nil
}

// List returns the names of all saved patches, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list patches: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}
