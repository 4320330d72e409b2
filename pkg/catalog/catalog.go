// Package catalog loads the kinds a backend announces to its editors.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/registry"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed kinds.yaml
var defaultKinds []byte

// ErrInvalidCatalog is returned for catalogs that can't be announced.
var ErrInvalidCatalog = errors.New("invalid kind catalog")

// Catalog is an ordered list of kinds.
type Catalog struct {
	Kinds []domain.Kind
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultKinds)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Kinds []any `yaml:"kinds"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{}
	for i, raw := range doc.Kinds {
		var k domain.Kind
		if err := mapstructure.Decode(raw, &k); err != nil {
			return nil, fmt.Errorf("%w: kind #%d: %v", ErrInvalidCatalog, i, err)
		}
		c.Kinds = append(c.Kinds, k)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that kind names and slot names are unique and that the
// engine is declared.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Kinds))
	for _, k := range c.Kinds {
		if k.Name == "" {
			return fmt.Errorf("%w: kind without a name", ErrInvalidCatalog)
		}
		if seen[k.Name] {
			return fmt.Errorf("%w: kind %q declared twice", ErrInvalidCatalog, k.Name)
		}
		seen[k.Name] = true

		slots := make(map[string]bool, len(k.Inputs))
		for _, in := range k.Inputs {
			if in == "" || slots[in] {
				return fmt.Errorf("%w: kind %q has an empty or repeated input %q", ErrInvalidCatalog, k.Name, in)
			}
			slots[in] = true
		}
	}
	if !seen[domain.EngineKind] {
		return fmt.Errorf("%w: no %q kind", ErrInvalidCatalog, domain.EngineKind)
	}
	return nil
}

// Names returns the kind names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Kinds))
	for i, k := range c.Kinds {
		names[i] = k.Name
	}
	return names
}

// KindInputs returns the greeting payload.
func (c *Catalog) KindInputs() map[string][]string {
	m := make(map[string][]string, len(c.Kinds))
	for _, k := range c.Kinds {
		m[k.Name] = slices.Clone(k.Inputs)
	}
	return m
}

// Registry returns a registry holding every kind of the catalog.
func (c *Catalog) Registry() *registry.Registry {
	return registry.FromKindInputs(c.KindInputs())
}
