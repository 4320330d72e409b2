// Package naming allocates unique object names from a kind prefix and a counter.
package naming

import (
	"math"
	"regexp"
	"strconv"

	"github.com/aretw0/patchbay/pkg/domain"
)

var suffix = regexp.MustCompile(`[0-9]+$`)

// Allocator hands out names of the form kind+N.
// The counter is shared by all kinds and only ever grows, so names are
// never reused after deletion. It is owned by a single session.
type Allocator struct {
	next int
}

// NewAllocator creates an allocator whose first name ends in 1.
func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

// Allocate returns a fresh name for kind.
// The engine kind always gets the fixed name "engine" and is not counted.
func (a *Allocator) Allocate(kind string) string {
	if kind == domain.EngineKind {
		return domain.EngineName
	}
	name := kind + strconv.Itoa(a.next)
	a.next++
	return name
}

// Observe advances the counter past the numeric suffix of an externally assigned name.
// Names without a numeric suffix are treated as externally namespaced and ignored.
func (a *Allocator) Observe(name string) {
	s := suffix.FindString(name)
	if s == "" {
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil || n == math.MaxInt {
		// No counter value can reach it.
		return
	}
	if a.next <= n {
		a.next = n + 1
	}
}

// Next returns the counter value the next allocation will use.
func (a *Allocator) Next() int {
	return a.next
}
