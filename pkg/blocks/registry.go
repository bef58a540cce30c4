// Package blocks owns the process-wide registry of globally declared blocks
// and the runtime resolver that picks a concrete block for a field. The
// registry is built exactly once, before any blocks field compiles, and is
// read-only afterward.
package blocks

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-schemagen/pkg/compiler"
	"github.com/goliatone/go-schemagen/pkg/field"
	"github.com/goliatone/go-schemagen/pkg/storage"
)

// ErrDuplicateSlug reports two global blocks declared under one slug.
var ErrDuplicateSlug = errors.New("duplicate global block slug")

// Registry holds every globally declared block together with its pre-built
// storage shell. Shells are allocated before any block's fields compile, so
// a block whose fields reference another block (or itself) resolves against
// a shell that already exists instead of recursing.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	shells map[string]*storage.Schema
	defs   map[string]field.Block
}

var _ compiler.BlockShells = (*Registry)(nil)

// BuildRegistry runs the two-pass build. Pass one allocates an empty,
// slug-keyed shell per global block; pass two compiles each block's fields
// into its own pre-existing shell with the registry itself wired into the
// compiler, so nested blocks fields see every sibling. The two passes have a
// strict ordering dependency: no shell may be populated before all shells
// exist.
func BuildRegistry(globals []field.Block, opts compiler.Options) (*Registry, error) {
	r := &Registry{
		shells: make(map[string]*storage.Schema, len(globals)),
		defs:   make(map[string]field.Block, len(globals)),
	}

	for _, b := range globals {
		if _, exists := r.shells[b.Slug]; exists {
			return nil, fmt.Errorf("blocks: %w: %q", ErrDuplicateSlug, b.Slug)
		}
		shell := storage.New()
		shell.ElementID = true
		r.shells[b.Slug] = shell
		r.defs[b.Slug] = b
		r.order = append(r.order, b.Slug)
	}

	opts.Blocks = r
	for _, slug := range r.order {
		b := r.defs[slug]
		if err := compiler.CompileInto(r.shells[slug], b.Fields, opts); err != nil {
			return nil, fmt.Errorf("blocks: compile %q: %w", slug, err)
		}
	}
	return r, nil
}

// Shell returns the storage shell registered under slug.
func (r *Registry) Shell(slug string) (*storage.Schema, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	shell, ok := r.shells[slug]
	return shell, ok
}

// Block returns the block definition registered under slug.
func (r *Registry) Block(slug string) (field.Block, bool) {
	if r == nil {
		return field.Block{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.defs[slug]
	return b, ok
}

// Slugs returns every registered slug in declaration order.
func (r *Registry) Slugs() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
