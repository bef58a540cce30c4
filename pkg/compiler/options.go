package compiler

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-schemagen/pkg/field"
	"github.com/goliatone/go-schemagen/pkg/storage"
)

// BlockShells is the read-only view of the global block registry the
// compiler needs: pre-built storage shells keyed by slug, in declaration
// order. The registry package implements it; keeping the dependency an
// interface lets the registry itself drive the compiler during its second
// pass without an import cycle.
type BlockShells interface {
	// Shell returns the pre-built schema shell for slug.
	Shell(slug string) (*storage.Schema, bool)
	// Slugs returns every registered slug in declaration order.
	Slugs() []string
}

// Options configures a single compilation. The zero value compiles a plain,
// non-localized, non-drafts schema with a surrogate identifier.
type Options struct {
	// AllowIDField keeps a top-level "id" field in the ordinary field list
	// instead of promoting it to the document's primary key.
	AllowIDField bool
	// DisableUniqueConstraints suppresses uniqueness on every descriptor and
	// compound index. Sparse markers still follow the requested uniqueness.
	DisableUniqueConstraints bool
	// DraftsEnabled marks the model as draft-capable: unique indexes become
	// sparse and select enums accept a null sentinel.
	DraftsEnabled bool
	// IndexSortableFields indexes every leaf so the engine can sort on any
	// field.
	IndexSortableFields bool
	// ParentIsLocalized records that an ancestor already reshaped the
	// document per locale, so nested localized fields are not re-wrapped.
	ParentIsLocalized bool
	// Timestamps appends createdAt/updatedAt descriptors to a top-level
	// schema.
	Timestamps bool

	// Locales is the owning model's localization configuration.
	Locales field.Localization
	// IDType is the owning model's identifier policy. Empty means surrogate
	// unless a custom id field says otherwise.
	IDType field.IDType
	// IDTypes maps related record slugs to their identifier policies, used
	// to type stored reference values.
	IDTypes map[string]field.IDType

	// CompoundIndexes are model-level multi-path indexes, expanded per
	// locale when they reach under localized ancestors.
	CompoundIndexes []field.CompoundIndex

	// Raw passes opaque storage-engine options straight through to the
	// compiled schema.
	Raw map[string]any

	// Blocks supplies pre-built global block shells. Nil is valid: only
	// inline blocks resolve then.
	Blocks BlockShells

	// Logger receives skip diagnostics. Nil disables logging.
	Logger *zerolog.Logger
}

var nopLogger = zerolog.Nop()

func (o Options) log() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return &nopLogger
}

// localizationEffective reports whether f should be reshaped per locale:
// marked localized on a model with an active locale set. A localized field
// on a model without locales behaves exactly as a non-localized one.
func (o Options) localizationEffective(f *field.Field) bool {
	return f.Localized && o.Locales.Enabled()
}

// childOptions propagates localization context into a namespace container's
// sub-schema.
func (o Options) childOptions(localized bool) Options {
	out := o
	out.ParentIsLocalized = o.ParentIsLocalized || localized
	return out
}
