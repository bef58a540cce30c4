package field

// Kind identifies a field's content-model kind. The set is closed: the
// compiler dispatches over it with a fixed table and silently skips values it
// does not recognise so older configurations keep loading.
type Kind string

const (
	KindText         Kind = "text"
	KindTextarea     Kind = "textarea"
	KindEmail        Kind = "email"
	KindCode         Kind = "code"
	KindNumber       Kind = "number"
	KindDate         Kind = "date"
	KindCheckbox     Kind = "checkbox"
	KindJSON         Kind = "json"
	KindSelect       Kind = "select"
	KindRadio        Kind = "radio"
	KindPoint        Kind = "point"
	KindRelationship Kind = "relationship"
	KindUpload       Kind = "upload"
	KindRow          Kind = "row"
	KindCollapsible  Kind = "collapsible"
	KindGroup        Kind = "group"
	KindArray        Kind = "array"
	KindTabs         Kind = "tabs"
	KindBlocks       Kind = "blocks"
	KindRichText     Kind = "richText"
	KindUI           Kind = "ui"
)

// IDType selects how a record's primary identifier is stored.
type IDType string

const (
	// IDSurrogate lets the storage engine assign its native identifier.
	IDSurrogate IDType = "surrogate"
	IDNumber    IDType = "number"
	IDBigInt    IDType = "bigint"
	IDText      IDType = "text"
)

// Option is a select/radio choice. Value is what persists; Label is
// presentation-only.
type Option struct {
	Label string
	Value string
}

// Admin carries presentation metadata that never reaches the storage schema
// but is surfaced through the client-facing path map.
type Admin struct {
	Hidden      bool
	Description string
	// Condition is an expression deciding client-side visibility. It is
	// compile-checked when the client projection is built.
	Condition string
}

// Relationship configures relationship and upload fields. Upload fields use a
// single target.
type Relationship struct {
	// Targets lists related record slugs. More than one target produces a
	// tagged-union stored shape.
	Targets []string
	HasMany bool
}

// BlockPolicy selects how a blocks field acquires non-inline variants.
type BlockPolicy string

const (
	// BlockPolicyNone exposes only the field's inline blocks.
	BlockPolicyNone BlockPolicy = ""
	// BlockPolicyAll exposes every globally registered block.
	BlockPolicyAll BlockPolicy = "all"
	// BlockPolicySubset exposes only the entries listed in Field.BlockRefs.
	BlockPolicySubset BlockPolicy = "subset"
)

// Block is a named, reusable sub-schema usable as one arm of a blocks field's
// discriminated union. Blocks are declared once globally or inline on a
// field; inline declarations always outrank a same-slug global for the
// declaring field.
type Block struct {
	Slug   string
	Label  string
	Fields []Field
}

// BlockRef is one entry of an explicit-subset policy: either a slug string
// resolved against the global registry or an inline block declaration.
type BlockRef struct {
	Slug   string
	Inline *Block
}

// Localization is the model-level locale configuration. A zero value
// disables localization entirely.
type Localization struct {
	// Locales holds ordered locale codes, e.g. ["en", "es"].
	Locales []string
}

// Enabled reports whether the model carries an active locale set.
func (l Localization) Enabled() bool { return len(l.Locales) > 0 }

// CompoundIndex declares a multi-path index on a record. Paths beneath a
// localized ancestor expand into one index per locale at compile time.
type CompoundIndex struct {
	Paths  []string
	Unique bool
}

// Tab is one pane of a tabs field. A named tab introduces a path and storage
// namespace; an unnamed tab merges its fields into the parent.
type Tab struct {
	Name      string
	Label     string
	Localized bool
	Fields    []Field
}

// Field is the canonical in-memory field definition. Which attributes apply
// depends on Kind; unused ones stay zero.
type Field struct {
	Name  string
	Kind  Kind
	Label string

	Required  bool
	Unique    bool
	Index     bool
	Localized bool
	// NoIndex suppresses indexes the compiler would otherwise add on its
	// own, such as the spatial index on point fields.
	NoIndex bool
	// Virtual fields resolve at runtime and never persist.
	Virtual bool

	// Default is a static default persisted into the storage schema.
	Default any
	// DefaultFunc is a default-value generator. Generated values are
	// runtime-only and never persist as schema defaults.
	DefaultFunc func() any

	// Fields holds nested definitions for composite kinds (row, collapsible,
	// group, array).
	Fields []Field
	// Tabs holds the panes of a tabs field.
	Tabs []Tab

	// Blocks are inline variants declared directly on a blocks field.
	Blocks []Block
	// Policy selects additional, non-inline variants for a blocks field.
	Policy BlockPolicy
	// BlockRefs lists explicit-subset entries when Policy is subset.
	BlockRefs []BlockRef

	// Options enumerates select/radio choices.
	Options []Option

	// Relationship configures relationship/upload fields.
	Relationship *Relationship

	// RichText is the schema-generation capability of an opaque rich-text
	// plug-in. Required whenever Kind is richText and a path map is built.
	RichText SchemaMapGenerator

	Admin Admin
}

// AffectsData reports whether the field stores data under its own name.
// Unnamed and presentation-only fields organise or decorate siblings without
// persisting anything themselves.
func (f *Field) AffectsData() bool {
	return f.Name != "" && f.Kind != KindUI
}

// HasDataDescendant reports whether any field beneath f (or f itself, for
// leaves) persists data. A named group with no data-persisting descendants
// stays transparent in the path map.
func (f *Field) HasDataDescendant() bool {
	for i := range f.Fields {
		child := &f.Fields[i]
		if child.Kind == KindUI || child.Virtual {
			continue
		}
		if child.AffectsData() || child.HasDataDescendant() {
			return true
		}
	}
	for i := range f.Tabs {
		for j := range f.Tabs[i].Fields {
			child := &f.Tabs[i].Fields[j]
			if child.Kind == KindUI || child.Virtual {
				continue
			}
			if child.AffectsData() || child.HasDataDescendant() {
				return true
			}
		}
	}
	return false
}

// Merge reports whether the kind organises siblings without creating a
// storage or path namespace.
func (k Kind) Merge() bool {
	return k == KindRow || k == KindCollapsible
}

// Namespace reports whether the kind introduces a new addressable namespace
// when the field is named.
func (k Kind) Namespace() bool {
	return k == KindGroup || k == KindArray
}
