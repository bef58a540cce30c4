package storage

import "encoding/json"

// Type is the scalar storage type of a leaf descriptor. The storage engine
// maps these onto its native types; the compiler never assumes a concrete
// database.
type Type string

const (
	// TypeSurrogate is the engine-assigned native identifier type.
	TypeSurrogate Type = "surrogate"
	TypeText      Type = "text"
	TypeNumber    Type = "number"
	TypeBigInt    Type = "bigint"
	TypeDate      Type = "date"
	TypeBool      Type = "bool"
	// TypeAny is an untyped container for values the schema cannot pin down
	// (json fields, rich-text content, heterogeneous references).
	TypeAny Type = "any"
)

// DiscriminatedList is the stored shape of a blocks field: a list whose
// elements carry a tag selecting which variant schema applies. Variant
// schemas are shared by pointer with the global registry, which is what keeps
// self- and mutually-referencing blocks finite.
type DiscriminatedList struct {
	// TagKey is the element key holding the variant slug.
	TagKey string
	// Variants maps slug to the variant's schema shell.
	Variants map[string]*Schema
	// Order preserves attachment order: inline declarations first, then
	// policy-sourced slugs.
	Order []string
}

// Attach registers a variant shell under slug unless the slug is already
// claimed. It reports whether the variant was attached.
func (d *DiscriminatedList) Attach(slug string, shell *Schema) bool {
	if d.Variants == nil {
		d.Variants = make(map[string]*Schema)
	}
	if _, taken := d.Variants[slug]; taken {
		return false
	}
	d.Variants[slug] = shell
	d.Order = append(d.Order, slug)
	return true
}

// MarshalJSON renders the variant set as its slug list. Variant shells may
// reference themselves through nested blocks fields, so serialising them
// inline would never terminate; callers wanting shell bodies serialise the
// registry separately.
func (d *DiscriminatedList) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Tag    string   `json:"tag"`
		Blocks []string `json:"blocks"`
	}{Tag: d.TagKey, Blocks: append([]string(nil), d.Order...)})
}

// Descriptor describes how one field persists. Exactly one of the shape
// attributes (Type, Doc, List, Discriminated, Locales) is set.
type Descriptor struct {
	Type Type `json:"type,omitempty"`
	// Enum restricts the stored value to the listed values.
	Enum []any `json:"enum,omitempty"`
	// Default is the static default persisted with the schema. Generator
	// defaults never appear here.
	Default any `json:"default,omitempty"`
	// Ref names the related record a reference value points at.
	Ref string `json:"ref,omitempty"`
	// RefPath is the sibling path whose stored value selects the element
	// type dynamically, for tagged-union references.
	RefPath string `json:"refPath,omitempty"`

	Index     bool `json:"index,omitempty"`
	Unique    bool `json:"unique,omitempty"`
	Sparse    bool `json:"sparse,omitempty"`
	Localized bool `json:"localized,omitempty"`

	// Doc is a nested sub-document schema.
	Doc *Schema `json:"doc,omitempty"`
	// List wraps the element descriptor in a list.
	List *Descriptor `json:"list,omitempty"`
	// Discriminated is the stored shape of a blocks field.
	Discriminated *DiscriminatedList `json:"discriminated,omitempty"`
	// Locales holds one structural copy per locale code for localized
	// fields.
	Locales map[string]*Descriptor `json:"locales,omitempty"`
}

// Clone returns a structural copy of the descriptor. Sub-documents and list
// elements are copied deeply; discriminated variant shells stay shared by
// pointer, both because the registry owns them and because deep-copying a
// cyclic variant graph would not terminate.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	out := *d
	if d.Enum != nil {
		out.Enum = append([]any(nil), d.Enum...)
	}
	if d.Doc != nil {
		out.Doc = d.Doc.Clone()
	}
	if d.List != nil {
		out.List = d.List.Clone()
	}
	if d.Discriminated != nil {
		dl := &DiscriminatedList{
			TagKey:   d.Discriminated.TagKey,
			Order:    append([]string(nil), d.Discriminated.Order...),
			Variants: make(map[string]*Schema, len(d.Discriminated.Variants)),
		}
		for slug, shell := range d.Discriminated.Variants {
			dl.Variants[slug] = shell
		}
		out.Discriminated = dl
	}
	if d.Locales != nil {
		locales := make(map[string]*Descriptor, len(d.Locales))
		for code, desc := range d.Locales {
			locales[code] = desc.Clone()
		}
		out.Locales = locales
	}
	return &out
}

// Index is a schema-level index over one or more dotted paths.
type Index struct {
	Paths  []string `json:"paths"`
	Unique bool     `json:"unique,omitempty"`
	Sparse bool     `json:"sparse,omitempty"`
	// Kind names a special index class understood by the engine, such as
	// "2dsphere" for geo-point fields. Empty means a plain index.
	Kind string `json:"kind,omitempty"`
}

// Schema is a compiled document schema: ordered field descriptors plus
// schema-level indexes and opaque engine options. It is consumed by the
// storage engine driver and treated as a black box past this package.
type Schema struct {
	// ID is the primary-key descriptor, set only on top-level schemas.
	ID *Descriptor `json:"id,omitempty"`
	// ElementID permits a per-element identity key. Array and block element
	// schemas keep it so elements stay addressable across reorders; plain
	// sub-documents do not.
	ElementID bool `json:"elementId,omitempty"`

	Fields map[string]*Descriptor `json:"fields"`
	// Order preserves field declaration order; Fields alone cannot.
	Order []string `json:"order"`

	Indexes []Index `json:"indexes,omitempty"`
	// Raw carries opaque storage-engine options straight through.
	Raw map[string]any `json:"raw,omitempty"`
}

// New constructs an empty schema.
func New() *Schema {
	return &Schema{Fields: make(map[string]*Descriptor)}
}

// Set inserts or replaces the descriptor stored under name, preserving the
// original position on replacement.
func (s *Schema) Set(name string, d *Descriptor) {
	if _, exists := s.Fields[name]; !exists {
		s.Order = append(s.Order, name)
	}
	s.Fields[name] = d
}

// Get returns the descriptor stored under name.
func (s *Schema) Get(name string) (*Descriptor, bool) {
	d, ok := s.Fields[name]
	return d, ok
}

// Len reports the number of fields.
func (s *Schema) Len() int { return len(s.Order) }

// AddIndex appends a schema-level index.
func (s *Schema) AddIndex(idx Index) {
	s.Indexes = append(s.Indexes, idx)
}

// Clone returns a structural copy sharing discriminated variant shells, with
// the same sharing rationale as Descriptor.Clone.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{
		ID:        s.ID.Clone(),
		ElementID: s.ElementID,
		Fields:    make(map[string]*Descriptor, len(s.Fields)),
		Order:     append([]string(nil), s.Order...),
		Indexes:   append([]Index(nil), s.Indexes...),
	}
	for name, d := range s.Fields {
		out.Fields[name] = d.Clone()
	}
	if s.Raw != nil {
		out.Raw = make(map[string]any, len(s.Raw))
		for k, v := range s.Raw {
			out.Raw[k] = v
		}
	}
	return out
}
