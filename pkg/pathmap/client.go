package pathmap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-schemagen/pkg/field"
)

// ErrInvalidCondition reports an admin condition expression that does not
// compile. Conditions ship to clients verbatim, so a malformed one is a
// configuration error caught at build time rather than a rendering surprise.
var ErrInvalidCondition = errors.New("invalid admin condition")

// Synthetic credential entries appended to auth-enabled records.
const (
	PasswordFieldName        = "password"
	ConfirmPasswordFieldName = "confirm-password"
)

// Projection is the reduced, client-safe view of a field definition. Default
// generators, storage options, and anything else server-only never appear
// here.
type Projection struct {
	Name        string         `json:"name,omitempty"`
	Kind        field.Kind     `json:"kind"`
	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Localized   bool           `json:"localized,omitempty"`
	Hidden      bool           `json:"hidden,omitempty"`
	HasMany     bool           `json:"hasMany,omitempty"`
	Options     []field.Option `json:"options,omitempty"`
	Targets     []string       `json:"targets,omitempty"`
	// Blocks lists the variant slugs visible to a blocks field, in
	// precedence order.
	Blocks    []string `json:"blocks,omitempty"`
	Condition string   `json:"condition,omitempty"`
}

// ClientMap is the client-facing counterpart of Map.
type ClientMap map[string]Projection

// ClientOptions configures the client projection build.
type ClientOptions struct {
	// Auth appends synthetic password and confirm-password entries after
	// the record's declared fields, so declared field indices never shift.
	Auth bool
}

var (
	descriptionPolicyOnce sync.Once
	descriptionPolicy     *bluemonday.Policy
)

// sanitizeDescription scrubs admin markup before it reaches clients.
func sanitizeDescription(raw string) string {
	if raw == "" {
		return ""
	}
	descriptionPolicyOnce.Do(func() {
		descriptionPolicy = bluemonday.StrictPolicy()
	})
	return descriptionPolicy.Sanitize(raw)
}

// FlattenClient builds the client-facing path map for a top-level record.
// It runs the same traversal as Flatten, mapped to Projection values.
func (fl *Flattener) FlattenClient(fields []field.Field, opts ClientOptions) (ClientMap, error) {
	all := fields
	if opts.Auth {
		all = make([]field.Field, 0, len(fields)+2)
		all = append(all, fields...)
		all = append(all, credentialFields()...)
	}

	server := make(Map)
	if err := fl.FlattenGlobals(server); err != nil {
		return nil, err
	}
	if err := fl.Flatten(all, "", server); err != nil {
		return nil, err
	}

	out := make(ClientMap, len(server))
	for path, def := range server {
		projected, err := fl.project(def)
		if err != nil {
			return nil, fmt.Errorf("pathmap: %s: %w", path, err)
		}
		out[path] = projected
	}
	return out, nil
}

func (fl *Flattener) project(f *field.Field) (Projection, error) {
	p := Projection{
		Name:        f.Name,
		Kind:        f.Kind,
		Label:       f.Label,
		Description: sanitizeDescription(f.Admin.Description),
		Required:    f.Required,
		Localized:   f.Localized,
		Hidden:      f.Admin.Hidden,
	}
	if len(f.Options) > 0 {
		p.Options = append([]field.Option(nil), f.Options...)
	}
	if f.Relationship != nil {
		p.HasMany = f.Relationship.HasMany
		p.Targets = append([]string(nil), f.Relationship.Targets...)
	}
	if f.Kind == field.KindBlocks {
		p.Blocks = fl.visibleSlugs(f)
	}
	if cond := f.Admin.Condition; cond != "" {
		if _, err := expr.Compile(cond, expr.AllowUndefinedVariables()); err != nil {
			return Projection{}, fmt.Errorf("%w: %v", ErrInvalidCondition, err)
		}
		p.Condition = cond
	}
	return p, nil
}

// visibleSlugs mirrors the resolver's precedence: inline first, then policy
// sources, de-duplicated.
func (fl *Flattener) visibleSlugs(f *field.Field) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(slug string) {
		if _, dup := seen[slug]; dup {
			return
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}

	for i := range f.Blocks {
		add(f.Blocks[i].Slug)
	}
	switch f.Policy {
	case field.BlockPolicyAll:
		if fl.Globals != nil {
			for _, slug := range fl.Globals.Slugs() {
				add(slug)
			}
		}
	case field.BlockPolicySubset:
		for i := range f.BlockRefs {
			ref := &f.BlockRefs[i]
			if ref.Inline != nil {
				add(ref.Inline.Slug)
				continue
			}
			if fl.Globals == nil {
				continue
			}
			if _, ok := fl.Globals.Block(ref.Slug); ok {
				add(ref.Slug)
			}
		}
	}
	return out
}

func credentialFields() []field.Field {
	return []field.Field{
		{Name: PasswordFieldName, Kind: field.KindText, Required: true},
		{Name: ConfirmPasswordFieldName, Kind: field.KindText, Required: true},
	}
}
