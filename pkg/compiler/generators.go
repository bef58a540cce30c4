package compiler

import (
	"github.com/goliatone/go-schemagen/pkg/field"
	"github.com/goliatone/go-schemagen/pkg/storage"
)

// generator is the per-kind compile arm. Every kind the compiler understands
// implements the same signature against the same recursive entry point, so
// merge and namespace recursion stay two strategies behind one table.
type generator func(ctx *context, f *field.Field) error

// generators is the closed kind-dispatch table. Extending the model means
// adding a kind constant and an arm here; kinds absent from the table are
// skipped, not rejected.
var generators map[field.Kind]generator

func init() {
	generators = map[field.Kind]generator{
		field.KindText:         scalar(storage.TypeText),
		field.KindTextarea:     scalar(storage.TypeText),
		field.KindEmail:        scalar(storage.TypeText),
		field.KindCode:         scalar(storage.TypeText),
		field.KindNumber:       scalar(storage.TypeNumber),
		field.KindDate:         scalar(storage.TypeDate),
		field.KindCheckbox:     scalar(storage.TypeBool),
		field.KindJSON:         scalar(storage.TypeAny),
		field.KindRichText:     scalar(storage.TypeAny),
		field.KindSelect:       compileEnum,
		field.KindRadio:        compileEnum,
		field.KindPoint:        compilePoint,
		field.KindRelationship: compileReference,
		field.KindUpload:       compileReference,
		field.KindRow:          compileMerge,
		field.KindCollapsible:  compileMerge,
		field.KindGroup:        compileGroup,
		field.KindArray:        compileArray,
		field.KindTabs:         compileTabs,
		field.KindBlocks:       compileBlocks,
	}
}

// base assembles the leaf descriptor shared by every scalar arm: static
// default only, index when explicitly requested, unique, or globally
// sortable, uniqueness suppressed by DisableUniqueConstraints, and a sparse
// marker whenever a unique constraint could otherwise reject documents that
// simply lack the field.
func (ctx *context) base(f *field.Field, t storage.Type) *storage.Descriptor {
	d := &storage.Descriptor{Type: t}
	if f.Default != nil && f.DefaultFunc == nil {
		d.Default = f.Default
	}
	d.Index = f.Index || f.Unique || ctx.opts.IndexSortableFields
	d.Unique = f.Unique && !ctx.opts.DisableUniqueConstraints
	d.Sparse = ctx.sparse(f)
	return d
}

// sparse follows the requested uniqueness, not the effective one: a unique
// field that is localized, draftable, or optional must not reject documents
// lacking it, even while uniqueness itself is globally suppressed.
func (ctx *context) sparse(f *field.Field) bool {
	if !f.Unique {
		return false
	}
	if ctx.opts.localizationEffective(f) || ctx.opts.DraftsEnabled {
		return true
	}
	return f.AffectsData() && f.Kind != field.KindGroup && f.Kind != field.KindTabs && !f.Required
}

func scalar(t storage.Type) generator {
	return func(ctx *context, f *field.Field) error {
		if !f.AffectsData() {
			return nil
		}
		ctx.set(f, ctx.base(f, t))
		return nil
	}
}

// set stores the descriptor under the field's name, reshaping it per locale
// first when the field is localization-effective and no ancestor already
// localized the document.
func (ctx *context) set(f *field.Field, d *storage.Descriptor) {
	if ctx.opts.localizationEffective(f) && !ctx.opts.ParentIsLocalized {
		d = localize(d, ctx.opts.Locales.Locales)
	}
	ctx.schema.Set(f.Name, d)
}

func compileEnum(ctx *context, f *field.Field) error {
	if !f.AffectsData() {
		return nil
	}
	d := ctx.base(f, storage.TypeText)
	values := make([]any, 0, len(f.Options)+1)
	for _, opt := range f.Options {
		values = append(values, opt.Value)
	}
	// Draft documents and optional fields may legitimately hold no choice.
	if ctx.opts.DraftsEnabled || !f.Required {
		values = append(values, nil)
	}
	d.Enum = values
	ctx.set(f, d)
	return nil
}

func compileMerge(ctx *context, f *field.Field) error {
	// Merge containers hoist their children into the parent schema.
	return CompileInto(ctx.schema, f.Fields, ctx.opts)
}

func compileGroup(ctx *context, f *field.Field) error {
	if f.Name == "" {
		return compileMerge(ctx, f)
	}
	sub := storage.New()
	if err := CompileInto(sub, f.Fields, ctx.opts.childOptions(ctx.opts.localizationEffective(f))); err != nil {
		return err
	}
	ctx.set(f, &storage.Descriptor{Doc: sub})
	return nil
}

func compileArray(ctx *context, f *field.Field) error {
	if !f.AffectsData() {
		return nil
	}
	sub := storage.New()
	// Array elements keep an identity key so reordering stays addressable.
	sub.ElementID = true
	if err := CompileInto(sub, f.Fields, ctx.opts.childOptions(ctx.opts.localizationEffective(f))); err != nil {
		return err
	}
	d := &storage.Descriptor{List: &storage.Descriptor{Doc: sub}}
	if f.Default != nil && f.DefaultFunc == nil {
		d.Default = f.Default
	}
	ctx.set(f, d)
	return nil
}

func compileTabs(ctx *context, f *field.Field) error {
	for i := range f.Tabs {
		tab := &f.Tabs[i]
		if tab.Name == "" {
			if err := CompileInto(ctx.schema, tab.Fields, ctx.opts); err != nil {
				return err
			}
			continue
		}
		localized := tab.Localized && ctx.opts.Locales.Enabled()
		sub := storage.New()
		if err := CompileInto(sub, tab.Fields, ctx.opts.childOptions(localized)); err != nil {
			return err
		}
		d := &storage.Descriptor{Doc: sub}
		if localized && !ctx.opts.ParentIsLocalized {
			d = localize(d, ctx.opts.Locales.Locales)
		}
		ctx.schema.Set(tab.Name, d)
	}
	return nil
}

func compilePoint(ctx *context, f *field.Field) error {
	if !f.AffectsData() {
		return nil
	}
	sub := storage.New()
	sub.Set("type", &storage.Descriptor{Type: storage.TypeText, Enum: []any{"Point"}})
	coords := &storage.Descriptor{List: &storage.Descriptor{Type: storage.TypeNumber}}
	coords.Unique = f.Unique && !ctx.opts.DisableUniqueConstraints
	coords.Sparse = ctx.sparse(f)
	sub.Set("coordinates", coords)

	d := &storage.Descriptor{Doc: sub}
	if f.Default != nil && f.DefaultFunc == nil {
		d.Default = f.Default
	}

	localized := ctx.opts.localizationEffective(f) && !ctx.opts.ParentIsLocalized
	if !f.NoIndex {
		if localized {
			for _, code := range ctx.opts.Locales.Locales {
				ctx.schema.AddIndex(storage.Index{Paths: []string{f.Name + "." + code}, Kind: "2dsphere"})
			}
		} else {
			ctx.schema.AddIndex(storage.Index{Paths: []string{f.Name}, Kind: "2dsphere"})
		}
	}
	ctx.set(f, d)
	return nil
}

func compileReference(ctx *context, f *field.Field) error {
	if !f.AffectsData() {
		return nil
	}
	rel := f.Relationship
	if rel == nil || len(rel.Targets) == 0 {
		ctx.opts.log().Debug().Str("field", f.Name).Msg("compiler: reference field without targets")
		return nil
	}

	var elem *storage.Descriptor
	if len(rel.Targets) == 1 {
		elem = &storage.Descriptor{
			Type: refStorageType(ctx.opts, rel.Targets[0]),
			Ref:  rel.Targets[0],
		}
	} else {
		// Multi-target references store a tagged union; the sibling tag
		// selects each element's concrete type at read time.
		slugs := make([]any, 0, len(rel.Targets))
		valueType := refStorageType(ctx.opts, rel.Targets[0])
		for _, target := range rel.Targets {
			slugs = append(slugs, target)
			if refStorageType(ctx.opts, target) != valueType {
				valueType = storage.TypeAny
			}
		}
		union := storage.New()
		union.Set("targetModel", &storage.Descriptor{Type: storage.TypeText, Enum: slugs})
		union.Set("value", &storage.Descriptor{Type: valueType, RefPath: f.Name + ".targetModel"})
		elem = &storage.Descriptor{Doc: union}
	}

	d := &storage.Descriptor{}
	if f.Default != nil && f.DefaultFunc == nil {
		d.Default = f.Default
	}
	d.Index = f.Index || f.Unique || ctx.opts.IndexSortableFields
	d.Unique = f.Unique && !ctx.opts.DisableUniqueConstraints
	d.Sparse = ctx.sparse(f)

	if ctx.opts.localizationEffective(f) && !ctx.opts.ParentIsLocalized {
		locales := make(map[string]*storage.Descriptor, len(ctx.opts.Locales.Locales))
		for _, code := range ctx.opts.Locales.Locales {
			perLocale := elem.Clone()
			if rel.HasMany {
				perLocale = &storage.Descriptor{List: perLocale}
			}
			locales[code] = perLocale
		}
		d.Localized = true
		d.Locales = locales
	} else if rel.HasMany {
		d.List = elem
	} else {
		merged := *elem
		merged.Default = d.Default
		merged.Index = d.Index
		merged.Unique = d.Unique
		merged.Sparse = d.Sparse
		d = &merged
	}
	ctx.schema.Set(f.Name, d)
	return nil
}

func compileBlocks(ctx *context, f *field.Field) error {
	if !f.AffectsData() {
		return nil
	}
	dl := &storage.DiscriminatedList{TagKey: DiscriminatorKey}
	childOpts := ctx.opts.childOptions(ctx.opts.localizationEffective(f))

	// Inline blocks compile fresh and claim their slugs first; a field-local
	// declaration may differ from a same-slug global and must win.
	for i := range f.Blocks {
		b := &f.Blocks[i]
		if _, taken := dl.Variants[b.Slug]; taken {
			return duplicateInlineErr(f.Name, b.Slug)
		}
		shell, err := compileBlockShell(b, childOpts)
		if err != nil {
			return err
		}
		dl.Attach(b.Slug, shell)
	}

	switch f.Policy {
	case field.BlockPolicyAll:
		if ctx.opts.Blocks != nil {
			for _, slug := range ctx.opts.Blocks.Slugs() {
				if shell, ok := ctx.opts.Blocks.Shell(slug); ok {
					dl.Attach(slug, shell)
				}
			}
		}
	case field.BlockPolicySubset:
		for i := range f.BlockRefs {
			ref := &f.BlockRefs[i]
			if ref.Inline != nil {
				if _, taken := dl.Variants[ref.Inline.Slug]; taken {
					continue
				}
				shell, err := compileBlockShell(ref.Inline, childOpts)
				if err != nil {
					return err
				}
				dl.Attach(ref.Inline.Slug, shell)
				continue
			}
			if ctx.opts.Blocks == nil {
				continue
			}
			if shell, ok := ctx.opts.Blocks.Shell(ref.Slug); ok {
				dl.Attach(ref.Slug, shell)
			} else {
				// Unknown slugs were rejected upstream; the compiler trusts
				// its input and moves on.
				ctx.opts.log().Debug().
					Str("field", f.Name).
					Str("slug", ref.Slug).
					Msg("compiler: skipping unknown block reference")
			}
		}
	}

	ctx.set(f, &storage.Descriptor{Discriminated: dl})
	return nil
}

// compileBlockShell compiles an inline block declaration into a fresh
// element shell. Inline shells are never cached: two fields may declare
// different blocks under the same slug.
func compileBlockShell(b *field.Block, opts Options) (*storage.Schema, error) {
	shell := storage.New()
	shell.ElementID = true
	if err := CompileInto(shell, b.Fields, opts); err != nil {
		return nil, err
	}
	return shell, nil
}
