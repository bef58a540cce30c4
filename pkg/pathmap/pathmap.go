// Package pathmap flattens field trees into dotted-path → definition maps.
// The server map drives runtime field resolution; the client projection in
// client.go drives form generation. Only namespace-introducing nodes append
// path segments; merge containers key themselves by a synthetic index path
// that exists purely to disambiguate anonymous siblings.
package pathmap

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-schemagen/pkg/field"
)

// GlobalRoot is the reserved path root the registry's blocks flatten under.
// Fields referencing a global block copy the entry stored here instead of
// re-flattening it, which is what keeps cyclic block graphs finite.
const GlobalRoot = "__global__"

// ErrMissingCapability reports an opaque field kind that requires a
// schema-map generation capability but was configured without one. It is a
// configuration error and halts the model build.
var ErrMissingCapability = errors.New("missing schema-map capability")

// Map is the flattened server-side path map. Entries are shared by
// reference: every synthetic path pointing at a global block holds the same
// definition pointer as the registry root entry.
type Map = field.SchemaMap

// GlobalBlocks is the registry view the builder needs: declaration-ordered
// slugs and block definitions. *blocks.Registry satisfies it.
type GlobalBlocks interface {
	Slugs() []string
	Block(slug string) (field.Block, bool)
}

// Flattener builds path maps for one model configuration.
type Flattener struct {
	// Globals supplies globally declared blocks. Nil is valid; only inline
	// blocks flatten then.
	Globals GlobalBlocks
	// Locales is the model's localization configuration.
	Locales field.Localization
}

// FlattenGlobals seeds dest with one entry per global block under
// GlobalRoot, then flattens each block's fields beneath it. Roots are all
// seeded before any block's fields flatten, so blocks referencing each other
// or themselves resolve by copy instead of recursion.
func (fl *Flattener) FlattenGlobals(dest Map) error {
	if fl.Globals == nil {
		return nil
	}
	slugs := fl.Globals.Slugs()
	for _, slug := range slugs {
		b, ok := fl.Globals.Block(slug)
		if !ok {
			continue
		}
		dest[GlobalRoot+"."+slug] = blockField(b)
	}
	for _, slug := range slugs {
		root := GlobalRoot + "." + slug
		entry, ok := dest[root]
		if !ok {
			continue
		}
		if err := fl.flattenFields(entry.Fields, root, "", dest); err != nil {
			return err
		}
	}
	return nil
}

// Flatten walks fields depth-first in declaration order, recording one entry
// per definition under its dotted schema path.
func (fl *Flattener) Flatten(fields []field.Field, parentPath string, dest Map) error {
	return fl.flattenFields(fields, parentPath, "", dest)
}

func (fl *Flattener) flattenFields(fields []field.Field, parentPath, parentIndex string, dest Map) error {
	for i := range fields {
		f := &fields[i]
		idx := indexSegment(parentIndex, i)

		switch f.Kind {
		case field.KindRow, field.KindCollapsible:
			dest[joinPath(parentPath, idx)] = f
			if err := fl.flattenFields(f.Fields, parentPath, idx, dest); err != nil {
				return err
			}

		case field.KindGroup:
			if f.Name != "" && f.HasDataDescendant() {
				path := joinPath(parentPath, f.Name)
				dest[path] = f
				if err := fl.flattenFields(f.Fields, path, "", dest); err != nil {
					return err
				}
				continue
			}
			// Presentation-only groups stay transparent: children keep the
			// parent namespace.
			dest[fl.entryKey(parentPath, idx, f)] = f
			if err := fl.flattenFields(f.Fields, parentPath, idx, dest); err != nil {
				return err
			}

		case field.KindArray:
			if f.Name == "" {
				// An unnamed array cannot introduce a namespace; like an
				// unnamed group its children keep the parent one.
				dest[joinPath(parentPath, idx)] = f
				if err := fl.flattenFields(f.Fields, parentPath, idx, dest); err != nil {
					return err
				}
				continue
			}
			path := joinPath(parentPath, f.Name)
			dest[path] = f
			if err := fl.flattenFields(f.Fields, path, "", dest); err != nil {
				return err
			}

		case field.KindTabs:
			dest[joinPath(parentPath, idx)] = f
			for j := range f.Tabs {
				tab := &f.Tabs[j]
				if tab.Name != "" {
					if err := fl.flattenFields(tab.Fields, joinPath(parentPath, tab.Name), "", dest); err != nil {
						return err
					}
					continue
				}
				if err := fl.flattenFields(tab.Fields, parentPath, indexSegment(idx, j), dest); err != nil {
					return err
				}
			}

		case field.KindBlocks:
			if err := fl.flattenBlocks(f, parentPath, idx, dest); err != nil {
				return err
			}

		case field.KindRichText:
			key := fl.entryKey(parentPath, idx, f)
			dest[key] = f
			if f.RichText == nil {
				return fmt.Errorf("pathmap: rich-text field %q: %w", f.Name, ErrMissingCapability)
			}
			if err := f.RichText.GenerateSchemaMap(field.SchemaMapContext{Path: key, Map: dest}); err != nil {
				return fmt.Errorf("pathmap: rich-text field %q: %w", f.Name, err)
			}

		default:
			dest[fl.entryKey(parentPath, idx, f)] = f
		}
	}
	return nil
}

// flattenBlocks records the blocks field itself, then one synthetic entry
// per visible variant under <field path>.<slug>. Inline variants flatten in
// full; referenced globals copy the GlobalRoot entry by reference and never
// re-flatten. When the field is localization-effective every choice
// registers under each per-locale sub-path instead of one path.
func (fl *Flattener) flattenBlocks(f *field.Field, parentPath, idx string, dest Map) error {
	key := fl.entryKey(parentPath, idx, f)
	dest[key] = f

	bases := []string{key}
	if f.Localized && fl.Locales.Enabled() {
		bases = make([]string, 0, len(fl.Locales.Locales))
		for _, code := range fl.Locales.Locales {
			bases = append(bases, key+"."+code)
		}
	}

	for _, base := range bases {
		claimed := make(map[string]struct{}, len(f.Blocks))
		for i := range f.Blocks {
			b := &f.Blocks[i]
			claimed[b.Slug] = struct{}{}
			syn := base + "." + b.Slug
			dest[syn] = blockField(*b)
			if err := fl.flattenFields(b.Fields, syn, "", dest); err != nil {
				return err
			}
		}

		attachGlobal := func(slug string) {
			if _, taken := claimed[slug]; taken {
				return
			}
			if entry, ok := dest[GlobalRoot+"."+slug]; ok {
				dest[base+"."+slug] = entry
			}
		}

		switch f.Policy {
		case field.BlockPolicyAll:
			if fl.Globals != nil {
				for _, slug := range fl.Globals.Slugs() {
					attachGlobal(slug)
				}
			}
		case field.BlockPolicySubset:
			for i := range f.BlockRefs {
				ref := &f.BlockRefs[i]
				if ref.Inline != nil {
					if _, taken := claimed[ref.Inline.Slug]; taken {
						continue
					}
					claimed[ref.Inline.Slug] = struct{}{}
					syn := base + "." + ref.Inline.Slug
					dest[syn] = blockField(*ref.Inline)
					if err := fl.flattenFields(ref.Inline.Fields, syn, "", dest); err != nil {
						return err
					}
					continue
				}
				attachGlobal(ref.Slug)
			}
		}
	}
	return nil
}

// entryKey resolves a field's own map key: its dotted path when it affects
// data, its index path otherwise.
func (fl *Flattener) entryKey(parentPath, idx string, f *field.Field) string {
	if f.AffectsData() {
		return joinPath(parentPath, f.Name)
	}
	return joinPath(parentPath, idx)
}

// blockField adapts a block declaration into the definition shape path-map
// entries share with ordinary fields.
func blockField(b field.Block) *field.Field {
	return &field.Field{
		Name:   b.Slug,
		Kind:   field.KindGroup,
		Label:  b.Label,
		Fields: b.Fields,
	}
}

func indexSegment(parent string, i int) string {
	if parent == "" {
		return fmt.Sprintf("_index-%d", i)
	}
	return fmt.Sprintf("%s-%d", parent, i)
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
