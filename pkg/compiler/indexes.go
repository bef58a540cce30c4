package compiler

import (
	"strings"

	"github.com/goliatone/go-schemagen/pkg/storage"
)

// expandCompoundIndexes registers the model's compound indexes on a compiled
// schema. Any path reaching under a localized ancestor fans the whole index
// out into one copy per locale; the bare, locale-less path never appears.
func expandCompoundIndexes(schema *storage.Schema, opts Options) {
	for _, ci := range opts.CompoundIndexes {
		if len(ci.Paths) == 0 {
			continue
		}
		unique := ci.Unique && !opts.DisableUniqueConstraints

		localized := false
		for _, path := range ci.Paths {
			if _, ok := localizedDepth(schema, path); ok {
				localized = true
				break
			}
		}
		if !localized || !opts.Locales.Enabled() {
			schema.AddIndex(storage.Index{Paths: append([]string(nil), ci.Paths...), Unique: unique})
			continue
		}

		for _, code := range opts.Locales.Locales {
			paths := make([]string, 0, len(ci.Paths))
			for _, path := range ci.Paths {
				if depth, ok := localizedDepth(schema, path); ok {
					paths = append(paths, insertLocale(path, depth, code))
				} else {
					paths = append(paths, path)
				}
			}
			schema.AddIndex(storage.Index{Paths: paths, Unique: unique})
		}
	}
}

// localizedDepth walks path through the schema and returns the segment index
// of the first localized ancestor, when one exists.
func localizedDepth(schema *storage.Schema, path string) (int, bool) {
	segments := strings.Split(path, ".")
	current := schema
	for i, segment := range segments {
		if current == nil {
			return 0, false
		}
		d, ok := current.Get(segment)
		if !ok {
			return 0, false
		}
		if d.Localized {
			return i, true
		}
		current = descend(d)
	}
	return 0, false
}

// descend resolves the sub-schema a dotted path continues into.
func descend(d *storage.Descriptor) *storage.Schema {
	switch {
	case d.Doc != nil:
		return d.Doc
	case d.List != nil && d.List.Doc != nil:
		return d.List.Doc
	default:
		return nil
	}
}

// insertLocale rewrites a.b.c into a.b.<code>.c when depth points at b.
func insertLocale(path string, depth int, code string) string {
	segments := strings.Split(path, ".")
	out := make([]string, 0, len(segments)+1)
	out = append(out, segments[:depth+1]...)
	out = append(out, code)
	out = append(out, segments[depth+1:]...)
	return strings.Join(out, ".")
}
