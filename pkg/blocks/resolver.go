package blocks

import "github.com/goliatone/go-schemagen/pkg/field"

// Resolve looks up the concrete block a stored discriminator selects for f.
// Inline declarations win, then the field's reference policy: all-global
// searches the whole registry, explicit-subset only exposes listed entries.
// A miss returns false, never an error; an unrecognized stored slug is data
// drift for the caller to handle. Resolve never mutates the registry and is
// safe for concurrent readers.
func (r *Registry) Resolve(slug string, f *field.Field) (field.Block, bool) {
	for i := range f.Blocks {
		if f.Blocks[i].Slug == slug {
			return f.Blocks[i], true
		}
	}
	switch f.Policy {
	case field.BlockPolicyAll:
		return r.Block(slug)
	case field.BlockPolicySubset:
		for i := range f.BlockRefs {
			ref := &f.BlockRefs[i]
			if ref.Inline != nil {
				if ref.Inline.Slug == slug {
					return *ref.Inline, true
				}
				continue
			}
			if ref.Slug == slug {
				return r.Block(slug)
			}
		}
	}
	return field.Block{}, false
}

// Available returns the de-duplicated slug set visible to f, in precedence
// order: inline declarations first, then policy-sourced slugs.
func (r *Registry) Available(f *field.Field) []string {
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
		for _, slug := range r.Slugs() {
			add(slug)
		}
	case field.BlockPolicySubset:
		for i := range f.BlockRefs {
			ref := &f.BlockRefs[i]
			if ref.Inline != nil {
				add(ref.Inline.Slug)
				continue
			}
			if _, ok := r.Block(ref.Slug); ok {
				add(ref.Slug)
			}
		}
	}
	return out
}
