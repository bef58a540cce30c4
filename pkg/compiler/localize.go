package compiler

import "github.com/goliatone/go-schemagen/pkg/storage"

// localize replaces a descriptor with a record keyed by every locale code,
// each locale holding a structural copy of the original, marked localized.
// The copies share discriminated block shells by pointer (see
// storage.Descriptor.Clone), so localizing a blocks field stays finite even
// when its variants reference each other.
func localize(d *storage.Descriptor, codes []string) *storage.Descriptor {
	locales := make(map[string]*storage.Descriptor, len(codes))
	for _, code := range codes {
		locales[code] = d.Clone()
	}
	return &storage.Descriptor{Localized: true, Locales: locales}
}
