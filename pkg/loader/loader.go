// Package loader reads declarative record definitions from YAML or JSON
// files and produces sanitized field trees. The compiler trusts its input,
// so the loader is where raw configuration gets checked: duplicate record
// slugs, unknown block references in explicit-subset policies, and unknown
// default generators all fail here.
package loader

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemagen/pkg/field"
)

// Record is one loaded record-type definition.
type Record struct {
	Slug       string
	Auth       bool
	Timestamps bool
	IDType     field.IDType
	Fields     []field.Field
	Indexes    []field.CompoundIndex
}

// Definition is the merged result of every definition file in a tree.
type Definition struct {
	Records []Record
	Globals []field.Block
	Locales field.Localization
}

// Record looks up a loaded record by slug.
func (d *Definition) Record(slug string) (Record, bool) {
	for _, rec := range d.Records {
		if rec.Slug == slug {
			return rec, true
		}
	}
	return Record{}, false
}

// LoadFS walks fsys and parses every .yaml/.yml/.json definition file,
// merging records, global blocks, and locale configuration. Files parse in
// path order so the merged declaration order is stable.
func LoadFS(fsys fs.FS) (*Definition, error) {
	def := &Definition{}
	if fsys == nil {
		return def, nil
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	seenRecords := make(map[string]string)
	seenGlobals := make(map[string]string)
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w", path, err)
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("loader: parse %s: %w", path, err)
		}

		for _, raw := range doc.Records {
			slug := strings.TrimSpace(raw.Slug)
			if slug == "" {
				return nil, fmt.Errorf("loader: file %s defines a record without a slug", path)
			}
			if prev, dup := seenRecords[slug]; dup {
				return nil, fmt.Errorf("loader: duplicate record %q (files %s and %s)", slug, prev, path)
			}
			seenRecords[slug] = path

			rec, err := convertRecord(raw, path)
			if err != nil {
				return nil, err
			}
			def.Records = append(def.Records, rec)
		}

		for _, raw := range doc.Blocks {
			slug := strings.TrimSpace(raw.Slug)
			if slug == "" {
				return nil, fmt.Errorf("loader: file %s defines a block without a slug", path)
			}
			if prev, dup := seenGlobals[slug]; dup {
				return nil, fmt.Errorf("loader: duplicate global block %q (files %s and %s)", slug, prev, path)
			}
			seenGlobals[slug] = path

			block, err := convertBlock(raw, path)
			if err != nil {
				return nil, err
			}
			def.Globals = append(def.Globals, block)
		}

		if len(doc.Locales) > 0 {
			if def.Locales.Enabled() {
				return nil, fmt.Errorf("loader: file %s redefines locales", path)
			}
			def.Locales = field.Localization{Locales: doc.Locales}
		}
	}

	if err := checkBlockReferences(def); err != nil {
		return nil, err
	}
	return def, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

// checkBlockReferences rejects explicit-subset references to unknown global
// slugs. The compiler silently drops them by design, so the loader is the
// one place unvalidated input gets caught.
func checkBlockReferences(def *Definition) error {
	known := make(map[string]struct{}, len(def.Globals))
	for _, b := range def.Globals {
		known[b.Slug] = struct{}{}
	}

	var walk func(owner string, fields []field.Field) error
	walk = func(owner string, fields []field.Field) error {
		for i := range fields {
			f := &fields[i]
			if f.Kind == field.KindBlocks && f.Policy == field.BlockPolicySubset {
				for _, ref := range f.BlockRefs {
					if ref.Inline != nil {
						continue
					}
					if _, ok := known[ref.Slug]; !ok {
						return fmt.Errorf("loader: %s: field %q references unknown block %q", owner, f.Name, ref.Slug)
					}
				}
			}
			for j := range f.Blocks {
				if err := walk(owner, f.Blocks[j].Fields); err != nil {
					return err
				}
			}
			for j := range f.Tabs {
				if err := walk(owner, f.Tabs[j].Fields); err != nil {
					return err
				}
			}
			if err := walk(owner, f.Fields); err != nil {
				return err
			}
		}
		return nil
	}

	for _, rec := range def.Records {
		if err := walk("record "+rec.Slug, rec.Fields); err != nil {
			return err
		}
	}
	for _, b := range def.Globals {
		if err := walk("block "+b.Slug, b.Fields); err != nil {
			return err
		}
	}
	return nil
}

// generators maps declared default-generator names to implementations.
// Generated values are runtime-only; the compiler never persists them.
var generators = map[string]func() any{
	"uuid": func() any { return uuid.NewString() },
}
