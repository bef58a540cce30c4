// Package compiler turns a field tree into the storage schema a document
// database driver consumes. Compilation is synchronous, deterministic, and
// runs once per record type at process start; malformed configuration
// surfaces as an error before any schema reaches the storage engine.
package compiler

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-schemagen/pkg/field"
	"github.com/goliatone/go-schemagen/pkg/storage"
)

// ErrDuplicateBlockSlug reports two inline blocks sharing a slug on the same
// field. Same-slug collisions across precedence levels are legal (inline
// wins); collisions at one level are configuration errors.
var ErrDuplicateBlockSlug = errors.New("duplicate inline block slug")

// DiscriminatorKey is the element key storing a block element's variant slug.
const DiscriminatorKey = "blockType"

// Compile builds the storage schema for a top-level record type. Unless
// opts.AllowIDField is set, a field literally named "id" becomes the
// document's primary key and leaves the ordinary field list.
func Compile(fields []field.Field, opts Options) (*storage.Schema, error) {
	schema := storage.New()
	schema.Raw = opts.Raw

	rest := fields
	if !opts.AllowIDField {
		rest = make([]field.Field, 0, len(fields))
		for _, f := range fields {
			if f.Name == "id" && f.Kind != field.KindUI && !f.Virtual {
				schema.ID = idDescriptor(&f, opts)
				continue
			}
			rest = append(rest, f)
		}
	}
	if schema.ID == nil {
		schema.ID = &storage.Descriptor{Type: idStorageType(opts.IDType)}
	}

	if err := CompileInto(schema, rest, opts); err != nil {
		return nil, err
	}

	if opts.Timestamps {
		schema.Set("createdAt", &storage.Descriptor{Type: storage.TypeDate, Index: true})
		schema.Set("updatedAt", &storage.Descriptor{Type: storage.TypeDate, Index: true})
	}

	expandCompoundIndexes(schema, opts)
	return schema, nil
}

// CompileInto compiles fields into an existing schema. The block registry
// uses it to populate pre-allocated shells during its second pass; the
// compiler itself recurses through it for every container kind.
func CompileInto(schema *storage.Schema, fields []field.Field, opts Options) error {
	ctx := &context{schema: schema, opts: opts}
	for i := range fields {
		f := &fields[i]
		if f.Kind == field.KindUI || f.Virtual {
			continue
		}
		gen, ok := generators[f.Kind]
		if !ok {
			// Unknown kinds come from newer or older configuration
			// revisions; skipping keeps schemas compiling across versions.
			opts.log().Debug().
				Str("field", f.Name).
				Str("kind", string(f.Kind)).
				Msg("compiler: skipping unrecognized field kind")
			continue
		}
		if err := gen(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

type context struct {
	schema *storage.Schema
	opts   Options
}

// idDescriptor resolves the primary-key descriptor for a custom id field.
// The model-level policy wins when explicit; otherwise the field's own kind
// decides.
func idDescriptor(f *field.Field, opts Options) *storage.Descriptor {
	policy := opts.IDType
	if policy == "" || policy == field.IDSurrogate {
		switch f.Kind {
		case field.KindNumber:
			policy = field.IDNumber
		case field.KindText:
			policy = field.IDText
		default:
			policy = field.IDSurrogate
		}
	}
	d := &storage.Descriptor{Type: idStorageType(policy)}
	if f.Default != nil && f.DefaultFunc == nil {
		d.Default = f.Default
	}
	return d
}

func idStorageType(policy field.IDType) storage.Type {
	switch policy {
	case field.IDNumber:
		return storage.TypeNumber
	case field.IDBigInt:
		return storage.TypeBigInt
	case field.IDText:
		return storage.TypeText
	default:
		return storage.TypeSurrogate
	}
}

// refStorageType resolves the stored value type for a reference to target,
// following the target model's identifier policy.
func refStorageType(opts Options, target string) storage.Type {
	return idStorageType(opts.IDTypes[target])
}

func duplicateInlineErr(fieldName, slug string) error {
	return fmt.Errorf("compiler: field %q declares inline block %q twice: %w",
		fieldName, slug, ErrDuplicateBlockSlug)
}
