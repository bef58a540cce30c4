// Package openapi derives record field trees from OpenAPI component
// schemas, so models maintained as API contracts can feed the schema
// compiler without a parallel hand-written definition.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-schemagen/pkg/field"
)

// Adapt loads an OpenAPI document and converts the named component schema
// into a field tree. Unsupported constructs are skipped rather than
// rejected; the result is a best-effort content model the caller can refine.
func Adapt(ctx context.Context, data []byte, component string) ([]field.Field, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Components == nil {
		return nil, errors.New("openapi: document has no components")
	}
	ref, ok := spec.Components.Schemas[component]
	if !ok {
		return nil, fmt.Errorf("openapi: unknown component schema %q", component)
	}
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("openapi: component schema %q is empty", component)
	}
	return convertObject(ref.Value), nil
}

// convertObject maps an object schema's properties to fields. Property maps
// are unordered, so fields convert in sorted name order to keep the derived
// tree deterministic.
func convertObject(src *openapi3.Schema) []field.Field {
	if len(src.Properties) == 0 {
		return nil
	}
	requiredSet := make(map[string]struct{}, len(src.Required))
	for _, name := range src.Required {
		requiredSet[name] = struct{}{}
	}

	names := make([]string, 0, len(src.Properties))
	for name := range src.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]field.Field, 0, len(names))
	for _, name := range names {
		ref := src.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		_, required := requiredSet[name]
		f, ok := convertProperty(name, ref.Value, required)
		if !ok {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

func convertProperty(name string, src *openapi3.Schema, required bool) (field.Field, bool) {
	f := field.Field{
		Name:     name,
		Label:    src.Title,
		Required: required,
		Default:  src.Default,
		Admin:    field.Admin{Description: src.Description},
	}

	switch schemaType(src) {
	case "string":
		if len(src.Enum) > 0 {
			f.Kind = field.KindSelect
			for _, value := range src.Enum {
				if s, ok := value.(string); ok {
					f.Options = append(f.Options, field.Option{Label: s, Value: s})
				}
			}
			return f, true
		}
		switch src.Format {
		case "date", "date-time":
			f.Kind = field.KindDate
		case "email":
			f.Kind = field.KindEmail
		default:
			f.Kind = field.KindText
		}
		return f, true
	case "integer", "number":
		f.Kind = field.KindNumber
		return f, true
	case "boolean":
		f.Kind = field.KindCheckbox
		return f, true
	case "array":
		if src.Items == nil || src.Items.Value == nil {
			return field.Field{}, false
		}
		f.Kind = field.KindArray
		item := src.Items.Value
		if schemaType(item) == "object" {
			f.Fields = convertObject(item)
		} else if nested, ok := convertProperty("value", item, false); ok {
			f.Fields = []field.Field{nested}
		}
		return f, true
	case "object", "":
		if len(src.Properties) == 0 {
			// Free-form objects persist as untyped JSON.
			f.Kind = field.KindJSON
			return f, true
		}
		f.Kind = field.KindGroup
		f.Fields = convertObject(src)
		return f, true
	default:
		return field.Field{}, false
	}
}

func schemaType(src *openapi3.Schema) string {
	if src.Type == nil {
		return ""
	}
	values := src.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
