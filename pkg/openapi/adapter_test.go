package openapi_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemagen/pkg/field"
	"github.com/goliatone/go-schemagen/pkg/openapi"
)

const articleSpec = `{
  "openapi": "3.0.3",
  "info": {"title": "content api", "version": "1.0.0"},
  "paths": {},
  "components": {
    "schemas": {
      "Article": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title": {"type": "string", "title": "Title"},
          "views": {"type": "integer"},
          "publishedAt": {"type": "string", "format": "date-time"},
          "contact": {"type": "string", "format": "email"},
          "featured": {"type": "boolean"},
          "status": {"type": "string", "enum": ["draft", "published"]},
          "meta": {
            "type": "object",
            "properties": {"slug": {"type": "string"}}
          },
          "extra": {"type": "object"},
          "tags": {"type": "array", "items": {"type": "string"}},
          "sections": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {"heading": {"type": "string"}}
            }
          }
        }
      }
    }
  }
}`

func TestAdapt(t *testing.T) {
	fields, err := openapi.Adapt(context.Background(), []byte(articleSpec), "Article")
	if err != nil {
		t.Fatalf("adapt: %v", err)
	}

	byName := make(map[string]field.Field, len(fields))
	var names []string
	for _, f := range fields {
		byName[f.Name] = f
		names = append(names, f.Name)
	}

	// Properties convert in sorted name order so repeated runs agree.
	wantNames := []string{
		"contact", "extra", "featured", "meta", "publishedAt",
		"sections", "status", "tags", "title", "views",
	}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("field order (-want +got):\n%s", diff)
	}

	title := byName["title"]
	if title.Kind != field.KindText || !title.Required || title.Label != "Title" {
		t.Fatalf("title: %+v", title)
	}
	if byName["views"].Kind != field.KindNumber {
		t.Fatalf("views: %+v", byName["views"])
	}
	if byName["publishedAt"].Kind != field.KindDate {
		t.Fatalf("publishedAt: %+v", byName["publishedAt"])
	}
	if byName["contact"].Kind != field.KindEmail {
		t.Fatalf("contact: %+v", byName["contact"])
	}
	if byName["featured"].Kind != field.KindCheckbox {
		t.Fatalf("featured: %+v", byName["featured"])
	}

	status := byName["status"]
	wantOpts := []field.Option{
		{Label: "draft", Value: "draft"},
		{Label: "published", Value: "published"},
	}
	if status.Kind != field.KindSelect {
		t.Fatalf("status: %+v", status)
	}
	if diff := cmp.Diff(wantOpts, status.Options); diff != "" {
		t.Fatalf("status options (-want +got):\n%s", diff)
	}

	meta := byName["meta"]
	if meta.Kind != field.KindGroup || len(meta.Fields) != 1 || meta.Fields[0].Name != "slug" {
		t.Fatalf("meta: %+v", meta)
	}
	if byName["extra"].Kind != field.KindJSON {
		t.Fatalf("free-form objects should persist as json, got %+v", byName["extra"])
	}

	tags := byName["tags"]
	if tags.Kind != field.KindArray || len(tags.Fields) != 1 || tags.Fields[0].Name != "value" {
		t.Fatalf("scalar arrays should nest a value field, got %+v", tags)
	}

	sections := byName["sections"]
	if sections.Kind != field.KindArray || len(sections.Fields) != 1 || sections.Fields[0].Name != "heading" {
		t.Fatalf("object arrays should convert the item schema, got %+v", sections)
	}
}

func TestAdaptUnknownComponent(t *testing.T) {
	_, err := openapi.Adapt(context.Background(), []byte(articleSpec), "Missing")
	if err == nil {
		t.Fatalf("expected error for unknown component")
	}
}

func TestAdaptEmptyPayload(t *testing.T) {
	_, err := openapi.Adapt(context.Background(), nil, "Article")
	if err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
