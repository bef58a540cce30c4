package blocks_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemagen/pkg/blocks"
	"github.com/goliatone/go-schemagen/pkg/compiler"
	"github.com/goliatone/go-schemagen/pkg/field"
)

func TestBuildRegistryBreaksCycles(t *testing.T) {
	// x offers every registered block inside itself, so it refers to both
	// itself and y before either is fully populated.
	globals := []field.Block{
		{Slug: "x", Fields: []field.Field{
			{Name: "content", Kind: field.KindBlocks, Policy: field.BlockPolicyAll},
		}},
		{Slug: "y", Fields: []field.Field{
			{Name: "text", Kind: field.KindText},
		}},
	}

	registry, err := blocks.BuildRegistry(globals, compiler.Options{})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	shell, ok := registry.Shell("x")
	if !ok {
		t.Fatalf("missing shell for x")
	}
	content, ok := shell.Get("content")
	if !ok || content.Discriminated == nil {
		t.Fatalf("x.content should be a discriminated list, got %+v", content)
	}
	if diff := cmp.Diff([]string{"x", "y"}, content.Discriminated.Order); diff != "" {
		t.Fatalf("x.content choices (-want +got):\n%s", diff)
	}

	// The self-referential variant is the registry shell itself, not a copy.
	if content.Discriminated.Variants["x"] != shell {
		t.Fatalf("self reference should share the registry shell")
	}

	yShell, _ := registry.Shell("y")
	if content.Discriminated.Variants["y"] != yShell {
		t.Fatalf("sibling reference should share the registry shell")
	}
}

func TestBuildRegistryPopulatesShells(t *testing.T) {
	globals := []field.Block{
		{Slug: "hero", Fields: []field.Field{
			{Name: "heading", Kind: field.KindText, Required: true},
		}},
	}
	registry, err := blocks.BuildRegistry(globals, compiler.Options{})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	shell, _ := registry.Shell("hero")
	if !shell.ElementID {
		t.Fatalf("block shells should carry an element identity key")
	}
	if _, ok := shell.Get("heading"); !ok {
		t.Fatalf("second pass should populate the shell fields")
	}
}

func TestBuildRegistryDuplicateSlug(t *testing.T) {
	globals := []field.Block{{Slug: "a"}, {Slug: "a"}}
	_, err := blocks.BuildRegistry(globals, compiler.Options{})
	if !errors.Is(err, blocks.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestSlugsPreserveRegistrationOrder(t *testing.T) {
	globals := []field.Block{{Slug: "c"}, {Slug: "a"}, {Slug: "b"}}
	registry, err := blocks.BuildRegistry(globals, compiler.Options{})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, registry.Slugs()); diff != "" {
		t.Fatalf("slugs (-want +got):\n%s", diff)
	}
}

func TestResolveInlineShadowsGlobal(t *testing.T) {
	globals := []field.Block{
		{Slug: "x", Fields: []field.Field{{Name: "fromGlobal", Kind: field.KindText}}},
	}
	registry, err := blocks.BuildRegistry(globals, compiler.Options{})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	f := &field.Field{
		Name:   "layout",
		Kind:   field.KindBlocks,
		Policy: field.BlockPolicyAll,
		Blocks: []field.Block{
			{Slug: "x", Fields: []field.Field{{Name: "fromInline", Kind: field.KindText}}},
		},
	}
	block, ok := registry.Resolve("x", f)
	if !ok {
		t.Fatalf("expected to resolve x")
	}
	if len(block.Fields) != 1 || block.Fields[0].Name != "fromInline" {
		t.Fatalf("inline definition should shadow the global, got %+v", block.Fields)
	}
}

func TestResolvePolicies(t *testing.T) {
	globals := []field.Block{
		{Slug: "x", Fields: []field.Field{{Name: "t", Kind: field.KindText}}},
		{Slug: "y", Fields: []field.Field{{Name: "t", Kind: field.KindText}}},
	}
	registry, err := blocks.BuildRegistry(globals, compiler.Options{})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	inlineOnly := &field.Field{Name: "layout", Kind: field.KindBlocks, Blocks: []field.Block{
		{Slug: "a"}, {Slug: "b"},
	}}
	if _, ok := registry.Resolve("c", inlineOnly); ok {
		t.Fatalf("inline-only field must not resolve unlisted slugs")
	}
	if _, ok := registry.Resolve("x", inlineOnly); ok {
		t.Fatalf("inline-only field must not fall back to the registry")
	}

	all := &field.Field{Name: "layout", Kind: field.KindBlocks, Policy: field.BlockPolicyAll}
	if _, ok := registry.Resolve("y", all); !ok {
		t.Fatalf("all policy should resolve any registered slug")
	}

	subset := &field.Field{Name: "layout", Kind: field.KindBlocks, Policy: field.BlockPolicySubset,
		BlockRefs: []field.BlockRef{{Slug: "y"}}}
	if _, ok := registry.Resolve("y", subset); !ok {
		t.Fatalf("subset should resolve listed slugs")
	}
	if _, ok := registry.Resolve("x", subset); ok {
		t.Fatalf("subset must not resolve unlisted slugs")
	}
}

func TestAvailableDeduplicates(t *testing.T) {
	globals := []field.Block{
		{Slug: "x"},
		{Slug: "y"},
	}
	registry, err := blocks.BuildRegistry(globals, compiler.Options{})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	f := &field.Field{
		Name:   "layout",
		Kind:   field.KindBlocks,
		Policy: field.BlockPolicyAll,
		Blocks: []field.Block{{Slug: "x"}},
	}
	if diff := cmp.Diff([]string{"x", "y"}, registry.Available(f)); diff != "" {
		t.Fatalf("available slugs (-want +got):\n%s", diff)
	}
}
