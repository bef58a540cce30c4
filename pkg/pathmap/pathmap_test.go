package pathmap_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemagen/pkg/blocks"
	"github.com/goliatone/go-schemagen/pkg/compiler"
	"github.com/goliatone/go-schemagen/pkg/field"
	"github.com/goliatone/go-schemagen/pkg/pathmap"
)

func mustRegistry(t *testing.T, globals []field.Block) *blocks.Registry {
	t.Helper()
	registry, err := blocks.BuildRegistry(globals, compiler.Options{})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return registry
}

func paths(m pathmap.Map) []string {
	out := make([]string, 0, len(m))
	for path := range m {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func TestFlattenLeafAndMergeContainers(t *testing.T) {
	fields := []field.Field{
		{Kind: field.KindRow, Fields: []field.Field{
			{Name: "first", Kind: field.KindText},
			{Kind: field.KindCollapsible, Fields: []field.Field{
				{Name: "second", Kind: field.KindText},
			}},
		}},
		{Name: "title", Kind: field.KindText},
	}

	fl := &pathmap.Flattener{}
	dest := make(pathmap.Map)
	if err := fl.Flatten(fields, "", dest); err != nil {
		t.Fatalf("flatten: %v", err)
	}

	want := []string{"_index-0", "_index-0-1", "first", "second", "title"}
	if diff := cmp.Diff(want, paths(dest)); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
	if dest["first"].Name != "first" {
		t.Fatalf("merge container children should keep the parent namespace")
	}
}

func TestFlattenGroupNamespacing(t *testing.T) {
	fields := []field.Field{
		{Name: "meta", Kind: field.KindGroup, Fields: []field.Field{
			{Name: "slug", Kind: field.KindText},
		}},
		// A named group with only presentation children stays transparent.
		{Name: "chrome", Kind: field.KindGroup, Fields: []field.Field{
			{Kind: field.KindUI},
		}},
	}

	fl := &pathmap.Flattener{}
	dest := make(pathmap.Map)
	if err := fl.Flatten(fields, "", dest); err != nil {
		t.Fatalf("flatten: %v", err)
	}

	if _, ok := dest["meta.slug"]; !ok {
		t.Fatalf("group with data children should namespace its subtree, got %v", paths(dest))
	}
	if _, ok := dest["chrome.0"]; ok {
		t.Fatalf("presentation-only group must not introduce a namespace")
	}
	if _, ok := dest["_index-1-0"]; !ok {
		t.Fatalf("presentation child should key by index path, got %v", paths(dest))
	}
}

func TestFlattenArrayAndTabs(t *testing.T) {
	fields := []field.Field{
		{Name: "items", Kind: field.KindArray, Fields: []field.Field{
			{Name: "qty", Kind: field.KindNumber},
		}},
		{Kind: field.KindTabs, Tabs: []field.Tab{
			{Name: "seo", Fields: []field.Field{
				{Name: "title", Kind: field.KindText},
			}},
			{Fields: []field.Field{
				{Name: "plain", Kind: field.KindText},
			}},
		}},
	}

	fl := &pathmap.Flattener{}
	dest := make(pathmap.Map)
	if err := fl.Flatten(fields, "", dest); err != nil {
		t.Fatalf("flatten: %v", err)
	}

	for _, path := range []string{"items", "items.qty", "_index-1", "seo.title", "plain"} {
		if _, ok := dest[path]; !ok {
			t.Fatalf("missing path %q, got %v", path, paths(dest))
		}
	}
	if _, ok := dest["plain.title"]; ok {
		t.Fatalf("unnamed tab children should flatten into the parent namespace")
	}
}

func TestFlattenUnnamedArrayStaysTransparent(t *testing.T) {
	fields := []field.Field{{Kind: field.KindArray, Fields: []field.Field{
		{Name: "qty", Kind: field.KindNumber},
	}}}

	fl := &pathmap.Flattener{}
	dest := make(pathmap.Map)
	if err := fl.Flatten(fields, "", dest); err != nil {
		t.Fatalf("flatten: %v", err)
	}

	want := []string{"_index-0", "qty"}
	if diff := cmp.Diff(want, paths(dest)); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
}

func TestFlattenInlineBlocks(t *testing.T) {
	fields := []field.Field{{Name: "layout", Kind: field.KindBlocks, Blocks: []field.Block{
		{Slug: "hero", Fields: []field.Field{
			{Name: "heading", Kind: field.KindText},
		}},
	}}}

	fl := &pathmap.Flattener{}
	dest := make(pathmap.Map)
	if err := fl.Flatten(fields, "", dest); err != nil {
		t.Fatalf("flatten: %v", err)
	}

	want := []string{"layout", "layout.hero", "layout.hero.heading"}
	if diff := cmp.Diff(want, paths(dest)); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
	if dest["layout.hero"].Kind != field.KindGroup {
		t.Fatalf("block entries should adapt to group definitions")
	}
}

func TestFlattenGlobalBlockSharesEntry(t *testing.T) {
	registry := mustRegistry(t, []field.Block{
		{Slug: "quote", Fields: []field.Field{
			{Name: "text", Kind: field.KindTextarea},
		}},
	})

	fields := []field.Field{{Name: "layout", Kind: field.KindBlocks, Policy: field.BlockPolicyAll}}

	fl := &pathmap.Flattener{Globals: registry}
	dest := make(pathmap.Map)
	if err := fl.FlattenGlobals(dest); err != nil {
		t.Fatalf("flatten globals: %v", err)
	}
	if err := fl.Flatten(fields, "", dest); err != nil {
		t.Fatalf("flatten: %v", err)
	}

	global, ok := dest["__global__.quote"]
	if !ok {
		t.Fatalf("missing global root entry, got %v", paths(dest))
	}
	if dest["layout.quote"] != global {
		t.Fatalf("referenced globals should share the registry entry by pointer")
	}
	if _, ok := dest["layout.quote.text"]; ok {
		t.Fatalf("referenced globals must not re-flatten under the field path")
	}
	if _, ok := dest["__global__.quote.text"]; !ok {
		t.Fatalf("global fields should flatten once under the reserved root")
	}
}

func TestFlattenGlobalsTerminatesOnCycles(t *testing.T) {
	registry := mustRegistry(t, []field.Block{
		{Slug: "x", Fields: []field.Field{
			{Name: "content", Kind: field.KindBlocks, Policy: field.BlockPolicyAll},
		}},
	})

	fl := &pathmap.Flattener{Globals: registry}
	dest := make(pathmap.Map)
	if err := fl.FlattenGlobals(dest); err != nil {
		t.Fatalf("flatten globals: %v", err)
	}

	if dest["__global__.x.content.x"] != dest["__global__.x"] {
		t.Fatalf("self reference should resolve to the root entry")
	}
	want := []string{"__global__.x", "__global__.x.content", "__global__.x.content.x"}
	if diff := cmp.Diff(want, paths(dest)); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
}

func TestFlattenInlineShadowsGlobal(t *testing.T) {
	registry := mustRegistry(t, []field.Block{
		{Slug: "hero", Fields: []field.Field{
			{Name: "fromGlobal", Kind: field.KindText},
		}},
	})

	fields := []field.Field{{Name: "layout", Kind: field.KindBlocks, Policy: field.BlockPolicyAll,
		Blocks: []field.Block{
			{Slug: "hero", Fields: []field.Field{
				{Name: "fromInline", Kind: field.KindText},
			}},
		}}}

	fl := &pathmap.Flattener{Globals: registry}
	dest := make(pathmap.Map)
	if err := fl.FlattenGlobals(dest); err != nil {
		t.Fatalf("flatten globals: %v", err)
	}
	if err := fl.Flatten(fields, "", dest); err != nil {
		t.Fatalf("flatten: %v", err)
	}

	if _, ok := dest["layout.hero.fromInline"]; !ok {
		t.Fatalf("inline variant should flatten in full, got %v", paths(dest))
	}
	if dest["layout.hero"] == dest["__global__.hero"] {
		t.Fatalf("inline variant must shadow the global entry")
	}
}

func TestFlattenLocalizedBlocks(t *testing.T) {
	fields := []field.Field{{Name: "layout", Kind: field.KindBlocks, Localized: true,
		Blocks: []field.Block{
			{Slug: "hero", Fields: []field.Field{
				{Name: "heading", Kind: field.KindText},
			}},
		}}}

	fl := &pathmap.Flattener{Locales: field.Localization{Locales: []string{"en", "es"}}}
	dest := make(pathmap.Map)
	if err := fl.Flatten(fields, "", dest); err != nil {
		t.Fatalf("flatten: %v", err)
	}

	for _, path := range []string{"layout.en.hero.heading", "layout.es.hero.heading"} {
		if _, ok := dest[path]; !ok {
			t.Fatalf("missing locale path %q, got %v", path, paths(dest))
		}
	}
	if _, ok := dest["layout.hero"]; ok {
		t.Fatalf("localized blocks must not register a bare variant path")
	}
}

// recordingGenerator captures the path it was invoked with and registers one
// nested entry, the way a real editor plug-in contributes its node types.
type recordingGenerator struct {
	path string
}

func (g *recordingGenerator) GenerateSchemaMap(ctx field.SchemaMapContext) error {
	g.path = ctx.Path
	ctx.Map[ctx.Path+".nodes.upload"] = &field.Field{Name: "upload", Kind: field.KindGroup}
	return nil
}

func TestFlattenRichTextDelegates(t *testing.T) {
	gen := &recordingGenerator{}
	fields := []field.Field{{Name: "body", Kind: field.KindRichText, RichText: gen}}

	fl := &pathmap.Flattener{}
	dest := make(pathmap.Map)
	if err := fl.Flatten(fields, "", dest); err != nil {
		t.Fatalf("flatten: %v", err)
	}

	if gen.path != "body" {
		t.Fatalf("generator should receive the field path, got %q", gen.path)
	}
	if _, ok := dest["body.nodes.upload"]; !ok {
		t.Fatalf("generator entries should land in the shared map, got %v", paths(dest))
	}
}

func TestFlattenRichTextWithoutCapability(t *testing.T) {
	fields := []field.Field{{Name: "body", Kind: field.KindRichText}}

	fl := &pathmap.Flattener{}
	err := fl.Flatten(fields, "", make(pathmap.Map))
	if !errors.Is(err, pathmap.ErrMissingCapability) {
		t.Fatalf("expected ErrMissingCapability, got %v", err)
	}
}
