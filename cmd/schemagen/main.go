// Command schemagen compiles declarative record definitions into storage
// schemas and path maps, printing the result as JSON. It is a thin front end
// over pkg/loader, pkg/blocks, pkg/compiler, and pkg/pathmap.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-schemagen/pkg/blocks"
	"github.com/goliatone/go-schemagen/pkg/compiler"
	"github.com/goliatone/go-schemagen/pkg/field"
	"github.com/goliatone/go-schemagen/pkg/loader"
	"github.com/goliatone/go-schemagen/pkg/pathmap"
)

func main() {
	defs := flag.String("defs", "definitions", "directory holding record definition files")
	record := flag.String("record", "", "record slug to compile (prompts when empty)")
	output := flag.String("output", "schema", "what to emit: schema, blocks, pathmap, client")
	verbose := flag.Bool("verbose", false, "log compiler diagnostics to stderr")
	flag.Parse()

	if err := run(*defs, *record, *output, *verbose); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "schemagen: %v\n", err)
		os.Exit(1)
	}
}

func run(defs, record, output string, verbose bool) error {
	def, err := loader.LoadFS(os.DirFS(defs))
	if err != nil {
		return err
	}
	if len(def.Records) == 0 {
		return fmt.Errorf("no records defined under %s", defs)
	}

	var logger *zerolog.Logger
	if verbose {
		l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		logger = &l
	}

	idTypes := make(map[string]field.IDType, len(def.Records))
	for _, rec := range def.Records {
		if rec.IDType != "" {
			idTypes[rec.Slug] = rec.IDType
		}
	}

	registry, err := blocks.BuildRegistry(def.Globals, compiler.Options{
		Locales: def.Locales,
		IDTypes: idTypes,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if output == "blocks" {
		shells := make(map[string]any, len(registry.Slugs()))
		for _, slug := range registry.Slugs() {
			shell, _ := registry.Shell(slug)
			shells[slug] = shell
		}
		return emit(shells)
	}

	if record == "" {
		slugs := make([]string, 0, len(def.Records))
		for _, rec := range def.Records {
			slugs = append(slugs, rec.Slug)
		}
		prompt := &survey.Select{Message: "Record type:", Options: slugs}
		if err := survey.AskOne(prompt, &record); err != nil {
			return err
		}
	}

	rec, ok := def.Record(record)
	if !ok {
		return fmt.Errorf("unknown record %q", record)
	}

	switch output {
	case "schema":
		schema, err := compiler.Compile(rec.Fields, compiler.Options{
			Locales:         def.Locales,
			IDType:          rec.IDType,
			IDTypes:         idTypes,
			Timestamps:      rec.Timestamps,
			CompoundIndexes: rec.Indexes,
			Blocks:          registry,
			Logger:          logger,
		})
		if err != nil {
			return err
		}
		return emit(schema)
	case "pathmap":
		fl := &pathmap.Flattener{Globals: registry, Locales: def.Locales}
		dest := make(pathmap.Map)
		if err := fl.FlattenGlobals(dest); err != nil {
			return err
		}
		if err := fl.Flatten(rec.Fields, "", dest); err != nil {
			return err
		}
		// Definitions carry generator funcs, so emit a path → kind view.
		view := make(map[string]string, len(dest))
		for path, f := range dest {
			view[path] = string(f.Kind)
		}
		return emit(view)
	case "client":
		fl := &pathmap.Flattener{Globals: registry, Locales: def.Locales}
		clientMap, err := fl.FlattenClient(rec.Fields, pathmap.ClientOptions{Auth: rec.Auth})
		if err != nil {
			return err
		}
		return emit(clientMap)
	default:
		return fmt.Errorf("unknown output %q", output)
	}
}

func emit(v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}
