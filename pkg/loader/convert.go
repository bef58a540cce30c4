package loader

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemagen/pkg/field"
)

// document is the raw file shape. YAML is a superset of JSON, so one parser
// covers both extensions.
type document struct {
	Records []rawRecord `yaml:"records"`
	Blocks  []rawBlock  `yaml:"blocks"`
	Locales []string    `yaml:"locales"`
}

type rawRecord struct {
	Slug       string     `yaml:"slug"`
	Auth       bool       `yaml:"auth"`
	Timestamps bool       `yaml:"timestamps"`
	ID         string     `yaml:"id"`
	Fields     []rawField `yaml:"fields"`
	Indexes    []rawIndex `yaml:"indexes"`
}

type rawIndex struct {
	Paths  []string `yaml:"paths"`
	Unique bool     `yaml:"unique"`
}

type rawBlock struct {
	Slug   string     `yaml:"slug"`
	Label  string     `yaml:"label"`
	Fields []rawField `yaml:"fields"`
}

type rawField struct {
	Name        string       `yaml:"name"`
	Type        string       `yaml:"type"`
	Label       string       `yaml:"label"`
	Required    bool         `yaml:"required"`
	Unique      bool         `yaml:"unique"`
	Index       bool         `yaml:"index"`
	NoIndex     bool         `yaml:"noIndex"`
	Localized   bool         `yaml:"localized"`
	Hidden      bool         `yaml:"hidden"`
	Virtual     bool         `yaml:"virtual"`
	Default     any          `yaml:"default"`
	Generator   string       `yaml:"generator"`
	Description string       `yaml:"description"`
	Condition   string       `yaml:"condition"`
	Options     []rawOption  `yaml:"options"`
	RelationTo  stringOrList `yaml:"relationTo"`
	HasMany     bool         `yaml:"hasMany"`
	Fields      []rawField   `yaml:"fields"`
	Tabs        []rawTab     `yaml:"tabs"`
	Blocks      []rawBlock   `yaml:"blocks"`
	Policy      string       `yaml:"policy"`
	Refs        []rawRef     `yaml:"refs"`
}

type rawTab struct {
	Name      string     `yaml:"name"`
	Label     string     `yaml:"label"`
	Localized bool       `yaml:"localized"`
	Fields    []rawField `yaml:"fields"`
}

// rawOption accepts either a bare scalar or a {label, value} mapping.
type rawOption struct {
	Label string
	Value string
}

func (o *rawOption) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Value = node.Value
		o.Label = node.Value
		return nil
	}
	var pair struct {
		Label string `yaml:"label"`
		Value string `yaml:"value"`
	}
	if err := node.Decode(&pair); err != nil {
		return err
	}
	o.Label = pair.Label
	o.Value = pair.Value
	return nil
}

// rawRef accepts either a slug string or an inline block mapping.
type rawRef struct {
	Slug   string
	Inline *rawBlock
}

func (r *rawRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Slug = node.Value
		return nil
	}
	var block rawBlock
	if err := node.Decode(&block); err != nil {
		return err
	}
	r.Inline = &block
	return nil
}

// stringOrList accepts a scalar or a sequence of scalars.
type stringOrList []string

func (s *stringOrList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = []string{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

func convertRecord(raw rawRecord, path string) (Record, error) {
	rec := Record{
		Slug:       raw.Slug,
		Auth:       raw.Auth,
		Timestamps: raw.Timestamps,
	}
	switch strings.TrimSpace(raw.ID) {
	case "":
	case "surrogate":
		rec.IDType = field.IDSurrogate
	case "number":
		rec.IDType = field.IDNumber
	case "bigint":
		rec.IDType = field.IDBigInt
	case "text":
		rec.IDType = field.IDText
	default:
		return Record{}, fmt.Errorf("loader: %s: record %q: unknown id type %q", path, raw.Slug, raw.ID)
	}

	fields, err := convertFields(raw.Fields, path)
	if err != nil {
		return Record{}, fmt.Errorf("loader: %s: record %q: %w", path, raw.Slug, err)
	}
	rec.Fields = fields

	for _, idx := range raw.Indexes {
		rec.Indexes = append(rec.Indexes, field.CompoundIndex{
			Paths:  append([]string(nil), idx.Paths...),
			Unique: idx.Unique,
		})
	}
	return rec, nil
}

func convertBlock(raw rawBlock, path string) (field.Block, error) {
	fields, err := convertFields(raw.Fields, path)
	if err != nil {
		return field.Block{}, fmt.Errorf("loader: %s: block %q: %w", path, raw.Slug, err)
	}
	return field.Block{Slug: raw.Slug, Label: raw.Label, Fields: fields}, nil
}

func convertFields(raws []rawField, path string) ([]field.Field, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	out := make([]field.Field, 0, len(raws))
	for _, raw := range raws {
		f, err := convertField(raw, path)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func convertField(raw rawField, path string) (field.Field, error) {
	f := field.Field{
		Name:      raw.Name,
		Kind:      field.Kind(raw.Type),
		Label:     raw.Label,
		Required:  raw.Required,
		Unique:    raw.Unique,
		Index:     raw.Index,
		NoIndex:   raw.NoIndex,
		Localized: raw.Localized,
		Virtual:   raw.Virtual,
		Default:   raw.Default,
		Admin: field.Admin{
			Hidden:      raw.Hidden,
			Description: raw.Description,
			Condition:   raw.Condition,
		},
	}

	if gen := strings.TrimSpace(raw.Generator); gen != "" {
		fn, ok := generators[gen]
		if !ok {
			return field.Field{}, fmt.Errorf("field %q: unknown default generator %q", raw.Name, gen)
		}
		f.DefaultFunc = fn
	}

	for _, opt := range raw.Options {
		f.Options = append(f.Options, field.Option{Label: opt.Label, Value: opt.Value})
	}

	if len(raw.RelationTo) > 0 {
		f.Relationship = &field.Relationship{
			Targets: append([]string(nil), raw.RelationTo...),
			HasMany: raw.HasMany,
		}
	}

	nested, err := convertFields(raw.Fields, path)
	if err != nil {
		return field.Field{}, err
	}
	f.Fields = nested

	for _, tab := range raw.Tabs {
		tabFields, err := convertFields(tab.Fields, path)
		if err != nil {
			return field.Field{}, err
		}
		f.Tabs = append(f.Tabs, field.Tab{
			Name:      tab.Name,
			Label:     tab.Label,
			Localized: tab.Localized,
			Fields:    tabFields,
		})
	}

	for _, b := range raw.Blocks {
		block, err := convertBlock(b, path)
		if err != nil {
			return field.Field{}, err
		}
		f.Blocks = append(f.Blocks, block)
	}

	switch strings.TrimSpace(raw.Policy) {
	case "":
		f.Policy = field.BlockPolicyNone
	case "all":
		f.Policy = field.BlockPolicyAll
	case "subset":
		f.Policy = field.BlockPolicySubset
	default:
		return field.Field{}, fmt.Errorf("field %q: unknown block policy %q", raw.Name, raw.Policy)
	}

	for _, ref := range raw.Refs {
		if ref.Inline != nil {
			block, err := convertBlock(*ref.Inline, path)
			if err != nil {
				return field.Field{}, err
			}
			f.BlockRefs = append(f.BlockRefs, field.BlockRef{Inline: &block})
			continue
		}
		f.BlockRefs = append(f.BlockRefs, field.BlockRef{Slug: ref.Slug})
	}

	return f, nil
}
