package enumscan

import (
	"bytes"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of the rendered fragment.
type Format int

const (
	YAML Format = iota
	JSON
)

// FormatFor picks JSON for .json destinations and YAML otherwise.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// Render writes enums as an OpenAPI fragment under components.schemas, one
// schema per enum in the order given.
func Render(enums []Enum, format Format) ([]byte, error) {
	if format == JSON {
		return renderJSON(enums)
	}
	return renderYAML(enums)
}

func renderYAML(enums []Enum) ([]byte, error) {
	schemas := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range enums {
		values := &yaml.Node{Kind: yaml.SequenceNode}
		for _, v := range e.Values {
			values.Content = append(values.Content, valueNode(v))
		}
		schema := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			scalar("type"), scalar(e.Type),
			scalar("enum"), values,
		}}
		schemas.Content = append(schemas.Content, scalar(e.Name), schema)
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{
		{Kind: yaml.MappingNode, Content: []*yaml.Node{
			scalar("components"),
			{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar("schemas"), schemas}},
		}},
	}}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func valueNode(v any) *yaml.Node {
	switch v := v.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(v), 10)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v, 'g', -1, 64)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.DoubleQuotedStyle}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

type schemaJSON struct {
	Type string `json:"type"`
	Enum []any  `json:"enum"`
}

func renderJSON(enums []Enum) ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, jsontext.WithIndent("  "))
	write := func(t jsontext.Token) error { return enc.WriteToken(t) }
	steps := []jsontext.Token{jsontext.ObjectStart, jsontext.String("components"), jsontext.ObjectStart, jsontext.String("schemas"), jsontext.ObjectStart}
	for _, t := range steps {
		if err := write(t); err != nil {
			return nil, err
		}
	}
	for _, e := range enums {
		if err := write(jsontext.String(e.Name)); err != nil {
			return nil, err
		}
		if err := json.MarshalEncode(enc, schemaJSON{Type: e.Type, Enum: e.Values}); err != nil {
			return nil, err
		}
	}
	for i := 0; i < 3; i++ {
		if err := write(jsontext.ObjectEnd); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
