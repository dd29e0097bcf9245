package prettyprinter

import (
	"bytes"
	"fmt"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// Format selects an artifact encoding.
type Format string

const (
	FormatText      Format = "text"
	FormatYAML      Format = "yaml"
	FormatProtoJSON Format = "protojson"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatYAML, FormatProtoJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, yaml or protojson)", s)
}

// Render encodes the document in the given format.
func Render(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return RenderYAML(doc)
	case FormatProtoJSON:
		return RenderProtoJSON(doc)
	case FormatText, "":
		return []byte(RenderText(doc)), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// RenderYAML writes the annotated tree as YAML, keeping key order.
func RenderYAML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(doc.tree())); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func yamlNode(v interface{}) *yaml.Node {
	switch v := v.(type) {
	case object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range v {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
				yamlNode(e.Value))
		}
		return n
	case []interface{}:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, x := range v {
			n.Content = append(n.Content, yamlNode(x))
		}
		return n
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// RenderProtoJSON writes the annotated tree as a google.protobuf.Struct in
// its canonical JSON form.
func RenderProtoJSON(doc Document) ([]byte, error) {
	s, err := structpb.NewStruct(plain(doc.tree()).(map[string]interface{}))
	if err != nil {
		return nil, fmt.Errorf("building struct: %w", err)
	}
	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding protojson: %w", err)
	}
	return append(out, '\n'), nil
}
