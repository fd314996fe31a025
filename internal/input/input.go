// Package input decodes structured documents into records. JSON and YAML
// keep the key order of the source; TOML tables are ordered by key.
package input

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/tabula"
)

// ErrUnsupportedFormat is returned for unknown format names.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Format names an input encoding.
type Format string

const (
	Auto Format = "auto"
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ParseFormat parses a format name such as a CLI flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Auto, JSON, YAML, TOML:
		return f, nil
	case "yml":
		return YAML, nil
	case "":
		return Auto, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath guesses the format from a file extension. Unknown
// extensions decode as YAML, which also accepts JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".toml":
		return TOML
	}
	return YAML
}

// Decode reads one document from r. A top-level sequence yields one record
// per element; any other document yields a single record. Auto is treated
// as YAML.
func Decode(r io.Reader, format Format) ([]tabula.Record, error) {
	switch format {
	case TOML:
		return decodeTOML(r)
	case JSON, YAML, Auto, "":
		return decodeYAML(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func decodeYAML(r io.Reader) ([]tabula.Record, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode document: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}
	root = resolveAlias(root)

	if root.Kind != yaml.SequenceNode {
		rec, err := nodeRecord(root)
		if err != nil {
			return nil, err
		}
		return []tabula.Record{rec}, nil
	}
	records := make([]tabula.Record, 0, len(root.Content))
	for i, n := range root.Content {
		rec, err := nodeRecord(resolveAlias(n))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func nodeRecord(n *yaml.Node) (tabula.Record, error) {
	switch n.Kind {
	case yaml.MappingNode:
		pairs, err := nodePairs(n)
		if err != nil {
			return tabula.Record{}, err
		}
		return tabula.Map(pairs...), nil
	case yaml.SequenceNode:
		values, err := nodeSeq(n)
		if err != nil {
			return tabula.Record{}, err
		}
		return tabula.Seq(values...), nil
	}
	v, err := nodeValue(n)
	if err != nil {
		return tabula.Record{}, err
	}
	return tabula.Scalar(v), nil
}

func nodePairs(n *yaml.Node) ([]tabula.Pair, error) {
	pairs := make([]tabula.Pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		v, err := nodeValue(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, tabula.Pair{Key: n.Content[i].Value, Value: v})
	}
	return pairs, nil
}

func nodeSeq(n *yaml.Node) ([]any, error) {
	values := make([]any, 0, len(n.Content))
	for _, c := range n.Content {
		v, err := nodeValue(c)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// nodeValue converts a nested node to plain Go values. Nested mappings lose
// their order and become map[string]any.
func nodeValue(n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		pairs, err := nodePairs(n)
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, len(pairs))
		for _, p := range pairs {
			if _, dup := m[p.Key]; !dup {
				m[p.Key] = p.Value
			}
		}
		return m, nil
	case yaml.SequenceNode:
		return nodeSeq(n)
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// decodeTOML treats a document holding a single array of tables as rows and
// any other document as one record.
func decodeTOML(r io.Reader) ([]tabula.Record, error) {
	var doc map[string]any
	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if len(doc) == 0 {
		return nil, nil
	}
	if len(doc) == 1 {
		for _, v := range doc {
			if rows, ok := tableRows(v); ok {
				return rows, nil
			}
		}
	}
	return []tabula.Record{tabula.FromMap(doc)}, nil
}

func tableRows(v any) ([]tabula.Record, bool) {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil, false
	}
	rows := make([]tabula.Record, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		rows[i] = tabula.FromMap(m)
	}
	return rows, true
}
