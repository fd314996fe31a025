package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/tabula"
)

func render(t *testing.T, records []tabula.Record) string {
	t.Helper()
	out, err := tabula.Render(records, tabula.Options{MaxWidth: tabula.NoLimit})
	require.NoError(t, err)
	return out
}

func TestDecodeJSONKeepsKeyOrder(t *testing.T) {
	t.Parallel()
	records, err := Decode(strings.NewReader(`[{"z":1,"a":"x"},{"z":2,"a":null}]`), JSON)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, tabula.KindMap, records[0].Kind())

	want := "+---+---+\n" +
		"| z | a |\n" +
		"+---+---+\n" +
		"| 1 | x |\n" +
		"| 2 |   |\n" +
		"+---+---+\n" +
		"2 rows in set"
	assert.Equal(t, want, render(t, records))
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()
	doc := `
base: &base
  name: one
  tags: [a, b]
`
	records, err := Decode(strings.NewReader(doc), YAML)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, render(t, records), "map[name:one tags:[a b]]")
}

func TestDecodeShapes(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		doc   string
		kinds []tabula.Kind
	}{
		"empty":        {doc: "", kinds: nil},
		"mapping":      {doc: "a: 1\nb: 2\n", kinds: []tabula.Kind{tabula.KindMap}},
		"scalar":       {doc: "42\n", kinds: []tabula.Kind{tabula.KindScalar}},
		"seq of seqs":  {doc: "- [1, 2]\n- [3, 4]\n", kinds: []tabula.Kind{tabula.KindSeq, tabula.KindSeq}},
		"seq of items": {doc: "- a\n- b\n- c\n", kinds: []tabula.Kind{tabula.KindScalar, tabula.KindScalar, tabula.KindScalar}},
		"aliases":      {doc: "- &r {a: 1}\n- *r\n", kinds: []tabula.Kind{tabula.KindMap, tabula.KindMap}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			records, err := Decode(strings.NewReader(tt.doc), Auto)
			require.NoError(t, err)
			var kinds []tabula.Kind
			for _, r := range records {
				kinds = append(kinds, r.Kind())
			}
			assert.Equal(t, tt.kinds, kinds)
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	t.Parallel()
	_, err := Decode(strings.NewReader("[1, 2"), JSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode document")

	_, err = Decode(strings.NewReader("a = "), TOML)
	require.Error(t, err)

	_, err = Decode(strings.NewReader(""), Format("xml"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeTOMLArrayOfTables(t *testing.T) {
	t.Parallel()
	doc := `
[[servers]]
name = "alpha"
port = 8080

[[servers]]
name = "beta"
port = 9090
`
	records, err := Decode(strings.NewReader(doc), TOML)
	require.NoError(t, err)
	want := "+-------+------+\n" +
		"| name  | port |\n" +
		"+-------+------+\n" +
		"| alpha | 8080 |\n" +
		"| beta  | 9090 |\n" +
		"+-------+------+\n" +
		"2 rows in set"
	assert.Equal(t, want, render(t, records))
}

func TestDecodeTOMLDocument(t *testing.T) {
	t.Parallel()
	records, err := Decode(strings.NewReader("title = \"x\"\ncount = 3\n"), TOML)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, render(t, records), "| count | title |")
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		in   string
		want Format
	}{
		"empty": {in: "", want: Auto},
		"json":  {in: "JSON", want: JSON},
		"yml":   {in: "yml", want: YAML},
		"toml":  {in: "toml", want: TOML},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, JSON, FormatFromPath("rows.JSON"))
	assert.Equal(t, TOML, FormatFromPath("/etc/app.toml"))
	assert.Equal(t, YAML, FormatFromPath("rows.yaml"))
	assert.Equal(t, YAML, FormatFromPath("-"))
}
