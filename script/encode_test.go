package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

var encodeDoc = yaml.MapSlice{
	{Key: "vars", Value: yaml.MapSlice{
		{Key: "major", Value: 1},
		{Key: "tz", Value: "UTC"},
	}},
	{Key: "my-key", Value: []any{"a\tb", 1.5, 2.0, true, nil}},
	{Key: "empty", Value: yaml.MapSlice{}},
}

func TestEncode_JSON5(t *testing.T) {
	var sb strings.Builder

	if err := Encode(&sb, encodeDoc, FormatJSON5, 2); err != nil {
		t.Fatal(err)
	}

	want := `{
  vars: {
    major: 1,
    tz: "UTC",
  },
  "my-key": [
    "a\tb",
    1.5,
    2.0,
    true,
    null,
  ],
  empty: {},
}
`
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_JSON(t *testing.T) {
	var sb strings.Builder

	if err := Encode(&sb, encodeDoc, FormatJSON, 4); err != nil {
		t.Fatal(err)
	}

	want := `{
    "vars": {
        "major": 1,
        "tz": "UTC"
    },
    "my-key": [
        "a\tb",
        1.5,
        2.0,
        true,
        null
    ],
    "empty": {}
}
`
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON5, FormatJSON, FormatYAML} {
		t.Run(format.String(), func(t *testing.T) {
			var sb strings.Builder

			if err := Encode(&sb, encodeDoc, format, DefaultIndent); err != nil {
				t.Fatal(err)
			}

			n, err := Parse("doc"+format.Ext(), []byte(sb.String()), format)
			if err != nil {
				t.Fatalf("Parse:\n%s\n%v", sb.String(), err)
			}

			if diff := cmp.Diff(encodeDoc, Simplify(n)); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_YAMLControlCharacters(t *testing.T) {
	doc := yaml.MapSlice{
		{Key: "write", Value: "col1\tcol2 ${major}"},
		{Key: "lines", Value: []any{"a\r\nb", "tab\tand\nnewline", "plain"}},
		{Key: "nested", Value: yaml.MapSlice{{Key: "v", Value: "\tlead"}}},
	}

	var sb strings.Builder

	if err := Encode(&sb, doc, FormatYAML, DefaultIndent); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(sb.String(), `write: "col1\tcol2 ${major}"`) {
		t.Errorf("tab string not double-quoted:\n%s", sb.String())
	}

	n, err := ParseYAML("doc.yaml", []byte(sb.String()))
	if err != nil {
		t.Fatalf("ParseYAML:\n%s\n%v", sb.String(), err)
	}

	if diff := cmp.Diff(any(doc), Simplify(n)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_InvalidUTF8(t *testing.T) {
	doc := yaml.MapSlice{{Key: "a", Value: []any{"ok\xff"}}}

	for _, format := range []Format{FormatJSON5, FormatJSON, FormatYAML} {
		t.Run(format.String(), func(t *testing.T) {
			var sb strings.Builder

			if err := Encode(&sb, doc, format, DefaultIndent); !errors.Is(err, ErrScript) {
				t.Errorf("err = %v, want ErrScript", err)
			}
		})
	}
}

func TestEncode_UnsupportedValue(t *testing.T) {
	var sb strings.Builder

	err := Encode(&sb, yaml.MapSlice{{Key: "c", Value: make(chan int)}}, FormatJSON5, 2)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestWriteTree(t *testing.T) {
	n := mustParse(t, "{\n  vars: { patch: 3, tag: \"rc\" },\n  files: [true],\n}")

	var sb strings.Builder

	if err := WriteTree(&sb, n, 2); err != nil {
		t.Fatal(err)
	}

	want := `object @1:1
  vars: object @2:9
    patch: numeric 3 @2:18
    tag: string "rc" @2:26
  files: array @3:10
    [0]: boolean true @3:11
`
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}
