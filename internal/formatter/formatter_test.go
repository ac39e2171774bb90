package formatter

import (
	"strings"
	"testing"

	"github.com/alevsk/shapeshift/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransform() *types.TransformResult {
	res := types.NewTransformResult("json", "yaml")
	res.Formatted = "name: demo"
	res.AddWarning("potential secret at api_key: suspicious key name")
	res.Metadata["digest"] = "0123456789abcdef"
	return res
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"raw", TypeRaw, false},
		{"json", TypeJSON, false},
		{"yaml", TypeYAML, false},
		{"table", TypeTable, false},
		{"markdown", TypeMarkdown, false},
		{"html", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		typ  Type
		want Formatter
	}{
		{TypeRaw, &Raw{}},
		{TypeJSON, &JSON{opts: DefaultOptions()}},
		{TypeYAML, &YAML{}},
		{TypeTable, &Table{}},
		{TypeMarkdown, &Markdown{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			f, err := NewFormatter(tt.typ, nil)
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}

	_, err := NewFormatter("csv", nil)
	assert.Error(t, err)
}

func TestRaw(t *testing.T) {
	out, err := (&Raw{}).Format(sampleTransform())
	require.NoError(t, err)
	assert.Equal(t, "name: demo", out)

	_, err = (&Raw{}).Format(types.NewValidationResult())
	assert.ErrorIs(t, err, ErrUnsupportedResult)
}

func TestJSONFormatter(t *testing.T) {
	f, err := NewFormatter(TypeJSON, &Options{Indent: 4})
	require.NoError(t, err)

	out, err := f.Format(&types.DetectResult{Format: "json", Confidence: "100%", Message: "detected format: json (100% confidence)", Score: 1})
	require.NoError(t, err)
	assert.Equal(t, `{
    "format": "json",
    "confidence": "100%",
    "message": "detected format: json (100% confidence)"
}`, out)
}

func TestJSONFormatterKeepsMarkup(t *testing.T) {
	res := types.NewTransformResult("json", "xml")
	res.Formatted = "<a>1 & 2</a>"
	f, err := NewFormatter(TypeJSON, nil)
	require.NoError(t, err)

	out, err := f.Format(res)
	require.NoError(t, err)
	assert.Contains(t, out, `"formatted": "<a>1 & 2</a>"`)
	assert.NotContains(t, out, `\u003c`)
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestYAMLFormatter(t *testing.T) {
	res := types.NewValidationResult()
	res.AddError("missing required field 'info'")

	out, err := (&YAML{}).Format(res)
	require.NoError(t, err)
	assert.Contains(t, out, "valid: false")
	assert.Contains(t, out, "- missing required field 'info'")
}

func TestTableFormatter(t *testing.T) {
	out, err := (&Table{}).Format(sampleTransform())
	require.NoError(t, err)

	for _, want := range []string{"SUMMARY", "SOURCE FORMAT", "MESSAGES", "warning", "METADATA", "digest"} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.HasSuffix(out, "name: demo\n"), out)

	out, err = (&Table{}).Format(types.NewValidationResult())
	require.NoError(t, err)
	assert.Contains(t, out, "SUMMARY")
	assert.NotContains(t, out, "MESSAGES")
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := (&Markdown{}).Format(sampleTransform())
	require.NoError(t, err)

	assert.Contains(t, out, "# SUMMARY")
	assert.Contains(t, out, "| TARGET FORMAT | yaml |")
	assert.Contains(t, out, "```yaml\nname: demo\n```")

	out, err = (&Markdown{}).Format(&types.DetectResult{Format: "toml", Confidence: "100%", Message: "m"})
	require.NoError(t, err)
	assert.Contains(t, out, "| toml | 100% | m |")
}

func TestUnsupportedResult(t *testing.T) {
	for _, f := range []Formatter{&Table{}, &Markdown{}} {
		_, err := f.Format("plain string")
		assert.ErrorIs(t, err, ErrUnsupportedResult)
	}
}

func TestBatchTable(t *testing.T) {
	batch := types.NewBatchResult()
	batch.Add("a.json", "out/a.yaml", types.NewTransformResult("json", "yaml"))
	bad := types.NewTransformResult("json", "toml")
	bad.AddError("transform error: boom")
	batch.Add("b.json", "", bad)

	out, err := (&Table{}).Format(batch)
	require.NoError(t, err)
	assert.Contains(t, out, "FILES")
	assert.Contains(t, out, "out/a.yaml")
	assert.Contains(t, out, "b.json: transform error: boom")

	md, err := (&Markdown{}).Format(batch)
	require.NoError(t, err)
	assert.Contains(t, md, "| FAILED | 1 |")
}
