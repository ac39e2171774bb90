package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alevsk/shapeshift/internal/types"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table implements table formatting
type Table struct{}

// Markdown implements markdown formatting
type Markdown struct{}

func newTable(title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(nil)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateColumns = true
	t.SetTitle(title)
	t.AppendHeader(header)
	return t
}

func summaryTable(rows ...table.Row) table.Writer {
	t := newTable("SUMMARY", table.Row{"KEY", "VALUE"})
	t.AppendRows(rows)
	return t
}

// messagesTable lists errors before warnings; nil when there are none
func messagesTable(errs, warnings []string) table.Writer {
	if len(errs) == 0 && len(warnings) == 0 {
		return nil
	}
	t := newTable("MESSAGES", table.Row{"LEVEL", "MESSAGE"})
	for _, e := range errs {
		t.AppendRow(table.Row{"error", e})
	}
	for _, w := range warnings {
		t.AppendRow(table.Row{"warning", w})
	}
	return t
}

func metadataTable(metadata map[string]interface{}) table.Writer {
	if len(metadata) == 0 {
		return nil
	}
	t := newTable("METADATA", table.Row{"KEY", "VALUE"})
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.AppendRow(table.Row{k, fmt.Sprint(metadata[k])})
	}
	return t
}

// buildTables returns the tables describing a result, and for transform
// results the document that follows them
func buildTables(data any) ([]table.Writer, *types.TransformResult, error) {
	var tables []table.Writer
	add := func(t table.Writer) {
		if t != nil {
			tables = append(tables, t)
		}
	}

	switch res := data.(type) {
	case *types.TransformResult:
		add(summaryTable(
			table.Row{"SOURCE FORMAT", res.SourceFormat},
			table.Row{"TARGET FORMAT", res.TargetFormat},
			table.Row{"VALID", res.Valid},
		))
		add(messagesTable(res.Errors, res.Warnings))
		add(metadataTable(res.Metadata))
		return tables, res, nil
	case *types.ValidationResult:
		add(summaryTable(table.Row{"VALID", res.Valid}))
		add(messagesTable(res.Errors, res.Warnings))
		add(metadataTable(res.Metadata))
		return tables, nil, nil
	case *types.BatchResult:
		t := newTable("FILES", table.Row{"PATH", "SOURCE", "TARGET", "VALID", "WARNINGS", "ERRORS", "OUTPUT"})
		for _, f := range res.Files {
			if f.Result == nil {
				t.AppendRow(table.Row{f.Path, "", "", false, 0, 0, f.Output})
				continue
			}
			t.AppendRow(table.Row{f.Path, f.Result.SourceFormat, f.Result.TargetFormat, f.Result.Valid,
				len(f.Result.Warnings), len(f.Result.Errors), f.Output})
		}
		add(summaryTable(
			table.Row{"FILES", len(res.Files)},
			table.Row{"FAILED", len(res.Failed())},
			table.Row{"VALID", res.Valid},
		))
		add(t)
		var errs []string
		for _, f := range res.Files {
			if f.Result == nil {
				continue
			}
			for _, e := range f.Result.Errors {
				errs = append(errs, f.Path+": "+e)
			}
		}
		add(messagesTable(errs, nil))
		return tables, nil, nil
	case *types.DetectResult:
		t := newTable("DETECTION", table.Row{"FORMAT", "CONFIDENCE", "MESSAGE"})
		t.AppendRow(table.Row{res.Format, res.Confidence, res.Message})
		add(t)
		return tables, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %T", ErrUnsupportedResult, data)
	}
}

// Format formats data as tables using go-pretty/v6/table, followed by the
// transformed document
func (t *Table) Format(data any) (string, error) {
	tables, transform, err := buildTables(data)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(tables)+1)
	for _, tw := range tables {
		parts = append(parts, tw.Render())
	}
	if transform != nil && transform.Formatted != "" {
		parts = append(parts, transform.Formatted)
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

// Format formats data as markdown tables, with the transformed document in
// a fenced code block
func (m *Markdown) Format(data any) (string, error) {
	tables, transform, err := buildTables(data)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(tables)+1)
	for _, tw := range tables {
		parts = append(parts, tw.RenderMarkdown())
	}
	if transform != nil && transform.Formatted != "" {
		parts = append(parts, "```"+transform.TargetFormat+"\n"+transform.Formatted+"\n```")
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}
