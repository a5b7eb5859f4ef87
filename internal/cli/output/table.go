package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
)

// TableFormatter formats data as an aligned table.
type TableFormatter struct {
	// Wide prints nested values as compact JSON instead of a summary.
	Wide      bool
	NoHeaders bool
}

// Format formats data as a table.
// Supports: Table, a list of objects, an object, or a scalar.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	if t, ok := data.(*Table); ok {
		return t.RenderWithOptions(w, f.NoHeaders)
	}
	if t, ok := data.(Table); ok {
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	v, err := generic(data)
	if err != nil {
		return err
	}

	switch v := v.(type) {
	case nil:
		return nil
	case []any:
		return f.listTable(v).RenderWithOptions(w, f.NoHeaders)
	case map[string]any:
		return f.objectTable(v).RenderWithOptions(w, f.NoHeaders)
	default:
		_, err := fmt.Fprintln(w, f.cell(v))
		return err
	}
}

// listTable renders a list of objects with one column per key. Lists of
// scalars get a single VALUE column.
func (f *TableFormatter) listTable(items []any) *Table {
	table := &Table{}
	if len(items) == 0 {
		return table
	}

	seen := map[string]bool{}
	var keys []string
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	if len(keys) == 0 {
		table.SetHeaders("VALUE")
		for _, item := range items {
			table.AddRow(f.cell(item))
		}
		return table
	}

	sortColumns(keys)
	for _, k := range keys {
		table.Headers = append(table.Headers, strings.ToUpper(k))
	}
	for _, item := range items {
		obj, _ := item.(map[string]any)
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = f.cell(obj[k])
		}
		table.AddRow(row...)
	}
	return table
}

func (f *TableFormatter) objectTable(obj map[string]any) *Table {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sortColumns(keys)

	table := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, k := range keys {
		table.AddRow(k, f.cell(obj[k]))
	}
	return table
}

// cell formats one value for display.
func (f *TableFormatter) cell(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case string:
		if v == "" {
			return "-"
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		if len(v) == 0 {
			return "-"
		}
		if f.Wide {
			return compact(v)
		}
		return fmt.Sprintf("[%d items]", len(v))
	case map[string]any:
		if len(v) == 0 {
			return "-"
		}
		if f.Wide {
			return compact(v)
		}
		return fmt.Sprintf("{%d keys}", len(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func compact(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// sortColumns orders keys alphabetically with identifiers first.
func sortColumns(keys []string) {
	rank := func(k string) int {
		switch k {
		case "id", "_id":
			return 0
		case "name":
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table with options.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
