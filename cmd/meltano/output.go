package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"

	"github.com/attaxia/meltano/pkg/models"
)

// writeJSON renders a response as indented JSON, applying the global
// --path gjson extraction when set.
func writeJSON(w io.Writer, v interface{}) error {
	var data []byte
	switch val := v.(type) {
	case json.RawMessage:
		data = val
	default:
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}

	if path := viper.GetString("path"); path != "" {
		res := gjson.GetBytes(data, path)
		if !res.Exists() {
			return fmt.Errorf("path %q not found in response", path)
		}
		if res.Type == gjson.String {
			_, err := fmt.Fprintln(w, res.String())
			return err
		}
		data = []byte(res.Raw)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		// not JSON, print as-is
		_, werr := fmt.Fprintln(w, string(data))
		return werr
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

// writeDistinctTable renders distinct values as a single-column table.
// The backend returns either a bare array or an object with a "results"
// array; both are handled.
func writeDistinctTable(w io.Writer, field string, raw json.RawMessage) {
	parsed := gjson.ParseBytes(raw)
	if parsed.IsObject() {
		if results := parsed.Get("results"); results.Exists() {
			parsed = results
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeader([]string{field})
	for _, value := range parsed.Array() {
		table.Append([]string{value.String()})
	}
	table.Render()
}

// writeColumnsTable renders a table definition's columns and aggregates.
func writeColumnsTable(w io.Writer, t *models.Table) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeader([]string{"Name", "Label", "Type", "Kind"})

	for _, col := range t.Columns {
		table.Append([]string{col.Name, col.Label, col.Type, "column"})
	}
	for _, agg := range t.Aggregates {
		table.Append([]string{agg.Name, agg.Label, agg.Type, "aggregate"})
	}
	table.Render()
}

// writeResultsTable renders a SQL result set. When the query was not
// run, only the generated SQL is printed.
func writeResultsTable(w io.Writer, result *models.SQLResult) {
	fmt.Fprintln(w, result.SQL)
	if len(result.Results) == 0 {
		return
	}

	names := result.ColumnNames
	headers := result.ColumnHeaders
	if len(headers) != len(names) {
		headers = names
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetAutoWrapText(true)
	table.SetHeader(headers)

	for _, row := range result.Results {
		cells := make([]string, len(names))
		for i, name := range names {
			if value, ok := row[name]; ok && value != nil {
				cells[i] = fmt.Sprintf("%v", value)
			} else {
				cells[i] = "NULL"
			}
		}
		table.Append(cells)
	}
	table.Render()
}
