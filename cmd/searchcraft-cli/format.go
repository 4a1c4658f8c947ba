package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/searchcraftinc/searchcraft-connect/client"
)

func formatJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func formatTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			width := 0
			if i < len(widths) {
				width = widths[i]
			}
			parts[i] = fmt.Sprintf("%-*s", width, cell)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, width := range widths {
		seps[i] = strings.Repeat("-", width)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

// cell renders one JSON value for a table.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// dataRows flattens a list-shaped "data" field into table rows. Plain values
// become one-column rows. It returns false when data is not a list.
func dataRows(data any, columns []string) ([][]string, bool) {
	items, ok := data.([]any)
	if !ok {
		return nil, false
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		obj, isObj := item.(map[string]any)
		if !isObj || len(columns) == 0 {
			rows = append(rows, []string{cell(item)})
			continue
		}
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cell(obj[col])
		}
		rows = append(rows, row)
	}
	return rows, true
}

// output writes resp in the selected format. Table and quiet output use
// columns when data is a list; quiet prints quietVal for anything else.
func output(w io.Writer, resp client.Response, quietVal string, columns ...string) error {
	switch flagFmt {
	case "quiet":
		if rows, ok := dataRows(resp.Data(), columns); ok {
			for _, row := range rows {
				fmt.Fprintln(w, row[0])
			}
			return nil
		}
		if quietVal != "" {
			fmt.Fprintln(w, quietVal)
		}
		return nil
	case "table":
		rows, ok := dataRows(resp.Data(), columns)
		if !ok {
			return formatJSON(w, resp)
		}
		headers := make([]string, 0, len(columns))
		for _, c := range columns {
			headers = append(headers, strings.ToUpper(c))
		}
		if len(headers) == 0 {
			headers = []string{"VALUE"}
		}
		formatTable(w, headers, rows)
		return nil
	default:
		return formatJSON(w, resp)
	}
}
