package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/searchcraftinc/searchcraft-connect/client"
)

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	formatTable(&buf, []string{"NAME", "ACTIVE"}, [][]string{
		{"read-key", "true"},
		{"k", "false"},
	})

	want := strings.Join([]string{
		"NAME      ACTIVE",
		"--------  ------",
		"read-key  true",
		"k         false",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("table:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{float64(42), "42"},
		{1.5, "1.5"},
		{true, "true"},
		{[]any{"a", "b"}, `["a","b"]`},
		{map[string]any{"k": "v"}, `{"k":"v"}`},
	}
	for _, tc := range tests {
		if got := cell(tc.in); got != tc.want {
			t.Errorf("cell(%v): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDataRows(t *testing.T) {
	data := []any{
		map[string]any{"name": "posts", "count": float64(3)},
		"bare",
	}
	rows, ok := dataRows(data, []string{"name", "count"})
	if !ok {
		t.Fatal("expected list data to produce rows")
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d", len(rows))
	}
	if rows[0][0] != "posts" || rows[0][1] != "3" {
		t.Errorf("row 0: got %v", rows[0])
	}
	if len(rows[1]) != 1 || rows[1][0] != "bare" {
		t.Errorf("row 1: got %v", rows[1])
	}

	if _, ok := dataRows(map[string]any{"a": 1}, nil); ok {
		t.Error("object data should not produce rows")
	}
}

func TestOutputFormats(t *testing.T) {
	resp := client.Response{
		"status": float64(200),
		"data": []any{
			map[string]any{"key": "k1", "name": "first"},
			map[string]any{"key": "k2", "name": "second"},
		},
	}

	tests := []struct {
		format   string
		contains []string
		excludes []string
	}{
		{"json", []string{`"status": 200`, `"key": "k1"`}, nil},
		{"table", []string{"KEY", "NAME", "k1   first", "k2   second"}, []string{`"status"`}},
		{"quiet", []string{"k1\nk2\n"}, []string{"first"}},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			resetFlags(t)
			flagFmt = tc.format

			var buf bytes.Buffer
			if err := output(&buf, resp, "", "key", "name"); err != nil {
				t.Fatalf("output: %v", err)
			}
			for _, s := range tc.contains {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("output missing %q:\n%s", s, buf.String())
				}
			}
			for _, s := range tc.excludes {
				if strings.Contains(buf.String(), s) {
					t.Errorf("output should not contain %q:\n%s", s, buf.String())
				}
			}
		})
	}
}

func TestOutputQuietScalar(t *testing.T) {
	resetFlags(t)
	flagFmt = "quiet"

	var buf bytes.Buffer
	resp := client.Response{"status": float64(200), "data": "Index deleted"}
	if err := output(&buf, resp, "deleted"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "deleted\n" {
		t.Errorf("quiet output: got %q", buf.String())
	}
}

func TestOutputTableFallsBackToJSON(t *testing.T) {
	resetFlags(t)
	flagFmt = "table"

	var buf bytes.Buffer
	resp := client.Response{"data": map[string]any{"document_count": float64(7)}}
	if err := output(&buf, resp, ""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"document_count": 7`) {
		t.Errorf("expected JSON fallback, got:\n%s", buf.String())
	}
}
