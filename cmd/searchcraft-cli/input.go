package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// readJSON decodes a JSON argument: inline JSON, "-" for stdin, or "@path"
// for a file.
func readJSON(arg string, stdin io.Reader, v any) error {
	var data []byte
	var err error

	switch {
	case arg == "-":
		data, err = io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		data, err = os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		data = []byte(arg)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse JSON input: %w", err)
	}
	return nil
}

// readDocuments accepts either a single document object or an array.
func readDocuments(arg string, stdin io.Reader) ([]map[string]any, error) {
	var raw json.RawMessage
	if err := readJSON(arg, stdin, &raw); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		return []map[string]any{doc}, nil
	}

	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("documents must be a JSON object or array of objects: %w", err)
	}
	return docs, nil
}
