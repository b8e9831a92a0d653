package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// decodeDocument decodes JSON when the file extension or the first
// non-blank byte says so, and YAML otherwise.
func decodeDocument(path string, data []byte) (any, error) {
	var doc any
	if isJSON(path, data) {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return doc, nil
}

func isJSON(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return true
	case ".yaml", ".yml":
		return false
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// loadRecord builds the record for eval. An empty path starts from an
// empty record; assignments are applied on top.
func loadRecord(path string, assignments []string, stdin io.Reader) (map[string]any, error) {
	record := map[string]any{}
	if path != "" {
		data, err := readInput(path, stdin)
		if err != nil {
			return nil, err
		}
		doc, err := decodeDocument(path, data)
		if err != nil {
			return nil, err
		}
		switch doc := doc.(type) {
		case nil:
		case map[string]any:
			record = doc
		default:
			return nil, fmt.Errorf("record must be a mapping, got %T", doc)
		}
	}
	if err := applyAssignments(record, assignments); err != nil {
		return nil, err
	}
	return record, nil
}

// loadRecords reads the list of records for filter.
func loadRecords(path string, stdin io.Reader) ([]any, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(path, data)
	if err != nil {
		return nil, err
	}
	switch doc := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		return doc, nil
	default:
		return nil, fmt.Errorf("records must be a list, got %T", doc)
	}
}

// applyAssignments sets key=value pairs on record. Values are read as YAML,
// so "30" is a number, "true" a boolean, "[a, b]" a list and anything else
// a string.
func applyAssignments(record map[string]any, assignments []string) error {
	for _, raw := range assignments {
		name, text, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("invalid assignment %q (expected name=value)", raw)
		}
		value, err := parseScalar(text)
		if err != nil {
			return fmt.Errorf("assignment %s: %w", name, err)
		}
		record[name] = value
	}
	return nil
}

func parseScalar(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	var value any
	if err := yaml.Unmarshal([]byte(text), &value); err != nil {
		return nil, err
	}
	return value, nil
}
