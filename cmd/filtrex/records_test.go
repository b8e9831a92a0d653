package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAssignments(t *testing.T) {
	record := map[string]any{"keep": "me"}
	err := applyAssignments(record, []string{
		"age=30",
		"ok=true",
		"name=Ann",
		"tags=[a, b]",
		"empty=",
		" spaced = x ",
		"expr=a=b",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"keep":   "me",
		"age":    30,
		"ok":     true,
		"name":   "Ann",
		"tags":   []any{"a", "b"},
		"empty":  "",
		"spaced": "x",
		"expr":   "a=b",
	}, record)

	assert.Error(t, applyAssignments(record, []string{"=1"}))
	assert.Error(t, applyAssignments(record, []string{"missing"}))
}

func TestDecodeDocumentDetectsFormat(t *testing.T) {
	doc, err := decodeDocument("-", []byte(`  [{"n": 1.5}]`))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"n": json.Number("1.5")}}, doc)

	doc, err = decodeDocument("-", []byte("- n: 1.5\n"))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"n": 1.5}}, doc)

	doc, err = decodeDocument("data.yaml", []byte(`{"n": 2}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 2}, doc)

	_, err = decodeDocument("data.json", []byte("n: 1"))
	assert.ErrorContains(t, err, "decode json")
}

func TestLoadRecord(t *testing.T) {
	record, err := loadRecord("", []string{"a=1"}, strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, record)

	record, err = loadRecord("-", nil, strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, record)

	_, err = loadRecord("-", nil, strings.NewReader("[1, 2]"))
	assert.ErrorContains(t, err, "record must be a mapping")
}

func TestLoadRecordsFromStdin(t *testing.T) {
	records, err := loadRecords("-", strings.NewReader("- a: 1\n- a: 2\n"))
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = loadRecords("-", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}
