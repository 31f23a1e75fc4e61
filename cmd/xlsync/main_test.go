package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestPushReadSheets(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "book.xlsx")
	input := writeInput(t, "pairs.json", `[{"Name": "A", "Value": 1}, {"Name": "B", "Value": 2}]`)

	out, err := execute(t, "push", book, "--input", input, "--mode", "create")
	require.NoError(t, err)
	var pushed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &pushed))
	assert.Equal(t, "pairs", pushed["table"])
	assert.Equal(t, "created", pushed["action"])

	update := writeInput(t, "update.yaml", "- Name: C\n  Value: 3\n")
	_, err = execute(t, "push", book, "--input", update, "--mode", "update", "--worksheet", "pairs")
	require.NoError(t, err)

	out, err = execute(t, "read", book, "--kind", "values")
	require.NoError(t, err)
	var values struct {
		Worksheet string `json:"worksheet"`
		Range     string `json:"range"`
		Rows      []struct {
			Content []interface{} `json:"content"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &values))
	assert.Equal(t, "pairs", values.Worksheet)
	assert.Equal(t, "A1:B3", values.Range)
	require.Len(t, values.Rows, 3)
	assert.Equal(t, []interface{}{"C", float64(3)}, values.Rows[1].Content)
	assert.Equal(t, []interface{}{"B", float64(2)}, values.Rows[2].Content)

	out, err = execute(t, "read", book, "--range", "A1:B2")
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"C"`)

	out, err = execute(t, "sheets", book)
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"pairs"`)
}

func TestReadSheetsDir(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "book.xlsx")
	input := writeInput(t, "items.yaml", "- Name: x\n")

	_, err := execute(t, "push", book, "--input", input)
	require.NoError(t, err)
	_, err = execute(t, "push", book, "--input", input, "--worksheet", "Other", "--mode", "upsert")
	require.NoError(t, err)

	outDir := filepath.Join(dir, "sheets")
	_, err = execute(t, "read", book, "--sheets-dir", outDir, "--kind", "values")
	require.NoError(t, err)

	for _, name := range []string{"items.json", "Other.json"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), `"x"`)
	}
}

func TestPushWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "book.xlsx")
	input := writeInput(t, "in.json", `[{"a": 1, "b": 2}]`)
	job := writeInput(t, "job.yaml", "workbook: "+book+"\nworksheet: Job\nstarting_cell: B2\nproperties: [b]\n")

	_, err := execute(t, "push", "--config", job, "--input", input)
	require.NoError(t, err)

	out, err := execute(t, "read", "--config", job, "--kind", "values")
	require.NoError(t, err)
	assert.Contains(t, out, `"range":"B2:B3"`)
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, "in.json", `[{"a": 1}]`)

	_, err := execute(t, "push", filepath.Join(dir, "book.xlsx"), "--input", input, "--mode", "merge")
	assert.Error(t, err)

	_, err = execute(t, "push", filepath.Join(dir, "book.xlsx"), "--input", input, "--mode", "update")
	assert.Error(t, err)

	_, err = execute(t, "read", filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)

	_, err = execute(t, "read", "--kind", "values")
	assert.Error(t, err)

	_, err = execute(t, "push", filepath.Join(dir, "book.xlsx"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "xlsync dev\n"))
}
