package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/xlsync-go/pkg/xlsync"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("INVENTORY_DIR", "/data")
	path := writeFile(t, "job.yaml", `
workbook: ${INVENTORY_DIR}/inventory.xlsx
mode: upsert
worksheet: Items
starting_cell: B2
properties: [Name, Count]
log:
  level: debug
document:
  title: Inventory
`)

	f, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	assert.Equal(t, "/data/inventory.xlsx", f.Workbook)
	assert.Equal(t, "Items", f.Worksheet)
	assert.Equal(t, []string{"Name", "Count"}, f.Properties)
	assert.Equal(t, "debug", f.Log.Level)
	assert.Equal(t, "json", f.Log.Encoding)

	mode, err := f.SyncMode()
	require.NoError(t, err)
	assert.Equal(t, xlsync.UpdateOrCreateOnly, mode)

	push, err := f.PushConfig()
	require.NoError(t, err)
	assert.Equal(t, &models.CellAddress{Column: "B", Row: 2}, push.StartingCell)
	require.NotNil(t, push.WorkbookProperties)
	assert.Equal(t, "Inventory", push.WorkbookProperties.Title)

	logCfg := f.LoggerConfig()
	assert.Equal(t, "debug", logCfg.Level)
	assert.Equal(t, []string{"stderr"}, logCfg.OutputPaths)
}

func TestLoadJSONWithDefaults(t *testing.T) {
	path := writeFile(t, "job.json", `{"workbook": "book.xlsx"}`)

	f, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	assert.Equal(t, "book.xlsx", f.Workbook)
	assert.Equal(t, "A1", f.StartingCell)
	assert.Equal(t, string(xlsync.AdapterDefault), f.Mode)

	push, err := f.PushConfig()
	require.NoError(t, err)
	assert.Nil(t, push.WorkbookProperties)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("XLSYNC_WORKSHEET", "FromEnv")
	t.Setenv("XLSYNC_LOG_LEVEL", "warn")
	path := writeFile(t, "job.yaml", "worksheet: FromFile\n")

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "FromEnv", f.Worksheet)
	assert.Equal(t, "warn", f.Log.Level)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("XLSYNC_WORKBOOK", "env.xlsx")
	t.Setenv("XLSYNC_MODE", "update")

	f, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env.xlsx", f.Workbook)

	mode, err := f.SyncMode()
	require.NoError(t, err)
	assert.Equal(t, xlsync.UpdateOnly, mode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(f *File)
		wantErr bool
	}{
		{"defaults", func(f *File) {}, false},
		{"mode by name", func(f *File) { f.Mode = "DeleteThenCreate" }, false},
		{"unknown mode", func(f *File) { f.Mode = "merge" }, true},
		{"bad starting cell", func(f *File) { f.StartingCell = "1A" }, true},
		{"bad level", func(f *File) { f.Log.Level = "loud" }, true},
		{"bad encoding", func(f *File) { f.Log.Encoding = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Default()
			tt.modify(f)
			err := f.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("A", "x")
	t.Setenv("B", "y")

	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"${A}", "x"},
		{"${A}-${B}", "x-y"},
		{"${UNSET_XLSYNC_VAR}z", "z"},
		{"${open", "${open"},
	}

	for _, tt := range tests {
		if got := substituteEnvVars(tt.input); got != tt.expected {
			t.Errorf("substituteEnvVars(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
