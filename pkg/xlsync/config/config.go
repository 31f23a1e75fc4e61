// Package config loads xlsync job files: which workbook and worksheet to
// use, how to synchronize, and how to log.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/ukaji3/xlsync-go/internal/logger"
	"github.com/ukaji3/xlsync-go/pkg/xlsync"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/address"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

// EnvPrefix prefixes environment variables that override file values,
// e.g. XLSYNC_WORKSHEET or XLSYNC_LOG_LEVEL.
const EnvPrefix = "XLSYNC"

// File is the content of a job file.
type File struct {
	// Workbook is the path of the xlsx file.
	Workbook string `mapstructure:"workbook"`
	// Mode is the synchronization mode name, e.g. "replace" or "UpdateOnly".
	Mode string `mapstructure:"mode"`
	// Worksheet is the table to write or read.
	Worksheet string `mapstructure:"worksheet"`
	// StartingCell is where the header row begins, e.g. "B2".
	StartingCell string `mapstructure:"starting_cell"`
	// Properties selects and orders the columns written.
	Properties []string `mapstructure:"properties"`
	// Range is the range to read: an address range or a defined name.
	Range string `mapstructure:"range"`
	// Log configures logging.
	Log Log `mapstructure:"log"`
	// Document holds workbook properties set on save.
	Document models.DocProperties `mapstructure:"document"`
}

// Log configures logging.
type Log struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// defaults lists every key with its default so that environment overrides
// apply even when the file omits the key.
var defaults = map[string]interface{}{
	"workbook":             "",
	"mode":                 string(xlsync.AdapterDefault),
	"worksheet":            "",
	"starting_cell":        "A1",
	"properties":           []string{},
	"range":                "",
	"log.level":            "info",
	"log.encoding":         "json",
	"document.title":       "",
	"document.subject":     "",
	"document.creator":     "",
	"document.keywords":    "",
	"document.description": "",
	"document.category":    "",
	"document.language":    "",
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{
		Mode:         string(xlsync.AdapterDefault),
		StartingCell: "A1",
		Log:          Log{Level: "info", Encoding: "json"},
	}
}

// Load reads the job file at path. The format follows the extension (yaml,
// yml, json or toml). ${VAR} references are replaced with environment
// values before parsing, and XLSYNC_* variables override file values.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		ext = "yaml"
	}

	v := newViper()
	v.SetConfigType(ext)
	if err := v.ReadConfig(bytes.NewReader([]byte(substituteEnvVars(string(data))))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return decode(v)
}

// FromEnv builds the configuration from defaults and XLSYNC_* variables only.
func FromEnv() (*File, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*File, error) {
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &f, nil
}

// Validate checks the values that can be checked without opening the workbook.
func (f *File) Validate() error {
	if _, err := xlsync.ParseSyncMode(f.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	if f.StartingCell != "" {
		if _, ok := address.ParseCell(f.StartingCell); !ok {
			return fmt.Errorf("starting_cell: %q is not a cell address", f.StartingCell)
		}
	}
	if f.Log.Level != "" {
		if _, err := zapcore.ParseLevel(f.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	switch f.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.encoding: %q is not json or console", f.Log.Encoding)
	}
	return nil
}

// SyncMode returns the configured mode.
func (f *File) SyncMode() (xlsync.SyncMode, error) {
	return xlsync.ParseSyncMode(f.Mode)
}

// PushConfig returns the push configuration described by f.
func (f *File) PushConfig() (*xlsync.PushConfig, error) {
	cfg := &xlsync.PushConfig{
		Worksheet:        f.Worksheet,
		ObjectProperties: f.Properties,
	}
	if f.StartingCell != "" {
		start, ok := address.ParseCell(f.StartingCell)
		if !ok {
			return nil, fmt.Errorf("starting_cell: %q is not a cell address", f.StartingCell)
		}
		cfg.StartingCell = &start
	}
	if !f.Document.IsZero() {
		doc := f.Document
		cfg.WorkbookProperties = &doc
	}
	return cfg, nil
}

// LoggerConfig returns the logger configuration described by f.
func (f *File) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	if f.Log.Level != "" {
		cfg.Level = f.Log.Level
	}
	if f.Log.Encoding != "" {
		cfg.Encoding = f.Log.Encoding
	}
	return cfg
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
