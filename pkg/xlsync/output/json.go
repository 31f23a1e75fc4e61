// Package output serializes xlsync results for the command line.
package output

import (
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ToJSON serializes v to JSON.
func ToJSON(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// WriteJSON writes v to w as JSON followed by a newline.
func WriteJSON(w io.Writer, v interface{}, pretty bool) error {
	data, err := ToJSON(v, pretty)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteJSONFile writes v as JSON to path, creating parent directories.
func WriteJSONFile(path string, v interface{}, pretty bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := ToJSON(v, pretty)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
