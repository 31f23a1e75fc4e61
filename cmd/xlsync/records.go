package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/projector"
)

// record is one input object with its keys in file order.
type record struct {
	keys   []string
	values map[string]interface{}
}

func (r *record) set(key string, value interface{}) {
	if r.values == nil {
		r.values = make(map[string]interface{})
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be an object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		r.set(key, value)
	}
	return nil
}

func (r *record) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: record must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value interface{}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}
		r.set(node.Content[i].Value, value)
	}
	return nil
}

// readRecords decodes a JSON or YAML list of records from path. The format
// follows the extension; anything but .json is read as YAML.
func readRecords(path string) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &records)
	default:
		err = yaml.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// recordRows turns records into a header row and one row per record. If
// columns is empty, the columns are derived from the record keys the same
// way the library derives them from object properties.
func recordRows(records []record, columns []string) []models.TableRow {
	if len(columns) == 0 {
		keys := make([][]string, len(records))
		for i, r := range records {
			keys[i] = r.keys
		}
		columns = projector.UnionColumns(keys...)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	rows := []models.TableRow{{Content: header}}
	for _, r := range records {
		content := make([]interface{}, len(columns))
		for i, c := range columns {
			content[i] = cellValue(r.values[c])
		}
		rows = append(rows, models.TableRow{Content: content})
	}
	return rows
}

// cellValue converts a decoded value into a value a cell can hold.
func cellValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return ""
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return u
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case int:
		return int64(x)
	case string, bool, int64, uint64, float64, time.Time:
		return x
	case []interface{}:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = fmt.Sprint(cellValue(e))
		}
		return strings.Join(parts, ", ")
	default:
		if data, err := json.Marshal(x); err == nil {
			return string(data)
		}
		return fmt.Sprint(x)
	}
}
