package projector

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

// SkippedRow records a data row that could not be turned into a record.
type SkippedRow struct {
	// Row is the index of the row within the input (the header is row 0).
	Row int `json:"row"`
	// Reason explains why the row was skipped.
	Reason string `json:"reason"`
}

// Batch is the result of rebuilding records from rows.
type Batch struct {
	// Objects holds the rebuilt records in row order.
	Objects []interface{}
	// Skipped lists rows that failed conversion.
	Skipped []SkippedRow
	// Warnings holds non-fatal notes such as unknown columns.
	Warnings []string
}

// FromRows rebuilds records from rows whose first row is the header.
//
// With a nil shape, or a models.GenericRecord shape, every data row becomes a
// *models.GenericRecord. A struct shape T yields T values and *T yields
// pointers; a map shape with string keys yields one map per row. Columns are
// matched positionally against the header up to the shorter of the two rows;
// columns with a blank header cell are ignored. Fewer than two rows produce an
// empty batch.
func FromRows(rows []models.TableRow, shape reflect.Type) (*Batch, error) {
	batch := &Batch{}

	generic := shape == nil || indirect(shape) == genericType
	if !generic && !isRecordShape(shape) {
		return batch, &ShapeError{Type: shape}
	}
	if len(rows) < 2 {
		return batch, nil
	}

	header := make([]string, len(rows[0].Content))
	for i, v := range rows[0].Content {
		header[i] = toString(v)
	}

	if generic {
		byValue := shape != nil && shape.Kind() != reflect.Pointer
		for _, row := range rows[1:] {
			rec := genericRecord(header, row)
			if byValue {
				batch.Objects = append(batch.Objects, *rec)
				continue
			}
			batch.Objects = append(batch.Objects, rec)
		}
		return batch, nil
	}

	if indirect(shape).Kind() == reflect.Map {
		for _, row := range rows[1:] {
			obj, err := mapRecord(shape, header, row)
			if err != nil {
				return batch, err
			}
			batch.Objects = append(batch.Objects, obj)
		}
		return batch, nil
	}

	d := descriptorFor(indirect(shape))
	fields := make([]*field, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		f, ok := d.lookup(name)
		if !ok {
			batch.Warnings = append(batch.Warnings,
				fmt.Sprintf("column %q does not match a property of %s and is ignored", name, d.typ))
			continue
		}
		fields[i] = &f
	}

	for r, row := range rows[1:] {
		obj, err := structRecord(shape, fields, row)
		if err != nil {
			batch.Skipped = append(batch.Skipped, SkippedRow{Row: r + 1, Reason: err.Error()})
			continue
		}
		batch.Objects = append(batch.Objects, obj)
	}

	return batch, nil
}

// Decode rebuilds records of type T from rows. See FromRows.
func Decode[T any](rows []models.TableRow) ([]T, []SkippedRow, error) {
	batch, err := FromRows(rows, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, nil, err
	}
	out := make([]T, 0, len(batch.Objects))
	for _, obj := range batch.Objects {
		out = append(out, obj.(T))
	}
	return out, batch.Skipped, nil
}

func isRecordShape(t reflect.Type) bool {
	switch base := indirect(t); base.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return base.Key().Kind() == reflect.String && t.Kind() == reflect.Map
	default:
		return false
	}
}

func structRecord(shape reflect.Type, fields []*field, row models.TableRow) (interface{}, error) {
	ptr := reflect.New(indirect(shape))
	v := ptr.Elem()

	n := min(len(fields), len(row.Content))
	for i := 0; i < n; i++ {
		f := fields[i]
		if f == nil {
			continue
		}
		if err := assign(f.settable(v), row.Content[i]); err != nil {
			return nil, fmt.Errorf("column %q: %w", f.name, err)
		}
	}

	if shape.Kind() == reflect.Pointer {
		return ptr.Interface(), nil
	}
	return v.Interface(), nil
}

func mapRecord(shape reflect.Type, header []string, row models.TableRow) (interface{}, error) {
	m := reflect.MakeMap(shape)
	n := min(len(header), len(row.Content))
	for i := 0; i < n; i++ {
		if header[i] == "" {
			continue
		}
		val := reflect.New(shape.Elem()).Elem()
		if err := assign(val, row.Content[i]); err != nil {
			return nil, fmt.Errorf("column %q: %w", header[i], err)
		}
		m.SetMapIndex(reflect.ValueOf(header[i]).Convert(shape.Key()), val)
	}
	return m.Interface(), nil
}

func genericRecord(header []string, row models.TableRow) *models.GenericRecord {
	rec := models.NewGenericRecord()
	n := min(len(header), len(row.Content))
	for i := 0; i < n; i++ {
		key, value := header[i], row.Content[i]
		switch key {
		case "":
			continue
		case "ID":
			if id, err := uuid.Parse(strings.TrimSpace(toString(value))); err == nil {
				rec.ID = id
				continue
			}
			rec.CustomData.Set(key, value)
		case "Name":
			rec.Name = toString(value)
		case "Tags":
			rec.Tags = splitList(toString(value))
		default:
			rec.CustomData.Set(key, value)
		}
	}
	return rec
}
