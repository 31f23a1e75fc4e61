// Package projector flattens records into table rows and rebuilds records
// from table rows.
package projector

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

// IgnoredProperties are left out of auto-derived column sets.
var IgnoredProperties = []string{"Tags", "CustomData", "Fragments"}

var (
	tableRowType = reflect.TypeOf(models.TableRow{})
	genericType  = reflect.TypeOf(models.GenericRecord{})
	timeType     = reflect.TypeOf(time.Time{})
	stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

// propertySet is the flattened view of one record.
type propertySet struct {
	names  []string
	values map[string]string
}

// ToRows flattens objects into a header row followed by one row per object.
// Nil objects are dropped. All remaining objects must share one type.
// If properties is empty, the columns are the union of the objects'
// property names in first-seen order, minus IgnoredProperties.
// Objects that are already table rows are returned as they are.
func ToRows(objects []interface{}, properties []string) ([]models.TableRow, error) {
	objects = Compact(objects)
	if len(objects) == 0 {
		return nil, ErrNoObjects
	}
	if err := checkSingleType(objects); err != nil {
		return nil, err
	}
	if rows, ok := asTableRows(objects); ok {
		return rows, nil
	}

	sets := make([]propertySet, len(objects))
	for i, obj := range objects {
		set, err := flatten(obj)
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}

	columns := properties
	if len(columns) == 0 {
		columns = deriveColumns(sets)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	rows := make([]models.TableRow, 0, len(sets)+1)
	rows = append(rows, models.TableRow{Content: header})

	for _, set := range sets {
		content := make([]interface{}, len(columns))
		for i, c := range columns {
			if v, ok := set.values[c]; ok {
				content[i] = v
			} else {
				content[i] = ""
			}
		}
		rows = append(rows, models.TableRow{Content: content})
	}

	return rows, nil
}

// Columns returns the column set ToRows would derive for objects.
func Columns(objects []interface{}) ([]string, error) {
	rows, err := ToRows(objects, nil)
	if err != nil {
		return nil, err
	}
	header := make([]string, len(rows[0].Content))
	for i, v := range rows[0].Content {
		header[i] = toString(v)
	}
	return header, nil
}

// Compact returns objects without nil values and nil pointers.
func Compact(objects []interface{}) []interface{} {
	out := make([]interface{}, 0, len(objects))
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		if v := reflect.ValueOf(obj); v.Kind() == reflect.Pointer && v.IsNil() {
			continue
		}
		out = append(out, obj)
	}
	return out
}

func checkSingleType(objects []interface{}) error {
	var types []reflect.Type
	seen := make(map[reflect.Type]bool)
	for _, obj := range objects {
		t := reflect.TypeOf(obj)
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	if len(types) != 1 {
		return &MixedTypesError{Types: types}
	}
	return nil
}

func asTableRows(objects []interface{}) ([]models.TableRow, bool) {
	if indirect(reflect.TypeOf(objects[0])) != tableRowType {
		return nil, false
	}
	rows := make([]models.TableRow, len(objects))
	for i, obj := range objects {
		switch r := obj.(type) {
		case models.TableRow:
			rows[i] = r
		case *models.TableRow:
			rows[i] = *r
		}
	}
	return rows, true
}

func deriveColumns(sets []propertySet) []string {
	lists := make([][]string, len(sets))
	for i, set := range sets {
		lists[i] = set.names
	}
	return UnionColumns(lists...)
}

// UnionColumns merges lists of property names into one column list in
// first-seen order, leaving out IgnoredProperties.
func UnionColumns(lists ...[]string) []string {
	ignored := make(map[string]bool, len(IgnoredProperties))
	for _, p := range IgnoredProperties {
		ignored[p] = true
	}

	var columns []string
	seen := make(map[string]bool)
	for _, names := range lists {
		for _, name := range names {
			if seen[name] || ignored[name] {
				continue
			}
			seen[name] = true
			columns = append(columns, name)
		}
	}
	return columns
}

// flatten resolves obj to its ordered property names and string values.
func flatten(obj interface{}) (propertySet, error) {
	set := propertySet{values: make(map[string]string)}
	add := func(name string, v reflect.Value) {
		if _, ok := set.values[name]; !ok {
			set.names = append(set.names, name)
		}
		set.values[name] = stringify(v)
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return set, nil
		}
		v = v.Elem()
	}

	switch {
	case v.Type() == genericType:
		rec := v.Interface().(models.GenericRecord)
		add("ID", reflect.ValueOf(rec.ID))
		add("Name", reflect.ValueOf(rec.Name))
		add("Tags", reflect.ValueOf(rec.Tags))
		for _, k := range rec.CustomData.Keys() {
			val, _ := rec.CustomData.Get(k)
			add(k, reflect.ValueOf(val))
		}
	case v.Kind() == reflect.Struct:
		d := descriptorFor(v.Type())
		for _, f := range d.fields {
			fv, ok := f.get(v)
			if !ok {
				add(f.name, reflect.Value{})
				continue
			}
			add(f.name, fv)
		}
	case v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String:
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(k, v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key())))
		}
	default:
		return set, &ShapeError{Type: v.Type()}
	}

	return set, nil
}

// stringify renders a property value as cell text.
func stringify(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		if v.Kind() == reflect.Pointer && v.Elem().Type() != timeType && v.Type().Implements(stringerType) {
			return v.Interface().(fmt.Stringer).String()
		}
		v = v.Elem()
	}

	if v.Type() == timeType {
		return v.Interface().(time.Time).Format(time.RFC3339)
	}
	if v.CanInterface() && v.Type().Implements(stringerType) {
		return v.Interface().(fmt.Stringer).String()
	}

	switch v.Kind() {
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes())
		}
		fallthrough
	case reflect.Array:
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = stringify(v.Index(i))
		}
		return strings.Join(parts, ", ")
	}

	if !v.CanInterface() {
		return ""
	}
	return fmt.Sprint(v.Interface())
}

// toString renders a raw cell value as text.
func toString(v interface{}) string {
	return stringify(reflect.ValueOf(v))
}
