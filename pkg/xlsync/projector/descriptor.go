package projector

import (
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag used to rename or skip a field.
// `xlsync:"Column Name"` renames, `xlsync:"-"` skips.
const TagName = "xlsync"

// field describes one exported property of a record type.
type field struct {
	name  string
	index []int
	typ   reflect.Type
}

// descriptor is the field table of a struct type, built once per type.
type descriptor struct {
	typ    reflect.Type
	fields []field
	byName map[string]int
	folded map[string]int
}

var descriptors sync.Map // reflect.Type -> *descriptor

// descriptorFor returns the field table of struct type t.
func descriptorFor(t reflect.Type) *descriptor {
	if d, ok := descriptors.Load(t); ok {
		return d.(*descriptor)
	}

	d := &descriptor{
		typ:    t,
		byName: make(map[string]int),
		folded: make(map[string]int),
	}
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() {
			continue
		}
		// Promoted fields of embedded structs are listed separately.
		if sf.Anonymous && indirect(sf.Type).Kind() == reflect.Struct {
			continue
		}

		name := sf.Name
		if tag, ok := sf.Tag.Lookup(TagName); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		if _, dup := d.byName[name]; dup {
			continue
		}

		d.byName[name] = len(d.fields)
		if _, dup := d.folded[strings.ToLower(name)]; !dup {
			d.folded[strings.ToLower(name)] = len(d.fields)
		}
		d.fields = append(d.fields, field{name: name, index: sf.Index, typ: sf.Type})
	}

	actual, _ := descriptors.LoadOrStore(t, d)
	return actual.(*descriptor)
}

// lookup finds a field by exact name, falling back to a case-insensitive match.
func (d *descriptor) lookup(name string) (field, bool) {
	if i, ok := d.byName[name]; ok {
		return d.fields[i], true
	}
	if i, ok := d.folded[strings.ToLower(name)]; ok {
		return d.fields[i], true
	}
	return field{}, false
}

// get returns the value of f in struct value v. The second result is false
// when an embedded pointer on the path is nil.
func (f field) get(v reflect.Value) (reflect.Value, bool) {
	fv, err := v.FieldByIndexErr(f.index)
	if err != nil {
		return reflect.Value{}, false
	}
	return fv, true
}

// settable returns the field of f in struct value v, allocating nil embedded
// pointers on the way.
func (f field) settable(v reflect.Value) reflect.Value {
	for i, x := range f.index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
