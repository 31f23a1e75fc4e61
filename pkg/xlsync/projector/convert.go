package projector

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// displayLayouts are the excelize default date displays, tried when text is
// not in a layout cast knows.
var displayLayouts = []string{
	"01-02-06",
	"1/2/06 15:04",
}

// assign stores a cell value into dst, converting it to dst's type.
// Empty cells leave dst at its zero value.
func assign(dst reflect.Value, raw interface{}) error {
	if raw == nil {
		return nil
	}
	if s, ok := raw.(string); ok && s == "" && dst.Kind() != reflect.String {
		return nil
	}

	src := reflect.ValueOf(raw)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), raw); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if dst.Type() == timeType {
		t, err := toTime(raw)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	if s, ok := raw.(string); ok && dst.CanAddr() && dst.Addr().Type().Implements(textUnmarshalerType) {
		return dst.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(strings.TrimSpace(s)))
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(toString(raw))
	case reflect.Bool:
		b, err := toBool(raw)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(raw)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toUint(raw)
		if err != nil {
			return err
		}
		if dst.OverflowUint(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		f, err := toFloat(raw)
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("cannot assign %T to %s", raw, dst.Type())
		}
		parts := splitList(toString(raw))
		out := reflect.MakeSlice(dst.Type(), len(parts), len(parts))
		for i, p := range parts {
			out.Index(i).SetString(p)
		}
		dst.Set(out)
	case reflect.Interface:
		if !src.Type().Implements(dst.Type()) {
			return fmt.Errorf("cannot assign %T to %s", raw, dst.Type())
		}
		dst.Set(src)
	default:
		if src.Type().ConvertibleTo(dst.Type()) && src.Kind() == dst.Kind() {
			dst.Set(src.Convert(dst.Type()))
			return nil
		}
		return fmt.Errorf("cannot assign %T to %s", raw, dst.Type())
	}
	return nil
}

// integerText is base-10 integer text. cast parses integer text with base
// prefixes, so leading zeros are trimmed before it sees the value.
var integerText = regexp.MustCompile(`^[+-]?[0-9]+$`)

const twoTo63 = 1 << 63

func toInt(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case float64:
		return floatToInt(v)
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", v)
		}
	case string:
		s := strings.TrimSpace(v)
		if !integerText.MatchString(s) {
			f, err := cast.ToFloat64E(s)
			if err != nil {
				return 0, fmt.Errorf("cannot parse %q as an integer", s)
			}
			return floatToInt(f)
		}
		raw = trimLeadingZeros(s)
	}

	n, err := cast.ToInt64E(raw)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as an integer", toString(raw))
	}
	return n, nil
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("value %v is not a whole number", f)
	}
	if f < -twoTo63 || f >= twoTo63 {
		return 0, fmt.Errorf("value %v overflows int64", f)
	}
	return int64(f), nil
}

func toUint(raw interface{}) (uint64, error) {
	switch v := raw.(type) {
	case uint64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("value %v is not a whole number", v)
		}
		if v < 0 || v >= 2*twoTo63 {
			return 0, fmt.Errorf("value %v overflows uint64", v)
		}
		return uint64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if integerText.MatchString(s) {
			n, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("cannot parse %q as an unsigned integer", s)
			}
			return n, nil
		}
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as an unsigned integer", s)
		}
		return toUint(f)
	}

	n, err := cast.ToUint64E(raw)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as an unsigned integer", toString(raw))
	}
	return n, nil
}

// trimLeadingZeros keeps the sign and at least one digit.
func trimLeadingZeros(s string) string {
	sign := ""
	if s[0] == '+' || s[0] == '-' {
		sign, s = s[:1], s[1:]
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return sign + s
}

func toFloat(raw interface{}) (float64, error) {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as a number", toString(raw))
	}
	return f, nil
}

func toBool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case int64:
		return v != 0, nil
	case uint64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		raw = strings.TrimSpace(v)
	}

	b, err := cast.ToBoolE(raw)
	if err != nil {
		return false, fmt.Errorf("cannot parse %q as a boolean", toString(raw))
	}
	return b, nil
}

// Numbers are spreadsheet serial dates, never Unix times.
func toTime(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case float64:
		return excelize.ExcelDateToTime(v, false)
	case int64:
		return excelize.ExcelDateToTime(float64(v), false)
	case uint64:
		return excelize.ExcelDateToTime(float64(v), false)
	}

	s := strings.TrimSpace(toString(raw))
	if t, err := cast.ToTimeE(s); err == nil {
		return t, nil
	}
	for _, layout := range displayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if f, err := cast.ToFloat64E(s); err == nil {
		return excelize.ExcelDateToTime(f, false)
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a time", s)
}

// splitList reverses the ", " join used when flattening slices.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
