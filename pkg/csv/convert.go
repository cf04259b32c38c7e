package csv

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// toText converts a printable value to field text. The second result
// reports a null field: untyped nil, typed nil pointers, and *string nils
// all print as the dialect's null sentinel.
func toText(v any) (string, bool) {
	if v == nil {
		return "", true
	}
	switch v := v.(type) {
	case string:
		return v, false
	case *string:
		if v == nil {
			return "", true
		}
		return *v, false
	case []byte:
		return string(v), false
	case bool:
		return strconv.FormatBool(v), false
	case int:
		return strconv.Itoa(v), false
	case int8:
		return strconv.FormatInt(int64(v), 10), false
	case int16:
		return strconv.FormatInt(int64(v), 10), false
	case int32:
		return strconv.FormatInt(int64(v), 10), false
	case int64:
		return strconv.FormatInt(v, 10), false
	case uint:
		return strconv.FormatUint(uint64(v), 10), false
	case uint8:
		return strconv.FormatUint(uint64(v), 10), false
	case uint16:
		return strconv.FormatUint(uint64(v), 10), false
	case uint32:
		return strconv.FormatUint(uint64(v), 10), false
	case uint64:
		return strconv.FormatUint(v, 10), false
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), false
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), false
	case time.Time:
		return v.Format(time.RFC3339Nano), false
	case fmt.Stringer:
		return v.String(), false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", true
		}
		return toText(rv.Elem().Interface())
	}
	return fmt.Sprintf("%v", v), false
}

// isNumeric reports whether s is lexically a valid number, for the
// non-numeric quote policy.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
