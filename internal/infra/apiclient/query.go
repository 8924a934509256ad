package apiclient

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// Query holds scalar query parameters. Keys whose value is nil, a nil pointer or
// the empty string are left out of the encoded string; zero numbers and false are kept.
type Query map[string]any

// Encode renders q with keys sorted. Non-scalar values are rejected.
func (q Query) Encode() (string, error) {
	if len(q) == 0 {
		return "", nil
	}
	values := url.Values{}
	for key, raw := range q {
		value, ok, err := formatQueryValue(raw)
		if err != nil {
			return "", fmt.Errorf("query %q: %w", key, err)
		}
		if !ok {
			continue
		}
		values.Set(key, value)
	}
	return values.Encode(), nil
}

func formatQueryValue(raw any) (string, bool, error) {
	if raw == nil {
		return "", false, nil
	}
	switch v := raw.(type) {
	case string:
		return v, v != "", nil
	case time.Time:
		if v.IsZero() {
			return "", false, nil
		}
		return v.Format(time.RFC3339), true, nil
	case fmt.Stringer:
		rv := reflect.ValueOf(raw)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "", false, nil
		}
		s := v.String()
		return s, s != "", nil
	}

	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		s := rv.String()
		return s, s != "", nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true, nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true, nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true, nil
	default:
		return "", false, fmt.Errorf("unsupported value of type %T", raw)
	}
}
