package skemacore

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ValueAdapter is the host-runtime boundary. Read converts a raw host
// value into the engine's internal vocabulary before validation; Construct
// builds a raw host value from serialized parts. The core calls through
// this interface only and is otherwise independent of any host object
// model.
type ValueAdapter interface {
	Read(raw any) (any, error)
	Construct(shape string, parts any) (any, error)
}

// NativeAdapter is the default ValueAdapter: reflection-based
// normalization of arbitrary Go values into the vocabulary on the way in,
// identity on the way out.
type NativeAdapter struct{}

// Read normalizes raw: all integer kinds widen to int64, float32 to
// float64, typed slices and maps become []any / map[string]any, and
// structs flatten to maps honoring their json tags. Shared structure and
// cycles are preserved through an identity memo so cyclic host values stay
// cyclic rather than expanding forever.
func (NativeAdapter) Read(raw any) (any, error) {
	return readValue(reflect.ValueOf(raw), nil)
}

// Construct returns parts unchanged; the engine's vocabulary is already a
// usable Go value.
func (NativeAdapter) Construct(shape string, parts any) (any, error) {
	return parts, nil
}

func readValue(rv reflect.Value, memo map[uintptr]any) (any, error) {
	if !rv.IsValid() {
		return nil, nil
	}
	// Vocabulary types pass through before generic reflection kicks in.
	switch t := rv.Interface().(type) {
	case nil:
		return nil, nil
	case bool, int64, float64, string, json.Number,
		time.Time, time.Duration, uuid.UUID:
		return t, nil
	case *url.URL:
		return t, nil
	case []byte:
		return t, nil
	case []any:
		return readSlice(rv, memo)
	case map[string]any:
		return readMap(rv, memo)
	}
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<63-1 {
			return nil, fmt.Errorf("unsigned value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		// Pointer identities join the memo so struct chains that point back
		// at themselves normalize into cyclic maps instead of recursing
		// without bound.
		id := rv.Pointer()
		if memo == nil {
			memo = make(map[uintptr]any, 4)
		} else if c, ok := memo[id]; ok {
			return c, nil
		}
		elem := rv.Elem()
		if elem.Kind() == reflect.Struct && !isVocabStruct(elem) {
			out := make(map[string]any, elem.NumField())
			memo[id] = out
			if err := readStructInto(elem, out, memo); err != nil {
				return nil, err
			}
			return out, nil
		}
		memo[id] = nil
		ev, err := readValue(elem, memo)
		if err != nil {
			return nil, err
		}
		memo[id] = ev
		return ev, nil
	case reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return readValue(rv.Elem(), memo)
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), nil
		}
		return readSlice(rv, memo)
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := readValue(rv.Index(i), memo)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		return readMap(rv, memo)
	case reflect.Struct:
		return readStruct(rv, memo)
	default:
		return nil, fmt.Errorf("cannot adapt value of type %s", rv.Type())
	}
}

func readSlice(rv reflect.Value, memo map[uintptr]any) (any, error) {
	if rv.Len() > 0 {
		id := rv.Pointer()
		if memo == nil {
			memo = make(map[uintptr]any, 4)
		} else if c, ok := memo[id]; ok {
			return c, nil
		}
		out := make([]any, rv.Len())
		memo[id] = out
		for i := 0; i < rv.Len(); i++ {
			ev, err := readValue(rv.Index(i), memo)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	}
	return []any{}, nil
}

func readMap(rv reflect.Value, memo map[uintptr]any) (any, error) {
	id := rv.Pointer()
	if memo == nil {
		memo = make(map[uintptr]any, 4)
	} else if c, ok := memo[id]; ok {
		return c, nil
	}
	out := make(map[string]any, rv.Len())
	memo[id] = out
	iter := rv.MapRange()
	for iter.Next() {
		kv, err := readValue(iter.Key(), memo)
		if err != nil {
			return nil, err
		}
		ks, ok := kv.(string)
		if !ok {
			ks = fmt.Sprint(kv)
		}
		ev, err := readValue(iter.Value(), memo)
		if err != nil {
			return nil, err
		}
		out[ks] = ev
	}
	return out, nil
}

// isVocabStruct reports whether the struct is itself a vocabulary type and
// must not be flattened into a map.
func isVocabStruct(rv reflect.Value) bool {
	switch rv.Interface().(type) {
	case time.Time, url.URL:
		return true
	}
	return false
}

func readStruct(rv reflect.Value, memo map[uintptr]any) (any, error) {
	out := make(map[string]any, rv.NumField())
	if err := readStructInto(rv, out, memo); err != nil {
		return nil, err
	}
	return out, nil
}

func readStructInto(rv reflect.Value, out map[string]any, memo map[uintptr]any) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			base, _, _ := strings.Cut(tag, ",")
			if base == "-" {
				continue
			}
			if base != "" {
				name = base
			}
		}
		fv, err := readValue(rv.Field(i), memo)
		if err != nil {
			return err
		}
		out[name] = fv
	}
	return nil
}
