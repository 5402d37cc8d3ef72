// Package objects provides small value helpers used around event
// payloads: deep cloning, selective map exposure, and kind checks.
package objects

import (
	"reflect"
	"regexp"
	"time"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	regexpType = reflect.TypeOf((*regexp.Regexp)(nil))
)

// Clone returns a deep copy of v. Maps, slices, arrays, pointers, and
// structs are copied recursively. time.Time values are copied as-is and
// *regexp.Regexp values are recompiled, so neither is shared with the
// original. Channels and functions are returned unchanged.
func Clone(v any) any {
	if v == nil {
		return nil
	}
	return cloneValue(reflect.ValueOf(v)).Interface()
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		if v.Type() == regexpType {
			re := v.Interface().(*regexp.Regexp)
			return reflect.ValueOf(regexp.MustCompile(re.String()))
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneValue(v.Elem()))
		return out

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneValue(v.Elem()))
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(cloneValue(iter.Key()), cloneValue(iter.Value()))
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out

	case reflect.Struct:
		if v.Type() == timeType {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		// Shallow copy first so unexported fields carry over, then deep
		// copy the settable ones.
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			f := out.Field(i)
			if f.CanSet() {
				f.Set(cloneValue(v.Field(i)))
			}
		}
		return out

	default:
		return v
	}
}

// Expose copies the named keys from src into dst, overwriting existing
// entries. With no keys given, every key of src is copied. Keys absent
// from src are skipped.
func Expose(dst, src map[string]any, keys ...string) {
	if dst == nil || src == nil {
		return
	}
	if len(keys) == 0 {
		for k, v := range src {
			dst[k] = v
		}
		return
	}
	for _, k := range keys {
		if v, ok := src[k]; ok {
			dst[k] = v
		}
	}
}

// IsArray reports whether v is a slice or an array.
func IsArray(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// IsNone reports whether v is absent: nil itself, a typed nil pointer,
// or a nil interface. Empty collections are values, not none.
func IsNone(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
