package safe

import (
	"encoding/json"
	"errors"
	"math"
	"math/cmplx"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// maxDeref bounds pointer chasing so a self-referencing pointer cannot loop.
const maxDeref = 8

// Image returns the trimmed input when it is a non-blank string, otherwise
// the registry's feature image.
func Image(v any) string {
	return ImageOr(v, registry.FeatureImage)
}

// ImageOr returns the trimmed input when it is a non-blank string, otherwise
// fallback unchanged.
func ImageOr(v any, fallback string) string {
	if s, ok := text(v); ok {
		return s
	}
	return fallback
}

// Text returns the trimmed input when it is a non-blank string, otherwise "".
func Text(v any) string {
	return TextOr(v, "")
}

// TextOr returns the trimmed input when it is a non-blank string, otherwise
// fallback unchanged.
func TextOr(v any, fallback string) string {
	if s, ok := text(v); ok {
		return s
	}
	return fallback
}

// Array returns a new slice with the truthy elements of v in their original
// order. Any input that is not a slice or array yields an empty slice.
func Array(v any) []any {
	if out, ok := list(v); ok {
		return out
	}
	return []any{}
}

// ArrayOf is Array restricted to elements whose dynamic type is T. A []T
// input is filtered directly; a []any input (as decoded from JSON or YAML)
// keeps the truthy elements that are a T.
func ArrayOf[T any](v any) []T {
	out := make([]T, 0)
	if typed, ok := v.([]T); ok {
		for _, e := range typed {
			if Truthy(e) {
				out = append(out, e)
			}
		}
		return out
	}
	for _, e := range Array(v) {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Strings normalizes a list of display strings: non-string elements are
// dropped and the rest are trimmed, with blanks removed.
func Strings(v any) []string {
	in := ArrayOf[string](v)
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t, ok := text(s); ok {
			out = append(out, t)
		}
	}
	return out
}

// Number coerces v to a number, returning 0 when it does not parse.
func Number(v any) float64 {
	return NumberOr(v, 0)
}

// NumberOr coerces v to a number. Numeric kinds, numeric strings and
// json.Number are accepted; the result is rejected only when it is NaN.
func NumberOr(v any, fallback float64) float64 {
	if n, ok := number(v); ok {
		return n
	}
	return fallback
}

// Boolean is BooleanOr with a false fallback.
func Boolean(v any) bool {
	return BooleanOr(v, false)
}

// BooleanOr interprets v as a flag. Bools pass through, the words
// true/1/yes/y and false/0/no/n are matched case-insensitively, and numbers
// are true when non-zero. Everything else returns fallback.
func BooleanOr(v any, fallback bool) bool {
	if b, ok := boolean(v); ok {
		return b
	}
	return fallback
}

// Truthy reports whether v survives Array's filter. The falsy values are:
// absent (nil interface, or nil pointer, map, slice, func, chan, interface),
// false, numeric zero of any kind, NaN, the empty string, and a json.Number
// that is zero or unparsable. Everything else is truthy, including empty
// non-nil slices and maps and whitespace-only strings.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	if n, ok := v.(json.Number); ok {
		f, ok := parseNumber(string(n))
		return ok && f != 0 && !math.IsNaN(f)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		return c != 0 && !cmplx.IsNaN(c)
	case reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return !rv.IsNil()
	}
	return true
}

// unwrap dereferences pointers. It reports false when v is absent.
func unwrap(v any) (any, bool) {
	for range maxDeref {
		if v == nil {
			return nil, false
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v, true
		}
		if rv.IsNil() {
			return nil, false
		}
		v = rv.Elem().Interface()
	}
	return nil, false
}

func text(v any) (string, bool) {
	v, ok := unwrap(v)
	if !ok {
		return "", false
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.String {
			return "", false
		}
		s = rv.String()
	}
	s = trim(s)
	return s, s != ""
}

func list(v any) ([]any, bool) {
	v, ok := unwrap(v)
	if !ok {
		return nil, false
	}
	if in, ok := v.([]any); ok {
		out := make([]any, 0, len(in))
		for _, e := range in {
			if Truthy(e) {
				out = append(out, e)
			}
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, 0, rv.Len())
	for i := range rv.Len() {
		e := rv.Index(i).Interface()
		if Truthy(e) {
			out = append(out, e)
		}
	}
	return out, true
}

func number(v any) (float64, bool) {
	v, ok := unwrap(v)
	if !ok {
		return 0, false
	}

	var f float64
	switch t := v.(type) {
	case json.Number:
		f, ok = parseNumber(string(t))
	case string:
		f, ok = parseNumber(t)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.String {
			f, ok = parseNumber(rv.String())
		} else {
			f, ok = numericKind(rv)
		}
	}
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func numericKind(rv reflect.Value) (float64, bool) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// parseNumber parses a trimmed decimal, exponent, or 0x/0o/0b literal.
// Out-of-range values parse to ±Inf. Infinity is only spelled "Infinity",
// optionally signed; hex floats are not numbers.
func parseNumber(s string) (float64, bool) {
	s = trim(s)
	switch s {
	case "":
		return 0, false
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if strings.Contains(strings.ToLower(s), "inf") || isHexFloat(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return f, true
	}
	if errors.Is(err, strconv.ErrRange) {
		return f, true
	}
	return parseRadix(s)
}

func isHexFloat(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') && strings.ContainsAny(s, "pP.")
}

func parseRadix(s string) (float64, bool) {
	if len(s) < 3 || s[0] != '0' || strings.ContainsRune(s, '_') {
		return 0, false
	}
	switch s[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
	default:
		return 0, false
	}
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return float64(u), true
}

func boolean(v any) (bool, bool) {
	v, ok := unwrap(v)
	if !ok {
		return false, false
	}
	if n, ok := v.(json.Number); ok {
		f, ok := parseNumber(string(n))
		return f != 0, ok
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.String:
		switch strings.ToLower(trim(rv.String())) {
		case "true", "1", "yes", "y":
			return true, true
		case "false", "0", "no", "n":
			return false, true
		}
		return false, false
	}
	if f, ok := numericKind(rv); ok {
		return f != 0, true
	}
	return false, false
}

func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
