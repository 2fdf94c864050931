package domain

import (
	"fmt"
	"math"
	"strings"
)

// ValueKind classifies a raw or computed value for formatting and schema checks.
type ValueKind int

const (
	// KindUnknown is any Go type without a built-in rendering.
	KindUnknown ValueKind = iota

	// KindNull is a missing value (SQL NULL).
	KindNull

	// KindInt covers all signed and unsigned integer types.
	KindInt

	// KindFloat covers float32 and float64.
	KindFloat

	// KindString covers string and []byte.
	KindString

	// KindBool is a boolean.
	KindBool
)

var kindNames = map[ValueKind]string{
	KindUnknown: "unknown",
	KindNull:    "null",
	KindInt:     "int",
	KindFloat:   "float",
	KindString:  "string",
	KindBool:    "bool",
}

// String returns the kind name as used in catalog files.
func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseValueKind maps a catalog file name to a kind. Single-letter type
// codes ("i", "f", "S") are accepted as aliases.
func ParseValueKind(s string) (ValueKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer", "i":
		return KindInt, nil
	case "float", "real", "double", "f":
		return KindFloat, nil
	case "string", "text", "str", "s":
		return KindString, nil
	case "bool", "boolean", "b":
		return KindBool, nil
	case "null":
		return KindNull, nil
	case "unknown", "default":
		return KindUnknown, nil
	default:
		return KindUnknown, fmt.Errorf("%w: value kind %q", ErrUnsupportedType, s)
	}
}

// KindOf classifies a Go value.
func KindOf(v any) ValueKind {
	switch v.(type) {
	case nil:
		return KindNull
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case string, []byte:
		return KindString
	case bool:
		return KindBool
	default:
		return KindUnknown
	}
}

// IsNull reports whether v counts as missing for CannotBeNull checks.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	default:
		return false
	}
}

// AsFloat converts a numeric value to float64.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

// FormatRules maps value kinds to printf verbs, e.g. {KindFloat: "%.12f"}.
// KindNull rules are printed literally.
type FormatRules map[ValueKind]string

// DefaultFormats are used for kinds a catalog does not override.
// KindUnknown deliberately has no default.
var DefaultFormats = FormatRules{
	KindInt:    "%d",
	KindFloat:  "%.4f",
	KindString: "%s",
	KindBool:   "%t",
	KindNull:   "NULL",
}

// Lookup returns the rule for kind, falling back to DefaultFormats.
func (r FormatRules) Lookup(kind ValueKind) (string, bool) {
	if f, ok := r[kind]; ok {
		return f, true
	}
	f, ok := DefaultFormats[kind]
	return f, ok
}

// Render formats v with the rule for its kind.
func (r FormatRules) Render(v any) (string, error) {
	kind := KindOf(v)
	format, ok := r.Lookup(kind)
	if !ok {
		return "", &FormatError{Kind: kind, Type: fmt.Sprintf("%T", v)}
	}
	switch kind {
	case KindNull:
		return format, nil
	case KindString:
		if b, isBytes := v.([]byte); isBytes {
			return fmt.Sprintf(format, string(b)), nil
		}
	}
	return fmt.Sprintf(format, v), nil
}
