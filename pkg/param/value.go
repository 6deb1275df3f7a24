package param

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType is the declared type of a parameter. It drives the SQLite
// column type of the parameter's variation column and the text form
// written into the configuration tree.
type ValueType string

const (
	TypeString ValueType = "string"
	TypeInt    ValueType = "int"
	TypeFloat  ValueType = "float"
	TypeBool   ValueType = "bool"
)

// ColumnType returns the SQLite column type for the declared value type.
func (t ValueType) ColumnType() string {
	switch t {
	case TypeInt, TypeBool:
		return "INTEGER"
	case TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Valid reports whether t is a known value type.
func (t ValueType) Valid() bool {
	switch t {
	case TypeString, TypeInt, TypeFloat, TypeBool:
		return true
	}
	return false
}

// Value is a tagged parameter value. Exactly the payload field matching
// Type is meaningful; the zero Value is a TypeString empty string.
type Value struct {
	Type  ValueType
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// String makes a string Value.
func String(s string) Value { return Value{Type: TypeString, Str: s} }

// Int makes an int Value.
func Int(i int64) Value { return Value{Type: TypeInt, Int: i} }

// Float makes a float Value.
func Float(f float64) Value { return Value{Type: TypeFloat, Float: f} }

// Bool makes a bool Value.
func Bool(b bool) Value { return Value{Type: TypeBool, Bool: b} }

// FromFloat converts a point in a continuous design dimension into a
// Value of the declared type. Ints are rounded to nearest, bools read
// f >= 0.5, strings carry the shortest float representation.
func FromFloat(t ValueType, f float64) Value {
	switch t {
	case TypeInt:
		if f < 0 {
			return Int(int64(f - 0.5))
		}
		return Int(int64(f + 0.5))
	case TypeBool:
		return Bool(f >= 0.5)
	case TypeString:
		return String(strconv.FormatFloat(f, 'g', -1, 64))
	default:
		return Float(f)
	}
}

// SQL returns the value as a database/sql driver argument.
func (v Value) SQL() any {
	switch v.Type {
	case TypeInt:
		return v.Int
	case TypeFloat:
		return v.Float
	case TypeBool:
		if v.Bool {
			return int64(1)
		}
		return int64(0)
	default:
		return v.Str
	}
}

// Text returns the value as written into the configuration tree.
func (v Value) Text() string {
	switch v.Type {
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case TypeBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return v.Str
	}
}

// Equal reports whether two values have the same type and payload.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeInt:
		return v.Int == o.Int
	case TypeFloat:
		return v.Float == o.Float
	case TypeBool:
		return v.Bool == o.Bool
	default:
		return v.Str == o.Str
	}
}

// Parse converts a text form back into a Value of the given type.
func Parse(t ValueType, s string) (Value, error) {
	switch t {
	case TypeInt:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as int: %w", s, err)
		}
		return Int(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as float: %w", s, err)
		}
		return Float(f), nil
	case TypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as bool: %w", s, err)
		}
		return Bool(b), nil
	case TypeString:
		return String(s), nil
	default:
		return Value{}, fmt.Errorf("unknown value type %q", t)
	}
}

// ScanSQL converts a value read back from the store into a typed Value.
func ScanSQL(t ValueType, raw any) (Value, error) {
	switch t {
	case TypeInt, TypeBool:
		var i int64
		switch x := raw.(type) {
		case int64:
			i = x
		case float64:
			i = int64(x)
		default:
			return Value{}, fmt.Errorf("unexpected %T for %s column", raw, t)
		}
		if t == TypeBool {
			return Bool(i != 0), nil
		}
		return Int(i), nil
	case TypeFloat:
		switch x := raw.(type) {
		case float64:
			return Float(x), nil
		case int64:
			return Float(float64(x)), nil
		default:
			return Value{}, fmt.Errorf("unexpected %T for float column", raw)
		}
	default:
		switch x := raw.(type) {
		case string:
			return String(x), nil
		case []byte:
			return String(string(x)), nil
		default:
			return Value{}, fmt.Errorf("unexpected %T for string column", raw)
		}
	}
}
