package apperrors

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ErrorsKey holds the itemized field errors of a ValidationError.
const ErrorsKey = "errors"

// ValueType is the closed set of kinds a context value may take.
type ValueType int

const (
	ValueString ValueType = iota
	ValueInt
	ValueBool
	ValueFieldErrors
)

// FieldError describes one invalid input field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Value is a context value of one of the supported kinds.
type Value struct {
	typ    ValueType
	str    string
	num    int
	flag   bool
	fields []FieldError
}

func (v Value) Type() ValueType {
	return v.typ
}

func (v Value) String() string {
	switch v.typ {
	case ValueString:
		return v.str
	case ValueInt:
		return fmt.Sprint(v.num)
	case ValueBool:
		return fmt.Sprint(v.flag)
	default:
		return fmt.Sprint(v.fields)
	}
}

func (v Value) Int() int {
	return v.num
}

func (v Value) Bool() bool {
	return v.flag
}

// FieldErrors returns a copy of the field errors held by the value.
func (v Value) FieldErrors() []FieldError {
	if v.typ != ValueFieldErrors {
		return nil
	}
	result := make([]FieldError, len(v.fields))
	copy(result, v.fields)
	return result
}

// Interface returns the underlying Go value.
func (v Value) Interface() any {
	switch v.typ {
	case ValueString:
		return v.str
	case ValueInt:
		return v.num
	case ValueBool:
		return v.flag
	default:
		return v.FieldErrors()
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// ContextField is one key/value pair of an error context.
type ContextField struct {
	Key   string
	Value Value
}

func StringField(key, value string) ContextField {
	return ContextField{Key: key, Value: Value{typ: ValueString, str: value}}
}

func IntField(key string, value int) ContextField {
	return ContextField{Key: key, Value: Value{typ: ValueInt, num: value}}
}

func BoolField(key string, value bool) ContextField {
	return ContextField{Key: key, Value: Value{typ: ValueBool, flag: value}}
}

// ErrorsField stores itemized field errors, usually under ErrorsKey.
func ErrorsField(key string, errs []FieldError) ContextField {
	fields := make([]FieldError, len(errs))
	copy(fields, errs)
	return ContextField{Key: key, Value: Value{typ: ValueFieldErrors, fields: fields}}
}

// Context is an ordered list of diagnostic fields.
type Context []ContextField

// Get returns the first value stored under key.
func (c Context) Get(key string) (Value, bool) {
	for _, field := range c {
		if field.Key == key {
			return field.Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of fields.
func (c Context) Len() int {
	return len(c)
}

func (c Context) clone() Context {
	if c == nil {
		return nil
	}
	result := make(Context, len(c))
	copy(result, c)
	return result
}

// MarshalJSON encodes the context as an object preserving field order.
func (c Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range c {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object written by MarshalJSON, keeping key order.
// Strings, integers, booleans and field error arrays are accepted.
func (c *Context) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("apperrors: context must be a JSON object, got %v", tok)
	}

	result := Context{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		field, err := decodeField(key, raw)
		if err != nil {
			return err
		}
		result = append(result, field)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = result
	return nil
}

func decodeField(key string, raw json.RawMessage) (ContextField, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ContextField{}, fmt.Errorf("apperrors: empty context value for %q", key)
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ContextField{}, err
		}
		return StringField(key, s), nil
	case '[':
		var errs []FieldError
		if err := json.Unmarshal(trimmed, &errs); err != nil {
			return ContextField{}, err
		}
		return ErrorsField(key, errs), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return ContextField{}, err
		}
		return BoolField(key, b), nil
	}

	var n int
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return ContextField{}, fmt.Errorf("apperrors: unsupported context value for %q: %s", key, trimmed)
	}
	return IntField(key, n), nil
}
