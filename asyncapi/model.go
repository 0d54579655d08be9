package asyncapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind enumerates the closed set of model descriptor variants. Every place a
// model is consulted (request coercion, response checking, emit checking,
// schema resolution) switches exhaustively over this set.
type Kind uint8

const (
	// KindNone is the zero value: no descriptor was supplied.
	KindNone Kind = iota
	// KindNotProvided is the sentinel for "declared, but no schema available".
	KindNotProvided
	// KindRecord is a structured record type with named, typed fields.
	KindRecord
	KindInt
	KindString
	KindBool
	KindFloat
	// KindObject is a generic untyped container.
	KindObject
)

// String returns the JSON Schema name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotProvided:
		return "NotProvided"
	case KindRecord:
		return "record"
	case KindInt:
		return "integer"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindFloat:
		return "number"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Model is a tagged reference to the payload shape declared for an event.
// The zero value means "no model supplied"; use NotProvided for "declared
// without a schema".
type Model struct {
	kind Kind
	typ  reflect.Type // record type, always a struct
}

// Predeclared primitive and sentinel descriptors.
var (
	None        = Model{}
	NotProvided = Model{kind: KindNotProvided}
	Int         = Model{kind: KindInt}
	String      = Model{kind: KindString}
	Bool        = Model{kind: KindBool}
	Float       = Model{kind: KindFloat}
	Object      = Model{kind: KindObject}
)

// Record returns the descriptor for a structured record type. T must be a
// struct (or pointer to struct); anything else panics at registration time.
func Record[T any]() Model {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("asyncapi: Record requires a struct type, got %s", t))
	}
	return Model{kind: KindRecord, typ: t}
}

// Kind returns the descriptor variant.
func (m Model) Kind() Kind { return m.kind }

// IsZero reports whether no descriptor was supplied.
func (m Model) IsZero() bool { return m.kind == KindNone }

// Equal reports whether two descriptors refer to the same shape. Drives the
// DocEmit idempotence check.
func (m Model) Equal(o Model) bool { return m.kind == o.kind && m.typ == o.typ }

// Name returns the schema name used in documents and error messages.
func (m Model) Name() string {
	if m.kind == KindRecord {
		return m.typ.Name()
	}
	return m.kind.String()
}

// active reports whether the descriptor participates in validation.
func (m Model) active() bool {
	return m.kind != KindNone && m.kind != KindNotProvided
}

// coerce validates a decoded wire payload against the model and returns the
// canonical value handed to the user handler: the record type itself for
// records, int / float64 / string / bool / map for primitives and containers.
func (m Model) coerce(raw any) (any, error) {
	switch m.kind {
	case KindNone, KindNotProvided:
		return raw, nil
	case KindRecord:
		buf, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.DisallowUnknownFields()
		out := reflect.New(m.typ)
		if err := dec.Decode(out.Interface()); err != nil {
			return nil, err
		}
		return out.Elem().Interface(), nil
	case KindInt:
		switch v := raw.(type) {
		case float64:
			if v == math.Trunc(v) {
				return int(v), nil
			}
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n, nil
			}
		}
	case KindFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
	case KindString:
		if v, ok := raw.(string); ok {
			return v, nil
		}
	case KindBool:
		if v, ok := raw.(bool); ok {
			return v, nil
		}
	case KindObject:
		if raw != nil && reflect.ValueOf(raw).Kind() == reflect.Map {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %T to %s", raw, m.Name())
}

// check verifies the runtime type of an in-process value (handler result or
// emit payload) against the model. Unlike coerce it never converts.
func (m Model) check(v any) error {
	switch m.kind {
	case KindNone, KindNotProvided:
		return nil
	case KindRecord:
		t := reflect.TypeOf(v)
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == m.typ {
			return nil
		}
	case KindInt:
		switch reflect.ValueOf(v).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return nil
		}
	case KindFloat:
		switch reflect.ValueOf(v).Kind() {
		case reflect.Float32, reflect.Float64:
			return nil
		}
	case KindString:
		if _, ok := v.(string); ok {
			return nil
		}
	case KindBool:
		if _, ok := v.(bool); ok {
			return nil
		}
	case KindObject:
		if v != nil && reflect.ValueOf(v).Kind() == reflect.Map {
			return nil
		}
	}
	return fmt.Errorf("value of type %T does not match %s", v, m.Name())
}

// modelForType derives a descriptor from a Go type, used by OnTyped to fill
// in models from the handler signature.
func modelForType(t reflect.Type) Model {
	switch t.Kind() {
	case reflect.Pointer:
		return modelForType(t.Elem())
	case reflect.Struct:
		return Model{kind: KindRecord, typ: t}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.String:
		return String
	case reflect.Bool:
		return Bool
	case reflect.Map:
		return Object
	default:
		return NotProvided
	}
}

// toPlainMap serializes a record instance to a plain keyed mapping so the
// transport's encoder does not need model awareness.
func toPlainMap(v any) (map[string]any, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// isRecordValue reports whether v is a struct or pointer to struct.
func isRecordValue(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}
