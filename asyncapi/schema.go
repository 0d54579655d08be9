package asyncapi

import (
	"encoding/json"
	"reflect"
	"strings"
	"unicode"

	"github.com/invopop/jsonschema"
)

// recordSchema derives a JSON Schema for a record type. Definitions are
// inlined so the result is self-contained under components/schemas and
// carries no internal references.
func recordSchema(t reflect.Type) (map[string]any, error) {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	schema := r.Reflect(reflect.New(t).Interface())

	buf, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, err
	}
	delete(m, "$schema")
	delete(m, "$id")
	if _, ok := m["title"]; !ok {
		m["title"] = t.Name()
	}
	return m, nil
}

// inlineSchema returns the minimal schema fragment for a primitive or
// generic-container kind.
func inlineSchema(k Kind) map[string]any {
	switch k {
	case KindInt:
		return map[string]any{"type": "integer"}
	case KindString:
		return map[string]any{"type": "string"}
	case KindBool:
		return map[string]any{"type": "boolean"}
	case KindFloat:
		return map[string]any{"type": "number"}
	case KindObject:
		return map[string]any{"type": "object"}
	default:
		return nil
	}
}

// titleCase upper-cases the first letter of every word, the default message
// naming for inbound events ("chat message" -> "Chat Message").
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}

// dedent strips the common leading whitespace from every non-blank line so
// that indented description literals render cleanly and repeated rendering
// stays stable.
func dedent(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin <= 0 {
		return s
	}
	for i, line := range lines {
		if len(line) >= margin {
			lines[i] = line[margin:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
