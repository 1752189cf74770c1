package dictflag

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parser converts the textual form of a flag argument into its typed value.
// A failed Parse is returned unchanged to the flag set, which attributes it
// to the flag being set.
type Parser interface {
	Parse(s string) (any, error)

	// Type names the parsed value type, mirroring pflag.Value.Type.
	Type() string
}

// Serializer converts a typed flag value back to its textual form. It is the
// inverse of Parse for well-formed values.
type Serializer func(value any) string

// defaultSerializer renders values with fmt. Sufficient for scalar types
// whose textual form round-trips through their parser.
func defaultSerializer(value any) string {
	return fmt.Sprintf("%v", value)
}

type stringParser struct{}

func (stringParser) Parse(s string) (any, error) { return s, nil }
func (stringParser) Type() string                { return "string" }

type intParser struct{}

func (intParser) Parse(s string) (any, error) {
	// Base 0 allows hex and octal literals, e.g. "0xFF".
	n, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		return nil, fmt.Errorf("invalid integer value %q", s)
	}
	return int(n), nil
}
func (intParser) Type() string { return "int" }

type floatParser struct{}

func (floatParser) Parse(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float value %q", s)
	}
	return f, nil
}
func (floatParser) Type() string { return "float" }

type boolParser struct{}

func (boolParser) Parse(s string) (any, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean value %q", s)
	}
	return b, nil
}
func (boolParser) Type() string { return "bool" }

// enumParser accepts only members of a fixed value set. With foldCase set,
// matching is case-insensitive and the canonical spelling from the value
// set is returned.
type enumParser struct {
	values   []string
	foldCase bool
}

func (p enumParser) Parse(s string) (any, error) {
	for _, v := range p.values {
		if v == s || (p.foldCase && strings.EqualFold(v, s)) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("value %q is not one of %s", s, strings.Join(p.values, "|"))
}
func (p enumParser) Type() string { return "enum" }

// sequenceParser parses a bracketed list literal such as [1,2,3] or
// ["a", "b"] into a []any of scalars. The literal is decoded as a YAML flow
// sequence, so quoting rules for elements containing spaces or commas come
// from YAML.
type sequenceParser struct{}

func (sequenceParser) Parse(s string) (any, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, fmt.Errorf("sequence value %q must be a bracketed list, e.g. [1,2,3]", s)
	}

	var elements []any
	if err := yaml.Unmarshal([]byte(trimmed), &elements); err != nil {
		return nil, fmt.Errorf("malformed sequence value %q: %v", s, err)
	}
	if elements == nil {
		// An empty literal is an empty list, not an unset value.
		elements = []any{}
	}

	for _, element := range elements {
		if !isScalar(element) {
			return nil, fmt.Errorf("sequence value %q contains non-scalar element of type %T", s, element)
		}
	}
	return elements, nil
}
func (sequenceParser) Type() string { return "sequence" }

// serializeSequence renders a []any back to its bracketed literal form.
func serializeSequence(value any) string {
	elements, ok := value.([]any)
	if !ok {
		return fmt.Sprintf("%v", value)
	}

	parts := make([]string, len(elements))
	for i, element := range elements {
		parts[i] = fmt.Sprintf("%v", element)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// stringListParser splits a comma-separated value into a []string, matching
// the behavior of conventional list flags ("a,list,of,strings").
type stringListParser struct{}

func (stringListParser) Parse(s string) (any, error) {
	if s == "" {
		return []string{}, nil
	}
	return strings.Split(s, ","), nil
}
func (stringListParser) Type() string { return "stringList" }

func serializeStringList(value any) string {
	list, ok := value.([]string)
	if !ok {
		return fmt.Sprintf("%v", value)
	}
	return strings.Join(list, ",")
}

// multiEnumParser parses a bracketed list literal whose every element must
// belong to a fixed value set.
type multiEnumParser struct {
	values []string
}

func (p multiEnumParser) Parse(s string) (any, error) {
	parsed, err := sequenceParser{}.Parse(s)
	if err != nil {
		return nil, err
	}

	elements := parsed.([]any)
	for _, element := range elements {
		if !p.member(element) {
			return nil, fmt.Errorf("value %v is not one of %s", element, strings.Join(p.values, "|"))
		}
	}
	return elements, nil
}

func (p multiEnumParser) member(element any) bool {
	text := fmt.Sprintf("%v", element)
	for _, v := range p.values {
		if v == text {
			return true
		}
	}
	return false
}

func (p multiEnumParser) Type() string { return "multiEnum" }

func isScalar(value any) bool {
	switch value.(type) {
	case bool, int, int64, float64, string:
		return true
	default:
		return false
	}
}
