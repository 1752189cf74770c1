package dictflag

import "fmt"

// An Item describes one single-valued leaf in a dictionary definition: its
// default, help text, and the parser/serializer pair for its value type.
// Items are created with the typed constructors (String, Integer, ...) or
// with NewItem for custom value types.
type Item struct {
	defaultValue any
	help         string
	parser       Parser
	serializer   Serializer
	defect       error
}

// NewItem creates an item with a custom parser and serializer. A nil
// serializer falls back to fmt-style formatting.
//
// A non-nil default is round-tripped through the serializer and parser
// immediately, so a default that cannot survive its own flag machinery is
// reported by Define rather than at first use. The parsed form becomes the
// canonical default.
func NewItem(defaultValue any, help string, parser Parser, serializer Serializer) Item {
	if serializer == nil {
		serializer = defaultSerializer
	}

	item := Item{
		defaultValue: defaultValue,
		help:         help,
		parser:       parser,
		serializer:   serializer,
	}

	if parser == nil {
		item.defect = fmt.Errorf("item requires a parser")
		return item
	}

	if defaultValue != nil {
		parsed, err := parser.Parse(serializer(defaultValue))
		if err != nil {
			item.defect = fmt.Errorf("default %v does not parse: %v", defaultValue, err)
		} else {
			item.defaultValue = parsed
		}
	}

	return item
}

// String defines a string-valued item.
func String(defaultValue, help string) Item {
	return NewItem(defaultValue, help, stringParser{}, nil)
}

// Integer defines an int-valued item.
func Integer(defaultValue int, help string) Item {
	return NewItem(defaultValue, help, intParser{}, nil)
}

// Float defines a float64-valued item.
func Float(defaultValue float64, help string) Item {
	return NewItem(defaultValue, help, floatParser{}, nil)
}

// Boolean defines a bool-valued item.
func Boolean(defaultValue bool, help string) Item {
	return NewItem(defaultValue, help, boolParser{}, nil)
}

// Enum defines a string-valued item restricted to a fixed set of values.
// Matching is case-sensitive.
func Enum(defaultValue string, values []string, help string) Item {
	return NewItem(defaultValue, help, enumParser{values: values}, nil)
}

// EnumIgnoreCase is Enum with case-insensitive matching. Parsed values take
// the canonical spelling from the value set.
func EnumIgnoreCase(defaultValue string, values []string, help string) Item {
	return NewItem(defaultValue, help, enumParser{values: values, foldCase: true}, nil)
}

// Sequence defines an item holding a list of scalars, overridden with a
// bracketed literal:
//
//	--settings.sequence=[1,2,3]
//
// To include spaces inside the literal, quote it or escape the spaces:
//
//	--settings.sequence="[1, 2, 3]"
//	--settings.sequence=[1,\ 2,\ 3]
func Sequence(defaultValue []any, help string) Item {
	var def any
	if defaultValue != nil {
		out := make([]any, len(defaultValue))
		copy(out, defaultValue)
		def = out
	}
	return NewItem(def, help, sequenceParser{}, serializeSequence)
}

// StringList defines an item holding a list of strings, overridden as a
// comma-separated value: --my_flag=a,list,of,strings
func StringList(defaultValue []string, help string) Item {
	var def any
	if defaultValue != nil {
		out := make([]string, len(defaultValue))
		copy(out, defaultValue)
		def = out
	}
	return NewItem(def, help, stringListParser{}, serializeStringList)
}

// MultiEnum defines an item holding a list of values, each restricted to a
// fixed set, overridden with a bracketed literal.
func MultiEnum(defaultValue []any, values []string, help string) Item {
	var def any
	if defaultValue != nil {
		out := make([]any, len(defaultValue))
		copy(out, defaultValue)
		def = out
	}
	return NewItem(def, help, multiEnumParser{values: values}, serializeSequence)
}

// defaultCopy returns the item default, copying slice values so that the
// shared map never aliases the descriptor. An empty slice default stays an
// empty non-nil slice, distinct from an unset (nil) default.
func (it Item) defaultCopy() any {
	switch v := it.defaultValue.(type) {
	case []any:
		out := make([]any, len(v))
		copy(out, v)
		return out
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	default:
		return it.defaultValue
	}
}

// A MultiItem describes one repeatable leaf: the flag may appear multiple
// times on the command line and the occurrences accumulate, in order, into
// a single []any at the leaf's position in the shared map.
type MultiItem struct {
	defaults    []any
	hasDefaults bool
	help        string
	parser      Parser
	serializer  Serializer
	defect      error
}

// NewMultiItem creates a repeatable item with a custom parser and
// serializer. Each element of defaultValue is parsed at construction, so a
// malformed default is reported by Define. A nil defaultValue means the
// leaf starts unset (nil in the shared map).
func NewMultiItem(defaultValue []string, help string, parser Parser, serializer Serializer) MultiItem {
	if serializer == nil {
		serializer = defaultSerializer
	}

	item := MultiItem{
		help:       help,
		parser:     parser,
		serializer: serializer,
	}

	if parser == nil {
		item.defect = fmt.Errorf("item requires a parser")
		return item
	}

	if defaultValue != nil {
		item.hasDefaults = true
		item.defaults = make([]any, 0, len(defaultValue))
		for _, s := range defaultValue {
			parsed, err := parser.Parse(s)
			if err != nil {
				item.defect = fmt.Errorf("default element %q does not parse: %v", s, err)
				break
			}
			item.defaults = append(item.defaults, parsed)
		}
	}

	return item
}

// MultiString defines a repeatable string-valued item:
//
//	--flag=a --flag=b
//
// accumulates to ["a", "b"].
func MultiString(defaultValue []string, help string) MultiItem {
	return NewMultiItem(defaultValue, help, stringParser{}, nil)
}

// defaultCopy returns a fresh slice of the parsed defaults, or nil for an
// unset default. An empty-but-set default stays an empty non-nil slice.
func (it MultiItem) defaultCopy() []any {
	if !it.hasDefaults {
		return nil
	}
	out := make([]any, len(it.defaults))
	copy(out, it.defaults)
	return out
}
