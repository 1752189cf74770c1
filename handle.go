package dictflag

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
)

// Handle is the live read/write view over one defined dictionary. Every
// leaf flag created by the same Define call writes into the map behind this
// handle, so reads always observe the latest values regardless of whether
// they came from defaults or overrides.
type Handle struct {
	name string
	dict map[string]any
	mu   *sync.RWMutex
}

// Name returns the top-level flag name of the dictionary.
func (h *Handle) Name() string { return h.name }

// Map returns the live nested map. The map is shared with every leaf flag
// of the definition; do not read it concurrently with flag parsing. For a
// guarded read surface use Get, the typed accessors, Scan, or TOML.
func (h *Handle) Map() map[string]any {
	return h.dict
}

// Get retrieves the value at a dot-separated path below the dictionary
// root, e.g. "sizes.height". The second return value reports whether the
// path exists.
func (h *Handle) Get(path string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lookupPath(h.dict, path)
}

// String retrieves a string value at the path.
// Attempts conversion from common types if the stored value isn't already a string.
func (h *Handle) String(path string) (string, error) {
	val, found := h.Get(path)
	if !found {
		return "", fmt.Errorf("path not defined: %s", path)
	}
	if val == nil {
		return "", nil // Treat nil as empty string for convenience
	}

	if strVal, ok := val.(string); ok {
		return strVal, nil
	}

	switch v := val.(type) {
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("cannot convert type %T to string for path %s", val, path)
	}
}

// Int64 retrieves an int64 value at the path.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (h *Handle) Int64(path string) (int64, error) {
	val, found := h.Get(path)
	if !found {
		return 0, fmt.Errorf("path not defined: %s", path)
	}
	if val == nil {
		return 0, fmt.Errorf("value for path %s is nil, cannot convert to int64", path)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		maxInt64 := int64(^uint64(0) >> 1)
		if u > uint64(maxInt64) {
			return 0, fmt.Errorf("cannot convert unsigned integer %d (type %T) to int64 for path %s: overflow", u, val, path)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		// Truncate float to int
		return int64(v.Float()), nil
	case reflect.String:
		s := v.String()
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i, nil
		} else {
			if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
				return int64(f), nil // Truncate
			}
			return 0, fmt.Errorf("cannot convert string %q to int64 for path %s: %w", s, path, err)
		}
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to int64 for path %s", val, path)
}

// Bool retrieves a boolean value at the path.
// Attempts conversion from numeric types (0=false, non-zero=true) and parsable strings.
func (h *Handle) Bool(path string) (bool, error) {
	val, found := h.Get(path)
	if !found {
		return false, fmt.Errorf("path not defined: %s", path)
	}
	if val == nil {
		return false, fmt.Errorf("value for path %s is nil, cannot convert to bool", path)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		s := v.String()
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		} else {
			return false, fmt.Errorf("cannot convert string %q to bool for path %s: %w", s, path, err)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0, nil
	}

	return false, fmt.Errorf("cannot convert type %T to bool for path %s", val, path)
}

// Float64 retrieves a float64 value at the path.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (h *Handle) Float64(path string) (float64, error) {
	val, found := h.Get(path)
	if !found {
		return 0.0, fmt.Errorf("path not defined: %s", path)
	}
	if val == nil {
		return 0.0, fmt.Errorf("value for path %s is nil, cannot convert to float64", path)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.String:
		s := v.String()
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		} else {
			return 0.0, fmt.Errorf("cannot convert string %q to float64 for path %s: %w", s, path, err)
		}
	case reflect.Bool:
		if v.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	}

	return 0.0, fmt.Errorf("cannot convert type %T to float64 for path %s", val, path)
}

// Scan decodes the dictionary under a dot-separated base path into the
// target struct or map. An empty basePath decodes the whole dictionary.
// The target must be a non-nil pointer. Field mapping uses the "toml"
// struct tag.
func (h *Handle) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("target of Scan must be a non-nil pointer, got %T", target)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	section, ok := subtree(h.dict, basePath)
	if !ok {
		return fmt.Errorf("path %q does not refer to a scannable section (map)", basePath)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true, // Allow conversions (e.g. int to string if needed by target)
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(section); err != nil {
		return fmt.Errorf("failed to scan section %q into %T: %w", basePath, target, err)
	}

	return nil
}

// TOML renders the current state of the dictionary as TOML. Leaves with an
// unset (nil) default that were never overridden are omitted, since TOML
// has no null value.
func (h *Handle) TOML() ([]byte, error) {
	h.mu.RLock()
	snapshot := copyWithoutNil(h.dict)
	h.mu.RUnlock()

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to marshal dict flag %q to TOML: %w", h.name, err)
	}
	return buf.Bytes(), nil
}

// copyWithoutNil deep-copies a nested map, dropping nil leaves.
func copyWithoutNil(nested map[string]any) map[string]any {
	out := make(map[string]any, len(nested))
	for key, value := range nested {
		if value == nil {
			continue
		}
		if nestedMap, isMap := value.(map[string]any); isMap {
			out[key] = copyWithoutNil(nestedMap)
			continue
		}
		out[key] = value
	}
	return out
}
