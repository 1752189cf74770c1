package dictflag

import (
	"fmt"
	"strings"
	"sync"
)

// Separator joins namespace path segments into externally visible flag
// names, e.g. "image_settings.sizes.height".
const Separator = "."

// emptySerialized is the serialized form of the aggregate dict flag. The
// dict flag never serializes the nested structure as one string; legitimate
// overrides only ever target individual leaf flags.
const emptySerialized = ""

// itemValue is the pflag.Value behind one single-valued leaf. Every value
// change, whether from command-line parsing or a programmatic FlagSet.Set,
// goes through Set and is written through to the shared map at the leaf's
// namespace path.
type itemValue struct {
	item    Item
	path    []string // segments below the dictionary root
	dict    map[string]any
	mu      *sync.RWMutex
	current any
}

func newItemValue(item Item, path []string, dict map[string]any, mu *sync.RWMutex) *itemValue {
	v := &itemValue{
		item:    item,
		path:    path,
		dict:    dict,
		mu:      mu,
		current: item.defaultCopy(),
	}

	// Write the default through immediately, so the shared map is
	// consistent with this flag before any override arrives.
	mu.Lock()
	v.writeThrough()
	mu.Unlock()
	return v
}

func (v *itemValue) Set(s string) error {
	parsed, err := v.item.parser.Parse(s)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = parsed
	v.writeThrough()
	return nil
}

// writeThrough descends all but the last path segment and assigns the
// current value at the final key. The containers are guaranteed to exist:
// the shared map was materialized from the same definition tree.
// Callers hold the write lock.
func (v *itemValue) writeThrough() {
	d := v.dict
	for _, segment := range v.path[:len(v.path)-1] {
		d = d[segment].(map[string]any)
	}
	d[v.path[len(v.path)-1]] = v.current
}

func (v *itemValue) String() string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.current == nil {
		return ""
	}
	return v.item.serializer(v.current)
}

func (v *itemValue) Type() string { return v.item.parser.Type() }

// multiItemValue is the pflag.Value behind one repeatable leaf. Repeated
// occurrences accumulate in order; the first occurrence replaces the
// default, matching pflag's slice flag convention. The whole accumulated
// slice is written through after each occurrence.
type multiItemValue struct {
	item    MultiItem
	path    []string
	dict    map[string]any
	mu      *sync.RWMutex
	current []any
	changed bool
}

func newMultiItemValue(item MultiItem, path []string, dict map[string]any, mu *sync.RWMutex) *multiItemValue {
	v := &multiItemValue{
		item:    item,
		path:    path,
		dict:    dict,
		mu:      mu,
		current: item.defaultCopy(),
	}

	mu.Lock()
	v.writeThrough()
	mu.Unlock()
	return v
}

func (v *multiItemValue) Set(s string) error {
	parsed, err := v.item.parser.Parse(s)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.changed {
		v.current = []any{parsed}
		v.changed = true
	} else {
		v.current = append(v.current, parsed)
	}
	v.writeThrough()
	return nil
}

func (v *multiItemValue) writeThrough() {
	d := v.dict
	for _, segment := range v.path[:len(v.path)-1] {
		d = d[segment].(map[string]any)
	}
	if v.current == nil {
		d[v.path[len(v.path)-1]] = nil
		return
	}
	d[v.path[len(v.path)-1]] = v.current
}

func (v *multiItemValue) String() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return "[" + strings.Join(v.slice(), ",") + "]"
}

func (v *multiItemValue) Type() string { return v.item.parser.Type() }

// Append, Replace and GetSlice implement pflag.SliceValue.

func (v *multiItemValue) Append(s string) error {
	parsed, err := v.item.parser.Parse(s)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = append(v.current, parsed)
	v.changed = true
	v.writeThrough()
	return nil
}

func (v *multiItemValue) Replace(items []string) error {
	parsed := make([]any, 0, len(items))
	for _, s := range items {
		p, err := v.item.parser.Parse(s)
		if err != nil {
			return err
		}
		parsed = append(parsed, p)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = parsed
	v.changed = true
	v.writeThrough()
	return nil
}

func (v *multiItemValue) GetSlice() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.slice()
}

// slice serializes the accumulated occurrences. Callers hold the lock.
func (v *multiItemValue) slice() []string {
	out := make([]string, len(v.current))
	for i, element := range v.current {
		out[i] = v.item.serializer(element)
	}
	return out
}

// dictValue is the pflag.Value behind the aggregate flag registered under
// the root name. Its value is the shared map itself, so it cannot be set
// from text. It accepts its own empty serialized form as a no-op, because
// some pipelines serialize and re-parse every registered flag, e.g. to pass
// flag state between processes.
type dictValue struct {
	name string
	dict map[string]any
}

func (d *dictValue) Set(s string) error {
	if s == emptySerialized {
		return nil
	}
	return fmt.Errorf("%w: can't set dict flag %q directly; did you mean to override one of its items instead?",
		ErrIllegalOverride, d.name)
}

func (d *dictValue) String() string { return emptySerialized }

func (d *dictValue) Type() string { return "dict" }
