package dictflag

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

// Tree is a flat or nested dictionary definition. Each value must be an
// Item, a MultiItem, or a nested Tree (a plain map[string]any with the same
// constraints is also accepted). Anything else is a definition error,
// reported by Define with the offending value's type.
type Tree map[string]any

// defNode is the tagged form of one validated definition node: exactly one
// of item, multi, or branch is set.
type defNode struct {
	item   *Item
	multi  *MultiItem
	branch map[string]defNode
}

// leafBinding pairs one leaf descriptor with its namespace path below the
// dictionary root.
type leafBinding struct {
	path  []string
	item  *Item
	multi *MultiItem
}

// Define registers a flat or nested dictionary of flags on fs.
//
// name is the top-level flag name; every leaf of tree becomes a flag named
// name.<path.to.leaf>, overridable on the command line with dot notation:
//
//	--image_settings.sizes.height=10
//
// One aggregate flag is also registered under name itself; it represents
// the whole dictionary and cannot be overridden directly. The returned
// Handle exposes the live nested map that every leaf flag writes into:
// reads through the handle always observe the latest values, whether they
// came from defaults, command-line overrides, or programmatic fs.Set calls.
//
// A nil fs registers on pflag.CommandLine. Passing an explicit FlagSet
// keeps independent definitions (and tests) isolated from each other.
func Define(fs *pflag.FlagSet, name string, tree Tree) (*Handle, error) {
	if fs == nil {
		fs = pflag.CommandLine
	}

	if name == "" {
		return nil, fmt.Errorf("%w: the top-level flag name must not be empty", ErrDefinition)
	}
	if !isValidKeySegment(name) {
		return nil, fmt.Errorf("%w: invalid top-level flag name %q", ErrDefinition, name)
	}

	nodes, err := buildTree(name, tree)
	if err != nil {
		return nil, err
	}

	leaves := flattenLeaves(nodes, nil)
	if len(leaves) == 0 {
		return nil, fmt.Errorf("%w: at least one item must be supplied for %q", ErrDefinition, name)
	}

	// Validate every flag name before registering any, so a collision never
	// leaves a half-registered definition behind.
	if fs.Lookup(name) != nil {
		return nil, fmt.Errorf("%w: flag %q is already registered", ErrDefinition, name)
	}
	for _, leaf := range leaves {
		flagName := name + Separator + strings.Join(leaf.path, Separator)
		if fs.Lookup(flagName) != nil {
			return nil, fmt.Errorf("%w: flag %q is already registered", ErrDefinition, flagName)
		}
	}

	// One shared map per definition; every leaf flag and the aggregate flag
	// alias this instance, never a copy.
	dict := extractDefaults(nodes)
	mu := &sync.RWMutex{}

	for _, leaf := range leaves {
		flagName := name + Separator + strings.Join(leaf.path, Separator)
		if leaf.item != nil {
			fs.Var(newItemValue(*leaf.item, leaf.path, dict, mu), flagName, leaf.item.help)
			if _, isBool := leaf.item.parser.(boolParser); isBool {
				// Boolean leaves follow the registry's convention for bool
				// flags: --name alone means --name=true.
				fs.Lookup(flagName).NoOptDefVal = "true"
			}
		} else {
			fs.Var(newMultiItemValue(*leaf.multi, leaf.path, dict, mu), flagName, leaf.multi.help)
		}
	}

	fs.Var(&dictValue{name: name, dict: dict}, name, "Unused help string.")

	return &Handle{name: name, dict: dict, mu: mu}, nil
}

// MustDefine is like Define but panics on error.
func MustDefine(fs *pflag.FlagSet, name string, tree Tree) *Handle {
	h, err := Define(fs, name, tree)
	if err != nil {
		panic(fmt.Sprintf("dictflag: define %q failed: %v", name, err))
	}
	return h
}

// buildTree validates a raw definition and converts it to tagged nodes.
// prefix is the dotted path to raw, used in error messages.
func buildTree(prefix string, raw map[string]any) (map[string]defNode, error) {
	nodes := make(map[string]defNode, len(raw))

	for key, value := range raw {
		name := prefix + Separator + key
		if !isValidKeySegment(key) {
			return nil, fmt.Errorf("%w: invalid key %q under %q", ErrDefinition, key, prefix)
		}

		switch v := value.(type) {
		case Item:
			if v.defect != nil {
				return nil, fmt.Errorf("%w: item %q: %v", ErrDefinition, name, v.defect)
			}
			item := v
			nodes[key] = defNode{item: &item}

		case MultiItem:
			if v.defect != nil {
				return nil, fmt.Errorf("%w: item %q: %v", ErrDefinition, name, v.defect)
			}
			multi := v
			nodes[key] = defNode{multi: &multi}

		case Tree:
			branch, err := buildTree(name, v)
			if err != nil {
				return nil, err
			}
			nodes[key] = defNode{branch: branch}

		case map[string]any:
			branch, err := buildTree(name, v)
			if err != nil {
				return nil, err
			}
			nodes[key] = defNode{branch: branch}

		default:
			return nil, fmt.Errorf(
				"%w: definitions must contain items or nested trees; found type %T at %q",
				ErrDefinition, value, name)
		}
	}

	return nodes, nil
}

// flattenLeaves walks the tagged tree and returns every leaf with its path
// below the root, in sorted key order. The order only affects help output.
func flattenLeaves(nodes map[string]defNode, path []string) []leafBinding {
	keys := make([]string, 0, len(nodes))
	for key := range nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var leaves []leafBinding
	for _, key := range keys {
		node := nodes[key]
		next := append(append([]string(nil), path...), key)

		switch {
		case node.item != nil:
			leaves = append(leaves, leafBinding{path: next, item: node.item})
		case node.multi != nil:
			leaves = append(leaves, leafBinding{path: next, multi: node.multi})
		default:
			leaves = append(leaves, flattenLeaves(node.branch, next)...)
		}
	}

	return leaves
}

// extractDefaults materializes the nested default map with the same shape
// as the definition tree. Unset defaults stay nil, never substituted.
func extractDefaults(nodes map[string]defNode) map[string]any {
	out := make(map[string]any, len(nodes))

	for key, node := range nodes {
		switch {
		case node.item != nil:
			out[key] = node.item.defaultCopy()
		case node.multi != nil:
			// An unset default must be stored as an untyped nil; storing the
			// typed nil slice would make the leaf read as set.
			if d := node.multi.defaultCopy(); d != nil {
				out[key] = d
			} else {
				out[key] = nil
			}
		default:
			out[key] = extractDefaults(node.branch)
		}
	}

	return out
}
