package dictflag

import "errors"

var (
	// ErrDefinition reports a defect in a dictionary definition: an empty
	// root name, a definition with no items, a tree value that is neither an
	// item nor a nested tree, an invalid key segment, a flag name collision,
	// or an item whose default does not satisfy its own parser.
	ErrDefinition = errors.New("invalid dict flag definition")

	// ErrIllegalOverride reports an attempt to override the aggregate dict
	// flag directly with anything other than its empty serialized form.
	ErrIllegalOverride = errors.New("illegal dict flag override")
)
