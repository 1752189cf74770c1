// Package dictflag defines flat or nested dictionaries of command-line flags.
//
// A single call to Define turns a tree of item descriptors into one flag per
// leaf, each addressable with dot notation, plus an aggregate flag named
// after the whole tree. All leaf flags write into one shared nested map, so
// the program reads the entire configuration through a single handle instead
// of many individual flag variables.
//
// Features:
//   - Flat or nested definitions with dot-delimited override names
//   - One live nested map shared by every leaf flag (write-through on change)
//   - Typed items: String, Integer, Float, Boolean, Enum, Sequence, StringList
//   - Repeatable items (MultiString) with ordered accumulation
//   - Struct decoding of the live map via mapstructure
//   - TOML snapshot of the current configuration
//   - Explicit pflag.FlagSet parameter for test isolation
//
// Quick Start:
//
//	fs := pflag.NewFlagSet("app", pflag.ContinueOnError)
//
//	settings := dictflag.MustDefine(fs, "image_settings", dictflag.Tree{
//	    "mode": dictflag.String("pad", "Mode string field."),
//	    "sizes": dictflag.Tree{
//	        "width":  dictflag.Integer(5, "Width."),
//	        "height": dictflag.Integer(7, "Height."),
//	    },
//	})
//
//	fs.Parse(os.Args[1:])
//
//	// --image_settings.sizes.height=10 overrides exactly one leaf.
//	height, _ := settings.Int64("sizes.height")
//
// The aggregate flag ("image_settings" above) cannot be overridden directly;
// only its dotted leaf flags can. Its serialized form is always the empty
// string, which Set accepts as a no-op so that pipelines that round-trip
// every flag's textual form keep working.
//
// Thread Safety:
// Registration is expected to finish before parsing starts, and parsing to
// finish before the map is read. Write-through and the Handle read surface
// are nevertheless guarded by a read-write mutex per definition, so a
// concurrent reader never observes a half-applied update.
package dictflag
