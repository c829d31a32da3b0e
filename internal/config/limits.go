package config

const (
	// MaxFolderNameLength is the maximum length for a single folder name
	// segment. Limited to 255 to fit comfortably in filesystem-like UIs
	// and keep paths readable.
	MaxFolderNameLength = 255

	// MaxParentTraversalDepth caps ancestor walks during cycle detection
	// and path construction. A chain longer than this indicates corrupt
	// parent pointers rather than a legitimate hierarchy.
	MaxParentTraversalDepth = 50

	// MinShareTokenLength and MaxShareTokenLength bound custom share
	// tokens. Generated tokens are always 32 hex characters.
	MinShareTokenLength = 4
	MaxShareTokenLength = 128
)
