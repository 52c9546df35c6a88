// Package constants provides shared constants used throughout the vocab
// codebase: file permissions, configuration names and limits that should be
// consistent between the library and the CLI.
package constants

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0o755

	// FilePermissions is the default permission for written output files (rw-r--r--)
	FilePermissions = 0o644
)

// Configuration constants
const (
	// EnvPrefix prefixes every environment variable read by the CLI
	EnvPrefix = "VOCAB"

	// ConfigName is the base name of the config file searched in . and $HOME
	ConfigName = ".vocab"

	// ConfigType is the format of the searched config file
	ConfigType = "yaml"
)

// Input constants
var (
	// RecordListKeys are the object keys that may hold the record list of an
	// input file, in lookup order
	RecordListKeys = []string{"items", "vocabulary", "entries", "data"}
)

// Default values
const (
	// StdioPath selects stdout as an output destination
	StdioPath = "-"
)
