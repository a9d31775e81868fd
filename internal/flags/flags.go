package flags

// Centralized definitions for CLI flags used across the application

const (
	// Provider selects the storage provider, overriding the configured default
	Provider      = "provider"
	ProviderShort = "p"

	// Bucket overrides the configured default bucket
	Bucket      = "bucket"
	BucketShort = "b"

	// Prefix filters file listings by key prefix
	Prefix = "prefix"

	// Output selects table, json or yaml rendering
	Output      = "output"
	OutputShort = "o"

	// Dest is the object key of a single upload
	Dest = "dest"
	// DestPrefix is prepended to the base name of every uploaded file
	DestPrefix = "dest-prefix"

	// Out is the local path of a single download, or the directory for several
	Out = "out"

	// Concurrency overrides transfer.concurrency
	Concurrency = "concurrency"

	// Force bypasses interactive confirmation prompts for destructive operations
	Force      = "force"
	ForceShort = "f"

	// Debug enables verbose logging
	Debug      = "debug"
	DebugShort = "d"
)
