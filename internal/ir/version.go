package ir

// Version constants for the manifest schema and runtime.
const (
	// SchemaVersion is the manifest schema version understood by this build.
	SchemaVersion = "1"

	// RuntimeVersion is the scenekit runtime version.
	RuntimeVersion = "0.1.0"
)
