package ir

// Version constants for the persisted model and the engine.
const (
	// IRVersion is the schema version of persisted runs and rulebooks.
	IRVersion = "1"

	// EngineVersion is the deduce engine version.
	EngineVersion = "0.1.0"
)
