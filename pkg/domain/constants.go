package domain

const (
	// EngineKind is the reserved kind of the terminal sink.
	// Exactly one object of this kind exists per patch.
	EngineKind = "engine"

	// EngineName is the fixed name of the engine object.
	EngineName = "engine"

	// ValueKind is the only kind whose scalar Value is meaningful.
	ValueKind = "value"
)
