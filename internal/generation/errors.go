package generation

// ProviderUnavailableError indicates that no LLM provider is configured for
// an operation that cannot degrade. Callers must surface this loudly rather
// than fabricate a result.
type ProviderUnavailableError struct {
	Operation string
}

func (e *ProviderUnavailableError) Error() string {
	return "no llm provider configured for " + e.Operation
}

// GenerationError indicates a generation call failed in a way the caller
// must see. The conservative path never returns it; the fact-based path
// does, because silently returning the original would break the caller's
// expectation that fact-based generation occurred.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
