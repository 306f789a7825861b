package chat

import "errors"

// InputError marks a question rejected before any parsing occurred.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "chat: " + e.Reason
}

// IsInputError reports whether the error chain contains an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// GenerationError marks a failed or empty response from the generation
// collaborator. Transports render it as a generic degraded message rather
// than leaking provider internals to the user.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "chat: generation produced no content"
	}
	return "chat: generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether the error chain contains a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
