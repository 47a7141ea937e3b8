package pipeline

import (
	"fmt"
	"net/http"
)

// Kind identifies which stage of the pipeline failed.
type Kind int

const (
	// KindInvalidInput means the user query was missing or blank.
	KindInvalidInput Kind = iota
	// KindGeneration means the structured-query call to the model failed.
	KindGeneration
	// KindSearch means the Open Library call failed.
	KindSearch
	// KindRefinement means the streaming narration call failed before any
	// output reached the client.
	KindRefinement
	// KindUnexpected is the catch-all; its message is intentionally generic.
	KindUnexpected
)

// InvalidInputMessage is the exact body returned for blank or missing queries.
const InvalidInputMessage = "Invalid input. 'query' must be a non-empty string."

// UnexpectedMessage is the generic body for unhandled failures.
const UnexpectedMessage = "An unexpected error occurred."

// StageError is the typed failure a pipeline run can end in. It is returned
// as a value, never panicked; the HTTP handler translates it into a status
// code and JSON body.
type StageError struct {
	Kind Kind
	Err  error
}

// Error implements the error interface with the stage-prefixed message.
func (e *StageError) Error() string {
	return e.Message()
}

// Unwrap exposes the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code.
func (e *StageError) Status() int {
	if e.Kind == KindInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Message is the client-facing error string, prefixed with the failed stage.
func (e *StageError) Message() string {
	switch e.Kind {
	case KindInvalidInput:
		return InvalidInputMessage
	case KindGeneration:
		return fmt.Sprintf("Ollama generation failed: %v", e.Err)
	case KindSearch:
		return fmt.Sprintf("Open Library API failed: %v", e.Err)
	case KindRefinement:
		return fmt.Sprintf("Refinement failed: %v", e.Err)
	default:
		return UnexpectedMessage
	}
}

func invalidInput() *StageError {
	return &StageError{Kind: KindInvalidInput}
}

func generationFailed(err error) *StageError {
	return &StageError{Kind: KindGeneration, Err: err}
}

func searchFailed(err error) *StageError {
	return &StageError{Kind: KindSearch, Err: err}
}

func refinementFailed(err error) *StageError {
	return &StageError{Kind: KindRefinement, Err: err}
}
