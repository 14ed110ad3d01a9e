package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies pipeline failures for the presentation layer.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindThrottleDenied  Kind = "throttle_denied"
	KindMediaProcessing Kind = "media_processing"
	KindTranscription   Kind = "transcription"
	KindTranslation     Kind = "translation"
)

// PipelineError is the single error type components return across their
// boundary. Message is safe to show to the user; Err keeps the cause.
type PipelineError struct {
	Kind     Kind
	Language string
	Message  string
	Err      error
}

func (e *PipelineError) Error() string {
	msg := e.Message
	if e.Language != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Language)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors.Cause walk past the classification.
func (e *PipelineError) Cause() error { return e.Err }

// UserMessage is the text shown to the user, including the cause when known.
func (e *PipelineError) UserMessage() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func newError(kind Kind, err error, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func ValidationError(format string, args ...interface{}) *PipelineError {
	return newError(KindValidation, nil, format, args...)
}

func ThrottleDenied(format string, args ...interface{}) *PipelineError {
	return newError(KindThrottleDenied, nil, format, args...)
}

func MediaProcessingError(err error, format string, args ...interface{}) *PipelineError {
	return newError(KindMediaProcessing, err, format, args...)
}

func TranscriptionError(err error, format string, args ...interface{}) *PipelineError {
	return newError(KindTranscription, err, format, args...)
}

func TranslationError(language string, err error, format string, args ...interface{}) *PipelineError {
	e := newError(KindTranslation, err, format, args...)
	e.Language = language
	return e
}

// KindOf returns the kind of the first PipelineError in err's chain, or ""
// when err carries none.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
