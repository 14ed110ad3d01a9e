// Package pipeline sequences one invocation:
//
//	Validate → Throttle → Extract → Transcribe → Translate(×N)
//
// A failed step ends the invocation with a typed error and leaves the
// session's previous results untouched. A successful transcription replaces
// the session transcript and clears the previous translations before the
// fan-out writes new ones; translation failures only drop their language.
//
// Run never returns an error: the outcome, including failure, is a Result.
package pipeline
