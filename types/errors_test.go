package types

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

func TestKindOfWalksWrappedErrors(t *testing.T) {
	err := fmt.Errorf("run: %w", TranscriptionError(errors.New("401 unauthorized"), "error transcribing audio"))
	if got := KindOf(err); got != KindTranscription {
		t.Errorf("KindOf: got %q, want %q", got, KindTranscription)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain): got %q", got)
	}
}

func TestUserMessageIncludesCause(t *testing.T) {
	cause := errors.Wrap(errors.New("exit status 1"), "ffmpeg: moov atom not found")
	e := MediaProcessingError(cause, "error processing video")
	want := "error processing video: ffmpeg: moov atom not found: exit status 1"
	if got := e.UserMessage(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := ValidationError("file size exceeds %dMB limit", 200).UserMessage(); got != "file size exceeds 200MB limit" {
		t.Errorf("got %q", got)
	}
}

func TestTranslationErrorCarriesLanguage(t *testing.T) {
	e := TranslationError("French", errors.New("timeout"), "error translating text")
	if e.Language != "French" || e.Kind != KindTranslation {
		t.Fatalf("got %+v", e)
	}
	if errors.Cause(e).Error() != "timeout" {
		t.Errorf("Cause: got %v", errors.Cause(e))
	}
}
