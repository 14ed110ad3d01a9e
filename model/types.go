package model

import (
	"io"
	"os"
	"sync"
)

// UploadedMedia is a file received from the user for one invocation.
// Header holds the first bytes of Content for magic-byte sniffing; it is
// filled by the caller so validation never has to read Content.
type UploadedMedia struct {
	Filename     string
	Size         int64
	DeclaredType string
	Header       []byte
	Content      io.Reader
}

// AudioArtifact is a temporary audio file extracted from an upload.
type AudioArtifact struct {
	Path     string
	Duration float64

	once sync.Once
	err  error
}

// NewAudioArtifact wraps an existing temp file.
func NewAudioArtifact(path string, duration float64) *AudioArtifact {
	return &AudioArtifact{Path: path, Duration: duration}
}

// Release removes the backing file. Safe to call more than once.
func (a *AudioArtifact) Release() error {
	if a == nil {
		return nil
	}
	a.once.Do(func() {
		if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
			a.err = err
		}
	})
	return a.err
}

// TranslationSet maps a language label, as the user selected it, to the
// translated transcript.
type TranslationSet map[string]string

// Clone returns an independent copy.
func (ts TranslationSet) Clone() TranslationSet {
	out := make(TranslationSet, len(ts))
	for k, v := range ts {
		out[k] = v
	}
	return out
}

// Snapshot is a read-only copy of a session's results.
type Snapshot struct {
	HasTranscript bool           `json:"has_transcript"`
	Transcript    string         `json:"transcript"`
	Translations  TranslationSet `json:"translations"`
}
