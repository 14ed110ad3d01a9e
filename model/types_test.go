package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAudioArtifactReleaseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	a := NewAudioArtifact(path, 1.5)

	if err := a.Release(); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := a.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still exists after release: %v", err)
	}
}

func TestNilArtifactRelease(t *testing.T) {
	var a *AudioArtifact
	if err := a.Release(); err != nil {
		t.Fatalf("nil release: %v", err)
	}
}

func TestTranslationSetClone(t *testing.T) {
	ts := TranslationSet{"French": "bonjour"}
	c := ts.Clone()
	c["German"] = "hallo"
	if len(ts) != 1 {
		t.Fatalf("clone shares storage with original: %v", ts)
	}
}
