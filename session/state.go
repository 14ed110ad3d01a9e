package session

import (
	"sync"
	"time"

	"github.com/mrsingh-rishi/vidscribe/model"
	"github.com/mrsingh-rishi/vidscribe/queue"
	"github.com/mrsingh-rishi/vidscribe/throttle"
	"github.com/mrsingh-rishi/vidscribe/types"
)

// maxEvents bounds the progress events kept for a session without a reader.
const maxEvents = 256

// State is everything a session keeps between invocations. Only the
// pipeline orchestrator mutates it.
type State struct {
	ID string

	mu            sync.Mutex
	transcript    string
	hasTranscript bool
	translations  model.TranslationSet
	running       bool
	hasReader     bool
	lastAccess    time.Time

	Throttle *throttle.Throttle
	Events   *queue.Queue[types.StageEvent]
}

// NewState creates an empty session.
func NewState(id string, interval time.Duration) *State {
	return &State{
		ID:           id,
		translations: model.TranslationSet{},
		lastAccess:   time.Now(),
		Throttle:     throttle.New(interval),
		Events:       queue.NewBounded[types.StageEvent](maxEvents),
	}
}

// Begin marks an invocation as running. It returns false if one already is.
func (s *State) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.lastAccess = time.Now()
	return true
}

// Finish marks the running invocation as done.
func (s *State) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastAccess = time.Now()
}

// ReplaceTranscript installs a new transcript and drops every translation
// of the previous one in the same step, so no reader ever sees them together.
func (s *State) ReplaceTranscript(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = text
	s.hasTranscript = true
	s.translations = model.TranslationSet{}
}

// PutTranslation records one finished translation.
func (s *State) PutTranslation(lang, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translations[lang] = text
}

// Transcript returns the current transcript and whether there is one.
func (s *State) Transcript() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript, s.hasTranscript
}

// Translation returns the translation for lang, if any.
func (s *State) Translation(lang string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.translations[lang]
	return t, ok
}

// Snapshot copies the current results.
func (s *State) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Snapshot{
		HasTranscript: s.hasTranscript,
		Transcript:    s.transcript,
		Translations:  s.translations.Clone(),
	}
}

// Touch records activity on the session.
func (s *State) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
}

// Clear resets the session to its initial state.
func (s *State) Clear() {
	s.mu.Lock()
	s.transcript = ""
	s.hasTranscript = false
	s.translations = model.TranslationSet{}
	s.mu.Unlock()

	s.Throttle.Reset()
	s.Events.Drain()
}

// AttachReader claims the event queue for one progress stream. Events are
// consumed as they are read, so a session has at most one reader; it
// returns false while another reader is attached.
func (s *State) AttachReader() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasReader {
		return false
	}
	s.hasReader = true
	return true
}

// DetachReader releases the claim taken by AttachReader.
func (s *State) DetachReader() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasReader = false
}

// Running reports whether an invocation is in progress.
func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *State) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return 0
	}
	return now.Sub(s.lastAccess)
}
