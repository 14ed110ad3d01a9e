package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/mrsingh-rishi/vidscribe/mocks"
	"github.com/mrsingh-rishi/vidscribe/model"
	"github.com/mrsingh-rishi/vidscribe/pipeline"
	"github.com/mrsingh-rishi/vidscribe/session"
	"github.com/mrsingh-rishi/vidscribe/types"
	"github.com/mrsingh-rishi/vidscribe/validator"
	"github.com/mrsingh-rishi/vidscribe/workers"
)

var quiet = log.New(io.Discard, "", 0)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	orch        *pipeline.Orchestrator
	state       *session.State
	clock       *clock
	extractor   *mocks.MockExtractor
	transcriber *mocks.MockTranscriber
	translator  *mocks.MockTranslator
	dir         string
	events      []types.StageEvent
	mu          sync.Mutex
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		state:       session.NewState("test", time.Minute),
		clock:       &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		extractor:   mocks.NewMockExtractor(ctrl),
		transcriber: mocks.NewMockTranscriber(ctrl),
		translator:  mocks.NewMockTranslator(ctrl),
		dir:         t.TempDir(),
	}
	tw, err := workers.NewTranslationWorker(h.translator, 4, time.Second, quiet)
	if err != nil {
		t.Fatal(err)
	}
	h.orch, err = pipeline.New(pipeline.Config{
		Validator:    validator.New(quiet),
		Extractor:    h.extractor,
		Transcriber:  h.transcriber,
		Translations: tw,
		Logger:       quiet,
		Now:          h.clock.Now,
		Observer: func(ev types.StageEvent) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, ev)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

// artifact creates a real temp file so release can be observed.
func (h *harness) artifact(t *testing.T) *model.AudioArtifact {
	t.Helper()
	f, err := os.CreateTemp(h.dir, "audio-*.mp3")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	return model.NewAudioArtifact(f.Name(), 5)
}

func (h *harness) leftovers(t *testing.T) []string {
	t.Helper()
	matches, _ := filepath.Glob(filepath.Join(h.dir, "*"))
	return matches
}

func (h *harness) expectMedia(t *testing.T, transcript string) {
	art := h.artifact(t)
	h.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), validator.TypeMP4).Return(art, nil)
	h.transcriber.EXPECT().Transcribe(gomock.Any(), art.Path).Return(transcript, nil)
}

func request(langs ...string) pipeline.Request {
	return pipeline.Request{
		Media:     model.UploadedMedia{Filename: "clip.mp4", Size: 1024, DeclaredType: "video/mp4", Content: strings.NewReader("x")},
		Languages: langs,
	}
}

func translations(h *harness) model.TranslationSet {
	return h.state.Snapshot().Translations
}

func TestRunPartialTranslationFailure(t *testing.T) {
	h := newHarness(t)
	h.expectMedia(t, "hello")
	h.translator.EXPECT().Translate(gomock.Any(), "hello", "French").Return("bonjour", nil)
	h.translator.EXPECT().Translate(gomock.Any(), "hello", "Klingon").Return("", errors.New("unknown language"))

	res := h.orch.Run(context.Background(), h.state, request("French", "Klingon"))

	if !res.OK() {
		t.Fatalf("partial failure must still succeed: %v", res.Err)
	}
	got := translations(h)
	if len(got) != 1 || got["French"] != "bonjour" {
		t.Fatalf("translations = %v, want only French", got)
	}
	if _, ok := res.Failures["Klingon"]; !ok {
		t.Fatalf("Klingon failure not reported: %v", res.Failures)
	}
	if text, ok := h.state.Transcript(); !ok || text != "hello" {
		t.Fatalf("transcript = %q, %v", text, ok)
	}
	if res.AudioDuration != 5 {
		t.Errorf("AudioDuration = %v", res.AudioDuration)
	}
	if left := h.leftovers(t); len(left) != 0 {
		t.Fatalf("audio artifact not released: %v", left)
	}
}

func TestRunReplacesTranslations(t *testing.T) {
	h := newHarness(t)
	h.expectMedia(t, "first")
	h.translator.EXPECT().Translate(gomock.Any(), "first", "French").Return("premier", nil)
	h.translator.EXPECT().Translate(gomock.Any(), "first", "German").Return("erste", nil)
	if res := h.orch.Run(context.Background(), h.state, request("French", "German")); !res.OK() {
		t.Fatalf("first run: %v", res.Err)
	}

	h.clock.Advance(61 * time.Second)
	h.expectMedia(t, "second")
	h.translator.EXPECT().Translate(gomock.Any(), "second", "Spanish").Return("segundo", nil)
	if res := h.orch.Run(context.Background(), h.state, request("Spanish")); !res.OK() {
		t.Fatalf("second run: %v", res.Err)
	}

	got := translations(h)
	if len(got) != 1 || got["Spanish"] != "segundo" {
		t.Fatalf("translations = %v, want only Spanish", got)
	}
	if text, _ := h.state.Transcript(); text != "second" {
		t.Fatalf("transcript = %q, want second", text)
	}
}

func TestRunWithoutLanguagesClearsTranslations(t *testing.T) {
	h := newHarness(t)
	h.state.PutTranslation("French", "stale")
	h.expectMedia(t, "hello")

	res := h.orch.Run(context.Background(), h.state, request())
	if !res.OK() {
		t.Fatal(res.Err)
	}
	if got := translations(h); len(got) != 0 {
		t.Fatalf("stale translations survived: %v", got)
	}
}

func TestRunThrottleDenied(t *testing.T) {
	h := newHarness(t)
	h.expectMedia(t, "hello")
	h.translator.EXPECT().Translate(gomock.Any(), "hello", "French").Return("bonjour", nil)
	h.orch.Run(context.Background(), h.state, request("French"))

	h.clock.Advance(30 * time.Second)
	// No further Extract expectation: touching media would fail the test.
	res := h.orch.Run(context.Background(), h.state, request("German"))

	if types.KindOf(res.Err) != types.KindThrottleDenied {
		t.Fatalf("expected throttle denial, got %v", res.Err)
	}
	if !strings.Contains(res.Err.UserMessage(), "30s") {
		t.Errorf("message should state remaining wait: %q", res.Err.UserMessage())
	}
	if got := translations(h); len(got) != 1 || got["French"] != "bonjour" {
		t.Fatalf("denied run changed session: %v", got)
	}

	// The denied call did not move the window.
	h.clock.Advance(31 * time.Second)
	h.expectMedia(t, "again")
	h.translator.EXPECT().Translate(gomock.Any(), "again", "German").Return("wieder", nil)
	if res := h.orch.Run(context.Background(), h.state, request("German")); !res.OK() {
		t.Fatalf("run after window: %v", res.Err)
	}
}

func TestRunValidationRejectsBeforeThrottle(t *testing.T) {
	h := newHarness(t)
	bad := request("French")
	bad.Media.Size = validator.MaxUploadSize + 1

	res := h.orch.Run(context.Background(), h.state, bad)
	if types.KindOf(res.Err) != types.KindValidation {
		t.Fatalf("expected validation error, got %v", res.Err)
	}

	// A rejected upload must not consume the throttle window.
	h.expectMedia(t, "hello")
	h.translator.EXPECT().Translate(gomock.Any(), "hello", "French").Return("bonjour", nil)
	if res := h.orch.Run(context.Background(), h.state, request("French")); !res.OK() {
		t.Fatalf("valid run after rejection: %v", res.Err)
	}
}

func TestRunMediaFailureKeepsPreviousResults(t *testing.T) {
	h := newHarness(t)
	h.state.ReplaceTranscript("old")
	h.state.PutTranslation("French", "vieux")

	h.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, types.MediaProcessingError(errors.New("moov atom not found"), "error processing video"))

	res := h.orch.Run(context.Background(), h.state, request("French"))
	if types.KindOf(res.Err) != types.KindMediaProcessing {
		t.Fatalf("expected media error, got %v", res.Err)
	}
	if !strings.Contains(res.Err.UserMessage(), "moov atom not found") {
		t.Errorf("user message lost the cause: %q", res.Err.UserMessage())
	}
	snap := h.state.Snapshot()
	if snap.Transcript != "old" || snap.Translations["French"] != "vieux" {
		t.Fatalf("media failure changed session: %+v", snap)
	}
}

func TestRunTranscriptionFailureReleasesArtifact(t *testing.T) {
	h := newHarness(t)
	h.state.ReplaceTranscript("old")
	art := h.artifact(t)
	h.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any()).Return(art, nil)
	h.transcriber.EXPECT().Transcribe(gomock.Any(), art.Path).Return("", errors.New("connection reset"))

	res := h.orch.Run(context.Background(), h.state, request("French"))

	if types.KindOf(res.Err) != types.KindTranscription {
		t.Fatalf("expected transcription error, got %v", res.Err)
	}
	if left := h.leftovers(t); len(left) != 0 {
		t.Fatalf("artifact not released on failure: %v", left)
	}
	if text, _ := h.state.Transcript(); text != "old" {
		t.Fatalf("transcript changed to %q", text)
	}
	if h.state.Running() {
		t.Fatal("session still marked running")
	}
}

func TestRunRejectsOverlappingInvocation(t *testing.T) {
	h := newHarness(t)
	h.state.Begin()
	defer h.state.Finish()

	res := h.orch.Run(context.Background(), h.state, request("French"))
	if types.KindOf(res.Err) != types.KindThrottleDenied {
		t.Fatalf("expected throttle denial, got %v", res.Err)
	}
}

func TestRunEmitsStages(t *testing.T) {
	h := newHarness(t)
	h.expectMedia(t, "hello")
	h.translator.EXPECT().Translate(gomock.Any(), "hello", "French").Return("bonjour", nil)
	h.orch.Run(context.Background(), h.state, request("French"))

	want := []types.Stage{
		types.StageValidating,
		types.StageThrottle,
		types.StageExtracting,
		types.StageTranscribing,
		types.StageTranslating,
		types.StageTranslating,
		types.StageDone,
	}
	if len(h.events) != len(want) {
		t.Fatalf("events = %+v", h.events)
	}
	for i, ev := range h.events {
		if ev.Stage != want[i] {
			t.Errorf("event %d = %s, want %s", i, ev.Stage, want[i])
		}
	}
	if h.events[5].Language != "French" {
		t.Errorf("per-language event missing language: %+v", h.events[5])
	}
	if q := h.state.Events.Len(); q != len(want) {
		t.Errorf("session queue holds %d events, want %d", q, len(want))
	}
}

func TestRunTranslatesConcurrently(t *testing.T) {
	h := newHarness(t)
	h.expectMedia(t, "hello")
	slow := func(ctx context.Context, text, lang string) (string, error) {
		time.Sleep(200 * time.Millisecond)
		return "ok " + lang, nil
	}
	h.translator.EXPECT().Translate(gomock.Any(), "hello", "Spanish").DoAndReturn(slow)
	h.translator.EXPECT().Translate(gomock.Any(), "hello", "Italian").DoAndReturn(slow)

	start := time.Now()
	res := h.orch.Run(context.Background(), h.state, request("Spanish", "Italian"))
	if !res.OK() || len(res.Translations) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if elapsed := time.Since(start); elapsed >= 380*time.Millisecond {
		t.Fatalf("independent translations ran serially: %s", elapsed)
	}
}

func TestNewRequiresComponents(t *testing.T) {
	if _, err := pipeline.New(pipeline.Config{}); err == nil {
		t.Fatal("expected error")
	}
}
