package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/vidscribe/model"
	"github.com/mrsingh-rishi/vidscribe/session"
	"github.com/mrsingh-rishi/vidscribe/types"
)

// Validator decides whether an upload may be processed and returns its
// sniffed MIME type.
type Validator interface {
	Validate(m model.UploadedMedia) (string, error)
}

// Extractor produces the audio artifact of a validated upload.
type Extractor interface {
	Extract(ctx context.Context, m model.UploadedMedia, mimeType string) (*model.AudioArtifact, error)
}

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Translations fans a transcript out to several languages.
type Translations interface {
	FanOut(ctx context.Context, transcript string, languages []string, onResult func(types.TranslationResult)) (model.TranslationSet, map[string]error)
}

// Request is the input of one invocation.
type Request struct {
	Media     model.UploadedMedia
	Languages []string
}

// Result is the outcome of one invocation. Err is nil when a transcript
// was produced, even if some translations failed.
type Result struct {
	InvocationID  string
	Transcript    string
	Translations  model.TranslationSet
	Failures      map[string]error
	AudioDuration float64
	Elapsed       time.Duration
	Err           *types.PipelineError
}

// OK reports whether the invocation produced a transcript.
func (r Result) OK() bool { return r.Err == nil }

// Config wires an Orchestrator.
type Config struct {
	Validator    Validator
	Extractor    Extractor
	Transcriber  Transcriber
	Translations Translations
	Logger       *log.Logger

	// Observer, if set, receives every stage event in addition to the
	// session's event queue.
	Observer func(types.StageEvent)

	// Now defaults to time.Now.
	Now func() time.Time
}

type Orchestrator struct {
	validator    Validator
	extractor    Extractor
	transcriber  Transcriber
	translations Translations
	logger       *log.Logger
	observer     func(types.StageEvent)
	now          func() time.Time
}

func New(cfg Config) (*Orchestrator, error) {
	if cfg.Validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if cfg.Transcriber == nil {
		return nil, fmt.Errorf("transcriber is required")
	}
	if cfg.Translations == nil {
		return nil, fmt.Errorf("translations worker is required")
	}
	o := &Orchestrator{
		validator:    cfg.Validator,
		extractor:    cfg.Extractor,
		transcriber:  cfg.Transcriber,
		translations: cfg.Translations,
		logger:       cfg.Logger,
		observer:     cfg.Observer,
		now:          cfg.Now,
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// Run executes one invocation against st.
func (o *Orchestrator) Run(ctx context.Context, st *session.State, req Request) Result {
	inv := &invocation{o: o, st: st, id: uuid.NewString(), start: o.now()}
	res := Result{InvocationID: inv.id}
	o.logger.Printf("▶️ invocation %s: %q (%d bytes), languages %v", inv.id, req.Media.Filename, req.Media.Size, req.Languages)

	inv.emit(types.StageValidating, "", "")
	mimeType, err := o.validator.Validate(req.Media)
	if err != nil {
		return inv.fail(res, types.KindValidation, err)
	}

	inv.emit(types.StageThrottle, "", "")
	if !st.Begin() {
		return inv.fail(res, types.KindThrottleDenied, types.ThrottleDenied("another request is still being processed, please wait"))
	}
	defer st.Finish()
	if now := o.now(); !st.Throttle.Allow(now) {
		wait := st.Throttle.Remaining(now).Round(time.Second)
		return inv.fail(res, types.KindThrottleDenied, types.ThrottleDenied("please wait %s before making another request", wait))
	}

	inv.emit(types.StageExtracting, "", "")
	artifact, err := o.extractor.Extract(ctx, req.Media, mimeType)
	if err != nil {
		return inv.fail(res, types.KindMediaProcessing, err)
	}
	if artifact == nil {
		return inv.fail(res, types.KindMediaProcessing, types.MediaProcessingError(nil, "error processing video: no audio produced"))
	}
	res.AudioDuration = artifact.Duration

	inv.emit(types.StageTranscribing, "", "")
	transcript, err := o.transcribe(ctx, artifact)
	if err != nil {
		return inv.fail(res, types.KindTranscription, err)
	}
	st.ReplaceTranscript(transcript)
	res.Transcript = transcript

	inv.emit(types.StageTranslating, "", "")
	res.Translations, res.Failures = o.translations.FanOut(ctx, transcript, req.Languages, func(r types.TranslationResult) {
		if r.Err != nil {
			inv.emit(types.StageTranslating, r.Language, userMessage(r.Err))
			return
		}
		st.PutTranslation(r.Language, r.Translation)
		inv.emit(types.StageTranslating, r.Language, "done")
	})

	res.Elapsed = o.now().Sub(inv.start)
	inv.emit(types.StageDone, "", fmt.Sprintf("%d of %d translations", len(res.Translations), len(res.Translations)+len(res.Failures)))
	o.logger.Printf("✅ invocation %s finished in %s", inv.id, res.Elapsed.Round(time.Millisecond))
	return res
}

// transcribe owns the artifact: it is released when transcription ends,
// whatever the outcome.
func (o *Orchestrator) transcribe(ctx context.Context, artifact *model.AudioArtifact) (string, error) {
	defer func() {
		if err := artifact.Release(); err != nil {
			o.logger.Printf("⚠️ could not release audio artifact %s: %v", artifact.Path, err)
		}
	}()
	return o.transcriber.Transcribe(ctx, artifact.Path)
}

type invocation struct {
	o     *Orchestrator
	st    *session.State
	id    string
	start time.Time
}

func (inv *invocation) emit(stage types.Stage, lang, msg string) {
	ev := types.StageEvent{
		InvocationID: inv.id,
		Stage:        stage,
		Language:     lang,
		Message:      msg,
		Time:         inv.o.now(),
	}
	inv.st.Events.Enqueue(ev)
	if inv.o.observer != nil {
		inv.o.observer(ev)
	}
}

// fail classifies err, defaulting to kind when the component did not.
func (inv *invocation) fail(res Result, kind types.Kind, err error) Result {
	var pe *types.PipelineError
	if !errors.As(err, &pe) {
		pe = &types.PipelineError{Kind: kind, Message: string(kind) + " failed", Err: err}
	}
	res.Err = pe
	res.Elapsed = inv.o.now().Sub(inv.start)
	inv.emit(types.StageFailed, "", pe.UserMessage())
	inv.o.logger.Printf("❌ invocation %s stopped: %v", inv.id, pe)
	return res
}

func userMessage(err error) string {
	var pe *types.PipelineError
	if errors.As(err, &pe) {
		return pe.UserMessage()
	}
	return err.Error()
}
