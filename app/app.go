// Package app builds the pipeline and its collaborators from configuration.
package app

import (
	"log"

	"github.com/sashabaranov/go-openai"

	"github.com/mrsingh-rishi/vidscribe/config"
	"github.com/mrsingh-rishi/vidscribe/llm"
	"github.com/mrsingh-rishi/vidscribe/media"
	"github.com/mrsingh-rishi/vidscribe/pipeline"
	"github.com/mrsingh-rishi/vidscribe/session"
	"github.com/mrsingh-rishi/vidscribe/stt"
	"github.com/mrsingh-rishi/vidscribe/validator"
	"github.com/mrsingh-rishi/vidscribe/workers"
)

// App holds the long-lived components shared by every session.
type App struct {
	Config       *config.Config
	Orchestrator *pipeline.Orchestrator
	Sessions     *session.Store
	Identity     *session.Identity
	Logger       *log.Logger
}

// New validates cfg and wires the pipeline. A missing API key fails here,
// before any invocation can be accepted.
func New(cfg *config.Config, logger *log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	oaCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		oaCfg.BaseURL = cfg.OpenAIBaseURL
	}
	client := openai.NewClientWithConfig(oaCfg)

	transcriber, err := stt.NewWhisperClient(client, cfg.TranscriptionModel, cfg.TranscribeTimeout.Duration, logger)
	if err != nil {
		return nil, err
	}
	translator, err := llm.NewOpenAIClient(client, cfg.TranslationModel, cfg.TranslateTimeout.Duration, logger)
	if err != nil {
		return nil, err
	}
	// The worker bounds each task with the same timeout the client applies,
	// so a translator that ignores its own timeout is still cut off.
	translations, err := workers.NewTranslationWorker(translator, cfg.Concurrency, cfg.TranslateTimeout.Duration, logger)
	if err != nil {
		return nil, err
	}

	orch, err := pipeline.New(pipeline.Config{
		Validator: validator.New(logger),
		Extractor: media.NewExtractor(media.Options{
			FFmpegPath:  cfg.FFmpegPath,
			FFprobePath: cfg.FFprobePath,
			TempDir:     cfg.TempDir,
			Logger:      logger,
		}),
		Transcriber:  transcriber,
		Translations: translations,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:       cfg,
		Orchestrator: orch,
		Sessions:     session.NewStore(cfg.ThrottleInterval.Duration, cfg.SessionTTL.Duration, logger),
		Identity:     session.NewIdentity(cfg.SessionSecret, cfg.SessionTTL.Duration),
		Logger:       logger,
	}, nil
}
