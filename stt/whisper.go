package stt

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/mrsingh-rishi/vidscribe/types"
)

// ErrEmptyTranscript is the cause reported when the backend returns no text.
var ErrEmptyTranscript = errors.New("backend returned an empty transcript")

// WhisperClient sends whole audio files to the OpenAI transcription endpoint.
type WhisperClient struct {
	Client  *openai.Client
	Model   string
	Timeout time.Duration
	Logger  *log.Logger
}

// NewWhisperClient initializes a new WhisperClient. An empty model selects whisper-1.
func NewWhisperClient(client *openai.Client, model string, timeout time.Duration, logger *log.Logger) (*WhisperClient, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	if model == "" {
		model = openai.Whisper1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &WhisperClient{
		Client:  client,
		Model:   model,
		Timeout: timeout,
		Logger:  logger,
	}, nil
}

// Transcribe uploads the file at audioPath in one request and returns its
// text. Every failure comes back as a transcription PipelineError.
func (w *WhisperClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := w.Client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.Model,
		FilePath: audioPath,
	})
	if err != nil {
		w.Logger.Printf("❌ transcription failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return "", types.TranscriptionError(err, "error transcribing audio")
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		w.Logger.Printf("❌ transcription returned no text")
		return "", types.TranscriptionError(ErrEmptyTranscript, "error transcribing audio")
	}
	w.Logger.Printf("📝 transcribed %d characters in %s", len(text), time.Since(start).Round(time.Millisecond))
	return text, nil
}
