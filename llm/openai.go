package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/mrsingh-rishi/vidscribe/language"
	"github.com/mrsingh-rishi/vidscribe/types"
)

// ErrEmptyLanguage is returned when a label has nothing left after sanitising.
var ErrEmptyLanguage = errors.New("language label is empty after sanitising")

// ErrEmptyCompletion is returned when the backend answers without content.
var ErrEmptyCompletion = errors.New("backend returned no translation")

const systemInstructions = "You are a translator. Translate the following text to %s."

type OpenAIClient struct {
	Client  *openai.Client
	Model   string // chat model used for translation
	Timeout time.Duration
	Logger  *log.Logger
}

func NewOpenAIClient(client *openai.Client, model string, timeout time.Duration, logger *log.Logger) (*OpenAIClient, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OpenAIClient{
		Client:  client,
		Model:   model,
		Timeout: timeout,
		Logger:  logger,
	}, nil
}

// SystemPrompt returns the instruction sent for the given label.
func SystemPrompt(label string) string {
	return fmt.Sprintf(systemInstructions, language.Sanitize(label))
}

// Translate sends text to the chat backend with an instruction naming the
// sanitised target language. No caching: every call reaches the backend.
func (c *OpenAIClient) Translate(ctx context.Context, text, label string) (string, error) {
	if strings.TrimSpace(language.Sanitize(label)) == "" {
		return "", types.TranslationError(label, ErrEmptyLanguage, "error translating text")
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(label)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}

	resp, err := c.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.Logger.Printf("❌ translation to %s failed: %v", label, err)
		return "", types.TranslationError(label, err, "error translating text")
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		c.Logger.Printf("❌ translation to %s came back empty", label)
		return "", types.TranslationError(label, ErrEmptyCompletion, "error translating text")
	}

	c.Logger.Printf("✅ translated to %s (%d tokens)", label, resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}
