package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrsingh-rishi/vidscribe/model"
	"github.com/mrsingh-rishi/vidscribe/types"
)

// Translator translates text into one target language.
type Translator interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

// TranslationWorker fans one transcript out to several languages. Tasks
// are independent: one failing or timing out never stops the others.
type TranslationWorker struct {
	Translator  Translator
	Concurrency int
	TaskTimeout time.Duration
	Logger      *log.Logger
}

func NewTranslationWorker(translator Translator, concurrency int, taskTimeout time.Duration, logger *log.Logger) (*TranslationWorker, error) {
	// Params Validation
	if translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if concurrency < 0 {
		return nil, fmt.Errorf("concurrency must not be negative")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TranslationWorker{
		Translator:  translator,
		Concurrency: concurrency,
		TaskTimeout: taskTimeout,
		Logger:      logger,
	}, nil
}

// FanOut translates transcript into every distinct language. onResult, if
// set, is called once per language as soon as that task finishes, possibly
// from several goroutines at once. The returned set holds the successes;
// failures maps each failed language to its error.
func (w *TranslationWorker) FanOut(
	ctx context.Context,
	transcript string,
	languages []string,
	onResult func(types.TranslationResult),
) (model.TranslationSet, map[string]error) {
	langs := distinct(languages)
	results := make(chan types.TranslationResult, len(langs))

	var g errgroup.Group
	if w.Concurrency > 0 {
		g.SetLimit(w.Concurrency)
	}
	for _, lang := range langs {
		lang := lang
		g.Go(func() error {
			r := w.translate(ctx, transcript, lang)
			if onResult != nil {
				onResult(r)
			}
			results <- r
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	set := make(model.TranslationSet, len(langs))
	failures := make(map[string]error)
	for r := range results {
		if r.Err != nil {
			failures[r.Language] = r.Err
			continue
		}
		set[r.Language] = r.Translation
	}
	w.Logger.Printf("✅ fan-out finished: %d translated, %d failed", len(set), len(failures))
	return set, failures
}

func (w *TranslationWorker) translate(ctx context.Context, transcript, lang string) types.TranslationResult {
	if w.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.TaskTimeout)
		defer cancel()
	}

	text, err := w.Translator.Translate(ctx, transcript, lang)
	if err != nil {
		if types.KindOf(err) == "" {
			err = types.TranslationError(lang, err, "error translating text")
		}
		w.Logger.Printf("⚠️ skipping %s: %v", lang, err)
		return types.TranslationResult{Language: lang, Err: err}
	}
	return types.TranslationResult{Language: lang, Translation: text}
}

// distinct drops repeated labels, keeping the first occurrence.
func distinct(languages []string) []string {
	seen := make(map[string]bool, len(languages))
	out := make([]string, 0, len(languages))
	for _, l := range languages {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
