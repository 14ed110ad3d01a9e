package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrsingh-rishi/vidscribe/language"
	"github.com/mrsingh-rishi/vidscribe/model"
	"github.com/mrsingh-rishi/vidscribe/output"
	"github.com/mrsingh-rishi/vidscribe/pipeline"
	"github.com/mrsingh-rishi/vidscribe/session"
	"github.com/mrsingh-rishi/vidscribe/types"
)

var (
	procLanguages []string
	procOutDir    string
)

var processCmd = &cobra.Command{
	Use:   "process FILE",
	Short: "Transcribe and translate a local video",
	Long: `Runs the full pipeline on FILE and writes transcript.txt plus one
<language>_translation.txt per requested language into the output directory.

Examples:
  vidscribe process talk.mp4
  vidscribe process talk.mov -l Spanish -l French -o out/`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringArrayVarP(&procLanguages, "language", "l", nil,
		"target language (repeatable)")
	processCmd.Flags().StringVarP(&procOutDir, "out", "o", ".",
		"directory for the transcript and translations")
}

// consoleWriter prints stage events as they are forwarded.
type consoleWriter struct {
	w io.Writer
}

func (c consoleWriter) WriteJSON(v interface{}) error {
	ev, ok := v.(types.StageEvent)
	if !ok {
		return nil
	}
	line := string(ev.Stage)
	if ev.Language != "" {
		line += " [" + ev.Language + "]"
	}
	if ev.Message != "" {
		line += ": " + ev.Message
	}
	_, err := fmt.Fprintln(c.w, line)
	return err
}

func runProcess(cmd *cobra.Command, args []string) error {
	languages := make([]string, 0, len(procLanguages))
	for _, l := range procLanguages {
		canonical, ok := language.Lookup(l)
		if !ok {
			err := fmt.Errorf("unsupported language %q (choose from %v)", l, language.Catalog)
			printError("arguments", err)
			return err
		}
		languages = append(languages, canonical)
	}

	a, err := loadApp()
	if err != nil {
		printError("startup", err)
		return err
	}

	media, closeFn, err := openMedia(args[0])
	if err != nil {
		printError("open", err)
		return err
	}
	defer closeFn()

	st := session.NewState("cli", a.Config.ThrottleInterval.Duration)
	progress, err := output.NewProgressOutput(consoleWriter{w: cmd.ErrOrStderr()}, st.Events, 50*time.Millisecond, a.Logger)
	if err != nil {
		return err
	}
	progress.Start()

	res := a.Orchestrator.Run(cmd.Context(), st, pipeline.Request{Media: media, Languages: languages})

	// Let the last events reach the console.
drain:
	for !st.Events.IsEmpty() {
		select {
		case <-progress.Done():
			break drain
		case <-time.After(10 * time.Millisecond):
		}
	}
	progress.Stop()
	<-progress.Done()

	if !res.OK() {
		fmt.Fprintln(cmd.ErrOrStderr(), res.Err.UserMessage())
		return res.Err
	}
	if err := writeResults(procOutDir, res); err != nil {
		printError("write results", err)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ %.1fs of audio processed in %s\n", res.AudioDuration, res.Elapsed.Round(time.Millisecond))
	failed := make([]string, 0, len(res.Failures))
	for lang := range res.Failures {
		failed = append(failed, lang)
	}
	sort.Strings(failed)
	for _, lang := range failed {
		fmt.Fprintf(out, "⚠️ %s: %v\n", lang, res.Failures[lang])
	}
	return nil
}

func openMedia(path string) (model.UploadedMedia, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return model.UploadedMedia{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return model.UploadedMedia{}, nil, err
	}

	header := make([]byte, 512)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		f.Close()
		return model.UploadedMedia{}, nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return model.UploadedMedia{}, nil, err
	}

	return model.UploadedMedia{
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Header:   header[:n],
		Content:  f,
	}, func() { f.Close() }, nil
}

func writeResults(dir string, res pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := map[string]string{language.TranscriptFileName: res.Transcript}
	for lang, text := range res.Translations {
		files[language.TranslationFileName(lang)] = text
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			return err
		}
	}
	return nil
}
