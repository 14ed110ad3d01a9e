package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrsingh-rishi/vidscribe/app"
	"github.com/mrsingh-rishi/vidscribe/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vidscribe",
	Short: "Transcribe videos and translate the transcript",
	Long: `vidscribe extracts the audio track of a video, transcribes it with
Whisper and translates the transcript into any of the supported languages.

Commands:
  process  - run the pipeline on a local file
  serve    - start the HTTP server
  watch    - follow a session's progress stream`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "TOML config file (default: $VIDSCRIBE_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func loadApp() (*app.App, error) {
	if cfgFile != "" {
		os.Setenv("VIDSCRIBE_CONFIG", cfgFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := log.New(io.Discard, "", 0)
	if verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return app.New(cfg, logger)
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
