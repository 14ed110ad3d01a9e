package media

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/vidscribe/model"
	"github.com/mrsingh-rishi/vidscribe/types"
	"github.com/mrsingh-rishi/vidscribe/validator"
)

// ErrNoAudioTrack is the cause reported for videos without audio.
var ErrNoAudioTrack = errors.New("no audio track present")

// Options configures an Extractor. Zero values fall back to defaults.
type Options struct {
	FFmpegPath  string
	FFprobePath string
	TempDir     string
	Runner      Runner
	Logger      *log.Logger
}

// Extractor demuxes the audio track of a video into a temp MP3 file.
type Extractor struct {
	ffmpeg  string
	ffprobe string
	tempDir string
	run     Runner
	logger  *log.Logger
}

func NewExtractor(opts Options) *Extractor {
	e := &Extractor{
		ffmpeg:  opts.FFmpegPath,
		ffprobe: opts.FFprobePath,
		tempDir: opts.TempDir,
		run:     opts.Runner,
		logger:  opts.Logger,
	}
	if e.ffmpeg == "" {
		e.ffmpeg = "ffmpeg"
	}
	if e.ffprobe == "" {
		e.ffprobe = "ffprobe"
	}
	if e.run == nil {
		e.run = Exec
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e
}

// Extract stores m in a temp video file, probes it, and transcodes its
// first audio stream. The temp video is gone when Extract returns. On
// success the caller owns the artifact and must Release it.
func (e *Extractor) Extract(ctx context.Context, m model.UploadedMedia, mimeType string) (*model.AudioArtifact, error) {
	suffix, ok := validator.Extensions[mimeType]
	if !ok {
		return nil, types.MediaProcessingError(errors.Errorf("unsupported type %q", mimeType), "error processing video")
	}

	videoPath, err := e.writeTemp(m.Content, "vidscribe-video-*"+suffix)
	if err != nil {
		return nil, types.MediaProcessingError(err, "error processing video")
	}
	defer e.remove(videoPath)

	info, err := Probe(ctx, e.run, e.ffprobe, videoPath)
	if err != nil {
		return nil, types.MediaProcessingError(err, "error processing video")
	}
	if len(info.AudioStreams) == 0 {
		return nil, types.MediaProcessingError(ErrNoAudioTrack, "error processing video")
	}

	audioPath, err := e.writeTemp(nil, "vidscribe-audio-*.mp3")
	if err != nil {
		return nil, types.MediaProcessingError(err, "error processing video")
	}

	res := e.run(ctx, e.ffmpeg, buildArgs(videoPath, audioPath)...)
	if res.Err != nil {
		e.remove(audioPath)
		cause := errors.Wrap(res.Err, "ffmpeg")
		if msg := lastLine(res.Stderr); msg != "" {
			cause = errors.Wrapf(res.Err, "ffmpeg: %s", msg)
		}
		return nil, types.MediaProcessingError(cause, "error processing video")
	}

	e.logger.Printf("✅ extracted %.1fs of audio from %q (%s)", info.Duration, m.Filename, info.FormatName)
	return model.NewAudioArtifact(audioPath, info.Duration), nil
}

// buildArgs returns the ffmpeg arguments that transcode the first audio
// stream of in into a mono 16 kHz MP3 at out.
func buildArgs(in, out string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-loglevel", "error",
		"-i", in,
		"-map", "0:a:0",
		"-vn", "-sn", "-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "libmp3lame",
		"-b:a", "64k",
		out,
	}
}

func (e *Extractor) writeTemp(src io.Reader, pattern string) (string, error) {
	f, err := os.CreateTemp(e.tempDir, pattern)
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	path := f.Name()
	if src != nil {
		if _, err := io.Copy(f, src); err != nil {
			f.Close()
			e.remove(path)
			return "", errors.Wrap(err, "write temp file")
		}
	}
	if err := f.Close(); err != nil {
		e.remove(path)
		return "", errors.Wrap(err, "close temp file")
	}
	return path, nil
}

func (e *Extractor) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		e.logger.Printf("⚠️ could not remove temp file %s: %v", path, err)
	}
}
