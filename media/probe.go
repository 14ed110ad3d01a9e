package media

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ProbeResult is the subset of ffprobe output the extractor needs.
type ProbeResult struct {
	FormatName   string
	Duration     float64
	AudioStreams []AudioStream
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index      int
	Codec      string
	Channels   int
	SampleRate int
	Duration   float64
}

// Probe runs a single ffprobe JSON call against path.
func Probe(ctx context.Context, run Runner, ffprobe, path string) (*ProbeResult, error) {
	res := run(ctx, ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if res.Err != nil {
		if msg := lastLine(res.Stderr); msg != "" {
			return nil, errors.Wrapf(res.Err, "ffprobe: %s", msg)
		}
		return nil, errors.Wrap(res.Err, "ffprobe")
	}
	return ParseJSON(res.Stdout)
}

// ParseJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse ffprobe JSON")
	}

	pr := &ProbeResult{
		FormatName: raw.Format.FormatName,
		Duration:   parseFloat(raw.Format.Duration),
	}
	for _, s := range raw.Streams {
		if s.CodecType != "audio" {
			continue
		}
		pr.AudioStreams = append(pr.AudioStreams, AudioStream{
			Index:      s.Index,
			Codec:      s.CodecName,
			Channels:   s.Channels,
			SampleRate: parseInt(s.SampleRate),
			Duration:   parseFloat(s.Duration),
		})
	}
	if pr.Duration <= 0 && len(pr.AudioStreams) > 0 {
		pr.Duration = pr.AudioStreams[0].Duration
	}
	if pr.Duration < 0 {
		pr.Duration = 0
	}
	return pr, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Channels   int    `json:"channels"`
	SampleRate string `json:"sample_rate"`
	Duration   string `json:"duration"`
}

// ffprobe returns numbers as strings.

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
