// Package media turns an uploaded video into a temporary audio file the
// transcription backend accepts.
//
// One ffprobe JSON call reads the duration and the audio streams, then one
// ffmpeg call transcodes the first audio stream to mono 16 kHz MP3. Both
// binaries run through a Runner so tests can substitute them.
//
// The uploaded video is written to a temp file carrying the suffix of its
// validated type and removed before Extract returns. The audio file is
// owned by the returned AudioArtifact; the caller releases it.
package media
