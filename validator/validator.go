package validator

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mrsingh-rishi/vidscribe/model"
	"github.com/mrsingh-rishi/vidscribe/types"
)

// MaxUploadSize is the largest accepted upload, in bytes.
const MaxUploadSize int64 = 200 << 20

const (
	TypeMP4       = "video/mp4"
	TypeAVI       = "video/avi"
	TypeQuickTime = "video/quicktime"
)

// AllowedTypes is the MIME allow-list.
var AllowedTypes = []string{TypeMP4, TypeAVI, TypeQuickTime}

var extensionTypes = map[string]string{
	".mp4": TypeMP4,
	".avi": TypeAVI,
	".mov": TypeQuickTime,
	".qt":  TypeQuickTime,
}

var aliases = map[string]string{
	"video/x-msvideo": TypeAVI,
	"video/msvideo":   TypeAVI,
}

// containers groups types that share a container layout; a file whose
// name and magic bytes disagree is rejected unless both land in the same group.
var containers = map[string]string{
	TypeMP4:       "isobmff",
	TypeQuickTime: "isobmff",
	TypeAVI:       "riff",
}

// relatives are detected types outside the allow-list that share a
// container layout with an allowed type.
var relatives = map[string]string{
	"video/x-m4v": "isobmff",
	"video/3gpp":  "isobmff",
	"video/3gpp2": "isobmff",
	"audio/mp4":   "isobmff",
	"audio/x-m4a": "isobmff",
}

// Extensions maps each allowed type to the suffix its temp file must carry.
var Extensions = map[string]string{
	TypeMP4:       ".mp4",
	TypeAVI:       ".avi",
	TypeQuickTime: ".mov",
}

type Validator struct {
	MaxSize int64
	Logger  *log.Logger
}

func New(logger *log.Logger) *Validator {
	if logger == nil {
		logger = log.Default()
	}
	return &Validator{MaxSize: MaxUploadSize, Logger: logger}
}

// Validate accepts or rejects m by its declared size and sniffed type.
// On success it returns the sniffed MIME type. It never reads m.Content.
func (v *Validator) Validate(m model.UploadedMedia) (string, error) {
	if m.Size > v.MaxSize {
		v.Logger.Printf("❌ rejected %q: %d bytes exceeds %d", m.Filename, m.Size, v.MaxSize)
		return "", types.ValidationError("file size exceeds %dMB limit, please upload a smaller file", v.MaxSize>>20)
	}
	if m.Size < 0 {
		return "", types.ValidationError("invalid file size")
	}

	byName := normalize(extensionTypes[strings.ToLower(filepath.Ext(m.Filename))])
	if !Allowed(byName) {
		v.Logger.Printf("❌ rejected %q: extension not allowed (declared %q)", m.Filename, m.DeclaredType)
		return "", types.ValidationError("invalid file type, please upload a valid video file")
	}

	if len(m.Header) > 0 {
		if family := containerOf(m.Header); family == "" || family != containers[byName] {
			v.Logger.Printf("❌ rejected %q: content looks like %q, name says %q", m.Filename, family, byName)
			return "", types.ValidationError("invalid file type, file content does not match a supported video format")
		}
	}

	if m.DeclaredType != "" && normalize(m.DeclaredType) != byName {
		v.Logger.Printf("⚠️ %q declared as %q, sniffed as %q", m.Filename, m.DeclaredType, byName)
	}
	return byName, nil
}

// Allowed reports whether t is in the allow-list.
func Allowed(t string) bool {
	for _, a := range AllowedTypes {
		if a == t {
			return true
		}
	}
	return false
}

// containerOf returns the container family of header, or "" when it is not
// a supported one. Any box stream that opens with an ftyp box is ISO-BMFF,
// whatever its brand.
func containerOf(header []byte) string {
	if len(header) >= 8 && string(header[4:8]) == "ftyp" {
		return "isobmff"
	}
	for m := mimetype.Detect(header); m != nil; m = m.Parent() {
		t := normalize(m.String())
		if family, ok := containers[t]; ok {
			return family
		}
		if family, ok := relatives[t]; ok {
			return family
		}
	}
	return ""
}

func normalize(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if a, ok := aliases[t]; ok {
		return a
	}
	return t
}
