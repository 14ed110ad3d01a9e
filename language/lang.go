// Package language holds the fixed catalog of target languages and the
// label sanitisation applied before a label reaches a prompt or a file name.
package language

import (
	"regexp"
	"strings"
)

// Catalog is the set of languages offered for translation.
var Catalog = []string{
	"Turkish",
	"English",
	"Russian",
	"French",
	"Spanish",
	"German",
	"Italian",
	"Japanese",
	"Chinese",
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z\s]`)

// Sanitize strips every character outside [A-Za-z\s]. Labels are
// interpolated into model instructions, so nothing else may pass.
func Sanitize(label string) string {
	return unsafeChars.ReplaceAllString(label, "")
}

// Lookup returns the catalog spelling of label, compared case-insensitively.
func Lookup(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, l := range Catalog {
		if strings.EqualFold(l, label) {
			return l, true
		}
	}
	return "", false
}

// TranslationFileName is the download name for a translation.
func TranslationFileName(label string) string {
	return Sanitize(strings.ToLower(label)) + "_translation.txt"
}

// TranscriptFileName is the download name for the transcript.
const TranscriptFileName = "transcript.txt"
