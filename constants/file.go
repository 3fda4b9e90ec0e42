package constants

import "strings"

// CVExtension is the canonical extension for candidate documents. Shortlist
// entries are normalized to it so the filename join key stays stable.
const CVExtension = ".pdf"

// DocumentExts are allowed extensions for inbox discovery (lowercase, without '.').
var DocumentExts = map[string]struct{}{
	"pdf": {},
}

// TranscriptExts are allowed extensions for call transcript uploads.
var TranscriptExts = map[string]struct{}{
	"txt": {},
	"mp3": {},
	"wav": {},
}

// NormalizeCVFilename appends the canonical extension when missing.
func NormalizeCVFilename(name string) string {
	if strings.HasSuffix(strings.ToLower(name), CVExtension) {
		return name
	}
	return name + CVExtension
}
