package extract

import (
	"regexp"
	"strings"

	"github.com/quantumtech/hiredroid/internal/entity"
)

var (
	reEmail = regexp.MustCompile(`[\w.-]+@[\w.-]+`)
	rePhone = regexp.MustCompile(`\+?\d[\d\s-]{7,}\d`)
)

// ParseCandidateFields pulls the contact fields out of raw CV text. The name
// heuristic takes the first non-empty line, which holds for the vast majority
// of CV layouts.
func ParseCandidateFields(text string) entity.CandidateFields {
	fields := entity.CandidateFields{RawText: text}

	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			fields.Name = s
			break
		}
	}
	if m := reEmail.FindString(text); m != "" {
		fields.Email = m
	}
	if m := rePhone.FindString(text); m != "" {
		fields.Phone = m
	}
	return fields
}
