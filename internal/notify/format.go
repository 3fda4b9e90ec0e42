package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/entity"
)

const divider = "--------------------------------------------------"

// FormatHREmail renders the screening-questions digest sent to HR after
// question generation. cvBaseURL points at the served CV directory.
func FormatHREmail(job *entity.Job, sets []entity.ScreeningSet, cvBaseURL string) string {
	title := job.Title
	if title == "" {
		title = "Job ID " + job.ID
	}

	var b strings.Builder
	b.WriteString("Dear HR Team,\n\n")
	fmt.Fprintf(&b, "Below are the screening questions and candidate details for the position '%s'.\n", title)
	b.WriteString("These questions are tailored to evaluate candidates based on the job requirements and their submitted CVs.\n\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Position: %s\n", title)
	b.WriteString(divider + "\n\n")

	for _, set := range sets {
		cvName := constants.NormalizeCVFilename(set.Filename)
		fmt.Fprintf(&b, "Candidate: %s\n", set.Filename)
		fmt.Fprintf(&b, "CV: %s/%s_%s\n\n", strings.TrimRight(cvBaseURL, "/"), job.ID, cvName)
		b.WriteString("Screening Questions:\n")
		for i, q := range set.Questions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, q.Question)
			if q.ExpectedAnswer != "" {
				fmt.Fprintf(&b, "     Expected Response: %s\n", q.ExpectedAnswer)
			}
			b.WriteString("\n")
		}
		b.WriteString(divider + "\n\n")
	}

	b.WriteString("Please review the candidates and their respective screening questions. Let us know if you need further assistance or additional information.\n\n")
	b.WriteString("Best regards,\nHiringBot Team\nQuantumTech Recruitment System\n")
	return b.String()
}

// FormatInterviewInvite renders the booking confirmation sent to HR, with the
// candidate in CC.
func FormatInterviewInvite(job *entity.Job, candidateName, cvFilename string, at time.Time, cvBaseURL string) (subject, body string) {
	subject = fmt.Sprintf("Interview Scheduled: %s for %s", candidateName, job.Title)
	body = fmt.Sprintf(`Dear HR Team,

An interview has been scheduled for the following candidate:

Position: %s (Job ID: %s)
Candidate: %s
Interview Time: %s
CV: %s/%s_%s

Please prepare for the interview and review the candidate's CV. If you have any questions, feel free to contact the recruitment team.

Best regards,
Hiredroid Recruitment System
`,
		job.Title, job.ID, candidateName,
		at.Format("Monday, January 2, 2006, 3:04 PM MST"),
		strings.TrimRight(cvBaseURL, "/"), job.ID, constants.NormalizeCVFilename(cvFilename))
	return subject, body
}
