package llm

import (
	"fmt"
	"strings"
)

// BuildShortlistSystemPrompt frames the recruiter role and the output contract.
// The model may only pick from the provided CVs, never invent entries.
func BuildShortlistSystemPrompt(req ShortlistRequest) string {
	parts := []string{
		"You are an expert recruiter.",
		fmt.Sprintf("Shortlist up to %d CVs for the job based on the provided CV data.", req.Cap),
		"Only select CVs from the provided list; do not generate or include any fictional CVs.",
		fmt.Sprintf("If fewer than %d CVs meet the criteria, return only those that qualify.", req.Cap),
		"For each selected CV, provide a short justification in 'reason'.",
		"Use the exact 'filename' provided for each CV, including its extension.",
		"Return ONLY a JSON list of objects with keys: filename, name, email, phone, reason.",
		"Do not include any explanation or extra text before or after the JSON.",
	}
	return strings.Join(parts, " ")
}

// BuildShortlistUserPrompt packages the job description and the numbered CV
// summaries. Raw text is pre-truncated by the caller.
func BuildShortlistUserPrompt(req ShortlistRequest) string {
	var b strings.Builder
	b.WriteString("Job title: ")
	b.WriteString(req.JobTitle)
	b.WriteString("\n\nJob description:\n")
	b.WriteString(req.JobDescription)
	b.WriteString("\n\nExtracted CVs:\n")
	for i, c := range req.Candidates {
		fmt.Fprintf(&b, "\nCV %d:\nFilename: %s\nName: %s\nEmail: %s\nPhone: %s\nText: %s\n",
			i+1, c.Filename, orNA(c.Name), orNA(c.Email), orNA(c.Phone), c.Excerpt)
	}
	return b.String()
}

// BuildQuestionsSystemPrompt frames the HR-assistant role for one candidate.
func BuildQuestionsSystemPrompt(req QuestionsRequest) string {
	parts := []string{
		"You are an HR assistant.",
		fmt.Sprintf("Given the job description, candidate CV data, and shortlisting reason, generate %d or more tailored screening call questions for this candidate.", req.MinQuestions),
		"Questions should be technical and based on the candidate's experience and skills.",
		`Return a JSON list of objects with 'question' and 'expected_answer' fields, e.g., [{"question": "Example", "expected_answer": "Details"}].`,
		"Return ONLY the JSON list.",
	}
	return strings.Join(parts, " ")
}

func BuildQuestionsUserPrompt(req QuestionsRequest) string {
	var b strings.Builder
	b.WriteString("Job description:\n")
	b.WriteString(req.JobDescription)
	b.WriteString("\n\nCandidate extracted data:\n")
	b.WriteString(req.CVData)
	b.WriteString("\n\nShortlisting reason: ")
	b.WriteString(req.Reason)
	return b.String()
}

// BuildScoreSystemPrompt frames the evaluation of one completed call.
func BuildScoreSystemPrompt(req ScoreRequest) string {
	parts := []string{
		"You are an HR expert.",
		"Evaluate the candidate's suitability for the role based on the job description, CV data, and call transcript.",
		"Provide a score (0-100) and a reason.",
		fmt.Sprintf(`Return ONLY a JSON object with keys filename, score, reason, using filename %q.`, req.Filename),
	}
	return strings.Join(parts, " ")
}

func BuildScoreUserPrompt(req ScoreRequest) string {
	var b strings.Builder
	b.WriteString("Job description:\n")
	b.WriteString(req.JobDescription)
	b.WriteString("\n\nCandidate CV data:\n")
	b.WriteString(req.CVData)
	b.WriteString("\n\nCall transcript:\n")
	b.WriteString(req.Transcript)
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
