package llm

import "context"

// CandidateSummary is the condensed CV view handed to the shortlist prompt.
type CandidateSummary struct {
	Filename string `json:"filename"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"` // leading slice of the raw CV text
}

type ShortlistRequest struct {
	JobTitle       string
	JobDescription string
	Candidates     []CandidateSummary
	Cap            int // max picks the model may return
}

// ShortlistPick is the normalized shape we want from the model.
type ShortlistPick struct {
	Filename string `json:"filename"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Reason   string `json:"reason"`
}

type QuestionsRequest struct {
	JobDescription string
	CVData         string // JSON-encoded extracted fields for one candidate
	Reason         string // why this candidate was shortlisted
	MinQuestions   int
}

type Question struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
}

type ScoreRequest struct {
	JobDescription string
	CVData         string
	Transcript     string
	Filename       string
}

type ScoreResult struct {
	Filename string `json:"filename"`
	Score    int    `json:"score"` // 0..100
	Reason   string `json:"reason"`
}

// The interfaces the stage workers depend on. Each returns the raw model JSON
// alongside the decoded value so callers can log or archive it.
type (
	ShortlistClassifier interface {
		Shortlist(ctx context.Context, req ShortlistRequest) ([]ShortlistPick, []byte, error)
	}
	QuestionGenerator interface {
		GenerateQuestions(ctx context.Context, req QuestionsRequest) ([]Question, []byte, error)
	}
	CandidateScorer interface {
		ScoreCandidate(ctx context.Context, req ScoreRequest) (ScoreResult, []byte, error)
	}
)
