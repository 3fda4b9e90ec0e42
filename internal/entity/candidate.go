package entity

import "time"

// CandidateFields is the normalized shape extracted from one CV.
type CandidateFields struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	RawText string `json:"raw_text,omitempty"`
}

// CandidateRecord is one uploaded document, keyed by (job id, filename).
// Records are created by extraction when a document arrives and are never
// deleted by the pipeline.
type CandidateRecord struct {
	JobID       string          `json:"job_id"`
	Filename    string          `json:"filename"`
	Fields      CandidateFields `json:"fields"`
	ExtractedAt time.Time       `json:"extracted_at,omitempty"`
}
