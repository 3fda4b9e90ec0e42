package entity

// ShortlistEntry references one candidate selected for screening. Filename is
// the join key back to the CandidateRecord it was selected from.
type ShortlistEntry struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Reason   string `json:"reason"`
}
