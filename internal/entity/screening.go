package entity

// ScreeningQuestion is one tailored call question with the answer the
// interviewer should listen for.
type ScreeningQuestion struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
}

// ScreeningSet holds the question set for one shortlisted candidate.
// Sets exist only for shortlisted filenames.
type ScreeningSet struct {
	Filename  string              `json:"filename"`
	Questions []ScreeningQuestion `json:"questions"`
}
