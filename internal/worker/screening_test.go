package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtech/hiredroid/internal/entity"
	"github.com/quantumtech/hiredroid/internal/llm"
	"github.com/quantumtech/hiredroid/internal/pipeline"
)

type stubGenerator struct {
	questions []llm.Question
	calls     int
	err       error
}

func (s *stubGenerator) GenerateQuestions(_ context.Context, _ llm.QuestionsRequest) ([]llm.Question, []byte, error) {
	s.calls++
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.questions, nil, nil
}

type recordingMailer struct {
	sent []string // subjects
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, cc, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, subject)
	return nil
}

func screeningState(shortlisted ...string) pipeline.State {
	st := pipeline.State{
		JobID: "job-1",
		Job:   &entity.Job{ID: "job-1", Title: "Backend Engineer", Description: "Go services"},
	}
	for _, fn := range shortlisted {
		st.Shortlist = append(st.Shortlist, entity.ShortlistEntry{Filename: fn, Reason: "good fit"})
	}
	return st
}

func TestScreenerGeneratesPerCandidate(t *testing.T) {
	store := &stubStore{}
	gen := &stubGenerator{questions: []llm.Question{
		{Question: "Describe a Go service you ran in production", ExpectedAnswer: "ownership, monitoring"},
		{Question: "How do you handle partial failure?", ExpectedAnswer: "retries, idempotency"},
	}}
	cands := &stubCandidates{recs: map[string]entity.CandidateRecord{
		"ada.pdf": {JobID: "job-1", Filename: "ada.pdf", Fields: entity.CandidateFields{Name: "Ada"}},
	}}
	w := NewScreener(gen, cands, store, nil, ScreenerConfig{}, nil)

	sets, err := w.Run(context.Background(), screeningState("ada.pdf", "bob.pdf"))
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, 2, gen.calls, "one generation per shortlisted candidate")
	assert.Len(t, sets[0].Questions, 2)
	assert.Equal(t, sets, store.screening)
}

func TestScreenerSentinelOnModelFailure(t *testing.T) {
	store := &stubStore{}
	gen := &stubGenerator{err: errors.New("model timeout")}
	cands := &stubCandidates{recs: map[string]entity.CandidateRecord{}}
	w := NewScreener(gen, cands, store, nil, ScreenerConfig{}, nil)

	sets, err := w.Run(context.Background(), screeningState("ada.pdf"))
	require.NoError(t, err, "a per-candidate failure must not fail the stage")
	require.Len(t, sets, 1)
	require.Len(t, sets[0].Questions, 1)
	assert.Equal(t, "Error: model timeout", sets[0].Questions[0].Question)
	assert.Empty(t, sets[0].Questions[0].ExpectedAnswer)
}

func TestScreenerMailsHR(t *testing.T) {
	store := &stubStore{}
	gen := &stubGenerator{questions: []llm.Question{{Question: "Q"}}}
	mailer := &recordingMailer{}
	w := NewScreener(gen, &stubCandidates{}, store, mailer, ScreenerConfig{HREmail: "hr@example.com"}, nil)

	_, err := w.Run(context.Background(), screeningState("ada.pdf"))
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Screening Questions and CVs for Job ID job-1", mailer.sent[0])
}

func TestScreenerMailFailureIsNotFatal(t *testing.T) {
	store := &stubStore{}
	gen := &stubGenerator{questions: []llm.Question{{Question: "Q"}}}
	mailer := &recordingMailer{err: errors.New("smtp down")}
	w := NewScreener(gen, &stubCandidates{}, store, mailer, ScreenerConfig{HREmail: "hr@example.com"}, nil)

	sets, err := w.Run(context.Background(), screeningState("ada.pdf"))
	require.NoError(t, err)
	assert.Len(t, sets, 1)
	assert.Equal(t, sets, store.screening, "questions persisted even when mail fails")
}
