package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantumtech/hiredroid/internal/entity"
)

func TestFormatHREmail(t *testing.T) {
	job := &entity.Job{ID: "job-1", Title: "Backend Engineer"}
	sets := []entity.ScreeningSet{
		{
			Filename: "ada.pdf",
			Questions: []entity.ScreeningQuestion{
				{Question: "Why Go?", ExpectedAnswer: "Concurrency story"},
				{Question: "Biggest outage you handled?"},
			},
		},
	}

	body := FormatHREmail(job, sets, "http://localhost:8080/cvs/")

	assert.Contains(t, body, "Position: Backend Engineer")
	assert.Contains(t, body, "Candidate: ada.pdf")
	assert.Contains(t, body, "CV: http://localhost:8080/cvs/job-1_ada.pdf")
	assert.Contains(t, body, "1. Why Go?")
	assert.Contains(t, body, "Expected Response: Concurrency story")
	assert.Contains(t, body, "2. Biggest outage you handled?")
	assert.NotContains(t, body, "Expected Response: \n", "empty expected answers are omitted")
}

func TestFormatHREmailFallsBackToJobID(t *testing.T) {
	body := FormatHREmail(&entity.Job{ID: "job-9"}, nil, "http://x")
	assert.Contains(t, body, "Position: Job ID job-9")
}

func TestFormatInterviewInvite(t *testing.T) {
	job := &entity.Job{ID: "job-1", Title: "Backend Engineer"}
	at := time.Date(2026, 9, 7, 13, 0, 0, 0, time.UTC)

	subject, body := FormatInterviewInvite(job, "Ada", "ada", at, "http://localhost:8080/cvs")

	assert.Equal(t, "Interview Scheduled: Ada for Backend Engineer", subject)
	assert.Contains(t, body, "Candidate: Ada")
	assert.Contains(t, body, "Interview Time: Monday, September 7, 2026, 1:00 PM UTC")
	assert.Contains(t, body, "CV: http://localhost:8080/cvs/job-1_ada.pdf")
}
