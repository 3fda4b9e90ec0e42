package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quantumtech/hiredroid/internal/entity"
	"github.com/quantumtech/hiredroid/internal/llm"
	"github.com/quantumtech/hiredroid/internal/notify"
	"github.com/quantumtech/hiredroid/internal/pipeline"
	"github.com/quantumtech/hiredroid/internal/repository"
)

// Screener generates tailored call questions for every shortlisted candidate.
// A per-candidate model failure yields a sentinel question set instead of
// failing the stage, so one bad completion cannot stall the whole job.
type Screener struct {
	gen          llm.QuestionGenerator
	candidates   repository.CandidateRepository
	store        repository.ArtifactStore
	minQuestions int

	// HR notification is best-effort; nil mailer disables it.
	mailer    notify.Mailer
	hrEmail   string
	cvBaseURL string

	log *slog.Logger
}

type ScreenerConfig struct {
	MinQuestions int
	HREmail      string
	CVBaseURL    string
}

func NewScreener(
	gen llm.QuestionGenerator,
	candidates repository.CandidateRepository,
	store repository.ArtifactStore,
	mailer notify.Mailer,
	cfg ScreenerConfig,
	logger *slog.Logger,
) *Screener {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinQuestions <= 0 {
		cfg.MinQuestions = 5
	}
	if cfg.CVBaseURL == "" {
		cfg.CVBaseURL = "http://localhost:8080/cvs"
	}
	return &Screener{
		gen:          gen,
		candidates:   candidates,
		store:        store,
		minQuestions: cfg.MinQuestions,
		mailer:       mailer,
		hrEmail:      cfg.HREmail,
		cvBaseURL:    cfg.CVBaseURL,
		log:          logger,
	}
}

func (w *Screener) Run(ctx context.Context, st pipeline.State) ([]entity.ScreeningSet, error) {
	sets := make([]entity.ScreeningSet, 0, len(st.Shortlist))
	for _, entry := range st.Shortlist {
		sets = append(sets, entity.ScreeningSet{
			Filename:  entry.Filename,
			Questions: w.questionsFor(ctx, st, entry),
		})
	}

	if err := w.store.SaveScreening(ctx, st.JobID, sets); err != nil {
		return nil, fmt.Errorf("persist screening questions: %w", err)
	}
	w.log.Info("screening.done", "job_id", st.JobID, "candidates", len(sets))

	w.notifyHR(ctx, st, sets)
	return sets, nil
}

func (w *Screener) questionsFor(ctx context.Context, st pipeline.State, entry entity.ShortlistEntry) []entity.ScreeningQuestion {
	cvData := w.cvDataJSON(ctx, st.JobID, entry.Filename)

	questions, _, err := w.gen.GenerateQuestions(ctx, llm.QuestionsRequest{
		JobDescription: st.Job.Description,
		CVData:         cvData,
		Reason:         entry.Reason,
		MinQuestions:   w.minQuestions,
	})
	if err != nil {
		w.log.Error("screening.generate_failed", "job_id", st.JobID, "filename", entry.Filename, "error", err)
		return []entity.ScreeningQuestion{{
			Question:       fmt.Sprintf("Error: %v", err),
			ExpectedAnswer: "",
		}}
	}

	out := make([]entity.ScreeningQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, entity.ScreeningQuestion{Question: q.Question, ExpectedAnswer: q.ExpectedAnswer})
	}
	return out
}

// cvDataJSON fetches the candidate's extracted fields as an indented JSON blob
// for the prompt. Missing records degrade to an empty object.
func (w *Screener) cvDataJSON(ctx context.Context, jobID, filename string) string {
	rec, err := w.candidates.Get(ctx, jobID, filename)
	if err != nil {
		w.log.Warn("screening.cv_data_missing", "job_id", jobID, "filename", filename, "error", err)
		return "{}"
	}
	b, err := json.MarshalIndent(rec.Fields, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (w *Screener) notifyHR(ctx context.Context, st pipeline.State, sets []entity.ScreeningSet) {
	if w.mailer == nil || w.hrEmail == "" {
		return
	}
	body := notify.FormatHREmail(st.Job, sets, w.cvBaseURL)
	subject := fmt.Sprintf("Screening Questions and CVs for Job ID %s", st.JobID)
	if err := w.mailer.Send(ctx, w.hrEmail, "", subject, body); err != nil {
		// Notification problems never fail the stage.
		w.log.Warn("screening.hr_email_failed", "job_id", st.JobID, "error", err)
		return
	}
	w.log.Info("screening.hr_email_sent", "job_id", st.JobID, "to", w.hrEmail)
}
