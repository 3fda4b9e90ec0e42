package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/entity"
	"github.com/quantumtech/hiredroid/internal/llm"
	"github.com/quantumtech/hiredroid/internal/notify"
	"github.com/quantumtech/hiredroid/internal/pipeline"
	"github.com/quantumtech/hiredroid/internal/repository"
	"github.com/quantumtech/hiredroid/internal/schedule"
)

// Booker places one interview on the calendar. *schedule.Scheduler satisfies
// it; nil disables booking entirely.
type Booker interface {
	Book(ctx context.Context, req schedule.BookingRequest) (time.Time, error)
}

// Picker scores every completed call, keeps the top Cap candidates, assigns
// provisional interview times, and books them on the calendar. Scoring and
// booking failures degrade per candidate; only persistence failures abort.
type Picker struct {
	scorer     llm.CandidateScorer
	candidates repository.CandidateRepository
	store      repository.ArtifactStore
	booker     Booker
	mailer     notify.Mailer

	cap       int
	hrEmail   string
	cvBaseURL string
	loc       *time.Location
	now       func() time.Time

	log *slog.Logger
}

type PickerConfig struct {
	Cap       int
	HREmail   string
	CVBaseURL string
	Location  *time.Location
	Now       func() time.Time // test hook
}

func NewPicker(
	scorer llm.CandidateScorer,
	candidates repository.CandidateRepository,
	store repository.ArtifactStore,
	booker Booker,
	mailer notify.Mailer,
	cfg PickerConfig,
	logger *slog.Logger,
) *Picker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Cap <= 0 {
		cfg.Cap = 3
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.CVBaseURL == "" {
		cfg.CVBaseURL = "http://localhost:8080/cvs"
	}
	return &Picker{
		scorer:     scorer,
		candidates: candidates,
		store:      store,
		booker:     booker,
		mailer:     mailer,
		cap:        cfg.Cap,
		hrEmail:    cfg.HREmail,
		cvBaseURL:  cfg.CVBaseURL,
		loc:        cfg.Location,
		now:        cfg.Now,
		log:        logger,
	}
}

func (w *Picker) Run(ctx context.Context, st pipeline.State) ([]entity.FinalPick, error) {
	scored := w.scoreCompleted(ctx, st)
	if len(scored) == 0 {
		return nil, fmt.Errorf("no completed calls to evaluate for job %s", st.JobID)
	}

	// Highest score first; equal scores keep their original call order.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > w.cap {
		scored = scored[:w.cap]
	}

	w.scheduleInterviews(ctx, st, scored)

	if err := w.store.SaveFinalPicks(ctx, st.JobID, scored); err != nil {
		return nil, fmt.Errorf("persist final picks: %w", err)
	}
	w.log.Info("final_picks.done", "job_id", st.JobID, "picks", len(scored))
	return scored, nil
}

// scoreCompleted evaluates every call that has a transcript. A scoring failure
// becomes score 0 with a diagnostic reason; the candidate stays in the ranking.
func (w *Picker) scoreCompleted(ctx context.Context, st pipeline.State) []entity.FinalPick {
	var out []entity.FinalPick
	for _, call := range st.Calls {
		if !call.Completed() {
			w.log.Debug("final_picks.call_skipped", "job_id", st.JobID, "filename", call.Filename)
			continue
		}

		rec, name := w.lookupCandidate(ctx, st.JobID, call.Filename)

		result, _, err := w.scorer.ScoreCandidate(ctx, llm.ScoreRequest{
			JobDescription: st.Job.Description,
			CVData:         fieldsJSON(rec),
			Transcript:     call.Transcript,
			Filename:       call.Filename,
		})
		if err != nil {
			w.log.Error("final_picks.score_failed", "job_id", st.JobID, "filename", call.Filename, "error", err)
			out = append(out, entity.FinalPick{
				Filename: call.Filename,
				Name:     name,
				Score:    0,
				Reason:   fmt.Sprintf("Error: scoring failed - %v", err),
			})
			continue
		}
		out = append(out, entity.FinalPick{
			Filename: call.Filename,
			Name:     name,
			Score:    clampScore(result.Score),
			Reason:   result.Reason,
		})
	}
	return out
}

// scheduleInterviews assigns provisional times 45 minutes apart from the next
// full hour, then tries to book each one. A booking failure keeps the
// provisional time and flags the pick.
func (w *Picker) scheduleInterviews(ctx context.Context, st pipeline.State, picks []entity.FinalPick) {
	base := w.now().In(w.loc).Truncate(time.Hour).Add(time.Hour)

	for i := range picks {
		provisional := base.Add(time.Duration(i) * 45 * time.Minute)
		picks[i].InterviewTime = provisional

		if w.booker == nil {
			continue
		}

		rec, _ := w.lookupCandidate(ctx, st.JobID, picks[i].Filename)
		email := ""
		if rec != nil {
			email = rec.Fields.Email
		}
		cvLink := fmt.Sprintf("%s/%s_%s",
			strings.TrimRight(w.cvBaseURL, "/"), st.JobID, constants.NormalizeCVFilename(picks[i].Filename))

		booked, err := w.booker.Book(ctx, schedule.BookingRequest{
			JobID:          st.JobID,
			JobTitle:       st.Job.Title,
			CandidateName:  picks[i].Name,
			CandidateEmail: email,
			CVFilename:     picks[i].Filename,
			CVLink:         cvLink,
			HREmail:        w.hrEmail,
			Start:          provisional,
		})
		if err != nil {
			w.log.Warn("final_picks.booking_failed",
				"job_id", st.JobID, "filename", picks[i].Filename, "error", err)
			picks[i].BookingFailed = true
			continue
		}
		picks[i].InterviewTime = booked
		w.sendInvite(ctx, st, picks[i], email)
	}
}

func (w *Picker) sendInvite(ctx context.Context, st pipeline.State, pick entity.FinalPick, candidateEmail string) {
	if w.mailer == nil || w.hrEmail == "" {
		return
	}
	subject, body := notify.FormatInterviewInvite(st.Job, pick.Name, pick.Filename, pick.InterviewTime, w.cvBaseURL)
	if err := w.mailer.Send(ctx, w.hrEmail, candidateEmail, subject, body); err != nil {
		w.log.Warn("final_picks.invite_failed", "job_id", st.JobID, "filename", pick.Filename, "error", err)
	}
}

func (w *Picker) lookupCandidate(ctx context.Context, jobID, filename string) (*entity.CandidateRecord, string) {
	rec, err := w.candidates.Get(ctx, jobID, filename)
	if err != nil {
		w.log.Warn("final_picks.cv_data_missing", "job_id", jobID, "filename", filename, "error", err)
		return nil, "Unknown Candidate"
	}
	name := rec.Fields.Name
	if name == "" {
		name = "Unknown Candidate"
	}
	return rec, name
}

func fieldsJSON(rec *entity.CandidateRecord) string {
	if rec == nil {
		return "{}"
	}
	b, err := json.MarshalIndent(rec.Fields, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
