package pipeline

import (
	"fmt"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/entity"
)

// StageError records where an invocation failed. It is carried in the returned
// state instead of escaping as an error so one job's failure cannot break a
// caller iterating many jobs.
type StageError struct {
	JobID string          `json:"job_id"`
	Stage constants.Stage `json:"stage"`
	// Message mirrors Err for marshaling; error values do not survive JSON.
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *StageError) Error() string {
	return fmt.Sprintf("job %s: stage %s: %v", e.JobID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// State is the per-invocation snapshot threaded through the engine. Stages
// receive it by value and return a new value; nothing here outlives the
// invocation. The artifact store is the durable truth.
type State struct {
	JobID      string                   `json:"job_id"`
	Job        *entity.Job              `json:"job,omitempty"`
	Candidates []entity.CandidateRecord `json:"candidates,omitempty"`
	Shortlist  []entity.ShortlistEntry  `json:"shortlist,omitempty"`
	Screening  []entity.ScreeningSet    `json:"screening,omitempty"`
	Calls      []entity.CallRecord      `json:"calls,omitempty"`
	FinalPicks []entity.FinalPick       `json:"final_picks,omitempty"`

	Status constants.StageStatus `json:"status"`
	// LastStatus keeps the last-completed status when Status is waiting, so
	// callers can tell how far the job got before it halted for input.
	LastStatus constants.StageStatus `json:"last_status,omitempty"`
	Err        *StageError           `json:"error,omitempty"`
}

// NewState returns the entry state for one invocation.
func NewState(jobID string) State {
	return State{JobID: jobID, Status: constants.StatusPending}
}

// withError marks the state failed at the given stage.
func (s State) withError(stage constants.Stage, err error) State {
	s.Status = constants.StatusError
	s.Err = &StageError{JobID: s.JobID, Stage: stage, Message: err.Error(), Err: err}
	return s
}

// Failed reports whether the invocation ended in error.
func (s State) Failed() bool { return s.Err != nil }

// ErrorMessage returns the surfaced failure, empty when none.
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}
