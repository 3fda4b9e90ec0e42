package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/entity"
	"github.com/quantumtech/hiredroid/internal/repository"
)

// node identifies one vertex of the fixed transition graph.
type node int

const (
	nodeLoadJob node = iota
	nodeExtract
	nodeShortlist
	nodeLoadShortlist
	nodeScreening
	nodeLoadScreening
	nodeCalls
	nodeFinalPicks
	nodeLoadFinalPicks
	nodeDone
	nodeWaiting
	nodeFailed
)

var nodeNames = map[node]string{
	nodeLoadJob:        "load_job",
	nodeExtract:        "extract",
	nodeShortlist:      "shortlist",
	nodeLoadShortlist:  "load_shortlist",
	nodeScreening:      "screening",
	nodeLoadScreening:  "load_screening",
	nodeCalls:          "calls",
	nodeFinalPicks:     "final_picks",
	nodeLoadFinalPicks: "load_final_picks",
	nodeDone:           "done",
	nodeWaiting:        "waiting",
	nodeFailed:         "failed",
}

func (n node) String() string { return nodeNames[n] }

// stageOf maps a node to the stage name surfaced in errors and logs.
func stageOf(n node) constants.Stage {
	switch n {
	case nodeLoadJob, nodeExtract:
		return constants.StageExtraction
	case nodeShortlist, nodeLoadShortlist:
		return constants.StageShortlist
	case nodeScreening, nodeLoadScreening:
		return constants.StageScreening
	case nodeCalls:
		return constants.StageCalls
	default:
		return constants.StageFinalPicks
	}
}

// Stage worker contracts. Workers run the externally-backed stage and persist
// its artifact; the engine merges the result into state. The engine holds the
// per-job lock for the whole invocation, so a worker's check-run-write sequence
// cannot race a concurrent trigger for the same job.
type (
	ShortlistWorker interface {
		Run(ctx context.Context, st State) ([]entity.ShortlistEntry, error)
	}
	ScreeningWorker interface {
		Run(ctx context.Context, st State) ([]entity.ScreeningSet, error)
	}
	CallsWorker interface {
		Run(ctx context.Context, st State) ([]entity.CallRecord, error)
	}
	FinalPicksWorker interface {
		Run(ctx context.Context, st State) ([]entity.FinalPick, error)
	}
)

// Workers bundles the four gated stage workers.
type Workers struct {
	Shortlist  ShortlistWorker
	Screening  ScreeningWorker
	Calls      CallsWorker
	FinalPicks FinalPicksWorker
}

// Policy carries the thresholds the engine itself needs.
type Policy struct {
	MinPoolSize int
}

// Engine drives one job through the fixed acyclic stage graph. Run is
// re-entrant: given identical store contents it reaches the same terminal
// without re-invoking completed workers, because every branch consults the
// durable store, not in-memory history.
type Engine struct {
	log        *slog.Logger
	jobs       repository.JobRepository
	candidates repository.CandidateRepository
	store      repository.ArtifactStore
	workers    Workers
	policy     Policy
	locks      *jobLocks
}

func NewEngine(
	logger *slog.Logger,
	jobs repository.JobRepository,
	candidates repository.CandidateRepository,
	store repository.ArtifactStore,
	workers Workers,
	policy Policy,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MinPoolSize <= 0 {
		policy.MinPoolSize = 10
	}
	return &Engine{
		log:        logger,
		jobs:       jobs,
		candidates: candidates,
		store:      store,
		workers:    workers,
		policy:     policy,
		locks:      newJobLocks(),
	}
}

// Run executes one invocation for jobID and always returns a terminal state;
// failures are carried in the state, never raised to the caller.
func (e *Engine) Run(ctx context.Context, jobID string) State {
	release := e.locks.acquire(jobID)
	defer release()

	start := time.Now()
	st := NewState(jobID)
	cur := nodeLoadJob
	visited := make(map[node]bool)

	for cur != nodeDone && cur != nodeWaiting && cur != nodeFailed {
		if visited[cur] {
			st = st.withError(stageOf(cur), fmt.Errorf("node %s revisited within one invocation", cur))
			cur = nodeFailed
			break
		}
		visited[cur] = true

		e.log.Debug("engine.node.enter", "job_id", jobID, "node", cur.String())
		var next node
		st, next = e.step(ctx, st, cur)
		if st.Failed() {
			e.log.Error("engine.node.failed", "job_id", jobID, "node", cur.String(), "error", st.Err.Err)
			cur = nodeFailed
			break
		}
		cur = next
	}

	switch cur {
	case nodeWaiting:
		st.LastStatus = st.Status
		st.Status = constants.StatusWaiting
	case nodeFailed:
		st.Status = constants.StatusError
	}
	e.log.Info("engine.run.done",
		"job_id", jobID,
		"terminal", cur.String(),
		"status", string(st.Status),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return st
}

// step executes one node and routes to the next. Unconditional edges are
// inline; gated edges defer to the precondition gates.
func (e *Engine) step(ctx context.Context, st State, cur node) (State, node) {
	switch cur {
	case nodeLoadJob:
		job, err := e.jobs.Get(ctx, st.JobID)
		if err != nil {
			return st.withError(stageOf(cur), err), nodeFailed
		}
		st.Job = job
		st.Status = constants.StatusJobLoaded
		e.log.Info("engine.job.loaded", "job_id", st.JobID, "title", job.Title)
		return st, nodeExtract

	case nodeExtract:
		pool, err := e.candidates.ListForJob(ctx, st.JobID)
		if err != nil {
			return st.withError(stageOf(cur), err), nodeFailed
		}
		st.Candidates = pool
		st.Status = constants.StatusPoolLoaded
		e.log.Info("engine.pool.loaded", "job_id", st.JobID, "candidates", len(pool))
		return e.route(ctx, st, cur)

	case nodeShortlist:
		entries, err := e.workers.Shortlist.Run(ctx, st)
		if err != nil {
			return st.withError(stageOf(cur), err), nodeFailed
		}
		st.Shortlist = entries
		st.Status = constants.StatusShortlisted
		return e.route(ctx, st, cur)

	case nodeLoadShortlist:
		entries, found, err := e.store.Shortlist(ctx, st.JobID)
		if err != nil {
			return st.withError(stageOf(cur), err), nodeFailed
		}
		if !found {
			return st.withError(stageOf(cur), fmt.Errorf("%w: shortlist checkpoint vanished", common.ErrMissingUpstreamArtifact)), nodeFailed
		}
		st.Shortlist = entries
		st.Status = constants.StatusShortlisted
		e.log.Info("engine.shortlist.loaded", "job_id", st.JobID, "entries", len(entries))
		return e.route(ctx, st, cur)

	case nodeScreening:
		sets, err := e.workers.Screening.Run(ctx, st)
		if err != nil {
			return st.withError(stageOf(cur), err), nodeFailed
		}
		st.Screening = sets
		st.Status = constants.StatusScreeningDone
		return st, nodeCalls

	case nodeLoadScreening:
		sets, found, err := e.store.Screening(ctx, st.JobID)
		if err != nil {
			return st.withError(stageOf(cur), err), nodeFailed
		}
		if !found {
			return st.withError(stageOf(cur), fmt.Errorf("%w: screening checkpoint vanished", common.ErrMissingUpstreamArtifact)), nodeFailed
		}
		st.Screening = sets
		st.Status = constants.StatusScreeningDone
		e.log.Info("engine.screening.loaded", "job_id", st.JobID, "candidates", len(sets))
		return st, nodeCalls

	case nodeCalls:
		calls, err := e.workers.Calls.Run(ctx, st)
		if err != nil {
			return st.withError(stageOf(cur), err), nodeFailed
		}
		st.Calls = calls
		st.Status = constants.StatusCallsLoaded
		return e.route(ctx, st, cur)

	case nodeFinalPicks:
		picks, err := e.workers.FinalPicks.Run(ctx, st)
		if err != nil {
			return st.withError(stageOf(cur), err), nodeFailed
		}
		st.FinalPicks = picks
		st.Status = constants.StatusFinalDone
		return st, nodeDone

	case nodeLoadFinalPicks:
		picks, found, err := e.store.FinalPicks(ctx, st.JobID)
		if err != nil {
			return st.withError(stageOf(cur), err), nodeFailed
		}
		if !found {
			return st.withError(stageOf(cur), fmt.Errorf("%w: final picks checkpoint vanished", common.ErrMissingUpstreamArtifact)), nodeFailed
		}
		st.FinalPicks = picks
		st.Status = constants.StatusFinalDone
		e.log.Info("engine.final.loaded", "job_id", st.JobID, "picks", len(picks))
		return st, nodeDone

	default:
		return st.withError(stageOf(cur), fmt.Errorf("no handler for node %s", cur)), nodeFailed
	}
}

// route consults the gate that follows cur and maps its decision to a node.
func (e *Engine) route(ctx context.Context, st State, cur node) (State, node) {
	var (
		dec Decision
		err error
	)
	switch cur {
	case nodeExtract:
		dec, err = extractionGate(ctx, st, e.store, e.policy.MinPoolSize)
	case nodeShortlist, nodeLoadShortlist:
		dec, err = shortlistGate(ctx, st, e.store)
	case nodeCalls:
		dec, err = callsGate(ctx, st, e.store)
	default:
		err = fmt.Errorf("no gate after node %s", cur)
	}
	if err != nil {
		return st.withError(stageOf(cur), err), nodeFailed
	}
	if dec.Kind == DecisionWait {
		e.log.Info("engine.gate.wait", "job_id", st.JobID, "after", cur.String())
		return st, nodeWaiting
	}
	e.log.Info("engine.gate.routed",
		"job_id", st.JobID,
		"after", cur.String(),
		"next", dec.Next.String(),
		"skip", dec.Kind == DecisionSkip,
	)
	return st, dec.Next
}
