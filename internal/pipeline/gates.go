package pipeline

import (
	"context"

	"github.com/quantumtech/hiredroid/internal/repository"
)

// DecisionKind tags a gate outcome.
type DecisionKind int

const (
	// DecisionAdvance runs the gated stage worker.
	DecisionAdvance DecisionKind = iota
	// DecisionSkip loads the already-persisted artifact instead of recomputing.
	DecisionSkip
	// DecisionWait halts the invocation; more external input is needed.
	// It is a normal terminal, not an error.
	DecisionWait
)

// Decision is the tagged outcome of a precondition gate: the node to run next,
// or a wait.
type Decision struct {
	Kind DecisionKind
	Next node
}

func advance(n node) Decision { return Decision{Kind: DecisionAdvance, Next: n} }
func skip(n node) Decision    { return Decision{Kind: DecisionSkip, Next: n} }
func wait() Decision          { return Decision{Kind: DecisionWait} }

// Gates never mutate state and perform at most one store read each, so their
// branching stays deterministic and testable in isolation.

// extractionGate decides what follows the pool read: skip to loading an
// existing shortlist, shortlist once the pool is big enough, else wait.
// An empty persisted shortlist counts as absent: a classifier run that
// selected nobody must not checkpoint the job past shortlisting, or pool
// growth could never trigger a recompute.
func extractionGate(ctx context.Context, st State, store repository.ArtifactStore, minPool int) (Decision, error) {
	entries, found, err := store.Shortlist(ctx, st.JobID)
	if err != nil {
		return Decision{}, err
	}
	if found && len(entries) > 0 {
		return skip(nodeLoadShortlist), nil
	}
	if len(st.Candidates) >= minPool {
		return advance(nodeShortlist), nil
	}
	return wait(), nil
}

// shortlistGate decides what follows the shortlist: skip to loading existing
// screening questions, generate them if a shortlist is in state, else wait.
func shortlistGate(ctx context.Context, st State, store repository.ArtifactStore) (Decision, error) {
	_, found, err := store.Screening(ctx, st.JobID)
	if err != nil {
		return Decision{}, err
	}
	if found {
		return skip(nodeLoadScreening), nil
	}
	if len(st.Shortlist) == 0 {
		return wait(), nil
	}
	return advance(nodeScreening), nil
}

// callsGate decides what follows the call load: skip to loading existing final
// picks, advance once every shortlisted candidate has a done call with a
// transcript, else wait.
func callsGate(ctx context.Context, st State, store repository.ArtifactStore) (Decision, error) {
	_, found, err := store.FinalPicks(ctx, st.JobID)
	if err != nil {
		return Decision{}, err
	}
	if found {
		return skip(nodeLoadFinalPicks), nil
	}
	if len(st.Shortlist) == 0 || len(st.Calls) == 0 {
		return wait(), nil
	}

	completed := make(map[string]struct{}, len(st.Calls))
	for _, c := range st.Calls {
		if c.Completed() {
			completed[c.Filename] = struct{}{}
		}
	}
	for _, entry := range st.Shortlist {
		if _, ok := completed[entry.Filename]; !ok {
			return wait(), nil
		}
	}
	return advance(nodeFinalPicks), nil
}
