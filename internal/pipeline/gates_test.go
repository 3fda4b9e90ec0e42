package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/entity"
)

func poolOf(n int) []entity.CandidateRecord {
	out := make([]entity.CandidateRecord, n)
	for i := range out {
		out[i] = entity.CandidateRecord{JobID: "job-1", Filename: "cv.pdf"}
	}
	return out
}

func TestExtractionGate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	st := State{JobID: "job-1", Candidates: poolOf(3)}

	dec, err := extractionGate(ctx, st, store, 10)
	require.NoError(t, err)
	assert.Equal(t, DecisionWait, dec.Kind, "small pool waits")

	st.Candidates = poolOf(10)
	dec, err = extractionGate(ctx, st, store, 10)
	require.NoError(t, err)
	assert.Equal(t, DecisionAdvance, dec.Kind)
	assert.Equal(t, nodeShortlist, dec.Next)

	// Once a shortlist exists, pool size no longer matters.
	require.NoError(t, store.SaveShortlist(ctx, "job-1", []entity.ShortlistEntry{{Filename: "a.pdf"}}))
	st.Candidates = poolOf(1)
	dec, err = extractionGate(ctx, st, store, 10)
	require.NoError(t, err)
	assert.Equal(t, DecisionSkip, dec.Kind)
	assert.Equal(t, nodeLoadShortlist, dec.Next)
}

func TestExtractionGateTreatsEmptyShortlistAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	require.NoError(t, store.SaveShortlist(ctx, "job-1", []entity.ShortlistEntry{}))

	st := State{JobID: "job-1", Candidates: poolOf(10)}
	dec, err := extractionGate(ctx, st, store, 10)
	require.NoError(t, err)
	assert.Equal(t, DecisionAdvance, dec.Kind, "an empty checkpoint must allow a recompute")
	assert.Equal(t, nodeShortlist, dec.Next)

	st.Candidates = poolOf(3)
	dec, err = extractionGate(ctx, st, store, 10)
	require.NoError(t, err)
	assert.Equal(t, DecisionWait, dec.Kind)
}

func TestShortlistGate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	st := State{JobID: "job-1"}
	dec, err := shortlistGate(ctx, st, store)
	require.NoError(t, err)
	assert.Equal(t, DecisionWait, dec.Kind, "no shortlist in state yet")

	st.Shortlist = []entity.ShortlistEntry{{Filename: "a.pdf"}}
	dec, err = shortlistGate(ctx, st, store)
	require.NoError(t, err)
	assert.Equal(t, DecisionAdvance, dec.Kind)
	assert.Equal(t, nodeScreening, dec.Next)

	require.NoError(t, store.SaveScreening(ctx, "job-1", []entity.ScreeningSet{{Filename: "a.pdf"}}))
	dec, err = shortlistGate(ctx, st, store)
	require.NoError(t, err)
	assert.Equal(t, DecisionSkip, dec.Kind)
	assert.Equal(t, nodeLoadScreening, dec.Next)
}

func TestCallsGate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	shortlist := []entity.ShortlistEntry{{Filename: "a.pdf"}, {Filename: "b.pdf"}}
	st := State{JobID: "job-1", Shortlist: shortlist}

	dec, err := callsGate(ctx, st, store)
	require.NoError(t, err)
	assert.Equal(t, DecisionWait, dec.Kind, "no call records yet")

	st.Calls = []entity.CallRecord{
		{Filename: "a.pdf", CallStatus: constants.CallDone, Transcript: "t"},
		{Filename: "b.pdf", CallStatus: constants.CallNotDone},
	}
	dec, err = callsGate(ctx, st, store)
	require.NoError(t, err)
	assert.Equal(t, DecisionWait, dec.Kind, "one call still pending")

	st.Calls[1].CallStatus = constants.CallDone
	st.Calls[1].Transcript = "t"
	dec, err = callsGate(ctx, st, store)
	require.NoError(t, err)
	assert.Equal(t, DecisionAdvance, dec.Kind)
	assert.Equal(t, nodeFinalPicks, dec.Next)

	require.NoError(t, store.SaveFinalPicks(ctx, "job-1", []entity.FinalPick{{Filename: "a.pdf"}}))
	dec, err = callsGate(ctx, st, store)
	require.NoError(t, err)
	assert.Equal(t, DecisionSkip, dec.Kind)
	assert.Equal(t, nodeLoadFinalPicks, dec.Next)
}

func TestCallsGateDoneWithoutTranscript(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	st := State{
		JobID:     "job-1",
		Shortlist: []entity.ShortlistEntry{{Filename: "a.pdf"}},
		Calls:     []entity.CallRecord{{Filename: "a.pdf", CallStatus: constants.CallDone}},
	}
	dec, err := callsGate(ctx, st, store)
	require.NoError(t, err)
	assert.Equal(t, DecisionWait, dec.Kind, "done without a transcript does not count")
}
