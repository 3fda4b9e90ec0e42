package pipeline

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/common"
)

func TestStageErrorSurvivesJSON(t *testing.T) {
	st := NewState("job-1").withError(constants.StageShortlist,
		fmt.Errorf("%w: model down", common.ErrWorkerUnavailable))

	b, err := json.Marshal(st)
	require.NoError(t, err)

	var decoded State
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.NotNil(t, decoded.Err)
	assert.Equal(t, constants.StageShortlist, decoded.Err.Stage)
	assert.Contains(t, decoded.Err.Message, "model down")
}

func TestWithError(t *testing.T) {
	st := NewState("job-1").withError(constants.StageCalls, fmt.Errorf("boom"))

	require.True(t, st.Failed())
	assert.Equal(t, constants.StatusError, st.Status)
	assert.Equal(t, "job-1", st.Err.JobID)
	assert.Equal(t, "boom", st.Err.Message)
	assert.Equal(t, "job job-1: stage calls: boom", st.ErrorMessage())
}
