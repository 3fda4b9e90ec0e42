package constants

// Stage identifies one phase of the recruitment pipeline.
type Stage string

// Stable values (store these exact strings in DB).
const (
	StageExtraction Stage = "extraction"
	StageShortlist  Stage = "shortlist"
	StageScreening  Stage = "screening"
	StageCalls      Stage = "calls"
	StageFinalPicks Stage = "final_picks"
)

// StageStatus is the canonical status carried in pipeline state.
type StageStatus string

const (
	StatusPending       StageStatus = "pending"
	StatusJobLoaded     StageStatus = "job_loaded"
	StatusPoolLoaded    StageStatus = "pool_loaded"
	StatusShortlisted   StageStatus = "shortlisted"
	StatusScreeningDone StageStatus = "screening_done"
	StatusCallsLoaded   StageStatus = "calls_loaded"
	StatusFinalDone     StageStatus = "final_picks_done"
	StatusWaiting       StageStatus = "waiting"
	StatusError         StageStatus = "error"
)

// CallStatus tracks the lifecycle of a screening call for one candidate.
type CallStatus string

const (
	CallNotDone CallStatus = "not_done"
	CallDone    CallStatus = "done"
)
