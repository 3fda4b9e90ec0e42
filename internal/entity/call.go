package entity

import "github.com/quantumtech/hiredroid/constants"

// CallRecord tracks the screening call for one shortlisted candidate.
// Created lazily with status not_done; the status and transcript transition to
// done exactly once when a transcript arrives. This is the only artifact
// mutated in place after being written.
type CallRecord struct {
	Filename   string               `json:"filename"`
	CallStatus constants.CallStatus `json:"call_status"`
	Transcript string               `json:"transcript,omitempty"`
}

// Completed reports whether the call can feed final picks.
func (c CallRecord) Completed() bool {
	return c.CallStatus == constants.CallDone && c.Transcript != ""
}
