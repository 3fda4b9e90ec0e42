package pipeline

import "sync"

// jobLocks hands out one mutex per job id. The engine holds a job's lock for
// the whole invocation, which closes the race where two near-simultaneous
// triggers both observe "no shortlist yet" and both run the shortlist worker.
// Invocations for different job ids share nothing and proceed independently.
type jobLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newJobLocks() *jobLocks {
	return &jobLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the job's lock is held and returns the release func.
func (l *jobLocks) acquire(jobID string) func() {
	l.mu.Lock()
	m, ok := l.locks[jobID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[jobID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
