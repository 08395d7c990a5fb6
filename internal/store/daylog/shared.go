package daylog

import "sync"

// Shared hands out exclusive access to one long-lived log.
//
// Every caller holds the lock for its whole read, mutate and save sequence.
// There is no read/write split and no timeout: a caller waits for the
// current holder to finish.
type Shared struct {
	mu  sync.Mutex
	log *DayLog
}

// NewShared wraps l. The caller must not use l directly afterwards.
func NewShared(l *DayLog) *Shared {
	return &Shared{log: l}
}

// Do runs fn with exclusive access to the log and returns its error.
func (s *Shared) Do(fn func(*DayLog) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.log)
}

// Reload replaces the held log with the one load returns. On error the
// current log is kept.
func (s *Shared) Reload(load func() (*DayLog, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := load()
	if err != nil {
		return err
	}
	s.log = l
	return nil
}
