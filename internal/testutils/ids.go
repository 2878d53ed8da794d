package testutils

import (
	"fmt"
	"sync"
	"time"
)

// SequenceIDs is a deterministic domain.IDGenerator: "id-1", "id-2", ... and
// "IFID-1", "IFID-2", ...
type SequenceIDs struct {
	mu   sync.Mutex
	n    int
	ifid int
}

func (s *SequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func (s *SequenceIDs) NewIFID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ifid++
	return fmt.Sprintf("IFID-%d", s.ifid)
}

// FixedTime is the instant returned by FixedClock.
var FixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// FixedClock always returns FixedTime.
func FixedClock() time.Time {
	return FixedTime
}
