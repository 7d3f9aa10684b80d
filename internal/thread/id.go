package thread

import "errors"

// ErrNoPage is returned by Create when no page is available for the new
// TCB, the one resource-exhaustion failure this subsystem models (§7).
// Thread IDs themselves never exhaust: allocateTID wraps instead.
var ErrNoPage = errors.New("thread: no page available for new TCB")

// allocateTID implements allocate_tid (§4.9): a monotonically
// increasing id guarded by a dedicated mutex, wrapping from INT_MAX
// back to 2 (1 is reserved for the initial thread, 0/negative for
// TID_ERROR). Uniqueness after wraparound is not guaranteed, preserved
// as specified (§9).
//
// This is the one place the scheduler itself blocks on a lock capable
// of putting the caller to sleep on contention — Go's sync.Mutex already
// does that on its own, so no condition-variable wrapper is needed to
// preserve that property.
func (s *Scheduler) allocateTID() (int, error) {
	s.tidMu.Lock()
	defer s.tidMu.Unlock()
	tid := s.nextTID
	if s.nextTID == maxInt {
		s.nextTID = 2
	} else {
		s.nextTID++
	}
	return tid, nil
}

const maxInt = int(^uint(0) >> 1)
