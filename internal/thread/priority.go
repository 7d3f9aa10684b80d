package thread

import "github.com/pintosgo/kernel/internal/fixedpoint"

// SetPriority implements thread_set_priority (§4.7): a no-op in MLFQ
// mode. In round-robin mode, a thread currently holding donors only has
// its base priority recorded (never lowering its effective, donated
// priority); otherwise the change takes effect immediately and may
// trigger supersession.
func (s *Scheduler) SetPriority(newPriority int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeMLFQ {
		return
	}
	prevLevel := s.intr.Disable()
	defer s.intr.SetLevel(prevLevel)

	cur := s.current
	checkMagic(cur)
	newPriority = clampPriority(newPriority)

	if cur.numLockDonors > 0 && newPriority <= cur.priority {
		cur.priorityOrig = newPriority
		return
	}
	s.assignPriorityLocked(cur, newPriority)
}

// GetPriority returns the current thread's effective priority.
func (s *Scheduler) GetPriority() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.priority
}

// SetNice implements thread_set_nice (§4.7), MLFQ mode only: clamp,
// recompute priority, relocate if the thread is READY, and apply
// supersession.
func (s *Scheduler) SetNice(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeMLFQ {
		return
	}
	prevLevel := s.intr.Disable()
	defer s.intr.SetLevel(prevLevel)

	cur := s.current
	checkMagic(cur)
	cur.nice = clampNice(n)
	old := cur.priority
	cur.priority = s.recomputePriority(cur.recentCPU, cur.nice)
	if cur.status == StatusReady {
		s.ready.relocate(cur, old)
	}
	s.maybeSupersedeLocked(cur, old)
}

// GetNice returns the current thread's MLFQ niceness.
func (s *Scheduler) GetNice() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.nice
}

// GetLoadAvg returns 100x the system load average, nearest-rounded
// (§4.7), read under the scheduler's critical section.
func (s *Scheduler) GetLoadAvg() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAvg.MulInt(100).ToIntNear()
}

// GetRecentCPU returns 100x the current thread's recent_cpu estimate,
// nearest-rounded.
func (s *Scheduler) GetRecentCPU() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.recentCPU.MulInt(100).ToIntNear()
}

// assignPriorityLocked implements thread_assign_priority (§4.7): update
// priority (and priority_orig in round-robin mode), then check for
// supersession. Must be called with s.mu held.
func (s *Scheduler) assignPriorityLocked(t *TCB, newPriority int) {
	old := t.priority
	t.priority = clampPriority(newPriority)
	if s.mode == ModeRoundRobin {
		t.priorityOrig = t.priority
	}
	s.maybeSupersedeLocked(t, old)
}

// maybeSupersedeLocked yields t's hold on the CPU if some ready thread
// now strictly outranks it. t is always s.current in this module's own
// call sites, matching the single-current-thread shape of
// thread_set_priority/thread_set_nice. In MLFQ mode, when t's priority
// just rose, only the band strictly above its old priority can contain
// a thread that newly outranks it (§4.7) — anything at or below the
// old priority was already no threat before the change, so there's no
// need to rescan it. Round-robin, and the MLFQ priority-drop case
// (where anything above the new, lower priority is newly a threat,
// including threads that were already below the old one), still need
// the full scan.
func (s *Scheduler) maybeSupersedeLocked(t *TCB, oldPriority int) {
	var max int
	var ok bool
	if s.mode == ModeMLFQ && oldPriority < t.priority {
		max, ok = s.ready.maxPriorityAbove(oldPriority)
	} else {
		max, ok = s.ready.maxPriority()
	}
	if ok && max > t.priority {
		s.yieldLocked()
	}
}

// recomputePriority implements the MLFQ priority formula (§4.6/§4.7):
// clamp(PRI_MAX - recent_cpu/4 - 2*nice), evaluated in fixed-point with
// nearest-rounding on the final conversion.
func (s *Scheduler) recomputePriority(recentCPU fixedpoint.FP, nice int) int {
	p := fixedpoint.FromInt(PriMax).Sub(recentCPU.DivInt(4)).SubInt(2 * nice)
	return clampPriority(p.ToIntNear())
}
