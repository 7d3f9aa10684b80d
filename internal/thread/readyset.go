package thread

// readySet is the dual-mode ready-queue capability: insert, pop the
// highest-priority runnable thread, relocate a READY thread whose
// priority changed, and report the current maximum priority present
// (used by the supersession check). Round-robin and MLFQ each satisfy
// this with a different backing structure, selected once at boot,
// rather than branching on mode at every call site.
type readySet interface {
	insert(t *TCB)
	popHighest() *TCB
	maxPriority() (int, bool)
	maxPriorityAbove(lo int) (int, bool)
	relocate(t *TCB, oldPriority int)
	forEachReady(visit func(*TCB))
}

// rrReadySet is a single unordered list, scanned for the maximum
// priority on pop, with FIFO tiebreak among equal priorities.
type rrReadySet struct {
	list tcbList
}

func newRRReadySet() *rrReadySet {
	return &rrReadySet{}
}

func (r *rrReadySet) insert(t *TCB) {
	r.list.pushBack(t)
}

func (r *rrReadySet) popHighest() *TCB {
	best := r.findMax()
	if best != nil {
		r.list.remove(best)
	}
	return best
}

func (r *rrReadySet) findMax() *TCB {
	var best *TCB
	for t := r.list.head; t != nil; t = t.rsNext {
		if best == nil || t.priority > best.priority {
			best = t
		}
	}
	return best
}

func (r *rrReadySet) maxPriority() (int, bool) {
	best := r.findMax()
	if best == nil {
		return 0, false
	}
	return best.priority, true
}

func (r *rrReadySet) maxPriorityAbove(lo int) (int, bool) {
	var best *TCB
	for t := r.list.head; t != nil; t = t.rsNext {
		if t.priority <= lo {
			continue
		}
		if best == nil || t.priority > best.priority {
			best = t
		}
	}
	if best == nil {
		return 0, false
	}
	return best.priority, true
}

// relocate is a no-op for round robin: position in the list never
// encodes priority, so a priority change needs no FIFO move.
func (r *rrReadySet) relocate(t *TCB, oldPriority int) {}

func (r *rrReadySet) forEachReady(visit func(*TCB)) {
	r.list.forEach(visit)
}

// mlfqReadySet is an array of NQ FIFOs indexed by priority.
type mlfqReadySet struct {
	queues [NQ]tcbList
}

func newMLFQReadySet() *mlfqReadySet {
	return &mlfqReadySet{}
}

func (m *mlfqReadySet) insert(t *TCB) {
	m.queues[t.priority].pushBack(t)
}

func (m *mlfqReadySet) popHighest() *TCB {
	for p := PriMax; p >= PriMin; p-- {
		if !m.queues[p].empty() {
			return m.queues[p].popFront()
		}
	}
	return nil
}

func (m *mlfqReadySet) maxPriority() (int, bool) {
	for p := PriMax; p >= PriMin; p-- {
		if !m.queues[p].empty() {
			return p, true
		}
	}
	return 0, false
}

// maxPriorityAbove reports the highest priority strictly above lo among
// ready threads, scanning only queues (lo, PriMax] rather than the full
// PriMin..PriMax range — the narrower band thread_set_nice's
// supersession check wants (§4.7) for the case where a thread's
// priority just rose: nothing at or below its old priority could
// newly outrank it, so there's no need to look there.
func (m *mlfqReadySet) maxPriorityAbove(lo int) (int, bool) {
	for p := PriMax; p > lo; p-- {
		if !m.queues[p].empty() {
			return p, true
		}
	}
	return 0, false
}

func (m *mlfqReadySet) relocate(t *TCB, oldPriority int) {
	if oldPriority == t.priority {
		return
	}
	m.queues[oldPriority].remove(t)
	m.queues[t.priority].pushBack(t)
}

func (m *mlfqReadySet) forEachReady(visit func(*TCB)) {
	for p := PriMax; p >= PriMin; p-- {
		m.queues[p].forEach(visit)
	}
}
