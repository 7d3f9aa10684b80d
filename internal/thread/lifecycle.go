package thread

// Block implements thread_block (§4.4): the current thread goes
// BLOCKED without being inserted anywhere, then yields the CPU. Woken
// only by an explicit Unblock from some other thread; Wait-expiry in
// the tick handler applies only to threads that called Wait.
func (s *Scheduler) Block() {
	s.mu.Lock()
	prevLevel := s.intr.Disable()
	cur := s.current
	checkMagic(cur)
	cur.status = StatusBlocked
	s.schedule()
	s.intr.SetLevel(prevLevel)
	s.mu.Unlock()
}

// Unblock implements thread_unblock (§4.4): t becomes READY; if t now
// strictly outranks the running thread and we're not servicing the
// timer IRQ, the running thread yields immediately (supersession).
func (s *Scheduler) Unblock(t *TCB) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unblockLocked(t)
}

func (s *Scheduler) unblockLocked(t *TCB) {
	checkMagic(t)
	prevLevel := s.intr.Disable()
	kassert(t.status == StatusBlocked || t.status == StatusNascent,
		"thread_unblock: bad status %v for %q", t.status, t.name)
	s.ready.insert(t)
	t.status = StatusReady

	cur := s.current
	if cur != nil && t.priority > cur.priority && !s.intr.InIRQ() {
		if cur != s.idle {
			s.ready.insert(cur)
		}
		cur.status = StatusReady
		s.schedule()
	}
	s.intr.SetLevel(prevLevel)
}

// Yield implements thread_yield (§4.4): the current thread gives up the
// CPU voluntarily, returning to the ready set unless it's the idle
// thread (idle is never re-enrolled in any list).
func (s *Scheduler) Yield() {
	s.mu.Lock()
	prevLevel := s.intr.Disable()
	s.yieldLocked()
	s.intr.SetLevel(prevLevel)
	s.mu.Unlock()
}

// yieldLocked is Yield's body, factored out so priority assignment's
// supersession check can trigger the same voluntary yield without
// re-entering the mutex. Must be called with s.mu held.
func (s *Scheduler) yieldLocked() {
	cur := s.current
	checkMagic(cur)
	if cur != s.idle {
		s.ready.insert(cur)
	}
	cur.status = StatusReady
	s.schedule()
}

// Wait implements thread_wait (§4.4): sleep the current thread for
// ticks future timer ticks. A non-positive duration is treated as
// already expired and returns without blocking (§7: "a zero ticks wait
// may immediately be observed as expired").
func (s *Scheduler) Wait(ticks int) {
	if ticks <= 0 {
		return
	}
	s.mu.Lock()
	prevLevel := s.intr.Disable()
	cur := s.current
	checkMagic(cur)
	cur.ticksWait = ticks
	cur.status = StatusBlocked
	s.wait.pushBack(cur)
	s.schedule()
	s.intr.SetLevel(prevLevel)
	s.mu.Unlock()
}

// Checkpoint gives the calling thread a chance to honor a pending
// yield-on-return request left behind by thread_tick. Real hardware
// forces this the instant an interrupt handler returns; a goroutine
// running uninterrupted Go code cannot be stopped at an arbitrary
// point the way a real thread can, so a long-running thread body calls
// Checkpoint periodically to stay preemptible in practice. Block, Wait,
// and Yield all end in a fresh dispatch already, so they don't need to
// call this themselves.
func (s *Scheduler) Checkpoint() {
	s.mu.Lock()
	if !s.intr.ConsumeYieldOnReturn() {
		s.mu.Unlock()
		return
	}
	s.yieldLocked()
	s.mu.Unlock()
}

// Exit implements thread_exit (§4.4): detach from the roster, mark
// DYING, and hand off the CPU. The exiting thread's own goroutine never
// runs again past schedule() — its page is freed by the successor in
// scheduleTail — so this call never returns.
func (s *Scheduler) Exit() {
	s.mu.Lock()
	kassert(!s.intr.InIRQ(), "thread_exit: forbidden in IRQ context")
	s.intr.Disable()
	cur := s.current
	checkMagic(cur)
	cur.log.Debug("thread exiting", "tid", cur.tid, "name", cur.name)
	s.all.remove(cur)
	cur.status = StatusDying
	s.schedule()
	panic("thread_exit: unreachable, schedule() never returns to a DYING thread")
}
