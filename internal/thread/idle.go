package thread

// idleThreadBody implements idle_thread (§4.8): on the first run, hand
// the CPU straight back to the thread that called Start by unblocking
// it — since that thread outranks idle, supersession dispatches it
// immediately, so this only gets back to the loop below once nothing
// else needs the CPU. The loop itself blocks immediately, re-enabling
// interrupts only for the instant between waking and re-blocking. A
// real CPU would execute HLT here to stop burning cycles between
// interrupts; this simulation has no instruction to halt on, so the
// block itself is what stands in for idling — the goroutine parks on
// its own runCh exactly as any other blocked thread would. aux is
// unused; the scheduler is bound at Start via closure.
func (s *Scheduler) idleThreadBody(aux any) {
	s.idleReadyOnce.Do(func() { s.Unblock(s.initial) })
	for {
		s.intr.Disable()
		s.Block()
		s.intr.SetLevel(true)
	}
}
