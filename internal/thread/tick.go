package thread

import "github.com/pintosgo/kernel/internal/fixedpoint"

// Tick implements thread_tick (§4.6), invoked only from the simulated
// timer IRQ with interrupts logically disabled. It runs in bounded
// time: no allocation beyond what's already on the TCB, no blocking —
// it never calls schedule() directly, only requests a yield on IRQ
// return, which the interrupted thread's own next checkpoint honors.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intr.EnterIRQ()
	defer s.intr.LeaveIRQ()

	s.ticks++
	cur := s.current
	checkMagic(cur)

	// 1. Statistics.
	switch {
	case cur == s.idle:
		s.idleTicks++
	case cur.addrSpace != nil:
		s.userTicks++
	default:
		s.kernelTicks++
	}

	preempt := false

	// 2. MLFQ accounting.
	if s.mode == ModeMLFQ {
		s.mlfqAccounting(cur, &preempt)
	}

	// 3. Aging (round-robin only).
	if s.mode == ModeRoundRobin {
		s.ageReadyThreads()
	}

	// 4. Wake sleepers: at most one per tick (§9, preserved as specified).
	s.wakeOneSleeper(cur, &preempt)

	// 5. Preemption.
	s.threadTicks++
	if s.threadTicks >= TimeSlice || preempt {
		s.intr.RequestYieldOnReturn()
	}
}

func (s *Scheduler) mlfqAccounting(cur *TCB, preempt *bool) {
	if cur != s.idle {
		cur.recentCPU = cur.recentCPU.AddInt(1)
	}
	if s.ticks%4 != 0 {
		return
	}

	onSecondBoundary := s.ticks%uint64(s.timer.Freq()) == 0
	if onSecondBoundary {
		r := s.countReadyAndRunning()
		fiftyNine := fixedpoint.FromInt(59).Div(fixedpoint.FromInt(60))
		oneSixtieth := fixedpoint.FromInt(1).Div(fixedpoint.FromInt(60))
		s.loadAvg = fiftyNine.Mul(s.loadAvg).Add(oneSixtieth.Mul(fixedpoint.FromInt(r)))
	}

	s.all.forEach(func(t *TCB) {
		if t.status == StatusNascent {
			return
		}
		checkMagic(t)
		if onSecondBoundary {
			twoLA := s.loadAvg.MulInt(2)
			coeff := twoLA.Div(twoLA.AddInt(1))
			t.recentCPU = coeff.Mul(t.recentCPU).AddInt(t.nice)
		}
		old := t.priority
		t.priority = s.recomputePriority(t.recentCPU, t.nice)
		if t.status == StatusReady && t.priority != old {
			s.ready.relocate(t, old)
		}
		if t.priority > cur.priority {
			*preempt = true
		}
	})
}

func (s *Scheduler) countReadyAndRunning() int {
	r := 0
	s.all.forEach(func(t *TCB) {
		if t.status == StatusReady || t.status == StatusRunning {
			r++
		}
	})
	return r
}

func (s *Scheduler) ageReadyThreads() {
	s.totalTicks++
	if s.totalTicks%(TimeSlice*4) != 0 {
		return
	}
	s.ready.forEachReady(func(t *TCB) {
		if t.priority < PriMax {
			t.priority++
		}
	})
}

func (s *Scheduler) wakeOneSleeper(cur *TCB, preempt *bool) {
	for t := s.wait.head; t != nil; t = t.rsNext {
		t.ticksWait--
		if t.ticksWait > 0 {
			continue
		}
		s.wait.remove(t)
		s.ready.insert(t)
		t.status = StatusReady
		if t.priority > cur.priority {
			*preempt = true
		}
		return
	}
}
