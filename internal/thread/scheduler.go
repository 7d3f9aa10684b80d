package thread

import (
	"io"
	"sync"

	"github.com/pintosgo/kernel/internal/fixedpoint"
	"github.com/pintosgo/kernel/internal/hw"
	"github.com/pintosgo/kernel/internal/klog"
)

// Scheduler holds every piece of process-wide scheduling state: the
// ready set, the wait set, the global roster, the idle/initial/current
// pointers, the load average, and the tick counters. Real Pintos keeps
// this as package-level globals; wrapping it in a struct instead makes
// the scheduler instantiable (and therefore testable) without any
// process-wide state leaking between tests.
type Scheduler struct {
	// mu is the one piece of real mutual exclusion this simulation
	// needs: on genuine single-CPU hardware "interrupts disabled"
	// gives the kernel exclusive access for free, since nothing else
	// can run. Here the timer's tick-delivery path is a genuinely
	// independent goroutine, so mu stands in for that hardware
	// guarantee. It is held for the duration of every kernel-side
	// operation and dropped for exactly the span of a context switch
	// (see schedule), never held across an arbitrary block of
	// application code.
	mu sync.Mutex

	intr    *hw.IntrController
	timer   *hw.Timer
	pages   *hw.PageAllocator[TCB]
	console *hw.Console
	log     *klog.Logger

	mode  Mode
	ready readySet
	wait  tcbList
	all   rosterList

	current *TCB
	idle    *TCB
	initial *TCB

	// switchedFrom is the thread the current dispatch just displaced,
	// set by schedule immediately before handing off and consumed by
	// the displacing thread's own afterResume the instant it runs.
	switchedFrom *TCB

	idleReadyOnce sync.Once

	tidMu   sync.Mutex
	nextTID int

	threadTicks int
	totalTicks  uint64
	ticks       uint64

	idleTicks, kernelTicks, userTicks uint64

	loadAvg fixedpoint.FP

	createSeq uint64
}

// New constructs a Scheduler in the given mode. timerFreq is TIMER_FREQ;
// zero selects the conventional 100 Hz default. maxThreads bounds the
// number of simultaneously live TCBs (including main and idle); zero
// means unbounded. Diagnostic and boot output is written to w.
func New(mode Mode, timerFreq int, maxThreads int, w io.Writer) *Scheduler {
	if timerFreq <= 0 {
		timerFreq = 100
	}
	s := &Scheduler{
		intr:    hw.NewIntrController(),
		pages:   hw.NewPageAllocator[TCB](maxThreads),
		mode:    mode,
		nextTID: 1,
	}
	s.console = hw.NewConsole(w)
	s.log = klog.New(s.console)
	s.timer = hw.NewTimer(timerFreq)
	if mode == ModeMLFQ {
		s.ready = newMLFQReadySet()
	} else {
		s.ready = newRRReadySet()
	}
	return s
}

// Mode reports which scheduling policy this instance runs.
func (s *Scheduler) Mode() Mode { return s.mode }

// Intr exposes the interrupt controller collaborator, for callers that
// want to bracket their own critical sections. Block, Wait, Yield and
// the other lifecycle operations disable interrupts and restore the
// previous level themselves, so callers need not do it for them.
func (s *Scheduler) Intr() *hw.IntrController { return s.intr }

// TimerFreq reports TIMER_FREQ.
func (s *Scheduler) TimerFreq() int { return s.timer.Freq() }

// initThread implements init_thread (§4.2): zero the TCB, install the
// name/priority/magic, link onto the roster, and derive nice/recent_cpu
// for inherited MLFQ threads. Must be called with s.mu held.
func (s *Scheduler) initThread(t *TCB, name string, priority int) {
	*t = TCB{}
	t.sched = s
	t.magic = threadMagic
	t.name = name
	t.status = StatusNascent
	t.priority = priority
	t.priorityOrig = priority
	t.runCh = make(chan struct{}, 1)
	t.log = s.log
	t.created = s.createSeq
	s.createSeq++

	switch {
	case name == "main":
		t.parent = t
		t.nice = NiceDefault
		t.recentCPU = 0
	default:
		cur := s.current
		if cur != nil {
			t.parent = cur
		} else {
			t.parent = t
		}
		if s.mode == ModeMLFQ && name != "idle" && cur != nil {
			t.nice = cur.nice
			t.recentCPU = cur.recentCPU
			t.priority = s.recomputePriority(t.recentCPU, t.nice)
			t.priorityOrig = t.priority
		}
	}

	// The idle thread is deliberately never enrolled on the roster
	// (§3): it is returned only as next_thread_to_run's empty-ready
	// fallback, never iterated by thread_foreach or counted toward
	// load_avg.
	if name != "idle" {
		s.all.pushBack(t)
	}
}

// Init bootstraps the scheduler from the calling goroutine, which
// becomes the initial thread "main". Call with interrupts off before
// any other scheduler operation (thread_init, §6).
func (s *Scheduler) Init() *TCB {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, addr, err := s.pages.Alloc()
	if err != nil {
		panic("thread: failed to allocate page for initial thread: " + err.Error())
	}
	s.initThread(t, "main", PriDefault)
	t.addr = addr
	t.tid = 1
	s.nextTID = 2
	t.status = StatusRunning
	t.parent = t
	s.current = t
	s.initial = t
	return t
}

// Start spawns the idle thread, starts the timer IRQ, enables
// interrupts, and blocks the calling (initial) thread until idle has
// run at least once and reports ready (thread_start, §6). idle's own
// body hands the CPU straight back via Unblock the instant it's run
// once, so this returns almost immediately in practice.
func (s *Scheduler) Start() {
	s.mu.Lock()
	idle, err := s.createLocked("idle", PriMin, s.idleThreadBody, nil)
	if err == nil {
		s.idle = idle
	}
	s.mu.Unlock()
	if err != nil {
		panic("thread: failed to create idle thread: " + err.Error())
	}

	s.timer.Start(s.Tick)
	s.intr.SetLevel(true)
	// idle is the only ready thread at this point (priority PRI_MIN,
	// strictly below every other thread this repo creates), so
	// blocking here hands it the CPU; its first action is to unblock
	// us again, which supersession dispatches back immediately since
	// we outrank it.
	s.Block()
}

// StopTimer halts the simulated timer IRQ. Threads already created keep
// running; no further ticks are delivered.
func (s *Scheduler) StopTimer() {
	s.timer.Stop()
}

// Current returns the thread presently assigned the CPU.
func (s *Scheduler) Current() *TCB {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current
	checkMagic(cur)
	return cur
}

// Create implements thread_create (§4.3): allocate a page, assign a
// tid, bootstrap a dedicated goroutine standing in for the thread's
// stack, and unblock it (which also applies the supersession policy).
func (s *Scheduler) Create(name string, priority int, fn func(aux any), aux any) (*TCB, error) {
	s.mu.Lock()
	t, err := s.createLocked(name, priority, fn, aux)
	s.mu.Unlock()
	return t, err
}

func (s *Scheduler) createLocked(name string, priority int, fn func(aux any), aux any) (*TCB, error) {
	t, addr, err := s.pages.Alloc()
	if err != nil {
		return nil, ErrNoPage
	}
	tid, err := s.allocateTID()
	if err != nil {
		s.pages.Free(addr)
		return nil, err
	}
	s.initThread(t, name, priority)
	t.addr = addr
	t.tid = tid
	t.fn = fn
	t.aux = aux
	t.log.Debug("thread created", "tid", t.tid, "name", t.name, "priority", t.priority)

	go func() {
		t.Park()
		// Bootstrap: enable interrupts, run the thread body, then
		// exit unconditionally so no kernel thread escapes cleanup.
		s.intr.SetLevel(true)
		fn(aux)
		s.Exit()
	}()

	s.unblockLocked(t)
	return t, nil
}

// schedule implements schedule() (§4.5): pick next and switch to it if
// different from current. Must be called with s.mu held and
// current.status already set to something other than RUNNING; it
// returns with s.mu held again.
//
// Real switch_threads returns on the INCOMING thread's own stack, so
// thread_schedule_tail always runs on whichever thread just got the
// CPU, not on the thread giving it up. A goroutine resuming from Park
// is resuming inside some earlier, already-suspended call to schedule
// — not necessarily this one — so scheduleTail cannot be this
// function's own trailing statement; it has to run from the Park side
// itself. TCB.Park calls back into afterResume to do exactly that,
// reading switchedFrom (set here, immediately before the handoff) to
// know which thread it just displaced.
func (s *Scheduler) schedule() {
	kassert(s.current.status != StatusRunning, "schedule: current thread still RUNNING")
	next := s.nextThreadToRun()
	prev := s.current
	if next == prev {
		// Nothing else to do: the same thread keeps the CPU, just
		// with its status left as the caller set it (e.g. RUNNING
		// again for the idle thread's forever-block loop would be a
		// bug, but lifecycle callers always pick a distinct next
		// when current isn't runnable). No switch happens, so tail
		// bookkeeping runs inline rather than through afterResume.
		s.scheduleTail()
		return
	}
	s.current = next
	s.switchedFrom = prev
	s.mu.Unlock()
	hw.Switch(prev, next)
	s.mu.Lock()
}

// nextThreadToRun implements next_thread_to_run (§4.5). Must be called
// with s.mu held.
func (s *Scheduler) nextThreadToRun() *TCB {
	if t := s.ready.popHighest(); t != nil {
		checkMagic(t)
		return t
	}
	checkMagic(s.idle)
	return s.idle
}

// afterResume runs on a thread's own goroutine the instant it wakes
// from Park, whether that's its very first dispatch or its hundredth.
// It reacquires mu (dropped by schedule before the handoff) and runs
// the tail-of-switch bookkeeping for itself.
func (s *Scheduler) afterResume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleTail()
}

// scheduleTail implements thread_schedule_tail (§4.5): mark the now-
// current thread RUNNING, activate its address space, restore its
// base priority if nothing is donating to it, and free the page of
// whichever thread this one just displaced, if that thread exited.
// Must be called with s.mu held.
func (s *Scheduler) scheduleTail() {
	cur := s.current
	cur.status = StatusRunning
	s.threadTicks = 0

	if cur.addrSpace != nil {
		cur.addrSpace.Activate()
	}

	if s.mode == ModeRoundRobin && cur.numLockDonors == 0 {
		cur.priority = cur.priorityOrig
	}

	prev := s.switchedFrom
	s.switchedFrom = nil
	if prev != nil && prev.status == StatusDying && prev != s.initial {
		s.pages.Free(prev.addr)
	}
}
