// Package thread implements the kernel thread control block, the
// ready/wait sets, the scheduler core, the tick handler, and priority
// assignment — the subsystem that creates kernel threads, tracks their
// runnable/blocked/dying state, and hands the CPU between them.
package thread

import (
	"fmt"

	"github.com/pintosgo/kernel/internal/fixedpoint"
	"github.com/pintosgo/kernel/internal/hw"
	"github.com/pintosgo/kernel/internal/klog"
)

// Scheduling constants, unchanged across both modes.
const (
	PriMin     = 0
	PriDefault = 31
	PriMax     = 63
	NQ         = PriMax + 1
	TimeSlice  = 4 // ticks per quantum before a mandatory reschedule

	NiceMin     = -20
	NiceMax     = 20
	NiceDefault = 0

	threadMagic = 0xcd6abf4b

	// TIDError is the tid value no thread is ever assigned. Create
	// reports page exhaustion as a nil TCB and ErrNoPage.
	TIDError = 0
)

// Status is one stage of a TCB's lifecycle.
type Status int

const (
	StatusNascent Status = iota
	StatusReady
	StatusRunning
	StatusBlocked
	StatusDying
)

func (s Status) String() string {
	switch s {
	case StatusNascent:
		return "NASCENT"
	case StatusReady:
		return "READY"
	case StatusRunning:
		return "RUNNING"
	case StatusBlocked:
		return "BLOCKED"
	case StatusDying:
		return "DYING"
	default:
		return "UNKNOWN"
	}
}

// Mode selects which ready-set policy the scheduler runs.
type Mode int

const (
	// ModeRoundRobin is priority round-robin with aging.
	ModeRoundRobin Mode = iota
	// ModeMLFQ is the 4.4BSD multi-level feedback queue.
	ModeMLFQ
)

// TCB is the per-thread control block. It is never copied after
// creation; the scheduler always works with *TCB.
type TCB struct {
	magic uint32
	name  string
	tid   int

	status        Status
	priority      int
	priorityOrig  int
	numLockDonors int

	nice      int
	recentCPU fixedpoint.FP
	ticksWait int

	addr      uintptr // the page allocator's handle, the simulated "stack pointer"
	parent    *TCB
	addrSpace hw.AddressSpace
	log       *klog.Logger
	created   uint64

	sched *Scheduler

	// Ready-set / wait-set membership: mutually exclusive, embedded
	// intrusive links (no separate node allocation). rsQueue points
	// back at whichever list currently owns these links, or nil.
	rsPrev, rsNext *TCB
	rsQueue        *tcbList

	// Global roster membership, a separate pair of links since a
	// thread can be on the roster and on the ready/wait set at once.
	allPrev, allNext *TCB
	allQueue         *rosterList

	fn  func(aux any)
	aux any

	// runCh is the simulated saved-context handoff: a dedicated
	// goroutine for this thread parks on it between dispatches.
	runCh chan struct{}
}

// Resume implements hw.Runnable: wake this thread's goroutine.
func (t *TCB) Resume() {
	t.runCh <- struct{}{}
}

// Park implements hw.Runnable: block the calling goroutine (which must
// be this thread's own goroutine) until some later Resume, then run
// the tail-of-switch bookkeeping for itself before returning to
// whatever was suspended here (see Scheduler.afterResume).
func (t *TCB) Park() {
	<-t.runCh
	t.sched.afterResume()
}

// Tid returns the thread's id.
func (t *TCB) Tid() int { return t.tid }

// Name returns the thread's short identifier string.
func (t *TCB) Name() string { return t.name }

// Status returns the thread's current lifecycle status.
func (t *TCB) Status() Status { return t.status }

// Priority returns the thread's effective scheduling priority.
func (t *TCB) Priority() int { return t.priority }

// Nice returns the thread's MLFQ niceness.
func (t *TCB) Nice() int { return t.nice }

// checkMagic panics if t's sentinel has been corrupted, the simulated
// analogue of Pintos's ASSERT(t->magic == THREAD_MAGIC) stack-overflow
// check.
func checkMagic(t *TCB) {
	if t.magic != threadMagic {
		panic(fmt.Sprintf("thread: bad magic on %q (tid %d): stack overflow?", t.name, t.tid))
	}
}

func kassert(cond bool, format string, args ...any) {
	if !cond {
		panic("thread: " + fmt.Sprintf(format, args...))
	}
}

func clampPriority(p int) int {
	if p < PriMin {
		return PriMin
	}
	if p > PriMax {
		return PriMax
	}
	return p
}

func clampNice(n int) int {
	if n < NiceMin {
		return NiceMin
	}
	if n > NiceMax {
		return NiceMax
	}
	return n
}

// tcbList is a hand-rolled intrusive doubly linked list over TCB.rsPrev/
// rsNext — used for the round-robin ready list, each MLFQ priority FIFO,
// and the wait set. No container/list is used: that package allocates a
// wrapper node per insertion, which the membership-token design this
// spec calls for avoids entirely.
type tcbList struct {
	head, tail *TCB
	len        int
}

func (l *tcbList) empty() bool { return l.head == nil }

func (l *tcbList) pushBack(t *TCB) {
	t.rsPrev = l.tail
	t.rsNext = nil
	if l.tail != nil {
		l.tail.rsNext = t
	} else {
		l.head = t
	}
	l.tail = t
	l.len++
	t.rsQueue = l
}

func (l *tcbList) remove(t *TCB) {
	if t.rsQueue != l {
		return
	}
	if t.rsPrev != nil {
		t.rsPrev.rsNext = t.rsNext
	} else {
		l.head = t.rsNext
	}
	if t.rsNext != nil {
		t.rsNext.rsPrev = t.rsPrev
	} else {
		l.tail = t.rsPrev
	}
	t.rsPrev, t.rsNext, t.rsQueue = nil, nil, nil
	l.len--
}

func (l *tcbList) popFront() *TCB {
	t := l.head
	if t != nil {
		l.remove(t)
	}
	return t
}

func (l *tcbList) forEach(visit func(*TCB)) {
	for t := l.head; t != nil; {
		next := t.rsNext
		visit(t)
		t = next
	}
}

// rosterList is the same shape as tcbList but threaded through
// TCB.allPrev/allNext, since a thread's roster membership is
// independent of its ready/wait-set membership.
type rosterList struct {
	head, tail *TCB
	len        int
}

func (l *rosterList) pushBack(t *TCB) {
	t.allPrev = l.tail
	t.allNext = nil
	if l.tail != nil {
		l.tail.allNext = t
	} else {
		l.head = t
	}
	l.tail = t
	l.len++
	t.allQueue = l
}

func (l *rosterList) remove(t *TCB) {
	if t.allQueue != l {
		return
	}
	if t.allPrev != nil {
		t.allPrev.allNext = t.allNext
	} else {
		l.head = t.allNext
	}
	if t.allNext != nil {
		t.allNext.allPrev = t.allPrev
	} else {
		l.tail = t.allPrev
	}
	t.allPrev, t.allNext, t.allQueue = nil, nil, nil
	l.len--
}

func (l *rosterList) forEach(visit func(*TCB)) {
	for t := l.head; t != nil; {
		next := t.allNext
		visit(t)
		t = next
	}
}
