package thread

import (
	"io"
	"sync"
	"testing"
)

// bootTestScheduler brings up a Scheduler exactly the way a real kernel
// boot would (Init then Start), then stops the simulated timer so tests
// control ticking by calling Tick themselves.
func bootTestScheduler(t *testing.T, mode Mode) *Scheduler {
	t.Helper()
	s := New(mode, 1000, 0, io.Discard)
	s.Init()
	s.Start()
	s.StopTimer()
	return s
}

type orderLog struct {
	mu  sync.Mutex
	log []string
}

func (o *orderLog) record(msg string) {
	o.mu.Lock()
	o.log = append(o.log, msg)
	o.mu.Unlock()
}

func (o *orderLog) snapshot() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.log...)
}

func TestExactlyOneThreadRunning(t *testing.T) {
	s := bootTestScheduler(t, ModeRoundRobin)
	running := 0
	s.all.forEach(func(tc *TCB) {
		if tc.status == StatusRunning {
			running++
		}
	})
	if s.idle.status == StatusRunning {
		running++
	}
	if running != 1 {
		t.Fatalf("expected exactly one RUNNING thread, got %d", running)
	}
}

func TestIdleNeverEnrolledOnRoster(t *testing.T) {
	s := bootTestScheduler(t, ModeRoundRobin)
	found := false
	s.all.forEach(func(tc *TCB) {
		if tc == s.idle {
			found = true
		}
	})
	if found {
		t.Fatalf("idle must never be enrolled on the roster")
	}
}

func TestCreateFailsWhenPagesExhausted(t *testing.T) {
	// capacity 2 is exactly consumed by main (Init) and idle (Start).
	s := New(ModeRoundRobin, 1000, 2, io.Discard)
	s.Init()
	s.Start()
	s.StopTimer()

	_, err := s.Create("overflow", PriDefault, func(aux any) {}, nil)
	if err != ErrNoPage {
		t.Fatalf("expected ErrNoPage once pages are exhausted, got %v", err)
	}
}

func TestTidWraparound(t *testing.T) {
	s := bootTestScheduler(t, ModeRoundRobin)
	s.nextTID = maxInt

	tid1, err := s.allocateTID()
	if err != nil || tid1 != maxInt {
		t.Fatalf("expected maxInt, got tid=%d err=%v", tid1, err)
	}
	tid2, err := s.allocateTID()
	if err != nil || tid2 != 2 {
		t.Fatalf("expected wraparound to 2 (1 is reserved for main), got tid=%d err=%v", tid2, err)
	}
}

func TestTidMonotonicUnderNormalAllocation(t *testing.T) {
	s := bootTestScheduler(t, ModeRoundRobin)
	var tids []int
	for i := 0; i < 3; i++ {
		tc, err := s.Create("w", PriDefault, func(aux any) {}, nil)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		tids = append(tids, tc.Tid())
	}
	for i := 1; i < len(tids); i++ {
		if tids[i] <= tids[i-1] {
			t.Fatalf("expected strictly increasing tids, got %v", tids)
		}
	}
}

// TestRoundRobinFIFOOrdering is scenario S1: two equal-priority threads
// created alongside main, each yielding twice, must interleave in
// creation order every round — round robin, not last-writer-wins.
func TestRoundRobinFIFOOrdering(t *testing.T) {
	s := bootTestScheduler(t, ModeRoundRobin)
	var log orderLog
	done := make(chan struct{})

	if _, err := s.Create("A", PriDefault, func(aux any) {
		log.record("A1")
		s.Yield()
		log.record("A2")
		s.Yield()
		log.record("A3")
	}, nil); err != nil {
		t.Fatalf("create A: %v", err)
	}
	if _, err := s.Create("B", PriDefault, func(aux any) {
		log.record("B1")
		s.Yield()
		log.record("B2")
		s.Yield()
		log.record("B3")
		close(done)
	}, nil); err != nil {
		t.Fatalf("create B: %v", err)
	}

	for i := 0; i < 3; i++ {
		s.Yield()
	}
	<-done

	got := log.snapshot()
	want := []string{"A1", "B1", "A2", "B2", "A3", "B3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestSupersessionOnUnblock is scenario S2: a higher-priority thread
// preempts main the instant it's created, runs up to its own Block,
// and preempts main again the instant it's unblocked.
func TestSupersessionOnUnblock(t *testing.T) {
	s := bootTestScheduler(t, ModeRoundRobin)
	var log orderLog

	high, err := s.Create("high", PriDefault+10, func(aux any) {
		log.record("high-start")
		s.Block()
		log.record("high-resumed")
	}, nil)
	if err != nil {
		t.Fatalf("create high: %v", err)
	}

	if high.Status() != StatusBlocked {
		t.Fatalf("expected high BLOCKED immediately after creation (it ran to its own Block), got %v", high.Status())
	}
	if got := log.snapshot(); len(got) != 1 || got[0] != "high-start" {
		t.Fatalf("expected only high-start logged before Create returns, got %v", got)
	}

	s.Unblock(high)

	got := log.snapshot()
	want := []string{"high-start", "high-resumed"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected supersession to run high to completion inside Unblock, got %v", got)
	}
}

// TestWaitWakesAfterTicksAndMembershipTracksStatus is scenario S3: a
// sleeping thread sits in the wait set, not the ready set, until its
// countdown reaches zero, at which point wakeOneSleeper relocates it.
func TestWaitWakesAfterTicksAndMembershipTracksStatus(t *testing.T) {
	s := bootTestScheduler(t, ModeRoundRobin)
	var log orderLog

	sleeper, err := s.Create("sleeper", PriDefault, func(aux any) {
		log.record("start")
		s.Wait(2)
		log.record("woke")
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	s.Yield() // dispatch sleeper up through its own Wait call and back to us

	if sleeper.Status() != StatusBlocked {
		t.Fatalf("expected sleeper BLOCKED after Wait, got %v", sleeper.Status())
	}
	if sleeper.rsQueue != &s.wait {
		t.Fatalf("expected sleeper linked into the wait set")
	}

	s.Tick()
	if sleeper.Status() != StatusBlocked {
		t.Fatalf("expected sleeper still BLOCKED after one tick of two, got %v", sleeper.Status())
	}
	s.Tick()

	if sleeper.Status() != StatusReady {
		t.Fatalf("expected sleeper READY once its countdown expires, got %v", sleeper.Status())
	}
	if sleeper.rsQueue == &s.wait {
		t.Fatalf("expected sleeper unlinked from the wait set after waking")
	}

	s.Yield() // dispatch sleeper to completion

	got := log.snapshot()
	if len(got) != 2 || got[0] != "start" || got[1] != "woke" {
		t.Fatalf("unexpected log: %v", got)
	}
}

// TestAgingBumpsReadyThreadPriority is scenario S4: a thread that sits
// ready without ever running has its priority bumped by one every
// TimeSlice*4 ticks.
func TestAgingBumpsReadyThreadPriority(t *testing.T) {
	s := bootTestScheduler(t, ModeRoundRobin)
	low, err := s.Create("low", 10, func(aux any) {}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if low.Priority() != 10 {
		t.Fatalf("expected initial priority 10, got %d", low.Priority())
	}

	for i := 0; i < TimeSlice*4; i++ {
		s.Tick()
	}

	if low.Priority() != 11 {
		t.Fatalf("expected aged priority 11 after %d ticks, got %d", TimeSlice*4, low.Priority())
	}
}

// TestMLFQRecomputesLoadAvgAndRecentCPU is scenario S5. fixedpoint's
// own tests cover the arithmetic primitives and a single load_avg
// update; the full trajectory is not checked anywhere. Here we only check that ticking with a runnable thread drives both
// load_avg and recent_cpu strictly positive, the qualitative behavior
// the formulas exist to produce.
func TestMLFQRecomputesLoadAvgAndRecentCPU(t *testing.T) {
	s := New(ModeMLFQ, 4, 0, io.Discard)
	s.Init()
	s.Start()
	s.StopTimer()

	for i := 0; i < 8; i++ {
		s.Tick()
	}

	if s.GetLoadAvg() <= 0 {
		t.Fatalf("expected load_avg to rise above zero with a runnable thread, got %d", s.GetLoadAvg())
	}
	if s.GetRecentCPU() <= 0 {
		t.Fatalf("expected recent_cpu to accumulate for the running thread, got %d", s.GetRecentCPU())
	}
}

func TestCheckpointConsumesPendingYield(t *testing.T) {
	s := bootTestScheduler(t, ModeRoundRobin)
	s.intr.RequestYieldOnReturn()
	s.Checkpoint()
	if s.intr.ConsumeYieldOnReturn() {
		t.Fatalf("expected Checkpoint to have already consumed the pending yield")
	}
}
