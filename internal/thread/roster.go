package thread

import "fmt"

// Foreach implements thread_foreach (§6): walk every roster thread
// with interrupts disabled. idle is deliberately excluded, since it is
// never enrolled on the roster in the first place.
func (s *Scheduler) Foreach(fn func(t *TCB, aux any), aux any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prevLevel := s.intr.Disable()
	defer s.intr.SetLevel(prevLevel)
	s.all.forEach(func(t *TCB) { fn(t, aux) })
}

// ThreadSnapshot is one row of a roster dump: a point-in-time copy of
// the fields worth reporting, taken under the scheduler's lock so it
// never races a concurrent status change.
type ThreadSnapshot struct {
	Tid       int
	Name      string
	Status    Status
	Priority  int
	Nice      int
	RecentCPU int // 100x, nearest-rounded, as GetRecentCPU reports it
	NumDonors int
}

// Snapshot returns a roster dump (ps, §6's supplemented diagnostic):
// one entry per non-idle thread, in roster order.
func (s *Scheduler) Snapshot() []ThreadSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ThreadSnapshot, 0, s.all.len)
	s.all.forEach(func(t *TCB) {
		out = append(out, ThreadSnapshot{
			Tid:       t.tid,
			Name:      t.name,
			Status:    t.status,
			Priority:  t.priority,
			Nice:      t.nice,
			RecentCPU: t.recentCPU.MulInt(100).ToIntNear(),
			NumDonors: t.numLockDonors,
		})
	})
	return out
}

// DumpAll writes a one-line-per-thread roster dump to the scheduler's
// console, the supplemented equivalent of Pintos's thread_print_stats
// companion debugging command.
func (s *Scheduler) DumpAll() {
	rows := s.Snapshot()
	s.log.Boot("thread dump", "count", len(rows))
	for _, r := range rows {
		fmt.Fprintf(s.console, "  tid=%-4d name=%-12s status=%-8s priority=%-3d nice=%-3d recent_cpu=%d donors=%d\n",
			r.Tid, r.Name, r.Status, r.Priority, r.Nice, r.RecentCPU, r.NumDonors)
	}
}

// Stats is a snapshot of the tick counters thread_tick accumulates.
type Stats struct {
	Ticks       uint64
	IdleTicks   uint64
	KernelTicks uint64
	UserTicks   uint64
	LoadAvg     int // 100x, nearest-rounded
}

// Stats reports the accumulated tick counters (the supplemented
// idle/kernel/user breakdown thread_print_stats prints at shutdown).
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Ticks:       s.ticks,
		IdleTicks:   s.idleTicks,
		KernelTicks: s.kernelTicks,
		UserTicks:   s.userTicks,
		LoadAvg:     s.loadAvg.MulInt(100).ToIntNear(),
	}
}
