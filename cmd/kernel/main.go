// Command kernel boots the scheduler, spawns a handful of demo threads,
// and runs until they've all exited — a stand-in for the teacher's own
// main() boot sequence (phys init, device attach, cpu bring-up, exec),
// scaled down to this subsystem's own pieces: hw collaborators,
// scheduler init, demo threads, idle loop.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pintosgo/kernel/internal/cmdline"
	"github.com/pintosgo/kernel/internal/thread"
)

func main() {
	opts, err := cmdline.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "kernel: %v\n", err)
		os.Exit(1)
	}

	mode := thread.ModeRoundRobin
	if opts.MLFQS {
		mode = thread.ModeMLFQ
	}

	fmt.Printf("              pintosgo\n")
	fmt.Printf("          go version: %v\n", runtime.Version())
	if mode == thread.ModeMLFQ {
		fmt.Printf("  scheduler: 4.4BSD MLFQ\n")
	} else {
		fmt.Printf("  scheduler: priority round-robin with aging\n")
	}

	s := thread.New(mode, 100, 0, os.Stdout)
	s.Init()
	s.Start()
	defer s.StopTimer()

	done := make(chan string, len(demoThreads))
	for _, d := range demoThreads {
		d := d
		if _, err := s.Create(d.name, d.priority, func(aux any) {
			d.body(s)
			done <- d.name
		}, nil); err != nil {
			fmt.Fprintf(os.Stderr, "kernel: create %q: %v\n", d.name, err)
		}
	}

	// Main never blocks on done directly: a plain channel receive
	// wouldn't hand the CPU to anyone through the scheduler itself, and
	// the demo threads only make progress once something dispatches
	// them. Yielding in a loop is main's way of standing aside.
	for remaining := len(demoThreads); remaining > 0; {
		select {
		case <-done:
			remaining--
		default:
			s.Yield()
		}
	}

	if opts.Loud {
		s.DumpAll()
		stats := s.Stats()
		fmt.Printf("ticks=%d idle=%d kernel=%d user=%d load_avg=%d\n",
			stats.Ticks, stats.IdleTicks, stats.KernelTicks, stats.UserTicks, stats.LoadAvg)
	}
}

type demoThread struct {
	name     string
	priority int
	body     func(s *thread.Scheduler)
}

// demoThreads exercises the scheduler's own entrypoints the way a real
// kernel's init process would: some threads yield cooperatively, one
// sleeps, one adjusts its own priority mid-flight.
var demoThreads = []demoThread{
	{name: "worker-a", priority: thread.PriDefault, body: func(s *thread.Scheduler) {
		for i := 0; i < 3; i++ {
			s.Yield()
		}
	}},
	{name: "worker-b", priority: thread.PriDefault, body: func(s *thread.Scheduler) {
		for i := 0; i < 3; i++ {
			s.Yield()
		}
	}},
	{name: "sleeper", priority: thread.PriDefault, body: func(s *thread.Scheduler) {
		s.Wait(5)
	}},
	{name: "climber", priority: thread.PriMin + 1, body: func(s *thread.Scheduler) {
		s.SetPriority(thread.PriDefault + 5)
		s.Yield()
	}},
}
