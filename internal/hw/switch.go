package hw

// Runnable is the minimal shape a context-switch target must provide: a
// way to wake it up and a way for it to park itself. thread.TCB
// implements this over a dedicated goroutine blocked on its own buffered
// channel — the channel is the "saved register state," and the
// goroutine's own stack is the saved call stack, the Go-idiomatic
// analogue of switch_threads' stack-pointer swap.
type Runnable interface {
	Resume()
	Park()
}

// Switch hands the CPU from prev to next: it wakes next, then parks
// prev. Switch returns on prev's side only when some later Switch
// targets prev again, exactly mirroring switch_threads returning on the
// far side of a context switch.
func Switch(prev, next Runnable) {
	next.Resume()
	prev.Park()
}
