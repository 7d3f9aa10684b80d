package hw

// IntrController tracks the logical "interrupts enabled" level for the
// single simulated CPU: GetLevel/Disable/SetLevel, the IRQ-context query,
// and the yield-on-return request a preempting tick leaves behind for
// the interrupted thread to notice at its next checkpoint.
//
// This is bookkeeping only — a plain set of fields, no locking of its
// own. On real single-CPU hardware the interrupt flag needs no lock
// either; the actual cross-goroutine exclusion this simulation needs
// (so the timer's delivery goroutine can't race a thread goroutine) is
// a separate concern the scheduler handles with its own internal mutex,
// held for exactly the span real hardware gets for free. The IRQ and
// yield-on-return flags, which the timer's goroutine touches, are only
// accessed while that mutex is held. The enabled level is also set
// without the mutex by thread goroutines (the thread bootstrap, Start,
// the idle loop); those run one at a time, handing off through the
// context switch, and the timer's goroutine never reads or writes it.
type IntrController struct {
	enabled       bool
	inIRQ         bool
	yieldOnReturn bool
}

// NewIntrController returns a controller starting with interrupts enabled.
func NewIntrController() *IntrController {
	return &IntrController{enabled: true}
}

// Disable transitions to the disabled level and returns the previous
// level, for later restoration via SetLevel. Idempotent: disabling an
// already-disabled controller just reports false back.
func (c *IntrController) Disable() bool {
	prev := c.enabled
	c.enabled = false
	return prev
}

// SetLevel restores a level previously returned by Disable.
func (c *IntrController) SetLevel(prev bool) {
	c.enabled = prev
}

// GetLevel reports whether interrupts are currently enabled.
func (c *IntrController) GetLevel() bool {
	return c.enabled
}

// InIRQ reports whether the caller is executing on behalf of the timer
// IRQ (used to suppress the supersession branch in thread_unblock).
func (c *IntrController) InIRQ() bool {
	return c.inIRQ
}

// RequestYieldOnReturn asks that the interrupted thread yield as soon as
// the IRQ handler returns, the simulated analogue of setting Pintos's
// intr_yield_on_return flag.
func (c *IntrController) RequestYieldOnReturn() {
	c.yieldOnReturn = true
}

// ConsumeYieldOnReturn reports and clears the pending yield-on-return
// request.
func (c *IntrController) ConsumeYieldOnReturn() bool {
	y := c.yieldOnReturn
	c.yieldOnReturn = false
	return y
}

// EnterIRQ is called only by the tick-delivery path to mark IRQ context
// for the duration of the tick handler.
func (c *IntrController) EnterIRQ() {
	c.inIRQ = true
}

// LeaveIRQ clears IRQ context on return from the timer IRQ. It does not
// act on a pending yield-on-return; that stays set until
// ConsumeYieldOnReturn reads and clears it.
func (c *IntrController) LeaveIRQ() {
	c.inIRQ = false
}
