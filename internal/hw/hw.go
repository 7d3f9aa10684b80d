// Package hw provides the hosted stand-ins for the hardware collaborators
// a freestanding kernel would depend on: the interrupt controller, the
// low-level context-switch primitive, the timer device, the page
// allocator, the optional address-space activator, and the console.
//
// None of this runs on bare metal. Each type here is a small, narrowly
// scoped simulation that preserves the contract the scheduler core relies
// on — not the hardware mechanism itself.
package hw

import "io"

// AddressSpace is consumed by thread_schedule_tail's userland hook (§4.5
// step 3). No component in this repo supplies a real implementation; it
// exists so a future process layer has somewhere to plug in.
type AddressSpace interface {
	Activate()
}

// Console is the single seam kernel code writes diagnostic output
// through, standing in for Pintos's serial/VGA printf plumbing.
type Console struct {
	w io.Writer
}

// NewConsole wraps w as the kernel console.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Write(p []byte) (int, error) {
	return c.w.Write(p)
}
