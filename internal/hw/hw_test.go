package hw

import (
	"testing"
	"time"
)

func TestIntrControllerNestedDisable(t *testing.T) {
	c := NewIntrController()
	if !c.GetLevel() {
		t.Fatalf("new controller should start enabled")
	}
	outer := c.Disable()
	if !outer {
		t.Fatalf("first Disable should report previous level true")
	}
	if c.GetLevel() {
		t.Fatalf("controller should be disabled after Disable")
	}
	inner := c.Disable()
	if inner {
		t.Fatalf("nested Disable should report previous level false")
	}
	c.SetLevel(inner)
	if c.GetLevel() {
		t.Fatalf("SetLevel(false) should not re-enable")
	}
	c.SetLevel(outer)
	if !c.GetLevel() {
		t.Fatalf("SetLevel(true) should re-enable")
	}
}

func TestIntrControllerYieldOnReturn(t *testing.T) {
	c := NewIntrController()
	if c.ConsumeYieldOnReturn() {
		t.Fatalf("no yield should be pending initially")
	}
	c.RequestYieldOnReturn()
	if !c.ConsumeYieldOnReturn() {
		t.Fatalf("expected pending yield after request")
	}
	if c.ConsumeYieldOnReturn() {
		t.Fatalf("consume should clear the flag")
	}
}

func TestTimerFires(t *testing.T) {
	tm := NewTimer(1000)
	ticks := make(chan struct{}, 8)
	tm.Start(func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	defer tm.Stop()
	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatalf("timer never fired")
	}
}

func TestPageAllocatorRoundTrip(t *testing.T) {
	type widget struct{ n int }
	p := NewPageAllocator[widget](0)
	v, addr, err := p.Alloc()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v.n = 42
	got, ok := p.Lookup(addr)
	if !ok || got.n != 42 {
		t.Fatalf("lookup after alloc: got %+v ok=%v", got, ok)
	}
	p.Free(addr)
	if _, ok := p.Lookup(addr); ok {
		t.Fatalf("lookup after free should fail")
	}
}

func TestPageAllocatorExhaustion(t *testing.T) {
	type widget struct{ n int }
	p := NewPageAllocator[widget](1)
	if _, _, err := p.Alloc(); err != nil {
		t.Fatalf("first alloc should succeed: %v", err)
	}
	if _, _, err := p.Alloc(); err != ErrExhausted {
		t.Fatalf("second alloc should exhaust capacity, got %v", err)
	}
}
