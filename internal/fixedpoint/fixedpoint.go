// Package fixedpoint implements the 17.14 signed fixed-point arithmetic
// used for the MLFQ load average and per-thread recent_cpu estimator.
package fixedpoint

// FP is a 17.14 signed fixed-point value: 17 integer bits, 14 fractional
// bits, stored in the low 31 bits of an int64 (the extra headroom avoids
// overflow surprises from the widening multiply/divide below).
type FP int64

const fracBits = 14

// FromInt converts an integer to fixed-point: n << 14.
func FromInt(n int) FP {
	return FP(n) << fracBits
}

// ToIntZero truncates toward zero: x / 2^14. A right shift would floor
// instead (round toward -infinity for negatives), so this divides.
func (x FP) ToIntZero() int {
	return int(x / (1 << fracBits))
}

// ToIntNear rounds to the nearest integer, ties away from zero. Built
// on truncating division, not a shift, for the same reason as
// ToIntZero: a shift would floor negative values instead of rounding
// them toward nearest.
func (x FP) ToIntNear() int {
	if x >= 0 {
		return int((x + 1<<(fracBits-1)) / (1 << fracBits))
	}
	return int((x - 1<<(fracBits-1)) / (1 << fracBits))
}

// Add returns x + y.
func (x FP) Add(y FP) FP {
	return x + y
}

// Sub returns x - y.
func (x FP) Sub(y FP) FP {
	return x - y
}

// AddInt returns x + n.
func (x FP) AddInt(n int) FP {
	return x + FromInt(n)
}

// SubInt returns x - n.
func (x FP) SubInt(n int) FP {
	return x - FromInt(n)
}

// Mul returns x * y, widening through int64 and shifting back down by 14.
func (x FP) Mul(y FP) FP {
	return FP((int64(x) * int64(y)) >> fracBits)
}

// MulInt returns x * n.
func (x FP) MulInt(n int) FP {
	return x * FP(n)
}

// Div returns x / y, widening the dividend left by 14 before dividing.
func (x FP) Div(y FP) FP {
	return FP((int64(x) << fracBits) / int64(y))
}

// DivInt returns x / n.
func (x FP) DivInt(n int) FP {
	return x / FP(n)
}
