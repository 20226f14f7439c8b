// Package register implements the engine's register file: a fixed-size
// array of double-precision scalars, indexed 1..N, that the comparator
// writes its error metrics into and that rules can combine with a small
// arithmetic operator set (spec.md §4.2).
package register

import "math"

// RegMax bounds how many registers a File may be constructed with. The
// source clamps the requested count into [MinCount, RegMax]; RegMax
// itself is not named by the distilled spec (only "a maximum REG_MAX"),
// so 999 is chosen here to keep `R%d`-formatted trace output aligned at
// three digits — see DESIGN.md's Open Questions.
const RegMax = 999

// MinCount is the floor the constructor clamps a requested register
// count up to, matching ndiff_setup's min_regs (original_source's
// ndiff.c:207). Indices 1..9 are reserved comparator outputs; user
// rules address 10 and up, so a caller that requests
// 0 (the common "give me the default") still gets the full block of
// user-addressable registers the spec's rule scenarios rely on.
const MinCount = 99

// Op is the engine's register operation: dst := src op src2.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMin
	OpMax
	OpPow
)

// File is the register array. The zero value is not usable; build one
// with New.
type File struct {
	regs []float64
}

// New allocates a register file of n registers, clamped into
// [MinCount, RegMax]. Index 0 exists but is never addressable through
// Get/Set/Eval (0<idx is the guard everywhere), matching the source's
// "index 0 unused" convention.
func New(n int) *File {
	if n < MinCount {
		n = MinCount
	}
	if n > RegMax {
		n = RegMax
	}
	return &File{regs: make([]float64, n+1)}
}

// Len reports how many addressable registers (1..Len) this file has.
func (f *File) Len() int { return len(f.regs) - 1 }

// Get returns reg[idx] if 0<idx<=Len, else def. A register that has
// never been Set reads back as 0, matching a zero-initialized array.
func (f *File) Get(idx int, def float64) float64 {
	if idx > 0 && idx < len(f.regs) {
		return f.regs[idx]
	}
	return def
}

// Set stores v into reg[idx] if 0<idx<len(regs); out-of-range indices
// are silently ignored, matching the source's bounds-checked store.
func (f *File) Set(idx int, v float64) {
	if idx > 0 && idx < len(f.regs) {
		f.regs[idx] = v
	}
}

// Eval applies op to reg[src] and reg[src2] and stores the result in
// reg[dst]. Out-of-range src/src2 read as 0 (via Get's default), an
// out-of-range dst is a no-op (via Set's guard). Division by zero is
// allowed to produce IEEE-754 +/-Inf or NaN; it is not treated as an
// engine error.
func (f *File) Eval(dst, src, src2 int, op Op) {
	a := f.Get(src, 0)
	b := f.Get(src2, 0)
	var r float64
	switch op {
	case OpAdd:
		r = a + b
	case OpSub:
		r = a - b
	case OpMul:
		r = a * b
	case OpDiv:
		r = a / b
	case OpMin:
		r = minFloat(a, b)
	case OpMax:
		r = maxFloat(a, b)
	case OpPow:
		r = math.Pow(a, b)
	default:
		return
	}
	f.Set(dst, r)
}

// Clear zeroes every register without reallocating, used by Engine.Clear
// to reset state while keeping the configured register count.
func (f *File) Clear() {
	for i := range f.regs {
		f.regs[i] = 0
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
