// Package engine implements the numerical diff core: line buffers, the
// lockstep tokenizer, the rule-driven comparator, the tag/number seek
// operations, and the per-line driver loop (spec.md §§2, 4-8).
//
// The engine is single-threaded and synchronous (spec.md §5): every
// exported method assumes it is the only one executing, and none of them
// spawn goroutines or otherwise create a suspension point an embedder
// could observe.
package engine

import (
	"numdiff/internal/register"
	"numdiff/internal/rule"
	"numdiff/internal/status"
)

// minAlloc is the buffer growth floor (spec.md §5's "doubling strategy,
// minimum 64 KiB"), matching the source's `min_alloc = 65536`.
const minAlloc = 64 * 1024

// Options configures the driver loop and cross-cutting comparison
// behavior (spec.md §6's set_options).
type Options struct {
	// Keep caps how many diffs get a diagnostic emitted; must be > 0.
	Keep int
	// Blank enables whitespace-insensitive matching in the tokenizer and
	// trailing-whitespace consumption after the driver loop ends.
	Blank bool
	// Check turns on the dual-lookup cross-validation of
	// GetIncremental against GetAt on every rule lookup.
	Check bool
	// KeptPunctuation is the "kept set" of punctuation bytes that do not
	// count as separators (spec.md §4.1).
	KeptPunctuation string
}

// DefaultOptions returns the engine's out-of-the-box option values.
func DefaultOptions() Options {
	return Options{Keep: 25, Blank: false, Check: false}
}

// Engine holds the two line buffers, cursors, register file and options
// for one comparison run. It owns its buffers and register file; the
// rule.Context and the two LineSources are borrowed (spec.md §3's
// Ownership paragraph).
type Engine struct {
	lhsSrc, rhsSrc LineSource
	ctx            rule.Context
	reg            *register.File

	lhsBuf, rhsBuf []byte
	lhsLen, rhsLen int // bytes filled, not counting the trailing NUL
	lhsI, rhsI     int // char-column cursors into the buffers

	rowI, colI int
	numI       int64
	cntI, maxI int

	opts   Options
	log    status.Logger
	diags  *Diagnostics
	closed bool
}

// New constructs an Engine over two line sources and a rule context.
// bufCap and regCount are each clamped to their minimums (bufCap to
// minAlloc, regCount to register.MinCount, capped at register.RegMax),
// matching the source's ndiff_setup.
func New(lhs, rhs LineSource, ctx rule.Context, bufCap, regCount int) *Engine {
	status.Ensure(lhs != nil && rhs != nil, "line sources must not be nil")
	status.Ensure(ctx != nil, "rule context must not be nil")

	if bufCap < minAlloc {
		bufCap = minAlloc
	}
	e := &Engine{
		lhsSrc: lhs,
		rhsSrc: rhs,
		ctx:    ctx,
		reg:    register.New(regCount),
		lhsBuf: make([]byte, bufCap),
		rhsBuf: make([]byte, bufCap),
		opts:   DefaultOptions(),
		log:    status.Default(),
	}
	e.diags = NewDiagnostics(e.log)
	return e
}

// SetLogger overrides the logger the engine's warning/trace sinks write
// through; the default is status.Default().
func (e *Engine) SetLogger(l status.Logger) {
	e.log = l
	e.diags.log = l
}

// SetOptions applies o, validating Keep > 0 (spec.md §6, §7 class 2:
// invalid option values are a resource-failure class fatal error).
func (e *Engine) SetOptions(o Options) {
	status.Ensure(o.Keep > 0, "number of kept diffs must be positive")
	e.opts = o
}

// Clear resets buffers, cursors and registers to their initial state
// while preserving the engine's configuration (line sources, context,
// options).
func (e *Engine) Clear() {
	e.lhsLen, e.rhsLen = 0, 0
	e.lhsI, e.rhsI = 0, 0
	e.rowI, e.colI = 0, 0
	e.numI, e.cntI = 0, 0
	e.reg.Clear()
	e.resetBuf()
}

func (e *Engine) resetBuf() {
	e.lhsI, e.rhsI = 0, 0
	e.lhsLen, e.rhsLen = 0, 0
}

func (e *Engine) grow(n int) {
	if n <= len(e.lhsBuf) {
		return
	}
	nb := make([]byte, n)
	copy(nb, e.lhsBuf)
	e.lhsBuf = nb
	nb2 := make([]byte, n)
	copy(nb2, e.rhsBuf)
	e.rhsBuf = nb2
}

// GetInfo returns the introspection tuple spec.md §6 names: current row,
// numeric column, cumulative reported-diff count, and cumulative
// compared-number count.
func (e *Engine) GetInfo() (row, col, cnt int, num int64) {
	return e.rowI, e.colI, e.cntI, e.numI
}

// Feof reports end-of-file. both=true requires both sides to be at EOF;
// both=false is satisfied by either side (spec.md §6, §9's note that the
// two variants are asymmetric and both must be preserved).
func (e *Engine) Feof(both bool) bool {
	if both {
		return e.lhsSrc.AtEOF() && e.rhsSrc.AtEOF()
	}
	return e.lhsSrc.AtEOF() || e.rhsSrc.AtEOF()
}

// IsEmpty reports whether both cursors are at the terminating NUL of
// their respective buffers.
func (e *Engine) IsEmpty() bool {
	return e.lhsI >= e.lhsLen && e.rhsI >= e.rhsLen
}

func (e *Engine) lhsByte(i int) byte {
	if i < e.lhsLen {
		return e.lhsBuf[i]
	}
	return 0
}

func (e *Engine) rhsByte(i int) byte {
	if i < e.rhsLen {
		return e.rhsBuf[i]
	}
	return 0
}

// Registers exposes the engine's register file, mainly for tests that
// want to assert on R1..R9 after a TestNum call.
func (e *Engine) Registers() *register.File { return e.reg }
