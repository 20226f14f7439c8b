// Package rule defines the data the comparison engine consumes from its
// configuration: the Rule itself and the small sum types spec.md's
// Design Notes (§9) call for in place of the source's single bitmask
// `eps.cmd` — an Action variant, a Tolerance bitset, and an independent
// Flags bitset. The bitmask-shaped configuration format still exists,
// but only at the internal/config parser boundary; nothing downstream
// of a parsed Rule ever tests a raw integer command word again.
package rule

import "numdiff/internal/register"

// Action selects what the driver does with a row before any per-number
// comparison happens (spec.md §3, §4.8).
type Action int

const (
	ActionCompare Action = iota
	ActionSkip
	ActionGotoTag
	ActionGotoNum
)

// Tolerance is a bitset over the metrics a rule checks a number pair
// against. Equal is mutually exclusive with the others in practice (an
// `equ` rule short-circuits before any of abs/rel/dig run) but is kept
// as a bit rather than a separate Action so a single Rule.Tolerance
// value round-trips through the same bitmask the config format uses.
type Tolerance uint8

const (
	TolEqual Tolerance = 1 << iota
	TolAbs
	TolRel
	TolDig
	// TolMissing marks a pair where one side had no parseable number at
	// all (spec.md §4.7 step 1's "missing number" diff, reported with
	// error bit `ign`). Kept distinct from TolEqual/Abs/Rel/Dig, which
	// are all requested-metric bits a rule opts into, whereas Missing is
	// never requested — it only ever appears in a result.
	TolMissing
)

// Has reports whether every bit in want is set in t.
func (t Tolerance) Has(want Tolerance) bool { return t&want == want }

// Any reports whether t and other share at least one bit.
func (t Tolerance) Any(other Tolerance) bool { return t&other != 0 }

// Flag is the independent set of behavior modifiers a rule can carry,
// orthogonal to Action and Tolerance (spec.md §9's third sum-type leg).
type Flag uint32

const (
	FlagIgnore     Flag = 1 << iota // ign: pass unconditionally
	FlagOmit                        // omit: pass when the tag test matches
	FlagIStr                        // istr: search digits only
	FlagAny                         // any: pass if any requested tolerance metric passes
	FlagNoFail                      // nofail: do not emit a diagnostic on failure
	FlagOnFail                      // onfail: fire the context's OnFail hook on failure
	FlagLhsLit                      // lhs: use the literal Lhs value in place of the parsed one
	FlagRhsLit                      // rhs: use the literal Rhs value in place of the parsed one
	FlagSwap                        // swap: exchange lhs/rhs after resolution (goto_num's 2nd pass)
	FlagSave                        // save: write registers even when the pair passed
	FlagStartGroup                  // sgg: marks the first rule of a newly active section
	FlagGotoReg                     // gto_reg: goto_num's tag comes from a register, not Tag
	FlagTrace                       // trace: raise the log level while this rule is active
	FlagTraceR                      // traceR: also trace register writes/operations
)

// Has reports whether every bit in want is set in f.
func (f Flag) Has(want Flag) bool { return f&want == want }

// Bound is a numeric tolerance bound, an offset, or a scale factor: a
// literal value that a register index can override at evaluation time
// (spec.md §3's "numeric bounds ... each with an associated register
// index").
type Bound struct {
	Literal float64
	Reg     int // 0 means "no register override", use Literal
}

// Resolve returns reg.Get(b.Reg, b.Literal): the register's current
// value if b.Reg is set, else the configured literal.
func (b Bound) Resolve(reg *register.File) float64 {
	return reg.Get(b.Reg, b.Literal)
}

// ColumnSlice is the range-with-stride a rule applies to (spec.md §3's
// `col`). A zero ColumnSlice (Full false, From 0, To 0 meaning unbounded)
// also matches every column; FullColumn() is the explicit "every column"
// form, and the only one IsFull reports true for.
type ColumnSlice struct {
	Full   bool
	From   int // 1-based, inclusive
	To     int // 1-based, inclusive; 0 means unbounded
	Stride int // 0 or 1 means every column in [From,To]
}

// FullColumn returns the column slice that matches every column.
func FullColumn() ColumnSlice { return ColumnSlice{Full: true} }

// IsFull reports whether this slice matches every column.
func (c ColumnSlice) IsFull() bool { return c.Full }

// IsElement reports whether col falls within this slice.
func (c ColumnSlice) IsElement(col int) bool {
	if c.Full {
		return true
	}
	if col < c.From {
		return false
	}
	if c.To > 0 && col > c.To {
		return false
	}
	stride := c.Stride
	if stride <= 1 {
		return true
	}
	return (col-c.From)%stride == 0
}

// RegOp is one entry of a rule's ordered register-operation list
// (spec.md §3's `op[], src[], src2[], dst[]`): dst := src op src2,
// executed in order after a comparison passes (or always, under Save).
type RegOp struct {
	Dst, Src, Src2 int
	Op             register.Op
}

// Rule is the fully-resolved, read-only configuration the engine
// evaluates a number pair against. It is the sum-type decomposition of
// the source's `struct constraint`.
type Rule struct {
	// Index and Line identify this rule for diagnostics: Index is its
	// 1-based position in the configuration's rule list, Line is the
	// line number in the configuration file it was defined on.
	Index int
	Line  int

	Col       ColumnSlice
	Action    Action
	Tolerance Tolerance
	Flags     Flag

	Abs, NegAbs Bound
	Rel, NegRel Bound
	Dig, NegDig Bound

	Scale  Bound
	Offset Bound

	// Lhs/Rhs are literal overrides used when FlagLhsLit/FlagRhsLit is
	// set; LhsReg/RhsReg (0 if absent) take priority over both the
	// literal and the parsed value, per spec.md §4.7 step 2.
	Lhs, Rhs       float64
	LhsReg, RhsReg int

	// Tag is used by goto (substring search), gonum (target literal,
	// unless FlagGotoReg names a register instead via GotoReg), and
	// omit (the guard prefix). It is a plain string with no fixed
	// capacity; the config loader stores the tag= value as is.
	Tag     string
	GotoReg int

	Ops []RegOp
}

// NegBoundFor resolves the lower bound of a two-sided tolerance the way
// spec.md §4.6 describes: "lower = -upper when only a single bound
// register is configured" — i.e. when the negative bound's register is
// set and identical to the positive bound's register, mirror rather
// than independently resolve it.
func NegBoundFor(reg *register.File, upper, lower Bound) (upperVal, lowerVal float64) {
	upperVal = upper.Resolve(reg)
	if lower.Reg != 0 && lower.Reg == upper.Reg {
		lowerVal = -upperVal
	} else {
		lowerVal = lower.Resolve(reg)
	}
	return
}
