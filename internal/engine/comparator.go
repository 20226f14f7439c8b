package engine

import (
	"math"
	"strconv"

	"numdiff/internal/numparse"
	"numdiff/internal/rule"
)

// numPair bundles what TestNum needs to carry between its stages instead
// of threading eight separate values through every helper call.
type numPair struct {
	lhsSpan, rhsSpan []byte // full text from the cursor to end of line
	p1, p2           numparse.Parsed
	lhsD, rhsD       float64
	difD, errD       float64
	absD, relD, digD float64
	minD, powD       float64
}

// TestNum implements spec.md §4.7's test_num: parse the numeric spans
// currently under the cursors, compute the error vector, check it
// against r, emit diagnostics on failure, update registers, and advance
// both cursors past the compared spans. Returns the failure bitmask
// (zero on pass).
func (e *Engine) TestNum(r *rule.Rule) rule.Tolerance {
	np := numPair{
		lhsSpan: e.lhsBuf[e.lhsI:e.lhsLen],
		rhsSpan: e.rhsBuf[e.rhsI:e.rhsLen],
	}
	np.p1 = numparse.ParseNumber(np.lhsSpan)
	np.p2 = numparse.ParseNumber(np.rhsSpan)

	if np.p1.Len == 0 || np.p2.Len == 0 {
		return e.testNumMissing(r, np)
	}

	e.resolveValues(r, &np)

	if r.Flags.Has(rule.FlagSwap) {
		np.lhsD, np.rhsD = np.rhsD, np.lhsD
	}

	np.difD = np.lhsD - np.rhsD
	np.errD = r.Scale.Resolve(e.reg) * np.difD
	np.absD = np.errD + r.Offset.Resolve(e.reg)
	np.relD = np.absD / np.minD
	np.digD = np.absD / (np.minD * np.powD)

	var ret rule.Tolerance
	switch {
	case r.Flags.Has(rule.FlagIgnore):
		// pass unconditionally
	case r.Flags.Has(rule.FlagOmit) && isValidOmit(e.lhsBuf, e.rhsBuf, e.lhsI, e.rhsI, r.Tag):
		// pass unconditionally
	case r.Tolerance.Has(rule.TolEqual):
		if np.p1.Len != np.p2.Len || string(np.lhsSpan[:np.p1.Len]) != string(np.rhsSpan[:np.p2.Len]) {
			ret = rule.TolEqual
		}
	default:
		ret = e.checkTolerances(r, np)
	}

	if ret != 0 {
		e.reportNumDiff(r, ret, np)
	}
	if ret == 0 || r.Flags.Has(rule.FlagSave) {
		e.commitRegisters(r, np)
		e.runRegisterOps(r)
	}

	e.lhsI += np.p1.Len
	e.rhsI += np.p2.Len
	return ret
}

func (e *Engine) checkTolerances(r *rule.Rule, np numPair) rule.Tolerance {
	var ret rule.Tolerance
	if r.Tolerance.Has(rule.TolAbs) {
		upper, lower := rule.NegBoundFor(e.reg, r.Abs, r.NegAbs)
		if np.absD > upper || np.absD < lower {
			ret |= rule.TolAbs
		}
	}
	if r.Tolerance.Has(rule.TolRel) {
		upper, lower := rule.NegBoundFor(e.reg, r.Rel, r.NegRel)
		if np.relD > upper || np.relD < lower {
			ret |= rule.TolRel
		}
	}
	if r.Tolerance.Has(rule.TolDig) && (np.p1.IsFloat || np.p2.IsFloat) {
		upper, lower := rule.NegBoundFor(e.reg, r.Dig, r.NegDig)
		if np.digD > upper || np.digD < lower {
			ret |= rule.TolDig
		}
	}
	dra := rule.TolDig | rule.TolRel | rule.TolAbs
	if r.Flags.Has(rule.FlagAny) && (ret&dra) != (r.Tolerance&dra) {
		return 0
	}
	return ret
}

// resolveValues fills in lhsD, rhsD, minD and powD per spec.md §4.7 step
// 2, before any swap is applied.
func (e *Engine) resolveValues(r *rule.Rule, np *numPair) {
	np.lhsD = e.reg.Get(r.LhsReg, defaultLhs(r, np.lhsSpan[:np.p1.Len]))
	np.rhsD = e.reg.Get(r.RhsReg, defaultRhs(r, np.rhsSpan[:np.p2.Len]))

	np.minD = math.Min(math.Abs(np.lhsD), math.Abs(np.rhsD))
	if !(np.minD > 0) {
		np.minD = 1
	}
	maxDigits := np.p1.Digits
	if np.p2.Digits > maxDigits {
		maxDigits = np.p2.Digits
	}
	np.powD = math.Pow(10, float64(-maxDigits))
}

func defaultLhs(r *rule.Rule, span []byte) float64 {
	if r.Flags.Has(rule.FlagLhsLit) {
		return r.Lhs
	}
	return mustParseFloat(span)
}

func defaultRhs(r *rule.Rule, span []byte) float64 {
	if r.Flags.Has(rule.FlagRhsLit) {
		return r.Rhs
	}
	return mustParseFloat(span)
}

func mustParseFloat(span []byte) float64 {
	v, err := strconv.ParseFloat(string(span), 64)
	if err != nil {
		return 0
	}
	return v
}

// testNumMissing handles spec.md §4.7 step 1: one side failed to parse a
// number at all.
func (e *Engine) testNumMissing(r *rule.Rule, np numPair) rule.Tolerance {
	if r.Flags.Has(rule.FlagIgnore) && r.Flags.Has(rule.FlagIStr) {
		e.lhsI += np.p1.Len
		e.rhsI += np.p2.Len
		return 0
	}
	e.reportMissingNumber(r, np)
	e.lhsI += np.p1.Len
	e.rhsI += np.p2.Len
	return rule.TolMissing
}

// commitRegisters implements spec.md §4.2/§4.7 step 9's reserved-output
// writes. R1/R2 respect swap and any lhs/rhs literal override by
// re-parsing from the appropriate span, exactly as the source's
// reg_setval(1, ...) / reg_setval(2, ...) calls do.
func (e *Engine) commitRegisters(r *rule.Rule, np numPair) {
	r1 := np.lhsD
	if r.LhsReg != 0 || r.Flags.Has(rule.FlagLhsLit) {
		span := np.lhsSpan[:np.p1.Len]
		if r.Flags.Has(rule.FlagSwap) {
			span = np.rhsSpan[:np.p2.Len]
		}
		r1 = mustParseFloat(span)
	}
	r2 := np.rhsD
	if r.RhsReg != 0 || r.Flags.Has(rule.FlagRhsLit) {
		span := np.rhsSpan[:np.p2.Len]
		if r.Flags.Has(rule.FlagSwap) {
			span = np.lhsSpan[:np.p1.Len]
		}
		r2 = mustParseFloat(span)
	}

	e.reg.Set(1, r1)
	e.reg.Set(2, r2)
	e.reg.Set(3, np.difD)
	e.reg.Set(4, np.errD)
	e.reg.Set(5, np.absD)
	e.reg.Set(6, np.relD)
	e.reg.Set(7, np.digD)
	e.reg.Set(8, np.minD)
	e.reg.Set(9, np.powD)

	if r.Flags.Has(rule.FlagTraceR) {
		e.log.Tracef("  abs=%.17g, rel=%.17g, dig=%.17g", np.absD, np.relD, np.digD)
		e.log.Tracef("  R1=%.17g, R2=%.17g, R3=%.17g, R4=%.17g, R5=%.17g, R6=%.17g, R7=%.17g, R8=%.17g, R9=%.17g",
			r1, r2, np.difD, np.errD, np.absD, np.relD, np.digD, np.minD, np.powD)
	}
}

func (e *Engine) runRegisterOps(r *rule.Rule) {
	for _, op := range r.Ops {
		e.reg.Eval(op.Dst, op.Src, op.Src2, op.Op)
		if r.Flags.Has(rule.FlagTraceR) {
			e.log.Tracef("  R%d=%.17g", op.Dst, e.reg.Get(op.Dst, 0))
		}
	}
}
