package engine

import (
	"io"

	"numdiff/internal/rule"
	"numdiff/internal/status"
)

// Run implements spec.md §4.8's main loop: for each row, look up the
// rule governing the next row's first column, dispatch on its Action,
// and — for Compare — walk columns left to right, re-resolving the rule
// each time next_num lands on a new column, until next_num reports end of
// line or a FlagStartGroup rule ends that row's column loop early.
// lhsOut/rhsOut are the optional echo sinks spec.md §4.3/§4.8 name
// run(lhs_out?, rhs_out?); a Compare row that accumulates no failures
// across its columns is echoed to them via OutLine (nil sinks make this a
// no-op). Run stops after the row on which either side reaches EOF and
// returns the final cumulative diff count.
func (e *Engine) Run(lhsOut, rhsOut io.Writer) int {
	for {
		row := e.rowI + 1
		r := e.ctx.GetIncremental(row, 1)
		status.Ensure(r != nil, "no rule matches row %d", row)
		if e.opts.Check {
			e.crossCheck(r, row, 1)
		}

		restore := e.applyTrace(r)

		var eofHit bool
		switch r.Action {
		case rule.ActionSkip:
			eofHit = e.SkipLine() == StatusEOF
		case rule.ActionGotoTag:
			eofHit = e.GotoLine(r) == StatusEOF
		case rule.ActionGotoNum:
			eofHit = e.GotoNum(r) == StatusEOF
		default:
			eofHit = e.runCompareRow(r, lhsOut, rhsOut)
		}

		restore()

		if eofHit {
			break
		}
	}

	if e.opts.Blank {
		e.lhsSrc.SkipSpace()
		e.rhsSrc.SkipSpace()
	}

	return e.cntI
}

// runCompareRow implements the Compare branch: ReadLine, then repeatedly
// call next_num under whichever rule governed the previous column (r,
// starting as the row's own rule) and only re-resolve the rule — for
// test_num, the StartGroup check, and Check-mode cross-validation — once
// next_num has actually landed on a new column. ndiff_loop drives
// next_num this way too: re-fetching the rule before next_num would let
// an adjacent column's istr/omit/tag differ from the one that produced
// the span next_num is being asked to walk past. The column loop
// accumulates test_num's return into ret (ndiff_loop's `ret |= test_num`)
// and, when the row closes with ret == 0, echoes the pair via OutLine
// (spec.md §4.8's emit step, §8 scenario 1). Returns whether either side
// hit EOF.
func (e *Engine) runCompareRow(r *rule.Rule, lhsOut, rhsOut io.Writer) bool {
	eofHit := e.ReadLine() == StatusEOF
	row := e.rowI
	var ret rule.Tolerance

	for {
		restore := e.applyTrace(r)
		col := e.NextNum(r)
		restore()
		if col == 0 {
			break
		}

		want := e.ctx.GetIncremental(row, col)
		status.Ensure(want != nil, "no rule matches row %d column %d", row, col)

		if e.opts.Check {
			e.crossCheck(want, row, col)
		}

		if want.Flags.Has(rule.FlagStartGroup) {
			break
		}

		restore = e.applyTrace(want)
		ret |= e.TestNum(want)
		restore()

		r = want
	}

	if ret == 0 {
		e.OutLine(lhsOut, rhsOut)
	}

	return eofHit
}

// crossCheck implements spec.md §7 class 3's invariant: GetAt must agree
// with GetIncremental on every (row, col) the driver visits. A mismatch
// is a configuration/context bug, not a data difference, so it is fatal
// rather than reported as a diagnostic.
func (e *Engine) crossCheck(want *rule.Rule, row, col int) {
	got := e.ctx.GetAt(row, col)
	if got != want {
		e.ctx.Print(logWriter{e.log})
		status.Fatal("rule context disagreement at row %d column %d", row, col)
	}
}

// applyTrace implements the FlagTrace/FlagTraceR behavior spec.md §6
// describes as "temporarily raise the log level while this rule is
// active": rather than the source's global save/restore of
// logmsg_config.level, each call returns its own restore closure so
// nested calls can never clobber one another's saved level.
func (e *Engine) applyTrace(r *rule.Rule) func() {
	if !r.Flags.Has(rule.FlagTrace) && !r.Flags.Has(rule.FlagTraceR) {
		return func() {}
	}
	return e.log.LowerLevelTo(status.LogLevelTrace)
}

// logWriter adapts a status.Logger to io.Writer for Context.Print, used
// only by the Check-mode fatal path above.
type logWriter struct{ log status.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Tracef("%s", string(p))
	return len(p), nil
}
