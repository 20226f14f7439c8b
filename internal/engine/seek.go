package engine

import (
	"strconv"
	"strings"

	"numdiff/internal/numparse"
	"numdiff/internal/rule"
)

// GotoLine implements spec.md §4.4: advance each side independently,
// reading one line at a time, until a line containing r.Tag as a
// substring is found on that side. row_i then advances by the smaller
// of the two sides' line counts, and both cursors reset to the start of
// whatever line each side landed on.
func (e *Engine) GotoLine(r *rule.Rule) int {
	e.resetBuf()

	c1, i1, line1 := e.seekLineWithTag(e.lhsSrc, r.Tag)
	c2, i2, line2 := e.seekLineWithTag(e.rhsSrc, r.Tag)

	e.grow(len(line1) + 1)
	e.grow(len(line2) + 1)
	e.lhsLen = copy(e.lhsBuf, line1)
	e.rhsLen = copy(e.rhsBuf, line2)
	e.lhsI, e.rhsI = 0, 0

	e.colI = 0
	if i1 < i2 {
		e.rowI += i1
	} else {
		e.rowI += i2
	}
	return eofStatus(c1, c2)
}

// seekLineWithTag reads whole lines from src until one contains tag as a
// substring, or EOF. Returns the last EOF status seen, how many lines
// were consumed, and the line that matched (or the final line read, on
// EOF without a match).
func (e *Engine) seekLineWithTag(src LineSource, tag string) (int, int, string) {
	n := 0
	line, c := "", 0
	for {
		line, c = readWholeLine(src)
		n++
		if strings.Contains(line, tag) || c == eof {
			break
		}
	}
	return c, n, line
}

// readWholeLine drains one line from src into a growable local buffer,
// independent of the engine's own lhs/rhs buffers, returning the line
// with its trailing newline stripped and the last byte src.ReadLine
// reported.
func readWholeLine(src LineSource) (string, int) {
	buf := make([]byte, 4096)
	s, c := 0, 0
	for {
		var n int
		c, n = src.ReadLine(buf[s:])
		s += n
		if c == '\n' || c == eof {
			break
		}
		grown := make([]byte, 2*len(buf))
		copy(grown, buf)
		buf = grown
	}
	return string(buf[:trimNewline(s, buf)]), c
}

// GotoNum implements spec.md §4.5: advance each side until a number in
// the selected column of some line equals the rule's tag literal (or the
// value named by GotoReg). A `equ` rule over the full column range is
// just goto_line on that literal; otherwise each side is scanned with a
// disposable sub-engine that compares the candidate line's numbers
// against the fixed target text, avoiding the buffer-aliasing dance the
// source's single ndiff_gotoNum implementation used for both directions
// (spec.md's Design Notes recommend exactly this split).
func (e *Engine) GotoNum(r *rule.Rule) int {
	target := r.Tag
	if r.Flags.Has(rule.FlagGotoReg) {
		target = strconv.FormatFloat(e.reg.Get(r.GotoReg, 0), 'g', -1, 64)
	}

	if r.Tolerance.Has(rule.TolEqual) && r.Col.IsFull() {
		rr := *r
		rr.Tag = target
		return e.GotoLine(&rr)
	}

	scratch := *r
	scratch.Tag = target
	scratch.Flags = (scratch.Flags | rule.FlagNoFail) &^ rule.FlagOnFail

	c1, i1, line1 := e.seekLineWithNum(e.lhsSrc, target, &scratch, false)
	c2, i2, line2 := e.seekLineWithNum(e.rhsSrc, target, &scratch, true)

	e.resetBuf()
	e.grow(len(line1) + 1)
	e.grow(len(line2) + 1)
	e.lhsLen = copy(e.lhsBuf, line1)
	e.rhsLen = copy(e.rhsBuf, line2)
	e.lhsI, e.rhsI = 0, 0

	e.colI = 0
	if i1 < i2 {
		e.rowI += i1
	} else {
		e.rowI += i2
	}
	return eofStatus(c1, c2)
}

// seekLineWithNum reads whole lines from src, testing each against
// target with a throwaway sub-engine, until r's selected column matches
// or EOF. When swap is true, target plays the lhs role and the scanned
// line plays rhs, matching the two independent passes ndiff_gotoNum
// makes.
func (e *Engine) seekLineWithNum(src LineSource, target string, r *rule.Rule, swap bool) (int, int, string) {
	n := 0
	line, c := "", 0
	for {
		line, c = readWholeLine(src)
		n++

		var sub *Engine
		if swap {
			sub = New(NewStringSource(target), NewStringSource(line), e.ctx, minAlloc, e.reg.Len())
		} else {
			sub = New(NewStringSource(line), NewStringSource(target), e.ctx, minAlloc, e.reg.Len())
		}
		sub.reg = e.reg
		sub.SetOptions(e.opts)
		sub.ReadLine()

		if sub.matchColumn(r) {
			return c, n, line
		}
		if c == eof {
			return c, n, line
		}
	}
}

// matchColumn runs next_num/test_num over one already-loaded line pair,
// returning true the first time a number in r's column slice tests equal
// (TestNum returns 0), skipping numbers outside the slice by advancing
// past their parsed span without touching registers.
func (e *Engine) matchColumn(r *rule.Rule) bool {
	for {
		col := e.NextNum(r)
		if col == 0 {
			return false
		}
		if r.Col.IsElement(col) {
			if e.TestNum(r) == 0 {
				return true
			}
			continue
		}
		p1 := numparse.ParseNumber(e.lhsBuf[e.lhsI:e.lhsLen])
		p2 := numparse.ParseNumber(e.rhsBuf[e.rhsI:e.rhsLen])
		e.lhsI += p1.Len
		e.rhsI += p2.Len
	}
}
