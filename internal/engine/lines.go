package engine

import (
	"fmt"
	"io"
)

// EOF status codes returned by the four line-acquisition operations
// (spec.md §4.3). SkipLine, ReadLine and FillLine each reset buffer
// cursors to 0 and advance row_i by one (FillLine is caller-driven and
// still advances row_i once per call to match the source's
// ndiff_fillLine); OutLine only writes the held pair and changes neither.
const (
	StatusOK = iota
	StatusEOF
)

// SkipLine discards one logical line from each side without filling the
// buffers.
func (e *Engine) SkipLine() int {
	e.resetBuf()
	c1 := e.lhsSrc.SkipLine()
	c2 := e.rhsSrc.SkipLine()
	e.colI = 0
	e.rowI++
	return eofStatus(c1, c2)
}

// FillLine injects pre-made content into both buffers, used by tests
// (spec.md §4.3).
func (e *Engine) FillLine(lhs, rhs string) int {
	e.resetBuf()
	need := len(lhs) + 1
	if l := len(rhs) + 1; l > need {
		need = l
	}
	e.grow(need)
	e.lhsLen = copy(e.lhsBuf, lhs)
	e.rhsLen = copy(e.rhsBuf, rhs)
	e.colI = 0
	e.rowI++
	return StatusOK // never fails, matching the source
}

// ReadLine fills both buffers from their line sources, growing on
// demand, stopping at newline or EOF independently on each side.
func (e *Engine) ReadLine() int {
	e.resetBuf()

	var c1, c2 int
	s1, s2 := 0, 0
	done1, done2 := false, false
	for {
		if !done1 {
			var n int
			c1, n = e.lhsSrc.ReadLine(e.lhsBuf[s1:])
			s1 += n
			done1 = c1 == '\n' || c1 == eof
		}
		if !done2 {
			var n2 int
			c2, n2 = e.rhsSrc.ReadLine(e.rhsBuf[s2:])
			s2 += n2
			done2 = c2 == '\n' || c2 == eof
		}
		if done1 && done2 {
			break
		}
		e.grow(2 * len(e.lhsBuf))
	}

	e.lhsLen = trimNewline(s1, e.lhsBuf)
	e.rhsLen = trimNewline(s2, e.rhsBuf)
	e.colI = 0
	e.rowI++

	return eofStatus(c1, c2)
}

func trimNewline(n int, buf []byte) int {
	if n > 0 && buf[n-1] == '\n' {
		return n - 1
	}
	return n
}

// OutLine echoes the currently-held pair to optional output sinks; the
// driver calls this after a row that produced no diffs, as an optional
// echo of matching lines (spec.md §4.3, §1's Non-goals: "no reformatting
// of output beyond optional echo of matching lines").
func (e *Engine) OutLine(lhsOut, rhsOut io.Writer) int {
	status := StatusOK
	if lhsOut != nil {
		if _, err := fmt.Fprintf(lhsOut, "%s\n", e.lhsBuf[:e.lhsLen]); err != nil {
			status = StatusEOF
		}
	}
	if rhsOut != nil {
		if _, err := fmt.Fprintf(rhsOut, "%s\n", e.rhsBuf[:e.rhsLen]); err != nil {
			status = StatusEOF
		}
	}
	return status
}

func eofStatus(c1, c2 int) int {
	if c1 == eof || c2 == eof {
		return StatusEOF
	}
	return StatusOK
}
