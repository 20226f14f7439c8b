package engine

import (
	"numdiff/internal/numparse"
	"numdiff/internal/rule"
)

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }
func isBlankByte(b byte) bool { return b == ' ' || b == '\t' }

// NextNum implements spec.md §4.6's next_num: advance both buffer
// cursors in lockstep to the first byte of the next pair of numeric
// spans, or report a text-level difference, or signal end of line.
//
// Returns 0 at end-of-line or on a reported text diff (colI is reset to
// 0 in both cases); otherwise the new 1-based colI.
func (e *Engine) NextNum(r *rule.Rule) int {
	if e.IsEmpty() {
		return e.quitStr()
	}

	i, j := e.lhsI, e.rhsI

retry:
	if r.Flags.Has(rule.FlagIStr) {
		for i < e.lhsLen && !isDigitByte(e.lhsBuf[i]) {
			i++
		}
		for j < e.rhsLen && !isDigitByte(e.rhsBuf[j]) {
			j++
		}
	} else {
		for e.lhsByte(i) != 0 && e.lhsByte(i) == e.rhsByte(j) && !isDigitByte(e.lhsByte(i)) {
			i++
			j++
		}
		if e.opts.Blank && (isBlankByte(e.lhsByte(i)) || isBlankByte(e.rhsByte(j))) {
			for isBlankByte(e.lhsByte(i)) {
				i++
			}
			for isBlankByte(e.rhsByte(j)) {
				j++
			}
			goto retry
		}
	}

	// end of line
	if e.lhsByte(i) == 0 && e.rhsByte(j) == 0 {
		e.lhsI, e.rhsI = i, j
		return e.quitStr()
	}

	// difference in non-numeric text
	if e.lhsByte(i) != e.rhsByte(j) &&
		(!numparse.IsNumber(e.lhsBuf[i:e.lhsLen]) || !numparse.IsNumber(e.rhsBuf[j:e.rhsLen])) {
		e.lhsI, e.rhsI = i+1, j+1
		e.reportTextDiff(r)
		return e.quitStrAt(i+1, j+1)
	}

	// backtrack to the true start of each numeric span
	li := numparse.BacktrackNumber(e.lhsBuf[:e.lhsLen], i)
	rj := numparse.BacktrackNumber(e.rhsBuf[:e.rhsLen], j)

	if !numparse.IsNumberStart(e.lhsBuf[:e.lhsLen], li, e.opts.KeptPunctuation) ||
		!numparse.IsNumberStart(e.rhsBuf[:e.rhsLen], rj, e.opts.KeptPunctuation) {

		if r.Flags.Has(rule.FlagIStr) {
			if !numparse.IsNumberStart(e.lhsBuf[:e.lhsLen], li, e.opts.KeptPunctuation) {
				li = e.skipToSeparator(e.lhsBuf, e.lhsLen, li)
			}
			if !numparse.IsNumberStart(e.rhsBuf[:e.rhsLen], rj, e.opts.KeptPunctuation) {
				rj = e.skipToSeparator(e.rhsBuf, e.rhsLen, rj)
			}
			i, j = li, rj
			goto retry
		}

		strict := true
		if r.Flags.Has(rule.FlagOmit) {
			strict = !isValidOmit(e.lhsBuf, e.rhsBuf, li, rj, r.Tag)
		}
		if strict {
			li, rj = e.skipIdentifierStrict(li, rj)
		} else {
			// omit test passed: advance each side independently to its
			// own next separator, rather than in lockstep, since the
			// identifiers themselves are allowed to differ.
			li = e.skipToSeparator(e.lhsBuf, e.lhsLen, li)
			rj = e.skipToSeparator(e.rhsBuf, e.rhsLen, rj)
		}
		i, j = li, rj
		goto retry
	}

	// numbers found
	e.lhsI, e.rhsI = li, rj
	e.numI++
	e.colI++
	return e.colI
}

func (e *Engine) skipToSeparator(buf []byte, length, p int) int {
	for p < length && !numparse.IsSeparator(buf[p], e.opts.KeptPunctuation) {
		p++
	}
	if p >= length {
		return length
	}
	return p
}

// skipIdentifierStrict advances both cursors together while their bytes
// match and neither is a separator (spec.md §4.6 step 6's "skip-in-
// lockstep the matching identifier prefix"); if the identifiers
// themselves differ this leaves cursors positioned so the *next* call
// re-detects the mismatch as a text diff, exactly like the source.
func (e *Engine) skipIdentifierStrict(li, rj int) (int, int) {
	for e.byteAt(e.lhsBuf, e.lhsLen, li) == e.byteAt(e.rhsBuf, e.rhsLen, rj) &&
		!numparse.IsSeparator(e.byteAt(e.lhsBuf, e.lhsLen, li), e.opts.KeptPunctuation) {
		li++
		rj++
	}
	return li, rj
}

func (e *Engine) byteAt(buf []byte, length, p int) byte {
	if p < length {
		return buf[p]
	}
	return 0
}

// isValidOmit implements spec.md §4.6's omit test: walk backward from
// li/rj across len(tag) bytes, requiring each to equal the corresponding
// tag byte on *both* sides. Faithfully preserves the source's quirk of
// returning true if the buffer start is reached before the tag is fully
// walked, rather than treating that as a failed match.
func isValidOmit(lhsBuf, rhsBuf []byte, li, rj int, tag string) bool {
	p := len(tag)
	for {
		p--
		li--
		rj--
		if p < 0 || li < 0 || rj < 0 {
			return true
		}
		if tag[p] != lhsBuf[li] || tag[p] != rhsBuf[rj] {
			return false
		}
	}
}

func (e *Engine) quitStr() int {
	e.colI = 0
	return 0
}

func (e *Engine) quitStrAt(li, rj int) int {
	e.lhsI, e.rhsI = li, rj
	e.colI = 0
	return 0
}
