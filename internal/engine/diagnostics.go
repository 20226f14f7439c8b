package engine

import (
	json "github.com/goccy/go-json"

	"numdiff/internal/rule"
	"numdiff/internal/status"
)

// HeaderInfo names the two files (and, optionally, a test-id label) that
// the one-shot diagnostic header identifies (spec.md §6, ndiff_header in
// original_source/src/ndiff.c).
type HeaderInfo struct {
	LhsPath, RhsPath string
	TestID           string
}

// Diagnostic is the structured record spec.md §4.7 step 8 asks for: file
// column range, offending substrings, which metric failed, the bounds,
// the actual abs/rel/dig values, the rule index, and the rule's source
// line. It is what -json mode (internal/engine's goccy/go-json path)
// encodes one-per-line; the text warnings are still printed as well.
type Diagnostic struct {
	Kind        string  `json:"kind"` // "text" | "missing" | "number"
	Seq         int     `json:"seq"`
	Row         int     `json:"row"`
	Col         int     `json:"col,omitempty"`
	LhsCol      int     `json:"lhs_col"`
	RhsCol      int     `json:"rhs_col"`
	LhsText     string  `json:"lhs_text"`
	RhsText     string  `json:"rhs_text"`
	Failed      string  `json:"failed,omitempty"`
	RuleIndex   int     `json:"rule_index"`
	RuleLine    int     `json:"rule_line"`
	AbsErr      float64 `json:"abs_err,omitempty"`
	RelErr      float64 `json:"rel_err,omitempty"`
	DigErr      float64 `json:"dig_err,omitempty"`
	LowerBound  float64 `json:"lower_bound,omitempty"`
	UpperBound  float64 `json:"upper_bound,omitempty"`
}

// Diagnostics owns the engine's two diagnostic sinks (spec.md §6):
// warning, counted against Options.Keep, and an optional structured JSON stream
// alongside it.
type Diagnostics struct {
	log         status.Logger
	header      HeaderInfo
	headerDone  bool
	suppressHdr bool
	jsonEnc     *json.Encoder
	record      bool
	records     []Diagnostic
}

// NewDiagnostics builds a Diagnostics sink writing text warnings through
// log. Call EnableJSON to also stream structured records.
func NewDiagnostics(log status.Logger) *Diagnostics {
	return &Diagnostics{log: log}
}

// SetHeader configures the one-shot header text and resets whether it
// has been printed yet, for reuse across multiple comparison runs.
func (e *Engine) SetHeader(info HeaderInfo) {
	e.diags.header = info
	e.diags.headerDone = false
}

// SuppressHeader prevents the one-shot header from printing even on the
// first diff; used when a HeaderCache (fingerprint.go) has already seen
// this exact file pair in an earlier run of the same test-harness loop.
func (e *Engine) SuppressHeader(suppress bool) {
	e.diags.suppressHdr = suppress
}

// EnableJSON switches the diagnostic sink to also emit one Diagnostic
// per reported failure as a JSON line via goccy/go-json, in addition to
// the text warning; the text warnings are not suppressed.
func (e *Engine) EnableJSON(enc *json.Encoder) {
	e.diags.jsonEnc = enc
}

// EnableRecording makes the engine retain every emitted Diagnostic in
// memory (in addition to whatever text/JSON sinks are active), for
// callers such as -plot that need the full set after the run completes.
func (e *Engine) EnableRecording() {
	e.diags.record = true
}

// Diagnostics returns every record collected since EnableRecording was
// called, in emission order.
func (e *Engine) Diagnostics() []Diagnostic {
	return e.diags.records
}

func (d *Diagnostics) maybeHeader() {
	if d.headerDone || d.suppressHdr {
		return
	}
	d.headerDone = true
	if d.header.TestID != "" {
		d.log.Warningf("(*) files '%s'|'%s' from '%s' differ", d.header.LhsPath, d.header.RhsPath, d.header.TestID)
	} else {
		d.log.Warningf("(*) files '%s'|'%s' differ", d.header.LhsPath, d.header.RhsPath)
	}
}

func (d *Diagnostics) emitJSON(rec Diagnostic) {
	if d.jsonEnc != nil {
		_ = d.jsonEnc.Encode(rec)
	}
	if d.record {
		d.records = append(d.records, rec)
	}
}

// reportTextDiff implements the "difference in not-a-number" branch of
// spec.md §4.6 step 4.
func (e *Engine) reportTextDiff(r *rule.Rule) {
	if r.Flags.Has(rule.FlagNoFail) {
		if r.Flags.Has(rule.FlagOnFail) {
			e.ctx.OnFail(r)
		}
		return
	}
	e.cntI++
	if e.cntI <= e.opts.Keep {
		e.diags.maybeHeader()
		e.log.Warningf("(%d) files differ at line %d and char-columns %d|%d",
			e.cntI, e.rowI, e.lhsI, e.rhsI)
		e.log.Warningf("(%d) strings: '%s'|'%s'", e.cntI, snippet(e.lhsBuf, e.lhsLen, e.lhsI), snippet(e.rhsBuf, e.rhsLen, e.rhsI))
		e.diags.emitJSON(Diagnostic{
			Kind: "text", Seq: e.cntI, Row: e.rowI,
			LhsCol: e.lhsI, RhsCol: e.rhsI,
			LhsText: string(e.lhsBuf[:e.lhsLen]), RhsText: string(e.rhsBuf[:e.rhsLen]),
			RuleIndex: e.ctx.FindIndex(r), RuleLine: e.ctx.FindLine(r),
		})
	}
	if r.Flags.Has(rule.FlagOnFail) {
		e.ctx.OnFail(r)
	}
}

func (e *Engine) reportMissingNumber(r *rule.Rule, np numPair) {
	if r.Flags.Has(rule.FlagNoFail) {
		if r.Flags.Has(rule.FlagOnFail) {
			e.ctx.OnFail(r)
		}
		return
	}
	e.cntI++
	if e.cntI <= e.opts.Keep {
		e.diags.maybeHeader()
		e.log.Warningf("(%d) files differ at line %d column %d: one number is missing", e.cntI, e.rowI, e.colI)
		e.diags.emitJSON(Diagnostic{
			Kind: "missing", Seq: e.cntI, Row: e.rowI, Col: e.colI,
			LhsText: string(np.lhsSpan), RhsText: string(np.rhsSpan),
			RuleIndex: e.ctx.FindIndex(r), RuleLine: e.ctx.FindLine(r),
		})
	}
	if r.Flags.Has(rule.FlagOnFail) {
		e.ctx.OnFail(r)
	}
}

func (e *Engine) reportNumDiff(r *rule.Rule, ret rule.Tolerance, np numPair) {
	if r.Flags.Has(rule.FlagNoFail) {
		if r.Flags.Has(rule.FlagOnFail) {
			e.ctx.OnFail(r)
		}
		return
	}
	e.cntI++
	if e.cntI <= e.opts.Keep {
		e.diags.maybeHeader()
		lhsText := string(np.lhsSpan[:np.p1.Len])
		rhsText := string(np.rhsSpan[:np.p2.Len])
		e.log.Warningf("(%d) files differ at line %d column %d between char-columns %d|%d and %d|%d",
			e.cntI, e.rowI, e.colI, e.lhsI+1, e.rhsI+1, e.lhsI+1+np.p1.Len, e.rhsI+1+np.p2.Len)
		e.log.Warningf("(%d) numbers: '%s'|'%s'", e.cntI, lhsText, rhsText)

		failed := ""
		var lo, hi float64
		switch {
		case ret&rule.TolEqual != 0:
			failed = "equ"
			e.log.Warningf("(%d) numbers strict representation differ", e.cntI)
		default:
			if ret&rule.TolAbs != 0 {
				failed += "abs"
				upper, lower := rule.NegBoundFor(e.reg, r.Abs, r.NegAbs)
				lo, hi = lower, upper
				e.log.Warningf("(%d) absolute error (rule #%d, line %d: %.2g<=abs<=%.2g) abs=%.2g, rel=%.2g",
					e.cntI, e.ctx.FindIndex(r), e.ctx.FindLine(r), lower, upper, np.absD, np.relD)
			}
			if ret&rule.TolRel != 0 {
				failed += "rel"
				upper, lower := rule.NegBoundFor(e.reg, r.Rel, r.NegRel)
				lo, hi = lower, upper
				e.log.Warningf("(%d) relative error (rule #%d, line %d: %.2g<=rel<=%.2g) abs=%.2g, rel=%.2g",
					e.cntI, e.ctx.FindIndex(r), e.ctx.FindLine(r), lower, upper, np.absD, np.relD)
			}
			if ret&rule.TolDig != 0 {
				failed += "dig"
				upper, lower := rule.NegBoundFor(e.reg, r.Dig, r.NegDig)
				lo, hi = lower, upper
				e.log.Warningf("(%d) numdigit error (rule #%d, line %d: %.2g<=dig<=%.2g) abs=%.2g, rel=%.2g",
					e.cntI, e.ctx.FindIndex(r), e.ctx.FindLine(r), lower*np.powD, upper*np.powD, np.absD, np.relD)
			}
		}

		e.diags.emitJSON(Diagnostic{
			Kind: "number", Seq: e.cntI, Row: e.rowI, Col: e.colI,
			LhsCol: e.lhsI + 1, RhsCol: e.rhsI + 1,
			LhsText: lhsText, RhsText: rhsText, Failed: failed,
			RuleIndex: e.ctx.FindIndex(r), RuleLine: e.ctx.FindLine(r),
			AbsErr: np.absD, RelErr: np.relD, DigErr: np.digD,
			LowerBound: lo, UpperBound: hi,
		})
	}
	if r.Flags.Has(rule.FlagOnFail) {
		e.ctx.OnFail(r)
	}
}

func snippet(buf []byte, length, from int) string {
	const maxLen = 25
	end := from + maxLen
	if end > length {
		end = length
	}
	if from > end {
		from = end
	}
	return string(buf[from:end])
}
