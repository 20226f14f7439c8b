package rule

import (
	"fmt"
	"io"
)

// Context is the engine's rule lookup collaborator (spec.md §2, §3).
// GetIncremental is expected to be called with (row, col) strictly
// non-decreasing across a single comparison run; it may advance internal
// state to make that lookup cheap. GetAt must answer the identical
// question purely, without advancing anything, so the driver's Check
// mode can cross-validate the two.
type Context interface {
	GetIncremental(row, col int) *Rule
	GetAt(row, col int) *Rule
	OnFail(r *Rule)

	// FindIndex and FindLine support diagnostics: given a rule this
	// context returned, report its 1-based position in the configured
	// rule list and the line it was defined on in the configuration
	// source. Both come straight off the Rule's own Index/Line fields
	// in every context this package builds, but the seam lets a rule
	// context backed by something other than a flat list answer
	// differently.
	FindIndex(r *Rule) int
	FindLine(r *Rule) int

	Print(w io.Writer)
}

// ListContext is the default Context: an ordered list of rules, each
// optionally scoped to start applying at a given row, matched against
// (row, col) by scanning from the highest-index rule whose StartRow has
// been reached backward for the first one whose Col slice contains col.
// This is the reference rule-lookup strategy internal/config builds from
// a parsed rule file; nothing in internal/engine depends on this being
// the only possible Context implementation.
type ListContext struct {
	rules []*Rule
	// starts[i] is the row at which rules[i] becomes eligible to match;
	// parallel to rules and expected to be non-decreasing (NewListContext
	// does not sort or check this order).
	starts []int

	// cursor is the index of the last rule GetIncremental considered
	// eligible; it only ever moves forward, since row is non-decreasing
	// across a single comparison run.
	cursor int

	onFail func(*Rule)
}

// NewListContext builds a Context from rules in configuration order.
// The first rule (index 0) must be a catch-all default (Col.IsFull(),
// StartRow 0) so every (row, col) resolves to something; per spec.md §7
// class 3, a Context that cannot find a matching rule is an invariant
// violation the driver treats as fatal, and this constructor is the one
// place that guarantee is easiest to enforce.
func NewListContext(rules []*Rule, startRows []int, onFail func(*Rule)) *ListContext {
	if len(rules) == 0 {
		panic("rule.NewListContext: at least one (default) rule is required")
	}
	if len(startRows) != len(rules) {
		panic("rule.NewListContext: startRows must be parallel to rules")
	}
	if !rules[0].Col.IsFull() || startRows[0] != 0 {
		panic("rule.NewListContext: the first rule must be a full-column default starting at row 0")
	}
	return &ListContext{rules: rules, starts: startRows, onFail: onFail}
}

func (c *ListContext) match(row, col, fromIdx int) *Rule {
	for i := fromIdx; i >= 0; i-- {
		if c.starts[i] > row {
			continue
		}
		if c.rules[i].Col.IsElement(col) {
			return c.rules[i]
		}
	}
	return nil
}

// GetIncremental advances the cursor to the last rule eligible at row,
// then returns the highest-index eligible rule whose column slice
// contains col.
func (c *ListContext) GetIncremental(row, col int) *Rule {
	for c.cursor+1 < len(c.rules) && c.starts[c.cursor+1] <= row {
		c.cursor++
	}
	return c.match(row, col, c.cursor)
}

// GetAt answers the same question as GetIncremental without touching
// the cursor, by scanning from the full rule list every time.
func (c *ListContext) GetAt(row, col int) *Rule {
	idx := len(c.rules) - 1
	for idx > 0 && c.starts[idx] > row {
		idx--
	}
	return c.match(row, col, idx)
}

func (c *ListContext) OnFail(r *Rule) {
	if c.onFail != nil {
		c.onFail(r)
	}
}

// Rules and Starts expose the underlying rule list and their start rows,
// in configuration order, for tools that need to inspect or re-emit the
// configuration rather than just query it (cmd/numdiff-gen's codegen).
func (c *ListContext) Rules() []*Rule { return c.rules }
func (c *ListContext) Starts() []int  { return c.starts }

func (c *ListContext) FindIndex(r *Rule) int { return r.Index }
func (c *ListContext) FindLine(r *Rule) int  { return r.Line }

func (c *ListContext) Print(w io.Writer) {
	for i, r := range c.rules {
		fmt.Fprintf(w, "[#%d] line %d, start-row %d, cols=%+v, action=%d, tolerance=%08b, flags=%032b\n",
			i, r.Line, c.starts[i], r.Col, r.Action, r.Tolerance, r.Flags)
	}
}
