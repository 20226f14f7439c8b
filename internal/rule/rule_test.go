package rule

import (
	"testing"

	"numdiff/internal/register"
)

func TestColumnSliceFullMatchesEverything(t *testing.T) {
	c := FullColumn()
	for _, col := range []int{1, 2, 1000} {
		if !c.IsElement(col) {
			t.Errorf("FullColumn should match column %d", col)
		}
	}
}

func TestColumnSliceRangeAndStride(t *testing.T) {
	c := ColumnSlice{From: 2, To: 8, Stride: 2}
	want := map[int]bool{1: false, 2: true, 3: false, 4: true, 8: true, 9: false, 10: false}
	for col, ok := range want {
		if got := c.IsElement(col); got != ok {
			t.Errorf("IsElement(%d) = %v, want %v", col, got, ok)
		}
	}
}

func TestColumnSliceUnboundedTo(t *testing.T) {
	c := ColumnSlice{From: 3, To: 0, Stride: 1}
	if c.IsElement(2) {
		t.Error("column 2 is below From, should not match")
	}
	if !c.IsElement(1000) {
		t.Error("To=0 means unbounded, column 1000 should match")
	}
}

func TestToleranceHasAndAny(t *testing.T) {
	t1 := TolAbs | TolRel
	if !t1.Has(TolAbs) {
		t.Error("Has(TolAbs) should be true")
	}
	if t1.Has(TolAbs | TolDig) {
		t.Error("Has should require every requested bit")
	}
	if !t1.Any(TolDig | TolRel) {
		t.Error("Any should be true when at least one bit overlaps")
	}
	if t1.Any(TolDig | TolEqual) {
		t.Error("Any should be false with no overlap")
	}
}

func TestBoundResolveUsesRegisterWhenSet(t *testing.T) {
	reg := register.New(register.MinCount)
	reg.Set(10, 3.5)

	literal := Bound{Literal: 1.0}
	if got := literal.Resolve(reg); got != 1.0 {
		t.Errorf("literal bound resolved to %v, want 1.0", got)
	}

	fromReg := Bound{Literal: 1.0, Reg: 10}
	if got := fromReg.Resolve(reg); got != 3.5 {
		t.Errorf("register-backed bound resolved to %v, want 3.5", got)
	}
}

func TestNegBoundForMirrorsWhenSharingARegister(t *testing.T) {
	reg := register.New(register.MinCount)
	reg.Set(10, 2.0)

	upper := Bound{Literal: 99, Reg: 10}
	lower := Bound{Literal: -1, Reg: 10}
	up, lo := NegBoundFor(reg, upper, lower)
	if up != 2.0 || lo != -2.0 {
		t.Errorf("NegBoundFor = (%v, %v), want (2, -2) when both bounds share a register", up, lo)
	}
}

func TestNegBoundForResolvesIndependentlyOtherwise(t *testing.T) {
	upper := Bound{Literal: 5}
	lower := Bound{Literal: -1}
	reg := register.New(register.MinCount)
	up, lo := NegBoundFor(reg, upper, lower)
	if up != 5 || lo != -1 {
		t.Errorf("NegBoundFor = (%v, %v), want (5, -1)", up, lo)
	}
}

func TestListContextRequiresNonEmptyRules(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected NewListContext to panic on an empty rule list")
		}
	}()
	NewListContext(nil, nil, nil)
}

func TestListContextMatchesHighestEligibleRule(t *testing.T) {
	def := &Rule{Index: 1, Col: FullColumn()}
	scoped := &Rule{Index: 2, Col: ColumnSlice{From: 2, To: 4, Stride: 1}}
	ctx := NewListContext([]*Rule{def, scoped}, []int{0, 3}, nil)

	if got := ctx.GetIncremental(1, 2); got != def {
		t.Errorf("row 1 col 2 should still see the default before row 3, got %+v", got)
	}
	if got := ctx.GetIncremental(3, 2); got != scoped {
		t.Errorf("row 3 col 2 should see the scoped rule, got %+v", got)
	}
	if got := ctx.GetIncremental(3, 9); got != def {
		t.Errorf("row 3 col 9 is outside the scoped rule's columns, want default, got %+v", got)
	}
}

func TestListContextGetAtAgreesWithGetIncremental(t *testing.T) {
	def := &Rule{Index: 1, Col: FullColumn()}
	scoped := &Rule{Index: 2, Col: ColumnSlice{From: 2, To: 4, Stride: 1}}
	ctx := NewListContext([]*Rule{def, scoped}, []int{0, 3}, nil)

	// advance the incremental cursor past row 3, then confirm GetAt
	// still answers correctly for an earlier row without moving it back.
	ctx.GetIncremental(5, 1)
	if got := ctx.GetAt(1, 2); got != def {
		t.Errorf("GetAt(1,2) = %+v, want default rule", got)
	}
	if got := ctx.GetAt(3, 2); got != scoped {
		t.Errorf("GetAt(3,2) = %+v, want scoped rule", got)
	}
}

func TestListContextOnFailInvokesCallback(t *testing.T) {
	called := false
	def := &Rule{Index: 1, Col: FullColumn()}
	ctx := NewListContext([]*Rule{def}, []int{0}, func(r *Rule) { called = true })
	ctx.OnFail(def)
	if !called {
		t.Error("OnFail should invoke the configured callback")
	}
}
