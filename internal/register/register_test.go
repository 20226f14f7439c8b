package register

import (
	"math"
	"testing"
)

func TestGetSetDefault(t *testing.T) {
	f := New(10)
	if got := f.Get(5, 42); got != 0 {
		t.Fatalf("unset in-range register: got %v, want zero-initialized 0", got)
	}
	f.Set(5, 3.5)
	if got := f.Get(5, 42); got != 3.5 {
		t.Fatalf("got %v, want 3.5", got)
	}
}

func TestGetSetOutOfRange(t *testing.T) {
	f := New(10)
	f.Set(0, 99)  // no-op, index 0 unaddressable
	f.Set(-1, 99) // no-op
	f.Set(1000, 99)
	if got := f.Get(0, 7); got != 7 {
		t.Fatalf("reading index 0 should return default, got %v", got)
	}
}

func TestClampsRegisterCount(t *testing.T) {
	if f := New(1); f.Len() != MinCount {
		t.Fatalf("Len() = %d, want %d", f.Len(), MinCount)
	}
	if f := New(10000); f.Len() != RegMax {
		t.Fatalf("Len() = %d, want %d", f.Len(), RegMax)
	}
}

func TestEvalArithmetic(t *testing.T) {
	f := New(20)
	f.Set(10, 4)
	f.Set(11, 2)

	cases := []struct {
		op   Op
		want float64
	}{
		{OpAdd, 6},
		{OpSub, 2},
		{OpMul, 8},
		{OpDiv, 2},
		{OpMin, 2},
		{OpMax, 4},
		{OpPow, 16},
	}
	for _, c := range cases {
		f.Eval(12, 10, 11, c.op)
		if got := f.Get(12, math.NaN()); got != c.want {
			t.Errorf("op %v: got %v, want %v", c.op, got, c.want)
		}
	}
}

func TestEvalDivisionByZeroIsNotFatal(t *testing.T) {
	f := New(20)
	f.Set(10, 1)
	f.Set(11, 0)
	f.Eval(12, 10, 11, OpDiv)
	if !math.IsInf(f.Get(12, 0), 1) {
		t.Fatalf("1/0 should be +Inf, got %v", f.Get(12, 0))
	}

	f.Set(10, 0)
	f.Eval(12, 10, 11, OpDiv)
	if !math.IsNaN(f.Get(12, 0)) {
		t.Fatalf("0/0 should be NaN, got %v", f.Get(12, 0))
	}
}

func TestClear(t *testing.T) {
	f := New(10)
	f.Set(5, 9)
	f.Clear()
	if got := f.Get(5, -1); got != 0 {
		t.Fatalf("after Clear, Get(5) = %v, want 0", got)
	}
}
