package numparse

import "testing"

func TestIsNumber(t *testing.T) {
	cases := map[string]bool{
		"1":     true,
		"-1":    true,
		"+1":    true,
		" 1":    true,
		".5":    true,
		"-.5":   true,
		"e5":    false,
		"":      false,
		"-":     false,
		".":     false,
		"foo":   false,
		"-.foo": false,
	}
	for s, want := range cases {
		if got := IsNumber([]byte(s)); got != want {
			t.Errorf("IsNumber(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestParseNumberBasic(t *testing.T) {
	cases := []struct {
		in      string
		wantLen int
		digits  int
		isFloat bool
	}{
		{"123", 3, 3, false},
		{"-123", 4, 3, false},
		{"+007", 4, 1, false},
		{"3.1415926", 9, 8, true},
		{"-3.14", 5, 3, true},
		{".5", 2, 1, true},
		{"0.001", 5, 1, true},
		{"1e10", 4, 1, true},
		{"1E-10", 5, 1, true},
		{"1.5e+3", 6, 2, true},
		{"42", 2, 2, false},
		{"abc", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, c := range cases {
		p := ParseNumber([]byte(c.in))
		if p.Len != c.wantLen {
			t.Errorf("ParseNumber(%q).Len = %d, want %d", c.in, p.Len, c.wantLen)
		}
		if p.Len > 0 && p.Digits != c.digits {
			t.Errorf("ParseNumber(%q).Digits = %d, want %d", c.in, p.Digits, c.digits)
		}
		if p.IsFloat != c.isFloat {
			t.Errorf("ParseNumber(%q).IsFloat = %v, want %v", c.in, p.IsFloat, c.isFloat)
		}
	}
}

func TestParseNumberExponentRollback(t *testing.T) {
	// "1e" with nothing after the marker: exponent is invalid, roll back
	// to the point form and stop before the 'e'.
	buf := []byte("1efoo")
	p := ParseNumber(buf)
	if p.Len != 1 {
		t.Fatalf("ParseNumber(%q).Len = %d, want 1 (exponent should roll back)", buf, p.Len)
	}
	if p.IsFloat {
		t.Fatalf("ParseNumber(%q).IsFloat = true, want false after rollback", buf)
	}
}

func TestParseNumberRewritesDToE(t *testing.T) {
	buf := []byte("1d10")
	p := ParseNumber(buf)
	if p.Len != 4 || !p.IsFloat {
		t.Fatalf("ParseNumber(%q) = %+v, want Len=4 IsFloat=true", buf, p)
	}
	if buf[1] != 'e' {
		t.Fatalf("exponent marker not rewritten in place: %q", buf)
	}
}

func TestParseNumberIdempotent(t *testing.T) {
	// depends only on the bytes, not on any external state
	in := "2.71828"
	a := ParseNumber([]byte(in))
	b := ParseNumber([]byte(in))
	if a != b {
		t.Fatalf("ParseNumber not idempotent: %+v != %+v", a, b)
	}
}

func TestBacktrackNumber(t *testing.T) {
	cases := []struct {
		buf  string
		p    int
		want int
	}{
		{"-1.5", 3, 2}, // pointing at digit '5': one step back over '.', stops at '.' (the sign is two bytes away)
		{"-.5", 1, 0},  // pointing at '.', backtrack over sign
		{"+5", 1, 0},   // pointing at digit, backtrack over sign
		{"5", 0, 0},    // already at start
	}
	for _, c := range cases {
		got := BacktrackNumber([]byte(c.buf), c.p)
		if got != c.want {
			t.Errorf("BacktrackNumber(%q, %d) = %d, want %d", c.buf, c.p, got, c.want)
		}
	}
}

func TestBacktrackNumberOnlyStepsOneNeighbor(t *testing.T) {
	// pointing at '5' in "-1.5" backtracks over '.' only, landing on '.',
	// not all the way to '-', which is not adjacent to the dot.
	buf := []byte("-1.5")
	p := BacktrackNumber(buf, 3) // at '5'
	if buf[p] != '.' {
		t.Fatalf("digit preceded by '.' should step back onto the dot only: got index %d (%q)", p, buf[p])
	}
}

func TestIsNumberStart(t *testing.T) {
	buf := []byte("x=-1.5")
	if !IsNumberStart(buf, 2, "") { // at '-'
		t.Errorf("sign should always be a number start")
	}
	if IsNumberStart(buf, 3, "-") { // at '1', preceded by '-', which is kept, so not a separator
		t.Errorf("digit preceded by a kept sign (not separator) should not be a bare number start")
	}
	if !IsNumberStart(buf, 0, "") {
		t.Errorf("start of buffer is always a number start")
	}
}

func TestIsSeparator(t *testing.T) {
	if !IsSeparator(0, "") {
		t.Errorf("NUL must be a separator")
	}
	if !IsSeparator(' ', "") {
		t.Errorf("space must be a separator")
	}
	if IsSeparator('_', "_") {
		t.Errorf("'_' should not be a separator when kept")
	}
	if !IsSeparator('_', "") {
		t.Errorf("'_' should be a separator when not kept (it's punctuation)")
	}
	if IsSeparator('a', "") {
		t.Errorf("letters are never separators")
	}
}
