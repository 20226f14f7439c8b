package config

import (
	"strings"
	"testing"

	"numdiff/internal/rule"
)

func TestParseBasicSections(t *testing.T) {
	src := `# a comment
[default]
tol = abs
abs = 1e-6

[rule]
col = 2-4
tol = rel
rel = 0.01
`
	secs, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(secs) != 2 {
		t.Fatalf("got %d sections, want 2", len(secs))
	}
	if secs[0].Name != "default" || secs[0].Vars["abs"] != "1e-6" {
		t.Fatalf("unexpected default section: %+v", secs[0])
	}
	if secs[1].Vars["col"] != "2-4" {
		t.Fatalf("unexpected rule section: %+v", secs[1])
	}
}

func TestParseRejectsMissingHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("tol = abs\n"))
	if err == nil {
		t.Fatal("expected an error for a statement before any section header")
	}
}

func TestParseRejectsDuplicateVar(t *testing.T) {
	src := "[rule]\ntol = abs\ntol = rel\n"
	_, err := Parse(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected an error for a duplicated variable name")
	}
}

func TestLoadBuildsContextWithDefaultFirst(t *testing.T) {
	src := `[default]
tol = equ

[rule]
start = 3
col = 1-2
tol = abs
abs = 0.5
flags = onfail
`
	ctx, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	r := ctx.GetIncremental(1, 1)
	if !r.Tolerance.Has(rule.TolEqual) {
		t.Fatalf("row 1 should still see the default equ rule, got %+v", r)
	}

	r = ctx.GetIncremental(3, 1)
	if !r.Tolerance.Has(rule.TolAbs) || !r.Flags.Has(rule.FlagOnFail) {
		t.Fatalf("row 3 col 1 should see the abs rule, got %+v", r)
	}

	r = ctx.GetIncremental(3, 5)
	if !r.Tolerance.Has(rule.TolEqual) {
		t.Fatalf("row 3 col 5 is outside the abs rule's column slice, want default, got %+v", r)
	}
}

func TestLoadDefaultsMissingDefaultSection(t *testing.T) {
	ctx, err := Load(strings.NewReader("[rule]\ncol=1\ntol=abs\nabs=1\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := ctx.GetIncremental(1, 2)
	if !r.Tolerance.Has(rule.TolEqual) {
		t.Fatalf("expected an implicit equ/full-column default, got %+v", r)
	}
}

func TestParseColumnSliceForms(t *testing.T) {
	cases := []struct {
		in   string
		want rule.ColumnSlice
	}{
		{"*", rule.FullColumn()},
		{"3", rule.ColumnSlice{From: 3, To: 3, Stride: 1}},
		{"2-4", rule.ColumnSlice{From: 2, To: 4, Stride: 1}},
		{"2-8/2", rule.ColumnSlice{From: 2, To: 8, Stride: 2}},
	}
	for _, c := range cases {
		got, err := parseColumnSlice(c.in)
		if err != nil {
			t.Fatalf("parseColumnSlice(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("parseColumnSlice(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParseOps(t *testing.T) {
	ops, err := parseOps("10=1 add 2;11=10 mul 3")
	if err != nil {
		t.Fatalf("parseOps: %v", err)
	}
	if len(ops) != 2 || ops[0].Dst != 10 || ops[1].Src != 10 {
		t.Fatalf("unexpected ops: %+v", ops)
	}
}
