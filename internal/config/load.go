package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"numdiff/internal/register"
	"numdiff/internal/rule"
)

// flagNames maps a rule file's flag= list entries to rule.Flag bits.
var flagNames = map[string]rule.Flag{
	"ignore":     rule.FlagIgnore,
	"omit":       rule.FlagOmit,
	"istr":       rule.FlagIStr,
	"any":        rule.FlagAny,
	"nofail":     rule.FlagNoFail,
	"onfail":     rule.FlagOnFail,
	"lhs-lit":    rule.FlagLhsLit,
	"rhs-lit":    rule.FlagRhsLit,
	"swap":       rule.FlagSwap,
	"save":       rule.FlagSave,
	"start-group": rule.FlagStartGroup,
	"goto-reg":   rule.FlagGotoReg,
	"trace":      rule.FlagTrace,
	"tracer":     rule.FlagTraceR,
}

var actionNames = map[string]rule.Action{
	"compare":  rule.ActionCompare,
	"skip":     rule.ActionSkip,
	"goto-tag": rule.ActionGotoTag,
	"goto-num": rule.ActionGotoNum,
}

var opNames = map[string]register.Op{
	"add": register.OpAdd,
	"sub": register.OpSub,
	"mul": register.OpMul,
	"div": register.OpDiv,
	"min": register.OpMin,
	"max": register.OpMax,
	"pow": register.OpPow,
}

// Load parses a rule file and returns the rule list plus a
// rule.NewListContext built from it. The first [default] section (or, if
// absent, an implicit equ/full-column default) becomes the first rule
// (Index 1); every [rule] section follows it in file order.
func Load(r io.Reader) (*rule.ListContext, error) {
	sections, err := Parse(r)
	if err != nil {
		return nil, err
	}

	var rules []*rule.Rule
	var starts []int
	haveDefault := false

	for _, sec := range sections {
		switch sec.Name {
		case "default":
			if haveDefault {
				return nil, fmt.Errorf("line %d: more than one [default] section", sec.Line)
			}
			haveDefault = true
			ru, err := parseRule(sec, len(rules)+1)
			if err != nil {
				return nil, err
			}
			ru.Col = rule.FullColumn()
			rules = append([]*rule.Rule{ru}, rules...)
			starts = append([]int{0}, starts...)
		case "rule":
			ru, err := parseRule(sec, len(rules)+1)
			if err != nil {
				return nil, err
			}
			start := 0
			if v, ok := sec.Vars["start"]; ok {
				start, err = strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad start=%q: %w", sec.Line, v, err)
				}
			}
			rules = append(rules, ru)
			starts = append(starts, start)
		default:
			return nil, fmt.Errorf("line %d: unknown section [%s]", sec.Line, sec.Name)
		}
	}

	if !haveDefault {
		def := &rule.Rule{
			Col:       rule.FullColumn(),
			Action:    rule.ActionCompare,
			Tolerance: rule.TolEqual,
		}
		rules = append([]*rule.Rule{def}, rules...)
		starts = append([]int{0}, starts...)
	}

	// Index reflects final list order (default first), so an explicit
	// [default] section appearing after some [rule] sections still gets
	// index 1.
	for i, ru := range rules {
		ru.Index = i + 1
	}

	return rule.NewListContext(rules, starts, nil), nil
}

func parseRule(sec Section, index int) (*rule.Rule, error) {
	ru := &rule.Rule{Index: index, Line: sec.Line, Col: rule.FullColumn()}

	if v, ok := sec.Vars["action"]; ok {
		a, ok := actionNames[v]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown action %q", sec.Line, v)
		}
		ru.Action = a
	}

	if v, ok := sec.Vars["col"]; ok {
		c, err := parseColumnSlice(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", sec.Line, err)
		}
		ru.Col = c
	}

	for _, name := range splitList(sec.Vars["tol"]) {
		switch name {
		case "equ":
			ru.Tolerance |= rule.TolEqual
		case "abs":
			ru.Tolerance |= rule.TolAbs
		case "rel":
			ru.Tolerance |= rule.TolRel
		case "dig":
			ru.Tolerance |= rule.TolDig
		default:
			return nil, fmt.Errorf("line %d: unknown tol %q", sec.Line, name)
		}
	}

	for _, name := range splitList(sec.Vars["flags"]) {
		f, ok := flagNames[name]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown flag %q", sec.Line, name)
		}
		ru.Flags |= f
	}

	var err error
	if ru.Abs, ru.NegAbs, err = parseBoundPair(sec, "abs"); err != nil {
		return nil, err
	}
	if ru.Rel, ru.NegRel, err = parseBoundPair(sec, "rel"); err != nil {
		return nil, err
	}
	if ru.Dig, ru.NegDig, err = parseBoundPair(sec, "dig"); err != nil {
		return nil, err
	}
	if ru.Scale, err = parseBound(sec, "scale", 1); err != nil {
		return nil, err
	}
	if ru.Offset, err = parseBound(sec, "offset", 0); err != nil {
		return nil, err
	}

	if v, ok := sec.Vars["lhs"]; ok {
		ru.Lhs, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad lhs=%q: %w", sec.Line, v, err)
		}
		ru.Flags |= rule.FlagLhsLit
	}
	if v, ok := sec.Vars["rhs"]; ok {
		ru.Rhs, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad rhs=%q: %w", sec.Line, v, err)
		}
		ru.Flags |= rule.FlagRhsLit
	}
	if v, ok := sec.Vars["lhs-reg"]; ok {
		if ru.LhsReg, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("line %d: bad lhs-reg=%q: %w", sec.Line, v, err)
		}
	}
	if v, ok := sec.Vars["rhs-reg"]; ok {
		if ru.RhsReg, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("line %d: bad rhs-reg=%q: %w", sec.Line, v, err)
		}
	}
	if v, ok := sec.Vars["goto-reg"]; ok {
		if ru.GotoReg, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("line %d: bad goto-reg=%q: %w", sec.Line, v, err)
		}
	}

	ru.Tag = sec.Vars["tag"]

	if v, ok := sec.Vars["ops"]; ok {
		ru.Ops, err = parseOps(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", sec.Line, err)
		}
	}

	return ru, nil
}

// parseBoundPair reads "name" and "neg-name" into a two-sided Bound
// pair, defaulting the negative side to the mirror of the positive side
// (spec.md §4.6's "lower = -upper when only a single bound register is
// configured") when neg-name is absent but name is present.
func parseBoundPair(sec Section, name string) (upper, lower rule.Bound, err error) {
	upper, err = parseBound(sec, name, 0)
	if err != nil {
		return
	}
	if _, ok := sec.Vars["neg-"+name]; ok {
		lower, err = parseBound(sec, "neg-"+name, 0)
		return
	}
	lower = rule.Bound{Literal: -upper.Literal, Reg: upper.Reg}
	return
}

func parseBound(sec Section, name string, def float64) (rule.Bound, error) {
	v, ok := sec.Vars[name]
	if !ok {
		return rule.Bound{Literal: def}, nil
	}
	if strings.HasPrefix(v, "$") {
		reg, err := strconv.Atoi(v[1:])
		if err != nil {
			return rule.Bound{}, fmt.Errorf("line %d: bad register reference %q for %s: %w", sec.Line, v, name, err)
		}
		return rule.Bound{Reg: reg}, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return rule.Bound{}, fmt.Errorf("line %d: bad %s=%q: %w", sec.Line, name, v, err)
	}
	return rule.Bound{Literal: f}, nil
}

// parseColumnSlice parses "*" (full), "N" (single element) or
// "FROM-TO[/STRIDE]" into a rule.ColumnSlice.
func parseColumnSlice(v string) (rule.ColumnSlice, error) {
	v = strings.TrimSpace(v)
	if v == "*" || v == "" {
		return rule.FullColumn(), nil
	}
	stride := 1
	if i := strings.Index(v, "/"); i >= 0 {
		s, err := strconv.Atoi(v[i+1:])
		if err != nil {
			return rule.ColumnSlice{}, fmt.Errorf("bad stride in col=%q: %w", v, err)
		}
		stride = s
		v = v[:i]
	}
	if i := strings.Index(v, "-"); i >= 0 {
		from, err := strconv.Atoi(v[:i])
		if err != nil {
			return rule.ColumnSlice{}, fmt.Errorf("bad col=%q: %w", v, err)
		}
		to := 0
		if v[i+1:] != "" {
			if to, err = strconv.Atoi(v[i+1:]); err != nil {
				return rule.ColumnSlice{}, fmt.Errorf("bad col=%q: %w", v, err)
			}
		}
		return rule.ColumnSlice{From: from, To: to, Stride: stride}, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return rule.ColumnSlice{}, fmt.Errorf("bad col=%q: %w", v, err)
	}
	return rule.ColumnSlice{From: n, To: n, Stride: 1}, nil
}

// parseOps parses a ";"-separated list of "dst=src op src2" entries, e.g.
// "10=1 add 2;11=10 mul 3".
func parseOps(v string) ([]rule.RegOp, error) {
	var ops []rule.RegOp
	for _, entry := range strings.Split(v, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		eq := strings.Index(entry, "=")
		if eq < 0 {
			return nil, fmt.Errorf("bad op entry %q: missing '='", entry)
		}
		dst, err := strconv.Atoi(strings.TrimSpace(entry[:eq]))
		if err != nil {
			return nil, fmt.Errorf("bad op entry %q: %w", entry, err)
		}
		fields := strings.Fields(entry[eq+1:])
		if len(fields) != 3 {
			return nil, fmt.Errorf("bad op entry %q: want \"src op src2\"", entry)
		}
		src, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("bad op entry %q: %w", entry, err)
		}
		op, ok := opNames[fields[1]]
		if !ok {
			return nil, fmt.Errorf("bad op entry %q: unknown operator %q", entry, fields[1])
		}
		src2, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("bad op entry %q: %w", entry, err)
		}
		ops = append(ops, rule.RegOp{Dst: dst, Src: src, Src2: src2, Op: op})
	}
	return ops, nil
}
