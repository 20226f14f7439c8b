// numdiff-gen compiles a rule file into a static Go source file: a
// literal []*rule.Rule table plus a generated constructor returning a
// rule.ListContext over it,
// avoiding the file-parsing and regexp-matching cost of internal/config
// at comparison time. Grounded on the jennifer code-generation style
// (regengo's compiler package builds a jen.File the same statement-by-
// statement way, rather than templating text).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dave/jennifer/jen"

	"numdiff/internal/config"
	"numdiff/internal/rule"
)

func main() {
	rulesPath := flag.String("rules", "", "Path to the rule file to compile")
	outPath := flag.String("out", "", "Path to write the generated .go file")
	pkgName := flag.String("pkg", "rules", "Package name for the generated file")
	varName := flag.String("var", "Rules", "Exported identifier for the generated context")
	flag.Parse()

	if *rulesPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "numdiff-gen: -rules and -out are required")
		os.Exit(2)
	}

	f, err := os.Open(*rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "numdiff-gen: %s\n", err)
		os.Exit(1)
	}
	ctx, err := config.Load(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "numdiff-gen: %s\n", err)
		os.Exit(1)
	}

	out := jen.NewFile(*pkgName)
	out.HeaderComment("Code generated by numdiff-gen from " + *rulesPath + ". DO NOT EDIT.")
	out.ImportName("numdiff/internal/rule", "rule")

	out.Var().Id(*varName + "Rules").Op("=").Index().Op("*").Qual("numdiff/internal/rule", "Rule").Values(
		ruleValues(ctx.Rules())...,
	)
	out.Var().Id(*varName + "Starts").Op("=").Index().Int().Values(intLits(ctx.Starts())...)

	out.Func().Id("New" + *varName).Params().Op("*").Qual("numdiff/internal/rule", "ListContext").Block(
		jen.Return(jen.Qual("numdiff/internal/rule", "NewListContext").Call(
			jen.Id(*varName+"Rules"),
			jen.Id(*varName+"Starts"),
			jen.Nil(),
		)),
	)

	if err := out.Save(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "numdiff-gen: writing %s: %s\n", *outPath, err)
		os.Exit(1)
	}
}

func intLits(vs []int) []jen.Code {
	out := make([]jen.Code, len(vs))
	for i, v := range vs {
		out[i] = jen.Lit(v)
	}
	return out
}

func ruleValues(rs []*rule.Rule) []jen.Code {
	out := make([]jen.Code, len(rs))
	for i, r := range rs {
		out[i] = jen.Op("&").Qual("numdiff/internal/rule", "Rule").Values(jen.Dict{
			jen.Id("Index"):     jen.Lit(r.Index),
			jen.Id("Line"):      jen.Lit(r.Line),
			jen.Id("Action"):    jen.Lit(int(r.Action)),
			jen.Id("Tolerance"): jen.Lit(uint8(r.Tolerance)),
			jen.Id("Flags"):     jen.Lit(uint32(r.Flags)),
			jen.Id("Col"): jen.Qual("numdiff/internal/rule", "ColumnSlice").Values(jen.Dict{
				jen.Id("Full"):   jen.Lit(r.Col.Full),
				jen.Id("From"):   jen.Lit(r.Col.From),
				jen.Id("To"):     jen.Lit(r.Col.To),
				jen.Id("Stride"): jen.Lit(r.Col.Stride),
			}),
			jen.Id("Abs"):    boundValue(r.Abs),
			jen.Id("NegAbs"): boundValue(r.NegAbs),
			jen.Id("Rel"):    boundValue(r.Rel),
			jen.Id("NegRel"): boundValue(r.NegRel),
			jen.Id("Dig"):    boundValue(r.Dig),
			jen.Id("NegDig"): boundValue(r.NegDig),
			jen.Id("Scale"):  boundValue(r.Scale),
			jen.Id("Offset"): boundValue(r.Offset),
			jen.Id("Lhs"):    jen.Lit(r.Lhs),
			jen.Id("Rhs"):    jen.Lit(r.Rhs),
			jen.Id("LhsReg"): jen.Lit(r.LhsReg),
			jen.Id("RhsReg"): jen.Lit(r.RhsReg),
			jen.Id("Tag"):     jen.Lit(r.Tag),
			jen.Id("GotoReg"): jen.Lit(r.GotoReg),
			jen.Id("Ops"):     opsValue(r.Ops),
		})
	}
	return out
}

func opsValue(ops []rule.RegOp) jen.Code {
	if len(ops) == 0 {
		return jen.Nil()
	}
	items := make([]jen.Code, len(ops))
	for i, op := range ops {
		items[i] = jen.Qual("numdiff/internal/rule", "RegOp").Values(jen.Dict{
			jen.Id("Dst"):  jen.Lit(op.Dst),
			jen.Id("Src"):  jen.Lit(op.Src),
			jen.Id("Src2"): jen.Lit(op.Src2),
			jen.Id("Op"):   jen.Lit(int(op.Op)),
		})
	}
	return jen.Index().Qual("numdiff/internal/rule", "RegOp").Values(items...)
}

func boundValue(b rule.Bound) jen.Code {
	return jen.Qual("numdiff/internal/rule", "Bound").Values(jen.Dict{
		jen.Id("Literal"): jen.Lit(b.Literal),
		jen.Id("Reg"):     jen.Lit(b.Reg),
	})
}
