// Command cscriptgen writes the symbol tables that make Go packages
// resolvable by type resolution. Its output is a Go file declaring a variable
// of type interp.Exports to pass to Registry.Use.
//
// Usage:
//
//	cscriptgen -pkg game -var Symbols -o symbols.go ./entities ./world
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/constant"
	"go/format"
	"go/types"
	"os"
	"regexp"
	"sort"

	"golang.org/x/tools/go/packages"
)

func main() {
	var match, ignore, pkgName, varName, out string
	flag.StringVar(&match, "match", ".", "include only symbols matching this regular expression")
	flag.StringVar(&ignore, "ignore", "$^", "exclude symbols matching this regular expression")
	flag.StringVar(&pkgName, "pkg", "main", "package name of the generated file")
	flag.StringVar(&varName, "var", "Symbols", "name of the generated variable")
	flag.StringVar(&out, "o", "", "output file (default standard output)")
	flag.Parse()
	mre, err := regexp.Compile(match)
	if err != nil {
		fail("error compiling match:", err)
	}
	ire, err := regexp.Compile(ignore)
	if err != nil {
		fail("error compiling ignore:", err)
	}
	if flag.NArg() == 0 {
		fail("no packages named")
	}

	config := packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(&config, flag.Args()...)
	if err != nil {
		fail("error loading packages:", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		os.Exit(1)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	syms := make([][]symbol, len(pkgs))
	for i, pkg := range pkgs {
		syms[i] = find(pkg.Types.Scope(), mre, ire)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by cscriptgen. DO NOT EDIT.\n\npackage %s\n\nimport (\n\t\"reflect\"\n\n\t\"github.com/traefik/yaegi/interp\"\n\n", pkgName)
	for i, pkg := range pkgs {
		if len(syms[i]) > 0 {
			fmt.Fprintf(&b, "\tp%d %q\n", i, pkg.PkgPath)
		}
	}
	fmt.Fprintf(&b, ")\n\n// %s are the exported symbols of the generated packages.\nvar %s = interp.Exports{\n", varName, varName)
	for i, pkg := range pkgs {
		if len(syms[i]) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\t%q: {\n", pkg.PkgPath+"/"+pkg.Name)
		for _, sym := range syms[i] {
			fmt.Fprintf(&b, "\t\t%q: %s,\n", sym.name, sym.expr(fmt.Sprintf("p%d", i)))
		}
		b.WriteString("\t},\n")
	}
	b.WriteString("}\n")

	src, err := format.Source(b.Bytes())
	if err != nil {
		fail("error formatting output:", err)
	}
	if out == "" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(out, src, 0o644); err != nil {
		fail("error writing output:", err)
	}
}

func fail(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

type symbolKind int

const (
	typeSymbol symbolKind = iota
	funcSymbol
	varSymbol
	constSymbol
)

type symbol struct {
	name string
	kind symbolKind
	// conv is the conversion applied to untyped constants.
	conv string
}

// expr returns the expression producing the symbol's reflect.Value in the
// shape yaegi uses: types as nil pointers, variables as addressable values.
func (s symbol) expr(pkg string) string {
	q := pkg + "." + s.name
	switch s.kind {
	case typeSymbol:
		return fmt.Sprintf("reflect.ValueOf((*%s)(nil))", q)
	case varSymbol:
		return fmt.Sprintf("reflect.ValueOf(&%s).Elem()", q)
	case constSymbol:
		if s.conv != "" {
			return fmt.Sprintf("reflect.ValueOf(%s(%s))", s.conv, q)
		}
	}
	return fmt.Sprintf("reflect.ValueOf(%s)", q)
}

// find lists the exported, non-generic symbols in a package scope.
func find(scope *types.Scope, mre, ire *regexp.Regexp) []symbol {
	var r []symbol
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if !obj.Exported() || !mre.MatchString(name) || ire.MatchString(name) {
			continue
		}
		switch obj := obj.(type) {
		case *types.TypeName:
			if named, ok := obj.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
				continue
			}
			r = append(r, symbol{name: name, kind: typeSymbol})
		case *types.Func:
			if obj.Type().(*types.Signature).TypeParams().Len() > 0 {
				continue
			}
			r = append(r, symbol{name: name, kind: funcSymbol})
		case *types.Var:
			r = append(r, symbol{name: name, kind: varSymbol})
		case *types.Const:
			s, ok := constSym(obj)
			if ok {
				r = append(r, s)
			}
		}
	}
	return r
}

// constSym describes a constant. Untyped constants are converted to their
// default type, and integers which do not fit in it are skipped.
func constSym(obj *types.Const) (symbol, bool) {
	s := symbol{name: obj.Name(), kind: constSymbol}
	basic, ok := obj.Type().(*types.Basic)
	if !ok || basic.Info()&types.IsUntyped == 0 {
		return s, true
	}
	def := types.Default(basic).(*types.Basic)
	if def.Info()&types.IsInteger != 0 {
		if _, exact := constant.Int64Val(obj.Val()); !exact {
			return s, false
		}
		s.conv = "int64"
		return s, true
	}
	s.conv = def.Name()
	return s, true
}
