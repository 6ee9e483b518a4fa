// Package defaultclient implements an analyzer forbidding the net/http package-level client.
package defaultclient

import (
	"go/ast"
	"go/types"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports uses of http.Get, http.Post, http.PostForm, http.Head and
// http.DefaultClient. Outgoing requests must go through a client with a timeout.
var Analyzer = &analysis.Analyzer{
	Name: "defaultclient",
	Doc:  "forbid the net/http default client and its helpers",
	Run:  run,
}

var forbidden = map[string]bool{
	"Get":           true,
	"Post":          true,
	"PostForm":      true,
	"Head":          true,
	"DefaultClient": true,
}

func run(pass *analysis.Pass) (any, error) {
	for _, f := range pass.Files {
		fn := pass.Fset.Position(f.Pos()).Filename
		if strings.Contains(fn, "/.cache/go-build/") || isGenerated(f) || importsTesting(f) {
			continue
		}

		ast.Inspect(f, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok || !forbidden[sel.Sel.Name] {
				return true
			}
			id, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}
			pkgName, ok := pass.TypesInfo.Uses[id].(*types.PkgName)
			if !ok || pkgName.Imported().Path() != "net/http" {
				return true
			}
			pass.Reportf(sel.Pos(), "http.%s uses the default client without a timeout; use an *http.Client", sel.Sel.Name)
			return true
		})
	}
	return nil, nil
}

func isGenerated(f *ast.File) bool {
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if strings.Contains(c.Text, "Code generated") && strings.Contains(c.Text, "DO NOT EDIT") {
				return true
			}
		}
	}
	return false
}

func importsTesting(f *ast.File) bool {
	for _, im := range f.Imports {
		if p, _ := strconv.Unquote(im.Path.Value); p == "testing" {
			return true
		}
	}
	return false
}
