// Package loopcall detects single-row store lookups inside loops.
package loopcall

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports per-item store lookups that have a batch counterpart.
var Analyzer = &analysis.Analyzer{
	Name:     "loopcall",
	Doc:      "detects single-row store lookups inside loops that should use the batch form",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// batched maps a single-row lookup to the call that should replace it.
// An empty value means no batch form exists yet and the loop should be
// restructured instead.
var batched = map[string]string{
	// PersonDirectory
	"FindPerson": "FindPeople",
	// LinkStore
	"GetLink":                "",
	"ListMyParentChildLinks": "ListAllParentChildLinks",
	"ListMyCoupleLinks":      "ListAllCoupleLinks",
	// AuditLog
	"FindAuditLog": "FindAuditLogByAction",
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		var body *ast.BlockStmt
		switch stmt := n.(type) {
		case *ast.RangeStmt:
			body = stmt.Body
		case *ast.ForStmt:
			body = stmt.Body
		}
		if body == nil {
			return
		}

		ast.Inspect(body, func(n ast.Node) bool {
			// Closures defined in the loop run later, if at all.
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}

			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			name := sel.Sel.Name
			alt, ok := batched[name]
			if !ok {
				return true
			}
			if alt == "" {
				pass.Reportf(call.Pos(), "%s called inside loop - load once before the loop", name)
			} else {
				pass.Reportf(call.Pos(), "%s called inside loop - use %s", name, alt)
			}
			return true
		})
	})

	return nil, nil
}
