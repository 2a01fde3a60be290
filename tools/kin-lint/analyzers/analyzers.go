// Package analyzers provides all custom static analyzers for kinship-core.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/ersonp/kinship-core/tools/kin-lint/analyzers/loopcall"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		loopcall.Analyzer,
	}
}
