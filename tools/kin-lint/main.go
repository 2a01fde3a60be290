// kin-lint is a custom static analyzer for kinship-core storage access patterns.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ersonp/kinship-core/tools/kin-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
