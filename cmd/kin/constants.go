package main

// Output formats.
var (
	validTreeFormats   = []string{"tree", "list", "json"}
	validExportFormats = []string{"json", "csv", "markdown"}
)
