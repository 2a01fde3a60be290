// Package parsers provides parsers for importing person rosters and profile
// documents from various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

// RawPerson represents a person parsed from an external source before validation.
type RawPerson struct {
	NumeroH       string `json:"numeroH" yaml:"numeroH"`
	Prenom        string `json:"prenom" yaml:"prenom"`
	NomFamille    string `json:"nomFamille,omitempty" yaml:"nomFamille,omitempty"`
	Genre         string `json:"genre,omitempty" yaml:"genre,omitempty"`
	DateNaissance string `json:"dateNaissance,omitempty" yaml:"dateNaissance,omitempty"`
	DateDeces     string `json:"dateDeces,omitempty" yaml:"dateDeces,omitempty"`
	Photo         string `json:"photo,omitempty" yaml:"photo,omitempty"`
	Generation    string `json:"generation,omitempty" yaml:"generation,omitempty"`

	entities.DeclaredRelatives `yaml:",inline"`

	LineNum int `json:"-" yaml:"-"` // Line number in source file (set by parser)
}

// Parser defines the interface for parsing person rosters from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawPerson, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv", "yaml".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	case "yaml", "yml":
		return &YAMLParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return nil
	}
	return ForFormat(ext)
}
