package handlers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/services"
	"github.com/ersonp/kinship-core/internal/infrastructure/parsers"
)

// ImportHandler loads person rosters from files into the directory.
type ImportHandler struct {
	roster *services.RosterService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(roster *services.RosterService) *ImportHandler {
	return &ImportHandler{roster: roster}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format     string                    // "json", "csv", "yaml" or "auto"
	DryRun     bool                      // Validate without saving
	OnConflict services.ConflictStrategy // Empty means skip
}

// ImportResult reports what happened to each roster row.
type ImportResult struct {
	Rows     int // rows read from the file
	Imported int
	Skipped  int
	Errors   []services.ImportError
}

// Handle imports the roster at filePath. Request problems such as an
// unknown format or strategy are ErrValidation and are reported before the
// file is read. A missing file is ErrNotFound.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*ImportResult, error) {
	parser, err := rosterParser(filePath, opts)
	if err != nil {
		return nil, err
	}

	rows, err := readRoster(filePath, parser)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &ImportResult{}, nil
	}

	imported, err := h.roster.Import(ctx, rows, services.ImportOptions{
		DryRun:     opts.DryRun,
		OnConflict: opts.OnConflict,
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Rows:     len(rows),
		Imported: imported.Imported,
		Skipped:  imported.Skipped,
		Errors:   imported.Errors,
	}, nil
}

// rosterParser checks an import request and picks the parser for it.
func rosterParser(filePath string, opts ImportOptions) (parsers.Parser, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("%w: roster file path is required", entities.ErrValidation)
	}
	if opts.OnConflict != "" && !opts.OnConflict.IsValid() {
		return nil, fmt.Errorf("%w: invalid conflict strategy %q (valid: skip, overwrite)",
			entities.ErrValidation, opts.OnConflict)
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format != "" && format != "auto" {
		parser := parsers.ForFormat(format)
		if parser == nil {
			return nil, fmt.Errorf("%w: unsupported format %q (valid: json, csv, yaml)", entities.ErrValidation, opts.Format)
		}
		return parser, nil
	}

	parser := parsers.ForFile(filePath)
	if parser == nil {
		return nil, fmt.Errorf("%w: unsupported format for file %s (name it .json, .csv or .yaml, or pass a format)",
			entities.ErrValidation, filePath)
	}
	return parser, nil
}

func readRoster(filePath string, parser parsers.Parser) ([]parsers.RawPerson, error) {
	file, err := os.Open(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: opening file %s", entities.ErrNotFound, filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory, not a roster file", entities.ErrValidation, filePath)
	}

	rows, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return rows, nil
}
