// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ersonp/kinship-core/internal/domain/ports"
	"github.com/ersonp/kinship-core/internal/infrastructure/config"
)

// DatabaseOpener opens the relational database stored at path.
type DatabaseOpener func(path string) (ports.RelationalDB, error)

// InitHandler handles database initialization.
type InitHandler struct {
	open DatabaseOpener
}

// NewInitHandler creates a new init handler.
func NewInitHandler(open DatabaseOpener) *InitHandler {
	return &InitHandler{
		open: open,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath   string
	DatabasePath string
}

// Handle writes the default config under basePath and creates the database schema.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("kin already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dbPath := cfg.DatabasePath(basePath)
	if err := h.EnsureDatabase(ctx, dbPath); err != nil {
		return nil, err
	}

	return &InitResult{
		ConfigPath:   config.ConfigFilePath(basePath),
		DatabasePath: dbPath,
	}, nil
}

// EnsureDatabase creates the database at path, with its parent directory and
// schema, if missing.
func (h *InitHandler) EnsureDatabase(ctx context.Context, path string) error {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := h.open(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
