package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ersonp/kinship-core/internal/application/handlers"
	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/ports"
	"github.com/ersonp/kinship-core/internal/domain/services"
	"github.com/ersonp/kinship-core/internal/infrastructure/config"
	"github.com/ersonp/kinship-core/internal/infrastructure/logging"
	"github.com/ersonp/kinship-core/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	Families      *config.FamiliesConfig
	Logger        *slog.Logger
	Actor         entities.Actor
	LinkHandler   *handlers.LinkHandler
	PersonHandler *handlers.PersonHandler
	TreeHandler   *handlers.TreeHandler
	ImportHandler *handlers.ImportHandler

	// root is the registered root numeroH of the selected family, if any.
	root string
}

// internalDeps holds all dependencies including low-level components.
type internalDeps struct {
	Deps
	relationalDB *sqlite.Repository
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	return withInternalDeps(ctx, func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
func withInternalDeps(ctx context.Context, fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	families, err := config.LoadFamilies(cwd)
	if err != nil {
		return fmt.Errorf("loading families: %w", err)
	}

	logCfg := cfg.Log
	if globalLogLevel != "" {
		logCfg.Level = globalLogLevel
	}
	logger, err := logging.New(logCfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	dbPath := cfg.DatabasePath(cwd)
	var root string
	if globalFamily != "" {
		entry, err := families.Get(globalFamily)
		if err != nil {
			return err
		}
		dbPath = config.SQLitePathForFamily(cwd, globalFamily)
		root = entry.Root
	}

	relationalDB, err := sqlite.NewRepository(config.SQLiteConfig{Path: dbPath})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()

	if err := relationalDB.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	logger.DebugContext(ctx, "database opened", "path", dbPath, "family", globalFamily)

	linkService := services.NewLinkService(relationalDB, relationalDB, logger)
	profileService := services.NewProfileService(relationalDB, relationalDB)
	rosterService := services.NewRosterService(relationalDB)

	deps := &internalDeps{
		Deps: Deps{
			Config:        cfg,
			Families:      families,
			Logger:        logger,
			Actor:         resolveActor(cfg.Caller, globalAs, globalAdmin),
			LinkHandler:   handlers.NewLinkHandler(linkService),
			PersonHandler: handlers.NewPersonHandler(relationalDB),
			TreeHandler:   handlers.NewTreeHandler(profileService),
			ImportHandler: handlers.NewImportHandler(rosterService),
			root:          root,
		},
		relationalDB: relationalDB,
	}

	return fn(deps)
}

// withLinkHandler provides the LinkHandler together with the acting caller.
func withLinkHandler(ctx context.Context, fn func(*handlers.LinkHandler, entities.Actor) error) error {
	return withDeps(ctx, func(d *Deps) error {
		return fn(d.LinkHandler, d.Actor)
	})
}

// withRelationalDB provides direct relational database access.
func withRelationalDB(ctx context.Context, fn func(ports.RelationalDB) error) error {
	return withInternalDeps(ctx, func(d *internalDeps) error {
		return fn(d.relationalDB)
	})
}

// resolveActor applies the --as and --admin flags over the configured caller.
func resolveActor(caller config.CallerConfig, as string, admin bool) entities.Actor {
	actor := entities.Actor{
		NumeroH: entities.NormalizeNumeroH(caller.NumeroH),
		Admin:   caller.Admin,
	}
	if strings.TrimSpace(as) != "" {
		actor.NumeroH = entities.NormalizeNumeroH(as)
	}
	if admin {
		actor.Admin = true
	}
	return actor
}

// subject picks whose tree a command works on: the explicit argument, then
// the caller, then the selected family's root.
func (d *Deps) subject(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return entities.NormalizeNumeroH(args[0])
	}
	if d.Actor.NumeroH != "" {
		return d.Actor.NumeroH
	}
	return d.root
}

// openSQLite opens a SQLite database as a RelationalDB.
func openSQLite(path string) (ports.RelationalDB, error) {
	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	if err != nil {
		return nil, err
	}
	return repo, nil
}
