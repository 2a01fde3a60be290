package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship-core/internal/application/handlers"
	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/infrastructure/config"
	"github.com/ersonp/kinship-core/internal/infrastructure/relationaldb/sqlite"
)

type familyCreateFlags struct {
	description string
	root        string
}

func newFamilyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "family",
		Short: "Manage named family databases",
		Long: `Each family keeps its persons and links in its own database under
.kin/families/. Select one with the global --family flag.`,
		RunE: runFamilyList,
	}

	cmd.AddCommand(
		newFamilyListCmd(),
		newFamilyCreateCmd(),
		newFamilyDeleteCmd(),
	)

	return cmd
}

func newFamilyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all families",
		RunE:  runFamilyList,
	}
}

func runFamilyList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	families, err := config.LoadFamilies(cwd)
	if err != nil {
		return fmt.Errorf("loading families: %w", err)
	}

	printFamilies(os.Stdout, families)
	return nil
}

func printFamilies(w io.Writer, families *config.FamiliesConfig) {
	if len(families.Families) == 0 {
		fmt.Fprintln(w, "No families configured.")
		fmt.Fprintln(w, "Use 'kin family create NAME' to create a family.")
		return
	}

	fmt.Fprintf(w, "%-20s %-12s %s\n", "NAME", "ROOT", "DESCRIPTION")
	fmt.Fprintf(w, "%-20s %-12s %s\n", "----", "----", "-----------")
	for _, name := range families.Names() {
		entry := families.Families[name]
		fmt.Fprintf(w, "%-20s %-12s %s\n", name, entry.Root, entry.Description)
	}
}

func newFamilyCreateCmd() *cobra.Command {
	var flags familyCreateFlags

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new family database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFamilyCreate(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.description, "description", "d", "", "Family description")
	cmd.Flags().StringVar(&flags.root, "root", "", "numeroH the family tree is drawn from by default")

	return cmd
}

func runFamilyCreate(ctx context.Context, name string, flags familyCreateFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if !config.Exists(cwd) {
		if err := config.WriteDefault(cwd); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		fmt.Printf("Initialized kin in %s\n", config.ConfigDir(cwd))
	}

	entry := config.FamilyEntry{
		Description: flags.description,
		Root:        entities.NormalizeNumeroH(flags.root),
	}
	if err := addFamily(cwd, name, entry); err != nil {
		return err
	}

	dbPath := config.SQLitePathForFamily(cwd, name)
	if err := handlers.NewInitHandler(openSQLite).EnsureDatabase(ctx, dbPath); err != nil {
		return fmt.Errorf("creating family database: %w", err)
	}

	fmt.Printf("Created family %q with database %s\n", name, dbPath)

	return nil
}

func newFamilyDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a family and its database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFamilyDelete(cmd.Context(), args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if the family has persons")

	return cmd
}

func runFamilyDelete(ctx context.Context, name string, force bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	families, err := config.LoadFamilies(cwd)
	if err != nil {
		return fmt.Errorf("loading families: %w", err)
	}
	if !families.Exists(name) {
		return fmt.Errorf("family %q not found", name)
	}

	if !force {
		count, err := countFamilyPeople(ctx, config.SQLitePathForFamily(cwd, name))
		if err == nil && count > 0 {
			return fmt.Errorf("family %q contains %d persons, use --force to delete", name, count)
		}
	}

	if err := removeFamily(cwd, name); err != nil {
		return err
	}

	fmt.Printf("Deleted family %q\n", name)

	return nil
}

// addFamily registers a family. Names must stay distinct after sanitizing
// since the sanitized form names the database directory.
func addFamily(basePath, name string, entry config.FamilyEntry) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("family name is required")
	}

	families, err := config.LoadFamilies(basePath)
	if err != nil {
		return fmt.Errorf("loading families: %w", err)
	}

	if families.Exists(name) {
		return fmt.Errorf("family %q already exists", name)
	}
	dir := config.SanitizeFamilyName(name)
	for _, existing := range families.Names() {
		if config.SanitizeFamilyName(existing) == dir {
			return fmt.Errorf("family %q would share storage with existing family %q", name, existing)
		}
	}

	families.Add(name, entry)
	if err := families.Save(basePath); err != nil {
		return fmt.Errorf("saving families: %w", err)
	}
	return nil
}

// removeFamily drops a family's database directory and its registry entry.
func removeFamily(basePath, name string) error {
	families, err := config.LoadFamilies(basePath)
	if err != nil {
		return fmt.Errorf("loading families: %w", err)
	}

	if err := os.RemoveAll(config.FamilyDir(basePath, name)); err != nil {
		return fmt.Errorf("removing family database: %w", err)
	}

	families.Remove(name)
	if err := families.Save(basePath); err != nil {
		return fmt.Errorf("saving families: %w", err)
	}
	return nil
}

func countFamilyPeople(ctx context.Context, path string) (int, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}

	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	return repo.CountPeople(ctx)
}
