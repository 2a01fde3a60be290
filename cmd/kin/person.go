package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship-core/internal/application/handlers"
	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/services"
)

type personAddFlags struct {
	genre       string
	generation  string
	birth       string
	death       string
	photo       string
	fatherName  string
	fatherID    string
	motherName  string
	motherID    string
	partnerName string
	partnerID   string
}

type importFlags struct {
	format     string
	dryRun     bool
	onConflict string
}

func newPersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Manage person records",
	}

	cmd.AddCommand(
		newPersonAddCmd(),
		newPersonShowCmd(),
		newPersonImportCmd(),
	)

	return cmd
}

func newPersonAddCmd() *cobra.Command {
	var flags personAddFlags

	cmd := &cobra.Command{
		Use:   "add <numeroH> <prenom> [nomFamille]",
		Short: "Add a person",
		Long: `Adds a person record. Declared parents and partner are kept as typed
and fill the tree even before any link is confirmed.

Examples:
  kin person add A1 Amadou Diallo --genre HOMME
  kin person add A1 Amadou Diallo --father-name Ibrahima --father-id P1`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersonAdd(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.genre, "genre", "", "Gender (MALE/HOMME, FEMALE/FEMME, OTHER)")
	cmd.Flags().StringVar(&flags.generation, "generation", "", "Generation label (G<integer>)")
	cmd.Flags().StringVar(&flags.birth, "birth", "", "Birth date")
	cmd.Flags().StringVar(&flags.death, "death", "", "Death date")
	cmd.Flags().StringVar(&flags.photo, "photo", "", "Photo reference")
	cmd.Flags().StringVar(&flags.fatherName, "father-name", "", "Declared father's first name")
	cmd.Flags().StringVar(&flags.fatherID, "father-id", "", "Declared father's numeroH")
	cmd.Flags().StringVar(&flags.motherName, "mother-name", "", "Declared mother's first name")
	cmd.Flags().StringVar(&flags.motherID, "mother-id", "", "Declared mother's numeroH")
	cmd.Flags().StringVar(&flags.partnerName, "partner-name", "", "Declared partner's first name")
	cmd.Flags().StringVar(&flags.partnerID, "partner-id", "", "Declared partner's numeroH")

	return cmd
}

func runPersonAdd(cmd *cobra.Command, args []string, flags personAddFlags) error {
	req := handlers.AddPersonRequest{
		NumeroH:    args[0],
		Prenom:     args[1],
		Genre:      flags.genre,
		Generation: flags.generation,
		BirthDate:  flags.birth,
		DeathDate:  flags.death,
		Photo:      flags.photo,
		Declared: entities.DeclaredRelatives{
			PrenomPere:      flags.fatherName,
			NumeroHPere:     flags.fatherID,
			PrenomMere:      flags.motherName,
			NumeroHMere:     flags.motherID,
			ConjointPrenom:  flags.partnerName,
			ConjointNumeroH: flags.partnerID,
		},
	}
	if len(args) > 2 {
		req.NomFamille = args[2]
	}

	return withDeps(cmd.Context(), func(d *Deps) error {
		person, err := d.PersonHandler.HandleAdd(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("adding person: %w", err)
		}

		fmt.Printf("Added person: %s (%s %s)\n", person.NumeroH, person.Prenom, person.NomFamille)
		return nil
	})
}

func newPersonShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <numeroH>",
		Short: "Show a person record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				person, err := d.PersonHandler.HandleShow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(os.Stdout, person)
				}
				printPerson(os.Stdout, person)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

func printPerson(w io.Writer, p *entities.Person) {
	fmt.Fprintf(w, "%s %s (%s)\n", p.Prenom, p.NomFamille, p.NumeroH)
	printField(w, "Gender", string(p.Genre))
	printField(w, "Generation", p.Generation)
	printField(w, "Born", p.BirthDate)
	printField(w, "Died", p.DeathDate)
	printField(w, "Father", joinNameID(p.Declared.PrenomPere, p.Declared.NumeroHPere))
	printField(w, "Mother", joinNameID(p.Declared.PrenomMere, p.Declared.NumeroHMere))
	printField(w, "Partner", joinNameID(p.Declared.ConjointPrenom, p.Declared.ConjointNumeroH))
	for _, c := range p.Declared.Enfants {
		printField(w, "Child", joinNameID(c.Prenom, c.NumeroH))
	}
}

func printField(w io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(w, "  %-11s %s\n", label+":", value)
	}
}

func joinNameID(name, id string) string {
	switch {
	case name == "" && id == "":
		return ""
	case id == "":
		return name
	case name == "":
		return id
	default:
		return fmt.Sprintf("%s (%s)", name, id)
	}
}

func newPersonImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import persons from JSON, CSV or YAML",
		Long:  "Imports a roster of person records from a structured file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, yaml, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "skip", "Conflict handling (skip, overwrite)")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		opts := handlers.ImportOptions{
			Format:     flags.format,
			DryRun:     flags.dryRun,
			OnConflict: services.ConflictStrategy(flags.onConflict),
		}

		fmt.Printf("Importing %s...\n", filePath)

		result, err := d.ImportHandler.Handle(ctx, filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		fmt.Printf("Read %d rows\n", result.Rows)

		if len(result.Errors) > 0 {
			fmt.Printf("\nValidation errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e.Error())
			}
		}

		fmt.Println()
		if flags.dryRun {
			fmt.Printf("Dry run: %d persons would be imported", result.Imported)
		} else {
			fmt.Printf("Imported: %d persons", result.Imported)
		}

		if result.Skipped > 0 {
			fmt.Printf(", %d skipped (already exist)", result.Skipped)
		}

		if len(result.Errors) > 0 {
			fmt.Printf(", %d errors", len(result.Errors))
		}

		fmt.Println()

		return nil
	})
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
