package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship-core/internal/application/handlers"
	"github.com/ersonp/kinship-core/internal/domain/entities"
)

type exportFlags struct {
	format  string
	output  string
	profile string
}

type exporter struct {
	format string
	output string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export [numeroH]",
		Short: "Export a family tree to file",
		Long:  "Exports every node of a family tree, placeholders included, to JSON, CSV, or markdown format.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.profile, "profile", "p", "", "Export from a profile document (json, yaml)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, flags exportFlags) error {
	if !contains(validExportFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validExportFormats)
	}

	return withTreeRequest(cmd, args, flags.profile, func(handler *handlers.TreeHandler, req handlers.TreeRequest) error {
		req.IncludeHidden = true
		result, err := handler.HandleBuild(cmd.Context(), req)
		if err != nil {
			return err
		}

		e := &exporter{
			format: flags.format,
			output: flags.output,
		}
		return e.export(result.Profile, result.Nodes)
	})
}

func (e *exporter) export(profile entities.PersonProfile, nodes []entities.TreeNode) (err error) {
	var w io.Writer
	var f *os.File

	if e.output != "" {
		f, err = os.OpenFile(e.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	} else {
		w = os.Stdout
	}

	if err := e.formatNodes(w, profile, nodes); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if e.output != "" {
		fmt.Printf("Exported %d nodes to %s\n", len(nodes), e.output)
	}

	return nil
}

func (e *exporter) formatNodes(w io.Writer, profile entities.PersonProfile, nodes []entities.TreeNode) error {
	switch e.format {
	case "json":
		return formatJSON(w, nodes)
	case "csv":
		return formatCSV(w, nodes)
	case "markdown":
		return formatMarkdown(w, profile, nodes)
	default:
		return fmt.Errorf("unknown format: %s", e.format)
	}
}

func formatJSON(w io.Writer, nodes []entities.TreeNode) error {
	if nodes == nil {
		nodes = []entities.TreeNode{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(nodes)
}

func formatCSV(w io.Writer, nodes []entities.TreeNode) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "numeroH", "prenom", "nomFamille", "genre", "relation", "generation",
		"visible", "missing", "parent_ref", "child_refs"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, n := range nodes {
		row := []string{
			n.ID,
			n.NumeroH,
			n.Prenom,
			n.NomFamille,
			string(n.Genre),
			string(n.Relation),
			n.Generation,
			fmt.Sprintf("%t", n.IsVisible),
			strings.Join(n.MissingConditions, ";"),
			n.ParentRefID,
			strings.Join(n.ChildRefIDs, ";"),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, profile entities.PersonProfile, nodes []entities.TreeNode) error {
	title := strings.TrimSpace(profile.Prenom + " " + profile.NomFamille)
	if title == "" {
		title = profile.NumeroH
	}
	if _, err := fmt.Fprintf(w, "# Family Tree of %s\n\nTotal: %d nodes\n\n", escapeMarkdown(title), len(nodes)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| Generation | Relation | Name | numeroH | Missing |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|------------|----------|------|---------|---------|\n"); err != nil {
		return err
	}

	for _, n := range nodes {
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			n.Generation,
			n.Relation,
			escapeMarkdown(strings.TrimSpace(n.Prenom+" "+n.NomFamille)),
			escapeMarkdown(n.NumeroH),
			escapeMarkdown(strings.Join(n.MissingConditions, ", ")),
		); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
