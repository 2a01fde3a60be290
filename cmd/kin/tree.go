package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship-core/internal/application/handlers"
	"github.com/ersonp/kinship-core/internal/domain/entities"
)

type treeFlags struct {
	profile string
	format  string
	hidden  bool
}

var errNoSubject = errors.New("no person given: pass a numeroH, --profile, --as, or a family with a root")

func newTreeCmd() *cobra.Command {
	var flags treeFlags

	cmd := &cobra.Command{
		Use:   "tree [numeroH]",
		Short: "Show a person's family tree",
		Long: `Builds the generation-labeled family tree of a person from their record
and confirmed links, or from a profile document given with --profile.

Examples:
  kin tree A1
  kin tree A1 --hidden --format list
  kin tree --profile amadou.yaml --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.profile, "profile", "p", "", "Build from a profile document (json, yaml)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "tree", "Output format: tree, list, json")
	cmd.Flags().BoolVar(&flags.hidden, "hidden", false, "Include placeholders for missing relatives")

	return cmd
}

func runTree(cmd *cobra.Command, args []string, flags treeFlags) error {
	if !contains(validTreeFormats, flags.format) {
		return fmt.Errorf("invalid format: %s (valid: %s)", flags.format, strings.Join(validTreeFormats, ", "))
	}

	return withTreeRequest(cmd, args, flags.profile, func(handler *handlers.TreeHandler, req handlers.TreeRequest) error {
		req.IncludeHidden = flags.hidden
		result, err := handler.HandleBuild(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printTree(os.Stdout, result, flags.format)
	})
}

func newAdviseCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "advise [numeroH]",
		Short: "Suggest what is missing from a family tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTreeRequest(cmd, args, profile, func(handler *handlers.TreeHandler, req handlers.TreeRequest) error {
				recommendations, err := handler.HandleAdvise(cmd.Context(), req)
				if err != nil {
					return err
				}
				printRecommendations(os.Stdout, recommendations)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Advise on a profile document (json, yaml)")

	return cmd
}

// withTreeRequest resolves whose tree is wanted. A profile document needs no
// database, so it is read without loading the config.
func withTreeRequest(cmd *cobra.Command, args []string, profile string, fn func(*handlers.TreeHandler, handlers.TreeRequest) error) error {
	if profile != "" {
		return fn(handlers.NewTreeHandler(nil), handlers.TreeRequest{ProfilePath: profile})
	}

	return withDeps(cmd.Context(), func(d *Deps) error {
		subject := d.subject(args)
		if subject == "" {
			return errNoSubject
		}
		return fn(d.TreeHandler, handlers.TreeRequest{NumeroH: subject})
	})
}

func printTree(w io.Writer, result *handlers.TreeResult, format string) error {
	switch format {
	case "json":
		return writeJSON(w, result)
	case "list":
		printTreeList(w, result.Nodes)
	default:
		printTreeHierarchy(w, result.Nodes)
	}

	if len(result.Recommendations) > 0 {
		fmt.Fprintln(w)
		printRecommendations(w, result.Recommendations)
	}
	return nil
}

// printTreeList groups nodes by generation, ancestors first. Nodes keep their
// emission order within a generation.
func printTreeList(w io.Writer, nodes []entities.TreeNode) {
	groups := make(map[string][]entities.TreeNode)
	var generations []string
	for _, node := range nodes {
		if _, seen := groups[node.Generation]; !seen {
			generations = append(generations, node.Generation)
		}
		groups[node.Generation] = append(groups[node.Generation], node)
	}

	sort.SliceStable(generations, func(i, j int) bool {
		a, _ := entities.ParseGeneration(generations[i])
		b, _ := entities.ParseGeneration(generations[j])
		return a < b
	})

	for _, gen := range generations {
		fmt.Fprintln(w, gen)
		for _, node := range groups[gen] {
			fmt.Fprintf(w, "  %s\n", formatNode(&node))
		}
	}
}

// printTreeHierarchy prints each root with its descendants below it. A node
// reachable from two parents is printed under the first one only.
func printTreeHierarchy(w io.Writer, nodes []entities.TreeNode) {
	byID := make(map[string]*entities.TreeNode, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}

	printed := make(map[string]bool, len(nodes))
	var walk func(node *entities.TreeNode, prefix string, last, root bool)
	walk = func(node *entities.TreeNode, prefix string, last, root bool) {
		printed[node.ID] = true

		childPrefix := prefix
		if root {
			fmt.Fprintln(w, formatNode(node))
		} else {
			branch := "+- "
			childPrefix += "|  "
			if last {
				branch = "\\- "
				childPrefix = prefix + "   "
			}
			fmt.Fprintf(w, "%s%s%s\n", prefix, branch, formatNode(node))
		}

		var children []*entities.TreeNode
		for _, id := range node.ChildRefIDs {
			if child, ok := byID[id]; ok && !printed[id] {
				children = append(children, child)
			}
		}
		for i, child := range children {
			walk(child, childPrefix, i == len(children)-1, false)
		}
	}

	for i := range nodes {
		node := &nodes[i]
		if printed[node.ID] {
			continue
		}
		if _, hasParent := byID[node.ParentRefID]; hasParent {
			continue
		}
		walk(node, "", true, true)
	}

	// Nodes whose parent chain loops back are still shown.
	for i := range nodes {
		if !printed[nodes[i].ID] {
			walk(&nodes[i], "", true, true)
		}
	}
}

func formatNode(node *entities.TreeNode) string {
	name := strings.TrimSpace(node.Prenom + " " + node.NomFamille)
	line := fmt.Sprintf("[%s] %s %s (%s)", node.Generation, node.Relation, name, node.NumeroH)
	if !node.IsVisible && len(node.MissingConditions) > 0 {
		line += " missing: " + strings.Join(node.MissingConditions, ", ")
	}
	return line
}

func printRecommendations(w io.Writer, recommendations []string) {
	if len(recommendations) == 0 {
		fmt.Fprintln(w, "The family tree is complete.")
		return
	}
	fmt.Fprintln(w, "Recommendations:")
	for _, r := range recommendations {
		fmt.Fprintf(w, "  - %s\n", r)
	}
}
