package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship-core/internal/application/handlers"
	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/ports"
)

type proposeFlags struct {
	role      string
	asChild   bool
	code      string
	maternity string
	marriage  string
}

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Propose, confirm and remove family links",
		Long: `Links join two persons as parent and child or as a couple. A link is
pending until the other party (or an administrator) confirms it; only
confirmed links feed the family tree.`,
	}

	cmd.AddCommand(
		newLinkProposeCmd(),
		newLinkConfirmCmd(),
		newLinkDeleteCmd(),
		newLinkListCmd(),
		newLinkPendingCmd(),
		newLinkHistoryCmd(),
	)

	return cmd
}

func newLinkProposeCmd() *cobra.Command {
	var flags proposeFlags

	cmd := &cobra.Command{
		Use:   "propose <parent-child|couple> <other-numeroH>",
		Short: "Propose a link to another person",
		Long: `Creates a pending link between you and another person.

For parent-child links you are the parent unless --as-child is given.

Examples:
  kin --as P1 link propose parent-child A1
  kin --as A1 link propose parent-child M1 --as-child --role mother
  kin --as A1 link propose couple B1 --marriage M-2020-17`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinkPropose(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.role, "role", "", "Parent role: father (default) or mother")
	cmd.Flags().BoolVar(&flags.asChild, "as-child", false, "You are the child naming your parent")
	cmd.Flags().StringVar(&flags.code, "code", "", "Link code chosen by the parent")
	cmd.Flags().StringVar(&flags.maternity, "maternity", "", "Maternity registration number")
	cmd.Flags().StringVar(&flags.marriage, "marriage", "", "Marriage registration number")

	return cmd
}

func runLinkPropose(cmd *cobra.Command, args []string, flags proposeFlags) error {
	ctx := cmd.Context()

	return withLinkHandler(ctx, func(handler *handlers.LinkHandler, actor entities.Actor) error {
		link, err := handler.HandlePropose(ctx, actor, handlers.ProposeRequest{
			Kind:            args[0],
			OtherID:         args[1],
			Role:            flags.role,
			AsChild:         flags.asChild,
			LinkCode:        flags.code,
			MaternityNumber: flags.maternity,
			MarriageNumber:  flags.marriage,
		})
		if err != nil {
			return fmt.Errorf("proposing link: %w", err)
		}

		fmt.Printf("Proposed link: %s\n", link.ID)
		fmt.Printf("  %s\n", describeLink(link))
		fmt.Printf("  waiting for %s to confirm\n", link.Counterpart())
		return nil
	})
}

func newLinkConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <link-id>",
		Short: "Confirm a pending link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withLinkHandler(ctx, func(handler *handlers.LinkHandler, actor entities.Actor) error {
				link, err := handler.HandleConfirm(ctx, actor, args[0])
				if err != nil {
					return fmt.Errorf("confirming link: %w", err)
				}
				fmt.Printf("Confirmed link: %s\n", link.ID)
				fmt.Printf("  %s\n", describeLink(link))
				return nil
			})
		},
	}
}

func newLinkDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <link-id>",
		Short: "Remove a link, pending or confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withLinkHandler(ctx, func(handler *handlers.LinkHandler, actor entities.Actor) error {
				removed, err := handler.HandleDelete(ctx, actor, args[0])
				if err != nil {
					return fmt.Errorf("deleting link: %w", err)
				}
				if !removed {
					fmt.Printf("Link %s already removed\n", args[0])
					return nil
				}
				fmt.Printf("Deleted link: %s\n", args[0])
				return nil
			})
		},
	}
}

func newLinkListCmd() *cobra.Command {
	var opts handlers.LinkListOptions

	cmd := &cobra.Command{
		Use:   "list <parent-child|couple>",
		Short: "List your links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts.Kind = args[0]
			return withLinkHandler(ctx, func(handler *handlers.LinkHandler, actor entities.Actor) error {
				links, err := handler.HandleList(ctx, actor, opts)
				if err != nil {
					return err
				}
				printLinks(os.Stdout, links)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "List every link in the database (admin only)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (pending, active)")

	return cmd
}

func newLinkPendingCmd() *cobra.Command {
	var sent bool

	cmd := &cobra.Command{
		Use:   "pending <parent-child|couple>",
		Short: "List links waiting for your confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withLinkHandler(ctx, func(handler *handlers.LinkHandler, actor entities.Actor) error {
				links, err := handler.HandlePending(ctx, actor, args[0], sent)
				if err != nil {
					return err
				}
				printLinks(os.Stdout, links)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&sent, "sent", false, "List your own proposals instead")

	return cmd
}

func newLinkHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <link-id>",
		Short: "Show the audit trail of a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRelationalDB(ctx, func(db ports.RelationalDB) error {
				entries, err := db.FindAuditLog(ctx, strings.TrimSpace(args[0]))
				if err != nil {
					return fmt.Errorf("reading audit log: %w", err)
				}
				printAuditEntries(os.Stdout, entries)
				return nil
			})
		},
	}
}

func printLinks(w io.Writer, links []entities.Link) {
	if len(links) == 0 {
		fmt.Fprintln(w, "No links found.")
		return
	}

	fmt.Fprintf(w, "%-40s %-8s %s\n", "ID", "STATUS", "LINK")
	fmt.Fprintf(w, "%-40s %-8s %s\n", "--", "------", "----")
	for i := range links {
		fmt.Fprintf(w, "%-40s %-8s %s\n", links[i].ID, links[i].Status, describeLink(&links[i]))
	}
}

func describeLink(link *entities.Link) string {
	if link.Kind == entities.LinkCouple {
		desc := fmt.Sprintf("%s <-> %s", link.PersonID1, link.PersonID2)
		if link.MarriageNumber != "" {
			desc += fmt.Sprintf(" (marriage %s)", link.MarriageNumber)
		}
		return desc
	}
	return fmt.Sprintf("%s -[%s]-> %s", link.ParentID, link.ParentRole, link.ChildID)
}

func printAuditEntries(w io.Writer, entries []entities.AuditEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history found.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-15s actor=%v\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.Details["actor"])
	}
}
