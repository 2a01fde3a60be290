package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/services"
)

// ValidLinkKinds lists the accepted link kind strings.
var ValidLinkKinds = []string{"parent-child", "couple"}

// LinkHandler handles link lifecycle operations.
type LinkHandler struct {
	service *services.LinkService
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(service *services.LinkService) *LinkHandler {
	return &LinkHandler{
		service: service,
	}
}

// ProposeRequest is the raw input of a link proposal.
type ProposeRequest struct {
	Kind    string // "parent-child" or "couple"
	OtherID string
	Role    string // "father", "mother" or empty
	AsChild bool   // caller names their parent instead of a child

	LinkCode        string
	MaternityNumber string
	MarriageNumber  string
}

// LinkListOptions configures link listing behavior.
type LinkListOptions struct {
	Kind   string
	All    bool   // every link in the store, admin only
	Status string // Filter by status (empty = all)
}

// HandlePropose validates the request and proposes a new pending link.
func (h *LinkHandler) HandlePropose(ctx context.Context, actor entities.Actor, req ProposeRequest) (*entities.Link, error) {
	kind, err := ParseLinkKind(req.Kind)
	if err != nil {
		return nil, err
	}

	role, err := ParseParentRole(req.Role)
	if err != nil {
		return nil, err
	}
	if kind == entities.LinkCouple && (role != "" || req.AsChild) {
		return nil, fmt.Errorf("role and as-child apply to parent-child links only: %w", entities.ErrValidation)
	}

	return h.service.Propose(ctx, actor, entities.LinkProposal{
		Kind:            kind,
		OtherID:         entities.NormalizeNumeroH(req.OtherID),
		Role:            role,
		AsChild:         req.AsChild,
		LinkCode:        strings.TrimSpace(req.LinkCode),
		MaternityNumber: strings.TrimSpace(req.MaternityNumber),
		MarriageNumber:  strings.TrimSpace(req.MarriageNumber),
	})
}

// HandleConfirm confirms a pending link.
func (h *LinkHandler) HandleConfirm(ctx context.Context, actor entities.Actor, linkID string) (*entities.Link, error) {
	return h.service.Confirm(ctx, actor, strings.TrimSpace(linkID))
}

// HandleDelete removes a link. A link that is already gone is reported with
// removed=false and no error.
func (h *LinkHandler) HandleDelete(ctx context.Context, actor entities.Actor, linkID string) (removed bool, err error) {
	err = h.service.Delete(ctx, actor, strings.TrimSpace(linkID))
	if errors.Is(err, entities.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HandleList returns the caller's links, or every link for an admin when All is set.
func (h *LinkHandler) HandleList(ctx context.Context, actor entities.Actor, opts LinkListOptions) ([]entities.Link, error) {
	kind, err := ParseLinkKind(opts.Kind)
	if err != nil {
		return nil, err
	}

	status, err := parseLinkStatus(opts.Status)
	if err != nil {
		return nil, err
	}

	var links []entities.Link
	if opts.All {
		if !actor.Admin {
			return nil, fmt.Errorf("listing all links requires admin: %w", entities.ErrForbidden)
		}
		links, err = h.service.ListAll(ctx, kind)
	} else {
		links, err = h.service.ListMine(ctx, actor, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}

	if status == "" {
		return links, nil
	}

	filtered := make([]entities.Link, 0, len(links))
	for i := range links {
		if links[i].Status == status {
			filtered = append(filtered, links[i])
		}
	}
	return filtered, nil
}

// HandlePending returns links waiting for the caller's confirmation, or with
// sent set, the caller's own proposals still waiting on the other party.
func (h *LinkHandler) HandlePending(ctx context.Context, actor entities.Actor, kindName string, sent bool) ([]entities.Link, error) {
	kind, err := ParseLinkKind(kindName)
	if err != nil {
		return nil, err
	}
	if sent {
		return h.service.PendingSent(ctx, actor, kind)
	}
	return h.service.PendingInvitations(ctx, actor, kind)
}

// ParseLinkKind converts a CLI kind name to a LinkKind.
func ParseLinkKind(s string) (entities.LinkKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parent-child", "parent_child", "pc":
		return entities.LinkParentChild, nil
	case "couple", "cp", "partner":
		return entities.LinkCouple, nil
	default:
		return "", fmt.Errorf("invalid link kind %q (valid: %s): %w",
			s, strings.Join(ValidLinkKinds, ", "), entities.ErrValidation)
	}
}

// ParseParentRole converts a role name to a ParentRole. Empty stays empty so
// the service applies its default.
func ParseParentRole(s string) (entities.ParentRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "father":
		return entities.RoleFather, nil
	case "mother":
		return entities.RoleMother, nil
	default:
		return "", fmt.Errorf("invalid parent role %q (valid: father, mother): %w", s, entities.ErrValidation)
	}
}

func parseLinkStatus(s string) (entities.LinkStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "pending":
		return entities.LinkPending, nil
	case "active":
		return entities.LinkActive, nil
	default:
		return "", fmt.Errorf("invalid link status %q (valid: pending, active): %w", s, entities.ErrValidation)
	}
}
