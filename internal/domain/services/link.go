package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/ports"
)

// LinkService drives the pending/active lifecycle of parent-child and couple
// links against the link store. Every operation is a single attempt; retry
// policy belongs to the caller.
type LinkService struct {
	store  ports.LinkStore
	audit  ports.AuditLog
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewLinkService creates a new LinkService. audit may be nil.
func NewLinkService(store ports.LinkStore, audit ports.AuditLog, logger *slog.Logger) *LinkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkService{
		store:  store,
		audit:  audit,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Propose creates a pending link between the actor and proposal.OtherID.
func (s *LinkService) Propose(ctx context.Context, actor entities.Actor, proposal entities.LinkProposal) (*entities.Link, error) {
	link, err := s.newLink(actor, proposal)
	if err != nil {
		return nil, err
	}

	var created *entities.Link
	switch link.Kind {
	case entities.LinkParentChild:
		created, err = s.store.CreateParentChildLink(ctx, link)
	case entities.LinkCouple:
		created, err = s.store.CreateCoupleLink(ctx, link)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "link proposal failed",
			"kind", link.Kind, "actor", link.InitiatorID, "error", err)
		return nil, fmt.Errorf("creating %s link: %w", link.Kind, err)
	}

	s.record(ctx, entities.AuditLinkProposed, created, actor)
	return created, nil
}

// newLink validates a proposal and builds the pending link it describes.
func (s *LinkService) newLink(actor entities.Actor, proposal entities.LinkProposal) (*entities.Link, error) {
	self := entities.NormalizeNumeroH(actor.NumeroH)
	if self == "" {
		return nil, fmt.Errorf("%w: caller numeroH is required", entities.ErrValidation)
	}
	if !proposal.Kind.IsValid() {
		return nil, fmt.Errorf("%w: invalid link kind %q", entities.ErrValidation, proposal.Kind)
	}
	other := entities.NormalizeNumeroH(proposal.OtherID)
	if other == "" {
		return nil, fmt.Errorf("%w: numeroH of the other person is required", entities.ErrValidation)
	}
	if other == self {
		return nil, fmt.Errorf("%w: cannot link a person to themself", entities.ErrValidation)
	}

	link := &entities.Link{
		ID:          entities.NewLinkID(proposal.Kind, s.newID()),
		Kind:        proposal.Kind,
		Status:      entities.LinkPending,
		InitiatorID: self,
		CreatedAt:   s.now(),
	}

	switch proposal.Kind {
	case entities.LinkParentChild:
		role := proposal.Role
		if role == "" {
			role = entities.RoleFather
		}
		if role != entities.RoleFather && role != entities.RoleMother {
			return nil, fmt.Errorf("%w: invalid parent role %q", entities.ErrValidation, proposal.Role)
		}
		link.ParentID, link.ChildID = self, other
		if proposal.AsChild {
			link.ParentID, link.ChildID = other, self
		}
		link.ParentRole = role
		link.LinkCode = entities.NormalizeNumeroH(proposal.LinkCode)
		link.MaternityNumber = entities.NormalizeNumeroH(proposal.MaternityNumber)
	case entities.LinkCouple:
		link.PersonID1, link.PersonID2 = entities.OrderedPair(self, other)
		link.MarriageNumber = entities.NormalizeNumeroH(proposal.MarriageNumber)
	}

	return link, nil
}

// Confirm moves a pending link to active. A pending link may be confirmed by
// its counterpart or an administrator. Confirming an active link is a no-op
// for either party.
func (s *LinkService) Confirm(ctx context.Context, actor entities.Actor, linkID string) (*entities.Link, error) {
	actor.NumeroH = entities.NormalizeNumeroH(actor.NumeroH)
	link, err := s.fetch(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if link.IsActive() {
		if !actor.Admin && !link.Involves(actor.NumeroH) {
			return nil, fmt.Errorf("%w: %s is not a party of link %s", entities.ErrForbidden, actor.NumeroH, linkID)
		}
		return link, nil
	}
	if !actor.Admin && link.Counterpart() != actor.NumeroH {
		return nil, fmt.Errorf("%w: only %s or an administrator can confirm link %s",
			entities.ErrForbidden, link.Counterpart(), linkID)
	}

	var confirmed *entities.Link
	switch link.Kind {
	case entities.LinkParentChild:
		confirmed, err = s.store.ConfirmParentChildLink(ctx, linkID)
	case entities.LinkCouple:
		confirmed, err = s.store.ConfirmCoupleLink(ctx, linkID)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "link confirmation failed", "link_id", linkID, "error", err)
		return nil, fmt.Errorf("confirming link %s: %w", linkID, err)
	}

	s.record(ctx, entities.AuditLinkConfirmed, confirmed, actor)
	return confirmed, nil
}

// Delete removes a link whatever its status. Either party or an administrator
// may delete.
func (s *LinkService) Delete(ctx context.Context, actor entities.Actor, linkID string) error {
	actor.NumeroH = entities.NormalizeNumeroH(actor.NumeroH)
	link, err := s.fetch(ctx, linkID)
	if err != nil {
		return err
	}
	if !actor.Admin && !link.Involves(actor.NumeroH) {
		return fmt.Errorf("%w: %s is not a party of link %s", entities.ErrForbidden, actor.NumeroH, linkID)
	}

	switch link.Kind {
	case entities.LinkParentChild:
		err = s.store.DeleteParentChildLink(ctx, linkID)
	case entities.LinkCouple:
		err = s.store.DeleteCoupleLink(ctx, linkID)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "link deletion failed", "link_id", linkID, "error", err)
		return fmt.Errorf("deleting link %s: %w", linkID, err)
	}

	s.record(ctx, entities.AuditLinkDeleted, link, actor)
	return nil
}

// ListMine returns every link of the given kind, any status, where the actor
// is a party.
func (s *LinkService) ListMine(ctx context.Context, actor entities.Actor, kind entities.LinkKind) ([]entities.Link, error) {
	caller := entities.NormalizeNumeroH(actor.NumeroH)
	if caller == "" {
		return nil, fmt.Errorf("%w: caller numeroH is required", entities.ErrValidation)
	}

	var (
		links []entities.Link
		err   error
	)
	switch kind {
	case entities.LinkParentChild:
		links, err = s.store.ListMyParentChildLinks(ctx, caller)
	case entities.LinkCouple:
		links, err = s.store.ListMyCoupleLinks(ctx, caller)
	default:
		return nil, fmt.Errorf("%w: invalid link kind %q", entities.ErrValidation, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s links: %w", kind, err)
	}
	return links, nil
}

// ListAll returns every link of the given kind in the store. Access control
// is the caller's responsibility.
func (s *LinkService) ListAll(ctx context.Context, kind entities.LinkKind) ([]entities.Link, error) {
	var (
		links []entities.Link
		err   error
	)
	switch kind {
	case entities.LinkParentChild:
		links, err = s.store.ListAllParentChildLinks(ctx)
	case entities.LinkCouple:
		links, err = s.store.ListAllCoupleLinks(ctx)
	default:
		return nil, fmt.Errorf("%w: invalid link kind %q", entities.ErrValidation, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("listing all %s links: %w", kind, err)
	}
	return links, nil
}

// PendingInvitations returns the pending links waiting for the actor's confirmation.
func (s *LinkService) PendingInvitations(ctx context.Context, actor entities.Actor, kind entities.LinkKind) ([]entities.Link, error) {
	actor.NumeroH = entities.NormalizeNumeroH(actor.NumeroH)
	return s.filterMine(ctx, actor, kind, func(l *entities.Link) bool {
		return l.Status == entities.LinkPending && l.Counterpart() == actor.NumeroH
	})
}

// PendingSent returns the pending links the actor proposed.
func (s *LinkService) PendingSent(ctx context.Context, actor entities.Actor, kind entities.LinkKind) ([]entities.Link, error) {
	actor.NumeroH = entities.NormalizeNumeroH(actor.NumeroH)
	return s.filterMine(ctx, actor, kind, func(l *entities.Link) bool {
		return l.Status == entities.LinkPending && l.InitiatorID == actor.NumeroH
	})
}

// ActiveLinks returns the confirmed links of the given kind involving the actor.
func (s *LinkService) ActiveLinks(ctx context.Context, actor entities.Actor, kind entities.LinkKind) ([]entities.Link, error) {
	return s.filterMine(ctx, actor, kind, func(l *entities.Link) bool {
		return l.IsActive()
	})
}

func (s *LinkService) filterMine(
	ctx context.Context,
	actor entities.Actor,
	kind entities.LinkKind,
	keep func(*entities.Link) bool,
) ([]entities.Link, error) {
	links, err := s.ListMine(ctx, actor, kind)
	if err != nil {
		return nil, err
	}
	filtered := make([]entities.Link, 0, len(links))
	for i := range links {
		if keep(&links[i]) {
			filtered = append(filtered, links[i])
		}
	}
	return filtered, nil
}

// fetch loads a link by id, rejecting ids that do not encode a known kind.
func (s *LinkService) fetch(ctx context.Context, linkID string) (*entities.Link, error) {
	if _, ok := entities.LinkKindFromID(linkID); !ok {
		return nil, fmt.Errorf("%w: link %s", entities.ErrNotFound, linkID)
	}
	link, err := s.store.GetLink(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("fetching link %s: %w", linkID, err)
	}
	return link, nil
}

// record appends a lifecycle action to the audit log. Audit failures are
// logged and never fail the operation.
func (s *LinkService) record(ctx context.Context, action string, link *entities.Link, actor entities.Actor) {
	s.logger.InfoContext(ctx, action,
		"link_id", link.ID, "kind", link.Kind, "status", link.Status, "actor", actor.NumeroH)

	if s.audit == nil {
		return
	}
	details := map[string]any{
		"kind":   string(link.Kind),
		"actor":  actor.NumeroH,
		"admin":  actor.Admin,
		"status": string(link.Status),
	}
	if err := s.audit.LogAction(ctx, action, link.ID, details); err != nil {
		s.logger.WarnContext(ctx, "audit log write failed", "action", action, "link_id", link.ID, "error", err)
	}
}
