// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

// RelationalDB is an in-memory implementation of ports.RelationalDB. It
// enforces the same uniqueness rules as the SQLite store.
type RelationalDB struct {
	Links  map[string]*entities.Link
	People map[string]*entities.Person
	Audit  []entities.AuditEntry

	// Err is returned by every call when set. AuditErr only by LogAction.
	Err      error
	AuditErr error

	// Call tracking
	CreateCallCount  int
	ConfirmCallCount int
	DeleteCallCount  int
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Links:  make(map[string]*entities.Link),
		People: make(map[string]*entities.Person),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

// Link methods.

// CreateParentChildLink stores a new parent-child link.
func (m *RelationalDB) CreateParentChildLink(_ context.Context, link *entities.Link) (*entities.Link, error) {
	return m.create(link, entities.LinkParentChild)
}

// ConfirmParentChildLink activates a parent-child link.
func (m *RelationalDB) ConfirmParentChildLink(_ context.Context, linkID string) (*entities.Link, error) {
	return m.confirm(linkID, entities.LinkParentChild)
}

// DeleteParentChildLink removes a parent-child link.
func (m *RelationalDB) DeleteParentChildLink(_ context.Context, linkID string) error {
	return m.delete(linkID, entities.LinkParentChild)
}

// ListMyParentChildLinks lists parent-child links involving callerID.
func (m *RelationalDB) ListMyParentChildLinks(_ context.Context, callerID string) ([]entities.Link, error) {
	return m.list(entities.LinkParentChild, callerID)
}

// ListAllParentChildLinks lists every parent-child link.
func (m *RelationalDB) ListAllParentChildLinks(_ context.Context) ([]entities.Link, error) {
	return m.list(entities.LinkParentChild, "")
}

// CreateCoupleLink stores a new couple link.
func (m *RelationalDB) CreateCoupleLink(_ context.Context, link *entities.Link) (*entities.Link, error) {
	return m.create(link, entities.LinkCouple)
}

// ConfirmCoupleLink activates a couple link.
func (m *RelationalDB) ConfirmCoupleLink(_ context.Context, linkID string) (*entities.Link, error) {
	return m.confirm(linkID, entities.LinkCouple)
}

// DeleteCoupleLink removes a couple link.
func (m *RelationalDB) DeleteCoupleLink(_ context.Context, linkID string) error {
	return m.delete(linkID, entities.LinkCouple)
}

// ListMyCoupleLinks lists couple links involving callerID.
func (m *RelationalDB) ListMyCoupleLinks(_ context.Context, callerID string) ([]entities.Link, error) {
	return m.list(entities.LinkCouple, callerID)
}

// ListAllCoupleLinks lists every couple link.
func (m *RelationalDB) ListAllCoupleLinks(_ context.Context) ([]entities.Link, error) {
	return m.list(entities.LinkCouple, "")
}

// GetLink fetches a link of either kind.
func (m *RelationalDB) GetLink(_ context.Context, linkID string) (*entities.Link, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	link, ok := m.Links[linkID]
	if !ok {
		return nil, fmt.Errorf("link %s: %w", linkID, entities.ErrNotFound)
	}
	cp := *link
	return &cp, nil
}

// Put stores a link as-is, bypassing checks. Useful to seed active links.
func (m *RelationalDB) Put(link entities.Link) {
	m.Links[link.ID] = &link
}

func (m *RelationalDB) create(link *entities.Link, kind entities.LinkKind) (*entities.Link, error) {
	m.CreateCallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	if link.Kind != kind {
		return nil, fmt.Errorf("link kind %s: %w", link.Kind, entities.ErrValidation)
	}
	for _, existing := range m.Links {
		if duplicates(existing, link) {
			return nil, fmt.Errorf("link %s duplicates %s: %w", link.ID, existing.ID, entities.ErrConflict)
		}
	}

	cp := *link
	cp.Status = entities.LinkPending
	cp.ConfirmedAt = nil
	m.Links[cp.ID] = &cp

	out := cp
	return &out, nil
}

func duplicates(a, b *entities.Link) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == entities.LinkCouple {
		if a.PersonID1 == b.PersonID1 && a.PersonID2 == b.PersonID2 {
			return true
		}
		return a.MarriageNumber != "" && a.MarriageNumber == b.MarriageNumber
	}
	return a.ParentID == b.ParentID && a.ChildID == b.ChildID && a.ParentRole == b.ParentRole
}

func (m *RelationalDB) confirm(linkID string, kind entities.LinkKind) (*entities.Link, error) {
	m.ConfirmCallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	link, ok := m.Links[linkID]
	if !ok || link.Kind != kind {
		return nil, fmt.Errorf("link %s: %w", linkID, entities.ErrNotFound)
	}
	if !link.IsActive() {
		now := time.Now()
		link.Status = entities.LinkActive
		link.ConfirmedAt = &now
	}
	cp := *link
	return &cp, nil
}

func (m *RelationalDB) delete(linkID string, kind entities.LinkKind) error {
	m.DeleteCallCount++
	if m.Err != nil {
		return m.Err
	}
	link, ok := m.Links[linkID]
	if !ok || link.Kind != kind {
		return fmt.Errorf("link %s: %w", linkID, entities.ErrNotFound)
	}
	delete(m.Links, linkID)
	return nil
}

// list returns links of kind involving callerID, or all when callerID is empty,
// ordered by creation time then id.
func (m *RelationalDB) list(kind entities.LinkKind, callerID string) ([]entities.Link, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.Link, 0, len(m.Links))
	for _, link := range m.Links {
		if link.Kind != kind {
			continue
		}
		if callerID != "" && !link.Involves(callerID) {
			continue
		}
		result = append(result, *link)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Person methods.

// SavePerson saves or updates a person by numeroH.
func (m *RelationalDB) SavePerson(_ context.Context, person *entities.Person) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *person
	m.People[cp.NumeroH] = &cp
	return nil
}

// FindPerson finds a person by numeroH.
func (m *RelationalDB) FindPerson(_ context.Context, numeroH string) (*entities.Person, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.People[numeroH]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// FindPeople finds several persons. Unknown ids are skipped.
func (m *RelationalDB) FindPeople(_ context.Context, numeroHs []string) ([]*entities.Person, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*entities.Person, 0, len(numeroHs))
	for _, id := range numeroHs {
		if p, ok := m.People[id]; ok {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

// CountPeople returns the number of stored persons.
func (m *RelationalDB) CountPeople(_ context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.People), nil
}

// Audit methods.

// LogAction records an audit entry.
func (m *RelationalDB) LogAction(_ context.Context, action string, linkID string, details map[string]any) error {
	if m.AuditErr != nil {
		return m.AuditErr
	}
	if m.Err != nil {
		return m.Err
	}
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:        int64(len(m.Audit) + 1),
		Action:    action,
		LinkID:    linkID,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

// FindAuditLog returns entries for linkID, newest first.
func (m *RelationalDB) FindAuditLog(_ context.Context, linkID string) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0; i-- {
		if m.Audit[i].LinkID == linkID {
			result = append(result, m.Audit[i])
		}
	}
	return result, nil
}

// FindAuditLogByAction returns up to limit entries for action, newest first.
func (m *RelationalDB) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0 && (limit <= 0 || len(result) < limit); i-- {
		if m.Audit[i].Action == action {
			result = append(result, m.Audit[i])
		}
	}
	return result, nil
}
