// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

// LinkStore is the request/response contract of the external relationship
// link store. Each call is a single round trip; implementations report
// unknown links with entities.ErrNotFound, duplicates with
// entities.ErrConflict and unreachable storage with entities.ErrTransport.
type LinkStore interface {
	// CreateParentChildLink stores a new parent-child link in pending status.
	CreateParentChildLink(ctx context.Context, link *entities.Link) (*entities.Link, error)

	// ConfirmParentChildLink moves a parent-child link to active.
	ConfirmParentChildLink(ctx context.Context, linkID string) (*entities.Link, error)

	// DeleteParentChildLink removes a parent-child link whatever its status.
	DeleteParentChildLink(ctx context.Context, linkID string) error

	// ListMyParentChildLinks lists parent-child links where callerID is a party.
	ListMyParentChildLinks(ctx context.Context, callerID string) ([]entities.Link, error)

	// ListAllParentChildLinks lists every parent-child link.
	ListAllParentChildLinks(ctx context.Context) ([]entities.Link, error)

	// CreateCoupleLink stores a new couple link in pending status.
	CreateCoupleLink(ctx context.Context, link *entities.Link) (*entities.Link, error)

	// ConfirmCoupleLink moves a couple link to active.
	ConfirmCoupleLink(ctx context.Context, linkID string) (*entities.Link, error)

	// DeleteCoupleLink removes a couple link whatever its status.
	DeleteCoupleLink(ctx context.Context, linkID string) error

	// ListMyCoupleLinks lists couple links where callerID is a party.
	ListMyCoupleLinks(ctx context.Context, callerID string) ([]entities.Link, error)

	// ListAllCoupleLinks lists every couple link.
	ListAllCoupleLinks(ctx context.Context) ([]entities.Link, error)

	// GetLink fetches a link of either kind by ID.
	GetLink(ctx context.Context, linkID string) (*entities.Link, error)
}

// PersonDirectory stores the identity records links point at.
type PersonDirectory interface {
	// SavePerson saves or updates a person by numeroH.
	SavePerson(ctx context.Context, person *entities.Person) error

	// FindPerson finds a person by numeroH. Returns nil if absent.
	FindPerson(ctx context.Context, numeroH string) (*entities.Person, error)

	// FindPeople finds several persons in one query. Unknown ids are skipped.
	FindPeople(ctx context.Context, numeroHs []string) ([]*entities.Person, error)

	// CountPeople returns the number of stored persons.
	CountPeople(ctx context.Context) (int, error)
}

// AuditLog records link lifecycle actions.
type AuditLog interface {
	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action string, linkID string, details map[string]any) error

	// FindAuditLog finds audit log entries for a specific link.
	FindAuditLog(ctx context.Context, linkID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction finds audit log entries by action type.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}

// RelationalDB is the full local database: link store, person directory and
// audit log behind one connection.
type RelationalDB interface {
	LinkStore
	PersonDirectory
	AuditLog

	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
