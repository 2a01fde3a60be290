package entities

import "time"

// Audit actions recorded by the link lifecycle.
const (
	AuditLinkProposed  = "link.proposed"
	AuditLinkConfirmed = "link.confirmed"
	AuditLinkDeleted   = "link.deleted"
)

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	LinkID    string         `json:"link_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
