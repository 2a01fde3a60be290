package entities

import (
	"strings"
	"time"
)

// LinkKind distinguishes the two families of relationship edges.
type LinkKind string

const (
	LinkParentChild LinkKind = "parent_child"
	LinkCouple      LinkKind = "couple"
)

// idPrefix is prepended to generated link ids so that an id alone identifies
// which store contract it belongs to.
func (k LinkKind) idPrefix() string {
	switch k {
	case LinkParentChild:
		return "pc_"
	case LinkCouple:
		return "cp_"
	default:
		return ""
	}
}

// IsValid reports whether k is one of the known link kinds.
func (k LinkKind) IsValid() bool {
	return k == LinkParentChild || k == LinkCouple
}

// NewLinkID builds a link id for the given kind around an opaque suffix.
func NewLinkID(kind LinkKind, suffix string) string {
	return kind.idPrefix() + suffix
}

// LinkKindFromID recovers the kind encoded in a link id.
func LinkKindFromID(id string) (LinkKind, bool) {
	switch {
	case strings.HasPrefix(id, LinkParentChild.idPrefix()):
		return LinkParentChild, true
	case strings.HasPrefix(id, LinkCouple.idPrefix()):
		return LinkCouple, true
	default:
		return "", false
	}
}

// LinkStatus is the lifecycle state of a link. Removal is a hard delete, so
// there is no terminal state.
type LinkStatus string

const (
	LinkPending LinkStatus = "pending"
	LinkActive  LinkStatus = "active"
)

// ParentRole disambiguates the parent of a parent-child link.
type ParentRole string

const (
	RoleFather ParentRole = "father"
	RoleMother ParentRole = "mother"
)

// Link is a typed, status-bearing edge between two person identifiers.
//
// For parent-child links ParentID/ChildID/ParentRole are set and the edge is
// directed parent to child. For couple links PersonID1/PersonID2 are set in
// lexical order and carry no direction.
type Link struct {
	ID     string     `json:"id"`
	Kind   LinkKind   `json:"kind"`
	Status LinkStatus `json:"status"`

	ParentID   string     `json:"parent_id,omitempty"`
	ChildID    string     `json:"child_id,omitempty"`
	ParentRole ParentRole `json:"parent_role,omitempty"`

	PersonID1 string `json:"person_id1,omitempty"`
	PersonID2 string `json:"person_id2,omitempty"`

	InitiatorID string `json:"initiator_id"`

	// Optional references carried over from civil paperwork.
	LinkCode        string `json:"link_code,omitempty"`
	MaternityNumber string `json:"maternity_number,omitempty"`
	MarriageNumber  string `json:"marriage_number,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// Parties returns the two person identifiers joined by the link.
func (l *Link) Parties() (string, string) {
	if l.Kind == LinkCouple {
		return l.PersonID1, l.PersonID2
	}
	return l.ParentID, l.ChildID
}

// Involves reports whether numeroH is one of the two parties.
func (l *Link) Involves(numeroH string) bool {
	a, b := l.Parties()
	return numeroH != "" && (numeroH == a || numeroH == b)
}

// Other returns the party that is not numeroH. If numeroH is not a party the
// result is empty.
func (l *Link) Other(numeroH string) string {
	a, b := l.Parties()
	switch numeroH {
	case a:
		return b
	case b:
		return a
	default:
		return ""
	}
}

// Counterpart is the party expected to confirm: the one who did not initiate.
func (l *Link) Counterpart() string {
	return l.Other(l.InitiatorID)
}

// IsActive reports whether the link has been confirmed.
func (l *Link) IsActive() bool {
	return l.Status == LinkActive
}

// OrderedPair returns a and b in lexical order, the storage order of couple links.
func OrderedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// LinkProposal carries the caller's input for a new link.
type LinkProposal struct {
	Kind    LinkKind
	OtherID string

	// Parent-child only. Role defaults to father. AsChild means the caller is
	// the child naming their parent rather than the parent naming a child.
	Role    ParentRole
	AsChild bool

	LinkCode        string
	MaternityNumber string
	MarriageNumber  string
}

// Actor is the identity on whose behalf a link operation runs. Authentication
// happens outside this module; Actor is trusted as given.
type Actor struct {
	NumeroH string `json:"numeroH"`
	Admin   bool   `json:"admin"`
}
