package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

const (
	parentChildColumns = `id, parent_id, child_id, parent_role, status, initiator_id,
		link_code, maternity_number, created_at, confirmed_at`
	coupleColumns = `id, person_id1, person_id2, status, initiator_id,
		marriage_number, created_at, confirmed_at`
)

// Parent-child links.

// CreateParentChildLink stores a new parent-child link in pending status.
func (r *Repository) CreateParentChildLink(ctx context.Context, link *entities.Link) (*entities.Link, error) {
	query := `
		INSERT INTO parent_child_links (id, parent_id, child_id, parent_role, status,
			initiator_id, link_code, maternity_number, created_at)
		VALUES (?, ?, ?, ?, 'pending', ?, ?, ?, ?)
	`
	role := link.ParentRole
	if role == "" {
		role = entities.RoleFather
	}
	_, err := r.db.ExecContext(ctx, query,
		link.ID,
		link.ParentID,
		link.ChildID,
		string(role),
		link.InitiatorID,
		nullString(link.LinkCode),
		nullString(link.MaternityNumber),
		link.CreatedAt,
	)
	if err != nil {
		return nil, classify("creating parent-child link", err)
	}
	return r.findParentChildLink(ctx, link.ID)
}

// ConfirmParentChildLink moves a parent-child link to active.
func (r *Repository) ConfirmParentChildLink(ctx context.Context, linkID string) (*entities.Link, error) {
	if err := r.confirm(ctx, "parent_child_links", linkID); err != nil {
		return nil, err
	}
	return r.findParentChildLink(ctx, linkID)
}

// DeleteParentChildLink removes a parent-child link whatever its status.
func (r *Repository) DeleteParentChildLink(ctx context.Context, linkID string) error {
	return r.delete(ctx, "parent_child_links", linkID)
}

// ListMyParentChildLinks lists parent-child links where callerID is a party.
func (r *Repository) ListMyParentChildLinks(ctx context.Context, callerID string) ([]entities.Link, error) {
	query := `SELECT ` + parentChildColumns + `
		FROM parent_child_links
		WHERE parent_id = ? OR child_id = ?
		ORDER BY created_at, id
	`
	return r.queryParentChildLinks(ctx, query, callerID, callerID)
}

// ListAllParentChildLinks lists every parent-child link.
func (r *Repository) ListAllParentChildLinks(ctx context.Context) ([]entities.Link, error) {
	query := `SELECT ` + parentChildColumns + `
		FROM parent_child_links
		ORDER BY created_at, id
	`
	return r.queryParentChildLinks(ctx, query)
}

func (r *Repository) findParentChildLink(ctx context.Context, linkID string) (*entities.Link, error) {
	query := `SELECT ` + parentChildColumns + ` FROM parent_child_links WHERE id = ?`
	link, err := scanParentChildLink(r.db.QueryRowContext(ctx, query, linkID))
	if err != nil {
		return nil, classify(fmt.Sprintf("finding link %s", linkID), err)
	}
	return link, nil
}

func (r *Repository) queryParentChildLinks(ctx context.Context, query string, args ...any) ([]entities.Link, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("querying parent-child links", err)
	}
	defer rows.Close()

	links := []entities.Link{}
	for rows.Next() {
		link, err := scanParentChildLink(rows)
		if err != nil {
			return nil, classify("scanning parent-child link", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating parent-child links", err)
	}
	return links, nil
}

// Couple links.

// CreateCoupleLink stores a new couple link in pending status.
func (r *Repository) CreateCoupleLink(ctx context.Context, link *entities.Link) (*entities.Link, error) {
	p1, p2 := entities.OrderedPair(link.PersonID1, link.PersonID2)
	query := `
		INSERT INTO couple_links (id, person_id1, person_id2, status, initiator_id,
			marriage_number, created_at)
		VALUES (?, ?, ?, 'pending', ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		link.ID,
		p1,
		p2,
		link.InitiatorID,
		nullString(link.MarriageNumber),
		link.CreatedAt,
	)
	if err != nil {
		return nil, classify("creating couple link", err)
	}
	return r.findCoupleLink(ctx, link.ID)
}

// ConfirmCoupleLink moves a couple link to active.
func (r *Repository) ConfirmCoupleLink(ctx context.Context, linkID string) (*entities.Link, error) {
	if err := r.confirm(ctx, "couple_links", linkID); err != nil {
		return nil, err
	}
	return r.findCoupleLink(ctx, linkID)
}

// DeleteCoupleLink removes a couple link whatever its status.
func (r *Repository) DeleteCoupleLink(ctx context.Context, linkID string) error {
	return r.delete(ctx, "couple_links", linkID)
}

// ListMyCoupleLinks lists couple links where callerID is a party.
func (r *Repository) ListMyCoupleLinks(ctx context.Context, callerID string) ([]entities.Link, error) {
	query := `SELECT ` + coupleColumns + `
		FROM couple_links
		WHERE person_id1 = ? OR person_id2 = ?
		ORDER BY created_at, id
	`
	return r.queryCoupleLinks(ctx, query, callerID, callerID)
}

// ListAllCoupleLinks lists every couple link.
func (r *Repository) ListAllCoupleLinks(ctx context.Context) ([]entities.Link, error) {
	query := `SELECT ` + coupleColumns + `
		FROM couple_links
		ORDER BY created_at, id
	`
	return r.queryCoupleLinks(ctx, query)
}

func (r *Repository) findCoupleLink(ctx context.Context, linkID string) (*entities.Link, error) {
	query := `SELECT ` + coupleColumns + ` FROM couple_links WHERE id = ?`
	link, err := scanCoupleLink(r.db.QueryRowContext(ctx, query, linkID))
	if err != nil {
		return nil, classify(fmt.Sprintf("finding link %s", linkID), err)
	}
	return link, nil
}

func (r *Repository) queryCoupleLinks(ctx context.Context, query string, args ...any) ([]entities.Link, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("querying couple links", err)
	}
	defer rows.Close()

	links := []entities.Link{}
	for rows.Next() {
		link, err := scanCoupleLink(rows)
		if err != nil {
			return nil, classify("scanning couple link", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating couple links", err)
	}
	return links, nil
}

// GetLink fetches a link of either kind by ID.
func (r *Repository) GetLink(ctx context.Context, linkID string) (*entities.Link, error) {
	kind, ok := entities.LinkKindFromID(linkID)
	if !ok {
		return nil, fmt.Errorf("link %s: %w", linkID, entities.ErrNotFound)
	}
	if kind == entities.LinkCouple {
		return r.findCoupleLink(ctx, linkID)
	}
	return r.findParentChildLink(ctx, linkID)
}

// Shared lifecycle statements. table is always one of the two link tables.

// confirm activates a pending link. Confirming an active link leaves it
// untouched; an unknown id is not found.
func (r *Repository) confirm(ctx context.Context, table, linkID string) error {
	query := `UPDATE ` + table + ` SET status = 'active', confirmed_at = ? WHERE id = ? AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, timeNow(), linkID)
	if err != nil {
		return classify(fmt.Sprintf("confirming link %s", linkID), err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, linkID).Scan(&exists)
	if err != nil {
		return classify(fmt.Sprintf("confirming link %s", linkID), err)
	}
	return nil
}

func (r *Repository) delete(ctx context.Context, table, linkID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, linkID)
	if err != nil {
		return classify(fmt.Sprintf("deleting link %s", linkID), err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return classify(fmt.Sprintf("deleting link %s", linkID), err)
	}
	if n == 0 {
		return fmt.Errorf("deleting link %s: %w", linkID, entities.ErrNotFound)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanParentChildLink(row rowScanner) (*entities.Link, error) {
	var (
		link            entities.Link
		role, status    string
		code, maternity sql.NullString
		confirmedAt     sql.NullTime
	)
	if err := row.Scan(
		&link.ID,
		&link.ParentID,
		&link.ChildID,
		&role,
		&status,
		&link.InitiatorID,
		&code,
		&maternity,
		&link.CreatedAt,
		&confirmedAt,
	); err != nil {
		return nil, err
	}

	link.Kind = entities.LinkParentChild
	link.ParentRole = entities.ParentRole(role)
	link.Status = entities.LinkStatus(status)
	link.LinkCode = code.String
	link.MaternityNumber = maternity.String
	if confirmedAt.Valid {
		t := confirmedAt.Time
		link.ConfirmedAt = &t
	}
	return &link, nil
}

func scanCoupleLink(row rowScanner) (*entities.Link, error) {
	var (
		link        entities.Link
		status      string
		marriage    sql.NullString
		confirmedAt sql.NullTime
	)
	if err := row.Scan(
		&link.ID,
		&link.PersonID1,
		&link.PersonID2,
		&status,
		&link.InitiatorID,
		&marriage,
		&link.CreatedAt,
		&confirmedAt,
	); err != nil {
		return nil, err
	}

	link.Kind = entities.LinkCouple
	link.Status = entities.LinkStatus(status)
	link.MarriageNumber = marriage.String
	if confirmedAt.Valid {
		t := confirmedAt.Time
		link.ConfirmedAt = &t
	}
	return &link, nil
}
