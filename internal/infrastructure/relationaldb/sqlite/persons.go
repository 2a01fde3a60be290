package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

const personColumns = `numero_h, prenom, nom_famille, genre, birth_date, death_date,
	photo, generation, declared, created_at, updated_at`

// SavePerson saves or updates a person by numeroH. The original creation time
// is kept on update.
func (r *Repository) SavePerson(ctx context.Context, person *entities.Person) error {
	declared, err := json.Marshal(person.Declared)
	if err != nil {
		return fmt.Errorf("marshaling declared relatives: %w", err)
	}

	now := timeNow()
	createdAt := person.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := person.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}
	genre := person.Genre
	if genre == "" {
		genre = entities.GenderOther
	}

	query := `
		INSERT INTO persons (` + personColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(numero_h) DO UPDATE SET
			prenom = excluded.prenom,
			nom_famille = excluded.nom_famille,
			genre = excluded.genre,
			birth_date = excluded.birth_date,
			death_date = excluded.death_date,
			photo = excluded.photo,
			generation = excluded.generation,
			declared = excluded.declared,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		person.NumeroH,
		person.Prenom,
		person.NomFamille,
		string(genre),
		person.BirthDate,
		person.DeathDate,
		person.Photo,
		person.Generation,
		string(declared),
		createdAt,
		updatedAt,
	)
	if err != nil {
		return classify(fmt.Sprintf("saving person %s", person.NumeroH), err)
	}
	return nil
}

// FindPerson finds a person by numeroH. Returns nil if absent.
func (r *Repository) FindPerson(ctx context.Context, numeroH string) (*entities.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE numero_h = ?`
	person, err := scanPerson(r.db.QueryRowContext(ctx, query, numeroH))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("scanning person", err)
	}
	return person, nil
}

// FindPeople finds multiple persons by numeroH in a single query.
func (r *Repository) FindPeople(ctx context.Context, numeroHs []string) ([]*entities.Person, error) {
	if len(numeroHs) == 0 {
		return []*entities.Person{}, nil
	}

	// Build placeholders for IN clause
	placeholders := make([]string, len(numeroHs))
	args := make([]any, len(numeroHs))
	for i, id := range numeroHs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM persons
		WHERE numero_h IN (%s)
		ORDER BY numero_h
	`, personColumns, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("querying persons", err)
	}
	defer rows.Close()

	result := make([]*entities.Person, 0, len(numeroHs))
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, classify("scanning person", err)
		}
		result = append(result, person)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating persons", err)
	}
	return result, nil
}

// CountPeople returns the number of stored persons.
func (r *Repository) CountPeople(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM persons`).Scan(&count); err != nil {
		return 0, classify("counting persons", err)
	}
	return count, nil
}

func scanPerson(row rowScanner) (*entities.Person, error) {
	var (
		person   entities.Person
		genre    string
		declared sql.NullString
	)
	if err := row.Scan(
		&person.NumeroH,
		&person.Prenom,
		&person.NomFamille,
		&genre,
		&person.BirthDate,
		&person.DeathDate,
		&person.Photo,
		&person.Generation,
		&declared,
		&person.CreatedAt,
		&person.UpdatedAt,
	); err != nil {
		return nil, err
	}

	person.Genre = entities.Gender(genre)
	if declared.Valid && declared.String != "" {
		if err := json.Unmarshal([]byte(declared.String), &person.Declared); err != nil {
			return nil, fmt.Errorf("unmarshaling declared relatives: %w", err)
		}
	}
	return &person, nil
}
