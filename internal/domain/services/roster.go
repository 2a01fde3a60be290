package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/ports"
	"github.com/ersonp/kinship-core/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle existing persons during import.
type ConflictStrategy string

const (
	// ConflictSkip skips persons that already exist (by numeroH).
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite overwrites existing persons with new data.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// IsValid reports whether s is a known strategy.
func (s ConflictStrategy) IsValid() bool {
	return s == ConflictSkip || s == ConflictOverwrite
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing persons
}

// ImportError represents an error for a specific person during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []ImportError
}

// RosterService imports persons into the person directory.
type RosterService struct {
	people ports.PersonDirectory
	now    func() time.Time
}

// NewRosterService creates a new roster service.
func NewRosterService(people ports.PersonDirectory) *RosterService {
	return &RosterService{
		people: people,
		now:    time.Now,
	}
}

// Import validates and imports raw persons into the directory.
func (s *RosterService) Import(ctx context.Context, raw []parsers.RawPerson, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	valid, validationErrors := validatePeople(raw)
	result.Errors = validationErrors

	if len(valid) == 0 {
		return result, nil
	}

	people := s.convertToEntities(valid)

	if opts.DryRun {
		result.Imported = len(people)
		return result, nil
	}

	imported, skipped, err := s.saveWithConflictHandling(ctx, people, opts.OnConflict)
	if err != nil {
		return nil, fmt.Errorf("saving persons: %w", err)
	}

	result.Imported = imported
	result.Skipped = skipped

	return result, nil
}

// validatePeople returns the valid persons and an error per invalid one. A
// numeroH repeated within the same roster keeps its first occurrence.
func validatePeople(raw []parsers.RawPerson) ([]parsers.RawPerson, []ImportError) {
	valid := make([]parsers.RawPerson, 0, len(raw))
	seen := make(map[string]int, len(raw))
	var errs []ImportError

	for i := range raw {
		person := &raw[i]
		lineNum := person.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		if err := validateRawPerson(person, lineNum); err != nil {
			errs = append(errs, *err)
			continue
		}

		id := entities.NormalizeNumeroH(person.NumeroH)
		if first, dup := seen[id]; dup {
			errs = append(errs, ImportError{
				Line:    lineNum,
				Field:   "numeroH",
				Value:   id,
				Message: fmt.Sprintf("duplicate numeroH %q (first seen on line %d)", id, first),
			})
			continue
		}
		seen[id] = lineNum

		valid = append(valid, *person)
	}

	return valid, errs
}

// validateRawPerson validates a single raw person and returns an error if invalid.
func validateRawPerson(raw *parsers.RawPerson, lineNum int) *ImportError {
	numeroH := entities.NormalizeNumeroH(raw.NumeroH)
	if numeroH == "" {
		return &ImportError{Line: lineNum, Field: "numeroH", Message: "missing required field: numeroH"}
	}
	if isBlank(raw.Prenom) {
		return &ImportError{Line: lineNum, Field: "prenom", Message: "missing required field: prenom"}
	}
	if raw.Generation != "" {
		if _, ok := entities.ParseGeneration(raw.Generation); !ok {
			return &ImportError{
				Line:    lineNum,
				Field:   "generation",
				Value:   raw.Generation,
				Message: fmt.Sprintf("invalid generation %q (expected G<number>)", raw.Generation),
			}
		}
	}
	if numeroH == entities.NormalizeNumeroH(raw.NumeroHPere) || numeroH == entities.NormalizeNumeroH(raw.NumeroHMere) {
		return &ImportError{Line: lineNum, Field: "numeroH", Value: numeroH, Message: "a person cannot be their own parent"}
	}

	return nil
}

// convertToEntities converts raw persons to domain entities.
func (s *RosterService) convertToEntities(raw []parsers.RawPerson) []*entities.Person {
	people := make([]*entities.Person, 0, len(raw))
	now := s.now()

	for i := range raw {
		r := &raw[i]
		declared := r.DeclaredRelatives
		declared.Enfants = append([]entities.DeclaredChild(nil), r.Enfants...)

		people = append(people, &entities.Person{
			NumeroH:    entities.NormalizeNumeroH(r.NumeroH),
			Prenom:     r.Prenom,
			NomFamille: r.NomFamille,
			Genre:      entities.ParseGender(r.Genre),
			BirthDate:  r.DateNaissance,
			DeathDate:  r.DateDeces,
			Photo:      r.Photo,
			Generation: r.Generation,
			CreatedAt:  now,
			UpdatedAt:  now,
			Declared:   declared,
		})
	}

	return people
}

// saveWithConflictHandling saves persons with conflict handling.
func (s *RosterService) saveWithConflictHandling(ctx context.Context, people []*entities.Person, onConflict ConflictStrategy) (imported, skipped int, err error) {
	existing, err := s.existing(ctx, people)
	if err != nil {
		return 0, 0, err
	}

	for _, p := range people {
		if prev, ok := existing[p.NumeroH]; ok {
			if onConflict != ConflictOverwrite {
				skipped++
				continue
			}
			p.CreatedAt = prev.CreatedAt
		}
		if err := s.people.SavePerson(ctx, p); err != nil {
			return imported, skipped, fmt.Errorf("saving %s: %w", p.NumeroH, err)
		}
		imported++
	}

	return imported, skipped, nil
}

// existing looks up which of the persons are already stored, in one query.
func (s *RosterService) existing(ctx context.Context, people []*entities.Person) (map[string]*entities.Person, error) {
	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.NumeroH
	}

	found, err := s.people.FindPeople(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("looking up existing persons: %w", err)
	}

	byID := make(map[string]*entities.Person, len(found))
	for _, p := range found {
		byID[p.NumeroH] = p
	}
	return byID, nil
}
