package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/ports"
)

// PersonHandler handles person directory operations.
type PersonHandler struct {
	people ports.PersonDirectory
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(people ports.PersonDirectory) *PersonHandler {
	return &PersonHandler{
		people: people,
	}
}

// AddPersonRequest is the raw input for a new person record.
type AddPersonRequest struct {
	NumeroH    string
	Prenom     string
	NomFamille string
	Genre      string
	Generation string
	BirthDate  string
	DeathDate  string
	Photo      string
	Declared   entities.DeclaredRelatives
}

// HandleAdd stores a new person. An existing numeroH is a conflict; use the
// import command with overwrite to replace records.
func (h *PersonHandler) HandleAdd(ctx context.Context, req AddPersonRequest) (*entities.Person, error) {
	numeroH := entities.NormalizeNumeroH(req.NumeroH)
	if numeroH == "" {
		return nil, fmt.Errorf("%w: numeroH is required", entities.ErrValidation)
	}
	prenom := strings.TrimSpace(req.Prenom)
	if prenom == "" {
		return nil, fmt.Errorf("%w: prenom is required", entities.ErrValidation)
	}
	generation := strings.TrimSpace(req.Generation)
	if generation != "" {
		if _, ok := entities.ParseGeneration(generation); !ok {
			return nil, fmt.Errorf("%w: invalid generation %q (expected G<integer>)", entities.ErrValidation, req.Generation)
		}
	}

	existing, err := h.people.FindPerson(ctx, numeroH)
	if err != nil {
		return nil, fmt.Errorf("checking person %s: %w", numeroH, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: person %s already exists", entities.ErrConflict, numeroH)
	}

	person := &entities.Person{
		NumeroH:    numeroH,
		Prenom:     prenom,
		NomFamille: strings.TrimSpace(req.NomFamille),
		Genre:      entities.ParseGender(req.Genre),
		BirthDate:  strings.TrimSpace(req.BirthDate),
		DeathDate:  strings.TrimSpace(req.DeathDate),
		Photo:      strings.TrimSpace(req.Photo),
		Generation: generation,
		Declared:   req.Declared,
	}
	if err := h.people.SavePerson(ctx, person); err != nil {
		return nil, fmt.Errorf("saving person %s: %w", numeroH, err)
	}
	return person, nil
}

// HandleShow returns a stored person or entities.ErrNotFound.
func (h *PersonHandler) HandleShow(ctx context.Context, numeroH string) (*entities.Person, error) {
	numeroH = entities.NormalizeNumeroH(numeroH)
	if numeroH == "" {
		return nil, fmt.Errorf("%w: numeroH is required", entities.ErrValidation)
	}

	person, err := h.people.FindPerson(ctx, numeroH)
	if err != nil {
		return nil, fmt.Errorf("finding person %s: %w", numeroH, err)
	}
	if person == nil {
		return nil, fmt.Errorf("%w: person %s", entities.ErrNotFound, numeroH)
	}
	return person, nil
}

// HandleCount returns the number of stored persons.
func (h *PersonHandler) HandleCount(ctx context.Context) (int, error) {
	return h.people.CountPeople(ctx)
}
