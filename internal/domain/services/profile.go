package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/ports"
)

// ProfileService assembles the profile the tree engine works on from the
// person directory and the person's confirmed links.
type ProfileService struct {
	people ports.PersonDirectory
	links  ports.LinkStore
}

// NewProfileService creates a new profile service.
func NewProfileService(people ports.PersonDirectory, links ports.LinkStore) *ProfileService {
	return &ProfileService{
		people: people,
		links:  links,
	}
}

// Load reads the person and merges their active links into the profile.
// Returns entities.ErrNotFound if the person is not in the directory.
func (s *ProfileService) Load(ctx context.Context, numeroH string) (entities.PersonProfile, error) {
	numeroH = entities.NormalizeNumeroH(numeroH)
	if numeroH == "" {
		return entities.PersonProfile{}, fmt.Errorf("%w: numeroH is required", entities.ErrValidation)
	}

	person, err := s.people.FindPerson(ctx, numeroH)
	if err != nil {
		return entities.PersonProfile{}, fmt.Errorf("finding person %s: %w", numeroH, err)
	}
	if person == nil {
		return entities.PersonProfile{}, fmt.Errorf("%w: person %s", entities.ErrNotFound, numeroH)
	}

	parentChild, err := s.links.ListMyParentChildLinks(ctx, numeroH)
	if err != nil {
		return entities.PersonProfile{}, fmt.Errorf("listing parent-child links: %w", err)
	}
	couples, err := s.links.ListMyCoupleLinks(ctx, numeroH)
	if err != nil {
		return entities.PersonProfile{}, fmt.Errorf("listing couple links: %w", err)
	}
	links := append(parentChild, couples...)

	relatives, err := s.relatives(ctx, numeroH, links)
	if err != nil {
		return entities.PersonProfile{}, err
	}

	return MergeLinks(person.Profile(), links, relatives), nil
}

// relatives looks up every person on the far side of an active link.
func (s *ProfileService) relatives(ctx context.Context, numeroH string, links []entities.Link) (map[string]*entities.Person, error) {
	ids := make([]string, 0, len(links))
	for i := range links {
		if links[i].IsActive() {
			if other := links[i].Other(numeroH); other != "" {
				ids = append(ids, other)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := s.people.FindPeople(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("looking up relatives: %w", err)
	}
	byID := make(map[string]*entities.Person, len(found))
	for _, p := range found {
		byID[p.NumeroH] = p
	}
	return byID, nil
}

// MergeLinks fills the profile's empty relation slots from active links.
// Declared values always win; pending links are ignored. relatives supplies
// names for the far side of each link and may be nil, in which case the
// link still contributes the identifier.
func MergeLinks(profile entities.PersonProfile, links []entities.Link, relatives map[string]*entities.Person) entities.PersonProfile {
	self := profile.NumeroH
	profile.Enfants = append([]entities.DeclaredChild(nil), profile.Enfants...)

	known := make(map[string]bool, len(profile.Enfants))
	for _, child := range profile.Enfants {
		if id := strings.TrimSpace(child.NumeroH); id != "" {
			known[id] = true
		}
	}

	for i := range links {
		link := &links[i]
		if !link.IsActive() || !link.Involves(self) {
			continue
		}
		other := link.Other(self)
		rel := relatives[other]

		switch {
		case link.Kind == entities.LinkCouple:
			if isBlank(profile.ConjointNumeroH) && isBlank(profile.ConjointPrenom) {
				profile.ConjointNumeroH = other
				if rel != nil {
					profile.ConjointPrenom = rel.Prenom
					profile.ConjointNomFamille = rel.NomFamille
					profile.ConjointGenre = string(rel.Genre)
				}
			}
		case link.ChildID == self:
			mergeParent(&profile, link.ParentRole, other, rel)
		case link.ParentID == self:
			if known[other] {
				continue
			}
			known[other] = true
			child := entities.DeclaredChild{NumeroH: other}
			if rel != nil {
				child.Prenom = rel.Prenom
				child.NomFamille = rel.NomFamille
				child.Genre = string(rel.Genre)
				child.DateNaissance = rel.BirthDate
			}
			profile.Enfants = append(profile.Enfants, child)
		}
	}

	return profile
}

func mergeParent(profile *entities.PersonProfile, role entities.ParentRole, numeroH string, rel *entities.Person) {
	prenom := ""
	if rel != nil {
		prenom = rel.Prenom
	}

	if role == entities.RoleMother {
		if isBlank(profile.NumeroHMere) && isBlank(profile.PrenomMere) {
			profile.NumeroHMere, profile.PrenomMere = numeroH, prenom
		}
		return
	}
	if isBlank(profile.NumeroHPere) && isBlank(profile.PrenomPere) {
		profile.NumeroHPere, profile.PrenomPere = numeroH, prenom
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
