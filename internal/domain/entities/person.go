package entities

import (
	"strings"
	"time"
)

// Gender is the closed set of gender tags carried by a person record.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// ParseGender maps the free-form tags found in profile data (HOMME, FEMME,
// MALE, F, ...) onto the closed Gender set. Unknown or empty input is OTHER.
func ParseGender(s string) Gender {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MALE", "HOMME", "M", "H":
		return GenderMale
	case "FEMALE", "FEMME", "F":
		return GenderFemale
	default:
		return GenderOther
	}
}

// Person is the identity record stored in the person directory.
type Person struct {
	NumeroH    string    `json:"numeroH"`
	Prenom     string    `json:"prenom"`
	NomFamille string    `json:"nomFamille"`
	Genre      Gender    `json:"genre"`
	BirthDate  string    `json:"dateNaissance,omitempty"`
	DeathDate  string    `json:"dateDeces,omitempty"`
	Photo      string    `json:"photo,omitempty"`
	Generation string    `json:"generation,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Self-declared relatives, kept as typed by the person.
	Declared DeclaredRelatives `json:"declared"`
}

// DeclaredRelatives holds the relatives a person typed into their own profile,
// independent of any confirmed link.
type DeclaredRelatives struct {
	PrenomPere         string          `json:"prenomPere,omitempty" yaml:"prenomPere,omitempty"`
	NumeroHPere        string          `json:"numeroHPere,omitempty" yaml:"numeroHPere,omitempty"`
	PrenomMere         string          `json:"prenomMere,omitempty" yaml:"prenomMere,omitempty"`
	NumeroHMere        string          `json:"numeroHMere,omitempty" yaml:"numeroHMere,omitempty"`
	ConjointPrenom     string          `json:"conjointPrenom,omitempty" yaml:"conjointPrenom,omitempty"`
	ConjointNumeroH    string          `json:"conjointNumeroH,omitempty" yaml:"conjointNumeroH,omitempty"`
	ConjointNomFamille string          `json:"conjointNomFamille,omitempty" yaml:"conjointNomFamille,omitempty"`
	ConjointGenre      string          `json:"conjointGenre,omitempty" yaml:"conjointGenre,omitempty"`
	Enfants            []DeclaredChild `json:"enfants,omitempty" yaml:"enfants,omitempty"`
}

// DeclaredChild is one entry of a profile's children list. Every field is
// optional; the tree engine fills defaults for missing ones.
type DeclaredChild struct {
	NumeroH       string `json:"numeroH,omitempty" yaml:"numeroH,omitempty"`
	Prenom        string `json:"prenom,omitempty" yaml:"prenom,omitempty"`
	NomFamille    string `json:"nomFamille,omitempty" yaml:"nomFamille,omitempty"`
	Genre         string `json:"genre,omitempty" yaml:"genre,omitempty"`
	DateNaissance string `json:"dateNaissance,omitempty" yaml:"dateNaissance,omitempty"`
}

// PersonProfile is the flat value object the tree engine and the completion
// advisor work on. Field names follow the profile vocabulary because the
// missing-condition lists report them verbatim.
type PersonProfile struct {
	NumeroH       string `json:"numeroH" yaml:"numeroH"`
	Prenom        string `json:"prenom" yaml:"prenom"`
	NomFamille    string `json:"nomFamille" yaml:"nomFamille"`
	Genre         string `json:"genre,omitempty" yaml:"genre,omitempty"`
	DateNaissance string `json:"dateNaissance,omitempty" yaml:"dateNaissance,omitempty"`
	DateDeces     string `json:"dateDeces,omitempty" yaml:"dateDeces,omitempty"`
	Photo         string `json:"photo,omitempty" yaml:"photo,omitempty"`
	Generation    string `json:"generation,omitempty" yaml:"generation,omitempty"`

	DeclaredRelatives `yaml:",inline"`
}

// Profile projects a stored person onto the flat profile shape.
func (p *Person) Profile() PersonProfile {
	declared := p.Declared
	declared.Enfants = append([]DeclaredChild(nil), p.Declared.Enfants...)
	return PersonProfile{
		NumeroH:           p.NumeroH,
		Prenom:            p.Prenom,
		NomFamille:        p.NomFamille,
		Genre:             string(p.Genre),
		DateNaissance:     p.BirthDate,
		DateDeces:         p.DeathDate,
		Photo:             p.Photo,
		Generation:        p.Generation,
		DeclaredRelatives: declared,
	}
}

// Field returns the value of a profile field by its vocabulary name. Unknown
// names read as empty.
func (p *PersonProfile) Field(name string) string {
	switch name {
	case "numeroH":
		return p.NumeroH
	case "prenom":
		return p.Prenom
	case "nomFamille":
		return p.NomFamille
	case "prenomPere":
		return p.PrenomPere
	case "numeroHPere":
		return p.NumeroHPere
	case "prenomMere":
		return p.PrenomMere
	case "numeroHMere":
		return p.NumeroHMere
	case "conjointPrenom":
		return p.ConjointPrenom
	case "conjointNumeroH":
		return p.ConjointNumeroH
	default:
		return ""
	}
}

// NormalizeNumeroH trims surrounding whitespace from an identifier. Inner
// spaces are part of some legacy identifiers and are kept.
func NormalizeNumeroH(id string) string {
	return strings.TrimSpace(id)
}
