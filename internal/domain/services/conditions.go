package services

import (
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

// RelationCondition names the profile fields a relation slot needs before it
// can be shown in the tree.
type RelationCondition struct {
	Name     string
	Required []string
	Message  string
}

// Conditions shared by the tree engine and the completion advisor. Both go
// through CheckCondition so that they always agree on completeness.
var (
	FatherCondition = RelationCondition{
		Name:     "father",
		Required: []string{"prenomPere", "numeroHPere"},
		Message:  "Father's first name and numeroH are required",
	}
	MotherCondition = RelationCondition{
		Name:     "mother",
		Required: []string{"prenomMere", "numeroHMere"},
		Message:  "Mother's first name and numeroH are required",
	}
	PartnerCondition = RelationCondition{
		Name:     "partner",
		Required: []string{"conjointPrenom", "conjointNumeroH"},
		Message:  "Partner information is required",
	}
	ChildrenCondition = RelationCondition{
		Name:     "children",
		Required: []string{"enfants"},
		Message:  "Add at least one child",
	}
)

// ConditionResult is the outcome of checking one condition.
type ConditionResult struct {
	Satisfied     bool
	MissingFields []string
}

// CheckCondition reports which of cond's required fields are absent or blank
// on the profile, in the order the condition lists them.
func CheckCondition(cond RelationCondition, profile *entities.PersonProfile) ConditionResult {
	var missing []string
	for _, field := range cond.Required {
		if !fieldPresent(profile, field) {
			missing = append(missing, field)
		}
	}
	return ConditionResult{
		Satisfied:     len(missing) == 0,
		MissingFields: missing,
	}
}

func fieldPresent(profile *entities.PersonProfile, field string) bool {
	if field == "enfants" {
		return len(profile.Enfants) > 0
	}
	return strings.TrimSpace(profile.Field(field)) != ""
}
