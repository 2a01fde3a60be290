package services

import (
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

// CompletionRecommendations lists what the person should add to complete
// their tree: father, mother, partner, children, in that order, one entry per
// unsatisfied condition.
func CompletionRecommendations(profile entities.PersonProfile) []string {
	recommendations := make([]string, 0, 4)

	if r := CheckCondition(FatherCondition, &profile); !r.Satisfied {
		recommendations = append(recommendations,
			"Add your father's information: "+strings.Join(r.MissingFields, ", "))
	}
	if r := CheckCondition(MotherCondition, &profile); !r.Satisfied {
		recommendations = append(recommendations,
			"Add your mother's information: "+strings.Join(r.MissingFields, ", "))
	}
	if r := CheckCondition(PartnerCondition, &profile); !r.Satisfied {
		recommendations = append(recommendations,
			"Add your partner's information: "+strings.Join(r.MissingFields, ", "))
	}
	if !CheckCondition(ChildrenCondition, &profile).Satisfied {
		recommendations = append(recommendations, "Add your children to complete the family tree")
	}

	return recommendations
}
