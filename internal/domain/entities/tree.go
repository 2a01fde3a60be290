// Package entities contains core domain data structures.
package entities

// Relation is the role a tree node plays relative to the anchor person.
type Relation string

const (
	RelationFather              Relation = "father"
	RelationMother              Relation = "mother"
	RelationChild               Relation = "child"
	RelationPartner             Relation = "partner"
	RelationBrother             Relation = "brother"
	RelationSister              Relation = "sister"
	RelationUncle               Relation = "uncle"
	RelationAunt                Relation = "aunt"
	RelationCousinMale          Relation = "cousin-m"
	RelationCousinFemale        Relation = "cousin-f"
	RelationPaternalGrandfather Relation = "paternal-grandfather"
	RelationPaternalGrandmother Relation = "paternal-grandmother"
	RelationMaternalGrandfather Relation = "maternal-grandfather"
	RelationMaternalGrandmother Relation = "maternal-grandmother"
)

// NotAvailable is the numeroH carried by placeholder nodes.
const NotAvailable = "N/A"

// TreeNode is one entry of a projected family tree. Nodes reference each other
// by ID only; a built node list is never mutated.
type TreeNode struct {
	ID                string   `json:"id"`
	NumeroH           string   `json:"numeroH"`
	Prenom            string   `json:"prenom"`
	NomFamille        string   `json:"nomFamille"`
	Genre             Gender   `json:"genre"`
	DateNaissance     string   `json:"dateNaissance,omitempty"`
	DateDeces         string   `json:"dateDeces,omitempty"`
	Photo             string   `json:"photo,omitempty"`
	Relation          Relation `json:"relation"`
	Generation        string   `json:"generation"`
	IsVisible         bool     `json:"isVisible"`
	MissingConditions []string `json:"missingConditions,omitempty"`
	ParentRefID       string   `json:"parentRefId,omitempty"`
	ChildRefIDs       []string `json:"childRefIds,omitempty"`
}

// IsPlaceholder reports whether the node stands in for absent data.
func (n *TreeNode) IsPlaceholder() bool {
	return n.NumeroH == NotAvailable
}
