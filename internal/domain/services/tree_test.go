package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

func amadou() entities.PersonProfile {
	return entities.PersonProfile{
		NumeroH:    "A1",
		Prenom:     "Amadou",
		NomFamille: "Diallo",
		Genre:      "HOMME",
	}
}

func findNode(t *testing.T, nodes []entities.TreeNode, relation entities.Relation) *entities.TreeNode {
	t.Helper()
	for i := range nodes {
		if nodes[i].Relation == relation {
			return &nodes[i]
		}
	}
	return nil
}

func countRelation(nodes []entities.TreeNode, relation entities.Relation) int {
	n := 0
	for i := range nodes {
		if nodes[i].Relation == relation {
			n++
		}
	}
	return n
}

func TestBuildFamilyTree_EmptyProfile(t *testing.T) {
	nodes := BuildFamilyTree(amadou())

	require.Len(t, nodes, 3)

	self := nodes[0]
	assert.Equal(t, "self-A1", self.ID)
	assert.True(t, self.IsVisible)
	assert.Equal(t, entities.RelationChild, self.Relation)
	assert.Equal(t, "G1", self.Generation)
	assert.Equal(t, entities.GenderMale, self.Genre)

	father := nodes[1]
	assert.Equal(t, "father-placeholder", father.ID)
	assert.False(t, father.IsVisible)
	assert.Equal(t, entities.NotAvailable, father.NumeroH)
	assert.Equal(t, []string{"prenomPere", "numeroHPere"}, father.MissingConditions)
	assert.True(t, father.IsPlaceholder())

	mother := nodes[2]
	assert.Equal(t, "mother-placeholder", mother.ID)
	assert.False(t, mother.IsVisible)
	assert.Equal(t, []string{"prenomMere", "numeroHMere"}, mother.MissingConditions)

	assert.Zero(t, countRelation(nodes, entities.RelationPaternalGrandfather))
	assert.Zero(t, countRelation(nodes, entities.RelationMaternalGrandfather))
	assert.Empty(t, self.ParentRefID)
}

func TestBuildFamilyTree_FatherPresent(t *testing.T) {
	profile := amadou()
	profile.PrenomPere = "Ibrahima"
	profile.NumeroHPere = "P1"

	nodes := BuildFamilyTree(profile)
	require.Len(t, nodes, 5)

	father := nodes[1]
	assert.Equal(t, "father-P1", father.ID)
	assert.True(t, father.IsVisible)
	assert.Equal(t, "G0", father.Generation)
	assert.Equal(t, "Ibrahima", father.Prenom)
	assert.Equal(t, "Diallo", father.NomFamille)
	assert.Equal(t, []string{"self-A1"}, father.ChildRefIDs)
	assert.Equal(t, "father-P1", nodes[0].ParentRefID)

	assert.False(t, nodes[2].IsVisible, "mother stays a placeholder")

	grandfather, grandmother := nodes[3], nodes[4]
	assert.Equal(t, entities.RelationPaternalGrandfather, grandfather.Relation)
	assert.Equal(t, entities.RelationPaternalGrandmother, grandmother.Relation)
	for _, gp := range []entities.TreeNode{grandfather, grandmother} {
		assert.False(t, gp.IsVisible)
		assert.Equal(t, "G-1", gp.Generation)
		assert.Equal(t, []string{"father-P1"}, gp.ChildRefIDs)
		assert.NotEmpty(t, gp.MissingConditions)
	}
	assert.Equal(t, "paternal-grandfather-placeholder", nodes[1].ParentRefID)
}

func TestBuildFamilyTree_PartialFather(t *testing.T) {
	tests := []struct {
		name    string
		prenom  string
		numeroH string
		missing []string
	}{
		{name: "only name", prenom: "Ibrahima", missing: []string{"numeroHPere"}},
		{name: "only numeroH", numeroH: "P1", missing: []string{"prenomPere"}},
		{name: "whitespace name", prenom: "   ", numeroH: "P1", missing: []string{"prenomPere"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := amadou()
			profile.PrenomPere = tt.prenom
			profile.NumeroHPere = tt.numeroH

			nodes := BuildFamilyTree(profile)
			father := findNode(t, nodes, entities.RelationFather)
			require.NotNil(t, father)
			assert.False(t, father.IsVisible)
			assert.Equal(t, tt.missing, father.MissingConditions)
			assert.Zero(t, countRelation(nodes, entities.RelationPaternalGrandfather))
			assert.Zero(t, countRelation(nodes, entities.RelationPaternalGrandmother))
		})
	}
}

func TestBuildFamilyTree_FullProfile(t *testing.T) {
	profile := amadou()
	profile.Generation = "G3"
	profile.PrenomPere, profile.NumeroHPere = "Ibrahima", "P1"
	profile.PrenomMere, profile.NumeroHMere = "Mariama", "M1"
	profile.ConjointPrenom, profile.ConjointNumeroH = "Aissatou", "C1"
	profile.ConjointGenre = "FEMME"
	profile.Enfants = []entities.DeclaredChild{
		{NumeroH: "K1", Prenom: "Oumar", Genre: "HOMME"},
		{Prenom: "Kadiatou", Genre: "FEMME", NomFamille: "Bah"},
		{},
	}

	nodes := BuildFamilyTree(profile)

	relations := make([]entities.Relation, len(nodes))
	for i := range nodes {
		relations[i] = nodes[i].Relation
	}
	assert.Equal(t, []entities.Relation{
		entities.RelationChild,
		entities.RelationFather,
		entities.RelationMother,
		entities.RelationPaternalGrandfather,
		entities.RelationPaternalGrandmother,
		entities.RelationMaternalGrandfather,
		entities.RelationMaternalGrandmother,
		entities.RelationPartner,
		entities.RelationBrother,
		entities.RelationSister,
		entities.RelationSister,
	}, relations)

	self := nodes[0]
	assert.Equal(t, "G3", self.Generation)
	assert.Equal(t, "father-P1", self.ParentRefID)
	assert.Equal(t, []string{"child-K1", "child-#1", "child-#2"}, self.ChildRefIDs)

	assert.Equal(t, "G2", nodes[1].Generation)
	assert.Equal(t, "G2", nodes[2].Generation)
	assert.Equal(t, "G1", nodes[3].Generation)
	assert.Equal(t, []string{"mother-M1"}, nodes[5].ChildRefIDs)

	partner := nodes[7]
	assert.Equal(t, "partner-C1", partner.ID)
	assert.Equal(t, "G3", partner.Generation)
	assert.Equal(t, "Diallo", partner.NomFamille)
	assert.Equal(t, entities.GenderFemale, partner.Genre)
	assert.Empty(t, partner.ParentRefID)
	assert.Empty(t, partner.ChildRefIDs)

	first, second, third := nodes[8], nodes[9], nodes[10]
	assert.Equal(t, "child-K1", first.ID)
	assert.Equal(t, "G4", first.Generation)
	assert.Equal(t, "self-A1", first.ParentRefID)

	assert.Equal(t, "child-#1", second.ID)
	assert.Equal(t, "ENF1", second.NumeroH)
	assert.Equal(t, "Bah", second.NomFamille)

	assert.Equal(t, "child-#2", third.ID)
	assert.Equal(t, "Child", third.Prenom)
	assert.Equal(t, "Diallo", third.NomFamille)
	assert.Equal(t, entities.GenderOther, third.Genre)
	assert.True(t, third.IsVisible)
}

func TestBuildFamilyTree_MotherOnlyGatesMaternalSide(t *testing.T) {
	profile := amadou()
	profile.PrenomMere, profile.NumeroHMere = "Mariama", "M1"

	nodes := BuildFamilyTree(profile)

	assert.Zero(t, countRelation(nodes, entities.RelationPaternalGrandfather))
	assert.Equal(t, 1, countRelation(nodes, entities.RelationMaternalGrandfather))
	assert.Equal(t, 1, countRelation(nodes, entities.RelationMaternalGrandmother))
	assert.Equal(t, "mother-M1", nodes[0].ParentRefID)
}

func TestBuildFamilyTree_PartnerNeedsBothFields(t *testing.T) {
	profile := amadou()
	profile.ConjointPrenom = "Aissatou"

	nodes := BuildFamilyTree(profile)
	assert.Nil(t, findNode(t, nodes, entities.RelationPartner))
}

func TestBuildFamilyTree_Generations(t *testing.T) {
	tests := []struct {
		name       string
		generation string
		anchor     string
		parent     string
		child      string
	}{
		{name: "declared", generation: "G3", anchor: "G3", parent: "G2", child: "G4"},
		{name: "negative", generation: "G-2", anchor: "G-2", parent: "G-3", child: "G-1"},
		{name: "missing", generation: "", anchor: "G1", parent: "G0", child: "G2"},
		{name: "malformed", generation: "third", anchor: "G1", parent: "G-1", child: "G1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := amadou()
			profile.Generation = tt.generation
			profile.PrenomPere, profile.NumeroHPere = "Ibrahima", "P1"
			profile.Enfants = []entities.DeclaredChild{{Prenom: "Oumar"}}

			nodes := BuildFamilyTree(profile)
			assert.Equal(t, tt.anchor, nodes[0].Generation)
			assert.Equal(t, tt.parent, findNode(t, nodes, entities.RelationFather).Generation)
			assert.Equal(t, tt.child, nodes[len(nodes)-1].Generation)
		})
	}
}

func TestBuildFamilyTree_Idempotent(t *testing.T) {
	profile := amadou()
	profile.PrenomPere, profile.NumeroHPere = "Ibrahima", "P1"
	profile.ConjointPrenom, profile.ConjointNumeroH = "Aissatou", "C1"
	profile.Enfants = []entities.DeclaredChild{{Prenom: "Oumar"}, {NumeroH: "K2"}}

	assert.Equal(t, BuildFamilyTree(profile), BuildFamilyTree(profile))
}

func TestBuildFamilyTree_ExactlyOneVisibleSelf(t *testing.T) {
	profiles := []entities.PersonProfile{
		{},
		amadou(),
		{NumeroH: "X", Generation: "garbage", DeclaredRelatives: entities.DeclaredRelatives{Enfants: []entities.DeclaredChild{{}, {}}}},
	}

	for _, profile := range profiles {
		nodes := BuildFamilyTree(profile)
		selves := 0
		for i := range nodes {
			if strings.HasPrefix(nodes[i].ID, selfIDPrefix) && nodes[i].IsVisible {
				selves++
			}
		}
		assert.Equal(t, 1, selves)
		assert.True(t, nodes[0].IsVisible)
	}
}

func TestBuildFamilyTree_ChildIDsStayUnique(t *testing.T) {
	profile := amadou()
	profile.Enfants = []entities.DeclaredChild{
		{NumeroH: "1", Prenom: "Oumar"},
		{Prenom: "Awa"},
		{NumeroH: "K2"},
		{NumeroH: " K2 "},
	}

	nodes := BuildFamilyTree(profile)

	seen := make(map[string]int, len(nodes))
	for i := range nodes {
		seen[nodes[i].ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}

	self := nodes[0]
	assert.Equal(t, []string{"child-1", "child-#1", "child-K2", "child-K2#3"}, self.ChildRefIDs)
	assert.Equal(t, "ENF1", nodes[len(nodes)-3].NumeroH)
}

func TestBuildFamilyTree_DoesNotMutateInput(t *testing.T) {
	profile := amadou()
	profile.Enfants = []entities.DeclaredChild{{Prenom: "Oumar"}}

	BuildFamilyTree(profile)

	assert.Equal(t, []entities.DeclaredChild{{Prenom: "Oumar"}}, profile.Enfants)
}
