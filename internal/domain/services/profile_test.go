package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/mocks"
)

func seedPeople(t *testing.T, db *mocks.RelationalDB, people ...entities.Person) {
	t.Helper()
	for i := range people {
		require.NoError(t, db.SavePerson(context.Background(), &people[i]))
	}
}

func TestMergeLinks(t *testing.T) {
	now := time.Now()
	links := []entities.Link{
		{ID: "pc_1", Kind: entities.LinkParentChild, Status: entities.LinkActive,
			ParentID: "P1", ChildID: "A1", ParentRole: entities.RoleFather, CreatedAt: now},
		{ID: "pc_2", Kind: entities.LinkParentChild, Status: entities.LinkPending,
			ParentID: "M1", ChildID: "A1", ParentRole: entities.RoleMother, CreatedAt: now},
		{ID: "cp_1", Kind: entities.LinkCouple, Status: entities.LinkActive,
			PersonID1: "A1", PersonID2: "C1", CreatedAt: now},
		{ID: "pc_3", Kind: entities.LinkParentChild, Status: entities.LinkActive,
			ParentID: "A1", ChildID: "K1", CreatedAt: now},
		{ID: "pc_4", Kind: entities.LinkParentChild, Status: entities.LinkActive,
			ParentID: "A1", ChildID: "K2", CreatedAt: now},
	}
	relatives := map[string]*entities.Person{
		"P1": {NumeroH: "P1", Prenom: "Ibrahima"},
		"C1": {NumeroH: "C1", Prenom: "Aissatou", NomFamille: "Bah", Genre: entities.GenderFemale},
		"K2": {NumeroH: "K2", Prenom: "Oumar", Genre: entities.GenderMale},
	}

	profile := amadou()
	profile.Enfants = []entities.DeclaredChild{{NumeroH: "K1", Prenom: "Declared"}}

	merged := MergeLinks(profile, links, relatives)

	assert.Equal(t, "P1", merged.NumeroHPere)
	assert.Equal(t, "Ibrahima", merged.PrenomPere)
	assert.Empty(t, merged.NumeroHMere, "pending links are never merged")
	assert.Equal(t, "C1", merged.ConjointNumeroH)
	assert.Equal(t, "Aissatou", merged.ConjointPrenom)
	assert.Equal(t, "Bah", merged.ConjointNomFamille)
	assert.Equal(t, "FEMALE", merged.ConjointGenre)

	require.Len(t, merged.Enfants, 2)
	assert.Equal(t, "Declared", merged.Enfants[0].Prenom, "declared child wins over linked duplicate")
	assert.Equal(t, "K2", merged.Enfants[1].NumeroH)
	assert.Equal(t, "Oumar", merged.Enfants[1].Prenom)

	assert.Len(t, profile.Enfants, 1, "input profile is not modified")
}

func TestMergeLinks_DeclaredWins(t *testing.T) {
	profile := amadou()
	profile.PrenomPere, profile.NumeroHPere = "Declared", "D1"

	links := []entities.Link{{
		ID: "pc_1", Kind: entities.LinkParentChild, Status: entities.LinkActive,
		ParentID: "P1", ChildID: "A1", ParentRole: entities.RoleFather,
	}}

	merged := MergeLinks(profile, links, nil)
	assert.Equal(t, "D1", merged.NumeroHPere)
	assert.Equal(t, "Declared", merged.PrenomPere)
}

func TestMergeLinks_WithoutDirectoryEntry(t *testing.T) {
	links := []entities.Link{{
		ID: "pc_1", Kind: entities.LinkParentChild, Status: entities.LinkActive,
		ParentID: "M1", ChildID: "A1", ParentRole: entities.RoleMother,
	}}

	merged := MergeLinks(amadou(), links, nil)
	assert.Equal(t, "M1", merged.NumeroHMere)
	assert.Empty(t, merged.PrenomMere)

	// Identifier alone does not complete the slot.
	mother := findNode(t, BuildFamilyTree(merged), entities.RelationMother)
	require.NotNil(t, mother)
	assert.False(t, mother.IsVisible)
	assert.Equal(t, []string{"prenomMere"}, mother.MissingConditions)
}

func TestProfileService_Load(t *testing.T) {
	db := mocks.NewRelationalDB()
	seedPeople(t, db,
		entities.Person{NumeroH: "A1", Prenom: "Amadou", NomFamille: "Diallo", Genre: entities.GenderMale},
		entities.Person{NumeroH: "P1", Prenom: "Ibrahima", NomFamille: "Diallo", Genre: entities.GenderMale},
	)
	db.Put(entities.Link{
		ID: "pc_1", Kind: entities.LinkParentChild, Status: entities.LinkActive,
		ParentID: "P1", ChildID: "A1", ParentRole: entities.RoleFather, InitiatorID: "A1",
	})

	svc := NewProfileService(db, db)
	profile, err := svc.Load(context.Background(), " A1 ")
	require.NoError(t, err)

	assert.Equal(t, "Amadou", profile.Prenom)
	assert.Equal(t, "P1", profile.NumeroHPere)
	assert.Equal(t, "Ibrahima", profile.PrenomPere)

	nodes := BuildFamilyTree(profile)
	assert.True(t, nodes[1].IsVisible)
}

func TestProfileService_Load_Errors(t *testing.T) {
	db := mocks.NewRelationalDB()
	svc := NewProfileService(db, db)
	ctx := context.Background()

	_, err := svc.Load(ctx, "")
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = svc.Load(ctx, "nobody")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	db.Err = entities.ErrTransport
	_, err = svc.Load(ctx, "A1")
	assert.ErrorIs(t, err, entities.ErrTransport)
}
