package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/mocks"
	"github.com/ersonp/kinship-core/internal/infrastructure/parsers"
)

func TestRosterService_Import_Success(t *testing.T) {
	db := mocks.NewRelationalDB()
	svc := NewRosterService(db)

	raw := []parsers.RawPerson{
		{NumeroH: "A1", Prenom: "Amadou", NomFamille: "Diallo", Genre: "homme"},
		{NumeroH: " K1 ", Prenom: "Oumar", Generation: "G2"},
	}

	result, err := svc.Import(context.Background(), raw, ImportOptions{OnConflict: ConflictSkip})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Errors)
	require.Contains(t, db.People, "K1")
	assert.Equal(t, entities.GenderMale, db.People["A1"].Genre)
	assert.Equal(t, "G2", db.People["K1"].Generation)
}

func TestRosterService_Import_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     parsers.RawPerson
		field   string
		message string
	}{
		{
			name:    "missing numeroH",
			raw:     parsers.RawPerson{Prenom: "Amadou"},
			field:   "numeroH",
			message: "missing required field: numeroH",
		},
		{
			name:    "missing prenom",
			raw:     parsers.RawPerson{NumeroH: "A1", Prenom: "  "},
			field:   "prenom",
			message: "missing required field: prenom",
		},
		{
			name:    "malformed generation",
			raw:     parsers.RawPerson{NumeroH: "A1", Prenom: "Amadou", Generation: "first"},
			field:   "generation",
			message: "invalid generation",
		},
		{
			name: "own parent",
			raw: parsers.RawPerson{NumeroH: "A1", Prenom: "Amadou",
				DeclaredRelatives: entities.DeclaredRelatives{NumeroHPere: "A1"}},
			field:   "numeroH",
			message: "cannot be their own parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := mocks.NewRelationalDB()
			svc := NewRosterService(db)

			tt.raw.LineNum = 7
			result, err := svc.Import(context.Background(), []parsers.RawPerson{tt.raw}, ImportOptions{})
			require.NoError(t, err)

			assert.Zero(t, result.Imported)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, 7, result.Errors[0].Line)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.Contains(t, result.Errors[0].Message, tt.message)
			assert.Empty(t, db.People)
		})
	}
}

func TestRosterService_Import_DuplicateInRoster(t *testing.T) {
	db := mocks.NewRelationalDB()
	svc := NewRosterService(db)

	raw := []parsers.RawPerson{
		{NumeroH: "A1", Prenom: "Amadou", LineNum: 2},
		{NumeroH: "A1", Prenom: "Other", LineNum: 3},
	}

	result, err := svc.Import(context.Background(), raw, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "line 3: duplicate numeroH \"A1\" (first seen on line 2)", result.Errors[0].Error())
	assert.Equal(t, "Amadou", db.People["A1"].Prenom)
}

func TestRosterService_Import_DryRun(t *testing.T) {
	db := mocks.NewRelationalDB()
	svc := NewRosterService(db)

	result, err := svc.Import(context.Background(), []parsers.RawPerson{
		{NumeroH: "A1", Prenom: "Amadou"},
	}, ImportOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, db.People)
}

func TestRosterService_Import_Conflicts(t *testing.T) {
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		strategy   ConflictStrategy
		imported   int
		skipped    int
		wantPrenom string
	}{
		{name: "skip", strategy: ConflictSkip, imported: 0, skipped: 1, wantPrenom: "Old"},
		{name: "default skips", strategy: "", imported: 0, skipped: 1, wantPrenom: "Old"},
		{name: "overwrite", strategy: ConflictOverwrite, imported: 1, skipped: 0, wantPrenom: "New"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := mocks.NewRelationalDB()
			db.People["A1"] = &entities.Person{NumeroH: "A1", Prenom: "Old", CreatedAt: created}
			svc := NewRosterService(db)

			result, err := svc.Import(context.Background(), []parsers.RawPerson{
				{NumeroH: "A1", Prenom: "New"},
			}, ImportOptions{OnConflict: tt.strategy})
			require.NoError(t, err)

			assert.Equal(t, tt.imported, result.Imported)
			assert.Equal(t, tt.skipped, result.Skipped)
			assert.Equal(t, tt.wantPrenom, db.People["A1"].Prenom)
			assert.True(t, created.Equal(db.People["A1"].CreatedAt), "creation time is preserved")
		})
	}
}

func TestRosterService_Import_StoreError(t *testing.T) {
	db := mocks.NewRelationalDB()
	db.Err = errors.New("database locked")
	svc := NewRosterService(db)

	_, err := svc.Import(context.Background(), []parsers.RawPerson{
		{NumeroH: "A1", Prenom: "Amadou"},
	}, ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database locked")
}

func TestImportError_Error(t *testing.T) {
	assert.Equal(t, "line 3: bad", ImportError{Line: 3, Message: "bad"}.Error())
	assert.Equal(t, "bad", ImportError{Message: "bad"}.Error())
}
