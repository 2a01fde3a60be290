package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/mocks"
	"github.com/ersonp/kinship-core/internal/domain/services"
)

func newTestImportHandler() (*ImportHandler, *mocks.RelationalDB) {
	db := mocks.NewRelationalDB()
	return NewImportHandler(services.NewRosterService(db)), db
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportHandler_Handle_JSONFile(t *testing.T) {
	handler, db := newTestImportHandler()

	jsonFile := writeFile(t, "people.json",
		`[{"numeroH": "A1", "prenom": "Amadou", "nomFamille": "Diallo", "genre": "HOMME", "prenomPere": "Ibrahima", "numeroHPere": "P1"}]`)

	result, err := handler.Handle(context.Background(), jsonFile, ImportOptions{
		OnConflict: services.ConflictOverwrite,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)

	require.Contains(t, db.People, "A1")
	assert.Equal(t, entities.GenderMale, db.People["A1"].Genre)
	assert.Equal(t, "P1", db.People["A1"].Declared.NumeroHPere)
}

func TestImportHandler_Handle_CSVFile(t *testing.T) {
	handler, db := newTestImportHandler()

	csvFile := writeFile(t, "people.csv",
		"numeroH,prenom,nomFamille,enfants\nA1,Amadou,Diallo,K1:Oumar;K2:Awa\n")

	result, err := handler.Handle(context.Background(), csvFile, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Contains(t, db.People, "A1")
	assert.Len(t, db.People["A1"].Declared.Enfants, 2)
}

func TestImportHandler_Handle_YAMLFile(t *testing.T) {
	handler, db := newTestImportHandler()

	yamlFile := writeFile(t, "people.yaml", `
- numeroH: A1
  prenom: Amadou
- numeroH: B1
  prenom: Binta
  conjointNumeroH: A1
  conjointPrenom: Amadou
`)

	result, err := handler.Handle(context.Background(), yamlFile, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, "A1", db.People["B1"].Declared.ConjointNumeroH)
}

func TestImportHandler_Handle_ExplicitFormat(t *testing.T) {
	handler, _ := newTestImportHandler()

	// .txt extension but JSON content
	txtFile := writeFile(t, "people.txt", `[{"numeroH": "A1", "prenom": "Amadou"}]`)

	result, err := handler.Handle(context.Background(), txtFile, ImportOptions{
		Format: "json",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestImportHandler_Handle_UnsupportedFormat(t *testing.T) {
	handler, _ := newTestImportHandler()

	xmlFile := writeFile(t, "people.xml", "<people/>")

	_, err := handler.Handle(context.Background(), xmlFile, ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestImportHandler_Handle_InvalidConflictStrategy(t *testing.T) {
	handler, _ := newTestImportHandler()

	jsonFile := writeFile(t, "people.json", `[]`)

	_, err := handler.Handle(context.Background(), jsonFile, ImportOptions{OnConflict: "merge"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid conflict strategy")
}

func TestImportHandler_Handle_FileNotFound(t *testing.T) {
	handler, _ := newTestImportHandler()

	_, err := handler.Handle(context.Background(), "/nonexistent/people.json", ImportOptions{})

	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.Contains(t, err.Error(), "opening file")
}

func TestImportHandler_Handle_RejectsBadRequests(t *testing.T) {
	dir := t.TempDir()
	jsonFile := writeFile(t, "people.json", `[{"numeroH": "A1", "prenom": "Amadou"}]`)

	tests := []struct {
		name    string
		path    string
		opts    ImportOptions
		wantMsg string
	}{
		{name: "empty path", path: "  ", wantMsg: "path is required"},
		{name: "unknown strategy", path: jsonFile, opts: ImportOptions{OnConflict: "merge"}, wantMsg: "invalid conflict strategy"},
		{name: "strategy checked before the file", path: "/nonexistent/people.json", opts: ImportOptions{OnConflict: "merge"}, wantMsg: "invalid conflict strategy"},
		{name: "unknown explicit format", path: jsonFile, opts: ImportOptions{Format: "xml"}, wantMsg: `unsupported format "xml"`},
		{name: "no extension", path: filepath.Join(dir, "roster"), wantMsg: "unsupported format for file"},
		{name: "directory", path: filepath.Join(dir, "roster.json"), wantMsg: "is a directory"},
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "roster.json"), 0755))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, db := newTestImportHandler()

			_, err := handler.Handle(context.Background(), tt.path, tt.opts)

			assert.ErrorIs(t, err, entities.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, db.People)
		})
	}
}

func TestImportHandler_Handle_FormatIsCaseInsensitive(t *testing.T) {
	handler, _ := newTestImportHandler()

	txtFile := writeFile(t, "people.txt", "numeroH,prenom\nA1,Amadou\nB1,Binta\n")

	result, err := handler.Handle(context.Background(), txtFile, ImportOptions{Format: " CSV "})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 2, result.Imported)
}

func TestImportHandler_Handle_ValidationErrors(t *testing.T) {
	handler, db := newTestImportHandler()

	jsonFile := writeFile(t, "people.json", `[
		{"numeroH": "A1", "prenom": "Amadou"},
		{"numeroH": "", "prenom": "Nobody"},
		{"numeroH": "A1", "prenom": "Again"}
	]`)

	result, err := handler.Handle(context.Background(), jsonFile, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "numeroH", result.Errors[0].Field)
	assert.Contains(t, result.Errors[1].Message, "duplicate numeroH")
	assert.Equal(t, "Amadou", db.People["A1"].Prenom)
}

func TestImportHandler_Handle_SkipExisting(t *testing.T) {
	handler, db := newTestImportHandler()
	db.People["A1"] = &entities.Person{NumeroH: "A1", Prenom: "Original"}

	jsonFile := writeFile(t, "people.json", `[{"numeroH": "A1", "prenom": "Replacement"}]`)

	result, err := handler.Handle(context.Background(), jsonFile, ImportOptions{OnConflict: services.ConflictSkip})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "Original", db.People["A1"].Prenom)
}

func TestImportHandler_Handle_DryRun(t *testing.T) {
	handler, db := newTestImportHandler()

	jsonFile := writeFile(t, "people.json", `[{"numeroH": "A1", "prenom": "Amadou"}]`)

	result, err := handler.Handle(context.Background(), jsonFile, ImportOptions{
		DryRun: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, db.People, "nothing should be saved in dry run")
}

func TestImportHandler_Handle_EmptyFile(t *testing.T) {
	handler, _ := newTestImportHandler()

	jsonFile := writeFile(t, "empty.json", "[]")

	result, err := handler.Handle(context.Background(), jsonFile, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)
}
