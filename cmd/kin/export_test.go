package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

func sampleNodes() []entities.TreeNode {
	return []entities.TreeNode{
		{
			ID:          "father",
			NumeroH:     "P1",
			Prenom:      "Ibrahima",
			NomFamille:  "Diallo",
			Genre:       entities.GenderMale,
			Relation:    entities.RelationFather,
			Generation:  "G0",
			IsVisible:   true,
			ChildRefIDs: []string{"self"},
		},
		{
			ID:          "self",
			NumeroH:     "A1",
			Prenom:      "Amadou",
			NomFamille:  "Diallo",
			Genre:       entities.GenderMale,
			Relation:    entities.RelationChild,
			Generation:  "G1",
			IsVisible:   true,
			ParentRefID: "father",
		},
		{
			ID:                "mother",
			NumeroH:           entities.NotAvailable,
			Relation:          entities.RelationMother,
			Generation:        "G0",
			MissingConditions: []string{"prenomMere", "numeroHMere"},
		},
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	err := formatJSON(&buf, sampleNodes()[:1])
	require.NoError(t, err)

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	require.Len(t, parsed, 1)
	assert.Equal(t, "father", parsed[0]["id"])
	assert.Equal(t, "P1", parsed[0]["numeroH"])
	assert.Equal(t, "Ibrahima", parsed[0]["prenom"])
	assert.Equal(t, "father", parsed[0]["relation"])
	assert.Equal(t, "G0", parsed[0]["generation"])
	assert.Equal(t, true, parsed[0]["isVisible"])
}

func TestFormatJSON_EmptyNodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatCSV(t *testing.T) {
	var buf bytes.Buffer
	err := formatCSV(&buf, sampleNodes())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "id,numeroH,prenom,nomFamille,genre,relation,generation,visible,missing,parent_ref,child_refs", lines[0])
	assert.Contains(t, lines[1], "father,P1,Ibrahima,Diallo")
	assert.True(t, strings.HasSuffix(lines[1], ",true,,,self"))
	assert.Contains(t, lines[3], "prenomMere;numeroHMere")
	assert.Contains(t, lines[3], "false")
}

func TestFormatCSV_SpecialCharacters(t *testing.T) {
	nodes := []entities.TreeNode{{ID: "n1", Prenom: "Name, with comma", NomFamille: `the "elder"`}}

	var buf bytes.Buffer
	require.NoError(t, formatCSV(&buf, nodes))

	assert.Contains(t, buf.String(), `"Name, with comma"`)
	assert.Contains(t, buf.String(), `"the ""elder"""`)
}

func TestFormatMarkdown(t *testing.T) {
	profile := entities.PersonProfile{NumeroH: "A1", Prenom: "Amadou", NomFamille: "Diallo"}

	var buf bytes.Buffer
	err := formatMarkdown(&buf, profile, sampleNodes())
	require.NoError(t, err)

	result := buf.String()
	assert.Contains(t, result, "# Family Tree of Amadou Diallo")
	assert.Contains(t, result, "Total: 3 nodes")
	assert.Contains(t, result, "| Generation | Relation | Name | numeroH | Missing |")
	assert.Contains(t, result, "| G0 | father | Ibrahima Diallo | P1 |  |")
	assert.Contains(t, result, "| G0 | mother |  | N/A | prenomMere, numeroHMere |")
}

func TestFormatMarkdown_TitleFallsBackToNumeroH(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatMarkdown(&buf, entities.PersonProfile{NumeroH: "A1"}, nil))
	assert.Contains(t, buf.String(), "# Family Tree of A1")
}

func TestExporter_UnknownFormat(t *testing.T) {
	e := &exporter{format: "xml"}
	err := e.formatNodes(&bytes.Buffer{}, entities.PersonProfile{}, nil)
	assert.ErrorContains(t, err, "unknown format")
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "pipe escaped",
			input:    "value|with|pipes",
			expected: "value\\|with\\|pipes",
		},
		{
			name:     "newline replaced",
			input:    "line1\nline2",
			expected: "line1 line2",
		},
		{
			name:     "no change needed",
			input:    "simple text",
			expected: "simple text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeMarkdown(tt.input))
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, contains(validExportFormats, "markdown"))
	assert.True(t, contains(validTreeFormats, "list"))
	assert.False(t, contains(validExportFormats, "xml"))
	assert.False(t, contains(nil, "json"))
}
