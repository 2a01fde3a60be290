package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

// CSVParser parses persons from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed persons.
// Required columns: numeroH, prenom. Optional columns use the profile field
// names (nomFamille, genre, prenomPere, conjointNumeroH, ...). The enfants
// column lists children as "numeroH:prenom" entries separated by ';'.
func (p *CSVParser) Parse(r io.Reader) ([]RawPerson, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	requiredCols := []string{"numeroH", "prenom"}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawPersons.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawPerson, error) {
	var people []RawPerson
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		person, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		people = append(people, person)
	}

	return people, nil
}

// parseRecord converts a CSV record to a RawPerson.
func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (RawPerson, error) {
	col := func(name string) string {
		return getColumn(record, colIndex, name)
	}

	person := RawPerson{
		NumeroH:       col("numeroH"),
		Prenom:        col("prenom"),
		NomFamille:    col("nomFamille"),
		Genre:         col("genre"),
		DateNaissance: col("dateNaissance"),
		DateDeces:     col("dateDeces"),
		Photo:         col("photo"),
		Generation:    col("generation"),
		DeclaredRelatives: entities.DeclaredRelatives{
			PrenomPere:         col("prenomPere"),
			NumeroHPere:        col("numeroHPere"),
			PrenomMere:         col("prenomMere"),
			NumeroHMere:        col("numeroHMere"),
			ConjointPrenom:     col("conjointPrenom"),
			ConjointNumeroH:    col("conjointNumeroH"),
			ConjointNomFamille: col("conjointNomFamille"),
			ConjointGenre:      col("conjointGenre"),
		},
		LineNum: lineNum,
	}

	children, err := parseChildren(col("enfants"))
	if err != nil {
		return RawPerson{}, fmt.Errorf("line %d: %w", lineNum, err)
	}
	person.Enfants = children

	return person, nil
}

// parseChildren decodes the compact enfants cell.
func parseChildren(cell string) ([]entities.DeclaredChild, error) {
	if strings.TrimSpace(cell) == "" {
		return nil, nil
	}

	var children []entities.DeclaredChild
	for _, entry := range strings.Split(cell, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		numeroH, prenom, _ := strings.Cut(entry, ":")
		numeroH, prenom = strings.TrimSpace(numeroH), strings.TrimSpace(prenom)
		if numeroH == "" && prenom == "" {
			return nil, fmt.Errorf("invalid enfants entry %q", entry)
		}
		children = append(children, entities.DeclaredChild{NumeroH: numeroH, Prenom: prenom})
	}
	return children, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
