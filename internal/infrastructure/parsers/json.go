package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses persons from a JSON array.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed persons.
func (p *JSONParser) Parse(r io.Reader) ([]RawPerson, error) {
	var people []RawPerson

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&people); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Array index + 1 stands in for the line number.
	for i := range people {
		people[i].LineNum = i + 1
	}

	return people, nil
}
