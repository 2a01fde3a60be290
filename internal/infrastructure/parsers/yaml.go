package parsers

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLParser parses persons from a YAML sequence.
type YAMLParser struct{}

// Parse reads a YAML sequence of persons. Each person's line number is the
// line its mapping starts on.
func (p *YAMLParser) Parse(r io.Reader) ([]RawPerson, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []RawPerson{}, nil
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if len(doc.Content) == 0 {
		return []RawPerson{}, nil
	}
	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("parsing YAML: expected a list of persons at line %d", seq.Line)
	}

	people := make([]RawPerson, 0, len(seq.Content))
	for _, item := range seq.Content {
		var person RawPerson
		if err := item.Decode(&person); err != nil {
			return nil, fmt.Errorf("line %d: %w", item.Line, err)
		}
		person.LineNum = item.Line
		people = append(people, person)
	}

	return people, nil
}
