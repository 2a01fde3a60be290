package parsers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

// ParseProfile decodes a single profile document. Supported formats: "json", "yaml".
func ParseProfile(r io.Reader, format string) (entities.PersonProfile, error) {
	var profile entities.PersonProfile

	switch strings.ToLower(format) {
	case "json":
		if err := json.NewDecoder(r).Decode(&profile); err != nil {
			return entities.PersonProfile{}, fmt.Errorf("parsing JSON profile: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&profile); err != nil {
			return entities.PersonProfile{}, fmt.Errorf("parsing YAML profile: %w", err)
		}
	default:
		return entities.PersonProfile{}, fmt.Errorf("unsupported profile format %q (use json or yaml)", format)
	}

	return profile, nil
}

// ProfileFromFile reads a profile document, picking the format from the file extension.
func ProfileFromFile(path string) (entities.PersonProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return entities.PersonProfile{}, fmt.Errorf("opening profile: %w", err)
	}
	defer f.Close()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ParseProfile(f, format)
}
