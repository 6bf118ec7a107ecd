package roster

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyID      = errors.New("profile id is empty")
	ErrDuplicateID  = errors.New("duplicate profile id")
	ErrNegativeYear = errors.New("yearsAtFC must not be negative")
)

type catalogFile struct {
	Employees []Profile `yaml:"employees"`
}

type shortlistFile struct {
	Shortlist []string `yaml:"shortlist"`
}

// LoadCatalog reads a YAML catalog of the form `employees: [...]`.
func LoadCatalog(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML. Unknown fields are
// rejected so typos in the data file surface at load time.
func ParseCatalog(data []byte) ([]Profile, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Employees))
	for i := range file.Employees {
		p := &file.Employees[i]
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: %w", i, ErrEmptyID)
		}
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, p.ID, ErrDuplicateID)
		}
		if p.YearsAtFC < 0 {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, p.ID, ErrNegativeYear)
		}
		seen[p.ID] = struct{}{}
	}

	return file.Employees, nil
}

// LoadShortlist reads a YAML shortlist of the form `shortlist: [names]`.
// An empty path yields an empty shortlist.
func LoadShortlist(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shortlist: %w", err)
	}
	return ParseShortlist(data)
}

func ParseShortlist(data []byte) ([]string, error) {
	var file shortlistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode shortlist: %w", err)
	}

	names := make([]string, 0, len(file.Shortlist))
	for _, name := range file.Shortlist {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
