package hierarchy

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// classFile is the YAML document accepted by `classes import`.
type classFile struct {
	Classes []Class `yaml:"classes"`
}

// Decode reads a class list from a YAML document.
func Decode(r io.Reader) ([]Class, error) {
	var f classFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse class list: %w", err)
	}
	seen := map[string]bool{}
	for _, c := range f.Classes {
		if c.Name == "" {
			return nil, fmt.Errorf("class entry without a name")
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("class %s declared twice", c.Name)
		}
		if c.Final && c.Interface {
			return nil, fmt.Errorf("class %s cannot be both final and an interface", c.Name)
		}
		seen[c.Name] = true
	}
	return f.Classes, nil
}

// LoadFile reads a class list from a YAML file.
func LoadFile(path string) ([]Class, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
