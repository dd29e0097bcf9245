package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project is the flowtype.yaml project file. Type-valued entries are kept
// as raw nodes; they are decoded with the program type syntax by the
// pipeline so that errors carry positions.
type Project struct {
	// HierarchyDB is a SQLite class database merged into the default
	// hierarchy. Relative to the project file.
	HierarchyDB string `yaml:"hierarchy_db,omitempty"`

	// Classes are declared in addition to the built-in hierarchy.
	Classes []ClassSpec `yaml:"classes,omitempty"`

	// Globals are function declarations visible to every unit.
	Globals []yaml.Node `yaml:"globals,omitempty"`

	// Aliases name types; an alias used as a class name in a program is
	// replaced by its definition.
	Aliases map[string]yaml.Node `yaml:"aliases,omitempty"`

	// Path of the file this project was read from; empty for defaults.
	Path string `yaml:"-"`
}

// ClassSpec declares one class of the nominal hierarchy.
type ClassSpec struct {
	Name      string   `yaml:"name"`
	Parents   []string `yaml:"parents,omitempty"`
	Final     bool     `yaml:"final,omitempty"`
	Interface bool     `yaml:"interface,omitempty"`
}

// LoadProject reads and parses a flowtype.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", path, err)
	}
	return ParseProject(data, path)
}

// ParseProject parses project content. The path is used for error messages
// and to resolve relative paths.
func ParseProject(data []byte, path string) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	p.Path = path
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProject searches for flowtype.yaml starting from dir and walking up
// to parent directories. It returns "" when there is none.
func FindProject(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the project for structural errors.
func (p *Project) Validate() error {
	seen := make(map[string]bool)
	for i, c := range p.Classes {
		if c.Name == "" {
			return fmt.Errorf("%s: classes[%d]: name is required", p.Path, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("%s: classes[%d]: duplicate class %s", p.Path, i, c.Name)
		}
		seen[c.Name] = true
		if c.Final && c.Interface {
			return fmt.Errorf("%s: classes[%d] (%s): final and interface are mutually exclusive", p.Path, i, c.Name)
		}
		for _, parent := range c.Parents {
			if parent == c.Name {
				return fmt.Errorf("%s: classes[%d] (%s): class cannot extend itself", p.Path, i, c.Name)
			}
		}
	}

	for i, g := range p.Globals {
		if g.Kind != yaml.MappingNode {
			return fmt.Errorf("%s:%d: globals[%d]: expected a mapping", p.Path, g.Line, i)
		}
	}

	for name, n := range p.Aliases {
		if name == "" {
			return fmt.Errorf("%s:%d: alias with an empty name", p.Path, n.Line)
		}
		if seen[name] {
			return fmt.Errorf("%s:%d: alias %s shadows a declared class", p.Path, n.Line, name)
		}
	}
	return nil
}

// Resolve interprets rel relative to the project file's directory.
func (p *Project) Resolve(rel string) string {
	if rel == "" || filepath.IsAbs(rel) || p.Path == "" {
		return rel
	}
	return filepath.Join(filepath.Dir(p.Path), rel)
}
