package rule

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Catalogue is a named rule set, either embedded or read from a file.
type Catalogue struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Rules       []Rule `yaml:"rules"`
}

// UnmarshalYAML decodes a rule and applies DefaultPriority when the record
// carries no priority key.
func (r *Rule) UnmarshalYAML(n *yaml.Node) error {
	type plain Rule
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	if !hasKey(n, "priority") {
		p.Priority = DefaultPriority
	}
	*r = Rule(p)
	return nil
}

func hasKey(n *yaml.Node, key string) bool {
	if n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Parse decodes a catalogue document and sorts its rules by priority.
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("rule.Parse: %w", err)
	}
	SortByPriority(c.Rules)
	return &c, nil
}

// LoadBuiltin loads an embedded catalogue by name.
func LoadBuiltin(name string) (*Catalogue, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("rule.LoadBuiltin: unknown catalogue %q: %w", name, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rule.LoadBuiltin: parse %q: %w", name, err)
	}
	return c, nil
}

// LoadFile reads a catalogue from disk.
func LoadFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rule.LoadFile: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rule.LoadFile: %s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = path
	}
	return c, nil
}

// Load resolves ref as a built-in catalogue name, or as a file path when it
// ends in .yaml or .yml.
func Load(ref string) (*Catalogue, error) {
	if strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") {
		return LoadFile(ref)
	}
	return LoadBuiltin(ref)
}

// List returns the names of all embedded catalogues.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	return names, nil
}

// Format renders a catalogue as a plain listing, one rule per line.
func Format(c *Catalogue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Catalogue: %s (%d rules)\n", c.Name, len(c.Rules))
	if c.Description != "" {
		fmt.Fprintf(&b, "%s\n", strings.TrimSpace(c.Description))
	}
	b.WriteString("\n")
	for _, r := range c.Rules {
		flags := ""
		if r.AutoFix {
			flags += " fix"
		}
		if r.UseAI {
			flags += " ai"
		}
		fmt.Fprintf(&b, "%4d  %-14s %-26s %s%s\n", r.Priority, r.Type, r.CheckValue, r.Title, flags)
	}
	return b.String()
}
