// Package gen generates typed model bindings from a table schema. The
// generated code gives each table a model constructor, column constants
// and typed accessors over a record, replacing any need for reflective
// or string-typed column access in application code.
package gen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Schema is the root of a schema file:
//
//	package: app
//	tables:
//	  - name: users
//	    primary_key: [id]
//	    columns:
//	      - {name: id, type: int64}
//	      - {name: email, type: string}
//	      - {name: created_at, type: time}
type Schema struct {
	// Package is the Go package name of the generated files.
	Package string `yaml:"package"`
	// Tables are the mapped tables.
	Tables []Table `yaml:"tables"`
}

// Table describes one mapped table.
type Table struct {
	Name       string   `yaml:"name"`
	PrimaryKey []string `yaml:"primary_key"`
	Columns    []Column `yaml:"columns"`
}

// Column describes one column and its Go-facing type.
type Column struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// columnTypes is the set of recognized schema type names.
var columnTypes = map[string]bool{
	"string": true,
	"int":    true,
	"int64":  true,
	"float":  true,
	"bool":   true,
	"bytes":  true,
	"time":   true,
	"uuid":   true,
}

// Load reads and validates a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gen: read schema: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates schema bytes.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("gen: parse schema: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Schema) validate() error {
	if s.Package == "" {
		return fmt.Errorf("gen: schema has no package name")
	}
	if len(s.Tables) == 0 {
		return fmt.Errorf("gen: schema has no tables")
	}
	for _, t := range s.Tables {
		if t.Name == "" {
			return fmt.Errorf("gen: table with no name")
		}
		if len(t.Columns) == 0 {
			return fmt.Errorf("gen: table %s has no columns", t.Name)
		}
		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if !columnTypes[c.Type] {
				return fmt.Errorf("gen: table %s column %s has unknown type %q", t.Name, c.Name, c.Type)
			}
			cols[c.Name] = true
		}
		for _, pk := range t.PrimaryKey {
			if !cols[pk] {
				return fmt.Errorf("gen: table %s primary key %s is not a column", t.Name, pk)
			}
		}
	}
	return nil
}
