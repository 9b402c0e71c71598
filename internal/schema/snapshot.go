package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Snapshot is everything one run extracted.
type Snapshot struct {
	Engine     string           `yaml:"engine"`
	Database   string           `yaml:"database,omitempty"`
	MainSchema UnifiedSchema    `yaml:"main_schema"`
	Tables     []*TableSnapshot `yaml:"tables"`
	Procedures []*ProcedureMeta `yaml:"procedures,omitempty"`
}

// TableSnapshot is the extracted metadata of one table.
type TableSnapshot struct {
	Table       *TableMeta        `yaml:"table"`
	Columns     []*ColumnMeta     `yaml:"columns"`
	PrimaryKey  *PrimaryKeyMeta   `yaml:"primary_key,omitempty"`
	UniqueKeys  *KeyMap           `yaml:"unique_keys,omitempty"`
	Indexes     *KeyMap           `yaml:"indexes,omitempty"`
	ForeignKeys []*ForeignKeyMeta `yaml:"foreign_keys,omitempty"`
}

// Table returns the snapshot of the named table in the given schema.
func (s *Snapshot) Table(us UnifiedSchema, name string) *TableSnapshot {
	for _, t := range s.Tables {
		if t.Table.Name == name && t.Table.Schema.Same(us) {
			return t
		}
	}
	return nil
}

// LoadYAML reads a snapshot from a YAML file.
func LoadYAML(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	s := &Snapshot{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return s, nil
}

// WriteYAML writes the snapshot to a YAML file at the given path.
func (s *Snapshot) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// ToYAML returns the snapshot as a YAML byte slice.
func (s *Snapshot) ToYAML() ([]byte, error) {
	return yaml.Marshal(s)
}

// Summary returns a human-readable summary of the snapshot.
func (s *Snapshot) Summary() string {
	var cols, fks, uqs, idxs, views int
	for _, t := range s.Tables {
		cols += len(t.Columns)
		fks += len(t.ForeignKeys)
		uqs += t.UniqueKeys.Len()
		idxs += t.Indexes.Len()
		if t.Table.IsView() {
			views++
		}
	}
	return fmt.Sprintf(
		"Found %d tables (%d views), %d columns, %d foreign keys, %d unique keys, %d indexes\nProcedures: %d",
		len(s.Tables), views, cols, fks, uqs, idxs, len(s.Procedures),
	)
}
