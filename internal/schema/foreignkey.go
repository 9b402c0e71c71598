package schema

import (
	"sort"
	"strings"
)

// ColumnPair is one local-to-foreign column mapping of a foreign key.
type ColumnPair struct {
	Local   string `yaml:"local"`
	Foreign string `yaml:"foreign"`
}

// ForeignKeyMeta is a (possibly compound) foreign key of a local table.
type ForeignKeyMeta struct {
	Name          string        `yaml:"name"`
	LocalSchema   UnifiedSchema `yaml:"local_schema"`
	LocalTable    string        `yaml:"local_table"`
	ForeignSchema UnifiedSchema `yaml:"foreign_schema"`
	ForeignTable  string        `yaml:"foreign_table"`
	Columns       []ColumnPair  `yaml:"columns"`
	// UniqueKeyBased is set for relationships to a unique key rather than
	// to the primary key, which drivers do not report as imported keys.
	UniqueKeyBased bool `yaml:"unique_key_based,omitempty"`
}

// AddColumn appends a column pair, ignoring an exact duplicate pair.
func (f *ForeignKeyMeta) AddColumn(local, foreign string) {
	for _, p := range f.Columns {
		if p.Local == local && p.Foreign == foreign {
			return
		}
	}
	f.Columns = append(f.Columns, ColumnPair{Local: local, Foreign: foreign})
}

// LocalColumnNames returns the local columns in key order.
func (f *ForeignKeyMeta) LocalColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, p := range f.Columns {
		names[i] = p.Local
	}
	return names
}

// ForeignColumnNames returns the referenced columns in key order.
func (f *ForeignKeyMeta) ForeignColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, p := range f.Columns {
		names[i] = p.Foreign
	}
	return names
}

// StructureKey identifies the foreign key by what it references and how,
// independent of its name.
func (f *ForeignKeyMeta) StructureKey() string {
	var b strings.Builder
	b.WriteString(f.ForeignSchema.Identity())
	b.WriteString(".")
	b.WriteString(f.ForeignTable)
	b.WriteString(":")
	for i, p := range f.Columns {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(p.Local)
		b.WriteString("=")
		b.WriteString(p.Foreign)
	}
	return b.String()
}

// ForeignKeySortKey derives the immobilized order key of a foreign key: the
// slash-joined local column names first, then the name. Auto-generated names
// therefore only decide order between keys on the same columns.
func ForeignKeySortKey(f *ForeignKeyMeta) (columns, name string) {
	return strings.Join(f.LocalColumnNames(), "/"), f.Name
}

// SortForeignKeys orders foreign keys by their immobilized sort key.
func SortForeignKeys(fks []*ForeignKeyMeta) {
	sort.SliceStable(fks, func(i, j int) bool {
		ci, ni := ForeignKeySortKey(fks[i])
		cj, nj := ForeignKeySortKey(fks[j])
		if ci != cj {
			return ci < cj
		}
		return ni < nj
	})
}
