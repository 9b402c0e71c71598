// Package schema holds the in-memory metadata model produced by extraction
// and consumed by code generation.
package schema

import "strings"

// Well-known table types reported by metadata.
const (
	TableTypeTable   = "TABLE"
	TableTypeView    = "VIEW"
	TableTypeSynonym = "SYNONYM"
)

// TableMeta is one table (or view, synonym) listed by metadata.
type TableMeta struct {
	Name    string        `yaml:"name"`
	Type    string        `yaml:"type"`
	Schema  UnifiedSchema `yaml:"schema"`
	Comment string        `yaml:"comment,omitempty"`
}

// IsView reports whether the table is a view.
func (t *TableMeta) IsView() bool {
	return strings.EqualFold(t.Type, TableTypeView)
}

// QualifiedName returns the schema-qualified table name.
func (t *TableMeta) QualifiedName() string {
	return t.Schema.Qualify(t.Name)
}

// ColumnMeta is one column of a table.
type ColumnMeta struct {
	TableName     string  `yaml:"table_name"`
	ColumnName    string  `yaml:"column_name"`
	JDBCType      int     `yaml:"jdbc_type"`
	DBTypeName    string  `yaml:"db_type_name"`
	Size          *int    `yaml:"size,omitempty"`
	DecimalDigits *int    `yaml:"decimal_digits,omitempty"`
	Required      bool    `yaml:"required"`
	Comment       string  `yaml:"comment,omitempty"`
	DefaultValue  *string `yaml:"default_value,omitempty"`
	// JDBCTypeName and ProgramType are the mapped types, set when a type
	// mapper is available.
	JDBCTypeName string `yaml:"jdbc_type_name,omitempty"`
	ProgramType  string `yaml:"program_type,omitempty"`
}

// HasSize reports whether the column size is usable (present and positive).
func (c *ColumnMeta) HasSize() bool {
	return c.Size != nil && *c.Size > 0
}

// HasDecimalDigits reports whether the decimal digits are usable.
func (c *ColumnMeta) HasDecimalDigits() bool {
	return c.DecimalDigits != nil && *c.DecimalDigits > 0
}

// PrimaryKeyColumn is one column of a primary key.
type PrimaryKeyColumn struct {
	ColumnName     string `yaml:"column_name"`
	ConstraintName string `yaml:"constraint_name,omitempty"`
}

// PrimaryKeyMeta is the ordered primary key of a table.
type PrimaryKeyMeta struct {
	Columns []PrimaryKeyColumn `yaml:"columns"`
}

// HasPrimaryKey reports whether the table has at least one key column.
func (p *PrimaryKeyMeta) HasPrimaryKey() bool {
	return p != nil && len(p.Columns) > 0
}

// ColumnNames returns the key columns in key order.
func (p *PrimaryKeyMeta) ColumnNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.ColumnName
	}
	return names
}

// ConstraintName returns the primary key constraint name, if the driver reported one.
func (p *PrimaryKeyMeta) ConstraintName() string {
	if p == nil {
		return ""
	}
	for _, c := range p.Columns {
		if c.ConstraintName != "" {
			return c.ConstraintName
		}
	}
	return ""
}

// Add appends a key column.
func (p *PrimaryKeyMeta) Add(column, constraint string) {
	p.Columns = append(p.Columns, PrimaryKeyColumn{ColumnName: column, ConstraintName: constraint})
}
