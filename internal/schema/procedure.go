package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProcedureType is the result kind reported for a procedure.
type ProcedureType int

// Values follow the JDBC procedureResultUnknown/NoResult/ReturnsResult codes.
const (
	ProcedureResultUnknown ProcedureType = 0
	ProcedureNoResult      ProcedureType = 1
	ProcedureReturnsResult ProcedureType = 2
)

// ParseProcedureType maps a driver code. Unknown codes are an error.
func ParseProcedureType(code int) (ProcedureType, error) {
	switch ProcedureType(code) {
	case ProcedureResultUnknown, ProcedureNoResult, ProcedureReturnsResult:
		return ProcedureType(code), nil
	}
	return 0, fmt.Errorf("unknown procedure type code: %d", code)
}

func (t ProcedureType) String() string {
	switch t {
	case ProcedureNoResult:
		return "procedureNoResult"
	case ProcedureReturnsResult:
		return "procedureReturnsResult"
	default:
		return "procedureResultUnknown"
	}
}

func (t ProcedureType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *ProcedureType) UnmarshalYAML(value *yaml.Node) error {
	for _, c := range []ProcedureType{ProcedureResultUnknown, ProcedureNoResult, ProcedureReturnsResult} {
		if c.String() == value.Value {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown procedure type: %q", value.Value)
}

// ProcedureColumnType is the role of a procedure column.
type ProcedureColumnType int

// Values follow the JDBC procedureColumn* codes.
const (
	ColumnUnknown ProcedureColumnType = 0
	ColumnIn      ProcedureColumnType = 1
	ColumnInOut   ProcedureColumnType = 2
	ColumnResult  ProcedureColumnType = 3
	ColumnOut     ProcedureColumnType = 4
	ColumnReturn  ProcedureColumnType = 5
)

// ParseProcedureColumnType maps a driver code. Unknown codes are an error.
func ParseProcedureColumnType(code int) (ProcedureColumnType, error) {
	if code < int(ColumnUnknown) || code > int(ColumnReturn) {
		return 0, fmt.Errorf("unknown procedure column type code: %d", code)
	}
	return ProcedureColumnType(code), nil
}

func (t ProcedureColumnType) String() string {
	switch t {
	case ColumnIn:
		return "in"
	case ColumnInOut:
		return "inout"
	case ColumnResult:
		return "result"
	case ColumnOut:
		return "out"
	case ColumnReturn:
		return "return"
	default:
		return "unknown"
	}
}

func (t ProcedureColumnType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *ProcedureColumnType) UnmarshalYAML(value *yaml.Node) error {
	for c := ColumnUnknown; c <= ColumnReturn; c++ {
		if c.String() == value.Value {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown procedure column type: %q", value.Value)
}

// IsOutput reports whether values flow back to the caller.
func (t ProcedureColumnType) IsOutput() bool {
	return t == ColumnOut || t == ColumnInOut || t == ColumnReturn
}

// ProcedureColumnMeta is one parameter, return value or result column of a procedure.
type ProcedureColumnMeta struct {
	Name          string              `yaml:"name"`
	ColumnType    ProcedureColumnType `yaml:"column_type"`
	JDBCType      int                 `yaml:"jdbc_type"`
	DBTypeName    string              `yaml:"db_type_name"`
	Size          *int                `yaml:"size,omitempty"`
	DecimalDigits *int                `yaml:"decimal_digits,omitempty"`
	Comment       string              `yaml:"comment,omitempty"`
	OverloadNo    *int                `yaml:"overload_no,omitempty"`
	ArrayInfo     *TypeArrayInfo      `yaml:"array_info,omitempty"`
	StructInfo    *TypeStructInfo     `yaml:"struct_info,omitempty"`
	// ResultSetColumns is the introspected shape of a cursor parameter, if known.
	ResultSetColumns []*ColumnMeta `yaml:"result_set_columns,omitempty"`
}

// HasSize reports whether the column size is usable.
func (c *ProcedureColumnMeta) HasSize() bool {
	return c.Size != nil && *c.Size > 0
}

// HasDecimalDigits reports whether the decimal digits are usable.
func (c *ProcedureColumnMeta) HasDecimalDigits() bool {
	return c.DecimalDigits != nil && *c.DecimalDigits > 0
}

// ProcedureResultMeta is a result set returned without a parameter
// (SQL Server, MySQL).
type ProcedureResultMeta struct {
	Name    string        `yaml:"name"`
	Columns []*ColumnMeta `yaml:"columns"`
}

// ProcedureSourceInfo is the source-level information of a procedure.
type ProcedureSourceInfo struct {
	SourceCode string `yaml:"source_code,omitempty"`
	SourceLine int    `yaml:"source_line,omitempty"`
	// ParameterHash fingerprints the parameter definitions; engines without
	// overload numbers use it to tell overloads apart.
	ParameterHash string `yaml:"parameter_hash,omitempty"`
}

// ProcedureMeta is one stored procedure or function.
type ProcedureMeta struct {
	Catalog         string                 `yaml:"catalog,omitempty"`
	Schema          UnifiedSchema          `yaml:"schema"`
	Name            string                 `yaml:"name"`
	Package         string                 `yaml:"package,omitempty"`
	Type            ProcedureType          `yaml:"type"`
	Comment         string                 `yaml:"comment,omitempty"`
	// SpecificName identifies one overload where the engine lists overloads
	// as separate routines (PostgreSQL, H2).
	SpecificName    string                 `yaml:"specific_name,omitempty"`
	Columns         []*ProcedureColumnMeta `yaml:"columns"`
	NotParamResults []*ProcedureResultMeta `yaml:"not_param_results,omitempty"`
	Source          *ProcedureSourceInfo   `yaml:"source,omitempty"`
	// SynonymOf is the qualified name of the target when listed through a synonym.
	SynonymOf string `yaml:"synonym_of,omitempty"`
	DBLink    string `yaml:"db_link,omitempty"`
}

// FullName returns "package.name", or the name alone.
func (p *ProcedureMeta) FullName() string {
	return joinNonEmpty(".", p.Package, p.Name)
}

// QualifiedName returns "schema.package.name" with missing parts omitted.
// The catalog is not part of it, so one procedure seen through two SQL Server
// databases yields one name.
func (p *ProcedureMeta) QualifiedName() string {
	name := joinNonEmpty(".", p.Schema.Schema, p.Package, p.Name)
	if p.DBLink != "" {
		name += "@" + p.DBLink
	}
	return name
}

// SQLName returns the name used to call the procedure: unqualified for the
// main schema, schema-qualified otherwise.
func (p *ProcedureMeta) SQLName() string {
	var name string
	if p.Schema.IsMain() || !p.Schema.HasSchema() {
		name = p.FullName()
	} else {
		name = joinNonEmpty(".", p.Schema.Schema, p.FullName())
	}
	if p.DBLink != "" {
		name += "@" + p.DBLink
	}
	return name
}

// IsIncludedByDBLink reports whether the procedure was requested through a DB link.
func (p *ProcedureMeta) IsIncludedByDBLink() bool {
	return p.DBLink != ""
}

// Column returns the named column, ignoring case.
func (p *ProcedureMeta) Column(name string) *ProcedureColumnMeta {
	for _, c := range p.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// TypeArrayInfo describes a collection type (Oracle VARRAY / nested table).
// The element is either a scalar (ElementType only), a nested array or a struct.
type TypeArrayInfo struct {
	Owner         string          `yaml:"owner,omitempty"`
	TypeName      string          `yaml:"type_name"`
	ElementType   string          `yaml:"element_type"`
	ElementArray  *TypeArrayInfo  `yaml:"element_array,omitempty"`
	ElementStruct *TypeStructInfo `yaml:"element_struct,omitempty"`
}

// QualifiedName returns "owner.type".
func (a *TypeArrayInfo) QualifiedName() string {
	return joinNonEmpty(".", a.Owner, a.TypeName)
}

// IsNestedArray reports whether the element is itself an array.
func (a *TypeArrayInfo) IsNestedArray() bool { return a.ElementArray != nil }

// IsElementStruct reports whether the element is a struct.
func (a *TypeArrayInfo) IsElementStruct() bool { return a.ElementStruct != nil }

// TypeStructInfo describes an object type (Oracle OBJECT).
type TypeStructInfo struct {
	Owner      string            `yaml:"owner,omitempty"`
	TypeName   string            `yaml:"type_name"`
	Attributes []*TypeStructAttr `yaml:"attributes,omitempty"`
}

// QualifiedName returns "owner.type".
func (s *TypeStructInfo) QualifiedName() string {
	return joinNonEmpty(".", s.Owner, s.TypeName)
}

// TypeStructAttr is one attribute of a struct type.
type TypeStructAttr struct {
	Name          string          `yaml:"name"`
	DBTypeName    string          `yaml:"db_type_name"`
	JDBCType      int             `yaml:"jdbc_type"`
	Size          *int            `yaml:"size,omitempty"`
	DecimalDigits *int            `yaml:"decimal_digits,omitempty"`
	ArrayInfo     *TypeArrayInfo  `yaml:"array_info,omitempty"`
	StructInfo    *TypeStructInfo `yaml:"struct_info,omitempty"`
}
