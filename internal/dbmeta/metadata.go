// Package dbmeta reads raw schema metadata from a database, one call per
// metadata kind, in the shape of the JDBC DatabaseMetaData result sets.
//
// Readers report what the dictionary says, including its inconsistencies
// (unordered key positions, duplicate rows, unparsable values); reconciling
// them is left to the extractors.
package dbmeta

import (
	"context"
)

// MetaData is the database metadata of one data source.
type MetaData interface {
	// Engine returns the engine the metadata comes from.
	Engine() Engine
	// Identity identifies the data source, e.g. for per-data-source caches.
	Identity() string

	Tables(ctx context.Context, catalog, schema string, types []string) ([]TableRow, error)
	Columns(ctx context.Context, catalog, schema, table string) ([]ColumnRow, error)
	PrimaryKeys(ctx context.Context, catalog, schema, table string) ([]PrimaryKeyRow, error)
	// IndexInfo lists index columns; unique restricts the result to unique indexes.
	IndexInfo(ctx context.Context, catalog, schema, table string, unique bool) ([]IndexRow, error)
	ImportedKeys(ctx context.Context, catalog, schema, table string) ([]ImportedKeyRow, error)
	Procedures(ctx context.Context, catalog, schema, namePattern string) ([]ProcedureRow, error)
	// ProcedureColumns lists procedure parameters; specificName selects one
	// overload where the engine lists overloads as separate routines.
	ProcedureColumns(ctx context.Context, catalog, schema, procedure, specificName string) ([]ProcedureColumnRow, error)
}

// SynonymReader is implemented by engines with procedure synonyms.
type SynonymReader interface {
	ProcedureSynonyms(ctx context.Context, catalog, schema string) ([]SynonymRow, error)
}

// ArgumentReader is implemented by engines reporting overloads per argument.
type ArgumentReader interface {
	ProcedureArguments(ctx context.Context, schema string) ([]ArgumentRow, error)
}

// TypeReader is implemented by engines with user-defined collection and object types.
type TypeReader interface {
	ArrayTypes(ctx context.Context, schema string) ([]ArrayTypeRow, error)
	StructAttributes(ctx context.Context, schema string) ([]StructAttrRow, error)
}

// SourceReader is implemented by engines exposing procedure source code.
type SourceReader interface {
	ProcedureSources(ctx context.Context, catalog, schema string) ([]SourceRow, error)
}

// UniqueKeyFKReader is implemented by engines whose imported keys omit
// foreign keys that reference a unique key instead of the primary key.
type UniqueKeyFKReader interface {
	UniqueKeyForeignKeys(ctx context.Context, catalog, schema string) ([]ImportedKeyRow, error)
}

// DBLinkReader is implemented by engines that can describe remote procedures.
type DBLinkReader interface {
	DBLinkProcedureArguments(ctx context.Context, dbLink, packageName, procedure string) ([]ArgumentRow, error)
}

// TableRow is one row of getTables.
type TableRow struct {
	Catalog string
	Schema  string
	Name    string
	Type    string
	Remarks string
}

// ColumnRow is one row of getColumns.
type ColumnRow struct {
	Catalog       string
	Schema        string
	TableName     string
	ColumnName    string
	DataType      int
	TypeName      string
	ColumnSize    *int
	DecimalDigits *int
	Nullable      bool
	Remarks       string
	Default       *string
}

// PrimaryKeyRow is one row of getPrimaryKeys. KeySeq is kept as reported;
// some drivers return values that do not parse as a number.
type PrimaryKeyRow struct {
	TableName  string
	ColumnName string
	KeySeq     string
	PKName     string
}

// IndexRow is one row of getIndexInfo.
type IndexRow struct {
	TableName       string
	NonUnique       bool
	IndexName       string
	Type            int
	OrdinalPosition string
	ColumnName      string
}

// Index types of IndexRow.Type.
const (
	IndexStatistic = 0
	IndexClustered = 1
	IndexHashed    = 2
	IndexOther     = 3
)

// ImportedKeyRow is one row of getImportedKeys.
type ImportedKeyRow struct {
	PKCatalog string
	PKSchema  string
	PKTable   string
	PKColumn  string
	FKCatalog string
	FKSchema  string
	FKTable   string
	FKColumn  string
	KeySeq    string
	FKName    string
	PKName    string
}

// ProcedureRow is one row of getProcedures.
type ProcedureRow struct {
	Catalog      string
	Schema       string
	Name         string
	Type         int
	Remarks      string
	SpecificName string
}

// ProcedureColumnRow is one row of getProcedureColumns. DataType is nil when
// the driver could not report it.
type ProcedureColumnRow struct {
	ProcedureName string
	ColumnName    string
	ColumnType    int
	DataType      *int
	TypeName      string
	Precision     *int
	Length        *int
	Scale         *int
	Remarks       string
	OverloadNo    *int
}

// SynonymRow is one synonym pointing to a procedure or package.
type SynonymRow struct {
	Owner       string
	SynonymName string
	TargetOwner string
	TargetName  string
	DBLink      string
}

// ArgumentRow is one argument of a procedure with overload and type information.
type ArgumentRow struct {
	Owner        string
	Package      string
	Procedure    string
	Overload     *int
	ArgumentName string
	Position     int
	Sequence     int
	DataLevel    int
	DataType     string
	TypeOwner    string
	TypeName     string
	TypeSubname  string
	InOut        string
	Length       *int
	Precision    *int
	Scale        *int
}

// ArrayTypeRow is one collection type.
type ArrayTypeRow struct {
	Owner         string
	TypeName      string
	ElemTypeOwner string
	ElemTypeName  string
	Length        *int
	Precision     *int
	Scale         *int
}

// StructAttrRow is one attribute of an object type.
type StructAttrRow struct {
	Owner         string
	TypeName      string
	AttrName      string
	AttrTypeOwner string
	AttrTypeName  string
	Position      int
	Length        *int
	Precision     *int
	Scale         *int
}

// SourceRow is one line (or the whole body) of procedure source.
type SourceRow struct {
	Schema string
	Name   string
	Type   string
	Line   int
	Text   string
}
