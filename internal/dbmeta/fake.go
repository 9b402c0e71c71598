package dbmeta

import (
	"context"
	"strings"
	"sync"
)

// Fake is an in-memory MetaData. Lookups are case-sensitive, like the
// dictionaries of most engines, and every call is recorded.
type Fake struct {
	Kind Engine
	ID   string

	mu               sync.Mutex
	tables           map[string][]TableRow
	columns          map[string][]ColumnRow
	primaryKeys      map[string][]PrimaryKeyRow
	indexes          map[string][]IndexRow
	importedKeys     map[string][]ImportedKeyRow
	procedures       map[string][]ProcedureRow
	procedureColumns map[string][]ProcedureColumnRow
	synonyms         map[string][]SynonymRow
	arguments        map[string][]ArgumentRow
	arrays           map[string][]ArrayTypeRow
	structs          map[string][]StructAttrRow
	sources          map[string][]SourceRow
	ukForeignKeys    map[string][]ImportedKeyRow
	dbLinkArguments  map[string][]ArgumentRow
	errs             map[string]error
	calls            []string
}

var (
	_ MetaData          = (*Fake)(nil)
	_ SynonymReader     = (*Fake)(nil)
	_ ArgumentReader    = (*Fake)(nil)
	_ TypeReader        = (*Fake)(nil)
	_ SourceReader      = (*Fake)(nil)
	_ UniqueKeyFKReader = (*Fake)(nil)
	_ DBLinkReader      = (*Fake)(nil)
)

// Operation names used by Fail and Calls.
const (
	OpTables               = "Tables"
	OpColumns              = "Columns"
	OpPrimaryKeys          = "PrimaryKeys"
	OpIndexInfo            = "IndexInfo"
	OpImportedKeys         = "ImportedKeys"
	OpProcedures           = "Procedures"
	OpProcedureColumns     = "ProcedureColumns"
	OpProcedureSynonyms    = "ProcedureSynonyms"
	OpProcedureArguments   = "ProcedureArguments"
	OpArrayTypes           = "ArrayTypes"
	OpStructAttributes     = "StructAttributes"
	OpProcedureSources     = "ProcedureSources"
	OpUniqueKeyForeignKeys = "UniqueKeyForeignKeys"
	OpDBLinkArguments      = "DBLinkProcedureArguments"
)

// NewFake creates an empty fake of the given engine.
func NewFake(e Engine) *Fake {
	return &Fake{
		Kind:             e,
		ID:               "fake:" + string(e),
		tables:           map[string][]TableRow{},
		columns:          map[string][]ColumnRow{},
		primaryKeys:      map[string][]PrimaryKeyRow{},
		indexes:          map[string][]IndexRow{},
		importedKeys:     map[string][]ImportedKeyRow{},
		procedures:       map[string][]ProcedureRow{},
		procedureColumns: map[string][]ProcedureColumnRow{},
		synonyms:         map[string][]SynonymRow{},
		arguments:        map[string][]ArgumentRow{},
		arrays:           map[string][]ArrayTypeRow{},
		structs:          map[string][]StructAttrRow{},
		sources:          map[string][]SourceRow{},
		ukForeignKeys:    map[string][]ImportedKeyRow{},
		dbLinkArguments:  map[string][]ArgumentRow{},
		errs:             map[string]error{},
	}
}

func fakeKey(parts ...string) string { return strings.Join(parts, "|") }

func (f *Fake) Engine() Engine   { return f.Kind }
func (f *Fake) Identity() string { return f.ID }

// AddTables registers tables of a schema.
func (f *Fake) AddTables(catalog, schema string, rows ...TableRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fakeKey(catalog, schema)
	f.tables[k] = append(f.tables[k], rows...)
}

func (f *Fake) AddColumns(catalog, schema, table string, rows ...ColumnRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fakeKey(catalog, schema, table)
	f.columns[k] = append(f.columns[k], rows...)
}

func (f *Fake) AddPrimaryKeys(catalog, schema, table string, rows ...PrimaryKeyRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fakeKey(catalog, schema, table)
	f.primaryKeys[k] = append(f.primaryKeys[k], rows...)
}

func (f *Fake) AddIndexes(catalog, schema, table string, rows ...IndexRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fakeKey(catalog, schema, table)
	f.indexes[k] = append(f.indexes[k], rows...)
}

func (f *Fake) AddImportedKeys(catalog, schema, table string, rows ...ImportedKeyRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fakeKey(catalog, schema, table)
	f.importedKeys[k] = append(f.importedKeys[k], rows...)
}

func (f *Fake) AddProcedures(catalog, schema string, rows ...ProcedureRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fakeKey(catalog, schema)
	f.procedures[k] = append(f.procedures[k], rows...)
}

// AddProcedureColumns registers the columns of a procedure. catalog is the
// package name on Oracle.
func (f *Fake) AddProcedureColumns(catalog, schema, procedure string, rows ...ProcedureColumnRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fakeKey(catalog, schema, procedure)
	f.procedureColumns[k] = append(f.procedureColumns[k], rows...)
}

// AddOverloadColumns registers the columns of one overload, returned when
// the columns are asked for by that specific name.
func (f *Fake) AddOverloadColumns(catalog, schema, procedure, specificName string, rows ...ProcedureColumnRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fakeKey(catalog, schema, procedure, specificName)
	f.procedureColumns[k] = append(f.procedureColumns[k], rows...)
}

func (f *Fake) AddSynonyms(schema string, rows ...SynonymRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synonyms[schema] = append(f.synonyms[schema], rows...)
}

func (f *Fake) AddArguments(schema string, rows ...ArgumentRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.arguments[schema] = append(f.arguments[schema], rows...)
}

func (f *Fake) AddArrayTypes(schema string, rows ...ArrayTypeRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.arrays[schema] = append(f.arrays[schema], rows...)
}

func (f *Fake) AddStructAttributes(schema string, rows ...StructAttrRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.structs[schema] = append(f.structs[schema], rows...)
}

func (f *Fake) AddSources(schema string, rows ...SourceRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources[schema] = append(f.sources[schema], rows...)
}

func (f *Fake) AddUniqueKeyForeignKeys(schema string, rows ...ImportedKeyRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ukForeignKeys[schema] = append(f.ukForeignKeys[schema], rows...)
}

func (f *Fake) AddDBLinkArguments(dbLink, packageName, procedure string, rows ...ArgumentRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fakeKey(dbLink, packageName, procedure)
	f.dbLinkArguments[k] = append(f.dbLinkArguments[k], rows...)
}

// Fail makes the operation fail with err for the given key parts, which are
// the same arguments the operation is called with.
func (f *Fake) Fail(op string, err error, parts ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op+"("+fakeKey(parts...)+")"] = err
}

// Calls returns the recorded calls, e.g. "Columns(|HR|EMP)".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how often the operation was called.
func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, op+"(") {
			n++
		}
	}
	return n
}

func (f *Fake) record(op string, parts ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := op + "(" + fakeKey(parts...) + ")"
	f.calls = append(f.calls, call)
	return f.errs[call]
}

func (f *Fake) Tables(ctx context.Context, catalog, schema string, types []string) ([]TableRow, error) {
	if err := f.record(OpTables, catalog, schema); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []TableRow
	for _, t := range f.tables[fakeKey(catalog, schema)] {
		if matchTypes(t.Type, types) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *Fake) Columns(ctx context.Context, catalog, schema, table string) ([]ColumnRow, error) {
	if err := f.record(OpColumns, catalog, schema, table); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ColumnRow(nil), f.columns[fakeKey(catalog, schema, table)]...), nil
}

func (f *Fake) PrimaryKeys(ctx context.Context, catalog, schema, table string) ([]PrimaryKeyRow, error) {
	if err := f.record(OpPrimaryKeys, catalog, schema, table); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PrimaryKeyRow(nil), f.primaryKeys[fakeKey(catalog, schema, table)]...), nil
}

func (f *Fake) IndexInfo(ctx context.Context, catalog, schema, table string, unique bool) ([]IndexRow, error) {
	if err := f.record(OpIndexInfo, catalog, schema, table); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := append([]IndexRow(nil), f.indexes[fakeKey(catalog, schema, table)]...)
	return filterUnique(rows, unique), nil
}

func (f *Fake) ImportedKeys(ctx context.Context, catalog, schema, table string) ([]ImportedKeyRow, error) {
	if err := f.record(OpImportedKeys, catalog, schema, table); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ImportedKeyRow(nil), f.importedKeys[fakeKey(catalog, schema, table)]...), nil
}

// Procedures supports the patterns "", "%" and "PREFIX%"; anything else is an exact name.
func (f *Fake) Procedures(ctx context.Context, catalog, schema, namePattern string) ([]ProcedureRow, error) {
	if err := f.record(OpProcedures, catalog, schema); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ProcedureRow
	for _, p := range f.procedures[fakeKey(catalog, schema)] {
		switch {
		case namePattern == "" || namePattern == "%":
		case strings.HasSuffix(namePattern, "%"):
			if !strings.HasPrefix(p.Name, strings.TrimSuffix(namePattern, "%")) {
				continue
			}
		case p.Name != namePattern:
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *Fake) ProcedureColumns(ctx context.Context, catalog, schema, procedure, specificName string) ([]ProcedureColumnRow, error) {
	if err := f.record(OpProcedureColumns, catalog, schema, procedure); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if specificName != "" {
		if rows, ok := f.procedureColumns[fakeKey(catalog, schema, procedure, specificName)]; ok {
			return append([]ProcedureColumnRow(nil), rows...), nil
		}
	}
	return append([]ProcedureColumnRow(nil), f.procedureColumns[fakeKey(catalog, schema, procedure)]...), nil
}

func (f *Fake) ProcedureSynonyms(ctx context.Context, catalog, schema string) ([]SynonymRow, error) {
	if err := f.record(OpProcedureSynonyms, catalog, schema); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SynonymRow(nil), f.synonyms[schema]...), nil
}

func (f *Fake) ProcedureArguments(ctx context.Context, schema string) ([]ArgumentRow, error) {
	if err := f.record(OpProcedureArguments, schema); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ArgumentRow(nil), f.arguments[schema]...), nil
}

func (f *Fake) ArrayTypes(ctx context.Context, schema string) ([]ArrayTypeRow, error) {
	if err := f.record(OpArrayTypes, schema); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ArrayTypeRow(nil), f.arrays[schema]...), nil
}

func (f *Fake) StructAttributes(ctx context.Context, schema string) ([]StructAttrRow, error) {
	if err := f.record(OpStructAttributes, schema); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]StructAttrRow(nil), f.structs[schema]...), nil
}

func (f *Fake) ProcedureSources(ctx context.Context, catalog, schema string) ([]SourceRow, error) {
	if err := f.record(OpProcedureSources, catalog, schema); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SourceRow(nil), f.sources[schema]...), nil
}

func (f *Fake) UniqueKeyForeignKeys(ctx context.Context, catalog, schema string) ([]ImportedKeyRow, error) {
	if err := f.record(OpUniqueKeyForeignKeys, catalog, schema); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ImportedKeyRow(nil), f.ukForeignKeys[schema]...), nil
}

func (f *Fake) DBLinkProcedureArguments(ctx context.Context, dbLink, packageName, procedure string) ([]ArgumentRow, error) {
	if err := f.record(OpDBLinkArguments, dbLink, packageName, procedure); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ArgumentRow(nil), f.dbLinkArguments[fakeKey(dbLink, packageName, procedure)]...), nil
}
