package dbmeta

import (
	"context"
	"database/sql"
	"strings"
)

// dialect holds the catalog queries of one information_schema engine.
// Queries use ? placeholders and are rebound per engine.
type dialect struct {
	// scopeByCatalog: tables are scoped by catalog (MySQL databases) instead of schema.
	scopeByCatalog bool

	tables           string // scope
	columns          string // scope, table
	primaryKeys      string // scope, table
	indexInfo        string // scope, table
	importedKeys     string // scope, table
	procedures       string // scope, name pattern
	procedureColumns string // scope, procedure, specific name twice (blank matches any)
	sources          string // scope; empty when unsupported
}

const standardPrimaryKeys = `
SELECT kcu.COLUMN_NAME, kcu.ORDINAL_POSITION, tc.CONSTRAINT_NAME
FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
  ON kcu.CONSTRAINT_SCHEMA = tc.CONSTRAINT_SCHEMA
 AND kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
 AND kcu.TABLE_NAME = tc.TABLE_NAME
WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND tc.TABLE_SCHEMA = ? AND tc.TABLE_NAME = ?
ORDER BY kcu.ORDINAL_POSITION`

var dialects = map[Engine]dialect{
	PostgreSQL: {
		tables: `
SELECT t.table_catalog, t.table_schema, t.table_name, t.table_type,
       COALESCE(obj_description(c.oid, 'pg_class'), '')
FROM information_schema.tables t
JOIN pg_catalog.pg_namespace n ON n.nspname = t.table_schema
JOIN pg_catalog.pg_class c ON c.relnamespace = n.oid AND c.relname = t.table_name
WHERE t.table_schema = ?
ORDER BY t.table_name`,
		columns: `
SELECT c.column_name,
       CASE WHEN c.data_type IN ('ARRAY', 'USER-DEFINED') THEN c.udt_name ELSE c.data_type END,
       c.character_maximum_length, c.numeric_precision, c.numeric_scale,
       c.is_nullable, c.column_default,
       COALESCE(col_description(pc.oid, c.ordinal_position::int), '')
FROM information_schema.columns c
JOIN pg_catalog.pg_namespace n ON n.nspname = c.table_schema
JOIN pg_catalog.pg_class pc ON pc.relnamespace = n.oid AND pc.relname = c.table_name
WHERE c.table_schema = ? AND c.table_name = ?
ORDER BY c.ordinal_position`,
		primaryKeys: standardPrimaryKeys,
		indexInfo: `
SELECT t.relname, NOT ix.indisunique, i.relname, k.ord, a.attname
FROM pg_catalog.pg_index ix
JOIN pg_catalog.pg_class t ON t.oid = ix.indrelid
JOIN pg_catalog.pg_class i ON i.oid = ix.indexrelid
JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
JOIN pg_catalog.pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
WHERE n.nspname = ? AND t.relname = ?
ORDER BY i.relname, k.ord`,
		importedKeys: `
SELECT current_database(), fn.nspname, ft.relname, fa.attname,
       current_database(), n.nspname, t.relname, a.attname,
       k.ord, c.conname, COALESCE(uk.conname, '')
FROM pg_catalog.pg_constraint c
JOIN pg_catalog.pg_class t ON t.oid = c.conrelid
JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
JOIN pg_catalog.pg_class ft ON ft.oid = c.confrelid
JOIN pg_catalog.pg_namespace fn ON fn.oid = ft.relnamespace
CROSS JOIN LATERAL unnest(c.conkey, c.confkey) WITH ORDINALITY AS k(attnum, fattnum, ord)
JOIN pg_catalog.pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
JOIN pg_catalog.pg_attribute fa ON fa.attrelid = ft.oid AND fa.attnum = k.fattnum
LEFT JOIN pg_catalog.pg_constraint uk
  ON uk.conrelid = c.confrelid AND uk.conindid = c.conindid AND uk.contype IN ('p', 'u')
WHERE c.contype = 'f' AND n.nspname = ? AND t.relname = ?
ORDER BY c.conname, k.ord`,
		procedures: `
SELECT current_database(), n.nspname, p.proname,
       CASE WHEN p.prokind = 'p' OR p.prorettype = 'pg_catalog.void'::regtype THEN 1 ELSE 2 END,
       COALESCE(obj_description(p.oid, 'pg_proc'), ''),
       p.proname || '_' || p.oid
FROM pg_catalog.pg_proc p
JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
WHERE n.nspname = ? AND p.proname LIKE ? AND p.prokind IN ('f', 'p')
ORDER BY p.proname`,
		procedureColumns: `
WITH r AS (
  SELECT specific_schema, specific_name, routine_type, data_type, type_udt_name
  FROM information_schema.routines
  WHERE specific_schema = ? AND routine_name = ? AND (?::text = '' OR specific_name = ?)
)
SELECT '', 5,
       CASE WHEN r.data_type IN ('ARRAY', 'USER-DEFINED') THEN r.type_udt_name ELSE r.data_type END,
       NULL::int, NULL::int, NULL::int, 0
FROM r
WHERE r.routine_type = 'FUNCTION' AND r.data_type NOT IN ('void', 'record')
UNION ALL
SELECT COALESCE(p.parameter_name, ''),
       CASE p.parameter_mode WHEN 'IN' THEN 1 WHEN 'INOUT' THEN 2 WHEN 'OUT' THEN 4 ELSE 0 END,
       CASE WHEN p.data_type IN ('ARRAY', 'USER-DEFINED') THEN p.udt_name ELSE p.data_type END,
       p.character_maximum_length, p.numeric_precision, p.numeric_scale, p.ordinal_position
FROM r
JOIN information_schema.parameters p
  ON p.specific_schema = r.specific_schema AND p.specific_name = r.specific_name
ORDER BY 7`,
	},
	MySQL: {
		scopeByCatalog: true,
		tables: `
SELECT TABLE_SCHEMA, '', TABLE_NAME, TABLE_TYPE, TABLE_COMMENT
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = ?
ORDER BY TABLE_NAME`,
		columns: `
SELECT COLUMN_NAME,
       CASE WHEN COLUMN_TYPE LIKE '%unsigned%' THEN CONCAT(DATA_TYPE, ' unsigned') ELSE DATA_TYPE END,
       CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE,
       IS_NULLABLE, COLUMN_DEFAULT, COLUMN_COMMENT
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`,
		primaryKeys: standardPrimaryKeys,
		indexInfo: `
SELECT TABLE_NAME, NON_UNIQUE, INDEX_NAME, SEQ_IN_INDEX, COLUMN_NAME
FROM information_schema.STATISTICS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY INDEX_NAME, SEQ_IN_INDEX`,
		importedKeys: `
SELECT REFERENCED_TABLE_SCHEMA, '', REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME,
       TABLE_SCHEMA, '', TABLE_NAME, COLUMN_NAME,
       ORDINAL_POSITION, CONSTRAINT_NAME, ''
FROM information_schema.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND REFERENCED_TABLE_NAME IS NOT NULL
ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION`,
		procedures: `
SELECT ROUTINE_SCHEMA, '', ROUTINE_NAME,
       CASE ROUTINE_TYPE WHEN 'FUNCTION' THEN 2 ELSE 1 END,
       ROUTINE_COMMENT, SPECIFIC_NAME
FROM information_schema.ROUTINES
WHERE ROUTINE_SCHEMA = ? AND ROUTINE_NAME LIKE ?
ORDER BY ROUTINE_NAME`,
		procedureColumns: `
SELECT COALESCE(PARAMETER_NAME, ''),
       CASE WHEN ORDINAL_POSITION = 0 THEN 5
            WHEN PARAMETER_MODE = 'IN' THEN 1
            WHEN PARAMETER_MODE = 'INOUT' THEN 2
            WHEN PARAMETER_MODE = 'OUT' THEN 4 ELSE 0 END,
       DATA_TYPE, CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE, ORDINAL_POSITION
FROM information_schema.PARAMETERS
WHERE SPECIFIC_SCHEMA = ? AND SPECIFIC_NAME = ? AND (? = '' OR SPECIFIC_NAME = ?)
ORDER BY ORDINAL_POSITION`,
	},
	SQLServer: {
		tables: `
SELECT t.TABLE_CATALOG, t.TABLE_SCHEMA, t.TABLE_NAME, t.TABLE_TYPE,
       COALESCE(CAST(ep.value AS NVARCHAR(4000)), '')
FROM INFORMATION_SCHEMA.TABLES t
LEFT JOIN sys.extended_properties ep
  ON ep.major_id = OBJECT_ID(QUOTENAME(t.TABLE_SCHEMA) + '.' + QUOTENAME(t.TABLE_NAME))
 AND ep.minor_id = 0 AND ep.name = 'MS_Description'
WHERE t.TABLE_SCHEMA = ?
ORDER BY t.TABLE_NAME`,
		columns: `
SELECT c.COLUMN_NAME, c.DATA_TYPE,
       c.CHARACTER_MAXIMUM_LENGTH, c.NUMERIC_PRECISION, c.NUMERIC_SCALE,
       c.IS_NULLABLE, c.COLUMN_DEFAULT,
       COALESCE(CAST(ep.value AS NVARCHAR(4000)), '')
FROM INFORMATION_SCHEMA.COLUMNS c
LEFT JOIN sys.extended_properties ep
  ON ep.major_id = OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME))
 AND ep.minor_id = COLUMNPROPERTY(ep.major_id, c.COLUMN_NAME, 'ColumnId')
 AND ep.name = 'MS_Description'
WHERE c.TABLE_SCHEMA = ? AND c.TABLE_NAME = ?
ORDER BY c.ORDINAL_POSITION`,
		primaryKeys: standardPrimaryKeys,
		indexInfo: `
SELECT t.name, CASE WHEN i.is_unique = 1 THEN 0 ELSE 1 END, i.name, ic.key_ordinal, c.name
FROM sys.indexes i
JOIN sys.tables t ON t.object_id = i.object_id
JOIN sys.schemas s ON s.schema_id = t.schema_id
JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
WHERE s.name = ? AND t.name = ? AND i.name IS NOT NULL AND ic.is_included_column = 0
ORDER BY i.name, ic.key_ordinal`,
		importedKeys: `
SELECT DB_NAME(), rs.name, rt.name, rc.name,
       DB_NAME(), s.name, t.name, c.name,
       fkc.constraint_column_id, fk.name, COALESCE(ki.name, '')
FROM sys.foreign_keys fk
JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
JOIN sys.tables t ON t.object_id = fk.parent_object_id
JOIN sys.schemas s ON s.schema_id = t.schema_id
JOIN sys.columns c ON c.object_id = fkc.parent_object_id AND c.column_id = fkc.parent_column_id
JOIN sys.tables rt ON rt.object_id = fk.referenced_object_id
JOIN sys.schemas rs ON rs.schema_id = rt.schema_id
JOIN sys.columns rc ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
LEFT JOIN sys.indexes ki ON ki.object_id = fk.referenced_object_id AND ki.index_id = fk.key_index_id
WHERE s.name = ? AND t.name = ?
ORDER BY fk.name, fkc.constraint_column_id`,
		procedures: `
SELECT ROUTINE_CATALOG, ROUTINE_SCHEMA, ROUTINE_NAME,
       CASE ROUTINE_TYPE WHEN 'FUNCTION' THEN 2 ELSE 1 END,
       '', SPECIFIC_NAME
FROM INFORMATION_SCHEMA.ROUTINES
WHERE ROUTINE_SCHEMA = ? AND ROUTINE_NAME LIKE ?
ORDER BY ROUTINE_NAME`,
		procedureColumns: `
SELECT p.PARAMETER_NAME,
       CASE WHEN p.IS_RESULT = 'YES' THEN 5
            WHEN p.PARAMETER_MODE = 'IN' THEN 1
            WHEN p.PARAMETER_MODE = 'INOUT' THEN 2
            WHEN p.PARAMETER_MODE = 'OUT' THEN 4 ELSE 0 END,
       p.DATA_TYPE, p.CHARACTER_MAXIMUM_LENGTH, p.NUMERIC_PRECISION, p.NUMERIC_SCALE, p.ORDINAL_POSITION
FROM INFORMATION_SCHEMA.PARAMETERS p
JOIN INFORMATION_SCHEMA.ROUTINES r
  ON r.SPECIFIC_SCHEMA = p.SPECIFIC_SCHEMA AND r.SPECIFIC_NAME = p.SPECIFIC_NAME
WHERE r.ROUTINE_SCHEMA = ? AND r.ROUTINE_NAME = ? AND (? = '' OR r.SPECIFIC_NAME = ?)
ORDER BY p.ORDINAL_POSITION`,
	},
	H2: {
		tables: `
SELECT TABLE_CATALOG, TABLE_SCHEMA, TABLE_NAME, TABLE_TYPE, COALESCE(REMARKS, '')
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_SCHEMA = ?
ORDER BY TABLE_NAME`,
		columns: `
SELECT COLUMN_NAME, DATA_TYPE,
       CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE,
       IS_NULLABLE, COLUMN_DEFAULT, COALESCE(REMARKS, '')
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`,
		primaryKeys: standardPrimaryKeys,
		indexInfo: `
SELECT ic.TABLE_NAME,
       CASE WHEN i.INDEX_TYPE_NAME IN ('PRIMARY KEY', 'UNIQUE INDEX') THEN FALSE ELSE TRUE END,
       ic.INDEX_NAME, ic.ORDINAL_POSITION, ic.COLUMN_NAME
FROM INFORMATION_SCHEMA.INDEX_COLUMNS ic
JOIN INFORMATION_SCHEMA.INDEXES i
  ON i.INDEX_SCHEMA = ic.INDEX_SCHEMA AND i.INDEX_NAME = ic.INDEX_NAME
WHERE ic.TABLE_SCHEMA = ? AND ic.TABLE_NAME = ?
ORDER BY ic.INDEX_NAME, ic.ORDINAL_POSITION`,
		importedKeys: `
SELECT pk.TABLE_CATALOG, pk.TABLE_SCHEMA, pk.TABLE_NAME, pk.COLUMN_NAME,
       fk.TABLE_CATALOG, fk.TABLE_SCHEMA, fk.TABLE_NAME, fk.COLUMN_NAME,
       fk.ORDINAL_POSITION, rc.CONSTRAINT_NAME, rc.UNIQUE_CONSTRAINT_NAME
FROM INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE fk
  ON fk.CONSTRAINT_SCHEMA = rc.CONSTRAINT_SCHEMA AND fk.CONSTRAINT_NAME = rc.CONSTRAINT_NAME
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE pk
  ON pk.CONSTRAINT_SCHEMA = rc.UNIQUE_CONSTRAINT_SCHEMA
 AND pk.CONSTRAINT_NAME = rc.UNIQUE_CONSTRAINT_NAME
 AND pk.ORDINAL_POSITION = fk.POSITION_IN_UNIQUE_CONSTRAINT
WHERE fk.TABLE_SCHEMA = ? AND fk.TABLE_NAME = ?
ORDER BY rc.CONSTRAINT_NAME, fk.ORDINAL_POSITION`,
		procedures: `
SELECT ROUTINE_CATALOG, ROUTINE_SCHEMA, ROUTINE_NAME,
       CASE ROUTINE_TYPE WHEN 'FUNCTION' THEN 2 ELSE 1 END,
       COALESCE(REMARKS, ''), SPECIFIC_NAME
FROM INFORMATION_SCHEMA.ROUTINES
WHERE ROUTINE_SCHEMA = ? AND ROUTINE_NAME LIKE ?
ORDER BY ROUTINE_NAME`,
		procedureColumns: `
SELECT p.PARAMETER_NAME,
       CASE p.PARAMETER_MODE WHEN 'IN' THEN 1 WHEN 'INOUT' THEN 2 WHEN 'OUT' THEN 4 ELSE 0 END,
       p.DATA_TYPE, p.CHARACTER_MAXIMUM_LENGTH, p.NUMERIC_PRECISION, p.NUMERIC_SCALE, p.ORDINAL_POSITION
FROM INFORMATION_SCHEMA.PARAMETERS p
JOIN INFORMATION_SCHEMA.ROUTINES r
  ON r.SPECIFIC_SCHEMA = p.SPECIFIC_SCHEMA AND r.SPECIFIC_NAME = p.SPECIFIC_NAME
WHERE r.ROUTINE_SCHEMA = ? AND r.ROUTINE_NAME = ? AND (? = '' OR r.SPECIFIC_NAME = ?)
ORDER BY p.ORDINAL_POSITION`,
		sources: `
SELECT ROUTINE_SCHEMA, ROUTINE_NAME, ROUTINE_TYPE, 1, COALESCE(ROUTINE_DEFINITION, '')
FROM INFORMATION_SCHEMA.ROUTINES
WHERE ROUTINE_SCHEMA = ?
ORDER BY ROUTINE_NAME`,
	},
}

// InfoSchema reads metadata from information_schema and the engine's system catalog.
type InfoSchema struct {
	engine   Engine
	db       *sql.DB
	identity string
	d        dialect
}

var (
	_ MetaData     = (*InfoSchema)(nil)
	_ SourceReader = (*InfoSchema)(nil)
)

// NewInfoSchema creates an information_schema reader for PostgreSQL, MySQL, SQL Server or H2.
func NewInfoSchema(e Engine, db *sql.DB, identity string) (*InfoSchema, error) {
	d, ok := dialects[e]
	if !ok {
		return nil, &UnsupportedEngineError{Name: string(e)}
	}
	return &InfoSchema{engine: e, db: db, identity: identity, d: d}, nil
}

func (r *InfoSchema) Engine() Engine   { return r.engine }
func (r *InfoSchema) Identity() string { return r.identity }

func (r *InfoSchema) scope(catalog, schema string) string {
	s := schema
	if r.d.scopeByCatalog {
		s = catalog
	}
	if s == "" {
		s = r.engine.DefaultSchema()
	}
	return s
}

func (r *InfoSchema) Tables(ctx context.Context, catalog, schema string, types []string) ([]TableRow, error) {
	rows, err := queryRows(ctx, r.db, rebind(r.engine, r.d.tables), []any{r.scope(catalog, schema)},
		func(rs *sql.Rows) (TableRow, error) {
			var t TableRow
			err := rs.Scan(&t.Catalog, &t.Schema, &t.Name, &t.Type, &t.Remarks)
			t.Type = normalizeTableType(t.Type)
			return t, err
		})
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, t := range rows {
		if matchTypes(t.Type, types) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *InfoSchema) Columns(ctx context.Context, catalog, schema, table string) ([]ColumnRow, error) {
	return queryRows(ctx, r.db, rebind(r.engine, r.d.columns), []any{r.scope(catalog, schema), table},
		func(rs *sql.Rows) (ColumnRow, error) {
			var (
				c                        ColumnRow
				length, precision, scale sql.NullInt64
				nullable                 string
				def                      sql.NullString
			)
			err := rs.Scan(&c.ColumnName, &c.TypeName, &length, &precision, &scale, &nullable, &def, &c.Remarks)
			c.Catalog, c.Schema, c.TableName = catalog, schema, table
			c.DataType = JDBCTypeOf(r.engine, c.TypeName)
			c.ColumnSize = firstInt(intPtr(length), intPtr(precision))
			c.DecimalDigits = intPtr(scale)
			c.Nullable = strings.EqualFold(nullable, "YES")
			c.Default = strPtr(def)
			return c, err
		})
}

func (r *InfoSchema) PrimaryKeys(ctx context.Context, catalog, schema, table string) ([]PrimaryKeyRow, error) {
	return queryRows(ctx, r.db, rebind(r.engine, r.d.primaryKeys), []any{r.scope(catalog, schema), table},
		func(rs *sql.Rows) (PrimaryKeyRow, error) {
			pk := PrimaryKeyRow{TableName: table}
			err := rs.Scan(&pk.ColumnName, &pk.KeySeq, &pk.PKName)
			return pk, err
		})
}

func (r *InfoSchema) IndexInfo(ctx context.Context, catalog, schema, table string, unique bool) ([]IndexRow, error) {
	rows, err := queryRows(ctx, r.db, rebind(r.engine, r.d.indexInfo), []any{r.scope(catalog, schema), table},
		scanIndexRow)
	if err != nil {
		return nil, err
	}
	return filterUnique(rows, unique), nil
}

func (r *InfoSchema) ImportedKeys(ctx context.Context, catalog, schema, table string) ([]ImportedKeyRow, error) {
	return queryRows(ctx, r.db, rebind(r.engine, r.d.importedKeys), []any{r.scope(catalog, schema), table},
		scanImportedKeyRow)
}

func (r *InfoSchema) Procedures(ctx context.Context, catalog, schema, namePattern string) ([]ProcedureRow, error) {
	if namePattern == "" {
		namePattern = "%"
	}
	return queryRows(ctx, r.db, rebind(r.engine, r.d.procedures), []any{r.scope(catalog, schema), namePattern},
		func(rs *sql.Rows) (ProcedureRow, error) {
			var p ProcedureRow
			err := rs.Scan(&p.Catalog, &p.Schema, &p.Name, &p.Type, &p.Remarks, &p.SpecificName)
			return p, err
		})
}

// ProcedureColumns lists the parameters of a procedure. A specific name
// restricts the result to one overload.
func (r *InfoSchema) ProcedureColumns(ctx context.Context, catalog, schema, procedure, specificName string) ([]ProcedureColumnRow, error) {
	args := []any{r.scope(catalog, schema), procedure, specificName, specificName}
	return queryRows(ctx, r.db, rebind(r.engine, r.d.procedureColumns), args,
		func(rs *sql.Rows) (ProcedureColumnRow, error) {
			var (
				c                        ProcedureColumnRow
				name                     sql.NullString
				length, precision, scale sql.NullInt64
				ordinal                  int
			)
			err := rs.Scan(&name, &c.ColumnType, &c.TypeName, &length, &precision, &scale, &ordinal)
			c.ProcedureName = procedure
			c.ColumnName = name.String
			dt := JDBCTypeOf(r.engine, c.TypeName)
			c.DataType = &dt
			c.Length, c.Precision, c.Scale = intPtr(length), intPtr(precision), intPtr(scale)
			return c, err
		})
}

// ProcedureSources returns routine bodies where the engine stores them.
func (r *InfoSchema) ProcedureSources(ctx context.Context, catalog, schema string) ([]SourceRow, error) {
	if r.d.sources == "" {
		return nil, nil
	}
	return queryRows(ctx, r.db, rebind(r.engine, r.d.sources), []any{r.scope(catalog, schema)}, scanSourceRow)
}

func scanIndexRow(rs *sql.Rows) (IndexRow, error) {
	ix := IndexRow{Type: IndexOther}
	err := rs.Scan(&ix.TableName, &ix.NonUnique, &ix.IndexName, &ix.OrdinalPosition, &ix.ColumnName)
	return ix, err
}

func scanImportedKeyRow(rs *sql.Rows) (ImportedKeyRow, error) {
	var k ImportedKeyRow
	var pkName sql.NullString
	err := rs.Scan(&k.PKCatalog, &k.PKSchema, &k.PKTable, &k.PKColumn,
		&k.FKCatalog, &k.FKSchema, &k.FKTable, &k.FKColumn,
		&k.KeySeq, &k.FKName, &pkName)
	k.PKName = pkName.String
	return k, err
}

func scanSourceRow(rs *sql.Rows) (SourceRow, error) {
	var s SourceRow
	err := rs.Scan(&s.Schema, &s.Name, &s.Type, &s.Line, &s.Text)
	return s, err
}

func filterUnique(rows []IndexRow, unique bool) []IndexRow {
	if !unique {
		return rows
	}
	out := rows[:0]
	for _, ix := range rows {
		if !ix.NonUnique {
			out = append(out, ix)
		}
	}
	return out
}
