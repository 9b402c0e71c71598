package dbmeta

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// OracleReader reads metadata from the Oracle data dictionary (ALL_* views)
// in the shape the Oracle JDBC driver reports it: package members carry the
// package name in the catalog column.
type OracleReader struct {
	db       *sql.DB
	identity string
}

var (
	_ MetaData          = (*OracleReader)(nil)
	_ SynonymReader     = (*OracleReader)(nil)
	_ ArgumentReader    = (*OracleReader)(nil)
	_ TypeReader        = (*OracleReader)(nil)
	_ SourceReader      = (*OracleReader)(nil)
	_ UniqueKeyFKReader = (*OracleReader)(nil)
	_ DBLinkReader      = (*OracleReader)(nil)
)

// NewOracle creates an Oracle dictionary reader.
func NewOracle(db *sql.DB, identity string) *OracleReader {
	return &OracleReader{db: db, identity: identity}
}

func (o *OracleReader) Engine() Engine   { return Oracle }
func (o *OracleReader) Identity() string { return o.identity }

// unquote strips the double quotes used to pass a case-sensitive name.
func unquote(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) {
		return name[1 : len(name)-1]
	}
	return name
}

func (o *OracleReader) Tables(ctx context.Context, catalog, schema string, types []string) ([]TableRow, error) {
	query := `
		SELECT o.OWNER, o.OBJECT_NAME, o.OBJECT_TYPE, NVL(c.COMMENTS, ' ')
		FROM ALL_OBJECTS o
		LEFT JOIN ALL_TAB_COMMENTS c ON c.OWNER = o.OWNER AND c.TABLE_NAME = o.OBJECT_NAME
		WHERE o.OWNER = :1 AND o.OBJECT_TYPE IN ('TABLE', 'VIEW', 'SYNONYM')
		ORDER BY o.OBJECT_NAME`

	rows, err := queryRows(ctx, o.db, query, []any{schema}, func(rs *sql.Rows) (TableRow, error) {
		var t TableRow
		err := rs.Scan(&t.Schema, &t.Name, &t.Type, &t.Remarks)
		t.Remarks = strings.TrimSpace(t.Remarks)
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

func (o *OracleReader) Columns(ctx context.Context, catalog, schema, table string) ([]ColumnRow, error) {
	query := `
		SELECT c.COLUMN_NAME, c.DATA_TYPE, c.DATA_LENGTH, c.CHAR_LENGTH, c.DATA_PRECISION, c.DATA_SCALE,
			c.NULLABLE, c.DATA_DEFAULT, NVL(cc.COMMENTS, ' ')
		FROM ALL_TAB_COLUMNS c
		LEFT JOIN ALL_COL_COMMENTS cc
			ON cc.OWNER = c.OWNER AND cc.TABLE_NAME = c.TABLE_NAME AND cc.COLUMN_NAME = c.COLUMN_NAME
		WHERE c.OWNER = :1 AND c.TABLE_NAME = :2
		ORDER BY c.COLUMN_ID`

	return queryRows(ctx, o.db, query, []any{schema, unquote(table)}, func(rs *sql.Rows) (ColumnRow, error) {
		var (
			c                                 ColumnRow
			length, charLen, precision, scale sql.NullInt64
			nullable                          string
			def                               sql.NullString
		)
		err := rs.Scan(&c.ColumnName, &c.TypeName, &length, &charLen, &precision, &scale, &nullable, &def, &c.Remarks)
		c.Schema, c.TableName = schema, table
		c.DataType = JDBCTypeOf(Oracle, c.TypeName)
		c.ColumnSize = firstInt(intPtr(precision), intPtr(charLen), intPtr(length))
		c.DecimalDigits = intPtr(scale)
		c.Nullable = nullable == "Y"
		c.Default = strPtr(def)
		c.Remarks = strings.TrimSpace(c.Remarks)
		return c, err
	})
}

func (o *OracleReader) PrimaryKeys(ctx context.Context, catalog, schema, table string) ([]PrimaryKeyRow, error) {
	query := `
		SELECT cc.COLUMN_NAME, cc.POSITION, c.CONSTRAINT_NAME
		FROM ALL_CONSTRAINTS c
		JOIN ALL_CONS_COLUMNS cc ON cc.OWNER = c.OWNER AND cc.CONSTRAINT_NAME = c.CONSTRAINT_NAME
		WHERE c.OWNER = :1 AND c.TABLE_NAME = :2 AND c.CONSTRAINT_TYPE = 'P'
		ORDER BY cc.POSITION`

	return queryRows(ctx, o.db, query, []any{schema, unquote(table)}, func(rs *sql.Rows) (PrimaryKeyRow, error) {
		pk := PrimaryKeyRow{TableName: table}
		var pos sql.NullString
		err := rs.Scan(&pk.ColumnName, &pos, &pk.PKName)
		pk.KeySeq = pos.String
		return pk, err
	})
}

func (o *OracleReader) IndexInfo(ctx context.Context, catalog, schema, table string, unique bool) ([]IndexRow, error) {
	query := `
		SELECT i.TABLE_NAME, CASE WHEN i.UNIQUENESS = 'UNIQUE' THEN 0 ELSE 1 END,
			i.INDEX_NAME, ic.COLUMN_POSITION, ic.COLUMN_NAME
		FROM ALL_INDEXES i
		JOIN ALL_IND_COLUMNS ic ON ic.INDEX_OWNER = i.OWNER AND ic.INDEX_NAME = i.INDEX_NAME
		WHERE i.TABLE_OWNER = :1 AND i.TABLE_NAME = :2
		ORDER BY i.INDEX_NAME, ic.COLUMN_POSITION`

	rows, err := queryRows(ctx, o.db, query, []any{schema, unquote(table)}, scanIndexRow)
	if err != nil {
		return nil, err
	}
	return filterUnique(rows, unique), nil
}

// foreignKeyQuery selects FK columns paired with the referenced key columns
// by position. The referenced constraint type is P or U.
const foreignKeyQuery = `
		SELECT r.OWNER, r.TABLE_NAME, rc.COLUMN_NAME, c.OWNER, c.TABLE_NAME, cc.COLUMN_NAME,
			cc.POSITION, c.CONSTRAINT_NAME, r.CONSTRAINT_NAME
		FROM ALL_CONSTRAINTS c
		JOIN ALL_CONS_COLUMNS cc ON cc.OWNER = c.OWNER AND cc.CONSTRAINT_NAME = c.CONSTRAINT_NAME
		JOIN ALL_CONSTRAINTS r ON r.OWNER = c.R_OWNER AND r.CONSTRAINT_NAME = c.R_CONSTRAINT_NAME
		JOIN ALL_CONS_COLUMNS rc
			ON rc.OWNER = r.OWNER AND rc.CONSTRAINT_NAME = r.CONSTRAINT_NAME AND rc.POSITION = cc.POSITION
		WHERE c.CONSTRAINT_TYPE = 'R' AND r.CONSTRAINT_TYPE = '%s' AND c.OWNER = :1 %s
		ORDER BY c.TABLE_NAME, c.CONSTRAINT_NAME, cc.POSITION`

func scanOracleForeignKey(rs *sql.Rows) (ImportedKeyRow, error) {
	var k ImportedKeyRow
	err := rs.Scan(&k.PKSchema, &k.PKTable, &k.PKColumn, &k.FKSchema, &k.FKTable, &k.FKColumn,
		&k.KeySeq, &k.FKName, &k.PKName)
	return k, err
}

func (o *OracleReader) ImportedKeys(ctx context.Context, catalog, schema, table string) ([]ImportedKeyRow, error) {
	query := fmt.Sprintf(foreignKeyQuery, "P", "AND c.TABLE_NAME = :2")
	return queryRows(ctx, o.db, query, []any{schema, unquote(table)}, scanOracleForeignKey)
}

// UniqueKeyForeignKeys lists the schema's foreign keys referencing unique
// (not primary) keys, which imported keys leave out.
func (o *OracleReader) UniqueKeyForeignKeys(ctx context.Context, catalog, schema string) ([]ImportedKeyRow, error) {
	query := fmt.Sprintf(foreignKeyQuery, "U", "")
	return queryRows(ctx, o.db, query, []any{schema}, scanOracleForeignKey)
}

func (o *OracleReader) Procedures(ctx context.Context, catalog, schema, namePattern string) ([]ProcedureRow, error) {
	if namePattern == "" {
		namePattern = "%"
	}
	query := `
		SELECT DISTINCT
			CASE WHEN p.PROCEDURE_NAME IS NULL THEN NULL ELSE p.OBJECT_NAME END,
			p.OWNER,
			NVL(p.PROCEDURE_NAME, p.OBJECT_NAME),
			CASE WHEN EXISTS (
				SELECT 1 FROM ALL_ARGUMENTS a
				WHERE a.OWNER = p.OWNER
					AND a.OBJECT_NAME = NVL(p.PROCEDURE_NAME, p.OBJECT_NAME)
					AND NVL(a.PACKAGE_NAME, '-') = CASE WHEN p.PROCEDURE_NAME IS NULL THEN '-' ELSE p.OBJECT_NAME END
					AND a.POSITION = 0 AND a.DATA_LEVEL = 0
			) THEN 2 ELSE 1 END
		FROM ALL_PROCEDURES p
		WHERE p.OWNER = :1
			AND NVL(p.PROCEDURE_NAME, p.OBJECT_NAME) LIKE :2
			AND p.OBJECT_TYPE IN ('PROCEDURE', 'FUNCTION', 'PACKAGE')
			AND NOT (p.OBJECT_TYPE = 'PACKAGE' AND p.PROCEDURE_NAME IS NULL)`

	rows, err := queryRows(ctx, o.db, query, []any{schema, namePattern}, func(rs *sql.Rows) (ProcedureRow, error) {
		var p ProcedureRow
		var pkg sql.NullString
		err := rs.Scan(&pkg, &p.Schema, &p.Name, &p.Type)
		p.Catalog = pkg.String
		p.SpecificName = p.Name
		return p, err
	})
	if err != nil {
		return nil, err
	}
	if catalog == "" {
		return rows, nil
	}
	out := rows[:0]
	for _, p := range rows {
		if strings.EqualFold(p.Catalog, catalog) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ProcedureColumns lists the top-level arguments of a procedure. catalog is
// the package name, empty for standalone procedures. Overloads come back
// together, told apart by OverloadNo, so specificName is not used.
func (o *OracleReader) ProcedureColumns(ctx context.Context, catalog, schema, procedure, _ string) ([]ProcedureColumnRow, error) {
	query := `
		SELECT NVL(a.ARGUMENT_NAME, ' '), a.POSITION, a.IN_OUT, a.DATA_TYPE, a.TYPE_NAME,
			a.DATA_LENGTH, a.DATA_PRECISION, a.DATA_SCALE, a.OVERLOAD
		FROM ALL_ARGUMENTS a
		WHERE a.OWNER = :1 AND a.OBJECT_NAME = :2 AND NVL(a.PACKAGE_NAME, ' ') = NVL(:3, ' ')
			AND a.DATA_LEVEL = 0 AND a.DATA_TYPE IS NOT NULL
		ORDER BY a.OVERLOAD, a.SEQUENCE`

	return queryRows(ctx, o.db, query, []any{schema, procedure, catalog}, func(rs *sql.Rows) (ProcedureColumnRow, error) {
		var (
			c                        ProcedureColumnRow
			position                 int
			inOut, dataType          string
			typeName, overload       sql.NullString
			length, precision, scale sql.NullInt64
		)
		err := rs.Scan(&c.ColumnName, &position, &inOut, &dataType, &typeName, &length, &precision, &scale, &overload)
		c.ProcedureName = procedure
		c.ColumnName = strings.TrimSpace(c.ColumnName)
		c.ColumnType = OracleColumnType(position, inOut)
		dt := JDBCTypeOf(Oracle, dataType)
		c.DataType = &dt
		c.TypeName = dataType
		if typeName.Valid && typeName.String != "" {
			c.TypeName = typeName.String
		}
		c.Length, c.Precision, c.Scale = intPtr(length), intPtr(precision), intPtr(scale)
		c.OverloadNo = atoiPtr(overload)
		return c, err
	})
}

// OracleColumnType maps an ALL_ARGUMENTS position and IN_OUT value to a procedure column type code.
func OracleColumnType(position int, inOut string) int {
	if position == 0 {
		return 5
	}
	switch inOut {
	case "IN":
		return 1
	case "IN/OUT":
		return 2
	case "OUT":
		return 4
	}
	return 0
}

func (o *OracleReader) ProcedureSynonyms(ctx context.Context, catalog, schema string) ([]SynonymRow, error) {
	query := `
		SELECT s.OWNER, s.SYNONYM_NAME, NVL(s.TABLE_OWNER, ' '), s.TABLE_NAME, NVL(s.DB_LINK, ' ')
		FROM ALL_SYNONYMS s
		WHERE s.OWNER = :1
			AND (s.DB_LINK IS NOT NULL OR EXISTS (
				SELECT 1 FROM ALL_OBJECTS o
				WHERE o.OWNER = s.TABLE_OWNER AND o.OBJECT_NAME = s.TABLE_NAME
					AND o.OBJECT_TYPE IN ('PROCEDURE', 'FUNCTION', 'PACKAGE')))
		ORDER BY s.SYNONYM_NAME`

	return queryRows(ctx, o.db, query, []any{schema}, func(rs *sql.Rows) (SynonymRow, error) {
		var s SynonymRow
		err := rs.Scan(&s.Owner, &s.SynonymName, &s.TargetOwner, &s.TargetName, &s.DBLink)
		s.TargetOwner = strings.TrimSpace(s.TargetOwner)
		s.DBLink = strings.TrimSpace(s.DBLink)
		return s, err
	})
}

const argumentColumns = `
		NVL(a.PACKAGE_NAME, ' '), a.OBJECT_NAME, a.OVERLOAD, NVL(a.ARGUMENT_NAME, ' '),
		a.POSITION, a.SEQUENCE, a.DATA_LEVEL, NVL(a.DATA_TYPE, ' '), NVL(a.TYPE_OWNER, ' '),
		NVL(a.TYPE_NAME, ' '), NVL(a.TYPE_SUBNAME, ' '), a.IN_OUT, a.DATA_LENGTH, a.DATA_PRECISION, a.DATA_SCALE`

func scanArgumentRow(owner string) func(*sql.Rows) (ArgumentRow, error) {
	return func(rs *sql.Rows) (ArgumentRow, error) {
		a := ArgumentRow{Owner: owner}
		var (
			overload                 sql.NullString
			length, precision, scale sql.NullInt64
		)
		err := rs.Scan(&a.Package, &a.Procedure, &overload, &a.ArgumentName,
			&a.Position, &a.Sequence, &a.DataLevel, &a.DataType, &a.TypeOwner,
			&a.TypeName, &a.TypeSubname, &a.InOut, &length, &precision, &scale)
		a.Package = strings.TrimSpace(a.Package)
		a.ArgumentName = strings.TrimSpace(a.ArgumentName)
		a.DataType = strings.TrimSpace(a.DataType)
		a.TypeOwner = strings.TrimSpace(a.TypeOwner)
		a.TypeName = strings.TrimSpace(a.TypeName)
		a.TypeSubname = strings.TrimSpace(a.TypeSubname)
		a.Overload = atoiPtr(overload)
		a.Length, a.Precision, a.Scale = intPtr(length), intPtr(precision), intPtr(scale)
		return a, err
	}
}

func (o *OracleReader) ProcedureArguments(ctx context.Context, schema string) ([]ArgumentRow, error) {
	query := `SELECT ` + argumentColumns + `
		FROM ALL_ARGUMENTS a
		WHERE a.OWNER = :1
		ORDER BY a.PACKAGE_NAME, a.OBJECT_NAME, a.OVERLOAD, a.SEQUENCE`
	return queryRows(ctx, o.db, query, []any{schema}, scanArgumentRow(schema))
}

var dbLinkPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#.]*$`)

// DBLinkProcedureArguments reads the arguments of a remote procedure through a DB link.
func (o *OracleReader) DBLinkProcedureArguments(ctx context.Context, dbLink, packageName, procedure string) ([]ArgumentRow, error) {
	// a DB link name cannot be bound
	if !dbLinkPattern.MatchString(dbLink) {
		return nil, fmt.Errorf("invalid DB link name %q", dbLink)
	}
	query := `SELECT ` + argumentColumns + `
		FROM ALL_ARGUMENTS@` + dbLink + ` a
		WHERE a.OBJECT_NAME = :1 AND NVL(a.PACKAGE_NAME, ' ') = NVL(:2, ' ')
		ORDER BY a.OVERLOAD, a.SEQUENCE`
	return queryRows(ctx, o.db, query, []any{procedure, packageName}, scanArgumentRow(""))
}

func (o *OracleReader) ArrayTypes(ctx context.Context, schema string) ([]ArrayTypeRow, error) {
	query := `
		SELECT t.OWNER, t.TYPE_NAME, NVL(t.ELEM_TYPE_OWNER, ' '), t.ELEM_TYPE_NAME, t.LENGTH, t.PRECISION, t.SCALE
		FROM ALL_COLL_TYPES t
		WHERE t.OWNER = :1
		ORDER BY t.TYPE_NAME`
	return queryRows(ctx, o.db, query, []any{schema}, func(rs *sql.Rows) (ArrayTypeRow, error) {
		var (
			t                        ArrayTypeRow
			length, precision, scale sql.NullInt64
		)
		err := rs.Scan(&t.Owner, &t.TypeName, &t.ElemTypeOwner, &t.ElemTypeName, &length, &precision, &scale)
		t.ElemTypeOwner = strings.TrimSpace(t.ElemTypeOwner)
		t.Length, t.Precision, t.Scale = intPtr(length), intPtr(precision), intPtr(scale)
		return t, err
	})
}

func (o *OracleReader) StructAttributes(ctx context.Context, schema string) ([]StructAttrRow, error) {
	query := `
		SELECT a.OWNER, a.TYPE_NAME, a.ATTR_NAME, NVL(a.ATTR_TYPE_OWNER, ' '), a.ATTR_TYPE_NAME,
			a.ATTR_NO, a.LENGTH, a.PRECISION, a.SCALE
		FROM ALL_TYPE_ATTRS a
		WHERE a.OWNER = :1
		ORDER BY a.TYPE_NAME, a.ATTR_NO`
	return queryRows(ctx, o.db, query, []any{schema}, func(rs *sql.Rows) (StructAttrRow, error) {
		var (
			a                        StructAttrRow
			length, precision, scale sql.NullInt64
		)
		err := rs.Scan(&a.Owner, &a.TypeName, &a.AttrName, &a.AttrTypeOwner, &a.AttrTypeName,
			&a.Position, &length, &precision, &scale)
		a.AttrTypeOwner = strings.TrimSpace(a.AttrTypeOwner)
		a.Length, a.Precision, a.Scale = intPtr(length), intPtr(precision), intPtr(scale)
		return a, err
	})
}

func (o *OracleReader) ProcedureSources(ctx context.Context, catalog, schema string) ([]SourceRow, error) {
	query := `
		SELECT s.OWNER, s.NAME, s.TYPE, s.LINE, s.TEXT
		FROM ALL_SOURCE s
		WHERE s.OWNER = :1 AND s.TYPE IN ('PROCEDURE', 'FUNCTION', 'PACKAGE BODY')
		ORDER BY s.NAME, s.TYPE, s.LINE`
	return queryRows(ctx, o.db, query, []any{schema}, scanSourceRow)
}
