package dbmeta

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// SQLiteReader reads metadata from sqlite_master and the table pragmas.
// SQLite has neither catalogs, schemas nor stored procedures.
type SQLiteReader struct {
	db       *sql.DB
	identity string
}

var _ MetaData = (*SQLiteReader)(nil)

// NewSQLite creates a SQLite reader.
func NewSQLite(db *sql.DB, identity string) *SQLiteReader {
	return &SQLiteReader{db: db, identity: identity}
}

func (s *SQLiteReader) Engine() Engine   { return SQLite }
func (s *SQLiteReader) Identity() string { return s.identity }

func (s *SQLiteReader) Tables(ctx context.Context, catalog, schema string, types []string) ([]TableRow, error) {
	rows, err := queryRows(ctx, s.db,
		`SELECT name, type FROM sqlite_master WHERE type IN ('table', 'view') ORDER BY name`, nil,
		func(rs *sql.Rows) (TableRow, error) {
			var t TableRow
			err := rs.Scan(&t.Name, &t.Type)
			t.Type = strings.ToUpper(t.Type)
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

func (s *SQLiteReader) Columns(ctx context.Context, catalog, schema, table string) ([]ColumnRow, error) {
	return queryRows(ctx, s.db,
		`SELECT name, type, "notnull", dflt_value FROM pragma_table_info(?) ORDER BY cid`, []any{table},
		func(rs *sql.Rows) (ColumnRow, error) {
			var (
				c       ColumnRow
				notNull int
				def     sql.NullString
			)
			err := rs.Scan(&c.ColumnName, &c.TypeName, &notNull, &def)
			c.TableName = table
			base, size, digits := parseTypeSize(c.TypeName)
			c.TypeName = strings.ToUpper(base)
			c.DataType = JDBCTypeOf(SQLite, base)
			c.ColumnSize, c.DecimalDigits = size, digits
			c.Nullable = notNull == 0
			c.Default = strPtr(def)
			return c, err
		})
}

func (s *SQLiteReader) PrimaryKeys(ctx context.Context, catalog, schema, table string) ([]PrimaryKeyRow, error) {
	return queryRows(ctx, s.db,
		`SELECT name, pk FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`, []any{table},
		func(rs *sql.Rows) (PrimaryKeyRow, error) {
			pk := PrimaryKeyRow{TableName: table}
			err := rs.Scan(&pk.ColumnName, &pk.KeySeq)
			return pk, err
		})
}

func (s *SQLiteReader) IndexInfo(ctx context.Context, catalog, schema, table string, unique bool) ([]IndexRow, error) {
	rows, err := queryRows(ctx, s.db, `
		SELECT il.name, il."unique", ii.seqno, ii.name
		FROM pragma_index_list(?) il, pragma_index_info(il.name) ii
		ORDER BY il.name, ii.seqno`, []any{table},
		func(rs *sql.Rows) (IndexRow, error) {
			ix := IndexRow{TableName: table, Type: IndexOther}
			var isUnique, seq int
			err := rs.Scan(&ix.IndexName, &isUnique, &seq, &ix.ColumnName)
			ix.NonUnique = isUnique == 0
			ix.OrdinalPosition = strconv.Itoa(seq + 1)
			return ix, err
		})
	if err != nil {
		return nil, err
	}
	return filterUnique(rows, unique), nil
}

// ImportedKeys lists foreign keys. SQLite keys are unnamed, so each gets a
// name from the table and its pragma id. A reference without columns
// points at the referenced table's primary key.
func (s *SQLiteReader) ImportedKeys(ctx context.Context, catalog, schema, table string) ([]ImportedKeyRow, error) {
	type fkRow struct {
		id, seq  int
		refTable string
		from     string
		to       sql.NullString
	}
	rows, err := queryRows(ctx, s.db,
		`SELECT id, seq, "table", "from", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, []any{table},
		func(rs *sql.Rows) (fkRow, error) {
			var r fkRow
			err := rs.Scan(&r.id, &r.seq, &r.refTable, &r.from, &r.to)
			return r, err
		})
	if err != nil {
		return nil, err
	}

	pkCache := map[string][]PrimaryKeyRow{}
	out := make([]ImportedKeyRow, 0, len(rows))
	for _, r := range rows {
		to := r.to.String
		if to == "" {
			pks, ok := pkCache[r.refTable]
			if !ok {
				pks, err = s.PrimaryKeys(ctx, catalog, schema, r.refTable)
				if err != nil {
					return nil, fmt.Errorf("reading primary key of %s: %w", r.refTable, err)
				}
				pkCache[r.refTable] = pks
			}
			if r.seq < len(pks) {
				to = pks[r.seq].ColumnName
			}
		}
		out = append(out, ImportedKeyRow{
			PKTable:  r.refTable,
			PKColumn: to,
			FKTable:  table,
			FKColumn: r.from,
			KeySeq:   strconv.Itoa(r.seq + 1),
			FKName:   fmt.Sprintf("FK_%s_%d", strings.ToUpper(table), r.id),
		})
	}
	return out, nil
}

func (s *SQLiteReader) Procedures(ctx context.Context, catalog, schema, namePattern string) ([]ProcedureRow, error) {
	return nil, nil
}

func (s *SQLiteReader) ProcedureColumns(ctx context.Context, catalog, schema, procedure, specificName string) ([]ProcedureColumnRow, error) {
	return nil, nil
}
