package dbmeta

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T, ddl ...string) *SQLiteReader {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return NewSQLite(db, "memory")
}

func TestSQLiteReader(t *testing.T) {
	r := openSQLite(t,
		`CREATE TABLE dept (dept_id INTEGER PRIMARY KEY, dept_code VARCHAR(10) NOT NULL UNIQUE)`,
		`CREATE TABLE emp (
			emp_id INTEGER NOT NULL,
			branch INTEGER NOT NULL,
			salary DECIMAL(10,2) DEFAULT 0,
			dept_id INTEGER REFERENCES dept,
			PRIMARY KEY (emp_id, branch)
		)`,
		`CREATE INDEX ix_emp_salary ON emp (salary)`,
		`CREATE VIEW emp_view AS SELECT emp_id FROM emp`,
	)
	ctx := context.Background()

	tables, err := r.Tables(ctx, "", "", []string{"TABLE"})
	require.NoError(t, err)
	var names []string
	for _, tb := range tables {
		names = append(names, tb.Name)
	}
	assert.Equal(t, []string{"dept", "emp"}, names)

	cols, err := r.Columns(ctx, "", "", "emp")
	require.NoError(t, err)
	require.Len(t, cols, 4)
	salary := cols[2]
	assert.Equal(t, "DECIMAL", salary.TypeName)
	assert.Equal(t, TypeDecimal, salary.DataType)
	assert.Equal(t, 10, *salary.ColumnSize)
	assert.Equal(t, 2, *salary.DecimalDigits)
	assert.Equal(t, "0", *salary.Default)
	assert.False(t, cols[0].Nullable)

	pks, err := r.PrimaryKeys(ctx, "", "", "emp")
	require.NoError(t, err)
	require.Len(t, pks, 2)
	assert.Equal(t, "emp_id", pks[0].ColumnName)
	assert.Equal(t, "1", pks[0].KeySeq)
	assert.Equal(t, "branch", pks[1].ColumnName)

	uniques, err := r.IndexInfo(ctx, "", "", "dept", true)
	require.NoError(t, err)
	require.NotEmpty(t, uniques)
	assert.Equal(t, "dept_code", uniques[0].ColumnName)
	assert.Equal(t, "1", uniques[0].OrdinalPosition)

	all, err := r.IndexInfo(ctx, "", "", "emp", false)
	require.NoError(t, err)
	var found bool
	for _, ix := range all {
		if ix.IndexName == "ix_emp_salary" {
			found = true
			assert.True(t, ix.NonUnique)
		}
	}
	assert.True(t, found)

	fks, err := r.ImportedKeys(ctx, "", "", "emp")
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.Equal(t, "dept", fks[0].PKTable)
	assert.Equal(t, "dept_id", fks[0].PKColumn)
	assert.Equal(t, "dept_id", fks[0].FKColumn)
	assert.Equal(t, "FK_EMP_0", fks[0].FKName)

	procs, err := r.Procedures(ctx, "", "", "")
	require.NoError(t, err)
	assert.Empty(t, procs)
}
