package dbmeta

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/sijms/go-ora/v2/network"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	found := Classify(PostgreSQL, []TableRow{{Name: "EMP"}}, nil)
	assert.Equal(t, LookupFound, found.State)
	assert.Len(t, found.Rows, 1)

	empty := Classify[TableRow](PostgreSQL, nil, nil)
	assert.Equal(t, LookupNotFound, empty.State)
	assert.NoError(t, empty.Err)

	failed := Classify[TableRow](PostgreSQL, nil, errors.New("connection reset"))
	assert.Equal(t, LookupFailed, failed.State)
	assert.Error(t, failed.Err)
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name   string
		engine Engine
		err    error
		want   bool
	}{
		{"nil", PostgreSQL, nil, false},
		{"sentinel", DB2, fmt.Errorf("reading: %w", ErrNotFound), true},
		{"pg undefined table", PostgreSQL, &pgconn.PgError{Code: "42P01"}, true},
		{"pg invalid schema", PostgreSQL, fmt.Errorf("q: %w", &pgconn.PgError{Code: "3F000"}), true},
		{"pg syntax error", PostgreSQL, &pgconn.PgError{Code: "42601"}, false},
		{"mysql no such table", MySQL, &mysql.MySQLError{Number: 1146}, true},
		{"mysql access denied", MySQL, &mysql.MySQLError{Number: 1045}, false},
		{"oracle 942", Oracle, &network.OracleError{ErrCode: 942}, true},
		{"oracle 1017", Oracle, &network.OracleError{ErrCode: 1017}, false},
		{"sqlserver 208", SQLServer, mssql.Error{Number: 208}, true},
		{"sqlite message", SQLite, errors.New("SQL logic error: no such table: emp (1)"), true},
		{"h2 message", H2, errors.New(`Table "EMP" not found`), true},
		{"postgres message is not enough", PostgreSQL, errors.New("relation does not exist"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsNotFound(tc.engine, tc.err))
		})
	}
}

func TestLookupStateString(t *testing.T) {
	assert.Equal(t, "found", LookupFound.String())
	assert.Equal(t, "not-found", LookupNotFound.String())
	assert.Equal(t, "failed", LookupFailed.String())
}
