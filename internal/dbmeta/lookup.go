package dbmeta

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/sijms/go-ora/v2/network"
)

// ErrNotFound is returned by readers that detect a missing object themselves.
var ErrNotFound = errors.New("object not found")

// LookupState is the outcome of one metadata query.
type LookupState int

const (
	// LookupFound means the query returned rows.
	LookupFound LookupState = iota
	// LookupNotFound means no rows, or a "no such object" error.
	LookupNotFound
	// LookupFailed means any other error.
	LookupFailed
)

func (s LookupState) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not-found"
	default:
		return "failed"
	}
}

// Lookup is the classified result of one metadata query.
type Lookup[T any] struct {
	Rows  []T
	State LookupState
	Err   error
}

// Classify turns a reader result into a Lookup.
func Classify[T any](e Engine, rows []T, err error) Lookup[T] {
	switch {
	case err != nil && IsNotFound(e, err):
		return Lookup[T]{State: LookupNotFound, Err: err}
	case err != nil:
		return Lookup[T]{State: LookupFailed, Err: err}
	case len(rows) == 0:
		return Lookup[T]{State: LookupNotFound}
	default:
		return Lookup[T]{Rows: rows, State: LookupFound}
	}
}

// IsNotFound reports whether err is the engine's "table (or schema) does not exist" error.
func IsNotFound(e Engine, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// undefined_table, invalid_schema_name
		return pgErr.Code == "42P01" || pgErr.Code == "3F000"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// ER_NO_SUCH_TABLE, ER_BAD_DB_ERROR
		return myErr.Number == 1146 || myErr.Number == 1049
	}
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		// ORA-00942 table or view does not exist, ORA-04043 object does not exist
		return oraErr.ErrCode == 942 || oraErr.ErrCode == 4043
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		// Invalid object name
		return msErr.Number == 208
	}

	msg := strings.ToLower(err.Error())
	switch e {
	case SQLite:
		return strings.Contains(msg, "no such table")
	case H2, Derby, DB2:
		return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
	}
	return false
}
