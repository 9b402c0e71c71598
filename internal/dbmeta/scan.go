package dbmeta

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func atoiPtr(s sql.NullString) *int {
	if !s.Valid {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s.String))
	if err != nil {
		return nil
	}
	return &v
}

func firstInt(vals ...*int) *int {
	for _, v := range vals {
		if v != nil && *v > 0 {
			return v
		}
	}
	return nil
}

// rebind rewrites ? placeholders into the engine's native form.
func rebind(e Engine, query string) string {
	var prefix string
	switch e {
	case PostgreSQL, H2:
		prefix = "$"
	case SQLServer:
		prefix = "@p"
	case Oracle:
		prefix = ":"
	default:
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(prefix)
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// queryRows runs query and scans every row with scan.
func queryRows[T any](ctx context.Context, db *sql.DB, query string, args []any, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// matchTypes reports whether a table type is in the requested list; an empty
// list accepts every type.
func matchTypes(tableType string, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if strings.EqualFold(t, tableType) {
			return true
		}
	}
	return false
}

// normalizeTableType maps information_schema table types to JDBC ones.
func normalizeTableType(t string) string {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case "BASE TABLE", "TABLE":
		return "TABLE"
	case "VIEW":
		return "VIEW"
	case "SYNONYM":
		return "SYNONYM"
	case "SYSTEM VIEW":
		return "SYSTEM VIEW"
	case "LOCAL TEMPORARY", "GLOBAL TEMPORARY":
		return "LOCAL TEMPORARY"
	}
	return strings.ToUpper(t)
}

// parseTypeSize splits "DECIMAL(10,2)" into its size and decimal digits.
func parseTypeSize(typeName string) (base string, size, digits *int) {
	open := strings.IndexByte(typeName, '(')
	if open < 0 {
		return strings.TrimSpace(typeName), nil, nil
	}
	base = strings.TrimSpace(typeName[:open])
	inner := typeName[open+1:]
	if end := strings.IndexByte(inner, ')'); end >= 0 {
		inner = inner[:end]
	}
	parts := strings.SplitN(inner, ",", 2)
	if v, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
		size = &v
	}
	if len(parts) == 2 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			digits = &v
		}
	}
	return base, size, digits
}
