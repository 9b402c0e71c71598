package dbmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y = ?"
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", rebind(PostgreSQL, q))
	assert.Equal(t, "SELECT a FROM t WHERE x = @p1 AND y = @p2", rebind(SQLServer, q))
	assert.Equal(t, "SELECT a FROM t WHERE x = :1 AND y = :2", rebind(Oracle, q))
	assert.Equal(t, q, rebind(MySQL, q))
}

func TestParseTypeSize(t *testing.T) {
	base, size, digits := parseTypeSize("DECIMAL(10, 2)")
	assert.Equal(t, "DECIMAL", base)
	if assert.NotNil(t, size) && assert.NotNil(t, digits) {
		assert.Equal(t, 10, *size)
		assert.Equal(t, 2, *digits)
	}

	base, size, digits = parseTypeSize("VARCHAR(20)")
	assert.Equal(t, "VARCHAR", base)
	assert.Equal(t, 20, *size)
	assert.Nil(t, digits)

	base, size, _ = parseTypeSize("TEXT")
	assert.Equal(t, "TEXT", base)
	assert.Nil(t, size)
}

func TestNormalizeTableType(t *testing.T) {
	assert.Equal(t, "TABLE", normalizeTableType("BASE TABLE"))
	assert.Equal(t, "VIEW", normalizeTableType("view"))
	assert.Equal(t, "MATERIALIZED VIEW", normalizeTableType("materialized view"))
}

func TestMatchTypes(t *testing.T) {
	assert.True(t, matchTypes("TABLE", nil))
	assert.True(t, matchTypes("TABLE", []string{"table", "VIEW"}))
	assert.False(t, matchTypes("SYNONYM", []string{"TABLE", "VIEW"}))
}
