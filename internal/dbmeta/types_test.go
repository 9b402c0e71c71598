package dbmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJDBCTypeOf(t *testing.T) {
	cases := []struct {
		engine Engine
		name   string
		want   int
	}{
		{Oracle, "VARCHAR2", TypeVarchar},
		{Oracle, "NUMBER", TypeNumeric},
		{Oracle, "DATE", TypeTimestamp},
		{Oracle, "TIMESTAMP(6)", TypeTimestamp},
		{Oracle, "REF CURSOR", TypeOracleCursor},
		{Oracle, "PL/SQL TABLE", TypeArray},
		{Oracle, "OBJECT", TypeStruct},
		{PostgreSQL, "DATE", TypeDate},
		{PostgreSQL, "_int4", TypeArray},
		{PostgreSQL, "character varying", TypeVarchar},
		{PostgreSQL, "uuid", TypeOther},
		{MySQL, "int unsigned", TypeInteger},
		{MySQL, "DECIMAL(10,2)", TypeDecimal},
		{SQLServer, "uniqueidentifier", TypeChar},
		{SQLite, "something_custom", TypeOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, JDBCTypeOf(tc.engine, tc.name), "%s %s", tc.engine, tc.name)
	}
}

func TestTypeNameAndCode(t *testing.T) {
	assert.Equal(t, "VARCHAR", TypeName(TypeVarchar))
	assert.Equal(t, "OTHER", TypeName(99999))

	code, ok := TypeCode(" numeric ")
	assert.True(t, ok)
	assert.Equal(t, TypeNumeric, code)

	_, ok = TypeCode("NOPE")
	assert.False(t, ok)
}
