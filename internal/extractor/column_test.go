package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/target"
	"github.com/dbflute/dbflute-core-sub011/internal/typemap"
)

func strp(s string) *string { return &s }

func TestNormalizeDefault(t *testing.T) {
	tests := []struct {
		name   string
		engine dbmeta.Engine
		in     *string
		want   *string
	}{
		{"quoted in parens", dbmeta.SQLServer, strp("('test')"), strp("test")},
		{"quoted", dbmeta.PostgreSQL, strp("'test'"), strp("test")},
		{"number in parens", dbmeta.SQLServer, strp("(123)"), strp("123")},
		{"oracle null", dbmeta.Oracle, strp("null"), nil},
		{"oracle NULL with spaces", dbmeta.Oracle, strp("  NULL "), nil},
		{"null elsewhere is text", dbmeta.PostgreSQL, strp("null"), strp("null")},
		{"plain", dbmeta.MySQL, strp("0"), strp("0")},
		{"trimmed", dbmeta.Oracle, strp(" SYSDATE\n"), strp("SYSDATE")},
		{"one layer only", dbmeta.SQLServer, strp("(('test'))"), strp("('test')")},
		{"unbalanced", dbmeta.SQLServer, strp("('test'"), strp("('test'")},
		{"single quote char", dbmeta.PostgreSQL, strp("'"), strp("'")},
		{"absent", dbmeta.PostgreSQL, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDefault(tt.engine, tt.in))
		})
	}
}

func TestListColumns(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddColumns("", "HR", "EMP",
		dbmeta.ColumnRow{ColumnName: "ID", DataType: dbmeta.TypeNumeric, TypeName: "NUMBER", ColumnSize: intp(10), DecimalDigits: intp(0)},
		dbmeta.ColumnRow{ColumnName: "NAME", DataType: dbmeta.TypeVarchar, TypeName: "VARCHAR2", ColumnSize: intp(50), Nullable: true, Remarks: "full name"},
		dbmeta.ColumnRow{ColumnName: "SALARY", DataType: dbmeta.TypeNumeric, TypeName: "NUMBER"},
		dbmeta.ColumnRow{ColumnName: "HIRED", DataType: dbmeta.TypeTimestamp, TypeName: "DATE", Default: strp("null")},
		dbmeta.ColumnRow{ColumnName: "name", DataType: dbmeta.TypeVarchar, TypeName: "VARCHAR2"},
	)
	cfg := oracleConfig()
	cfg.Tables.ColumnExcepts = map[string][]string{"EMP": {"SALARY"}}
	x, p := newExtractor(t, f, cfg)

	cols, err := x.ListColumns(context.Background(), p.MainSchema(), "EMP")
	require.NoError(t, err)
	require.Len(t, cols, 3, "SALARY excepted, duplicate name dropped")

	assert.Equal(t, "ID", cols[0].ColumnName)
	assert.True(t, cols[0].Required)
	assert.True(t, cols[0].HasSize())
	assert.False(t, cols[0].HasDecimalDigits())

	assert.Equal(t, "NAME", cols[1].ColumnName)
	assert.False(t, cols[1].Required)
	assert.Equal(t, "full name", cols[1].Comment)
	assert.Equal(t, dbmeta.TypeVarchar, cols[1].JDBCType)

	assert.Nil(t, cols[2].DefaultValue)
	assert.Empty(t, cols[2].ProgramType, "no mapper configured")
}

func TestListColumnsWithMapper(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddColumns("", "HR", "EMP",
		dbmeta.ColumnRow{ColumnName: "ID", DataType: dbmeta.TypeNumeric, TypeName: "NUMBER", ColumnSize: intp(10), DecimalDigits: intp(0)},
		dbmeta.ColumnRow{ColumnName: "HIRED", DataType: dbmeta.TypeDate, TypeName: "DATE"},
	)
	cfg := oracleConfig()
	p := target.New(dbmeta.Oracle, cfg)
	mapper, err := typemap.New(dbmeta.Oracle, config.TypeMappingConfig{})
	require.NoError(t, err)
	x := New(f, p, mapper, nil, nil)

	cols, err := x.ListColumns(context.Background(), p.MainSchema(), "EMP")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "NUMERIC", cols[0].JDBCTypeName)
	assert.Equal(t, typemap.ProgramInt64, cols[0].ProgramType)
	assert.Equal(t, "TIMESTAMP", cols[1].JDBCTypeName)
	assert.Equal(t, typemap.ProgramTime, cols[1].ProgramType)
}
