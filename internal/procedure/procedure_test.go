package procedure

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/logging"
	"github.com/dbflute/dbflute-core-sub011/internal/notice"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
	"github.com/dbflute/dbflute-core-sub011/internal/target"
	"github.com/dbflute/dbflute-core-sub011/internal/typemap"
)

func intp(v int) *int { return &v }

func oracleConfig() *config.Config {
	return &config.Config{
		Version:   config.CurrentVersion,
		Database:  config.DatabaseConfig{Type: "oracle", Schema: "HR"},
		Procedure: config.ProcedureConfig{Enabled: true, SynonymHandling: config.SynonymNone},
	}
}

func newExtractor(t *testing.T, f *dbmeta.Fake, cfg *config.Config) *Extractor {
	t.Helper()
	p := target.New(f.Engine(), cfg)
	mapper, err := typemap.New(f.Engine(), cfg.TypeMapping)
	require.NoError(t, err)
	return New(f, p, mapper, cfg.Procedure, NewAssistCache(), nil)
}

func names(procs []*schema.ProcedureMeta) []string {
	out := make([]string, len(procs))
	for i, p := range procs {
		out[i] = p.QualifiedName()
	}
	return out
}

func columnNames(p *schema.ProcedureMeta) []string {
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Name
	}
	return out
}

func TestDisabledReadsNothing(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddProcedures("", "HR", dbmeta.ProcedureRow{Name: "P1", Type: 1})
	cfg := oracleConfig()
	cfg.Procedure.Enabled = false
	x := newExtractor(t, f, cfg)

	procs, err := x.AvailableProcedures(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, procs)
	assert.Empty(t, f.Calls())

	procs, err = x.AvailableProcedures(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"HR.P1"}, names(procs))
}

func TestOraclePackageProcedures(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddProcedures("", "HR",
		dbmeta.ProcedureRow{Catalog: "EMP_PKG", Name: "RAISE", Type: 1, Remarks: "raise salary"},
		dbmeta.ProcedureRow{Name: "GET_NAME", Type: 2},
	)
	f.AddProcedureColumns("EMP_PKG", "HR", "RAISE",
		dbmeta.ProcedureColumnRow{ColumnName: "P_ID", ColumnType: 1, DataType: intp(dbmeta.TypeNumeric), TypeName: "NUMBER"},
		dbmeta.ProcedureColumnRow{ColumnName: "P_ID", ColumnType: 1, DataType: intp(dbmeta.TypeNumeric), TypeName: "NUMBER"},
		dbmeta.ProcedureColumnRow{ColumnName: "P_ROWS", ColumnType: 4, TypeName: "TABLE"},
	)
	f.AddProcedureColumns("", "HR", "GET_NAME",
		dbmeta.ProcedureColumnRow{ColumnName: "", ColumnType: 5, DataType: intp(dbmeta.TypeVarchar), TypeName: "VARCHAR2", Length: intp(100)},
		dbmeta.ProcedureColumnRow{ColumnName: "P_ID", ColumnType: 1, DataType: intp(dbmeta.TypeNumeric), TypeName: "NUMBER", Precision: intp(10)},
	)
	x := newExtractor(t, f, oracleConfig())

	procs, err := x.AvailableProcedures(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, []string{"HR.EMP_PKG.RAISE", "HR.GET_NAME"}, names(procs))

	raise := procs[0]
	assert.Equal(t, "EMP_PKG", raise.Package)
	assert.Empty(t, raise.Catalog, "package moved out of the catalog")
	assert.Equal(t, "raise salary", raise.Comment)
	assert.Equal(t, []string{"P_ID", "P_ROWS"}, columnNames(raise), "duplicate rows dropped")
	assert.Equal(t, dbmeta.TypeOther, raise.Columns[1].JDBCType, "missing data type defaults to OTHER")

	get := procs[1]
	assert.Equal(t, schema.ProcedureReturnsResult, get.Type)
	assert.Equal(t, []string{ReturnValueName, "P_ID"}, columnNames(get))
	assert.Equal(t, 100, *get.Columns[0].Size)
	assert.Equal(t, 10, *get.Columns[1].Size)
}

func TestAdditionalSchemaProcedures(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddProcedures("", "HR", dbmeta.ProcedureRow{Name: "P_MAIN", Type: 1})
	f.AddProcedures("", "SALES", dbmeta.ProcedureRow{Name: "P_SALES", Type: 1})
	f.AddProcedures("", "AUDIT", dbmeta.ProcedureRow{Name: "P_AUDIT", Type: 1})
	cfg := oracleConfig()
	cfg.AdditionalSchemas = []config.AdditionalSchemaConfig{
		{Schema: "SALES"},
		{Schema: "AUDIT", SuppressProcedure: true},
	}
	x := newExtractor(t, f, cfg)

	procs, err := x.AvailableProcedures(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"HR.P_MAIN", "SALES.P_SALES"}, names(procs))
	assert.True(t, procs[1].Schema.Additional)
	assert.Equal(t, "SALES.P_SALES", procs[1].SQLName())
	assert.NotContains(t, f.Calls(), "Procedures(|AUDIT)")
}

func TestUnknownProcedureColumnType(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddProcedures("", "HR", dbmeta.ProcedureRow{Name: "P1", Type: 1})
	f.AddProcedureColumns("", "HR", "P1", dbmeta.ProcedureColumnRow{ColumnName: "X", ColumnType: 9})
	x := newExtractor(t, f, oracleConfig())

	_, err := x.AvailableProcedures(context.Background(), false)
	var ne *notice.Error
	require.True(t, errors.As(err, &ne))
	v, _ := ne.Value("Column")
	assert.Equal(t, "X", v)
}

func TestUnknownProcedureType(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddProcedures("", "HR", dbmeta.ProcedureRow{Name: "P1", Type: 7})
	x := newExtractor(t, f, oracleConfig())

	_, err := x.AvailableProcedures(context.Background(), false)
	var ne *notice.Error
	require.True(t, errors.As(err, &ne))
	assert.Zero(t, f.CallCount(dbmeta.OpProcedureColumns))
}

func TestListingErrorPropagates(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.Fail(dbmeta.OpProcedures, errors.New("ORA-01031"), "", "HR")
	x := newExtractor(t, f, oracleConfig())

	_, err := x.AvailableProcedures(context.Background(), false)
	assert.ErrorContains(t, err, "ORA-01031")
}

func TestPostgreSQLRedundantCursorReturn(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.PostgreSQL)
	f.AddProcedures("shop", "public",
		dbmeta.ProcedureRow{Catalog: "shop", Name: "with_out", Type: 2},
		dbmeta.ProcedureRow{Catalog: "shop", Name: "return_only", Type: 2},
	)
	f.AddProcedureColumns("shop", "public", "with_out",
		dbmeta.ProcedureColumnRow{ColumnName: "returnValue", ColumnType: 5, DataType: intp(dbmeta.TypeOther), TypeName: "refcursor"},
		dbmeta.ProcedureColumnRow{ColumnName: "cur", ColumnType: 4, DataType: intp(dbmeta.TypeOther), TypeName: "refcursor"},
		dbmeta.ProcedureColumnRow{ColumnName: "id", ColumnType: 1, DataType: intp(dbmeta.TypeInteger), TypeName: "int4"},
	)
	f.AddProcedureColumns("shop", "public", "return_only",
		dbmeta.ProcedureColumnRow{ColumnName: "returnValue", ColumnType: 5, DataType: intp(dbmeta.TypeOther), TypeName: "refcursor"},
	)
	cfg := &config.Config{
		Database:  config.DatabaseConfig{Type: "postgresql", Catalog: "shop", Schema: "public"},
		Procedure: config.ProcedureConfig{Enabled: true},
	}
	x := newExtractor(t, f, cfg)

	procs, err := x.AvailableProcedures(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, procs, 2)
	assert.Equal(t, []string{"cur", "id"}, columnNames(procs[0]))
	assert.Equal(t, []string{"returnValue"}, columnNames(procs[1]))
}

func TestFiltering(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddProcedures("", "HR",
		dbmeta.ProcedureRow{Name: "SP_KEEP", Type: 1},
		dbmeta.ProcedureRow{Name: "SP_TMP_X", Type: 1},
		dbmeta.ProcedureRow{Name: "OTHER", Type: 1},
		dbmeta.ProcedureRow{Catalog: "SP_PKG", Name: "RUN", Type: 1},
	)
	f.AddDBLinkArguments("REMOTE", "", "REMOTE_PROC",
		dbmeta.ArgumentRow{ArgumentName: "P_ID", Position: 1, InOut: "IN", DataType: "NUMBER"},
	)
	cfg := oracleConfig()
	cfg.Procedure.NameTargets = []string{"SP_*"}
	cfg.Procedure.NameExcepts = []string{"*TMP*"}
	cfg.Procedure.DBLinks = []config.DBLinkProcedureConfig{{Procedure: "REMOTE_PROC", DBLink: "REMOTE"}}
	x := newExtractor(t, f, cfg)

	procs, err := x.AvailableProcedures(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"HR.SP_KEEP", "HR.SP_PKG.RUN", "HR.REMOTE_PROC@REMOTE"}, names(procs),
		"package hits by full name, DB link procedures are never filtered")
}

func TestSchemaTargets(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddProcedures("", "HR", dbmeta.ProcedureRow{Name: "P_MAIN", Type: 1})
	f.AddProcedures("", "SALES", dbmeta.ProcedureRow{Name: "P_SALES", Type: 1})
	cfg := oracleConfig()
	cfg.AdditionalSchemas = []config.AdditionalSchemaConfig{{Schema: "SALES"}}
	cfg.Procedure.SchemaTargets = []string{"sales"}
	x := newExtractor(t, f, cfg)

	procs, err := x.AvailableProcedures(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"SALES.P_SALES"}, names(procs))
}

func TestArbitrationPrefersMainSchema(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.SQLServer)
	f.AddProcedures("db1", "dbo", dbmeta.ProcedureRow{Catalog: "db1", Name: "sp_x;1", Type: 1, Remarks: "main"})
	f.AddProcedures("db2", "dbo", dbmeta.ProcedureRow{Catalog: "db2", Name: "sp_x;1", Type: 1, Remarks: "additional"})
	cfg := &config.Config{
		Database:          config.DatabaseConfig{Type: "sqlserver", Catalog: "db1", Schema: "dbo"},
		AdditionalSchemas: []config.AdditionalSchemaConfig{{Catalog: "db2", Schema: "dbo"}},
		Procedure:         config.ProcedureConfig{Enabled: true},
	}
	x := newExtractor(t, f, cfg)

	procs, err := x.AvailableProcedures(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, procs, 1)
	assert.Equal(t, "main", procs[0].Comment)

	main := &schema.ProcedureMeta{Schema: schema.NewMainSchema("db1", "dbo"), Name: "sp_y"}
	extra := &schema.ProcedureMeta{Schema: schema.NewAdditionalSchema("db2", "dbo"), Name: "sp_y"}
	for _, order := range [][]*schema.ProcedureMeta{{main, extra}, {extra, main}} {
		got := x.arbitrate(order)
		require.Len(t, got, 1)
		assert.Same(t, main, got[0])
	}
}

func TestArbitrationKeepsFirstWithoutMain(t *testing.T) {
	x := newExtractor(t, dbmeta.NewFake(dbmeta.SQLServer), &config.Config{
		Database: config.DatabaseConfig{Type: "sqlserver", Catalog: "db1", Schema: "dbo"},
	})
	a := &schema.ProcedureMeta{Schema: schema.NewAdditionalSchema("db2", "sales"), Name: "p"}
	b := &schema.ProcedureMeta{Schema: schema.NewAdditionalSchema("db3", "sales"), Name: "p"}
	c := &schema.ProcedureMeta{Schema: schema.NewAdditionalSchema("db3", "sales"), Name: "q"}

	got := x.arbitrate([]*schema.ProcedureMeta{a, c, b})
	require.Len(t, got, 2)
	assert.Same(t, a, got[0])
	assert.Same(t, c, got[1])
}

func TestArbitrationReason(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		Database:  config.DatabaseConfig{Type: "sqlserver", Catalog: "db1", Schema: "dbo"},
		Procedure: config.ProcedureConfig{Enabled: true},
	}
	f := dbmeta.NewFake(dbmeta.SQLServer)
	x := New(f, target.New(f.Engine(), cfg), nil, cfg.Procedure, NewAssistCache(), logging.New(&buf, "info"))

	first := &schema.ProcedureMeta{Schema: schema.NewMainSchema("db1", "dbo"), Name: "p"}
	second := &schema.ProcedureMeta{Schema: schema.NewMainSchema("db1", "dbo"), Name: "p"}
	got := x.arbitrate([]*schema.ProcedureMeta{first, second})
	require.Len(t, got, 1)
	assert.Same(t, first, got[0])
	assert.Contains(t, buf.String(), `reason="first one"`)
	assert.NotContains(t, buf.String(), "main schema")

	buf.Reset()
	extra := &schema.ProcedureMeta{Schema: schema.NewAdditionalSchema("db2", "dbo"), Name: "p"}
	got = x.arbitrate([]*schema.ProcedureMeta{first, extra})
	require.Len(t, got, 1)
	assert.Same(t, first, got[0])
	assert.Contains(t, buf.String(), `reason="main schema"`)
}

func TestPostgreSQLOverloadsStayApart(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.PostgreSQL)
	f.AddProcedures("shop", "public",
		dbmeta.ProcedureRow{Catalog: "shop", Schema: "public", Name: "calc", Type: 2, SpecificName: "calc_16401"},
		dbmeta.ProcedureRow{Catalog: "shop", Schema: "public", Name: "calc", Type: 2, SpecificName: "calc_16402"},
	)
	f.AddOverloadColumns("shop", "public", "calc", "calc_16401",
		dbmeta.ProcedureColumnRow{ColumnName: "returnValue", ColumnType: 5, DataType: intp(dbmeta.TypeInteger), TypeName: "int4"},
		dbmeta.ProcedureColumnRow{ColumnName: "n", ColumnType: 1, DataType: intp(dbmeta.TypeInteger), TypeName: "int4"},
	)
	f.AddOverloadColumns("shop", "public", "calc", "calc_16402",
		dbmeta.ProcedureColumnRow{ColumnName: "returnValue", ColumnType: 5, DataType: intp(dbmeta.TypeNumeric), TypeName: "numeric"},
		dbmeta.ProcedureColumnRow{ColumnName: "a", ColumnType: 1, DataType: intp(dbmeta.TypeNumeric), TypeName: "numeric"},
		dbmeta.ProcedureColumnRow{ColumnName: "b", ColumnType: 1, DataType: intp(dbmeta.TypeNumeric), TypeName: "numeric"},
	)
	cfg := &config.Config{
		Database:  config.DatabaseConfig{Type: "postgresql", Catalog: "shop", Schema: "public"},
		Procedure: config.ProcedureConfig{Enabled: true},
	}
	x := newExtractor(t, f, cfg)

	procs, err := x.AvailableProcedures(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, procs, 2)
	assert.Equal(t, "calc_16401", procs[0].SpecificName)
	assert.Equal(t, []string{"returnValue", "n"}, columnNames(procs[0]))
	assert.Equal(t, "calc_16402", procs[1].SpecificName)
	assert.Equal(t, []string{"returnValue", "a", "b"}, columnNames(procs[1]))

	require.NotNil(t, procs[0].Source)
	require.NotNil(t, procs[1].Source)
	assert.NotEqual(t, procs[0].Source.ParameterHash, procs[1].Source.ParameterHash)
}
