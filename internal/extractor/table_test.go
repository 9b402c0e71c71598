package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/notice"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

func tableNames(tables []*schema.TableMeta) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

func TestListTables(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddTables("", "HR",
		dbmeta.TableRow{Name: "EMP", Type: "TABLE", Remarks: "employees"},
		dbmeta.TableRow{Name: "BIN$abc==$0", Type: "TABLE"},
		dbmeta.TableRow{Name: "TMP_LOAD", Type: "TABLE"},
		dbmeta.TableRow{Name: "DEPT", Type: "TABLE"},
		dbmeta.TableRow{Name: "EMP_V", Type: "VIEW"},
		dbmeta.TableRow{Name: "EMP_SYN", Type: "SYNONYM"},
	)
	cfg := oracleConfig()
	cfg.Tables.TableExcepts = []string{"TMP_*"}
	x, p := newExtractor(t, f, cfg)

	tables, err := x.ListTables(context.Background(), p.MainSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"EMP", "DEPT", "EMP_V"}, tableNames(tables))
	assert.Equal(t, "employees", tables[0].Comment)
	assert.True(t, tables[0].Schema.IsMain())
	assert.True(t, tables[2].IsView())
}

func TestListTablesDuplicateNameKeepsFirstSlot(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.PostgreSQL)
	f.AddTables("shop", "public",
		dbmeta.TableRow{Name: "a", Type: "TABLE", Remarks: "first"},
		dbmeta.TableRow{Name: "b", Type: "TABLE"},
		dbmeta.TableRow{Name: "a", Type: "TABLE", Remarks: "second"},
	)
	x, p := newExtractor(t, f, postgresConfig())

	tables, err := x.ListTables(context.Background(), p.MainSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tableNames(tables))
	assert.Equal(t, "second", tables[0].Comment)
	assert.Equal(t, "shop", tables[0].Schema.Catalog, "catalog comes from the configured schema")
}

func TestListTablesEmptyObjectTypes(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	cfg := oracleConfig()
	cfg.Tables.ObjectTypeTargets = []string{}
	x, p := newExtractor(t, f, cfg)

	_, err := x.ListTables(context.Background(), p.MainSchema())
	var ne *notice.Error
	require.True(t, errors.As(err, &ne))
	assert.Zero(t, f.CallCount(dbmeta.OpTables), "fails before querying")
}

func TestListTablesError(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.Fail(dbmeta.OpTables, errors.New("boom"), "", "HR")
	x, p := newExtractor(t, f, oracleConfig())

	_, err := x.ListTables(context.Background(), p.MainSchema())
	assert.ErrorContains(t, err, "boom")
}

func TestTableSetLastWinsAcrossSchemas(t *testing.T) {
	hr := schema.NewMainSchema("", "HR")
	sales := schema.NewAdditionalSchema("", "SALES")
	set := NewTableSet(nil)
	set.Add(
		&schema.TableMeta{Name: "EMP", Type: "TABLE", Schema: hr},
		&schema.TableMeta{Name: "CUSTOMER", Type: "TABLE", Schema: hr},
	)
	set.Add(&schema.TableMeta{Name: "EMP", Type: "VIEW", Schema: sales})

	require.Equal(t, 2, set.Len())
	merged := set.Tables()
	assert.Equal(t, []string{"EMP", "CUSTOMER"}, tableNames(merged))
	assert.True(t, merged[0].Schema.Same(sales))

	t1, ok := set.Lookup(hr, "emp")
	require.True(t, ok, "schema lookup keeps both tables")
	assert.Equal(t, "TABLE", t1.Type)
	_, ok = set.Lookup(sales, "CUSTOMER")
	assert.False(t, ok)

	var none *TableSet
	_, ok = none.Lookup(hr, "EMP")
	assert.False(t, ok)
	assert.True(t, none.isTarget(hr, "EMP"))
}

func TestListTablesAdditionalSchema(t *testing.T) {
	f := dbmeta.NewFake(dbmeta.Oracle)
	f.AddTables("", "SALES",
		dbmeta.TableRow{Name: "ORDERS", Type: "TABLE"},
		dbmeta.TableRow{Name: "ORDER_V", Type: "VIEW"},
		dbmeta.TableRow{Name: "CUSTOMER", Type: "TABLE"},
	)
	cfg := oracleConfig()
	cfg.AdditionalSchemas = []config.AdditionalSchemaConfig{
		{Schema: "SALES", ObjectTypeTargets: []string{"TABLE"}, TableTargets: []string{"ORDER*"}},
	}
	x, p := newExtractor(t, f, cfg)

	tables, err := x.ListTables(context.Background(), p.AdditionalSchemas()[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"ORDERS"}, tableNames(tables))
	assert.True(t, tables[0].Schema.Additional)
}
