package target

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/notice"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

func testConfig() *config.Config {
	return &config.Config{
		Version:  config.CurrentVersion,
		Database: config.DatabaseConfig{Type: "oracle", Schema: "HR"},
		Tables: config.TableConfig{
			ObjectTypeTargets: []string{"TABLE", "VIEW"},
			TableExcepts:      []string{"TMP_*"},
			ColumnExcepts:     map[string][]string{"EMP": {"SALARY"}, "*_HIST": {"VERSION_NO"}},
		},
		AdditionalSchemas: []config.AdditionalSchemaConfig{
			{Schema: "SALES", ObjectTypeTargets: []string{"TABLE"}, TableTargets: []string{"ORDER*"}, SuppressProcedure: true},
		},
	}
}

func TestColumnExcept(t *testing.T) {
	cfg := testConfig()
	p := New(dbmeta.Oracle, cfg)
	hr := p.MainSchema()

	assert.True(t, p.IsColumnExcept(hr, "EMP", "SALARY"))
	assert.False(t, p.IsColumnExcept(hr, "EMP", "NAME"))
	assert.True(t, p.IsColumnExcept(hr, "emp", "salary"), "hints ignore case")
	assert.True(t, p.IsColumnExcept(hr, "EMP_HIST", "VERSION_NO"))
	assert.False(t, p.IsColumnExcept(hr, "DEPT", "SALARY"))

	cfg.Tables.SuppressExceptTarget = true
	suppressed := New(dbmeta.Oracle, cfg)
	assert.False(t, suppressed.IsColumnExcept(hr, "EMP", "SALARY"))
	assert.False(t, suppressed.IsColumnExcept(hr, "EMP", "NAME"))
}

func TestColumnExceptIsStableAcrossCallOrder(t *testing.T) {
	p := New(dbmeta.Oracle, testConfig())
	hr := p.MainSchema()
	pairs := [][2]string{{"EMP", "SALARY"}, {"EMP", "NAME"}, {"EMP_HIST", "VERSION_NO"}, {"DEPT", "ID"}}

	first := make([]bool, len(pairs))
	for i, pr := range pairs {
		first[i] = p.IsColumnExcept(hr, pr[0], pr[1])
	}
	for i := len(pairs) - 1; i >= 0; i-- {
		assert.Equal(t, first[i], p.IsColumnExcept(hr, pairs[i][0], pairs[i][1]), pairs[i])
	}
}

func TestTableExcept(t *testing.T) {
	p := New(dbmeta.Oracle, testConfig())
	hr := p.MainSchema()
	sales := p.Resolve("", "SALES")

	assert.True(t, p.IsTableExcept(hr, "TMP_WORK"))
	assert.False(t, p.IsTableExcept(hr, "EMP"))
	assert.False(t, p.IsTableExcept(sales, "ORDERS"))
	assert.True(t, p.IsTableExcept(sales, "CUSTOMER"), "not in the table targets")
	assert.False(t, p.IsTableExcept(schema.NewDynamicSchema("", "REMOTE"), "ANY"))
}

func TestResolve(t *testing.T) {
	p := New(dbmeta.Oracle, testConfig())

	hr := p.Resolve("IGNORED", "hr")
	assert.True(t, hr.IsMain())
	assert.Equal(t, "HR", hr.Schema)
	assert.Empty(t, hr.Catalog, "oracle has no catalog")

	sales := p.Resolve("", "SALES")
	assert.True(t, sales.Additional)

	other := p.Resolve("", "OTHER")
	assert.True(t, other.Dynamic)
	assert.Equal(t, "OTHER", other.Schema)
}

func TestResolveWithoutConfiguredCatalog(t *testing.T) {
	cfg := &config.Config{
		Database:          config.DatabaseConfig{Type: "postgresql", Database: "shop", Schema: "public"},
		AdditionalSchemas: []config.AdditionalSchemaConfig{{Schema: "sales"}},
	}
	p := New(dbmeta.PostgreSQL, cfg)

	us := p.Resolve("shop", "public")
	assert.True(t, us.IsMain())
	assert.Equal(t, p.MainSchema().Key(), us.Key())

	assert.True(t, p.Resolve("shop", "SALES").Additional)
	assert.True(t, p.Resolve("shop", "audit").Dynamic)
}

func TestResolveDefaultSchema(t *testing.T) {
	p := New(dbmeta.PostgreSQL, &config.Config{Database: config.DatabaseConfig{Type: "postgresql", Database: "shop"}})

	us := p.Resolve("shop", "public")
	assert.True(t, us.IsMain())
	assert.Equal(t, p.MainSchema().Key(), us.Key())
	assert.True(t, p.Resolve("shop", "audit").Dynamic)

	ms := New(dbmeta.SQLServer, &config.Config{Database: config.DatabaseConfig{Type: "sqlserver", Catalog: "shop"}})
	assert.True(t, ms.Resolve("shop", "dbo").IsMain())
	assert.True(t, ms.Resolve("other", "dbo").Dynamic, "a different catalog is not the main schema")
}

func TestResolveWithoutSchemas(t *testing.T) {
	p := New(dbmeta.SQLite, &config.Config{Database: config.DatabaseConfig{Type: "sqlite", Schema: "main"}})
	us := p.Resolve("", "")
	assert.True(t, us.IsMain())
	assert.False(t, us.HasSchema())
}

func TestObjectTypeTargets(t *testing.T) {
	cfg := testConfig()
	p := New(dbmeta.Oracle, cfg)

	types, err := p.ObjectTypeTargets(p.MainSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"TABLE", "VIEW"}, types)

	types, err = p.ObjectTypeTargets(p.Resolve("", "SALES"))
	require.NoError(t, err)
	assert.Equal(t, []string{"TABLE"}, types)

	cfg.Tables.ObjectTypeTargets = []string{}
	_, err = New(dbmeta.Oracle, cfg).ObjectTypeTargets(p.MainSchema())
	var ne *notice.Error
	require.True(t, errors.As(err, &ne))
	v, _ := ne.Value("Property")
	assert.Equal(t, "objectTypeTargets", v)
}

func TestSchemas(t *testing.T) {
	cfg := testConfig()
	cfg.AdditionalSchemas = append(cfg.AdditionalSchemas, config.AdditionalSchemaConfig{Schema: "SALES"})
	p := New(dbmeta.Oracle, cfg)

	require.Len(t, p.Schemas(), 2, "duplicate additional schema is ignored")
	require.Len(t, p.AdditionalSchemas(), 1)
	assert.True(t, p.IsProcedureSuppressed(p.AdditionalSchemas()[0]))
	assert.False(t, p.IsProcedureSuppressed(p.MainSchema()))
}
