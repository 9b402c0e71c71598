package pmbean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
	"github.com/dbflute/dbflute-core-sub011/internal/typemap"
)

func intp(v int) *int { return &v }

func newBuilder(t *testing.T, e dbmeta.Engine) *Builder {
	t.Helper()
	m, err := typemap.New(e, config.TypeMappingConfig{})
	require.NoError(t, err)
	return New(m, nil)
}

func TestNaming(t *testing.T) {
	tests := []struct {
		in, class, property string
	}{
		{"SP_RETURN_RESULT_SET", "SpReturnResultSetPmb", "spReturnResultSet"},
		{"sp_update;1", "SpUpdatePmb", "spUpdate;1"},
		{"EMP_PKG.RAISE", "EmpPkgRaisePmb", "empPkgRaise"},
		{"CALC@FINLINK", "CalcFinlinkPmb", "calcFinlink"},
		{"getUserName", "GetUserNamePmb", "getUserName"},
		{"@RETURN_VALUE", "ReturnValuePmb", "returnValue"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.class, ClassName(tt.in))
			assert.Equal(t, tt.property, PropertyName(tt.in))
		})
	}
	assert.Equal(t, "", PropertyName(""))
}

func TestScalarProperties(t *testing.T) {
	b := newBuilder(t, dbmeta.Oracle)
	p := &schema.ProcedureMeta{
		Schema: schema.NewMainSchema("", "HR"),
		Name:   "RAISE_SALARY",
		Columns: []*schema.ProcedureColumnMeta{
			{Name: "P_EMP_ID", ColumnType: schema.ColumnIn, JDBCType: dbmeta.TypeNumeric, DBTypeName: "NUMBER", Size: intp(5)},
			{Name: "P_NAME", ColumnType: schema.ColumnIn, JDBCType: dbmeta.TypeVarchar, DBTypeName: "VARCHAR2"},
			{Name: "P_HIRED", ColumnType: schema.ColumnOut, JDBCType: dbmeta.TypeTimestamp, DBTypeName: "DATE"},
		},
	}
	res := b.Build([]*schema.ProcedureMeta{p})
	require.Len(t, res.Beans, 1)
	bean := res.Beans[0]
	assert.Equal(t, "RaiseSalaryPmb", bean.ClassName)
	assert.Equal(t, "RAISE_SALARY", bean.SQLName)
	require.Len(t, bean.Properties, 3)

	assert.Equal(t, "pEmpId", bean.Properties[0].Name)
	assert.Equal(t, "decimal.Decimal", bean.Properties[0].ProgramType, "Oracle NUMBER ignores the size")
	assert.Equal(t, typemap.ProgramString, bean.Properties[1].ProgramType)
	assert.Equal(t, "TIMESTAMP", bean.Properties[2].JDBCType)
	assert.Equal(t, typemap.ProgramTime, bean.Properties[2].ProgramType)
	assert.Empty(t, res.Entities)
}

func TestSizedNumericElsewhere(t *testing.T) {
	b := newBuilder(t, dbmeta.PostgreSQL)
	p := &schema.ProcedureMeta{
		Schema: schema.NewMainSchema("shop", "public"),
		Name:   "count_orders",
		Columns: []*schema.ProcedureColumnMeta{
			{Name: "n", ColumnType: schema.ColumnIn, JDBCType: dbmeta.TypeNumeric, DBTypeName: "numeric", Size: intp(5), DecimalDigits: intp(0)},
		},
	}
	res := b.Build([]*schema.ProcedureMeta{p})
	assert.Equal(t, typemap.ProgramInt32, res.Beans[0].Properties[0].ProgramType)
}

func TestCursorParameters(t *testing.T) {
	b := newBuilder(t, dbmeta.PostgreSQL)
	p := &schema.ProcedureMeta{
		Schema: schema.NewMainSchema("shop", "public"),
		Name:   "list_members",
		Columns: []*schema.ProcedureColumnMeta{
			{Name: "cur_known", ColumnType: schema.ColumnOut, JDBCType: dbmeta.TypeOther, DBTypeName: "refcursor",
				ResultSetColumns: []*schema.ColumnMeta{
					{ColumnName: "MEMBER_ID", JDBCType: dbmeta.TypeInteger, DBTypeName: "int4"},
					{ColumnName: "MEMBER_NAME", JDBCType: dbmeta.TypeVarchar, DBTypeName: "varchar", ProgramType: "string"},
				}},
			{Name: "cur_unknown", ColumnType: schema.ColumnOut, JDBCType: dbmeta.TypeOther, DBTypeName: "refcursor"},
		},
	}
	res := b.Build([]*schema.ProcedureMeta{p})
	props := res.Beans[0].Properties

	assert.Equal(t, "ListMembersCurKnown", props[0].Entity)
	assert.Equal(t, "[]*ListMembersCurKnown", props[0].ProgramType)
	assert.Equal(t, "REF_CURSOR", props[0].JDBCType)
	assert.Equal(t, typemap.ProgramMap, props[1].ProgramType)
	assert.Empty(t, props[1].Entity)

	e, ok := res.Entity("ListMembersCurKnown")
	require.True(t, ok)
	assert.Equal(t, EntityResultSet, e.Kind)
	require.Len(t, e.Properties, 2)
	assert.Equal(t, "memberId", e.Properties[0].Name)
	assert.Equal(t, typemap.ProgramInt32, e.Properties[0].ProgramType)
	assert.Equal(t, "string", e.Properties[1].ProgramType)
}

func TestNotParamResults(t *testing.T) {
	b := newBuilder(t, dbmeta.SQLServer)
	p := &schema.ProcedureMeta{
		Schema: schema.NewMainSchema("db", "dbo"),
		Name:   "sp_report;1",
		NotParamResults: []*schema.ProcedureResultMeta{
			{Name: "result1", Columns: []*schema.ColumnMeta{{ColumnName: "total", JDBCType: dbmeta.TypeBigInt, DBTypeName: "bigint"}}},
		},
	}
	res := b.Build([]*schema.ProcedureMeta{p})
	assert.Equal(t, "SpReportPmb", res.Beans[0].ClassName)
	e, ok := res.Entity("SpReportResult1")
	require.True(t, ok)
	assert.Equal(t, typemap.ProgramInt64, e.Properties[0].ProgramType)
}

func TestNestedTypes(t *testing.T) {
	node := &schema.TypeStructInfo{Owner: "HR", TypeName: "TREE_NODE"}
	nodeList := &schema.TypeArrayInfo{Owner: "HR", TypeName: "NODE_LIST", ElementType: "TREE_NODE", ElementStruct: node}
	node.Attributes = []*schema.TypeStructAttr{
		{Name: "LABEL", DBTypeName: "VARCHAR2", JDBCType: dbmeta.TypeVarchar},
		{Name: "WEIGHT", DBTypeName: "NUMBER", JDBCType: dbmeta.TypeNumeric, Size: intp(3)},
		{Name: "CHILDREN", DBTypeName: "NODE_LIST", JDBCType: dbmeta.TypeArray, ArrayInfo: nodeList},
	}
	numList := &schema.TypeArrayInfo{TypeName: "NUM_LIST", ElementType: "NUMBER"}
	matrix := &schema.TypeArrayInfo{TypeName: "MATRIX", ElementType: "NUM_LIST", ElementArray: numList}

	b := newBuilder(t, dbmeta.Oracle)
	procs := []*schema.ProcedureMeta{
		{
			Schema: schema.NewMainSchema("", "HR"), Name: "SAVE_TREE",
			Columns: []*schema.ProcedureColumnMeta{
				{Name: "P_ROOT", ColumnType: schema.ColumnIn, JDBCType: dbmeta.TypeStruct, DBTypeName: "TREE_NODE", StructInfo: node},
				{Name: "P_NODES", ColumnType: schema.ColumnIn, JDBCType: dbmeta.TypeArray, DBTypeName: "NODE_LIST", ArrayInfo: nodeList},
				{Name: "P_MATRIX", ColumnType: schema.ColumnIn, JDBCType: dbmeta.TypeArray, DBTypeName: "MATRIX", ArrayInfo: matrix},
			},
		},
		{
			Schema: schema.NewMainSchema("", "HR"), Name: "LOAD_TREE",
			Columns: []*schema.ProcedureColumnMeta{
				{Name: "P_ROOT", ColumnType: schema.ColumnOut, JDBCType: dbmeta.TypeStruct, DBTypeName: "TREE_NODE", StructInfo: node},
			},
		},
	}
	res := b.Build(procs)

	props := res.Beans[0].Properties
	assert.Equal(t, "*TreeNode", props[0].ProgramType)
	assert.Equal(t, "TreeNode", props[0].Entity)
	assert.Equal(t, "[]*TreeNode", props[1].ProgramType)
	assert.Equal(t, "[][]decimal.Decimal", props[2].ProgramType)
	assert.Equal(t, "*TreeNode", res.Beans[1].Properties[0].ProgramType)

	require.Len(t, res.Entities, 1, "one entity per struct type")
	e := res.Entities[0]
	assert.Equal(t, EntityStruct, e.Kind)
	assert.Equal(t, "HR.TREE_NODE", e.TypeName)
	require.Len(t, e.Properties, 3)
	assert.Equal(t, typemap.ProgramString, e.Properties[0].ProgramType)
	assert.Equal(t, "decimal.Decimal", e.Properties[1].ProgramType)
	assert.Equal(t, "[]*TreeNode", e.Properties[2].ProgramType, "self reference resolved by name")
}

func TestOverloadedBeans(t *testing.T) {
	b := newBuilder(t, dbmeta.Oracle)
	us := schema.NewMainSchema("", "HR")
	res := b.Build([]*schema.ProcedureMeta{
		{Schema: us, Package: "PKG", Name: "FIND"},
		{Schema: schema.NewAdditionalSchema("", "SALES"), Package: "PKG", Name: "FIND"},
		{Schema: us, Name: "OTHER"},
	})
	assert.True(t, res.Beans[0].Overloaded)
	assert.True(t, res.Beans[1].Overloaded)
	assert.False(t, res.Beans[2].Overloaded)
	assert.Equal(t, "SALES.PKG.FIND", res.Beans[1].SQLName)
}

func TestBuildResetsEntities(t *testing.T) {
	b := newBuilder(t, dbmeta.Oracle)
	s := &schema.TypeStructInfo{TypeName: "ADDR_T"}
	p := &schema.ProcedureMeta{
		Schema:  schema.NewMainSchema("", "HR"),
		Name:    "P",
		Columns: []*schema.ProcedureColumnMeta{{Name: "A", JDBCType: dbmeta.TypeStruct, StructInfo: s}},
	}
	first := b.Build([]*schema.ProcedureMeta{p})
	second := b.Build([]*schema.ProcedureMeta{p})
	assert.Len(t, first.Entities, 1)
	assert.Len(t, second.Entities, 1)
}
