package procedure

import (
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// typeResolver expands Oracle collection and object types into nested type
// info. Each type name is expanded once; a type met again while it is being
// expanded is cut to its name, so self-referencing types terminate.
type typeResolver struct {
	info       *AssistInfo
	arrayDone  map[string]*schema.TypeArrayInfo
	structDone map[string]*schema.TypeStructInfo
	visiting   map[string]bool
}

func newTypeResolver(info *AssistInfo) *typeResolver {
	return &typeResolver{
		info:       info,
		arrayDone:  map[string]*schema.TypeArrayInfo{},
		structDone: map[string]*schema.TypeStructInfo{},
		visiting:   map[string]bool{},
	}
}

// typeKey is the lookup key of a type name: upper case, without owner and quotes.
func typeKey(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.LastIndexByte(n, '.'); i >= 0 {
		n = n[i+1:]
	}
	return strings.Trim(n, `"`)
}

func (r *typeResolver) resolveColumn(c *schema.ProcedureColumnMeta) {
	if c.DBTypeName == "" {
		return
	}
	if a := r.array(c.DBTypeName); a != nil {
		c.ArrayInfo = a
		c.JDBCType = dbmeta.TypeArray
		return
	}
	if s := r.structInfo(c.DBTypeName); s != nil {
		c.StructInfo = s
		c.JDBCType = dbmeta.TypeStruct
	}
}

func (r *typeResolver) array(name string) *schema.TypeArrayInfo {
	k := typeKey(name)
	if a, ok := r.arrayDone[k]; ok {
		return a
	}
	row, ok := r.info.arrays[k]
	if !ok {
		return nil
	}
	a := &schema.TypeArrayInfo{Owner: row.Owner, TypeName: row.TypeName, ElementType: row.ElemTypeName}
	if r.visiting["A:"+k] {
		return a
	}
	r.visiting["A:"+k] = true
	defer delete(r.visiting, "A:"+k)

	if nested := r.array(row.ElemTypeName); nested != nil {
		a.ElementArray = nested
	} else {
		a.ElementStruct = r.structInfo(row.ElemTypeName)
	}
	r.arrayDone[k] = a
	return a
}

func (r *typeResolver) structInfo(name string) *schema.TypeStructInfo {
	k := typeKey(name)
	if s, ok := r.structDone[k]; ok {
		return s
	}
	attrs, ok := r.info.structs[k]
	if !ok {
		return nil
	}
	s := &schema.TypeStructInfo{Owner: attrs[0].Owner, TypeName: attrs[0].TypeName}
	if r.visiting["S:"+k] {
		return s
	}
	r.visiting["S:"+k] = true
	defer delete(r.visiting, "S:"+k)

	for _, at := range attrs {
		attr := &schema.TypeStructAttr{
			Name:          at.AttrName,
			DBTypeName:    at.AttrTypeName,
			JDBCType:      dbmeta.JDBCTypeOf(dbmeta.Oracle, at.AttrTypeName),
			Size:          columnSize(at.Precision, at.Length),
			DecimalDigits: at.Scale,
		}
		if a := r.array(at.AttrTypeName); a != nil {
			attr.ArrayInfo, attr.JDBCType = a, dbmeta.TypeArray
		} else if nested := r.structInfo(at.AttrTypeName); nested != nil {
			attr.StructInfo, attr.JDBCType = nested, dbmeta.TypeStruct
		}
		s.Attributes = append(s.Attributes, attr)
	}
	r.structDone[k] = s
	return s
}
