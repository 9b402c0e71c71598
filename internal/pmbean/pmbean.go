// Package pmbean turns extracted procedures into parameter-bean descriptors:
// one bean per procedure, one property per parameter, plus the synthetic
// entities that cursor and object-type parameters need.
package pmbean

import (
	"log/slog"
	"sort"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/logging"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
	"github.com/dbflute/dbflute-core-sub011/internal/typemap"
)

// Property is one generated property.
type Property struct {
	Name          string                     `yaml:"name"`
	ColumnName    string                     `yaml:"column_name"`
	ColumnType    schema.ProcedureColumnType `yaml:"column_type,omitempty"`
	JDBCType      string                     `yaml:"jdbc_type"`
	DBTypeName    string                     `yaml:"db_type_name,omitempty"`
	ProgramType   string                     `yaml:"program_type"`
	Size          *int                       `yaml:"size,omitempty"`
	DecimalDigits *int                       `yaml:"decimal_digits,omitempty"`
	// Entity names the synthetic entity the property refers to, if any.
	Entity string `yaml:"entity,omitempty"`
}

// Bean is the parameter bean of one procedure.
type Bean struct {
	ClassName     string      `yaml:"class_name"`
	ProcedureName string      `yaml:"procedure_name"`
	SQLName       string      `yaml:"sql_name"`
	Overloaded    bool        `yaml:"overloaded,omitempty"`
	Properties    []*Property `yaml:"properties"`
}

// EntityKind tells what a synthetic entity stands for.
type EntityKind string

const (
	EntityResultSet EntityKind = "result_set"
	EntityStruct    EntityKind = "struct"
)

// Entity is a generated row type: the shape of a cursor or an object type.
type Entity struct {
	Name       string      `yaml:"name"`
	Kind       EntityKind  `yaml:"kind"`
	TypeName   string      `yaml:"type_name,omitempty"`
	Properties []*Property `yaml:"properties"`
}

// Result is the outcome of one setup.
type Result struct {
	Beans    []*Bean   `yaml:"beans"`
	Entities []*Entity `yaml:"entities,omitempty"`
}

// Entity returns the named entity.
func (r *Result) Entity(name string) (*Entity, bool) {
	for _, e := range r.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Builder builds beans with one type mapper. It is not safe for concurrent use.
type Builder struct {
	mapper *typemap.Mapper
	log    *slog.Logger

	entities map[string]*Entity
	order    []string
}

// New creates a builder.
func New(mapper *typemap.Mapper, log *slog.Logger) *Builder {
	if log == nil {
		log = logging.Discard()
	}
	return &Builder{mapper: mapper, log: log}
}

// Build sets up the beans of the procedures in order. Struct entities are
// shared by every parameter referring to the same type.
func (b *Builder) Build(procs []*schema.ProcedureMeta) *Result {
	b.entities = map[string]*Entity{}
	b.order = nil

	res := &Result{}
	classes := map[string]int{}
	for _, p := range procs {
		bean := b.bean(p)
		classes[bean.ClassName]++
		res.Beans = append(res.Beans, bean)
	}
	for _, bean := range res.Beans {
		bean.Overloaded = classes[bean.ClassName] > 1
	}
	for _, name := range b.order {
		res.Entities = append(res.Entities, b.entities[name])
	}
	sort.SliceStable(res.Entities, func(i, j int) bool { return res.Entities[i].Kind < res.Entities[j].Kind })
	return res
}

func (b *Builder) bean(p *schema.ProcedureMeta) *Bean {
	bean := &Bean{
		ClassName:     ClassName(p.FullName()),
		ProcedureName: p.QualifiedName(),
		SQLName:       p.SQLName(),
	}
	base := BaseName(p.FullName())
	for _, c := range p.Columns {
		bean.Properties = append(bean.Properties, b.property(base, c))
	}
	for _, r := range p.NotParamResults {
		b.resultSetEntity(base+Camelize(r.Name), r.Columns)
	}
	return bean
}

func (b *Builder) property(base string, c *schema.ProcedureColumnMeta) *Property {
	prop := &Property{
		Name:          PropertyName(c.Name),
		ColumnName:    c.Name,
		ColumnType:    c.ColumnType,
		JDBCType:      b.mapper.JDBCType(c.JDBCType, c.DBTypeName),
		DBTypeName:    c.DBTypeName,
		Size:          c.Size,
		DecimalDigits: c.DecimalDigits,
	}
	switch {
	case b.mapper.IsConceptTypeCursor(c.JDBCType, c.DBTypeName):
		if len(c.ResultSetColumns) > 0 {
			prop.Entity = b.resultSetEntity(base+Camelize(c.Name), c.ResultSetColumns)
			prop.ProgramType = "[]*" + prop.Entity
		} else {
			prop.ProgramType = typemap.ProgramMap
		}
	case c.ArrayInfo != nil:
		prop.ProgramType, prop.Entity = b.arrayType(c.ArrayInfo)
	case c.StructInfo != nil:
		prop.Entity = b.structEntity(c.StructInfo)
		prop.ProgramType = "*" + prop.Entity
	default:
		prop.ProgramType = b.scalarType(prop.JDBCType, c.DBTypeName, c.Size, c.DecimalDigits)
	}
	return prop
}

// scalarType maps a plain parameter. Oracle reports no precision for
// procedure parameters, so NUMBER is always the decimal type.
func (b *Builder) scalarType(jdbc, dbTypeName string, size, decimalDigits *int) string {
	if b.mapper.IsConceptTypeOracleNumber(dbTypeName) && !b.mapper.IsOverridden(jdbc) {
		return b.mapper.DecimalType()
	}
	return b.mapper.ProgramType(jdbc, dbTypeName, size, decimalDigits)
}

// arrayType resolves the element type of a collection, which may itself be
// a collection or an object type. It returns the program type and the entity
// of the innermost struct element, if any.
func (b *Builder) arrayType(a *schema.TypeArrayInfo) (string, string) {
	switch {
	case a.ElementArray != nil:
		inner, entity := b.arrayType(a.ElementArray)
		return "[]" + inner, entity
	case a.ElementStruct != nil:
		entity := b.structEntity(a.ElementStruct)
		return "[]*" + entity, entity
	}
	code := dbmeta.JDBCTypeOf(b.mapper.Engine(), a.ElementType)
	jdbc := b.mapper.JDBCType(code, a.ElementType)
	return "[]" + b.scalarType(jdbc, a.ElementType, nil, nil), ""
}

// structEntity registers the entity of an object type and returns its name.
// A type is expanded the first time it is seen only, which also ends the
// recursion of self-referencing types.
func (b *Builder) structEntity(s *schema.TypeStructInfo) string {
	name := Camelize(s.TypeName)
	if _, ok := b.entities[name]; ok {
		return name
	}
	e := &Entity{Name: name, Kind: EntityStruct, TypeName: s.QualifiedName()}
	b.register(e)
	for _, at := range s.Attributes {
		prop := &Property{
			Name:          PropertyName(at.Name),
			ColumnName:    at.Name,
			JDBCType:      b.mapper.JDBCType(at.JDBCType, at.DBTypeName),
			DBTypeName:    at.DBTypeName,
			Size:          at.Size,
			DecimalDigits: at.DecimalDigits,
		}
		switch {
		case at.ArrayInfo != nil:
			prop.ProgramType, prop.Entity = b.arrayType(at.ArrayInfo)
		case at.StructInfo != nil:
			prop.Entity = b.structEntity(at.StructInfo)
			prop.ProgramType = "*" + prop.Entity
		default:
			prop.ProgramType = b.scalarType(prop.JDBCType, at.DBTypeName, at.Size, at.DecimalDigits)
		}
		e.Properties = append(e.Properties, prop)
	}
	return name
}

func (b *Builder) resultSetEntity(name string, cols []*schema.ColumnMeta) string {
	if _, ok := b.entities[name]; ok {
		b.log.Debug("result set entity already registered", "entity", name)
		return name
	}
	e := &Entity{Name: name, Kind: EntityResultSet}
	for _, c := range cols {
		jdbc := c.JDBCTypeName
		if jdbc == "" {
			jdbc = b.mapper.JDBCType(c.JDBCType, c.DBTypeName)
		}
		program := c.ProgramType
		if program == "" {
			program = b.mapper.ProgramType(jdbc, c.DBTypeName, c.Size, c.DecimalDigits)
		}
		e.Properties = append(e.Properties, &Property{
			Name:          PropertyName(c.ColumnName),
			ColumnName:    c.ColumnName,
			JDBCType:      jdbc,
			DBTypeName:    c.DBTypeName,
			ProgramType:   program,
			Size:          c.Size,
			DecimalDigits: c.DecimalDigits,
		})
	}
	b.register(e)
	return name
}

func (b *Builder) register(e *Entity) {
	b.entities[e.Name] = e
	b.order = append(b.order, e.Name)
}
