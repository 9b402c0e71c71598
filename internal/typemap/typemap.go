// Package typemap resolves the JDBC type of a column and the program type
// used for it by generated code.
package typemap

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
)

// Program types of the default native mapping.
const (
	ProgramString  = "string"
	ProgramInt32   = "int32"
	ProgramInt64   = "int64"
	ProgramFloat32 = "float32"
	ProgramFloat64 = "float64"
	ProgramBool    = "bool"
	ProgramTime    = "time.Time"
	ProgramBytes   = "[]byte"
	ProgramUUID    = "uuid.UUID"
	ProgramAny     = "any"
	// ProgramMap is the type of a result set whose columns are not known.
	ProgramMap = "[]map[string]any"
)

// defaultNative maps JDBC type names to program types. Numeric types are
// resolved by size and are absent here.
var defaultNative = map[string]string{
	"CHAR": ProgramString, "VARCHAR": ProgramString, "LONGVARCHAR": ProgramString,
	"NCHAR": ProgramString, "NVARCHAR": ProgramString, "LONGNVARCHAR": ProgramString,
	"CLOB": ProgramString, "NCLOB": ProgramString, "SQLXML": ProgramString,
	"TINYINT": ProgramInt32, "SMALLINT": ProgramInt32, "INTEGER": ProgramInt32,
	"BIGINT": ProgramInt64, "REAL": ProgramFloat32, "FLOAT": ProgramFloat64, "DOUBLE": ProgramFloat64,
	"BIT": ProgramBool, "BOOLEAN": ProgramBool,
	"DATE": ProgramTime, "TIME": ProgramTime, "TIMESTAMP": ProgramTime,
	"TIME_WITH_TIMEZONE": ProgramTime, "TIMESTAMP_WITH_TIMEZONE": ProgramTime,
	"BINARY": ProgramBytes, "VARBINARY": ProgramBytes, "LONGVARBINARY": ProgramBytes, "BLOB": ProgramBytes,
	"ROWID": ProgramString, "OTHER": ProgramAny, "JAVA_OBJECT": ProgramAny, "STRUCT": ProgramAny,
	"ARRAY": "[]any", "REF_CURSOR": ProgramMap, "CURSOR": ProgramMap,
}

type patternRule struct {
	source string
	re     *regexp.Regexp
	jdbc   string
}

// Mapper resolves types for one engine.
type Mapper struct {
	engine      dbmeta.Engine
	nameToType  map[string]string
	patterns    []patternRule
	native      map[string]string
	overrides   map[string]string
	decimalType string
}

// New creates a mapper from the type mapping settings. Patterns are applied
// in sorted order so that the result does not depend on map iteration.
func New(e dbmeta.Engine, cfg config.TypeMappingConfig) (*Mapper, error) {
	m := &Mapper{
		engine:      e,
		nameToType:  map[string]string{},
		native:      make(map[string]string, len(defaultNative)),
		overrides:   map[string]string{},
		decimalType: cfg.DecimalType,
	}
	if m.decimalType == "" {
		m.decimalType = "decimal.Decimal"
	}
	for k, v := range defaultNative {
		m.native[k] = v
	}
	for name, jdbc := range cfg.NameToType {
		m.nameToType[strings.ToLower(strings.TrimSpace(name))] = strings.ToUpper(jdbc)
	}

	sources := make([]string, 0, len(cfg.PatternToType))
	for p := range cfg.PatternToType {
		sources = append(sources, p)
	}
	sort.Strings(sources)
	for _, p := range sources {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compiling type pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, patternRule{source: p, re: re, jdbc: strings.ToUpper(cfg.PatternToType[p])})
	}

	for jdbc, program := range cfg.NativeTypes {
		m.Override(strings.ToUpper(jdbc), program)
	}
	return m, nil
}

// Engine returns the engine of the mapper.
func (m *Mapper) Engine() dbmeta.Engine { return m.engine }

// DecimalType returns the program type of unsized decimals.
func (m *Mapper) DecimalType() string { return m.decimalType }

// JDBCType returns the JDBC type name of a column. The name mapping wins
// over the pattern mapping, which wins over the code the driver reported.
func (m *Mapper) JDBCType(code int, dbTypeName string) string {
	n := strings.ToLower(strings.TrimSpace(dbTypeName))
	if jdbc, ok := m.nameToType[n]; ok {
		return jdbc
	}
	for _, p := range m.patterns {
		if p.re.MatchString(dbTypeName) {
			return p.jdbc
		}
	}
	switch {
	case m.IsConceptTypeOracleCursor(dbTypeName) || code == dbmeta.TypeOracleCursor:
		return "CURSOR"
	case m.IsConceptTypePostgreSQLCursor(dbTypeName):
		return "REF_CURSOR"
	case m.IsConceptTypeOracleDate(dbTypeName):
		return "TIMESTAMP"
	}
	return dbmeta.TypeName(code)
}

// ProgramType returns the program type of a column from its JDBC type name
// and size. Numeric types without decimal digits become integers when they
// fit, anything else becomes the decimal type.
func (m *Mapper) ProgramType(jdbc string, dbTypeName string, size, decimalDigits *int) string {
	jdbc = strings.ToUpper(jdbc)
	if p, ok := m.overrides[jdbc]; ok {
		return p
	}
	if m.IsConceptTypeUUID(dbTypeName) {
		return ProgramUUID
	}
	if jdbc == "NUMERIC" || jdbc == "DECIMAL" {
		return m.numericType(size, decimalDigits)
	}
	if p, ok := m.native[jdbc]; ok {
		return p
	}
	return ProgramAny
}

func (m *Mapper) numericType(size, decimalDigits *int) string {
	if decimalDigits != nil && *decimalDigits > 0 {
		return m.decimalType
	}
	if size == nil || *size <= 0 {
		return m.decimalType
	}
	switch {
	case *size <= 9:
		return ProgramInt32
	case *size <= 18:
		return ProgramInt64
	}
	return m.decimalType
}

// Override sets the program type of a JDBC type. Setting the default value
// again removes the override.
func (m *Mapper) Override(jdbc, program string) {
	if def, ok := defaultNative[jdbc]; ok && def == program {
		delete(m.overrides, jdbc)
		return
	}
	m.overrides[jdbc] = program
}

// IsOverridden reports whether the program type of a JDBC type was configured.
func (m *Mapper) IsOverridden(jdbc string) bool {
	_, ok := m.overrides[strings.ToUpper(jdbc)]
	return ok
}

// SortedOverrides returns the overridden JDBC type names alphabetically.
func (m *Mapper) SortedOverrides() []string {
	names := make([]string, 0, len(m.overrides))
	for k := range m.overrides {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func normalizeName(dbTypeName string) string {
	n := strings.ToLower(strings.TrimSpace(dbTypeName))
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}
	return n
}

func (m *Mapper) is(engines []dbmeta.Engine, dbTypeName string, names ...string) bool {
	if len(engines) > 0 {
		found := false
		for _, e := range engines {
			if e == m.engine {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	n := normalizeName(dbTypeName)
	for _, name := range names {
		if n == name {
			return true
		}
	}
	return false
}

// IsConceptTypeUUID reports a native UUID type.
func (m *Mapper) IsConceptTypeUUID(dbTypeName string) bool {
	return m.is(nil, dbTypeName, "uuid", "uniqueidentifier")
}

// IsConceptTypeStringClob reports a character large object, including the
// unlimited text types of PostgreSQL, MySQL and SQL Server.
func (m *Mapper) IsConceptTypeStringClob(dbTypeName string) bool {
	switch m.engine {
	case dbmeta.PostgreSQL:
		return m.is(nil, dbTypeName, "text")
	case dbmeta.MySQL:
		return m.is(nil, dbTypeName, "text", "mediumtext", "longtext")
	case dbmeta.SQLServer:
		return m.is(nil, dbTypeName, "ntext", "text")
	}
	return m.is(nil, dbTypeName, "clob", "nclob")
}

// IsConceptTypeBytesBlob reports a binary large object.
func (m *Mapper) IsConceptTypeBytesBlob(dbTypeName string) bool {
	return m.is(nil, dbTypeName, "blob", "bytea", "longblob", "mediumblob", "image")
}

// IsConceptTypeFixedLengthString reports a blank-padded character type.
func (m *Mapper) IsConceptTypeFixedLengthString(dbTypeName string) bool {
	return m.is(nil, dbTypeName, "char", "nchar", "bpchar", "character")
}

// IsConceptTypeOracleDate reports Oracle's DATE, which carries a time part.
func (m *Mapper) IsConceptTypeOracleDate(dbTypeName string) bool {
	return m.is([]dbmeta.Engine{dbmeta.Oracle}, dbTypeName, "date")
}

// IsConceptTypeOracleNumber reports Oracle's NUMBER.
func (m *Mapper) IsConceptTypeOracleNumber(dbTypeName string) bool {
	return m.is([]dbmeta.Engine{dbmeta.Oracle}, dbTypeName, "number")
}

// IsConceptTypeOracleCursor reports Oracle's REF CURSOR.
func (m *Mapper) IsConceptTypeOracleCursor(dbTypeName string) bool {
	return m.is([]dbmeta.Engine{dbmeta.Oracle}, dbTypeName, "ref cursor", "sys_refcursor")
}

// IsConceptTypePostgreSQLCursor reports PostgreSQL's refcursor.
func (m *Mapper) IsConceptTypePostgreSQLCursor(dbTypeName string) bool {
	return m.is([]dbmeta.Engine{dbmeta.PostgreSQL}, dbTypeName, "refcursor")
}

// IsConceptTypePostgreSQLOid reports PostgreSQL's large object reference.
func (m *Mapper) IsConceptTypePostgreSQLOid(dbTypeName string) bool {
	return m.is([]dbmeta.Engine{dbmeta.PostgreSQL}, dbTypeName, "oid")
}

// IsConceptTypePostgreSQLInterval reports PostgreSQL's interval.
func (m *Mapper) IsConceptTypePostgreSQLInterval(dbTypeName string) bool {
	return m.is([]dbmeta.Engine{dbmeta.PostgreSQL}, dbTypeName, "interval")
}

// IsConceptTypeSQLServerDateTimeOffset reports SQL Server's datetimeoffset.
func (m *Mapper) IsConceptTypeSQLServerDateTimeOffset(dbTypeName string) bool {
	return m.is([]dbmeta.Engine{dbmeta.SQLServer}, dbTypeName, "datetimeoffset")
}

// IsConceptTypeCursor reports a cursor of any engine, by JDBC code or name.
func (m *Mapper) IsConceptTypeCursor(code int, dbTypeName string) bool {
	return code == dbmeta.TypeOracleCursor || code == dbmeta.TypeRefCursor ||
		m.IsConceptTypeOracleCursor(dbTypeName) || m.IsConceptTypePostgreSQLCursor(dbTypeName)
}
