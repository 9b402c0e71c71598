package dbmeta

import "strings"

// JDBC type codes (java.sql.Types). Drivers of every engine are normalized
// to these codes so the type mapper sees one vocabulary.
const (
	TypeBit                   = -7
	TypeTinyInt               = -6
	TypeSmallInt              = 5
	TypeInteger               = 4
	TypeBigInt                = -5
	TypeFloat                 = 6
	TypeReal                  = 7
	TypeDouble                = 8
	TypeNumeric               = 2
	TypeDecimal               = 3
	TypeChar                  = 1
	TypeVarchar               = 12
	TypeLongVarchar           = -1
	TypeDate                  = 91
	TypeTime                  = 92
	TypeTimestamp             = 93
	TypeBinary                = -2
	TypeVarbinary             = -3
	TypeLongVarbinary         = -4
	TypeNull                  = 0
	TypeOther                 = 1111
	TypeJavaObject            = 2000
	TypeDistinct              = 2001
	TypeStruct                = 2002
	TypeArray                 = 2003
	TypeBlob                  = 2004
	TypeClob                  = 2005
	TypeRef                   = 2006
	TypeBoolean               = 16
	TypeRowID                 = -8
	TypeNChar                 = -15
	TypeNVarchar              = -9
	TypeLongNVarchar          = -16
	TypeNClob                 = 2011
	TypeSQLXML                = 2009
	TypeRefCursor             = 2012
	TypeTimeWithTimezone      = 2013
	TypeTimestampWithTimezone = 2014
	// TypeOracleCursor is the Oracle driver's own cursor code.
	TypeOracleCursor = -10
)

var typeNames = map[int]string{
	TypeBit: "BIT", TypeTinyInt: "TINYINT", TypeSmallInt: "SMALLINT", TypeInteger: "INTEGER",
	TypeBigInt: "BIGINT", TypeFloat: "FLOAT", TypeReal: "REAL", TypeDouble: "DOUBLE",
	TypeNumeric: "NUMERIC", TypeDecimal: "DECIMAL", TypeChar: "CHAR", TypeVarchar: "VARCHAR",
	TypeLongVarchar: "LONGVARCHAR", TypeDate: "DATE", TypeTime: "TIME", TypeTimestamp: "TIMESTAMP",
	TypeBinary: "BINARY", TypeVarbinary: "VARBINARY", TypeLongVarbinary: "LONGVARBINARY",
	TypeNull: "NULL", TypeOther: "OTHER", TypeJavaObject: "JAVA_OBJECT", TypeDistinct: "DISTINCT",
	TypeStruct: "STRUCT", TypeArray: "ARRAY", TypeBlob: "BLOB", TypeClob: "CLOB", TypeRef: "REF",
	TypeBoolean: "BOOLEAN", TypeRowID: "ROWID", TypeNChar: "NCHAR", TypeNVarchar: "NVARCHAR",
	TypeLongNVarchar: "LONGNVARCHAR", TypeNClob: "NCLOB", TypeSQLXML: "SQLXML",
	TypeRefCursor: "REF_CURSOR", TypeTimeWithTimezone: "TIME_WITH_TIMEZONE",
	TypeTimestampWithTimezone: "TIMESTAMP_WITH_TIMEZONE", TypeOracleCursor: "CURSOR",
}

// TypeName returns the JDBC name of a type code, "OTHER" when unknown.
func TypeName(code int) string {
	if n, ok := typeNames[code]; ok {
		return n
	}
	return "OTHER"
}

// TypeCode returns the code of a JDBC type name.
func TypeCode(name string) (int, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for code, tn := range typeNames {
		if tn == n {
			return code, true
		}
	}
	return 0, false
}

// typeCodeByDBName maps native type names to JDBC codes, as drivers do.
var typeCodeByDBName = map[string]int{
	// common
	"char": TypeChar, "character": TypeChar, "varchar": TypeVarchar, "character varying": TypeVarchar,
	"nchar": TypeNChar, "nvarchar": TypeNVarchar, "text": TypeVarchar, "ntext": TypeLongNVarchar,
	"clob": TypeClob, "nclob": TypeNClob, "blob": TypeBlob,
	"smallint": TypeSmallInt, "tinyint": TypeTinyInt, "int": TypeInteger, "integer": TypeInteger,
	"mediumint": TypeInteger, "bigint": TypeBigInt, "numeric": TypeNumeric, "decimal": TypeDecimal,
	"real": TypeReal, "float": TypeFloat, "double": TypeDouble, "double precision": TypeDouble,
	"date": TypeDate, "time": TypeTime, "timestamp": TypeTimestamp, "datetime": TypeTimestamp,
	"datetime2": TypeTimestamp, "smalldatetime": TypeTimestamp, "boolean": TypeBoolean, "bool": TypeBoolean,
	"bit": TypeBit, "binary": TypeBinary, "varbinary": TypeVarbinary, "image": TypeLongVarbinary,
	"xml": TypeSQLXML, "array": TypeArray,
	// postgresql
	"int2": TypeSmallInt, "int4": TypeInteger, "int8": TypeBigInt, "serial": TypeInteger,
	"bigserial": TypeBigInt, "float4": TypeReal, "float8": TypeDouble, "bpchar": TypeChar,
	"bytea": TypeBinary, "timestamptz": TypeTimestamp, "timestamp without time zone": TypeTimestamp,
	"timestamp with time zone": TypeTimestamp, "time without time zone": TypeTime,
	"time with time zone": TypeTime, "timetz": TypeTime, "uuid": TypeOther, "json": TypeOther,
	"jsonb": TypeOther, "interval": TypeOther, "oid": TypeBigInt, "refcursor": TypeOther,
	"money": TypeDouble,
	// mysql
	"longtext": TypeLongVarchar, "mediumtext": TypeLongVarchar, "tinytext": TypeVarchar,
	"longblob": TypeLongVarbinary, "mediumblob": TypeLongVarbinary, "tinyblob": TypeBinary,
	"year": TypeDate, "enum": TypeChar, "set": TypeChar,
	// sqlserver
	"uniqueidentifier": TypeChar, "smallmoney": TypeDecimal,
	"datetimeoffset": TypeTimestampWithTimezone, "sql_variant": TypeOther,
	// oracle
	"varchar2": TypeVarchar, "nvarchar2": TypeNVarchar, "number": TypeNumeric,
	"binary_float": TypeReal, "binary_double": TypeDouble, "long": TypeLongVarchar,
	"raw": TypeVarbinary, "long raw": TypeLongVarbinary, "rowid": TypeRowID, "urowid": TypeRowID,
	"ref cursor": TypeOracleCursor, "table": TypeArray, "varray": TypeArray, "pl/sql table": TypeArray,
	"object": TypeStruct, "pl/sql record": TypeStruct, "pl/sql boolean": TypeBoolean,
	"binary_integer": TypeInteger, "pls_integer": TypeInteger, "undefined": TypeOther,
}

// JDBCTypeOf maps a native type name to its JDBC code the way each engine's
// driver would. Precision suffixes ("VARCHAR2(20)", "TIMESTAMP(6)") are ignored.
func JDBCTypeOf(e Engine, dbTypeName string) int {
	n := strings.ToLower(strings.TrimSpace(dbTypeName))
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}
	if e == MySQL && strings.HasSuffix(n, " unsigned") {
		n = strings.TrimSuffix(n, " unsigned")
	}
	if e == PostgreSQL && strings.HasPrefix(n, "_") {
		return TypeArray
	}
	if e == Oracle && n == "date" {
		// DATE has a time part on Oracle.
		return TypeTimestamp
	}
	if code, ok := typeCodeByDBName[n]; ok {
		return code
	}
	return TypeOther
}
