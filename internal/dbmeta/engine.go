package dbmeta

import (
	"strings"
)

// Engine is a supported database engine.
type Engine string

const (
	Oracle     Engine = "oracle"
	PostgreSQL Engine = "postgresql"
	MySQL      Engine = "mysql"
	SQLServer  Engine = "sqlserver"
	DB2        Engine = "db2"
	H2         Engine = "h2"
	Derby      Engine = "derby"
	SQLite     Engine = "sqlite"
	Sybase     Engine = "sybase"
	MSAccess   Engine = "msaccess"
	Unknown    Engine = "unknown"
)

// Engines lists every supported engine.
var Engines = []Engine{Oracle, PostgreSQL, MySQL, SQLServer, DB2, H2, Derby, SQLite, Sybase, MSAccess}

var engineAliases = map[string]Engine{
	"postgres": PostgreSQL,
	"pgsql":    PostgreSQL,
	"mssql":    SQLServer,
	"mariadb":  MySQL,
	"sqlite3":  SQLite,
	"access":   MSAccess,
}

// ParseEngine resolves a configured engine name.
func ParseEngine(name string) (Engine, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, e := range Engines {
		if string(e) == n {
			return e, nil
		}
	}
	if e, ok := engineAliases[n]; ok {
		return e, nil
	}
	return Unknown, &UnsupportedEngineError{Name: name}
}

// UnsupportedEngineError is returned when the configured engine is not supported.
type UnsupportedEngineError struct {
	Name string
}

func (e *UnsupportedEngineError) Error() string {
	return "unsupported database type: " + e.Name
}

// rules are the data-like differences between engines.
type rules struct {
	systemTablePrefixes []string
	systemTableNames    []string
	// nullDefaultLiteral: the dictionary reports a missing default as the text "null".
	nullDefaultLiteral bool
	// quoteRetryIndexInfo: index info rejects some unquoted names that other calls accept.
	quoteRetryIndexInfo bool
	// primaryKeyByIndex: no primary key metadata; the unique index "PrimaryKey" is the key.
	primaryKeyByIndex bool
	// packageInCatalog: the procedure catalog column carries the package name.
	packageInCatalog bool
	// noSchema / noCatalog: the engine has no such concept.
	noSchema  bool
	noCatalog bool
	// defaultSchema is the schema a connection lands in when none is configured.
	defaultSchema string
}

var engineRules = map[Engine]rules{
	Oracle: {
		systemTablePrefixes: []string{"BIN$"},
		nullDefaultLiteral:  true,
		quoteRetryIndexInfo: true,
		packageInCatalog:    true,
		noCatalog:           true,
	},
	PostgreSQL: {
		defaultSchema: "public",
	},
	MySQL: {
		noSchema: true,
	},
	SQLServer: {
		systemTableNames: []string{"sysdiagrams", "dtproperties", "sysconstraints", "syssegments"},
		defaultSchema:    "dbo",
	},
	DB2: {},
	H2: {
		defaultSchema: "PUBLIC",
	},
	Derby: {},
	SQLite: {
		systemTablePrefixes: []string{"sqlite_"},
		noSchema:            true,
		noCatalog:           true,
	},
	Sybase: {
		systemTableNames: []string{"sysquerymetrics"},
	},
	MSAccess: {
		systemTablePrefixes: []string{"MSys"},
		primaryKeyByIndex:   true,
		noSchema:            true,
	},
}

func (e Engine) rules() rules {
	return engineRules[e]
}

// IsSystemTable reports whether the table is an engine-internal object that
// is never generated (Oracle recycle bin, SQL Server diagrams, SQLite catalog).
func (e Engine) IsSystemTable(name string) bool {
	r := e.rules()
	for _, p := range r.systemTablePrefixes {
		if len(name) >= len(p) && strings.EqualFold(name[:len(p)], p) {
			return true
		}
	}
	for _, n := range r.systemTableNames {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}

// HasNullDefaultLiteral reports whether the text "null" means no default.
func (e Engine) HasNullDefaultLiteral() bool { return e.rules().nullDefaultLiteral }

// NeedsQuoteRetryForIndexInfo reports whether index info is retried with a quoted name.
func (e Engine) NeedsQuoteRetryForIndexInfo() bool { return e.rules().quoteRetryIndexInfo }

// PrimaryKeyFromIndex reports whether the primary key is found via the unique index "PrimaryKey".
func (e Engine) PrimaryKeyFromIndex() bool { return e.rules().primaryKeyByIndex }

// PackageInCatalog reports whether the procedure catalog holds the package name.
func (e Engine) PackageInCatalog() bool { return e.rules().packageInCatalog }

// HasSchema reports whether the engine has schemas.
func (e Engine) HasSchema() bool { return !e.rules().noSchema }

// HasCatalog reports whether the engine has catalogs.
func (e Engine) HasCatalog() bool { return !e.rules().noCatalog }

// DefaultSchema returns the schema used when none is configured, or "" when
// the engine has no fixed default.
func (e Engine) DefaultSchema() string { return e.rules().defaultSchema }
