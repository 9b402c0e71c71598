package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.dfmeta/dfmeta.yaml"
)

// DefaultObjectTypeTargets are the table types listed when none are configured.
var DefaultObjectTypeTargets = []string{"TABLE", "VIEW"}

// Config is the top-level configuration.
type Config struct {
	Version           int                      `yaml:"version"`
	Database          DatabaseConfig           `yaml:"database"`
	Tables            TableConfig              `yaml:"tables,omitempty"`
	AdditionalSchemas []AdditionalSchemaConfig `yaml:"additionalSchemas,omitempty"`
	ForeignKeys       ForeignKeyConfig         `yaml:"foreignKeys,omitempty"`
	Procedure         ProcedureConfig          `yaml:"procedure,omitempty"`
	TypeMapping       TypeMappingConfig        `yaml:"typeMapping,omitempty"`
	Logging           LogConfig                `yaml:"logging,omitempty"`
	Output            OutputConfig             `yaml:"output,omitempty"`
}

// DatabaseConfig defines the data source and its main schema.
type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	SSL      bool   `yaml:"ssl,omitempty"`
	// DSN overrides the connection string built from the fields above.
	DSN     string `yaml:"dsn,omitempty"`
	Catalog string `yaml:"catalog,omitempty"`
	Schema  string `yaml:"schema,omitempty"`
}

// TableConfig holds the table and column hints of the main schema.
type TableConfig struct {
	ObjectTypeTargets    []string            `yaml:"objectTypeTargets,omitempty"`
	TableTargets         []string            `yaml:"tableTargets,omitempty"`
	TableExcepts         []string            `yaml:"tableExcepts,omitempty"`
	ColumnExcepts        map[string][]string `yaml:"columnExcepts,omitempty"`
	SuppressExceptTarget bool                `yaml:"suppressExceptTarget,omitempty"`
}

// AdditionalSchemaConfig is a secondary schema scanned alongside the main one.
type AdditionalSchemaConfig struct {
	Catalog           string              `yaml:"catalog,omitempty"`
	Schema            string              `yaml:"schema"`
	ObjectTypeTargets []string            `yaml:"objectTypeTargets,omitempty"`
	TableTargets      []string            `yaml:"tableTargets,omitempty"`
	TableExcepts      []string            `yaml:"tableExcepts,omitempty"`
	ColumnExcepts     map[string][]string `yaml:"columnExcepts,omitempty"`
	SuppressProcedure bool                `yaml:"suppressProcedure,omitempty"`
}

// ForeignKeyConfig holds user-declared relationships.
type ForeignKeyConfig struct {
	UniqueKeyBased []UniqueKeyFKConfig `yaml:"uniqueKeyBased,omitempty"`
}

// UniqueKeyFKConfig declares a relationship to a unique key that has no
// foreign key constraint behind it.
type UniqueKeyFKConfig struct {
	Name           string   `yaml:"name"`
	Catalog        string   `yaml:"catalog,omitempty"`
	Schema         string   `yaml:"schema,omitempty"`
	LocalTable     string   `yaml:"localTable"`
	LocalColumns   []string `yaml:"localColumns"`
	ForeignCatalog string   `yaml:"foreignCatalog,omitempty"`
	ForeignSchema  string   `yaml:"foreignSchema,omitempty"`
	ForeignTable   string   `yaml:"foreignTable"`
	ForeignColumns []string `yaml:"foreignColumns"`
}

// SynonymHandling is how procedure synonyms join the procedure list.
type SynonymHandling string

const (
	SynonymNone    SynonymHandling = "none"
	SynonymInclude SynonymHandling = "include"
	SynonymSwitch  SynonymHandling = "switch"
)

// ProcedureConfig controls procedure extraction.
type ProcedureConfig struct {
	Enabled         bool                    `yaml:"enabled,omitempty"`
	SynonymHandling SynonymHandling         `yaml:"synonymHandling,omitempty"`
	CatalogTargets  []string                `yaml:"catalogTargets,omitempty"`
	SchemaTargets   []string                `yaml:"schemaTargets,omitempty"`
	NameTargets     []string                `yaml:"nameTargets,omitempty"`
	NameExcepts     []string                `yaml:"nameExcepts,omitempty"`
	DBLinks         []DBLinkProcedureConfig `yaml:"dbLinks,omitempty"`
}

// DBLinkProcedureConfig requests a procedure reachable only through a DB link.
type DBLinkProcedureConfig struct {
	Procedure string `yaml:"procedure"`
	DBLink    string `yaml:"dbLink"`
}

// TypeMappingConfig customizes JDBC and program type resolution.
type TypeMappingConfig struct {
	NameToType    map[string]string `yaml:"nameToType,omitempty"`
	PatternToType map[string]string `yaml:"patternToType,omitempty"`
	NativeTypes   map[string]string `yaml:"nativeTypes,omitempty"`
	DecimalType   string            `yaml:"decimalType,omitempty"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`     // debug, info, warn, error
	Directory string `yaml:"directory,omitempty"` // default ~/.dfmeta/logs/
}

// OutputConfig defines where run artifacts are written.
type OutputConfig struct {
	Directory string `yaml:"directory,omitempty"`
}

// Load reads and parses the config file from the given path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}
	return cfg, nil
}

// Parse decodes, defaults and validates config bytes. Secrets are not resolved.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills unset values. An object type list that is present but
// empty stays empty and is rejected later.
func (c *Config) applyDefaults() {
	if c.Tables.ObjectTypeTargets == nil {
		c.Tables.ObjectTypeTargets = append([]string(nil), DefaultObjectTypeTargets...)
	}
	for i := range c.AdditionalSchemas {
		if c.AdditionalSchemas[i].ObjectTypeTargets == nil {
			c.AdditionalSchemas[i].ObjectTypeTargets = c.Tables.ObjectTypeTargets
		}
		if c.AdditionalSchemas[i].ColumnExcepts == nil {
			c.AdditionalSchemas[i].ColumnExcepts = map[string][]string{}
		}
	}
	if c.Tables.ColumnExcepts == nil {
		c.Tables.ColumnExcepts = map[string][]string{}
	}
	if c.Procedure.SynonymHandling == "" {
		c.Procedure.SynonymHandling = SynonymNone
	}
	if c.TypeMapping.DecimalType == "" {
		c.TypeMapping.DecimalType = "decimal.Decimal"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = ExpandHome("~/.dfmeta/logs/")
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "output"
	}
}

func (c *Config) resolveSecrets() error {
	var err error
	c.Database.Password, err = ResolveValue(c.Database.Password)
	if err != nil {
		return fmt.Errorf("database password: %w", err)
	}
	c.Database.DSN, err = ResolveValue(c.Database.DSN)
	if err != nil {
		return fmt.Errorf("database dsn: %w", err)
	}
	return nil
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
