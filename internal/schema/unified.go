package schema

import "strings"

// NoName marks a missing catalog or schema in display and identity strings.
// Engines without catalogs (Oracle) or schemas (MySQL, SQLite) use it.
const NoName = "$$NoName$$"

// SchemaKey is the identity of a UnifiedSchema. Two schemas addressing the
// same (catalog, schema) pair are the same schema whatever their role.
type SchemaKey struct {
	Catalog string
	Schema  string
}

// UnifiedSchema addresses a (catalog, schema) pair uniformly across engines.
type UnifiedSchema struct {
	Catalog    string `yaml:"catalog,omitempty"`
	Schema     string `yaml:"schema,omitempty"`
	Additional bool   `yaml:"additional,omitempty"`
	// Dynamic is set when metadata reported a schema that was not configured,
	// e.g. the target of a synonym or a foreign key into a linked schema.
	Dynamic bool `yaml:"dynamic,omitempty"`
}

// NewMainSchema creates the main schema of a run.
func NewMainSchema(catalog, schema string) UnifiedSchema {
	return UnifiedSchema{Catalog: normalize(catalog), Schema: normalize(schema)}
}

// NewAdditionalSchema creates a configured secondary schema.
func NewAdditionalSchema(catalog, schema string) UnifiedSchema {
	return UnifiedSchema{Catalog: normalize(catalog), Schema: normalize(schema), Additional: true}
}

// NewDynamicSchema creates a schema discovered in metadata.
func NewDynamicSchema(catalog, schema string) UnifiedSchema {
	return UnifiedSchema{Catalog: normalize(catalog), Schema: normalize(schema), Dynamic: true}
}

func normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == NoName {
		return ""
	}
	return name
}

// Key returns the identity of the schema.
func (s UnifiedSchema) Key() SchemaKey {
	return SchemaKey{Catalog: s.Catalog, Schema: s.Schema}
}

// IsMain reports whether the schema is the main schema of the run.
func (s UnifiedSchema) IsMain() bool {
	return !s.Additional && !s.Dynamic
}

// HasCatalog reports whether a catalog name is present.
func (s UnifiedSchema) HasCatalog() bool { return s.Catalog != "" }

// HasSchema reports whether a schema name is present.
func (s UnifiedSchema) HasSchema() bool { return s.Schema != "" }

// Same reports whether both schemas address the same (catalog, schema) pair.
func (s UnifiedSchema) Same(other UnifiedSchema) bool {
	return s.Key() == other.Key()
}

// SameIgnoreCase is Same with case folded, for drivers that report schema
// names in another case than configured.
func (s UnifiedSchema) SameIgnoreCase(other UnifiedSchema) bool {
	return strings.EqualFold(s.Catalog, other.Catalog) && strings.EqualFold(s.Schema, other.Schema)
}

// Identity is the display form of the key, using NoName for missing parts.
func (s UnifiedSchema) Identity() string {
	return orNoName(s.Catalog) + "." + orNoName(s.Schema)
}

// QualifiedName returns "catalog.schema" with missing parts omitted.
func (s UnifiedSchema) QualifiedName() string {
	return joinNonEmpty(".", s.Catalog, s.Schema)
}

// Qualify prefixes an object name with the qualified schema name.
func (s UnifiedSchema) Qualify(name string) string {
	return joinNonEmpty(".", s.Catalog, s.Schema, name)
}

func (s UnifiedSchema) String() string {
	role := "main"
	switch {
	case s.Additional:
		role = "additional"
	case s.Dynamic:
		role = "dynamic"
	}
	return s.Identity() + "(" + role + ")"
}

func orNoName(v string) string {
	if v == "" {
		return NoName
	}
	return v
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
