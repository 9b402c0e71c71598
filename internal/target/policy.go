// Package target decides which tables and columns of each schema take part
// in generation.
package target

import (
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/hint"
	"github.com/dbflute/dbflute-core-sub011/internal/notice"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// rules are the hints of one configured schema.
type rules struct {
	us                schema.UnifiedSchema
	objectTypes       []string
	tableTargets      []string
	tableExcepts      []string
	columnExcepts     map[string][]string
	suppressProcedure bool
}

// Policy holds the target and except hints of the main schema and every
// additional schema. Schemas discovered in metadata have no hints: all
// their tables and columns are targets.
type Policy struct {
	engine   dbmeta.Engine
	main     schema.UnifiedSchema
	schemas  []*rules
	byKey    map[schema.SchemaKey]*rules
	suppress bool
}

// New builds the policy of a run from configuration.
func New(e dbmeta.Engine, cfg *config.Config) *Policy {
	p := &Policy{
		engine:   e,
		byKey:    map[schema.SchemaKey]*rules{},
		suppress: cfg.Tables.SuppressExceptTarget,
	}
	p.main = p.normalize(schema.NewMainSchema(cfg.Database.Catalog, cfg.Database.Schema))
	p.add(&rules{
		us:            p.main,
		objectTypes:   cfg.Tables.ObjectTypeTargets,
		tableTargets:  cfg.Tables.TableTargets,
		tableExcepts:  cfg.Tables.TableExcepts,
		columnExcepts: cfg.Tables.ColumnExcepts,
	})
	for _, a := range cfg.AdditionalSchemas {
		us := p.normalize(schema.NewAdditionalSchema(a.Catalog, a.Schema))
		if _, dup := p.byKey[us.Key()]; dup {
			continue
		}
		p.add(&rules{
			us:                us,
			objectTypes:       a.ObjectTypeTargets,
			tableTargets:      a.TableTargets,
			tableExcepts:      a.TableExcepts,
			columnExcepts:     a.ColumnExcepts,
			suppressProcedure: a.SuppressProcedure,
		})
	}
	return p
}

func (p *Policy) add(r *rules) {
	p.schemas = append(p.schemas, r)
	p.byKey[r.us.Key()] = r
}

// normalize drops the parts of a schema the engine does not have.
func (p *Policy) normalize(us schema.UnifiedSchema) schema.UnifiedSchema {
	if !p.engine.HasCatalog() {
		us.Catalog = ""
	}
	if !p.engine.HasSchema() {
		us.Schema = ""
	}
	return us
}

// Engine returns the engine the policy was built for.
func (p *Policy) Engine() dbmeta.Engine { return p.engine }

// MainSchema returns the main schema.
func (p *Policy) MainSchema() schema.UnifiedSchema { return p.main }

// Schemas returns the main schema followed by the additional schemas.
func (p *Policy) Schemas() []schema.UnifiedSchema {
	out := make([]schema.UnifiedSchema, len(p.schemas))
	for i, r := range p.schemas {
		out[i] = r.us
	}
	return out
}

// AdditionalSchemas returns the additional schemas in configuration order.
func (p *Policy) AdditionalSchemas() []schema.UnifiedSchema {
	var out []schema.UnifiedSchema
	for _, r := range p.schemas[1:] {
		out = append(out, r.us)
	}
	return out
}

// IsProcedureSuppressed reports whether an additional schema opted out of
// procedure extraction.
func (p *Policy) IsProcedureSuppressed(us schema.UnifiedSchema) bool {
	r := p.rulesOf(us)
	return r != nil && r.suppressProcedure
}

// Resolve returns the configured schema addressed by a catalog and schema
// pair reported by metadata, or a dynamic schema when none is configured.
// Drivers report names in their own case, so the match ignores case. A
// blank catalog on either side matches any catalog, and a main schema
// configured without a schema name stands for the engine's default schema.
func (p *Policy) Resolve(catalog, schemaName string) schema.UnifiedSchema {
	us := p.normalize(schema.NewDynamicSchema(catalog, schemaName))
	if r, ok := p.byKey[us.Key()]; ok {
		return r.us
	}
	for _, r := range p.schemas {
		if !strings.EqualFold(p.schemaNameOf(r.us), us.Schema) {
			continue
		}
		if us.Catalog == "" || r.us.Catalog == "" || strings.EqualFold(r.us.Catalog, us.Catalog) {
			return r.us
		}
	}
	return us
}

// schemaNameOf returns the schema name metadata reports for a configured schema.
func (p *Policy) schemaNameOf(us schema.UnifiedSchema) string {
	if us.Schema == "" && us.IsMain() && p.engine.HasSchema() {
		return p.engine.DefaultSchema()
	}
	return us.Schema
}

func (p *Policy) rulesOf(us schema.UnifiedSchema) *rules {
	if r, ok := p.byKey[us.Key()]; ok {
		return r
	}
	for _, r := range p.schemas {
		if r.us.SameIgnoreCase(us) {
			return r
		}
	}
	return nil
}

// ObjectTypeTargets returns the table types listed for the schema. An empty
// list cannot list anything and is a configuration error.
func (p *Policy) ObjectTypeTargets(us schema.UnifiedSchema) ([]string, error) {
	r := p.rulesOf(us)
	if r == nil {
		return append([]string(nil), config.DefaultObjectTypeTargets...), nil
	}
	if len(r.objectTypes) == 0 {
		return nil, notice.New("The object type targets of the schema are empty.").
			WithAdvice(
				"Set at least one table type, e.g. TABLE or VIEW,",
				"or remove the setting to use the default types.",
			).
			With("Schema", us.String()).
			With("Property", "objectTypeTargets")
	}
	return r.objectTypes, nil
}

// IsTableExcept reports whether the table is left out of generation.
func (p *Policy) IsTableExcept(us schema.UnifiedSchema, table string) bool {
	if p.suppress {
		return false
	}
	r := p.rulesOf(us)
	if r == nil {
		return false
	}
	return !hint.IsTarget(table, r.tableTargets, r.tableExcepts)
}

// IsColumnExcept reports whether the column of the table is left out of
// generation. The column-except setting maps a table hint to column hints;
// a table matched by several table hints collects all of them.
func (p *Policy) IsColumnExcept(us schema.UnifiedSchema, table, column string) bool {
	if p.suppress {
		return false
	}
	r := p.rulesOf(us)
	if r == nil {
		return false
	}
	for tableHint, columnHints := range r.columnExcepts {
		if hint.IsHit(table, tableHint) && hint.IsHitAny(column, columnHints) {
			return true
		}
	}
	return false
}
