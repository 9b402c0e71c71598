// Package procedure lists the stored procedures of a data source with their
// parameters, resolving synonyms, DB links, overloads and nested types.
package procedure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/hint"
	"github.com/dbflute/dbflute-core-sub011/internal/logging"
	"github.com/dbflute/dbflute-core-sub011/internal/notice"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
	"github.com/dbflute/dbflute-core-sub011/internal/target"
	"github.com/dbflute/dbflute-core-sub011/internal/typemap"
)

// Extractor assembles the available procedures of one data source.
type Extractor struct {
	meta   dbmeta.MetaData
	policy *target.Policy
	mapper *typemap.Mapper
	cfg    config.ProcedureConfig
	assist *AssistCache
	log    *slog.Logger
}

// New creates a procedure extractor. A nil assist cache gets a private one.
func New(meta dbmeta.MetaData, policy *target.Policy, mapper *typemap.Mapper, cfg config.ProcedureConfig, assist *AssistCache, log *slog.Logger) *Extractor {
	if log == nil {
		log = logging.Discard()
	}
	if assist == nil {
		assist = NewAssistCache()
	}
	return &Extractor{meta: meta, policy: policy, mapper: mapper, cfg: cfg, assist: assist, log: log}
}

func (x *Extractor) engine() dbmeta.Engine { return x.meta.Engine() }

// AvailableProcedures returns the procedures to generate for, keyed by
// qualified name and kept in discovery order. Unless force is set, nothing is
// read when procedure generation is disabled.
func (x *Extractor) AvailableProcedures(ctx context.Context, force bool) ([]*schema.ProcedureMeta, error) {
	if !x.cfg.Enabled && !force {
		return nil, nil
	}
	listed := newSchemaListing(x)

	procs, err := listed.get(ctx, x.policy.MainSchema())
	if err != nil {
		return nil, err
	}
	for _, us := range x.policy.AdditionalSchemas() {
		if x.policy.IsProcedureSuppressed(us) {
			x.log.Debug("procedures suppressed for schema", "schema", us.Identity())
			continue
		}
		more, err := listed.get(ctx, us)
		if err != nil {
			return nil, err
		}
		procs = append(procs, more...)
	}

	switch x.cfg.SynonymHandling {
	case config.SynonymInclude, config.SynonymSwitch:
		synonyms, err := x.synonymProcedures(ctx, listed)
		if err != nil {
			return nil, err
		}
		if x.cfg.SynonymHandling == config.SynonymSwitch {
			x.log.Info("procedure list switched to synonyms", "plain", len(procs), "synonyms", len(synonyms))
			procs = synonyms
		} else {
			procs = append(procs, synonyms...)
		}
	}

	for _, dl := range x.cfg.DBLinks {
		p, err := x.dbLinkProcedure(ctx, dl.Procedure, dl.DBLink)
		if err != nil {
			return nil, err
		}
		procs = append(procs, p)
	}

	if err := x.applyAssistInfo(ctx, procs); err != nil {
		return nil, err
	}

	var kept []*schema.ProcedureMeta
	for _, p := range procs {
		if x.isTarget(p) {
			kept = append(kept, p)
		}
	}
	return x.arbitrate(kept), nil
}

// SchemaProcedures lists the plain procedures of one schema.
func (x *Extractor) SchemaProcedures(ctx context.Context, us schema.UnifiedSchema) ([]*schema.ProcedureMeta, error) {
	rows, err := x.meta.Procedures(ctx, us.Catalog, us.Schema, "%")
	if err != nil {
		return nil, fmt.Errorf("listing procedures of %s: %w", us.Identity(), err)
	}
	procs := make([]*schema.ProcedureMeta, 0, len(rows))
	for _, row := range rows {
		p, err := x.newProcedure(ctx, us, row)
		if err != nil {
			return nil, err
		}
		procs = append(procs, p)
	}
	return procs, nil
}

func (x *Extractor) newProcedure(ctx context.Context, us schema.UnifiedSchema, row dbmeta.ProcedureRow) (*schema.ProcedureMeta, error) {
	ptype, err := schema.ParseProcedureType(row.Type)
	if err != nil {
		return nil, notice.New("Unknown procedure type reported by the driver.").
			With("Procedure", row.Name).
			With("Schema", us.Identity()).
			With("Type Code", fmt.Sprint(row.Type)).
			WithCause(err)
	}
	p := &schema.ProcedureMeta{
		Catalog:      row.Catalog,
		Schema:       us,
		Name:         row.Name,
		Type:         ptype,
		Comment:      row.Remarks,
		SpecificName: row.SpecificName,
	}
	columnCatalog := us.Catalog
	if x.engine().PackageInCatalog() {
		// the driver reports the package in the catalog column
		p.Package, p.Catalog = row.Catalog, ""
		columnCatalog = row.Catalog
	}
	cols, err := x.procedureColumns(ctx, p, columnCatalog)
	if err != nil {
		return nil, err
	}
	p.Columns = cols
	return p, nil
}

// isTarget applies the catalog, schema and name allow-lists. Procedures
// requested through a DB link are always kept.
func (x *Extractor) isTarget(p *schema.ProcedureMeta) bool {
	if p.IsIncludedByDBLink() {
		return true
	}
	if len(x.cfg.CatalogTargets) > 0 && !hint.IsHitAny(p.Catalog, x.cfg.CatalogTargets) {
		return false
	}
	if len(x.cfg.SchemaTargets) > 0 && !hint.IsHitAny(p.Schema.Schema, x.cfg.SchemaTargets) {
		return false
	}
	names := []string{p.Name, p.FullName()}
	for _, n := range names {
		if hint.IsHitAny(n, x.cfg.NameExcepts) {
			return false
		}
	}
	if len(x.cfg.NameTargets) == 0 {
		return true
	}
	for _, n := range names {
		if hint.IsHitAny(n, x.cfg.NameTargets) {
			return true
		}
	}
	return false
}

// arbitrate removes qualified-name duplicates: a main-schema procedure wins
// over the others, otherwise the first one is kept. Overloads listed as
// separate routines are not duplicates of each other.
func (x *Extractor) arbitrate(procs []*schema.ProcedureMeta) []*schema.ProcedureMeta {
	out := make([]*schema.ProcedureMeta, 0, len(procs))
	index := make(map[string]int, len(procs))
	for _, p := range procs {
		name := p.QualifiedName()
		key := arbitrationKey(p)
		i, dup := index[key]
		if !dup {
			index[key] = len(out)
			out = append(out, p)
			continue
		}
		existing := out[i]
		if !existing.Schema.IsMain() && p.Schema.IsMain() {
			out[i] = p
			x.log.Info("duplicate procedure", "name", name, "kept", p.Schema.Identity(),
				"dropped", existing.Schema.Identity(), "reason", "main schema")
			continue
		}
		reason := "first one"
		if existing.Schema.IsMain() && !p.Schema.IsMain() {
			reason = "main schema"
		}
		x.log.Info("duplicate procedure", "name", name, "kept", existing.Schema.Identity(),
			"dropped", p.Schema.Identity(), "reason", reason)
	}
	return out
}

// arbitrationKey is the qualified name, extended by the specific name when
// it tells an overload apart.
func arbitrationKey(p *schema.ProcedureMeta) string {
	key := p.QualifiedName()
	if p.SpecificName != "" && !strings.EqualFold(p.SpecificName, p.Name) {
		key += "#" + strings.ToLower(p.SpecificName)
	}
	return key
}

// schemaListing memoizes plain procedures per schema within one run, so a
// synonym pointing into a listed schema does not list it again.
type schemaListing struct {
	x    *Extractor
	byUS map[schema.SchemaKey][]*schema.ProcedureMeta
}

func newSchemaListing(x *Extractor) *schemaListing {
	return &schemaListing{x: x, byUS: map[schema.SchemaKey][]*schema.ProcedureMeta{}}
}

func (l *schemaListing) get(ctx context.Context, us schema.UnifiedSchema) ([]*schema.ProcedureMeta, error) {
	if procs, ok := l.byUS[us.Key()]; ok {
		return procs, nil
	}
	procs, err := l.x.SchemaProcedures(ctx, us)
	if err != nil {
		return nil, err
	}
	l.byUS[us.Key()] = procs
	return procs, nil
}
