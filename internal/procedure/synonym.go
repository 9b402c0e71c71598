package procedure

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// synonymProcedures lists the procedures reachable through synonyms owned by
// the main schema. A synonym can name a standalone procedure or a package;
// the copies carry the synonym's schema and name.
func (x *Extractor) synonymProcedures(ctx context.Context, listed *schemaListing) ([]*schema.ProcedureMeta, error) {
	reader, ok := x.meta.(dbmeta.SynonymReader)
	if !ok {
		x.log.Debug("engine has no procedure synonyms", "engine", x.engine())
		return nil, nil
	}
	main := x.policy.MainSchema()
	rows, err := reader.ProcedureSynonyms(ctx, main.Catalog, main.Schema)
	if err != nil {
		return nil, fmt.Errorf("listing procedure synonyms of %s: %w", main.Identity(), err)
	}

	var out []*schema.ProcedureMeta
	for _, s := range rows {
		owner := x.policy.Resolve("", s.Owner)
		if s.DBLink != "" {
			p, err := x.dbLinkProcedure(ctx, s.TargetName, s.DBLink)
			if err != nil {
				x.log.Warn("synonym through DB link skipped", "synonym", s.SynonymName, "dblink", s.DBLink, "error", err)
				continue
			}
			p.Schema = owner
			renameForSynonym(p, s)
			out = append(out, p)
			continue
		}

		targets, err := listed.get(ctx, x.policy.Resolve("", s.TargetOwner))
		if err != nil {
			return nil, err
		}
		var found bool
		for _, p := range targets {
			if !strings.EqualFold(p.Name, s.TargetName) && !strings.EqualFold(p.Package, s.TargetName) {
				continue
			}
			found = true
			c := cloneProcedure(p)
			c.Schema = owner
			c.SynonymOf = p.QualifiedName()
			renameForSynonym(c, s)
			out = append(out, c)
		}
		if !found {
			x.log.Warn("synonym target procedure not found", "synonym", s.SynonymName,
				"target", s.TargetOwner+"."+s.TargetName)
		}
	}
	return out, nil
}

func renameForSynonym(p *schema.ProcedureMeta, s dbmeta.SynonymRow) {
	if p.Package != "" && strings.EqualFold(p.Package, s.TargetName) {
		p.Package = s.SynonymName
	} else {
		p.Name = s.SynonymName
	}
}

// cloneProcedure copies the procedure and its column slice. The column
// values are shared with the original.
func cloneProcedure(p *schema.ProcedureMeta) *schema.ProcedureMeta {
	c := *p
	c.Columns = append([]*schema.ProcedureColumnMeta(nil), p.Columns...)
	return &c
}
