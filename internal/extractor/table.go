package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/logging"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// ListTables lists the target tables of a schema in driver order. System
// tables of the engine and excepted tables are left out. A name listed twice
// keeps its first position and the last row.
func (x *Extractor) ListTables(ctx context.Context, us schema.UnifiedSchema) ([]*schema.TableMeta, error) {
	types, err := x.policy.ObjectTypeTargets(us)
	if err != nil {
		return nil, err
	}
	rows, err := x.meta.Tables(ctx, us.Catalog, us.Schema, types)
	if err != nil {
		return nil, fmt.Errorf("listing tables of %s: %w", us.Identity(), err)
	}

	var (
		tables []*schema.TableMeta
		pos    = map[string]int{}
	)
	for _, r := range rows {
		if x.engine().IsSystemTable(r.Name) {
			continue
		}
		if x.policy.IsTableExcept(us, r.Name) {
			continue
		}
		// The row's catalog is unreliable (null on PostgreSQL); the table
		// belongs to the schema it was listed for.
		t := &schema.TableMeta{Name: r.Name, Type: r.Type, Schema: us, Comment: r.Remarks}
		if i, ok := pos[r.Name]; ok {
			tables[i] = t
			continue
		}
		pos[r.Name] = len(tables)
		tables = append(tables, t)
	}
	return tables, nil
}

// TableSet is the table lookup of a run. Tables are addressed by schema and
// name; the merged view keyed by name alone has last-wins semantics across
// schemas, so a later schema replaces an earlier table of the same name.
type TableSet struct {
	log      *slog.Logger
	merged   []*schema.TableMeta
	byName   map[string]int
	bySchema map[schema.SchemaKey]map[string]*schema.TableMeta
}

// NewTableSet creates an empty table set.
func NewTableSet(log *slog.Logger) *TableSet {
	if log == nil {
		log = logging.Discard()
	}
	return &TableSet{
		log:      log,
		byName:   map[string]int{},
		bySchema: map[schema.SchemaKey]map[string]*schema.TableMeta{},
	}
}

// Add registers tables.
func (s *TableSet) Add(tables ...*schema.TableMeta) {
	for _, t := range tables {
		byName := s.bySchema[t.Schema.Key()]
		if byName == nil {
			byName = map[string]*schema.TableMeta{}
			s.bySchema[t.Schema.Key()] = byName
		}
		byName[strings.ToLower(t.Name)] = t

		if i, ok := s.byName[t.Name]; ok {
			s.log.Debug("table name listed by two schemas, the later wins",
				"table", t.Name, "replaced", s.merged[i].Schema.Identity(), "by", t.Schema.Identity())
			s.merged[i] = t
			continue
		}
		s.byName[t.Name] = len(s.merged)
		s.merged = append(s.merged, t)
	}
}

// Tables returns the merged tables in first-listed order.
func (s *TableSet) Tables() []*schema.TableMeta {
	return append([]*schema.TableMeta(nil), s.merged...)
}

// Len returns the number of merged tables.
func (s *TableSet) Len() int { return len(s.merged) }

// Lookup returns a table of a schema, ignoring the case of the name. A nil
// set finds nothing.
func (s *TableSet) Lookup(us schema.UnifiedSchema, name string) (*schema.TableMeta, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.bySchema[us.Key()][strings.ToLower(name)]
	return t, ok
}

// isTarget reports whether a referenced table takes part in generation. A nil
// set cannot tell and treats every table as a target.
func (s *TableSet) isTarget(us schema.UnifiedSchema, name string) bool {
	if s == nil {
		return true
	}
	_, ok := s.Lookup(us, name)
	return ok
}
