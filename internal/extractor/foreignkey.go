package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// ForeignKeys returns the foreign keys of a table in their immobilized order.
//
// Rows of one name to one foreign table form a compound key. Rows of one
// name to different foreign tables (DB2 reports keys to aliases that way)
// are resolved in favor of the foreign table whose type equals the local
// table's type, else the first one seen. Keys to tables outside tables are
// left out. Unique-key based keys are merged without replacing real keys,
// and structurally identical keys are reported once.
//
// tables must hold the listed tables of the run; a nil set treats every
// table as a target and cannot resolve collisions.
func (x *Extractor) ForeignKeys(ctx context.Context, us schema.UnifiedSchema, table string, tables *TableSet) ([]*schema.ForeignKeyMeta, error) {
	rows, err := fetchWithRetry(x, "importedKeys", table, func(name string) ([]dbmeta.ImportedKeyRow, error) {
		return x.meta.ImportedKeys(ctx, us.Catalog, us.Schema, name)
	})
	if err != nil {
		return nil, fmt.Errorf("reading foreign keys of %s: %w", us.Qualify(table), err)
	}

	var (
		fks      = map[string]*schema.ForeignKeyMeta{}
		order    []string
		excepted []string
	)
	for _, r := range rows {
		foreignSchema := x.foreignSchemaOf(us, r.PKCatalog, r.PKSchema)
		name := strings.TrimSpace(r.FKName)
		if name == "" {
			name = fmt.Sprintf("FK_%s_%s_%s", table, r.FKColumn, r.PKTable)
		}

		if x.policy.IsColumnExcept(us, table, r.FKColumn) {
			return nil, keyColumnExceptedError("foreign key", us, table, r.FKColumn, name)
		}
		if x.policy.IsColumnExcept(foreignSchema, r.PKTable, r.PKColumn) {
			return nil, keyColumnExceptedError("referenced primary key", foreignSchema, r.PKTable, r.PKColumn, name)
		}

		if !tables.isTarget(foreignSchema, r.PKTable) {
			excepted = append(excepted, name+"->"+r.PKTable)
			continue
		}

		fk, ok := fks[name]
		if !ok {
			fks[name] = newForeignKey(name, us, table, foreignSchema, r)
			order = append(order, name)
			continue
		}
		if strings.EqualFold(fk.ForeignTable, r.PKTable) {
			fk.AddColumn(r.FKColumn, r.PKColumn)
			continue
		}
		if x.preferCandidate(us, table, fk, foreignSchema, r.PKTable, tables) {
			x.log.Info("same-name foreign key resolved by table type",
				"table", us.Qualify(table), "fk", name, "kept", r.PKTable, "dropped", fk.ForeignTable)
			fks[name] = newForeignKey(name, us, table, foreignSchema, r)
			continue
		}
		x.log.Debug("same-name foreign key resolved to the first one",
			"table", us.Qualify(table), "fk", name, "kept", fk.ForeignTable, "dropped", r.PKTable)
	}
	if len(excepted) > 0 {
		x.log.Info("foreign keys to non-target tables skipped", "table", us.Qualify(table), "foreign_keys", excepted)
	}

	if x.ukFKs != nil {
		ukFKs, err := x.ukFKs.ForeignKeys(ctx, us, table)
		if err != nil {
			return nil, err
		}
		for _, fk := range ukFKs {
			if _, exists := fks[fk.Name]; exists {
				continue
			}
			if !tables.isTarget(fk.ForeignSchema, fk.ForeignTable) {
				continue
			}
			fks[fk.Name] = fk
			order = append(order, fk.Name)
		}
	}

	result := make([]*schema.ForeignKeyMeta, 0, len(order))
	structures := map[string]string{}
	for _, name := range order {
		fk := fks[name]
		key := fk.StructureKey()
		if first, dup := structures[key]; dup {
			x.log.Warn("structurally duplicate foreign key skipped",
				"table", us.Qualify(table), "fk", name, "same_as", first)
			continue
		}
		structures[key] = name
		result = append(result, fk)
	}
	schema.SortForeignKeys(result)
	return result, nil
}

// foreignSchemaOf resolves the schema of a referenced table. Drivers that
// report no schema at all reference the local schema.
func (x *Extractor) foreignSchemaOf(local schema.UnifiedSchema, catalog, schemaName string) schema.UnifiedSchema {
	if strings.TrimSpace(catalog) == "" && strings.TrimSpace(schemaName) == "" {
		return local
	}
	return x.policy.Resolve(catalog, schemaName)
}

func newForeignKey(name string, us schema.UnifiedSchema, table string, foreignSchema schema.UnifiedSchema, r dbmeta.ImportedKeyRow) *schema.ForeignKeyMeta {
	fk := &schema.ForeignKeyMeta{
		Name:          name,
		LocalSchema:   us,
		LocalTable:    table,
		ForeignSchema: foreignSchema,
		ForeignTable:  r.PKTable,
	}
	fk.AddColumn(r.FKColumn, r.PKColumn)
	return fk
}

// preferCandidate decides a same-name collision: the candidate replaces the
// existing key only if the existing foreign table's type differs from the
// local table's type and the candidate's type equals it.
func (x *Extractor) preferCandidate(us schema.UnifiedSchema, table string, existing *schema.ForeignKeyMeta,
	candidateSchema schema.UnifiedSchema, candidateTable string, tables *TableSet) bool {
	local, ok := tables.Lookup(us, table)
	if !ok {
		return false
	}
	if t, ok := tables.Lookup(existing.ForeignSchema, existing.ForeignTable); ok && strings.EqualFold(t.Type, local.Type) {
		return false
	}
	t, ok := tables.Lookup(candidateSchema, candidateTable)
	return ok && strings.EqualFold(t.Type, local.Type)
}
