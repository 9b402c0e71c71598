package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/logging"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
	"github.com/dbflute/dbflute-core-sub011/internal/target"
)

// UniqueKeyFKCache holds the foreign keys that reference a unique key
// instead of a primary key, per schema and local table. They come from the
// configuration and, on engines that can list them, from the dictionary.
// A schema is loaded once, on first use, and never reloaded.
type UniqueKeyFKCache struct {
	meta     dbmeta.MetaData
	policy   *target.Policy
	declared []config.UniqueKeyFKConfig
	log      *slog.Logger

	mu     sync.RWMutex
	loaded map[schema.SchemaKey]map[string][]*schema.ForeignKeyMeta
}

// NewUniqueKeyFKCache creates an empty cache.
func NewUniqueKeyFKCache(meta dbmeta.MetaData, policy *target.Policy, declared []config.UniqueKeyFKConfig, log *slog.Logger) *UniqueKeyFKCache {
	if log == nil {
		log = logging.Discard()
	}
	return &UniqueKeyFKCache{
		meta:     meta,
		policy:   policy,
		declared: declared,
		log:      log,
		loaded:   map[schema.SchemaKey]map[string][]*schema.ForeignKeyMeta{},
	}
}

// ForeignKeys returns copies of the unique-key based foreign keys of a table.
func (c *UniqueKeyFKCache) ForeignKeys(ctx context.Context, us schema.UnifiedSchema, table string) ([]*schema.ForeignKeyMeta, error) {
	byTable, err := c.schemaForeignKeys(ctx, us)
	if err != nil {
		return nil, err
	}
	cached := byTable[strings.ToLower(table)]
	out := make([]*schema.ForeignKeyMeta, len(cached))
	for i, fk := range cached {
		cp := *fk
		cp.Columns = append([]schema.ColumnPair(nil), fk.Columns...)
		out[i] = &cp
	}
	return out, nil
}

func (c *UniqueKeyFKCache) schemaForeignKeys(ctx context.Context, us schema.UnifiedSchema) (map[string][]*schema.ForeignKeyMeta, error) {
	key := us.Key()
	c.mu.RLock()
	byTable, ok := c.loaded[key]
	c.mu.RUnlock()
	if ok {
		return byTable, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if byTable, ok := c.loaded[key]; ok {
		return byTable, nil
	}
	byTable, err := c.load(ctx, us)
	if err != nil {
		return nil, err
	}
	c.loaded[key] = byTable
	return byTable, nil
}

func (c *UniqueKeyFKCache) load(ctx context.Context, us schema.UnifiedSchema) (map[string][]*schema.ForeignKeyMeta, error) {
	byTable := map[string][]*schema.ForeignKeyMeta{}
	names := map[string]bool{}
	add := func(fk *schema.ForeignKeyMeta) {
		id := strings.ToLower(fk.LocalTable) + "|" + fk.Name
		if names[id] {
			return
		}
		names[id] = true
		t := strings.ToLower(fk.LocalTable)
		byTable[t] = append(byTable[t], fk)
	}

	if r, ok := c.meta.(dbmeta.UniqueKeyFKReader); ok {
		rows, err := r.UniqueKeyForeignKeys(ctx, us.Catalog, us.Schema)
		if err != nil {
			return nil, fmt.Errorf("reading unique-key foreign keys of %s: %w", us.Identity(), err)
		}
		byName := map[string]*schema.ForeignKeyMeta{}
		var order []string
		for _, row := range rows {
			id := row.FKTable + "|" + row.FKName
			fk, ok := byName[id]
			if !ok {
				foreignSchema := us
				if row.PKCatalog != "" || row.PKSchema != "" {
					foreignSchema = c.policy.Resolve(row.PKCatalog, row.PKSchema)
				}
				fk = &schema.ForeignKeyMeta{
					Name:           row.FKName,
					LocalSchema:    us,
					LocalTable:     row.FKTable,
					ForeignSchema:  foreignSchema,
					ForeignTable:   row.PKTable,
					UniqueKeyBased: true,
				}
				byName[id] = fk
				order = append(order, id)
			}
			fk.AddColumn(row.FKColumn, row.PKColumn)
		}
		for _, id := range order {
			add(byName[id])
		}
	}

	for _, d := range c.declared {
		local := c.policy.MainSchema()
		if d.Catalog != "" || d.Schema != "" {
			local = c.policy.Resolve(d.Catalog, d.Schema)
		}
		if !local.Same(us) {
			continue
		}
		foreign := local
		if d.ForeignCatalog != "" || d.ForeignSchema != "" {
			foreign = c.policy.Resolve(d.ForeignCatalog, d.ForeignSchema)
		}
		fk := &schema.ForeignKeyMeta{
			Name:           d.Name,
			LocalSchema:    local,
			LocalTable:     d.LocalTable,
			ForeignSchema:  foreign,
			ForeignTable:   d.ForeignTable,
			UniqueKeyBased: true,
		}
		for i := 0; i < len(d.LocalColumns) && i < len(d.ForeignColumns); i++ {
			fk.AddColumn(d.LocalColumns[i], d.ForeignColumns[i])
		}
		add(fk)
	}

	c.log.Debug("unique-key foreign keys loaded", "schema", us.Identity(), "tables", len(byTable))
	return byTable, nil
}
