package extractor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// syntheticKeyPosition is the first position given to primary key rows whose
// reported position does not parse.
const syntheticKeyPosition = 999

// accessPrimaryKeyIndex is the name of the unique index MS Access uses as
// primary key.
const accessPrimaryKeyIndex = "PrimaryKey"

// PrimaryKey returns the primary key of a table ordered by key position.
// Drivers may return the rows in any order (MySQL does); positions that do
// not parse get increasing positions from 999 in row order.
func (x *Extractor) PrimaryKey(ctx context.Context, us schema.UnifiedSchema, table string) (*schema.PrimaryKeyMeta, error) {
	if x.engine().PrimaryKeyFromIndex() {
		return x.primaryKeyFromIndex(ctx, us, table)
	}

	rows, err := fetchWithRetry(x, "primaryKeys", table, func(name string) ([]dbmeta.PrimaryKeyRow, error) {
		return x.meta.PrimaryKeys(ctx, us.Catalog, us.Schema, name)
	})
	if err != nil {
		return nil, fmt.Errorf("reading primary key of %s: %w", us.Qualify(table), err)
	}

	type positioned struct {
		pos int
		row dbmeta.PrimaryKeyRow
	}
	var (
		items      = make([]positioned, 0, len(rows))
		next       = syntheticKeyPosition
		unparsable []string
	)
	for _, r := range rows {
		pos, err := strconv.Atoi(strings.TrimSpace(r.KeySeq))
		if err != nil {
			pos = next
			next++
			unparsable = append(unparsable, r.ColumnName+"="+r.KeySeq)
		}
		items = append(items, positioned{pos: pos, row: r})
	}
	if len(unparsable) > 0 {
		x.log.Warn("primary key positions not parsable, row order used",
			"table", us.Qualify(table), "columns", unparsable)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	pk := &schema.PrimaryKeyMeta{}
	seen := map[string]bool{}
	for _, it := range items {
		key := strings.ToLower(it.row.ColumnName)
		if seen[key] {
			continue
		}
		seen[key] = true
		if x.policy.IsColumnExcept(us, table, it.row.ColumnName) {
			return nil, keyColumnExceptedError("primary key", us, table, it.row.ColumnName, it.row.PKName)
		}
		pk.Add(it.row.ColumnName, it.row.PKName)
	}
	return pk, nil
}

func (x *Extractor) primaryKeyFromIndex(ctx context.Context, us schema.UnifiedSchema, table string) (*schema.PrimaryKeyMeta, error) {
	keys, err := x.uniqueKeys(ctx, us, table)
	if err != nil {
		return nil, err
	}
	pk := &schema.PrimaryKeyMeta{}
	k, ok := keys.Get(accessPrimaryKeyIndex)
	if !ok {
		return pk, nil
	}
	for _, col := range k.ColumnNames() {
		pk.Add(col, accessPrimaryKeyIndex)
	}
	return pk, nil
}

// UniqueKeys returns the unique keys of a table other than the primary key:
// a key whose columns equal the primary key columns is the primary key's
// own index and is removed. Keys touching an excepted column are dropped.
func (x *Extractor) UniqueKeys(ctx context.Context, us schema.UnifiedSchema, table string, primaryKey []string) (*schema.KeyMap, error) {
	keys, err := x.uniqueKeys(ctx, us, table)
	if err != nil {
		return nil, err
	}
	RemovePrimaryKeyMatch(keys, primaryKey)
	return keys, nil
}

func (x *Extractor) uniqueKeys(ctx context.Context, us schema.UnifiedSchema, table string) (*schema.KeyMap, error) {
	rows, err := x.indexInfo(ctx, us, table, true)
	if err != nil {
		return nil, fmt.Errorf("reading unique keys of %s: %w", us.Qualify(table), err)
	}
	return x.collectKeys(us, table, rows, func(r dbmeta.IndexRow) bool { return !r.NonUnique }), nil
}

// collectKeys builds a key map from index rows accepted by keep.
func (x *Extractor) collectKeys(us schema.UnifiedSchema, table string, rows []dbmeta.IndexRow, keep func(dbmeta.IndexRow) bool) *schema.KeyMap {
	keys := schema.NewKeyMap()
	excepted := map[string]bool{}
	var skipped []string
	for _, r := range rows {
		if !keep(r) {
			continue
		}
		name, col := strings.TrimSpace(r.IndexName), strings.TrimSpace(r.ColumnName)
		if name == "" || col == "" {
			skipped = append(skipped, fmt.Sprintf("%s(%s)", r.IndexName, r.ColumnName))
			continue
		}
		pos, err := strconv.Atoi(strings.TrimSpace(r.OrdinalPosition))
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s(%s@%s)", name, col, r.OrdinalPosition))
			continue
		}
		if x.policy.IsColumnExcept(us, table, col) {
			excepted[name] = true
		}
		keys.Put(name, pos, col)
	}
	if len(skipped) > 0 {
		x.log.Warn("index rows without name, column or position skipped", "table", us.Qualify(table), "rows", skipped)
	}
	for _, name := range keys.Names() {
		if excepted[name] {
			x.log.Debug("key on excepted column dropped", "table", us.Qualify(table), "key", name)
			keys.Remove(name)
		}
	}
	return keys
}

// indexInfo reads index rows with the case retry. Oracle's driver rejects
// some names (non-ASCII) unquoted for this call only, so a failure is
// retried once with the name double-quoted.
func (x *Extractor) indexInfo(ctx context.Context, us schema.UnifiedSchema, table string, unique bool) ([]dbmeta.IndexRow, error) {
	return fetchWithRetry(x, "indexInfo", table, func(name string) ([]dbmeta.IndexRow, error) {
		rows, err := x.meta.IndexInfo(ctx, us.Catalog, us.Schema, name, unique)
		if err == nil || !x.engine().NeedsQuoteRetryForIndexInfo() || strings.HasPrefix(name, `"`) {
			return rows, err
		}
		quoted := `"` + name + `"`
		x.log.Debug("index info failed, retrying quoted", "table", name, "error", err)
		rows, qerr := x.meta.IndexInfo(ctx, us.Catalog, us.Schema, quoted, unique)
		if qerr != nil {
			return nil, err
		}
		return rows, nil
	})
}

// RemovePrimaryKeyMatch removes every key whose ordered columns equal the
// primary key columns, ignoring case. Applying it again changes nothing.
func RemovePrimaryKeyMatch(keys *schema.KeyMap, primaryKey []string) {
	if len(primaryKey) == 0 {
		return
	}
	for _, k := range keys.Keys() {
		if equalFoldAll(k.ColumnNames(), primaryKey) {
			keys.Remove(k.Name)
		}
	}
}

func equalFoldAll(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
