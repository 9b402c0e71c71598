package extractor

import (
	"context"
	"fmt"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// Indexes returns the non-unique indexes of a table. Drivers also list unique
// constraints as plain indexes, so names present in uniqueKeys are left out.
func (x *Extractor) Indexes(ctx context.Context, us schema.UnifiedSchema, table string, uniqueKeys *schema.KeyMap) (*schema.KeyMap, error) {
	rows, err := x.indexInfo(ctx, us, table, false)
	if err != nil {
		return nil, fmt.Errorf("reading indexes of %s: %w", us.Qualify(table), err)
	}
	return x.collectKeys(us, table, rows, func(r dbmeta.IndexRow) bool {
		return r.NonUnique && !uniqueKeys.Has(r.IndexName)
	}), nil
}
