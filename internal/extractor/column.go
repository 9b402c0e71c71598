package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// ListColumns lists the columns of a table. A column reported twice (Oracle
// synonyms over several tables) keeps its first row; excepted columns are
// left out.
func (x *Extractor) ListColumns(ctx context.Context, us schema.UnifiedSchema, table string) ([]*schema.ColumnMeta, error) {
	rows, err := fetchWithRetry(x, "columns", table, func(name string) ([]dbmeta.ColumnRow, error) {
		return x.meta.Columns(ctx, us.Catalog, us.Schema, name)
	})
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", us.Qualify(table), err)
	}

	var (
		columns []*schema.ColumnMeta
		seen    = map[string]bool{}
		dups    []string
	)
	for _, r := range rows {
		key := strings.ToLower(r.ColumnName)
		if seen[key] {
			dups = append(dups, r.ColumnName)
			continue
		}
		seen[key] = true
		if x.policy.IsColumnExcept(us, table, r.ColumnName) {
			continue
		}
		c := &schema.ColumnMeta{
			TableName:     table,
			ColumnName:    r.ColumnName,
			JDBCType:      r.DataType,
			DBTypeName:    r.TypeName,
			Size:          r.ColumnSize,
			DecimalDigits: r.DecimalDigits,
			Required:      !r.Nullable,
			Comment:       r.Remarks,
			DefaultValue:  NormalizeDefault(x.engine(), r.Default),
		}
		if x.mapper != nil {
			c.JDBCTypeName = x.mapper.JDBCType(r.DataType, r.TypeName)
			c.ProgramType = x.mapper.ProgramType(c.JDBCTypeName, r.TypeName, r.ColumnSize, r.DecimalDigits)
		}
		columns = append(columns, c)
	}
	if len(dups) > 0 {
		x.log.Warn("duplicate columns skipped", "table", us.Qualify(table), "columns", dups)
	}
	return columns, nil
}

// NormalizeDefault cleans a reported default value: it is trimmed, Oracle's
// literal null means no default, and one layer of parentheses and then one
// layer of single quotes are removed, so ('foo') becomes foo.
func NormalizeDefault(e dbmeta.Engine, v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if e.HasNullDefaultLiteral() && strings.EqualFold(s, "null") {
		return nil
	}
	s = stripLayer(s, '(', ')')
	s = stripLayer(s, '\'', '\'')
	return &s
}

func stripLayer(s string, open, close byte) string {
	if len(s) >= 2 && s[0] == open && s[len(s)-1] == close {
		return s[1 : len(s)-1]
	}
	return s
}
