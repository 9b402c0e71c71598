package procedure

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/notice"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// ReturnValueName names a return column the driver left blank.
const ReturnValueName = "returnValue"

func (x *Extractor) procedureColumns(ctx context.Context, p *schema.ProcedureMeta, catalog string) ([]*schema.ProcedureColumnMeta, error) {
	rows, err := x.meta.ProcedureColumns(ctx, catalog, p.Schema.Schema, p.Name, p.SpecificName)
	if err != nil {
		return nil, fmt.Errorf("reading columns of procedure %s: %w", p.QualifiedName(), err)
	}

	var (
		cols []*schema.ProcedureColumnMeta
		seen = map[string]bool{}
		dups []string
	)
	for _, r := range rows {
		ctype, err := schema.ParseProcedureColumnType(r.ColumnType)
		if err != nil {
			return nil, notice.New("Unknown procedure column type reported by the driver.").
				With("Procedure", p.QualifiedName()).
				With("Column", r.ColumnName).
				With("Type Code", fmt.Sprint(r.ColumnType)).
				WithCause(err)
		}
		name := strings.TrimSpace(r.ColumnName)
		if name == "" && ctype == schema.ColumnReturn {
			name = ReturnValueName
		}
		key := strings.ToLower(name)
		if seen[key] {
			dups = append(dups, name)
			continue
		}
		seen[key] = true

		jdbc := dbmeta.TypeOther
		if r.DataType != nil {
			jdbc = *r.DataType
		} else {
			x.log.Debug("procedure column type unavailable, using OTHER", "procedure", p.QualifiedName(), "column", name)
		}
		cols = append(cols, &schema.ProcedureColumnMeta{
			Name:          name,
			ColumnType:    ctype,
			JDBCType:      jdbc,
			DBTypeName:    r.TypeName,
			Size:          columnSize(r.Precision, r.Length),
			DecimalDigits: r.Scale,
			Comment:       r.Remarks,
			OverloadNo:    r.OverloadNo,
		})
	}
	if len(dups) > 0 {
		x.log.Warn("duplicate procedure columns skipped", "procedure", p.QualifiedName(), "columns", dups)
	}
	if x.engine() == dbmeta.PostgreSQL {
		cols = x.removeRedundantCursorReturn(p, cols)
	}
	return cols, nil
}

// removeRedundantCursorReturn drops the cursor return value of a PostgreSQL
// function that also has an out cursor: the return only mirrors it.
func (x *Extractor) removeRedundantCursorReturn(p *schema.ProcedureMeta, cols []*schema.ProcedureColumnMeta) []*schema.ProcedureColumnMeta {
	var outCursor bool
	for _, c := range cols {
		if (c.ColumnType == schema.ColumnOut || c.ColumnType == schema.ColumnInOut) && x.isCursor(c) {
			outCursor = true
			break
		}
	}
	if !outCursor {
		return cols
	}
	kept := cols[:0]
	for _, c := range cols {
		if c.ColumnType == schema.ColumnReturn && x.isCursor(c) {
			x.log.Debug("cursor return removed (out cursor exists)", "procedure", p.QualifiedName(), "column", c.Name)
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func (x *Extractor) isCursor(c *schema.ProcedureColumnMeta) bool {
	return x.mapper.IsConceptTypeCursor(c.JDBCType, c.DBTypeName)
}

// columnSize prefers the precision and falls back to the length, as drivers
// report character sizes in one and numeric sizes in the other.
func columnSize(precision, length *int) *int {
	if precision != nil && *precision > 0 {
		return precision
	}
	return length
}
