package procedure

import (
	"context"
	"strings"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/notice"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// dbLinkProcedure translates a procedure on the other side of a DB link into
// a procedure of the main schema. name is "PROC" or "PKG.PROC". Every failure
// is a configuration error: the procedure was requested explicitly.
func (x *Extractor) dbLinkProcedure(ctx context.Context, name, dbLink string) (*schema.ProcedureMeta, error) {
	fail := func(msg string) *notice.Error {
		return notice.New(msg).
			WithAdvice("Check the procedure name and the DB link of the procedure.dbLinks setting.").
			With("Procedure", name).
			With("DB Link", dbLink).
			With("Property", "procedure.dbLinks")
	}
	reader, ok := x.meta.(dbmeta.DBLinkReader)
	if !ok {
		return nil, fail("DB link procedures are not supported by the database.").With("Engine", string(x.engine()))
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(dbLink) == "" {
		return nil, fail("The DB link procedure needs both a procedure name and a DB link.")
	}

	pkg, proc := "", strings.TrimSpace(name)
	if i := strings.LastIndexByte(proc, '.'); i >= 0 {
		pkg, proc = proc[:i], proc[i+1:]
	}
	rows, err := reader.DBLinkProcedureArguments(ctx, dbLink, pkg, proc)
	if err != nil {
		return nil, fail("Failed to read the procedure through the DB link.").WithCause(err)
	}
	if len(rows) == 0 {
		return nil, fail("The procedure was not found through the DB link.")
	}

	p := &schema.ProcedureMeta{
		Schema:  x.policy.MainSchema(),
		Name:    proc,
		Package: pkg,
		Type:    schema.ProcedureNoResult,
		DBLink:  dbLink,
	}
	// Only the first overload is usable through a link.
	firstOverload := rows[0].Overload
	seen := map[string]bool{}
	for _, r := range rows {
		if r.DataLevel != 0 || !sameOverload(r.Overload, firstOverload) {
			continue
		}
		if r.Position == 0 && r.ArgumentName == "" && r.DataType == "" {
			// a procedure without arguments reports one empty row
			continue
		}
		ctype, err := schema.ParseProcedureColumnType(dbmeta.OracleColumnType(r.Position, r.InOut))
		if err != nil {
			return nil, fail("Unknown argument mode reported through the DB link.").WithCause(err)
		}
		col := &schema.ProcedureColumnMeta{
			Name:          r.ArgumentName,
			ColumnType:    ctype,
			JDBCType:      dbmeta.JDBCTypeOf(dbmeta.Oracle, r.DataType),
			DBTypeName:    linkTypeName(r),
			Size:          columnSize(r.Precision, r.Length),
			DecimalDigits: r.Scale,
			OverloadNo:    r.Overload,
		}
		if ctype == schema.ColumnReturn {
			p.Type = schema.ProcedureReturnsResult
			if col.Name == "" {
				col.Name = ReturnValueName
			}
		}
		key := strings.ToLower(col.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		p.Columns = append(p.Columns, col)
	}
	return p, nil
}

func linkTypeName(r dbmeta.ArgumentRow) string {
	if r.TypeName != "" {
		return r.TypeName
	}
	return r.DataType
}

func sameOverload(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
