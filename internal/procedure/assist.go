package procedure

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

// AssistInfo is the engine-specific procedure information that driver
// metadata lacks: overload numbers, user-defined types and source code.
type AssistInfo struct {
	// overloads by SCHEMA|PACKAGE|PROCEDURE|ARGUMENT
	overloads map[string][]int
	arrays    map[string]dbmeta.ArrayTypeRow
	structs   map[string][]dbmeta.StructAttrRow
	// sources by SCHEMA|NAME
	sources map[string]*schema.ProcedureSourceInfo
}

func newAssistInfo() *AssistInfo {
	return &AssistInfo{
		overloads: map[string][]int{},
		arrays:    map[string]dbmeta.ArrayTypeRow{},
		structs:   map[string][]dbmeta.StructAttrRow{},
		sources:   map[string]*schema.ProcedureSourceInfo{},
	}
}

func assistKey(parts ...string) string {
	return strings.ToUpper(strings.Join(parts, "|"))
}

// Source returns the source info of a procedure or package.
func (a *AssistInfo) Source(schemaName, name string) (*schema.ProcedureSourceInfo, bool) {
	s, ok := a.sources[assistKey(schemaName, name)]
	return s, ok
}

// AssistCache keeps the assist info per data source and engine for the
// lifetime of the process. Concurrent first loads of one key share a single
// load; failed loads are not kept.
type AssistCache struct {
	mu    sync.RWMutex
	infos map[string]*AssistInfo
	group singleflight.Group
}

// NewAssistCache creates an empty cache.
func NewAssistCache() *AssistCache {
	return &AssistCache{infos: map[string]*AssistInfo{}}
}

func (c *AssistCache) lookup(key string) (*AssistInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.infos[key]
	return info, ok
}

// Get returns the cached info of (identity, engine), loading it on first use.
func (c *AssistCache) Get(identity string, e dbmeta.Engine, load func() (*AssistInfo, error)) (*AssistInfo, error) {
	key := identity + "|" + string(e)
	if info, ok := c.lookup(key); ok {
		return info, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if info, ok := c.lookup(key); ok {
			return info, nil
		}
		info, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.infos[key] = info
		c.mu.Unlock()
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*AssistInfo), nil
}

// Len returns the number of loaded entries.
func (c *AssistCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.infos)
}

func (x *Extractor) applyAssistInfo(ctx context.Context, procs []*schema.ProcedureMeta) error {
	if len(procs) == 0 {
		return nil
	}
	info, err := x.assist.Get(x.meta.Identity(), x.engine(), func() (*AssistInfo, error) {
		return x.loadAssistInfo(ctx)
	})
	if err != nil {
		return fmt.Errorf("loading procedure assist info: %w", err)
	}
	switch x.engine() {
	case dbmeta.Oracle:
		x.applyOverloads(procs, info)
		resolver := newTypeResolver(info)
		for _, p := range procs {
			for _, c := range p.Columns {
				resolver.resolveColumn(c)
			}
		}
		x.applySources(procs, info)
	case dbmeta.MySQL, dbmeta.PostgreSQL:
		x.applySources(procs, info)
		for _, p := range procs {
			if p.Source == nil {
				p.Source = &schema.ProcedureSourceInfo{}
			}
			p.Source.ParameterHash = ParameterHash(p)
		}
	case dbmeta.DB2, dbmeta.H2:
		x.applySources(procs, info)
	}
	return nil
}

// loadAssistInfo reads the assist info of every configured schema. A query
// the database refuses leaves its part empty.
func (x *Extractor) loadAssistInfo(ctx context.Context) (*AssistInfo, error) {
	info := newAssistInfo()
	e := x.engine()
	schemas := x.policy.Schemas()

	if e == dbmeta.Oracle {
		if r, ok := x.meta.(dbmeta.ArgumentReader); ok {
			for _, us := range schemas {
				rows, err := r.ProcedureArguments(ctx, us.Schema)
				if err != nil {
					x.log.Warn("procedure arguments unavailable", "schema", us.Identity(), "error", err)
					continue
				}
				info.addArguments(rows)
			}
		}
		if r, ok := x.meta.(dbmeta.TypeReader); ok {
			for _, us := range schemas {
				arrays, err := r.ArrayTypes(ctx, us.Schema)
				if err != nil {
					x.log.Warn("array types unavailable", "schema", us.Identity(), "error", err)
				}
				structs, serr := r.StructAttributes(ctx, us.Schema)
				if serr != nil {
					x.log.Warn("struct types unavailable", "schema", us.Identity(), "error", serr)
				}
				for _, name := range info.addTypes(arrays, structs) {
					x.log.Warn("same-name type in another schema ignored", "type", name, "schema", us.Identity())
				}
			}
		}
	}

	switch e {
	case dbmeta.Oracle, dbmeta.DB2, dbmeta.H2, dbmeta.MySQL, dbmeta.PostgreSQL:
		if r, ok := x.meta.(dbmeta.SourceReader); ok {
			for _, us := range schemas {
				rows, err := r.ProcedureSources(ctx, us.Catalog, us.Schema)
				if err != nil {
					x.log.Warn("procedure sources unavailable", "schema", us.Identity(), "error", err)
					continue
				}
				info.addSources(us, rows)
			}
		}
	}
	return info, nil
}

func (a *AssistInfo) addArguments(rows []dbmeta.ArgumentRow) {
	for _, r := range rows {
		if r.Overload == nil || r.DataLevel != 0 || r.ArgumentName == "" {
			continue
		}
		key := assistKey(r.Owner, r.Package, r.Procedure, r.ArgumentName)
		if !containsInt(a.overloads[key], *r.Overload) {
			a.overloads[key] = append(a.overloads[key], *r.Overload)
		}
	}
}

// addTypes merges the types of one schema into the lookup. Type names are
// unique across schemas; a name seen before keeps its first definition and
// is returned.
func (a *AssistInfo) addTypes(arrays []dbmeta.ArrayTypeRow, structs []dbmeta.StructAttrRow) []string {
	var ignored []string
	for _, r := range arrays {
		k := typeKey(r.TypeName)
		if prev, ok := a.arrays[k]; ok {
			if !strings.EqualFold(prev.Owner, r.Owner) {
				ignored = append(ignored, r.TypeName)
			}
			continue
		}
		a.arrays[k] = r
	}
	pending := map[string][]dbmeta.StructAttrRow{}
	var order []string
	for _, r := range structs {
		k := typeKey(r.TypeName)
		if _, ok := pending[k]; !ok {
			order = append(order, k)
		}
		pending[k] = append(pending[k], r)
	}
	for _, k := range order {
		attrs := pending[k]
		if prev, ok := a.structs[k]; ok {
			if !strings.EqualFold(prev[0].Owner, attrs[0].Owner) {
				ignored = append(ignored, attrs[0].TypeName)
			}
			continue
		}
		sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Position < attrs[j].Position })
		a.structs[k] = attrs
	}
	return ignored
}

func (a *AssistInfo) addSources(us schema.UnifiedSchema, rows []dbmeta.SourceRow) {
	bodies := map[string][]dbmeta.SourceRow{}
	var order []string
	for _, r := range rows {
		owner := r.Schema
		if owner == "" {
			owner = us.Schema
		}
		k := assistKey(owner, r.Name)
		if _, ok := bodies[k]; !ok {
			order = append(order, k)
		}
		bodies[k] = append(bodies[k], r)
	}
	for _, k := range order {
		lines := bodies[k]
		// a package keeps its specification and body apart
		kinds := map[string]int{}
		for _, l := range lines {
			if _, ok := kinds[l.Type]; !ok {
				kinds[l.Type] = len(kinds)
			}
		}
		sort.SliceStable(lines, func(i, j int) bool {
			li, lj := lines[i], lines[j]
			if kinds[li.Type] != kinds[lj.Type] {
				return kinds[li.Type] < kinds[lj.Type]
			}
			return li.Line < lj.Line
		})
		var sb strings.Builder
		for _, l := range lines {
			sb.WriteString(l.Text)
			if !strings.HasSuffix(l.Text, "\n") {
				sb.WriteByte('\n')
			}
		}
		code := strings.TrimRight(sb.String(), "\n")
		a.sources[k] = &schema.ProcedureSourceInfo{
			SourceCode: code,
			SourceLine: strings.Count(code, "\n") + 1,
		}
	}
}

// applyOverloads fills the overload number of columns the driver left
// without one, when the argument name belongs to a single overload.
func (x *Extractor) applyOverloads(procs []*schema.ProcedureMeta, info *AssistInfo) {
	for _, p := range procs {
		if p.IsIncludedByDBLink() {
			continue
		}
		for _, c := range p.Columns {
			if c.OverloadNo != nil {
				continue
			}
			nos := info.overloads[assistKey(p.Schema.Schema, p.Package, p.Name, c.Name)]
			switch len(nos) {
			case 0:
			case 1:
				no := nos[0]
				c.OverloadNo = &no
			default:
				x.log.Debug("argument in several overloads", "procedure", p.QualifiedName(), "column", c.Name, "overloads", nos)
			}
		}
	}
}

func (x *Extractor) applySources(procs []*schema.ProcedureMeta, info *AssistInfo) {
	for _, p := range procs {
		name := p.Name
		if p.Package != "" {
			name = p.Package
		}
		if src, ok := info.Source(p.Schema.Schema, name); ok {
			s := *src
			p.Source = &s
		}
	}
}

// ParameterHash fingerprints the full column definitions of a procedure.
// Engines without overload numbers use it to tell overloads apart.
func ParameterHash(p *schema.ProcedureMeta) string {
	var b strings.Builder
	for _, c := range p.Columns {
		fmt.Fprintf(&b, "%s:%s:%d:%s:%s:%s;", c.Name, c.ColumnType, c.JDBCType, c.DBTypeName,
			intString(c.Size), intString(c.DecimalDigits))
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(b.String())).String()
}

func intString(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
