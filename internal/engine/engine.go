// Package engine runs one extraction: it opens the data source, drives the
// extractors in dependency order and collects the result in a snapshot.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
	"github.com/dbflute/dbflute-core-sub011/internal/dbmeta"
	"github.com/dbflute/dbflute-core-sub011/internal/extractor"
	"github.com/dbflute/dbflute-core-sub011/internal/lock"
	"github.com/dbflute/dbflute-core-sub011/internal/logging"
	"github.com/dbflute/dbflute-core-sub011/internal/pmbean"
	"github.com/dbflute/dbflute-core-sub011/internal/procedure"
	"github.com/dbflute/dbflute-core-sub011/internal/schema"
	"github.com/dbflute/dbflute-core-sub011/internal/target"
	"github.com/dbflute/dbflute-core-sub011/internal/typemap"
)

// SnapshotFile is the name of the snapshot written under the output directory.
const SnapshotFile = "schema-snapshot.yaml"

// Engine is the extraction engine shared by all commands.
type Engine struct {
	Config *config.Config
	Logger *slog.Logger

	// assist info is expensive to read and lives as long as the engine
	assist *procedure.AssistCache
}

// New creates an engine with the given config and logger.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{Config: cfg, Logger: logger, assist: procedure.NewAssistCache()}
}

// Open connects to the configured database.
func (e *Engine) Open(ctx context.Context) (*dbmeta.Source, error) {
	if e.Config == nil {
		return nil, fmt.Errorf("no config set")
	}
	e.Logger.Info("connecting", "engine", e.Config.Database.Type, "host", e.Config.Database.Host,
		"database", e.Config.Database.Database)
	src, err := dbmeta.Open(ctx, e.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return src, nil
}

// run holds the collaborators of one extraction over one metadata reader.
type run struct {
	meta       dbmeta.MetaData
	policy     *target.Policy
	mapper     *typemap.Mapper
	tables     *extractor.Extractor
	procedures *procedure.Extractor
	log        *slog.Logger
}

func (e *Engine) newRun(meta dbmeta.MetaData) (*run, error) {
	if e.Config == nil {
		return nil, fmt.Errorf("no config set")
	}
	mapper, err := typemap.New(meta.Engine(), e.Config.TypeMapping)
	if err != nil {
		return nil, err
	}
	log := e.Logger.With("source", meta.Identity())
	policy := target.New(meta.Engine(), e.Config)
	ukFKs := extractor.NewUniqueKeyFKCache(meta, policy, e.Config.ForeignKeys.UniqueKeyBased, log)
	return &run{
		meta:       meta,
		policy:     policy,
		mapper:     mapper,
		tables:     extractor.New(meta, policy, mapper, ukFKs, log),
		procedures: procedure.New(meta, policy, mapper, e.Config.Procedure, e.assist, log),
		log:        log,
	}, nil
}

// Extract opens the data source and extracts everything.
func (e *Engine) Extract(ctx context.Context) (*schema.Snapshot, error) {
	src, err := e.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return e.ExtractFrom(ctx, src.Meta)
}

// ExtractFrom extracts the tables of every target schema with their columns,
// keys, indexes and foreign keys, then the procedures.
func (e *Engine) ExtractFrom(ctx context.Context, meta dbmeta.MetaData) (*schema.Snapshot, error) {
	r, err := e.newRun(meta)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	set, err := r.listTables(ctx)
	if err != nil {
		return nil, err
	}

	snap := &schema.Snapshot{
		Engine:     string(meta.Engine()),
		Database:   e.Config.Database.Database,
		MainSchema: r.policy.MainSchema(),
	}
	for _, t := range set.Tables() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ts, err := r.table(ctx, t, set)
		if err != nil {
			return nil, err
		}
		snap.Tables = append(snap.Tables, ts)
	}

	snap.Procedures, err = r.procedures.AvailableProcedures(ctx, false)
	if err != nil {
		return nil, err
	}

	r.log.Info("extraction complete", "tables", len(snap.Tables), "procedures", len(snap.Procedures),
		"duration", time.Since(start).Round(time.Millisecond))
	return snap, nil
}

// Tables lists the target tables of every schema without reading their details.
func (e *Engine) Tables(ctx context.Context, meta dbmeta.MetaData) ([]*schema.TableMeta, error) {
	r, err := e.newRun(meta)
	if err != nil {
		return nil, err
	}
	set, err := r.listTables(ctx)
	if err != nil {
		return nil, err
	}
	return set.Tables(), nil
}

// Procedures extracts the procedures. With force the procedure switch of
// the config is ignored, as parameter-bean setup needs them regardless.
func (e *Engine) Procedures(ctx context.Context, meta dbmeta.MetaData, force bool) ([]*schema.ProcedureMeta, error) {
	r, err := e.newRun(meta)
	if err != nil {
		return nil, err
	}
	return r.procedures.AvailableProcedures(ctx, force)
}

// ParameterBeans extracts the procedures and sets up their parameter beans.
func (e *Engine) ParameterBeans(ctx context.Context, meta dbmeta.MetaData) (*pmbean.Result, error) {
	r, err := e.newRun(meta)
	if err != nil {
		return nil, err
	}
	procs, err := r.procedures.AvailableProcedures(ctx, true)
	if err != nil {
		return nil, err
	}
	res := pmbean.New(r.mapper, r.log).Build(procs)
	r.log.Info("parameter beans set up", "beans", len(res.Beans), "entities", len(res.Entities))
	return res, nil
}

// WriteSnapshot writes the snapshot into the output directory under the run
// lock and returns the file path.
func (e *Engine) WriteSnapshot(snap *schema.Snapshot) (string, error) {
	dir := config.ExpandHome(e.Config.Output.Directory)
	lockPath := lock.PathFor(dir)
	if err := lock.Acquire(lockPath); err != nil {
		return "", err
	}
	defer func() {
		if err := lock.Release(lockPath); err != nil {
			e.Logger.Warn("releasing lock", "path", lockPath, "error", err)
		}
	}()

	path := filepath.Join(dir, SnapshotFile)
	if err := snap.WriteYAML(path); err != nil {
		return "", err
	}
	return path, nil
}

func (r *run) listTables(ctx context.Context) (*extractor.TableSet, error) {
	set := extractor.NewTableSet(r.log)
	for _, us := range r.policy.Schemas() {
		tables, err := r.tables.ListTables(ctx, us)
		if err != nil {
			return nil, err
		}
		r.log.Debug("tables listed", "schema", us.Identity(), "count", len(tables))
		set.Add(tables...)
	}
	return set, nil
}

// table reads the details of one table. The unique keys need the primary
// key, the indexes need the unique keys and the foreign keys need the whole
// table set, so the order is fixed.
func (r *run) table(ctx context.Context, t *schema.TableMeta, set *extractor.TableSet) (*schema.TableSnapshot, error) {
	us, name := t.Schema, t.Name
	ts := &schema.TableSnapshot{Table: t}

	var err error
	if ts.Columns, err = r.tables.ListColumns(ctx, us, name); err != nil {
		return nil, err
	}
	if ts.PrimaryKey, err = r.tables.PrimaryKey(ctx, us, name); err != nil {
		return nil, err
	}
	if ts.UniqueKeys, err = r.tables.UniqueKeys(ctx, us, name, ts.PrimaryKey.ColumnNames()); err != nil {
		return nil, err
	}
	if ts.Indexes, err = r.tables.Indexes(ctx, us, name, ts.UniqueKeys); err != nil {
		return nil, err
	}
	if ts.ForeignKeys, err = r.tables.ForeignKeys(ctx, us, name, set); err != nil {
		return nil, err
	}
	return ts, nil
}
