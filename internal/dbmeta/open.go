package dbmeta

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	goora "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"

	"github.com/dbflute/dbflute-core-sub011/internal/config"
)

// Source is an open data source with its metadata reader.
type Source struct {
	Engine Engine
	DB     *sql.DB
	Meta   MetaData
	pool   *pgxpool.Pool
}

// Close releases the connection.
func (s *Source) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	err := s.DB.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	s.DB = nil
	return err
}

// Open connects to the configured database and returns its metadata reader.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Source, error) {
	e, err := ParseEngine(cfg.Type)
	if err != nil {
		return nil, err
	}

	src := &Source{Engine: e}
	switch e {
	case PostgreSQL, H2:
		// H2 is reached through its PostgreSQL server mode.
		poolCfg, err := pgxpool.ParseConfig(postgresConnString(cfg))
		if err != nil {
			return nil, fmt.Errorf("parsing connection string: %w", err)
		}
		// metadata reads are sequential
		poolCfg.MaxConns = 1
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to %s: %w", e, err)
		}
		src.pool = pool
		src.DB = stdlib.OpenDBFromPool(pool)
	case Oracle, MySQL, SQLServer, SQLite:
		driver, dsn := sqlConnString(e, cfg)
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("opening %s connection: %w", e, err)
		}
		db.SetMaxOpenConns(1)
		src.DB = db
	default:
		return nil, &UnsupportedEngineError{Name: cfg.Type}
	}

	if err := src.DB.PingContext(ctx); err != nil {
		src.Close()
		return nil, fmt.Errorf("pinging %s: %w", e, err)
	}

	src.Meta, err = New(e, src.DB, Identity(e, cfg))
	if err != nil {
		src.Close()
		return nil, err
	}
	return src, nil
}

// New returns the metadata reader of an engine over an open connection.
func New(e Engine, db *sql.DB, identity string) (MetaData, error) {
	switch e {
	case Oracle:
		return NewOracle(db, identity), nil
	case SQLite:
		return NewSQLite(db, identity), nil
	case PostgreSQL, MySQL, SQLServer, H2:
		return NewInfoSchema(e, db, identity)
	}
	return nil, &UnsupportedEngineError{Name: string(e)}
}

// Identity names a data source without its credentials.
func Identity(e Engine, cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return string(e) + ":" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(cfg.DSN)).String()
	}
	return fmt.Sprintf("%s://%s/%s", e, net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), cfg.Database)
}

func postgresConnString(cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	connStr := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s default_query_exec_mode=simple_protocol",
		cfg.Host, port, cfg.Database, cfg.Username, cfg.Password,
	)
	if cfg.SSL {
		connStr += " sslmode=require"
	} else {
		connStr += " sslmode=disable"
	}
	return connStr
}

func sqlConnString(e Engine, cfg config.DatabaseConfig) (driver, dsn string) {
	switch e {
	case Oracle:
		if cfg.DSN != "" {
			return "oracle", cfg.DSN
		}
		port := cfg.Port
		if port == 0 {
			port = 1521
		}
		return "oracle", goora.BuildUrl(cfg.Host, port, cfg.Database, cfg.Username, cfg.Password, nil)
	case MySQL:
		if cfg.DSN != "" {
			return "mysql", cfg.DSN
		}
		port := cfg.Port
		if port == 0 {
			port = 3306
		}
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
		mc.DBName = cfg.Database
		return "mysql", mc.FormatDSN()
	case SQLServer:
		if cfg.DSN != "" {
			return "sqlserver", cfg.DSN
		}
		port := cfg.Port
		if port == 0 {
			port = 1433
		}
		q := url.Values{}
		q.Set("database", cfg.Database)
		if !cfg.SSL {
			q.Set("encrypt", "disable")
		}
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
			RawQuery: q.Encode(),
		}
		return "sqlserver", u.String()
	default:
		if cfg.DSN != "" {
			return "sqlite", cfg.DSN
		}
		return "sqlite", cfg.Database
	}
}
