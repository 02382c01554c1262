package sources

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/supplierdash/internal/core"
)

func init() {
	core.RegisterSource(core.SourceDefinition{
		Kind:    "postgres",
		Label:   "PostgreSQL table",
		Schemes: []string{"postgres", "postgresql"},
		Open:    openPostgres,
	})
}

// postgresSource reads every row of one table. The pool is created on first
// use. The identity marker is built from the table's write counters in
// pg_stat_user_tables, so it changes after inserts, updates and deletes.
type postgresSource struct {
	dsn    string
	table  string
	handle string
	opts   core.PoolOptions

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func openPostgres(spec core.SourceSpec) (core.Source, error) {
	poolConfig, err := pgxpool.ParseConfig(spec.Location)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	table := spec.Table
	if table == "" {
		table = DefaultTable
	}

	cc := poolConfig.ConnConfig
	handle := fmt.Sprintf("postgres:%s:%d/%s#%s", cc.Host, cc.Port, cc.Database, table)

	return &postgresSource{
		dsn:    spec.Location,
		table:  table,
		handle: handle,
		opts:   spec.Pool,
	}, nil
}

func (s *postgresSource) Handle() string { return s.handle }

// connect returns the pool, creating it on first call.
func (s *postgresSource) connect(ctx context.Context) (*pgxpool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		return s.pool, nil
	}

	poolConfig, err := pgxpool.ParseConfig(s.dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if s.opts.MaxConns > 0 {
		poolConfig.MaxConns = s.opts.MaxConns
	}
	if s.opts.MinConns > 0 {
		poolConfig.MinConns = s.opts.MinConns
	}
	if s.opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = s.opts.MaxConnLifetime
	}
	if s.opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = s.opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	s.pool = pool
	slog.Info("database pool created", "url", redactURL(s.dsn), "table", s.table)
	return pool, nil
}

func (s *postgresSource) Identity(ctx context.Context) (core.Identity, error) {
	pool, err := s.connect(ctx)
	if err != nil {
		return core.Identity{}, err
	}

	var writes, live int64
	err = pool.QueryRow(ctx, `
		SELECT COALESCE(n_tup_ins + n_tup_upd + n_tup_del, 0), COALESCE(n_live_tup, 0)
		FROM pg_stat_user_tables
		WHERE schemaname = current_schema() AND relname = $1`,
		s.table,
	).Scan(&writes, &live)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// Views and foreign tables carry no counters; fall back to TTL expiry.
		return core.Identity{Handle: s.handle, Marker: "static"}, nil
	case err != nil:
		return core.Identity{}, fmt.Errorf("read table stats: %w", err)
	}

	return core.Identity{
		Handle: s.handle,
		Marker: strconv.FormatInt(writes, 10) + "-" + strconv.FormatInt(live, 10),
	}, nil
}

func (s *postgresSource) Read(ctx context.Context) (*core.RawTable, error) {
	pool, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, "SELECT * FROM "+pgx.Identifier{s.table}.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", s.table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	table := &core.RawTable{Columns: make([]string, len(fields))}
	for i, fd := range fields {
		table.Columns[i] = fd.Name
	}

	for n := 0; rows.Next(); n++ {
		if err := checkContext(ctx, n); err != nil {
			return nil, err
		}

		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		for i, v := range values {
			values[i] = pgValue(v)
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return table, nil
}

// pgValue unwraps pgx-native values that core.CellText cannot render.
func pgValue(v any) any {
	switch x := v.(type) {
	case [16]byte:
		return uuid.UUID(x).String()
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		return dv
	default:
		return v
	}
}

func (s *postgresSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

// redactURL hides the password of a connection URL for logs.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "postgres://***"
	}
	return u.Redacted()
}
