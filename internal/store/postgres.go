package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/botworkspace/googlelink/internal/store/migrations"
)

// Postgres implements Store on top of a bounded pgx connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres connects to the database described by dsn, caps the pool at
// poolSize connections, runs pending schema migrations and returns the
// ready store. Callers own the store lifecycle and must Close it on
// shutdown.
func NewPostgres(ctx context.Context, dsn string, poolSize int32, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if poolSize > 0 {
		poolCfg.MaxConns = poolSize
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	logger.Info("user record store ready", "max_conns", poolCfg.MaxConns)
	return &Postgres{pool: pool, logger: logger}, nil
}

// runMigrations applies the embedded goose migrations. goose wants a
// database/sql handle, so a short-lived stdlib connection is opened
// alongside the pool.
func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// FindByPhone returns the user record for phone, or nil if not found.
func (p *Postgres) FindByPhone(ctx context.Context, phone string) (*User, error) {
	query := `
		SELECT phone, refresh_token
		FROM users
		WHERE phone = $1
	`
	u := &User{}
	var refreshToken sql.NullString
	err := p.pool.QueryRow(ctx, query, phone).Scan(&u.Phone, &refreshToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.RefreshToken = refreshToken.String
	return u, nil
}

// UpsertRefreshToken atomically inserts or replaces the refresh token for
// phone. Relies on the primary key on phone for conflict detection.
func (p *Postgres) UpsertRefreshToken(ctx context.Context, phone, refreshToken string) error {
	query := `
		INSERT INTO users (phone, refresh_token)
		VALUES ($1, $2)
		ON CONFLICT (phone)
		DO UPDATE SET refresh_token = EXCLUDED.refresh_token, updated_at = now()
	`
	if _, err := p.pool.Exec(ctx, query, phone, refreshToken); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Close drains and closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
