package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sticlo/ProyectoCobra/internal/domain/usuario"
)

const driverPostgres = "postgres"

// uniqueViolation is the PostgreSQL SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

const createUsuariosTable = `
CREATE TABLE IF NOT EXISTS usuarios (
	id        TEXT PRIMARY KEY,
	nombre    TEXT NOT NULL,
	correo    TEXT NOT NULL,
	creado_en TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps usuarios in a PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and makes sure the usuarios table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createUsuariosTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create usuarios table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// List implements Store.List.
func (s *PostgresStore) List(ctx context.Context) (out []usuario.Usuario, err error) {
	defer func(start time.Time) { observe(driverPostgres, "list", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `SELECT id, nombre, correo, creado_en FROM usuarios ORDER BY creado_en, id`)
	if err != nil {
		return nil, fmt.Errorf("list usuarios: %w", err)
	}
	defer rows.Close()

	out = []usuario.Usuario{}
	for rows.Next() {
		var u usuario.Usuario
		if err := rows.Scan(&u.ID, &u.Nombre, &u.Correo, &u.CreadoEn); err != nil {
			return nil, fmt.Errorf("scan usuario: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usuarios: %w", err)
	}
	return out, nil
}

// Get implements Store.Get.
func (s *PostgresStore) Get(ctx context.Context, id string) (u usuario.Usuario, err error) {
	defer func(start time.Time) { observe(driverPostgres, "get", start, err) }(time.Now())

	err = s.pool.QueryRow(ctx,
		`SELECT id, nombre, correo, creado_en FROM usuarios WHERE id = $1`, id,
	).Scan(&u.ID, &u.Nombre, &u.Correo, &u.CreadoEn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return usuario.Usuario{}, ErrNotFound
		}
		return usuario.Usuario{}, fmt.Errorf("get usuario: %w", err)
	}
	return u, nil
}

// Create implements Store.Create.
func (s *PostgresStore) Create(ctx context.Context, u usuario.Usuario) (err error) {
	defer func(start time.Time) { observe(driverPostgres, "create", start, err) }(time.Now())

	_, err = s.pool.Exec(ctx,
		`INSERT INTO usuarios (id, nombre, correo, creado_en) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Nombre, u.Correo, u.CreadoEn,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateID
		}
		return fmt.Errorf("create usuario: %w", err)
	}
	return nil
}

// Update implements Store.Update.
func (s *PostgresStore) Update(ctx context.Context, u usuario.Usuario) (err error) {
	defer func(start time.Time) { observe(driverPostgres, "update", start, err) }(time.Now())

	result, err := s.pool.Exec(ctx,
		`UPDATE usuarios SET nombre = $2, correo = $3 WHERE id = $1`,
		u.ID, u.Nombre, u.Correo,
	)
	if err != nil {
		return fmt.Errorf("update usuario: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete implements Store.Delete.
func (s *PostgresStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe(driverPostgres, "delete", start, err) }(time.Now())

	result, err := s.pool.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete usuario: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count implements Store.Count.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM usuarios`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count usuarios: %w", err)
	}
	return n, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
