// Package postgres mirrors accepted readings into a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/fill-monitor/internal/utils"
	"github.com/and161185/fill-monitor/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `CREATE TABLE IF NOT EXISTS readings (
	id           BIGSERIAL PRIMARY KEY,
	received_at  TIMESTAMPTZ NOT NULL,
	distance_cm  DOUBLE PRECISION NOT NULL,
	fill_percent INTEGER NOT NULL
)`

const insertReading = `INSERT INTO readings (received_at, distance_cm, fill_percent) VALUES ($1, $2, $3)`

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Journal stores readings in the readings table.
type Journal struct {
	db db
}

// NewJournal connects to dsn and makes sure the readings table exists.
func NewJournal(ctx context.Context, dsn string) (*Journal, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	j := &Journal{db: pool}
	if err := j.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) init(ctx context.Context) error {
	err := utils.WithRetry(ctx, func() error {
		_, err := j.db.Exec(ctx, createTable)
		return err
	})
	if err != nil {
		return fmt.Errorf("create readings table: %w", err)
	}
	return nil
}

// Insert appends r to the table, retrying transient failures.
func (j *Journal) Insert(ctx context.Context, r model.Reading) error {
	err := utils.WithRetry(ctx, func() error {
		_, err := j.db.Exec(ctx, insertReading, r.Timestamp, r.Distance, r.Fill)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.Ping(ctx)
}

// Close releases the pool.
func (j *Journal) Close() {
	j.db.Close()
}
