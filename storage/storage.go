//go:generate mockgen -destination=postgres/mocks/mock_journal.go -package=mocks github.com/and161185/fill-monitor/storage Journal

// Package storage defines where the collector keeps readings.
package storage

import (
	"context"

	"github.com/and161185/fill-monitor/model"
)

// LastReading holds the single most recent reading.
type LastReading interface {
	Set(r model.Reading)
	Get() (model.Reading, bool)
}

// Log is the durable, append-only record of every accepted reading.
type Log interface {
	Append(r model.Reading) error
	Close() error
}

// Journal is an optional secondary copy of accepted readings.
type Journal interface {
	Insert(ctx context.Context, r model.Reading) error
	Ping(ctx context.Context) error
	Close()
}
