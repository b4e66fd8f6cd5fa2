// Package archive stores closed-session transcripts for later moderator review.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhouzirui/hands-on/backend/internal/model/conversation"
)

// Archive persists transcripts.
type Archive interface {
	Save(ctx context.Context, transcript conversation.Transcript, notes string) error
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS session_transcripts (
	id           BIGSERIAL PRIMARY KEY,
	session_id   TEXT        NOT NULL,
	patient_id   TEXT        NOT NULL,
	patient_name TEXT        NOT NULL,
	language     TEXT        NOT NULL,
	closed_at    TIMESTAMPTZ NOT NULL,
	lines        JSONB       NOT NULL,
	body         TEXT        NOT NULL,
	notes        TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS session_transcripts_patient_idx ON session_transcripts (patient_id, closed_at DESC);
`

// PostgresArchive writes transcripts to a session_transcripts table.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for dsn, verifies it with a ping and ensures the schema exists.
func Connect(ctx context.Context, dsn string) (*PostgresArchive, error) {
	cfg, err := pgxpool.ParseConfig(normalizeDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return &PostgresArchive{pool: pool}, nil
}

func (a *PostgresArchive) Save(ctx context.Context, transcript conversation.Transcript, notes string) error {
	lines, err := json.Marshal(transcript.Lines)
	if err != nil {
		return fmt.Errorf("archive: encode lines: %w", err)
	}

	_, err = a.pool.Exec(ctx,
		`INSERT INTO session_transcripts (session_id, patient_id, patient_name, language, closed_at, lines, body, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		transcript.SessionID,
		transcript.PatientID,
		transcript.PatientName,
		transcript.Language,
		transcript.ClosedAt,
		string(lines),
		transcript.Text(),
		notes,
	)
	if err != nil {
		return fmt.Errorf("archive: insert transcript: %w", err)
	}
	return nil
}

// Close releases the pool.
func (a *PostgresArchive) Close() {
	a.pool.Close()
}

// normalizeDSN accepts SQLAlchemy-style schemes such as postgresql+psycopg://.
func normalizeDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if i := strings.Index(dsn, "://"); i > 0 {
		scheme := dsn[:i]
		if plus := strings.Index(scheme, "+"); plus > 0 {
			return scheme[:plus] + dsn[i:]
		}
	}
	return dsn
}
