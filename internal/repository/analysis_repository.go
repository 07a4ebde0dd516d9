package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crypto-insight/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const createAnalysesTable = `
CREATE TABLE IF NOT EXISTS analyses (
    id          UUID        PRIMARY KEY,
    symbol      TEXT        NOT NULL,
    days        INTEGER     NOT NULL,
    context     TEXT        NOT NULL,
    analysis    JSONB       NOT NULL DEFAULT '{}'::jsonb,
    metrics     JSONB       NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_analyses_symbol_created
    ON analyses (symbol, created_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AnalysisRepository archives generated analyses in Postgres.
type AnalysisRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewAnalysisRepository(pool PgxPool, tracer trace.Tracer) *AnalysisRepository {
	return &AnalysisRepository{pool: pool, tracer: tracer}
}

func (r *AnalysisRepository) RunMigrations(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "analysis-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createAnalysesTable)
	return err
}

func (r *AnalysisRepository) Save(ctx context.Context, a *domain.AnalysisResponse) error {
	ctx, span := r.tracer.Start(ctx, "analysis-repo.save")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", a.Symbol))

	analysis := a.Analysis
	if analysis == nil {
		analysis = map[string]string{}
	}
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	metricsJSON, err := json.Marshal(a.Metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO analyses (id, symbol, days, context, analysis, metrics, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Symbol, a.Days, a.Context, analysisJSON, metricsJSON, a.GeneratedAt,
	)
	return err
}

// Recent returns up to limit archived analyses for symbol, newest first.
// Only the archived columns are populated.
func (r *AnalysisRepository) Recent(ctx context.Context, symbol string, limit int) ([]domain.AnalysisResponse, error) {
	ctx, span := r.tracer.Start(ctx, "analysis-repo.recent")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id::text, symbol, days, context, analysis, metrics, created_at
		 FROM analyses
		 WHERE symbol = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		symbol, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AnalysisResponse
	for rows.Next() {
		var (
			a            domain.AnalysisResponse
			analysisJSON []byte
			metricsJSON  []byte
			createdAt    time.Time
		)
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Days, &a.Context, &analysisJSON, &metricsJSON, &createdAt); err != nil {
			return nil, err
		}
		if len(analysisJSON) > 0 {
			if err := json.Unmarshal(analysisJSON, &a.Analysis); err != nil {
				return nil, fmt.Errorf("decode analysis %s: %w", a.ID, err)
			}
		}
		if err := json.Unmarshal(metricsJSON, &a.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics %s: %w", a.ID, err)
		}
		a.GeneratedAt = createdAt.UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
