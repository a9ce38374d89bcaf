package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/cheema22g77/kwooka-compliance/internal/domain/findings"
)

type FindingsRepository struct {
	db *sql.DB
}

func NewFindingsRepository(db *sql.DB) *FindingsRepository {
	return &FindingsRepository{db: db}
}

// SaveBatch inserts items one by one and returns how many were actually
// created; a row the database rejects is skipped, not fatal.
func (r *FindingsRepository) SaveBatch(ctx context.Context, items []*domain.Item) (int, error) {
	const q = `
INSERT INTO findings
  (tenant_id, analysis_id, title, description, severity, category, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);
`
	created := 0
	var lastErr error
	for _, it := range items {
		createdAt := it.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err := r.db.ExecContext(ctx, q,
			it.TenantID, nullIfEmpty(it.AnalysisID), it.Title, it.Description,
			it.Severity, it.Category, it.Status, createdAt); err != nil {
			lastErr = err
			continue
		}
		created++
	}
	if created == 0 && lastErr != nil {
		return 0, lastErr
	}
	return created, nil
}

// Counts returns the dashboard rollup for a tenant.
func (r *FindingsRepository) Counts(ctx context.Context, tenant string) (domain.Counts, error) {
	const q = `
SELECT
  COUNT(*),
  COUNT(*) FILTER (WHERE status IN ('open','in_progress')),
  COUNT(*) FILTER (WHERE severity = 'critical' AND status <> 'resolved'),
  COUNT(*) FILTER (WHERE severity = 'high' AND status <> 'resolved'),
  COUNT(*) FILTER (WHERE status = 'resolved')
FROM findings
WHERE tenant_id=$1;
`
	var c domain.Counts
	err := r.db.QueryRowContext(ctx, q, tenant).Scan(&c.Total, &c.Open, &c.Critical, &c.High, &c.Resolved)
	if err != nil {
		return domain.Counts{}, err
	}
	return c, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
