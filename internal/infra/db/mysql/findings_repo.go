package mysql

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
VALUES (?,?,?,?,?,?,?,?);
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
  SUM(CASE WHEN status IN ('open','in_progress') THEN 1 ELSE 0 END),
  SUM(CASE WHEN severity='critical' AND status<>'resolved' THEN 1 ELSE 0 END),
  SUM(CASE WHEN severity='high' AND status<>'resolved' THEN 1 ELSE 0 END),
  SUM(CASE WHEN status='resolved' THEN 1 ELSE 0 END)
FROM findings
WHERE tenant_id=?;
`
	var c domain.Counts
	var open, critical, high, resolved sql.NullInt64
	if err := r.db.QueryRowContext(ctx, q, tenant).Scan(&c.Total, &open, &critical, &high, &resolved); err != nil {
		return domain.Counts{}, err
	}
	c.Open = int(open.Int64)
	c.Critical = int(critical.Int64)
	c.High = int(high.Int64)
	c.Resolved = int(resolved.Int64)
	return c, nil
}
