package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/cheema22g77/kwooka-compliance/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts an analysis record. Records are immutable once written.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO compliance_analyses
  (id, tenant_id, sector, document_type, document_name,
   overall_score, overall_status, risk_level, summary, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);
`
	result := a.ResultJSON
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.TenantID, a.Sector, a.DocumentType, a.DocumentName,
		a.OverallScore, a.OverallStatus, a.RiskLevel, a.Summary, result, createdAt)
	return err
}

// Get returns one analysis by id
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Record, error) {
	const q = `
SELECT id, tenant_id, sector, document_type, document_name,
       overall_score, overall_status, risk_level, summary, result_json, created_at
FROM compliance_analyses
WHERE tenant_id=$1 AND id=$2;
`
	return scanRecord(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Paginate returns a page of analyses ordered by created_at desc, optionally
// filtered by sector.
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, sector string, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, sector, document_type, document_name,
       overall_score, overall_status, risk_level, summary, result_json, created_at
FROM compliance_analyses
WHERE tenant_id=$1 AND ($2 = '' OR sector = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, sector, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var a domain.Record
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Sector, &a.DocumentType, &a.DocumentName,
			&a.OverallScore, &a.OverallStatus, &a.RiskLevel, &a.Summary, &a.ResultJSON, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var a domain.Record
	if err := row.Scan(&a.ID, &a.TenantID, &a.Sector, &a.DocumentType, &a.DocumentName,
		&a.OverallScore, &a.OverallStatus, &a.RiskLevel, &a.Summary, &a.ResultJSON, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
