package mysql

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
VALUES (?,?,?,?,?,?,?,?,?,?,?);
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
WHERE tenant_id=? AND id=?;
`
	var a domain.Record
	err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(
		&a.ID, &a.TenantID, &a.Sector, &a.DocumentType, &a.DocumentName,
		&a.OverallScore, &a.OverallStatus, &a.RiskLevel, &a.Summary, &a.ResultJSON, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
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
WHERE tenant_id=? AND (? = '' OR sector = ?)
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, sector, sector, pageSize, offset)
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
