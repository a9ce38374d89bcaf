package postgres

import (
	"context"
	"database/sql"

	"github.com/cheema22g77/kwooka-compliance/internal/domain/search"
)

// LegislationRepository implements the legislation search port over the
// ingested legislation_sections table using Postgres full-text ranking.
type LegislationRepository struct {
	db *sql.DB
}

func NewLegislationRepository(db *sql.DB) *LegislationRepository {
	return &LegislationRepository{db: db}
}

func (r *LegislationRepository) Search(ctx context.Context, query string, opts search.Options) ([]search.Passage, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}
	const q = `
SELECT id, title, COALESCE(section_number,''), COALESCE(section_title,''), content,
       ts_rank(tsv, plainto_tsquery('english', $1)) AS rank
FROM legislation_sections
WHERE tsv @@ plainto_tsquery('english', $1)
  AND ($2 = '' OR sector = $2)
  AND ts_rank(tsv, plainto_tsquery('english', $1)) >= $3
ORDER BY rank DESC
LIMIT $4;
`
	rows, err := r.db.QueryContext(ctx, q, query, opts.Sector, opts.MinScore, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []search.Passage
	for rows.Next() {
		var p search.Passage
		if err := rows.Scan(&p.ID, &p.Title, &p.SectionNumber, &p.SectionTitle, &p.Content, &p.Score); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
