package mysql

import (
	"context"
	"database/sql"

	"github.com/cheema22g77/kwooka-compliance/internal/domain/search"
)

// LegislationRepository implements the legislation search port over MySQL
// using FULLTEXT natural-language ranking.
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
       MATCH(title, content) AGAINST (? IN NATURAL LANGUAGE MODE) AS score
FROM legislation_sections
WHERE MATCH(title, content) AGAINST (? IN NATURAL LANGUAGE MODE)
  AND (? = '' OR sector = ?)
HAVING score >= ?
ORDER BY score DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, query, query, opts.Sector, opts.Sector, opts.MinScore, topK)
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
