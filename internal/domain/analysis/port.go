package analysis

import "context"

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, tenant string, id AnalysisID) (*Record, error)
	Paginate(ctx context.Context, tenant string, sector string, page, pageSize int) ([]*Record, error)
}

// Archive stores the full validated analysis JSON as an artifact for audit
// export. Upload failures are best-effort for callers.
type Archive interface {
	UploadJSON(ctx context.Context, key string, body []byte) (string, error)
}
