package findings

import "context"

// Repository persists trackable finding items.
type Repository interface {
	// SaveBatch inserts items and returns the number actually created;
	// storage may reject a subset.
	SaveBatch(ctx context.Context, items []*Item) (int, error)
	Counts(ctx context.Context, tenant string) (Counts, error)
}
