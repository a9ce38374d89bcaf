package notifications

import "context"

// Repository persists notifications. Callers treat failures as best-effort.
type Repository interface {
	Save(ctx context.Context, n *Notification) error
	Recent(ctx context.Context, tenant string, limit int) ([]*Notification, error)
	UnreadCount(ctx context.Context, tenant string) (int, error)
	MarkAllRead(ctx context.Context, tenant string) error
}
