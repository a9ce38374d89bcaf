package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/cheema22g77/kwooka-compliance/internal/domain/notifications"
)

type NotificationsRepository struct {
	db *sql.DB
}

func NewNotificationsRepository(db *sql.DB) *NotificationsRepository {
	return &NotificationsRepository{db: db}
}

func (r *NotificationsRepository) Save(ctx context.Context, n *domain.Notification) error {
	const q = `
INSERT INTO notifications (tenant_id, title, message, type, link, read, created_at)
VALUES ($1,$2,$3,$4,$5,false,$6);
`
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, n.TenantID, n.Title, n.Message, n.Type, nullIfEmpty(n.Link), createdAt)
	return err
}

func (r *NotificationsRepository) Recent(ctx context.Context, tenant string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT id, tenant_id, title, message, type, COALESCE(link,''), read, created_at
FROM notifications
WHERE tenant_id=$1
ORDER BY created_at DESC
LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.TenantID, &n.Title, &n.Message, &n.Type, &n.Link, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepository) UnreadCount(ctx context.Context, tenant string) (int, error) {
	const q = `SELECT COUNT(*) FROM notifications WHERE tenant_id=$1 AND read=false;`
	var n int
	if err := r.db.QueryRowContext(ctx, q, tenant).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *NotificationsRepository) MarkAllRead(ctx context.Context, tenant string) error {
	const q = `UPDATE notifications SET read=true WHERE tenant_id=$1 AND read=false;`
	_, err := r.db.ExecContext(ctx, q, tenant)
	return err
}
