package postgres

import (
	"context"
	"fmt"
	"time"

	"meli-reconciler/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// NotificationRepo implements ports.NotificationRepository.
type NotificationRepo struct {
	pool Pool
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(pool Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

// Upsert stores a delivery keyed by id. Redeliveries overwrite the payload
// but keep the processed flag.
func (r *NotificationRepo) Upsert(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (id, resource, user_id, topic, application_id, attempts, sent, received, processed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
		ON CONFLICT (id) DO UPDATE SET
			resource = EXCLUDED.resource,
			user_id = EXCLUDED.user_id,
			topic = EXCLUDED.topic,
			application_id = EXCLUDED.application_id,
			attempts = EXCLUDED.attempts,
			sent = EXCLUDED.sent,
			received = EXCLUDED.received`

	_, err := r.pool.Exec(ctx, query,
		n.ID, n.Resource, n.UserID, n.Topic, n.ApplicationID,
		n.Attempts, nullTime(n.Sent), n.Received,
	)
	if err != nil {
		return fmt.Errorf("upsert notification: %w", err)
	}
	return nil
}

// ListUnprocessed returns pending notifications of a topic, newest first.
func (r *NotificationRepo) ListUnprocessed(ctx context.Context, topic string) ([]domain.Notification, error) {
	query := `SELECT id, resource, user_id, topic, application_id, attempts, sent, received, processed
		FROM notifications
		WHERE processed = FALSE AND topic = $1
		ORDER BY received DESC, id ASC`

	rows, err := r.pool.Query(ctx, query, topic)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var sent *time.Time
		if err := rows.Scan(
			&n.ID, &n.Resource, &n.UserID, &n.Topic, &n.ApplicationID,
			&n.Attempts, &sent, &n.Received, &n.Processed,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if sent != nil {
			n.Sent = *sent
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// MarkProcessed flags the given ids as processed.
func (r *NotificationRepo) MarkProcessed(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET processed = TRUE WHERE id = ANY($1) AND processed = FALSE`, ids)
	if err != nil {
		return 0, fmt.Errorf("mark notifications processed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ResetProcessed clears the processed flag of every notification of topic.
func (r *NotificationRepo) ResetProcessed(ctx context.Context, tx pgx.Tx, topic string) (int64, error) {
	tag, err := pick(r.pool, tx).Exec(ctx,
		`UPDATE notifications SET processed = FALSE WHERE processed = TRUE AND topic = $1`, topic)
	if err != nil {
		return 0, fmt.Errorf("reset processed notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
