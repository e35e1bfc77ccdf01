package postgres

import (
	"context"
	"fmt"

	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/repositories"
	"go.uber.org/zap"
)

// NotificationRepository implements the repositories.NotificationRepository interface
type NotificationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *DB, logger *zap.Logger) repositories.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_email, subject, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		n.ID,
		n.RecipientEmail,
		n.Subject,
		n.Body,
		n.Status,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	r.logger.Debug("notification created", zap.String("id", n.ID.String()))
	return nil
}

// GetByRecipient retrieves notifications for one recipient, newest first
func (r *NotificationRepository) GetByRecipient(ctx context.Context, email string, limit, offset int) ([]*models.Notification, error) {
	query := `
		SELECT id, recipient_email, subject, body, status, created_at
		FROM notifications
		WHERE recipient_email = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, email, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	out := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.RecipientEmail, &n.Subject, &n.Body, &n.Status, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return out, nil
}
