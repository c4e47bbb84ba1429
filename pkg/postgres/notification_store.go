package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrovia/notifykit/pkg/notification"
)

// NotificationStore implements notification.Store on PostgreSQL.
type NotificationStore struct {
	pool *pgxpool.Pool
}

// NewNotificationStore wraps a connection pool. Run Migrate first.
func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

const notificationColumns = `id, user_id, type, category, title, message, data, priority,
	channel, template, actions, status, scheduled_for, expires_at, delivered_at,
	read_at, error_message, is_active, metadata, created_at, updated_at`

func (s *NotificationStore) Create(ctx context.Context, n notification.Notification) error {
	if n.ID == "" {
		return notification.ErrMissingID
	}
	if n.UserID == "" {
		return notification.ErrMissingUserID
	}

	data, err := marshalJSON(n.Data)
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}
	actions, err := marshalJSON(n.Actions)
	if err != nil {
		return fmt.Errorf("encode actions: %w", err)
	}
	metadata, err := marshalJSON(n.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21)`,
		n.ID, n.UserID, n.Type, n.Category, n.Title, n.Message, data, n.Priority,
		n.Channel, n.Template, actions, n.Status, n.ScheduledFor, n.ExpiresAt,
		n.DeliveredAt, n.ReadAt, n.ErrorMessage, n.IsActive, metadata,
		n.CreatedAt, n.UpdatedAt)
	return err
}

func (s *NotificationStore) Get(ctx context.Context, id string) (*notification.Notification, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", notification.ErrNotFound, id)
		}
		return nil, err
	}
	return n, nil
}

func (s *NotificationStore) List(ctx context.Context, userID string, opts notification.ListOptions) ([]notification.Notification, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if opts.Status != "" {
		add("status = $%d", opts.Status)
	}
	if opts.Category != "" {
		add("category = $%d", opts.Category)
	}
	if opts.Type != "" {
		add("type = $%d", opts.Type)
	}
	if opts.Channel != "" {
		add("channel = $%d", opts.Channel)
	}
	if opts.OnlyUnread {
		where = append(where, "read_at IS NULL")
	}
	condition := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE `+condition, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE ` + condition +
		` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := scanNotifications(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateStatus validates the lifecycle transition inside a transaction
// so concurrent sweeps cannot race a notification backward.
func (s *NotificationStore) UpdateStatus(ctx context.Context, id string, status notification.Status, errorMessage string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var current notification.Status
	err = tx.QueryRow(ctx,
		`SELECT status FROM notifications WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if IsNotFoundError(err) {
			return fmt.Errorf("%w: %s", notification.ErrNotFound, id)
		}
		return err
	}
	if !notification.CanTransition(current, status) {
		return fmt.Errorf("%w: %s → %s", notification.ErrInvalidTransition, current, status)
	}

	now := time.Now().UTC()
	_, err = tx.Exec(ctx, `
		UPDATE notifications SET
			status = $2,
			error_message = $3,
			delivered_at = CASE WHEN $2 = 'delivered' THEN coalesce(delivered_at, $4) ELSE delivered_at END,
			read_at = CASE WHEN $2 = 'read' THEN coalesce(read_at, $4) ELSE read_at END,
			is_active = CASE WHEN $2 = 'archived' THEN FALSE ELSE is_active END,
			updated_at = $4
		WHERE id = $1`,
		id, status, errorMessage, now)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *NotificationStore) MarkRead(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'read', read_at = $3, updated_at = $3
		WHERE user_id = $1 AND id = ANY($2) AND read_at IS NULL
			AND status IN ('sent', 'delivered', 'failed')`,
		userID, ids, now)
	return err
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) (int, error) {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'read', read_at = $2, updated_at = $2
		WHERE user_id = $1 AND read_at IS NULL
			AND status IN ('sent', 'delivered', 'failed')`,
		userID, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE user_id = $1 AND read_at IS NULL AND status <> 'archived'
			AND (expires_at IS NULL OR expires_at > now())`,
		userID).Scan(&count)
	return count, err
}

func (s *NotificationStore) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", notification.ErrNotFound, id)
	}
	return nil
}

func (s *NotificationStore) ListScheduledDue(ctx context.Context, before time.Time, limit int) ([]notification.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE status = 'pending' AND scheduled_for IS NOT NULL AND scheduled_for <= $1
		ORDER BY scheduled_for ASC
		LIMIT $2`,
		before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (s *NotificationStore) ListExpired(ctx context.Context, before time.Time, limit int) ([]notification.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE status <> 'archived' AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at ASC
		LIMIT $2`,
		before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n        notification.Notification
		data     []byte
		actions  []byte
		metadata []byte
	)
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Category, &n.Title, &n.Message,
		&data, &n.Priority, &n.Channel, &n.Template, &actions, &n.Status,
		&n.ScheduledFor, &n.ExpiresAt, &n.DeliveredAt, &n.ReadAt,
		&n.ErrorMessage, &n.IsActive, &metadata, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(data, &n.Data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if err := unmarshalJSON(actions, &n.Actions); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	if err := unmarshalJSON(metadata, &n.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &n, nil
}

func scanNotifications(rows pgx.Rows) ([]notification.Notification, error) {
	var list []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *n)
	}
	return list, rows.Err()
}

func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
