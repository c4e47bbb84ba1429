package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrovia/notifykit/pkg/channel"
)

// ChannelStore implements channel.Store on PostgreSQL. Stats live in
// dedicated columns so RecordAttempt is a single atomic increment.
type ChannelStore struct {
	pool *pgxpool.Pool
}

// NewChannelStore wraps a connection pool. Run Migrate first.
func NewChannelStore(pool *pgxpool.Pool) *ChannelStore {
	return &ChannelStore{pool: pool}
}

const channelColumns = `name, display_name, type, provider, settings, status, error_message,
	tags, stats_sent, stats_delivered, stats_failed, last_sent_at, last_tested,
	created_at, updated_at`

func (s *ChannelStore) Create(ctx context.Context, cfg channel.Config) error {
	if cfg.Name == "" {
		return channel.ErrMissingName
	}
	if !cfg.Type.Valid() {
		return channel.ErrInvalidType
	}
	if cfg.Status == "" {
		cfg.Status = channel.StatusTesting
	}

	settings, err := marshalJSON(cfg.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tags := cfg.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO notification_channels
			(name, display_name, type, provider, settings, status, error_message, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		cfg.Name, cfg.DisplayName, cfg.Type, cfg.Provider, settings, cfg.Status,
		cfg.ErrorMessage, tags, now)
	if IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", channel.ErrAlreadyExists, cfg.Name)
	}
	return err
}

func (s *ChannelStore) Get(ctx context.Context, name string) (*channel.Config, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM notification_channels WHERE name = $1`, name)
	cfg, err := scanChannel(row)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", channel.ErrNotFound, name)
		}
		return nil, err
	}
	return cfg, nil
}

func (s *ChannelStore) List(ctx context.Context, opts channel.ListOptions) ([]channel.Config, error) {
	where := []string{"TRUE"}
	args := []any{}
	if opts.Type != "" {
		args = append(args, opts.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+channelColumns+` FROM notification_channels
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at ASC, name ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []channel.Config
	for rows.Next() {
		cfg, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *cfg)
	}
	return list, rows.Err()
}

// Update replaces the mutable configuration while leaving stats and the
// tested/created timestamps untouched.
func (s *ChannelStore) Update(ctx context.Context, cfg channel.Config) error {
	if cfg.Name == "" {
		return channel.ErrMissingName
	}
	if !cfg.Type.Valid() {
		return channel.ErrInvalidType
	}

	settings, err := marshalJSON(cfg.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tags := cfg.Tags
	if tags == nil {
		tags = []string{}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE notification_channels SET
			display_name = $2, type = $3, provider = $4, settings = $5,
			status = $6, error_message = $7, tags = $8, updated_at = now()
		WHERE name = $1`,
		cfg.Name, cfg.DisplayName, cfg.Type, cfg.Provider, settings,
		cfg.Status, cfg.ErrorMessage, tags)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", channel.ErrNotFound, cfg.Name)
	}
	return nil
}

func (s *ChannelStore) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notification_channels WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", channel.ErrNotFound, name)
	}
	return nil
}

func (s *ChannelStore) SetStatus(ctx context.Context, name string, status channel.Status, errorMessage string) error {
	if !status.Valid() {
		return channel.ErrInvalidStatus
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE notification_channels
		SET status = $2, error_message = $3, updated_at = now()
		WHERE name = $1`,
		name, status, errorMessage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", channel.ErrNotFound, name)
	}
	return nil
}

// SetDefault moves the default tag to the named channel, clearing it
// from every other channel of the same type in the same transaction.
func (s *ChannelStore) SetDefault(ctx context.Context, name string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var typ channel.Type
	err = tx.QueryRow(ctx,
		`SELECT type FROM notification_channels WHERE name = $1 FOR UPDATE`, name).Scan(&typ)
	if err != nil {
		if IsNotFoundError(err) {
			return fmt.Errorf("%w: %s", channel.ErrNotFound, name)
		}
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE notification_channels
		SET tags = array_remove(tags, $2), updated_at = now()
		WHERE type = $1 AND name <> $3 AND $2 = ANY(tags)`,
		typ, channel.TagDefault, name)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE notification_channels
		SET tags = array_append(array_remove(tags, $2), $2), updated_at = now()
		WHERE name = $1`,
		name, channel.TagDefault)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *ChannelStore) RecordAttempt(ctx context.Context, name string, outcome channel.DeliveryOutcome) error {
	if outcome.Queued {
		return nil
	}

	var tag pgconn.CommandTag
	var err error
	if outcome.Success {
		tag, err = s.pool.Exec(ctx, `
			UPDATE notification_channels SET
				stats_sent = stats_sent + 1,
				stats_delivered = stats_delivered + CASE WHEN $2 THEN 1 ELSE 0 END,
				last_sent_at = now(),
				updated_at = now()
			WHERE name = $1`,
			name, outcome.Delivered)
	} else {
		tag, err = s.pool.Exec(ctx, `
			UPDATE notification_channels
			SET stats_failed = stats_failed + 1, updated_at = now()
			WHERE name = $1`,
			name)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", channel.ErrNotFound, name)
	}
	return nil
}

func (s *ChannelStore) MarkTested(ctx context.Context, name string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notification_channels
		SET last_tested = $2, updated_at = now()
		WHERE name = $1`,
		name, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", channel.ErrNotFound, name)
	}
	return nil
}

func scanChannel(row pgx.Row) (*channel.Config, error) {
	var (
		cfg      channel.Config
		settings []byte
	)
	err := row.Scan(&cfg.Name, &cfg.DisplayName, &cfg.Type, &cfg.Provider,
		&settings, &cfg.Status, &cfg.ErrorMessage, &cfg.Tags,
		&cfg.Stats.Sent, &cfg.Stats.Delivered, &cfg.Stats.Failed,
		&cfg.Stats.LastSentAt, &cfg.LastTested, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &cfg.Settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
	}
	return &cfg, nil
}
