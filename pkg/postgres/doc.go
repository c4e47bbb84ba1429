// Package postgres provides the PostgreSQL persistence layer: a pgx
// connection pool with retrying startup, embedded goose migrations, and
// Store implementations for notifications and channel configs.
//
// Channel delivery stats live in dedicated columns rather than a JSON
// blob so RecordAttempt is a single atomic increment under concurrent
// dispatch.
//
//	pool, err := postgres.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := postgres.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//	notifications := postgres.NewNotificationStore(pool)
//	channels := postgres.NewChannelStore(pool)
package postgres
