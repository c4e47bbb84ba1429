// Package redis connects to a Redis server with retry and exposes the
// sweep Guard used by the notifier for cross-process deduplication.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	n := notifier.New(store, templates, prefs, registry,
//	    notifier.WithGuard(redis.NewGuard(client)),
//	)
package redis
