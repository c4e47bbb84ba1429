// Package mongodb provides a MongoDB-backed notification store for
// deployments that keep notifications in a document database instead of
// PostgreSQL. The client connects with retry; EnsureIndexes creates the
// indexes the store's queries rely on.
//
//	db, err := mongodb.Database(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := mongodb.NewNotificationStore(db)
//	if err := store.EnsureIndexes(ctx); err != nil {
//	    return err
//	}
package mongodb
