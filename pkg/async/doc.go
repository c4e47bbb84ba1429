// Package async provides a small Future type for fanning out I/O-bound
// work, used by the notifier to run channel dispatches concurrently so
// one provider's retry backoff cannot stall a batch or sweep.
//
//	f := async.Go(ctx, delivery, send)
//	outcome, err := f.Await()
//
//	results, _ := async.WaitAll(futures...)
package async
