package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/agrovia/notifykit/pkg/async"
	"github.com/agrovia/notifykit/pkg/logger"
	"github.com/agrovia/notifykit/pkg/notification"
)

// guardTTL bounds how long a sweep item stays claimed when the claiming
// process dies before finishing it.
const guardTTL = 10 * time.Minute

// BatchItem reports the fate of one request inside SendBatch, in
// request order.
type BatchItem struct {
	Index          int    `json:"index"`
	NotificationID string `json:"notification_id,omitempty"`
	Skipped        bool   `json:"skipped,omitempty"`
	Error          string `json:"error,omitempty"`
}

// BatchResult aggregates a SendBatch run. Sent counts accepted
// deliveries, including queued ones; Failed counts both validation
// rejections and delivery failures.
type BatchResult struct {
	Sent    int         `json:"sent"`
	Skipped int         `json:"skipped"`
	Failed  int         `json:"failed"`
	Items   []BatchItem `json:"items"`
}

// SweepResult aggregates one sweep invocation.
type SweepResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Archived  int `json:"archived"`
	Failed    int `json:"failed"`
}

// SendBatch runs CreateAndSend for every request, isolating failures
// per item: one bad record never aborts the rest. Dispatches run
// concurrently, bounded by the notifier's concurrency limit, so one
// endpoint's retry backoff cannot stall its siblings.
func (n *Notifier) SendBatch(ctx context.Context, reqs []SendRequest) BatchResult {
	type batchInput struct {
		index int
		req   SendRequest
	}

	sem := make(chan struct{}, n.concurrency)
	futures := make([]*async.Future[BatchItem], len(reqs))
	for i, req := range reqs {
		futures[i] = async.Go(ctx, batchInput{i, req}, func(ctx context.Context, in batchInput) (BatchItem, error) {
			sem <- struct{}{}
			defer func() { <-sem }()
			return n.sendOne(ctx, in.index, in.req), nil
		})
	}

	result := BatchResult{Items: make([]BatchItem, 0, len(reqs))}
	for i, future := range futures {
		item, err := future.Await()
		if err != nil {
			// The future short-circuited before sendOne ran, e.g. on a
			// canceled context. sendOne itself never returns an error.
			item = BatchItem{Index: i, Error: err.Error()}
		}
		result.Items = append(result.Items, item)
		switch {
		case item.Error != "":
			result.Failed++
		case item.Skipped:
			result.Skipped++
		default:
			result.Sent++
		}
	}
	return result
}

func (n *Notifier) sendOne(ctx context.Context, index int, req SendRequest) BatchItem {
	item := BatchItem{Index: index}
	res, err := n.CreateAndSend(ctx, req)
	switch {
	case err != nil:
		item.Error = err.Error()
	case res.Skipped:
		item.Skipped = true
	default:
		item.NotificationID = res.Notification.ID
		if !res.Outcome.Success && !res.Notification.IsScheduled() {
			item.Error = res.Outcome.Error
		}
	}
	return item
}

// ProcessScheduledNotifications dispatches pending notifications whose
// scheduled time has elapsed, at most limit per call. Items run
// concurrently under the same bound as SendBatch; per-item failure is
// counted and the sweep continues. With a guard configured, items
// claimed by another process are left alone.
func (n *Notifier) ProcessScheduledNotifications(ctx context.Context, limit int) (SweepResult, error) {
	due, err := n.notifications.ListScheduledDue(ctx, n.now().UTC(), limit)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list scheduled notifications: %w", err)
	}

	sem := make(chan struct{}, n.concurrency)
	futures := make([]*async.Future[bool], 0, len(due))
	var result SweepResult

	for _, record := range due {
		if !n.claim(ctx, "scheduled", record.ID) {
			continue
		}
		result.Processed++
		futures = append(futures, async.Go(ctx, record, func(ctx context.Context, rec notification.Notification) (bool, error) {
			sem <- struct{}{}
			defer func() { <-sem }()
			outcome := n.dispatch(ctx, rec, renderedContent(rec), "")
			return outcome.Success || outcome.Queued, nil
		}))
	}

	sent, _ := async.WaitAll(futures...)
	for _, ok := range sent {
		if ok {
			result.Sent++
			n.metrics.recordSweep("scheduled", "sent")
		} else {
			result.Failed++
			n.metrics.recordSweep("scheduled", "failed")
		}
	}
	return result, nil
}

// ProcessExpiredNotifications archives notifications past their expiry,
// at most limit per call. Archival is a cheap store write, so items run
// sequentially; per-item failure is counted and the sweep continues.
func (n *Notifier) ProcessExpiredNotifications(ctx context.Context, limit int) (SweepResult, error) {
	expired, err := n.notifications.ListExpired(ctx, n.now().UTC(), limit)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list expired notifications: %w", err)
	}

	var result SweepResult
	for _, record := range expired {
		if !n.claim(ctx, "expired", record.ID) {
			continue
		}
		result.Processed++
		if err := n.notifications.UpdateStatus(ctx, record.ID, notification.StatusArchived, ""); err != nil {
			result.Failed++
			n.metrics.recordSweep("expired", "failed")
			n.log.WarnContext(ctx, "archiving expired notification failed",
				logger.NotificationID(record.ID), logger.Error(err))
			continue
		}
		result.Archived++
		n.metrics.recordSweep("expired", "archived")
	}
	return result, nil
}

// claim acquires the guard key for a sweep item. Guard errors fail
// open: a broken dedup store must not stop delivery, at worst an item
// is handled twice.
func (n *Notifier) claim(ctx context.Context, sweep, id string) bool {
	if n.guard == nil {
		return true
	}
	ok, err := n.guard.Acquire(ctx, "notifykit:sweep:"+sweep+":"+id, guardTTL)
	if err != nil {
		n.log.WarnContext(ctx, "sweep guard unavailable",
			logger.NotificationID(id), logger.Error(err))
		return true
	}
	return ok
}
