package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/agrovia/notifykit/pkg/notification"
)

// CollectionName is where notifications live.
const CollectionName = "notifications"

// NotificationStore implements notification.Store on MongoDB.
type NotificationStore struct {
	coll *mongo.Collection
}

// NewNotificationStore wraps a database handle.
func NewNotificationStore(db *mongo.Database) *NotificationStore {
	return &NotificationStore{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the indexes the store's queries rely on. Call
// once at startup.
func (s *NotificationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduled_for", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	})
	return err
}

// notificationDoc is the persisted shape; bson field names match the
// model's json names so exported documents stay readable.
type notificationDoc struct {
	ID           string                    `bson:"_id"`
	UserID       string                    `bson:"user_id"`
	Type         string                    `bson:"type"`
	Category     string                    `bson:"category"`
	Title        string                    `bson:"title"`
	Message      string                    `bson:"message"`
	Data         map[string]map[string]any `bson:"data,omitempty"`
	Priority     notification.Priority     `bson:"priority"`
	Channel      notification.Channel      `bson:"channel"`
	Template     string                    `bson:"template,omitempty"`
	Actions      []notification.Action     `bson:"actions,omitempty"`
	Status       notification.Status       `bson:"status"`
	ScheduledFor *time.Time                `bson:"scheduled_for,omitempty"`
	ExpiresAt    *time.Time                `bson:"expires_at,omitempty"`
	DeliveredAt  *time.Time                `bson:"delivered_at,omitempty"`
	ReadAt       *time.Time                `bson:"read_at,omitempty"`
	ErrorMessage string                    `bson:"error_message,omitempty"`
	IsActive     bool                      `bson:"is_active"`
	Metadata     notification.Metadata     `bson:"metadata,omitempty"`
	CreatedAt    time.Time                 `bson:"created_at"`
	UpdatedAt    time.Time                 `bson:"updated_at"`
}

func toDoc(n notification.Notification) notificationDoc {
	return notificationDoc{
		ID:           n.ID,
		UserID:       n.UserID,
		Type:         n.Type,
		Category:     n.Category,
		Title:        n.Title,
		Message:      n.Message,
		Data:         n.Data,
		Priority:     n.Priority,
		Channel:      n.Channel,
		Template:     n.Template,
		Actions:      n.Actions,
		Status:       n.Status,
		ScheduledFor: n.ScheduledFor,
		ExpiresAt:    n.ExpiresAt,
		DeliveredAt:  n.DeliveredAt,
		ReadAt:       n.ReadAt,
		ErrorMessage: n.ErrorMessage,
		IsActive:     n.IsActive,
		Metadata:     n.Metadata,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

func fromDoc(d notificationDoc) notification.Notification {
	return notification.Notification{
		ID:           d.ID,
		UserID:       d.UserID,
		Type:         d.Type,
		Category:     d.Category,
		Title:        d.Title,
		Message:      d.Message,
		Data:         d.Data,
		Priority:     d.Priority,
		Channel:      d.Channel,
		Template:     d.Template,
		Actions:      d.Actions,
		Status:       d.Status,
		ScheduledFor: d.ScheduledFor,
		ExpiresAt:    d.ExpiresAt,
		DeliveredAt:  d.DeliveredAt,
		ReadAt:       d.ReadAt,
		ErrorMessage: d.ErrorMessage,
		IsActive:     d.IsActive,
		Metadata:     d.Metadata,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (s *NotificationStore) Create(ctx context.Context, n notification.Notification) error {
	if n.ID == "" {
		return notification.ErrMissingID
	}
	if n.UserID == "" {
		return notification.ErrMissingUserID
	}
	_, err := s.coll.InsertOne(ctx, toDoc(n))
	return err
}

func (s *NotificationStore) Get(ctx context.Context, id string) (*notification.Notification, error) {
	var doc notificationDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", notification.ErrNotFound, id)
		}
		return nil, err
	}
	n := fromDoc(doc)
	return &n, nil
}

func (s *NotificationStore) List(ctx context.Context, userID string, opts notification.ListOptions) ([]notification.Notification, int, error) {
	filter := bson.M{"user_id": userID}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if opts.Type != "" {
		filter["type"] = opts.Type
	}
	if opts.Channel != "" {
		filter["channel"] = opts.Channel
	}
	if opts.OnlyUnread {
		filter["read_at"] = nil
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	list, err := decodeAll(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return list, int(total), nil
}

// UpdateStatus validates the lifecycle transition with a compare-and-set
// on the current status so concurrent sweeps cannot move a notification
// backward.
func (s *NotificationStore) UpdateStatus(ctx context.Context, id string, status notification.Status, errorMessage string) error {
	var doc notificationDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"status": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: %s", notification.ErrNotFound, id)
		}
		return err
	}
	if !notification.CanTransition(doc.Status, status) {
		return fmt.Errorf("%w: %s → %s", notification.ErrInvalidTransition, doc.Status, status)
	}

	now := time.Now().UTC()
	set := bson.M{
		"status":        status,
		"error_message": errorMessage,
		"updated_at":    now,
	}
	switch status {
	case notification.StatusDelivered:
		set["delivered_at"] = now
	case notification.StatusRead:
		set["read_at"] = now
	case notification.StatusArchived:
		set["is_active"] = false
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": doc.Status},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Lost the race: someone moved the status between read and write.
		return fmt.Errorf("%w: %s → %s", notification.ErrInvalidTransition, doc.Status, status)
	}
	return nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	_, err := s.coll.UpdateMany(ctx,
		bson.M{
			"_id":     bson.M{"$in": ids},
			"user_id": userID,
			"read_at": nil,
			"status":  bson.M{"$in": readableStatuses()},
		},
		bson.M{"$set": bson.M{"status": notification.StatusRead, "read_at": now, "updated_at": now}})
	return err
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) (int, error) {
	now := time.Now().UTC()
	res, err := s.coll.UpdateMany(ctx,
		bson.M{
			"user_id": userID,
			"read_at": nil,
			"status":  bson.M{"$in": readableStatuses()},
		},
		bson.M{"$set": bson.M{"status": notification.StatusRead, "read_at": now, "updated_at": now}})
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID string) (int, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"read_at": nil,
		"status":  bson.M{"$ne": notification.StatusArchived},
		"$or": bson.A{
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gt": time.Now().UTC()}},
		},
	})
	return int(count), err
}

func (s *NotificationStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", notification.ErrNotFound, id)
	}
	return nil
}

func (s *NotificationStore) ListScheduledDue(ctx context.Context, before time.Time, limit int) ([]notification.Notification, error) {
	cursor, err := s.coll.Find(ctx,
		bson.M{
			"status":        notification.StatusPending,
			"scheduled_for": bson.M{"$ne": nil, "$lte": before},
		},
		options.Find().
			SetSort(bson.D{{Key: "scheduled_for", Value: 1}}).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

func (s *NotificationStore) ListExpired(ctx context.Context, before time.Time, limit int) ([]notification.Notification, error) {
	cursor, err := s.coll.Find(ctx,
		bson.M{
			"status":     bson.M{"$ne": notification.StatusArchived},
			"expires_at": bson.M{"$ne": nil, "$lte": before},
		},
		options.Find().
			SetSort(bson.D{{Key: "expires_at", Value: 1}}).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

func readableStatuses() bson.A {
	return bson.A{notification.StatusSent, notification.StatusDelivered, notification.StatusFailed}
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]notification.Notification, error) {
	defer cursor.Close(ctx) //nolint:errcheck

	var list []notification.Notification
	for cursor.Next(ctx) {
		var doc notificationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		list = append(list, fromDoc(doc))
	}
	return list, cursor.Err()
}
