package repositories

import (
	"context"

	"github.com/socialape/screams-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	// Set writes a notification under an explicit id (the id of the
	// originating like or comment).
	Set(ctx context.Context, notification *models.Notification) error
	// Delete removes a notification by id. Deleting a notification that
	// does not exist is not an error.
	Delete(ctx context.Context, id string) error
	// GetRecentByRecipient returns a recipient's notifications, newest
	// first, capped at limit.
	GetRecentByRecipient(ctx context.Context, recipient string, limit int) ([]models.Notification, error)
	// MarkAllRead flips every unread notification for the recipient to
	// read in one atomic batch and reports how many were updated.
	MarkAllRead(ctx context.Context, recipient string) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// Set upserts the notification under its preassigned id.
func (r *MongoNotificationRepository) Set(ctx context.Context, notification *models.Notification) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": notification.ID}, notification, opts)
	return err
}

// Delete removes a notification by id, silently succeeding when absent.
func (r *MongoNotificationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// GetRecentByRecipient retrieves the recipient's newest notifications.
func (r *MongoNotificationRepository) GetRecentByRecipient(ctx context.Context, recipient string, limit int) ([]models.Notification, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"recipient": recipient}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAllRead transitions the recipient's unread notifications to read.
// Returns 0 with no writes performed when none are unread.
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	filter := bson.M{"recipient": recipient, "read": false}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	res, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
