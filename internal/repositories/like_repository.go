package repositories

import (
	"context"
	"errors"

	"github.com/socialape/screams-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// GetForUserAndScream returns the like for a (screamId, userHandle)
	// pair, or ErrNotFound. The lookup is limited to one result.
	GetForUserAndScream(ctx context.Context, screamID, handle string) (*models.Like, error)
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, id string) error
	GetByUserHandle(ctx context.Context, handle string) ([]models.Like, error)
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	collection *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection("likes")}
}

// GetForUserAndScream looks up the like for one user on one scream.
func (r *MongoLikeRepository) GetForUserAndScream(ctx context.Context, screamID, handle string) (*models.Like, error) {
	filter := bson.M{"screamId": screamID, "userHandle": handle}
	var like models.Like
	err := r.collection.FindOne(ctx, filter).Decode(&like)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &like, nil
}

// Create inserts a like with a generated id.
func (r *MongoLikeRepository) Create(ctx context.Context, like *models.Like) error {
	like.ID = primitive.NewObjectID().Hex()
	_, err := r.collection.InsertOne(ctx, like)
	return err
}

// Delete removes a like by id.
func (r *MongoLikeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByUserHandle retrieves every like made by a user.
func (r *MongoLikeRepository) GetByUserHandle(ctx context.Context, handle string) ([]models.Like, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userHandle": handle}, options.Find())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	likes := []models.Like{}
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}
