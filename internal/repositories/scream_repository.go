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

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// ScreamRepository defines the interface for scream data operations
type ScreamRepository interface {
	Create(ctx context.Context, scream *models.Scream) error
	GetByID(ctx context.Context, id string) (*models.Scream, error)
	GetAll(ctx context.Context) ([]models.Scream, error)
	GetByUserHandle(ctx context.Context, handle string) ([]models.Scream, error)
	Delete(ctx context.Context, id string) error
	// DeleteDependents removes every comment, like, and notification
	// referencing the scream as a single atomic batch.
	DeleteDependents(ctx context.Context, screamID string) error
	// IncrementLikeCount adjusts the denormalized like counter by delta and
	// returns the updated scream.
	IncrementLikeCount(ctx context.Context, id string, delta int) (*models.Scream, error)
	// IncrementCommentCount adjusts the denormalized comment counter by
	// delta and returns the updated scream.
	IncrementCommentCount(ctx context.Context, id string, delta int) (*models.Scream, error)
}

// MongoScreamRepository implements ScreamRepository for MongoDB
type MongoScreamRepository struct {
	db *mongo.Database
}

// NewMongoScreamRepository creates a new MongoScreamRepository
func NewMongoScreamRepository(db *mongo.Database) *MongoScreamRepository {
	return &MongoScreamRepository{db: db}
}

func (r *MongoScreamRepository) screams() *mongo.Collection {
	return r.db.Collection("screams")
}

// Create inserts a new scream with a generated id.
func (r *MongoScreamRepository) Create(ctx context.Context, scream *models.Scream) error {
	scream.ID = primitive.NewObjectID().Hex()
	_, err := r.screams().InsertOne(ctx, scream)
	return err
}

// GetByID retrieves a scream by id. Returns ErrNotFound when absent.
func (r *MongoScreamRepository) GetByID(ctx context.Context, id string) (*models.Scream, error) {
	var scream models.Scream
	err := r.screams().FindOne(ctx, bson.M{"_id": id}).Decode(&scream)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &scream, nil
}

// GetAll retrieves every scream ordered by creation time, newest first.
func (r *MongoScreamRepository) GetAll(ctx context.Context) ([]models.Scream, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.screams().Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	screams := []models.Scream{}
	if err = cursor.All(ctx, &screams); err != nil {
		return nil, err
	}
	return screams, nil
}

// GetByUserHandle retrieves a user's screams ordered by creation time,
// newest first.
func (r *MongoScreamRepository) GetByUserHandle(ctx context.Context, handle string) ([]models.Scream, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.screams().Find(ctx, bson.M{"userHandle": handle}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	screams := []models.Scream{}
	if err = cursor.All(ctx, &screams); err != nil {
		return nil, err
	}
	return screams, nil
}

// Delete removes the scream document itself. Dependent rows are swept
// separately by DeleteDependents.
func (r *MongoScreamRepository) Delete(ctx context.Context, id string) error {
	res, err := r.screams().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDependents discovers every comment, like, and notification
// referencing the scream and deletes them inside one transaction, so either
// all dependent rows are removed or none are. Rows created after the
// discovery queries but before commit are not swept.
func (r *MongoScreamRepository) DeleteDependents(ctx context.Context, screamID string) error {
	collections := []string{"comments", "likes", "notifications"}
	ids := make(map[string][]string, len(collections))

	for _, name := range collections {
		cursor, err := r.db.Collection(name).Find(ctx, bson.M{"screamId": screamID})
		if err != nil {
			return err
		}
		var docs []struct {
			ID string `bson:"_id"`
		}
		if err := cursor.All(ctx, &docs); err != nil {
			return err
		}
		for _, doc := range docs {
			ids[name] = append(ids[name], doc.ID)
		}
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, name := range collections {
			if len(ids[name]) == 0 {
				continue
			}
			filter := bson.M{"_id": bson.M{"$in": ids[name]}}
			if _, err := r.db.Collection(name).DeleteMany(sc, filter); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// IncrementLikeCount adjusts likeCount by delta via an atomic $inc. The
// write is last-write-wins on the scream document; no floor is enforced.
func (r *MongoScreamRepository) IncrementLikeCount(ctx context.Context, id string, delta int) (*models.Scream, error) {
	return r.incrementCounter(ctx, id, "likeCount", delta)
}

// IncrementCommentCount adjusts commentCount by delta via an atomic $inc.
func (r *MongoScreamRepository) IncrementCommentCount(ctx context.Context, id string, delta int) (*models.Scream, error) {
	return r.incrementCounter(ctx, id, "commentCount", delta)
}

func (r *MongoScreamRepository) incrementCounter(ctx context.Context, id, field string, delta int) (*models.Scream, error) {
	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)
	update := bson.M{"$inc": bson.M{field: delta}}

	var scream models.Scream
	err := r.screams().FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&scream)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &scream, nil
}
