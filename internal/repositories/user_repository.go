package repositories

import (
	"context"
	"errors"

	"github.com/socialape/screams-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts a user document keyed by handle. Fails with
	// ErrDuplicate when the handle is already taken.
	Create(ctx context.Context, user *models.User) error
	GetByHandle(ctx context.Context, handle string) (*models.User, error)
	// GetByUserID looks up a user by their auth provider id (equality
	// query, limited to one result).
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	// UpdateDetails merges the non-empty detail fields into the user doc.
	UpdateDetails(ctx context.Context, handle string, details models.UserDetailsRequest) error
	// UpdateImage stores a new profile image URL on the user doc.
	UpdateImage(ctx context.Context, handle, imageURL string) error
	// PropagateImage rewrites the denormalized userImage field on every
	// scream and comment authored by the handle, as one atomic batch.
	PropagateImage(ctx context.Context, handle, imageURL string) error
}

// ErrDuplicate is returned when inserting a document whose id is taken.
var ErrDuplicate = errors.New("document already exists")

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	db *mongo.Database
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{db: db}
}

func (r *MongoUserRepository) users() *mongo.Collection {
	return r.db.Collection("users")
}

// Create inserts the user document, with the handle as its id.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.users().InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// GetByHandle retrieves a user by handle. Returns ErrNotFound when absent.
func (r *MongoUserRepository) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User
	err := r.users().FindOne(ctx, bson.M{"_id": handle}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUserID retrieves a user by their auth provider id.
func (r *MongoUserRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.users().FindOne(ctx, bson.M{"userId": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateDetails merges the provided detail fields into the user document.
func (r *MongoUserRepository) UpdateDetails(ctx context.Context, handle string, details models.UserDetailsRequest) error {
	set := bson.M{}
	if details.Bio != "" {
		set["bio"] = details.Bio
	}
	if details.Website != "" {
		set["website"] = details.Website
	}
	if details.Location != "" {
		set["location"] = details.Location
	}
	if len(set) == 0 {
		return nil
	}

	res, err := r.users().UpdateOne(ctx, bson.M{"_id": handle}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateImage stores the new profile image URL.
func (r *MongoUserRepository) UpdateImage(ctx context.Context, handle, imageURL string) error {
	res, err := r.users().UpdateOne(ctx, bson.M{"_id": handle}, bson.M{"$set": bson.M{"imageUrl": imageURL}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PropagateImage rewrites the userImage copies on the user's screams and
// comments inside one transaction.
func (r *MongoUserRepository) PropagateImage(ctx context.Context, handle, imageURL string) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	filter := bson.M{"userHandle": handle}
	update := bson.M{"$set": bson.M{"userImage": imageURL}}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.db.Collection("screams").UpdateMany(sc, filter, update); err != nil {
			return nil, err
		}
		if _, err := r.db.Collection("comments").UpdateMany(sc, filter, update); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
