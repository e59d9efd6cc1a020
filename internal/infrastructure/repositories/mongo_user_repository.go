package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	countersCollection = "counters"
)

// MongoUser is the document layout of a user in the users collection
type MongoUser struct {
	ObjectID     primitive.ObjectID `bson:"_id,omitempty"`
	UserID       uint64             `bson:"userId"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	Role         string             `bson:"role"`
	TOTPSecret   string             `bson:"totpSecret,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// MongoUserRepositoryImpl implements domain.UserRepository on a MongoDB database
type MongoUserRepositoryImpl struct {
	users    *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

// NewMongoUserRepository creates a user repository backed by db
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepositoryImpl {
	return &MongoUserRepositoryImpl{
		users:    db.Collection(usersCollection),
		counters: db.Collection(countersCollection),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique indexes the repository relies on
func (r *MongoUserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// Create implements domain.UserRepository
func (r *MongoUserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	now := r.now()
	doc := MongoUser{
		UserID:       id,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		TOTPSecret:   user.TOTPSecret,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	user.ID = uint(id)
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *MongoUserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID implements domain.UserRepository
func (r *MongoUserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"userId": uint64(id)})
}

// List implements domain.UserRepository
func (r *MongoUserRepositoryImpl) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []MongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, mongoToDomain(&docs[i]))
	}
	return users, nil
}

// UpdatePassword implements domain.UserRepository
func (r *MongoUserRepositoryImpl) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return r.updateOne(ctx, email, bson.M{"$set": bson.M{"passwordHash": passwordHash, "updatedAt": r.now()}})
}

// SetTOTPSecret implements domain.UserRepository. An empty secret removes the field.
func (r *MongoUserRepositoryImpl) SetTOTPSecret(ctx context.Context, email, secret string) error {
	update := bson.M{"$set": bson.M{"totpSecret": secret, "updatedAt": r.now()}}
	if secret == "" {
		update = bson.M{
			"$unset": bson.M{"totpSecret": ""},
			"$set":   bson.M{"updatedAt": r.now()},
		}
	}
	return r.updateOne(ctx, email, update)
}

// CountByRole implements domain.UserRepository
func (r *MongoUserRepositoryImpl) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	return r.users.CountDocuments(ctx, bson.M{"role": string(role)})
}

func (r *MongoUserRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc MongoUser
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return mongoToDomain(&doc), nil
}

func (r *MongoUserRepositoryImpl) updateOne(ctx context.Context, email string, update bson.M) error {
	res, err := r.users.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// nextID allocates a numeric user id from the counters collection
func (r *MongoUserRepositoryImpl) nextID(ctx context.Context) (uint64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": usersCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate user id: %w", err)
	}
	return uint64(counter.Seq), nil
}

func mongoToDomain(doc *MongoUser) *domain.User {
	return &domain.User{
		ID:           uint(doc.UserID),
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Role:         domain.Role(doc.Role),
		TOTPSecret:   doc.TOTPSecret,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

var _ domain.UserRepository = (*MongoUserRepositoryImpl)(nil)
