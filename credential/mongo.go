package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ Store = &MongoStore{}

// MongoStore is a MongoDB-backed Store. Expiry is enforced twice: a TTL
// index lets the server purge old documents, and reads treat anything past
// the TTL as absent because the TTL monitor only runs once a minute.
type MongoStore struct {
	tokens *mongo.Collection
	ttl    time.Duration
	now    func() time.Time
}

// NewMongoStore creates a store over the "slack_credentials" collection.
func NewMongoStore(db *mongo.Database, ttl time.Duration) *MongoStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MongoStore{
		tokens: db.Collection("slack_credentials"),
		ttl:    ttl,
		now:    time.Now,
	}
}

// EnsureIndexes creates the unique user index and the expiry index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.tokens.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(s.ttl.Seconds())).SetName("created_at_ttl"),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create indexes: %v", ErrUnavailable, err)
	}
	return nil
}

// Put upserts the token for userID, resetting its creation time.
func (s *MongoStore) Put(ctx context.Context, userID, teamID, accessToken string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	filter := bson.M{"user_id": userID}
	upd := bson.M{"$set": bson.M{
		"team_id":      teamID,
		"access_token": accessToken,
		"created_at":   s.now().UTC(),
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.tokens.UpdateOne(ctx, filter, upd, opts); err != nil {
		return fmt.Errorf("%w: store token: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the live record for userID or ErrNotFound.
func (s *MongoStore) Get(ctx context.Context, userID string) (*Record, error) {
	var rec Record
	err := s.tokens.FindOne(ctx, bson.M{"user_id": userID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: load token: %v", ErrUnavailable, err)
	}
	if rec.Expired(s.now(), s.ttl) {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Delete removes the record for userID and reports whether one existed.
func (s *MongoStore) Delete(ctx context.Context, userID string) (bool, error) {
	res, err := s.tokens.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, fmt.Errorf("%w: delete token: %v", ErrUnavailable, err)
	}
	return res.DeletedCount > 0, nil
}

// Sweep deletes every record older than the TTL and returns how many went.
func (s *MongoStore) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl).UTC()
	res, err := s.tokens.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lte": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("%w: sweep tokens: %v", ErrUnavailable, err)
	}
	return res.DeletedCount, nil
}
