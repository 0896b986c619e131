// internal/app/store/logins/loginstore.go
package loginstore

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/talenthub/internal/app/system/ratelimit"
	"github.com/dalemusser/talenthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// RecordFrom builds a LoginRecord from the request and inserts it.
func (s *Store) RecordFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string) error {
	_, err := s.c.InsertOne(ctx, models.LoginRecord{
		UserID:    userID,
		LoginID:   loginID,
		CreatedAt: time.Now().UTC(),
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	return err
}

// Recent returns up to limit sign-ins for a user, newest first.
func (s *Store) Recent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LoginRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
