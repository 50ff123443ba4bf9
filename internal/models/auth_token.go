package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuthToken is a single-use admin login token delivered by email.
type AuthToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string        `bson:"email" json:"email"`
	Token     string        `bson:"token" json:"token"`
	ExpiresAt time.Time     `bson:"expires_at" json:"expires_at"`
	IsUsed    bool          `bson:"is_used" json:"is_used"`
	UsedAt    *time.Time    `bson:"used_at,omitempty" json:"used_at,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

func (t *AuthToken) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

func (t *AuthToken) IsExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
