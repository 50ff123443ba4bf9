package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

const SubmissionStatusNew = "New"

// SubmissionRecord is a completed onboarding form as stored in the
// submissions collection. Written once, never updated.
type SubmissionRecord struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string        `bson:"name" json:"name"`
	Email          string        `bson:"email" json:"email"`
	BusinessType   string        `bson:"businessType" json:"businessType"`
	HasOnlineStore bool          `bson:"hasOnlineStore" json:"hasOnlineStore"`
	StoreURL       *string       `bson:"storeUrl" json:"storeUrl"`
	Industry       string        `bson:"industry" json:"industry"`
	Focus          []string      `bson:"focus" json:"focus"`
	SubmissionDate string        `bson:"submissionDate" json:"submissionDate"`
	Status         string        `bson:"status" json:"status"`
	Timestamp      int64         `bson:"timestamp" json:"timestamp"`
}
