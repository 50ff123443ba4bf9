package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Post struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string        `bson:"title" json:"title"`
	Excerpt   string        `bson:"excerpt" json:"excerpt"`
	Content   string        `bson:"content" json:"content"`
	Author    string        `bson:"author" json:"author"`
	Date      string        `bson:"date" json:"date"`
	ReadTime  string        `bson:"read_time" json:"readTime"`
	Views     int           `bson:"views" json:"views"`
	Category  string        `bson:"category" json:"category"`
	Tags      []string      `bson:"tags" json:"tags"`
	Featured  bool          `bson:"featured" json:"featured"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}
