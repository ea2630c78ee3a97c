package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blogposts/blogposts-api/internal/post"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores posts in a MongoDB collection keyed by ObjectID.
// The hex form of the ObjectID is the public post id.
type MongoRepo struct {
	col *mongo.Collection
}

type mongoPost struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Content     string             `bson:"content"`
	Author      post.Author        `bson:"author"`
	PublishDate *time.Time         `bson:"publishDate,omitempty"`
	Created     time.Time          `bson:"created"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (r *mongoPost) toPost() *post.Post {
	p := &post.Post{
		ID:      r.ID.Hex(),
		Title:   r.Title,
		Content: r.Content,
		Author:  r.Author,
		Created: r.Created.UTC(),
	}
	if r.PublishDate != nil {
		t := r.PublishDate.UTC()
		p.PublishDate = &t
	}
	return p
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, p *post.Post) (string, error) {
	// Mongo keeps millisecond precision; truncate so the caller sees what is stored.
	now := time.Now().UTC().Truncate(time.Millisecond)
	rec := mongoPost{
		ID:          primitive.NewObjectID(),
		Title:       p.Title,
		Content:     p.Content,
		Author:      p.Author,
		PublishDate: p.PublishDate,
		Created:     now,
		UpdatedAt:   now,
	}
	if _, err := m.col.InsertOne(ctx, rec); err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}
	p.ID = rec.ID.Hex()
	p.Created = now
	return p.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*post.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var rec mongoPost
	if err := m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return rec.toPost(), nil
}

func (m *MongoRepo) List(ctx context.Context, limit int) ([]*post.Post, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cur.Close(ctx)
	out := []*post.Post{}
	for cur.Next(ctx) {
		var rec mongoPost
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		out = append(out, rec.toPost())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

func (m *MongoRepo) Update(ctx context.Context, id string, ch post.Changes) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if ch.Title != nil {
		set["title"] = *ch.Title
	}
	if ch.Content != nil {
		set["content"] = *ch.Content
	}
	if ch.Author != nil {
		set["author"] = *ch.Author
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// an id that cannot exist is already deleted
		return nil
	}
	if _, err := m.col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}
