package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidtube/backend/internal/core/domain"
)

type TweetRepository struct {
	col *mongo.Collection
}

func NewTweetRepository(db *mongo.Database) *TweetRepository {
	return &TweetRepository{col: db.Collection(collectionTweets)}
}

type tweetDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Owner     primitive.ObjectID `bson:"owner"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d tweetDoc) toDomain() domain.Tweet {
	return domain.Tweet{
		ID:        hexOf(d.ID),
		Content:   d.Content,
		Owner:     hexOf(d.Owner),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *TweetRepository) Create(ctx context.Context, tweet *domain.Tweet) (*domain.Tweet, error) {
	owner, err := objectID("owner", tweet.Owner)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := tweetDoc{Content: tweet.Content, Owner: owner, CreatedAt: tweet.CreatedAt, UpdatedAt: tweet.UpdatedAt}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert tweet: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	t := doc.toDomain()
	return &t, nil
}

func (r *TweetRepository) FindByID(ctx context.Context, id string) (*domain.Tweet, error) {
	oid, err := objectID("tweet", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc tweetDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrTweetNotFound, "find tweet")
	}
	t := doc.toDomain()
	return &t, nil
}

func (r *TweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Tweet, error) {
	owner, err := objectID("owner", ownerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"owner": owner}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find tweets: %w", err)
	}
	return decodeAll(ctx, cur, tweetDoc.toDomain)
}

func (r *TweetRepository) UpdateContent(ctx context.Context, id, content string) (*domain.Tweet, error) {
	oid, err := objectID("tweet", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc tweetDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, notFound(err, domain.ErrTweetNotFound, "update tweet")
	}
	t := doc.toDomain()
	return &t, nil
}

func (r *TweetRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, "tweet", id, domain.ErrTweetNotFound)
}

func (r *TweetRepository) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.col, "tweet", id)
}
