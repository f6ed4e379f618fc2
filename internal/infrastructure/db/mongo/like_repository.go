package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/core/domain"
)

type LikeRepository struct {
	col *mongo.Collection
}

func NewLikeRepository(db *mongo.Database) *LikeRepository {
	return &LikeRepository{col: db.Collection(collectionLikes)}
}

// likeDoc sets exactly one of Video, Comment and Tweet.
type likeDoc struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Video     *primitive.ObjectID `bson:"video,omitempty"`
	Comment   *primitive.ObjectID `bson:"comment,omitempty"`
	Tweet     *primitive.ObjectID `bson:"tweet,omitempty"`
	LikedBy   primitive.ObjectID  `bson:"likedby"`
	CreatedAt time.Time           `bson:"createdAt"`
}

func (d likeDoc) toDomain() *domain.Like {
	ref := func(oid *primitive.ObjectID) string {
		if oid == nil {
			return ""
		}
		return oid.Hex()
	}
	return &domain.Like{
		ID:        hexOf(d.ID),
		Video:     ref(d.Video),
		Comment:   ref(d.Comment),
		Tweet:     ref(d.Tweet),
		LikedBy:   hexOf(d.LikedBy),
		CreatedAt: d.CreatedAt,
	}
}

// targetFilter returns the field holding target and its parsed id.
func targetFilter(target domain.LikeTarget) (string, primitive.ObjectID, error) {
	switch target.Kind {
	case domain.LikeVideo, domain.LikeComment, domain.LikeTweet:
	default:
		return "", primitive.NilObjectID, domain.NewValidationError("unknown like target " + string(target.Kind))
	}
	oid, err := objectID(string(target.Kind), target.ID)
	return string(target.Kind), oid, err
}

func (r *LikeRepository) Find(ctx context.Context, target domain.LikeTarget, userID string) (*domain.Like, error) {
	field, oid, err := targetFilter(target)
	if err != nil {
		return nil, err
	}
	user, err := objectID("user", userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc likeDoc
	if err := r.col.FindOne(ctx, bson.M{field: oid, "likedby": user}).Decode(&doc); err != nil {
		return nil, notFound(err, domain.NewError(domain.KindNotFound, "like not found", nil), "find like")
	}
	return doc.toDomain(), nil
}

func (r *LikeRepository) Create(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	user, err := objectID("user", like.LikedBy)
	if err != nil {
		return nil, err
	}
	doc := likeDoc{LikedBy: user, CreatedAt: like.CreatedAt}
	for _, ref := range []struct {
		name string
		hex  string
		dst  **primitive.ObjectID
	}{
		{"video", like.Video, &doc.Video},
		{"comment", like.Comment, &doc.Comment},
		{"tweet", like.Tweet, &doc.Tweet},
	} {
		if ref.hex == "" {
			continue
		}
		oid, err := objectID(ref.name, ref.hex)
		if err != nil {
			return nil, err
		}
		*ref.dst = &oid
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewError(domain.KindConflict, "already liked", err)
		}
		return nil, fmt.Errorf("insert like: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *LikeRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, "like", id, domain.NewError(domain.KindNotFound, "like not found", nil))
}

// LikedVideos lists the published videos userID liked, most recent like first.
func (r *LikeRepository) LikedVideos(ctx context.Context, userID string) ([]domain.Video, error) {
	user, err := objectID("user", userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"likedby": user, "video": bson.M{"$exists": true}}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionVideos},
			{Key: "localField", Value: "video"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "liked"},
		}}},
		{{Key: "$unwind", Value: "$liked"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$liked"}}},
		{{Key: "$match", Value: bson.M{"ispublished": true}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate liked videos: %w", err)
	}
	return decodeAll(ctx, cur, videoDoc.toDomain)
}
