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

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(collectionComments)}
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Video     primitive.ObjectID `bson:"video"`
	Owner     primitive.ObjectID `bson:"owner"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d commentDoc) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        hexOf(d.ID),
		Content:   d.Content,
		Video:     hexOf(d.Video),
		Owner:     hexOf(d.Owner),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type commentViewDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Content   string             `bson:"content"`
	OwnerInfo summaryDoc         `bson:"ownerInfo"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d commentViewDoc) toDomain() domain.CommentView {
	return domain.CommentView{
		ID:        hexOf(d.ID),
		Content:   d.Content,
		Owner:     d.OwnerInfo.toDomain(),
		CreatedAt: d.CreatedAt,
	}
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	video, err := objectID("video", comment.Video)
	if err != nil {
		return nil, err
	}
	owner, err := objectID("owner", comment.Owner)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := commentDoc{
		Content:   comment.Content,
		Video:     video,
		Owner:     owner,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	oid, err := objectID("comment", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc commentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrCommentNotFound, "find comment")
	}
	return doc.toDomain(), nil
}

func (r *CommentRepository) ListByVideo(ctx context.Context, videoID string, page domain.PageRequest) (domain.Page[domain.CommentView], error) {
	video, err := objectID("video", videoID)
	if err != nil {
		return domain.Page[domain.CommentView]{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return aggregatePage(ctx, r.col,
		bson.D{{Key: "video", Value: video}},
		bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		page,
		ownerLookup("owner", "ownerInfo"),
		commentViewDoc.toDomain,
	)
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string) (*domain.Comment, error) {
	oid, err := objectID("comment", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc commentDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, notFound(err, domain.ErrCommentNotFound, "update comment")
	}
	return doc.toDomain(), nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, "comment", id, domain.ErrCommentNotFound)
}

func (r *CommentRepository) DeleteByVideo(ctx context.Context, videoID string) error {
	video, err := objectID("video", videoID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"video": video}); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}

func (r *CommentRepository) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.col, "comment", id)
}
