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

type VideoRepository struct {
	col *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{col: db.Collection(collectionVideos)}
}

type videoDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Thumbnail   string             `bson:"thumbnail"`
	VideoFile   string             `bson:"videofile"`
	Views       int64              `bson:"views"`
	IsPublished bool               `bson:"ispublished"`
	Owner       primitive.ObjectID `bson:"owner"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d videoDoc) toDomain() domain.Video {
	return domain.Video{
		ID:          hexOf(d.ID),
		Title:       d.Title,
		Description: d.Description,
		Duration:    d.Duration,
		Thumbnail:   d.Thumbnail,
		VideoFile:   d.VideoFile,
		Views:       d.Views,
		IsPublished: d.IsPublished,
		Owner:       hexOf(d.Owner),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type videoDetailDoc struct {
	Video     videoDoc   `bson:",inline"`
	OwnerInfo summaryDoc `bson:"ownerInfo"`
}

func (d videoDetailDoc) toDomain() domain.VideoDetail {
	return domain.VideoDetail{Video: d.Video.toDomain(), OwnerInfo: d.OwnerInfo.toDomain()}
}

func (r *VideoRepository) Create(ctx context.Context, video *domain.Video) (*domain.Video, error) {
	owner, err := objectID("owner", video.Owner)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := videoDoc{
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration,
		Thumbnail:   video.Thumbnail,
		VideoFile:   video.VideoFile,
		Views:       video.Views,
		IsPublished: video.IsPublished,
		Owner:       owner,
		CreatedAt:   video.CreatedAt,
		UpdatedAt:   video.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	v := doc.toDomain()
	return &v, nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*domain.Video, error) {
	oid, err := objectID("video", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc videoDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrVideoNotFound, "find video")
	}
	v := doc.toDomain()
	return &v, nil
}

func (r *VideoRepository) FindDetail(ctx context.Context, id string) (*domain.VideoDetail, error) {
	oid, err := objectID("video", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": oid}}}}, ownerLookup("owner", "ownerInfo")...)
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate video: %w", err)
	}
	details, err := decodeAll(ctx, cur, videoDetailDoc.toDomain)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, domain.ErrVideoNotFound
	}
	return &details[0], nil
}

func (r *VideoRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Video, error) {
	owner, err := objectID("owner", ownerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"owner": owner}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find videos: %w", err)
	}
	return decodeAll(ctx, cur, videoDoc.toDomain)
}

// ListPublished pages through published videos newest first.
func (r *VideoRepository) ListPublished(ctx context.Context, page domain.PageRequest) (domain.Page[domain.VideoDetail], error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return aggregatePage(ctx, r.col,
		bson.D{{Key: "ispublished", Value: true}},
		bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		page,
		ownerLookup("owner", "ownerInfo"),
		videoDetailDoc.toDomain,
	)
}

func (r *VideoRepository) Update(ctx context.Context, id string, patch domain.VideoPatch) (*domain.Video, error) {
	oid, err := objectID("video", id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	if patch.Thumbnail != nil {
		set["thumbnail"] = *patch.Thumbnail
	}
	if patch.VideoFile != nil {
		set["videofile"] = *patch.VideoFile
	}
	if patch.IsPublished != nil {
		set["ispublished"] = *patch.IsPublished
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc videoDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, notFound(err, domain.ErrVideoNotFound, "update video")
	}
	v := doc.toDomain()
	return &v, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, "video", id, domain.ErrVideoNotFound)
}

func (r *VideoRepository) Visible(ctx context.Context, id, viewer string) (bool, error) {
	oid, err := objectID("video", id)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, visibleFilter(oid, viewer), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count video: %w", err)
	}
	return n > 0, nil
}

// visibleFilter matches the video when it is published or owned by viewer.
func visibleFilter(oid primitive.ObjectID, viewer string) bson.M {
	visible := bson.A{bson.M{"ispublished": true}}
	if v := viewerID(viewer); !v.IsZero() {
		visible = append(visible, bson.M{"owner": v})
	}
	return bson.M{"_id": oid, "$or": visible}
}

func deleteByID(ctx context.Context, col *mongo.Collection, name, id string, missing error) error {
	oid, err := objectID(name, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return missing
	}
	return nil
}

func existsByID(ctx context.Context, col *mongo.Collection, name, id string) (bool, error) {
	oid, err := objectID(name, id)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count %s: %w", name, err)
	}
	return n > 0, nil
}
