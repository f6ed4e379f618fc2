package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/core/domain"
)

// objectID parses a hex id supplied by a client. Malformed ids are a client
// error, not a lookup miss.
func objectID(name, hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, domain.NewValidationError("invalid " + name + " id")
	}
	return oid, nil
}

// viewerID parses an optional id; anything unparsable matches nobody.
func viewerID(hex string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

func hexOf(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

func hexList(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

// notFound maps a missing document to the given domain error.
func notFound(err error, missing error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return missing
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ownerLookup embeds the owner summary of a document under as.
func ownerLookup(localField, as string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: as},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "username", Value: 1},
					{Key: "email", Value: 1},
					{Key: "fullname", Value: 1},
					{Key: "avatar", Value: 1},
				}}},
			}},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

type summaryDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
	FullName string             `bson:"fullname"`
	Avatar   string             `bson:"avatar"`
}

func (d summaryDoc) toDomain() domain.UserSummary {
	return domain.UserSummary{
		ID:       hexOf(d.ID),
		Username: d.Username,
		Email:    d.Email,
		FullName: d.FullName,
		Avatar:   d.Avatar,
	}
}

type pageFacet[D any] struct {
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
	Docs []D `bson:"docs"`
}

// aggregatePage runs match and sort, then counts and slices the result in one
// round trip with $facet. stages run only on the selected page.
func aggregatePage[D any, T any](
	ctx context.Context,
	col *mongo.Collection,
	match bson.D,
	sort bson.D,
	req domain.PageRequest,
	stages mongo.Pipeline,
	convert func(D) T,
) (domain.Page[T], error) {
	pageStages := bson.A{
		bson.D{{Key: "$skip", Value: req.Skip()}},
		bson.D{{Key: "$limit", Value: int64(req.Limit)}},
	}
	for _, s := range stages {
		pageStages = append(pageStages, s)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$facet", Value: bson.D{
			{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "count"}}}},
			{Key: "docs", Value: pageStages},
		}}},
	}

	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.Page[T]{}, fmt.Errorf("aggregate page: %w", err)
	}
	defer cur.Close(ctx)

	var facets []pageFacet[D]
	if err := cur.All(ctx, &facets); err != nil {
		return domain.Page[T]{}, fmt.Errorf("decode page: %w", err)
	}

	var (
		total int64
		docs  []T
	)
	if len(facets) > 0 {
		if len(facets[0].Total) > 0 {
			total = facets[0].Total[0].Count
		}
		docs = make([]T, 0, len(facets[0].Docs))
		for _, d := range facets[0].Docs {
			docs = append(docs, convert(d))
		}
	}
	return domain.NewPage(docs, total, req), nil
}

// decodeAll drains cur through convert.
func decodeAll[D any, T any](ctx context.Context, cur *mongo.Cursor, convert func(D) T) ([]T, error) {
	defer cur.Close(ctx)
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		out = append(out, convert(d))
	}
	return out, nil
}
