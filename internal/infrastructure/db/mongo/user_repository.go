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

// UserRepository implements ports.UserRepository. Besides profile data it
// holds the hash of each user's live refresh token.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	Username         string               `bson:"username"`
	Email            string               `bson:"email"`
	FullName         string               `bson:"fullname"`
	Avatar           string               `bson:"avatar"`
	CoverImage       string               `bson:"coverimage"`
	Password         string               `bson:"password"`
	RefreshTokenHash string               `bson:"refresh_token_hash,omitempty"`
	WatchHistory     []primitive.ObjectID `bson:"watchhistory"`
	CreatedAt        time.Time            `bson:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt"`
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           hexOf(d.ID),
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		Avatar:       d.Avatar,
		CoverImage:   d.CoverImage,
		PasswordHash: d.Password,
		Session:      domain.LoggedIn(d.RefreshTokenHash),
		WatchHistory: hexList(d.WatchHistory),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		Username:         user.Username,
		Email:            user.Email,
		FullName:         user.FullName,
		Avatar:           user.Avatar,
		CoverImage:       user.CoverImage,
		Password:         user.PasswordHash,
		RefreshTokenHash: user.Session.TokenHash(),
		WatchHistory:     []primitive.ObjectID{},
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID("user", id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrUserNotFound, "find user")
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	if excludeID != "" {
		oid, err := objectID("user", excludeID)
		if err != nil {
			return false, err
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	oid, err := objectID("user", id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	for key, value := range map[string]*string{
		"fullname":   patch.FullName,
		"username":   patch.Username,
		"email":      patch.Email,
		"avatar":     patch.Avatar,
		"coverimage": patch.CoverImage,
		"password":   patch.PasswordHash,
	} {
		if value != nil {
			set[key] = *value
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, notFound(err, domain.ErrUserNotFound, "update user")
	}
	return doc.toDomain(), nil
}

// sessionUpdate stores next, unsetting the hash for a logged-out session.
func sessionUpdate(next domain.Session) bson.M {
	if next.LoggedIn() {
		return bson.M{"$set": bson.M{"refresh_token_hash": next.TokenHash()}}
	}
	return bson.M{"$unset": bson.M{"refresh_token_hash": ""}}
}

func (r *UserRepository) SetSession(ctx context.Context, id string, session domain.Session) error {
	oid, err := objectID("user", id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, sessionUpdate(session))
	if err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SwapSession filters on the expected hash so the update only lands while
// the stored session is still the one the caller read.
func (r *UserRepository) SwapSession(ctx context.Context, id string, expected, next domain.Session) error {
	oid, err := objectID("user", id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid}
	if expected.LoggedIn() {
		filter["refresh_token_hash"] = expected.TokenHash()
	} else {
		filter["refresh_token_hash"] = bson.M{"$exists": false}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, filter, sessionUpdate(next))
	if err != nil {
		return fmt.Errorf("swap session: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRefreshTokenReplayed
	}
	return nil
}

func (r *UserRepository) AddToWatchHistory(ctx context.Context, id, videoID string) (bool, []string, error) {
	oid, err := objectID("user", id)
	if err != nil {
		return false, nil, err
	}
	vid, err := objectID("video", videoID)
	if err != nil {
		return false, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "watchhistory": bson.M{"$ne": vid}},
		bson.M{"$push": bson.M{"watchhistory": vid}},
	)
	if err != nil {
		return false, nil, fmt.Errorf("push watch history: %w", err)
	}

	var doc userDoc
	err = r.col.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"watchhistory": 1}),
	).Decode(&doc)
	if err != nil {
		return false, nil, notFound(err, domain.ErrUserNotFound, "read watch history")
	}
	return res.MatchedCount > 0, hexList(doc.WatchHistory), nil
}

// WatchHistory resolves the history in the order it was watched. Videos that
// were deleted since are skipped.
func (r *UserRepository) WatchHistory(ctx context.Context, id string) ([]domain.Video, error) {
	oid, err := objectID("user", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionVideos},
			{Key: "localField", Value: "watchhistory"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "videos"},
		}}},
		{{Key: "$project", Value: bson.M{"watchhistory": 1, "videos": 1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate watch history: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		WatchHistory []primitive.ObjectID `bson:"watchhistory"`
		Videos       []videoDoc           `bson:"videos"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode watch history: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrUserNotFound
	}

	byID := make(map[primitive.ObjectID]videoDoc, len(rows[0].Videos))
	for _, v := range rows[0].Videos {
		byID[v.ID] = v
	}
	out := make([]domain.Video, 0, len(rows[0].WatchHistory))
	for _, vid := range rows[0].WatchHistory {
		if v, ok := byID[vid]; ok {
			out = append(out, v.toDomain())
		}
	}
	return out, nil
}

// ChannelProfile counts subscribers and subscriptions of the channel and
// whether viewerID is among its subscribers.
func (r *UserRepository) ChannelProfile(ctx context.Context, username, viewer string) (*domain.ChannelProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	subLookup := func(foreignField, as string) bson.D {
		return bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionSubscriptions},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: foreignField},
			{Key: "as", Value: as},
		}}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		subLookup("channel", "subscribers"),
		subLookup("subscriber", "subscribedTo"),
		{{Key: "$addFields", Value: bson.D{
			{Key: "subscriberCount", Value: bson.M{"$size": "$subscribers"}},
			{Key: "channelSubscribedToCount", Value: bson.M{"$size": "$subscribedTo"}},
			{Key: "isSubscribed", Value: bson.M{"$in": bson.A{viewerID(viewer), "$subscribers.subscriber"}}},
		}}},
		{{Key: "$project", Value: bson.M{
			"username":                 1,
			"fullname":                 1,
			"email":                    1,
			"avatar":                   1,
			"coverimage":               1,
			"subscriberCount":          1,
			"channelSubscribedToCount": 1,
			"isSubscribed":             1,
			"createdAt":                1,
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate channel: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID                       primitive.ObjectID `bson:"_id"`
		Username                 string             `bson:"username"`
		FullName                 string             `bson:"fullname"`
		Email                    string             `bson:"email"`
		Avatar                   string             `bson:"avatar"`
		CoverImage               string             `bson:"coverimage"`
		SubscriberCount          int64              `bson:"subscriberCount"`
		ChannelSubscribedToCount int64              `bson:"channelSubscribedToCount"`
		IsSubscribed             bool               `bson:"isSubscribed"`
		CreatedAt                time.Time          `bson:"createdAt"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode channel: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrUserNotFound
	}

	row := rows[0]
	return &domain.ChannelProfile{
		ID:                       row.ID.Hex(),
		Username:                 row.Username,
		FullName:                 row.FullName,
		Email:                    row.Email,
		Avatar:                   row.Avatar,
		CoverImage:               row.CoverImage,
		SubscriberCount:          row.SubscriberCount,
		ChannelSubscribedToCount: row.ChannelSubscribedToCount,
		IsSubscribed:             row.IsSubscribed,
		CreatedAt:                row.CreatedAt,
	}, nil
}
