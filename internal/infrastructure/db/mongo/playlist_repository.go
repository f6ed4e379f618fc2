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

type PlaylistRepository struct {
	col *mongo.Collection
}

func NewPlaylistRepository(db *mongo.Database) *PlaylistRepository {
	return &PlaylistRepository{col: db.Collection(collectionPlaylists)}
}

type playlistDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Videos      []primitive.ObjectID `bson:"videos"`
	Owner       primitive.ObjectID   `bson:"owner"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func (d playlistDoc) toDomain() domain.Playlist {
	return domain.Playlist{
		ID:          hexOf(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Videos:      hexList(d.Videos),
		Owner:       hexOf(d.Owner),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *PlaylistRepository) Create(ctx context.Context, playlist *domain.Playlist) (*domain.Playlist, error) {
	owner, err := objectID("owner", playlist.Owner)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := playlistDoc{
		Name:        playlist.Name,
		Description: playlist.Description,
		Videos:      []primitive.ObjectID{},
		Owner:       owner,
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	p := doc.toDomain()
	return &p, nil
}

func (r *PlaylistRepository) FindByID(ctx context.Context, id string) (*domain.Playlist, error) {
	oid, err := objectID("playlist", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc playlistDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err, domain.ErrPlaylistNotFound, "find playlist")
	}
	p := doc.toDomain()
	return &p, nil
}

// FindDetail resolves the playlist's videos, keeping playlist order and
// dropping videos deleted since they were added.
func (r *PlaylistRepository) FindDetail(ctx context.Context, id string) (*domain.PlaylistDetail, error) {
	oid, err := objectID("playlist", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionVideos},
			{Key: "localField", Value: "videos"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "videoDocs"},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate playlist: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Playlist  playlistDoc `bson:",inline"`
		VideoDocs []videoDoc  `bson:"videoDocs"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode playlist: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrPlaylistNotFound
	}

	row := rows[0]
	byID := make(map[primitive.ObjectID]videoDoc, len(row.VideoDocs))
	for _, v := range row.VideoDocs {
		byID[v.ID] = v
	}
	videos := make([]domain.Video, 0, len(row.Playlist.Videos))
	for _, vid := range row.Playlist.Videos {
		if v, ok := byID[vid]; ok {
			videos = append(videos, v.toDomain())
		}
	}

	return &domain.PlaylistDetail{
		ID:          hexOf(row.Playlist.ID),
		Name:        row.Playlist.Name,
		Description: row.Playlist.Description,
		Videos:      videos,
		Owner:       hexOf(row.Playlist.Owner),
		CreatedAt:   row.Playlist.CreatedAt,
		UpdatedAt:   row.Playlist.UpdatedAt,
	}, nil
}

func (r *PlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Playlist, error) {
	owner, err := objectID("owner", ownerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"owner": owner}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find playlists: %w", err)
	}
	return decodeAll(ctx, cur, playlistDoc.toDomain)
}

func (r *PlaylistRepository) Update(ctx context.Context, id, name, description string) (*domain.Playlist, error) {
	return r.modify(ctx, id, bson.M{"$set": bson.M{"name": name, "description": description}})
}

func (r *PlaylistRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, "playlist", id, domain.ErrPlaylistNotFound)
}

// AddVideo appends with $addToSet so a concurrent duplicate add is a no-op.
func (r *PlaylistRepository) AddVideo(ctx context.Context, id, videoID string) (*domain.Playlist, error) {
	vid, err := objectID("video", videoID)
	if err != nil {
		return nil, err
	}
	return r.modify(ctx, id, bson.M{"$addToSet": bson.M{"videos": vid}})
}

func (r *PlaylistRepository) RemoveVideo(ctx context.Context, id, videoID string) (*domain.Playlist, error) {
	vid, err := objectID("video", videoID)
	if err != nil {
		return nil, err
	}
	return r.modify(ctx, id, bson.M{"$pull": bson.M{"videos": vid}})
}

func (r *PlaylistRepository) modify(ctx context.Context, id string, update bson.M) (*domain.Playlist, error) {
	oid, err := objectID("playlist", id)
	if err != nil {
		return nil, err
	}
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
		update["$set"] = set
	}
	set["updatedAt"] = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc playlistDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, notFound(err, domain.ErrPlaylistNotFound, "update playlist")
	}
	p := doc.toDomain()
	return &p, nil
}
