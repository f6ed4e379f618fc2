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

var errSubscriptionNotFound = domain.NewError(domain.KindNotFound, "subscription not found", nil)

type SubscriptionRepository struct {
	col *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{col: db.Collection(collectionSubscriptions)}
}

type subscriptionDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Subscriber primitive.ObjectID `bson:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d subscriptionDoc) toDomain() *domain.Subscription {
	return &domain.Subscription{
		ID:         hexOf(d.ID),
		Subscriber: hexOf(d.Subscriber),
		Channel:    hexOf(d.Channel),
		CreatedAt:  d.CreatedAt,
	}
}

type subscriptionViewDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	User      summaryDoc         `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d subscriptionViewDoc) toDomain() domain.SubscriptionView {
	return domain.SubscriptionView{ID: hexOf(d.ID), User: d.User.toDomain(), CreatedAt: d.CreatedAt}
}

func (r *SubscriptionRepository) Find(ctx context.Context, subscriberID, channelID string) (*domain.Subscription, error) {
	subscriber, err := objectID("subscriber", subscriberID)
	if err != nil {
		return nil, err
	}
	channel, err := objectID("channel", channelID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc subscriptionDoc
	if err := r.col.FindOne(ctx, bson.M{"subscriber": subscriber, "channel": channel}).Decode(&doc); err != nil {
		return nil, notFound(err, errSubscriptionNotFound, "find subscription")
	}
	return doc.toDomain(), nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	subscriber, err := objectID("subscriber", sub.Subscriber)
	if err != nil {
		return nil, err
	}
	channel, err := objectID("channel", sub.Channel)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := subscriptionDoc{Subscriber: subscriber, Channel: channel, CreatedAt: sub.CreatedAt}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewError(domain.KindConflict, "already subscribed", err)
		}
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, "subscription", id, errSubscriptionNotFound)
}

// ListSubscribers resolves the users subscribed to channelID.
func (r *SubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]domain.SubscriptionView, error) {
	return r.list(ctx, "channel", channelID, "subscriber")
}

// ListSubscribedChannels resolves the channels subscriberID follows.
func (r *SubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]domain.SubscriptionView, error) {
	return r.list(ctx, "subscriber", subscriberID, "channel")
}

func (r *SubscriptionRepository) list(ctx context.Context, matchField, id, otherField string) ([]domain.SubscriptionView, error) {
	oid, err := objectID(matchField, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{matchField: oid}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
	}
	pipeline = append(pipeline, ownerLookup(otherField, "user")...)
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"user": bson.M{"$exists": true}}}})

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate subscriptions: %w", err)
	}
	return decodeAll(ctx, cur, subscriptionViewDoc.toDomain)
}
