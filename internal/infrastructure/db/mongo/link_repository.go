package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ahnxd/qrnotify/internal/core/domain"
)

const collectionLinks = "links"

type LinkRepository struct {
	col *mongo.Collection
}

func NewLinkRepository(db *mongo.Database) *LinkRepository {
	return &LinkRepository{col: db.Collection(collectionLinks)}
}

type mongoLink struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
	URL  string             `bson:"url"`
}

// Add inserts a new link under a surrogate ObjectID key. A duplicate name
// yields domain.ErrLinkExists.
func (r *LinkRepository) Add(ctx context.Context, name, url string) (*domain.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoLink{Name: name, URL: url})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrLinkExists
		}
		return nil, fmt.Errorf("insert link: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return &domain.Link{ID: id.Hex(), Name: name, URL: url}, nil
}

// List returns all links ordered by insertion (ObjectID ascending).
func (r *LinkRepository) List(ctx context.Context) ([]domain.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find links: %w", err)
	}
	defer cur.Close(ctx)

	var links []domain.Link
	for cur.Next(ctx) {
		var ml mongoLink
		if err := cur.Decode(&ml); err != nil {
			return nil, fmt.Errorf("decode link: %w", err)
		}
		links = append(links, domain.Link{ID: ml.ID.Hex(), Name: ml.Name, URL: ml.URL})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return links, nil
}

// EnsureIndexes creates the unique name index on the links collection.
func (r *LinkRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
