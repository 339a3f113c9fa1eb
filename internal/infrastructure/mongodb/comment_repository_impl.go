package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/domain/repository"
)

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	OfferID   primitive.ObjectID `bson:"offerId"`
	UserID    primitive.ObjectID `bson:"userId"`
	Text      string             `bson:"text"`
	Rating    int                `bson:"rating"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *commentDocument) toEntity() *entity.Comment {
	return &entity.Comment{
		ID:        d.ID.Hex(),
		OfferID:   hexOrEmpty(d.OfferID),
		UserID:    hexOrEmpty(d.UserID),
		Text:      d.Text,
		Rating:    d.Rating,
		CreatedAt: d.CreatedAt,
	}
}

type CommentRepository struct {
	coll *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{coll: db.Collection(commentsCollection)}
}

func (r *CommentRepository) Find(ctx context.Context, filter repository.CommentFilter) ([]*entity.Comment, error) {
	q := bson.M{}
	if filter.OfferID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.OfferID)
		if err != nil {
			return []*entity.Comment{}, nil
		}
		q["offerId"] = oid
	}
	if filter.UserID != "" {
		uid, err := primitive.ObjectIDFromHex(filter.UserID)
		if err != nil {
			return []*entity.Comment{}, nil
		}
		q["userId"] = uid
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	var docs []commentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.Comment, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*entity.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc commentDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *CommentRepository) FindByOfferID(ctx context.Context, offerID string, limit int) ([]*entity.Comment, error) {
	return r.Find(ctx, repository.CommentFilter{OfferID: offerID, Limit: limit})
}

func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	offerID, err := primitive.ObjectIDFromHex(c.OfferID)
	if err != nil {
		return err
	}
	userID, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	doc := commentDocument{
		ID:        primitive.NewObjectID(),
		OfferID:   offerID,
		UserID:    userID,
		Text:      c.Text,
		Rating:    c.Rating,
		CreatedAt: c.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (r *CommentRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *CommentRepository) DeleteByOfferID(ctx context.Context, offerID string) error {
	oid, err := primitive.ObjectIDFromHex(offerID)
	if err != nil {
		return nil
	}
	_, err = r.coll.DeleteMany(ctx, bson.M{"offerId": oid})
	return err
}

// StatsByOfferID computes count and rating sum server-side in one aggregation.
func (r *CommentRepository) StatsByOfferID(ctx context.Context, offerID string) (repository.CommentStats, error) {
	oid, err := primitive.ObjectIDFromHex(offerID)
	if err != nil {
		return repository.CommentStats{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "offerId", Value: oid}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "ratingSum", Value: bson.D{{Key: "$sum", Value: "$rating"}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return repository.CommentStats{}, err
	}
	var rows []struct {
		Count     int `bson:"count"`
		RatingSum int `bson:"ratingSum"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return repository.CommentStats{}, err
	}
	if len(rows) == 0 {
		return repository.CommentStats{}, nil
	}
	return repository.CommentStats{Count: rows[0].Count, RatingSum: rows[0].RatingSum}, nil
}

var _ repository.CommentRepository = (*CommentRepository)(nil)
