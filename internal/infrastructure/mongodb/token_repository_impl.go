package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/domain/repository"
)

type tokenDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"userId"`
	RefreshToken string             `bson:"refreshToken"`
	CreatedAt    time.Time          `bson:"createdAt"`
	ExpiresAt    time.Time          `bson:"expiresAt"`
	UserAgent    string             `bson:"userAgent"`
}

func (d *tokenDocument) toEntity() *entity.Token {
	return &entity.Token{
		ID:           d.ID.Hex(),
		UserID:       hexOrEmpty(d.UserID),
		RefreshToken: d.RefreshToken,
		CreatedAt:    d.CreatedAt,
		ExpiresAt:    d.ExpiresAt,
		UserAgent:    d.UserAgent,
	}
}

type TokenRepository struct {
	coll *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{coll: db.Collection(tokensCollection)}
}

func (r *TokenRepository) Find(ctx context.Context, filter repository.TokenFilter) ([]*entity.Token, error) {
	q := bson.M{}
	if filter.UserID != "" {
		uid, err := primitive.ObjectIDFromHex(filter.UserID)
		if err != nil {
			return []*entity.Token{}, nil
		}
		q["userId"] = uid
	}
	cur, err := r.coll.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	var docs []tokenDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.Token, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

func (r *TokenRepository) findOne(ctx context.Context, q bson.M) (*entity.Token, error) {
	var doc tokenDocument
	if err := r.coll.FindOne(ctx, q).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *TokenRepository) FindByID(ctx context.Context, id string) (*entity.Token, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *TokenRepository) FindByValue(ctx context.Context, value string) (*entity.Token, error) {
	return r.findOne(ctx, bson.M{"refreshToken": value})
}

func (r *TokenRepository) Create(ctx context.Context, t *entity.Token) error {
	uid, err := primitive.ObjectIDFromHex(t.UserID)
	if err != nil {
		return err
	}
	doc := tokenDocument{
		ID:           primitive.NewObjectID(),
		UserID:       uid,
		RefreshToken: t.RefreshToken,
		CreatedAt:    t.CreatedAt,
		ExpiresAt:    t.ExpiresAt,
		UserAgent:    t.UserAgent,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	t.ID = doc.ID.Hex()
	return nil
}

func (r *TokenRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *TokenRepository) DeleteByValue(ctx context.Context, value string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"refreshToken": value})
	return err
}

func (r *TokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	_, err = r.coll.DeleteMany(ctx, bson.M{"userId": uid})
	return err
}

var _ repository.TokenRepository = (*TokenRepository)(nil)
