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

type userDocument struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Email        string               `bson:"email"`
	Name         string               `bson:"name"`
	PasswordHash string               `bson:"passwordHash"`
	Avatar       string               `bson:"avatar"`
	Type         string               `bson:"type"`
	Favorites    []primitive.ObjectID `bson:"favorites"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Avatar:       d.Avatar,
		Type:         entity.UserType(d.Type),
		Favorites:    toHexes(d.Favorites),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

func (r *UserRepository) Find(ctx context.Context, filter repository.UserFilter) ([]*entity.User, error) {
	q := bson.M{}
	if filter.Email != "" {
		q["email"] = entity.NormalizeEmail(filter.Email)
	}
	if filter.Type != "" {
		q["type"] = string(filter.Type)
	}
	cur, err := r.coll.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

func (r *UserRepository) findOne(ctx context.Context, q bson.M) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, q).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": entity.NormalizeEmail(email)})
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	now := time.Now().UTC()
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Email:        entity.NormalizeEmail(u.Email),
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Avatar:       u.Avatar,
		Type:         string(u.Type),
		Favorites:    toObjectIDs(u.Favorites),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	u.ID = doc.ID.Hex()
	u.Email = doc.Email
	u.Favorites = toHexes(doc.Favorites)
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch repository.UserPatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Avatar != nil {
		set["avatar"] = *patch.Avatar
	}
	if patch.Type != nil {
		set["type"] = string(*patch.Type)
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *UserRepository) updateFavorites(ctx context.Context, userID, offerID, op string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repository.ErrNotFound
	}
	oid, err := primitive.ObjectIDFromHex(offerID)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{op: bson.M{"favorites": oid}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) AddFavorite(ctx context.Context, userID, offerID string) error {
	return r.updateFavorites(ctx, userID, offerID, "$addToSet")
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, offerID string) error {
	return r.updateFavorites(ctx, userID, offerID, "$pull")
}

func (r *UserRepository) RemoveFavoriteFromAll(ctx context.Context, offerID string) error {
	oid, err := primitive.ObjectIDFromHex(offerID)
	if err != nil {
		return nil
	}
	_, err = r.coll.UpdateMany(ctx, bson.M{"favorites": oid}, bson.M{"$pull": bson.M{"favorites": oid}})
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
