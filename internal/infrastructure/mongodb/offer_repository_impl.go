package mongodb

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/domain/repository"
)

type coordinatesDocument struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

type offerDocument struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	Name          string              `bson:"name"`
	Description   string              `bson:"description"`
	PublishDate   time.Time           `bson:"publishDate"`
	City          string              `bson:"city"`
	PreviewImage  string              `bson:"previewImage"`
	Photos        []string            `bson:"photos"`
	IsPremium     bool                `bson:"isPremium"`
	IsFavorite    bool                `bson:"isFavorite"`
	Rating        float64             `bson:"rating"`
	Type          string              `bson:"type"`
	Rooms         int                 `bson:"rooms"`
	Guests        int                 `bson:"guests"`
	Price         int                 `bson:"price"`
	Amenities     []string            `bson:"amenities"`
	AuthorID      primitive.ObjectID  `bson:"authorId"`
	CommentsCount int                 `bson:"commentsCount"`
	Coordinates   coordinatesDocument `bson:"coordinates"`
}

func amenitiesToStrings(in []entity.Amenity) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, string(a))
	}
	return out
}

func newOfferDocument(o *entity.Offer) (offerDocument, error) {
	author, err := primitive.ObjectIDFromHex(o.AuthorID)
	if err != nil {
		return offerDocument{}, err
	}
	photos := o.Photos
	if photos == nil {
		photos = []string{}
	}
	return offerDocument{
		ID:            primitive.NewObjectID(),
		Name:          o.Name,
		Description:   o.Description,
		PublishDate:   o.PublishDate,
		City:          string(o.City),
		PreviewImage:  o.PreviewImage,
		Photos:        photos,
		IsPremium:     o.IsPremium,
		IsFavorite:    o.IsFavorite,
		Rating:        o.Rating,
		Type:          string(o.Type),
		Rooms:         o.Rooms,
		Guests:        o.Guests,
		Price:         o.Price,
		Amenities:     amenitiesToStrings(o.Amenities),
		AuthorID:      author,
		CommentsCount: o.CommentsCount,
		Coordinates:   coordinatesDocument{Lat: o.Coordinates.Lat, Lng: o.Coordinates.Lng},
	}, nil
}

func (d *offerDocument) toEntity() *entity.Offer {
	amenities := make([]entity.Amenity, 0, len(d.Amenities))
	for _, a := range d.Amenities {
		amenities = append(amenities, entity.Amenity(a))
	}
	return &entity.Offer{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Description:   d.Description,
		PublishDate:   d.PublishDate,
		City:          entity.City(d.City),
		PreviewImage:  d.PreviewImage,
		Photos:        d.Photos,
		IsPremium:     d.IsPremium,
		IsFavorite:    d.IsFavorite,
		Rating:        d.Rating,
		Type:          entity.HousingType(d.Type),
		Rooms:         d.Rooms,
		Guests:        d.Guests,
		Price:         d.Price,
		Amenities:     amenities,
		AuthorID:      hexOrEmpty(d.AuthorID),
		CommentsCount: d.CommentsCount,
		Coordinates:   entity.Coordinates{Lat: d.Coordinates.Lat, Lng: d.Coordinates.Lng},
	}
}

type OfferRepository struct {
	coll *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) *OfferRepository {
	return &OfferRepository{coll: db.Collection(offersCollection)}
}

func offerQuery(f repository.OfferFilter) bson.M {
	q := bson.M{}
	if f.City != "" {
		q["city"] = string(f.City)
	}
	if f.PremiumOnly {
		q["isPremium"] = true
	}
	if f.AuthorID != "" {
		if oid, err := primitive.ObjectIDFromHex(f.AuthorID); err == nil {
			q["authorId"] = oid
		}
	}
	if len(f.IDs) > 0 {
		q["_id"] = bson.M{"$in": toObjectIDs(f.IDs)}
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"description": rx},
			bson.M{"city": rx},
		}
	}
	return q
}

func (r *OfferRepository) Find(ctx context.Context, filter repository.OfferFilter) ([]*entity.Offer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publishDate", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.coll.Find(ctx, offerQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	var docs []offerDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.Offer, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id string) (*entity.Offer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc offerDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *OfferRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Offer, error) {
	if len(toObjectIDs(ids)) == 0 {
		return []*entity.Offer{}, nil
	}
	return r.Find(ctx, repository.OfferFilter{IDs: ids})
}

func (r *OfferRepository) Create(ctx context.Context, o *entity.Offer) error {
	doc, err := newOfferDocument(o)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	o.ID = doc.ID.Hex()
	return nil
}

func (r *OfferRepository) Update(ctx context.Context, id string, p entity.OfferPatch) error {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.City != nil {
		set["city"] = string(*p.City)
	}
	if p.PreviewImage != nil {
		set["previewImage"] = *p.PreviewImage
	}
	if p.Photos != nil {
		set["photos"] = *p.Photos
	}
	if p.IsPremium != nil {
		set["isPremium"] = *p.IsPremium
	}
	if p.Type != nil {
		set["type"] = string(*p.Type)
	}
	if p.Rooms != nil {
		set["rooms"] = *p.Rooms
	}
	if p.Guests != nil {
		set["guests"] = *p.Guests
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Amenities != nil {
		set["amenities"] = amenitiesToStrings(*p.Amenities)
	}
	if p.Coordinates != nil {
		set["coordinates"] = coordinatesDocument{Lat: p.Coordinates.Lat, Lng: p.Coordinates.Lng}
	}
	return r.set(ctx, id, set)
}

func (r *OfferRepository) UpdateStats(ctx context.Context, id string, rating float64, commentsCount int) error {
	return r.set(ctx, id, bson.M{"rating": rating, "commentsCount": commentsCount})
}

func (r *OfferRepository) set(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	if len(set) == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return nil
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

func (r *OfferRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

var _ repository.OfferRepository = (*OfferRepository)(nil)
