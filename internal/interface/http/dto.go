package handlers

import (
	"time"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/internal/domain/entity"
)

// Request bodies use the client vocabulary (title, images, bedrooms,
// maxAdults, latitude/longitude); responses use the stored one.

type CoordinatesDto struct {
	Latitude  float64 `json:"latitude" binding:"latitude"`
	Longitude float64 `json:"longitude" binding:"longitude"`
}

type CreateOfferDto struct {
	Title        string          `json:"title" binding:"required,min=10,max=100"`
	Description  string          `json:"description" binding:"required,min=20,max=1024"`
	City         string          `json:"city" binding:"required,city"`
	PreviewImage string          `json:"previewImage" binding:"required,max=256"`
	Images       []string        `json:"images" binding:"required,min=1,max=6,dive,required"`
	IsPremium    bool            `json:"isPremium"`
	Type         string          `json:"type" binding:"required,housing"`
	Bedrooms     int             `json:"bedrooms" binding:"required,min=1,max=8"`
	MaxAdults    int             `json:"maxAdults" binding:"required,min=1,max=10"`
	Price        int             `json:"price" binding:"required,min=100,max=100000"`
	Amenities    []string        `json:"amenities" binding:"required,unique,dive,amenity"`
	Coordinates  *CoordinatesDto `json:"coordinates" binding:"required"`
}

// ToEntity translates the request into an offer record; derived fields are left for the service.
func (d *CreateOfferDto) ToEntity() *entity.Offer {
	return &entity.Offer{
		Name:         d.Title,
		Description:  d.Description,
		City:         entity.City(d.City),
		PreviewImage: d.PreviewImage,
		Photos:       append([]string(nil), d.Images...),
		IsPremium:    d.IsPremium,
		Type:         entity.HousingType(d.Type),
		Rooms:        d.Bedrooms,
		Guests:       d.MaxAdults,
		Price:        d.Price,
		Amenities:    toAmenities(d.Amenities),
		Coordinates:  entity.Coordinates{Lat: d.Coordinates.Latitude, Lng: d.Coordinates.Longitude},
	}
}

type UpdateOfferDto struct {
	Title        *string         `json:"title" binding:"omitnil,min=10,max=100"`
	Description  *string         `json:"description" binding:"omitnil,min=20,max=1024"`
	City         *string         `json:"city" binding:"omitnil,city"`
	PreviewImage *string         `json:"previewImage" binding:"omitnil,min=1,max=256"`
	Images       []string        `json:"images" binding:"omitempty,min=1,max=6,dive,required"`
	IsPremium    *bool           `json:"isPremium"`
	Type         *string         `json:"type" binding:"omitnil,housing"`
	Bedrooms     *int            `json:"bedrooms" binding:"omitnil,min=1,max=8"`
	MaxAdults    *int            `json:"maxAdults" binding:"omitnil,min=1,max=10"`
	Price        *int            `json:"price" binding:"omitnil,min=100,max=100000"`
	Amenities    []string        `json:"amenities" binding:"omitempty,unique,dive,amenity"`
	Coordinates  *CoordinatesDto `json:"coordinates" binding:"omitnil"`
}

// ToPatch keeps only the fields present in the request.
func (d *UpdateOfferDto) ToPatch() entity.OfferPatch {
	p := entity.OfferPatch{
		Name:         d.Title,
		Description:  d.Description,
		PreviewImage: d.PreviewImage,
		IsPremium:    d.IsPremium,
		Rooms:        d.Bedrooms,
		Guests:       d.MaxAdults,
		Price:        d.Price,
	}
	if d.City != nil {
		c := entity.City(*d.City)
		p.City = &c
	}
	if d.Type != nil {
		t := entity.HousingType(*d.Type)
		p.Type = &t
	}
	if d.Images != nil {
		photos := append([]string(nil), d.Images...)
		p.Photos = &photos
	}
	if d.Amenities != nil {
		a := toAmenities(d.Amenities)
		p.Amenities = &a
	}
	if d.Coordinates != nil {
		p.Coordinates = &entity.Coordinates{Lat: d.Coordinates.Latitude, Lng: d.Coordinates.Longitude}
	}
	return p
}

func toAmenities(in []string) []entity.Amenity {
	out := make([]entity.Amenity, 0, len(in))
	for _, a := range in {
		out = append(out, entity.Amenity(a))
	}
	return out
}

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type OfferResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	PublishDate   time.Time           `json:"publishDate"`
	City          string              `json:"city"`
	PreviewImage  string              `json:"previewImage"`
	Photos        []string            `json:"photos"`
	IsPremium     bool                `json:"isPremium"`
	IsFavorite    bool                `json:"isFavorite"`
	Rating        float64             `json:"rating"`
	Type          string              `json:"type"`
	Rooms         int                 `json:"rooms"`
	Guests        int                 `json:"guests"`
	Price         int                 `json:"price"`
	Amenities     []string            `json:"amenities"`
	AuthorID      string              `json:"authorId"`
	Host          *UserDto            `json:"host,omitempty"`
	CommentsCount int                 `json:"commentsCount"`
	Coordinates   CoordinatesResponse `json:"coordinates"`
}

func toOfferResponse(o *entity.Offer, host *entity.User) OfferResponse {
	amenities := make([]string, 0, len(o.Amenities))
	for _, a := range o.Amenities {
		amenities = append(amenities, string(a))
	}
	photos := o.Photos
	if photos == nil {
		photos = []string{}
	}
	resp := OfferResponse{
		ID:            o.ID,
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
		Amenities:     amenities,
		AuthorID:      o.AuthorID,
		CommentsCount: o.CommentsCount,
		Coordinates:   CoordinatesResponse{Lat: o.Coordinates.Lat, Lng: o.Coordinates.Lng},
	}
	if host != nil {
		h := toUserDto(host)
		resp.Host = &h
	}
	return resp
}

type OfferShort struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         int       `json:"price"`
	Type          string    `json:"type"`
	IsFavorite    bool      `json:"isFavorite"`
	IsPremium     bool      `json:"isPremium"`
	Rating        float64   `json:"rating"`
	PreviewImage  string    `json:"previewImage"`
	City          string    `json:"city"`
	PublishDate   time.Time `json:"publishDate"`
	CommentsCount int       `json:"commentsCount"`
}

func toOfferShorts(offers []*entity.Offer) []OfferShort {
	out := make([]OfferShort, 0, len(offers))
	for _, o := range offers {
		out = append(out, OfferShort{
			ID:            o.ID,
			Name:          o.Name,
			Price:         o.Price,
			Type:          string(o.Type),
			IsFavorite:    o.IsFavorite,
			IsPremium:     o.IsPremium,
			Rating:        o.Rating,
			PreviewImage:  o.PreviewImage,
			City:          string(o.City),
			PublishDate:   o.PublishDate,
			CommentsCount: o.CommentsCount,
		})
	}
	return out
}

type CreateCommentDto struct {
	Text   string `json:"text" binding:"required,min=5,max=1024"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

type CommentResponse struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	Rating          int       `json:"rating"`
	PublicationDate time.Time `json:"publicationDate"`
	User            UserDto   `json:"user"`
}

func toCommentResponse(v application.CommentView) CommentResponse {
	return CommentResponse{
		ID:              v.Comment.ID,
		Text:            v.Comment.Text,
		Rating:          v.Comment.Rating,
		PublicationDate: v.Comment.CreatedAt,
		User:            toUserDto(v.Author),
	}
}

type CreateUserDto struct {
	Name     string `json:"name" binding:"required,min=1,max=15"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Type     string `json:"type" binding:"required,usertype"`
}

type LoginUserDto struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserDto struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
	Type      string `json:"type"`
}

func toUserDto(u *entity.User) UserDto {
	return UserDto{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.Avatar, Type: string(u.Type)}
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDto `json:"user"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}
