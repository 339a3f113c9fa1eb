package entity

import "time"

type City string

const (
	CityParis      City = "Paris"
	CityCologne    City = "Cologne"
	CityBrussels   City = "Brussels"
	CityAmsterdam  City = "Amsterdam"
	CityHamburg    City = "Hamburg"
	CityDusseldorf City = "Dusseldorf"
)

// Cities is the closed list of cities offers can be published in.
var Cities = []City{CityParis, CityCologne, CityBrussels, CityAmsterdam, CityHamburg, CityDusseldorf}

func (c City) Valid() bool {
	for _, known := range Cities {
		if c == known {
			return true
		}
	}
	return false
}

type HousingType string

const (
	HousingApartment HousingType = "apartment"
	HousingHouse     HousingType = "house"
	HousingRoom      HousingType = "room"
	HousingHotel     HousingType = "hotel"
)

var HousingTypes = []HousingType{HousingApartment, HousingHouse, HousingRoom, HousingHotel}

func (h HousingType) Valid() bool {
	for _, known := range HousingTypes {
		if h == known {
			return true
		}
	}
	return false
}

type Amenity string

const (
	AmenityBreakfast       Amenity = "Breakfast"
	AmenityAirConditioning Amenity = "Air conditioning"
	AmenityLaptopWorkspace Amenity = "Laptop friendly workspace"
	AmenityBabySeat        Amenity = "Baby seat"
	AmenityWasher          Amenity = "Washer"
	AmenityTowels          Amenity = "Towels"
	AmenityFridge          Amenity = "Fridge"
)

var Amenities = []Amenity{
	AmenityBreakfast, AmenityAirConditioning, AmenityLaptopWorkspace,
	AmenityBabySeat, AmenityWasher, AmenityTowels, AmenityFridge,
}

func (a Amenity) Valid() bool {
	for _, known := range Amenities {
		if a == known {
			return true
		}
	}
	return false
}

type Coordinates struct {
	Lat float64
	Lng float64
}

// Offer is a rental listing. Rating and CommentsCount are derived from
// the offer's comments and only change through rating recomputation.
type Offer struct {
	ID            string
	Name          string
	Description   string
	PublishDate   time.Time
	City          City
	PreviewImage  string
	Photos        []string
	IsPremium     bool
	IsFavorite    bool
	Rating        float64
	Type          HousingType
	Rooms         int
	Guests        int
	Price         int
	Amenities     []Amenity
	AuthorID      string
	CommentsCount int
	Coordinates   Coordinates
}

// OwnerID returns the id of the user allowed to mutate the offer.
func (o *Offer) OwnerID() string { return o.AuthorID }

// OfferPatch is a partial offer update; nil fields are left untouched.
type OfferPatch struct {
	Name         *string
	Description  *string
	City         *City
	PreviewImage *string
	Photos       *[]string
	IsPremium    *bool
	Type         *HousingType
	Rooms        *int
	Guests       *int
	Price        *int
	Amenities    *[]Amenity
	Coordinates  *Coordinates
}
