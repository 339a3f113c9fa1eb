package entity

import "time"

type Comment struct {
	ID        string
	OfferID   string
	UserID    string
	Text      string
	Rating    int
	CreatedAt time.Time
}
