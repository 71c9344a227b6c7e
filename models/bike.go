package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is a snapshot of a buyer taken at booking time. It is intentionally
// not kept in sync with the buyer's profile afterwards.
type Booking struct {
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	Username string             `bson:"username" json:"username"`
	Contact  string             `bson:"contact" json:"contact"`
	Location string             `bson:"location" json:"location"`
}

// Bike represents a listing. File fields hold /uploads/ paths; the owner is a
// reference into the users collection, set once at creation.
type Bike struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Brand         string             `bson:"brand" json:"brand"`
	Model         string             `bson:"model" json:"model"`
	Location      string             `bson:"location" json:"location"`
	Price         float64            `bson:"price" json:"price"`
	Description   string             `bson:"description" json:"description"`
	Color         string             `bson:"color" json:"color"`
	OwnersCount   int                `bson:"ownersCount" json:"ownersCount"`
	KilometresRun int                `bson:"kilometresRun" json:"kilometresRun"`
	ModelYear     int                `bson:"modelYear" json:"modelYear"`
	Images        []string           `bson:"images" json:"images"`
	RC            []string           `bson:"rc" json:"rc"`
	Insurance     []string           `bson:"insurance" json:"insurance"`
	Owner         primitive.ObjectID `bson:"owner" json:"owner"`
	PostedOn      time.Time          `bson:"postedOn" json:"postedOn"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	Sold          bool               `bson:"sold" json:"sold"`
	SoldAt        *time.Time         `bson:"soldAt,omitempty" json:"soldAt,omitempty"`
	BookedBuyers  []Booking          `bson:"bookedBuyers" json:"bookedBuyers"`
}

// BookedBy reports whether the given user already has a booking entry on the
// listing.
func (b *Bike) BookedBy(userID primitive.ObjectID) bool {
	for _, buyer := range b.BookedBuyers {
		if buyer.UserID == userID {
			return true
		}
	}
	return false
}
