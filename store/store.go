package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-bikemart/models"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("not found")

// ProfileUpdate lists the user fields a profile update may touch. Nil fields
// are left unchanged.
type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	Username     *string
	Password     *string
	Phone        *string
	Location     *string
	Address      *string
	ProfileImage *string
}

// Empty reports whether the update would change nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Username == nil &&
		u.Password == nil && u.Phone == nil && u.Location == nil &&
		u.Address == nil && u.ProfileImage == nil
}

// BikeUpdate lists the bike fields an update may touch. Nil fields are left
// unchanged; a non-nil file slice replaces that category wholesale.
type BikeUpdate struct {
	Brand         *string
	Model         *string
	Location      *string
	Price         *float64
	Description   *string
	Color         *string
	OwnersCount   *int
	KilometresRun *int
	ModelYear     *int
	PostedOn      *time.Time
	Images        []string
	RC            []string
	Insurance     []string
}

// BikeFilter narrows a listing query. Zero values mean "no constraint".
type BikeFilter struct {
	Location string
	Model    string
	Owner    primitive.ObjectID
	MinPrice *float64
	MaxPrice *float64
}

// UserStore persists user documents.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, exclude primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddToCart(ctx context.Context, userID, bikeID primitive.ObjectID) error
	RemoveFromCart(ctx context.Context, userID, bikeID primitive.ObjectID) error

	ListCustomers(ctx context.Context) ([]models.User, error)
	CountCustomers(ctx context.Context) (int64, error)
}

// BikeStore persists bike listings. Every mutation is a single-document
// operation; the store offers no cross-document transactions.
type BikeStore interface {
	Create(ctx context.Context, bike *models.Bike) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bike, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Bike, error)
	List(ctx context.Context, filter BikeFilter) ([]models.Bike, error)
	Update(ctx context.Context, id primitive.ObjectID, update BikeUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	SetSaleStatus(ctx context.Context, id primitive.ObjectID, sold bool, soldAt *time.Time) error
	AddBooking(ctx context.Context, id primitive.ObjectID, booking models.Booking) error
	RemoveBooking(ctx context.Context, id, buyerID primitive.ObjectID) error

	ListSold(ctx context.Context) ([]models.Bike, error)
	CountSold(ctx context.Context) (int64, error)
}
