package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles assignable to a user account.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents an account in the marketplace. The cart is a set of bike
// references kept on the user document itself.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	FirstName    string               `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string               `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email,omitempty" json:"email,omitempty"`
	Password     string               `bson:"password,omitempty" json:"-"`
	Phone        string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Location     string               `bson:"location,omitempty" json:"location,omitempty"`
	Address      string               `bson:"address,omitempty" json:"address,omitempty"`
	ProfileImage string               `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	Role         string               `bson:"role" json:"role"`
	Cart         []primitive.ObjectID `bson:"cart" json:"cart"`
}
