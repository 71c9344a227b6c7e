package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-bikemart/store"
	"go-bikemart/utils"
)

// CartController handles the authenticated user's cart. The cart is a set of
// bike references on the user document; add and remove are idempotent.
type CartController struct {
	Users store.UserStore
	Bikes store.BikeStore
}

// NewCartController creates a new CartController.
func NewCartController(users store.UserStore, bikes store.BikeStore) *CartController {
	return &CartController{Users: users, Bikes: bikes}
}

type cartRequest struct {
	BikeID string `json:"bikeId"`
}

// AddToCart adds a bike reference to the caller's cart.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestUser(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Could not parse user from context")
		return
	}

	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	bikeID, err := primitive.ObjectIDFromHex(req.BikeID)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid bike ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cc.Bikes.FindByID(ctx, bikeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Bike not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := cc.Users.AddToCart(ctx, userID, bikeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "User not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Error updating cart")
		return
	}

	cc.respondCartIDs(w, ctx, userID)
}

// GetCart returns the caller's cart with the referenced bikes joined in.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestUser(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Could not parse user from context")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := cc.Users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	bikes, err := cc.Bikes.FindByIDs(ctx, user.Cart)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error fetching cart")
		return
	}
	utils.JSON(w, http.StatusOK, bikes)
}

// RemoveFromCart removes a bike reference from the caller's cart. Removing an
// absent reference is a no-op.
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestUser(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Could not parse user from context")
		return
	}

	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	bikeID, err := primitive.ObjectIDFromHex(req.BikeID)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid bike ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cc.Users.RemoveFromCart(ctx, userID, bikeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "User not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Error updating cart")
		return
	}

	cc.respondCartIDs(w, ctx, userID)
}

func (cc *CartController) respondCartIDs(w http.ResponseWriter, ctx context.Context, userID primitive.ObjectID) {
	user, err := cc.Users.FindByID(ctx, userID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.JSON(w, http.StatusOK, user.Cart)
}
