package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-bikemart/models"
)

// MemoryUserStore is an in-memory UserStore used by tests and local runs
// without a database. It mirrors the single-document semantics of the mongo
// implementation.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Cart == nil {
		user.Cart = []primitive.ObjectID{}
	}
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(user), nil
}

func (s *MemoryUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) UsernameTaken(_ context.Context, username string, exclude primitive.ObjectID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username && user.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) Update(_ context.Context, id primitive.ObjectID, update ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	applyString(&user.FirstName, update.FirstName)
	applyString(&user.LastName, update.LastName)
	applyString(&user.Username, update.Username)
	applyString(&user.Password, update.Password)
	applyString(&user.Phone, update.Phone)
	applyString(&user.Location, update.Location)
	applyString(&user.Address, update.Address)
	applyString(&user.ProfileImage, update.ProfileImage)
	return nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryUserStore) AddToCart(_ context.Context, userID, bikeID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	for _, id := range user.Cart {
		if id == bikeID {
			return nil
		}
	}
	user.Cart = append(user.Cart, bikeID)
	return nil
}

func (s *MemoryUserStore) RemoveFromCart(_ context.Context, userID, bikeID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	kept := user.Cart[:0]
	for _, id := range user.Cart {
		if id != bikeID {
			kept = append(kept, id)
		}
	}
	user.Cart = kept
	return nil
}

func (s *MemoryUserStore) ListCustomers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := []models.User{}
	for _, user := range s.users {
		if user.Role == models.RoleCustomer {
			users = append(users, *copyUser(user))
		}
	}
	return users, nil
}

func (s *MemoryUserStore) CountCustomers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, user := range s.users {
		if user.Role == models.RoleCustomer {
			count++
		}
	}
	return count, nil
}

// MemoryBikeStore is the in-memory BikeStore counterpart.
type MemoryBikeStore struct {
	mu    sync.RWMutex
	bikes map[primitive.ObjectID]*models.Bike
}

// NewMemoryBikeStore creates an empty in-memory bike store.
func NewMemoryBikeStore() *MemoryBikeStore {
	return &MemoryBikeStore{bikes: make(map[primitive.ObjectID]*models.Bike)}
}

func (s *MemoryBikeStore) Create(_ context.Context, bike *models.Bike) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bike.ID.IsZero() {
		bike.ID = primitive.NewObjectID()
	}
	if bike.Images == nil {
		bike.Images = []string{}
	}
	if bike.RC == nil {
		bike.RC = []string{}
	}
	if bike.Insurance == nil {
		bike.Insurance = []string{}
	}
	if bike.BookedBuyers == nil {
		bike.BookedBuyers = []models.Booking{}
	}
	stored := *bike
	s.bikes[bike.ID] = &stored
	return nil
}

func (s *MemoryBikeStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bike, ok := s.bikes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBike(bike), nil
}

func (s *MemoryBikeStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bikes := []models.Bike{}
	for _, id := range ids {
		if bike, ok := s.bikes[id]; ok {
			bikes = append(bikes, *copyBike(bike))
		}
	}
	return bikes, nil
}

func (s *MemoryBikeStore) List(_ context.Context, filter BikeFilter) ([]models.Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bikes := []models.Bike{}
	for _, bike := range s.bikes {
		if filter.Location != "" && bike.Location != filter.Location {
			continue
		}
		if filter.Model != "" && bike.Model != filter.Model {
			continue
		}
		if !filter.Owner.IsZero() && bike.Owner != filter.Owner {
			continue
		}
		if filter.MinPrice != nil && bike.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && bike.Price > *filter.MaxPrice {
			continue
		}
		bikes = append(bikes, *copyBike(bike))
	}
	return bikes, nil
}

func (s *MemoryBikeStore) Update(_ context.Context, id primitive.ObjectID, update BikeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bike, ok := s.bikes[id]
	if !ok {
		return ErrNotFound
	}
	applyString(&bike.Brand, update.Brand)
	applyString(&bike.Model, update.Model)
	applyString(&bike.Location, update.Location)
	applyString(&bike.Description, update.Description)
	applyString(&bike.Color, update.Color)
	if update.Price != nil {
		bike.Price = *update.Price
	}
	if update.OwnersCount != nil {
		bike.OwnersCount = *update.OwnersCount
	}
	if update.KilometresRun != nil {
		bike.KilometresRun = *update.KilometresRun
	}
	if update.ModelYear != nil {
		bike.ModelYear = *update.ModelYear
	}
	if update.PostedOn != nil {
		bike.PostedOn = *update.PostedOn
	}
	if update.Images != nil {
		bike.Images = append([]string{}, update.Images...)
	}
	if update.RC != nil {
		bike.RC = append([]string{}, update.RC...)
	}
	if update.Insurance != nil {
		bike.Insurance = append([]string{}, update.Insurance...)
	}
	return nil
}

func (s *MemoryBikeStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bikes[id]; !ok {
		return ErrNotFound
	}
	delete(s.bikes, id)
	return nil
}

func (s *MemoryBikeStore) SetSaleStatus(_ context.Context, id primitive.ObjectID, sold bool, soldAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bike, ok := s.bikes[id]
	if !ok {
		return ErrNotFound
	}
	bike.Sold = sold
	bike.SoldAt = soldAt
	return nil
}

func (s *MemoryBikeStore) AddBooking(_ context.Context, id primitive.ObjectID, booking models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bike, ok := s.bikes[id]
	if !ok {
		return ErrNotFound
	}
	bike.BookedBuyers = append(bike.BookedBuyers, booking)
	return nil
}

func (s *MemoryBikeStore) RemoveBooking(_ context.Context, id, buyerID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bike, ok := s.bikes[id]
	if !ok {
		return ErrNotFound
	}
	kept := bike.BookedBuyers[:0]
	for _, buyer := range bike.BookedBuyers {
		if buyer.UserID != buyerID {
			kept = append(kept, buyer)
		}
	}
	bike.BookedBuyers = kept
	return nil
}

func (s *MemoryBikeStore) ListSold(_ context.Context) ([]models.Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bikes := []models.Bike{}
	for _, bike := range s.bikes {
		if bike.Sold && bike.SoldAt != nil {
			bikes = append(bikes, *copyBike(bike))
		}
	}
	return bikes, nil
}

func (s *MemoryBikeStore) CountSold(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, bike := range s.bikes {
		if bike.Sold {
			count++
		}
	}
	return count, nil
}

func copyUser(user *models.User) *models.User {
	out := *user
	out.Cart = append([]primitive.ObjectID{}, user.Cart...)
	return &out
}

func copyBike(bike *models.Bike) *models.Bike {
	out := *bike
	out.Images = append([]string{}, bike.Images...)
	out.RC = append([]string{}, bike.RC...)
	out.Insurance = append([]string{}, bike.Insurance...)
	out.BookedBuyers = append([]models.Booking{}, bike.BookedBuyers...)
	if bike.SoldAt != nil {
		soldAt := *bike.SoldAt
		out.SoldAt = &soldAt
	}
	return &out
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
