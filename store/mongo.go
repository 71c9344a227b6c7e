package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-bikemart/models"
)

// MongoUserStore implements UserStore over a users collection.
type MongoUserStore struct {
	collection *mongo.Collection
}

// NewMongoUserStore creates a UserStore backed by db's "users" collection.
func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: db.Collection("users")}
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	if user.Cart == nil {
		user.Cart = []primitive.ObjectID{}
	}
	result, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) UsernameTaken(ctx context.Context, username string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"username": username}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MongoUserStore) Update(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) error {
	set := bson.M{}
	setString(set, "firstName", update.FirstName)
	setString(set, "lastName", update.LastName)
	setString(set, "username", update.Username)
	setString(set, "password", update.Password)
	setString(set, "phone", update.Phone)
	setString(set, "location", update.Location)
	setString(set, "address", update.Address)
	setString(set, "profileImage", update.ProfileImage)
	if len(set) == 0 {
		return nil
	}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddToCart is idempotent: $addToSet never introduces a duplicate reference.
func (s *MongoUserStore) AddToCart(ctx context.Context, userID, bikeID primitive.ObjectID) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"cart": bikeID}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) RemoveFromCart(ctx context.Context, userID, bikeID primitive.ObjectID) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"cart": bikeID}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) ListCustomers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"role": models.RoleCustomer})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUserStore) CountCustomers(ctx context.Context) (int64, error) {
	return s.collection.CountDocuments(ctx, bson.M{"role": models.RoleCustomer})
}

// MongoBikeStore implements BikeStore over a bikes collection.
type MongoBikeStore struct {
	collection *mongo.Collection
}

// NewMongoBikeStore creates a BikeStore backed by db's "bikes" collection.
func NewMongoBikeStore(db *mongo.Database) *MongoBikeStore {
	return &MongoBikeStore{collection: db.Collection("bikes")}
}

func (s *MongoBikeStore) Create(ctx context.Context, bike *models.Bike) error {
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
	result, err := s.collection.InsertOne(ctx, bike)
	if err != nil {
		return err
	}
	bike.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoBikeStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bike, error) {
	var bike models.Bike
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bike)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bike, nil
}

func (s *MongoBikeStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Bike, error) {
	if len(ids) == 0 {
		return []models.Bike{}, nil
	}
	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bikes []models.Bike
	if err := cursor.All(ctx, &bikes); err != nil {
		return nil, err
	}
	return bikes, nil
}

func (s *MongoBikeStore) List(ctx context.Context, filter BikeFilter) ([]models.Bike, error) {
	query := bson.M{}
	if filter.Location != "" {
		query["location"] = filter.Location
	}
	if filter.Model != "" {
		query["model"] = filter.Model
	}
	if !filter.Owner.IsZero() {
		query["owner"] = filter.Owner
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	cursor, err := s.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bikes []models.Bike
	if err := cursor.All(ctx, &bikes); err != nil {
		return nil, err
	}
	return bikes, nil
}

func (s *MongoBikeStore) Update(ctx context.Context, id primitive.ObjectID, update BikeUpdate) error {
	set := bson.M{}
	setString(set, "brand", update.Brand)
	setString(set, "model", update.Model)
	setString(set, "location", update.Location)
	setString(set, "description", update.Description)
	setString(set, "color", update.Color)
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.OwnersCount != nil {
		set["ownersCount"] = *update.OwnersCount
	}
	if update.KilometresRun != nil {
		set["kilometresRun"] = *update.KilometresRun
	}
	if update.ModelYear != nil {
		set["modelYear"] = *update.ModelYear
	}
	if update.PostedOn != nil {
		set["postedOn"] = *update.PostedOn
	}
	if update.Images != nil {
		set["images"] = update.Images
	}
	if update.RC != nil {
		set["rc"] = update.RC
	}
	if update.Insurance != nil {
		set["insurance"] = update.Insurance
	}
	if len(set) == 0 {
		return nil
	}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoBikeStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoBikeStore) SetSaleStatus(ctx context.Context, id primitive.ObjectID, sold bool, soldAt *time.Time) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"sold": sold, "soldAt": soldAt}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoBikeStore) AddBooking(ctx context.Context, id primitive.ObjectID, booking models.Booking) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$push": bson.M{"bookedBuyers": booking}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoBikeStore) RemoveBooking(ctx context.Context, id, buyerID primitive.ObjectID) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$pull": bson.M{"bookedBuyers": bson.M{"userId": buyerID}}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoBikeStore) ListSold(ctx context.Context) ([]models.Bike, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"sold": true, "soldAt": bson.M{"$ne": nil}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bikes []models.Bike
	if err := cursor.All(ctx, &bikes); err != nil {
		return nil, err
	}
	return bikes, nil
}

func (s *MongoBikeStore) CountSold(ctx context.Context) (int64, error) {
	return s.collection.CountDocuments(ctx, bson.M{"sold": true})
}

func setString(set bson.M, key string, value *string) {
	if value != nil {
		set[key] = *value
	}
}
