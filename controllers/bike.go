package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-bikemart/middleware"
	"go-bikemart/models"
	"go-bikemart/store"
	"go-bikemart/utils"
)

// BikeController handles listing lifecycle requests: CRUD, sale status
// transitions, and bookings.
type BikeController struct {
	Bikes     store.BikeStore
	Users     store.UserStore
	Email     *utils.EmailService
	UploadDir string
}

// NewBikeController creates a new BikeController.
func NewBikeController(bikes store.BikeStore, users store.UserStore, email *utils.EmailService, uploadDir string) *BikeController {
	return &BikeController{Bikes: bikes, Users: users, Email: email, UploadDir: uploadDir}
}

// OwnerDetails is the joined owner summary attached to listing responses.
type OwnerDetails struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Location string `json:"location,omitempty"`
}

// BikeResponse is a listing with its owner's public fields joined in.
type BikeResponse struct {
	models.Bike
	OwnerDetails *OwnerDetails `json:"ownerDetails,omitempty"`
}

// Labels used in validation messages for the required numeric fields.
var requiredNumberFields = []struct {
	key   string
	label string
}{
	{"ownersCount", "Number of owners"},
	{"kilometresRun", "Kilometres run"},
	{"modelYear", "Model year"},
	{"price", "Price"},
}

var requiredTextFields = []string{"brand", "model", "location", "description", "color"}

// CreateBike handles listing creation from a multipart form with optional
// images, RC, and insurance files.
func (bc *BikeController) CreateBike(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestUser(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Could not parse user from context")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	for _, field := range requiredTextFields {
		if strings.TrimSpace(r.FormValue(field)) == "" {
			utils.Error(w, http.StatusBadRequest, fmt.Sprintf("%s is required.", field))
			return
		}
	}
	for _, field := range requiredNumberFields {
		value := r.FormValue(field.key)
		if value == "" {
			utils.Error(w, http.StatusBadRequest, fmt.Sprintf("%s is required and must be a valid number.", field.label))
			return
		}
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			utils.Error(w, http.StatusBadRequest, fmt.Sprintf("%s is required and must be a valid number.", field.label))
			return
		}
	}

	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	ownersCount, err := strconv.Atoi(r.FormValue("ownersCount"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Number of owners is required and must be a valid number.")
		return
	}
	kilometresRun, err := strconv.Atoi(r.FormValue("kilometresRun"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Kilometres run is required and must be a valid number.")
		return
	}
	modelYear, err := strconv.Atoi(r.FormValue("modelYear"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Model year is required and must be a valid number.")
		return
	}

	now := time.Now()
	postedOn := now
	if raw := r.FormValue("postedOn"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "postedOn must be an RFC 3339 timestamp.")
			return
		}
		postedOn = parsed
	}

	images, err := middleware.SaveUploadedFiles(r, "images", middleware.MaxImages, bc.UploadDir)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	rcFiles, err := middleware.SaveUploadedFiles(r, "rc", middleware.MaxDocuments, bc.UploadDir)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	insuranceFiles, err := middleware.SaveUploadedFiles(r, "insurance", middleware.MaxDocuments, bc.UploadDir)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	bike := models.Bike{
		Brand:         r.FormValue("brand"),
		Model:         r.FormValue("model"),
		Location:      r.FormValue("location"),
		Price:         price,
		Description:   r.FormValue("description"),
		Color:         r.FormValue("color"),
		OwnersCount:   ownersCount,
		KilometresRun: kilometresRun,
		ModelYear:     modelYear,
		Images:        images,
		RC:            rcFiles,
		Insurance:     insuranceFiles,
		Owner:         userID,
		PostedOn:      postedOn,
		CreatedAt:     now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := bc.Bikes.Create(ctx, &bike); err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error creating bike")
		return
	}
	utils.JSON(w, http.StatusCreated, bike)
}

// GetBikes retrieves listings, optionally narrowed by location, model, owner,
// and a price range. Unauthenticated.
func (bc *BikeController) GetBikes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.BikeFilter{
		Location: query.Get("location"),
		Model:    query.Get("model"),
	}
	if owner := query.Get("owner"); owner != "" {
		ownerID, err := primitive.ObjectIDFromHex(owner)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid owner ID")
			return
		}
		filter.Owner = ownerID
	}
	if raw := query.Get("minPrice"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "minPrice must be a number")
			return
		}
		filter.MinPrice = &min
	}
	if raw := query.Get("maxPrice"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "maxPrice must be a number")
			return
		}
		filter.MaxPrice = &max
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bikes, err := bc.Bikes.List(ctx, filter)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error fetching bikes")
		return
	}
	utils.JSON(w, http.StatusOK, joinOwners(ctx, bc.Users, bikes))
}

// GetBike retrieves a single listing with owner fields joined in.
// Unauthenticated.
func (bc *BikeController) GetBike(w http.ResponseWriter, r *http.Request) {
	id, ok := bikeIDVar(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bike, err := bc.Bikes.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(w, http.StatusNotFound, "Bike not found")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	joined := joinOwners(ctx, bc.Users, []models.Bike{*bike})
	utils.JSON(w, http.StatusOK, joined[0])
}

// UpdateBike merges allow-listed scalar fields onto a listing and replaces
// whole file categories when new files are supplied. Owner or admin only.
func (bc *BikeController) UpdateBike(w http.ResponseWriter, r *http.Request) {
	id, ok := bikeIDVar(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !bc.authorizeOwner(w, r, ctx, id) {
		return
	}

	update, err := bc.decodeBikeUpdate(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := bc.Bikes.Update(ctx, id, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Bike not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Error updating bike")
		return
	}

	bike, err := bc.Bikes.FindByID(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.JSON(w, http.StatusOK, bike)
}

// DeleteBike removes a listing. Owner or admin only.
func (bc *BikeController) DeleteBike(w http.ResponseWriter, r *http.Request) {
	id, ok := bikeIDVar(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !bc.authorizeOwner(w, r, ctx, id) {
		return
	}

	if err := bc.Bikes.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Bike not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Error deleting bike")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Bike deleted"})
}

// MarkSold flips a listing to sold and stamps soldAt. Owner or admin only.
func (bc *BikeController) MarkSold(w http.ResponseWriter, r *http.Request) {
	bc.setSaleStatus(w, r, true)
}

// MarkAvailable relists a sold listing, clearing soldAt. Owner or admin only.
func (bc *BikeController) MarkAvailable(w http.ResponseWriter, r *http.Request) {
	bc.setSaleStatus(w, r, false)
}

func (bc *BikeController) setSaleStatus(w http.ResponseWriter, r *http.Request, sold bool) {
	id, ok := bikeIDVar(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !bc.authorizeOwner(w, r, ctx, id) {
		return
	}

	var soldAt *time.Time
	if sold {
		now := time.Now()
		soldAt = &now
	}
	if err := bc.Bikes.SetSaleStatus(ctx, id, sold, soldAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Bike not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Error updating bike")
		return
	}

	bike, err := bc.Bikes.FindByID(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.JSON(w, http.StatusOK, bike)
}

// BookBike records the caller's interest in a listing as a snapshot of their
// current profile. Sold listings and duplicate bookings are rejected.
func (bc *BikeController) BookBike(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestUser(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Could not parse user from context")
		return
	}
	id, ok := bikeIDVar(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bike, err := bc.Bikes.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(w, http.StatusNotFound, "Bike not found")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	if bike.Sold {
		utils.Error(w, http.StatusConflict, "Bike is already sold")
		return
	}
	if bike.BookedBy(userID) {
		utils.Error(w, http.StatusConflict, "You have already booked this bike")
		return
	}

	buyer, err := bc.Users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	booking := models.Booking{
		UserID:   buyer.ID,
		Username: buyer.Username,
		Contact:  buyer.Phone,
		Location: buyer.Location,
	}
	if err := bc.Bikes.AddBooking(ctx, id, booking); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Bike not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to book bike")
		return
	}

	bc.notifySeller(bike, booking)

	bike.BookedBuyers = append(bike.BookedBuyers, booking)
	utils.JSON(w, http.StatusOK, bike)
}

// notifySeller emails the listing owner about a new booking. Best effort:
// failures are logged, never surfaced to the booking request.
func (bc *BikeController) notifySeller(bike *models.Bike, booking models.Booking) {
	if !bc.Email.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		owner, err := bc.Users.FindByID(ctx, bike.Owner)
		if err != nil || owner.Email == "" {
			return
		}
		name := bike.Brand + " " + bike.Model
		if err := bc.Email.SendBookingNotification(owner.Email, name, booking.Username, booking.Contact); err != nil {
			utils.Logger().Warnw("booking notification failed", "bike", bike.ID.Hex(), "error", err)
		}
	}()
}

// RemoveBuyer removes one booking entry from a listing. Owner or admin only;
// removing an absent entry is a no-op.
func (bc *BikeController) RemoveBuyer(w http.ResponseWriter, r *http.Request) {
	id, ok := bikeIDVar(w, r)
	if !ok {
		return
	}
	buyerID, err := primitive.ObjectIDFromHex(mux.Vars(r)["buyerId"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid buyer ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !bc.authorizeOwner(w, r, ctx, id) {
		return
	}

	if err := bc.Bikes.RemoveBooking(ctx, id, buyerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Bike not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to remove buyer")
		return
	}

	bike, err := bc.Bikes.FindByID(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.JSON(w, http.StatusOK, bike)
}

// authorizeOwner loads the listing and verifies the caller is its owner or an
// admin, writing the error response itself when the check fails.
func (bc *BikeController) authorizeOwner(w http.ResponseWriter, r *http.Request, ctx context.Context, id primitive.ObjectID) bool {
	userID, claims, ok := requestUser(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Could not parse user from context")
		return false
	}

	bike, err := bc.Bikes.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(w, http.StatusNotFound, "Bike not found")
		return false
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return false
	}

	if bike.Owner != userID && claims.Role != models.RoleAdmin {
		utils.Error(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}

func (bc *BikeController) decodeBikeUpdate(r *http.Request) (store.BikeUpdate, error) {
	var update store.BikeUpdate

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return update, errors.New("invalid multipart form")
		}
		update.Brand = formValue(r, "brand")
		update.Model = formValue(r, "model")
		update.Location = formValue(r, "location")
		update.Description = formValue(r, "description")
		update.Color = formValue(r, "color")

		if raw := formValue(r, "price"); raw != nil {
			price, err := strconv.ParseFloat(*raw, 64)
			if err != nil {
				return update, errors.New("Price is required and must be a valid number.")
			}
			update.Price = &price
		}
		if raw := formValue(r, "ownersCount"); raw != nil {
			n, err := strconv.Atoi(*raw)
			if err != nil {
				return update, errors.New("Number of owners is required and must be a valid number.")
			}
			update.OwnersCount = &n
		}
		if raw := formValue(r, "kilometresRun"); raw != nil {
			n, err := strconv.Atoi(*raw)
			if err != nil {
				return update, errors.New("Kilometres run is required and must be a valid number.")
			}
			update.KilometresRun = &n
		}
		if raw := formValue(r, "modelYear"); raw != nil {
			n, err := strconv.Atoi(*raw)
			if err != nil {
				return update, errors.New("Model year is required and must be a valid number.")
			}
			update.ModelYear = &n
		}
		if raw := formValue(r, "postedOn"); raw != nil {
			parsed, err := time.Parse(time.RFC3339, *raw)
			if err != nil {
				return update, errors.New("postedOn must be an RFC 3339 timestamp.")
			}
			update.PostedOn = &parsed
		}

		var err error
		if update.Images, err = middleware.SaveUploadedFiles(r, "images", middleware.MaxImages, bc.UploadDir); err != nil {
			return update, err
		}
		if update.RC, err = middleware.SaveUploadedFiles(r, "rc", middleware.MaxDocuments, bc.UploadDir); err != nil {
			return update, err
		}
		if update.Insurance, err = middleware.SaveUploadedFiles(r, "insurance", middleware.MaxDocuments, bc.UploadDir); err != nil {
			return update, err
		}
		return update, nil
	}

	var body struct {
		Brand         *string  `json:"brand"`
		Model         *string  `json:"model"`
		Location      *string  `json:"location"`
		Price         *float64 `json:"price"`
		Description   *string  `json:"description"`
		Color         *string  `json:"color"`
		OwnersCount   *int     `json:"ownersCount"`
		KilometresRun *int     `json:"kilometresRun"`
		ModelYear     *int     `json:"modelYear"`
		PostedOn      *string  `json:"postedOn"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return update, errors.New("Invalid input")
	}
	update.Brand = body.Brand
	update.Model = body.Model
	update.Location = body.Location
	update.Price = body.Price
	update.Description = body.Description
	update.Color = body.Color
	update.OwnersCount = body.OwnersCount
	update.KilometresRun = body.KilometresRun
	update.ModelYear = body.ModelYear
	if body.PostedOn != nil {
		parsed, err := time.Parse(time.RFC3339, *body.PostedOn)
		if err != nil {
			return update, errors.New("postedOn must be an RFC 3339 timestamp.")
		}
		update.PostedOn = &parsed
	}
	return update, nil
}

// joinOwners attaches each listing's owner username and location. Listings
// whose owner account has been deleted are returned without owner details.
func joinOwners(ctx context.Context, users store.UserStore, bikes []models.Bike) []BikeResponse {
	owners := map[primitive.ObjectID]*models.User{}
	for _, bike := range bikes {
		if _, seen := owners[bike.Owner]; seen {
			continue
		}
		owner, err := users.FindByID(ctx, bike.Owner)
		if err != nil {
			owners[bike.Owner] = nil
			continue
		}
		owners[bike.Owner] = owner
	}

	out := make([]BikeResponse, 0, len(bikes))
	for _, bike := range bikes {
		resp := BikeResponse{Bike: bike}
		if owner := owners[bike.Owner]; owner != nil {
			resp.OwnerDetails = &OwnerDetails{
				ID:       owner.ID.Hex(),
				Username: owner.Username,
				Location: owner.Location,
			}
		}
		out = append(out, resp)
	}
	return out
}

func bikeIDVar(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid bike ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
