package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"go-bikemart/middleware"
	"go-bikemart/models"
	"go-bikemart/store"
	"go-bikemart/utils"
)

// UserController handles signup, login, and profile requests.
type UserController struct {
	Users     store.UserStore
	UploadDir string
}

// NewUserController creates a new UserController.
func NewUserController(users store.UserStore, uploadDir string) *UserController {
	return &UserController{Users: users, UploadDir: uploadDir}
}

type signupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	Address   string `json:"address"`
}

// Signup handles account creation.
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		utils.Error(w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Password == "" {
		utils.Error(w, http.StatusBadRequest, "password is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	taken, err := uc.Users.UsernameTaken(ctx, req.Username, primitive.NilObjectID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}
	if taken {
		utils.Error(w, http.StatusConflict, "Username already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Phone:     req.Phone,
		Location:  req.Location,
		Address:   req.Address,
		Role:      models.RoleCustomer,
	}
	if err := uc.Users.Create(ctx, &user); err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]string{"message": "Signup successful"})
}

// Login handles user authentication and issues a bearer token.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := uc.Users.FindByUsername(ctx, creds.Username)
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]string{
			"id":       user.ID.Hex(),
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// GetProfile retrieves the authenticated user's profile.
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestUser(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Could not parse user from context")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := uc.Users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// UpdateProfile applies an allow-listed field update to the caller's profile.
// The request may be JSON or a multipart form carrying a profileImage file.
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestUser(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Could not parse user from context")
		return
	}

	update, err := uc.decodeProfileUpdate(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if update.Empty() {
		utils.Error(w, http.StatusBadRequest, "No valid updates provided")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if update.Username != nil {
		taken, err := uc.Users.UsernameTaken(ctx, *update.Username, userID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "Database error")
			return
		}
		if taken {
			utils.Error(w, http.StatusConflict, "Username already exists")
			return
		}
	}

	if update.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "Error hashing password")
			return
		}
		hashedStr := string(hashed)
		update.Password = &hashedStr
	}

	if err := uc.Users.Update(ctx, userID, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "User not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to update user profile")
		return
	}

	user, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

// DeleteAccount removes the caller's account.
func (uc *UserController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestUser(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Could not parse user from context")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := uc.Users.Delete(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

func (uc *UserController) decodeProfileUpdate(r *http.Request) (store.ProfileUpdate, error) {
	var update store.ProfileUpdate

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return update, errors.New("invalid multipart form")
		}
		update.FirstName = formValue(r, "firstName")
		update.LastName = formValue(r, "lastName")
		update.Username = formValue(r, "username")
		update.Password = formValue(r, "password")
		update.Phone = formValue(r, "phone")
		update.Location = formValue(r, "location")
		update.Address = formValue(r, "address")

		paths, err := middleware.SaveUploadedFiles(r, "profileImage", 1, uc.UploadDir)
		if err != nil {
			return update, err
		}
		if len(paths) > 0 {
			update.ProfileImage = &paths[0]
		}
		return update, nil
	}

	var body struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Username  *string `json:"username"`
		Password  *string `json:"password"`
		Phone     *string `json:"phone"`
		Location  *string `json:"location"`
		Address   *string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return update, errors.New("Invalid input")
	}
	update.FirstName = body.FirstName
	update.LastName = body.LastName
	update.Username = body.Username
	update.Password = body.Password
	update.Phone = body.Phone
	update.Location = body.Location
	update.Address = body.Address
	return update, nil
}

// formValue returns a pointer to the form field's value, or nil when absent.
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values := r.MultipartForm.Value[key]
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}

// requestUser extracts the authenticated user's id and claims from the
// request context.
func requestUser(r *http.Request) (primitive.ObjectID, *utils.Claims, bool) {
	claims, ok := middleware.ClaimsFromRequest(r)
	if !ok {
		return primitive.NilObjectID, nil, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, nil, false
	}
	return id, claims, true
}
