package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"go-bikemart/models"
)

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"firstName": "Arun",
		"username":  "arun",
		"password":  "secret123",
		"phone":     "9876543210",
		"location":  "Kochi",
	}, nil)
	wantStatus(t, resp, http.StatusCreated)

	var login struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	resp = env.doJSON(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"username": "arun",
		"password": "secret123",
	}, &login)
	wantStatus(t, resp, http.StatusOK)
	if login.Token == "" {
		t.Fatal("login response missing token")
	}
	if login.User.Username != "arun" || login.User.Role != models.RoleCustomer {
		t.Fatalf("login user mismatch: %+v", login.User)
	}

	var profile models.User
	resp = env.doJSON(t, http.MethodGet, "/api/users/profile", login.Token, nil, &profile)
	wantStatus(t, resp, http.StatusOK)
	if profile.Username != "arun" || profile.Phone != "9876543210" {
		t.Fatalf("profile mismatch: %+v", profile)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.newUser(t, "arun", models.RoleCustomer)

	resp := env.doJSON(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"username": "arun",
		"password": "other456",
	}, nil)
	wantStatus(t, resp, http.StatusConflict)
	if got := messageOf(t, resp); got != "Username already exists" {
		t.Fatalf("message = %q", got)
	}
}

func TestSignupMissingFields(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodPost, "/api/users/signup", "",
		map[string]string{"password": "secret123"}, nil)
	wantStatus(t, resp, http.StatusBadRequest)

	resp = env.doJSON(t, http.MethodPost, "/api/users/signup", "",
		map[string]string{"username": "arun"}, nil)
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.newUser(t, "arun", models.RoleCustomer)

	resp := env.doJSON(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"username": "arun",
		"password": "wrong",
	}, nil)
	wantStatus(t, resp, http.StatusBadRequest)

	resp = env.doJSON(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"username": "nobody",
		"password": "secret123",
	}, nil)
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestProfileRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodGet, "/api/users/profile", "", nil, nil)
	wantStatus(t, resp, http.StatusUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "arun", models.RoleCustomer)

	var updated models.User
	resp := env.doJSON(t, http.MethodPut, "/api/users/profile", token, map[string]string{
		"phone":    "1112223334",
		"location": "Chennai",
	}, &updated)
	wantStatus(t, resp, http.StatusOK)
	if updated.Phone != "1112223334" || updated.Location != "Chennai" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Username != "arun" {
		t.Fatalf("username changed unexpectedly: %q", updated.Username)
	}

	stored, err := env.users.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if stored.Phone != "1112223334" {
		t.Fatalf("stored phone = %q", stored.Phone)
	}
}

func TestUpdateProfileUsernameConflict(t *testing.T) {
	env := newTestEnv(t)
	env.newUser(t, "taken", models.RoleCustomer)
	_, token := env.newUser(t, "arun", models.RoleCustomer)

	resp := env.doJSON(t, http.MethodPut, "/api/users/profile", token,
		map[string]string{"username": "taken"}, nil)
	wantStatus(t, resp, http.StatusConflict)
}

func TestUpdateProfileRejectsEmptyUpdate(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "arun", models.RoleCustomer)

	resp := env.doJSON(t, http.MethodPut, "/api/users/profile", token,
		map[string]string{}, nil)
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "arun", models.RoleCustomer)

	resp := env.doJSON(t, http.MethodDelete, "/api/users/profile", token, nil, nil)
	wantStatus(t, resp, http.StatusOK)

	if _, err := env.users.FindByID(context.Background(), user.ID); err == nil {
		t.Fatal("user still present after deletion")
	}
}
