package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"go-bikemart/config"
	"go-bikemart/controllers"
	"go-bikemart/models"
	"go-bikemart/routes"
	"go-bikemart/store"
	"go-bikemart/utils"
)

func init() {
	utils.JwtKey = []byte("test-secret")
}

// testEnv wires the full route table to in-memory stores.
type testEnv struct {
	users  *store.MemoryUserStore
	bikes  *store.MemoryBikeStore
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := store.NewMemoryUserStore()
	bikes := store.NewMemoryBikeStore()
	uploadDir := t.TempDir()

	email := utils.NewEmailService(config.Config{})
	userController := controllers.NewUserController(users, uploadDir)
	cartController := controllers.NewCartController(users, bikes)
	bikeController := controllers.NewBikeController(bikes, users, email, uploadDir)
	adminController := controllers.NewAdminController(users, bikes)
	pdfController := controllers.NewPDFController(bikes, users, uploadDir)
	healthController := controllers.NewHealthController(time.Now())

	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, cartController, bikeController,
		adminController, pdfController, healthController, uploadDir)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{users: users, bikes: bikes, server: server}
}

// newUser stores an account directly and returns it with a valid token.
func (e *testEnv) newUser(t *testing.T, username, role string) (*models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Password: string(hashed),
		Phone:    "9876543210",
		Location: "Kochi",
		Role:     role,
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return user, token
}

// newBike stores a listing directly, owned by the given user.
func (e *testEnv) newBike(t *testing.T, owner *models.User, price float64) *models.Bike {
	t.Helper()

	bike := &models.Bike{
		Brand:         "Royal Enfield",
		Model:         "Classic 350",
		Location:      "Kochi",
		Price:         price,
		Description:   "Well maintained",
		Color:         "Black",
		OwnersCount:   1,
		KilometresRun: 12000,
		ModelYear:     2020,
		Owner:         owner.ID,
		PostedOn:      time.Now(),
		CreatedAt:     time.Now(),
	}
	if err := e.bikes.Create(context.Background(), bike); err != nil {
		t.Fatalf("create bike: %v", err)
	}
	return bike
}

// doJSON issues a JSON request and decodes the response body into out when
// out is non-nil.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

// multipartForm builds a multipart body from scalar fields plus optional
// image files per category.
func multipartForm(t *testing.T, fields map[string]string, files map[string][]string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for field, names := range files {
		for _, name := range names {
			header := textproto.MIMEHeader{}
			header.Set("Content-Disposition",
				`form-data; name="`+field+`"; filename="`+name+`"`)
			header.Set("Content-Type", "image/png")
			part, err := writer.CreatePart(header)
			if err != nil {
				t.Fatalf("create part: %v", err)
			}
			if _, err := part.Write(tinyPNG()); err != nil {
				t.Fatalf("write file: %v", err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

// tinyPNG returns the bytes of a 1x1 transparent PNG.
func tinyPNG() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
		0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
		0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
	}
}

func messageOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Message
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d (body: %s)", resp.StatusCode, want, strings.TrimSpace(string(raw)))
	}
}
