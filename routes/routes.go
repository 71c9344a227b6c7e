// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-bikemart/controllers"
	"go-bikemart/middleware"
)

// RegisterRoutes sets up all the routes for the application. Public routes
// are registered before the authenticated subrouters so they are matched
// first.
func RegisterRoutes(
	router *mux.Router,
	userController *controllers.UserController,
	cartController *controllers.CartController,
	bikeController *controllers.BikeController,
	adminController *controllers.AdminController,
	pdfController *controllers.PDFController,
	healthController *controllers.HealthController,
	uploadDir string,
) {
	router.HandleFunc("/health", healthController.Handle).Methods("GET")
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	api := router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/users/signup", userController.Signup).Methods("POST")
	api.HandleFunc("/users/login", userController.Login).Methods("POST")
	api.HandleFunc("/bikes", bikeController.GetBikes).Methods("GET")
	api.HandleFunc("/bikes/{id}", bikeController.GetBike).Methods("GET")

	// Profile and cart routes
	users := api.PathPrefix("/users").Subrouter()
	users.Use(middleware.AuthMiddleware)
	users.HandleFunc("/profile", userController.GetProfile).Methods("GET")
	users.HandleFunc("/profile", userController.UpdateProfile).Methods("PUT")
	users.HandleFunc("/profile", userController.DeleteAccount).Methods("DELETE")
	users.HandleFunc("/cart", cartController.AddToCart).Methods("POST")
	users.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	users.HandleFunc("/cart", cartController.RemoveFromCart).Methods("DELETE")

	// Listing routes
	bikes := api.PathPrefix("/bikes").Subrouter()
	bikes.Use(middleware.AuthMiddleware)
	bikes.HandleFunc("", bikeController.CreateBike).Methods("POST")
	bikes.HandleFunc("/{id}", bikeController.UpdateBike).Methods("PUT")
	bikes.HandleFunc("/{id}", bikeController.DeleteBike).Methods("DELETE")
	bikes.HandleFunc("/{id}/sold", bikeController.MarkSold).Methods("PATCH")
	bikes.HandleFunc("/{id}/available", bikeController.MarkAvailable).Methods("PATCH")
	bikes.HandleFunc("/{id}/book", bikeController.BookBike).Methods("POST")
	bikes.HandleFunc("/{id}/book/{buyerId}", bikeController.RemoveBuyer).Methods("DELETE")
	bikes.HandleFunc("/{id}/pdf", pdfController.GenerateBikePDF).Methods("GET")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/stats", adminController.GetStats).Methods("GET")
	admin.HandleFunc("/users", adminController.GetUsers).Methods("GET")
	admin.HandleFunc("/bikes", adminController.GetBikes).Methods("GET")
	admin.HandleFunc("/sales-report", adminController.GetSalesReport).Methods("GET")
}
