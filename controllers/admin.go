package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"go-bikemart/store"
	"go-bikemart/utils"
)

// AdminController serves the read-only dashboard aggregations. Every route is
// gated behind the admin role by the router.
type AdminController struct {
	Users store.UserStore
	Bikes store.BikeStore
}

// NewAdminController creates a new AdminController.
func NewAdminController(users store.UserStore, bikes store.BikeStore) *AdminController {
	return &AdminController{Users: users, Bikes: bikes}
}

// GetStats returns the total sold-listing and customer counts.
func (ac *AdminController) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	totalSales, err := ac.Bikes.CountSold(ctx)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}
	totalUsers, err := ac.Users.CountCustomers(ctx)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]int64{
		"totalSales": totalSales,
		"totalUsers": totalUsers,
	})
}

// GetUsers returns all customer accounts for the dashboard table.
func (ac *AdminController) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, err := ac.Users.ListCustomers(ctx)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error fetching users")
		return
	}
	utils.JSON(w, http.StatusOK, users)
}

// GetBikes returns every listing with owner usernames joined in.
func (ac *AdminController) GetBikes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bikes, err := ac.Bikes.List(ctx, store.BikeFilter{})
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error fetching bikes")
		return
	}

	utils.JSON(w, http.StatusOK, joinOwners(ctx, ac.Users, bikes))
}

// MonthlySales is one row of the sales report: the number of listings sold in
// a calendar month.
type MonthlySales struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Sales int64 `json:"sales"`
}

// GetSalesReport groups sold listings by the calendar year and month of their
// soldAt timestamp, ascending.
func (ac *AdminController) GetSalesReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sold, err := ac.Bikes.ListSold(ctx)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error fetching sales")
		return
	}

	type yearMonth struct {
		year  int
		month int
	}
	counts := map[yearMonth]int64{}
	for _, bike := range sold {
		if bike.SoldAt == nil {
			continue
		}
		key := yearMonth{bike.SoldAt.Year(), int(bike.SoldAt.Month())}
		counts[key]++
	}

	report := make([]MonthlySales, 0, len(counts))
	for key, count := range counts {
		report = append(report, MonthlySales{Year: key.year, Month: key.month, Sales: count})
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Year != report[j].Year {
			return report[i].Year < report[j].Year
		}
		return report[i].Month < report[j].Month
	})

	utils.JSON(w, http.StatusOK, report)
}
