package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"go-bikemart/models"
	"go-bikemart/store"
	"go-bikemart/utils"
)

// PDFController renders a listing as a downloadable PDF summary.
type PDFController struct {
	Bikes     store.BikeStore
	Users     store.UserStore
	UploadDir string
}

// NewPDFController creates a new PDFController.
func NewPDFController(bikes store.BikeStore, users store.UserStore, uploadDir string) *PDFController {
	return &PDFController{Bikes: bikes, Users: users, UploadDir: uploadDir}
}

// GenerateBikePDF streams a PDF summary of the listing: attributes,
// description, owner contact, document counts, and embedded images.
func (pc *PDFController) GenerateBikePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := bikeIDVar(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bike, err := pc.Bikes.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(w, http.StatusNotFound, "Bike not found")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Owner may have deleted their account; the report still renders.
	owner, err := pc.Users.FindByID(ctx, bike.Owner)
	if err != nil {
		owner = nil
	}

	doc := pc.buildDocument(bike, owner)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bike_%s.pdf"`, bike.ID.Hex()))
	if err := doc.Output(w); err != nil {
		utils.Logger().Errorw("pdf output failed", "bike", bike.ID.Hex(), "error", err)
	}
}

func (pc *PDFController) buildDocument(bike *models.Bike, owner *models.User) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("%s %s", bike.Brand, bike.Model), true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 22)
	doc.CellFormat(0, 12, fmt.Sprintf("%s %s", bike.Brand, bike.Model), "", 1, "C", false, 0, "")
	doc.Ln(4)

	pc.sectionTitle(doc, "Basic Information")
	pc.line(doc, "Brand", bike.Brand)
	pc.line(doc, "Model", bike.Model)
	pc.line(doc, "Price", fmt.Sprintf("Rs %.0f", bike.Price))
	pc.line(doc, "Location", bike.Location)
	pc.line(doc, "Color", bike.Color)
	pc.line(doc, "Number of Owners", fmt.Sprintf("%d", bike.OwnersCount))
	pc.line(doc, "Kilometres Run", fmt.Sprintf("%d", bike.KilometresRun))
	pc.line(doc, "Model Year", fmt.Sprintf("%d", bike.ModelYear))
	pc.line(doc, "Posted On", bike.PostedOn.Format("02 Jan 2006"))
	if bike.Sold && bike.SoldAt != nil {
		pc.line(doc, "Sold On", bike.SoldAt.Format("02 Jan 2006"))
	}
	doc.Ln(4)

	pc.sectionTitle(doc, "Description")
	doc.SetFont("Helvetica", "", 11)
	description := bike.Description
	if description == "" {
		description = "No description"
	}
	doc.MultiCell(0, 6, description, "", "L", false)
	doc.Ln(4)

	pc.sectionTitle(doc, "Owner Information")
	if owner != nil {
		pc.line(doc, "Name", owner.Username)
		pc.line(doc, "Phone", owner.Phone)
		pc.line(doc, "Location", owner.Location)
	} else {
		doc.SetFont("Helvetica", "", 11)
		doc.CellFormat(0, 6, "Owner account no longer exists", "", 1, "L", false, 0, "")
	}
	doc.Ln(4)

	pc.sectionTitle(doc, "Documents")
	pc.line(doc, "RC Documents", fileCount(bike.RC))
	pc.line(doc, "Insurance Documents", fileCount(bike.Insurance))
	doc.Ln(4)

	if len(bike.Images) > 0 {
		pc.sectionTitle(doc, "Images")
		for _, image := range bike.Images {
			pc.embedImage(doc, image)
		}
		doc.Ln(4)
	}

	doc.SetFont("Helvetica", "", 9)
	doc.CellFormat(0, 6, fmt.Sprintf("Generated on %s", time.Now().Format("02 Jan 2006")), "", 1, "C", false, 0, "")
	return doc
}

func (pc *PDFController) sectionTitle(doc *fpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func (pc *PDFController) line(doc *fpdf.Fpdf, label, value string) {
	if value == "" {
		value = "N/A"
	}
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 6, fmt.Sprintf("%s: %s", label, value), "", 1, "L", false, 0, "")
}

// embedImage renders one uploaded image if it still exists on disk and has a
// format fpdf understands.
func (pc *PDFController) embedImage(doc *fpdf.Fpdf, publicPath string) {
	ext := strings.ToLower(filepath.Ext(publicPath))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return
	}
	diskPath := filepath.Join(pc.UploadDir, filepath.Base(publicPath))
	if _, err := os.Stat(diskPath); err != nil {
		return
	}
	doc.ImageOptions(diskPath, 10, doc.GetY(), 80, 0, true, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	doc.Ln(4)
}

func fileCount(files []string) string {
	if len(files) == 0 {
		return "Not available"
	}
	return fmt.Sprintf("%d file(s)", len(files))
}
