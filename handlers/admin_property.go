package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"terrasur_app_go/config"
	"terrasur_app_go/db"
	"terrasur_app_go/models"
	"terrasur_app_go/services"

	"github.com/labstack/echo/v4"
)

// rateProvider returns the production rate source for the request. Kept as a
// variable so handler tests can swap in a deterministic rate.
var rateProvider = func(cfg *config.Config) services.RateProvider {
	return services.NewMindicadorClient(cfg.UFAPIURL, cfg.UFTimeout)
}

// validationErrorResponse maps a lifecycle validation failure onto a
// field-level 400 payload; anything else becomes a 500
func validationErrorResponse(c echo.Context, err error) error {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"field":   vErr.Field,
			"message": vErr.Message,
		})
	}
	c.Logger().Errorf("Failed to save property: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save property")
}

// CreatePropertyHandler creates a listing through the persistence lifecycle
// (ficha number, slug and price reconciliation happen on save)
func CreatePropertyHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)

	property := new(models.Property)
	if err := c.Bind(property); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	// Defaults mirrored from the data-entry form
	if property.Status == "" {
		property.Status = models.PropertyStatusAvailable
	}
	if property.Type == "" {
		property.Type = models.PropertyTypeParcela
	}
	if property.Operation == "" {
		property.Operation = models.OperationSale
	}
	if property.Currency == "" {
		property.Currency = models.CurrencyCLP
	}
	if property.Commune == "" {
		property.Commune = "Tomé"
	}

	if err := services.SaveProperty(db.DB, rateProvider(cfg), property); err != nil {
		return validationErrorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, property)
}

// UpdatePropertyHandler applies changes to an existing listing and re-runs
// the lifecycle. FichaID and slug are never regenerated once assigned;
// prices are always reconciled.
func UpdatePropertyHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)
	id := c.Param("id")

	var property models.Property
	if err := db.DB.First(&property, "id = ?", id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}

	if err := c.Bind(&property); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	// The record identity is never client-writable
	property.ID = id

	if err := services.SaveProperty(db.DB, rateProvider(cfg), &property); err != nil {
		return validationErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, property)
}

// GetAdminPropertiesHandler lists all listings for the back office,
// including unpublished ones, with optional filters
func GetAdminPropertiesHandler(c echo.Context) error {
	query := db.DB.Preload("Images", galleryPreload).Order("created_at DESC")

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if propertyType := c.QueryParam("type"); propertyType != "" {
		query = query.Where("type = ?", propertyType)
	}
	if commune := c.QueryParam("commune"); commune != "" {
		query = query.Where("commune = ?", commune)
	}
	if published := c.QueryParam("published"); published != "" {
		query = query.Where("published = ?", published == "true")
	}

	var properties []models.Property
	if err := query.Find(&properties).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch properties")
	}

	return c.JSON(http.StatusOK, properties)
}

// DeletePropertyHandler removes a listing. Gallery rows cascade with the
// parent; the stored files are cleaned up best-effort afterwards.
func DeletePropertyHandler(c echo.Context) error {
	id := c.Param("id")

	var property models.Property
	if err := db.DB.Preload("Images").First(&property, "id = ?", id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}

	if err := db.DB.Select("Images").Delete(&property).Error; err != nil {
		c.Logger().Errorf("Failed to delete property %s: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete property")
	}

	ctx := c.Request().Context()
	for _, img := range property.Images {
		if img.StorageKey == "" {
			continue
		}
		if err := services.Storage.Delete(ctx, img.StorageKey); err != nil {
			c.Logger().Warnf("Failed to delete stored file %s: %v", img.StorageKey, err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// bulkStatusInput is the payload of the bulk status action
type bulkStatusInput struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// BulkStatusHandler marks the selected listings as available/sold/etc.,
// mirroring the back-office bulk actions
func BulkStatusHandler(c echo.Context) error {
	var input bulkStatusInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	validStatuses := map[string]bool{
		models.PropertyStatusAvailable: true,
		models.PropertyStatusReserved:  true,
		models.PropertyStatusSold:      true,
		models.PropertyStatusPaused:    true,
	}
	if !validStatuses[input.Status] {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	}
	if len(input.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No properties selected")
	}

	result := db.DB.Model(&models.Property{}).
		Where("id IN ?", input.IDs).
		Update("status", input.Status)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update status")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"updated": result.RowsAffected,
		"status":  input.Status,
	})
}

// GetImportTemplateHandler returns the Excel workbook used for bulk loads
func GetImportTemplateHandler(c echo.Context) error {
	buf, err := services.GenerateImportTemplate()
	if err != nil {
		c.Logger().Errorf("Failed to generate import template: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate template")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="plantilla_propiedades.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// ImportPropertiesHandler runs a bulk property load from an uploaded
// workbook. Row errors are reported in the summary, not as a failure.
func ImportPropertiesHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to open file")
	}
	defer file.Close()

	result, err := services.BulkImportFromExcel(db.DB, rateProvider(cfg), file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Import failed: %v", err))
	}

	return c.JSON(http.StatusOK, result)
}

// GetFichaPDFHandler renders the printable fact sheet for one listing
func GetFichaPDFHandler(c echo.Context) error {
	id := c.Param("id")

	var property models.Property
	if err := db.DB.Preload("Images", galleryPreload).First(&property, "id = ?", id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}

	var imageURLs []string
	for _, img := range property.Images {
		if url := services.Storage.GetPublicURL(img.StorageKey); url != "" {
			imageURLs = append(imageURLs, url)
		}
	}

	pdf, err := services.GenerateFichaPDF(&property, imageURLs, services.DefaultPDFOptions())
	if err != nil {
		c.Logger().Errorf("Failed to generate ficha PDF for %s: %v", property.FichaID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	filename := fmt.Sprintf(`attachment; filename="%s.pdf"`, property.FichaID)
	c.Response().Header().Set(echo.HeaderContentDisposition, filename)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
