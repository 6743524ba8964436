package handlers

import (
	"net/http"
	"strconv"

	"terrasur_app_go/db"
	"terrasur_app_go/models"
	"terrasur_app_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// propertyView is the public JSON shape of a listing
type propertyView struct {
	FichaID           string   `json:"ficha_id"`
	Slug              string   `json:"slug"`
	Title             string   `json:"title"`
	Type              string   `json:"type"`
	Status            string   `json:"status"`
	Operation         string   `json:"operation"`
	Currency          string   `json:"currency"`
	FormattedPrice    string   `json:"formatted_price"`
	PriceUF           *float64 `json:"price_uf,omitempty"`
	PricePesos        *int64   `json:"price_pesos,omitempty"`
	PricePerM2UF      *float64 `json:"price_per_m2_uf,omitempty"`
	TotalAreaM2       uint     `json:"total_area_m2"`
	BuiltAreaM2       *uint    `json:"built_area_m2,omitempty"`
	Bedrooms          *uint    `json:"bedrooms,omitempty"`
	Bathrooms         *uint    `json:"bathrooms,omitempty"`
	Location          string   `json:"location"`
	Commune           string   `json:"commune"`
	Sector            string   `json:"sector,omitempty"`
	Description       string   `json:"description,omitempty"`
	PrincipalImageURL string   `json:"principal_image_url,omitempty"`
	Images            []imageView `json:"images,omitempty"`
}

// imageView is the public JSON shape of a gallery photo
type imageView struct {
	URL         string `json:"url"`
	Caption     string `json:"caption,omitempty"`
	AltText     string `json:"alt_text"`
	IsPrincipal bool   `json:"is_principal"`
	SortOrder   int    `json:"sort_order"`
}

func newPropertyView(p *models.Property, withDetail bool) propertyView {
	view := propertyView{
		FichaID:        p.FichaID,
		Slug:           p.Slug,
		Title:          p.Title,
		Type:           p.Type,
		Status:         p.Status,
		Operation:      p.Operation,
		Currency:       p.Currency,
		FormattedPrice: p.FormattedPrice(),
		PriceUF:        p.PriceUF,
		PricePesos:     p.PricePesos,
		PricePerM2UF:   p.PricePerM2UF(),
		TotalAreaM2:    p.TotalAreaM2,
		BuiltAreaM2:    p.BuiltAreaM2,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		Location:       p.LocationLabel(),
		Commune:        p.Commune,
		Sector:         p.Sector,
	}

	// Images are preloaded in gallery order, so the first one is the cover
	if len(p.Images) > 0 {
		view.PrincipalImageURL = services.Storage.GetPublicURL(p.Images[0].StorageKey)
	}

	if withDetail {
		view.Description = p.Description
		for _, img := range p.Images {
			view.Images = append(view.Images, imageView{
				URL:         services.Storage.GetPublicURL(img.StorageKey),
				Caption:     img.Caption,
				AltText:     img.AltText,
				IsPrincipal: img.IsPrincipal,
				SortOrder:   img.SortOrder,
			})
		}
	}

	return view
}

// galleryPreload orders preloaded images so the principal comes first
func galleryPreload(tx *gorm.DB) *gorm.DB {
	return tx.Order(models.GalleryOrder)
}

// GetPropertiesHandler returns the public catalog: published listings that
// have not been sold, newest first. ?featured=N limits the result, used by
// the home page highlight section.
func GetPropertiesHandler(c echo.Context) error {
	query := db.DB.
		Preload("Images", galleryPreload).
		Where("published = ?", true).
		Where("status <> ?", models.PropertyStatusSold).
		Order("created_at DESC")

	if featured := c.QueryParam("featured"); featured != "" {
		limit, err := strconv.Atoi(featured)
		if err != nil || limit <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "featured must be a positive number")
		}
		query = query.Limit(limit)
	}

	var properties []models.Property
	if err := query.Find(&properties).Error; err != nil {
		c.Logger().Errorf("Failed to fetch catalog: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch properties")
	}

	views := make([]propertyView, 0, len(properties))
	for i := range properties {
		views = append(views, newPropertyView(&properties[i], false))
	}

	return c.JSON(http.StatusOK, views)
}

// GetPropertyHandler returns the detail view for one listing, looked up by
// its URL slug
func GetPropertyHandler(c echo.Context) error {
	slug := c.Param("slug")

	var property models.Property
	if err := db.DB.
		Preload("Images", galleryPreload).
		Where("slug = ?", slug).
		First(&property).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}

	return c.JSON(http.StatusOK, newPropertyView(&property, true))
}
