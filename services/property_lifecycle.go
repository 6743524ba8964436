package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"terrasur_app_go/models"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FichaPrefix is the agency prefix used in ficha numbers (TS-2026-001)
const FichaPrefix = "TS"

// ValidationError identifies the offending field and carries a human-readable
// message. Raising one aborts the save; nothing is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// descriptionPolicy strips anything beyond basic user-generated markup from
// the public description before it is persisted
var descriptionPolicy = bluemonday.UGCPolicy()

// SaveProperty runs the full persistence lifecycle for a property record:
// validation, one-time ficha and slug assignment, dual-currency price
// reconciliation against the rate provider, and the write itself. Everything
// runs inside a single transaction; a validation failure leaves no partial
// state behind.
//
// Prices are recomputed on every save, even when both columns are already
// consistent. The rate provider absorbs indicator-API failures internally,
// so a save never fails because the rate service is down.
func SaveProperty(dbConn *gorm.DB, rates RateProvider, p *models.Property) error {
	if err := ValidateProperty(p); err != nil {
		return err
	}

	return dbConn.Transaction(func(tx *gorm.DB) error {
		// Ficha number: assigned exactly once. Manual values entered by the
		// back office are respected (uniqueness enforced by the index).
		if p.FichaID == "" {
			year := time.Now().Year()
			number, err := nextFichaNumber(tx, year)
			if err != nil {
				return fmt.Errorf("failed to assign ficha number: %w", err)
			}
			p.FichaID = fmt.Sprintf("%s-%d-%03d", FichaPrefix, year, number)
		}

		// Slug: assigned exactly once, never regenerated on later saves
		if p.Slug == "" {
			p.Slug = uniqueSlug(tx, p.Title, p.ID)
		}

		p.Description = descriptionPolicy.Sanitize(p.Description)

		reconcilePrices(p, rates.CurrentRate())

		return tx.Save(p).Error
	})
}

// ValidateProperty checks the field-level constraints enforced before any
// write. The first violation found is returned.
func ValidateProperty(p *models.Property) error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Message: "El título es obligatorio"}
	}
	if p.ListPrice <= 0 {
		return &ValidationError{Field: "list_price", Message: "Debe ingresar un precio de lista mayor a cero"}
	}
	if p.Currency != models.CurrencyUF && p.Currency != models.CurrencyCLP {
		return &ValidationError{Field: "currency", Message: "Moneda inválida: debe ser UF o CLP"}
	}
	if p.TotalAreaM2 == 0 {
		return &ValidationError{Field: "total_area_m2", Message: "La superficie total es obligatoria"}
	}
	if p.BuiltAreaM2 != nil && *p.BuiltAreaM2 > p.TotalAreaM2 {
		return &ValidationError{Field: "built_area_m2", Message: "La superficie construida no puede superar la superficie total"}
	}
	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		return &ValidationError{Field: "latitude", Message: "La latitud debe estar entre -90 y 90"}
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		return &ValidationError{Field: "longitude", Message: "La longitud debe estar entre -180 y 180"}
	}
	return nil
}

// nextFichaNumber atomically increments and reads the per-year counter within
// the caller's transaction. The row is created on first use.
func nextFichaNumber(tx *gorm.DB, year int) (int, error) {
	seq := models.FichaSequence{Year: year}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return 0, err
	}

	if err := tx.Model(&models.FichaSequence{}).
		Where("year = ?", year).
		Update("last_number", gorm.Expr("last_number + 1")).Error; err != nil {
		return 0, err
	}

	if err := tx.First(&seq, "year = ?", year).Error; err != nil {
		return 0, err
	}
	return seq.LastNumber, nil
}

// reconcilePrices keeps the two price columns mutually consistent. Whichever
// column the main currency points at is authoritative; the other is derived
// from it at the given rate.
func reconcilePrices(p *models.Property, rate float64) {
	if p.Currency == models.CurrencyUF {
		uf := p.ListPrice
		pesos := int64(math.Round(p.ListPrice * rate))
		p.PriceUF = &uf
		p.PricePesos = &pesos
		return
	}

	pesos := int64(math.Round(p.ListPrice))
	uf := math.Round(p.ListPrice/rate*100) / 100
	p.PricePesos = &pesos
	p.PriceUF = &uf
}

// accentStripper decomposes characters and drops combining marks, so that
// "Parcela Ñuñoa" slugifies to "parcela-nunoa"
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashRuns     = regexp.MustCompile(`-+`)
)

// Slugify converts a listing title into a URL-friendly slug
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))

	if stripped, _, err := transform.String(accentStripper, slug); err == nil {
		slug = stripped
	}

	// Replace spaces with hyphens
	slug = strings.ReplaceAll(slug, " ", "-")

	// Remove special characters (keep only alphanumeric and hyphens)
	slug = slugInvalidChars.ReplaceAllString(slug, "")

	// Remove consecutive hyphens
	slug = slugDashRuns.ReplaceAllString(slug, "-")

	// Trim hyphens from start and end
	slug = strings.Trim(slug, "-")

	// Limit to 50 characters
	if len(slug) > 50 {
		slug = slug[:50]
		slug = strings.TrimRight(slug, "-")
	}

	return slug
}

// uniqueSlug derives a slug from the title and appends an incrementing
// numeric suffix until it collides with no other property. Collisions are
// resolved locally, never surfaced to the caller.
func uniqueSlug(tx *gorm.DB, title string, selfID string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "propiedad"
	}

	originalSlug := slug
	counter := 1
	for {
		var count int64
		tx.Model(&models.Property{}).Where("slug = ? AND id <> ?", slug, selfID).Count(&count)
		if count == 0 {
			break
		}
		slug = originalSlug + "-" + strconv.Itoa(counter)
		counter++
	}

	return slug
}
