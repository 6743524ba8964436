package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gorm.io/gorm"
)

// Property status constants (workflow states - must remain fixed)
const (
	PropertyStatusAvailable = "DISPONIBLE"
	PropertyStatusReserved  = "RESERVADO"
	PropertyStatusSold      = "VENDIDO"
	PropertyStatusPaused    = "PAUSADO"
)

// Property type constants
const (
	PropertyTypeParcela    = "PARCELA"    // Parcela de agrado
	PropertyTypeUrbano     = "URBANO"     // Sitio urbano
	PropertyTypeCasa       = "CASA"       // Casa
	PropertyTypeAgricola   = "AGRICOLA"   // Terreno agrícola
	PropertyTypeIndustrial = "INDUSTRIAL" // Terreno industrial
)

// Operation constants
const (
	OperationSale = "VENTA"
	OperationRent = "ARRIENDO"
)

// Currency constants. The currency decides which of the two price columns is
// the source of truth; the other one is always recomputed on save.
const (
	CurrencyUF  = "UF"
	CurrencyCLP = "CLP"
)

// Topography constants
const (
	TopographyFlat        = "PLANO"
	TopographySoftSlope   = "PENDIENTE_SUAVE"
	TopographySteepSlope  = "PENDIENTE_FUERTE"
	TopographyMixed       = "MIXTO"
	TopographyIrregular   = "IRREGULAR"
)

// Water availability constants
const (
	WaterPublicNetwork = "RED_PUBLICA" // Essbio/Smapa
	WaterRural         = "APR"         // Agua potable rural
	WaterWell          = "POZO"
	WaterPoint         = "PUNTERA"
	WaterSpring        = "VERTIENTE"
	WaterTruck         = "CAMION"
	WaterNone          = "NO_TIENE"
)

// Power availability constants
const (
	PowerMeter       = "MEDIDOR"
	PowerFeasibility = "FACTIBILIDAD"
	PowerPoles       = "POSTACION"
	PowerSolar       = "SOLAR"
	PowerNone        = "NO_TIENE"
)

// Sewerage availability constants
const (
	SewerInstalled     = "INSTALADO"
	SewerNetworkAccess = "ACCESO_RED"
	SewerSepticTank    = "FOSA"
	SewerNone          = "NO_TIENE"
)

// Property represents one real-estate listing
type Property struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Identification
	FichaID   string    `gorm:"uniqueIndex" json:"ficha_id"` // e.g. TS-2026-001, assigned once, manual values respected
	Rol       string    `json:"rol"`                         // Tax assessment roll, e.g. 1234-56
	LotNumber string    `json:"lot_number"`                  // e.g. Lote A-4
	OwnerName string    `json:"-"`                           // Internal only, never exposed on the site
	EnteredAt time.Time `json:"entered_at"`                  // Intake date, editable
	Status    string    `gorm:"not null;default:DISPONIBLE;index" json:"status"`
	Type      string    `gorm:"not null;default:PARCELA;index" json:"type"`

	Title string `gorm:"not null" json:"title"`
	Slug  string `gorm:"uniqueIndex" json:"slug"` // assigned once from title, never regenerated

	// Location
	Address           string   `json:"address"`
	LocationReference string   `json:"location_reference"` // Public landmark reference
	Commune           string   `gorm:"not null;default:Tomé;index" json:"commune"`
	Sector            string   `json:"sector"` // e.g. Mirador, Rinco 2
	GoogleEarthLink   string   `json:"google_earth_link"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`

	// Commercial
	Operation  string   `gorm:"not null;default:VENTA" json:"operation"`
	Currency   string   `gorm:"not null;default:CLP" json:"currency"`
	ListPrice  float64  `gorm:"not null" json:"list_price"` // Value in Currency, entered by the back office
	PriceUF    *float64 `json:"price_uf,omitempty"`         // Derived when Currency=CLP, authoritative copy when Currency=UF
	PricePesos *int64   `json:"price_pesos,omitempty"`      // Derived when Currency=UF, authoritative copy when Currency=CLP

	// Dimensions and terrain
	TotalAreaM2       uint   `gorm:"not null" json:"total_area_m2"`
	BuiltAreaM2       *uint  `json:"built_area_m2,omitempty"`
	Topography        string `gorm:"not null;default:MIXTO" json:"topography"`
	TopographyDetail  string `gorm:"type:text" json:"topography_detail"`

	// Utility availability
	WaterAvailability string `gorm:"not null;default:NO_TIENE" json:"water_availability"`
	PowerAvailability string `gorm:"not null;default:NO_TIENE" json:"power_availability"`
	SewerAvailability string `gorm:"not null;default:NO_TIENE" json:"sewer_availability"`
	UtilitiesDetail   string `gorm:"type:text" json:"utilities_detail"`

	// Habitational features
	Bedrooms     *uint `json:"bedrooms,omitempty"`
	Bathrooms    *uint `json:"bathrooms,omitempty"`
	ParkingSpots *uint `json:"parking_spots,omitempty"`

	// Management and multimedia
	Published      bool   `gorm:"not null;default:false;index" json:"published"`
	DriveLink      string `json:"-"` // Internal photo archive, never exposed
	PublishedLinks string `gorm:"type:text" json:"published_links"` // External portal links (Yapo, PortalInmobiliario, ...)
	InternalNotes  string `gorm:"type:text" json:"-"`
	Description    string `gorm:"type:text" json:"description"`

	// Relationships
	Images []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// BeforeCreate hook to generate UUID and default the intake date
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.EnteredAt.IsZero() {
		p.EnteredAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for Property model
func (Property) TableName() string {
	return "properties"
}

// clPrinter formats numbers with Chilean separators (dot thousands, comma decimals)
var clPrinter = message.NewPrinter(language.MustParse("es-CL"))

// FormattedPrice returns the display price in the property's main currency,
// e.g. "$38.000.000" or "UF 1.250,50". Falls back to "Consulte Precio" when
// no computed price is available yet.
func (p *Property) FormattedPrice() string {
	if p.Currency == CurrencyCLP && p.PricePesos != nil {
		return clPrinter.Sprintf("$%v", number.Decimal(*p.PricePesos))
	}
	if p.PriceUF != nil {
		return clPrinter.Sprintf("UF %v", number.Decimal(*p.PriceUF,
			number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	}
	return "Consulte Precio"
}

// PricePerM2UF returns the UF price per square meter, or nil when either the
// UF price or the total area is missing.
func (p *Property) PricePerM2UF() *float64 {
	if p.PriceUF == nil || p.TotalAreaM2 == 0 {
		return nil
	}
	v := *p.PriceUF / float64(p.TotalAreaM2)
	return &v
}

// LocationLabel returns a human-readable location string: "Sector, Commune"
// when a sector is set, otherwise just the commune.
func (p *Property) LocationLabel() string {
	if p.Sector != "" {
		return fmt.Sprintf("%s, %s", p.Sector, p.Commune)
	}
	return p.Commune
}

// DisplayName returns the internal identification string used in listings
// and logs, e.g. "TS-2026-001 | Parcela El Mirador"
func (p *Property) DisplayName() string {
	return fmt.Sprintf("%s | %s", p.FichaID, p.Title)
}

// IsSold checks if the property has been sold
func (p *Property) IsSold() bool {
	return p.Status == PropertyStatusSold
}
