package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PropertyImage represents one gallery photo owned by a property. At most one
// image per property carries IsPrincipal; promotion demotes the previous
// holder (see services.SaveImage).
type PropertyImage struct {
	ID         string    `gorm:"type:uuid;primarykey" json:"id"`
	PropertyID string    `gorm:"type:uuid;not null;index:idx_image_property;index:idx_image_property_principal" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"-"`

	StorageKey  string    `gorm:"not null" json:"storage_key"` // uploads/YYYY/MM/<name>.<ext>
	Caption     string    `json:"caption"`
	AltText     string    `json:"alt_text"` // Auto-derived from caption or parent title when blank
	IsPrincipal bool      `gorm:"not null;default:false;index:idx_image_property_principal" json:"is_principal"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// BeforeCreate hook to generate UUID
func (i *PropertyImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for PropertyImage model
func (PropertyImage) TableName() string {
	return "property_images"
}

// GalleryOrder is the default ordering of a property's gallery:
// principal first, then manual sort order, then upload time.
const GalleryOrder = "is_principal DESC, sort_order ASC, uploaded_at ASC"
