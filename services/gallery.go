package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"

	"terrasur_app_go/models"

	"gorm.io/gorm"
)

// ErrImageNotFound is returned when a gallery image does not exist
var ErrImageNotFound = errors.New("image not found")

// SaveImage persists a gallery image and maintains the gallery invariants:
// a blank alt text is derived from the caption or the parent title, and when
// the image is flagged principal every sibling is demoted in the same
// transaction. Last writer wins; promoting twice is never an error.
func SaveImage(dbConn *gorm.DB, img *models.PropertyImage) error {
	return dbConn.Transaction(func(tx *gorm.DB) error {
		if img.AltText == "" {
			var property models.Property
			if err := tx.Select("title").First(&property, "id = ?", img.PropertyID).Error; err != nil {
				return fmt.Errorf("failed to load parent property: %w", err)
			}
			if img.Caption != "" {
				img.AltText = fmt.Sprintf("%s - %s", img.Caption, property.Title)
			} else {
				img.AltText = fmt.Sprintf("Imagen de %s", property.Title)
			}
		}

		if img.IsPrincipal {
			// Demote the previous holder (single bulk update, excluding this
			// record) so at most one image per property stays principal
			if err := tx.Model(&models.PropertyImage{}).
				Where("property_id = ? AND id <> ? AND is_principal = ?", img.PropertyID, img.ID, true).
				Update("is_principal", false).Error; err != nil {
				return fmt.Errorf("failed to demote previous principal image: %w", err)
			}
		}

		return tx.Save(img).Error
	})
}

// DeleteImage removes the database row and then deletes the stored file.
// File removal is best-effort: a missing or unwritable file is logged and
// tolerated, never fatal.
func DeleteImage(ctx context.Context, dbConn *gorm.DB, storage StorageProvider, img *models.PropertyImage) error {
	if err := dbConn.Delete(img).Error; err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}

	if img.StorageKey != "" {
		if err := storage.Delete(ctx, img.StorageKey); err != nil {
			log.Printf("[WARNING] Failed to delete stored file %s: %v", img.StorageKey, err)
		}
	}

	return nil
}

// ReplaceImageFile stores a new binary for an existing image, updates the
// record, and deletes the previous file when it differs from the new one.
// The old-file cleanup is best-effort, like DeleteImage.
func ReplaceImageFile(ctx context.Context, dbConn *gorm.DB, storage StorageProvider, img *models.PropertyImage, file *multipart.FileHeader) error {
	if err := ValidateImageUpload(file); err != nil {
		return err
	}

	oldKey := img.StorageKey
	newKey := GeneratePropertyImageKey(file.Filename)

	if _, err := storage.Upload(ctx, file, newKey); err != nil {
		return fmt.Errorf("failed to store replacement file: %w", err)
	}

	img.StorageKey = newKey
	if err := SaveImage(dbConn, img); err != nil {
		// Roll the upload back so the orphaned file does not linger
		if delErr := storage.Delete(ctx, newKey); delErr != nil {
			log.Printf("[WARNING] Failed to clean up orphaned file %s: %v", newKey, delErr)
		}
		return err
	}

	if oldKey != "" && oldKey != newKey {
		if err := storage.Delete(ctx, oldKey); err != nil {
			log.Printf("[WARNING] Failed to delete replaced file %s: %v", oldKey, err)
		}
	}

	return nil
}

// PrincipalImage returns the image that represents the property in listings:
// the one flagged principal, or the first by the gallery's default ordering,
// or nil when the gallery is empty.
func PrincipalImage(dbConn *gorm.DB, propertyID string) (*models.PropertyImage, error) {
	var img models.PropertyImage
	err := dbConn.Where("property_id = ?", propertyID).
		Order(models.GalleryOrder).
		First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query principal image: %w", err)
	}
	return &img, nil
}

// GalleryImages returns all images of a property in display order
func GalleryImages(dbConn *gorm.DB, propertyID string) ([]models.PropertyImage, error) {
	var images []models.PropertyImage
	if err := dbConn.Where("property_id = ?", propertyID).
		Order(models.GalleryOrder).
		Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to query gallery: %w", err)
	}
	return images, nil
}
