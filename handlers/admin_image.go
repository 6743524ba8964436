package handlers

import (
	"net/http"
	"strconv"

	"terrasur_app_go/db"
	"terrasur_app_go/models"
	"terrasur_app_go/services"

	"github.com/labstack/echo/v4"
)

// UploadImageHandler adds a photo to a property's gallery. The multipart
// form carries the binary under "image" plus optional caption, alt_text,
// is_principal and sort_order fields.
func UploadImageHandler(c echo.Context) error {
	propertyID := c.Param("id")

	var property models.Property
	if err := db.DB.First(&property, "id = ?", propertyID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing image file")
	}

	if err := services.ValidateImageUpload(fileHeader); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	key := services.GeneratePropertyImageKey(fileHeader.Filename)
	ctx := c.Request().Context()
	if _, err := services.Storage.Upload(ctx, fileHeader, key); err != nil {
		c.Logger().Errorf("Failed to store image: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
	}

	image := &models.PropertyImage{
		PropertyID:  property.ID,
		StorageKey:  key,
		Caption:     c.FormValue("caption"),
		AltText:     c.FormValue("alt_text"),
		IsPrincipal: c.FormValue("is_principal") == "true",
	}
	if sortOrder := c.FormValue("sort_order"); sortOrder != "" {
		if n, err := strconv.Atoi(sortOrder); err == nil {
			image.SortOrder = n
		}
	}

	if err := services.SaveImage(db.DB, image); err != nil {
		// The row was not written, drop the stored file
		if delErr := services.Storage.Delete(ctx, key); delErr != nil {
			c.Logger().Warnf("Failed to clean up stored file %s: %v", key, delErr)
		}
		c.Logger().Errorf("Failed to save image record: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save image")
	}

	return c.JSON(http.StatusCreated, image)
}

// UpdateImageHandler edits caption, alt text, sort order or the principal
// flag of a gallery photo. When the multipart form carries a new "image"
// file the binary is replaced and the previous file is cleaned up.
func UpdateImageHandler(c echo.Context) error {
	id := c.Param("id")

	var image models.PropertyImage
	if err := db.DB.First(&image, "id = ?", id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Image not found")
	}

	// Absent fields keep their value; a field sent blank clears it
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if _, ok := params["caption"]; ok {
		image.Caption = params.Get("caption")
	}
	if _, ok := params["alt_text"]; ok {
		image.AltText = params.Get("alt_text")
	}
	if isPrincipal := c.FormValue("is_principal"); isPrincipal != "" {
		image.IsPrincipal = isPrincipal == "true"
	}
	if sortOrder := c.FormValue("sort_order"); sortOrder != "" {
		n, err := strconv.Atoi(sortOrder)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "sort_order must be a number")
		}
		image.SortOrder = n
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		if err := services.ReplaceImageFile(c.Request().Context(), db.DB, services.Storage, &image, fileHeader); err != nil {
			c.Logger().Errorf("Failed to replace image file: %v", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusOK, image)
	}

	if err := services.SaveImage(db.DB, &image); err != nil {
		c.Logger().Errorf("Failed to update image: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update image")
	}

	return c.JSON(http.StatusOK, image)
}

// DeleteImageHandler removes a gallery photo and its stored file
func DeleteImageHandler(c echo.Context) error {
	id := c.Param("id")

	var image models.PropertyImage
	if err := db.DB.First(&image, "id = ?", id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Image not found")
	}

	if err := services.DeleteImage(c.Request().Context(), db.DB, services.Storage, &image); err != nil {
		c.Logger().Errorf("Failed to delete image %s: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete image")
	}

	return c.NoContent(http.StatusNoContent)
}
