package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"terrasur_app_go/db"
	"terrasur_app_go/models"
	"terrasur_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

var testJPEG = append([]byte{0xFF, 0xD8, 0xFF}, make([]byte, 100)...)

// buildImageForm builds a multipart body with an "image" file plus extra fields
func buildImageForm(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		assert.NoError(t, err)
		part.Write(content)
	}
	for key, value := range fields {
		writer.WriteField(key, value)
	}
	writer.Close()

	return body, writer.FormDataContentType()
}

func uploadImage(t *testing.T, propertyID, filename string, content []byte, fields map[string]string) (*httptest.ResponseRecorder, error) {
	body, contentType := buildImageForm(t, filename, content, fields)
	_, c, rec := setupEcho(http.MethodPost, "/", body)
	c.Request().Header.Set(echo.HeaderContentType, contentType)
	c.SetPath("/api/admin/properties/:id/images")
	c.SetParamNames("id")
	c.SetParamValues(propertyID)
	return rec, UploadImageHandler(c)
}

func TestUploadImageHandler(t *testing.T) {
	setupTestDB(t)
	tempDir := t.TempDir()
	services.Storage = services.NewLocalStorage(tempDir)

	property := createTestProperty(t, func(p *models.Property) { p.Title = "Parcela Con Galería" })

	t.Run("Stores the file and the record", func(t *testing.T) {
		rec, err := uploadImage(t, property.ID, "vista.jpg", testJPEG, map[string]string{
			"caption":      "Vista al mar",
			"is_principal": "true",
		})
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var image models.PropertyImage
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &image))
		assert.Equal(t, property.ID, image.PropertyID)
		assert.True(t, image.IsPrincipal)
		assert.Equal(t, "Vista al mar - Parcela Con Galería", image.AltText)

		_, statErr := os.Stat(filepath.Join(tempDir, image.StorageKey))
		assert.NoError(t, statErr)
	})

	t.Run("Second principal upload demotes the first", func(t *testing.T) {
		rec, err := uploadImage(t, property.ID, "acceso.jpg", testJPEG, map[string]string{
			"is_principal": "true",
		})
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var count int64
		db.DB.Model(&models.PropertyImage{}).
			Where("property_id = ? AND is_principal = ?", property.ID, true).
			Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Rejects non-image content", func(t *testing.T) {
		_, err := uploadImage(t, property.ID, "falsa.jpg", []byte("texto plano"), nil)
		assert.Error(t, err)

		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("Unknown property", func(t *testing.T) {
		_, err := uploadImage(t, "no-such-id", "vista.jpg", testJPEG, nil)
		assert.Error(t, err)

		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := uploadImage(t, property.ID, "", nil, map[string]string{"caption": "sin archivo"})
		assert.Error(t, err)
	})
}

func TestUpdateImageHandler(t *testing.T) {
	setupTestDB(t)
	tempDir := t.TempDir()
	services.Storage = services.NewLocalStorage(tempDir)

	property := createTestProperty(t, func(p *models.Property) { p.Title = "Parcela Editable" })
	image := &models.PropertyImage{
		PropertyID: property.ID,
		StorageKey: "uploads/2026/08/original.jpg",
		Caption:    "Original",
	}
	assert.NoError(t, services.SaveImage(db.DB, image))

	t.Run("Edits metadata without touching the file", func(t *testing.T) {
		body, contentType := buildImageForm(t, "", nil, map[string]string{
			"caption":      "Editada",
			"is_principal": "true",
			"sort_order":   "3",
		})
		_, c, rec := setupEcho(http.MethodPut, "/", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetPath("/api/admin/images/:id")
		c.SetParamNames("id")
		c.SetParamValues(image.ID)

		err := UpdateImageHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var reloaded models.PropertyImage
		assert.NoError(t, db.DB.First(&reloaded, "id = ?", image.ID).Error)
		assert.Equal(t, "Editada", reloaded.Caption)
		assert.True(t, reloaded.IsPrincipal)
		assert.Equal(t, 3, reloaded.SortOrder)
		assert.Equal(t, "uploads/2026/08/original.jpg", reloaded.StorageKey)
	})

	t.Run("A blank caption field clears the caption", func(t *testing.T) {
		body, contentType := buildImageForm(t, "", nil, map[string]string{
			"caption": "",
		})
		_, c, rec := setupEcho(http.MethodPut, "/", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetPath("/api/admin/images:id")
		c.SetParamNames("id")
		c.SetParamValues(image.ID)

		err := UpdateImageHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var reloaded models.PropertyImage
		assert.NoError(t, db.DB.First(&reloaded, "id = ?", image.ID).Error)
		assert.Equal(t, "", reloaded.Caption)
	})

	t.Run("Omitted fields keep their value", func(t *testing.T) {
		assert.NoError(t, db.DB.Model(&models.PropertyImage{}).
			Where("id = ?", image.ID).Update("caption", "Se queda").Error)

		body, contentType := buildImageForm(t, "", nil, map[string]string{
			"sort_order": "7",
		})
		_, c, rec := setupEcho(http.MethodPut, "/", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetPath("/api/admin/images:id")
		c.SetParamNames("id")
		c.SetParamValues(image.ID)

		err := UpdateImageHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var reloaded models.PropertyImage
		assert.NoError(t, db.DB.First(&reloaded, "id = ?", image.ID).Error)
		assert.Equal(t, "Se queda", reloaded.Caption)
		assert.Equal(t, 7, reloaded.SortOrder)
	})

	t.Run("Replacing the file swaps the storage key", func(t *testing.T) {
		oldPath := filepath.Join(tempDir, image.StorageKey)
		assert.NoError(t, os.MkdirAll(filepath.Dir(oldPath), 0755))
		assert.NoError(t, os.WriteFile(oldPath, testJPEG, 0644))

		body, contentType := buildImageForm(t, "nueva.jpg", testJPEG, nil)
		_, c, rec := setupEcho(http.MethodPut, "/", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetPath("/api/admin/images/:id")
		c.SetParamNames("id")
		c.SetParamValues(image.ID)

		err := UpdateImageHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var reloaded models.PropertyImage
		assert.NoError(t, db.DB.First(&reloaded, "id = ?", image.ID).Error)
		assert.NotEqual(t, "uploads/2026/08/original.jpg", reloaded.StorageKey)

		_, statErr := os.Stat(filepath.Join(tempDir, reloaded.StorageKey))
		assert.NoError(t, statErr)
		_, statErr = os.Stat(oldPath)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("Unknown image", func(t *testing.T) {
		body, contentType := buildImageForm(t, "", nil, map[string]string{"caption": "x"})
		_, c, _ := setupEcho(http.MethodPut, "/", body)
		c.Request().Header.Set(echo.HeaderContentType, contentType)
		c.SetPath("/api/admin/images/:id")
		c.SetParamNames("id")
		c.SetParamValues("no-such-id")

		err := UpdateImageHandler(c)
		assert.Error(t, err)
	})
}

func TestDeleteImageHandler(t *testing.T) {
	setupTestDB(t)
	tempDir := t.TempDir()
	services.Storage = services.NewLocalStorage(tempDir)

	property := createTestProperty(t, func(p *models.Property) { p.Title = "Parcela Con Foto" })

	key := "uploads/2026/08/borrar.jpg"
	fullPath := filepath.Join(tempDir, key)
	assert.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	assert.NoError(t, os.WriteFile(fullPath, testJPEG, 0644))

	image := &models.PropertyImage{PropertyID: property.ID, StorageKey: key}
	assert.NoError(t, services.SaveImage(db.DB, image))

	_, c, rec := setupEcho(http.MethodDelete, "/", nil)
	c.SetPath("/api/admin/images/:id")
	c.SetParamNames("id")
	c.SetParamValues(image.ID)

	err := DeleteImageHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	db.DB.Model(&models.PropertyImage{}).Where("id = ?", image.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	_, statErr := os.Stat(fullPath)
	assert.True(t, os.IsNotExist(statErr))
}
