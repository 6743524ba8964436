package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"terrasur_app_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetPropertiesHandler(t *testing.T) {
	setupTestDB(t)

	createTestProperty(t, func(p *models.Property) { p.Title = "Parcela Publicada" })
	createTestProperty(t, func(p *models.Property) {
		p.Title = "Parcela Borrador"
		p.Published = false
	})
	createTestProperty(t, func(p *models.Property) {
		p.Title = "Parcela Vendida"
		p.Status = models.PropertyStatusSold
	})
	createTestProperty(t, func(p *models.Property) {
		p.Title = "Parcela Reservada"
		p.Status = models.PropertyStatusReserved
	})

	t.Run("Catalog hides drafts and sold listings", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/properties", nil)

		err := GetPropertiesHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var views []map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
		assert.Len(t, views, 2)

		titles := []string{views[0]["title"].(string), views[1]["title"].(string)}
		assert.Contains(t, titles, "Parcela Publicada")
		assert.Contains(t, titles, "Parcela Reservada")
	})

	t.Run("Featured limit", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/properties?featured=1", nil)

		err := GetPropertiesHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var views []map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
		assert.Len(t, views, 1)
	})

	t.Run("Invalid featured value", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/properties?featured=abc", nil)

		err := GetPropertiesHandler(c)
		assert.Error(t, err)

		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("Catalog entries never expose internal fields", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/properties", nil)

		err := GetPropertiesHandler(c)
		assert.NoError(t, err)
		assert.NotContains(t, rec.Body.String(), "owner_name")
		assert.NotContains(t, rec.Body.String(), "internal_notes")
		assert.NotContains(t, rec.Body.String(), "Borrador")
	})
}

func TestGetPropertyHandler(t *testing.T) {
	setupTestDB(t)

	createTestProperty(t, func(p *models.Property) {
		p.Title = "Casa Dichato"
		p.Currency = models.CurrencyUF
		p.ListPrice = 2500
		p.Description = "Casa frente a la playa"
	})
	createTestProperty(t, func(p *models.Property) {
		p.Title = "Parcela Sin Publicar"
		p.Published = false
	})

	t.Run("Detail by slug", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/", nil)
		c.SetPath("/api/properties/:slug")
		c.SetParamNames("slug")
		c.SetParamValues("casa-dichato")

		err := GetPropertyHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var view map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, "Casa Dichato", view["title"])
		assert.Equal(t, "UF 2.500,00", view["formatted_price"])
		assert.Equal(t, "Casa frente a la playa", view["description"])
		assert.Equal(t, float64(95000000), view["price_pesos"])
	})

	t.Run("Drafts stay reachable by direct link", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/", nil)
		c.SetPath("/api/properties/:slug")
		c.SetParamNames("slug")
		c.SetParamValues("parcela-sin-publicar")

		err := GetPropertyHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Unknown slug", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/", nil)
		c.SetPath("/api/properties/:slug")
		c.SetParamNames("slug")
		c.SetParamValues("no-existe")

		err := GetPropertyHandler(c)
		assert.Error(t, err)

		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})
}
