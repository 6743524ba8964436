package handlers

import (
	"encoding/xml"
	"net/http"
	"time"

	"terrasur_app_go/config"
	"terrasur_app_go/db"
	"terrasur_app_go/models"

	"github.com/labstack/echo/v4"
)

type SitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float32 `xml:"priority,omitempty"`
}

type SitemapURLSet struct {
	XMLName string       `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// GetSitemapHandler generates a dynamic XML sitemap
func GetSitemapHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)
	baseURL := cfg.AppURL

	// Static pages
	urls := []SitemapURL{
		{Loc: baseURL + "/", ChangeFreq: "weekly", Priority: 1.0},
		{Loc: baseURL + "/nosotros", ChangeFreq: "monthly", Priority: 0.5},
		{Loc: baseURL + "/catalogo", ChangeFreq: "weekly", Priority: 0.8},
		{Loc: baseURL + "/servicios", ChangeFreq: "monthly", Priority: 0.5},
	}

	// Dynamic pages: published listings
	var properties []models.Property
	if err := db.DB.Where("published = ?", true).Find(&properties).Error; err != nil {
		c.Logger().Error("Failed to fetch properties for sitemap", err)
		// Continue with static pages if DB fails
	}

	for _, property := range properties {
		if property.Slug == "" {
			continue
		}
		urls = append(urls, SitemapURL{
			Loc:        baseURL + "/propiedad/" + property.Slug,
			ChangeFreq: "weekly",
			Priority:   0.8,
			LastMod:    property.EnteredAt.Format(time.RFC3339),
		})
	}

	urlSet := SitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationXML)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}

	encoder := xml.NewEncoder(c.Response().Writer)
	encoder.Indent("", "  ")
	return encoder.Encode(urlSet)
}
