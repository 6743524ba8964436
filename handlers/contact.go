package handlers

import (
	"net/http"
	"strings"

	"terrasur_app_go/config"
	"terrasur_app_go/db"
	"terrasur_app_go/models"
	"terrasur_app_go/services"

	"github.com/labstack/echo/v4"
)

// contactInput is the contact-form payload
type contactInput struct {
	Name          string `json:"name" form:"name"`
	Email         string `json:"email" form:"email"`
	Phone         string `json:"phone" form:"phone"`
	PropertyFicha string `json:"property_ficha" form:"property_ficha"`
	Message       string `json:"message" form:"message"`
}

// ContactPostHandler receives a contact-form submission, stores it and
// dispatches the notification email. A dispatch failure is not fatal: the
// message row is kept and the visitor gets a soft warning with a fallback
// channel instead of an error.
func ContactPostHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)

	var input contactInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.PropertyFicha = strings.TrimSpace(input.PropertyFicha)
	input.Message = strings.TrimSpace(input.Message)

	if input.Name == "" || input.Email == "" || input.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Nombre, email y mensaje son obligatorios")
	}

	message := &models.ContactMessage{
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		PropertyFicha: input.PropertyFicha,
		Message:       input.Message,
	}
	if err := db.DB.Create(message).Error; err != nil {
		c.Logger().Errorf("Failed to store contact message: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process message")
	}

	email := services.BuildContactEmail(cfg, input.Name, input.Email, input.Phone, input.PropertyFicha, input.Message)
	if err := services.SendEmail(cfg, email); err != nil {
		c.Logger().Warnf("Failed to send contact email: %v", err)
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "warning",
			"message": "Recibimos tu consulta, pero no pudimos notificarla por correo. Si es urgente, contáctanos directamente por teléfono.",
		})
	}

	db.DB.Model(message).Update("email_sent", true)

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Tu consulta fue enviada. Te contactaremos a la brevedad.",
	})
}

// GetContactMessagesHandler lists stored contact messages for the back
// office, newest first
func GetContactMessagesHandler(c echo.Context) error {
	var messages []models.ContactMessage
	if err := db.DB.Order("created_at DESC").Find(&messages).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch contact messages")
	}
	return c.JSON(http.StatusOK, messages)
}
