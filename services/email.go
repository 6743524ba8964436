package services

import (
	"fmt"
	"log"
	"strings"

	"terrasur_app_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	TextBody string
}

// SendEmail sends an email using the Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	// Validate configuration
	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	if email.TextBody == "" {
		return fmt.Errorf("email must have a body")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	fromAddress := fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom)

	params := &resend.SendEmailRequest{
		From:    fromAddress,
		To:      email.To,
		Subject: email.Subject,
		Text:    email.TextBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\n📧 EMAIL (Development Mode - Not Actually Sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("%s\n", separator)
}

// BuildContactEmail composes the plain-text notification for a contact-form
// submission, addressed to the agency's fixed contact recipient.
func BuildContactEmail(cfg *config.Config, name, email, phone, propertyFicha, message string) *Email {
	var b strings.Builder
	b.WriteString("Nueva consulta desde el sitio web\n\n")
	fmt.Fprintf(&b, "Nombre: %s\n", name)
	fmt.Fprintf(&b, "Email: %s\n", email)
	if phone != "" {
		fmt.Fprintf(&b, "Teléfono: %s\n", phone)
	}
	if propertyFicha != "" {
		fmt.Fprintf(&b, "Propiedad consultada: %s\n", propertyFicha)
	}
	fmt.Fprintf(&b, "\nMensaje:\n%s\n", message)

	subject := "Nueva consulta desde el sitio web"
	if propertyFicha != "" {
		subject = fmt.Sprintf("Consulta por propiedad %s", propertyFicha)
	}

	return &Email{
		To:       []string{cfg.ContactEmail},
		Subject:  subject,
		TextBody: b.String(),
	}
}
