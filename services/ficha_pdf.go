package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"

	"terrasur_app_go/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// getChromePath returns the Chrome executable path from environment variable
func getChromePath() string {
	return os.Getenv("CHROME_PATH")
}

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // letter, legal, A4
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
}

// DefaultPDFOptions returns default options for property fact sheets
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "portrait",
		PageSize:        "letter",
		MarginTop:       54,
		MarginBottom:    54,
		MarginLeft:      54,
		MarginRight:     54,
	}
}

var fichaTemplate = template.Must(template.New("ficha").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #222; }
h1 { font-size: 20px; margin-bottom: 2px; }
h2 { font-size: 13px; color: #666; font-weight: normal; margin-top: 0; }
.price { font-size: 24px; margin: 14px 0; }
.badge { display: inline-block; border: 1px solid #999; border-radius: 4px; padding: 2px 8px; font-size: 11px; margin-right: 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; font-size: 12px; }
td { padding: 5px 8px; border-bottom: 1px solid #ddd; }
td.label { color: #666; width: 40%; }
.description { margin-top: 16px; font-size: 12px; line-height: 1.5; }
.gallery img { max-width: 220px; max-height: 160px; margin: 4px; }
.footer { margin-top: 24px; font-size: 10px; color: #999; }
</style>
</head>
<body>
<h1>{{.Property.Title}}</h1>
<h2>{{.Property.FichaID}} · {{.Location}}</h2>
<span class="badge">{{.Property.Type}}</span>
<span class="badge">{{.Property.Operation}}</span>
<span class="badge">{{.Property.Status}}</span>
<div class="price">{{.Price}}</div>
<table>
<tr><td class="label">Superficie total</td><td>{{.Property.TotalAreaM2}} m²</td></tr>
{{if .Property.BuiltAreaM2}}<tr><td class="label">Superficie construida</td><td>{{.Property.BuiltAreaM2}} m²</td></tr>{{end}}
<tr><td class="label">Topografía</td><td>{{.Property.Topography}}</td></tr>
<tr><td class="label">Agua</td><td>{{.Property.WaterAvailability}}</td></tr>
<tr><td class="label">Luz</td><td>{{.Property.PowerAvailability}}</td></tr>
<tr><td class="label">Alcantarillado</td><td>{{.Property.SewerAvailability}}</td></tr>
{{if .Property.Bedrooms}}<tr><td class="label">Dormitorios</td><td>{{.Property.Bedrooms}}</td></tr>{{end}}
{{if .Property.Bathrooms}}<tr><td class="label">Baños</td><td>{{.Property.Bathrooms}}</td></tr>{{end}}
{{if .Property.Rol}}<tr><td class="label">Rol</td><td>{{.Property.Rol}}</td></tr>{{end}}
</table>
<div class="description">{{.Description}}</div>
{{if .ImageURLs}}<div class="gallery">{{range .ImageURLs}}<img src="{{.}}">{{end}}</div>{{end}}
<div class="footer">TerraSur Propiedades · {{.Property.LocationLabel}}</div>
</body>
</html>`))

// BuildFichaHTML renders the printable fact sheet for a property. Image URLs
// must already be publicly resolvable (storage public URLs).
func BuildFichaHTML(property *models.Property, imageURLs []string) (string, error) {
	data := struct {
		Property    *models.Property
		Location    string
		Price       string
		Description template.HTML
		ImageURLs   []string
	}{
		Property: property,
		Location: property.LocationLabel(),
		Price:    property.FormattedPrice(),
		// The description was sanitized on save, safe to embed as-is
		Description: template.HTML(property.Description),
		ImageURLs:   imageURLs,
	}

	var buf bytes.Buffer
	if err := fichaTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render ficha template: %w", err)
	}
	return buf.String(), nil
}

// GenerateFichaPDF renders the property fact sheet to PDF
func GenerateFichaPDF(property *models.Property, imageURLs []string, options PDFOptions) ([]byte, error) {
	html, err := BuildFichaHTML(property, imageURLs)
	if err != nil {
		return nil, err
	}
	return GeneratePDF(html, options)
}

// GeneratePDF renders HTML content to PDF using headless Chrome
func GeneratePDF(htmlContent string, options PDFOptions) ([]byte, error) {
	// Configure Chrome executable path from environment or default
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)

	// Check for custom Chrome path (for headless-shell in Docker)
	if chromePath := getChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	// Set up page dimensions based on options
	var paperWidth, paperHeight float64
	switch options.PageSize {
	case "legal":
		paperWidth = 8.5
		paperHeight = 14.0
	case "A4":
		paperWidth = 8.27
		paperHeight = 11.69
	default: // letter
		paperWidth = 8.5
		paperHeight = 11.0
	}

	// Swap dimensions for landscape
	if options.PageOrientation == "landscape" {
		paperWidth, paperHeight = paperHeight, paperWidth
	}

	// Convert points to inches for margins
	marginTop := float64(options.MarginTop) / 72.0
	marginBottom := float64(options.MarginBottom) / 72.0
	marginLeft := float64(options.MarginLeft) / 72.0
	marginRight := float64(options.MarginRight) / 72.0

	var pdfBuf []byte

	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		// Set the HTML content
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		// Wait for content to render
		chromedp.Sleep(100),
		// Generate PDF
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(marginTop).
				WithMarginBottom(marginBottom).
				WithMarginLeft(marginLeft).
				WithMarginRight(marginRight).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}
