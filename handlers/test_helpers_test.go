package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"terrasur_app_go/config"
	"terrasur_app_go/db"
	"terrasur_app_go/models"
	"terrasur_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests while allowing shared cache
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	// Gallery files land in a throwaway directory
	services.Storage = services.NewLocalStorage(t.TempDir())

	err = testDB.AutoMigrate(
		&models.Property{},
		&models.PropertyImage{},
		&models.FichaSequence{},
		&models.ContactMessage{},
	)
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:   "test",
		EmailTestMode: true,
		ContactEmail:  "contacto@test.cl",
		AppURL:        "https://terrasur.test",
	})

	return e, c, rec
}

// useFixedRate pins price reconciliation to a deterministic UF value for the
// duration of a test
func useFixedRate(t *testing.T, rate float64) {
	original := rateProvider
	rateProvider = func(cfg *config.Config) services.RateProvider {
		return services.FixedRate(rate)
	}
	t.Cleanup(func() { rateProvider = original })
}

// createTestProperty persists a listing through the full lifecycle
func createTestProperty(t *testing.T, mutate func(p *models.Property)) *models.Property {
	p := &models.Property{
		Title:       "Parcela El Mirador",
		Commune:     "Tomé",
		Status:      models.PropertyStatusAvailable,
		Type:        models.PropertyTypeParcela,
		Operation:   models.OperationSale,
		Currency:    models.CurrencyCLP,
		ListPrice:   38000000,
		TotalAreaM2: 5000,
		Published:   true,
	}
	if mutate != nil {
		mutate(p)
	}
	err := services.SaveProperty(db.DB, services.FixedRate(38000), p)
	assert.NoError(t, err)
	return p
}
