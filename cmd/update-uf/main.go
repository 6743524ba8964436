package main

import (
	"log"
	"math"
	"terrasur_app_go/config"
	"terrasur_app_go/db"
	"terrasur_app_go/models"
	"terrasur_app_go/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Println("Fetching current UF value...")

	client := services.NewMindicadorClient(cfg.UFAPIURL, cfg.UFTimeout)
	rate, err := client.FetchRate()
	if err != nil {
		// A batch reprice against a stale or fallback rate would silently
		// corrupt every peso price, so the job aborts instead.
		log.Fatalf("Failed to fetch UF value, aborting: %v", err)
	}

	log.Printf("UF value: $%.2f", rate)

	// Fetch all UF-priced properties
	var properties []models.Property
	if err := db.DB.Where("currency = ?", models.CurrencyUF).Find(&properties).Error; err != nil {
		log.Fatalf("Failed to fetch properties: %v", err)
	}

	if len(properties) == 0 {
		log.Println("No UF-priced properties found. Nothing to update.")
		return
	}

	log.Printf("Found %d UF-priced properties. Recomputing peso prices...", len(properties))

	updated := 0
	for i, property := range properties {
		pesos := int64(math.Round(property.ListPrice * rate))
		if property.PricePesos != nil && *property.PricePesos == pesos {
			continue
		}

		if err := db.DB.Model(&property).Update("price_pesos", pesos).Error; err != nil {
			log.Printf("Failed to update %s (ID: %s): %v", property.DisplayName(), property.ID, err)
			continue
		}

		updated++
		log.Printf("[%d/%d] %s: %.2f UF -> $%d", i+1, len(properties), property.FichaID, property.ListPrice, pesos)
	}

	log.Printf("Reprice completed: %d updated, %d unchanged", updated, len(properties)-updated)
}
