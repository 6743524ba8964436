package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// FallbackUFValue is used whenever the indicator API cannot be reached. Price
// reconciliation must never fail a save because of network unavailability.
const FallbackUFValue = 38000.0

// RateProvider supplies the UF-to-peso conversion rate used by the property
// lifecycle. Production wiring uses MindicadorClient; tests and maintenance
// commands can supply a FixedRate.
type RateProvider interface {
	CurrentRate() float64
}

// FixedRate is a RateProvider that always returns the same value
type FixedRate float64

// CurrentRate returns the fixed value
func (r FixedRate) CurrentRate() float64 {
	return float64(r)
}

// MindicadorClient fetches the daily UF value from the mindicador.cl
// indicator API. One request per call, no retries, no caching.
type MindicadorClient struct {
	url    string
	client *http.Client
}

// NewMindicadorClient creates a client for the given endpoint and timeout
func NewMindicadorClient(url string, timeout time.Duration) *MindicadorClient {
	return &MindicadorClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// indicatorResponse is the shape of the mindicador.cl payload. The first
// series element is the most recent (today's) value.
type indicatorResponse struct {
	Serie []struct {
		Fecha string  `json:"fecha"`
		Valor float64 `json:"valor"`
	} `json:"serie"`
}

// CurrentRate returns today's UF value, or FallbackUFValue when the API is
// unreachable, slow or returns a malformed body. Never fails.
func (m *MindicadorClient) CurrentRate() float64 {
	value, err := m.FetchRate()
	if err != nil {
		log.Printf("[WARNING] UF lookup failed, using fallback value %.0f: %v", FallbackUFValue, err)
		return FallbackUFValue
	}
	return value
}

// FetchRate performs a single request against the indicator API and returns
// the most recent UF value. Callers that must not silently fall back (the
// batch repricing command) use this directly and abort on error.
func (m *MindicadorClient) FetchRate() (float64, error) {
	resp, err := m.client.Get(m.url)
	if err != nil {
		return 0, fmt.Errorf("failed to reach indicator API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("indicator API returned status %d", resp.StatusCode)
	}

	var result indicatorResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode indicator response: %w", err)
	}

	if len(result.Serie) == 0 {
		return 0, fmt.Errorf("indicator response contains no series data")
	}

	value := result.Serie[0].Valor
	if value <= 0 {
		return 0, fmt.Errorf("indicator API returned non-positive UF value %v", value)
	}

	return value, nil
}
