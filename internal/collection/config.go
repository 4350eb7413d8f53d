package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dreschagin/perfci/internal/application/dto"
)

type Config struct {
	Interval    time.Duration
	SiteTimeout time.Duration
	SitesFile   string
}

func LoadConfigFromEnv() (Config, error) {
	interval, err := time.ParseDuration(getEnv("COLLECTION_INTERVAL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid COLLECTION_INTERVAL: %w", err)
	}

	if interval < time.Minute {
		return Config{}, errors.New("COLLECTION_INTERVAL must be >= 1m")
	}

	siteTimeout, err := time.ParseDuration(getEnv("COLLECTION_SITE_TIMEOUT", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid COLLECTION_SITE_TIMEOUT: %w", err)
	}

	return Config{
		Interval:    interval,
		SiteTimeout: siteTimeout,
		SitesFile:   getEnv("COLLECTION_SITES_FILE", "sites.json"),
	}, nil
}

// LoadSites читает список сайтов автосбора из JSON файла
func LoadSites(path string) ([]*dto.SiteConfigDTO, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	var sites []*dto.SiteConfigDTO
	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("failed to parse sites file: %w", err)
	}

	return sites, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
