package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppPort    int
	ProxyURL   string
	SitesPath  string
	UseBrowser bool
}

func Load() (*Config, error) {
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, err
	}

	return &Config{
		AppPort:    appPort,
		ProxyURL:   getEnv("PROXY_URL", ""),
		SitesPath:  getEnv("SITES_CONFIG_PATH", "sites_config.yaml"),
		UseBrowser: getEnv("USE_BROWSER_FETCHER", "") == "true",
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
