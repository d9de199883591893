package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultDBPath    = "data/tradelog.db"
	DefaultAPIURL    = "https://api.limitless.exchange"
	DefaultPageLimit = 100
)

type Config struct {
	DBPath         string // default "data/tradelog.db"
	APIURL         string
	PrivateKey     string // EOA key, only needed to fetch history
	PageLimit      int    // history page size
	AnalysisConfig string // optional YAML policy file

	Policy Policy
}

// Load reads .env (if present) and the environment. The analysis policy is
// loaded from ANALYSIS_CONFIG when set, otherwise defaults apply.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:         getEnvDefault("TRADELOG_DB", DefaultDBPath),
		APIURL:         getEnvDefault("LIMITLESS_API_URL", DefaultAPIURL),
		PrivateKey:     os.Getenv("LIMITLESS_PRIVATE_KEY"),
		AnalysisConfig: os.Getenv("ANALYSIS_CONFIG"),
		Policy:         DefaultPolicy(),
	}

	limit, err := strconv.Atoi(getEnvDefault("HISTORY_PAGE_LIMIT", strconv.Itoa(DefaultPageLimit)))
	if err != nil || limit < 1 {
		return nil, fmt.Errorf("HISTORY_PAGE_LIMIT must be a positive integer, got %q", os.Getenv("HISTORY_PAGE_LIMIT"))
	}
	cfg.PageLimit = limit

	if cfg.AnalysisConfig != "" {
		p, err := LoadPolicy(cfg.AnalysisConfig)
		if err != nil {
			return nil, err
		}
		cfg.Policy = *p
	}

	return cfg, nil
}

// RequirePrivateKey checks that a key is configured for authenticated calls.
func (c *Config) RequirePrivateKey() error {
	if c.PrivateKey == "" {
		return errors.New("LIMITLESS_PRIVATE_KEY is required")
	}
	return nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
