// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr           string
	DBPath               string
	SendReviewMail       bool
	RequireSitewideLogin bool
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional: REVIEWHUB_LISTEN_ADDR (127.0.0.1:8080),
// REVIEWHUB_DB_PATH (reviewhub.db), REVIEWHUB_SEND_REVIEW_MAIL (false),
// REVIEWHUB_REQUIRE_SITEWIDE_LOGIN (false).
func Load() (*Config, error) {
	// A .env file is a development convenience; absence is fine.
	_ = godotenv.Load()

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("REVIEWHUB_LISTEN_ADDR"); ok {
		if _, _, err := net.SplitHostPort(v); err != nil {
			return nil, fmt.Errorf("REVIEWHUB_LISTEN_ADDR has invalid address %q: %w", v, err)
		}
		listenAddr = v
	}

	dbPath := "reviewhub.db"
	if v, ok := os.LookupEnv("REVIEWHUB_DB_PATH"); ok {
		dbPath = v
	}

	sendReviewMail, err := boolEnv("REVIEWHUB_SEND_REVIEW_MAIL", false)
	if err != nil {
		return nil, err
	}

	requireLogin, err := boolEnv("REVIEWHUB_REQUIRE_SITEWIDE_LOGIN", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		ListenAddr:           listenAddr,
		DBPath:               dbPath,
		SendReviewMail:       sendReviewMail,
		RequireSitewideLogin: requireLogin,
	}, nil
}

func boolEnv(name string, def bool) (bool, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return def, nil
	}

	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s has invalid boolean %q: %w", name, v, err)
	}
	return parsed, nil
}
