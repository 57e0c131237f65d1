// SPDX-License-Identifier: MIT

// Package config loads contactd configuration with precedence ENV > file > defaults.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the full runtime configuration for contactd.
type Config struct {
	// Server
	ListenAddr  string `yaml:"listenAddr"`
	MetricsAddr string `yaml:"metricsAddr"` // empty serves /metrics on the API listener
	BaseURL     string `yaml:"baseURL"`     // external base URL used in verification links

	// Logging
	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	// Storage
	DBPath string `yaml:"dbPath"`

	// Auth
	JWTSecret       string        `yaml:"jwtSecret"`
	AccessTokenTTL  time.Duration `yaml:"accessTokenTTL"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTTL"`
	VerifyTokenTTL  time.Duration `yaml:"verifyTokenTTL"`

	// HTTP ingress
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	CreateRateLimit  int      `yaml:"createRateLimit"`  // contact creations per minute per IP
	APIRateLimit     int      `yaml:"apiRateLimit"`     // general requests per minute per IP
	RateLimitEnabled bool     `yaml:"rateLimitEnabled"`

	// Cache
	RedisAddr     string        `yaml:"redisAddr"` // empty disables Redis, falls back to memory
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`
	CacheTTL      time.Duration `yaml:"cacheTTL"`

	// Mail
	MailHost     string `yaml:"mailHost"` // empty disables outbound mail
	MailPort     int    `yaml:"mailPort"`
	MailUsername string `yaml:"mailUsername"`
	MailPassword string `yaml:"mailPassword"`
	MailFrom     string `yaml:"mailFrom"`
	MailStartTLS bool   `yaml:"mailStartTLS"`

	// Avatar storage
	CloudinaryCloud  string `yaml:"cloudinaryCloud"`
	CloudinaryKey    string `yaml:"cloudinaryKey"`
	CloudinarySecret string `yaml:"cloudinarySecret"`
	AvatarDir        string `yaml:"avatarDir"` // local fallback when Cloudinary is not configured
}

// Defaults returns the baseline configuration before file and env merging.
func Defaults() Config {
	return Config{
		ListenAddr:       ":8000",
		BaseURL:          "http://127.0.0.1:8000",
		LogLevel:         "info",
		LogService:       "contactd",
		DBPath:           "contacts.db",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  30 * 24 * time.Hour,
		VerifyTokenTTL:   24 * time.Hour,
		CreateRateLimit:  5,
		APIRateLimit:     600,
		RateLimitEnabled: true,
		CacheTTL:         5 * time.Minute,
		MailPort:         587,
		MailStartTLS:     true,
		AvatarDir:        "avatars",
	}
}

// ErrMissingSecret is returned when no JWT secret is configured.
var ErrMissingSecret = errors.New("config: CONTACTD_JWT_SECRET is required")

// Validate performs fail-fast checks on the merged configuration.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.ListenAddr == "" {
		return errors.New("config: listen address must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("config: database path must not be empty")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.VerifyTokenTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	if c.CreateRateLimit <= 0 || c.APIRateLimit <= 0 {
		return errors.New("config: rate limits must be positive")
	}
	if c.MailHost != "" && c.MailFrom == "" {
		return fmt.Errorf("config: mail host %q configured without a from address", c.MailHost)
	}
	return nil
}

// mergeEnv overlays CONTACTD_* environment variables onto c.
func (c *Config) mergeEnv() {
	c.ListenAddr = ParseString("CONTACTD_LISTEN", c.ListenAddr)
	c.MetricsAddr = ParseString("CONTACTD_METRICS_ADDR", c.MetricsAddr)
	c.BaseURL = ParseString("CONTACTD_BASE_URL", c.BaseURL)

	c.LogLevel = ParseString("CONTACTD_LOG_LEVEL", c.LogLevel)
	c.LogService = ParseString("CONTACTD_LOG_SERVICE", c.LogService)

	c.DBPath = ParseString("CONTACTD_DB_PATH", c.DBPath)

	c.JWTSecret = ParseString("CONTACTD_JWT_SECRET", c.JWTSecret)
	c.AccessTokenTTL = ParseDuration("CONTACTD_ACCESS_TOKEN_TTL", c.AccessTokenTTL)
	c.RefreshTokenTTL = ParseDuration("CONTACTD_REFRESH_TOKEN_TTL", c.RefreshTokenTTL)
	c.VerifyTokenTTL = ParseDuration("CONTACTD_VERIFY_TOKEN_TTL", c.VerifyTokenTTL)

	c.AllowedOrigins = ParseStringSlice("CONTACTD_ALLOWED_ORIGINS", c.AllowedOrigins)
	c.CreateRateLimit = ParseInt("CONTACTD_CREATE_RATE_LIMIT", c.CreateRateLimit)
	c.APIRateLimit = ParseInt("CONTACTD_API_RATE_LIMIT", c.APIRateLimit)
	c.RateLimitEnabled = ParseBool("CONTACTD_RATE_LIMIT_ENABLED", c.RateLimitEnabled)

	c.RedisAddr = ParseString("CONTACTD_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = ParseString("CONTACTD_REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = ParseInt("CONTACTD_REDIS_DB", c.RedisDB)
	c.CacheTTL = ParseDuration("CONTACTD_CACHE_TTL", c.CacheTTL)

	c.MailHost = ParseString("CONTACTD_MAIL_HOST", c.MailHost)
	c.MailPort = ParseInt("CONTACTD_MAIL_PORT", c.MailPort)
	c.MailUsername = ParseString("CONTACTD_MAIL_USERNAME", c.MailUsername)
	c.MailPassword = ParseString("CONTACTD_MAIL_PASSWORD", c.MailPassword)
	c.MailFrom = ParseString("CONTACTD_MAIL_FROM", c.MailFrom)
	c.MailStartTLS = ParseBool("CONTACTD_MAIL_STARTTLS", c.MailStartTLS)

	c.CloudinaryCloud = ParseString("CONTACTD_CLOUDINARY_CLOUD", c.CloudinaryCloud)
	c.CloudinaryKey = ParseString("CONTACTD_CLOUDINARY_KEY", c.CloudinaryKey)
	c.CloudinarySecret = ParseString("CONTACTD_CLOUDINARY_SECRET", c.CloudinarySecret)
	c.AvatarDir = ParseString("CONTACTD_AVATAR_DIR", c.AvatarDir)
}
