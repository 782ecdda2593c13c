package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // SHELFLOG_DATABASE_URL (required)
	HTTPAddr    string // SHELFLOG_HTTP_ADDR (default ":8080")
	NATSURL     string // SHELFLOG_NATS_URL (optional, empty = no event pipeline)
	AuthToken   string // SHELFLOG_AUTH_TOKEN (optional, empty = auth disabled)

	// Broker topology
	StreamName    string // SHELFLOG_STREAM (default "LIBRARY_EVENTS")
	SubjectPrefix string // SHELFLOG_SUBJECT_PREFIX (default "library")
	ConsumerName  string // SHELFLOG_CONSUMER (default "event-store")

	// Retention settings
	SweepInterval time.Duration // SHELFLOG_SWEEP_INTERVAL (default 24h; 0 = disabled)
	Retention     time.Duration // SHELFLOG_RETENTION (default 8760h = 365 days)

	// Archive settings (S3-compatible; enabled when bucket is set)
	ArchiveS3Bucket   string // SHELFLOG_ARCHIVE_S3_BUCKET
	ArchiveS3Prefix   string // SHELFLOG_ARCHIVE_S3_PREFIX (default "shelflog/events")
	ArchiveS3Region   string // SHELFLOG_ARCHIVE_S3_REGION (default "us-east-1")
	ArchiveS3Endpoint string // SHELFLOG_ARCHIVE_S3_ENDPOINT (custom endpoint for MinIO)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:       os.Getenv("SHELFLOG_DATABASE_URL"),
		HTTPAddr:          envOrDefault("SHELFLOG_HTTP_ADDR", ":8080"),
		NATSURL:           os.Getenv("SHELFLOG_NATS_URL"),
		AuthToken:         os.Getenv("SHELFLOG_AUTH_TOKEN"),
		StreamName:        envOrDefault("SHELFLOG_STREAM", "LIBRARY_EVENTS"),
		SubjectPrefix:     envOrDefault("SHELFLOG_SUBJECT_PREFIX", "library"),
		ConsumerName:      envOrDefault("SHELFLOG_CONSUMER", "event-store"),
		ArchiveS3Bucket:   os.Getenv("SHELFLOG_ARCHIVE_S3_BUCKET"),
		ArchiveS3Prefix:   envOrDefault("SHELFLOG_ARCHIVE_S3_PREFIX", "shelflog/events"),
		ArchiveS3Region:   envOrDefault("SHELFLOG_ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveS3Endpoint: os.Getenv("SHELFLOG_ARCHIVE_S3_ENDPOINT"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("SHELFLOG_DATABASE_URL is required")
	}

	var err error
	c.SweepInterval, err = durationEnv("SHELFLOG_SWEEP_INTERVAL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	c.Retention, err = durationEnv("SHELFLOG_RETENTION", 365*24*time.Hour)
	if err != nil {
		return nil, err
	}
	if c.Retention <= 0 {
		return nil, fmt.Errorf("SHELFLOG_RETENTION must be positive")
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
