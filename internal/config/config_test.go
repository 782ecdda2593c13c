package config

import (
	"testing"
	"time"
)

// allEnvVars lists every env var Load reads, so tests can start clean.
var allEnvVars = []string{
	"SHELFLOG_DATABASE_URL", "SHELFLOG_HTTP_ADDR", "SHELFLOG_NATS_URL",
	"SHELFLOG_AUTH_TOKEN", "SHELFLOG_STREAM", "SHELFLOG_SUBJECT_PREFIX",
	"SHELFLOG_CONSUMER", "SHELFLOG_SWEEP_INTERVAL", "SHELFLOG_RETENTION",
	"SHELFLOG_ARCHIVE_S3_BUCKET", "SHELFLOG_ARCHIVE_S3_PREFIX",
	"SHELFLOG_ARCHIVE_S3_REGION", "SHELFLOG_ARCHIVE_S3_ENDPOINT",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name          string
		env           map[string]string
		wantErr       bool
		wantHTTPAddr  string
		wantStream    string
		wantConsumer  string
		wantInterval  time.Duration
		wantRetention time.Duration
	}{
		{
			name:    "MissingDatabaseURL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:          "Defaults",
			env:           map[string]string{"SHELFLOG_DATABASE_URL": "postgres://localhost/shelflog"},
			wantHTTPAddr:  ":8080",
			wantStream:    "LIBRARY_EVENTS",
			wantConsumer:  "event-store",
			wantInterval:  24 * time.Hour,
			wantRetention: 365 * 24 * time.Hour,
		},
		{
			name: "CustomValues",
			env: map[string]string{
				"SHELFLOG_DATABASE_URL":   "postgres://db:5432/shelflog",
				"SHELFLOG_HTTP_ADDR":      ":3000",
				"SHELFLOG_STREAM":         "LIB_TEST",
				"SHELFLOG_CONSUMER":       "test-consumer",
				"SHELFLOG_SWEEP_INTERVAL": "1h",
				"SHELFLOG_RETENTION":      "720h",
			},
			wantHTTPAddr:  ":3000",
			wantStream:    "LIB_TEST",
			wantConsumer:  "test-consumer",
			wantInterval:  time.Hour,
			wantRetention: 720 * time.Hour,
		},
		{
			name: "BadInterval",
			env: map[string]string{
				"SHELFLOG_DATABASE_URL":   "postgres://localhost/shelflog",
				"SHELFLOG_SWEEP_INTERVAL": "daily",
			},
			wantErr: true,
		},
		{
			name: "NegativeRetention",
			env: map[string]string{
				"SHELFLOG_DATABASE_URL": "postgres://localhost/shelflog",
				"SHELFLOG_RETENTION":    "-24h",
			},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.env["SHELFLOG_DATABASE_URL"] {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.env["SHELFLOG_DATABASE_URL"])
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.StreamName != tc.wantStream {
				t.Errorf("StreamName = %q, want %q", cfg.StreamName, tc.wantStream)
			}
			if cfg.ConsumerName != tc.wantConsumer {
				t.Errorf("ConsumerName = %q, want %q", cfg.ConsumerName, tc.wantConsumer)
			}
			if cfg.SweepInterval != tc.wantInterval {
				t.Errorf("SweepInterval = %v, want %v", cfg.SweepInterval, tc.wantInterval)
			}
			if cfg.Retention != tc.wantRetention {
				t.Errorf("Retention = %v, want %v", cfg.Retention, tc.wantRetention)
			}
		})
	}
}
