package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func baseConfig() Config {
	return Config{
		Port:               "8080",
		RateLimitPerMinute: 60,
		DataBackend:        "memory",
		MongoDatabase:      "societyFund",
		SyncInterval:       15 * time.Minute,
		ReportTitle:        "Society Fund",
		CurrencySymbol:     "Rs",
		ExportFilePrefix:   "society",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		edit        func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name: "valid memory backend config",
			edit: func(*Config) {},
		},
		{
			name: "valid sqlite backend config",
			edit: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = "./test.db"
			},
		},
		{
			name: "valid mongo backend config",
			edit: func(c *Config) {
				c.DataBackend = "mongo"
				c.MongoURI = "mongodb://localhost:27017"
			},
		},
		{
			name:        "invalid port - non-numeric",
			edit:        func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			edit:        func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			edit:        func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [memory sqlite mongo]",
		},
		{
			name: "sqlite backend missing database path",
			edit: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "mongo backend missing URI",
			edit:        func(c *Config) { c.DataBackend = "mongo" },
			wantErr:     true,
			errorString: "MONGODB_URI is required when using mongo backend",
		},
		{
			name: "mongo backend with wrong scheme",
			edit: func(c *Config) {
				c.DataBackend = "mongo"
				c.MongoURI = "http://localhost:27017"
			},
			wantErr:     true,
			errorString: "invalid MongoDB URI scheme 'http'",
		},
		{
			name:        "invalid AMQP URL scheme",
			edit:        func(c *Config) { c.AMQPURL = "http://localhost:5672/"; c.AMQPExchange = "x"; c.AMQPQueue = "q" },
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http': must be 'amqp' or 'amqps'",
		},
		{
			name:        "AMQP URL without queue",
			edit:        func(c *Config) { c.AMQPURL = "amqp://localhost:5672/"; c.AMQPExchange = "x" },
			wantErr:     true,
			errorString: "AMQP queue name cannot be empty when AMQP URL is provided",
		},
		{
			name:        "spreadsheet without credentials",
			edit:        func(c *Config) { c.GoogleSpreadsheetID = "sheet-id" },
			wantErr:     true,
			errorString: "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided",
		},
		{
			name: "spreadsheet with missing credentials file",
			edit: func(c *Config) {
				c.GoogleSpreadsheetID = "sheet-id"
				c.GoogleServiceAccountFile = "/nonexistent/creds.json"
			},
			wantErr:     true,
			errorString: "Google service account file does not exist",
		},
		{
			name:        "sync interval too short",
			edit:        func(c *Config) { c.SyncInterval = time.Second },
			wantErr:     true,
			errorString: "invalid sync interval 1s: must be at least 1 minute",
		},
		{
			name:        "export prefix with slash",
			edit:        func(c *Config) { c.ExportFilePrefix = "a/b" },
			wantErr:     true,
			errorString: "invalid export file prefix 'a/b'",
		},
		{
			name:        "unknown log level",
			edit:        func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
		{
			name:        "unknown log format",
			edit:        func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "zero rate limit",
			edit:        func(c *Config) { c.RateLimitPerMinute = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.errorString)
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("expected error containing %q, got %q", tt.errorString, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := baseConfig()
	cfg.Port = "abc"
	cfg.DataBackend = "nope"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := strings.Count(err.Error(), "\n- "); got != 3 {
		t.Fatalf("expected 3 collected errors, got %d: %v", got, err)
	}
}

func TestConfig_ValidateCreatesSQLiteDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := baseConfig()
	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = filepath.Join(dir, "societyfund.db")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected directory to be created: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "MONGODB_DATABASE", "CURRENCY_SYMBOL", "SYNC_INTERVAL"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" || cfg.DataBackend != "memory" || cfg.MongoDatabase != "societyFund" || cfg.CurrencySymbol != "Rs" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SyncInterval != 15*time.Minute {
		t.Fatalf("unexpected sync interval %v", cfg.SyncInterval)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "mongo")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("SYNC_INTERVAL", "30m")

	cfg := Load()
	if cfg.Port != "9090" || cfg.DataBackend != "mongo" || cfg.MongoURI != "mongodb://db:27017" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RateLimitPerMinute != 120 || cfg.SyncInterval != 30*time.Minute {
		t.Fatalf("unexpected numeric values: %d %v", cfg.RateLimitPerMinute, cfg.SyncInterval)
	}
}
