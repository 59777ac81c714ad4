package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:    "defaults only",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
				assert.Equal(t, "8080", cfg.Server.Port)
				assert.False(t, cfg.Redis.Enabled)
				assert.Equal(t, "https://restcountries.com/v3.1", cfg.ExternalServices.CountriesAPIURL)
				assert.Empty(t, cfg.ExternalServices.TripsAPIURL)
				assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxBytes)
				assert.Equal(t, 2*time.Second, cfg.Extraction.Delay())
			},
		},
		{
			name: "overrides from environment",
			envVars: map[string]string{
				"PORT":                     "9090",
				"SERVER_ENVIRONMENT":       "production",
				"REDIS_ENABLED":            "true",
				"REDIS_ADDRESS":            "redis.internal:6380",
				"TRIPS_API_URL":            "https://trips.example.com",
				"UPLOAD_MAX_BYTES":         "1048576",
				"EXTRACTION_DELAY_SECONDS": "0",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "9090", cfg.Server.Port)
				assert.True(t, cfg.IsProduction())
				assert.True(t, cfg.Redis.Enabled)
				assert.Equal(t, "redis.internal:6380", cfg.Redis.Address)
				assert.Equal(t, "https://trips.example.com", cfg.ExternalServices.TripsAPIURL)
				assert.Equal(t, int64(1048576), cfg.Upload.MaxBytes)
				assert.Equal(t, time.Duration(0), cfg.Extraction.Delay())
			},
		},
		{
			name: "invalid countries API URL",
			envVars: map[string]string{
				"COUNTRIES_API_URL": "not-a-url",
			},
			expectError: true,
		},
		{
			name: "invalid trips API URL",
			envVars: map[string]string{
				"TRIPS_API_URL": "not-a-url",
			},
			expectError: true,
		},
		{
			name: "non-positive upload limit",
			envVars: map[string]string{
				"UPLOAD_MAX_BYTES": "0",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			cfg, err := LoadConfig()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestContainsWildcard(t *testing.T) {
	assert.True(t, containsWildcard([]string{"*"}))
	assert.True(t, containsWildcard([]string{"https://app.example.com", "*"}))
	assert.False(t, containsWildcard([]string{"https://app.example.com"}))
	assert.False(t, containsWildcard(nil))
}
