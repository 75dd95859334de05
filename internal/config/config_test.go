package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "SUPABASE_URL", "SUPABASE_URL_ANON_KEY", "MONGODB_URI", "MONGODB_PASSWORD",
	"MONGODB_DATABASE", "MONGODB_TRANSACTIONS", "ENVIRONMENT", "LOG_LEVEL",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET",
	"NOTIFY_BROKER", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "RABBITMQ_URL",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	base := map[string]string{
		"SUPABASE_URL":          "https://project.supabase.co",
		"SUPABASE_URL_ANON_KEY": "anon",
		"MONGODB_URI":           "mongodb://localhost:27017",
	}
	for k, v := range base {
		t.Setenv(k, v)
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setEnv(t, nil)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "tourly", cfg.MongoDBDatabase)
	assert.True(t, cfg.MongoDBTransactions)
	assert.Equal(t, BrokerNone, cfg.NotifyBroker)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.HasCloudinary())
	assert.Empty(t, cfg.LogLevel)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"ENVIRONMENT":           "production",
		"MONGODB_TRANSACTIONS":  "false",
		"NOTIFY_BROKER":         "Redis",
		"REDIS_DB":              "2",
		"CORS_ORIGINS":          "https://tourly.app, https://admin.tourly.app ,",
		"RATE_LIMIT_RPS":        "2.5",
		"CLOUDINARY_CLOUD_NAME": "tourly",
		"CLOUDINARY_API_KEY":    "key",
		"CLOUDINARY_API_SECRET": "secret",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.MongoDBTransactions)
	assert.Equal(t, BrokerRedis, cfg.NotifyBroker)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []string{"https://tourly.app", "https://admin.tourly.app"}, cfg.CORSOrigins)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.True(t, cfg.HasCloudinary())
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing supabase url", env: map[string]string{"SUPABASE_URL": ""}, wantErr: "SUPABASE_URL is required"},
		{name: "missing anon key", env: map[string]string{"SUPABASE_URL_ANON_KEY": ""}, wantErr: "SUPABASE_URL_ANON_KEY is required"},
		{name: "missing mongo uri", env: map[string]string{"MONGODB_URI": ""}, wantErr: "MONGODB_URI is required"},
		{
			name:    "password placeholder without password",
			env:     map[string]string{"MONGODB_URI": "mongodb+srv://app:<password>@cluster.example.net"},
			wantErr: "MONGODB_PASSWORD is required",
		},
		{name: "rabbitmq without url", env: map[string]string{"NOTIFY_BROKER": "rabbitmq"}, wantErr: "RABBITMQ_URL is required"},
		{name: "unknown broker", env: map[string]string{"NOTIFY_BROKER": "kafka"}, wantErr: "NOTIFY_BROKER must be one of"},
		{name: "bad boolean", env: map[string]string{"MONGODB_TRANSACTIONS": "maybe"}, wantErr: "MONGODB_TRANSACTIONS must be a boolean"},
		{name: "bad integer", env: map[string]string{"RATE_LIMIT_BURST": "lots"}, wantErr: "RATE_LIMIT_BURST must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			cfg, err := LoadConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
