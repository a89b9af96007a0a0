package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.SlotBackend)
	assert.Equal(t, "antigravity_cp_db", cfg.SlotKey)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Zero(t, cfg.Redis.DB)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, "nop", cfg.LogMode)
}

func TestFromMap_Overrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"CPTRACK_SLOT_BACKEND":   "Redis",
		"CPTRACK_SLOT_KEY":       "other_db",
		"CPTRACK_DATA_DIR":       "/tmp/cp",
		"CPTRACK_REDIS_ADDR":     "cache:6380",
		"CPTRACK_REDIS_PASSWORD": "hunter2",
		"CPTRACK_REDIS_DB":       "3",
		"CPTRACK_CATALOG":        "/etc/cp/catalog.yaml",
		"CPTRACK_LOG_MODE":       "production",
	})
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.SlotBackend)
	assert.Equal(t, "other_db", cfg.SlotKey)
	assert.Equal(t, "/tmp/cp", cfg.DataDir)
	assert.Equal(t, RedisConfig{Addr: "cache:6380", Password: "hunter2", DB: 3}, cfg.Redis)
	assert.Equal(t, "/etc/cp/catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, "production", cfg.LogMode)
}

func TestFromMap_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"unknown backend", map[string]string{"CPTRACK_SLOT_BACKEND": "s3"}, "invalid slot backend"},
		{"blank key", map[string]string{"CPTRACK_SLOT_KEY": "  "}, "slot key"},
		{"bad redis db", map[string]string{"CPTRACK_REDIS_DB": "zero"}, "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_RedisNeedsAddr(t *testing.T) {
	cfg := Config{SlotBackend: BackendRedis, SlotKey: "k"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis addr")
}

func TestValidate_FileNeedsDir(t *testing.T) {
	cfg := Config{SlotBackend: " FILE ", SlotKey: "k"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, BackendFile, cfg.SlotBackend)
}
