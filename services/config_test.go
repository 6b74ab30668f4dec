package services

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "", cfg.Database.URL)
	assert.True(t, cfg.Database.Seed)
	assert.Equal(t, "silent", cfg.Database.LogLevel)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, "media/documents", cfg.Storage.UploadDir)
	assert.Equal(t, "media/podcasts", cfg.Storage.AudioDir)
	assert.NotEmpty(t, cfg.TTS.AlexVoiceID)
	assert.NotEmpty(t, cfg.TTS.SamVoiceID)
	assert.Equal(t, "", cfg.WebSocket.AllowedOrigins)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/studywise")
	t.Setenv("DATABASE_SEED", "false")
	t.Setenv("STORAGE_UPLOAD_DIR", "/data/uploads")
	t.Setenv("WEBSOCKET_ALLOWED_ORIGINS", "http://localhost:5173")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/studywise", cfg.Database.URL)
	assert.False(t, cfg.Database.Seed)
	assert.Equal(t, "/data/uploads", cfg.Storage.UploadDir)
	assert.Equal(t, "http://localhost:5173", cfg.WebSocket.AllowedOrigins)
}
