package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("PORT", "")
	t.Setenv("GO_ENV", "")
	t.Setenv("PLATFORMS_ENABLED", "")
	for _, key := range []string{"APP_PORT", "LOG_LEVEL", "MAX_UPLOAD_MB", "RATE_LIMIT_ENABLED", "RATE_LIMIT_MAX_REQUESTS", "CLASSIFIER_STRICT", "ACCESS_PASSWORD_HASH"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, []string{PlatformXiaohongshu}, cfg.Platforms.Enabled)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, int64(20), cfg.App.MaxUploadMB)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, int64(60), cfg.RateLimit.MaxRequests)
	assert.False(t, cfg.Classifier.Strict)
	assert.Empty(t, cfg.Auth.PasswordHash)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("PORT", "9000")
	t.Setenv("GO_ENV", "Production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("CLASSIFIER_STRICT", "true")
	t.Setenv("PLATFORMS_ENABLED", "xiaohongshu, 抖音")

	cfg := Load()
	assert.Equal(t, "9000", cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.Classifier.Strict)
	assert.True(t, cfg.Platforms.IsEnabled("douyin"))
	assert.False(t, cfg.Platforms.IsEnabled("shipinhao"))
}

func TestPlatforms(t *testing.T) {
	cfg := PlatformConfig{Enabled: []string{"XiaoHongShu"}}
	list := cfg.Platforms()
	if len(list) != 3 {
		t.Fatalf("Platforms expected 3 entries, got %d", len(list))
	}
	if !list[0].Enabled || list[1].Enabled || list[2].Enabled {
		t.Fatalf("Platforms expected only xiaohongshu enabled, got %+v", list)
	}

	cases := map[string]string{
		"小红书":         PlatformXiaohongshu,
		" douyin ":    PlatformDouyin,
		"视频号":         PlatformShipinhao,
		"Taobao":      "taobao",
	}
	for in, want := range cases {
		if got := NormalizePlatform(in); got != want {
			t.Fatalf("NormalizePlatform(%q) expected %s, got %s", in, want, got)
		}
	}

	if _, ok := LookupPlatform("taobao"); ok {
		t.Fatalf("LookupPlatform(taobao) expected miss")
	}
}
