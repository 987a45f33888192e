package config

import (
	"slices"
	"strings"
)

const (
	PlatformXiaohongshu = "xiaohongshu"
	PlatformDouyin      = "douyin"
	PlatformShipinhao   = "shipinhao"
)

const (
	PlatformStatusLive        = "live"
	PlatformStatusDevelopment = "in development"
)

type PlatformInfo struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Icon        string `json:"icon"`
	Status      string `json:"status"`
	Enabled     bool   `json:"enabled"`
}

var knownPlatforms = []PlatformInfo{
	{Key: PlatformXiaohongshu, DisplayName: "小红书", Icon: "🔴", Status: PlatformStatusLive},
	{Key: PlatformDouyin, DisplayName: "抖音", Icon: "🎵", Status: PlatformStatusDevelopment},
	{Key: PlatformShipinhao, DisplayName: "视频号", Icon: "📹", Status: PlatformStatusDevelopment},
}

// NormalizePlatform maps a key or display name ("xiaohongshu", "XiaoHongShu", "小红书") to the
// platform key. Unknown names are returned trimmed and lowercased.
func NormalizePlatform(name string) string {
	name = strings.TrimSpace(name)
	for _, p := range knownPlatforms {
		if strings.EqualFold(p.Key, name) || p.DisplayName == name {
			return p.Key
		}
	}
	return strings.ToLower(name)
}

func LookupPlatform(name string) (PlatformInfo, bool) {
	key := NormalizePlatform(name)
	for _, p := range knownPlatforms {
		if p.Key == key {
			return p, true
		}
	}
	return PlatformInfo{}, false
}

// Platforms lists every known platform with Enabled resolved against the configured allowlist.
//
// Set via env:
// - PLATFORMS_ENABLED="xiaohongshu,douyin"
//
// Keys are case-insensitive; display names are accepted too.
func (c PlatformConfig) Platforms() []PlatformInfo {
	out := make([]PlatformInfo, 0, len(knownPlatforms))
	for _, p := range knownPlatforms {
		p.Enabled = c.IsEnabled(p.Key)
		out = append(out, p)
	}
	return out
}

func (c PlatformConfig) IsEnabled(name string) bool {
	key := NormalizePlatform(name)
	if key == "" {
		return false
	}
	return slices.ContainsFunc(c.Enabled, func(v string) bool {
		return NormalizePlatform(v) == key
	})
}
