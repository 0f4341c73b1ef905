package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for subplay
type Config struct {
	Log      LogConfig
	Player   PlayerConfig
	Layout   LayoutConfig
	Popup    PopupConfig
	Host     HostConfig
	Download DownloadConfig
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// PlayerConfig holds the playback control surface steps
type PlayerConfig struct {
	SeekStep       int64 // milliseconds
	VolumeStep     float64
	WheelThreshold int
	PanelHeight    float64
}

// LayoutConfig holds the subtitle overlay geometry
type LayoutConfig struct {
	FontSize     float64
	TextMargin   float64
	Gap          float64
	LineGap      float64
	WrapMargin   float64
	BottomMargin float64
}

type PopupConfig struct {
	FontSize float64
}

// HostConfig names the editor commands triggered from the overlay
type HostConfig struct {
	LookupCommand  string
	ExplainCommand string
}

// DownloadConfig holds subtitle download settings
type DownloadConfig struct {
	Language  string        // ISO 639-1 code of the wanted subtitle
	Languages []string      // provider language labels accepted when searching
	Limit     int           // candidates fetched per search
	Interval  time.Duration // minimum time between two searches for one video
	CacheDir  string
	RodDir    string
	Headless  bool
	Timeout   time.Duration
}

// Load reads configuration from an optional yaml file and SUBPLAY_* environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("subplay")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default returns the configuration with every default applied
func Default() *Config {
	config, _ := Load("")
	return config
}

func (c *Config) validate() error {
	if c.Layout.FontSize <= 0 {
		return fmt.Errorf("layout.fontSize must be positive, got %v", c.Layout.FontSize)
	}
	if c.Popup.FontSize <= 0 {
		return fmt.Errorf("popup.fontSize must be positive, got %v", c.Popup.FontSize)
	}
	if c.Player.VolumeStep <= 0 || c.Player.VolumeStep > 1 {
		return fmt.Errorf("player.volumeStep must be in (0, 1], got %v", c.Player.VolumeStep)
	}
	if c.Download.Limit < 1 {
		return fmt.Errorf("download.limit must be at least 1, got %v", c.Download.Limit)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("player.seekStep", 10000)
	v.SetDefault("player.volumeStep", 0.1)
	v.SetDefault("player.wheelThreshold", 300)
	v.SetDefault("player.panelHeight", 60)

	v.SetDefault("layout.fontSize", 50)
	v.SetDefault("layout.textMargin", 4)
	v.SetDefault("layout.gap", 5)
	v.SetDefault("layout.lineGap", 1)
	v.SetDefault("layout.wrapMargin", 200)
	v.SetDefault("layout.bottomMargin", 60)

	v.SetDefault("popup.fontSize", 15)

	v.SetDefault("host.lookupCommand", "video-player-lookup")
	v.SetDefault("host.explainCommand", "video-player-explain-sentence")

	v.SetDefault("download.language", "en")
	v.SetDefault("download.languages", []string{"English", "双语"})
	v.SetDefault("download.limit", 3)
	v.SetDefault("download.interval", "24h")
	v.SetDefault("download.cacheDir", "cache")
	v.SetDefault("download.rodDir", "rod")
	v.SetDefault("download.headless", true)
	v.SetDefault("download.timeout", "5m")
}
