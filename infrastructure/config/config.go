package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the runtime settings of the controller
type Config struct {
	RelayAddr        string
	RelayPath        string
	RelayEmbedBridge bool
	RelayDialTimeout time.Duration

	ArtifactDir string

	BrowserHeadless      bool
	BrowserNavTimeout    time.Duration
	BrowserActionTimeout time.Duration

	LogLevel logrus.Level

	Delays Delays
}

// Delays are the fixed pauses of the control loop
type Delays struct {
	EmptyReply time.Duration
	BadReply   time.Duration
	AfterBatch time.Duration
	Rejected   time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("RELAY_ADDR", "localhost:8765")
	v.SetDefault("RELAY_PATH", "/")
	v.SetDefault("RELAY_EMBED_BRIDGE", true)
	v.SetDefault("RELAY_DIAL_TIMEOUT", 10*time.Second)
	v.SetDefault("ARTIFACT_DIR", ".")
	v.SetDefault("BROWSER_HEADLESS", false)
	v.SetDefault("BROWSER_NAV_TIMEOUT", 30*time.Second)
	v.SetDefault("BROWSER_ACTION_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RETRY_EMPTY_REPLY", 3*time.Second)
	v.SetDefault("RETRY_BAD_REPLY", 2*time.Second)
	v.SetDefault("BATCH_PAUSE", time.Second)
	v.SetDefault("REJECT_PAUSE", time.Second)
}

// Load reads an optional .env file and resolves settings from the environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		// .env file is optional
		logrus.Warn(".env file not found, using environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	level, err := logrus.ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		RelayAddr:            v.GetString("RELAY_ADDR"),
		RelayPath:            v.GetString("RELAY_PATH"),
		RelayEmbedBridge:     v.GetBool("RELAY_EMBED_BRIDGE"),
		RelayDialTimeout:     v.GetDuration("RELAY_DIAL_TIMEOUT"),
		ArtifactDir:          v.GetString("ARTIFACT_DIR"),
		BrowserHeadless:      v.GetBool("BROWSER_HEADLESS"),
		BrowserNavTimeout:    v.GetDuration("BROWSER_NAV_TIMEOUT"),
		BrowserActionTimeout: v.GetDuration("BROWSER_ACTION_TIMEOUT"),
		LogLevel:             level,
		Delays: Delays{
			EmptyReply: v.GetDuration("RETRY_EMPTY_REPLY"),
			BadReply:   v.GetDuration("RETRY_BAD_REPLY"),
			AfterBatch: v.GetDuration("BATCH_PAUSE"),
			Rejected:   v.GetDuration("REJECT_PAUSE"),
		},
	}

	if cfg.RelayAddr == "" {
		return nil, fmt.Errorf("RELAY_ADDR must not be empty")
	}
	if cfg.RelayPath == "" || cfg.RelayPath[0] != '/' {
		return nil, fmt.Errorf("RELAY_PATH must start with '/': %q", cfg.RelayPath)
	}

	return cfg, nil
}
