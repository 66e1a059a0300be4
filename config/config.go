// Package config loads the sidecar's tunables from tactics.yaml and
// TACTICS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nstehr/vimy/tactics-core/activation"
	"github.com/nstehr/vimy/tactics-core/model"
	"github.com/nstehr/vimy/tactics-core/rules"
)

type Diagnostics struct {
	Enabled bool
	Dir     string
}

type Store struct {
	Enabled bool
	Path    string
}

type Config struct {
	LogLevel        string
	SocketPath      string
	BehaviorFile    string // optional YAML behaviour variables
	Seed            uint64
	NotifyTimeout   float64 // simulated seconds
	ThinkBudget     time.Duration
	ReferenceWeapon model.WeaponProfile
	Inspiration     activation.Inspiration
	Doctrine        rules.Doctrine
	Diagnostics     Diagnostics
	Store           Store
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("socketPath", "/tmp/tactics.sock")
	v.SetDefault("behaviorFile", "")
	v.SetDefault("seed", 1)
	v.SetDefault("notifyTimeout", activation.DefaultNotifyTimeout)
	v.SetDefault("thinkBudget", "2s")

	v.SetDefault("referenceWeapon.damage", 20.0)
	v.SetDefault("referenceWeapon.range", 90.0)
	v.SetDefault("referenceWeapon.accuracy", 0.75)

	v.SetDefault("inspiration.baseWindow", 10.0)
	v.SetDefault("inspiration.widenStep", 5.0)
	v.SetDefault("inspiration.maxWindow", 30.0)
	v.SetDefault("inspiration.baseTargetDamage", 100.0)

	v.SetDefault("doctrine.name", "Standard")
	v.SetDefault("doctrine.caution", 0.0)
	v.SetDefault("doctrine.aggression", 0.0)

	v.SetDefault("diagnostics.enabled", false)
	v.SetDefault("diagnostics.dir", "./traces")

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "tactics.db")
}

// Load reads tactics.yaml from dir if present. Environment variables such as
// TACTICS_STORE_ENABLED override both the file and the defaults.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("tactics")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("TACTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		LogLevel:      v.GetString("logLevel"),
		SocketPath:    v.GetString("socketPath"),
		BehaviorFile:  v.GetString("behaviorFile"),
		Seed:          v.GetUint64("seed"),
		NotifyTimeout: v.GetFloat64("notifyTimeout"),
		ThinkBudget:   v.GetDuration("thinkBudget"),
		ReferenceWeapon: model.WeaponProfile{
			Damage:   v.GetFloat64("referenceWeapon.damage"),
			Range:    v.GetFloat64("referenceWeapon.range"),
			Accuracy: v.GetFloat64("referenceWeapon.accuracy"),
		},
		Inspiration: activation.Inspiration{
			BaseWindow:       v.GetFloat64("inspiration.baseWindow"),
			WidenStep:        v.GetFloat64("inspiration.widenStep"),
			MaxWindow:        v.GetFloat64("inspiration.maxWindow"),
			BaseTargetDamage: v.GetFloat64("inspiration.baseTargetDamage"),
		},
		Doctrine: rules.Doctrine{
			Name:       v.GetString("doctrine.name"),
			Caution:    v.GetFloat64("doctrine.caution"),
			Aggression: v.GetFloat64("doctrine.aggression"),
		},
		Diagnostics: Diagnostics{
			Enabled: v.GetBool("diagnostics.enabled"),
			Dir:     v.GetString("diagnostics.dir"),
		},
		Store: Store{
			Enabled: v.GetBool("store.enabled"),
			Path:    v.GetString("store.path"),
		},
	}
	cfg.Doctrine.Validate()
	if cfg.NotifyTimeout <= 0 {
		return nil, fmt.Errorf("notifyTimeout must be positive, got %v", cfg.NotifyTimeout)
	}
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
