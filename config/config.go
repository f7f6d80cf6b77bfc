// Package config loads the simulator configuration through viper.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"nifri2/emotipet/emotion"
	"nifri2/emotipet/gesture"
	"nifri2/emotipet/motion"
	"nifri2/emotipet/personality"
)

// EnvPrefix prefixes every environment override (PETSIM_PET_TICK=10ms).
const EnvPrefix = "PETSIM"

// Config is the full simulator configuration.
type Config struct {
	Pet     PetConfig      `mapstructure:"pet"`
	Assets  AssetsConfig   `mapstructure:"assets"`
	Store   StoreConfig    `mapstructure:"store"`
	Gesture gesture.Config `mapstructure:"gesture"`
	Motion  motion.Config  `mapstructure:"motion"`
	Emotion emotion.Config `mapstructure:"emotion"`
}

// PetConfig contains control loop settings
type PetConfig struct {
	Channels     int           `mapstructure:"channels"`
	Tick         time.Duration `mapstructure:"tick"`
	SaveInterval time.Duration `mapstructure:"save_interval"`
	Seed         int64         `mapstructure:"seed"` // 0 picks a time-based seed
}

// AssetsConfig locates the animation containers
type AssetsConfig struct {
	Dir      string `mapstructure:"dir"`
	Manifest string `mapstructure:"manifest"`
}

// StoreConfig selects where the personality record is kept
type StoreConfig struct {
	Driver      string        `mapstructure:"driver"` // memory, dir or redis; empty infers one
	Dir         string        `mapstructure:"dir"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Key         string        `mapstructure:"key"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Pet: PetConfig{
			Channels:     3,
			Tick:         20 * time.Millisecond,
			SaveInterval: 5 * time.Minute,
		},
		Assets: AssetsConfig{
			Dir:      "animations",
			Manifest: "manifest.txt",
		},
		Store: StoreConfig{
			RedisPrefix: "pet",
			Timeout:     2 * time.Second,
			Key:         personality.DefaultKey,
		},
		Gesture: gesture.DefaultConfig(),
		Motion:  motion.DefaultConfig(),
		Emotion: emotion.DefaultConfig(),
	}
}

// defaultSettings is Default as the nested map viper and yaml expect.
func defaultSettings() map[string]interface{} {
	out := map[string]interface{}{}
	if err := mapstructure.Decode(Default(), &out); err != nil {
		panic(fmt.Sprintf("config: encoding defaults: %v", err))
	}
	return out
}

// SetDefaults registers Default on v and enables environment overrides.
func SetDefaults(v *viper.Viper) {
	for key, value := range defaultSettings() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load loads configuration from the global viper instance
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals v over the defaults.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills fields that depend on other fields
func applyDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		switch {
		case cfg.Store.RedisAddr != "":
			cfg.Store.Driver = "redis"
		case cfg.Store.Dir != "":
			cfg.Store.Driver = "dir"
		default:
			cfg.Store.Driver = "memory"
		}
	}

	if cfg.Store.Key == "" {
		cfg.Store.Key = personality.DefaultKey
	}

	if cfg.Assets.Manifest == "" {
		cfg.Assets.Manifest = "manifest.txt"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Pet.Channels < 1 || c.Pet.Channels > 32 {
		return fmt.Errorf("pet channels must be between 1 and 32, got %d", c.Pet.Channels)
	}

	if c.Pet.Tick <= 0 {
		return fmt.Errorf("pet tick must be positive")
	}

	if c.Pet.SaveInterval <= 0 {
		return fmt.Errorf("pet save_interval must be positive")
	}

	switch c.Store.Driver {
	case "", "memory":
	case "dir":
		if c.Store.Dir == "" {
			return fmt.Errorf("store dir is required for the dir driver")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be memory, dir, or redis)", c.Store.Driver)
	}

	g := c.Gesture
	if g.Debounce < 0 || g.LongPress <= 0 || g.DoubleTapWindow <= 0 || g.TapResetWindow <= 0 || g.RapidTapWindow <= 0 {
		return fmt.Errorf("gesture windows must be positive")
	}
	if g.RapidTapCount < 3 {
		return fmt.Errorf("gesture rapid_tap_count must be at least 3, got %d", g.RapidTapCount)
	}

	m := c.Motion
	if m.AccelPerG <= 0 || m.GyroPerDPS <= 0 {
		return fmt.Errorf("motion scale factors must be positive")
	}
	if m.ShakeG <= 0 || m.RotationDPS <= 0 || m.TiltG <= 0 {
		return fmt.Errorf("motion thresholds must be positive")
	}

	return validateEmotion(c.Emotion)
}

func validateEmotion(e emotion.Config) error {
	if e.DwellMin <= 0 || e.DwellMax < e.DwellMin {
		return fmt.Errorf("invalid emotion dwell range %s..%s", e.DwellMin, e.DwellMax)
	}

	if e.AmbientInterval <= 0 || e.IdleThreshold <= 0 {
		return fmt.Errorf("emotion ambient_interval and idle_threshold must be positive")
	}

	chances := map[string]float64{
		"lonely_min":         e.LonelyMin,
		"lonely_max":         e.LonelyMax,
		"bored_chance":       e.BoredChance,
		"adapt_chance":       e.AdaptChance,
		"night_sleep_chance": e.NightSleepChance,
	}
	for name, p := range chances {
		if p < 0 || p > 1 {
			return fmt.Errorf("emotion %s must be within [0,1], got %v", name, p)
		}
	}
	if e.LonelyMin > e.LonelyMax {
		return fmt.Errorf("emotion lonely_min exceeds lonely_max")
	}

	for name, h := range map[string]int{
		"day_start_hour":   e.DayStartHour,
		"night_start_hour": e.NightStartHour,
		"morning_hour":     e.MorningHour,
		"day_hour":         e.DayHour,
	} {
		if h < 0 || h > 23 {
			return fmt.Errorf("emotion %s must be an hour of day, got %d", name, h)
		}
	}

	return nil
}

// WriteDefaults writes Default as YAML, suitable as a starting .petsim.yaml.
func WriteDefaults(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(defaultSettings()); err != nil {
		return fmt.Errorf("failed to write defaults: %w", err)
	}
	return enc.Close()
}
