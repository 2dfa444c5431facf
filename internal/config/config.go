// Package config loads hvacd settings from configs/config.yml and HVAC_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hvac/internal/hvac"
	"hvac/internal/logger"

	"github.com/spf13/viper"
)

const envPrefix = "HVAC"

var (
	errNegativeTiming = errors.New("timing limits must be >= 0 seconds")
	errClockTick      = errors.New("clock.tick must be > 0")
	errTokenTTL       = errors.New("auth.token_ttl must be > 0")
	errSigningKey     = errors.New("auth.signing_key must not be empty")
	errLogLevel       = errors.New("log_level must be one of debug, info, warn, error")
)

type Config struct {
	Port     string
	LogLevel string
	DB       DB
	Auth     Auth
	Clock    Clock
	MQTT     MQTT
	Redis    Redis
	HVAC     hvac.Config
}

type DB struct {
	Path string
}

type Auth struct {
	SigningKey string
	TokenTTL   time.Duration
}

// Clock drives the controller from wall time. With Auto off the controller
// only moves when a client posts a tick.
type Clock struct {
	Auto bool
	Tick time.Duration
}

// MQTT publication is disabled when Broker is empty.
type MQTT struct {
	Broker   string
	ClientID string
	Topic    string
}

// Redis publication is disabled when Addr is empty.
type Redis struct {
	Addr     string
	Password string
	Channel  string
	Key      string
}

// Load reads the config file at path. An empty path searches configs/ and the
// working directory for config.yml; a missing file leaves the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	heat, err := serviceConfig(v, "heat")
	if err != nil {
		return Config{}, err
	}
	cool, err := serviceConfig(v, "cool")
	if err != nil {
		return Config{}, err
	}
	fan, err := serviceConfig(v, "fan")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:     v.GetString("port"),
		LogLevel: strings.ToLower(v.GetString("log_level")),
		DB:       DB{Path: v.GetString("db.path")},
		Auth: Auth{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
		},
		Clock: Clock{
			Auto: v.GetBool("clock.auto"),
			Tick: v.GetDuration("clock.tick"),
		},
		MQTT: MQTT{
			Broker:   v.GetString("mqtt.broker"),
			ClientID: v.GetString("mqtt.client_id"),
			Topic:    v.GetString("mqtt.topic"),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			Channel:  v.GetString("redis.channel"),
			Key:      v.GetString("redis.key"),
		},
		HVAC: hvac.Config{Heat: heat, Cool: cool, Fan: fan},
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", logger.InfoLevel)
	v.SetDefault("db.path", "hvac.db")
	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("clock.auto", true)
	v.SetDefault("clock.tick", time.Second)
	v.SetDefault("mqtt.client_id", "hvacd")
	v.SetDefault("mqtt.topic", "hvac/controller/state")
	v.SetDefault("redis.channel", "hvac:state")
	v.SetDefault("redis.key", "hvac:state:latest")

	def := hvac.DefaultConfig()
	for name, sc := range map[string]hvac.ServiceConfig{"heat": def.Heat, "cool": def.Cool, "fan": def.Fan} {
		v.SetDefault("hvac."+name+".min_run", seconds(sc.MinRun))
		v.SetDefault("hvac."+name+".min_recover", seconds(sc.MinRecover))
	}
}

// serviceConfig reads hvac.<name>.min_run and min_recover. Zero disables a
// limit.
func serviceConfig(v *viper.Viper, name string) (hvac.ServiceConfig, error) {
	run, err := limit(v, "hvac."+name+".min_run")
	if err != nil {
		return hvac.ServiceConfig{}, err
	}
	rec, err := limit(v, "hvac."+name+".min_recover")
	if err != nil {
		return hvac.ServiceConfig{}, err
	}
	return hvac.ServiceConfig{MinRun: run, MinRecover: rec}, nil
}

func limit(v *viper.Viper, key string) (*hvac.Seconds, error) {
	n := v.GetInt64(key)
	if n < 0 {
		return nil, fmt.Errorf("%s: %w", key, errNegativeTiming)
	}
	if n == 0 {
		return nil, nil
	}
	return hvac.Limit(hvac.Seconds(n)), nil
}

func seconds(s *hvac.Seconds) int64 {
	if s == nil {
		return 0
	}
	return int64(*s)
}

func (c Config) validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("%w: got %q", errLogLevel, c.LogLevel)
	}
	if c.Clock.Tick <= 0 {
		return errClockTick
	}
	if c.Auth.TokenTTL <= 0 {
		return errTokenTTL
	}
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errSigningKey
	}
	return nil
}
