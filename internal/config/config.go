package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "BEMS"
	configName = "config"

	defaultSigningKey = "dev-only-signing-key"
)

// Config is the resolved application configuration.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	Auth      AuthConfig
	Simulator SimulatorConfig
	MQTT      MQTTConfig
}

type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

type SimulatorConfig struct {
	Enabled      bool
	Tick         time.Duration
	UsageLimitKW float64
}

type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

var errEmptySigningKey = errors.New("auth.signing_key must not be empty")

// NewViper returns a viper instance with defaults, env overrides
// (BEMS_PORT, BEMS_DB_PATH, ...) and the search paths for config.yml.
func NewViper(paths ...string) *viper.Viper {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.signing_key", defaultSigningKey)
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("simulator.enabled", false)
	v.SetDefault("simulator.tick", time.Minute)
	v.SetDefault("simulator.usage_limit_kw", 5.0)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "bems")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "buildings")

	v.SetConfigName(configName)
	if len(paths) == 0 {
		paths = []string{"configs", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file if present and resolves the final Config.
// A missing file is fine; defaults and environment still apply.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Port:     v.GetString("port"),
		DBPath:   v.GetString("db.path"),
		LogLevel: v.GetString("log.level"),
		Auth: AuthConfig{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
		},
		Simulator: SimulatorConfig{
			Enabled:      v.GetBool("simulator.enabled"),
			Tick:         v.GetDuration("simulator.tick"),
			UsageLimitKW: v.GetFloat64("simulator.usage_limit_kw"),
		},
		MQTT: MQTTConfig{
			Enabled:     v.GetBool("mqtt.enabled"),
			Broker:      v.GetString("mqtt.broker"),
			ClientID:    v.GetString("mqtt.client_id"),
			Username:    v.GetString("mqtt.username"),
			Password:    v.GetString("mqtt.password"),
			TopicPrefix: v.GetString("mqtt.topic_prefix"),
		},
	}

	if strings.TrimSpace(cfg.Auth.SigningKey) == "" {
		return nil, errEmptySigningKey
	}
	if cfg.Simulator.Tick <= 0 {
		return nil, fmt.Errorf("simulator.tick must be positive, got %s", cfg.Simulator.Tick)
	}
	return cfg, nil
}

// Watch re-reads the file on change and hands the new log level to onLevel.
func Watch(v *viper.Viper, onLevel func(level string, ev fsnotify.Event)) {
	v.OnConfigChange(func(ev fsnotify.Event) {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
			return
		}
		onLevel(v.GetString("log.level"), ev)
	})
	v.WatchConfig()
}
