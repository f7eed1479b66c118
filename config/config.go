// Package config loads skillscope settings from viper: defaults, an
// optional config.yaml, SKILLSCOPE_* environment variables and bound
// command-line flags, in increasing order of precedence.
package config

import (
	"net"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/skillscope/engine"
)

// EnvPrefix is the prefix of environment overrides (SKILLSCOPE_SERVER_PORT).
const EnvPrefix = "SKILLSCOPE"

// Config is the effective configuration.
type Config struct {
	LinguisticDomain string       `mapstructure:"linguistic_domain" json:"linguistic_domain" yaml:"linguistic_domain"`
	Alerts           AlertConfig  `mapstructure:"alerts" json:"alerts" yaml:"alerts"`
	Server           ServerConfig `mapstructure:"server" json:"server" yaml:"server"`
	Log              LogConfig    `mapstructure:"log" json:"log" yaml:"log"`
}

// AlertConfig tunes the staffing alert.
type AlertConfig struct {
	Domain    string   `mapstructure:"domain" json:"domain" yaml:"domain"`
	Threshold int      `mapstructure:"threshold" json:"threshold" yaml:"threshold"`
	Labels    []string `mapstructure:"labels" json:"labels" yaml:"labels"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host           string `mapstructure:"host" json:"host" yaml:"host"`
	Port           int    `mapstructure:"port" json:"port" yaml:"port"`
	MaxDatasets    int    `mapstructure:"max_datasets" json:"max_datasets" yaml:"max_datasets"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LinguisticDomain: engine.DefaultLinguisticDomain,
		Alerts: AlertConfig{
			Domain:    engine.DefaultAlertDomain,
			Threshold: engine.DefaultAlertThreshold,
			Labels:    append([]string(nil), engine.DefaultAlertLabels...),
		},
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8080,
			MaxDatasets:    32,
			MaxUploadBytes: 32 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "fmt",
		},
	}
}

// Init wires v to the environment and a config file. With an empty file,
// config.yaml is searched in $HOME/.skillscope and the working directory
// and may be absent; an explicit file must exist.
func Init(v *viper.Viper, file string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", file)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.skillscope")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// SetDefaults registers every key with its default so that environment
// variables are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("linguistic_domain", d.LinguisticDomain)
	v.SetDefault("alerts.domain", d.Alerts.Domain)
	v.SetDefault("alerts.threshold", d.Alerts.Threshold)
	v.SetDefault("alerts.labels", d.Alerts.Labels)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_datasets", d.Server.MaxDatasets)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads the effective configuration out of v and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine or server cannot run with.
func (c Config) Validate() error {
	if c.Alerts.Threshold < 1 {
		return errors.Errorf("alerts.threshold must be positive, got %d", c.Alerts.Threshold)
	}
	if c.Server.Host == "" {
		return errors.New("server.host cannot be empty")
	}
	if c.Server.Host != "localhost" && net.ParseIP(c.Server.Host) == nil {
		if strings.ContainsAny(c.Server.Host, " :/") {
			return errors.Errorf("invalid server.host: %s", c.Server.Host)
		}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxDatasets < 1 {
		return errors.Errorf("server.max_datasets must be positive, got %d", c.Server.MaxDatasets)
	}
	if c.Server.MaxUploadBytes < 1 {
		return errors.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "invalid log.level")
	}
	switch c.Log.Format {
	case "fmt", "text", "json":
	default:
		return errors.Errorf("log.format must be fmt or json, got %q", c.Log.Format)
	}
	return nil
}

// EngineOptions maps the configuration onto engine options.
func (c Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithLinguisticDomain(c.LinguisticDomain),
		engine.WithAlertDomain(c.Alerts.Domain),
		engine.WithAlertThreshold(c.Alerts.Threshold),
		engine.WithAlertLabels(c.Alerts.Labels...),
	}
}

// YAML renders the configuration as a config.yaml document.
func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal configuration")
	}
	return data, nil
}
