package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config is the process-wide configuration, loaded once at startup from
// config.yaml, BUDGETU_* environment variables and flag overrides.
type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
	Defaults struct {
		DateColumn     string `mapstructure:"date_column"`
		AmountColumn   string `mapstructure:"amount_column"`
		CategoryColumn string `mapstructure:"category_column"`
	} `mapstructure:"defaults"`
	OutputPath string `mapstructure:"output_path"`
}

// Build loads configuration. A missing config file is only an error when the
// user asked for a specific one.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	v.SetDefault("server.addr", "0.0.0.0:3000")
	v.SetDefault("logging.level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BUDGETU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		// flag spellings differ from the config keys, so bind each one
		bindings := map[string]string{
			"defaults.date_column":     "date-col",
			"defaults.amount_column":   "amount-col",
			"defaults.category_column": "category-col",
			"output_path":              "output",
		}
		for key, flagName := range bindings {
			if f := flags.Lookup(flagName); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// LogLevel parses the configured level, falling back to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
