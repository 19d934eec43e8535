package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SPN"

// Config holds the settings shared by every command.
// Values come from flags, then SPN_* environment variables, then the dotenv file.
type Config struct {
	LogLevel  string `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=console json"`
	// Password is used with --user. It is never accepted as a flag.
	Password string `mapstructure:"password"`
}

// FileSystem abstracts the file operations needed to load configuration.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type realFileSystem struct{}

func (realFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// godotenv.Load never overrides variables already present in the environment.
func (realFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig resolves the configuration for the current invocation.
// A nil fs uses the real file system.
func LoadConfig(flags *pflag.FlagSet, fs FileSystem) (*Config, error) {
	if fs == nil {
		fs = realFileSystem{}
	}

	v := viper.New()
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
	v.SetDefault("password", "")
	v.SetDefault("env_file", ".env")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range map[string]string{
			"log_level":  "log-level",
			"log_format": "log-format",
			"env_file":   "env-file",
		} {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if path := v.GetString("env_file"); path != "" && fs.Exists(path) {
		if err := fs.LoadEnv(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
