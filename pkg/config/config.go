package config

// Package config provides a reusable loader for ledger node configuration
// files and environment variables. It is versioned so that applications
// can depend on a stable API contract.
//
// Version: v0.2.0

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ledgerd/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.2.0"

// Config is the unified configuration for a ledger node process: the
// ordering batcher's size/delay trigger, the block store's on-disk
// location, and the logging level. Network, consensus and VM
// configuration belong to components outside this core.
type Config struct {
	Ordering struct {
		MaxSize int           `mapstructure:"max_size" json:"max_size"`
		Delay   time.Duration `mapstructure:"delay" json:"delay"`
	} `mapstructure:"ordering" json:"ordering"`

	Storage struct {
		BlockStorePath string `mapstructure:"block_store_path" json:"block_store_path"`
	} `mapstructure:"storage" json:"storage"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and
// returned. A .env file in the working directory, if present, is loaded
// first via godotenv so viper's AutomaticEnv can pick up its values.
func Load(env string) (*Config, error) {
	_ = godotenv.Load()

	viper.SetDefault("ordering.max_size", 100)
	viper.SetDefault("ordering.delay", "3s")
	viper.SetDefault("storage.block_store_path", "ledger.blocks")
	viper.SetDefault("logging.level", "info")

	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, utils.Wrap(err, "load config")
		}
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
			}
		}
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the LEDGERD_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("LEDGERD_ENV", ""))
}
