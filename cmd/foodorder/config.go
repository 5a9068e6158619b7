package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/syp1xd/food-ordering-app/config"
)

// Load reads configuration from .env, a config file, and environment variables.
func Load(configFile string) (*config.Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	cfg := &config.Config{}
	cfg.SetDefaults(v, "")

	// Config file settings
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.foodorder")
		v.AddConfigPath("/etc/foodorder")
	}

	// Environment variable settings
	v.SetEnvPrefix("FOODORDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}
