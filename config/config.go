// Package config loads scalectl settings from a file and SCALE_ prefixed
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Polkadex-Substrate/go-scale/cache"
	"github.com/Polkadex-Substrate/go-scale/log"
	"github.com/Polkadex-Substrate/go-scale/registry"
	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "SCALE"
	DefaultFileName = "scale"

	KeyDBType = "db.type"
	KeyDBDir  = "db.dir"
	KeyTypes  = "types"
	KeyLog    = "log"
)

// Config is the resolved configuration.
type Config struct {
	DB DBConfig `mapstructure:"db"`
	// Types lists YAML type bundles loaded into every registry.
	Types []string `mapstructure:"types"`
}

type DBConfig struct {
	Type string `mapstructure:"type"`
	Dir  string `mapstructure:"dir"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDBType, "badgerdb")
	v.SetDefault(KeyDBDir, "./scaledb")
	v.SetDefault(KeyTypes, []string{})

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads path, or scale.{yaml,toml,json} in the working directory when
// path is empty. A log section, if present, configures the loggers.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultFileName)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if sub := v.Sub(KeyLog); sub != nil {
		log.Configure(sub)
	}
	return cfg, nil
}

// Registry returns a registry with the configured type bundles loaded.
func (c *Config) Registry() (*registry.Registry, error) {
	reg := registry.New()
	for _, path := range c.Types {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		err = reg.LoadYAML(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return reg, nil
}

// OpenCache opens the configured metadata cache and stores the configured
// type bundles in it.
func (c *Config) OpenCache() (*cache.Cache, error) {
	database, err := cache.OpenDB(c.DB.Type, c.DB.Dir)
	if err != nil {
		return nil, err
	}
	cc := cache.New(database)
	for _, path := range c.Types {
		bundle, err := os.ReadFile(path)
		if err != nil {
			cc.Close()
			return nil, err
		}
		if err := cc.PutTypes(path, bundle); err != nil {
			cc.Close()
			return nil, err
		}
	}
	return cc, nil
}
