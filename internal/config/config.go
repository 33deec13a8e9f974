package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("RAFFLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// DrawConfig holds configuration for the draw command.
type DrawConfig struct {
	Entrants string
	Seed     string
	Slots    uint32
	Out      string
	LogLevel string
}

// LoadDraw merges config file, environment variables, and flags into
// DrawConfig.
func LoadDraw(cfgFile string, flags *pflag.FlagSet) (DrawConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"slots":     uint32(10),
		"out":       "./data/winners.jsonl",
		"log-level": "info",
	})
	if err != nil {
		return DrawConfig{}, err
	}

	return DrawConfig{
		Entrants: v.GetString("entrants"),
		Seed:     v.GetString("seed"),
		Slots:    v.GetUint32("slots"),
		Out:      v.GetString("out"),
		LogLevel: v.GetString("log-level"),
	}, nil
}

// ArchiveConfig holds configuration for the archive command.
type ArchiveConfig struct {
	PGDSN    string
	Export   string
	Winners  string
	LogLevel string
}

// LoadArchive merges config file, environment variables, and flags into
// ArchiveConfig.
func LoadArchive(cfgFile string, flags *pflag.FlagSet) (ArchiveConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"log-level": "info",
	})
	if err != nil {
		return ArchiveConfig{}, err
	}

	return ArchiveConfig{
		PGDSN:    v.GetString("pg-dsn"),
		Export:   v.GetString("export"),
		Winners:  v.GetString("winners"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
