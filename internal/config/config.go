// Package config loads the server's runtime configuration: listen address,
// the list of sectors to host, and the timing constants spec.md fixes (tick
// rate, turn length, plan deadlines).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to boot.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`

	TicksPerSecond int           `mapstructure:"ticks_per_second"`
	TicksPerTurn   int           `mapstructure:"ticks_per_turn"`
	TurnLength     time.Duration `mapstructure:"-"`
	PlanDeadline   time.Duration `mapstructure:"-"` // server-side, 3.5s
	ClientDeadline time.Duration `mapstructure:"-"` // client-side, 2.5s

	MaxShipLevel int           `mapstructure:"max_ship_level"`
	JumpDelay    time.Duration `mapstructure:"-"`

	Sectors []string `mapstructure:"sectors"`
}

// Default returns the built-in defaults mandated by spec.md §6's constants.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		TicksPerSecond: 20,
		TicksPerTurn:   100,
		TurnLength:     5 * time.Second,
		PlanDeadline:   3500 * time.Millisecond,
		ClientDeadline: 2500 * time.Millisecond,
		MaxShipLevel:   15,
		JumpDelay:      6 * time.Second,
		Sectors:        []string{"alpha", "beta", "station"},
	}
}

// Load reads configuration from environment variables (prefixed IRONCLAD_)
// and, optionally, a config file named configFile discovered on the given
// search paths. Missing file is not an error: defaults plus env overrides
// still apply, matching the teacher pack's willingness to run with just
// flags/env in dev.
func Load(configFile string, searchPaths ...string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("IRONCLAD")
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("ticks_per_second", cfg.TicksPerSecond)
	v.SetDefault("ticks_per_turn", cfg.TicksPerTurn)
	v.SetDefault("max_ship_level", cfg.MaxShipLevel)
	v.SetDefault("sectors", cfg.Sectors)

	if configFile != "" {
		v.SetConfigName(configFile)
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
		if len(searchPaths) == 0 {
			v.AddConfigPath(".")
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return cfg, fmt.Errorf("parse config %q: %w", configFile, err)
			}
		}
	}

	cfg.ListenAddr = v.GetString("listen_addr")
	cfg.TicksPerSecond = v.GetInt("ticks_per_second")
	cfg.TicksPerTurn = v.GetInt("ticks_per_turn")
	cfg.MaxShipLevel = v.GetInt("max_ship_level")
	if sectors := v.GetStringSlice("sectors"); len(sectors) > 0 {
		cfg.Sectors = sectors
	}

	cfg.TurnLength = 5 * time.Second
	cfg.PlanDeadline = 3500 * time.Millisecond
	cfg.ClientDeadline = 2500 * time.Millisecond
	cfg.JumpDelay = 6 * time.Second

	return cfg, nil
}
