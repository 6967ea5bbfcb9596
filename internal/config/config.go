package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/trknhr/viterbi/internal/logger"
	"github.com/trknhr/viterbi/internal/store"
)

const (
	EnvPrefix  = "VITERBI"
	ConfigName = "viterbi"
)

type Config struct {
	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`
	Log struct {
		Level         string `mapstructure:"level"`
		File          string `mapstructure:"file"`
		RotationHours int    `mapstructure:"rotation_hours"`
		MaxAgeDays    int    `mapstructure:"max_age_days"`
	} `mapstructure:"log"`
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Decode struct {
		Workers  int  `mapstructure:"workers"`
		SaveRuns bool `mapstructure:"save_runs"`
	} `mapstructure:"decode"`
	Models struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"models"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"db":         "db.path",
	"log-level":  "log.level",
	"log-file":   "log.file",
	"addr":       "server.addr",
	"workers":    "decode.workers",
	"models-dir": "models.dir",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", store.DefaultPath())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.rotation_hours", 24)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("decode.workers", runtime.GOMAXPROCS(0))
	v.SetDefault("decode.save_runs", true)
	v.SetDefault("models.dir", "")
}

// Load resolves configuration from defaults, the config file, VITERBI_*
// environment variables and flags, later sources winning. An explicit
// configFile must exist; otherwise viterbi.yaml is looked up in
// $VITERBI_CFG_PATH, the working directory and the user config directory.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		if alt := os.Getenv(EnvPrefix + "_CFG_PATH"); alt != "" {
			v.AddConfigPath(alt)
		}
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "viterbi"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "bind flag %s", name)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, nil
}

func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:         c.Log.Level,
		File:          c.Log.File,
		RotationHours: c.Log.RotationHours,
		MaxAgeDays:    c.Log.MaxAgeDays,
	}
}
