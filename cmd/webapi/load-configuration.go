package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"gopkg.in/yaml.v2"
)

// WebAPIConfiguration describes the web API configuration; values are read
// from the environment (prefix HOLONET), command line flags and an optional
// YAML file, in ascending order of priority.
type WebAPIConfiguration struct {
	Config struct {
		Path string `conf:"default:/conf/config.yml"`
	}
	Web struct {
		APIHost         string        `conf:"default:0.0.0.0:3000"`
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:5s"`
		ShutdownTimeout time.Duration `conf:"default:5s"`
	}
	Debug bool
	DB    struct {
		Filename string `conf:"default:./holonet.db"`
	}
	Session struct {
		Secret string `conf:"default:change-me-in-production,noprint"`
	}
}

// loadConfiguration creates a WebAPIConfiguration from flags, environment
// variables and an optional configuration file, which overrides both.
func loadConfiguration() (WebAPIConfiguration, error) {
	var cfg WebAPIConfiguration

	if err := conf.Parse(os.Args[1:], "HOLONET", &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage("HOLONET", &cfg)
			if err != nil {
				return cfg, fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return cfg, conf.ErrHelpWanted
		}
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// the configuration file remains optional
	yamlFile, err := os.ReadFile(cfg.Config.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err = yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}
