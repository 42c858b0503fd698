package main

import (
	"log/slog"
	"strings"
	"sync"

	"vidsift/internal/config"
	"vidsift/internal/logging"
	"vidsift/internal/probecache"
	"vidsift/internal/scanner"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// openCache returns the probe cache when enabled, or nil. The caller owns
// the returned close function.
func (c *commandContext) openCache(logger *slog.Logger) (scanner.Cache, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Scan.CacheEnabled {
		return nil, func() {}, nil
	}
	store, err := probecache.Open(cfg)
	if err != nil {
		// A broken cache degrades to probing; it never blocks a scan.
		logger.Warn("probe cache unavailable", logging.Error(err))
		return nil, func() {}, nil
	}
	return store, func() { _ = store.Close() }, nil
}
