package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"festadmin/internal/config"
	"festadmin/internal/content"
	"festadmin/internal/docstore"
	"festadmin/internal/logging"
	"festadmin/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
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
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// log returns the command logger. Construction failures fall back to a
// stderr console logger so commands never run without one.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger, _ = logging.NewFromConfig(nil)
		}
		c.logger = logger
	})
	return c.logger
}

// withRepository opens the store selected by store.driver, runs fn, and closes
// the store.
func (c *commandContext) withRepository(ctx context.Context, fn func(content.Repository) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()
	return fn(repo)
}

func openRepository(ctx context.Context, cfg *config.Config) (content.Repository, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		store, err := docstore.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := content.Open(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// resolveCollections returns the collections named by --collection flags, or
// the configured sweep list when none were given.
func resolveCollections(flagValues []string, cfg *config.Config) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range flagValues {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) > 0 || cfg == nil {
		return out
	}
	return append([]string(nil), cfg.Migration.Collections...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
