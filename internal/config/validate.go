package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateMigration(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case DriverSQLite:
	case DriverMongo:
		if strings.TrimSpace(c.Store.MongoURI) == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("store.mongo_uri is required when store.driver is mongo. Set FESTADMIN_MONGO_URI or edit %s", defaultPath)
		}
		if c.Store.MongoDatabase == "" {
			return errors.New("store.mongo_database must be set when store.driver is mongo")
		}
	default:
		return fmt.Errorf("store.driver must be %s or %s, got %q", DriverSQLite, DriverMongo, c.Store.Driver)
	}
	if c.Store.TimeoutSeconds <= 0 {
		return errors.New("store.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMigration() error {
	if len(c.Migration.Collections) == 0 {
		return errors.New("migration.collections must include at least one collection")
	}
	if c.Migration.Workers <= 0 {
		return errors.New("migration.workers must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
}
