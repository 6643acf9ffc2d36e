package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	if err := c.normalizeMigration(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	var err error
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	c.Store.SQLitePath = strings.TrimSpace(c.Store.SQLitePath)
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = filepath.Join(c.Paths.DataDir, defaultSQLiteFile)
	}
	if c.Store.SQLitePath, err = expandPath(c.Store.SQLitePath); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}
	c.Store.MongoURI = strings.TrimSpace(c.Store.MongoURI)
	if c.Store.MongoURI == "" {
		if value, ok := os.LookupEnv("FESTADMIN_MONGO_URI"); ok {
			c.Store.MongoURI = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("MONGODB_URI"); ok {
			c.Store.MongoURI = strings.TrimSpace(value)
		}
	}
	c.Store.MongoDatabase = strings.TrimSpace(c.Store.MongoDatabase)
	if c.Store.MongoDatabase == "" {
		c.Store.MongoDatabase = defaultMongoDatabase
	}
	if c.Store.TimeoutSeconds <= 0 {
		c.Store.TimeoutSeconds = defaultStoreTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeMigration() error {
	var err error
	collections := make([]string, 0, len(c.Migration.Collections))
	seen := make(map[string]struct{}, len(c.Migration.Collections))
	for _, name := range c.Migration.Collections {
		normalized := strings.TrimSpace(name)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		collections = append(collections, normalized)
	}
	c.Migration.Collections = collections

	c.Migration.LockFile = strings.TrimSpace(c.Migration.LockFile)
	if c.Migration.LockFile == "" {
		c.Migration.LockFile = filepath.Join(c.Paths.DataDir, defaultLockFile)
	}
	if c.Migration.LockFile, err = expandPath(c.Migration.LockFile); err != nil {
		return fmt.Errorf("migration.lock_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
