package config

// Supported store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

const (
	defaultConfigPath          = "~/.config/festadmin/config.toml"
	defaultDataDir             = "~/.local/share/festadmin"
	defaultLogDir              = "~/.local/share/festadmin/logs"
	defaultSQLiteFile          = "content.db"
	defaultLockFile            = "migrate-media.lock"
	defaultMongoDatabase       = "festival"
	defaultStoreTimeoutSeconds = 30
	defaultMigrationWorkers    = 4
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
)

var defaultCollections = []string{"films", "news", "activities", "partners"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Store: Store{
			Driver:         DriverSQLite,
			MongoDatabase:  defaultMongoDatabase,
			TimeoutSeconds: defaultStoreTimeoutSeconds,
		},
		Migration: Migration{
			Collections: append([]string(nil), defaultCollections...),
			Workers:     defaultMigrationWorkers,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
