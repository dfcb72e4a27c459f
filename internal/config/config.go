package config

import (
	"time"

	"github.com/spf13/viper"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"   // embedded database, default
	DriverPostgres Driver = "postgres" // pgx-backed raw SQL store
)

type (
	Config struct {
		HTTP
		Database
		Exports
		RateLimit
		Tasks
		Cleanup
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Driver   Driver
		Path     string // sqlite file path
		Host     string // postgres connection settings
		Port     int
		User     string
		Password string
		Name     string
	}
	Exports struct {
		Dir       string
		Retention time.Duration // how long a leftover export file may linger
	}
	RateLimit struct {
		Enabled     bool
		MaxRequests int           // per client per window (default: 10)
		Window      time.Duration // window length (default: 1m)
	}
	Tasks struct {
		Enabled         bool
		DBPath          string
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Cleanup struct {
		Enabled  bool
		Schedule string // Cron format: "*/30 * * * *" = every 30 minutes
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 4000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", 5432)
	v.SetDefault("database_user", "postgres")
	v.SetDefault("database_password", "")
	v.SetDefault("database_name", "library")

	v.SetDefault("exports_dir", DefaultExportsDir)
	v.SetDefault("exports_retention", "1h")

	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_max_requests", 10)
	v.SetDefault("rate_limit_window", "1m")

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_db_path", DefaultTasksDatabasePath)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", "*/30 * * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Driver:   Driver(v.GetString("DATABASE_DRIVER")),
			Path:     v.GetString("DATABASE_PATH"),
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
		},
		Exports: Exports{
			Dir:       v.GetString("EXPORTS_DIR"),
			Retention: v.GetDuration("EXPORTS_RETENTION"),
		},
		RateLimit: RateLimit{
			Enabled:     v.GetBool("RATE_LIMIT_ENABLED"),
			MaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
			Window:      v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			DBPath:          v.GetString("TASKS_DB_PATH"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Cleanup: Cleanup{
			Enabled:  v.GetBool("CLEANUP_ENABLED"),
			Schedule: v.GetString("CLEANUP_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
