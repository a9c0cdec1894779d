// Package gorm opens the configured SQL database and runs migrations.
package gorm

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config selects the database backend. Sqlite is the default so the
// API runs without any database setup.
type Config struct {
	DatabaseDSN  string `env:"DATABASE_DSN" envDefault:"vault.db"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	Dialector    gorm.Dialector
	Options      *gorm.Config
}

// ParseConfig reads the database settings from the environment.
func ParseConfig() (cfg Config) {
	if err := env.Parse(&cfg, env.Options{Prefix: "VAULT_API_"}); err != nil {
		panic(err)
	}

	switch cfg.DatabaseType {
	case "psql":
		cfg.Dialector = postgres.Open(cfg.DatabaseDSN)
	case "mysql":
		cfg.Dialector = mysql.Open(cfg.DatabaseDSN)
	case "sqlite":
		cfg.Dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		panic(fmt.Sprintf("database type '%s' not supported", cfg.DatabaseType))
	}

	cfg.Options = &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	return
}
