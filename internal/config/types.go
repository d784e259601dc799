package config

import (
	"github.com/folionet/casfolio/backend/internal/cache"
	"github.com/folionet/casfolio/backend/internal/database"
	"github.com/folionet/casfolio/backend/internal/logger"
	"github.com/folionet/casfolio/backend/internal/migration"
	"github.com/folionet/casfolio/backend/internal/storage"
)

// Config represents the application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    database.Config  `mapstructure:"database"`
	Redis       cache.Config     `mapstructure:"redis"`
	Storage     storage.Config   `mapstructure:"storage"`
	Logging     logger.Config    `mapstructure:"logging"`
	Migration   migration.Config `mapstructure:"migration"`
}

// ServerConfig represents server configuration settings
type ServerConfig struct {
	Port int `mapstructure:"port"`
}
