package database

import (
	"context"
	"fmt"

	"github.com/folionet/casfolio/backend/internal/account"
	"github.com/folionet/casfolio/backend/internal/activity"
	"github.com/folionet/casfolio/backend/internal/legacy"
	"github.com/folionet/casfolio/backend/internal/logger"
	"github.com/folionet/casfolio/backend/internal/migration"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config represents database configuration settings
type Config struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Dbname   string `mapstructure:"dbname"`
	Port     int    `mapstructure:"port"`
	Sslmode  string `mapstructure:"sslmode"`
	Timezone string `mapstructure:"timezone"`
	Pool     struct {
		MaxOpen int `mapstructure:"maxOpen"`
		MaxIdle int `mapstructure:"maxIdle"`
	} `mapstructure:"pool"`
	AutoMigrate bool `mapstructure:"autoMigrate"`
}

// Service manages the database connection
type Service struct {
	config *Config
	logger logger.Logger
	db     *gorm.DB
}

// NewService creates a new database service instance
func NewService(config *Config, logger logger.Logger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Connect establishes a connection to the database
func (s *Service) Connect() (*gorm.DB, error) {
	s.logger.LogInfo(fmt.Sprintf("Attempting to connect to database: %s", s.config.Dbname), nil)

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		s.config.Host,
		s.config.User,
		s.config.Password,
		s.config.Dbname,
		s.config.Port,
		s.config.Sslmode,
		s.config.Timezone,
	)

	gormConfig := &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(gormlogger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(s.config.Pool.MaxOpen)
	sqlDB.SetMaxIdleConns(s.config.Pool.MaxIdle)

	if s.config.AutoMigrate {
		models := []interface{}{
			&account.User{},
			&legacy.Activity{},
			&legacy.Asset{},
			&legacy.Customization{},
			&activity.Activity{},
			&activity.Asset{},
			&migration.LogEntry{},
		}
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("auto migration failed: %v", err)
		}
		s.logger.LogInfo("Auto-migration completed successfully", nil)
	}

	s.db = db
	return db, nil
}

// ProbeTable issues a zero-row existence probe against a table. Any error
// means the table is unreachable or missing.
func (s *Service) ProbeTable(ctx context.Context, table, column string) error {
	var probe []map[string]interface{}
	if err := s.db.WithContext(ctx).Table(table).Select(column).Limit(1).Find(&probe).Error; err != nil {
		return fmt.Errorf("table %s unavailable: %v", table, err)
	}
	return nil
}

// Ping verifies the database connection is alive
func (s *Service) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %v", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *Service) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %v", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %v", err)
		}
	}
	return nil
}
