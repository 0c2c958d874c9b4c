package repo

import (
	"fmt"
	"strings"

	"tonk-service/internal/config"
	"tonk-service/internal/model"
	"tonk-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Open connects with the driver named in cfg.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "postgres", "postgresql":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return gorm.Open(dialector, &gorm.Config{})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

func InitDB() {
	var err error
	DB, err = Open(config.GlobalConfig.Database)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database",
			zap.String("driver", config.GlobalConfig.Database.Driver),
			zap.Error(err),
		)
	}

	if err := Migrate(DB); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}
}
