package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"transroute/internal/models"
)

// InitDB opens the PostgreSQL connection, routes gorm's logger through logrus
// and migrates the schema.
func InitDB(cfg DatabaseConfig) (*gorm.DB, error) {
	gl := gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&models.Company{},
		&models.Stop{},
		&models.Route{},
		&models.RouteTemplate{},
		&models.Vehicle{},
		&models.Trip{},
		&models.TripSegment{},
		&models.Client{},
		&models.Reservation{},
		&models.Transaction{},
		&models.AuditLog{},
		&models.Invitation{},
	)
	if err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}
	return db, nil
}
