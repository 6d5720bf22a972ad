package database

import (
	"bhms/internal/models"
	"bhms/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		&models.Landlord{},
		&models.BoardingHouse{},
		&models.Room{},
		&models.Tenant{},
		&models.Contract{},
		&models.Invoice{},
		&models.InvoiceDetail{},
		&models.MaintenanceRequest{},
		// 服务定价
		&models.Service{},
		&models.RoomService{},
		&models.HouseService{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}
