package services

import (
	"testing"
	"time"

	"bhms/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Landlord{},
		&models.BoardingHouse{},
		&models.Room{},
		&models.Tenant{},
		&models.Contract{},
		&models.Invoice{},
		&models.InvoiceDetail{},
		&models.MaintenanceRequest{},
		&models.Service{},
		&models.RoomService{},
		&models.HouseService{},
	)
	require.NoError(t, err)
	return db
}

func createTestHouse(t *testing.T, db *gorm.DB) *models.BoardingHouse {
	landlord := &models.Landlord{FullName: "测试房东", Phone: "0911111111"}
	require.NoError(t, landlord.SetPassword("secret123"))
	require.NoError(t, db.Create(landlord).Error)

	house := &models.BoardingHouse{
		LandlordID: landlord.ID,
		HouseName:  "测试公寓",
		Address:    "测试路1号",
	}
	require.NoError(t, db.Create(house).Error)
	return house
}

func createTestRoom(t *testing.T, db *gorm.DB, houseID uint, number string) *models.Room {
	room := &models.Room{
		HouseID:    houseID,
		RoomNumber: number,
		BaseRent:   3000,
		Status:     models.RoomStatusVacant,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func createTestContract(t *testing.T, db *gorm.DB, roomID uint, phone string) (*models.Contract, string) {
	svc := NewContractService(db)
	password, contract, err := svc.Create(&CreateContractInput{
		RoomID:        roomID,
		FullName:      "张三",
		Phone:         phone,
		StartDate:     time.Now().AddDate(0, -1, 0),
		EndDate:       time.Now().AddDate(1, 0, 0),
		DepositAmount: 3000,
		RentAmount:    3000,
	})
	require.NoError(t, err)
	return contract, password
}
