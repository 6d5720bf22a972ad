package main

import (
	"fmt"
	"os"

	"bhms/internal/database"
	"bhms/internal/models"
	"bhms/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 创建默认房东账号
	if err := createDefaultLandlord(db); err != nil {
		return fmt.Errorf("创建默认房东失败: %v", err)
	}

	// 初始化基础服务项
	if err := createDefaultServices(db); err != nil {
		return fmt.Errorf("初始化服务项失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultLandlord 创建默认房东账号
func createDefaultLandlord(db *gorm.DB) error {
	var count int64
	db.Model(&models.Landlord{}).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("房东账号已存在，跳过创建")
		return nil
	}

	phone := os.Getenv("ADMIN_PHONE")
	if phone == "" {
		phone = "0900000000"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	landlord := &models.Landlord{
		FullName: "系统管理员",
		Phone:    phone,
	}
	if err := landlord.SetPassword(password); err != nil {
		return err
	}

	if err := db.Create(landlord).Error; err != nil {
		return err
	}

	logger.GetLogger().Infof("默认房东创建成功，手机号: %s", phone)
	return nil
}

// createDefaultServices 创建基础服务项（电、水）
func createDefaultServices(db *gorm.DB) error {
	defaults := []models.Service{
		{ServiceName: "电费", ServiceType: models.ServiceBillingMetered},
		{ServiceName: "水费", ServiceType: models.ServiceBillingMetered},
		{ServiceName: "网络费", ServiceType: models.ServiceBillingFlat},
		{ServiceName: "垃圾费", ServiceType: models.ServiceBillingFlat},
	}

	for _, svc := range defaults {
		var count int64
		db.Model(&models.Service{}).
			Where("service_name = ? AND service_type = ?", svc.ServiceName, svc.ServiceType).
			Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&svc).Error; err != nil {
			return err
		}
	}
	return nil
}
