package services

import (
	"errors"
	"time"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"

	"gorm.io/gorm"
)

// HouseService 房屋服务
type HouseService struct {
	db *gorm.DB
}

// NewHouseService 创建房屋服务
func NewHouseService(db *gorm.DB) *HouseService {
	return &HouseService{db: db}
}

// List 房屋列表
func (s *HouseService) List() ([]*models.BoardingHouse, error) {
	var houses []*models.BoardingHouse
	err := s.db.Preload("Rooms").Find(&houses).Error
	return houses, err
}

// Create 创建房屋
func (s *HouseService) Create(landlordID uint, name, address string, description *string) (*models.BoardingHouse, error) {
	house := &models.BoardingHouse{
		LandlordID:  landlordID,
		HouseName:   name,
		Address:     address,
		Description: description,
	}
	err := s.db.Create(house).Error
	return house, err
}

// GetMonthlyRevenue 房屋的理论月租金（房间底租合计）
func (s *HouseService) GetMonthlyRevenue(houseID uint) (float64, error) {
	var house models.BoardingHouse
	if err := s.db.First(&house, houseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NewNotFound("房屋不存在")
		}
		return 0, err
	}

	var revenue *float64
	err := s.db.Model(&models.Room{}).
		Where("house_id = ?", houseID).
		Select("SUM(base_rent)").Scan(&revenue).Error
	if err != nil {
		return 0, err
	}
	if revenue == nil {
		return 0, nil
	}
	return *revenue, nil
}

// HouseStats 房屋总体统计
type HouseStats struct {
	TotalRooms int64   `json:"total_rooms"`
	Occupied   int64   `json:"occupied"`
	Vacant     int64   `json:"vacant"`
	Revenue    float64 `json:"revenue"` // 本月已收
}

// GetStats 房屋总体统计：房间占用 + 本月已收
func (s *HouseService) GetStats() (*HouseStats, error) {
	stats := &HouseStats{}

	s.db.Model(&models.Room{}).Count(&stats.TotalRooms)
	s.db.Model(&models.Room{}).Where("status = ?", models.RoomStatusOccupied).Count(&stats.Occupied)
	s.db.Model(&models.Room{}).Where("status = ?", models.RoomStatusVacant).Count(&stats.Vacant)

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var revenue *float64
	err := s.db.Model(&models.Invoice{}).
		Where("status = ? AND issue_date >= ?", models.InvoiceStatusPaid, monthStart).
		Select("SUM(total_amount)").Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue != nil {
		stats.Revenue = *revenue
	}

	return stats, nil
}
