package services

import (
	"errors"
	"time"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"
	"bhms/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MaintenanceService 报修工单服务
type MaintenanceService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMaintenanceService 创建报修服务
func NewMaintenanceService(db *gorm.DB) *MaintenanceService {
	return &MaintenanceService{
		db:  db,
		log: logger.GetLogger(),
	}
}

// Create 创建报修工单。
// 租客从房间当前生效合同解析，不由调用方指定；
// 房间没有生效合同时拒绝
func (s *MaintenanceService) Create(roomID uint, title, description string) (*models.MaintenanceRequest, error) {
	var contract models.Contract
	err := s.db.Where("room_id = ? AND status = ? AND is_current = ?",
		roomID, models.ContractStatusActive, true).
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewPreconditionFailed("该房间当前没有租客")
		}
		return nil, err
	}

	request := models.MaintenanceRequest{
		RoomID:      roomID,
		TenantID:    contract.TenantID,
		Title:       title,
		Description: description,
		Status:      models.MaintenanceStatusNew,
		RequestDate: time.Now(),
	}
	if err := s.db.Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// UpdateStatus 更新工单状态。
// 只允许合法迁移；进入Completed/Cancelled时记录处理说明并落处理时间
func (s *MaintenanceService) UpdateStatus(id uint, status string, note string) error {
	if !models.IsValidMaintenanceStatus(status) {
		return apperrors.NewValidationFailed("工单状态无效")
	}

	var request models.MaintenanceRequest
	if err := s.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("工单不存在")
		}
		return err
	}

	if !request.CanTransitionTo(status) {
		return apperrors.NewPreconditionFailed("工单状态不允许从 " + request.Status + " 变更为 " + status)
	}

	updates := map[string]interface{}{"status": status}
	if status == models.MaintenanceStatusCompleted || status == models.MaintenanceStatusCancelled {
		now := time.Now()
		updates["resolved_date"] = &now
		updates["resolution_note"] = note
	}
	return s.db.Model(&models.MaintenanceRequest{}).Where("id = ?", id).Updates(updates).Error
}

// MaintenanceListRow 工单列表行
type MaintenanceListRow struct {
	models.MaintenanceRequest
	RoomNumber string `json:"room_number"`
	HouseName  string `json:"house_name"`
	TenantName string `json:"tenant_name"`
}

// List 工单列表：按状态（New/InProgress/Completed/Cancelled）再按报修时间排序
func (s *MaintenanceService) List(status, search string) ([]*MaintenanceListRow, error) {
	query := s.db.Model(&models.MaintenanceRequest{}).
		Select(`maintenance_requests.*, rooms.room_number,
			boarding_houses.house_name, tenants.full_name AS tenant_name`).
		Joins("JOIN rooms ON maintenance_requests.room_id = rooms.id").
		Joins("JOIN boarding_houses ON rooms.house_id = boarding_houses.id").
		Joins("JOIN tenants ON maintenance_requests.tenant_id = tenants.id")

	if status != "" && status != "All" {
		query = query.Where("maintenance_requests.status = ?", status)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("tenants.full_name LIKE ? OR rooms.room_number LIKE ? OR maintenance_requests.title LIKE ?",
			pattern, pattern, pattern)
	}

	var rows []*MaintenanceListRow
	err := query.Order(`CASE maintenance_requests.status
			WHEN 'New' THEN 0 WHEN 'InProgress' THEN 1
			WHEN 'Completed' THEN 2 ELSE 3 END,
		maintenance_requests.request_date DESC`).
		Scan(&rows).Error
	return rows, err
}

// MaintenanceStats 工单统计
type MaintenanceStats struct {
	NewRequests int64 `json:"new_requests"`
	InProgress  int64 `json:"in_progress"`
	Completed   int64 `json:"completed"`
	Cancelled   int64 `json:"cancelled"`
}

// GetStats 工单统计
func (s *MaintenanceService) GetStats() (*MaintenanceStats, error) {
	stats := &MaintenanceStats{}
	s.db.Model(&models.MaintenanceRequest{}).Where("status = ?", models.MaintenanceStatusNew).Count(&stats.NewRequests)
	s.db.Model(&models.MaintenanceRequest{}).Where("status = ?", models.MaintenanceStatusInProgress).Count(&stats.InProgress)
	s.db.Model(&models.MaintenanceRequest{}).Where("status = ?", models.MaintenanceStatusCompleted).Count(&stats.Completed)
	s.db.Model(&models.MaintenanceRequest{}).Where("status = ?", models.MaintenanceStatusCancelled).Count(&stats.Cancelled)
	return stats, nil
}
