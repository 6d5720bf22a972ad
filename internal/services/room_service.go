package services

import (
	"errors"
	"time"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"

	"gorm.io/gorm"
)

// RoomService 房间服务
type RoomService struct {
	db *gorm.DB
}

// NewRoomService 创建房间服务
func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{db: db}
}

// RoomListRow 房间列表行（带当前租客信息）
type RoomListRow struct {
	models.Room
	TenantName      *string    `json:"tenant_name"`
	ContractEndDate *time.Time `json:"contract_end_date"`
}

// List 房间列表，附当前生效合同的租客与到期日
func (s *RoomService) List(houseID uint) ([]*RoomListRow, error) {
	query := s.db.Model(&models.Room{}).
		Select(`rooms.*, tenants.full_name AS tenant_name, contracts.end_date AS contract_end_date`).
		Joins("LEFT JOIN contracts ON rooms.id = contracts.room_id AND contracts.is_current = ?", true).
		Joins("LEFT JOIN tenants ON contracts.tenant_id = tenants.id")

	if houseID != 0 {
		query = query.Where("rooms.house_id = ?", houseID)
	}

	var rows []*RoomListRow
	err := query.Scan(&rows).Error
	return rows, err
}

// RoomServiceItem 房间服务定价条目
type RoomServiceItem struct {
	Name  string  `json:"name" binding:"required"`
	Type  string  `json:"type"`
	Price float64 `json:"price" binding:"required"`
}

// RoomDetail 房间详情
type RoomDetail struct {
	models.Room
	TenantName        *string            `json:"tenant_name"`
	TenantPhone       *string            `json:"tenant_phone"`
	ContractStartDate *time.Time         `json:"contract_start_date"`
	ContractEndDate   *time.Time         `json:"contract_end_date"`
	Services          []*RoomServiceItem `json:"services" gorm:"-"`
}

// GetByID 房间详情：当前租客、合同区间、服务定价
func (s *RoomService) GetByID(id uint) (*RoomDetail, error) {
	var detail RoomDetail
	err := s.db.Model(&models.Room{}).
		Select(`rooms.*, tenants.full_name AS tenant_name, tenants.phone AS tenant_phone,
			contracts.start_date AS contract_start_date, contracts.end_date AS contract_end_date`).
		Joins("LEFT JOIN contracts ON rooms.id = contracts.room_id AND contracts.is_current = ?", true).
		Joins("LEFT JOIN tenants ON contracts.tenant_id = tenants.id").
		Where("rooms.id = ?", id).
		Scan(&detail).Error
	if err != nil {
		return nil, err
	}
	if detail.ID == 0 {
		return nil, apperrors.NewNotFound("房间不存在")
	}

	var services []*RoomServiceItem
	err = s.db.Table("room_services").
		Select("services.service_name AS name, services.service_type AS type, room_services.price").
		Joins("JOIN services ON room_services.service_id = services.id").
		Where("room_services.room_id = ?", id).
		Scan(&services).Error
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []*RoomServiceItem{}
	}
	detail.Services = services

	return &detail, nil
}

// CreateRoomInput 创建房间的输入
type CreateRoomInput struct {
	HouseID    uint
	RoomNumber string
	Floor      *int
	AreaM2     *float64
	BaseRent   float64
	Facilities *string
}

// Create 创建房间，初始为空置
func (s *RoomService) Create(input *CreateRoomInput) (*models.Room, error) {
	var count int64
	if err := s.db.Model(&models.BoardingHouse{}).Where("id = ?", input.HouseID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperrors.NewNotFound("房屋不存在")
	}

	room := &models.Room{
		HouseID:    input.HouseID,
		RoomNumber: input.RoomNumber,
		Floor:      input.Floor,
		AreaM2:     input.AreaM2,
		BaseRent:   input.BaseRent,
		Facilities: input.Facilities,
		Status:     models.RoomStatusVacant,
	}
	err := s.db.Create(room).Error
	return room, err
}

// UpdateRoomInput 更新房间的输入
type UpdateRoomInput struct {
	RoomNumber string
	Floor      *int
	AreaM2     *float64
	BaseRent   float64
	Facilities *string
	Services   []*RoomServiceItem // 整体替换房间服务定价
}

// Update 更新房间信息并整体重写服务定价；单事务。
// 服务按名称+计费方式查找，不存在则创建
func (s *RoomService) Update(id uint, input *UpdateRoomInput) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("房间不存在")
			}
			return err
		}

		updates := map[string]interface{}{
			"room_number": input.RoomNumber,
			"floor":       input.Floor,
			"area_m2":     input.AreaM2,
			"base_rent":   input.BaseRent,
			"facilities":  input.Facilities,
		}
		if err := tx.Model(&models.Room{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		// 整体重写：先删旧定价
		if err := tx.Where("room_id = ?", id).Delete(&models.RoomService{}).Error; err != nil {
			return err
		}

		for _, item := range input.Services {
			if item.Name == "" || item.Price <= 0 {
				continue
			}
			serviceType := item.Type
			if serviceType == "" {
				serviceType = models.ServiceBillingMetered
			}

			var service models.Service
			err := tx.Where("service_name = ? AND service_type = ?", item.Name, serviceType).
				First(&service).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				service = models.Service{ServiceName: item.Name, ServiceType: serviceType}
				if err := tx.Create(&service).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			roomService := models.RoomService{
				RoomID:    id,
				ServiceID: service.ID,
				Price:     item.Price,
			}
			if err := tx.Create(&roomService).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete 删除房间：仅限空置且无生效合同的房间；连带删除服务定价
func (s *RoomService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("房间不存在")
			}
			return err
		}

		var activeContracts int64
		err := tx.Model(&models.Contract{}).
			Where("room_id = ? AND status = ?", id, models.ContractStatusActive).
			Count(&activeContracts).Error
		if err != nil {
			return err
		}
		if activeContracts > 0 {
			return apperrors.NewPreconditionFailed("房间有生效合同，无法删除")
		}
		if room.Status != models.RoomStatusVacant {
			return apperrors.NewPreconditionFailed("只能删除空置房间")
		}

		if err := tx.Where("room_id = ?", id).Delete(&models.RoomService{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Room{}, id).Error
	})
}
