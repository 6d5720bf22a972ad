package services

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"
	"bhms/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ContractService 合同生命周期服务
type ContractService struct {
	db            *gorm.DB
	log           *logrus.Logger
	tenantService *TenantService
}

// NewContractService 创建合同服务
func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{
		db:            db,
		log:           logger.GetLogger(),
		tenantService: NewTenantService(db),
	}
}

// CreateContractInput 创建合同的输入
type CreateContractInput struct {
	RoomID          uint
	FullName        string
	Phone           string
	IDCardNumber    string
	StartDate       time.Time
	EndDate         time.Time
	DepositAmount   float64
	RentAmount      float64
	Notes           *string
	Password        string   // 为空时自动生成
	PhotoURLs       []string // 证件照URL
	ContractFileURL *string  // 合同PDF URL
}

// UpdateContractInput 更新合同的输入
type UpdateContractInput struct {
	StartDate     time.Time
	EndDate       time.Time
	DepositAmount float64
	RentAmount    float64
	Notes         *string
	FullName      string
	Phone         string
	IDCardNumber  string
	Password      string // 非空时重置租客密码
}

// 自动生成密码的字符集（去掉易混淆字符）
const passwordCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generatePassword 生成6位随机密码，需要带外告知租客
func generatePassword() (string, error) {
	buf := make([]byte, 6)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordCharset))))
		if err != nil {
			return "", err
		}
		buf[i] = passwordCharset[n.Int64()]
	}
	return string(buf), nil
}

// Create 创建合同：生成凭证、归一租客、落合同、占用房间，单事务执行。
// 房间占用采用条件更新，两个并发请求只会有一个成功。
// 返回实际使用的密码（可能为自动生成，需返回给调用方）
func (s *ContractService) Create(input *CreateContractInput) (string, *models.Contract, error) {
	password := input.Password
	if password == "" {
		var err error
		password, err = generatePassword()
		if err != nil {
			return "", nil, apperrors.NewStorageFailure("生成密码失败")
		}
	}

	var contract models.Contract
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 条件更新占用房间：Vacant -> Occupied，零行即房间不存在或已被占用
		result := tx.Model(&models.Room{}).
			Where("id = ? AND status = ?", input.RoomID, models.RoomStatusVacant).
			Update("status", models.RoomStatusOccupied)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Room{}).Where("id = ?", input.RoomID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperrors.NewNotFound("房间不存在")
			}
			return apperrors.NewPreconditionFailed("房间已被占用，无法签约")
		}

		tenantID, err := s.tenantService.ResolveOrCreate(tx, &ResolveTenantInput{
			FullName:     input.FullName,
			Phone:        input.Phone,
			IDCardNumber: input.IDCardNumber,
			PhotoURLs:    input.PhotoURLs,
			Password:     password,
		}, time.Now().UnixMilli())
		if err != nil {
			return err
		}

		contract = models.Contract{
			RoomID:          input.RoomID,
			TenantID:        tenantID,
			StartDate:       input.StartDate,
			EndDate:         input.EndDate,
			DepositAmount:   input.DepositAmount,
			RentAmount:      input.RentAmount,
			Status:          models.ContractStatusActive,
			IsCurrent:       true,
			Notes:           input.Notes,
			ContractFileURL: input.ContractFileURL,
		}
		return tx.Create(&contract).Error
	})
	if err != nil {
		return "", nil, err
	}

	s.log.Infof("合同创建成功: contract=%d room=%d tenant=%d", contract.ID, contract.RoomID, contract.TenantID)
	return password, &contract, nil
}

// Update 更新合同标量字段，并同步更新关联租客的身份字段；同一事务
func (s *ContractService) Update(id uint, input *UpdateContractInput) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		if err := tx.First(&contract, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("合同不存在")
			}
			return err
		}

		updates := map[string]interface{}{
			"start_date":     input.StartDate,
			"end_date":       input.EndDate,
			"deposit_amount": input.DepositAmount,
			"rent_amount":    input.RentAmount,
			"notes":          input.Notes,
		}
		if err := tx.Model(&models.Contract{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		tenantUpdates := map[string]interface{}{
			"full_name": input.FullName,
			"phone":     input.Phone,
		}
		if input.IDCardNumber != "" {
			tenantUpdates["id_card_number"] = input.IDCardNumber
		}
		if input.Password != "" {
			var tenant models.Tenant
			if err := tenant.SetPassword(input.Password); err != nil {
				return apperrors.NewStorageFailure("密码散列失败")
			}
			tenantUpdates["password_hash"] = tenant.PasswordHash
		}

		return tx.Model(&models.Tenant{}).
			Where("id = ?", contract.TenantID).
			Updates(tenantUpdates).Error
	})
}

// Terminate 终止合同：置Terminated、释放房间、同步租客激活状态，单事务
func (s *ContractService) Terminate(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		if err := tx.First(&contract, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("合同不存在")
			}
			return err
		}

		if err := tx.Model(&models.Contract{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":     models.ContractStatusTerminated,
			"is_current": false,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Room{}).
			Where("id = ?", contract.RoomID).
			Update("status", models.RoomStatusVacant).Error; err != nil {
			return err
		}

		return s.tenantService.DeactivateIfNoActiveContract(tx, contract.TenantID)
	})
}

// ExpireOverdue 过期清扫：到期的生效合同置Expired并释放房间。
// 由调度器定时调用，返回处理的合同数。
// 按自然日比较，合同最后一天当天仍视为生效
func (s *ContractService) ExpireOverdue(today time.Time) (int, error) {
	dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	var expired []models.Contract
	err := s.db.Where("status = ? AND end_date < ?", models.ContractStatusActive, dayStart).
		Find(&expired).Error
	if err != nil {
		return 0, err
	}

	count := 0
	for _, contract := range expired {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Contract{}).Where("id = ?", contract.ID).Updates(map[string]interface{}{
				"status":     models.ContractStatusExpired,
				"is_current": false,
			}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Room{}).
				Where("id = ?", contract.RoomID).
				Update("status", models.RoomStatusVacant).Error; err != nil {
				return err
			}
			return s.tenantService.DeactivateIfNoActiveContract(tx, contract.TenantID)
		})
		if err != nil {
			s.log.Errorf("合同过期处理失败: contract=%d err=%v", contract.ID, err)
			continue
		}
		count++
	}
	return count, nil
}

// ContractListRow 合同列表行
type ContractListRow struct {
	ID            uint      `json:"id"`
	RoomID        uint      `json:"room_id"`
	TenantID      uint      `json:"tenant_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	DepositAmount float64   `json:"deposit_amount"`
	RentAmount    float64   `json:"rent_amount"`
	Status        string    `json:"status"`
	IsCurrent     bool      `json:"is_current"`
	CreatedAt     time.Time `json:"created_at"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	RoomNumber    string    `json:"room_number"`
	HouseID       uint      `json:"house_id"`
	HouseName     string    `json:"house_name"`
	BaseRent      float64   `json:"base_rent"`
	PaymentStatus *string   `json:"payment_status"` // 最近一期账单状态
}

// List 合同列表：联表租客/房间/房屋，附最近账单状态
func (s *ContractService) List(status, search string) ([]*ContractListRow, error) {
	query := s.db.Table("contracts").
		Select(`contracts.id, contracts.room_id, contracts.tenant_id, contracts.start_date,
			contracts.end_date, contracts.deposit_amount, contracts.rent_amount,
			contracts.status, contracts.is_current, contracts.created_at,
			tenants.full_name, tenants.phone,
			rooms.room_number, rooms.house_id, rooms.base_rent,
			boarding_houses.house_name,
			(SELECT i.status FROM invoices i WHERE i.contract_id = contracts.id
				ORDER BY i.due_date DESC LIMIT 1) AS payment_status`).
		Joins("JOIN tenants ON contracts.tenant_id = tenants.id").
		Joins("JOIN rooms ON contracts.room_id = rooms.id").
		Joins("JOIN boarding_houses ON rooms.house_id = boarding_houses.id")

	if status != "" && status != "All" {
		query = query.Where("contracts.status = ?", status)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("tenants.full_name LIKE ? OR tenants.phone LIKE ? OR rooms.room_number LIKE ?",
			pattern, pattern, pattern)
	}

	var rows []*ContractListRow
	err := query.Order("contracts.created_at DESC").Scan(&rows).Error
	return rows, err
}

// ServicePricing 合同适用的服务定价
type ServicePricing struct {
	ServiceName string  `json:"service_name"`
	ServiceType string  `json:"service_type"`
	UnitPrice   float64 `json:"unit_price"`
}

// ContractDetail 合同详情
type ContractDetail struct {
	models.Contract
	Services []*ServicePricing `json:"services"`
}

// GetByID 合同详情：联租客/房间，并解析适用服务定价。
// 房间级定价整体优先；仅当房间无任何定价时回落到房屋级
func (s *ContractService) GetByID(id uint) (*ContractDetail, error) {
	var contract models.Contract
	err := s.db.Preload("Room").Preload("Tenant").First(&contract, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("合同不存在")
		}
		return nil, err
	}

	// 合同未显式约定租金时取房间底租
	if contract.RentAmount == 0 && contract.Room != nil {
		contract.RentAmount = contract.Room.BaseRent
	}

	services, err := s.resolveServices(&contract)
	if err != nil {
		return nil, err
	}

	return &ContractDetail{Contract: contract, Services: services}, nil
}

func (s *ContractService) resolveServices(contract *models.Contract) ([]*ServicePricing, error) {
	var services []*ServicePricing
	err := s.db.Table("room_services").
		Select("services.service_name, services.service_type, room_services.price AS unit_price").
		Joins("JOIN services ON room_services.service_id = services.id").
		Where("room_services.room_id = ?", contract.RoomID).
		Scan(&services).Error
	if err != nil {
		return nil, err
	}

	// 全有或全无回落：房间有任何一条定价时不再看房屋级
	if len(services) == 0 && contract.Room != nil {
		err = s.db.Table("house_services").
			Select("services.service_name, services.service_type, house_services.price AS unit_price").
			Joins("JOIN services ON house_services.service_id = services.id").
			Where("house_services.house_id = ?", contract.Room.HouseID).
			Scan(&services).Error
		if err != nil {
			return nil, err
		}
	}

	if services == nil {
		services = []*ServicePricing{}
	}
	return services, nil
}

// ContractStats 合同状态统计
type ContractStats struct {
	Active     int64 `json:"active"`
	Terminated int64 `json:"terminated"`
	Expired    int64 `json:"expired"`
}

// GetStats 合同统计
func (s *ContractService) GetStats() (*ContractStats, error) {
	stats := &ContractStats{}
	s.db.Model(&models.Contract{}).Where("status = ?", models.ContractStatusActive).Count(&stats.Active)
	s.db.Model(&models.Contract{}).Where("status = ?", models.ContractStatusTerminated).Count(&stats.Terminated)
	s.db.Model(&models.Contract{}).Where("status = ?", models.ContractStatusExpired).Count(&stats.Expired)
	return stats, nil
}

// ActiveContractRow 生效合同摘要行
type ActiveContractRow struct {
	ID         uint    `json:"id"`
	RoomID     uint    `json:"room_id"`
	RoomNumber string  `json:"room_number"`
	FullName   string  `json:"full_name"`
	RentAmount float64 `json:"rent_amount"`
}

// ListActive 生效中的合同（开票选择用）
func (s *ContractService) ListActive() ([]*ActiveContractRow, error) {
	var rows []*ActiveContractRow
	err := s.db.Table("contracts").
		Select("contracts.id, contracts.room_id, rooms.room_number, tenants.full_name, contracts.rent_amount").
		Joins("JOIN rooms ON contracts.room_id = rooms.id").
		Joins("JOIN tenants ON contracts.tenant_id = tenants.id").
		Where("contracts.status = ? AND contracts.is_current = ?", models.ContractStatusActive, true).
		Scan(&rows).Error
	return rows, err
}
