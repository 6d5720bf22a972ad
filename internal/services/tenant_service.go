package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"

	"gorm.io/gorm"
)

// TenantService 租客注册表：按手机号归一租客身份
type TenantService struct {
	db *gorm.DB
}

// NewTenantService 创建租客服务
func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{db: db}
}

// ResolveTenantInput 解析/创建租客的输入
type ResolveTenantInput struct {
	FullName     string
	Phone        string
	IDCardNumber string
	PhotoURLs    []string // 新上传的证件照URL，空则保留原值
	Password     string   // 明文密码，仅用于立即散列，不落库
}

// ResolveOrCreate 按手机号查找租客：存在则重新激活并更新凭证/照片，
// 不存在则创建。必须在调用方的事务内执行
func (s *TenantService) ResolveOrCreate(tx *gorm.DB, input *ResolveTenantInput, now int64) (uint, error) {
	var tenant models.Tenant
	err := tx.Where("phone = ?", input.Phone).First(&tenant).Error

	if err == nil {
		// 老租客回头签约：重新激活
		updates := map[string]interface{}{"is_active": true}

		if input.Password != "" {
			if err := tenant.SetPassword(input.Password); err != nil {
				return 0, apperrors.NewStorageFailure("密码散列失败")
			}
			updates["password_hash"] = tenant.PasswordHash
		}
		if len(input.PhotoURLs) > 0 {
			photos, _ := json.Marshal(input.PhotoURLs)
			updates["id_card_photos"] = photos
		}

		if err := tx.Model(&models.Tenant{}).Where("id = ?", tenant.ID).Updates(updates).Error; err != nil {
			return 0, err
		}
		return tenant.ID, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	// 新租客：无证件号时生成占位号
	idCard := input.IDCardNumber
	if idCard == "" {
		idCard = fmt.Sprintf("P_%d", now)
	}

	photos, _ := json.Marshal(input.PhotoURLs)
	newTenant := models.Tenant{
		FullName:     input.FullName,
		Phone:        input.Phone,
		IDCardNumber: idCard,
		IDCardPhotos: photos,
		IsActive:     true,
	}
	if input.Password != "" {
		if err := newTenant.SetPassword(input.Password); err != nil {
			return 0, apperrors.NewStorageFailure("密码散列失败")
		}
	}

	if err := tx.Create(&newTenant).Error; err != nil {
		return 0, err
	}
	return newTenant.ID, nil
}

// FindByPhoneOrIDCard 按手机号或证件号查找租客（用于表单自动填充）；
// 未找到返回nil，不视为错误
func (s *TenantService) FindByPhoneOrIDCard(phone, idCard string) (*models.Tenant, error) {
	if phone == "" && idCard == "" {
		return nil, apperrors.NewValidationFailed("需要提供手机号或证件号")
	}

	query := s.db.Model(&models.Tenant{})
	if phone != "" {
		query = query.Where("phone = ?", phone)
	} else {
		query = query.Where("id_card_number = ?", idCard)
	}

	var tenant models.Tenant
	err := query.First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetByPhone 按手机号查找租客（登录用）
func (s *TenantService) GetByPhone(phone string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.Where("phone = ?", phone).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetByID 按ID获取租客
func (s *TenantService) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.First(&tenant, id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// DeactivateIfNoActiveContract 租客名下不再有生效合同时停用账号，
// 保持 is_active 派生不变量。必须在调用方的事务内执行
func (s *TenantService) DeactivateIfNoActiveContract(tx *gorm.DB, tenantID uint) error {
	var count int64
	err := tx.Model(&models.Contract{}).
		Where("tenant_id = ? AND status = ? AND is_current = ?",
			tenantID, models.ContractStatusActive, true).
		Count(&count).Error
	if err != nil {
		return err
	}

	if count == 0 {
		return tx.Model(&models.Tenant{}).
			Where("id = ?", tenantID).
			Update("is_active", false).Error
	}
	return nil
}
