package services

import (
	"errors"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"

	"gorm.io/gorm"
)

// LandlordService 房东账号服务
type LandlordService struct {
	db *gorm.DB
}

// NewLandlordService 创建房东服务
func NewLandlordService(db *gorm.DB) *LandlordService {
	return &LandlordService{db: db}
}

// Register 注册房东：手机号唯一，密码只存散列
func (s *LandlordService) Register(fullName, phone, password string, email, address *string) (*models.Landlord, error) {
	var count int64
	if err := s.db.Model(&models.Landlord{}).Where("phone = ?", phone).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.NewValidationFailed("手机号已被注册")
	}

	landlord := &models.Landlord{
		FullName: fullName,
		Phone:    phone,
		Email:    email,
		Address:  address,
	}
	if err := landlord.SetPassword(password); err != nil {
		return nil, apperrors.NewStorageFailure("密码散列失败")
	}

	if err := s.db.Create(landlord).Error; err != nil {
		return nil, err
	}
	return landlord, nil
}

// Authenticate 房东登录：支持邮箱或手机号
func (s *LandlordService) Authenticate(account, password string) (*models.Landlord, error) {
	var landlord models.Landlord
	err := s.db.Where("email = ? OR phone = ?", account, account).First(&landlord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("账号不存在")
		}
		return nil, err
	}

	if !landlord.CheckPassword(password) {
		return nil, apperrors.NewValidationFailed("密码错误")
	}
	return &landlord, nil
}

// GetByID 按ID查询房东
func (s *LandlordService) GetByID(id uint) (*models.Landlord, error) {
	var landlord models.Landlord
	if err := s.db.First(&landlord, id).Error; err != nil {
		return nil, err
	}
	return &landlord, nil
}
