package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// Tenant 租客模型
// IsActive 为派生字段：没有任何生效合同时必须为 false，
// 由合同终止/过期逻辑负责同步
type Tenant struct {
	BaseModel
	FullName     string         `json:"full_name" gorm:"not null;size:100"`
	Phone        string         `json:"phone" gorm:"unique;not null;size:20;index"`
	Email        *string        `json:"email" gorm:"size:100"`
	IDCardNumber string         `json:"id_card_number" gorm:"size:50"`
	IDCardPhotos datatypes.JSON `json:"id_card_photos" gorm:"type:json"` // 照片URL数组
	PasswordHash string         `json:"-" gorm:"size:255"`
	IsActive     bool           `json:"is_active" gorm:"default:true;index"`
}

// TableName 表名
func (t *Tenant) TableName() string {
	return "tenants"
}

// SetPassword 设置密码
func (t *Tenant) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码
func (t *Tenant) CheckPassword(password string) bool {
	if t.PasswordHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(password))
	return err == nil
}
