package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Landlord 房东模型
type Landlord struct {
	BaseModel
	FullName     string  `json:"full_name" gorm:"not null;size:100"`
	Phone        string  `json:"phone" gorm:"unique;not null;size:20;index"`
	Email        *string `json:"email" gorm:"size:100;index"`
	PasswordHash string  `json:"-" gorm:"not null;size:255"`
	Address      *string `json:"address" gorm:"size:255"`
}

// TableName 表名
func (l *Landlord) TableName() string {
	return "landlords"
}

// SetPassword 设置密码
func (l *Landlord) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	l.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码
func (l *Landlord) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(l.PasswordHash), []byte(password))
	return err == nil
}
