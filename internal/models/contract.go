package models

import (
	"time"
)

// Contract 租赁合同模型
// 不变量：同一房间同一时刻至多一份 is_current=true 的合同
type Contract struct {
	BaseModel
	RoomID          uint      `json:"room_id" gorm:"not null;index"`
	TenantID        uint      `json:"tenant_id" gorm:"not null;index"`
	StartDate       time.Time `json:"start_date" gorm:"not null"`
	EndDate         time.Time `json:"end_date" gorm:"not null;index"`
	DepositAmount   float64   `json:"deposit_amount" gorm:"not null;default:0"`
	RentAmount      float64   `json:"rent_amount" gorm:"not null;default:0"`
	Status          string    `json:"status" gorm:"default:'Active';size:20;index"`
	IsCurrent       bool      `json:"is_current" gorm:"default:true;index"`
	Notes           *string   `json:"notes" gorm:"size:500"`
	ContractFileURL *string   `json:"contract_file_url" gorm:"size:255"`

	Room   *Room   `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName 表名
func (c *Contract) TableName() string {
	return "contracts"
}

// 合同状态常量
const (
	ContractStatusActive     = "Active"
	ContractStatusTerminated = "Terminated"
	ContractStatusExpired    = "Expired"
)
