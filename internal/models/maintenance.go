package models

import (
	"time"
)

// MaintenanceRequest 报修工单模型
type MaintenanceRequest struct {
	BaseModel
	RoomID         uint       `json:"room_id" gorm:"not null;index"`
	TenantID       uint       `json:"tenant_id" gorm:"not null;index"`
	Title          string     `json:"title" gorm:"not null;size:200"`
	Description    string     `json:"description" gorm:"size:1000"`
	Status         string     `json:"status" gorm:"default:'New';size:20;index"`
	RequestDate    time.Time  `json:"request_date" gorm:"not null"`
	ResolvedDate   *time.Time `json:"resolved_date"`
	ResolutionNote *string    `json:"resolution_note" gorm:"size:500"`

	Room   *Room   `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName 表名
func (m *MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}

// 工单状态常量
const (
	MaintenanceStatusNew        = "New"
	MaintenanceStatusInProgress = "InProgress"
	MaintenanceStatusCompleted  = "Completed"
	MaintenanceStatusCancelled  = "Cancelled"
)

// 合法状态迁移表：Completed/Cancelled为终态
var maintenanceTransitions = map[string][]string{
	MaintenanceStatusNew:        {MaintenanceStatusInProgress, MaintenanceStatusCompleted, MaintenanceStatusCancelled},
	MaintenanceStatusInProgress: {MaintenanceStatusCompleted, MaintenanceStatusCancelled},
}

// CanTransitionTo 检查状态迁移是否合法
func (m *MaintenanceRequest) CanTransitionTo(status string) bool {
	for _, next := range maintenanceTransitions[m.Status] {
		if next == status {
			return true
		}
	}
	return false
}

// IsValidMaintenanceStatus 检查工单状态是否有效
func IsValidMaintenanceStatus(status string) bool {
	switch status {
	case MaintenanceStatusNew, MaintenanceStatusInProgress,
		MaintenanceStatusCompleted, MaintenanceStatusCancelled:
		return true
	default:
		return false
	}
}
