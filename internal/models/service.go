package models

// Service 可计费服务（电、水、网络等）
type Service struct {
	BaseModel
	ServiceName string `json:"service_name" gorm:"not null;size:100"`
	ServiceType string `json:"service_type" gorm:"not null;size:20;default:'metered'"`
}

// TableName 表名
func (s *Service) TableName() string {
	return "services"
}

// 服务计费方式常量
const (
	ServiceBillingMetered = "metered" // 按读数计费
	ServiceBillingFlat    = "flat"    // 固定月费
)

// RoomService 房间级服务定价；存在时完全覆盖房屋级定价
type RoomService struct {
	ID        uint    `json:"id" gorm:"primarykey"`
	RoomID    uint    `json:"room_id" gorm:"not null;index"`
	ServiceID uint    `json:"service_id" gorm:"not null;index"`
	Price     float64 `json:"price" gorm:"not null;default:0"`

	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

// TableName 表名
func (rs *RoomService) TableName() string {
	return "room_services"
}

// HouseService 房屋级默认服务定价
type HouseService struct {
	ID        uint    `json:"id" gorm:"primarykey"`
	HouseID   uint    `json:"house_id" gorm:"not null;index"`
	ServiceID uint    `json:"service_id" gorm:"not null;index"`
	Price     float64 `json:"price" gorm:"not null;default:0"`

	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

// TableName 表名
func (hs *HouseService) TableName() string {
	return "house_services"
}
