package models

// Room 房间模型
// Status 由当前生效合同派生，但冗余存储在行上；
// 合同创建/终止/过期必须同步维护，不允许出现脏状态
type Room struct {
	BaseModel
	HouseID    uint     `json:"house_id" gorm:"not null;index"`
	RoomNumber string   `json:"room_number" gorm:"not null;size:50"`
	Floor      *int     `json:"floor"`
	AreaM2     *float64 `json:"area_m2"`
	BaseRent   float64  `json:"base_rent" gorm:"not null;default:0"`
	Facilities *string  `json:"facilities" gorm:"size:500"`
	Status     string   `json:"status" gorm:"default:'Vacant';size:20;index"`

	House *BoardingHouse `json:"house,omitempty" gorm:"foreignKey:HouseID"`
}

// TableName 表名
func (r *Room) TableName() string {
	return "rooms"
}

// 房间状态常量
const (
	RoomStatusVacant   = "Vacant"
	RoomStatusOccupied = "Occupied"
)
