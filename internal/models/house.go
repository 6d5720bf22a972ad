package models

// BoardingHouse 房屋模型：一名房东名下的一栋出租屋
type BoardingHouse struct {
	BaseModel
	LandlordID  uint    `json:"landlord_id" gorm:"not null;index"`
	HouseName   string  `json:"house_name" gorm:"not null;size:100"`
	Address     string  `json:"address" gorm:"not null;size:255"`
	Description *string `json:"description" gorm:"size:500"`

	Rooms []Room `json:"rooms,omitempty" gorm:"foreignKey:HouseID"`
}

// TableName 表名
func (h *BoardingHouse) TableName() string {
	return "boarding_houses"
}
