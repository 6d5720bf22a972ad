package models

import (
	"time"
)

// Invoice 账单模型
// Status 只存 Unpaid/Paid；对外展示的 Overdue 是读取时派生的，不落库
type Invoice struct {
	BaseModel
	ContractID    uint       `json:"contract_id" gorm:"not null;index"`
	BillingPeriod *string    `json:"billing_period" gorm:"size:7;index"` // "2026-08"，临时账单为空
	IssueDate     time.Time  `json:"issue_date" gorm:"not null"`
	DueDate       time.Time  `json:"due_date" gorm:"not null;index"`
	RoomRent      float64    `json:"room_rent" gorm:"not null;default:0"`
	TotalAmount   float64    `json:"total_amount" gorm:"not null;default:0"`
	Status        string     `json:"status" gorm:"default:'Unpaid';size:20;index"`
	PaidDate      *time.Time `json:"paid_date"`
	Notes         *string    `json:"notes" gorm:"size:500"`
	InvoiceType   string     `json:"invoice_type" gorm:"default:'Monthly';size:20"`

	Contract *Contract       `json:"contract,omitempty" gorm:"foreignKey:ContractID"`
	Details  []InvoiceDetail `json:"details,omitempty" gorm:"foreignKey:InvoiceID"`
}

// TableName 表名
func (i *Invoice) TableName() string {
	return "invoices"
}

// 账单状态常量
const (
	InvoiceStatusUnpaid = "Unpaid"
	InvoiceStatusPaid   = "Paid"
)

// 账单类型常量
const (
	InvoiceTypeMonthly    = "Monthly"
	InvoiceTypeIncidental = "Incidental"
)

// 展示状态常量（读取时派生）
const (
	DisplayStatusPaid    = "Paid"
	DisplayStatusUnpaid  = "Unpaid"
	DisplayStatusOverdue = "Overdue"
)

// DisplayStatus 派生展示状态：Paid优先，其次按到期日判断逾期
func (i *Invoice) DisplayStatus(today time.Time) string {
	if i.Status == InvoiceStatusPaid {
		return DisplayStatusPaid
	}
	if i.DueDate.Before(truncateToDay(today)) {
		return DisplayStatusOverdue
	}
	return DisplayStatusUnpaid
}

// OverdueDays 逾期天数；已支付或未逾期为0
func (i *Invoice) OverdueDays(today time.Time) int {
	if i.Status == InvoiceStatusPaid {
		return 0
	}
	days := int(truncateToDay(today).Sub(truncateToDay(i.DueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// InvoiceDetail 账单明细行
// ServiceType 显式标注（电/水/其他），不再依赖行序推断
type InvoiceDetail struct {
	ID              uint     `json:"id" gorm:"primarykey"`
	InvoiceID       uint     `json:"invoice_id" gorm:"not null;index"`
	ServiceType     string   `json:"service_type" gorm:"not null;size:20"`
	ServiceName     string   `json:"service_name" gorm:"size:100"`
	PreviousReading *float64 `json:"previous_reading"`
	CurrentReading  *float64 `json:"current_reading"`
	UnitPrice       float64  `json:"unit_price" gorm:"not null;default:0"`
	Amount          float64  `json:"amount" gorm:"not null;default:0"`
}

// TableName 表名
func (d *InvoiceDetail) TableName() string {
	return "invoice_details"
}

// 明细服务类型常量
const (
	ServiceTypeElectricity = "electricity"
	ServiceTypeWater       = "water"
	ServiceTypeOther       = "other"
)

// Usage 用量 = max(本期读数-上期读数, 0)，无读数视为0
func (d *InvoiceDetail) Usage() float64 {
	if d.PreviousReading == nil || d.CurrentReading == nil {
		return 0
	}
	usage := *d.CurrentReading - *d.PreviousReading
	if usage < 0 {
		return 0
	}
	return usage
}

// IsMetered 是否按读数计费
func (d *InvoiceDetail) IsMetered() bool {
	return d.PreviousReading != nil && d.CurrentReading != nil
}
