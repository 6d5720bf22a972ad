package services

import (
	"errors"
	"math"
	"time"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"
	"bhms/pkg/logger"
	"bhms/pkg/pagination"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InvoiceService 账单引擎
type InvoiceService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewInvoiceService 创建账单服务
func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{
		db:  db,
		log: logger.GetLogger(),
	}
}

// InvoiceItemInput 账单明细输入。金额由引擎计算，调用方只提供读数和单价
type InvoiceItemInput struct {
	ServiceType     string   `json:"service_type" binding:"required"`
	ServiceName     string   `json:"service_name"`
	PreviousReading *float64 `json:"previous_reading"`
	CurrentReading  *float64 `json:"current_reading"`
	UnitPrice       float64  `json:"unit_price"`
	Amount          float64  `json:"amount"` // 非计量项的固定金额
}

// CreateInvoiceInput 创建账单的输入
type CreateInvoiceInput struct {
	ContractID    uint
	InvoiceType   string
	BillingPeriod string // Monthly必填 "2026-08"；Incidental留空
	DueDate       time.Time
	RoomRent      float64
	TotalAmount   float64 // 0表示由引擎计算；非0时必须与计算值一致
	Notes         *string
	Items         []InvoiceItemInput
}

// 金额比较容差
const amountEpsilon = 0.01

// Create 创建账单：引擎为权威计算方。
// 计量项金额 = max(本期-上期, 0) * 单价；总额 = 房租 + 明细合计。
// 调用方提供的总额与计算值不一致时拒绝。账单与明细单事务落库
func (s *InvoiceService) Create(input *CreateInvoiceInput) (*models.Invoice, error) {
	if input.InvoiceType != models.InvoiceTypeMonthly && input.InvoiceType != models.InvoiceTypeIncidental {
		return nil, apperrors.NewValidationFailed("账单类型无效")
	}
	if input.InvoiceType == models.InvoiceTypeMonthly && input.BillingPeriod == "" {
		return nil, apperrors.NewValidationFailed("月度账单必须指定账期")
	}

	// 校验合同存在
	var contract models.Contract
	if err := s.db.First(&contract, input.ContractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("合同不存在")
		}
		return nil, err
	}

	details := make([]models.InvoiceDetail, 0, len(input.Items))
	itemsTotal := 0.0
	for _, item := range input.Items {
		if item.ServiceType != models.ServiceTypeElectricity &&
			item.ServiceType != models.ServiceTypeWater &&
			item.ServiceType != models.ServiceTypeOther {
			return nil, apperrors.NewValidationFailed("明细服务类型无效: " + item.ServiceType)
		}

		detail := models.InvoiceDetail{
			ServiceType:     item.ServiceType,
			ServiceName:     item.ServiceName,
			PreviousReading: item.PreviousReading,
			CurrentReading:  item.CurrentReading,
			UnitPrice:       item.UnitPrice,
		}
		if detail.IsMetered() {
			detail.Amount = detail.Usage() * item.UnitPrice
		} else {
			detail.Amount = item.Amount
		}
		itemsTotal += detail.Amount
		details = append(details, detail)
	}

	computedTotal := input.RoomRent + itemsTotal
	if input.TotalAmount != 0 && math.Abs(input.TotalAmount-computedTotal) > amountEpsilon {
		return nil, apperrors.NewValidationFailed("账单总额与明细合计不一致")
	}

	// 账期只属于月度账单；临时账单一律存空
	var billingPeriod *string
	if input.InvoiceType == models.InvoiceTypeMonthly {
		billingPeriod = &input.BillingPeriod
	}

	invoice := models.Invoice{
		ContractID:    input.ContractID,
		BillingPeriod: billingPeriod,
		IssueDate:     time.Now(),
		DueDate:       input.DueDate,
		RoomRent:      input.RoomRent,
		TotalAmount:   computedTotal,
		Status:        models.InvoiceStatusUnpaid,
		Notes:         input.Notes,
		InvoiceType:   input.InvoiceType,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for i := range details {
			details[i].InvoiceID = invoice.ID
		}
		if len(details) > 0 {
			if err := tx.Create(&details).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice.Details = details
	s.log.Infof("账单创建成功: invoice=%d contract=%d total=%.2f", invoice.ID, invoice.ContractID, invoice.TotalAmount)
	return &invoice, nil
}

// InvoiceListRow 账单列表行（含派生展示状态）
type InvoiceListRow struct {
	models.Invoice
	RoomNumber    string `json:"room_number"`
	FullName      string `json:"full_name"`
	DisplayStatus string `json:"display_status"`
	OverdueDays   int    `json:"overdue_days"`
}

// List 账单列表：展示状态在读取时重新派生，绝不使用缓存旧值。
// displayStatus 过滤作用于派生值而非存储列
func (s *InvoiceService) List(month, displayStatus, search string, page *pagination.PageParams) ([]*InvoiceListRow, int64, error) {
	query := s.db.Model(&models.Invoice{}).
		Select("invoices.*, rooms.room_number, tenants.full_name").
		Joins("JOIN contracts ON invoices.contract_id = contracts.id").
		Joins("JOIN rooms ON contracts.room_id = rooms.id").
		Joins("JOIN tenants ON contracts.tenant_id = tenants.id")

	if month != "" {
		query = query.Where("invoices.billing_period = ?", month)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("tenants.full_name LIKE ? OR rooms.room_number LIKE ?", pattern, pattern)
	}

	var rows []*InvoiceListRow
	err := query.Order("invoices.issue_date DESC, invoices.id DESC").Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	today := time.Now()
	result := make([]*InvoiceListRow, 0, len(rows))
	for _, row := range rows {
		row.DisplayStatus = row.Invoice.DisplayStatus(today)
		row.OverdueDays = row.Invoice.OverdueDays(today)
		if displayStatus != "" && displayStatus != "all" && !matchDisplayStatus(displayStatus, row.DisplayStatus) {
			continue
		}
		result = append(result, row)
	}
	total := int64(len(result))

	// 逾期状态在读取时推导，只能在内存里过滤后再分页
	if page != nil {
		offset := page.GetOffset()
		if offset >= len(result) {
			return []*InvoiceListRow{}, total, nil
		}
		end := offset + page.GetLimit()
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, total, nil
}

func matchDisplayStatus(filter, display string) bool {
	switch filter {
	case "paid":
		return display == models.DisplayStatusPaid
	case "pending":
		return display == models.DisplayStatusUnpaid
	case "overdue":
		return display == models.DisplayStatusOverdue
	default:
		return true
	}
}

// InvoiceDetailView 账单详情
type InvoiceDetailView struct {
	models.Invoice
	RoomNumber    string `json:"room_number"`
	HouseID       uint   `json:"house_id"`
	HouseName     string `json:"house_name"`
	HouseAddress  string `json:"house_address"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	DisplayStatus string `json:"display_status"`
	OverdueDays   int    `json:"overdue_days"`
}

// GetByID 账单详情：联合同/房间/房屋/租客，明细按落库顺序返回
func (s *InvoiceService) GetByID(id uint) (*InvoiceDetailView, error) {
	var view InvoiceDetailView
	err := s.db.Model(&models.Invoice{}).
		Select(`invoices.*, rooms.room_number, rooms.house_id,
			boarding_houses.house_name, boarding_houses.address AS house_address,
			tenants.full_name, tenants.phone`).
		Joins("JOIN contracts ON invoices.contract_id = contracts.id").
		Joins("JOIN rooms ON contracts.room_id = rooms.id").
		Joins("JOIN boarding_houses ON rooms.house_id = boarding_houses.id").
		Joins("JOIN tenants ON contracts.tenant_id = tenants.id").
		Where("invoices.id = ?", id).
		Scan(&view).Error
	if err != nil {
		return nil, err
	}
	if view.ID == 0 {
		return nil, apperrors.NewNotFound("账单不存在")
	}

	var details []models.InvoiceDetail
	if err := s.db.Where("invoice_id = ?", id).Order("id").Find(&details).Error; err != nil {
		return nil, err
	}
	view.Details = details

	today := time.Now()
	view.DisplayStatus = view.Invoice.DisplayStatus(today)
	view.OverdueDays = view.Invoice.OverdueDays(today)
	return &view, nil
}

// UpdateStatus 更新支付状态。
// 置Paid时记录支付时间（幂等：重复调用仅刷新paid_date）；
// 回退Unpaid时清空支付时间
func (s *InvoiceService) UpdateStatus(id uint, status string) error {
	if status != models.InvoiceStatusPaid && status != models.InvoiceStatusUnpaid {
		return apperrors.NewValidationFailed("账单状态无效")
	}

	var invoice models.Invoice
	if err := s.db.First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("账单不存在")
		}
		return err
	}

	updates := map[string]interface{}{"status": status}
	if status == models.InvoiceStatusPaid {
		now := time.Now()
		updates["paid_date"] = &now
	} else {
		updates["paid_date"] = nil
	}
	return s.db.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error
}

// MarkPaid 标记已支付
func (s *InvoiceService) MarkPaid(id uint) error {
	return s.UpdateStatus(id, models.InvoiceStatusPaid)
}

// InvoiceStats 账单统计
type InvoiceStats struct {
	RevenueMonth  float64 `json:"revenue_month"`  // 本月已收
	PendingAmount float64 `json:"pending_amount"` // 未到期待收
	OverdueCount  int64   `json:"overdue_count"`  // 逾期账单数
}

// GetStats 账单统计：纯聚合查询
func (s *InvoiceService) GetStats() (*InvoiceStats, error) {
	stats := &InvoiceStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var revenue *float64
	err := s.db.Model(&models.Invoice{}).
		Where("status = ? AND paid_date >= ?", models.InvoiceStatusPaid, monthStart).
		Select("SUM(total_amount)").Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue != nil {
		stats.RevenueMonth = *revenue
	}

	var pending *float64
	err = s.db.Model(&models.Invoice{}).
		Where("status = ? AND due_date >= ?", models.InvoiceStatusUnpaid, today).
		Select("SUM(total_amount)").Scan(&pending).Error
	if err != nil {
		return nil, err
	}
	if pending != nil {
		stats.PendingAmount = *pending
	}

	err = s.db.Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", models.InvoiceStatusUnpaid, today).
		Count(&stats.OverdueCount).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
