package services

import (
	"errors"
	"time"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"

	"gorm.io/gorm"
)

// TenantPortalService 租客端只读视图。
// 所有查询都以已认证租客ID为范围，不信任请求中的租客参数
type TenantPortalService struct {
	db *gorm.DB
}

// NewTenantPortalService 创建租客端服务
func NewTenantPortalService(db *gorm.DB) *TenantPortalService {
	return &TenantPortalService{db: db}
}

// PortalOverview 当前租住概览
type PortalOverview struct {
	ContractID uint `json:"contract_id"`
	Room       struct {
		RoomID     uint     `json:"room_id"`
		RoomNumber string   `json:"room_number"`
		Floor      *int     `json:"floor"`
		AreaM2     *float64 `json:"area_m2"`
		BaseRent   float64  `json:"base_rent"`
		Facilities *string  `json:"facilities"`
	} `json:"room"`
	House struct {
		HouseID   uint   `json:"house_id"`
		HouseName string `json:"house_name"`
		Address   string `json:"address"`
	} `json:"house"`
	Contract struct {
		StartDate     time.Time `json:"start_date"`
		EndDate       time.Time `json:"end_date"`
		RentAmount    float64   `json:"rent_amount"`
		DepositAmount float64   `json:"deposit_amount"`
		Status        string    `json:"status"`
	} `json:"contract"`
}

// GetOverview 当前租住概览：最近一份生效合同（可按房间过滤）
func (s *TenantPortalService) GetOverview(tenantID, roomID uint) (*PortalOverview, error) {
	query := s.db.Model(&models.Contract{}).
		Preload("Room").Preload("Room.House").
		Where("tenant_id = ? AND status = ? AND is_current = ?",
			tenantID, models.ContractStatusActive, true)
	if roomID != 0 {
		query = query.Where("room_id = ?", roomID)
	}

	var contract models.Contract
	err := query.Order("start_date DESC").First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("没有正在租住的房间")
		}
		return nil, err
	}

	overview := &PortalOverview{ContractID: contract.ID}
	if contract.Room != nil {
		overview.Room.RoomID = contract.Room.ID
		overview.Room.RoomNumber = contract.Room.RoomNumber
		overview.Room.Floor = contract.Room.Floor
		overview.Room.AreaM2 = contract.Room.AreaM2
		overview.Room.BaseRent = contract.Room.BaseRent
		overview.Room.Facilities = contract.Room.Facilities
		if contract.Room.House != nil {
			overview.House.HouseID = contract.Room.House.ID
			overview.House.HouseName = contract.Room.House.HouseName
			overview.House.Address = contract.Room.House.Address
		}
	}
	overview.Contract.StartDate = contract.StartDate
	overview.Contract.EndDate = contract.EndDate
	overview.Contract.RentAmount = contract.RentAmount
	overview.Contract.DepositAmount = contract.DepositAmount
	overview.Contract.Status = contract.Status
	return overview, nil
}

// PortalRoomRow 租客名下的房间行
type PortalRoomRow struct {
	ContractID uint      `json:"contract_id"`
	RoomID     uint      `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	Floor      *int      `json:"floor"`
	HouseName  string    `json:"house_name"`
	Address    string    `json:"address"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Status     string    `json:"status"`
	IsCurrent  bool      `json:"is_current"`
}

// ListRooms 租客名下所有生效合同对应的房间
func (s *TenantPortalService) ListRooms(tenantID uint) ([]*PortalRoomRow, error) {
	var rows []*PortalRoomRow
	err := s.db.Model(&models.Contract{}).
		Select(`contracts.id AS contract_id, rooms.id AS room_id, rooms.room_number, rooms.floor,
			boarding_houses.house_name, boarding_houses.address,
			contracts.start_date, contracts.end_date, contracts.status, contracts.is_current`).
		Joins("JOIN rooms ON contracts.room_id = rooms.id").
		Joins("JOIN boarding_houses ON rooms.house_id = boarding_houses.id").
		Where("contracts.tenant_id = ? AND contracts.status = ?", tenantID, models.ContractStatusActive).
		Order("contracts.is_current DESC, contracts.start_date DESC").
		Scan(&rows).Error
	return rows, err
}

// MonthlyExpense 月度支出点
type MonthlyExpense struct {
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	TotalExpense float64 `json:"total_expense"`
	InvoiceCount int     `json:"invoice_count"`
}

// GetMonthlyExpenses 近12个月支出序列（缺月补零）
func (s *TenantPortalService) GetMonthlyExpenses(tenantID, roomID uint) ([]*MonthlyExpense, error) {
	yearStart := time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.Local)

	query := s.db.Model(&models.Invoice{}).
		Joins("JOIN contracts ON invoices.contract_id = contracts.id").
		Where("contracts.tenant_id = ? AND invoices.issue_date >= ?", tenantID, yearStart)
	if roomID != 0 {
		query = query.Where("contracts.room_id = ?", roomID)
	}

	var invoices []models.Invoice
	if err := query.Select("invoices.*").Find(&invoices).Error; err != nil {
		return nil, err
	}

	type monthKey struct {
		year  int
		month int
	}
	totals := make(map[monthKey]*MonthlyExpense)
	for _, inv := range invoices {
		key := monthKey{inv.IssueDate.Year(), int(inv.IssueDate.Month())}
		if totals[key] == nil {
			totals[key] = &MonthlyExpense{Month: key.month, Year: key.year}
		}
		totals[key].TotalExpense += inv.TotalAmount
		totals[key].InvoiceCount++
	}

	// 补齐为连续12个月
	now := time.Now()
	months := make([]*MonthlyExpense, 0, 12)
	for i := 11; i >= 0; i-- {
		point := now.AddDate(0, -i, 0)
		key := monthKey{point.Year(), int(point.Month())}
		if data, ok := totals[key]; ok {
			months = append(months, data)
		} else {
			months = append(months, &MonthlyExpense{Month: key.month, Year: key.year})
		}
	}
	return months, nil
}

// UtilityUsagePoint 月度用量点
type UtilityUsagePoint struct {
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	Usage        float64 `json:"usage"`
	ReadingCount int     `json:"reading_count"`
}

// UtilityUsage 电/水用量序列
type UtilityUsage struct {
	Electricity []*UtilityUsagePoint `json:"electricity"`
	Water       []*UtilityUsagePoint `json:"water"`
}

// GetUtilityUsage 近6个月电、水用量。
// 明细按显式 service_type 区分，不再依赖行序
func (s *TenantPortalService) GetUtilityUsage(tenantID, roomID uint) (*UtilityUsage, error) {
	since := time.Now().AddDate(0, -6, 0)

	query := s.db.Model(&models.InvoiceDetail{}).
		Select("invoice_details.*, invoices.issue_date").
		Joins("JOIN invoices ON invoice_details.invoice_id = invoices.id").
		Joins("JOIN contracts ON invoices.contract_id = contracts.id").
		Where(`contracts.tenant_id = ? AND invoices.issue_date >= ?
			AND invoice_details.service_type IN ?
			AND invoice_details.previous_reading IS NOT NULL
			AND invoice_details.current_reading IS NOT NULL`,
			tenantID, since, []string{models.ServiceTypeElectricity, models.ServiceTypeWater})
	if roomID != 0 {
		query = query.Where("contracts.room_id = ?", roomID)
	}

	type usageRow struct {
		models.InvoiceDetail
		IssueDate time.Time
	}
	var rows []usageRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	type monthKey struct {
		year  int
		month int
	}
	elec := make(map[monthKey]*UtilityUsagePoint)
	water := make(map[monthKey]*UtilityUsagePoint)
	for _, row := range rows {
		key := monthKey{row.IssueDate.Year(), int(row.IssueDate.Month())}
		target := elec
		if row.ServiceType == models.ServiceTypeWater {
			target = water
		}
		if target[key] == nil {
			target[key] = &UtilityUsagePoint{Month: key.month, Year: key.year}
		}
		target[key].Usage += row.Usage()
		target[key].ReadingCount++
	}

	fill := func(data map[monthKey]*UtilityUsagePoint) []*UtilityUsagePoint {
		now := time.Now()
		series := make([]*UtilityUsagePoint, 0, 6)
		for i := 5; i >= 0; i-- {
			point := now.AddDate(0, -i, 0)
			key := monthKey{point.Year(), int(point.Month())}
			if p, ok := data[key]; ok {
				series = append(series, p)
			} else {
				series = append(series, &UtilityUsagePoint{Month: key.month, Year: key.year})
			}
		}
		return series
	}

	return &UtilityUsage{
		Electricity: fill(elec),
		Water:       fill(water),
	}, nil
}

// RecentPaymentRow 近期支付记录
type RecentPaymentRow struct {
	InvoiceID     uint       `json:"invoice_id"`
	BillingPeriod *string    `json:"billing_period"`
	IssueDate     time.Time  `json:"issue_date"`
	PaidDate      *time.Time `json:"paid_date"`
	TotalAmount   float64    `json:"total_amount"`
	Status        string     `json:"status"`
	RoomNumber    string     `json:"room_number"`
	HouseName     string     `json:"house_name"`
}

// GetRecentPayments 近期已支付账单
func (s *TenantPortalService) GetRecentPayments(tenantID, roomID uint, limit int) ([]*RecentPaymentRow, error) {
	if limit <= 0 {
		limit = 5
	}

	query := s.db.Model(&models.Invoice{}).
		Select(`invoices.id AS invoice_id, invoices.billing_period, invoices.issue_date,
			invoices.paid_date, invoices.total_amount, invoices.status,
			rooms.room_number, boarding_houses.house_name`).
		Joins("JOIN contracts ON invoices.contract_id = contracts.id").
		Joins("JOIN rooms ON contracts.room_id = rooms.id").
		Joins("JOIN boarding_houses ON rooms.house_id = boarding_houses.id").
		Where("contracts.tenant_id = ? AND invoices.status = ?", tenantID, models.InvoiceStatusPaid)
	if roomID != 0 {
		query = query.Where("contracts.room_id = ?", roomID)
	}

	var rows []*RecentPaymentRow
	err := query.Order("invoices.paid_date DESC").Limit(limit).Scan(&rows).Error
	return rows, err
}

// ListMaintenanceRequests 租客名下的报修工单
func (s *TenantPortalService) ListMaintenanceRequests(tenantID, roomID uint, status string, limit int) ([]*MaintenanceListRow, error) {
	if limit <= 0 {
		limit = 10
	}

	query := s.db.Model(&models.MaintenanceRequest{}).
		Select(`maintenance_requests.*, rooms.room_number,
			boarding_houses.house_name, tenants.full_name AS tenant_name`).
		Joins("JOIN rooms ON maintenance_requests.room_id = rooms.id").
		Joins("JOIN boarding_houses ON rooms.house_id = boarding_houses.id").
		Joins("JOIN tenants ON maintenance_requests.tenant_id = tenants.id").
		Where("maintenance_requests.tenant_id = ?", tenantID)
	if roomID != 0 {
		query = query.Where("maintenance_requests.room_id = ?", roomID)
	}
	if status != "" && status != "all" {
		query = query.Where("maintenance_requests.status = ?", status)
	}

	var rows []*MaintenanceListRow
	err := query.Order("maintenance_requests.request_date DESC").Limit(limit).Scan(&rows).Error
	return rows, err
}

// 下一笔支付的紧迫程度
const (
	PaymentStatusOnTime  = "on_time"
	PaymentStatusDueSoon = "due_soon"
	PaymentStatusOverdue = "overdue"
)

// NextPaymentView 下一笔待支付账单
type NextPaymentView struct {
	InvoiceID     uint      `json:"invoice_id"`
	BillingPeriod *string   `json:"billing_period"`
	IssueDate     time.Time `json:"issue_date"`
	DueDate       time.Time `json:"due_date"`
	TotalAmount   float64   `json:"total_amount"`
	RoomRent      float64   `json:"room_rent"`
	Status        string    `json:"status"`
	RoomID        uint      `json:"room_id"`
	RoomNumber    string    `json:"room_number"`
	HouseName     string    `json:"house_name"`
	DaysUntilDue  int       `json:"days_until_due"`
	PaymentStatus string    `json:"payment_status"`
}

// GetNextPayment 最近一笔未支付账单；没有时返回nil
func (s *TenantPortalService) GetNextPayment(tenantID, roomID uint) (*NextPaymentView, error) {
	query := s.db.Model(&models.Invoice{}).
		Select(`invoices.id AS invoice_id, invoices.billing_period, invoices.issue_date,
			invoices.due_date, invoices.total_amount, invoices.room_rent, invoices.status,
			rooms.id AS room_id, rooms.room_number, boarding_houses.house_name`).
		Joins("JOIN contracts ON invoices.contract_id = contracts.id").
		Joins("JOIN rooms ON contracts.room_id = rooms.id").
		Joins("JOIN boarding_houses ON rooms.house_id = boarding_houses.id").
		Where("contracts.tenant_id = ? AND invoices.status = ?", tenantID, models.InvoiceStatusUnpaid)
	if roomID != 0 {
		query = query.Where("contracts.room_id = ?", roomID)
	}

	var view NextPaymentView
	err := query.Order("invoices.due_date ASC").Limit(1).Scan(&view).Error
	if err != nil {
		return nil, err
	}
	if view.InvoiceID == 0 {
		return nil, nil
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := time.Date(view.DueDate.Year(), view.DueDate.Month(), view.DueDate.Day(), 0, 0, 0, 0, view.DueDate.Location())
	view.DaysUntilDue = int(due.Sub(today).Hours() / 24)

	switch {
	case view.DaysUntilDue < 0:
		view.PaymentStatus = PaymentStatusOverdue
	case view.DaysUntilDue <= 3:
		view.PaymentStatus = PaymentStatusDueSoon
	default:
		view.PaymentStatus = PaymentStatusOnTime
	}
	return &view, nil
}
