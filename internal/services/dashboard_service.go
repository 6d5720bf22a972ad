package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"bhms/internal/models"
	"bhms/pkg/cache"
	"bhms/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DashboardService 房东工作台统计（只读聚合，短TTL缓存）
type DashboardService struct {
	db    *gorm.DB
	cache *cache.RedisCache // 可为nil（测试或未配置Redis时直接查库）
	log   *logrus.Logger
}

// NewDashboardService 创建工作台服务
func NewDashboardService(db *gorm.DB, statsCache *cache.RedisCache) *DashboardService {
	return &DashboardService{
		db:    db,
		cache: statsCache,
		log:   logger.GetLogger(),
	}
}

// DashboardStats 工作台核心指标
type DashboardStats struct {
	TotalHouses           int64   `json:"total_houses"`
	OccupancyRate         int     `json:"occupancy_rate"`
	OccupiedCount         int64   `json:"occupied_count"`
	TotalRooms            int64   `json:"total_rooms"`
	RevenueMonth          float64 `json:"revenue_month"`
	MaintenanceActive     int64   `json:"maintenance_active"`
	MaintenanceProcessing int64   `json:"maintenance_processing"`
}

// GetStats 核心指标：房屋数、出租率、本月收入、在处理工单
func (s *DashboardService) GetStats() (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		if hit, err := s.cache.GetJSON(context.Background(), "dashboard:stats", &cached); err == nil && hit {
			return &cached, nil
		}
	}

	stats := &DashboardStats{}
	s.db.Model(&models.BoardingHouse{}).Count(&stats.TotalHouses)
	s.db.Model(&models.Room{}).Count(&stats.TotalRooms)
	s.db.Model(&models.Room{}).Where("status = ?", models.RoomStatusOccupied).Count(&stats.OccupiedCount)
	if stats.TotalRooms > 0 {
		stats.OccupancyRate = int(math.Round(float64(stats.OccupiedCount) / float64(stats.TotalRooms) * 100))
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
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

	s.db.Model(&models.MaintenanceRequest{}).
		Where("status IN ?", []string{models.MaintenanceStatusNew, models.MaintenanceStatusInProgress}).
		Count(&stats.MaintenanceActive)
	s.db.Model(&models.MaintenanceRequest{}).
		Where("status = ?", models.MaintenanceStatusInProgress).
		Count(&stats.MaintenanceProcessing)

	if s.cache != nil {
		if err := s.cache.SetJSON(context.Background(), "dashboard:stats", stats); err != nil {
			s.log.Warnf("工作台统计写缓存失败: %v", err)
		}
	}
	return stats, nil
}

// RevenueChartPoint 月度收入曲线点
type RevenueChartPoint struct {
	MonthYear string  `json:"month_year"` // "08/2026"
	Total     float64 `json:"total"`
}

// GetRevenueChart 近6个月已收金额曲线
func (s *DashboardService) GetRevenueChart() ([]*RevenueChartPoint, error) {
	if s.cache != nil {
		var cached []*RevenueChartPoint
		if hit, err := s.cache.GetJSON(context.Background(), "dashboard:chart", &cached); err == nil && hit {
			return cached, nil
		}
	}

	since := time.Now().AddDate(0, -6, 0)
	var invoices []models.Invoice
	err := s.db.Where("status = ? AND paid_date >= ?", models.InvoiceStatusPaid, since).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	// 按月汇总（在应用侧分组，避免依赖方言的日期函数）
	type monthKey struct {
		year  int
		month time.Month
	}
	totals := make(map[monthKey]float64)
	for _, inv := range invoices {
		if inv.PaidDate == nil {
			continue
		}
		key := monthKey{inv.PaidDate.Year(), inv.PaidDate.Month()}
		totals[key] += inv.TotalAmount
	}

	keys := make([]monthKey, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	points := make([]*RevenueChartPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, &RevenueChartPoint{
			MonthYear: fmt.Sprintf("%02d/%d", key.month, key.year),
			Total:     totals[key],
		})
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(context.Background(), "dashboard:chart", points); err != nil {
			s.log.Warnf("收入曲线写缓存失败: %v", err)
		}
	}
	return points, nil
}

// UpcomingPaymentRow 即将到期的账单
type UpcomingPaymentRow struct {
	TotalAmount float64   `json:"total_amount"`
	DueDate     time.Time `json:"due_date"`
	RoomNumber  string    `json:"room_number"`
	FullName    string    `json:"full_name"`
}

// GetUpcomingPayments 最近5笔未支付账单
func (s *DashboardService) GetUpcomingPayments() ([]*UpcomingPaymentRow, error) {
	var rows []*UpcomingPaymentRow
	err := s.db.Model(&models.Invoice{}).
		Select("invoices.total_amount, invoices.due_date, rooms.room_number, tenants.full_name").
		Joins("JOIN contracts ON invoices.contract_id = contracts.id").
		Joins("JOIN rooms ON contracts.room_id = rooms.id").
		Joins("JOIN tenants ON contracts.tenant_id = tenants.id").
		Where("invoices.status = ?", models.InvoiceStatusUnpaid).
		Order("invoices.due_date ASC").
		Limit(5).
		Scan(&rows).Error
	return rows, err
}

// ActivityRow 近期动态（收款/报修/新签约混排）
type ActivityRow struct {
	Type       string    `json:"type"` // payment / maintenance / tenant
	CreatedAt  time.Time `json:"created_at"`
	Value      string    `json:"val"`
	FullName   string    `json:"full_name"`
	RoomNumber string    `json:"room_number"`
}

// GetActivities 近期动态：三类事件各取3条，按时间混排取前5
func (s *DashboardService) GetActivities() ([]*ActivityRow, error) {
	var activities []*ActivityRow

	var payments []*ActivityRow
	err := s.db.Model(&models.Invoice{}).
		Select(`'payment' AS type, invoices.paid_date AS created_at,
			CAST(invoices.total_amount AS TEXT) AS value, tenants.full_name, rooms.room_number`).
		Joins("JOIN contracts ON invoices.contract_id = contracts.id").
		Joins("JOIN rooms ON contracts.room_id = rooms.id").
		Joins("JOIN tenants ON contracts.tenant_id = tenants.id").
		Where("invoices.status = ?", models.InvoiceStatusPaid).
		Order("invoices.paid_date DESC").Limit(3).
		Scan(&payments).Error
	if err != nil {
		return nil, err
	}
	activities = append(activities, payments...)

	var maintenance []*ActivityRow
	err = s.db.Model(&models.MaintenanceRequest{}).
		Select(`'maintenance' AS type, maintenance_requests.request_date AS created_at,
			maintenance_requests.title AS value, tenants.full_name, rooms.room_number`).
		Joins("JOIN rooms ON maintenance_requests.room_id = rooms.id").
		Joins("JOIN tenants ON maintenance_requests.tenant_id = tenants.id").
		Order("maintenance_requests.request_date DESC").Limit(3).
		Scan(&maintenance).Error
	if err != nil {
		return nil, err
	}
	activities = append(activities, maintenance...)

	var signings []*ActivityRow
	err = s.db.Model(&models.Contract{}).
		Select(`'tenant' AS type, contracts.created_at, '' AS value, tenants.full_name, rooms.room_number`).
		Joins("JOIN rooms ON contracts.room_id = rooms.id").
		Joins("JOIN tenants ON contracts.tenant_id = tenants.id").
		Order("contracts.created_at DESC").Limit(3).
		Scan(&signings).Error
	if err != nil {
		return nil, err
	}
	activities = append(activities, signings...)

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})
	if len(activities) > 5 {
		activities = activities[:5]
	}
	return activities, nil
}

// TopPropertyRow 房屋经营概览行
type TopPropertyRow struct {
	HouseName        string  `json:"house_name"`
	TotalRooms       int64   `json:"total_rooms"`
	OccupiedRooms    int64   `json:"occupied_rooms"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
}

// GetTopProperties 房屋经营概览（前3）
func (s *DashboardService) GetTopProperties() ([]*TopPropertyRow, error) {
	var rows []*TopPropertyRow
	err := s.db.Model(&models.BoardingHouse{}).
		Select(`boarding_houses.house_name,
			(SELECT COUNT(*) FROM rooms r WHERE r.house_id = boarding_houses.id) AS total_rooms,
			(SELECT COUNT(*) FROM rooms r WHERE r.house_id = boarding_houses.id AND r.status = 'Occupied') AS occupied_rooms,
			(SELECT COALESCE(SUM(r.base_rent), 0) FROM rooms r WHERE r.house_id = boarding_houses.id AND r.status = 'Occupied') AS estimated_revenue`).
		Limit(3).
		Scan(&rows).Error
	return rows, err
}
