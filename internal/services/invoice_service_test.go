package services

import (
	"testing"
	"time"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"
	"bhms/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

func TestInvoiceCreateComputesMeteredAmounts(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewInvoiceService(db)
	invoice, err := svc.Create(&CreateInvoiceInput{
		ContractID:    contract.ID,
		InvoiceType:   models.InvoiceTypeMonthly,
		BillingPeriod: "2026-08",
		DueDate:       time.Now().AddDate(0, 0, 10),
		RoomRent:      3000,
		Items: []InvoiceItemInput{
			{
				ServiceType:     models.ServiceTypeElectricity,
				ServiceName:     "电费",
				PreviousReading: float64Ptr(100),
				CurrentReading:  float64Ptr(150),
				UnitPrice:       4,
			},
			{
				ServiceType: models.ServiceTypeOther,
				ServiceName: "垃圾费",
				Amount:      30,
			},
		},
	})
	require.NoError(t, err)

	// 50度 * 4 = 200；总额 = 3000 + 200 + 30
	require.Len(t, invoice.Details, 2)
	assert.Equal(t, 200.0, invoice.Details[0].Amount)
	assert.Equal(t, 30.0, invoice.Details[1].Amount)
	assert.Equal(t, 3230.0, invoice.TotalAmount)
	assert.Equal(t, models.InvoiceStatusUnpaid, invoice.Status)
}

func TestInvoiceCreateClampsNegativeUsage(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewInvoiceService(db)
	invoice, err := svc.Create(&CreateInvoiceInput{
		ContractID:    contract.ID,
		InvoiceType:   models.InvoiceTypeMonthly,
		BillingPeriod: "2026-08",
		DueDate:       time.Now().AddDate(0, 0, 10),
		RoomRent:      3000,
		Items: []InvoiceItemInput{
			{
				ServiceType:     models.ServiceTypeWater,
				ServiceName:     "水费",
				PreviousReading: float64Ptr(80), // 换表导致本期读数小于上期
				CurrentReading:  float64Ptr(20),
				UnitPrice:       10,
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, invoice.Details[0].Amount)
	assert.Equal(t, 3000.0, invoice.TotalAmount)
}

func TestInvoiceCreateRejectsMismatchedTotal(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewInvoiceService(db)
	_, err := svc.Create(&CreateInvoiceInput{
		ContractID:    contract.ID,
		InvoiceType:   models.InvoiceTypeMonthly,
		BillingPeriod: "2026-08",
		DueDate:       time.Now().AddDate(0, 0, 10),
		RoomRent:      3000,
		TotalAmount:   9999, // 与引擎计算不符
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidParam, appErr.Code)

	// 拒绝时不落库
	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestInvoiceCreateAcceptsMatchingTotal(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewInvoiceService(db)
	invoice, err := svc.Create(&CreateInvoiceInput{
		ContractID:    contract.ID,
		InvoiceType:   models.InvoiceTypeMonthly,
		BillingPeriod: "2026-08",
		DueDate:       time.Now().AddDate(0, 0, 10),
		RoomRent:      3000,
		TotalAmount:   3030.005, // 容差内
		Items: []InvoiceItemInput{
			{ServiceType: models.ServiceTypeOther, ServiceName: "垃圾费", Amount: 30},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3030.0, invoice.TotalAmount)
}

func TestInvoiceCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)

	_, err := svc.Create(&CreateInvoiceInput{
		ContractID:  1,
		InvoiceType: "Weekly",
		DueDate:     time.Now(),
	})
	require.Error(t, err)

	_, err = svc.Create(&CreateInvoiceInput{
		ContractID:  1,
		InvoiceType: models.InvoiceTypeMonthly, // 缺账期
		DueDate:     time.Now(),
	})
	require.Error(t, err)

	_, err = svc.Create(&CreateInvoiceInput{
		ContractID:  999,
		InvoiceType: models.InvoiceTypeIncidental,
		DueDate:     time.Now(),
	})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestInvoiceIncidentalStoresNullPeriod(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewInvoiceService(db)
	// 调用方误带账期也不落库
	invoice, err := svc.Create(&CreateInvoiceInput{
		ContractID:    contract.ID,
		InvoiceType:   models.InvoiceTypeIncidental,
		BillingPeriod: "2026-08",
		DueDate:       time.Now().AddDate(0, 0, 7),
		RoomRent:      500,
	})
	require.NoError(t, err)
	assert.Nil(t, invoice.BillingPeriod)

	var stored models.Invoice
	require.NoError(t, db.First(&stored, invoice.ID).Error)
	assert.Nil(t, stored.BillingPeriod)
}

func TestInvoiceListDerivesDisplayStatus(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewInvoiceService(db)

	// 已逾期：昨天到期
	overdue, err := svc.Create(&CreateInvoiceInput{
		ContractID:    contract.ID,
		InvoiceType:   models.InvoiceTypeMonthly,
		BillingPeriod: "2026-07",
		DueDate:       time.Now().AddDate(0, 0, -1),
		RoomRent:      3000,
	})
	require.NoError(t, err)

	// 未到期
	pending, err := svc.Create(&CreateInvoiceInput{
		ContractID:    contract.ID,
		InvoiceType:   models.InvoiceTypeMonthly,
		BillingPeriod: "2026-08",
		DueDate:       time.Now().AddDate(0, 0, 10),
		RoomRent:      3000,
	})
	require.NoError(t, err)

	// 已支付（即便已过期也显示Paid）
	paid, err := svc.Create(&CreateInvoiceInput{
		ContractID:    contract.ID,
		InvoiceType:   models.InvoiceTypeMonthly,
		BillingPeriod: "2026-06",
		DueDate:       time.Now().AddDate(0, 0, -30),
		RoomRent:      3000,
	})
	require.NoError(t, err)
	require.NoError(t, svc.MarkPaid(paid.ID))

	rows, total, err := svc.List("", "", "", nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(3), total)

	byID := map[uint]*InvoiceListRow{}
	for _, row := range rows {
		byID[row.ID] = row
	}

	assert.Equal(t, models.DisplayStatusOverdue, byID[overdue.ID].DisplayStatus)
	assert.Equal(t, 1, byID[overdue.ID].OverdueDays)
	assert.Equal(t, models.DisplayStatusUnpaid, byID[pending.ID].DisplayStatus)
	assert.Equal(t, 0, byID[pending.ID].OverdueDays)
	assert.Equal(t, models.DisplayStatusPaid, byID[paid.ID].DisplayStatus)
	assert.Equal(t, 0, byID[paid.ID].OverdueDays)

	// 派生状态过滤
	rows, total, err = svc.List("", "overdue", "", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, overdue.ID, rows[0].ID)

	rows, _, err = svc.List("2026-08", "", "", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)

	// 分页：过滤后的结果切片，总数不受页大小影响
	rows, total, err = svc.List("", "", "", &pagination.PageParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), total)
}

func TestInvoiceUpdateStatusIdempotentPaid(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewInvoiceService(db)
	invoice, err := svc.Create(&CreateInvoiceInput{
		ContractID:  contract.ID,
		InvoiceType: models.InvoiceTypeIncidental,
		DueDate:     time.Now().AddDate(0, 0, 5),
		RoomRent:    500,
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(invoice.ID))

	var paid models.Invoice
	require.NoError(t, db.First(&paid, invoice.ID).Error)
	assert.Equal(t, models.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)

	// 重复标记不报错
	require.NoError(t, svc.MarkPaid(invoice.ID))

	// 回退Unpaid清空支付时间
	require.NoError(t, svc.UpdateStatus(invoice.ID, models.InvoiceStatusUnpaid))
	var reverted models.Invoice
	require.NoError(t, db.First(&reverted, invoice.ID).Error)
	assert.Equal(t, models.InvoiceStatusUnpaid, reverted.Status)
	assert.Nil(t, reverted.PaidDate)
}

func TestInvoiceGetByIDReturnsOrderedDetails(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewInvoiceService(db)
	invoice, err := svc.Create(&CreateInvoiceInput{
		ContractID:    contract.ID,
		InvoiceType:   models.InvoiceTypeMonthly,
		BillingPeriod: "2026-08",
		DueDate:       time.Now().AddDate(0, 0, 10),
		RoomRent:      3000,
		Items: []InvoiceItemInput{
			{ServiceType: models.ServiceTypeElectricity, ServiceName: "电费", PreviousReading: float64Ptr(0), CurrentReading: float64Ptr(10), UnitPrice: 4},
			{ServiceType: models.ServiceTypeWater, ServiceName: "水费", PreviousReading: float64Ptr(0), CurrentReading: float64Ptr(2), UnitPrice: 10},
		},
	})
	require.NoError(t, err)

	view, err := svc.GetByID(invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "101", view.RoomNumber)
	assert.Equal(t, "测试公寓", view.HouseName)
	assert.Equal(t, "张三", view.FullName)
	require.Len(t, view.Details, 2)
	assert.Equal(t, models.ServiceTypeElectricity, view.Details[0].ServiceType)
	assert.Equal(t, models.ServiceTypeWater, view.Details[1].ServiceType)

	_, err = svc.GetByID(999)
	require.Error(t, err)
}

func TestInvoiceStats(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewInvoiceService(db)

	paid, err := svc.Create(&CreateInvoiceInput{
		ContractID:  contract.ID,
		InvoiceType: models.InvoiceTypeIncidental,
		DueDate:     time.Now().AddDate(0, 0, 5),
		RoomRent:    1000,
	})
	require.NoError(t, err)
	require.NoError(t, svc.MarkPaid(paid.ID))

	_, err = svc.Create(&CreateInvoiceInput{
		ContractID:  contract.ID,
		InvoiceType: models.InvoiceTypeIncidental,
		DueDate:     time.Now().AddDate(0, 0, 5),
		RoomRent:    2000,
	})
	require.NoError(t, err)

	_, err = svc.Create(&CreateInvoiceInput{
		ContractID:  contract.ID,
		InvoiceType: models.InvoiceTypeIncidental,
		DueDate:     time.Now().AddDate(0, 0, -3),
		RoomRent:    1500,
	})
	require.NoError(t, err)

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1000.0, stats.RevenueMonth)
	assert.Equal(t, 2000.0, stats.PendingAmount)
	assert.Equal(t, int64(1), stats.OverdueCount)
}
