package services

import (
	"testing"
	"time"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractCreateOccupiesRoom(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")

	contract, password := createTestContract(t, db, room.ID, "0900000001")

	assert.Equal(t, models.ContractStatusActive, contract.Status)
	assert.True(t, contract.IsCurrent)
	assert.Len(t, password, 6)

	var updated models.Room
	require.NoError(t, db.First(&updated, room.ID).Error)
	assert.Equal(t, models.RoomStatusOccupied, updated.Status)

	// 租客按手机号创建并激活
	var tenant models.Tenant
	require.NoError(t, db.Where("phone = ?", "0900000001").First(&tenant).Error)
	assert.True(t, tenant.IsActive)
	assert.Contains(t, tenant.IDCardNumber, "P_")
	assert.True(t, tenant.CheckPassword(password))
}

func TestContractCreateKeepsCallerPassword(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")

	svc := NewContractService(db)
	password, _, err := svc.Create(&CreateContractInput{
		RoomID:     room.ID,
		FullName:   "李四",
		Phone:      "0900000002",
		StartDate:  time.Now(),
		EndDate:    time.Now().AddDate(1, 0, 0),
		RentAmount: 2500,
		Password:   "mypass99",
	})
	require.NoError(t, err)
	assert.Equal(t, "mypass99", password)
}

func TestContractCreateRejectsOccupiedRoom(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	createTestContract(t, db, room.ID, "0900000001")

	svc := NewContractService(db)
	_, _, err := svc.Create(&CreateContractInput{
		RoomID:     room.ID,
		FullName:   "王五",
		Phone:      "0900000003",
		StartDate:  time.Now(),
		EndDate:    time.Now().AddDate(1, 0, 0),
		RentAmount: 2500,
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodePreconditionFailed, appErr.Code)

	// 失败后不留下多余合同
	var count int64
	db.Model(&models.Contract{}).Where("room_id = ?", room.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestContractCreateRejectsMissingRoom(t *testing.T) {
	db := setupTestDB(t)

	svc := NewContractService(db)
	_, _, err := svc.Create(&CreateContractInput{
		RoomID:     999,
		FullName:   "王五",
		Phone:      "0900000003",
		StartDate:  time.Now(),
		EndDate:    time.Now().AddDate(1, 0, 0),
		RentAmount: 2500,
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestContractCreateReactivatesReturningTenant(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")

	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewContractService(db)
	require.NoError(t, svc.Terminate(contract.ID))

	var tenant models.Tenant
	require.NoError(t, db.Where("phone = ?", "0900000001").First(&tenant).Error)
	assert.False(t, tenant.IsActive)

	// 老租客回头签约同一手机号，不产生新档案
	room2 := createTestRoom(t, db, house.ID, "102")
	createTestContract(t, db, room2.ID, "0900000001")

	var count int64
	db.Model(&models.Tenant{}).Where("phone = ?", "0900000001").Count(&count)
	assert.Equal(t, int64(1), count)

	require.NoError(t, db.Where("phone = ?", "0900000001").First(&tenant).Error)
	assert.True(t, tenant.IsActive)
}

func TestContractTerminateReleasesRoomAndTenant(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewContractService(db)
	require.NoError(t, svc.Terminate(contract.ID))

	var updated models.Contract
	require.NoError(t, db.First(&updated, contract.ID).Error)
	assert.Equal(t, models.ContractStatusTerminated, updated.Status)
	assert.False(t, updated.IsCurrent)

	var updatedRoom models.Room
	require.NoError(t, db.First(&updatedRoom, room.ID).Error)
	assert.Equal(t, models.RoomStatusVacant, updatedRoom.Status)

	var tenant models.Tenant
	require.NoError(t, db.First(&tenant, contract.TenantID).Error)
	assert.False(t, tenant.IsActive)
}

func TestContractTerminateKeepsTenantActiveWhileOtherContractAlive(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room1 := createTestRoom(t, db, house.ID, "101")
	room2 := createTestRoom(t, db, house.ID, "102")

	contract1, _ := createTestContract(t, db, room1.ID, "0900000001")
	contract2, _ := createTestContract(t, db, room2.ID, "0900000001")
	require.Equal(t, contract1.TenantID, contract2.TenantID)

	svc := NewContractService(db)
	require.NoError(t, svc.Terminate(contract1.ID))

	var tenant models.Tenant
	require.NoError(t, db.First(&tenant, contract1.TenantID).Error)
	assert.True(t, tenant.IsActive)

	require.NoError(t, svc.Terminate(contract2.ID))
	require.NoError(t, db.First(&tenant, contract1.TenantID).Error)
	assert.False(t, tenant.IsActive)
}

func TestContractTerminateMissing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db)
	err := svc.Terminate(42)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestContractExpireOverdue(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	// 把合同终点改到过去
	require.NoError(t, db.Model(&models.Contract{}).Where("id = ?", contract.ID).
		Update("end_date", time.Now().AddDate(0, 0, -2)).Error)

	svc := NewContractService(db)
	count, err := svc.ExpireOverdue(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var updated models.Contract
	require.NoError(t, db.First(&updated, contract.ID).Error)
	assert.Equal(t, models.ContractStatusExpired, updated.Status)
	assert.False(t, updated.IsCurrent)

	var updatedRoom models.Room
	require.NoError(t, db.First(&updatedRoom, room.ID).Error)
	assert.Equal(t, models.RoomStatusVacant, updatedRoom.Status)

	// 再次扫描没有可处理的合同
	count, err = svc.ExpireOverdue(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestContractExpireKeepsFinalDayActive(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	// 合同今天零点到期：最后一天内不应被清扫
	now := time.Now()
	endDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	require.NoError(t, db.Model(&models.Contract{}).Where("id = ?", contract.ID).
		Update("end_date", endDate).Error)

	svc := NewContractService(db)
	count, err := svc.ExpireOverdue(now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	var kept models.Contract
	require.NoError(t, db.First(&kept, contract.ID).Error)
	assert.Equal(t, models.ContractStatusActive, kept.Status)

	// 次日清扫才过期
	count, err = svc.ExpireOverdue(now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestContractUpdateSyncsTenantIdentity(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewContractService(db)
	err := svc.Update(contract.ID, &UpdateContractInput{
		StartDate:    contract.StartDate,
		EndDate:      contract.EndDate,
		RentAmount:   3500,
		FullName:     "张三丰",
		Phone:        "0900000009",
		IDCardNumber: "123456789",
		Password:     "newpass66",
	})
	require.NoError(t, err)

	var updated models.Contract
	require.NoError(t, db.First(&updated, contract.ID).Error)
	assert.Equal(t, 3500.0, updated.RentAmount)

	var tenant models.Tenant
	require.NoError(t, db.First(&tenant, contract.TenantID).Error)
	assert.Equal(t, "张三丰", tenant.FullName)
	assert.Equal(t, "0900000009", tenant.Phone)
	assert.Equal(t, "123456789", tenant.IDCardNumber)
	assert.True(t, tenant.CheckPassword("newpass66"))
}

func TestContractGetByIDResolvesRoomServices(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	elec := &models.Service{ServiceName: "电费", ServiceType: models.ServiceBillingMetered}
	require.NoError(t, db.Create(elec).Error)
	trash := &models.Service{ServiceName: "垃圾费", ServiceType: models.ServiceBillingFlat}
	require.NoError(t, db.Create(trash).Error)

	// 房屋级定价
	require.NoError(t, db.Create(&models.HouseService{HouseID: house.ID, ServiceID: elec.ID, Price: 4}).Error)
	require.NoError(t, db.Create(&models.HouseService{HouseID: house.ID, ServiceID: trash.ID, Price: 30}).Error)

	svc := NewContractService(db)
	detail, err := svc.GetByID(contract.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Services, 2)

	// 房间级定价存在时整体覆盖房屋级，不做逐项合并
	require.NoError(t, db.Create(&models.RoomService{RoomID: room.ID, ServiceID: elec.ID, Price: 5}).Error)

	detail, err = svc.GetByID(contract.ID)
	require.NoError(t, err)
	require.Len(t, detail.Services, 1)
	assert.Equal(t, 5.0, detail.Services[0].UnitPrice)
}

func TestContractListFiltersAndPaymentStatus(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	invoiceSvc := NewInvoiceService(db)
	_, err := invoiceSvc.Create(&CreateInvoiceInput{
		ContractID:    contract.ID,
		InvoiceType:   models.InvoiceTypeMonthly,
		BillingPeriod: "2026-08",
		DueDate:       time.Now().AddDate(0, 0, 10),
		RoomRent:      3000,
	})
	require.NoError(t, err)

	svc := NewContractService(db)
	rows, err := svc.List(models.ContractStatusActive, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "101", rows[0].RoomNumber)
	require.NotNil(t, rows[0].PaymentStatus)
	assert.Equal(t, models.InvoiceStatusUnpaid, *rows[0].PaymentStatus)

	rows, err = svc.List(models.ContractStatusTerminated, "")
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = svc.List("", "张三")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
