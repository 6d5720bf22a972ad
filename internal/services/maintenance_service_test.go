package services

import (
	"testing"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceCreateResolvesTenantFromContract(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewMaintenanceService(db)
	request, err := svc.Create(room.ID, "空调不制冷", "开机后只有风没有冷气")
	require.NoError(t, err)

	assert.Equal(t, contract.TenantID, request.TenantID)
	assert.Equal(t, models.MaintenanceStatusNew, request.Status)
	assert.Nil(t, request.ResolvedDate)
}

func TestMaintenanceCreateRejectsVacantRoom(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")

	svc := NewMaintenanceService(db)
	_, err := svc.Create(room.ID, "水管漏水", "")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodePreconditionFailed, appErr.Code)
}

func TestMaintenanceStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	createTestContract(t, db, room.ID, "0900000001")

	svc := NewMaintenanceService(db)
	request, err := svc.Create(room.ID, "灯泡坏了", "")
	require.NoError(t, err)

	// New -> InProgress -> Completed
	require.NoError(t, svc.UpdateStatus(request.ID, models.MaintenanceStatusInProgress, ""))
	require.NoError(t, svc.UpdateStatus(request.ID, models.MaintenanceStatusCompleted, "已更换灯泡"))

	var updated models.MaintenanceRequest
	require.NoError(t, db.First(&updated, request.ID).Error)
	assert.Equal(t, models.MaintenanceStatusCompleted, updated.Status)
	require.NotNil(t, updated.ResolvedDate)
	require.NotNil(t, updated.ResolutionNote)
	assert.Equal(t, "已更换灯泡", *updated.ResolutionNote)

	// 终态不可再迁移
	err = svc.UpdateStatus(request.ID, models.MaintenanceStatusInProgress, "")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodePreconditionFailed, appErr.Code)
}

func TestMaintenanceUpdateStatusValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db)

	err := svc.UpdateStatus(1, "Fixed", "")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidParam, appErr.Code)

	err = svc.UpdateStatus(99, models.MaintenanceStatusInProgress, "")
	require.Error(t, err)
	appErr, ok = err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestMaintenanceListOrdersByStatus(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	createTestContract(t, db, room.ID, "0900000001")

	svc := NewMaintenanceService(db)
	first, err := svc.Create(room.ID, "门锁松动", "")
	require.NoError(t, err)
	second, err := svc.Create(room.ID, "热水器异响", "")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(first.ID, models.MaintenanceStatusCompleted, "已拧紧"))

	rows, err := svc.List("", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// 未处理的排前面
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
	assert.Equal(t, "101", rows[0].RoomNumber)
	assert.Equal(t, "张三", rows[0].TenantName)

	rows, err = svc.List(models.MaintenanceStatusNew, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, second.ID, rows[0].ID)

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.NewRequests)
}
