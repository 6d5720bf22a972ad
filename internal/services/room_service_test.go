package services

import (
	"testing"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCreateRequiresHouse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)

	_, err := svc.Create(&CreateRoomInput{HouseID: 99, RoomNumber: "101", BaseRent: 3000})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	house := createTestHouse(t, db)
	room, err := svc.Create(&CreateRoomInput{HouseID: house.ID, RoomNumber: "101", BaseRent: 3000})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusVacant, room.Status)
}

func TestRoomListIncludesCurrentTenant(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	occupied := createTestRoom(t, db, house.ID, "101")
	createTestRoom(t, db, house.ID, "102")
	createTestContract(t, db, occupied.ID, "0900000001")

	svc := NewRoomService(db)
	rows, err := svc.List(house.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byNumber := map[string]*RoomListRow{}
	for _, row := range rows {
		byNumber[row.RoomNumber] = row
	}

	require.NotNil(t, byNumber["101"].TenantName)
	assert.Equal(t, "张三", *byNumber["101"].TenantName)
	assert.NotNil(t, byNumber["101"].ContractEndDate)
	assert.Nil(t, byNumber["102"].TenantName)
}

func TestRoomUpdateRewritesServices(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")

	svc := NewRoomService(db)
	err := svc.Update(room.ID, &UpdateRoomInput{
		RoomNumber: "101A",
		BaseRent:   3200,
		Services: []*RoomServiceItem{
			{Name: "电费", Type: models.ServiceBillingMetered, Price: 4},
			{Name: "垃圾费", Type: models.ServiceBillingFlat, Price: 30},
		},
	})
	require.NoError(t, err)

	detail, err := svc.GetByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, "101A", detail.RoomNumber)
	assert.Equal(t, 3200.0, detail.BaseRent)
	assert.Len(t, detail.Services, 2)

	// 再次更新整体替换，不累加
	err = svc.Update(room.ID, &UpdateRoomInput{
		RoomNumber: "101A",
		BaseRent:   3200,
		Services: []*RoomServiceItem{
			{Name: "电费", Type: models.ServiceBillingMetered, Price: 5},
		},
	})
	require.NoError(t, err)

	detail, err = svc.GetByID(room.ID)
	require.NoError(t, err)
	require.Len(t, detail.Services, 1)
	assert.Equal(t, 5.0, detail.Services[0].Price)

	// 同名服务复用，不重复建档
	var count int64
	db.Model(&models.Service{}).Where("service_name = ?", "电费").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRoomDeleteGuards(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	room := createTestRoom(t, db, house.ID, "101")
	contract, _ := createTestContract(t, db, room.ID, "0900000001")

	svc := NewRoomService(db)
	err := svc.Delete(room.ID)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodePreconditionFailed, appErr.Code)

	// 退租后可删除
	require.NoError(t, NewContractService(db).Terminate(contract.ID))
	require.NoError(t, svc.Delete(room.ID))

	_, err = svc.GetByID(room.ID)
	require.Error(t, err)
}
