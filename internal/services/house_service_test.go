package services

import (
	"testing"
	"time"

	"bhms/internal/models"
	apperrors "bhms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHouseCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	landlord := &models.Landlord{FullName: "陈老板", Phone: "0988888888"}
	require.NoError(t, landlord.SetPassword("secret123"))
	require.NoError(t, db.Create(landlord).Error)

	svc := NewHouseService(db)
	description := "近地铁站"
	house, err := svc.Create(landlord.ID, "阳光公寓", "中山路88号", &description)
	require.NoError(t, err)
	assert.Equal(t, landlord.ID, house.LandlordID)

	createTestRoom(t, db, house.ID, "101")
	createTestRoom(t, db, house.ID, "102")

	houses, err := svc.List()
	require.NoError(t, err)
	require.Len(t, houses, 1)
	assert.Len(t, houses[0].Rooms, 2)
}

func TestHouseStatsAndRevenue(t *testing.T) {
	db := setupTestDB(t)
	house := createTestHouse(t, db)
	occupied := createTestRoom(t, db, house.ID, "101")
	createTestRoom(t, db, house.ID, "102")
	contract, _ := createTestContract(t, db, occupied.ID, "0900000001")

	invoiceSvc := NewInvoiceService(db)
	invoice, err := invoiceSvc.Create(&CreateInvoiceInput{
		ContractID:  contract.ID,
		InvoiceType: models.InvoiceTypeIncidental,
		DueDate:     time.Now().AddDate(0, 0, 5),
		RoomRent:    3000,
	})
	require.NoError(t, err)
	require.NoError(t, invoiceSvc.MarkPaid(invoice.ID))

	svc := NewHouseService(db)
	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRooms)
	assert.Equal(t, int64(1), stats.Occupied)
	assert.Equal(t, int64(1), stats.Vacant)

	// 两间房底租合计
	revenue, err := svc.GetMonthlyRevenue(house.ID)
	require.NoError(t, err)
	assert.Equal(t, 6000.0, revenue)
}

func TestHouseRevenueMissingHouse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewHouseService(db)

	_, err := svc.GetMonthlyRevenue(999)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
