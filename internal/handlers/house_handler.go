package handlers

import (
	"strconv"

	"bhms/internal/services"
	"bhms/pkg/jwt"
	"bhms/pkg/response"

	"github.com/gin-gonic/gin"
)

// HouseHandler 房屋处理器
type HouseHandler struct {
	houseService *services.HouseService
}

// NewHouseHandler 创建房屋处理器
func NewHouseHandler(houseService *services.HouseService) *HouseHandler {
	return &HouseHandler{houseService: houseService}
}

// List 房屋列表，附带各房屋当月已收租金
func (h *HouseHandler) List(c *gin.Context) {
	houses, err := h.houseService.List()
	if err != nil {
		response.ServerError(c, "查询房屋列表失败: "+err.Error())
		return
	}

	type houseRow struct {
		ID             uint    `json:"id"`
		HouseName      string  `json:"house_name"`
		Address        string  `json:"address"`
		Description    *string `json:"description"`
		RoomCount      int     `json:"room_count"`
		MonthlyRevenue float64 `json:"monthly_revenue"`
	}

	rows := make([]houseRow, 0, len(houses))
	for _, house := range houses {
		revenue, err := h.houseService.GetMonthlyRevenue(house.ID)
		if err != nil {
			response.ServerError(c, "统计房屋收入失败: "+err.Error())
			return
		}
		rows = append(rows, houseRow{
			ID:             house.ID,
			HouseName:      house.HouseName,
			Address:        house.Address,
			Description:    house.Description,
			RoomCount:      len(house.Rooms),
			MonthlyRevenue: revenue,
		})
	}

	response.Success(c, rows)
}

// CreateHouseRequest 创建房屋请求
type CreateHouseRequest struct {
	HouseName   string  `json:"house_name" binding:"required"`
	Address     string  `json:"address" binding:"required"`
	Description *string `json:"description"`
}

// Create 创建房屋
func (h *HouseHandler) Create(c *gin.Context) {
	var req CreateHouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	claims, _ := c.Get("claims")
	userClaims := claims.(*jwt.JWTClaims)

	house, err := h.houseService.Create(userClaims.UserID, req.HouseName, req.Address, req.Description)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", house)
}

// GetRevenue 单个房屋的月租金合计
func (h *HouseHandler) GetRevenue(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的ID")
		return
	}

	revenue, err := h.houseService.GetMonthlyRevenue(uint(id))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"monthly_revenue": revenue})
}

// GetStats 房屋总览统计
func (h *HouseHandler) GetStats(c *gin.Context) {
	stats, err := h.houseService.GetStats()
	if err != nil {
		response.ServerError(c, "统计查询失败: "+err.Error())
		return
	}
	response.Success(c, stats)
}
