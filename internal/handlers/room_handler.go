package handlers

import (
	"strconv"

	"bhms/internal/services"
	"bhms/pkg/response"

	"github.com/gin-gonic/gin"
)

// RoomHandler 房间处理器
type RoomHandler struct {
	roomService *services.RoomService
}

// NewRoomHandler 创建房间处理器
func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// List 房间列表，可按房屋过滤；附带当前租客信息
func (h *RoomHandler) List(c *gin.Context) {
	var houseID uint
	if idStr := c.Query("house_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			response.BadRequest(c, "无效的房屋ID")
			return
		}
		houseID = uint(id)
	}

	rooms, err := h.roomService.List(houseID)
	if err != nil {
		response.ServerError(c, "查询房间列表失败: "+err.Error())
		return
	}
	response.Success(c, rooms)
}

// GetByID 房间详情，含服务定价
func (h *RoomHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的ID")
		return
	}

	room, err := h.roomService.GetByID(uint(id))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, room)
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	HouseID    uint     `json:"house_id" binding:"required"`
	RoomNumber string   `json:"room_number" binding:"required"`
	Floor      *int     `json:"floor"`
	AreaM2     *float64 `json:"area_m2"`
	BaseRent   float64  `json:"base_rent" binding:"required"`
	Facilities *string  `json:"facilities"`
}

// Create 创建房间
func (h *RoomHandler) Create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	room, err := h.roomService.Create(&services.CreateRoomInput{
		HouseID:    req.HouseID,
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
		AreaM2:     req.AreaM2,
		BaseRent:   req.BaseRent,
		Facilities: req.Facilities,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "创建成功", room)
}

// UpdateRoomRequest 更新房间请求
type UpdateRoomRequest struct {
	RoomNumber string                      `json:"room_number" binding:"required"`
	Floor      *int                        `json:"floor"`
	AreaM2     *float64                    `json:"area_m2"`
	BaseRent   float64                     `json:"base_rent" binding:"required"`
	Facilities *string                     `json:"facilities"`
	Services   []*services.RoomServiceItem `json:"services"`
}

// Update 更新房间信息与服务定价
func (h *RoomHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的ID")
		return
	}

	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	err = h.roomService.Update(uint(id), &services.UpdateRoomInput{
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
		AreaM2:     req.AreaM2,
		BaseRent:   req.BaseRent,
		Facilities: req.Facilities,
		Services:   req.Services,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// Delete 删除房间
func (h *RoomHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的ID")
		return
	}

	if err := h.roomService.Delete(uint(id)); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}
