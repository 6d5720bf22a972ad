package handlers

import (
	"strconv"

	"bhms/internal/models"
	"bhms/internal/services"
	"bhms/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaintenanceHandler 报修处理器
type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

// NewMaintenanceHandler 创建报修处理器
func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// CreateMaintenanceRequest 创建工单请求。租客由房间当前合同解析
type CreateMaintenanceRequest struct {
	RoomID      uint   `json:"room_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// Create 创建报修工单
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	request, err := h.maintenanceService.Create(req.RoomID, req.Title, req.Description)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "工单创建成功", request)
}

// UpdateMaintenanceStatusRequest 更新工单状态请求
type UpdateMaintenanceStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	ResolutionNote string `json:"resolution_note"`
}

// UpdateStatus 流转工单状态
func (h *MaintenanceHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的ID")
		return
	}

	var req UpdateMaintenanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if !models.IsValidMaintenanceStatus(req.Status) {
		response.BadRequest(c, "工单状态无效")
		return
	}

	if err := h.maintenanceService.UpdateStatus(uint(id), req.Status, req.ResolutionNote); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "状态更新成功", nil)
}

// List 工单列表
func (h *MaintenanceHandler) List(c *gin.Context) {
	status := c.Query("status")
	search := c.Query("search")

	requests, err := h.maintenanceService.List(status, search)
	if err != nil {
		response.ServerError(c, "查询工单列表失败: "+err.Error())
		return
	}
	response.Success(c, requests)
}

// GetStats 工单统计
func (h *MaintenanceHandler) GetStats(c *gin.Context) {
	stats, err := h.maintenanceService.GetStats()
	if err != nil {
		response.ServerError(c, "统计查询失败: "+err.Error())
		return
	}
	response.Success(c, stats)
}
