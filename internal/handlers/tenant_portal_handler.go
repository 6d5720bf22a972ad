package handlers

import (
	"strconv"

	"bhms/internal/services"
	"bhms/pkg/response"

	"github.com/gin-gonic/gin"
)

// TenantPortalHandler 租客端处理器。
// 租客ID一律取自Token，不接受请求参数
type TenantPortalHandler struct {
	portalService      *services.TenantPortalService
	maintenanceService *services.MaintenanceService
}

// NewTenantPortalHandler 创建租客端处理器
func NewTenantPortalHandler(portalService *services.TenantPortalService, maintenanceService *services.MaintenanceService) *TenantPortalHandler {
	return &TenantPortalHandler{
		portalService:      portalService,
		maintenanceService: maintenanceService,
	}
}

func currentTenantID(c *gin.Context) uint {
	id, _ := c.Get("user_id")
	return id.(uint)
}

func queryRoomID(c *gin.Context) (uint, bool) {
	idStr := c.Query("room_id")
	if idStr == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// GetOverview 当前租住概览
func (h *TenantPortalHandler) GetOverview(c *gin.Context) {
	roomID, ok := queryRoomID(c)
	if !ok {
		response.BadRequest(c, "无效的房间ID")
		return
	}

	overview, err := h.portalService.GetOverview(currentTenantID(c), roomID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, overview)
}

// ListRooms 名下房间列表
func (h *TenantPortalHandler) ListRooms(c *gin.Context) {
	rooms, err := h.portalService.ListRooms(currentTenantID(c))
	if err != nil {
		response.ServerError(c, "查询房间列表失败: "+err.Error())
		return
	}
	response.Success(c, rooms)
}

// GetMonthlyExpenses 近12个月支出
func (h *TenantPortalHandler) GetMonthlyExpenses(c *gin.Context) {
	roomID, ok := queryRoomID(c)
	if !ok {
		response.BadRequest(c, "无效的房间ID")
		return
	}

	expenses, err := h.portalService.GetMonthlyExpenses(currentTenantID(c), roomID)
	if err != nil {
		response.ServerError(c, "支出查询失败: "+err.Error())
		return
	}
	response.Success(c, expenses)
}

// GetUtilityUsage 近6个月水电用量
func (h *TenantPortalHandler) GetUtilityUsage(c *gin.Context) {
	roomID, ok := queryRoomID(c)
	if !ok {
		response.BadRequest(c, "无效的房间ID")
		return
	}

	usage, err := h.portalService.GetUtilityUsage(currentTenantID(c), roomID)
	if err != nil {
		response.ServerError(c, "用量查询失败: "+err.Error())
		return
	}
	response.Success(c, usage)
}

// GetRecentPayments 近期支付记录
func (h *TenantPortalHandler) GetRecentPayments(c *gin.Context) {
	roomID, ok := queryRoomID(c)
	if !ok {
		response.BadRequest(c, "无效的房间ID")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	payments, err := h.portalService.GetRecentPayments(currentTenantID(c), roomID, limit)
	if err != nil {
		response.ServerError(c, "支付记录查询失败: "+err.Error())
		return
	}
	response.Success(c, payments)
}

// ListMaintenance 名下报修工单
func (h *TenantPortalHandler) ListMaintenance(c *gin.Context) {
	roomID, ok := queryRoomID(c)
	if !ok {
		response.BadRequest(c, "无效的房间ID")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	requests, err := h.portalService.ListMaintenanceRequests(currentTenantID(c), roomID, c.Query("status"), limit)
	if err != nil {
		response.ServerError(c, "工单查询失败: "+err.Error())
		return
	}
	response.Success(c, requests)
}

// GetNextPayment 下一笔待支付账单
func (h *TenantPortalHandler) GetNextPayment(c *gin.Context) {
	roomID, ok := queryRoomID(c)
	if !ok {
		response.BadRequest(c, "无效的房间ID")
		return
	}

	payment, err := h.portalService.GetNextPayment(currentTenantID(c), roomID)
	if err != nil {
		response.ServerError(c, "账单查询失败: "+err.Error())
		return
	}
	response.Success(c, payment)
}

// CreateMaintenance 租客自助报修。房间必须是本人当前租住
func (h *TenantPortalHandler) CreateMaintenance(c *gin.Context) {
	var req CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	// 确认房间属于当前租客
	rooms, err := h.portalService.ListRooms(currentTenantID(c))
	if err != nil {
		response.ServerError(c, "查询房间失败: "+err.Error())
		return
	}
	owned := false
	for _, room := range rooms {
		if room.RoomID == req.RoomID && room.IsCurrent {
			owned = true
			break
		}
	}
	if !owned {
		response.Forbidden(c, "只能为本人租住的房间报修")
		return
	}

	request, err := h.maintenanceService.Create(req.RoomID, req.Title, req.Description)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "工单创建成功", request)
}
