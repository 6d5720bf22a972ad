package handlers

import (
	"bhms/internal/services"
	"bhms/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 房东仪表盘处理器
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats 总览统计
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats()
	if err != nil {
		response.ServerError(c, "统计查询失败: "+err.Error())
		return
	}
	response.Success(c, stats)
}

// GetRevenueChart 近6个月收入曲线
func (h *DashboardHandler) GetRevenueChart(c *gin.Context) {
	chart, err := h.dashboardService.GetRevenueChart()
	if err != nil {
		response.ServerError(c, "收入曲线查询失败: "+err.Error())
		return
	}
	response.Success(c, chart)
}

// GetUpcomingPayments 即将到期的应收账单
func (h *DashboardHandler) GetUpcomingPayments(c *gin.Context) {
	payments, err := h.dashboardService.GetUpcomingPayments()
	if err != nil {
		response.ServerError(c, "应收账单查询失败: "+err.Error())
		return
	}
	response.Success(c, payments)
}

// GetActivities 最近动态
func (h *DashboardHandler) GetActivities(c *gin.Context) {
	activities, err := h.dashboardService.GetActivities()
	if err != nil {
		response.ServerError(c, "动态查询失败: "+err.Error())
		return
	}
	response.Success(c, activities)
}

// GetTopProperties 收益靠前的房屋
func (h *DashboardHandler) GetTopProperties(c *gin.Context) {
	properties, err := h.dashboardService.GetTopProperties()
	if err != nil {
		response.ServerError(c, "房屋排行查询失败: "+err.Error())
		return
	}
	response.Success(c, properties)
}
