package handlers

import (
	"strconv"
	"time"

	"bhms/internal/models"
	"bhms/internal/services"
	"bhms/pkg/pagination"
	"bhms/pkg/response"

	"github.com/gin-gonic/gin"
)

// InvoiceHandler 账单处理器
type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

// NewInvoiceHandler 创建账单处理器
func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// CreateInvoiceRequest 创建账单请求。
// total_amount为0时由引擎计算；非0时要求与计算值一致
type CreateInvoiceRequest struct {
	ContractID    uint                        `json:"contract_id" binding:"required"`
	InvoiceType   string                      `json:"invoice_type" binding:"required"`
	BillingPeriod string                      `json:"billing_period"`
	DueDate       string                      `json:"due_date" binding:"required"`
	RoomRent      float64                     `json:"room_rent"`
	TotalAmount   float64                     `json:"total_amount"`
	Notes         *string                     `json:"notes"`
	Items         []services.InvoiceItemInput `json:"items"`
}

// Create 开账单
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		response.BadRequest(c, "付款截止日期格式错误")
		return
	}

	invoice, err := h.invoiceService.Create(&services.CreateInvoiceInput{
		ContractID:    req.ContractID,
		InvoiceType:   req.InvoiceType,
		BillingPeriod: req.BillingPeriod,
		DueDate:       dueDate,
		RoomRent:      req.RoomRent,
		TotalAmount:   req.TotalAmount,
		Notes:         req.Notes,
		Items:         req.Items,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "账单创建成功", invoice)
}

// List 账单列表。month "2026-08"，status paid/pending/overdue
func (h *InvoiceHandler) List(c *gin.Context) {
	month := c.Query("month")
	status := c.Query("status")
	search := c.Query("search")
	page := pagination.ParsePageParams(c)

	invoices, total, err := h.invoiceService.List(month, status, search, page)
	if err != nil {
		response.ServerError(c, "查询账单列表失败: "+err.Error())
		return
	}
	response.SuccessWithPage(c, invoices, pagination.NewPageInfo(page.Page, page.PageSize, total))
}

// GetByID 账单详情，含明细
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的ID")
		return
	}

	detail, err := h.invoiceService.GetByID(uint(id))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, detail)
}

// UpdateInvoiceStatusRequest 更新账单状态请求
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 更新支付状态。置为已支付时记录支付时间
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的ID")
		return
	}

	var req UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if req.Status != models.InvoiceStatusPaid && req.Status != models.InvoiceStatusUnpaid {
		response.BadRequest(c, "账单状态无效")
		return
	}

	if err := h.invoiceService.UpdateStatus(uint(id), req.Status); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "状态更新成功", nil)
}

// GetStats 账单统计
func (h *InvoiceHandler) GetStats(c *gin.Context) {
	stats, err := h.invoiceService.GetStats()
	if err != nil {
		response.ServerError(c, "统计查询失败: "+err.Error())
		return
	}
	response.Success(c, stats)
}
