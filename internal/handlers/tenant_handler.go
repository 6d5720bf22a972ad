package handlers

import (
	"bhms/internal/services"
	"bhms/pkg/response"

	"github.com/gin-gonic/gin"
)

// TenantHandler 租客查询处理器
type TenantHandler struct {
	tenantService *services.TenantService
}

// NewTenantHandler 创建租客处理器
func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// Lookup 按手机号或证件号查询租客（签约表单自动填充）。
// 未找到返回空数据而非404
func (h *TenantHandler) Lookup(c *gin.Context) {
	phone := c.Query("phone")
	idCard := c.Query("id_card")

	tenant, err := h.tenantService.FindByPhoneOrIDCard(phone, idCard)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if tenant == nil {
		response.Success(c, nil)
		return
	}

	response.Success(c, gin.H{
		"id":             tenant.ID,
		"full_name":      tenant.FullName,
		"phone":          tenant.Phone,
		"id_card_number": tenant.IDCardNumber,
		"is_active":      tenant.IsActive,
	})
}
