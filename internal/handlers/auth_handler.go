package handlers

import (
	"bhms/internal/services"
	"bhms/pkg/jwt"
	"bhms/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	landlordService *services.LandlordService
	tenantService   *services.TenantService
	jwtManager      *jwt.JWTManager
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(landlordService *services.LandlordService, tenantService *services.TenantService) *AuthHandler {
	return &AuthHandler{
		landlordService: landlordService,
		tenantService:   tenantService,
		jwtManager:      jwt.GetJWTManager(),
	}
}

// RegisterLandlordRequest 房东注册请求
type RegisterLandlordRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Password string  `json:"password" binding:"required,min=6"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Address  *string `json:"address"`
}

// RegisterLandlord 房东注册
func (h *AuthHandler) RegisterLandlord(c *gin.Context) {
	var req RegisterLandlordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 解析验证错误，提供更友好的提示
		if validationErr, ok := err.(validator.ValidationErrors); ok {
			errorMsg := "参数验证失败"
			for _, fieldErr := range validationErr {
				switch fieldErr.Field() {
				case "FullName":
					errorMsg = "姓名不能为空"
				case "Phone":
					errorMsg = "手机号不能为空"
				case "Password":
					errorMsg = "密码不能为空且至少6位"
				case "Email":
					errorMsg = "邮箱格式错误"
				}
			}
			response.BadRequest(c, errorMsg)
			return
		}
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	landlord, err := h.landlordService.Register(req.FullName, req.Phone, req.Password, req.Email, req.Address)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功", gin.H{
		"id":        landlord.ID,
		"full_name": landlord.FullName,
		"phone":     landlord.Phone,
	})
}

// LoginRequest 登录请求：account支持邮箱或手机号
type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginLandlord 房东登录
func (h *AuthHandler) LoginLandlord(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	landlord, err := h.landlordService.Authenticate(req.Account, req.Password)
	if err != nil {
		response.Unauthorized(c, "账号或密码错误")
		return
	}

	token, err := h.jwtManager.GenerateToken(landlord.ID, jwt.RoleLandlord, landlord.FullName)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":        landlord.ID,
			"full_name": landlord.FullName,
			"phone":     landlord.Phone,
			"role":      jwt.RoleLandlord,
		},
	})
}

// TenantLoginRequest 租客登录请求：手机号 + 密码
type TenantLoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginTenant 租客登录
func (h *AuthHandler) LoginTenant(c *gin.Context) {
	var req TenantLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	tenant, err := h.tenantService.GetByPhone(req.Phone)
	if err != nil || tenant == nil {
		response.Unauthorized(c, "账号或密码错误")
		return
	}
	if !tenant.IsActive {
		response.Unauthorized(c, "账号已停用")
		return
	}
	if !tenant.CheckPassword(req.Password) {
		response.Unauthorized(c, "账号或密码错误")
		return
	}

	token, err := h.jwtManager.GenerateToken(tenant.ID, jwt.RoleTenant, tenant.FullName)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":        tenant.ID,
			"full_name": tenant.FullName,
			"phone":     tenant.Phone,
			"role":      jwt.RoleTenant,
		},
	})
}
