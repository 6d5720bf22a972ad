package middleware

import (
	"strings"

	"bhms/internal/database"
	"bhms/internal/services"
	"bhms/pkg/jwt"
	"bhms/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 权限中间件
type AuthMiddleware struct {
	landlordService *services.LandlordService
	tenantService   *services.TenantService
	jwtManager      *jwt.JWTManager
}

func NewAuthMiddleware() *AuthMiddleware {
	db := database.GetDB()
	return &AuthMiddleware{
		landlordService: services.NewLandlordService(db),
		tenantService:   services.NewTenantService(db),
		jwtManager:      jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// RequireLogin 解析并校验Bearer token，把身份信息放入上下文
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		tokenString := authHeader[7:] // 去掉 "Bearer "

		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 确认账号仍然存在
		switch claims.Role {
		case jwt.RoleLandlord:
			if _, err := m.landlordService.GetByID(claims.UserID); err != nil {
				response.Unauthorized(c, "账号不存在")
				c.Abort()
				return
			}
		case jwt.RoleTenant:
			tenant, err := m.tenantService.GetByID(claims.UserID)
			if err != nil {
				response.Unauthorized(c, "账号不存在")
				c.Abort()
				return
			}
			if !tenant.IsActive {
				response.Unauthorized(c, "账号已停用")
				c.Abort()
				return
			}
		default:
			response.Unauthorized(c, "Token角色无效")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("name", claims.Name)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireLandlord 要求房东角色
func (m *AuthMiddleware) RequireLandlord() gin.HandlerFunc {
	return m.requireRole(jwt.RoleLandlord, "需要房东权限")
}

// RequireTenant 要求租客角色
func (m *AuthMiddleware) RequireTenant() gin.HandlerFunc {
	return m.requireRole(jwt.RoleTenant, "需要租客权限")
}

func (m *AuthMiddleware) requireRole(role, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if current.(string) != role {
			response.Forbidden(c, message)
			c.Abort()
			return
		}

		c.Next()
	}
}
