package router

import (
	"time"

	"bhms/internal/database"
	"bhms/internal/handlers"
	"bhms/internal/middleware"
	"bhms/internal/services"
	"bhms/pkg/response"
	"bhms/pkg/storage"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter(uploadStore *storage.UploadStore) *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 静态文件：上传的证件照和合同PDF
	router.Static(uploadStore.URLPath(), uploadStore.Dir())

	registerRoutes(router, uploadStore)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, uploadStore *storage.UploadStore) {

	auth := middleware.NewAuthMiddleware()
	db := database.GetDB()

	api := router.Group("/api")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// 认证路由（无需登录）
		authHandler := handlers.NewAuthHandler(services.NewLandlordService(db), services.NewTenantService(db))
		api.POST("/register/landlord", authHandler.RegisterLandlord)
		api.POST("/login/landlord", authHandler.LoginLandlord)
		api.POST("/login/tenant", authHandler.LoginTenant)

		// 房屋路由（房东）
		houseHandler := handlers.NewHouseHandler(services.NewHouseService(db))
		houses := api.Group("/houses", auth.RequireLogin(), auth.RequireLandlord())
		{
			houses.GET("", houseHandler.List)
			houses.POST("", houseHandler.Create)
			houses.GET("/stats", houseHandler.GetStats)
			houses.GET("/:id/revenue", houseHandler.GetRevenue)
		}

		// 房间路由（房东）
		roomHandler := handlers.NewRoomHandler(services.NewRoomService(db))
		rooms := api.Group("/rooms", auth.RequireLogin(), auth.RequireLandlord())
		{
			rooms.GET("", roomHandler.List)
			rooms.POST("", roomHandler.Create)
			rooms.GET("/:id", roomHandler.GetByID)
			rooms.PUT("/:id", roomHandler.Update)
			rooms.DELETE("/:id", roomHandler.Delete)
		}

		// 租客查询路由（房东，签约表单自动填充）
		tenantHandler := handlers.NewTenantHandler(services.NewTenantService(db))
		api.GET("/tenants/lookup", auth.RequireLogin(), auth.RequireLandlord(), tenantHandler.Lookup)

		// 合同路由（房东）
		contractHandler := handlers.NewContractHandler(services.NewContractService(db), uploadStore)
		contracts := api.Group("/contracts", auth.RequireLogin(), auth.RequireLandlord())
		{
			contracts.GET("", contractHandler.List)
			contracts.POST("", contractHandler.Create)
			contracts.GET("/stats", contractHandler.GetStats)
			contracts.GET("/active", contractHandler.ListActive)
			contracts.GET("/:id", contractHandler.GetByID)
			contracts.PUT("/:id", contractHandler.Update)
			contracts.PUT("/:id/terminate", contractHandler.Terminate)
		}

		// 账单路由（房东）
		invoiceHandler := handlers.NewInvoiceHandler(services.NewInvoiceService(db))
		invoices := api.Group("/invoices", auth.RequireLogin(), auth.RequireLandlord())
		{
			invoices.GET("", invoiceHandler.List)
			invoices.POST("", invoiceHandler.Create)
			invoices.GET("/stats", invoiceHandler.GetStats)
			invoices.GET("/:id", invoiceHandler.GetByID)
			invoices.PUT("/:id/status", invoiceHandler.UpdateStatus)
		}

		// 报修路由（房东）
		maintenanceHandler := handlers.NewMaintenanceHandler(services.NewMaintenanceService(db))
		maintenance := api.Group("/maintenance", auth.RequireLogin(), auth.RequireLandlord())
		{
			maintenance.GET("", maintenanceHandler.List)
			maintenance.POST("", maintenanceHandler.Create)
			maintenance.GET("/stats", maintenanceHandler.GetStats)
			maintenance.PUT("/:id/status", maintenanceHandler.UpdateStatus)
		}

		// 仪表盘路由（房东）
		dashboardHandler := handlers.NewDashboardHandler(
			services.NewDashboardService(db, database.GetStatsCache()))
		dashboard := api.Group("/dashboard", auth.RequireLogin(), auth.RequireLandlord())
		{
			dashboard.GET("/stats", dashboardHandler.GetStats)
			dashboard.GET("/revenue-chart", dashboardHandler.GetRevenueChart)
			dashboard.GET("/upcoming-payments", dashboardHandler.GetUpcomingPayments)
			dashboard.GET("/activities", dashboardHandler.GetActivities)
			dashboard.GET("/top-properties", dashboardHandler.GetTopProperties)
		}

		// 租客端路由
		portalHandler := handlers.NewTenantPortalHandler(
			services.NewTenantPortalService(db), services.NewMaintenanceService(db))
		portal := api.Group("/tenant/dashboard", auth.RequireLogin(), auth.RequireTenant())
		{
			portal.GET("/overview", portalHandler.GetOverview)
			portal.GET("/rooms", portalHandler.ListRooms)
			portal.GET("/monthly-expenses", portalHandler.GetMonthlyExpenses)
			portal.GET("/utility-usage", portalHandler.GetUtilityUsage)
			portal.GET("/recent-payments", portalHandler.GetRecentPayments)
			portal.GET("/maintenance", portalHandler.ListMaintenance)
			portal.POST("/maintenance", portalHandler.CreateMaintenance)
			portal.GET("/next-payment", portalHandler.GetNextPayment)
		}
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "BHMS",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
