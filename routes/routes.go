package routes

import (
	"time"

	"hotel-iot-service/controllers"
	"hotel-iot-service/middleware"
	"hotel-iot-service/services/container"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(serviceContainer *container.ServiceContainer) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 设置正确的Content-Type，确保UTF-8编码
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})

	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")

	// 健康检查
	healthController := controllers.NewHealthCheckController()
	api.GET("/ping", healthController.Ping)
	api.GET("/health", healthController.Ping)

	// 写接口限流
	writeLimiter := middleware.CombinedRateLimiter(5, 10)
	// 统计类接口短缓存
	statsCache := middleware.Cache(10 * time.Second)

	// 设备路由
	api.GET("/devices", controllers.HandleDeviceFunc(container, "getDevices"))
	api.GET("/devices/stats", statsCache, controllers.HandleDeviceFunc(container, "getDeviceStats"))
	api.GET("/devices/:id", controllers.HandleDeviceFunc(container, "getDevice"))
	api.POST("/devices", writeLimiter, controllers.HandleDeviceFunc(container, "createDevice"))
	api.POST("/devices/:id/adjust", writeLimiter, controllers.HandleAdjustmentFunc(container, "adjustDevice"))
	api.POST("/devices/:id/stage", writeLimiter, controllers.HandleAdjustmentFunc(container, "stageAdjustment"))

	// 房间路由
	api.GET("/rooms", controllers.HandleRoomFunc(container, "getRooms"))
	api.GET("/rooms/stats", statsCache, controllers.HandleRoomFunc(container, "getRoomStats"))
	api.GET("/rooms/:roomNumber", controllers.HandleRoomFunc(container, "getRoom"))
	api.GET("/rooms/:roomNumber/devices", controllers.HandleRoomFunc(container, "getRoomDevices"))

	// 调节记录路由
	api.GET("/adjustments", controllers.HandleAdjustmentFunc(container, "getAdjustments"))
	api.GET("/adjustments/stats", statsCache, controllers.HandleAdjustmentFunc(container, "getAdjustmentStats"))
	api.GET("/adjustments/pending", controllers.HandleAdjustmentFunc(container, "getPendingState"))
	api.POST("/adjustments/save", writeLimiter, controllers.HandleAdjustmentFunc(container, "saveSettings"))

	// 联动规则路由
	api.GET("/linkages", controllers.HandleLinkageFunc(container, "getLinkages"))
	api.GET("/linkages/presets", controllers.HandleLinkageFunc(container, "getPresets"))
	api.POST("/linkages/presets/instantiate", writeLimiter, controllers.HandleLinkageFunc(container, "instantiatePreset"))
	api.PUT("/linkages/batch/toggle", writeLimiter, controllers.HandleLinkageFunc(container, "batchToggle"))
	api.DELETE("/linkages/batch", writeLimiter, controllers.HandleLinkageFunc(container, "batchDelete"))
	api.GET("/linkages/:id", controllers.HandleLinkageFunc(container, "getLinkage"))
	api.POST("/linkages", writeLimiter, controllers.HandleLinkageFunc(container, "createLinkage"))
	api.PUT("/linkages/:id/toggle", writeLimiter, controllers.HandleLinkageFunc(container, "toggleLinkage"))
	api.DELETE("/linkages/:id", writeLimiter, controllers.HandleLinkageFunc(container, "deleteLinkage"))
	api.POST("/linkages/:id/copy", writeLimiter, controllers.HandleLinkageFunc(container, "copyLinkage"))
	api.POST("/linkages/:id/execute", writeLimiter, controllers.HandleLinkageFunc(container, "executeLinkage"))

	// 机器人路由
	api.GET("/robots", controllers.HandleRobotFunc(container, "getRobots"))
	api.GET("/robots/stats", statsCache, controllers.HandleRobotFunc(container, "getFleetStats"))
	api.GET("/robots/:id", controllers.HandleRobotFunc(container, "getRobot"))
	api.POST("/robots/:id/control", writeLimiter, controllers.HandleRobotFunc(container, "controlRobot"))

	// 任务路由
	api.GET("/tasks", controllers.HandleTaskFunc(container, "getTasks"))
	api.GET("/tasks/:id", controllers.HandleTaskFunc(container, "getTask"))
	api.POST("/tasks", writeLimiter, controllers.HandleTaskFunc(container, "createTask"))
	api.POST("/tasks/batch", writeLimiter, controllers.HandleTaskFunc(container, "generateTaskBatch"))
	api.POST("/tasks/:id/cancel", writeLimiter, controllers.HandleTaskFunc(container, "cancelTask"))
	api.POST("/tasks/:id/advance", writeLimiter, controllers.HandleTaskFunc(container, "advanceTask"))

	// 告警路由
	api.GET("/alerts", controllers.HandleAlertFunc(container, "getAlerts"))
	api.GET("/alerts/unread-count", controllers.HandleAlertFunc(container, "getUnreadCount"))
	api.POST("/alerts/refresh", writeLimiter, controllers.HandleAlertFunc(container, "refreshAlerts"))
	api.PUT("/alerts/read-all", controllers.HandleAlertFunc(container, "ackAll"))
	api.PUT("/alerts/:id/read", controllers.HandleAlertFunc(container, "ackAlert"))
}
