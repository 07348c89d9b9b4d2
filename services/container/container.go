package container

import (
	"context"
	"log"
	"sync"
	"time"

	"hotel-iot-service/config"
	"hotel-iot-service/services"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	telemetry    services.TelemetrySource
	redisService *services.RedisService
	eventService services.InterfaceEventService

	// 业务服务
	deviceService     services.InterfaceDeviceService
	roomService       services.InterfaceRoomService
	adjustmentService services.InterfaceAdjustmentService
	linkageService    services.InterfaceLinkageService
	robotService      services.InterfaceRobotService
	taskService       services.InterfaceTaskService
	alertService      services.InterfaceAlertService

	// 数据初始化与仿真
	seedService       services.InterfaceSeedService
	simulationService services.InterfaceSimulationService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis连接测试失败: %v，将不使用Redis缓存", err)
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.telemetry = services.NewTelemetrySource(c.config.SimSeed)
	c.redisService = services.NewRedisService(c.config)

	// 初始化MQTT事件服务
	c.eventService = services.NewEventService(c.config)
	if err := c.eventService.Connect(); err != nil {
		log.Printf("MQTT服务连接失败: %v", err)
	}

	// 初始化业务服务
	c.deviceService = services.NewDeviceService(c.db, c.config, c.telemetry)
	c.roomService = services.NewRoomService(c.db, c.config, c.telemetry)
	c.adjustmentService = services.NewAdjustmentService(c.db, c.config, c.eventService)
	c.linkageService = services.NewLinkageService(c.db, c.config, c.adjustmentService)
	c.robotService = services.NewRobotService(c.db, c.config, c.telemetry, c.eventService)
	c.taskService = services.NewTaskService(c.db, c.config, c.telemetry, c.eventService)
	c.alertService = services.NewAlertService(c.db, c.config, c.eventService)

	// 初始化数据初始化与仿真服务
	c.seedService = services.NewSeedService(c.db, c.config, c.telemetry,
		c.robotService, c.taskService, c.linkageService)
	c.simulationService = services.NewSimulationService(c.config,
		c.deviceService, c.roomService, c.robotService, c.taskService,
		c.alertService, c.linkageService)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "redis":
		return c.redisService
	case "event":
		return c.eventService
	case "telemetry":
		return c.telemetry
	case "device":
		return c.deviceService
	case "room":
		return c.roomService
	case "adjustment":
		return c.adjustmentService
	case "linkage":
		return c.linkageService
	case "robot":
		return c.robotService
	case "task":
		return c.taskService
	case "alert":
		return c.alertService
	case "seed":
		return c.seedService
	case "simulation":
		return c.simulationService
	default:
		return nil
	}
}

// GetRedisService 获取Redis缓存服务
func (c *ServiceContainer) GetRedisService() *services.RedisService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.redisService
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
