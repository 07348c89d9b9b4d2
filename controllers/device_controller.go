package controllers

import (
	"time"

	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/internal/error/response"
	"hotel-iot-service/models"
	"hotel-iot-service/services"
	"hotel-iot-service/services/container"
	"hotel-iot-service/utils"

	"github.com/gin-gonic/gin"
)

// InterfaceDeviceController 定义设备控制器接口
type InterfaceDeviceController interface {
	GetDevices()
	GetDevice()
	CreateDevice()
	GetDeviceStats()
}

// DeviceController 处理设备相关的请求
type DeviceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDeviceController 创建一个新的设备控制器
func NewDeviceController(ctx *gin.Context, container *container.ServiceContainer) *DeviceController {
	return &DeviceController{
		Ctx:       ctx,
		Container: container,
	}
}

// DeviceRequest 表示创建设备请求
type DeviceRequest struct {
	ID         string            `json:"id" example:"AC-0101"`
	Name       string            `json:"name" binding:"required" example:"0101房空调"`
	Type       models.DeviceType `json:"type" binding:"required" example:"air_conditioner"`
	RoomNumber string            `json:"room_number" example:"0101"` // 公共区域设备留空
	Status     string            `json:"status" example:"online"`
}

// HandleDeviceFunc 返回一个处理设备请求的Gin处理函数
func HandleDeviceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDeviceController(ctx, container)

		switch method {
		case "getDevices":
			controller.GetDevices()
		case "getDevice":
			controller.GetDevice()
		case "createDevice":
			controller.CreateDevice()
		case "getDeviceStats":
			controller.GetDeviceStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetDevices 获取设备列表
// @Summary 获取设备列表
// @Description 按房间/类型/状态/分类过滤获取设备列表，支持名称与ID模糊搜索
// @Tags Device
// @Accept json
// @Produce json
// @Param room query string false "房间号"
// @Param type query string false "设备类型"
// @Param status query string false "设备状态"
// @Param category query string false "设备分类"
// @Param search query string false "名称或ID模糊搜索"
// @Param pageNum query int false "页码，默认为1"
// @Param pageSize query int false "每页条数，默认为20"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} response.Response
// @Router /devices [get]
func (c *DeviceController) GetDevices() {
	var filter services.DeviceFilter
	if err := c.Ctx.ShouldBindQuery(&filter); err != nil {
		response.ParamError(c.Ctx, "过滤条件解析失败: "+err.Error())
		return
	}
	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "分页参数解析失败: "+err.Error())
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	devices, total, err := deviceService.GetAllDevices(filter, page)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":    total,
		"pageNum":  page.PageNum,
		"pageSize": page.PageSize,
		"data":     devices,
	})
}

// 2. GetDevice 获取单个设备详情
// @Summary 获取设备详情
// @Description 根据ID获取设备详细信息
// @Tags Device
// @Accept json
// @Produce json
// @Param id path string true "设备ID"
// @Success 200 {object} models.Device
// @Failure 404 {object} response.Response
// @Router /devices/{id} [get]
func (c *DeviceController) GetDevice() {
	id := c.Ctx.Param("id")

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	device, err := deviceService.GetDeviceByID(id)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, device)
}

// 3. CreateDevice 创建设备
// @Summary 创建设备
// @Description 注册一台新设备，分类由设备类型推导
// @Tags Device
// @Accept json
// @Produce json
// @Param device body DeviceRequest true "设备信息"
// @Success 200 {object} models.Device
// @Failure 400 {object} response.Response
// @Router /devices [post]
func (c *DeviceController) CreateDevice() {
	var req DeviceRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}
	if !models.ValidDeviceType(req.Type) {
		response.ParamError(c.Ctx, "非法的设备类型: "+string(req.Type))
		return
	}
	if req.Status != "" && !models.ValidDeviceStatus(models.DeviceStatus(req.Status)) {
		response.ParamError(c.Ctx, "非法的设备状态: "+req.Status)
		return
	}

	device := models.Device{
		ID:       req.ID,
		Name:     req.Name,
		Type:     req.Type,
		Category: models.CategoryForType(req.Type),
		Status:   models.DeviceStatus(req.Status),
	}
	if device.ID == "" {
		device.ID = utils.NewEntityID("device")
	}
	if device.Status == "" {
		device.Status = models.DeviceStatusOffline
	}
	if req.RoomNumber != "" {
		device.RoomNumber = &req.RoomNumber
	}
	device.Touch()

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	if err := deviceService.CreateDevice(&device); err != nil {
		response.Error(c.Ctx, err)
		return
	}

	// 统计缓存作废，下次请求重算
	c.Container.GetRedisService().InvalidateDashboardStats("devices")

	response.Success(c.Ctx, device)
}

// 4. GetDeviceStats 获取设备总览统计
// @Summary 获取设备统计
// @Description 获取设备总数、在线数、分类与状态分布、能耗合计
// @Tags Device
// @Accept json
// @Produce json
// @Success 200 {object} services.DeviceStats
// @Failure 500 {object} response.Response
// @Router /devices/stats [get]
func (c *DeviceController) GetDeviceStats() {
	redisService := c.Container.GetRedisService()

	// 首先尝试从缓存获取
	var cached services.DeviceStats
	if err := redisService.GetDashboardStats("devices", &cached); err == nil {
		response.Success(c.Ctx, cached)
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	stats, err := deviceService.GetDeviceStats()
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	// 缓存30秒
	redisService.CacheDashboardStats("devices", stats, 30*time.Second)

	response.Success(c.Ctx, stats)
}
