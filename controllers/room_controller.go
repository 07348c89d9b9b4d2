package controllers

import (
	"time"

	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/internal/error/response"
	"hotel-iot-service/models"
	"hotel-iot-service/services"
	"hotel-iot-service/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceRoomController 定义房间控制器接口
type InterfaceRoomController interface {
	GetRooms()
	GetRoom()
	GetRoomDevices()
	GetRoomStats()
}

// RoomController 处理房间相关的请求
type RoomController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewRoomController 创建一个新的房间控制器
func NewRoomController(ctx *gin.Context, container *container.ServiceContainer) *RoomController {
	return &RoomController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleRoomFunc 返回一个处理房间请求的Gin处理函数
func HandleRoomFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewRoomController(ctx, container)

		switch method {
		case "getRooms":
			controller.GetRooms()
		case "getRoom":
			controller.GetRoom()
		case "getRoomDevices":
			controller.GetRoomDevices()
		case "getRoomStats":
			controller.GetRoomStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetRooms 获取房间列表
// @Summary 获取房间列表
// @Description 按状态/楼层/房型过滤获取房间列表，设备计数实时计算
// @Tags Room
// @Accept json
// @Produce json
// @Param status query string false "房间状态"
// @Param floor query int false "楼层"
// @Param type query string false "房型"
// @Param pageNum query int false "页码，默认为1"
// @Param pageSize query int false "每页条数，默认为20"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} response.Response
// @Router /rooms [get]
func (c *RoomController) GetRooms() {
	var filter services.RoomFilter
	if err := c.Ctx.ShouldBindQuery(&filter); err != nil {
		response.ParamError(c.Ctx, "过滤条件解析失败: "+err.Error())
		return
	}
	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "分页参数解析失败: "+err.Error())
		return
	}

	roomService := c.Container.GetService("room").(services.InterfaceRoomService)
	rooms, total, err := roomService.GetAllRooms(filter, page)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":    total,
		"pageNum":  page.PageNum,
		"pageSize": page.PageSize,
		"data":     rooms,
	})
}

// 2. GetRoom 获取单个房间详情
// @Summary 获取房间详情
// @Description 根据房间号获取房间详细信息
// @Tags Room
// @Accept json
// @Produce json
// @Param roomNumber path string true "房间号"
// @Success 200 {object} models.Room
// @Failure 404 {object} response.Response
// @Router /rooms/{roomNumber} [get]
func (c *RoomController) GetRoom() {
	roomNumber := c.Ctx.Param("roomNumber")

	roomService := c.Container.GetService("room").(services.InterfaceRoomService)
	room, err := roomService.GetRoomByNumber(roomNumber)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, room)
}

// 3. GetRoomDevices 获取房间内的设备列表
// @Summary 获取房间设备
// @Description 获取指定房间内的全部设备
// @Tags Room
// @Accept json
// @Produce json
// @Param roomNumber path string true "房间号"
// @Success 200 {array} models.Device
// @Failure 404 {object} response.Response
// @Router /rooms/{roomNumber}/devices [get]
func (c *RoomController) GetRoomDevices() {
	roomNumber := c.Ctx.Param("roomNumber")

	roomService := c.Container.GetService("room").(services.InterfaceRoomService)
	if _, err := roomService.GetRoomByNumber(roomNumber); err != nil {
		response.Error(c.Ctx, err)
		return
	}

	deviceService := c.Container.GetService("device").(services.InterfaceDeviceService)
	devices, err := deviceService.GetRoomDevices(roomNumber)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, devices)
}

// 4. GetRoomStats 获取房间总览统计
// @Summary 获取房间统计
// @Description 获取房态分布、入住率、平均温湿度与能耗合计
// @Tags Room
// @Accept json
// @Produce json
// @Success 200 {object} services.RoomStats
// @Failure 500 {object} response.Response
// @Router /rooms/stats [get]
func (c *RoomController) GetRoomStats() {
	redisService := c.Container.GetRedisService()

	// 首先尝试从缓存获取
	var cached services.RoomStats
	if err := redisService.GetDashboardStats("rooms", &cached); err == nil {
		response.Success(c.Ctx, cached)
		return
	}

	roomService := c.Container.GetService("room").(services.InterfaceRoomService)
	stats, err := roomService.GetRoomStats()
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	// 缓存30秒
	redisService.CacheDashboardStats("rooms", stats, 30*time.Second)

	response.Success(c.Ctx, stats)
}
