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

// InterfaceRobotController 定义机器人控制器接口
type InterfaceRobotController interface {
	GetRobots()
	GetRobot()
	ControlRobot()
	GetFleetStats()
}

// RobotController 处理机器人车队相关的请求
type RobotController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewRobotController 创建一个新的机器人控制器
func NewRobotController(ctx *gin.Context, container *container.ServiceContainer) *RobotController {
	return &RobotController{
		Ctx:       ctx,
		Container: container,
	}
}

// RobotControlRequest 机器人远程控制请求
type RobotControlRequest struct {
	Action models.RobotAction `json:"action" binding:"required" example:"charge"` // start, stop, charge, maintenance
}

// HandleRobotFunc 返回一个处理机器人请求的Gin处理函数
func HandleRobotFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewRobotController(ctx, container)

		switch method {
		case "getRobots":
			controller.GetRobots()
		case "getRobot":
			controller.GetRobot()
		case "controlRobot":
			controller.ControlRobot()
		case "getFleetStats":
			controller.GetFleetStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetRobots 获取机器人列表
// @Summary 获取机器人列表
// @Description 获取配送机器人车队成员列表
// @Tags Robot
// @Accept json
// @Produce json
// @Param pageNum query int false "页码，默认为1"
// @Param pageSize query int false "每页条数，默认为20"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} response.Response
// @Router /robots [get]
func (c *RobotController) GetRobots() {
	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "分页参数解析失败: "+err.Error())
		return
	}

	robotService := c.Container.GetService("robot").(services.InterfaceRobotService)
	robots, total, err := robotService.GetAllRobots(page)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":    total,
		"pageNum":  page.PageNum,
		"pageSize": page.PageSize,
		"data":     robots,
	})
}

// 2. GetRobot 获取单台机器人详情
// @Summary 获取机器人详情
// @Description 根据ID获取机器人详细信息
// @Tags Robot
// @Accept json
// @Produce json
// @Param id path string true "机器人ID"
// @Success 200 {object} models.Robot
// @Failure 404 {object} response.Response
// @Router /robots/{id} [get]
func (c *RobotController) GetRobot() {
	id := c.Ctx.Param("id")

	robotService := c.Container.GetService("robot").(services.InterfaceRobotService)
	robot, err := robotService.GetRobotByID(id)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, robot)
}

// 3. ControlRobot 远程控制机器人
// @Summary 控制机器人
// @Description 下发控制动作，同一动作重复下发结果一致
// @Tags Robot
// @Accept json
// @Produce json
// @Param id path string true "机器人ID"
// @Param request body RobotControlRequest true "控制动作"
// @Success 200 {object} models.Robot
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /robots/{id}/control [post]
func (c *RobotController) ControlRobot() {
	id := c.Ctx.Param("id")

	var req RobotControlRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}

	robotService := c.Container.GetService("robot").(services.InterfaceRobotService)
	robot, err := robotService.ControlRobot(id, req.Action)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	// 状态已变，统计缓存作废
	c.Container.GetRedisService().InvalidateDashboardStats("fleet")

	response.Success(c.Ctx, robot)
}

// 4. GetFleetStats 获取车队总览统计
// @Summary 获取车队统计
// @Description 获取车队规模、状态分布、平均电量、累计配送量
// @Tags Robot
// @Accept json
// @Produce json
// @Success 200 {object} services.FleetStats
// @Failure 500 {object} response.Response
// @Router /robots/stats [get]
func (c *RobotController) GetFleetStats() {
	redisService := c.Container.GetRedisService()

	// 首先尝试从缓存获取
	var cached services.FleetStats
	if err := redisService.GetDashboardStats("fleet", &cached); err == nil {
		response.Success(c.Ctx, cached)
		return
	}

	robotService := c.Container.GetService("robot").(services.InterfaceRobotService)
	stats, err := robotService.GetFleetStats()
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	// 缓存30秒
	redisService.CacheDashboardStats("fleet", stats, 30*time.Second)

	response.Success(c.Ctx, stats)
}
