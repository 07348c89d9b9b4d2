package controllers

import (
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/internal/error/response"
	"hotel-iot-service/models"
	"hotel-iot-service/services"
	"hotel-iot-service/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceAdjustmentController 定义调节控制器接口
type InterfaceAdjustmentController interface {
	AdjustDevice()
	StageAdjustment()
	GetPendingState()
	SaveSettings()
	GetAdjustments()
	GetAdjustmentStats()
}

// AdjustmentController 处理设备调节与调节记录相关的请求
type AdjustmentController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAdjustmentController 创建一个新的调节控制器
func NewAdjustmentController(ctx *gin.Context, container *container.ServiceContainer) *AdjustmentController {
	return &AdjustmentController{
		Ctx:       ctx,
		Container: container,
	}
}

// AdjustmentRequest 表示一次调节请求
type AdjustmentRequest struct {
	Field  models.AdjustmentType `json:"field" binding:"required" example:"temperature"`
	Value  float64               `json:"value" example:"24"`
	Actor  models.Adjuster       `json:"actor" binding:"required" example:"staff"`
	Reason string                `json:"reason" example:"客人要求调低温度"`
}

// HandleAdjustmentFunc 返回一个处理调节请求的Gin处理函数
func HandleAdjustmentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAdjustmentController(ctx, container)

		switch method {
		case "adjustDevice":
			controller.AdjustDevice()
		case "stageAdjustment":
			controller.StageAdjustment()
		case "getPendingState":
			controller.GetPendingState()
		case "saveSettings":
			controller.SaveSettings()
		case "getAdjustments":
			controller.GetAdjustments()
		case "getAdjustmentStats":
			controller.GetAdjustmentStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. AdjustDevice 立即调节设备参数
// @Summary 调节设备参数
// @Description 校验并立即提交一次设备参数调节，同时追加调节记录
// @Tags Adjustment
// @Accept json
// @Produce json
// @Param id path string true "设备ID"
// @Param adjustment body AdjustmentRequest true "调节内容"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /devices/{id}/adjust [post]
func (c *AdjustmentController) AdjustDevice() {
	deviceID := c.Ctx.Param("id")

	var req AdjustmentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}

	adjustmentService := c.Container.GetService("adjustment").(services.InterfaceAdjustmentService)
	device, adjustment, err := adjustmentService.AdjustDevice(services.AdjustRequest{
		DeviceID: deviceID,
		Field:    req.Field,
		Value:    req.Value,
		Actor:    req.Actor,
		Reason:   req.Reason,
	})
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"device":     device,
		"adjustment": adjustment,
	})
}

// 2. StageAdjustment 暂存一次调节
// @Summary 暂存设备调节
// @Description 调节立即生效，但调节记录暂存，等待统一保存
// @Tags Adjustment
// @Accept json
// @Produce json
// @Param id path string true "设备ID"
// @Param adjustment body AdjustmentRequest true "调节内容"
// @Success 200 {object} models.Device
// @Failure 400 {object} response.Response
// @Router /devices/{id}/stage [post]
func (c *AdjustmentController) StageAdjustment() {
	deviceID := c.Ctx.Param("id")

	var req AdjustmentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}

	adjustmentService := c.Container.GetService("adjustment").(services.InterfaceAdjustmentService)
	device, err := adjustmentService.StageAdjustment(services.AdjustRequest{
		DeviceID: deviceID,
		Field:    req.Field,
		Value:    req.Value,
		Actor:    req.Actor,
		Reason:   req.Reason,
	})
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, device)
}

// 3. GetPendingState 查询是否有未保存的调节
// @Summary 查询未保存状态
// @Description 查询当前是否存在暂存且未保存的调节
// @Tags Adjustment
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /adjustments/pending [get]
func (c *AdjustmentController) GetPendingState() {
	adjustmentService := c.Container.GetService("adjustment").(services.InterfaceAdjustmentService)

	response.Success(c.Ctx, gin.H{
		"has_unsaved_changes": adjustmentService.HasUnsavedChanges(),
	})
}

// 4. SaveSettings 保存全部暂存调节
// @Summary 保存暂存调节
// @Description 提交全部暂存调节，每个被调节的设备参数落一条记录
// @Tags Adjustment
// @Accept json
// @Produce json
// @Success 200 {array} models.DeviceAdjustment
// @Failure 400 {object} response.Response
// @Router /adjustments/save [post]
func (c *AdjustmentController) SaveSettings() {
	adjustmentService := c.Container.GetService("adjustment").(services.InterfaceAdjustmentService)
	adjustments, err := adjustmentService.SaveSettings()
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, adjustments)
}

// 5. GetAdjustments 查询调节记录
// @Summary 查询调节记录
// @Description 按房间/时间段/类型/操作者过滤查询调节记录，按时间倒序
// @Tags Adjustment
// @Accept json
// @Produce json
// @Param room query string false "房间号"
// @Param from query string false "起始日期 2006-01-02"
// @Param to query string false "截止日期 2006-01-02"
// @Param type query string false "调节类型"
// @Param operator query string false "操作来源"
// @Param pageNum query int false "页码，默认为1"
// @Param pageSize query int false "每页条数，默认为20"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} response.Response
// @Router /adjustments [get]
func (c *AdjustmentController) GetAdjustments() {
	var filter services.AdjustmentFilter
	if err := c.Ctx.ShouldBindQuery(&filter); err != nil {
		response.ParamError(c.Ctx, "过滤条件解析失败: "+err.Error())
		return
	}
	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "分页参数解析失败: "+err.Error())
		return
	}

	adjustmentService := c.Container.GetService("adjustment").(services.InterfaceAdjustmentService)
	adjustments, total, err := adjustmentService.GetAdjustments(filter, page)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":    total,
		"pageNum":  page.PageNum,
		"pageSize": page.PageSize,
		"data":     adjustments,
	})
}

// 6. GetAdjustmentStats 调节记录汇总统计
// @Summary 调节记录统计
// @Description 按类型/操作者计数、能耗影响合计、各类型调节均值
// @Tags Adjustment
// @Accept json
// @Produce json
// @Param room query string false "房间号"
// @Param from query string false "起始日期 2006-01-02"
// @Param to query string false "截止日期 2006-01-02"
// @Success 200 {object} services.AdjustmentStats
// @Failure 500 {object} response.Response
// @Router /adjustments/stats [get]
func (c *AdjustmentController) GetAdjustmentStats() {
	var filter services.AdjustmentFilter
	if err := c.Ctx.ShouldBindQuery(&filter); err != nil {
		response.ParamError(c.Ctx, "过滤条件解析失败: "+err.Error())
		return
	}

	adjustmentService := c.Container.GetService("adjustment").(services.InterfaceAdjustmentService)
	stats, err := adjustmentService.GetAdjustmentStats(filter)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, stats)
}
