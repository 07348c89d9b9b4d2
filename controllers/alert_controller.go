package controllers

import (
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/internal/error/response"
	"hotel-iot-service/models"
	"hotel-iot-service/services"
	"hotel-iot-service/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceAlertController 定义告警控制器接口
type InterfaceAlertController interface {
	GetAlerts()
	GetUnreadCount()
	RefreshAlerts()
	AckAlert()
	AckAll()
}

// AlertController 处理告警相关的请求
type AlertController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAlertController 创建一个新的告警控制器
func NewAlertController(ctx *gin.Context, container *container.ServiceContainer) *AlertController {
	return &AlertController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAlertFunc 返回一个处理告警请求的Gin处理函数
func HandleAlertFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAlertController(ctx, container)

		switch method {
		case "getAlerts":
			controller.GetAlerts()
		case "getUnreadCount":
			controller.GetUnreadCount()
		case "refreshAlerts":
			controller.RefreshAlerts()
		case "ackAlert":
			controller.AckAlert()
		case "ackAll":
			controller.AckAll()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetAlerts 获取告警列表
// @Summary 获取告警列表
// @Description 获取告警列表，故障在前、警告次之、通知最后
// @Tags Alert
// @Accept json
// @Produce json
// @Param unread query bool false "仅未读"
// @Param pageNum query int false "页码，默认为1"
// @Param pageSize query int false "每页条数，默认为20"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} response.Response
// @Router /alerts [get]
func (c *AlertController) GetAlerts() {
	unreadOnly := c.Ctx.Query("unread") == "true"
	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "分页参数解析失败: "+err.Error())
		return
	}

	alertService := c.Container.GetService("alert").(services.InterfaceAlertService)
	alerts, total, err := alertService.GetAllAlerts(unreadOnly, page)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":    total,
		"pageNum":  page.PageNum,
		"pageSize": page.PageSize,
		"data":     alerts,
	})
}

// 2. GetUnreadCount 获取未读告警数
// @Summary 获取未读告警数
// @Description 获取当前未读告警的数量
// @Tags Alert
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} response.Response
// @Router /alerts/unread-count [get]
func (c *AlertController) GetUnreadCount() {
	alertService := c.Container.GetService("alert").(services.InterfaceAlertService)
	count, err := alertService.GetUnreadCount()
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{"unread": count})
}

// 3. RefreshAlerts 立即刷新告警
// @Summary 刷新告警
// @Description 根据车队当前状态重新派生告警，已读标记保留
// @Tags Alert
// @Accept json
// @Produce json
// @Success 200 {array} models.Alert
// @Failure 500 {object} response.Response
// @Router /alerts/refresh [post]
func (c *AlertController) RefreshAlerts() {
	alertService := c.Container.GetService("alert").(services.InterfaceAlertService)
	alerts, err := alertService.RefreshAlerts()
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, alerts)
}

// 4. AckAlert 标记单条告警已读
// @Summary 标记告警已读
// @Description 标记指定告警为已读
// @Tags Alert
// @Accept json
// @Produce json
// @Param id path string true "告警ID"
// @Success 200 {object} models.Alert
// @Failure 404 {object} response.Response
// @Router /alerts/{id}/read [put]
func (c *AlertController) AckAlert() {
	id := c.Ctx.Param("id")

	alertService := c.Container.GetService("alert").(services.InterfaceAlertService)
	alert, err := alertService.AckAlert(id)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, alert)
}

// 5. AckAll 标记全部告警已读
// @Summary 全部标为已读
// @Description 把全部未读告警标记为已读，返回实际更新条数
// @Tags Alert
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} response.Response
// @Router /alerts/read-all [put]
func (c *AlertController) AckAll() {
	alertService := c.Container.GetService("alert").(services.InterfaceAlertService)
	affected, err := alertService.AckAll()
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{"affected": affected})
}
