package controllers

import (
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/internal/error/response"
	"hotel-iot-service/models"
	"hotel-iot-service/services"
	"hotel-iot-service/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceLinkageController 定义联动规则控制器接口
type InterfaceLinkageController interface {
	GetLinkages()
	GetLinkage()
	CreateLinkage()
	GetPresets()
	InstantiatePreset()
	ToggleLinkage()
	BatchToggle()
	DeleteLinkage()
	BatchDelete()
	CopyLinkage()
	ExecuteLinkage()
}

// LinkageController 处理设备联动规则相关的请求
type LinkageController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewLinkageController 创建一个新的联动规则控制器
func NewLinkageController(ctx *gin.Context, container *container.ServiceContainer) *LinkageController {
	return &LinkageController{
		Ctx:       ctx,
		Container: container,
	}
}

// ToggleRequest 启停请求
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// BatchToggleRequest 批量启停请求
type BatchToggleRequest struct {
	IDs     []string `json:"ids" binding:"required"`
	Enabled bool     `json:"enabled"`
}

// BatchDeleteRequest 批量删除请求
type BatchDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// InstantiatePresetRequest 预设实例化请求
type InstantiatePresetRequest struct {
	PresetID    string   `json:"preset_id" binding:"required" example:"preset_night_mode"`
	RoomNumbers []string `json:"room_numbers" binding:"required" example:"0101,0102"`
}

// HandleLinkageFunc 返回一个处理联动规则请求的Gin处理函数
func HandleLinkageFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewLinkageController(ctx, container)

		switch method {
		case "getLinkages":
			controller.GetLinkages()
		case "getLinkage":
			controller.GetLinkage()
		case "createLinkage":
			controller.CreateLinkage()
		case "getPresets":
			controller.GetPresets()
		case "instantiatePreset":
			controller.InstantiatePreset()
		case "toggleLinkage":
			controller.ToggleLinkage()
		case "batchToggle":
			controller.BatchToggle()
		case "deleteLinkage":
			controller.DeleteLinkage()
		case "batchDelete":
			controller.BatchDelete()
		case "copyLinkage":
			controller.CopyLinkage()
		case "executeLinkage":
			controller.ExecuteLinkage()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetLinkages 获取联动规则列表
// @Summary 获取联动规则列表
// @Description 按触发类型/启用状态过滤，支持名称与描述模糊搜索
// @Tags Linkage
// @Accept json
// @Produce json
// @Param trigger_type query string false "触发类型"
// @Param enabled query bool false "启用状态"
// @Param search query string false "名称或描述模糊搜索"
// @Param pageNum query int false "页码，默认为1"
// @Param pageSize query int false "每页条数，默认为20"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} response.Response
// @Router /linkages [get]
func (c *LinkageController) GetLinkages() {
	var filter services.LinkageFilter
	if err := c.Ctx.ShouldBindQuery(&filter); err != nil {
		response.ParamError(c.Ctx, "过滤条件解析失败: "+err.Error())
		return
	}
	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "分页参数解析失败: "+err.Error())
		return
	}

	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	linkages, total, err := linkageService.GetAllLinkages(filter, page)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":    total,
		"pageNum":  page.PageNum,
		"pageSize": page.PageSize,
		"data":     linkages,
	})
}

// 2. GetLinkage 获取单条联动规则
// @Summary 获取联动规则详情
// @Description 根据ID获取联动规则详细信息
// @Tags Linkage
// @Accept json
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} models.DeviceLinkage
// @Failure 404 {object} response.Response
// @Router /linkages/{id} [get]
func (c *LinkageController) GetLinkage() {
	id := c.Ctx.Param("id")

	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	linkage, err := linkageService.GetLinkageByID(id)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, linkage)
}

// 3. CreateLinkage 创建联动规则
// @Summary 创建联动规则
// @Description 创建联动规则，传感器条件在创建时编译校验
// @Tags Linkage
// @Accept json
// @Produce json
// @Param linkage body services.LinkageSpec true "规则内容"
// @Success 200 {object} models.DeviceLinkage
// @Failure 400 {object} response.Response
// @Router /linkages [post]
func (c *LinkageController) CreateLinkage() {
	var spec services.LinkageSpec
	if err := c.Ctx.ShouldBindJSON(&spec); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}

	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	linkage, err := linkageService.CreateRule(spec)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, linkage)
}

// 4. GetPresets 获取预设模板列表
// @Summary 获取预设模板
// @Description 获取内置联动规则预设模板
// @Tags Linkage
// @Accept json
// @Produce json
// @Success 200 {array} services.LinkagePreset
// @Router /linkages/presets [get]
func (c *LinkageController) GetPresets() {
	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	response.Success(c.Ctx, linkageService.ListPresets())
}

// 5. InstantiatePreset 从预设实例化规则
// @Summary 实例化预设
// @Description 按所选房间把预设模板解析为具体设备动作并创建规则
// @Tags Linkage
// @Accept json
// @Produce json
// @Param request body InstantiatePresetRequest true "预设与目标房间"
// @Success 200 {object} models.DeviceLinkage
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /linkages/presets/instantiate [post]
func (c *LinkageController) InstantiatePreset() {
	var req InstantiatePresetRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}

	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	linkage, err := linkageService.InstantiateFromPreset(req.PresetID, req.RoomNumbers)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, linkage)
}

// 6. ToggleLinkage 启用或停用规则
// @Summary 启停联动规则
// @Description 启用或停用规则，停用不清零执行计数
// @Tags Linkage
// @Accept json
// @Produce json
// @Param id path string true "规则ID"
// @Param request body ToggleRequest true "目标状态"
// @Success 200 {object} models.DeviceLinkage
// @Failure 404 {object} response.Response
// @Router /linkages/{id}/toggle [put]
func (c *LinkageController) ToggleLinkage() {
	id := c.Ctx.Param("id")

	var req ToggleRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}

	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	linkage, err := linkageService.ToggleRule(id, req.Enabled)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, linkage)
}

// 7. BatchToggle 批量启停规则
// @Summary 批量启停联动规则
// @Description 批量启用或停用规则，返回实际受影响条数
// @Tags Linkage
// @Accept json
// @Produce json
// @Param request body BatchToggleRequest true "规则ID列表与目标状态"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Router /linkages/batch/toggle [put]
func (c *LinkageController) BatchToggle() {
	var req BatchToggleRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}

	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	affected, err := linkageService.BatchToggle(req.IDs, req.Enabled)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{"affected": affected})
}

// 8. DeleteLinkage 删除规则
// @Summary 删除联动规则
// @Description 根据ID删除联动规则
// @Tags Linkage
// @Accept json
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /linkages/{id} [delete]
func (c *LinkageController) DeleteLinkage() {
	id := c.Ctx.Param("id")

	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	if err := linkageService.DeleteRule(id); err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, nil)
}

// 9. BatchDelete 批量删除规则
// @Summary 批量删除联动规则
// @Description 批量删除规则，返回实际删除条数
// @Tags Linkage
// @Accept json
// @Produce json
// @Param request body BatchDeleteRequest true "规则ID列表"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Router /linkages/batch [delete]
func (c *LinkageController) BatchDelete() {
	var req BatchDeleteRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}

	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	affected, err := linkageService.BatchDelete(req.IDs)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{"affected": affected})
}

// 10. CopyLinkage 复制规则
// @Summary 复制联动规则
// @Description 复制规则为新规则，执行计数与最近执行时间重置
// @Tags Linkage
// @Accept json
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} models.DeviceLinkage
// @Failure 404 {object} response.Response
// @Router /linkages/{id}/copy [post]
func (c *LinkageController) CopyLinkage() {
	id := c.Ctx.Param("id")

	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	duplicate, err := linkageService.CopyRule(id)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, duplicate)
}

// 11. ExecuteLinkage 手动执行规则
// @Summary 执行联动规则
// @Description 手动触发规则执行，停用的规则拒绝执行
// @Tags Linkage
// @Accept json
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} models.ExecutionResult
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /linkages/{id}/execute [post]
func (c *LinkageController) ExecuteLinkage() {
	id := c.Ctx.Param("id")

	linkageService := c.Container.GetService("linkage").(services.InterfaceLinkageService)
	result, err := linkageService.ExecuteRule(id)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, result)
}
