package controllers

import (
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/internal/error/response"
	"hotel-iot-service/models"
	"hotel-iot-service/services"
	"hotel-iot-service/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceTaskController 定义任务控制器接口
type InterfaceTaskController interface {
	GetTasks()
	GetTask()
	CreateTask()
	GenerateTaskBatch()
	CancelTask()
	AdvanceTask()
}

// BatchTaskRequest 批量生成任务请求
type BatchTaskRequest struct {
	Count int `json:"count" binding:"required,min=1,max=50" example:"10"`
}

// TaskController 处理机器人任务相关的请求
type TaskController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewTaskController 创建一个新的任务控制器
func NewTaskController(ctx *gin.Context, container *container.ServiceContainer) *TaskController {
	return &TaskController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleTaskFunc 返回一个处理任务请求的Gin处理函数
func HandleTaskFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewTaskController(ctx, container)

		switch method {
		case "getTasks":
			controller.GetTasks()
		case "getTask":
			controller.GetTask()
		case "createTask":
			controller.CreateTask()
		case "generateTaskBatch":
			controller.GenerateTaskBatch()
		case "cancelTask":
			controller.CancelTask()
		case "advanceTask":
			controller.AdvanceTask()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetTasks 获取任务列表
// @Summary 获取任务列表
// @Description 按状态/类型/机器人过滤获取任务列表，按创建时间倒序
// @Tags Task
// @Accept json
// @Produce json
// @Param status query string false "任务状态"
// @Param type query string false "任务类型"
// @Param robot query string false "机器人ID"
// @Param pageNum query int false "页码，默认为1"
// @Param pageSize query int false "每页条数，默认为20"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} response.Response
// @Router /tasks [get]
func (c *TaskController) GetTasks() {
	var filter services.TaskFilter
	if err := c.Ctx.ShouldBindQuery(&filter); err != nil {
		response.ParamError(c.Ctx, "过滤条件解析失败: "+err.Error())
		return
	}
	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "分页参数解析失败: "+err.Error())
		return
	}

	taskService := c.Container.GetService("task").(services.InterfaceTaskService)
	tasks, total, err := taskService.GetAllTasks(filter, page)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":    total,
		"pageNum":  page.PageNum,
		"pageSize": page.PageSize,
		"data":     tasks,
	})
}

// 2. GetTask 获取单条任务详情
// @Summary 获取任务详情
// @Description 根据ID获取任务详细信息
// @Tags Task
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} models.RobotTask
// @Failure 404 {object} response.Response
// @Router /tasks/{id} [get]
func (c *TaskController) GetTask() {
	id := c.Ctx.Param("id")

	taskService := c.Container.GetService("task").(services.InterfaceTaskService)
	task, err := taskService.GetTaskByID(id)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, task)
}

// 3. CreateTask 创建任务
// @Summary 创建任务
// @Description 为指定机器人创建任务，初始状态为待执行
// @Tags Task
// @Accept json
// @Produce json
// @Param task body services.TaskSpec true "任务内容"
// @Success 200 {object} models.RobotTask
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tasks [post]
func (c *TaskController) CreateTask() {
	var spec services.TaskSpec
	if err := c.Ctx.ShouldBindJSON(&spec); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}

	taskService := c.Container.GetService("task").(services.InterfaceTaskService)
	task, err := taskService.CreateTask(spec)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, task)
}

// 4. GenerateTaskBatch 批量生成任务
// @Summary 批量生成任务
// @Description 为现有车队随机生成一批待执行任务，用于数据初始化与演示
// @Tags Task
// @Accept json
// @Produce json
// @Param request body BatchTaskRequest true "生成数量"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Router /tasks/batch [post]
func (c *TaskController) GenerateTaskBatch() {
	var req BatchTaskRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "请求体解析失败: "+err.Error())
		return
	}

	taskService := c.Container.GetService("task").(services.InterfaceTaskService)
	tasks, err := taskService.GenerateTaskBatch(req.Count)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"count": len(tasks),
		"data":  tasks,
	})
}

// 5. CancelTask 取消任务
// @Summary 取消任务
// @Description 取消待执行的任务，其它状态返回状态冲突
// @Tags Task
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} models.RobotTask
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /tasks/{id}/cancel [post]
func (c *TaskController) CancelTask() {
	id := c.Ctx.Param("id")

	taskService := c.Container.GetService("task").(services.InterfaceTaskService)
	task, err := taskService.CancelTask(id)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, task)
}

// 6. AdvanceTask 推进任务状态机
// @Summary 推进任务
// @Description 待执行任务进入执行中；执行中任务进入终态；终态任务返回状态冲突
// @Tags Task
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} models.RobotTask
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /tasks/{id}/advance [post]
func (c *TaskController) AdvanceTask() {
	id := c.Ctx.Param("id")

	taskService := c.Container.GetService("task").(services.InterfaceTaskService)
	task, err := taskService.AdvanceTask(id)
	if err != nil {
		response.Error(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, task)
}
