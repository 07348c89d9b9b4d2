package services

import (
	"errors"
	"fmt"
	"hotel-iot-service/config"
	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"
	"hotel-iot-service/utils"
	"time"

	"gorm.io/gorm"
)

// TaskSpec 创建任务的请求参数
type TaskSpec struct {
	RobotID       string              `json:"robot_id"`
	TaskType      models.TaskType     `json:"task_type"`
	Priority      models.TaskPriority `json:"priority"`
	StartLocation string              `json:"start_location"`
	Destination   string              `json:"destination"`
	GuestName     string              `json:"guest_name"`
	RoomNumber    string              `json:"room_number"`
	Items         []string            `json:"items"`
	EstimatedTime int                 `json:"estimated_time"` // 分钟
	Operator      string              `json:"operator"`
	Notes         string              `json:"notes"`
}

// TaskFilter 任务查询过滤条件
type TaskFilter struct {
	Status  models.TaskStatus `form:"status"`
	Type    models.TaskType   `form:"type"`
	RobotID string            `form:"robot"`
}

// InterfaceTaskService defines the robot task lifecycle interface
type InterfaceTaskService interface {
	CreateTask(spec TaskSpec) (*models.RobotTask, error)
	GenerateTaskBatch(n int) ([]models.RobotTask, error)
	GetAllTasks(filter TaskFilter, page models.PaginationQuery) ([]models.RobotTask, int64, error)
	GetTaskByID(id string) (*models.RobotTask, error)
	CancelTask(id string) (*models.RobotTask, error)
	AdvanceTask(id string) (*models.RobotTask, error)
	TickTasks() error
}

// TaskService 提供机器人任务生命周期相关的服务
type TaskService struct {
	DB        *gorm.DB
	Config    *config.Config
	Telemetry TelemetrySource
	Events    InterfaceEventService
}

// NewTaskService 创建一个新的任务服务
func NewTaskService(db *gorm.DB, cfg *config.Config, telemetry TelemetrySource, events InterfaceEventService) InterfaceTaskService {
	return &TaskService{
		DB:        db,
		Config:    cfg,
		Telemetry: telemetry,
		Events:    events,
	}
}

// 1 CreateTask 创建任务，初始状态为pending
func (s *TaskService) CreateTask(spec TaskSpec) (*models.RobotTask, error) {
	if spec.RobotID == "" {
		return nil, apperr.New(code.ErrValidation, "任务必须指定机器人")
	}
	if !models.ValidTaskType(spec.TaskType) {
		return nil, apperr.New(code.ErrValidation, "非法的任务类型: %s", spec.TaskType)
	}
	if !models.ValidTaskPriority(spec.Priority) {
		return nil, apperr.New(code.ErrValidation, "非法的任务优先级: %s", spec.Priority)
	}
	if spec.StartLocation == "" || spec.Destination == "" {
		return nil, apperr.New(code.ErrValidation, "任务必须指定起点与终点")
	}
	if spec.EstimatedTime <= 0 {
		return nil, apperr.New(code.ErrValidation, "预计耗时必须为正数")
	}
	if spec.TaskType == models.TaskTypeDelivery && spec.RoomNumber == "" {
		return nil, apperr.New(code.ErrValidation, "配送任务必须指定目标房间")
	}

	var robot models.Robot
	if err := s.DB.First(&robot, "id = ?", spec.RobotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(code.ErrRobotNotFound, "机器人 %s 不存在", spec.RobotID)
		}
		return nil, err
	}

	task := &models.RobotTask{
		ID:            utils.NewEntityID("task"),
		RobotID:       robot.ID,
		RobotName:     robot.Name,
		TaskType:      spec.TaskType,
		Status:        models.TaskStatusPending,
		Priority:      spec.Priority,
		StartLocation: spec.StartLocation,
		Destination:   spec.Destination,
		Items:         spec.Items,
		EstimatedTime: spec.EstimatedTime,
		Operator:      spec.Operator,
		Notes:         spec.Notes,
	}
	// 客人信息仅对配送任务有意义
	if spec.TaskType == models.TaskTypeDelivery {
		task.GuestName = spec.GuestName
		task.RoomNumber = spec.RoomNumber
	}

	if err := s.DB.Create(task).Error; err != nil {
		return nil, err
	}

	return task, nil
}

// 2 GenerateTaskBatch 批量生成任务（数据初始化与演示用）
func (s *TaskService) GenerateTaskBatch(n int) ([]models.RobotTask, error) {
	var robots []models.Robot
	if err := s.DB.Find(&robots).Error; err != nil {
		return nil, err
	}
	if len(robots) == 0 {
		return nil, apperr.New(code.ErrRobotNotFound, "车队为空，无法生成任务")
	}

	taskTypes := []models.TaskType{
		models.TaskTypeDelivery, models.TaskTypeDelivery, models.TaskTypePickup,
		models.TaskTypeMaintenance, models.TaskTypePatrol,
	}
	priorities := []models.TaskPriority{
		models.PriorityLow, models.PriorityMedium, models.PriorityMedium,
		models.PriorityHigh, models.PriorityUrgent,
	}
	items := [][]string{
		{"矿泉水", "毛巾"}, {"欢迎水果"}, {"客房餐食"}, {"洗漱用品"}, {"报纸"},
	}

	tasks := make([]models.RobotTask, 0, n)
	for i := 0; i < n; i++ {
		robot := robots[s.Telemetry.IntN(len(robots))]
		taskType := taskTypes[s.Telemetry.IntN(len(taskTypes))]

		task := models.RobotTask{
			ID:            utils.NewEntityID("task"),
			RobotID:       robot.ID,
			RobotName:     robot.Name,
			TaskType:      taskType,
			Status:        models.TaskStatusPending,
			Priority:      priorities[s.Telemetry.IntN(len(priorities))],
			StartLocation: robotLocations[s.Telemetry.IntN(len(robotLocations))],
			Destination:   robotLocations[s.Telemetry.IntN(len(robotLocations))],
			EstimatedTime: 5 + s.Telemetry.IntN(25),
			Operator:      "调度台",
		}
		if taskType == models.TaskTypeDelivery {
			task.GuestName = fmt.Sprintf("客人%03d", s.Telemetry.IntN(999)+1)
			task.RoomNumber = fmt.Sprintf("%02d%02d", s.Telemetry.IntN(6)+1, s.Telemetry.IntN(10)+1)
			task.Destination = "房间" + task.RoomNumber
			task.Items = items[s.Telemetry.IntN(len(items))]
		}

		tasks = append(tasks, task)
	}

	if err := s.DB.Create(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// 3 GetAllTasks 按过滤条件查询任务，按创建时间倒序
func (s *TaskService) GetAllTasks(filter TaskFilter, page models.PaginationQuery) ([]models.RobotTask, int64, error) {
	query := s.DB.Model(&models.RobotTask{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("task_type = ?", filter.Type)
	}
	if filter.RobotID != "" {
		query = query.Where("robot_id = ?", filter.RobotID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Normalize()
	var tasks []models.RobotTask
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// 4 GetTaskByID 根据ID获取任务
func (s *TaskService) GetTaskByID(id string) (*models.RobotTask, error) {
	var task models.RobotTask
	if err := s.DB.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(code.ErrTaskNotFound, "任务 %s 不存在", id)
		}
		return nil, err
	}

	return &task, nil
}

// 5 CancelTask 取消任务。只允许从pending取消，取消后为终态。
func (s *TaskService) CancelTask(id string) (*models.RobotTask, error) {
	task, err := s.GetTaskByID(id)
	if err != nil {
		return nil, err
	}

	if task.Status != models.TaskStatusPending {
		return nil, apperr.New(code.ErrInvalidTransition,
			"任务 %s 当前状态为 %s，仅待执行任务可取消", task.ID, task.Status)
	}

	now := time.Now()
	task.Status = models.TaskStatusCancelled
	task.CompletedAt = &now

	if err := s.DB.Save(task).Error; err != nil {
		return nil, err
	}

	s.publishTask(task)
	return task, nil
}

// 6 AdvanceTask 推进任务状态机：
// pending → in_progress（记录开始时间，占用机器人）；
// in_progress → 按配置分布进入 completed/failed/cancelled（记录完成时间与实际耗时）。
// 终态任务不允许再推进。
func (s *TaskService) AdvanceTask(id string) (*models.RobotTask, error) {
	task, err := s.GetTaskByID(id)
	if err != nil {
		return nil, err
	}

	if task.Status.IsTerminal() {
		return nil, apperr.New(code.ErrInvalidTransition,
			"任务 %s 已处于终态 %s，不允许再迁移", task.ID, task.Status)
	}

	now := time.Now()
	switch task.Status {
	case models.TaskStatusPending:
		task.Status = models.TaskStatusInProgress
		task.StartedAt = &now

		err = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(task).Error; err != nil {
				return err
			}
			return tx.Model(&models.Robot{}).Where("id = ?", task.RobotID).
				Update("current_task", task.ID).Error
		})
		if err != nil {
			return nil, err
		}

	case models.TaskStatusInProgress:
		roll := s.Telemetry.Float64()
		switch {
		case roll < s.Config.TaskCompleteRate:
			task.Status = models.TaskStatusCompleted
		case roll < s.Config.TaskCompleteRate+s.Config.TaskFailRate:
			task.Status = models.TaskStatusFailed
		default:
			task.Status = models.TaskStatusCancelled
		}

		task.CompletedAt = &now
		if task.StartedAt != nil {
			minutes := int(now.Sub(*task.StartedAt).Minutes())
			if minutes < 1 {
				minutes = 1
			}
			task.ActualTime = &minutes
		}

		err = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(task).Error; err != nil {
				return err
			}
			updates := map[string]interface{}{"current_task": ""}
			if task.Status == models.TaskStatusCompleted && task.TaskType == models.TaskTypeDelivery {
				updates["total_deliveries"] = gorm.Expr("total_deliveries + 1")
			}
			return tx.Model(&models.Robot{}).Where("id = ?", task.RobotID).
				Updates(updates).Error
		})
		if err != nil {
			return nil, err
		}
	}

	s.publishTask(task)
	return task, nil
}

// 7 TickTasks 仿真推进：部分待执行任务开始执行，部分执行中任务结束
func (s *TaskService) TickTasks() error {
	var active []models.RobotTask
	if err := s.DB.Where("status IN ?", []models.TaskStatus{
		models.TaskStatusPending, models.TaskStatusInProgress,
	}).Find(&active).Error; err != nil {
		return err
	}

	for _, task := range active {
		// 每个tick约三成任务发生推进，避免整批同时翻转
		if s.Telemetry.Float64() >= 0.3 {
			continue
		}
		if _, err := s.AdvanceTask(task.ID); err != nil {
			config.Warning("仿真推进任务 %s 失败: %v", task.ID, err)
		}
	}

	return nil
}

func (s *TaskService) publishTask(task *models.RobotTask) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishTaskEvent(task); err != nil {
		config.Warning("推送任务事件失败: %v", err)
	}
}
