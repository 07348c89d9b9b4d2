package models

import "time"

// TaskType 机器人任务类型
type TaskType string

const (
	TaskTypeDelivery    TaskType = "delivery"
	TaskTypePickup      TaskType = "pickup"
	TaskTypeMaintenance TaskType = "maintenance"
	TaskTypePatrol      TaskType = "patrol"
)

// ValidTaskType 校验任务类型是否合法
func ValidTaskType(t TaskType) bool {
	switch t {
	case TaskTypeDelivery, TaskTypePickup, TaskTypeMaintenance, TaskTypePatrol:
		return true
	}
	return false
}

// TaskStatus 任务状态，状态机: pending → in_progress → {completed|failed|cancelled}
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsTerminal 终态不允许再发生任何状态迁移
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusCancelled
}

// TaskPriority 任务优先级
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// ValidTaskPriority 校验优先级是否合法
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RobotTask 机器人任务记录
type RobotTask struct {
	ID            string       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RobotID       string       `gorm:"type:varchar(64);index" json:"robot_id"`
	RobotName     string       `gorm:"type:varchar(50)" json:"robot_name"`
	TaskType      TaskType     `gorm:"type:varchar(20);index" json:"task_type"`
	Status        TaskStatus   `gorm:"type:varchar(20);index" json:"status"`
	Priority      TaskPriority `gorm:"type:varchar(10)" json:"priority"`
	StartLocation string       `gorm:"type:varchar(50)" json:"start_location"`
	Destination   string       `gorm:"type:varchar(50)" json:"destination"`
	GuestName     string       `gorm:"type:varchar(50)" json:"guest_name,omitempty"`   // 仅配送任务
	RoomNumber    string       `gorm:"type:varchar(10)" json:"room_number,omitempty"`  // 仅配送任务
	Items         []string     `gorm:"serializer:json" json:"items"`
	EstimatedTime int          `json:"estimated_time"`           // 分钟
	ActualTime    *int         `json:"actual_time,omitempty"`    // 仅完成时写入
	CreatedAt     time.Time    `json:"created_at"`
	StartedAt     *time.Time   `json:"started_at,omitempty"`     // 离开pending前必须写入
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`   // 进入终态前必须写入
	Operator      string       `gorm:"type:varchar(50)" json:"operator"`
	Notes         string       `gorm:"type:varchar(200)" json:"notes"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
