package models

import "time"

// RobotStatus 配送机器人状态
type RobotStatus string

const (
	RobotStatusOnline      RobotStatus = "online"
	RobotStatusOffline     RobotStatus = "offline"
	RobotStatusCharging    RobotStatus = "charging"
	RobotStatusMaintenance RobotStatus = "maintenance"
	RobotStatusError       RobotStatus = "error"
)

// RobotAction 机器人远程控制动作
type RobotAction string

const (
	RobotActionStart       RobotAction = "start"
	RobotActionStop        RobotAction = "stop"
	RobotActionCharge      RobotAction = "charge"
	RobotActionMaintenance RobotAction = "maintenance"
)

// ValidRobotAction 校验控制动作是否合法
func ValidRobotAction(a RobotAction) bool {
	switch a {
	case RobotActionStart, RobotActionStop, RobotActionCharge, RobotActionMaintenance:
		return true
	}
	return false
}

// Robot represents a delivery robot fleet member.
// Battery/Signal ∈ [0,100]；非online状态下Speed恒为0；
// ErrorCode/ErrorMessage 仅在status=error时存在。
type Robot struct {
	ID              string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name            string      `gorm:"type:varchar(50);not null" json:"name"`
	Status          RobotStatus `gorm:"type:varchar(20);index" json:"status"`
	Battery         float64     `json:"battery"` // %
	Signal          float64     `json:"signal"`  // %
	CurrentLocation string      `gorm:"type:varchar(50)" json:"current_location"`
	CurrentTask     string      `gorm:"type:varchar(64)" json:"current_task"` // 任务ID，空闲时为空
	Speed           float64     `json:"speed"`                                // m/s
	Temperature     float64     `json:"temperature"`                          // °C
	LastUpdate      time.Time   `json:"last_update"`
	TotalDeliveries int         `json:"total_deliveries"`
	TotalDistance   float64     `json:"total_distance"` // km
	Uptime          float64     `json:"uptime"`         // 小时
	ErrorCode       *string     `gorm:"type:varchar(20)" json:"error_code,omitempty"`
	ErrorMessage    *string     `gorm:"type:varchar(200)" json:"error_message,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// InitialRobotStatus 机器人生成时的状态策略。
// 低电量判定优先于维护/故障的随机判定；这只是生成时策略，
// 之后电量越过阈值不会自动触发状态迁移。
func InitialRobotStatus(battery, maintenanceRoll, errorRoll float64) RobotStatus {
	if battery < 20 {
		return RobotStatusCharging
	}
	if maintenanceRoll < 0.05 {
		return RobotStatusMaintenance
	}
	if errorRoll < 0.02 {
		return RobotStatusError
	}
	return RobotStatusOnline
}

// StatusForAction 控制动作对应的目标状态
func StatusForAction(a RobotAction) RobotStatus {
	switch a {
	case RobotActionStart:
		return RobotStatusOnline
	case RobotActionStop:
		return RobotStatusOffline
	case RobotActionCharge:
		return RobotStatusCharging
	case RobotActionMaintenance:
		return RobotStatusMaintenance
	default:
		return RobotStatusOffline
	}
}
