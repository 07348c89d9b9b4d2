package models

import "time"

// AlertType 告警级别
type AlertType string

const (
	AlertTypeError   AlertType = "error"
	AlertTypeWarning AlertType = "warning"
	AlertTypeInfo    AlertType = "info"
)

// Alert 告警记录。
// 由机器人快照派生的告警使用确定性ID（条件+机器人），
// 刷新时按ID合并以保留已读标记。
type Alert struct {
	ID        string    `gorm:"primaryKey;type:varchar(60)" json:"id"`
	Type      AlertType `gorm:"type:varchar(10);index" json:"type"`
	Title     string    `gorm:"type:varchar(100)" json:"title"`
	Message   string    `gorm:"type:varchar(300)" json:"message"`
	RobotID   *string   `gorm:"type:varchar(64);index" json:"robot_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	// 列名避开MySQL保留字read
	Read bool `gorm:"column:is_read;default:false;index" json:"read"`
}
