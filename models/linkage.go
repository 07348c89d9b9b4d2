package models

import (
	"fmt"
	"time"
)

// TriggerType 联动规则触发类型
type TriggerType string

const (
	TriggerManual        TriggerType = "manual"
	TriggerTimeBased     TriggerType = "time_based"
	TriggerSensorBased   TriggerType = "sensor_based"
	TriggerGuestCheckin  TriggerType = "guest_checkin"
	TriggerGuestCheckout TriggerType = "guest_checkout"
)

// ValidTriggerType 校验触发类型是否合法
func ValidTriggerType(t TriggerType) bool {
	switch t {
	case TriggerManual, TriggerTimeBased, TriggerSensorBased, TriggerGuestCheckin, TriggerGuestCheckout:
		return true
	}
	return false
}

// ActionParameters 联动动作参数。
// 每个字段只对特定设备类型有意义，构造时按目标设备类型校验，
// 避免开放式map带来的非法参数组合。
type ActionParameters struct {
	Temperature *float64 `json:"temperature,omitempty"` // 空调/迷你吧
	Brightness  *float64 `json:"brightness,omitempty"`  // 灯光/窗帘
	Volume      *float64 `json:"volume,omitempty"`      // 电视/电话
	Power       *float64 `json:"power,omitempty"`       // 0关 1开
	Schedule    *float64 `json:"schedule,omitempty"`    // 一天内的分钟数
}

// LinkageAction 联动规则中的单个设备动作
type LinkageAction struct {
	DeviceID   string           `json:"device_id"`
	DeviceName string           `json:"device_name"`
	Action     string           `json:"action"` // set_temperature / set_brightness / set_volume / turn_on / turn_off / set_schedule
	Parameters ActionParameters `json:"parameters"`
}

// DeviceLinkage 设备联动规则
type DeviceLinkage struct {
	ID               string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name             string          `gorm:"type:varchar(50);not null" json:"name"`
	Description      string          `gorm:"type:varchar(200)" json:"description"`
	TriggerType      TriggerType     `gorm:"type:varchar(20);index" json:"trigger_type"`
	TriggerCondition string          `gorm:"type:varchar(200)" json:"trigger_condition"`
	Actions          []LinkageAction `gorm:"serializer:json" json:"actions"`
	IsEnabled        bool            `gorm:"default:true;index" json:"is_enabled"`
	RoomNumbers      []string        `gorm:"serializer:json" json:"room_numbers"`
	ExecutionCount   int             `json:"execution_count"` // 单调不减，停用不清零
	LastExecuted     *time.Time      `json:"last_executed,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Adjustments 将动作参数展开为调节类型与目标值
func (a LinkageAction) Adjustments() map[AdjustmentType]float64 {
	out := map[AdjustmentType]float64{}
	if a.Parameters.Temperature != nil {
		out[AdjustmentTemperature] = *a.Parameters.Temperature
	}
	if a.Parameters.Brightness != nil {
		out[AdjustmentBrightness] = *a.Parameters.Brightness
	}
	if a.Parameters.Volume != nil {
		out[AdjustmentVolume] = *a.Parameters.Volume
	}
	if a.Parameters.Power != nil {
		out[AdjustmentPower] = *a.Parameters.Power
	}
	if a.Parameters.Schedule != nil {
		out[AdjustmentSchedule] = *a.Parameters.Schedule
	}
	return out
}

// Validate 按目标设备类型校验动作参数组合
func (a LinkageAction) Validate(deviceType DeviceType) error {
	adjustments := a.Adjustments()
	if len(adjustments) == 0 {
		return fmt.Errorf("动作 %q 未携带任何参数", a.Action)
	}
	for t, v := range adjustments {
		if !deviceType.SupportsAdjustment(t) {
			return fmt.Errorf("设备类型 %s 不支持参数 %s", deviceType, t)
		}
		min, max, _ := AdjustmentRange(t)
		if v < min || v > max {
			return fmt.Errorf("参数 %s 的值 %.1f 超出范围 [%.0f, %.0f]", t, v, min, max)
		}
	}
	return nil
}

// ExecutionResult 单次规则执行结果
type ExecutionResult struct {
	RuleID         string    `json:"rule_id"`
	RuleName       string    `json:"rule_name"`
	ExecutedAt     time.Time `json:"executed_at"`
	ExecutionCount int       `json:"execution_count"`
	ActionsApplied int       `json:"actions_applied"`
	ActionErrors   []string  `json:"action_errors,omitempty"` // 单个动作失败不中断后续动作
}
