package models

import "time"

// AdjustmentType 调节参数类型
type AdjustmentType string

const (
	AdjustmentTemperature AdjustmentType = "temperature"
	AdjustmentBrightness  AdjustmentType = "brightness"
	AdjustmentVolume      AdjustmentType = "volume"
	AdjustmentPower       AdjustmentType = "power"
	AdjustmentSchedule    AdjustmentType = "schedule"
)

// Adjuster 操作来源
type Adjuster string

const (
	AdjusterGuest  Adjuster = "guest"
	AdjusterStaff  Adjuster = "staff"
	AdjusterSystem Adjuster = "auto_system"
)

// DeviceAdjustment 设备参数调节记录（仅追加，创建后不再修改）
type DeviceAdjustment struct {
	ID             string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	DeviceID       string         `gorm:"type:varchar(64);index" json:"device_id"`
	DeviceName     string         `gorm:"type:varchar(50)" json:"device_name"`
	RoomNumber     string         `gorm:"type:varchar(10);index" json:"room_number"`
	AdjustmentType AdjustmentType `gorm:"type:varchar(20);index" json:"adjustment_type"`
	OldValue       float64        `json:"old_value"` // 单位随调节类型: 温度为°C，其余为%
	NewValue       float64        `json:"new_value"`
	AdjustedBy     Adjuster       `gorm:"type:varchar(20);index" json:"adjusted_by"`
	Timestamp      time.Time      `gorm:"index" json:"timestamp"`
	Reason         string         `gorm:"type:varchar(200)" json:"reason"`
	EnergyImpact   float64        `json:"energy_impact"` // 有符号的kWh增量
}

// adjustmentRanges 每种调节类型的取值范围
var adjustmentRanges = map[AdjustmentType][2]float64{
	AdjustmentTemperature: {16, 30},
	AdjustmentBrightness:  {0, 100},
	AdjustmentVolume:      {0, 100},
	AdjustmentPower:       {0, 1},
	AdjustmentSchedule:    {0, 1440}, // 一天内的分钟数
}

// AdjustmentRange 返回调节类型的合法取值范围
func AdjustmentRange(t AdjustmentType) (min, max float64, ok bool) {
	r, found := adjustmentRanges[t]
	if !found {
		return 0, 0, false
	}
	return r[0], r[1], true
}

// ValidAdjustmentType 校验调节类型是否合法
func ValidAdjustmentType(t AdjustmentType) bool {
	_, ok := adjustmentRanges[t]
	return ok
}

// ValidAdjuster 校验操作来源是否合法
func ValidAdjuster(a Adjuster) bool {
	return a == AdjusterGuest || a == AdjusterStaff || a == AdjusterSystem
}
