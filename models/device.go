package models

import (
	"time"
)

// DeviceStatus represents the status of an in-room or shared-area device
type DeviceStatus string

const (
	DeviceStatusOnline      DeviceStatus = "online"
	DeviceStatusOffline     DeviceStatus = "offline"
	DeviceStatusWarning     DeviceStatus = "warning"
	DeviceStatusError       DeviceStatus = "error"
	DeviceStatusCharging    DeviceStatus = "charging"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
)

// DeviceType 设备类型
type DeviceType string

const (
	DeviceTypeAirConditioner DeviceType = "air_conditioner"
	DeviceTypeLighting       DeviceType = "lighting"
	DeviceTypeTV             DeviceType = "tv"
	DeviceTypeCurtain        DeviceType = "curtain"
	DeviceTypeDoorLock       DeviceType = "door_lock"
	DeviceTypeMiniBar        DeviceType = "mini_bar"
	DeviceTypeSafeBox        DeviceType = "safe_box"
	DeviceTypeDeliveryRobot  DeviceType = "delivery_robot"
	DeviceTypeAccessControl  DeviceType = "access_control"
	DeviceTypeElevator       DeviceType = "elevator"
	DeviceTypeFireAlarm      DeviceType = "fire_alarm"
	DeviceTypeCCTVCamera     DeviceType = "cctv_camera"
	DeviceTypeSensor         DeviceType = "sensor"
	DeviceTypeCamera         DeviceType = "camera"
	DeviceTypePhone          DeviceType = "phone"
	DeviceTypeController     DeviceType = "controller"
)

// DeviceCategory 设备分类
type DeviceCategory string

const (
	CategoryHVAC          DeviceCategory = "hvac"
	CategoryLighting      DeviceCategory = "lighting"
	CategorySecurity      DeviceCategory = "security"
	CategoryEntertainment DeviceCategory = "entertainment"
	CategoryComfort       DeviceCategory = "comfort"
)

// Device represents a hotel IoT device.
// 类型专属属性使用指针，非本类型的属性保持为 nil（接口层渲染为"不适用"而不是0）。
type Device struct {
	ID         string       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name       string       `gorm:"type:varchar(50);not null" json:"name"`
	RoomNumber *string      `gorm:"type:varchar(10);index" json:"room_number,omitempty"` // 公共区域设备不关联房间
	Type       DeviceType   `gorm:"type:varchar(30);not null;index" json:"type"`
	Category   DeviceCategory `gorm:"type:varchar(20);index" json:"category"`
	Status     DeviceStatus `gorm:"type:varchar(20);default:'offline';index" json:"status"`

	// 类型专属属性
	Temperature *float64 `json:"temperature,omitempty"` // °C
	Humidity    *float64 `json:"humidity,omitempty"`    // %
	Brightness  *float64 `json:"brightness,omitempty"`  // %
	Power       *float64 `json:"power,omitempty"`       // 0/1
	Battery     *float64 `json:"battery,omitempty"`     // %
	Signal      *float64 `json:"signal,omitempty"`      // %
	Volume      *float64 `json:"volume,omitempty"`      // %

	EnergyConsumption float64   `json:"energy_consumption"` // kWh
	LastUpdate        time.Time `json:"last_update"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// deviceCategoryMap 设备类型到分类的映射
var deviceCategoryMap = map[DeviceType]DeviceCategory{
	DeviceTypeAirConditioner: CategoryHVAC,
	DeviceTypeSensor:         CategoryHVAC,
	DeviceTypeLighting:       CategoryLighting,
	DeviceTypeCurtain:        CategoryLighting,
	DeviceTypeDoorLock:       CategorySecurity,
	DeviceTypeSafeBox:        CategorySecurity,
	DeviceTypeAccessControl:  CategorySecurity,
	DeviceTypeFireAlarm:      CategorySecurity,
	DeviceTypeCCTVCamera:     CategorySecurity,
	DeviceTypeCamera:         CategorySecurity,
	DeviceTypeTV:             CategoryEntertainment,
	DeviceTypePhone:          CategoryEntertainment,
	DeviceTypeMiniBar:        CategoryComfort,
	DeviceTypeDeliveryRobot:  CategoryComfort,
	DeviceTypeElevator:       CategoryComfort,
	DeviceTypeController:     CategoryComfort,
}

// CategoryForType 返回设备类型对应的分类
func CategoryForType(t DeviceType) DeviceCategory {
	if c, ok := deviceCategoryMap[t]; ok {
		return c
	}
	return CategoryComfort
}

// ValidDeviceType 校验设备类型是否合法
func ValidDeviceType(t DeviceType) bool {
	_, ok := deviceCategoryMap[t]
	return ok
}

// ValidDeviceStatus 校验设备状态是否合法
func ValidDeviceStatus(s DeviceStatus) bool {
	switch s {
	case DeviceStatusOnline, DeviceStatusOffline, DeviceStatusWarning,
		DeviceStatusError, DeviceStatusCharging, DeviceStatusMaintenance:
		return true
	}
	return false
}

// adjustableFields 每种设备类型允许调节的参数
var adjustableFields = map[DeviceType][]AdjustmentType{
	DeviceTypeAirConditioner: {AdjustmentTemperature, AdjustmentPower, AdjustmentSchedule},
	DeviceTypeLighting:       {AdjustmentBrightness, AdjustmentPower, AdjustmentSchedule},
	DeviceTypeTV:             {AdjustmentVolume, AdjustmentPower},
	DeviceTypeCurtain:        {AdjustmentBrightness, AdjustmentPower, AdjustmentSchedule},
	DeviceTypePhone:          {AdjustmentVolume, AdjustmentPower},
	DeviceTypeMiniBar:        {AdjustmentTemperature, AdjustmentPower},
	DeviceTypeElevator:       {AdjustmentPower},
	DeviceTypeController:     {AdjustmentPower, AdjustmentSchedule},
}

// SupportsAdjustment 判断设备类型是否支持指定调节参数
func (t DeviceType) SupportsAdjustment(a AdjustmentType) bool {
	for _, f := range adjustableFields[t] {
		if f == a {
			return true
		}
	}
	return false
}

// Touch 更新设备的最后更新时间
func (d *Device) Touch() {
	d.LastUpdate = time.Now()
}
