package models

import "time"

// RoomStatus 房间状态
type RoomStatus string

const (
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusVacant      RoomStatus = "vacant"
	RoomStatusMaintenance RoomStatus = "maintenance"
	RoomStatusReserved    RoomStatus = "reserved"
)

// RoomType 房型，按楼层段划分
type RoomType string

const (
	RoomTypeStandard RoomType = "standard"
	RoomTypeDeluxe   RoomType = "deluxe"
	RoomTypeSuite    RoomType = "suite"
)

// Room represents a guest room.
// DeviceCount/OnlineDeviceCount 为派生字段，读取时根据设备表重新计算，不落库。
type Room struct {
	RoomNumber string     `gorm:"primaryKey;type:varchar(10)" json:"room_number"` // 楼层+房号零填充，如 "0101"
	Floor      int        `gorm:"index" json:"floor"`
	Type       RoomType   `gorm:"type:varchar(20)" json:"type"`
	Status     RoomStatus `gorm:"type:varchar(20);default:'vacant';index" json:"status"`

	Temperature       float64 `json:"temperature"`
	Humidity          float64 `json:"humidity"`
	EnergyConsumption float64 `json:"energy_consumption"`

	DeviceCount       int `gorm:"-" json:"device_count"`
	OnlineDeviceCount int `gorm:"-" json:"online_device_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoomTypeForFloor 按楼层段返回房型: 1-3层标准间, 4-5层豪华间, 6层以上套房
func RoomTypeForFloor(floor int) RoomType {
	switch {
	case floor >= 6:
		return RoomTypeSuite
	case floor >= 4:
		return RoomTypeDeluxe
	default:
		return RoomTypeStandard
	}
}
