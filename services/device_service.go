package services

import (
	"errors"
	"hotel-iot-service/config"
	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"
	"hotel-iot-service/utils"
	"strings"
	"time"

	"gorm.io/gorm"
)

// DeviceFilter 设备查询过滤条件，所有字段为空时返回全部设备
type DeviceFilter struct {
	RoomNumber string                `form:"room"`
	Type       models.DeviceType     `form:"type"`
	Status     models.DeviceStatus   `form:"status"`
	Category   models.DeviceCategory `form:"category"`
	Search     string                `form:"search"` // 按名称或ID模糊匹配
}

// DeviceStats 设备总览统计，每次请求时重新计算
type DeviceStats struct {
	TotalDevices   int64                           `json:"total_devices"`
	OnlineDevices  int64                           `json:"online_devices"`
	UptimePercent  float64                         `json:"uptime_percent"`
	CategoryCounts map[models.DeviceCategory]int64 `json:"category_counts"`
	StatusCounts   map[models.DeviceStatus]int64   `json:"status_counts"`
	TotalEnergy    float64                         `json:"total_energy"` // kWh
}

// InterfaceDeviceService defines the device registry interface
type InterfaceDeviceService interface {
	GetAllDevices(filter DeviceFilter, page models.PaginationQuery) ([]models.Device, int64, error)
	GetDeviceByID(id string) (*models.Device, error)
	GetRoomDevices(roomNumber string) ([]models.Device, error)
	CreateDevice(device *models.Device) error
	GetDeviceStats() (*DeviceStats, error)
	TickDevices() error
}

// DeviceService 提供设备注册表相关的服务
type DeviceService struct {
	DB        *gorm.DB
	Config    *config.Config
	Telemetry TelemetrySource
}

// NewDeviceService 创建一个新的设备服务
func NewDeviceService(db *gorm.DB, cfg *config.Config, telemetry TelemetrySource) InterfaceDeviceService {
	return &DeviceService{
		DB:        db,
		Config:    cfg,
		Telemetry: telemetry,
	}
}

// 1 GetAllDevices 按过滤条件获取设备列表，支持分页
func (s *DeviceService) GetAllDevices(filter DeviceFilter, page models.PaginationQuery) ([]models.Device, int64, error) {
	query := s.DB.Model(&models.Device{})

	if filter.RoomNumber != "" {
		query = query.Where("room_number = ?", filter.RoomNumber)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("name LIKE ? OR id LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Normalize()
	order := "id asc"
	if page.Desc {
		order = "id desc"
	}

	var devices []models.Device
	if err := query.Order(order).Offset(offset).Limit(limit).Find(&devices).Error; err != nil {
		return nil, 0, err
	}

	return devices, total, nil
}

// 2 GetDeviceByID 根据ID获取设备
func (s *DeviceService) GetDeviceByID(id string) (*models.Device, error) {
	var device models.Device
	if err := s.DB.First(&device, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(code.ErrDeviceNotFound, "设备 %s 不存在", id)
		}
		return nil, err
	}

	return &device, nil
}

// 3 GetRoomDevices 获取指定房间的全部设备
func (s *DeviceService) GetRoomDevices(roomNumber string) ([]models.Device, error) {
	var room models.Room
	if err := s.DB.First(&room, "room_number = ?", roomNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(code.ErrRoomNotFound, "房间 %s 不存在", roomNumber)
		}
		return nil, err
	}

	var devices []models.Device
	if err := s.DB.Where("room_number = ?", roomNumber).Order("id asc").Find(&devices).Error; err != nil {
		return nil, err
	}

	return devices, nil
}

// 4 CreateDevice 登记新设备
func (s *DeviceService) CreateDevice(device *models.Device) error {
	if device.Name == "" {
		return apperr.New(code.ErrValidation, "设备名称不能为空")
	}
	if !models.ValidDeviceType(device.Type) {
		return apperr.New(code.ErrValidation, "非法的设备类型: %s", device.Type)
	}
	if device.Status != "" && !models.ValidDeviceStatus(device.Status) {
		return apperr.New(code.ErrValidation, "非法的设备状态: %s", device.Status)
	}
	if device.RoomNumber != nil {
		var count int64
		if err := s.DB.Model(&models.Room{}).Where("room_number = ?", *device.RoomNumber).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.New(code.ErrRoomNotFound, "房间 %s 不存在", *device.RoomNumber)
		}
	}

	if device.ID == "" {
		device.ID = utils.NewEntityID("dev")
	}
	device.Category = models.CategoryForType(device.Type)
	if device.Status == "" {
		device.Status = models.DeviceStatusOffline
	}
	device.LastUpdate = time.Now()

	return s.DB.Create(device).Error
}

// 5 GetDeviceStats 计算设备总览统计（在线率、分类计数）
func (s *DeviceService) GetDeviceStats() (*DeviceStats, error) {
	stats := &DeviceStats{
		CategoryCounts: map[models.DeviceCategory]int64{},
		StatusCounts:   map[models.DeviceStatus]int64{},
	}

	if err := s.DB.Model(&models.Device{}).Count(&stats.TotalDevices).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Device{}).Where("status = ?", models.DeviceStatusOnline).Count(&stats.OnlineDevices).Error; err != nil {
		return nil, err
	}
	if stats.TotalDevices > 0 {
		stats.UptimePercent = float64(stats.OnlineDevices) / float64(stats.TotalDevices) * 100
	}

	type groupCount struct {
		Key   string
		Count int64
	}

	var byCategory []groupCount
	if err := s.DB.Model(&models.Device{}).Select("category as `key`, count(*) as count").Group("category").Scan(&byCategory).Error; err != nil {
		return nil, err
	}
	for _, g := range byCategory {
		stats.CategoryCounts[models.DeviceCategory(g.Key)] = g.Count
	}

	var byStatus []groupCount
	if err := s.DB.Model(&models.Device{}).Select("status as `key`, count(*) as count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, g := range byStatus {
		stats.StatusCounts[models.DeviceStatus(g.Key)] = g.Count
	}

	var totalEnergy float64
	if err := s.DB.Model(&models.Device{}).Select("COALESCE(SUM(energy_consumption), 0)").Scan(&totalEnergy).Error; err != nil {
		return nil, err
	}
	stats.TotalEnergy = totalEnergy

	return stats, nil
}

// tempWalkBounds 按设备类型给出温度游走边界，迷你吧工作在制冷区间
func tempWalkBounds(t models.DeviceType) (low, high float64) {
	if t == models.DeviceTypeMiniBar {
		return 2, 10
	}
	return 16, 30
}

// 6 TickDevices 对在线设备执行一步有界遥测游走
func (s *DeviceService) TickDevices() error {
	var devices []models.Device
	if err := s.DB.Where("status = ?", models.DeviceStatusOnline).Find(&devices).Error; err != nil {
		return err
	}

	now := time.Now()
	for i := range devices {
		d := &devices[i]
		if d.Temperature != nil {
			low, high := tempWalkBounds(d.Type)
			v := s.Telemetry.Walk(*d.Temperature, 0.3, low, high)
			d.Temperature = &v
		}
		if d.Humidity != nil {
			v := s.Telemetry.Walk(*d.Humidity, 1.5, 30, 70)
			d.Humidity = &v
		}
		if d.Battery != nil {
			v := s.Telemetry.Walk(*d.Battery, 0.8, 0, 100)
			d.Battery = &v
		}
		if d.Signal != nil {
			v := s.Telemetry.Walk(*d.Signal, 3, 40, 100)
			d.Signal = &v
		}
		d.EnergyConsumption += s.Telemetry.Between(0, 0.05)
		d.LastUpdate = now

		if err := s.DB.Save(d).Error; err != nil {
			return err
		}
	}

	return nil
}
