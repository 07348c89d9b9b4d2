package services

import (
	"errors"
	"hotel-iot-service/config"
	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"

	"gorm.io/gorm"
)

// RoomFilter 房间查询过滤条件
type RoomFilter struct {
	Status models.RoomStatus `form:"status"`
	Floor  int               `form:"floor"`
	Type   models.RoomType   `form:"type"`
}

// RoomStats 房间总览统计
type RoomStats struct {
	TotalRooms    int64                       `json:"total_rooms"`
	OccupiedRooms int64                       `json:"occupied_rooms"`
	OccupancyRate float64                     `json:"occupancy_rate"` // %
	StatusCounts  map[models.RoomStatus]int64 `json:"status_counts"`
	TotalEnergy   float64                     `json:"total_energy"` // kWh
}

// InterfaceRoomService defines the room registry interface
type InterfaceRoomService interface {
	GetAllRooms(filter RoomFilter, page models.PaginationQuery) ([]models.Room, int64, error)
	GetRoomByNumber(roomNumber string) (*models.Room, error)
	GetRoomStats() (*RoomStats, error)
	TickRooms() error
}

// RoomService 提供房间注册表相关的服务
type RoomService struct {
	DB        *gorm.DB
	Config    *config.Config
	Telemetry TelemetrySource
}

// NewRoomService 创建一个新的房间服务
func NewRoomService(db *gorm.DB, cfg *config.Config, telemetry TelemetrySource) InterfaceRoomService {
	return &RoomService{
		DB:        db,
		Config:    cfg,
		Telemetry: telemetry,
	}
}

// 1 GetAllRooms 按过滤条件获取房间列表，设备计数实时重算
func (s *RoomService) GetAllRooms(filter RoomFilter, page models.PaginationQuery) ([]models.Room, int64, error) {
	query := s.DB.Model(&models.Room{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Floor > 0 {
		query = query.Where("floor = ?", filter.Floor)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Normalize()
	order := "room_number asc"
	if page.Desc {
		order = "room_number desc"
	}

	var rooms []models.Room
	if err := query.Order(order).Offset(offset).Limit(limit).Find(&rooms).Error; err != nil {
		return nil, 0, err
	}

	if err := s.attachDeviceCounts(rooms); err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}

// 2 GetRoomByNumber 根据房号获取房间
func (s *RoomService) GetRoomByNumber(roomNumber string) (*models.Room, error) {
	var room models.Room
	if err := s.DB.First(&room, "room_number = ?", roomNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(code.ErrRoomNotFound, "房间 %s 不存在", roomNumber)
		}
		return nil, err
	}

	rooms := []models.Room{room}
	if err := s.attachDeviceCounts(rooms); err != nil {
		return nil, err
	}

	return &rooms[0], nil
}

// 3 GetRoomStats 计算入住率等总览统计
func (s *RoomService) GetRoomStats() (*RoomStats, error) {
	stats := &RoomStats{
		StatusCounts: map[models.RoomStatus]int64{},
	}

	if err := s.DB.Model(&models.Room{}).Count(&stats.TotalRooms).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Room{}).Where("status = ?", models.RoomStatusOccupied).Count(&stats.OccupiedRooms).Error; err != nil {
		return nil, err
	}
	if stats.TotalRooms > 0 {
		stats.OccupancyRate = float64(stats.OccupiedRooms) / float64(stats.TotalRooms) * 100
	}

	type groupCount struct {
		Key   string
		Count int64
	}
	var byStatus []groupCount
	if err := s.DB.Model(&models.Room{}).Select("status as `key`, count(*) as count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, g := range byStatus {
		stats.StatusCounts[models.RoomStatus(g.Key)] = g.Count
	}

	var totalEnergy float64
	if err := s.DB.Model(&models.Room{}).Select("COALESCE(SUM(energy_consumption), 0)").Scan(&totalEnergy).Error; err != nil {
		return nil, err
	}
	stats.TotalEnergy = totalEnergy

	return stats, nil
}

// 4 TickRooms 对入住房间执行一步温湿度游走，能耗从房间设备汇总
func (s *RoomService) TickRooms() error {
	var rooms []models.Room
	if err := s.DB.Where("status = ?", models.RoomStatusOccupied).Find(&rooms).Error; err != nil {
		return err
	}

	for i := range rooms {
		r := &rooms[i]
		r.Temperature = s.Telemetry.Walk(r.Temperature, 0.2, 18, 28)
		r.Humidity = s.Telemetry.Walk(r.Humidity, 1.0, 35, 65)

		var energy float64
		if err := s.DB.Model(&models.Device{}).Where("room_number = ?", r.RoomNumber).
			Select("COALESCE(SUM(energy_consumption), 0)").Scan(&energy).Error; err != nil {
			return err
		}
		r.EnergyConsumption = energy

		if err := s.DB.Save(r).Error; err != nil {
			return err
		}
	}

	return nil
}

// attachDeviceCounts 重算每个房间的设备总数与在线数。
// 在线数永远不会超过总数：二者出自同一张设备表的同一次统计。
func (s *RoomService) attachDeviceCounts(rooms []models.Room) error {
	if len(rooms) == 0 {
		return nil
	}

	numbers := make([]string, 0, len(rooms))
	for _, r := range rooms {
		numbers = append(numbers, r.RoomNumber)
	}

	type roomCount struct {
		RoomNumber string
		Total      int64
		Online     int64
	}
	var counts []roomCount
	if err := s.DB.Model(&models.Device{}).
		Select("room_number, count(*) as total, sum(case when status = ? then 1 else 0 end) as online", models.DeviceStatusOnline).
		Where("room_number IN ?", numbers).
		Group("room_number").
		Scan(&counts).Error; err != nil {
		return err
	}

	byRoom := make(map[string]roomCount, len(counts))
	for _, c := range counts {
		byRoom[c.RoomNumber] = c
	}
	for i := range rooms {
		c := byRoom[rooms[i].RoomNumber]
		rooms[i].DeviceCount = int(c.Total)
		rooms[i].OnlineDeviceCount = int(c.Online)
	}

	return nil
}
