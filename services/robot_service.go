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

// robotLocations 机器人出现的候选位置
var robotLocations = []string{
	"大堂", "一层走廊", "二层走廊", "三层走廊", "四层走廊",
	"五层走廊", "六层走廊", "电梯厅", "后厨", "充电站",
}

// robotErrorCodes 故障机器人的错误码与描述
var robotErrorCodes = []struct {
	Code    string
	Message string
}{
	{"E101", "激光雷达读数异常"},
	{"E205", "驱动轮电机过流"},
	{"E310", "定位丢失，等待人工干预"},
}

// FleetStats 机器人车队总览统计
type FleetStats struct {
	TotalRobots     int64                         `json:"total_robots"`
	StatusCounts    map[models.RobotStatus]int64  `json:"status_counts"`
	AverageBattery  float64                       `json:"average_battery"`
	TotalDeliveries int64                         `json:"total_deliveries"`
	TotalDistance   float64                       `json:"total_distance"` // km
}

// InterfaceRobotService defines the robot fleet interface
type InterfaceRobotService interface {
	GenerateFleet(n int) ([]models.Robot, error)
	GetAllRobots(page models.PaginationQuery) ([]models.Robot, int64, error)
	GetRobotByID(id string) (*models.Robot, error)
	ControlRobot(id string, action models.RobotAction) (*models.Robot, error)
	TickFleet() error
	GetFleetStats() (*FleetStats, error)
}

// RobotService 提供机器人车队相关的服务
type RobotService struct {
	DB        *gorm.DB
	Config    *config.Config
	Telemetry TelemetrySource
	Events    InterfaceEventService
}

// NewRobotService 创建一个新的机器人服务
func NewRobotService(db *gorm.DB, cfg *config.Config, telemetry TelemetrySource, events InterfaceEventService) InterfaceRobotService {
	return &RobotService{
		DB:        db,
		Config:    cfg,
		Telemetry: telemetry,
		Events:    events,
	}
}

// 1 GenerateFleet 生成n台机器人并落库。
// 状态分配: 电量<20 ⇒ 充电中；否则5%维护、2%故障、其余在线。
func (s *RobotService) GenerateFleet(n int) ([]models.Robot, error) {
	now := time.Now()
	robots := make([]models.Robot, 0, n)

	for i := 0; i < n; i++ {
		battery := s.Telemetry.Between(5, 100)
		status := models.InitialRobotStatus(battery, s.Telemetry.Float64(), s.Telemetry.Float64())

		robot := models.Robot{
			ID:              utils.NewEntityID("robot"),
			Name:            fmt.Sprintf("配送机器人-%02d", i+1),
			Status:          status,
			Battery:         battery,
			Signal:          s.Telemetry.Between(60, 100),
			CurrentLocation: robotLocations[s.Telemetry.IntN(len(robotLocations))],
			Temperature:     s.Telemetry.Between(22, 27),
			LastUpdate:      now,
			TotalDeliveries: s.Telemetry.IntN(500),
			TotalDistance:   s.Telemetry.Between(50, 800),
			Uptime:          s.Telemetry.Between(100, 2000),
		}
		if status == models.RobotStatusOnline {
			robot.Speed = s.Telemetry.Between(0.3, 1.5)
		}
		if status == models.RobotStatusError {
			e := robotErrorCodes[s.Telemetry.IntN(len(robotErrorCodes))]
			robot.ErrorCode = &e.Code
			robot.ErrorMessage = &e.Message
		}
		if status == models.RobotStatusCharging {
			robot.CurrentLocation = "充电站"
		}

		robots = append(robots, robot)
	}

	if err := s.DB.Create(&robots).Error; err != nil {
		return nil, err
	}

	return robots, nil
}

// 2 GetAllRobots 获取机器人列表，支持分页
func (s *RobotService) GetAllRobots(page models.PaginationQuery) ([]models.Robot, int64, error) {
	var total int64
	if err := s.DB.Model(&models.Robot{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Normalize()
	order := "name asc"
	if page.Desc {
		order = "name desc"
	}

	var robots []models.Robot
	if err := s.DB.Order(order).Offset(offset).Limit(limit).Find(&robots).Error; err != nil {
		return nil, 0, err
	}

	return robots, total, nil
}

// 3 GetRobotByID 根据ID获取机器人
func (s *RobotService) GetRobotByID(id string) (*models.Robot, error) {
	var robot models.Robot
	if err := s.DB.First(&robot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(code.ErrRobotNotFound, "机器人 %s 不存在", id)
		}
		return nil, err
	}

	return &robot, nil
}

// 4 ControlRobot 远程控制机器人：确定性地覆写状态。
// 离开online状态时清空当前任务与速度。
func (s *RobotService) ControlRobot(id string, action models.RobotAction) (*models.Robot, error) {
	if !models.ValidRobotAction(action) {
		return nil, apperr.New(code.ErrInvalidRobotAction, "非法的控制动作: %s", action)
	}

	robot, err := s.GetRobotByID(id)
	if err != nil {
		return nil, err
	}

	newStatus := models.StatusForAction(action)
	robot.Status = newStatus
	robot.ErrorCode = nil
	robot.ErrorMessage = nil
	if newStatus != models.RobotStatusOnline {
		robot.Speed = 0
		robot.CurrentTask = ""
	}
	if newStatus == models.RobotStatusCharging {
		robot.CurrentLocation = "充电站"
	}
	robot.LastUpdate = time.Now()

	if err := s.DB.Save(robot).Error; err != nil {
		return nil, err
	}

	if s.Events != nil {
		if err := s.Events.PublishRobotStatus(robot); err != nil {
			config.Warning("推送机器人状态失败: %v", err)
		}
	}

	return robot, nil
}

// 5 TickFleet 对全部机器人执行一步有界遥测游走
func (s *RobotService) TickFleet() error {
	var robots []models.Robot
	if err := s.DB.Find(&robots).Error; err != nil {
		return err
	}

	dt := float64(s.Config.FleetTickSeconds)
	now := time.Now()

	for i := range robots {
		r := &robots[i]
		switch r.Status {
		case models.RobotStatusCharging:
			r.Battery += s.Telemetry.Between(0.5, 1.5)
			if r.Battery > 100 {
				r.Battery = 100
			}
		case models.RobotStatusOnline:
			// 在线机器人耗电略大于回升，长期趋势向下
			r.Battery = s.Telemetry.Walk(r.Battery-0.2, 0.6, 0, 100)
		default:
			r.Battery = s.Telemetry.Walk(r.Battery, 0.2, 0, 100)
		}

		r.Signal = s.Telemetry.Walk(r.Signal, 4, 0, 100)
		r.Temperature = s.Telemetry.Walk(r.Temperature, 0.4, 18, 35)

		if r.Status == models.RobotStatusOnline {
			r.Speed = s.Telemetry.Walk(r.Speed, 0.3, 0, 2)
			r.TotalDistance += r.Speed * dt / 1000 // m/s × s → km
			r.Uptime += dt / 3600
		} else {
			r.Speed = 0
		}
		r.LastUpdate = now

		if err := s.DB.Save(r).Error; err != nil {
			return err
		}
	}

	return nil
}

// 6 GetFleetStats 计算车队总览统计
func (s *RobotService) GetFleetStats() (*FleetStats, error) {
	stats := &FleetStats{
		StatusCounts: map[models.RobotStatus]int64{},
	}

	if err := s.DB.Model(&models.Robot{}).Count(&stats.TotalRobots).Error; err != nil {
		return nil, err
	}

	type groupCount struct {
		Key   string
		Count int64
	}
	var byStatus []groupCount
	if err := s.DB.Model(&models.Robot{}).Select("status as `key`, count(*) as count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, g := range byStatus {
		stats.StatusCounts[models.RobotStatus(g.Key)] = g.Count
	}

	if stats.TotalRobots > 0 {
		var avgBattery float64
		if err := s.DB.Model(&models.Robot{}).Select("AVG(battery)").Scan(&avgBattery).Error; err != nil {
			return nil, err
		}
		stats.AverageBattery = avgBattery
	}

	var totalDeliveries int64
	if err := s.DB.Model(&models.Robot{}).Select("COALESCE(SUM(total_deliveries), 0)").Scan(&totalDeliveries).Error; err != nil {
		return nil, err
	}
	stats.TotalDeliveries = totalDeliveries

	var totalDistance float64
	if err := s.DB.Model(&models.Robot{}).Select("COALESCE(SUM(total_distance), 0)").Scan(&totalDistance).Error; err != nil {
		return nil, err
	}
	stats.TotalDistance = totalDistance

	return stats, nil
}
