package services

import (
	"fmt"
	"hotel-iot-service/config"
	"hotel-iot-service/models"
	"time"

	"github.com/robfig/cron/v3"
)

// InterfaceSimulationService defines the periodic simulation scheduler interface
type InterfaceSimulationService interface {
	Start() error
	Stop()
}

// SimulationService 周期仿真调度：设备/房间遥测游走、车队遥测、
// 任务推进、告警刷新、定时与传感器联动规则
type SimulationService struct {
	Config   *config.Config
	Devices  InterfaceDeviceService
	Rooms    InterfaceRoomService
	Robots   InterfaceRobotService
	Tasks    InterfaceTaskService
	Alerts   InterfaceAlertService
	Linkages InterfaceLinkageService

	cron *cron.Cron
}

// NewSimulationService 创建一个新的仿真调度服务
func NewSimulationService(cfg *config.Config, devices InterfaceDeviceService, rooms InterfaceRoomService,
	robots InterfaceRobotService, tasks InterfaceTaskService, alerts InterfaceAlertService,
	linkages InterfaceLinkageService) InterfaceSimulationService {
	return &SimulationService{
		Config:   cfg,
		Devices:  devices,
		Rooms:    rooms,
		Robots:   robots,
		Tasks:    tasks,
		Alerts:   alerts,
		Linkages: linkages,
	}
}

// 1 Start 注册全部周期任务并启动调度器
func (s *SimulationService) Start() error {
	if !s.Config.SimEnabled {
		config.Info("周期仿真未启用")
		return nil
	}

	s.cron = cron.New()

	jobs := []struct {
		name    string
		seconds int
		run     func() error
	}{
		{"device_tick", s.Config.DeviceTickSeconds, s.Devices.TickDevices},
		{"room_tick", s.Config.DeviceTickSeconds, s.Rooms.TickRooms},
		{"fleet_tick", s.Config.FleetTickSeconds, s.Robots.TickFleet},
		{"task_tick", s.Config.TaskTickSeconds, s.Tasks.TickTasks},
		{"alert_refresh", s.Config.AlertRefreshSeconds, s.refreshAlerts},
		{"linkage_rules", 60, s.runLinkageRules},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", job.seconds), func() {
			if err := job.run(); err != nil {
				config.Warning("仿真任务 %s 执行失败: %v", job.name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("注册仿真任务 %s 失败: %w", job.name, err)
		}
	}

	s.cron.Start()
	config.Info("周期仿真已启动，共 %d 个任务", len(jobs))
	return nil
}

// 2 Stop 停止调度器，等待在途任务结束
func (s *SimulationService) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	config.Info("周期仿真已停止")
}

func (s *SimulationService) refreshAlerts() error {
	_, err := s.Alerts.RefreshAlerts()
	return err
}

// runLinkageRules 每分钟执行到点的定时规则，
// 并以全馆环境快照（最高室温、平均湿度）求值传感器规则
func (s *SimulationService) runLinkageRules() error {
	if _, err := s.Linkages.ExecuteDueTimeBasedRules(time.Now()); err != nil {
		return err
	}

	env, err := s.buildSensorEnv()
	if err != nil {
		return err
	}
	_, err = s.Linkages.EvaluateSensorRules(env)
	return err
}

func (s *SimulationService) buildSensorEnv() (map[string]interface{}, error) {
	rooms, _, err := s.Rooms.GetAllRooms(RoomFilter{}, models.PaginationQuery{PageSize: 200})
	if err != nil {
		return nil, err
	}

	var maxTemp, sumHumidity float64
	for _, r := range rooms {
		if r.Temperature > maxTemp {
			maxTemp = r.Temperature
		}
		sumHumidity += r.Humidity
	}
	avgHumidity := 0.0
	if len(rooms) > 0 {
		avgHumidity = sumHumidity / float64(len(rooms))
	}

	return map[string]interface{}{
		"temperature": maxTemp,
		"humidity":    avgHumidity,
		"hour":        time.Now().Hour(),
	}, nil
}
