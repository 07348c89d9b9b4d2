package services

import (
	"fmt"
	"hotel-iot-service/config"
	"hotel-iot-service/models"
	"time"

	"gorm.io/gorm"
)

// deviceTypeCode 设备ID前缀，如 AC-0101
var deviceTypeCode = map[models.DeviceType]string{
	models.DeviceTypeAirConditioner: "AC",
	models.DeviceTypeLighting:       "LT",
	models.DeviceTypeTV:             "TV",
	models.DeviceTypeCurtain:        "CT",
	models.DeviceTypeDoorLock:       "DL",
	models.DeviceTypeMiniBar:        "MB",
	models.DeviceTypePhone:          "PH",
	models.DeviceTypeSensor:         "SR",
	models.DeviceTypeController:     "CR",
	models.DeviceTypeElevator:       "EL",
	models.DeviceTypeAccessControl:  "GA",
	models.DeviceTypeFireAlarm:      "FA",
	models.DeviceTypeCCTVCamera:     "CC",
	models.DeviceTypeDeliveryRobot:  "DR",
}

// deviceTypeName 设备中文名
var deviceTypeName = map[models.DeviceType]string{
	models.DeviceTypeAirConditioner: "空调",
	models.DeviceTypeLighting:       "灯光",
	models.DeviceTypeTV:             "电视",
	models.DeviceTypeCurtain:        "窗帘",
	models.DeviceTypeDoorLock:       "门锁",
	models.DeviceTypeMiniBar:        "迷你吧",
	models.DeviceTypePhone:          "客房电话",
	models.DeviceTypeSensor:         "环境传感器",
	models.DeviceTypeController:     "中控面板",
	models.DeviceTypeElevator:       "电梯",
	models.DeviceTypeAccessControl:  "门禁",
	models.DeviceTypeFireAlarm:      "烟感报警器",
	models.DeviceTypeCCTVCamera:     "监控摄像头",
	models.DeviceTypeDeliveryRobot:  "配送机器人",
}

// roomDeviceTypes 每间客房的标准设备配置
var roomDeviceTypes = []models.DeviceType{
	models.DeviceTypeAirConditioner,
	models.DeviceTypeLighting,
	models.DeviceTypeTV,
	models.DeviceTypeCurtain,
	models.DeviceTypeDoorLock,
	models.DeviceTypeMiniBar,
}

// InterfaceSeedService defines the data seeding interface
type InterfaceSeedService interface {
	SeedIfEmpty() error
}

// SeedService 数据初始化：库为空时生成楼栋/客房/设备/车队/任务/默认联动规则
type SeedService struct {
	DB        *gorm.DB
	Config    *config.Config
	Telemetry TelemetrySource
	Robots    InterfaceRobotService
	Tasks     InterfaceTaskService
	Linkages  InterfaceLinkageService

	sharedSeq int // 公共区域设备编号
}

// NewSeedService 创建一个新的数据初始化服务
func NewSeedService(db *gorm.DB, cfg *config.Config, telemetry TelemetrySource,
	robots InterfaceRobotService, tasks InterfaceTaskService, linkages InterfaceLinkageService) InterfaceSeedService {
	return &SeedService{
		DB:        db,
		Config:    cfg,
		Telemetry: telemetry,
		Robots:    robots,
		Tasks:     tasks,
		Linkages:  linkages,
	}
}

// 1 SeedIfEmpty 仅当房间表为空时执行初始化，重启不重复建数据
func (s *SeedService) SeedIfEmpty() error {
	var roomCount int64
	if err := s.DB.Model(&models.Room{}).Count(&roomCount).Error; err != nil {
		return err
	}
	if roomCount > 0 {
		config.Info("已有 %d 间客房，跳过数据初始化", roomCount)
		return nil
	}

	config.Info("开始数据初始化")

	if err := s.seedRoomsAndDevices(); err != nil {
		return err
	}
	if err := s.seedSharedDevices(); err != nil {
		return err
	}

	fleet, err := s.Robots.GenerateFleet(s.Config.FleetSize)
	if err != nil {
		return err
	}
	config.Info("已生成 %d 台配送机器人", len(fleet))

	tasks, err := s.Tasks.GenerateTaskBatch(10)
	if err != nil {
		return err
	}
	config.Info("已生成 %d 条任务", len(tasks))

	if err := s.seedDefaultLinkages(); err != nil {
		return err
	}

	config.Info("数据初始化完成")
	return nil
}

// seedRoomsAndDevices 6层×每层10间，每间按标准配置生成设备
func (s *SeedService) seedRoomsAndDevices() error {
	roomStatuses := []models.RoomStatus{
		models.RoomStatusOccupied, models.RoomStatusOccupied, models.RoomStatusOccupied,
		models.RoomStatusVacant, models.RoomStatusVacant,
		models.RoomStatusReserved, models.RoomStatusMaintenance,
	}

	var rooms []models.Room
	var devices []models.Device
	for floor := 1; floor <= 6; floor++ {
		for no := 1; no <= 10; no++ {
			roomNumber := fmt.Sprintf("%02d%02d", floor, no)
			rooms = append(rooms, models.Room{
				RoomNumber:        roomNumber,
				Floor:             floor,
				Type:              models.RoomTypeForFloor(floor),
				Status:            roomStatuses[s.Telemetry.IntN(len(roomStatuses))],
				Temperature:       s.Telemetry.Between(20, 26),
				Humidity:          s.Telemetry.Between(40, 60),
				EnergyConsumption: s.Telemetry.Between(5, 30),
			})

			for _, t := range roomDeviceTypes {
				devices = append(devices, s.buildDevice(t, &roomNumber))
			}
		}
	}

	if err := s.DB.Create(&rooms).Error; err != nil {
		return err
	}
	if err := s.DB.CreateInBatches(&devices, 100).Error; err != nil {
		return err
	}

	config.Info("已生成 %d 间客房、%d 台客房设备", len(rooms), len(devices))
	return nil
}

// seedSharedDevices 公共区域设备：电梯、大堂门禁、每层烟感与监控、配送机器人终端
func (s *SeedService) seedSharedDevices() error {
	var devices []models.Device

	for i := 0; i < 2; i++ {
		devices = append(devices, s.buildDevice(models.DeviceTypeElevator, nil))
		devices = append(devices, s.buildDevice(models.DeviceTypeDeliveryRobot, nil))
	}
	devices = append(devices, s.buildDevice(models.DeviceTypeAccessControl, nil))
	for floor := 1; floor <= 6; floor++ {
		devices = append(devices, s.buildDevice(models.DeviceTypeFireAlarm, nil))
		devices = append(devices, s.buildDevice(models.DeviceTypeCCTVCamera, nil))
	}

	if err := s.DB.Create(&devices).Error; err != nil {
		return err
	}

	config.Info("已生成 %d 台公共区域设备", len(devices))
	return nil
}

// buildDevice 生成一台设备。客房设备ID由类型码+房号构成(如 AC-0101)，
// 公共区域设备按序号编号。九成设备上线。
func (s *SeedService) buildDevice(t models.DeviceType, roomNumber *string) models.Device {
	var id string
	var name string
	if roomNumber != nil {
		id = fmt.Sprintf("%s-%s", deviceTypeCode[t], *roomNumber)
		name = fmt.Sprintf("%s房%s", *roomNumber, deviceTypeName[t])
	} else {
		s.sharedSeq++
		id = fmt.Sprintf("%s-P%03d", deviceTypeCode[t], s.sharedSeq)
		name = fmt.Sprintf("公共区%s%d号", deviceTypeName[t], s.sharedSeq)
	}

	status := models.DeviceStatusOnline
	if s.Telemetry.Float64() > 0.9 {
		status = models.DeviceStatusOffline
	}

	device := models.Device{
		ID:                id,
		Name:              name,
		RoomNumber:        roomNumber,
		Type:              t,
		Category:          models.CategoryForType(t),
		Status:            status,
		EnergyConsumption: s.Telemetry.Between(0.5, 5),
		LastUpdate:        time.Now(),
	}
	s.fillTypeAttributes(&device)

	return device
}

// fillTypeAttributes 按设备类型填充专属属性，其余属性保持nil
func (s *SeedService) fillTypeAttributes(d *models.Device) {
	ptr := func(v float64) *float64 { return &v }

	switch d.Type {
	case models.DeviceTypeAirConditioner:
		d.Temperature = ptr(s.Telemetry.Between(18, 26))
		d.Power = ptr(1)
	case models.DeviceTypeMiniBar:
		d.Temperature = ptr(s.Telemetry.Between(4, 8))
		d.Power = ptr(1)
	case models.DeviceTypeLighting, models.DeviceTypeCurtain:
		d.Brightness = ptr(s.Telemetry.Between(20, 100))
		d.Power = ptr(1)
	case models.DeviceTypeTV, models.DeviceTypePhone:
		d.Volume = ptr(s.Telemetry.Between(10, 60))
		d.Power = ptr(1)
	case models.DeviceTypeSensor:
		d.Temperature = ptr(s.Telemetry.Between(20, 26))
		d.Humidity = ptr(s.Telemetry.Between(40, 60))
		d.Battery = ptr(s.Telemetry.Between(30, 100))
		d.Signal = ptr(s.Telemetry.Between(60, 100))
	case models.DeviceTypeDoorLock, models.DeviceTypeSafeBox:
		d.Battery = ptr(s.Telemetry.Between(30, 100))
		d.Signal = ptr(s.Telemetry.Between(60, 100))
	case models.DeviceTypeDeliveryRobot:
		d.Battery = ptr(s.Telemetry.Between(20, 100))
		d.Signal = ptr(s.Telemetry.Between(60, 100))
		d.Power = ptr(1)
	default:
		d.Power = ptr(1)
	}
}

// seedDefaultLinkages 从预设实例化三条默认规则，覆盖一层前三间客房
func (s *SeedService) seedDefaultLinkages() error {
	rooms := []string{"0101", "0102", "0103"}
	presets := []string{"preset_checkin_welcome", "preset_checkout_saving", "preset_night_mode"}

	for _, presetID := range presets {
		if _, err := s.Linkages.InstantiateFromPreset(presetID, rooms); err != nil {
			config.Warning("实例化预设 %s 失败: %v", presetID, err)
		}
	}

	return nil
}
