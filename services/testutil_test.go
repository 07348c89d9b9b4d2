package services

import (
	"strings"
	"testing"

	"hotel-iot-service/config"
	"hotel-iot-service/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv 聚合测试用依赖
type testEnv struct {
	db  *gorm.DB
	cfg *config.Config
}

// openTestDB 每个测试使用独立的内存库，避免用例间互相污染
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:svc_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Room{},
		&models.Device{},
		&models.DeviceAdjustment{},
		&models.DeviceLinkage{},
		&models.Robot{},
		&models.RobotTask{},
		&models.Alert{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testConfig 测试用配置，不读环境变量
func testConfig() *config.Config {
	return &config.Config{
		EnvType:               "LOCAL",
		DBDriver:              "sqlite",
		SimEnabled:            false,
		SimSeed:               1,
		DeviceTickSeconds:     5,
		FleetTickSeconds:      3,
		TaskTickSeconds:       5,
		AlertRefreshSeconds:   30,
		FleetSize:             8,
		TaskCompleteRate:      0.90,
		TaskFailRate:          0.05,
		EnergyCoefTemperature: 0.50,
		EnergyCoefBrightness:  0.02,
		EnergyCoefVolume:      0.005,
		EnergyCoefPower:       1.20,
	}
}

// scriptedTelemetry 按脚本返回随机值，耗尽后回退到固定值，
// 用于让状态机走向确定的分支
type scriptedTelemetry struct {
	floats []float64
	ints   []int
}

func (s *scriptedTelemetry) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.5
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedTelemetry) Between(min, max float64) float64 {
	return min + (max-min)*s.Float64()
}

func (s *scriptedTelemetry) Walk(current, step, min, max float64) float64 {
	v := current + step*(2*s.Float64()-1)
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (s *scriptedTelemetry) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		return n - 1
	}
	return v
}

func floatp(v float64) *float64 { return &v }

// seedDevice 插入一台在线空调
func seedDevice(t *testing.T, db *gorm.DB, id, room string) models.Device {
	t.Helper()
	device := models.Device{
		ID:          id,
		Name:        room + "房空调",
		RoomNumber:  &room,
		Type:        models.DeviceTypeAirConditioner,
		Category:    models.CategoryHVAC,
		Status:      models.DeviceStatusOnline,
		Temperature: floatp(22),
		Power:       floatp(1),
	}
	device.Touch()
	if err := db.Create(&device).Error; err != nil {
		t.Fatalf("seed device: %v", err)
	}
	return device
}

// seedRoom 插入一间客房
func seedRoom(t *testing.T, db *gorm.DB, roomNumber string, floor int, status models.RoomStatus) models.Room {
	t.Helper()
	room := models.Room{
		RoomNumber:  roomNumber,
		Floor:       floor,
		Type:        models.RoomTypeForFloor(floor),
		Status:      status,
		Temperature: 23,
		Humidity:    50,
	}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return room
}

// seedRobot 插入一台在线机器人
func seedRobot(t *testing.T, db *gorm.DB, id string) models.Robot {
	t.Helper()
	robot := models.Robot{
		ID:      id,
		Name:    "配送机器人-01",
		Status:  models.RobotStatusOnline,
		Battery: 80,
		Signal:  95,
		Speed:   1.2,
	}
	if err := db.Create(&robot).Error; err != nil {
		t.Fatalf("seed robot: %v", err)
	}
	return robot
}
