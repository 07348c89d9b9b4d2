package services

import (
	"testing"

	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeviceService(t *testing.T, telemetry TelemetrySource) (InterfaceDeviceService, *testEnv) {
	env := &testEnv{db: openTestDB(t), cfg: testConfig()}
	if telemetry == nil {
		telemetry = &scriptedTelemetry{}
	}
	return NewDeviceService(env.db, env.cfg, telemetry), env
}

func TestGetAllDevicesFilterAndSearch(t *testing.T) {
	svc, env := newDeviceService(t, nil)

	seedDevice(t, env.db, "AC-0101", "0101")
	seedDevice(t, env.db, "AC-0102", "0102")
	room := "0101"
	tv := models.Device{
		ID:         "TV-0101",
		Name:       "0101房电视",
		RoomNumber: &room,
		Type:       models.DeviceTypeTV,
		Category:   models.CategoryEntertainment,
		Status:     models.DeviceStatusOffline,
	}
	require.NoError(t, env.db.Create(&tv).Error)

	devices, total, err := svc.GetAllDevices(DeviceFilter{RoomNumber: "0101"}, models.PaginationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, devices, 2)
	assert.Equal(t, "AC-0101", devices[0].ID) // ID升序

	_, total, err = svc.GetAllDevices(DeviceFilter{Status: models.DeviceStatusOnline}, models.PaginationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	devices, total, err = svc.GetAllDevices(DeviceFilter{Search: "电视"}, models.PaginationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "TV-0101", devices[0].ID)

	// 分页
	devices, total, err = svc.GetAllDevices(DeviceFilter{}, models.PaginationQuery{PageNum: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, devices, 1)
}

func TestCreateDeviceDefaults(t *testing.T) {
	svc, env := newDeviceService(t, nil)
	seedRoom(t, env.db, "0101", 1, models.RoomStatusVacant)

	// 名称必填
	err := svc.CreateDevice(&models.Device{Type: models.DeviceTypeLighting})
	assert.Equal(t, code.ErrValidation, apperr.CodeOf(err))

	// 类型必须合法
	err = svc.CreateDevice(&models.Device{Name: "测试设备", Type: "toaster"})
	assert.Equal(t, code.ErrValidation, apperr.CodeOf(err))

	// 状态必须合法
	err = svc.CreateDevice(&models.Device{
		Name: "测试设备", Type: models.DeviceTypeLighting, Status: "bogus"})
	assert.Equal(t, code.ErrValidation, apperr.CodeOf(err))

	// 目标房间必须存在
	missing := "0999"
	err = svc.CreateDevice(&models.Device{
		Name: "0999房灯光", Type: models.DeviceTypeLighting, RoomNumber: &missing})
	assert.Equal(t, code.ErrRoomNotFound, apperr.CodeOf(err))

	// 缺省ID、分类、状态自动补齐
	room := "0101"
	device := models.Device{Name: "0101房灯光", Type: models.DeviceTypeLighting, RoomNumber: &room}
	require.NoError(t, svc.CreateDevice(&device))
	assert.NotEmpty(t, device.ID)
	assert.Equal(t, models.CategoryForType(models.DeviceTypeLighting), device.Category)
	assert.Equal(t, models.DeviceStatusOffline, device.Status)
	assert.False(t, device.LastUpdate.IsZero())
}

func TestGetDeviceStats(t *testing.T) {
	svc, env := newDeviceService(t, nil)

	seedDevice(t, env.db, "AC-0101", "0101")
	room := "0101"
	tv := models.Device{
		ID: "TV-0101", Name: "0101房电视", RoomNumber: &room,
		Type: models.DeviceTypeTV, Category: models.CategoryEntertainment,
		Status: models.DeviceStatusOffline, EnergyConsumption: 1.5,
	}
	require.NoError(t, env.db.Create(&tv).Error)

	stats, err := svc.GetDeviceStats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalDevices)
	assert.EqualValues(t, 1, stats.OnlineDevices)
	assert.InDelta(t, 50.0, stats.UptimePercent, 0.001)
	assert.EqualValues(t, 1, stats.CategoryCounts[models.CategoryHVAC])
	assert.EqualValues(t, 1, stats.StatusCounts[models.DeviceStatusOffline])
	assert.InDelta(t, 1.5, stats.TotalEnergy, 0.001)
}

func TestTickDevicesBounds(t *testing.T) {
	svc, env := newDeviceService(t, NewTelemetrySource(3))

	online := seedDevice(t, env.db, "AC-0101", "0101")
	offline := seedDevice(t, env.db, "AC-0102", "0102")
	require.NoError(t, env.db.Model(&offline).
		Update("status", models.DeviceStatusOffline).Error)

	for i := 0; i < 20; i++ {
		require.NoError(t, svc.TickDevices())
	}

	var fresh models.Device
	require.NoError(t, env.db.First(&fresh, "id = ?", online.ID).Error)
	require.NotNil(t, fresh.Temperature)
	assert.GreaterOrEqual(t, *fresh.Temperature, 16.0)
	assert.LessOrEqual(t, *fresh.Temperature, 30.0)
	assert.Greater(t, fresh.EnergyConsumption, 0.0)

	// 离线设备不被仿真触碰
	var untouched models.Device
	require.NoError(t, env.db.First(&untouched, "id = ?", offline.ID).Error)
	require.NotNil(t, untouched.Temperature)
	assert.Equal(t, 22.0, *untouched.Temperature)
	assert.Zero(t, untouched.EnergyConsumption)
}

func TestTickDevicesMiniBarStaysCold(t *testing.T) {
	svc, env := newDeviceService(t, NewTelemetrySource(7))

	room := "0101"
	temp := 5.0
	power := 1.0
	minibar := models.Device{
		ID: "MB-0101", Name: "0101房迷你吧", RoomNumber: &room,
		Type: models.DeviceTypeMiniBar, Category: models.CategoryComfort,
		Status: models.DeviceStatusOnline, Temperature: &temp, Power: &power,
	}
	require.NoError(t, env.db.Create(&minibar).Error)

	// 游走边界按设备类型取，迷你吧不会被抬到常温区间
	for i := 0; i < 20; i++ {
		require.NoError(t, svc.TickDevices())
	}

	var fresh models.Device
	require.NoError(t, env.db.First(&fresh, "id = ?", minibar.ID).Error)
	require.NotNil(t, fresh.Temperature)
	assert.GreaterOrEqual(t, *fresh.Temperature, 2.0)
	assert.LessOrEqual(t, *fresh.Temperature, 10.0)
}
