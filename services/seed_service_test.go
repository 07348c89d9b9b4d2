package services

import (
	"testing"

	"hotel-iot-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeedService(t *testing.T) (InterfaceSeedService, *testEnv) {
	env := &testEnv{db: openTestDB(t), cfg: testConfig()}
	telemetry := NewTelemetrySource(env.cfg.SimSeed)
	adjustments := NewAdjustmentService(env.db, env.cfg, nil)
	robots := NewRobotService(env.db, env.cfg, telemetry, nil)
	tasks := NewTaskService(env.db, env.cfg, telemetry, nil)
	linkages := NewLinkageService(env.db, env.cfg, adjustments)
	return NewSeedService(env.db, env.cfg, telemetry, robots, tasks, linkages), env
}

func TestSeedIfEmpty(t *testing.T) {
	svc, env := newSeedService(t)

	require.NoError(t, svc.SeedIfEmpty())

	// 6层×10间
	var roomCount int64
	require.NoError(t, env.db.Model(&models.Room{}).Count(&roomCount).Error)
	assert.EqualValues(t, 60, roomCount)

	// 每间客房一套标准设备，外加公共区域设备
	var roomDevices int64
	require.NoError(t, env.db.Model(&models.Device{}).
		Where("room_number IS NOT NULL").Count(&roomDevices).Error)
	assert.EqualValues(t, 60*len(roomDeviceTypes), roomDevices)

	var sharedDevices int64
	require.NoError(t, env.db.Model(&models.Device{}).
		Where("room_number IS NULL").Count(&sharedDevices).Error)
	assert.EqualValues(t, 17, sharedDevices)

	var robotCount int64
	require.NoError(t, env.db.Model(&models.Robot{}).Count(&robotCount).Error)
	assert.EqualValues(t, env.cfg.FleetSize, robotCount)

	var taskCount int64
	require.NoError(t, env.db.Model(&models.RobotTask{}).Count(&taskCount).Error)
	assert.EqualValues(t, 10, taskCount)

	var linkageCount int64
	require.NoError(t, env.db.Model(&models.DeviceLinkage{}).Count(&linkageCount).Error)
	assert.Greater(t, linkageCount, int64(0))

	// 客房设备ID形如 AC-0101
	var ac models.Device
	require.NoError(t, env.db.First(&ac, "id = ?", "AC-0101").Error)
	assert.Equal(t, models.DeviceTypeAirConditioner, ac.Type)
	require.NotNil(t, ac.RoomNumber)
	assert.Equal(t, "0101", *ac.RoomNumber)
}

func TestSeedIfEmptySkipsNonEmpty(t *testing.T) {
	svc, env := newSeedService(t)
	seedRoom(t, env.db, "0101", 1, models.RoomStatusOccupied)

	require.NoError(t, svc.SeedIfEmpty())

	var roomCount int64
	require.NoError(t, env.db.Model(&models.Room{}).Count(&roomCount).Error)
	assert.EqualValues(t, 1, roomCount)

	var deviceCount int64
	require.NoError(t, env.db.Model(&models.Device{}).Count(&deviceCount).Error)
	assert.Zero(t, deviceCount)
}
