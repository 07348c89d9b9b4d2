package services

import (
	"testing"

	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomService(t *testing.T, telemetry TelemetrySource) (InterfaceRoomService, *testEnv) {
	env := &testEnv{db: openTestDB(t), cfg: testConfig()}
	if telemetry == nil {
		telemetry = &scriptedTelemetry{}
	}
	return NewRoomService(env.db, env.cfg, telemetry), env
}

func TestGetAllRoomsDeviceCounts(t *testing.T) {
	svc, env := newRoomService(t, nil)

	seedRoom(t, env.db, "0101", 1, models.RoomStatusOccupied)
	seedRoom(t, env.db, "0102", 1, models.RoomStatusVacant)
	seedDevice(t, env.db, "AC-0101", "0101")
	room := "0101"
	tv := models.Device{
		ID: "TV-0101", Name: "0101房电视", RoomNumber: &room,
		Type: models.DeviceTypeTV, Category: models.CategoryEntertainment,
		Status: models.DeviceStatusOffline,
	}
	require.NoError(t, env.db.Create(&tv).Error)

	rooms, total, err := svc.GetAllRooms(RoomFilter{}, models.PaginationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rooms, 2)

	// 房号升序；计数出自同一次统计，在线数不会超过总数
	assert.Equal(t, "0101", rooms[0].RoomNumber)
	assert.Equal(t, 2, rooms[0].DeviceCount)
	assert.Equal(t, 1, rooms[0].OnlineDeviceCount)
	assert.Zero(t, rooms[1].DeviceCount)
	for _, r := range rooms {
		assert.LessOrEqual(t, r.OnlineDeviceCount, r.DeviceCount)
	}

	// 楼层过滤
	seedRoom(t, env.db, "0201", 2, models.RoomStatusVacant)
	_, total, err = svc.GetAllRooms(RoomFilter{Floor: 2}, models.PaginationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestGetRoomByNumber(t *testing.T) {
	svc, env := newRoomService(t, nil)
	seedRoom(t, env.db, "0101", 1, models.RoomStatusOccupied)
	seedDevice(t, env.db, "AC-0101", "0101")

	_, err := svc.GetRoomByNumber("0999")
	assert.Equal(t, code.ErrRoomNotFound, apperr.CodeOf(err))

	room, err := svc.GetRoomByNumber("0101")
	require.NoError(t, err)
	assert.Equal(t, 1, room.DeviceCount)
	assert.Equal(t, 1, room.OnlineDeviceCount)
}

func TestGetRoomStatsOccupancy(t *testing.T) {
	svc, env := newRoomService(t, nil)

	seedRoom(t, env.db, "0101", 1, models.RoomStatusOccupied)
	seedRoom(t, env.db, "0102", 1, models.RoomStatusOccupied)
	seedRoom(t, env.db, "0103", 1, models.RoomStatusVacant)
	seedRoom(t, env.db, "0104", 1, models.RoomStatusReserved)

	stats, err := svc.GetRoomStats()
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalRooms)
	assert.EqualValues(t, 2, stats.OccupiedRooms)
	assert.InDelta(t, 50.0, stats.OccupancyRate, 0.001)
	assert.EqualValues(t, 1, stats.StatusCounts[models.RoomStatusVacant])
	assert.EqualValues(t, 1, stats.StatusCounts[models.RoomStatusReserved])
}

func TestTickRoomsOnlyOccupied(t *testing.T) {
	svc, env := newRoomService(t, NewTelemetrySource(5))

	occupied := seedRoom(t, env.db, "0101", 1, models.RoomStatusOccupied)
	vacant := seedRoom(t, env.db, "0102", 1, models.RoomStatusVacant)

	// 入住房间的能耗从房内设备汇总
	device := seedDevice(t, env.db, "AC-0101", "0101")
	require.NoError(t, env.db.Model(&device).
		Update("energy_consumption", 2.5).Error)

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.TickRooms())
	}

	var fresh models.Room
	require.NoError(t, env.db.First(&fresh, "room_number = ?", occupied.RoomNumber).Error)
	assert.GreaterOrEqual(t, fresh.Temperature, 18.0)
	assert.LessOrEqual(t, fresh.Temperature, 28.0)
	assert.GreaterOrEqual(t, fresh.Humidity, 35.0)
	assert.LessOrEqual(t, fresh.Humidity, 65.0)
	assert.InDelta(t, 2.5, fresh.EnergyConsumption, 0.001)

	// 空置房间不被仿真触碰
	var untouched models.Room
	require.NoError(t, env.db.First(&untouched, "room_number = ?", vacant.RoomNumber).Error)
	assert.Equal(t, 23.0, untouched.Temperature)
	assert.Equal(t, 50.0, untouched.Humidity)
}
