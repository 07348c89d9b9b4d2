package services

import (
	"testing"

	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRobotService(t *testing.T, telemetry TelemetrySource) (InterfaceRobotService, *testEnv) {
	env := &testEnv{db: openTestDB(t), cfg: testConfig()}
	if telemetry == nil {
		telemetry = &scriptedTelemetry{}
	}
	return NewRobotService(env.db, env.cfg, telemetry, nil), env
}

func TestGenerateFleet(t *testing.T) {
	svc, env := newRobotService(t, NewTelemetrySource(1))

	robots, err := svc.GenerateFleet(8)
	require.NoError(t, err)
	require.Len(t, robots, 8)

	for i, r := range robots {
		assert.NotEmpty(t, r.ID)
		assert.Containsf(t, r.Name, "配送机器人", "机器人 %d 命名错误", i)
		assert.GreaterOrEqual(t, r.Battery, 5.0)
		assert.LessOrEqual(t, r.Battery, 100.0)

		// 电量不足优先进充电站
		if r.Battery < 20 {
			assert.Equal(t, models.RobotStatusCharging, r.Status)
			assert.Equal(t, "充电站", r.CurrentLocation)
		}
		// 故障机器人必须带故障码
		if r.Status == models.RobotStatusError {
			assert.NotNil(t, r.ErrorCode)
			assert.NotNil(t, r.ErrorMessage)
		}
		// 只有在线机器人有速度
		if r.Status != models.RobotStatusOnline {
			assert.Zero(t, r.Speed)
		}
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Robot{}).Count(&count).Error)
	assert.EqualValues(t, 8, count)
}

func TestControlRobot(t *testing.T) {
	svc, env := newRobotService(t, nil)
	robot := seedRobot(t, env.db, "robot_1")

	errCode, errMsg := "E201", "激光雷达异常"
	require.NoError(t, env.db.Model(&robot).Updates(map[string]interface{}{
		"status": models.RobotStatusError, "error_code": errCode,
		"error_message": errMsg, "current_task": "task_1",
	}).Error)

	_, err := svc.ControlRobot("robot_1", "reboot")
	assert.Equal(t, code.ErrInvalidRobotAction, apperr.CodeOf(err))

	_, err = svc.ControlRobot("robot_missing", models.RobotActionStart)
	assert.Equal(t, code.ErrRobotNotFound, apperr.CodeOf(err))

	// 充电指令清除故障信息并停在充电站
	controlled, err := svc.ControlRobot("robot_1", models.RobotActionCharge)
	require.NoError(t, err)
	assert.Equal(t, models.RobotStatusCharging, controlled.Status)
	assert.Equal(t, "充电站", controlled.CurrentLocation)
	assert.Nil(t, controlled.ErrorCode)
	assert.Nil(t, controlled.ErrorMessage)
	assert.Zero(t, controlled.Speed)
	assert.Empty(t, controlled.CurrentTask)

	// 启动指令恢复在线
	controlled, err = svc.ControlRobot("robot_1", models.RobotActionStart)
	require.NoError(t, err)
	assert.Equal(t, models.RobotStatusOnline, controlled.Status)
}

func TestTickFleetBounds(t *testing.T) {
	svc, env := newRobotService(t, NewTelemetrySource(7))

	charging := seedRobot(t, env.db, "robot_1")
	require.NoError(t, env.db.Model(&charging).Updates(map[string]interface{}{
		"status": models.RobotStatusCharging, "battery": 99.5}).Error)
	seedRobot(t, env.db, "robot_2")

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.TickFleet())
	}

	var robots []models.Robot
	require.NoError(t, env.db.Order("id asc").Find(&robots).Error)
	require.Len(t, robots, 2)

	// 充电中的电量只升不降且封顶100
	assert.Equal(t, 100.0, robots[0].Battery)
	assert.Zero(t, robots[0].Speed)

	for _, r := range robots {
		assert.GreaterOrEqual(t, r.Battery, 0.0)
		assert.LessOrEqual(t, r.Battery, 100.0)
		assert.GreaterOrEqual(t, r.Signal, 0.0)
		assert.LessOrEqual(t, r.Signal, 100.0)
		assert.GreaterOrEqual(t, r.Temperature, 18.0)
		assert.LessOrEqual(t, r.Temperature, 35.0)
	}

	// 在线机器人累计里程与运行时长递增
	assert.Greater(t, robots[1].Uptime, 0.0)
}

func TestGetFleetStats(t *testing.T) {
	svc, env := newRobotService(t, nil)

	r1 := seedRobot(t, env.db, "robot_1")
	require.NoError(t, env.db.Model(&r1).Updates(map[string]interface{}{
		"battery": 60, "total_deliveries": 12, "total_distance": 30.5}).Error)
	r2 := seedRobot(t, env.db, "robot_2")
	require.NoError(t, env.db.Model(&r2).Updates(map[string]interface{}{
		"status": models.RobotStatusCharging, "battery": 40,
		"total_deliveries": 8, "total_distance": 9.5}).Error)

	stats, err := svc.GetFleetStats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalRobots)
	assert.EqualValues(t, 1, stats.StatusCounts[models.RobotStatusOnline])
	assert.EqualValues(t, 1, stats.StatusCounts[models.RobotStatusCharging])
	assert.InDelta(t, 50.0, stats.AverageBattery, 0.001)
	assert.EqualValues(t, 20, stats.TotalDeliveries)
	assert.InDelta(t, 40.0, stats.TotalDistance, 0.001)
}
