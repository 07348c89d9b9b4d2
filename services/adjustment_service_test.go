package services

import (
	"testing"

	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdjustmentService(t *testing.T) (InterfaceAdjustmentService, *testEnv) {
	env := &testEnv{db: openTestDB(t), cfg: testConfig()}
	return NewAdjustmentService(env.db, env.cfg, nil), env
}

func TestAdjustDeviceRoundTrip(t *testing.T) {
	svc, env := newAdjustmentService(t)
	seedDevice(t, env.db, "AC-0101", "0101")

	device, adjustment, err := svc.AdjustDevice(AdjustRequest{
		DeviceID: "AC-0101",
		Field:    models.AdjustmentTemperature,
		Value:    25,
		Actor:    models.AdjusterGuest,
		Reason:   "太冷了",
	})
	require.NoError(t, err)
	require.NotNil(t, device.Temperature)
	assert.Equal(t, 25.0, *device.Temperature)

	assert.Equal(t, 22.0, adjustment.OldValue)
	assert.Equal(t, 25.0, adjustment.NewValue)
	assert.Equal(t, models.AdjusterGuest, adjustment.AdjustedBy)
	// 能耗影响 = 变化量 × 系数
	assert.InDelta(t, 3*0.50, adjustment.EnergyImpact, 1e-9)

	// 设备与日志都已落库
	var stored models.Device
	require.NoError(t, env.db.First(&stored, "id = ?", "AC-0101").Error)
	assert.Equal(t, 25.0, *stored.Temperature)

	var count int64
	env.db.Model(&models.DeviceAdjustment{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAdjustDeviceValidation(t *testing.T) {
	svc, env := newAdjustmentService(t)
	seedDevice(t, env.db, "AC-0101", "0101")

	// 设备不存在
	_, _, err := svc.AdjustDevice(AdjustRequest{
		DeviceID: "AC-9999", Field: models.AdjustmentTemperature, Value: 24, Actor: models.AdjusterStaff,
	})
	assert.Equal(t, code.ErrDeviceNotFound, apperr.CodeOf(err))

	// 超出范围
	_, _, err = svc.AdjustDevice(AdjustRequest{
		DeviceID: "AC-0101", Field: models.AdjustmentTemperature, Value: 35, Actor: models.AdjusterStaff,
	})
	assert.Equal(t, code.ErrValueOutOfRange, apperr.CodeOf(err))

	// 空调不支持音量
	_, _, err = svc.AdjustDevice(AdjustRequest{
		DeviceID: "AC-0101", Field: models.AdjustmentVolume, Value: 50, Actor: models.AdjusterStaff,
	})
	assert.Equal(t, code.ErrFieldNotAdjustable, apperr.CodeOf(err))

	// 离线设备拒绝调节
	require.NoError(t, env.db.Model(&models.Device{}).Where("id = ?", "AC-0101").
		Update("status", models.DeviceStatusOffline).Error)
	_, _, err = svc.AdjustDevice(AdjustRequest{
		DeviceID: "AC-0101", Field: models.AdjustmentTemperature, Value: 24, Actor: models.AdjusterStaff,
	})
	assert.Equal(t, code.ErrDeviceOffline, apperr.CodeOf(err))

	// 校验失败不产生任何日志
	var count int64
	env.db.Model(&models.DeviceAdjustment{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestStagedAdjustmentsMerge(t *testing.T) {
	svc, env := newAdjustmentService(t)
	seedDevice(t, env.db, "AC-0101", "0101")

	assert.False(t, svc.HasUnsavedChanges())

	// 同一设备同一参数连续调节三次
	for _, v := range []float64{24, 26, 20} {
		_, err := svc.StageAdjustment(AdjustRequest{
			DeviceID: "AC-0101", Field: models.AdjustmentTemperature, Value: v, Actor: models.AdjusterGuest,
		})
		require.NoError(t, err)
	}
	assert.True(t, svc.HasUnsavedChanges())

	// 设备值实时生效
	var device models.Device
	require.NoError(t, env.db.First(&device, "id = ?", "AC-0101").Error)
	assert.Equal(t, 20.0, *device.Temperature)

	adjustments, err := svc.SaveSettings()
	require.NoError(t, err)
	// 合并为一条：旧值是首次调节前的22，新值是最后一次的20
	require.Len(t, adjustments, 1)
	assert.Equal(t, 22.0, adjustments[0].OldValue)
	assert.Equal(t, 20.0, adjustments[0].NewValue)

	assert.False(t, svc.HasUnsavedChanges())

	// 无暂存调节时保存报错
	_, err = svc.SaveSettings()
	assert.Equal(t, code.ErrNoPendingChanges, apperr.CodeOf(err))
}

func TestGetAdjustmentsFilterAndStats(t *testing.T) {
	svc, env := newAdjustmentService(t)
	seedDevice(t, env.db, "AC-0101", "0101")
	seedDevice(t, env.db, "AC-0201", "0201")

	_, _, err := svc.AdjustDevice(AdjustRequest{
		DeviceID: "AC-0101", Field: models.AdjustmentTemperature, Value: 25, Actor: models.AdjusterGuest,
	})
	require.NoError(t, err)
	_, _, err = svc.AdjustDevice(AdjustRequest{
		DeviceID: "AC-0201", Field: models.AdjustmentTemperature, Value: 20, Actor: models.AdjusterStaff,
	})
	require.NoError(t, err)

	// 按房间过滤
	list, total, err := svc.GetAdjustments(AdjustmentFilter{RoomNumber: "0101"}, models.PaginationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "AC-0101", list[0].DeviceID)

	// 按操作者过滤
	_, total, err = svc.GetAdjustments(AdjustmentFilter{Operator: models.AdjusterStaff}, models.PaginationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	stats, err := svc.GetAdjustmentStats(AdjustmentFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalCount)
	assert.EqualValues(t, 2, stats.CountByType[models.AdjustmentTemperature])
	assert.EqualValues(t, 1, stats.CountByOperator[models.AdjusterGuest])
	// (25-22)*0.5 + (20-22)*0.5
	assert.InDelta(t, 0.5, stats.TotalEnergyImpact, 1e-9)
}
