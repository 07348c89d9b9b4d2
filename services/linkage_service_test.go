package services

import (
	"testing"
	"time"

	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinkageService(t *testing.T) (InterfaceLinkageService, *testEnv) {
	env := &testEnv{db: openTestDB(t), cfg: testConfig()}
	adjustments := NewAdjustmentService(env.db, env.cfg, nil)
	return NewLinkageService(env.db, env.cfg, adjustments), env
}

func coolingSpec(deviceID string) LinkageSpec {
	return LinkageSpec{
		Name:             "高温降温",
		Description:      "室温超限时把空调调到24度",
		TriggerType:      models.TriggerSensorBased,
		TriggerCondition: "temperature > 28",
		Actions: []models.LinkageAction{
			{DeviceID: deviceID, Action: "set_temperature",
				Parameters: models.ActionParameters{Temperature: floatp(24)}},
		},
	}
}

func TestCreateRuleValidation(t *testing.T) {
	svc, env := newLinkageService(t)
	seedDevice(t, env.db, "device_ac1", "0101")

	// 描述必填
	spec := coolingSpec("device_ac1")
	spec.Description = ""
	_, err := svc.CreateRule(spec)
	assert.Equal(t, code.ErrValidation, apperr.CodeOf(err))

	// 触发条件必填，manual触发也不例外
	spec = coolingSpec("device_ac1")
	spec.TriggerType = models.TriggerManual
	spec.TriggerCondition = ""
	_, err = svc.CreateRule(spec)
	assert.Equal(t, code.ErrValidation, apperr.CodeOf(err))

	// 条件编译失败
	spec = coolingSpec("device_ac1")
	spec.TriggerCondition = "temperature >"
	_, err = svc.CreateRule(spec)
	assert.Equal(t, code.ErrConditionInvalid, apperr.CodeOf(err))

	// 定时条件必须是 HH:MM
	spec = coolingSpec("device_ac1")
	spec.TriggerType = models.TriggerTimeBased
	spec.TriggerCondition = "半夜"
	_, err = svc.CreateRule(spec)
	assert.Equal(t, code.ErrConditionInvalid, apperr.CodeOf(err))

	// 动作目标设备不存在
	spec = coolingSpec("device_missing")
	_, err = svc.CreateRule(spec)
	assert.Equal(t, code.ErrDeviceNotFound, apperr.CodeOf(err))

	// 空调不支持音量参数
	spec = coolingSpec("device_ac1")
	spec.Actions[0].Parameters = models.ActionParameters{Volume: floatp(20)}
	_, err = svc.CreateRule(spec)
	assert.Equal(t, code.ErrInvalidAction, apperr.CodeOf(err))

	// 合法规则，设备名从库里回填
	rule, err := svc.CreateRule(coolingSpec("device_ac1"))
	require.NoError(t, err)
	assert.True(t, rule.IsEnabled)
	assert.Equal(t, "0101房空调", rule.Actions[0].DeviceName)
	assert.Zero(t, rule.ExecutionCount)
}

func TestExecuteRuleAppliesAdjustments(t *testing.T) {
	svc, env := newLinkageService(t)
	device := seedDevice(t, env.db, "device_ac1", "0101")

	rule, err := svc.CreateRule(coolingSpec(device.ID))
	require.NoError(t, err)

	result, err := svc.ExecuteRule(rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ActionsApplied)
	assert.Empty(t, result.ActionErrors)
	assert.Equal(t, 1, result.ExecutionCount)

	// 设备温度已写入，调节留痕为系统操作者
	var fresh models.Device
	require.NoError(t, env.db.First(&fresh, "id = ?", device.ID).Error)
	require.NotNil(t, fresh.Temperature)
	assert.Equal(t, 24.0, *fresh.Temperature)

	var logs []models.DeviceAdjustment
	require.NoError(t, env.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AdjusterSystem, logs[0].AdjustedBy)

	stored, err := svc.GetLinkageByID(rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ExecutionCount)
	assert.NotNil(t, stored.LastExecuted)
}

func TestExecuteRuleDisabledAndActionErrors(t *testing.T) {
	svc, env := newLinkageService(t)
	device := seedDevice(t, env.db, "device_ac1", "0101")

	rule, err := svc.CreateRule(coolingSpec(device.ID))
	require.NoError(t, err)

	// 停用后拒绝执行且不计数
	_, err = svc.ToggleRule(rule.ID, false)
	require.NoError(t, err)
	_, err = svc.ExecuteRule(rule.ID)
	assert.Equal(t, code.ErrRuleDisabled, apperr.CodeOf(err))

	stored, err := svc.GetLinkageByID(rule.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.ExecutionCount)

	// 重新启用后设备离线：动作失败被收集，执行本身不报错
	_, err = svc.ToggleRule(rule.ID, true)
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.Device{}).Where("id = ?", device.ID).
		Update("status", models.DeviceStatusOffline).Error)

	result, err := svc.ExecuteRule(rule.ID)
	require.NoError(t, err)
	assert.Zero(t, result.ActionsApplied)
	assert.Len(t, result.ActionErrors, 1)
	assert.Equal(t, 1, result.ExecutionCount)
}

func TestCopyRuleResetsCounters(t *testing.T) {
	svc, env := newLinkageService(t)
	device := seedDevice(t, env.db, "device_ac1", "0101")

	rule, err := svc.CreateRule(coolingSpec(device.ID))
	require.NoError(t, err)
	_, err = svc.ExecuteRule(rule.ID)
	require.NoError(t, err)

	copied, err := svc.CopyRule(rule.ID)
	require.NoError(t, err)
	assert.NotEqual(t, rule.ID, copied.ID)
	assert.Equal(t, rule.Name+"（副本）", copied.Name)
	assert.Zero(t, copied.ExecutionCount)
	assert.Nil(t, copied.LastExecuted)
	assert.Equal(t, rule.TriggerCondition, copied.TriggerCondition)
}

func TestInstantiateFromPreset(t *testing.T) {
	svc, env := newLinkageService(t)
	seedRoom(t, env.db, "0101", 1, models.RoomStatusOccupied)
	seedDevice(t, env.db, "device_ac1", "0101")

	_, err := svc.InstantiateFromPreset("preset_unknown", []string{"0101"})
	assert.Equal(t, code.ErrPresetNotFound, apperr.CodeOf(err))

	_, err = svc.InstantiateFromPreset("preset_overheat_cooling", []string{"0999"})
	assert.Equal(t, code.ErrRoomNotFound, apperr.CodeOf(err))

	rule, err := svc.InstantiateFromPreset("preset_overheat_cooling", []string{"0101"})
	require.NoError(t, err)
	assert.Equal(t, models.TriggerSensorBased, rule.TriggerType)
	assert.Equal(t, "temperature > 28", rule.TriggerCondition)
	require.Len(t, rule.Actions, 1)
	assert.Equal(t, "device_ac1", rule.Actions[0].DeviceID)
	assert.Equal(t, []string{"0101"}, rule.RoomNumbers)
}

func TestEvaluateSensorRules(t *testing.T) {
	svc, env := newLinkageService(t)
	device := seedDevice(t, env.db, "device_ac1", "0101")

	rule, err := svc.CreateRule(coolingSpec(device.ID))
	require.NoError(t, err)

	// 条件不成立时不执行
	results, err := svc.EvaluateSensorRules(map[string]interface{}{"temperature": 25.0})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = svc.EvaluateSensorRules(map[string]interface{}{"temperature": 30.0})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, rule.ID, results[0].RuleID)
	assert.Equal(t, 1, results[0].ActionsApplied)
}

func TestExecuteDueTimeBasedRules(t *testing.T) {
	svc, env := newLinkageService(t)
	device := seedDevice(t, env.db, "device_ac1", "0101")

	spec := coolingSpec(device.ID)
	spec.Name = "夜间空调"
	spec.TriggerType = models.TriggerTimeBased
	spec.TriggerCondition = "22:30"
	rule, err := svc.CreateRule(spec)
	require.NoError(t, err)

	at := func(hour, min int) time.Time {
		return time.Date(2026, 8, 31, hour, min, 0, 0, time.Local)
	}

	results, err := svc.ExecuteDueTimeBasedRules(at(22, 0))
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = svc.ExecuteDueTimeBasedRules(at(22, 30))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, rule.ID, results[0].RuleID)
}

func TestBatchToggleAndDelete(t *testing.T) {
	svc, env := newLinkageService(t)
	device := seedDevice(t, env.db, "device_ac1", "0101")

	rule1, err := svc.CreateRule(coolingSpec(device.ID))
	require.NoError(t, err)
	rule2, err := svc.CreateRule(coolingSpec(device.ID))
	require.NoError(t, err)

	_, err = svc.BatchToggle(nil, false)
	assert.Equal(t, code.ErrValidation, apperr.CodeOf(err))

	affected, err := svc.BatchToggle([]string{rule1.ID, rule2.ID, "linkage_missing"}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	deleted, err := svc.BatchDelete([]string{rule1.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, total, err := svc.GetAllLinkages(LinkageFilter{}, models.PaginationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
