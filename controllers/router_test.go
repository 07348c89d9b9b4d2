package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hotel-iot-service/config"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"
	"hotel-iot-service/routes"
	"hotel-iot-service/services/container"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// envelope 统一响应格式
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:api_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) +
		"?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Room{}, &models.Device{}, &models.DeviceAdjustment{},
		&models.DeviceLinkage{}, &models.Robot{}, &models.RobotTask{}, &models.Alert{},
	))

	cfg := &config.Config{
		EnvType:               "LOCAL",
		DBDriver:              "sqlite",
		SimSeed:               1,
		FleetSize:             4,
		TaskCompleteRate:      0.90,
		TaskFailRate:          0.05,
		EnergyCoefTemperature: 0.50,
		EnergyCoefBrightness:  0.02,
		EnergyCoefVolume:      0.005,
		EnergyCoefPower:       1.20,
	}

	serviceContainer := container.NewServiceContainer(db, cfg, nil)
	return routes.SetupRouter(serviceContainer), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env),
		"响应不是统一格式: %s", w.Body.String())
	return w, env
}

func TestPing(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeviceEndpoints(t *testing.T) {
	r, db := newTestRouter(t)

	require.NoError(t, db.Create(&models.Room{
		RoomNumber: "0101", Floor: 1, Type: models.RoomTypeForFloor(1),
		Status: models.RoomStatusOccupied, Temperature: 23, Humidity: 50,
	}).Error)

	// 创建设备
	w, env := doJSON(t, r, http.MethodPost, "/api/devices", gin.H{
		"id": "AC-0101", "name": "0101房空调", "type": "air_conditioner",
		"room_number": "0101", "status": "online",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code.ErrSuccess, env.Code)

	// 缺少必填字段
	w, env = doJSON(t, r, http.MethodPost, "/api/devices", gin.H{"name": "无类型设备"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 状态取值受限
	w, env = doJSON(t, r, http.MethodPost, "/api/devices", gin.H{
		"name": "0102房空调", "type": "air_conditioner", "status": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrValidation, env.Code)

	// 查列表
	w, env = doJSON(t, r, http.MethodGet, "/api/devices?room=0101", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int64           `json:"total"`
		Data  []models.Device `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "AC-0101", list.Data[0].ID)

	// 不存在的设备返回404与领域错误码
	w, env = doJSON(t, r, http.MethodGet, "/api/devices/AC-9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, code.ErrDeviceNotFound, env.Code)
}

func TestAdjustmentEndpoints(t *testing.T) {
	r, db := newTestRouter(t)

	room := "0101"
	temp, power := 22.0, 1.0
	require.NoError(t, db.Create(&models.Device{
		ID: "AC-0101", Name: "0101房空调", RoomNumber: &room,
		Type: models.DeviceTypeAirConditioner, Category: models.CategoryHVAC,
		Status: models.DeviceStatusOnline, Temperature: &temp, Power: &power,
	}).Error)

	// 直接调节
	w, env := doJSON(t, r, http.MethodPost, "/api/devices/AC-0101/adjust", gin.H{
		"field": "temperature", "value": 25.0, "actor": "guest",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code.ErrSuccess, env.Code)

	// 超范围被拒绝
	w, env = doJSON(t, r, http.MethodPost, "/api/devices/AC-0101/adjust", gin.H{
		"field": "temperature", "value": 99.0, "actor": "guest",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrValueOutOfRange, env.Code)

	// 无暂存变更时保存报错
	w, env = doJSON(t, r, http.MethodPost, "/api/adjustments/save", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrNoPendingChanges, env.Code)

	// 调节历史
	w, env = doJSON(t, r, http.MethodGet, "/api/adjustments", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTaskEndpoints(t *testing.T) {
	r, db := newTestRouter(t)

	require.NoError(t, db.Create(&models.Robot{
		ID: "robot_1", Name: "配送机器人-01", Status: models.RobotStatusOnline,
		Battery: 80, Signal: 95,
	}).Error)

	w, env := doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{
		"robot_id": "robot_1", "task_type": "delivery", "priority": "medium",
		"start_location": "前台", "destination": "房间0101",
		"guest_name": "客人001", "room_number": "0101",
		"items": []string{"矿泉水"}, "estimated_time": 10, "operator": "调度台",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var task models.RobotTask
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, models.TaskStatusPending, task.Status)

	// 取消
	w, env = doJSON(t, r, http.MethodPost, "/api/tasks/"+task.ID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 终态后再取消返回状态冲突
	w, env = doJSON(t, r, http.MethodPost, "/api/tasks/"+task.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, code.ErrInvalidTransition, env.Code)
}

func TestRobotControlEndpoint(t *testing.T) {
	r, db := newTestRouter(t)

	require.NoError(t, db.Create(&models.Robot{
		ID: "robot_1", Name: "配送机器人-01", Status: models.RobotStatusOnline,
		Battery: 80, Signal: 95,
	}).Error)

	// 控制成功同时使车队统计缓存作废，redis不可达时依然返回200
	w, env := doJSON(t, r, http.MethodPost, "/api/robots/robot_1/control", gin.H{
		"action": "charge",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var robot models.Robot
	require.NoError(t, json.Unmarshal(env.Data, &robot))
	assert.Equal(t, models.RobotStatusCharging, robot.Status)

	w, env = doJSON(t, r, http.MethodPost, "/api/robots/robot_1/control", gin.H{
		"action": "reboot",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrInvalidRobotAction, env.Code)
}

func TestAlertEndpoints(t *testing.T) {
	r, db := newTestRouter(t)

	require.NoError(t, db.Create(&models.Robot{
		ID: "robot_1", Name: "配送机器人-01", Status: models.RobotStatusOnline,
		Battery: 10, Signal: 95,
	}).Error)

	w, _ := doJSON(t, r, http.MethodPost, "/api/alerts/refresh", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, r, http.MethodGet, "/api/alerts/unread-count", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var unread struct {
		Unread int64 `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &unread))
	assert.EqualValues(t, 3, unread.Unread)

	w, _ = doJSON(t, r, http.MethodPut, "/api/alerts/read-all", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/api/alerts/unread-count", nil)
	require.NoError(t, json.Unmarshal(env.Data, &unread))
	assert.Zero(t, unread.Unread)
}

func TestLinkagePresetEndpoints(t *testing.T) {
	r, db := newTestRouter(t)

	room := "0101"
	temp, power := 22.0, 1.0
	require.NoError(t, db.Create(&models.Room{
		RoomNumber: room, Floor: 1, Type: models.RoomTypeForFloor(1),
		Status: models.RoomStatusOccupied, Temperature: 23, Humidity: 50,
	}).Error)
	require.NoError(t, db.Create(&models.Device{
		ID: "AC-0101", Name: "0101房空调", RoomNumber: &room,
		Type: models.DeviceTypeAirConditioner, Category: models.CategoryHVAC,
		Status: models.DeviceStatusOnline, Temperature: &temp, Power: &power,
	}).Error)

	w, env := doJSON(t, r, http.MethodGet, "/api/linkages/presets", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/linkages/presets/instantiate", gin.H{
		"preset_id": "preset_overheat_cooling", "room_numbers": []string{"0101"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var rule models.DeviceLinkage
	require.NoError(t, json.Unmarshal(env.Data, &rule))
	assert.True(t, rule.IsEnabled)

	// 执行规则
	w, _ = doJSON(t, r, http.MethodPost, "/api/linkages/"+rule.ID+"/execute", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 停用后执行返回冲突
	w, _ = doJSON(t, r, http.MethodPut, "/api/linkages/"+rule.ID+"/toggle", gin.H{"enabled": false})
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = doJSON(t, r, http.MethodPost, "/api/linkages/"+rule.ID+"/execute", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, code.ErrRuleDisabled, env.Code)
}
