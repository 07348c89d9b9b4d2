package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrTooManyRequests: "请求频率过高",
	ErrDatabase:        "数据库错误",

	// 设备相关错误码
	ErrDeviceNotFound:     "设备不存在",
	ErrDeviceOffline:      "设备当前离线，无法调节",
	ErrValueOutOfRange:    "调节值超出允许范围",
	ErrFieldNotAdjustable: "该设备类型不支持此调节参数",
	ErrNoPendingChanges:   "没有待提交的调节",

	// 房间相关错误码
	ErrRoomNotFound: "房间不存在",

	// 联动规则相关错误码
	ErrLinkageNotFound:  "联动规则不存在",
	ErrRuleDisabled:     "联动规则已停用，无法执行",
	ErrPresetNotFound:   "预设场景不存在",
	ErrInvalidAction:    "联动动作参数非法",
	ErrConditionInvalid: "触发条件表达式无法编译",

	// 机器人与任务相关错误码
	ErrRobotNotFound:      "机器人不存在",
	ErrTaskNotFound:       "任务不存在",
	ErrInvalidTransition:  "非法的任务状态迁移",
	ErrInvalidRobotAction: "非法的机器人控制动作",

	// 告警相关错误码
	ErrAlertNotFound: "告警不存在",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrDatabase:        StatusInternalServerError,

	// 设备相关错误码
	ErrDeviceNotFound:     StatusNotFound,
	ErrDeviceOffline:      StatusBadRequest,
	ErrValueOutOfRange:    StatusBadRequest,
	ErrFieldNotAdjustable: StatusBadRequest,
	ErrNoPendingChanges:   StatusBadRequest,

	// 房间相关错误码
	ErrRoomNotFound: StatusNotFound,

	// 联动规则相关错误码
	ErrLinkageNotFound:  StatusNotFound,
	ErrRuleDisabled:     StatusConflict,
	ErrPresetNotFound:   StatusNotFound,
	ErrInvalidAction:    StatusBadRequest,
	ErrConditionInvalid: StatusBadRequest,

	// 机器人与任务相关错误码
	ErrRobotNotFound:      StatusNotFound,
	ErrTaskNotFound:       StatusNotFound,
	ErrInvalidTransition:  StatusConflict,
	ErrInvalidRobotAction: StatusBadRequest,

	// 告警相关错误码
	ErrAlertNotFound: StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
