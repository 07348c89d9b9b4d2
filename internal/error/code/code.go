package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 状态冲突.
	StatusConflict = 409
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase
)

// 设备相关错误码 (102xxx).
const (
	// ErrDeviceNotFound - 404: 设备不存在.
	ErrDeviceNotFound int = iota + 102000
	// ErrDeviceOffline - 400: 设备离线，无法调节.
	ErrDeviceOffline
	// ErrValueOutOfRange - 400: 调节值超出允许范围.
	ErrValueOutOfRange
	// ErrFieldNotAdjustable - 400: 设备类型不支持该调节参数.
	ErrFieldNotAdjustable
	// ErrNoPendingChanges - 400: 没有待提交的调节.
	ErrNoPendingChanges
)

// 房间相关错误码 (103xxx).
const (
	// ErrRoomNotFound - 404: 房间不存在.
	ErrRoomNotFound int = iota + 103000
)

// 联动规则相关错误码 (104xxx).
const (
	// ErrLinkageNotFound - 404: 联动规则不存在.
	ErrLinkageNotFound int = iota + 104000
	// ErrRuleDisabled - 409: 联动规则已停用，无法执行.
	ErrRuleDisabled
	// ErrPresetNotFound - 404: 预设场景不存在.
	ErrPresetNotFound
	// ErrInvalidAction - 400: 联动动作参数非法.
	ErrInvalidAction
	// ErrConditionInvalid - 400: 触发条件表达式无法编译.
	ErrConditionInvalid
)

// 机器人与任务相关错误码 (105xxx).
const (
	// ErrRobotNotFound - 404: 机器人不存在.
	ErrRobotNotFound int = iota + 105000
	// ErrTaskNotFound - 404: 任务不存在.
	ErrTaskNotFound
	// ErrInvalidTransition - 409: 非法的任务状态迁移.
	ErrInvalidTransition
	// ErrInvalidRobotAction - 400: 非法的机器人控制动作.
	ErrInvalidRobotAction
)

// 告警相关错误码 (106xxx).
const (
	// ErrAlertNotFound - 404: 告警不存在.
	ErrAlertNotFound int = iota + 106000
)
