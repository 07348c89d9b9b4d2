package services

import (
	"errors"
	"fmt"
	"hotel-iot-service/config"
	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"
	"hotel-iot-service/utils"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gorm.io/gorm"
)

// LinkageSpec 创建联动规则的请求参数
type LinkageSpec struct {
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	TriggerType      models.TriggerType     `json:"trigger_type"`
	TriggerCondition string                 `json:"trigger_condition"`
	Actions          []models.LinkageAction `json:"actions"`
	RoomNumbers      []string               `json:"room_numbers"`
	IsEnabled        *bool                  `json:"is_enabled"` // 缺省启用
}

// LinkageFilter 联动规则查询过滤条件
type LinkageFilter struct {
	TriggerType models.TriggerType `form:"trigger_type"`
	Enabled     *bool              `form:"enabled"`
	Search      string             `form:"search"`
}

// PresetAction 预设模板中的动作，按设备类型描述，
// 实例化时解析为房间内的具体设备
type PresetAction struct {
	DeviceType models.DeviceType       `json:"device_type"`
	Action     string                  `json:"action"`
	Parameters models.ActionParameters `json:"parameters"`
}

// LinkagePreset 联动规则预设模板
type LinkagePreset struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	TriggerType      models.TriggerType `json:"trigger_type"`
	TriggerCondition string             `json:"trigger_condition"`
	Actions          []PresetAction     `json:"actions"`
}

func float64Ptr(v float64) *float64 { return &v }

// linkagePresets 内置预设模板，按ID升序
var linkagePresets = []LinkagePreset{
	{
		ID:          "preset_checkin_welcome",
		Name:        "入住欢迎模式",
		Description: "客人入住时打开空调与灯光，营造迎宾氛围",
		TriggerType: models.TriggerGuestCheckin,
		Actions: []PresetAction{
			{DeviceType: models.DeviceTypeAirConditioner, Action: "set_temperature",
				Parameters: models.ActionParameters{Temperature: float64Ptr(24), Power: float64Ptr(1)}},
			{DeviceType: models.DeviceTypeLighting, Action: "set_brightness",
				Parameters: models.ActionParameters{Brightness: float64Ptr(80), Power: float64Ptr(1)}},
			{DeviceType: models.DeviceTypeCurtain, Action: "turn_on",
				Parameters: models.ActionParameters{Power: float64Ptr(1)}},
		},
	},
	{
		ID:          "preset_checkout_saving",
		Name:        "退房节能模式",
		Description: "客人退房后关闭房间内可控设备，降低待机能耗",
		TriggerType: models.TriggerGuestCheckout,
		Actions: []PresetAction{
			{DeviceType: models.DeviceTypeAirConditioner, Action: "turn_off",
				Parameters: models.ActionParameters{Power: float64Ptr(0)}},
			{DeviceType: models.DeviceTypeLighting, Action: "turn_off",
				Parameters: models.ActionParameters{Power: float64Ptr(0)}},
			{DeviceType: models.DeviceTypeTV, Action: "turn_off",
				Parameters: models.ActionParameters{Power: float64Ptr(0)}},
		},
	},
	{
		ID:               "preset_night_mode",
		Name:             "夜间模式",
		Description:      "每晚22:30调暗灯光并降低电视音量",
		TriggerType:      models.TriggerTimeBased,
		TriggerCondition: "22:30",
		Actions: []PresetAction{
			{DeviceType: models.DeviceTypeLighting, Action: "set_brightness",
				Parameters: models.ActionParameters{Brightness: float64Ptr(20)}},
			{DeviceType: models.DeviceTypeTV, Action: "set_volume",
				Parameters: models.ActionParameters{Volume: float64Ptr(15)}},
		},
	},
	{
		ID:               "preset_overheat_cooling",
		Name:             "高温自动降温",
		Description:      "室温超过28度时自动打开空调制冷",
		TriggerType:      models.TriggerSensorBased,
		TriggerCondition: "temperature > 28",
		Actions: []PresetAction{
			{DeviceType: models.DeviceTypeAirConditioner, Action: "set_temperature",
				Parameters: models.ActionParameters{Temperature: float64Ptr(24), Power: float64Ptr(1)}},
		},
	},
}

// InterfaceLinkageService defines the device linkage rule engine interface
type InterfaceLinkageService interface {
	GetAllLinkages(filter LinkageFilter, page models.PaginationQuery) ([]models.DeviceLinkage, int64, error)
	GetLinkageByID(id string) (*models.DeviceLinkage, error)
	CreateRule(spec LinkageSpec) (*models.DeviceLinkage, error)
	ListPresets() []LinkagePreset
	InstantiateFromPreset(presetID string, roomNumbers []string) (*models.DeviceLinkage, error)
	ToggleRule(id string, enabled bool) (*models.DeviceLinkage, error)
	BatchToggle(ids []string, enabled bool) (int64, error)
	DeleteRule(id string) error
	BatchDelete(ids []string) (int64, error)
	CopyRule(id string) (*models.DeviceLinkage, error)
	ExecuteRule(id string) (*models.ExecutionResult, error)
	EvaluateSensorRules(env map[string]interface{}) ([]models.ExecutionResult, error)
	ExecuteDueTimeBasedRules(now time.Time) ([]models.ExecutionResult, error)
}

// LinkageService 提供设备联动规则相关的服务
type LinkageService struct {
	DB          *gorm.DB
	Config      *config.Config
	Adjustments InterfaceAdjustmentService
}

// NewLinkageService 创建一个新的联动规则服务
func NewLinkageService(db *gorm.DB, cfg *config.Config, adjustments InterfaceAdjustmentService) InterfaceLinkageService {
	return &LinkageService{
		DB:          db,
		Config:      cfg,
		Adjustments: adjustments,
	}
}

// 1 GetAllLinkages 按过滤条件查询联动规则，按ID升序
func (s *LinkageService) GetAllLinkages(filter LinkageFilter, page models.PaginationQuery) ([]models.DeviceLinkage, int64, error) {
	query := s.DB.Model(&models.DeviceLinkage{})
	if filter.TriggerType != "" {
		query = query.Where("trigger_type = ?", filter.TriggerType)
	}
	if filter.Enabled != nil {
		query = query.Where("is_enabled = ?", *filter.Enabled)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Normalize()
	var linkages []models.DeviceLinkage
	if err := query.Order("id asc").Offset(offset).Limit(limit).Find(&linkages).Error; err != nil {
		return nil, 0, err
	}

	return linkages, total, nil
}

// 2 GetLinkageByID 根据ID获取联动规则
func (s *LinkageService) GetLinkageByID(id string) (*models.DeviceLinkage, error) {
	var linkage models.DeviceLinkage
	if err := s.DB.First(&linkage, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(code.ErrLinkageNotFound, "联动规则 %s 不存在", id)
		}
		return nil, err
	}

	return &linkage, nil
}

// 3 CreateRule 创建联动规则。传感器条件在创建时编译校验，
// 动作参数按目标设备的类型校验。
func (s *LinkageService) CreateRule(spec LinkageSpec) (*models.DeviceLinkage, error) {
	if spec.Name == "" {
		return nil, apperr.New(code.ErrValidation, "规则名称不能为空")
	}
	if spec.Description == "" {
		return nil, apperr.New(code.ErrValidation, "规则描述不能为空")
	}
	if !models.ValidTriggerType(spec.TriggerType) {
		return nil, apperr.New(code.ErrValidation, "非法的触发类型: %s", spec.TriggerType)
	}
	if spec.TriggerCondition == "" {
		return nil, apperr.New(code.ErrValidation, "触发条件不能为空")
	}
	if len(spec.Actions) == 0 {
		return nil, apperr.New(code.ErrValidation, "规则必须包含至少一个动作")
	}

	switch spec.TriggerType {
	case models.TriggerSensorBased:
		if _, err := compileCondition(spec.TriggerCondition); err != nil {
			return nil, err
		}
	case models.TriggerTimeBased:
		if _, err := time.Parse("15:04", spec.TriggerCondition); err != nil {
			return nil, apperr.New(code.ErrConditionInvalid, "定时触发条件 %q 不是合法的 HH:MM 时刻", spec.TriggerCondition)
		}
	}

	for i := range spec.Actions {
		action := &spec.Actions[i]
		var device models.Device
		if err := s.DB.First(&device, "id = ?", action.DeviceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.New(code.ErrDeviceNotFound, "动作目标设备 %s 不存在", action.DeviceID)
			}
			return nil, err
		}
		if err := action.Validate(device.Type); err != nil {
			return nil, apperr.New(code.ErrInvalidAction, "%v", err)
		}
		action.DeviceName = device.Name
	}

	enabled := true
	if spec.IsEnabled != nil {
		enabled = *spec.IsEnabled
	}

	linkage := &models.DeviceLinkage{
		ID:               utils.NewEntityID("linkage"),
		Name:             spec.Name,
		Description:      spec.Description,
		TriggerType:      spec.TriggerType,
		TriggerCondition: spec.TriggerCondition,
		Actions:          spec.Actions,
		IsEnabled:        enabled,
		RoomNumbers:      spec.RoomNumbers,
	}

	if err := s.DB.Create(linkage).Error; err != nil {
		return nil, err
	}

	return linkage, nil
}

// 4 ListPresets 返回内置预设模板
func (s *LinkageService) ListPresets() []LinkagePreset {
	out := make([]LinkagePreset, len(linkagePresets))
	copy(out, linkagePresets)
	return out
}

// 5 InstantiateFromPreset 从预设实例化规则：
// 按房间把模板中的设备类型解析为具体设备，找不到对应设备的房间跳过该动作
func (s *LinkageService) InstantiateFromPreset(presetID string, roomNumbers []string) (*models.DeviceLinkage, error) {
	var preset *LinkagePreset
	for i := range linkagePresets {
		if linkagePresets[i].ID == presetID {
			preset = &linkagePresets[i]
			break
		}
	}
	if preset == nil {
		return nil, apperr.New(code.ErrPresetNotFound, "预设模板 %s 不存在", presetID)
	}
	if len(roomNumbers) == 0 {
		return nil, apperr.New(code.ErrValidation, "实例化预设必须指定房间")
	}

	var actions []models.LinkageAction
	for _, roomNumber := range roomNumbers {
		var room models.Room
		if err := s.DB.First(&room, "room_number = ?", roomNumber).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.New(code.ErrRoomNotFound, "房间 %s 不存在", roomNumber)
			}
			return nil, err
		}

		for _, pa := range preset.Actions {
			var devices []models.Device
			if err := s.DB.Where("room_number = ? AND type = ?", roomNumber, pa.DeviceType).
				Find(&devices).Error; err != nil {
				return nil, err
			}
			for _, d := range devices {
				actions = append(actions, models.LinkageAction{
					DeviceID:   d.ID,
					DeviceName: d.Name,
					Action:     pa.Action,
					Parameters: pa.Parameters,
				})
			}
		}
	}
	if len(actions) == 0 {
		return nil, apperr.New(code.ErrInvalidAction, "所选房间内没有预设 %s 可作用的设备", presetID)
	}

	linkage := &models.DeviceLinkage{
		ID:               utils.NewEntityID("linkage"),
		Name:             preset.Name,
		Description:      preset.Description,
		TriggerType:      preset.TriggerType,
		TriggerCondition: preset.TriggerCondition,
		Actions:          actions,
		IsEnabled:        true,
		RoomNumbers:      roomNumbers,
	}

	if err := s.DB.Create(linkage).Error; err != nil {
		return nil, err
	}

	return linkage, nil
}

// 6 ToggleRule 启用或停用规则。停用不清零执行计数。
func (s *LinkageService) ToggleRule(id string, enabled bool) (*models.DeviceLinkage, error) {
	linkage, err := s.GetLinkageByID(id)
	if err != nil {
		return nil, err
	}

	linkage.IsEnabled = enabled
	if err := s.DB.Save(linkage).Error; err != nil {
		return nil, err
	}

	return linkage, nil
}

// 7 BatchToggle 批量启用或停用，返回实际受影响的规则数
func (s *LinkageService) BatchToggle(ids []string, enabled bool) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.New(code.ErrValidation, "批量操作的规则列表不能为空")
	}
	result := s.DB.Model(&models.DeviceLinkage{}).Where("id IN ?", ids).
		Update("is_enabled", enabled)
	return result.RowsAffected, result.Error
}

// 8 DeleteRule 删除规则
func (s *LinkageService) DeleteRule(id string) error {
	linkage, err := s.GetLinkageByID(id)
	if err != nil {
		return err
	}
	return s.DB.Delete(linkage).Error
}

// 9 BatchDelete 批量删除，返回实际删除的规则数
func (s *LinkageService) BatchDelete(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.New(code.ErrValidation, "批量操作的规则列表不能为空")
	}
	result := s.DB.Where("id IN ?", ids).Delete(&models.DeviceLinkage{})
	return result.RowsAffected, result.Error
}

// 10 CopyRule 复制规则：新ID、名称加副本后缀、执行计数与最近执行时间重置
func (s *LinkageService) CopyRule(id string) (*models.DeviceLinkage, error) {
	source, err := s.GetLinkageByID(id)
	if err != nil {
		return nil, err
	}

	duplicate := &models.DeviceLinkage{
		ID:               utils.NewEntityID("linkage"),
		Name:             source.Name + "（副本）",
		Description:      source.Description,
		TriggerType:      source.TriggerType,
		TriggerCondition: source.TriggerCondition,
		Actions:          source.Actions,
		IsEnabled:        source.IsEnabled,
		RoomNumbers:      source.RoomNumbers,
		ExecutionCount:   0,
		LastExecuted:     nil,
	}

	if err := s.DB.Create(duplicate).Error; err != nil {
		return nil, err
	}

	return duplicate, nil
}

// 11 ExecuteRule 执行规则：停用的规则拒绝执行且不计数；
// 单个动作失败不中断后续动作，失败原因收集进执行结果
func (s *LinkageService) ExecuteRule(id string) (*models.ExecutionResult, error) {
	linkage, err := s.GetLinkageByID(id)
	if err != nil {
		return nil, err
	}
	if !linkage.IsEnabled {
		return nil, apperr.New(code.ErrRuleDisabled, "联动规则 %s 已停用，不能执行", linkage.ID)
	}

	result := &models.ExecutionResult{
		RuleID:     linkage.ID,
		RuleName:   linkage.Name,
		ExecutedAt: time.Now(),
	}

	for _, action := range linkage.Actions {
		applied := false
		for field, value := range action.Adjustments() {
			_, _, err := s.Adjustments.AdjustDevice(AdjustRequest{
				DeviceID: action.DeviceID,
				Field:    field,
				Value:    value,
				Actor:    models.AdjusterSystem,
				Reason:   fmt.Sprintf("联动规则: %s", linkage.Name),
			})
			if err != nil {
				result.ActionErrors = append(result.ActionErrors,
					fmt.Sprintf("设备 %s %s: %v", action.DeviceID, field, err))
				continue
			}
			applied = true
		}
		if applied {
			result.ActionsApplied++
		}
	}

	now := result.ExecutedAt
	linkage.ExecutionCount++
	linkage.LastExecuted = &now
	if err := s.DB.Save(linkage).Error; err != nil {
		return nil, err
	}
	result.ExecutionCount = linkage.ExecutionCount

	return result, nil
}

// 12 EvaluateSensorRules 对传入环境求值全部启用的传感器规则，
// 条件成立的按ID升序依次执行。条件求值失败的规则记日志后跳过。
func (s *LinkageService) EvaluateSensorRules(env map[string]interface{}) ([]models.ExecutionResult, error) {
	var rules []models.DeviceLinkage
	if err := s.DB.Where("trigger_type = ? AND is_enabled = ?", models.TriggerSensorBased, true).
		Order("id asc").Find(&rules).Error; err != nil {
		return nil, err
	}

	var results []models.ExecutionResult
	for _, rule := range rules {
		program, err := compileCondition(rule.TriggerCondition)
		if err != nil {
			config.Warning("联动规则 %s 的条件不可用: %v", rule.ID, err)
			continue
		}
		output, err := expr.Run(program, env)
		if err != nil {
			config.Warning("联动规则 %s 条件求值失败: %v", rule.ID, err)
			continue
		}
		matched, ok := output.(bool)
		if !ok || !matched {
			continue
		}

		result, err := s.ExecuteRule(rule.ID)
		if err != nil {
			config.Warning("联动规则 %s 执行失败: %v", rule.ID, err)
			continue
		}
		results = append(results, *result)
	}

	return results, nil
}

// 13 ExecuteDueTimeBasedRules 执行触发时刻等于当前 HH:MM 的定时规则
func (s *LinkageService) ExecuteDueTimeBasedRules(now time.Time) ([]models.ExecutionResult, error) {
	var rules []models.DeviceLinkage
	if err := s.DB.Where("trigger_type = ? AND is_enabled = ? AND trigger_condition = ?",
		models.TriggerTimeBased, true, now.Format("15:04")).
		Order("id asc").Find(&rules).Error; err != nil {
		return nil, err
	}

	var results []models.ExecutionResult
	for _, rule := range rules {
		result, err := s.ExecuteRule(rule.ID)
		if err != nil {
			config.Warning("定时联动规则 %s 执行失败: %v", rule.ID, err)
			continue
		}
		results = append(results, *result)
	}

	return results, nil
}

// compileCondition 编译传感器触发条件。
// 环境变量在规则创建时未知，允许未定义变量，求值时按实际环境解析。
func compileCondition(src string) (*vm.Program, error) {
	if src == "" {
		return nil, apperr.New(code.ErrConditionInvalid, "传感器规则必须携带触发条件")
	}
	program, err := expr.Compile(src,
		expr.Env(map[string]interface{}{}),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, apperr.New(code.ErrConditionInvalid, "触发条件 %q 编译失败: %v", src, err)
	}
	return program, nil
}
