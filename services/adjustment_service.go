package services

import (
	"hotel-iot-service/config"
	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"
	"hotel-iot-service/utils"
	"sync"
	"time"

	"gorm.io/gorm"
)

// AdjustRequest 一次设备参数调节请求
type AdjustRequest struct {
	DeviceID string                `json:"device_id"`
	Field    models.AdjustmentType `json:"field"`
	Value    float64               `json:"value"`
	Actor    models.Adjuster       `json:"actor"`
	Reason   string                `json:"reason"`
}

// AdjustmentFilter 调节记录查询过滤条件
type AdjustmentFilter struct {
	RoomNumber string                `form:"room"`
	From       time.Time             `form:"from" time_format:"2006-01-02"`
	To         time.Time             `form:"to" time_format:"2006-01-02"`
	Type       models.AdjustmentType `form:"type"`
	Operator   models.Adjuster       `form:"operator"`
}

// AdjustmentStats 调节记录汇总统计
type AdjustmentStats struct {
	TotalCount         int64                            `json:"total_count"`
	CountByType        map[models.AdjustmentType]int64  `json:"count_by_type"`
	CountByOperator    map[models.Adjuster]int64        `json:"count_by_operator"`
	TotalEnergyImpact  float64                          `json:"total_energy_impact"` // kWh
	MeanNewValueByType map[models.AdjustmentType]float64 `json:"mean_new_value_by_type"`
}

// stagedChange 暂存的未提交调节，按设备+参数去重：
// oldValue保留首次调节前的值，newValue取最后一次的目标值
type stagedChange struct {
	deviceID   string
	deviceName string
	roomNumber string
	field      models.AdjustmentType
	oldValue   float64
	newValue   float64
	actor      models.Adjuster
	reason     string
}

// InterfaceAdjustmentService defines the adjustment engine interface
type InterfaceAdjustmentService interface {
	AdjustDevice(req AdjustRequest) (*models.Device, *models.DeviceAdjustment, error)
	StageAdjustment(req AdjustRequest) (*models.Device, error)
	HasUnsavedChanges() bool
	SaveSettings() ([]models.DeviceAdjustment, error)
	GetAdjustments(filter AdjustmentFilter, page models.PaginationQuery) ([]models.DeviceAdjustment, int64, error)
	GetAdjustmentStats(filter AdjustmentFilter) (*AdjustmentStats, error)
}

// AdjustmentService 提供设备参数调节与调节历史相关的服务
type AdjustmentService struct {
	DB     *gorm.DB
	Config *config.Config
	Events InterfaceEventService

	stagedMu sync.Mutex
	staged   map[string]*stagedChange // key: deviceID + "/" + field
}

// NewAdjustmentService 创建一个新的调节服务
func NewAdjustmentService(db *gorm.DB, cfg *config.Config, events InterfaceEventService) InterfaceAdjustmentService {
	return &AdjustmentService{
		DB:     db,
		Config: cfg,
		Events: events,
		staged: make(map[string]*stagedChange),
	}
}

// 1 AdjustDevice 校验并立即提交一次调节：更新设备、追加调节记录
func (s *AdjustmentService) AdjustDevice(req AdjustRequest) (*models.Device, *models.DeviceAdjustment, error) {
	device, oldValue, err := s.validateAndApply(req)
	if err != nil {
		return nil, nil, err
	}

	adjustment := s.buildAdjustment(device, req.Field, oldValue, req.Value, req.Actor, req.Reason)

	// 设备更新与日志追加要么同时生效要么都不生效
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(device).Error; err != nil {
			return err
		}
		return tx.Create(adjustment).Error
	})
	if err != nil {
		return nil, nil, err
	}

	if s.Events != nil {
		if err := s.Events.PublishDeviceState(device); err != nil {
			config.Warning("推送设备状态失败: %v", err)
		}
	}

	return device, adjustment, nil
}

// 2 StageAdjustment 校验并应用调节，但日志暂存，等待批量提交
func (s *AdjustmentService) StageAdjustment(req AdjustRequest) (*models.Device, error) {
	device, oldValue, err := s.validateAndApply(req)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Save(device).Error; err != nil {
		return nil, err
	}

	roomNumber := ""
	if device.RoomNumber != nil {
		roomNumber = *device.RoomNumber
	}

	key := req.DeviceID + "/" + string(req.Field)
	s.stagedMu.Lock()
	if existing, ok := s.staged[key]; ok {
		// 同一设备同一参数的多次调节合并为一条记录
		existing.newValue = req.Value
		existing.actor = req.Actor
		existing.reason = req.Reason
	} else {
		s.staged[key] = &stagedChange{
			deviceID:   device.ID,
			deviceName: device.Name,
			roomNumber: roomNumber,
			field:      req.Field,
			oldValue:   oldValue,
			newValue:   req.Value,
			actor:      req.Actor,
			reason:     req.Reason,
		}
	}
	s.stagedMu.Unlock()

	return device, nil
}

// 3 HasUnsavedChanges 是否存在未提交的调节
func (s *AdjustmentService) HasUnsavedChanges() bool {
	s.stagedMu.Lock()
	defer s.stagedMu.Unlock()
	return len(s.staged) > 0
}

// 4 SaveSettings 提交全部暂存调节，每个被调节的设备参数落一条记录
func (s *AdjustmentService) SaveSettings() ([]models.DeviceAdjustment, error) {
	s.stagedMu.Lock()
	if len(s.staged) == 0 {
		s.stagedMu.Unlock()
		return nil, apperr.New(code.ErrNoPendingChanges, "")
	}
	pending := make([]*stagedChange, 0, len(s.staged))
	for _, c := range s.staged {
		pending = append(pending, c)
	}
	s.staged = make(map[string]*stagedChange)
	s.stagedMu.Unlock()

	now := time.Now()
	adjustments := make([]models.DeviceAdjustment, 0, len(pending))
	for _, c := range pending {
		adjustments = append(adjustments, models.DeviceAdjustment{
			ID:             utils.NewEntityID("adj"),
			DeviceID:       c.deviceID,
			DeviceName:     c.deviceName,
			RoomNumber:     c.roomNumber,
			AdjustmentType: c.field,
			OldValue:       c.oldValue,
			NewValue:       c.newValue,
			AdjustedBy:     c.actor,
			Timestamp:      now,
			Reason:         c.reason,
			EnergyImpact:   (c.newValue - c.oldValue) * s.Config.EnergyCoefficient(string(c.field)),
		})
	}

	if err := s.DB.Create(&adjustments).Error; err != nil {
		return nil, err
	}

	return adjustments, nil
}

// 5 GetAdjustments 查询调节记录，按时间倒序
func (s *AdjustmentService) GetAdjustments(filter AdjustmentFilter, page models.PaginationQuery) ([]models.DeviceAdjustment, int64, error) {
	query := s.filteredQuery(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Normalize()
	var adjustments []models.DeviceAdjustment
	if err := query.Order("timestamp desc").Offset(offset).Limit(limit).Find(&adjustments).Error; err != nil {
		return nil, 0, err
	}

	return adjustments, total, nil
}

// 6 GetAdjustmentStats 汇总统计：按类型/操作者计数、能耗影响合计、各类型均值
func (s *AdjustmentService) GetAdjustmentStats(filter AdjustmentFilter) (*AdjustmentStats, error) {
	stats := &AdjustmentStats{
		CountByType:        map[models.AdjustmentType]int64{},
		CountByOperator:    map[models.Adjuster]int64{},
		MeanNewValueByType: map[models.AdjustmentType]float64{},
	}

	if err := s.filteredQuery(filter).Count(&stats.TotalCount).Error; err != nil {
		return nil, err
	}

	type typeAgg struct {
		Key   string
		Count int64
		Mean  float64
	}
	var byType []typeAgg
	if err := s.filteredQuery(filter).
		Select("adjustment_type as `key`, count(*) as count, avg(new_value) as mean").
		Group("adjustment_type").
		Scan(&byType).Error; err != nil {
		return nil, err
	}
	for _, g := range byType {
		stats.CountByType[models.AdjustmentType(g.Key)] = g.Count
		stats.MeanNewValueByType[models.AdjustmentType(g.Key)] = g.Mean
	}

	type opAgg struct {
		Key   string
		Count int64
	}
	var byOperator []opAgg
	if err := s.filteredQuery(filter).
		Select("adjusted_by as `key`, count(*) as count").
		Group("adjusted_by").
		Scan(&byOperator).Error; err != nil {
		return nil, err
	}
	for _, g := range byOperator {
		stats.CountByOperator[models.Adjuster(g.Key)] = g.Count
	}

	var totalImpact float64
	if err := s.filteredQuery(filter).
		Select("COALESCE(SUM(energy_impact), 0)").
		Scan(&totalImpact).Error; err != nil {
		return nil, err
	}
	stats.TotalEnergyImpact = totalImpact

	return stats, nil
}

// filteredQuery 构造带过滤条件的调节记录查询
func (s *AdjustmentService) filteredQuery(filter AdjustmentFilter) *gorm.DB {
	query := s.DB.Model(&models.DeviceAdjustment{})
	if filter.RoomNumber != "" {
		query = query.Where("room_number = ?", filter.RoomNumber)
	}
	if !filter.From.IsZero() {
		query = query.Where("timestamp >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("timestamp <= ?", filter.To)
	}
	if filter.Type != "" {
		query = query.Where("adjustment_type = ?", filter.Type)
	}
	if filter.Operator != "" {
		query = query.Where("adjusted_by = ?", filter.Operator)
	}
	return query
}

// validateAndApply 校验调节请求并把新值写入设备对象（不落库），返回旧值
func (s *AdjustmentService) validateAndApply(req AdjustRequest) (*models.Device, float64, error) {
	if !models.ValidAdjustmentType(req.Field) {
		return nil, 0, apperr.New(code.ErrValidation, "非法的调节参数: %s", req.Field)
	}
	if !models.ValidAdjuster(req.Actor) {
		return nil, 0, apperr.New(code.ErrValidation, "非法的操作来源: %s", req.Actor)
	}

	var device models.Device
	if err := s.DB.First(&device, "id = ?", req.DeviceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, 0, apperr.New(code.ErrDeviceNotFound, "设备 %s 不存在", req.DeviceID)
		}
		return nil, 0, err
	}

	if device.Status != models.DeviceStatusOnline {
		return nil, 0, apperr.New(code.ErrDeviceOffline, "设备 %s 当前状态为 %s，仅在线设备可调节", device.ID, device.Status)
	}
	if !device.Type.SupportsAdjustment(req.Field) {
		return nil, 0, apperr.New(code.ErrFieldNotAdjustable, "设备 %s (类型 %s) 不支持调节 %s", device.ID, device.Type, req.Field)
	}

	min, max, _ := models.AdjustmentRange(req.Field)
	if req.Value < min || req.Value > max {
		return nil, 0, apperr.New(code.ErrValueOutOfRange, "设备 %s 的 %s 调节值 %.1f 超出允许范围 [%.0f, %.0f]",
			device.ID, req.Field, req.Value, min, max)
	}

	oldValue := deviceFieldValue(&device, req.Field)
	setDeviceField(&device, req.Field, req.Value)
	device.Touch()

	return &device, oldValue, nil
}

// buildAdjustment 构造一条调节记录，能耗影响 = 变化量 × 配置系数
func (s *AdjustmentService) buildAdjustment(device *models.Device, field models.AdjustmentType, oldValue, newValue float64, actor models.Adjuster, reason string) *models.DeviceAdjustment {
	roomNumber := ""
	if device.RoomNumber != nil {
		roomNumber = *device.RoomNumber
	}
	return &models.DeviceAdjustment{
		ID:             utils.NewEntityID("adj"),
		DeviceID:       device.ID,
		DeviceName:     device.Name,
		RoomNumber:     roomNumber,
		AdjustmentType: field,
		OldValue:       oldValue,
		NewValue:       newValue,
		AdjustedBy:     actor,
		Timestamp:      time.Now(),
		Reason:         reason,
		EnergyImpact:   (newValue - oldValue) * s.Config.EnergyCoefficient(string(field)),
	}
}

// deviceFieldValue 读取设备上与调节类型对应的当前值，未设置时为0
func deviceFieldValue(d *models.Device, t models.AdjustmentType) float64 {
	ptr := deviceFieldPtr(d, t)
	if ptr == nil || *ptr == nil {
		return 0
	}
	return **ptr
}

// setDeviceField 把调节值写入设备对应字段（schedule只记日志，设备上无对应字段）
func setDeviceField(d *models.Device, t models.AdjustmentType, v float64) {
	ptr := deviceFieldPtr(d, t)
	if ptr == nil {
		return
	}
	*ptr = &v
}

func deviceFieldPtr(d *models.Device, t models.AdjustmentType) **float64 {
	switch t {
	case models.AdjustmentTemperature:
		return &d.Temperature
	case models.AdjustmentBrightness:
		return &d.Brightness
	case models.AdjustmentVolume:
		return &d.Volume
	case models.AdjustmentPower:
		return &d.Power
	default:
		return nil
	}
}

