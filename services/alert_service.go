package services

import (
	"errors"
	"fmt"
	"hotel-iot-service/config"
	"hotel-iot-service/internal/error/apperr"
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/models"
	"time"

	"gorm.io/gorm"
)

// InterfaceAlertService defines the alerting interface
type InterfaceAlertService interface {
	ComputeAlerts(fleet []models.Robot, now time.Time) []models.Alert
	RefreshAlerts() ([]models.Alert, error)
	GetAllAlerts(unreadOnly bool, page models.PaginationQuery) ([]models.Alert, int64, error)
	GetUnreadCount() (int64, error)
	AckAlert(id string) (*models.Alert, error)
	AckAll() (int64, error)
}

// AlertService 提供车队告警相关的服务
type AlertService struct {
	DB     *gorm.DB
	Config *config.Config
	Events InterfaceEventService
}

// NewAlertService 创建一个新的告警服务
func NewAlertService(db *gorm.DB, cfg *config.Config, events InterfaceEventService) InterfaceAlertService {
	return &AlertService{
		DB:     db,
		Config: cfg,
		Events: events,
	}
}

// 1 ComputeAlerts 根据车队快照派生告警。
// 同一机器人同一条件的告警ID确定，刷新合并时据此保留已读标记：
// 故障机器人 → error；电量低于20% → warning；机身温度超过28度 → warning。
// 另附两条固定的运营通知。
func (s *AlertService) ComputeAlerts(fleet []models.Robot, now time.Time) []models.Alert {
	var alerts []models.Alert

	for i := range fleet {
		r := &fleet[i]

		if r.Status == models.RobotStatusError {
			message := fmt.Sprintf("%s 发生故障", r.Name)
			if r.ErrorMessage != nil {
				message = fmt.Sprintf("%s 发生故障: %s", r.Name, *r.ErrorMessage)
			}
			alerts = append(alerts, models.Alert{
				ID:        "alert_error_" + r.ID,
				Type:      models.AlertTypeError,
				Title:     "机器人故障",
				Message:   message,
				RobotID:   &r.ID,
				Timestamp: now,
			})
		}

		if r.Battery < 20 {
			alerts = append(alerts, models.Alert{
				ID:        "alert_battery_" + r.ID,
				Type:      models.AlertTypeWarning,
				Title:     "电量不足",
				Message:   fmt.Sprintf("%s 电量仅剩 %.0f%%，请及时充电", r.Name, r.Battery),
				RobotID:   &r.ID,
				Timestamp: now,
			})
		}

		if r.Temperature > 28 {
			alerts = append(alerts, models.Alert{
				ID:        "alert_temp_" + r.ID,
				Type:      models.AlertTypeWarning,
				Title:     "机身温度过高",
				Message:   fmt.Sprintf("%s 机身温度 %.1f°C，超过安全阈值", r.Name, r.Temperature),
				RobotID:   &r.ID,
				Timestamp: now,
			})
		}
	}

	alerts = append(alerts,
		models.Alert{
			ID:        "alert_info_firmware",
			Type:      models.AlertTypeInfo,
			Title:     "固件更新",
			Message:   "机器人固件 v2.4.1 已发布，可在维护窗口升级",
			Timestamp: now,
		},
		models.Alert{
			ID:        "alert_info_inspection",
			Type:      models.AlertTypeInfo,
			Title:     "例行巡检提醒",
			Message:   "本周日凌晨2点将进行车队例行巡检",
			Timestamp: now,
		},
	)

	return alerts
}

// 2 RefreshAlerts 重新派生告警并与库内记录合并：
// 已存在的告警保留已读标记，条件已消失的机器人派生告警删除
func (s *AlertService) RefreshAlerts() ([]models.Alert, error) {
	var fleet []models.Robot
	if err := s.DB.Find(&fleet).Error; err != nil {
		return nil, err
	}

	fresh := s.ComputeAlerts(fleet, time.Now())

	var existing []models.Alert
	if err := s.DB.Find(&existing).Error; err != nil {
		return nil, err
	}
	readByID := make(map[string]bool, len(existing))
	timestampByID := make(map[string]time.Time, len(existing))
	for _, a := range existing {
		readByID[a.ID] = a.Read
		timestampByID[a.ID] = a.Timestamp
	}

	freshIDs := make([]string, 0, len(fresh))
	for i := range fresh {
		if read, ok := readByID[fresh[i].ID]; ok {
			fresh[i].Read = read
			fresh[i].Timestamp = timestampByID[fresh[i].ID]
		}
		freshIDs = append(freshIDs, fresh[i].ID)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// 条件消失的机器人派生告警一并清除
		if err := tx.Where("robot_id IS NOT NULL AND id NOT IN ?", freshIDs).
			Delete(&models.Alert{}).Error; err != nil {
			return err
		}
		return tx.Save(&fresh).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Events != nil {
		if err := s.Events.PublishAlerts(fresh); err != nil {
			config.Warning("推送告警失败: %v", err)
		}
	}

	return fresh, nil
}

// 3 GetAllAlerts 查询告警，error在前、warning次之、info最后，同级按时间倒序
func (s *AlertService) GetAllAlerts(unreadOnly bool, page models.PaginationQuery) ([]models.Alert, int64, error) {
	query := s.DB.Model(&models.Alert{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page.Normalize()
	var alerts []models.Alert
	if err := query.
		Order("CASE type WHEN 'error' THEN 0 WHEN 'warning' THEN 1 ELSE 2 END, timestamp desc").
		Offset(offset).Limit(limit).Find(&alerts).Error; err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

// 4 GetUnreadCount 未读告警数
func (s *AlertService) GetUnreadCount() (int64, error) {
	var count int64
	err := s.DB.Model(&models.Alert{}).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

// 5 AckAlert 标记单条告警为已读
func (s *AlertService) AckAlert(id string) (*models.Alert, error) {
	var alert models.Alert
	if err := s.DB.First(&alert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(code.ErrAlertNotFound, "告警 %s 不存在", id)
		}
		return nil, err
	}

	alert.Read = true
	if err := s.DB.Save(&alert).Error; err != nil {
		return nil, err
	}

	return &alert, nil
}

// 6 AckAll 标记全部告警为已读，返回实际更新条数
func (s *AlertService) AckAll() (int64, error) {
	result := s.DB.Model(&models.Alert{}).Where("is_read = ?", false).Update("is_read", true)
	return result.RowsAffected, result.Error
}
