package services

import (
	"encoding/json"
	"hotel-iot-service/config"
	"hotel-iot-service/models"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// 事件主题常量
const (
	// 设备状态变更主题
	TopicDeviceState = "hotel_iot/devices/state"

	// 机器人状态主题
	TopicRobotStatus = "hotel_iot/robots/status"

	// 任务状态迁移主题
	TopicTaskEvent = "hotel_iot/tasks/event"

	// 告警刷新主题
	TopicAlerts = "hotel_iot/alerts"
)

// InterfaceEventService 定义对外事件推送接口。
// 这是存储层变更向订阅方广播的出口，不承担任何设备侧通信。
type InterfaceEventService interface {
	Connect() error
	Disconnect()
	IsEnabled() bool
	PublishDeviceState(device *models.Device) error
	PublishRobotStatus(robot *models.Robot) error
	PublishTaskEvent(task *models.RobotTask) error
	PublishAlerts(alerts []models.Alert) error
}

// EventService 基于MQTT的事件推送实现，未配置broker时全部操作为空操作
type EventService struct {
	Config         *config.Config
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex // 保护IsConnected字段的读写
	PublishMutex   sync.Mutex   // 用于保护MQTT消息发布
}

// NewEventService 创建一个新的事件推送服务
func NewEventService(cfg *config.Config) InterfaceEventService {
	s := &EventService{Config: cfg}
	if cfg.GetMQTTBrokerURL() != "" {
		s.setupMQTTClient()
	}
	return s
}

// setupMQTTClient 配置MQTT客户端
func (s *EventService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.GetMQTTBrokerURL())
	opts.SetClientID(s.Config.MQTTClientID)
	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}
	opts.SetKeepAlive(30 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(1 * time.Minute)

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		config.Warning("MQTT连接断开: %v", err)
		s.setConnected(false)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		config.Info("MQTT连接成功: %s", s.Config.GetMQTTBrokerURL())
		s.setConnected(true)
	})
	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		config.Info("MQTT正在重连...")
	})

	s.Client = mqtt.NewClient(opts)
}

// Connect 连接MQTT服务器，未配置broker时直接返回
func (s *EventService) Connect() error {
	if s.Client == nil {
		return nil
	}

	token := s.Client.Connect()
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	s.setConnected(true)
	return nil
}

// Disconnect 断开MQTT连接
func (s *EventService) Disconnect() {
	if s.Client == nil {
		return
	}
	s.Client.Disconnect(250)
	s.setConnected(false)
}

// IsEnabled 事件推送是否可用
func (s *EventService) IsEnabled() bool {
	s.connectedMutex.RLock()
	defer s.connectedMutex.RUnlock()
	return s.Client != nil && s.IsConnected
}

// PublishDeviceState 推送设备状态变更
func (s *EventService) PublishDeviceState(device *models.Device) error {
	return s.publishMessage(TopicDeviceState, device)
}

// PublishRobotStatus 推送机器人状态
func (s *EventService) PublishRobotStatus(robot *models.Robot) error {
	return s.publishMessage(TopicRobotStatus, robot)
}

// PublishTaskEvent 推送任务状态迁移
func (s *EventService) PublishTaskEvent(task *models.RobotTask) error {
	return s.publishMessage(TopicTaskEvent, task)
}

// PublishAlerts 推送告警快照
func (s *EventService) PublishAlerts(alerts []models.Alert) error {
	return s.publishMessage(TopicAlerts, alerts)
}

// publishMessage 序列化并发布消息，未连接时为空操作
func (s *EventService) publishMessage(topic string, payload interface{}) error {
	if !s.IsEnabled() {
		return nil
	}

	s.PublishMutex.Lock()
	defer s.PublishMutex.Unlock()

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	token := s.Client.Publish(topic, 0, false, jsonData)
	if token.WaitTimeout(3*time.Second) && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (s *EventService) setConnected(connected bool) {
	s.connectedMutex.Lock()
	s.IsConnected = connected
	s.connectedMutex.Unlock()
}
