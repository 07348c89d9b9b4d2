package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBDriver        string // 数据库驱动: "mysql"(默认), "sqlite"
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // 数据库迁移模式: "auto"(默认), "alter"(修改), "drop"(删除重建)

	// Server
	ServerPort string

	// Redis
	RedisHost string
	RedisPort string
	RedisDB   int

	// MQTT
	MQTTBroker   string // 为空时禁用MQTT事件推送
	MQTTPort     string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	// Simulation 仿真参数
	SimEnabled          bool    // 是否启动周期仿真
	SimSeed             int64   // 随机种子，0表示使用时间种子
	DeviceTickSeconds   int     // 设备遥测游走周期
	FleetTickSeconds    int     // 机器人遥测游走周期
	TaskTickSeconds     int     // 任务推进周期
	AlertRefreshSeconds int     // 告警刷新周期
	FleetSize           int     // 初始机器人数量
	TaskCompleteRate    float64 // 任务从执行中进入完成的比例
	TaskFailRate        float64 // 任务从执行中进入失败的比例

	// Energy 能耗系数 (kWh / 单位变化量)
	EnergyCoefTemperature float64
	EnergyCoefBrightness  float64
	EnergyCoefVolume      float64
	EnergyCoefPower       float64
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	// Get environment type (default to LOCAL if not set)
	envType := getEnv("ENV_TYPE", "LOCAL")
	prefix := ""

	// Set prefix based on environment type
	if strings.ToUpper(envType) == "LOCAL" {
		prefix = "LOCAL_"
	} else if strings.ToUpper(envType) == "SERVER" {
		prefix = "SERVER_"
	} else {
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	fmt.Printf("Loading configuration for environment: %s\n", envType)

	return &Config{
		// Environment type
		EnvType: envType,

		// Database config - use environment-specific variables if available
		DBDriver:        getEnv(prefix+"DB_DRIVER", getEnv("DB_DRIVER", "mysql")),
		DBHost:          getEnv(prefix+"DB_HOST", getEnv("DB_HOST", "localhost")),
		DBUser:          getEnv(prefix+"DB_USER", getEnv("DB_USER", "root")),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", getEnv("DB_PASSWORD", "")),
		DBName:          getEnv(prefix+"DB_NAME", getEnv("DB_NAME", "hotel_iot_db")),
		DBPort:          getEnv(prefix+"DB_PORT", getEnv("DB_PORT", "3306")),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", getEnv("DB_MIGRATION_MODE", "auto")),

		// Server config
		ServerPort: getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),

		// Redis config
		RedisHost: getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "localhost")),
		RedisPort: getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		// MQTT config
		MQTTBroker:   getEnv("MQTT_BROKER", ""),
		MQTTPort:     getEnv("MQTT_PORT", "1883"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "hotel-iot-service"),
		MQTTUsername: getEnv("MQTT_USERNAME", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),

		// Simulation config
		SimEnabled:          getEnvAsBool("SIM_ENABLED", true),
		SimSeed:             int64(getEnvAsInt("SIM_SEED", 0)),
		DeviceTickSeconds:   getEnvAsInt("SIM_DEVICE_TICK_SECONDS", 5),
		FleetTickSeconds:    getEnvAsInt("SIM_FLEET_TICK_SECONDS", 3),
		TaskTickSeconds:     getEnvAsInt("SIM_TASK_TICK_SECONDS", 5),
		AlertRefreshSeconds: getEnvAsInt("SIM_ALERT_REFRESH_SECONDS", 30),
		FleetSize:           getEnvAsInt("SIM_FLEET_SIZE", 8),
		TaskCompleteRate:    getEnvAsFloat("SIM_TASK_COMPLETE_RATE", 0.90),
		TaskFailRate:        getEnvAsFloat("SIM_TASK_FAIL_RATE", 0.05),

		// Energy coefficients (kWh per unit of change)
		EnergyCoefTemperature: getEnvAsFloat("ENERGY_COEF_TEMPERATURE", 0.50),
		EnergyCoefBrightness:  getEnvAsFloat("ENERGY_COEF_BRIGHTNESS", 0.02),
		EnergyCoefVolume:      getEnvAsFloat("ENERGY_COEF_VOLUME", 0.005),
		EnergyCoefPower:       getEnvAsFloat("ENERGY_COEF_POWER", 1.20),
	}
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true&multiStatements=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// GetMQTTBrokerURL returns the MQTT broker URL, empty when MQTT is disabled
func (c *Config) GetMQTTBrokerURL() string {
	if c.MQTTBroker == "" {
		return ""
	}
	return "tcp://" + c.MQTTBroker + ":" + c.MQTTPort
}

// EnergyCoefficient 返回指定调节类型对应的能耗系数
func (c *Config) EnergyCoefficient(adjustmentType string) float64 {
	switch adjustmentType {
	case "temperature":
		return c.EnergyCoefTemperature
	case "brightness":
		return c.EnergyCoefBrightness
	case "volume":
		return c.EnergyCoefVolume
	case "power":
		return c.EnergyCoefPower
	default:
		return 0
	}
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as boolean with default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as float with default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
