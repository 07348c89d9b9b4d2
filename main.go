// @title           Hotel IoT Service API
// @version         1.0
// @description     A hotel IoT management console backend: device and room registries, adjustment log, device linkage rules, delivery robot fleet and alerting
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.yourcompany.com/support
// @contact.email  support@yourcompany.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api
package main

import (
	"context"
	"fmt"
	"hotel-iot-service/config"
	"hotel-iot-service/models"
	"hotel-iot-service/routes"
	"hotel-iot-service/services"
	"hotel-iot-service/services/container"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// 初始化日志配置
	if err := config.SetupLogger(); err != nil {
		fmt.Printf("初始化日志配置失败: %v\n", err)
		os.Exit(1)
	}

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		config.Warning("无法加载.env文件: %v", err)
		// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
	} else {
		config.Info("成功加载.env文件")
	}

	// 获取配置
	cfg := config.GetConfig()

	// 连接数据库
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("无法连接数据库: %v", err)
	}

	// 根据配置执行不同的数据库操作
	if cfg.DBMigrationMode == "drop" {
		// 删除并重建表
		log.Println("警告: 在drop模式下运行，将删除并重建所有表")
		if err := dropAndRecreateTables(db); err != nil {
			log.Fatalf("删除并重建表失败: %v", err)
		}
	} else {
		// 默认AutoMigrate，只会添加新列和新表，不会删除或修改列
		log.Println("在标准模式下运行，将只添加新列和新表")
		if err := autoMigrate(db); err != nil {
			log.Fatalf("自动迁移失败: %v", err)
		}
	}

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, nil)

	// 库为空时生成初始数据
	seedService := serviceContainer.GetService("seed").(services.InterfaceSeedService)
	if err := seedService.SeedIfEmpty(); err != nil {
		log.Fatalf("数据初始化失败: %v", err)
	}

	// 启动周期仿真
	simulationService := serviceContainer.GetService("simulation").(services.InterfaceSimulationService)
	if err := simulationService.Start(); err != nil {
		log.Fatalf("启动周期仿真失败: %v", err)
	}

	// 初始化路由
	r := routes.SetupRouter(serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		config.Info("服务器启动在: http://localhost:%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			config.Error("启动服务器失败: %v", err)
			os.Exit(1)
		}
	}()

	// 等待退出信号，停止仿真与HTTP服务
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	config.Info("收到退出信号，开始关闭")

	simulationService.Stop()

	eventService := serviceContainer.GetService("event").(services.InterfaceEventService)
	eventService.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		config.Error("关闭HTTP服务失败: %v", err)
	}
	config.Info("服务已退出")
}

// initDB 初始化数据库连接，按配置选择mysql或sqlite驱动
func initDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.DBDriver == "sqlite" {
		dialector = sqlite.Open(cfg.DBName + ".db")
	} else {
		dialector = mysql.Open(cfg.GetDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	fmt.Println("Database connection established")
	return db, nil
}

// autoMigrate 自动迁移所有模型（只添加新列和新表）
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Room{},
		&models.Device{},
		&models.DeviceAdjustment{},
		&models.DeviceLinkage{},
		&models.Robot{},
		&models.RobotTask{},
		&models.Alert{},
	)

	if err != nil {
		return err
	}

	fmt.Println("Database migration completed")
	return nil
}

// dropAndRecreateTables 删除并重建所有表
func dropAndRecreateTables(db *gorm.DB) error {
	// 警告: 这将删除所有数据
	log.Println("警告: 正在删除并重建所有表，所有数据将丢失")

	err := db.Migrator().DropTable(
		&models.Room{},
		&models.Device{},
		&models.DeviceAdjustment{},
		&models.DeviceLinkage{},
		&models.Robot{},
		&models.RobotTask{},
		&models.Alert{},
	)
	if err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}

	// 重新创建所有表
	log.Println("正在重新创建所有表")
	return autoMigrate(db)
}
