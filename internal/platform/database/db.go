package database

import (
	"fmt"
	"log"
	"os"

	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的GORM实例，供项目其他部分使用
var DB *gorm.DB

// InitDB 根据配置初始化主数据库连接
func InitDB() {
	var err error

	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 在生产环境中可以设为Silent
			Colorful:      true,
		},
	)

	gormCfg := &gorm.Config{Logger: newLogger}

	// 根据配置选择驱动，默认使用SQLite
	switch config.Cfg.Database.Driver {
	case "postgres":
		DB, err = gorm.Open(postgres.Open(config.Cfg.Database.Postgres.DSN), gormCfg)
	default:
		DB, err = gorm.Open(sqlite.Open(config.Cfg.Database.Sqlite.Path), gormCfg)
	}

	if err != nil {
		fmt.Println("连接数据库失败", err)
		panic(err)
	}

	fmt.Println("数据库连接成功！")
}
