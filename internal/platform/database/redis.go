package database

import (
	"context"
	"fmt"

	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB 是一个全局的Redis客户端实例，供项目其他部分使用
var RDB *redis.Client

// Ctx 是一个全局的上下文，用于Redis操作
var Ctx = context.Background()

// InitRedis 初始化Redis连接。
// Redis在本项目中只承担统计结果缓存，连接失败不会阻止启动。
func InitRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.Cfg.Database.Redis.Address,
		Password: config.Cfg.Database.Redis.Password,
		DB:       config.Cfg.Database.Redis.DB,
	})

	if err := RDB.Ping(Ctx).Err(); err != nil {
		fmt.Printf("警告: Redis连接失败，统计缓存将不可用: %v\n", err)
		UpdateStatus(false)
		return
	}

	UpdateStatus(true)
	fmt.Println("Redis连接成功！")
}
