package user

import (
	"fmt"

	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/database"
)

// PrimeDB 负责迁移user模块的数据库表结构并解析示例账号。
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移user表: %w", err)
	}
	fmt.Println("User数据库表迁移成功。")

	if err := ResolveSampleUser(); err != nil {
		// 示例账号缺失不应阻止启动，只是示例路由会返回404
		fmt.Printf("警告: %v\n", err)
	}
	return nil
}
