package game

import (
	"fmt"

	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/database"
)

// PrimeDB 负责迁移game模块的数据库表结构
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Game{}, &Sixth{}, &Final{}); err != nil {
		return fmt.Errorf("无法迁移game相关表: %w", err)
	}
	fmt.Println("Game数据库表迁移成功。")
	return nil
}
