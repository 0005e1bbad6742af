package health

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/database"
	"github.com/SlpAus/jeopardy-stats-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// PerformCheck 执行一次Redis可达性检查并更新全局状态。
// Redis在本项目中只存放可重算的统计缓存，重启后无需重建，
// 因此一次PING就足以判断缓存层是否可用。
func PerformCheck() {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()

	err := database.RDB.Ping(ctx).Err()
	wasHealthy := database.IsRedisHealthy()
	nowHealthy := err == nil

	if wasHealthy != nowHealthy {
		if nowHealthy {
			fmt.Println("健康检查: Redis已恢复，统计缓存重新启用。")
		} else {
			fmt.Printf("健康检查: Redis不可用，统计查询将降级为直接计算: %v\n", err)
		}
	}

	database.UpdateStatus(nowHealthy)
}

// StartRedisHealthCheck 启动一个后台Goroutine来定期、阻塞式地执行健康检查。
func StartRedisHealthCheck(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("Redis健康检查器已启动。")

	for {
		if err := handle.Sleep(checkInterval); err != nil {
			fmt.Println("Redis健康检查器已停止。")
			return
		}
		PerformCheck()
	}
}
