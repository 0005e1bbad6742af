package startup

import (
	"fmt"

	"github.com/SlpAus/jeopardy-stats-backend/internal/game"
	"github.com/SlpAus/jeopardy-stats-backend/internal/stats"
	"github.com/SlpAus/jeopardy-stats-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用初始化...")

	if err := user.PrimeDB(); err != nil {
		return err
	}
	if err := game.PrimeDB(); err != nil {
		return err
	}

	// 比赛数据写入后使对应用户的统计缓存失效。
	// 在装配阶段注入，game模块因此不需要依赖stats。
	game.SetAfterWriteHook(stats.InvalidateUserCache)

	fmt.Println("应用初始化完成！")
	return nil
}
