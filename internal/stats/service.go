package stats

import (
	"fmt"

	"github.com/SlpAus/jeopardy-stats-backend/internal/game"
	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/database"
	"gorm.io/gorm"
)

// --- 聚合查询入口 ---
// 三个操作都只读：按比赛类型筛选出用户的比赛，折叠成视图。
// Redis可用时结果会以短TTL缓存；不可用时直接计算。

// loadGames 加载用户在指定比赛类型集合下的全部比赛及其子记录。
// 类型集合为空时直接返回空集，调用方会得到全零的聚合结果。
func loadGames(userID uint, playTypes []string) ([]game.Game, error) {
	if len(playTypes) == 0 {
		return nil, nil
	}

	var games []game.Game
	err := database.DB.Preload("Sixths", func(db *gorm.DB) *gorm.DB {
		return db.Order("round asc, board_position asc")
	}).Preload("Final").
		Where("user_id = ? AND play_type IN ?", userID, playTypes).
		Order("show_date asc").
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("无法加载用户比赛数据: %w", err)
	}
	return games, nil
}

// TopicsSummary 返回按话题分组的线索结果统计。
func TopicsSummary(userID uint, playTypes []string) ([]TopicStat, error) {
	field := cacheField("topics", playTypes)

	if database.IsRedisHealthy() {
		var cached []TopicStat
		if hit, err := getStatsCache(userID, field, &cached); err == nil && hit {
			return cached, nil
		}
	}

	games, err := loadGames(userID, playTypes)
	if err != nil {
		return nil, err
	}
	result := foldTopics(games)
	if result == nil {
		result = []TopicStat{}
	}

	if database.IsRedisHealthy() {
		if err := setStatsCache(userID, field, result); err != nil {
			fmt.Printf("警告: 缓存话题统计失败: %v\n", err)
		}
	}
	return result, nil
}

// ResultsByRow 返回按棋盘位置分组的线索结果统计。
func ResultsByRow(userID uint, playTypes []string) ([]RowStat, error) {
	field := cacheField("by_row", playTypes)

	if database.IsRedisHealthy() {
		var cached []RowStat
		if hit, err := getStatsCache(userID, field, &cached); err == nil && hit {
			return cached, nil
		}
	}

	games, err := loadGames(userID, playTypes)
	if err != nil {
		return nil, err
	}
	result := foldRows(games)

	if database.IsRedisHealthy() {
		if err := setStatsCache(userID, field, result); err != nil {
			fmt.Printf("警告: 缓存位置统计失败: %v\n", err)
		}
	}
	return result, nil
}

// MultiGameSummaryFor 返回跨比赛的整体统计。
func MultiGameSummaryFor(userID uint, playTypes []string) (*MultiGameSummary, error) {
	field := cacheField("summary", playTypes)

	if database.IsRedisHealthy() {
		var cached MultiGameSummary
		if hit, err := getStatsCache(userID, field, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	games, err := loadGames(userID, playTypes)
	if err != nil {
		return nil, err
	}
	result := foldSummary(games)

	if database.IsRedisHealthy() {
		if err := setStatsCache(userID, field, result); err != nil {
			fmt.Printf("警告: 缓存整体统计失败: %v\n", err)
		}
	}
	return result, nil
}
