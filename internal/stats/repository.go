package stats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

const (
	// CacheTTL 是统计结果缓存的有效期
	CacheTTL = 1 * time.Minute
)

// cacheKey 返回某个用户的统计缓存Hash的键。
// Field: 统计种类 + 比赛类型集合
// Value: 对应视图结构体的JSON序列化字符串
func cacheKey(userID uint) string {
	return fmt.Sprintf("stats:cache:%d", userID)
}

// cacheField 把统计种类和类型筛选编码为Hash字段名。
func cacheField(kind string, playTypes []string) string {
	return kind + "|" + strings.Join(playTypes, ",")
}

// getStatsCache 从Redis读取缓存的统计结果。
// 缓存未命中时返回false，不算错误。
func getStatsCache(userID uint, field string, dest interface{}) (bool, error) {
	result, err := database.RDB.HGet(database.Ctx, cacheKey(userID), field).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(result), dest); err != nil {
		return false, err
	}
	return true, nil
}

// setStatsCache 把统计结果写入Redis缓存。
// 使用Pipeline原子地设置值和整个Hash的过期时间。
func setStatsCache(userID uint, field string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	pipe := database.RDB.Pipeline()
	pipe.HSet(database.Ctx, cacheKey(userID), field, data)
	pipe.Expire(database.Ctx, cacheKey(userID), CacheTTL)
	_, err = pipe.Exec(database.Ctx)
	return err
}

// InvalidateUserCache 丢弃某个用户的全部统计缓存。
// 比赛数据的任何写入之后都会被调用。
func InvalidateUserCache(userID uint) {
	if !database.IsRedisHealthy() {
		return
	}
	if err := database.RDB.Del(database.Ctx, cacheKey(userID)).Err(); err != nil {
		fmt.Printf("警告: 清除用户 %d 的统计缓存失败: %v\n", userID, err)
	}
}
