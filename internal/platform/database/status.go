package database

import "sync"

// --- Redis 健康状态 ---
// 缓存层允许降级：Redis不可用时统计直接从SQL计算。
// 这里只维护一个由健康检查器写入、各模块读取的状态标志。

var (
	statusMutex    sync.RWMutex
	isRedisHealthy bool
)

// UpdateStatus 由健康检查器调用，更新Redis的可用状态。
func UpdateStatus(healthy bool) {
	statusMutex.Lock()
	defer statusMutex.Unlock()
	isRedisHealthy = healthy
}

// IsRedisHealthy 返回Redis当前是否可用。
// 任何希望使用缓存的模块都应该先检查这个标志。
func IsRedisHealthy() bool {
	statusMutex.RLock()
	defer statusMutex.RUnlock()
	return isRedisHealthy
}
