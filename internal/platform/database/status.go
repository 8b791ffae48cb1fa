package database

import (
	"fmt"
	"sync"
)

// statusManager 负责线程安全地管理Redis缓存的健康状态。
// 健康时缓存可读可写；重建期间只可写；断线时两者都不可用。
type statusManager struct {
	mu              sync.RWMutex
	isRedisHealthy  bool
	isRedisWritable bool
	lastKnownRunID  string
}

var globalStatus = &statusManager{
	isRedisHealthy:  true,
	isRedisWritable: true,
}

// IsRedisHealthy 返回缓存当前是否可用。未启用Redis时始终为false。
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return RDB != nil && globalStatus.isRedisHealthy
}

// IsRedisWritable 返回缓存当前是否允许写入。重建期间不可读但仍可写。
func IsRedisWritable() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return RDB != nil && globalStatus.isRedisWritable
}

// SetInitialRunID 在启动时设置初始的Redis run_id。
func SetInitialRunID(runID string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.lastKnownRunID = runID
}

// UpdateStatus 线程安全地更新健康状态，只在状态变化时打印日志。
func UpdateStatus(isHealthy, isWritable bool, newRunID string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	globalStatus.isRedisWritable = isWritable || isHealthy

	if globalStatus.isRedisHealthy != isHealthy {
		globalStatus.isRedisHealthy = isHealthy
		if isHealthy {
			fmt.Println("健康检查: Redis缓存状态已更新为 [可用]")
		} else {
			fmt.Println("健康检查警告: Redis缓存状态已更新为 [不可用]，读取将回退到数据库")
		}
	}

	if isHealthy {
		globalStatus.lastKnownRunID = newRunID
	}
}

// GetLastKnownRunID 返回最近一次确认健康时的run_id。
func GetLastKnownRunID() string {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.lastKnownRunID
}
