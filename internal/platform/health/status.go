package health

import (
	"fmt"
	"sync"
)

// State 定义了缓存层健康状态的枚举类型
type State int

const (
	StateHealthy State = iota
	StateDegraded
	StateRebuilding
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateRebuilding:
		return "rebuilding"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// statusManager 是缓存健康状态机，线程安全。
// run_id 变化说明Redis重启过，缓存内容不可信，需要重建后才能恢复为健康。
type statusManager struct {
	mu             sync.RWMutex
	currentState   State
	lastKnownRunID string
}

func newStatusManager(initialRunID string) *statusManager {
	sm := &statusManager{currentState: StateHealthy, lastKnownRunID: initialRunID}
	if initialRunID == "" {
		sm.currentState = StateDegraded
	}
	return sm
}

// State 返回当前状态
func (sm *statusManager) State() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// RunID 返回最近一次连接成功时看到的run_id
func (sm *statusManager) RunID() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastKnownRunID
}

// Assess 根据一次检查结果推进状态，返回是否需要重建缓存
func (sm *statusManager) Assess(connected bool, runID string) (needsRebuild bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	restarted := connected && sm.lastKnownRunID != "" && sm.lastKnownRunID != runID

	switch sm.currentState {
	case StateHealthy:
		if !connected {
			sm.currentState = StateDegraded
			fmt.Println("健康检查: Redis连接丢失，缓存状态 -> [降级]")
		} else if restarted {
			sm.currentState = StateRebuilding
			needsRebuild = true
			fmt.Printf("健康检查: 检测到Redis重启 (run_id: %s -> %s)，缓存状态 -> [重建中]\n", sm.lastKnownRunID, runID)
		}
	case StateDegraded:
		if connected {
			// 降级期间无法确认缓存是否还与数据库一致，恢复时总是重建
			sm.currentState = StateRebuilding
			needsRebuild = true
			fmt.Println("健康检查: Redis连接已恢复，缓存状态 -> [重建中]")
		}
	case StateRebuilding:
		if !connected {
			sm.currentState = StateDegraded
			fmt.Println("健康检查: 缓存重建期间Redis连接再次丢失，缓存状态 -> [降级]")
		} else {
			needsRebuild = true
			fmt.Println("健康检查: 缓存仍处于[重建中]，将再次尝试重建...")
		}
	}

	if connected {
		sm.lastKnownRunID = runID
	}
	return needsRebuild
}

// MarkRebuildComplete 记录一次重建的结果。
// 重建期间run_id又发生变化时，重建无效，保持[重建中]等待下一轮。
func (sm *statusManager) MarkRebuildComplete(success bool, runIDAfterRebuild string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.currentState != StateRebuilding {
		return
	}

	if success && sm.lastKnownRunID != runIDAfterRebuild {
		fmt.Printf("健康检查错误: 缓存重建期间Redis再次重启 (run_id: %s -> %s)，重建无效。\n", sm.lastKnownRunID, runIDAfterRebuild)
		sm.lastKnownRunID = runIDAfterRebuild
		return
	}

	if success {
		sm.currentState = StateHealthy
		fmt.Println("健康检查: 缓存重建成功，缓存状态 -> [健康]")
	} else {
		fmt.Println("健康检查错误: 缓存重建失败，保持[重建中]以待重试")
	}
}
