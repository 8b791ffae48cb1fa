package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// StateKeyPrefix 是游戏状态缓存的Redis键前缀，完整键为 game:state:<id>
const StateKeyPrefix = "game:state:"

const scanBatchSize = 500

// StateCache 是组装好的游戏状态在Redis中的只读视图。
// 它随时可以被清空重建，天数编号等写入决策从不读取它。
// 写入由 Store 在持有游戏锁时完成，因此同一局游戏的缓存写入与数据库提交顺序一致。
type StateCache struct {
	rdb      *redis.Client
	ttl      time.Duration
	readable func() bool
	writable func() bool
	group    singleflight.Group
}

// NewStateCache 创建缓存。readable返回false时读取直接未命中，writable返回false时写入被跳过；
// 传nil表示始终可以。重建期间缓存不可读，但仍然可写。
func NewStateCache(rdb *redis.Client, ttl time.Duration, readable, writable func() bool) *StateCache {
	always := func() bool { return true }
	if readable == nil {
		readable = always
	}
	if writable == nil {
		writable = always
	}
	return &StateCache{
		rdb:      rdb,
		ttl:      ttl,
		readable: readable,
		writable: writable,
	}
}

func stateKey(gameID uint) string {
	return StateKeyPrefix + strconv.FormatUint(uint64(gameID), 10)
}

func (c *StateCache) canRead() bool {
	return c != nil && c.rdb != nil && c.readable()
}

func (c *StateCache) canWrite() bool {
	return c != nil && c.rdb != nil && c.writable()
}

// Get 读取缓存的游戏状态，未命中或缓存不可用时返回false
func (c *StateCache) Get(ctx context.Context, gameID uint) (GameState, bool) {
	if !c.canRead() {
		return GameState{}, false
	}
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if err == redis.Nil {
		return GameState{}, false
	}
	if err != nil {
		fmt.Printf("警告: 读取游戏 %d 的状态缓存失败: %v\n", gameID, err)
		return GameState{}, false
	}

	var state GameState
	if err := json.Unmarshal(data, &state); err != nil {
		fmt.Printf("警告: 游戏 %d 的状态缓存无法解析，已忽略: %v\n", gameID, err)
		return GameState{}, false
	}
	return state, true
}

// Set 写入游戏状态。缓存写入失败只记录日志，不影响请求结果。
func (c *StateCache) Set(ctx context.Context, gameID uint, state GameState) {
	if !c.canWrite() {
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		fmt.Printf("警告: 无法序列化游戏 %d 的状态: %v\n", gameID, err)
		return
	}
	if err := c.rdb.Set(ctx, stateKey(gameID), data, c.ttl).Err(); err != nil {
		fmt.Printf("警告: 写入游戏 %d 的状态缓存失败: %v\n", gameID, err)
	}
}

// Delete 删除游戏的状态缓存
func (c *StateCache) Delete(ctx context.Context, gameID uint) {
	if !c.canWrite() {
		return
	}
	if err := c.rdb.Del(ctx, stateKey(gameID)).Err(); err != nil {
		fmt.Printf("警告: 删除游戏 %d 的状态缓存失败: %v\n", gameID, err)
	}
}

// Load 优先读取缓存；未命中时调用load从数据库组装状态，load负责在游戏锁内回填。
// 同一局游戏的并发未命中只会触发一次load。
func (c *StateCache) Load(ctx context.Context, gameID uint, load func() (GameState, error)) (GameState, error) {
	if state, ok := c.Get(ctx, gameID); ok {
		return state, nil
	}

	v, err, _ := c.group.Do(stateKey(gameID), func() (interface{}, error) {
		return load()
	})
	if err != nil {
		return GameState{}, err
	}
	return v.(GameState), nil
}

// Flush 清空所有游戏状态缓存。
// 它不检查健康状态：重建期间缓存正被标记为不可用。
func (c *StateCache) Flush(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	var cursor uint64
	for {
		keys, nextCursor, err := c.rdb.Scan(ctx, cursor, StateKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("扫描游戏状态缓存失败: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("删除游戏状态缓存失败: %w", err)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

// fill 用Pipeline批量写入状态，供预热使用，调用方必须持有这些游戏的锁
func (c *StateCache) fill(ctx context.Context, states []GameState) error {
	if c == nil || c.rdb == nil || len(states) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for _, state := range states {
		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("无法序列化游戏 %s 的状态: %w", state.GameID, err)
		}
		pipe.Set(ctx, StateKeyPrefix+state.GameID, data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("批量写入游戏状态缓存失败: %w", err)
	}
	return nil
}
