package health

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/SlpAus/lifesim-backend/internal/platform/database"
	"github.com/SlpAus/lifesim-backend/pkg/lifecycle"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// Checker 定期检查Redis，并在检测到重启或断线恢复后重建游戏状态缓存
type Checker struct {
	status   *statusManager
	runID    func(ctx context.Context) (string, error)
	rebuild  func(ctx context.Context) error
	interval time.Duration
}

// NewChecker 创建一个检查器，并立即读取一次初始的run_id。
// Redis此时不可用不会阻止启动，检查器会从[降级]状态开始。
func NewChecker(ctx context.Context, rdb *redis.Client, rebuild func(ctx context.Context) error) *Checker {
	return newChecker(ctx, func(ctx context.Context) (string, error) {
		return fetchRunID(ctx, rdb)
	}, rebuild)
}

func newChecker(ctx context.Context, runID func(ctx context.Context) (string, error), rebuild func(ctx context.Context) error) *Checker {
	fmt.Println("正在获取初始Redis Run ID...")
	initial, err := runID(ctx)
	if err != nil {
		fmt.Printf("警告: 无法获取初始Redis Run ID，缓存暂不可用: %v\n", err)
		initial = ""
	} else {
		fmt.Printf("获取初始Redis Run ID成功: %s\n", initial)
	}
	database.SetInitialRunID(initial)

	c := &Checker{
		status:   newStatusManager(initial),
		runID:    runID,
		rebuild:  rebuild,
		interval: checkInterval,
	}
	c.publish()
	return c
}

// fetchRunID 从Redis服务器信息中提取run_id
func fetchRunID(ctx context.Context, rdb *redis.Client) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	info, err := rdb.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	matches := runIDPattern.FindStringSubmatch(info)
	if len(matches) < 2 {
		return "", fmt.Errorf("无法在Redis INFO中找到run_id")
	}
	return matches[1], nil
}

// State 返回缓存当前的健康状态
func (c *Checker) State() State {
	if c == nil {
		return StateDisabled
	}
	return c.status.State()
}

// PerformCheck 执行一次检查，必要时重建缓存
func (c *Checker) PerformCheck(ctx context.Context) {
	runID, err := c.runID(ctx)
	connected := err == nil

	if c.status.Assess(connected, runID) {
		// 重建期间缓存被标记为不可用，读取直接走数据库
		c.publish()

		fmt.Println("健康检查: 正在重建游戏状态缓存...")
		rebuildErr := c.rebuild(ctx)
		if rebuildErr != nil {
			fmt.Printf("健康检查错误: 缓存重建失败: %v\n", rebuildErr)
		}

		after, err := c.runID(ctx)
		if err != nil {
			fmt.Println("健康检查错误: 缓存重建后无法连接到Redis，重建无效。")
			c.status.Assess(false, "")
		} else {
			c.status.MarkRebuildComplete(rebuildErr == nil, after)
		}
	}
	c.publish()
}

// publish 把状态同步给数据访问层：只有[健康]时才允许读取缓存，[降级]时也不再写入
func (c *Checker) publish() {
	state := c.status.State()
	database.UpdateStatus(state == StateHealthy, state != StateDegraded, c.status.RunID())
}

// Run 在后台循环执行检查，直到生命周期句柄被取消
func (c *Checker) Run(h *lifecycle.Handle) {
	fmt.Println("Redis健康检查器已启动。")
	for {
		if err := h.Sleep(c.interval); err != nil {
			fmt.Println("Redis健康检查器已停止。")
			return
		}
		c.PerformCheck(h.Ctx())
	}
}

// Handler 返回 /health 接口：数据库不可用时返回503，缓存状态只作展示
func Handler(db *gorm.DB, checker *Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		code := http.StatusOK
		if err := database.Ping(db); err != nil {
			dbStatus = "unavailable"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"database":     dbStatus,
			"redis":        checker.State().String(),
			"redis_run_id": database.GetLastKnownRunID(),
		})
	}
}
