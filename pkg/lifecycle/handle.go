package lifecycle

import (
	"context"
	"time"
)

// Handle 是交给单个后台服务的停机句柄。
// 服务通过它感知停机信号；服务退出时由 Manager.Go 负责注销。
type Handle struct {
	name string
	ctx  context.Context
}

// Name 返回服务名
func (h *Handle) Name() string {
	return h.name
}

// Ctx 返回随停机信号取消的上下文
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 在停机信号发出后关闭
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Sleep 等待指定时长；若期间收到停机信号则提前返回错误。
// 后台循环应使用它代替 time.Sleep。
func (h *Handle) Sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.ctx.Done():
		return h.ctx.Err()
	case <-timer.C:
		return nil
	}
}
