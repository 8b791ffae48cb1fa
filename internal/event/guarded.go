package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Guarded 包装任意事件生成器，为每次调用加上超时、结构校验和默认事件兜底。
// 它的 Generate 永远不会返回错误：失败只会被记录日志，玩家拿到的是默认事件。
type Guarded struct {
	inner   Provider
	timeout time.Duration
	bounds  Bounds
}

// NewGuarded 创建一个带超时和兜底的事件生成器
func NewGuarded(inner Provider, timeout time.Duration, bounds Bounds) *Guarded {
	return &Guarded{
		inner:   inner,
		timeout: timeout,
		bounds:  bounds,
	}
}

type generateResult struct {
	event Event
	err   error
}

// Generate 调用内部生成器，并保证在 timeout 内返回
func (g *Guarded) Generate(ctx context.Context, req Request) (Event, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// 在单独的goroutine中调用，这样即使内部实现忽略ctx也不会阻塞请求
	resultChan := make(chan generateResult, 1)
	go func() {
		ev, err := g.inner.Generate(ctx, req)
		resultChan <- generateResult{event: ev, err: err}
	}()

	var ev Event
	var err error
	select {
	case res := <-resultChan:
		ev, err = res.event, res.err
	case <-ctx.Done():
		err = fmt.Errorf("事件生成超时: %w", ctx.Err())
	}

	if err == nil {
		err = Validate(ev, g.bounds)
	}
	if err != nil {
		fmt.Printf("警告: 第 %d 天的事件生成失败，已使用默认事件: %v\n", req.Day, err)
		ev = DefaultEvent()
		ev.Fallback = true
	}

	ev.EventID = newEventID()
	ev.Day = req.Day
	return ev, nil
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
