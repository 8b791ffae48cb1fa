package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Manager 管理所有后台服务的启动和停机
type Manager struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	services map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager 创建生命周期管理器
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		services: make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Go 以name注册一个后台服务并在新的goroutine中运行它。
// run 返回即视为服务已退出；同名服务不能重复注册。
func (m *Manager) Go(name string, run func(h *Handle)) error {
	m.mu.Lock()
	if _, exists := m.services[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("生命周期管理器: 服务 '%s' 已被注册", name)
	}
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		return fmt.Errorf("生命周期管理器: 已停机，无法注册服务 '%s'", name)
	}
	m.services[name] = struct{}{}
	m.wg.Add(1)
	m.mu.Unlock()

	fmt.Printf("生命周期管理器: 服务 [%s] 已注册。\n", name)
	h := &Handle{name: name, ctx: m.ctx}
	go func() {
		defer m.done(name)
		run(h)
	}()
	return nil
}

func (m *Manager) done(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.services[name]; !exists {
		return
	}
	delete(m.services, name)
	m.wg.Done()
}

// Shutdown 广播停机信号
func (m *Manager) Shutdown() {
	fmt.Println("生命周期管理器: 广播停机信号...")
	m.cancel()
}

// WaitWithTimeout 等待所有服务退出，超时后返回仍未退出的服务名
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	doneChan := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(doneChan)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-doneChan:
		return nil
	case <-timer.C:
		m.mu.Lock()
		defer m.mu.Unlock()
		remaining := make([]string, 0, len(m.services))
		for name := range m.services {
			remaining = append(remaining, name)
		}
		sort.Strings(remaining)
		return remaining
	}
}
