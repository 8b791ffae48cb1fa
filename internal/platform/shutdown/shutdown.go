package shutdown

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/lifesim-backend/pkg/lifecycle"
)

const (
	httpTimeout       = 15 * time.Second
	backgroundTimeout = 10 * time.Second
)

type closer struct {
	name string
	fn   func() error
}

// Coordinator 负责编排应用程序的优雅停机：
// 先停止接收HTTP请求，再停止后台服务，最后按注册的逆序释放资源。
type Coordinator struct {
	manager *lifecycle.Manager
	closers []closer
}

// NewCoordinator 创建一个新的停机协调器
func NewCoordinator(manager *lifecycle.Manager) *Coordinator {
	return &Coordinator{manager: manager}
}

// OnClose 注册一个在停机最后阶段执行的资源释放函数
func (c *Coordinator) OnClose(name string, fn func() error) {
	c.closers = append(c.closers, closer{name: name, fn: fn})
}

// ListenForSignalsAndShutdown 阻塞直到收到停机信号，然后执行停机流程
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	fmt.Println("\n收到关闭信号，开始优雅停机...")
	c.Shutdown(server)
}

// Shutdown 执行停机流程。server为nil时跳过HTTP阶段。
func (c *Coordinator) Shutdown(server *http.Server) {
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			fmt.Printf("Gin服务器关闭错误: %v\n", err)
		} else {
			fmt.Println("Gin服务器已关闭。")
		}
	}

	c.manager.Shutdown()
	if remaining := c.manager.WaitWithTimeout(backgroundTimeout); len(remaining) > 0 {
		fmt.Printf("警告: 以下后台服务未能在 %v 内退出: %v\n", backgroundTimeout, remaining)
	} else {
		fmt.Println("所有后台服务已关闭。")
	}

	for i := len(c.closers) - 1; i >= 0; i-- {
		cl := c.closers[i]
		if err := cl.fn(); err != nil {
			fmt.Printf("关闭 %s 失败: %v\n", cl.name, err)
		} else {
			fmt.Printf("%s 已关闭。\n", cl.name)
		}
	}

	fmt.Println("优雅停机完成。")
}
