package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SlpAus/lifesim-backend/api"
	"github.com/SlpAus/lifesim-backend/internal/event"
	"github.com/SlpAus/lifesim-backend/internal/game"
	"github.com/SlpAus/lifesim-backend/internal/platform/config"
	"github.com/SlpAus/lifesim-backend/internal/platform/database"
	"github.com/SlpAus/lifesim-backend/internal/platform/health"
	"github.com/SlpAus/lifesim-backend/internal/platform/shutdown"
	"github.com/SlpAus/lifesim-backend/internal/platform/startup"
	"github.com/SlpAus/lifesim-backend/pkg/lifecycle"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	manager := lifecycle.NewManager()
	coordinator := shutdown.NewCoordinator(manager)

	// 1. 数据库是唯一可信来源，连接失败直接退出
	database.InitDB(cfg.Database)
	coordinator.OnClose("数据库", func() error { return database.Close(database.DB) })
	if err := startup.InitializeApplication(database.DB); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 2. Redis只是缓存，不可用时服务照常运行
	database.InitRedis(cfg.Redis)
	coordinator.OnClose("Redis", database.CloseRedis)

	// 3. 事件生成器
	provider, err := newProvider(context.Background(), cfg.Event, coordinator)
	if err != nil {
		panic(fmt.Sprintf("事件生成器初始化失败: %v", err))
	}
	bounds := event.Bounds(cfg.Event.Bounds)
	events := event.NewGuarded(provider, cfg.Event.Timeout, bounds)

	// 4. 游戏服务
	var cache *game.StateCache
	if database.RDB != nil {
		cache = game.NewStateCache(database.RDB, cfg.Redis.StateTTL, database.IsRedisHealthy, database.IsRedisWritable)
	}
	svc := game.NewService(game.NewStore(database.DB), cache, events)

	// 5. 缓存健康检查：启动时先重建一次，之后在后台持续检查
	var checker *health.Checker
	if database.RDB != nil {
		rebuild := func(ctx context.Context) error { return startup.RebuildCache(ctx, svc) }
		checker = health.NewChecker(context.Background(), database.RDB, rebuild)
		if checker.State() == health.StateHealthy {
			if err := rebuild(context.Background()); err != nil {
				fmt.Printf("警告: 启动时缓存预热失败: %v\n", err)
			}
		}
		fmt.Println("正在执行启动后健康检查...")
		checker.PerformCheck(context.Background())
		if err := manager.Go("redis-health", checker.Run); err != nil {
			panic(err)
		}
	}

	router := api.NewRouter(cfg.Server, game.NewHandler(svc), health.Handler(database.DB, checker))
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("Failed to start server: " + err.Error())
		}
	}()

	coordinator.ListenForSignalsAndShutdown(server)
}

// newProvider 根据配置创建事件生成器
func newProvider(ctx context.Context, cfg config.EventConfig, coordinator *shutdown.Coordinator) (event.Provider, error) {
	bounds := event.Bounds(cfg.Bounds)
	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := event.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, bounds)
		if err != nil {
			return nil, err
		}
		coordinator.OnClose("Gemini客户端", g.Close)
		return g, nil
	default:
		s, err := event.LoadScripted(cfg.CatalogPath, bounds)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
