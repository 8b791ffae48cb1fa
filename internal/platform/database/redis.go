package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/lifesim-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB 是全局的Redis客户端实例；未启用缓存时为nil
var RDB *redis.Client

// InitRedis 初始化与Redis的连接。
// Redis只承担缓存职责，连接失败不会阻止服务启动，只会把缓存标记为不可用。
func InitRedis(cfg config.RedisConfig) {
	if !cfg.Enabled {
		fmt.Println("Redis缓存未启用，所有读取将直接访问数据库。")
		UpdateStatus(false, false, "")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		fmt.Printf("警告: 无法连接到Redis (%s)，缓存暂不可用: %v\n", cfg.Address, err)
		UpdateStatus(false, false, "")
		return
	}

	fmt.Println("Redis 连接成功！")
}

// CloseRedis 关闭Redis客户端
func CloseRedis() error {
	if RDB == nil {
		return nil
	}
	return RDB.Close()
}
