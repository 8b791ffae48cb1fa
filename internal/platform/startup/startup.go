package startup

import (
	"context"
	"fmt"

	"github.com/SlpAus/lifesim-backend/internal/game"
	"github.com/SlpAus/lifesim-backend/internal/user"
	"gorm.io/gorm"
)

// InitializeApplication 迁移所有数据库表。users必须先于games迁移。
func InitializeApplication(db *gorm.DB) error {
	fmt.Println("开始应用初始化...")

	if err := user.MigrateDB(db); err != nil {
		return err
	}
	if err := game.MigrateDB(db); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 清空并重新预热游戏状态缓存，供启动和Redis恢复时调用
func RebuildCache(ctx context.Context, svc *game.Service) error {
	fmt.Println("开始缓存热重建...")
	if err := svc.WarmupCache(ctx); err != nil {
		return fmt.Errorf("游戏状态缓存重建失败: %w", err)
	}
	fmt.Println("缓存热重建完成。")
	return nil
}
