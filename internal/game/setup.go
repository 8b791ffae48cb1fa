package game

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrateDB 迁移games和days表。users表必须已经迁移。
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&Game{}, &Day{}); err != nil {
		return fmt.Errorf("无法迁移game表: %w", err)
	}
	fmt.Println("Game数据库表迁移成功。")
	return nil
}
