package user

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrateDB 负责自动迁移user表结构，必须先于game表迁移
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移user表: %w", err)
	}
	fmt.Println("User数据库表迁移成功。")
	return nil
}
