package user

import (
	"fmt"

	"gorm.io/gorm"
)

// Create 在给定的数据库句柄(通常是一个事务)中创建一个新用户。
// 调用方负责事务的提交或回滚。
func Create(tx *gorm.DB) (User, error) {
	newUser := User{}
	if err := tx.Create(&newUser).Error; err != nil {
		return User{}, fmt.Errorf("无法创建新用户: %w", err)
	}
	return newUser, nil
}
