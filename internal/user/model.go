package user

import (
	"time"
)

// User 是游戏数据的根身份。
// 目前每次开始新游戏都会创建一个新用户，一个用户可以拥有多局游戏。
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`
}
