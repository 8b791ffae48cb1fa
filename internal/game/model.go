package game

import (
	"time"

	"github.com/SlpAus/lifesim-backend/internal/character"
	"github.com/SlpAus/lifesim-backend/internal/user"
)

// Game 定义了数据库中一局游戏的数据结构。
// 角色的静态属性在创建后不再修改。
type Game struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	// UserID 指向拥有这局游戏的用户
	UserID uint       `gorm:"not null;index"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE"`

	// --- 角色静态属性 ---
	Age           int    `gorm:"not null"`
	Gender        string `gorm:"not null"`
	CharacterName string `gorm:"not null"`
	Work          bool   `gorm:"not null"`

	// Days 是这局游戏的全部历史，删除游戏时级联删除
	Days []Day `gorm:"constraint:OnDelete:CASCADE"`
}

// Profile 返回角色的静态属性
func (g Game) Profile() character.Profile {
	return character.Profile{
		CharacterName: g.CharacterName,
		Gender:        g.Gender,
		Age:           g.Age,
		Work:          g.Work,
	}
}

// Day 是某一天结束时的属性快照。
// 同一局游戏的天数从1开始连续递增，(game_id, number_of_day) 上的唯一索引保证不会出现重复。
type Day struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	GameID      uint `gorm:"not null;uniqueIndex:idx_days_game_number,priority:1"`
	NumberOfDay int  `gorm:"not null;uniqueIndex:idx_days_game_number,priority:2"`

	character.Stats `gorm:"embedded"`
}
