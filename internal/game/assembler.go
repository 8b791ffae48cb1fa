package game

import (
	"strconv"

	"github.com/SlpAus/lifesim-backend/internal/character"
)

// StaticProperties 是返回给客户端的角色静态信息
type StaticProperties struct {
	CharacterName   string  `json:"character_name"`
	Gender          string  `json:"gender"`
	Age             int     `json:"age"`
	Work            bool    `json:"work"`
	CharacterAvatar *string `json:"character_avatar"`
}

// FinanceEntry 是收入或支出明细中的一项。财务系统尚未接入，目前列表总是为空。
type FinanceEntry struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Finances 是财务信息的占位结构
type Finances struct {
	Incomes        []FinanceEntry `json:"incomes"`
	Expenses       []FinanceEntry `json:"expenses"`
	SavingsAccount *float64       `json:"savings_account"`
}

// GameState 是客户端看到的完整游戏状态
type GameState struct {
	UserID           uint             `json:"user_id"`
	GameID           string           `json:"game_id"`
	Day              int              `json:"day"`
	StaticProperties StaticProperties `json:"static_properties"`
	Stats            character.Stats  `json:"stats"`
	Finances         Finances         `json:"finances"`
}

// Assemble 由游戏和它的最新一天组合出游戏状态。
// 这是一个纯函数：对相同的输入，序列化结果完全一致。
func Assemble(game Game, day Day) GameState {
	return GameState{
		UserID: game.UserID,
		GameID: strconv.FormatUint(uint64(game.ID), 10),
		Day:    day.NumberOfDay,
		StaticProperties: StaticProperties{
			CharacterName: game.CharacterName,
			Gender:        game.Gender,
			Age:           game.Age,
			Work:          game.Work,
		},
		Stats: day.Stats,
		Finances: Finances{
			Incomes:  []FinanceEntry{},
			Expenses: []FinanceEntry{},
		},
	}
}
