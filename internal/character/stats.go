package character

import "math"

// 属性取值范围
const (
	MinPercent    = 0
	MaxPercent    = 100
	MinReputation = -100
	MaxReputation = 100
	MinEducation  = 0
)

// Stats 是角色在某一天的9项属性快照。
// health/happiness/stress 在 [0,100]，reputation 在 [-100,100]，education 不小于0，
// 其余财务与时间字段不设上下限，money 为负表示负债。
type Stats struct {
	Health        int     `json:"health"`
	Happiness     int     `json:"happiness"`
	Stress        int     `json:"stress"`
	Reputation    int     `json:"reputation"`
	Education     int     `json:"education"`
	Money         float64 `json:"money"`
	WeeklyIncome  float64 `json:"weekly_income"`
	WeeklyExpense float64 `json:"weekly_expense"`
	FreeTime      float64 `json:"free_time"`
}

// DefaultStats 返回新游戏第1天的初始属性
func DefaultStats() Stats {
	return Stats{
		Health:        100,
		Happiness:     50,
		Stress:        10,
		Reputation:    0,
		Education:     0,
		Money:         50.0,
		WeeklyIncome:  0,
		WeeklyExpense: 0,
		FreeTime:      40,
	}
}

// Finite 报告所有浮点字段是否都是有限数值。
// 非有限的属性无法写成JSON，也不会被持久化。
func (s Stats) Finite() bool {
	for _, v := range []float64{s.Money, s.WeeklyIncome, s.WeeklyExpense, s.FreeTime} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Impact 是选择某个事件选项后对属性的带符号增量。
// 字段集合与 Stats 完全一致，未提供的字段视为0。
type Impact struct {
	Health        int     `json:"health" yaml:"health"`
	Happiness     int     `json:"happiness" yaml:"happiness"`
	Stress        int     `json:"stress" yaml:"stress"`
	Reputation    int     `json:"reputation" yaml:"reputation"`
	Education     int     `json:"education" yaml:"education"`
	Money         float64 `json:"money" yaml:"money"`
	WeeklyIncome  float64 `json:"weekly_income" yaml:"weekly_income"`
	WeeklyExpense float64 `json:"weekly_expense" yaml:"weekly_expense"`
	FreeTime      float64 `json:"free_time" yaml:"free_time"`
}

// Profile 是角色创建后不再改变的静态属性
type Profile struct {
	CharacterName string `json:"character_name"`
	Gender        string `json:"gender"`
	Age           int    `json:"age"`
	Work          bool   `json:"work"`
}
