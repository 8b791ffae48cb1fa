package event

import (
	"github.com/SlpAus/lifesim-backend/internal/character"
)

// Option 是事件中的一个可选项，选择它会产生对应的属性影响
type Option struct {
	Description string           `json:"description" yaml:"description"`
	Impact      character.Impact `json:"impact" yaml:"impact"`
}

// Event 是一天中出现的叙事事件。事件只在请求之间传递，不会被持久化。
type Event struct {
	EventID     string   `json:"event_id" yaml:"-"`
	Day         int      `json:"day" yaml:"-"`
	Description string   `json:"description" yaml:"description"`
	Options     []Option `json:"options" yaml:"options"`

	// Fallback 标记该事件是否为生成失败后替换的默认事件，只用于日志和测试
	Fallback bool `json:"-" yaml:"-"`
}

// DefaultEvent 返回固定的安全默认事件。
// 当事件生成器超时、出错或返回格式不合法时使用，影响值都很小。
func DefaultEvent() Event {
	return Event{
		Description: "A quiet day. Nothing unusual happens, and you get to decide how to spend it.",
		Options: []Option{
			{
				Description: "Rest at home and recharge",
				Impact:      character.Impact{Health: 2, Stress: -3, FreeTime: -2},
			},
			{
				Description: "Catch up on studying",
				Impact:      character.Impact{Education: 1, Stress: 2, FreeTime: -3},
			},
		},
	}
}
