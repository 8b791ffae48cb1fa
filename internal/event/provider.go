package event

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/SlpAus/lifesim-backend/internal/character"
)

// ErrSchemaInvalid 表示事件生成器返回的数据不符合约定的结构
var ErrSchemaInvalid = errors.New("事件格式无效")

// 每个事件的选项数量范围
const (
	MinOptions = 2
	MaxOptions = 3
)

// Request 是交给事件生成器的输入：当前天数、当前属性和角色静态信息
type Request struct {
	Day     int
	Stats   character.Stats
	Profile character.Profile
}

// Provider 根据角色当前状态生成一个候选事件。
// 实现必须是无状态的，并且不能修改游戏存储。
type Provider interface {
	Generate(ctx context.Context, req Request) (Event, error)
}

// Bounds 定义了每个影响字段允许的最大绝对值，0表示不限制
type Bounds struct {
	Health        float64
	Happiness     float64
	Stress        float64
	Reputation    float64
	Education     float64
	Money         float64
	WeeklyIncome  float64
	WeeklyExpense float64
	FreeTime      float64
}

// DefaultBounds 心理类属性 ±20，财务类不限制
func DefaultBounds() Bounds {
	return Bounds{
		Health:     20,
		Happiness:  20,
		Stress:     20,
		Reputation: 20,
		Education:  20,
	}
}

type boundedField struct {
	name  string
	value float64
	limit float64
}

func (b Bounds) fields(i character.Impact) []boundedField {
	return []boundedField{
		{"health", float64(i.Health), b.Health},
		{"happiness", float64(i.Happiness), b.Happiness},
		{"stress", float64(i.Stress), b.Stress},
		{"reputation", float64(i.Reputation), b.Reputation},
		{"education", float64(i.Education), b.Education},
		{"money", i.Money, b.Money},
		{"weekly_income", i.WeeklyIncome, b.WeeklyIncome},
		{"weekly_expense", i.WeeklyExpense, b.WeeklyExpense},
		{"free_time", i.FreeTime, b.FreeTime},
	}
}

// Validate 检查事件结构：描述非空、2~3个选项、每个选项的影响都在范围内。
// 返回的错误都包装了 ErrSchemaInvalid。
func Validate(e Event, b Bounds) error {
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("%w: 事件描述为空", ErrSchemaInvalid)
	}
	if len(e.Options) < MinOptions || len(e.Options) > MaxOptions {
		return fmt.Errorf("%w: 选项数量为 %d，应在 %d~%d 之间", ErrSchemaInvalid, len(e.Options), MinOptions, MaxOptions)
	}
	for i, opt := range e.Options {
		if strings.TrimSpace(opt.Description) == "" {
			return fmt.Errorf("%w: 第 %d 个选项描述为空", ErrSchemaInvalid, i+1)
		}
		for _, f := range b.fields(opt.Impact) {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
				return fmt.Errorf("%w: 第 %d 个选项的 %s 不是有限数值", ErrSchemaInvalid, i+1, f.name)
			}
			if f.limit > 0 && math.Abs(f.value) > f.limit {
				return fmt.Errorf("%w: 第 %d 个选项的 %s=%v 超出范围 ±%v", ErrSchemaInvalid, i+1, f.name, f.value, f.limit)
			}
		}
	}
	return nil
}
