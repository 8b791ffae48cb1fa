package character

import "math"

// Apply 把一次选择的影响应用到当前属性上，返回新的属性。
// 这是一个纯函数：不做I/O，不修改入参。
//
// 只有 health/happiness/stress/reputation 会被夹紧，education 只有下限；
// 影响值即使超出事件生成器声明的范围也会原样应用。整数相加在溢出时饱和而不是回绕。
func Apply(s Stats, impact Impact) Stats {
	return Stats{
		Health:        clamp(addSaturating(s.Health, impact.Health), MinPercent, MaxPercent),
		Happiness:     clamp(addSaturating(s.Happiness, impact.Happiness), MinPercent, MaxPercent),
		Stress:        clamp(addSaturating(s.Stress, impact.Stress), MinPercent, MaxPercent),
		Reputation:    clamp(addSaturating(s.Reputation, impact.Reputation), MinReputation, MaxReputation),
		Education:     max(MinEducation, addSaturating(s.Education, impact.Education)),
		Money:         s.Money + impact.Money,
		WeeklyIncome:  s.WeeklyIncome + impact.WeeklyIncome,
		WeeklyExpense: s.WeeklyExpense + impact.WeeklyExpense,
		FreeTime:      s.FreeTime + impact.FreeTime,
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func addSaturating(a, b int) int {
	sum := a + b
	switch {
	case b > 0 && sum < a:
		return math.MaxInt
	case b < 0 && sum > a:
		return math.MinInt
	}
	return sum
}
