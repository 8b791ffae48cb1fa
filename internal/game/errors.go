package game

import "errors"

var (
	// ErrGameNotFound 表示请求的游戏不存在
	ErrGameNotFound = errors.New("找不到该游戏")
	// ErrValidation 表示请求体或参数不合法
	ErrValidation = errors.New("请求参数无效")
	// ErrDayConflict 表示请求期望的天数与当前天数不一致，或同一天被并发追加
	ErrDayConflict = errors.New("天数冲突")
	// ErrStorageCorruption 表示游戏存在但没有任何一天的记录。
	// 这违反了创建时的原子性保证，只记录日志，不做修补。
	ErrStorageCorruption = errors.New("游戏数据损坏")
)
