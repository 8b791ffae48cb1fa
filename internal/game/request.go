package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/SlpAus/lifesim-backend/internal/character"
)

// StartGameRequest 是创建新游戏的请求体
type StartGameRequest struct {
	Age           *int   `json:"age" binding:"required,gte=0,lte=150"`
	Gender        string `json:"gender" binding:"required,max=32"`
	CharacterName string `json:"character_name" binding:"required,max=64"`
	Work          *bool  `json:"work" binding:"required"`
}

// Profile 把请求转换为角色静态属性，调用前请求必须已经通过校验
func (r StartGameRequest) Profile() character.Profile {
	return character.Profile{
		CharacterName: r.CharacterName,
		Gender:        r.Gender,
		Age:           *r.Age,
		Work:          *r.Work,
	}
}

// ChoiceRequest 是提交选择的请求体。
// Day 可选，提供时表示客户端认为的当前天数，与服务器不一致会被拒绝。
type ChoiceRequest struct {
	Impact *character.Impact `json:"impact"`
	Day    *int              `json:"day"`
}

const maxChoiceBodyBytes = 16 << 10

// decodeChoice 严格解析选择请求：未知字段、类型错误、缺少impact或多余内容都会被拒绝。
// impact 内缺省的字段视为0。
func decodeChoice(body io.Reader) (ChoiceRequest, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxChoiceBodyBytes+1))
	if err != nil {
		return ChoiceRequest{}, fmt.Errorf("%w: 无法读取请求体: %v", ErrValidation, err)
	}
	if len(data) > maxChoiceBodyBytes {
		return ChoiceRequest{}, fmt.Errorf("%w: 请求体过大", ErrValidation)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var req ChoiceRequest
	if err := decoder.Decode(&req); err != nil {
		return ChoiceRequest{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return ChoiceRequest{}, fmt.Errorf("%w: JSON之后存在多余内容", ErrValidation)
	}
	if req.Impact == nil {
		return ChoiceRequest{}, fmt.Errorf("%w: 缺少impact字段", ErrValidation)
	}
	if req.Day != nil && *req.Day < 1 {
		return ChoiceRequest{}, fmt.Errorf("%w: day必须大于等于1", ErrValidation)
	}
	return req, nil
}
