package event

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/SlpAus/lifesim-backend/internal/character"
)

//go:embed prompts/event.txt
var eventPrompt string

var eventTemplate = template.Must(template.New("event").Parse(eventPrompt))

type promptLimit struct {
	Name  string
	Limit float64
}

// BuildPrompt 根据当前天数、属性和角色信息渲染事件生成提示词
func BuildPrompt(req Request, bounds Bounds) (string, error) {
	statsJSON, err := json.Marshal(req.Stats)
	if err != nil {
		return "", fmt.Errorf("无法序列化当前属性: %w", err)
	}

	var limits []promptLimit
	for _, f := range bounds.fields(character.Impact{}) {
		if f.limit > 0 {
			limits = append(limits, promptLimit{Name: f.name, Limit: f.limit})
		}
	}

	data := struct {
		Day        int
		Profile    character.Profile
		StatsJSON  string
		Limits     []promptLimit
		MinOptions int
		MaxOptions int
	}{
		Day:        req.Day,
		Profile:    req.Profile,
		StatsJSON:  string(statsJSON),
		Limits:     limits,
		MinOptions: MinOptions,
		MaxOptions: MaxOptions,
	}

	var buf bytes.Buffer
	if err := eventTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("无法渲染提示词: %w", err)
	}
	return buf.String(), nil
}

// wireEvent 是模型输出的JSON结构，字段集合是封闭的
type wireEvent struct {
	Description string   `json:"description"`
	Options     []Option `json:"options"`
}

// DecodeEvent 严格解析模型返回的JSON：多余字段、类型不符都视为格式无效。
// 旧版的6字段影响结构(energy/social/career)也会因此被拒绝。
func DecodeEvent(raw string) (Event, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	decoder := json.NewDecoder(strings.NewReader(clean))
	decoder.DisallowUnknownFields()

	var w wireEvent
	if err := decoder.Decode(&w); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if decoder.More() {
		return Event{}, fmt.Errorf("%w: JSON之后存在多余内容", ErrSchemaInvalid)
	}
	return Event{Description: w.Description, Options: w.Options}, nil
}
