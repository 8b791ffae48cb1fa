package event

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed events.yaml
var defaultCatalog []byte

// Condition 限定了一个剧本事件在什么状态下才会出现，未设置的字段不做限制
type Condition struct {
	MinDay    int      `yaml:"min_day"`
	MinStress *int     `yaml:"min_stress"`
	MaxHealth *int     `yaml:"max_health"`
	MaxMoney  *float64 `yaml:"max_money"`
	Work      *bool    `yaml:"work"`
}

func (c Condition) matches(req Request) bool {
	if req.Day < c.MinDay {
		return false
	}
	if c.MinStress != nil && req.Stats.Stress < *c.MinStress {
		return false
	}
	if c.MaxHealth != nil && req.Stats.Health > *c.MaxHealth {
		return false
	}
	if c.MaxMoney != nil && req.Stats.Money > *c.MaxMoney {
		return false
	}
	if c.Work != nil && req.Profile.Work != *c.Work {
		return false
	}
	return true
}

type catalogEntry struct {
	Description string    `yaml:"description"`
	When        Condition `yaml:"when"`
	Options     []Option  `yaml:"options"`
}

type catalogFile struct {
	Events []catalogEntry `yaml:"events"`
}

// Scripted 是基于YAML剧本的事件生成器，不依赖外部服务，适合离线运行和测试。
// 对于相同的天数和状态，它总是返回相同的事件。
type Scripted struct {
	entries []catalogEntry
}

// LoadScripted 从文件加载剧本；path为空时使用内置剧本
func LoadScripted(path string, bounds Bounds) (*Scripted, error) {
	data := defaultCatalog
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("无法读取事件剧本 %s: %w", path, err)
		}
		data = fileData
	}
	return NewScripted(data, bounds)
}

// NewScripted 解析剧本内容，并用 bounds 校验每一个事件
func NewScripted(data []byte, bounds Bounds) (*Scripted, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file catalogFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("无法解析事件剧本: %w", err)
	}
	if len(file.Events) == 0 {
		return nil, errors.New("事件剧本为空")
	}

	for i, entry := range file.Events {
		ev := Event{Description: entry.Description, Options: entry.Options}
		if err := Validate(ev, bounds); err != nil {
			return nil, fmt.Errorf("事件剧本第 %d 条无效: %w", i+1, err)
		}
	}

	fmt.Printf("事件剧本加载成功，共 %d 个事件。\n", len(file.Events))
	return &Scripted{entries: file.Events}, nil
}

// Generate 在符合条件的事件中按天数轮换选择一个
func (s *Scripted) Generate(ctx context.Context, req Request) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}

	eligible := make([]catalogEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.When.matches(req) {
			eligible = append(eligible, entry)
		}
	}
	if len(eligible) == 0 {
		return Event{}, fmt.Errorf("第 %d 天没有符合条件的剧本事件", req.Day)
	}

	day := max(req.Day, 1)
	chosen := eligible[(day-1)%len(eligible)]

	options := make([]Option, len(chosen.Options))
	copy(options, chosen.Options)
	return Event{
		Description: chosen.Description,
		Options:     options,
	}, nil
}

// Len 返回剧本中的事件数量
func (s *Scripted) Len() int {
	return len(s.entries)
}

var _ Provider = (*Scripted)(nil)
