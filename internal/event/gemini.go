package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 使用Google Gemini模型生成事件
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	bounds Bounds
}

// NewGemini 创建Gemini客户端，并要求模型按事件的JSON结构输出
func NewGemini(ctx context.Context, apiKey, modelName string, bounds Bounds) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("无法创建Gemini客户端: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = eventSchema()

	fmt.Printf("Gemini事件生成器已就绪 (model=%s)\n", modelName)
	return &Gemini{
		client: client,
		model:  model,
		bounds: bounds,
	}, nil
}

// Close 关闭底层客户端
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Generate 渲染提示词、调用模型并严格解析返回的JSON
func (g *Gemini) Generate(ctx context.Context, req Request) (Event, error) {
	prompt, err := BuildPrompt(req, g.bounds)
	if err != nil {
		return Event{}, err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Event{}, fmt.Errorf("Gemini调用失败: %w", err)
	}

	text, err := firstText(resp)
	if err != nil {
		return Event{}, err
	}
	return DecodeEvent(text)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("Gemini没有返回任何候选结果")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", errors.New("Gemini返回的候选结果为空")
	}
	text, ok := content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: Gemini返回了非文本内容", ErrSchemaInvalid)
	}
	return string(text), nil
}

// eventSchema 描述了模型输出的JSON结构，与 DecodeEvent 的封闭字段集合保持一致
func eventSchema() *genai.Schema {
	integer := &genai.Schema{Type: genai.TypeInteger}
	number := &genai.Schema{Type: genai.TypeNumber}
	text := &genai.Schema{Type: genai.TypeString}

	impactFields := []string{
		"health", "happiness", "stress", "reputation", "education",
		"money", "weekly_income", "weekly_expense", "free_time",
	}
	impact := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"health":         integer,
			"happiness":      integer,
			"stress":         integer,
			"reputation":     integer,
			"education":      integer,
			"money":          number,
			"weekly_income":  number,
			"weekly_expense": number,
			"free_time":      number,
		},
		Required: impactFields,
	}

	optionSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description": text,
			"impact":      impact,
		},
		Required: []string{"description", "impact"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description": text,
			"options": {
				Type:  genai.TypeArray,
				Items: optionSchema,
			},
		},
		Required: []string{"description", "options"},
	}
}

var _ Provider = (*Gemini)(nil)
