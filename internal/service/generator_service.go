package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smartpaper_backend/internal/config"
	"smartpaper_backend/internal/model"
)

// GeneratorService 对接 OpenAI 兼容的生成接口，负责把试卷配置变成一次受约束的生成调用
type GeneratorService struct {
	config config.AIConfig
	client *http.Client
}

func NewGeneratorService(cfg config.AIConfig) *GeneratorService {
	return &GeneratorService{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// JSONSchemaSpec 结构化输出的 schema 声明
type JSONSchemaSpec struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

type ResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *JSONSchemaSpec `json:"json_schema,omitempty"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []AIChatMessage `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// BuildPaperRequest 把配置的每个字段完整渲染进提示词和输出 schema。
// 纯函数，无副作用；配置合法性由调用方在此之前校验。
func BuildPaperRequest(cfg model.PaperConfig, modelName string) ChatCompletionRequest {
	prompt := fmt.Sprintf(`Generate a %s question paper for:
- Class: %s
- Region/Country: %s
- Difficulty Level: %d/5
- Topics: %s
- Number of Questions: %d
- Total Marks: %g
- Time Duration: %d minutes

CRITICAL RULES:
1. For every question, the "type" field MUST be exactly either "mcq" or "subjective" (lowercase).
2. If type is "mcq", you MUST provide an "options" array with exactly 4 distinct strings.
3. If type is "mcq", you MUST provide a "correctAnswer" which is exactly one of: "A", "B", "C", "D".
4. If type is "subjective", "options" MUST be an empty array [] and "modelAnswer" MUST be provided.
5. Ensure the sum of "marks" for all questions equals exactly %g.
6. Ensure the questions follow the curriculum and standard of %s.

Return ONLY a valid JSON object matching the requested schema.`,
		cfg.Type, cfg.ClassLevel, cfg.Region, cfg.Difficulty, cfg.Topics,
		cfg.QuestionCount, cfg.TotalMarks, cfg.Duration, cfg.TotalMarks, cfg.Region)

	return ChatCompletionRequest{
		Model: modelName,
		Messages: []AIChatMessage{
			{Role: "system", Content: "You are an exam paper generator for school students. You only output JSON conforming to the provided schema."},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchemaSpec{
				Name:   "question-paper",
				Strict: true,
				Schema: paperResponseSchema(),
			},
		},
	}
}

// paperResponseSchema 试卷的 JSON Schema，和 model.QuestionPaper 字段一一对应
func paperResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title":        map[string]interface{}{"type": "string"},
			"instructions": map[string]interface{}{"type": "string"},
			"sections": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":  map[string]interface{}{"type": "string"},
						"marks": map[string]interface{}{"type": "number"},
						"questions": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"id":   map[string]interface{}{"type": "string"},
									"text": map[string]interface{}{"type": "string"},
									"type": map[string]interface{}{
										"type":        "string",
										"enum":        []interface{}{"mcq", "subjective"},
										"description": "Must be exactly 'mcq' or 'subjective'",
									},
									"marks": map[string]interface{}{"type": "number"},
									"options": map[string]interface{}{
										"type":        "array",
										"items":       map[string]interface{}{"type": "string"},
										"description": "Exactly 4 distinct strings if type is 'mcq', empty otherwise",
									},
									"correctAnswer": map[string]interface{}{
										"type":        "string",
										"description": "A, B, C or D for mcq questions",
									},
									"modelAnswer": map[string]interface{}{
										"type":        "string",
										"description": "Reference answer for subjective questions",
									},
								},
								"required": []interface{}{"id", "text", "type", "marks", "options"},
							},
						},
					},
					"required": []interface{}{"name", "marks", "questions"},
				},
			},
		},
		"required": []interface{}{"title", "instructions", "sections"},
	}
}

// GeneratePaper 发起一次生成调用并返回原始文本。
// 网络、鉴权、非 200 状态都归为传输失败 ErrGeneratorUnavailable。
func (s *GeneratorService) GeneratePaper(ctx context.Context, cfg model.PaperConfig) (string, error) {
	reqBody := BuildPaperRequest(cfg, s.config.Model)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrGeneratorUnavailable, resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrGeneratorUnavailable, result.Error.Message)
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: no choices returned", ErrGeneratorUnavailable)
}
