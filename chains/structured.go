package chains

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// ErrNoScore is returned when a model response carries no usable
// binary_score, neither as a tool call nor as JSON in the text.
var ErrNoScore = errors.New("no binary score in model response")

// ErrEmptyResponse is returned when the model returns no choices.
var ErrEmptyResponse = errors.New("empty model response")

// Verdict is a yes/no grade. It decodes from a JSON boolean or from the
// strings "yes", "no", "true" and "false" in any case.
type Verdict bool

// UnmarshalJSON implements json.Unmarshaler.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = Verdict(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("binary_score must be a boolean or 'yes'/'no', got %s", string(data))
	}
	parsed, ok := parseYesNo(s)
	if !ok {
		return fmt.Errorf("binary_score must be 'yes' or 'no', got %q", s)
	}
	*v = Verdict(parsed)
	return nil
}

func parseYesNo(s string) (bool, bool) {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(s), `."'`)) {
	case "yes", "true":
		return true, true
	case "no", "false":
		return false, true
	}
	return false, false
}

// gradeResult is the structured output every grader asks for.
type gradeResult struct {
	BinaryScore *Verdict `json:"binary_score"`
}

// gradeTool describes the function the model is forced to call.
func gradeTool(name, description string) llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"binary_score": map[string]any{
						"type":        "string",
						"enum":        []string{"yes", "no"},
						"description": description + ", 'yes' or 'no'",
					},
				},
				"required": []string{"binary_score"},
			},
		},
	}
}

// binaryGrader asks a model for a yes/no verdict through function calling.
type binaryGrader struct {
	model       llms.Model
	system      string
	toolName    string
	description string
}

func (g binaryGrader) grade(ctx context.Context, human string) (bool, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, g.system),
		llms.TextParts(llms.ChatMessageTypeHuman, human),
	}

	resp, err := g.model.GenerateContent(ctx, messages,
		llms.WithTemperature(0),
		llms.WithTools([]llms.Tool{gradeTool(g.toolName, g.description)}),
		llms.WithToolChoice(llms.ToolChoice{
			Type:     "function",
			Function: &llms.FunctionReference{Name: g.toolName},
		}),
	)
	if err != nil {
		return false, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return false, ErrEmptyResponse
	}
	return decodeVerdict(resp.Choices[0])
}

// decodeVerdict reads binary_score from a tool call, then from a JSON object
// in the text content, then from a bare yes/no answer.
func decodeVerdict(choice *llms.ContentChoice) (bool, error) {
	var calls []*llms.FunctionCall
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall != nil {
			calls = append(calls, tc.FunctionCall)
		}
	}
	if choice.FuncCall != nil {
		calls = append(calls, choice.FuncCall)
	}
	for _, call := range calls {
		if v, err := parseGrade(call.Arguments); err == nil {
			return v, nil
		}
	}

	if v, err := parseGrade(choice.Content); err == nil {
		return v, nil
	}
	if v, ok := parseYesNo(choice.Content); ok {
		return v, nil
	}
	return false, fmt.Errorf("%w: %q", ErrNoScore, truncate(choice.Content, 80))
}

// parseGrade extracts the first JSON object in text and decodes it.
func parseGrade(text string) (bool, error) {
	text = strings.TrimSpace(text)
	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")
	if startIdx == -1 || endIdx < startIdx {
		return false, fmt.Errorf("no JSON object found in text")
	}

	var result gradeResult
	if err := json.Unmarshal([]byte(text[startIdx:endIdx+1]), &result); err != nil {
		return false, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if result.BinaryScore == nil {
		return false, ErrNoScore
	}
	return bool(*result.BinaryScore), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
