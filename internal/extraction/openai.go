package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = `You are a workout plan parser that extracts structured information from text.

Your task is to:
1. Identify the workout plan name and description
2. Group exercises into workouts (days/sessions)
3. Extract every exercise with its written name, sets, rep range, and rest time
4. Capture any notes or special instructions

Return ONLY valid JSON with this exact structure:
{
  "name": "Plan name (or 'Workout Plan' if not specified)",
  "description": "Plan description (or null)",
  "workouts": [
    {
      "name": "Day 1" or "Push Day" or workout name from text,
      "day_number": 1,
      "exercises": [
        {
          "original_text": "Exact exercise name from text",
          "sets": 3,
          "reps_min": 8,
          "reps_max": 12,
          "rest_seconds": 90,
          "notes": "Any special instructions"
        }
      ]
    }
  ]
}

Rules:
- Group exercises into workouts based on day labels, headers, or logical groupings
- If no workout groupings are clear, create a single workout named "Workout 1"
- If reps is a single number (e.g. "5"), set both reps_min and reps_max to it
- If reps is a range (e.g. "8-12"), parse as min and max
- Omit sets, reps, or rest_seconds when the text does not state them
- Preserve the exercise name exactly as written in original_text
- Do NOT invent exercises that are not in the text

Return ONLY the JSON object, no explanations.`

// OpenAIConfig configures the chat-completions extractor.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OpenAIExtractor calls an OpenAI-compatible chat-completions endpoint. It
// performs a single call per Extract; retry policy belongs to the caller.
type OpenAIExtractor struct {
	cfg    OpenAIConfig
	client *http.Client
}

// NewOpenAIExtractor constructs the extractor.
func NewOpenAIExtractor(cfg OpenAIConfig) *OpenAIExtractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OpenAIExtractor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Extract performs one extraction call. Every failure mode — transport, HTTP
// status, refusal, unusable JSON — comes back wrapped in ErrExtractionFailed.
func (x *OpenAIExtractor) Extract(ctx context.Context, req Request) (Extraction, error) {
	body, err := json.Marshal(chatRequest{
		Model: x.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(req)},
		},
		Temperature:    x.cfg.Temperature,
		MaxTokens:      x.cfg.MaxTokens,
		ResponseFormat: &formatSpec{Type: "json_object"},
	})
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: encode request: %v", ErrExtractionFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, x.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+x.cfg.APIKey)

	resp, err := x.client.Do(httpReq)
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: read response: %v", ErrExtractionFailed, err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Extraction{}, fmt.Errorf("%w: decode response: %v", ErrExtractionFailed, err)
	}
	if resp.StatusCode >= 400 {
		detail := http.StatusText(resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Message != "" {
			detail = decoded.Error.Message
		}
		return Extraction{}, fmt.Errorf("%w: service returned %d: %s", ErrExtractionFailed, resp.StatusCode, detail)
	}
	if len(decoded.Choices) == 0 {
		return Extraction{}, fmt.Errorf("%w: empty completion", ErrExtractionFailed)
	}

	content := stripFences(decoded.Choices[0].Message.Content)
	var payload map[string]any
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return Extraction{}, fmt.Errorf("%w: model returned invalid JSON: %v", ErrExtractionFailed, err)
	}

	return parsePayload(payload), nil
}

func buildUserPrompt(req Request) string {
	var b strings.Builder
	if len(req.EquipmentHint) > 0 {
		b.WriteString("Equipment the user owns: ")
		b.WriteString(strings.Join(req.EquipmentHint, ", "))
		b.WriteString("\n\n")
	}
	b.WriteString("Parse this workout plan:\n\n")
	b.WriteString(req.Text)
	return b.String()
}

// stripFences unwraps markdown code fences some models insist on emitting.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
	} else if idx := strings.Index(content, "```"); idx >= 0 {
		content = content[idx+3:]
	} else {
		return content
	}
	if end := strings.Index(content, "```"); end >= 0 {
		content = content[:end]
	}
	return strings.TrimSpace(content)
}
