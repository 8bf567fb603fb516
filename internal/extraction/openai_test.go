package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(body)
}

func newTestExtractor(url string) *OpenAIExtractor {
	return NewOpenAIExtractor(OpenAIConfig{
		BaseURL: url,
		APIKey:  "test-key",
		Model:   "gpt-4-turbo-preview",
		Timeout: 5 * time.Second,
	})
}

func TestExtractParsesCompletion(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completionResponse(`{"name":"My Plan","workouts":[{"name":"Day 1","day_number":1,"exercises":[{"original_text":"Squat","sets":5,"reps_min":5,"reps_max":5}]}]}`)))
	}))
	defer srv.Close()

	out, err := newTestExtractor(srv.URL).Extract(context.Background(), Request{
		Text:          "5x5 squats every monday",
		EquipmentHint: []string{"barbell", "rack"},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out.PlanName != "My Plan" || out.Items() != 1 {
		t.Fatalf("unexpected extraction: %+v", out)
	}

	if captured.Model != "gpt-4-turbo-preview" {
		t.Fatalf("expected model forwarded, got %q", captured.Model)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %+v", captured.ResponseFormat)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("expected system+user messages, got %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, "barbell, rack") {
		t.Fatalf("expected equipment hint in user prompt: %q", captured.Messages[1].Content)
	}
}

func TestExtractStripsMarkdownFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse("```json\n{\"name\":\"Fenced\",\"workouts\":[]}\n```")))
	}))
	defer srv.Close()

	out, err := newTestExtractor(srv.URL).Extract(context.Background(), Request{Text: "whatever"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out.PlanName != "Fenced" {
		t.Fatalf("expected fenced JSON parsed, got %+v", out)
	}
}

func TestExtractServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	_, err := newTestExtractor(srv.URL).Extract(context.Background(), Request{Text: "whatever"})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected upstream detail in error, got %v", err)
	}
}

func TestExtractInvalidModelJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse("I cannot parse this workout plan.")))
	}))
	defer srv.Close()

	_, err := newTestExtractor(srv.URL).Extract(context.Background(), Request{Text: "whatever"})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestExtractor(srv.URL).Extract(context.Background(), Request{Text: "whatever"})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestExtractor(srv.URL).Extract(ctx, Request{Text: "whatever"})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed on timeout, got %v", err)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"Sure, here you go:\n```json\n{\"a\":1}\n```\nHope that helps.", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Fatalf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
