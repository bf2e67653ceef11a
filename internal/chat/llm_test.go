package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %v", req.Messages)
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIParser_Parse(t *testing.T) {
	srv := completionServer(t, `{"action":"update","target":"patient","id":3,"fields":{"age":40}}`)
	defer srv.Close()

	parser := NewOpenAIParser("test-key", srv.URL, "gpt-3.5-turbo", zerolog.Nop())
	intent, err := parser.Parse(context.Background(), "make patient 3 forty years old")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if intent.Action != "update" || intent.Target != "patient" {
		t.Errorf("unexpected intent: %+v", intent)
	}
	if intent.ID == nil || *intent.ID != 3 {
		t.Errorf("id = %v, want 3", intent.ID)
	}
	if intent.Fields["age"] != float64(40) {
		t.Errorf("fields = %v", intent.Fields)
	}
}

func TestOpenAIParser_ToleratesSurroundingProse(t *testing.T) {
	srv := completionServer(t, "Sure, here you go: {\"action\":\"text\",\"response\":\"Hi\"} hope that helps")
	defer srv.Close()

	parser := NewOpenAIParser("test-key", srv.URL, "gpt-3.5-turbo", zerolog.Nop())
	intent, err := parser.Parse(context.Background(), "hello")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if intent.Action != "text" || intent.Response != "Hi" {
		t.Errorf("unexpected intent: %+v", intent)
	}
}

func TestOpenAIParser_NoJSONInOutput(t *testing.T) {
	srv := completionServer(t, "I cannot help with that")
	defer srv.Close()

	parser := NewOpenAIParser("test-key", srv.URL, "gpt-3.5-turbo", zerolog.Nop())
	if _, err := parser.Parse(context.Background(), "hello"); err == nil {
		t.Error("expected error for non-JSON model output")
	}
}

func TestOpenAIParser_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	parser := NewOpenAIParser("test-key", srv.URL, "gpt-3.5-turbo", zerolog.Nop())
	if _, err := parser.Parse(context.Background(), "hello"); err == nil {
		t.Error("expected error for upstream failure")
	}
}
