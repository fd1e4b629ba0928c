package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/papercast-dev/papercast/pkg/provider/image"
)

// TestNew_MissingAPIKey checks that an empty API key is rejected.
func TestNew_MissingAPIKey(t *testing.T) {
	_, err := New("", "dall-e-3")
	if err == nil {
		t.Fatal("expected error for empty API key")
	}
}

// TestNew_DefaultModel verifies that an empty model string defaults to dall-e-3.
func TestNew_DefaultModel(t *testing.T) {
	p, err := New("sk-test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != DefaultModel {
		t.Errorf("expected default model %s, got %s", DefaultModel, p.ModelID())
	}
}

// TestSizeParam verifies size mapping and fallback.
func TestSizeParam(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1024x1024", "1024x1024"},
		{"1792x1024", "1792x1024"},
		{"", "1024x1024"},
		{"3000x3000", "1024x1024"},
	}
	for _, c := range cases {
		if got := string(sizeParam(c.in)); got != c.want {
			t.Errorf("sizeParam(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// TestGenerate_EmptyPrompt verifies the prompt is required.
func TestGenerate_EmptyPrompt(t *testing.T) {
	p, err := New("sk-test", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Generate(context.Background(), image.Request{}); err == nil {
		t.Error("expected error for empty prompt")
	}
}

// TestGenerate decodes a stubbed b64_json response into PNG bytes.
func TestGenerate(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"created": 1700000000,
			"data": []map[string]any{
				{
					"b64_json":       base64.StdEncoding.EncodeToString(png),
					"revised_prompt": "a revised prompt",
				},
			},
		})
	}))
	defer srv.Close()

	p, err := New("sk-test", "dall-e-3", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	result, err := p.Generate(context.Background(), image.Request{Prompt: "cover art", Size: "1024x1024"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(result.Data) != string(png) {
		t.Error("decoded image bytes do not match")
	}
	if result.MIMEType != "image/png" {
		t.Errorf("mime type = %q", result.MIMEType)
	}
	if result.RevisedPrompt != "a revised prompt" {
		t.Errorf("revised prompt = %q", result.RevisedPrompt)
	}

	if gotBody["prompt"] != "cover art" {
		t.Errorf("request prompt = %v", gotBody["prompt"])
	}
	if gotBody["model"] != "dall-e-3" {
		t.Errorf("request model = %v", gotBody["model"])
	}
	if gotBody["response_format"] != "b64_json" {
		t.Errorf("request response_format = %v", gotBody["response_format"])
	}
}

// TestGenerate_EmptyResponse verifies an empty data array is an error.
func TestGenerate_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"created": 1700000000, "data": []any{}})
	}))
	defer srv.Close()

	p, err := New("sk-test", "", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Generate(context.Background(), image.Request{Prompt: "x"}); err == nil {
		t.Error("expected error for empty data array")
	}
}
