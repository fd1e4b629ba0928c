package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/papercast-dev/papercast/pkg/provider/image"
	imagemock "github.com/papercast-dev/papercast/pkg/provider/image/mock"
)

func TestGenerateCover_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	pod := env.savePodcast(t, "Episode", "podcast", mockScript)

	rec := env.doJSON(t, "POST", "/api/covers", map[string]string{"podcast_id": pod.ID})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGenerateCover(t *testing.T) {
	images := &imagemock.Provider{
		GenerateResult: &image.Result{Data: []byte("fake-png"), MIMEType: "image/png"},
	}
	env := newTestEnv(t, WithImageProvider(images))
	pod := env.savePodcast(t, "Transformers Explained", "podcast", mockScript)

	rec := env.doJSON(t, "POST", "/api/covers", map[string]string{"podcast_id": pod.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	body := decodeBody[map[string]any](t, rec)
	coverURL, _ := body["cover_url"].(string)
	if !strings.HasPrefix(coverURL, "/static/covers/") || !strings.HasSuffix(coverURL, ".png") {
		t.Fatalf("cover_url = %q", coverURL)
	}

	data, err := os.ReadFile(filepath.Join(env.staticDir, "covers", filepath.Base(coverURL)))
	if err != nil {
		t.Fatalf("cover file: %v", err)
	}
	if string(data) != "fake-png" {
		t.Error("cover file does not contain the generated image")
	}

	updated, err := env.podcasts.Get(context.Background(), pod.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.CoverURL != coverURL {
		t.Errorf("stored cover url = %q, want %q", updated.CoverURL, coverURL)
	}

	if calls := images.GenerateCalls; len(calls) != 1 {
		t.Fatalf("generate calls = %d", len(calls))
	} else if !strings.Contains(calls[0].Req.Prompt, "Transformers Explained") {
		t.Error("prompt does not mention the podcast title")
	}
}

func TestGenerateCover_UnknownPodcast(t *testing.T) {
	env := newTestEnv(t, WithImageProvider(&imagemock.Provider{}))

	rec := env.doJSON(t, "POST", "/api/covers", map[string]string{"podcast_id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGenerateCover_ProviderFailure(t *testing.T) {
	images := &imagemock.Provider{GenerateErr: errors.New("content policy")}
	env := newTestEnv(t, WithImageProvider(images))
	pod := env.savePodcast(t, "Episode", "podcast", mockScript)

	rec := env.doJSON(t, "POST", "/api/covers", map[string]string{"podcast_id": pod.ID})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}
