package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/papercast-dev/papercast/internal/auth"
	"github.com/papercast-dev/papercast/internal/pipeline"
	"github.com/papercast-dev/papercast/internal/podcast"
	"github.com/papercast-dev/papercast/internal/progress"
	"github.com/papercast-dev/papercast/internal/prompts"
	"github.com/papercast-dev/papercast/internal/script"
	"github.com/papercast-dev/papercast/pkg/audio"
	"github.com/papercast-dev/papercast/pkg/provider/llm"
	llmmock "github.com/papercast-dev/papercast/pkg/provider/llm/mock"
	ttsmock "github.com/papercast-dev/papercast/pkg/provider/tts/mock"
)

const mockScript = "[Host]: Welcome to the show.\n\n[Guest]: Happy to be here."

// testWAV returns a small valid mono WAV file.
func testWAV(t *testing.T, samples int) []byte {
	t.Helper()
	clip := audio.Clip{Data: make([]byte, samples*2), SampleRate: 44100, Channels: 1}
	var buf bytes.Buffer
	if err := audio.EncodeWAV(&buf, clip); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// testEnv wires a Server with mock providers and file stores in a temp dir.
type testEnv struct {
	srv       *Server
	mux       *http.ServeMux
	token     string
	llm       *llmmock.Provider
	tts       *ttsmock.Provider
	podcasts  *podcast.FileStore
	staticDir string
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	dir := t.TempDir()
	discard := slog.New(slog.DiscardHandler)

	users := auth.NewUserStore(filepath.Join(dir, "users.json"))
	svc, err := auth.NewService(users, "test-secret")
	if err != nil {
		t.Fatal(err)
	}
	user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "password123")
	if err != nil {
		t.Fatal(err)
	}
	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatal(err)
	}

	llmProv := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: mockScript},
	}
	gen := script.NewGenerator(llmProv, prompts.NewLibrary(""),
		script.WithGeneratorLogger(discard))

	ttsProv := &ttsmock.Provider{SynthesizeData: testWAV(t, 256)}
	pipe := pipeline.New(ttsProv, audio.NewWAVConcatenator(),
		pipeline.WithScratchDir(dir),
		pipeline.WithLogger(discard),
	)

	staticDir := filepath.Join(dir, "static")
	store := podcast.NewFileStore(filepath.Join(dir, "podcasts.json"))

	srv := New(svc, gen, pipe, store, progress.NewStore(),
		append([]Option{WithStaticDir(staticDir), WithLogger(discard)}, opts...)...)
	mux := http.NewServeMux()
	srv.Register(mux)

	return &testEnv{
		srv:       srv,
		mux:       mux,
		token:     token,
		llm:       llmProv,
		tts:       ttsProv,
		podcasts:  store,
		staticDir: staticDir,
	}
}

// do issues a request against the env's mux with the env's bearer token.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+e.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

// doJSON issues a request with a JSON body.
func (e *testEnv) doJSON(t *testing.T, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return e.do(t, method, path, bytes.NewReader(b))
}

// savePodcast stores a record directly and returns it.
func (e *testEnv) savePodcast(t *testing.T, title, format, scriptText string) *podcast.Podcast {
	t.Helper()
	pod := podcast.New(title, format, scriptText, "")
	if err := e.podcasts.Save(context.Background(), pod); err != nil {
		t.Fatal(err)
	}
	return pod
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// writeStaticFile places a file under the env's static directory.
func writeStaticFile(t *testing.T, staticDir, subdir, name string, data []byte) string {
	t.Helper()
	dir := filepath.Join(staticDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRegisterLoginLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, "POST", "/api/auth/register", map[string]string{
		"name": "Bob", "email": "bob@example.com", "password": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d, body %s", rec.Code, rec.Body)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["token"] == "" {
		t.Error("register response missing token")
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("register response missing user: %v", body)
	}
	if _, leaked := user["password"]; leaked {
		t.Error("register response leaks password hash")
	}

	rec = env.doJSON(t, "POST", "/api/auth/login", map[string]string{
		"email": "bob@example.com", "password": "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d, body %s", rec.Code, rec.Body)
	}
	login := decodeBody[map[string]any](t, rec)
	if login["token"] == "" {
		t.Error("login response missing token")
	}

	rec = env.do(t, "POST", "/api/auth/logout", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("logout = %d", rec.Code)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{"name": "Bob", "email": "bob@example.com", "password": "hunter22"}
	if rec := env.doJSON(t, "POST", "/api/auth/register", payload); rec.Code != http.StatusCreated {
		t.Fatalf("first register = %d", rec.Code)
	}
	if rec := env.doJSON(t, "POST", "/api/auth/register", payload); rec.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", rec.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, "POST", "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login = %d, want 401", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/api/podcasts", nil)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", rec.Code)
	}

	if rec := env.do(t, "GET", "/api/podcasts", nil); rec.Code != http.StatusOK {
		t.Errorf("with token = %d, want 200", rec.Code)
	}
}

func TestStaticFile_Serves(t *testing.T) {
	env := newTestEnv(t)

	writeStaticFile(t, env.staticDir, "audio", "episode.wav", []byte("RIFFdata"))
	req := httptest.NewRequest("GET", "/static/audio/episode.wav", nil)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "RIFFdata") {
		t.Error("body does not contain the file content")
	}

	req = httptest.NewRequest("GET", "/static/audio/missing.wav", nil)
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing file = %d, want 404", rec.Code)
	}
}
