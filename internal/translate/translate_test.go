package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperjump/kotoba/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	terms := []models.Match{
		{Term: "deep learning", Definition: "深度学习：机器学习的一个分支", Score: 0.9},
		{Term: "neural network", Definition: strings.Repeat("网", 150), Score: 0.4},
	}
	got := BuildPrompt("Deep learning uses neural networks.", "Chinese", terms, 100)

	for _, want := range []string{
		"into Chinese",
		"Related terms:\n- deep learning: 深度学习：机器学习的一个分支\n",
		"- neural network: " + strings.Repeat("网", 100) + "...\n",
		"Text to translate:\nDeep learning uses neural networks.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}

	bare := BuildPrompt("hello", "Japanese", nil, 100)
	if strings.Contains(bare, "Related terms") {
		t.Errorf("prompt without terms should omit the reference section:\n%s", bare)
	}
}

func TestNewClient_missingKey(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestClient_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  深度学习改变世界。 \n"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{
		BaseURL:     srv.URL + "/v1/",
		APIKey:      "sk-test",
		Model:       "deepseek-chat",
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Complete(context.Background(), "translate me")
	if err != nil {
		t.Fatal(err)
	}
	if out != "深度学习改变世界。" {
		t.Errorf("content = %q", out)
	}
	want := chatRequest{
		Model:       "deepseek-chat",
		Messages:    []chatMessage{{Role: "user", Content: "translate me"}},
		Temperature: 0.3,
		MaxTokens:   1000,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, "bad key"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"malformed", http.StatusOK, `not json`, "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", MaxRetries: 3})
			_, err := c.Complete(context.Background(), "x")
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("error = %v, want ErrUpstream", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
			if n := calls.Load(); n != 1 {
				t.Errorf("non-retryable failure made %d calls, want 1", n)
			}
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c, _ := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", MaxRetries: 2})
	out, err := c.Complete(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok" || calls.Load() != 2 {
		t.Errorf("out = %q after %d calls, want ok after 2", out, calls.Load())
	}
}

func TestClient_ContextCanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", MaxRetries: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := c.Complete(ctx, "x"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("backoff ignored the context")
	}
}

type fakeRetriever struct {
	matches []models.Match
	err     error
	gotK    int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, k int) ([]models.Match, error) {
	f.gotK = k
	return f.matches, f.err
}

type fakeCompleter struct {
	prompt string
	reply  string
	err    error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestService_Translate(t *testing.T) {
	r := &fakeRetriever{matches: []models.Match{
		{Term: "artificial intelligence", Definition: "人工智能", Score: 0.8},
		{Term: "cloud computing", Definition: "云计算", Score: 0},
	}}
	c := &fakeCompleter{reply: "人工智能正在改变世界。"}
	s := NewService(r, c, WithTargetLanguage("Chinese"), WithDefinitionPreview(50))

	res, err := s.Translate(context.Background(), "Artificial intelligence is transforming the world.", 5)
	if err != nil {
		t.Fatal(err)
	}
	if r.gotK != 5 {
		t.Errorf("k = %d, want 5", r.gotK)
	}
	if res.Translation != c.reply {
		t.Errorf("translation = %q", res.Translation)
	}
	if len(res.Terms) != 1 || res.Terms[0].Term != "artificial intelligence" {
		t.Errorf("terms = %+v, want only the scoring term", res.Terms)
	}
	if !strings.Contains(c.prompt, "- artificial intelligence: 人工智能") {
		t.Errorf("prompt missing term reference:\n%s", c.prompt)
	}
	if strings.Contains(c.prompt, "cloud computing") {
		t.Errorf("zero-score term leaked into prompt:\n%s", c.prompt)
	}
}

func TestService_TranslateErrors(t *testing.T) {
	boom := errors.New("boom")

	s := NewService(&fakeRetriever{err: boom}, &fakeCompleter{})
	if _, err := s.Translate(context.Background(), "x", 1); !errors.Is(err, boom) {
		t.Errorf("retrieval error = %v, want wrapped boom", err)
	}

	s = NewService(&fakeRetriever{}, &fakeCompleter{err: ErrUpstream})
	if _, err := s.Translate(context.Background(), "x", 1); !errors.Is(err, ErrUpstream) {
		t.Errorf("completion error = %v, want wrapped ErrUpstream", err)
	}
}
