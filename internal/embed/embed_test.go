package embed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amishk599/jobmatch/internal/model"
)

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"object": "list",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.5, -0.25, 1]}],
			"model": "text-embedding-3-small",
			"usage": {"prompt_tokens": 3, "total_tokens": 3}
		}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(srv.URL+"/v1/", "test-key", "", 64, srv.Client())
	rows, err := e.Embed(context.Background(), "Go Developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 3 {
		t.Fatalf("expected 1x3 matrix, got %v", rows)
	}
	if rows[0][0] != 0.5 || rows[0][1] != -0.25 || rows[0][2] != 1 {
		t.Errorf("unexpected vector %v", rows[0])
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody["model"] != DefaultOpenAIModel {
		t.Errorf("expected default model, got %v", gotBody["model"])
	}
	if gotBody["input"] != "Go Developer" {
		t.Errorf("expected input text, got %v", gotBody["input"])
	}
	if gotBody["dimensions"] != float64(64) {
		t.Errorf("expected dimensions 64, got %v", gotBody["dimensions"])
	}
}

func TestOpenAIEmbedder_ErrorIsEmbeddingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "bad input", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(srv.URL+"/v1/", "test-key", "m", 0, srv.Client())
	_, err := e.Embed(context.Background(), "x")
	if !errors.Is(err, model.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	h := NewHashingEmbedder(32)
	a, _ := h.Embed(context.Background(), "Software Engineer")
	b, _ := h.Embed(context.Background(), "software   ENGINEER")
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("expected one row per token, got %d and %d", len(a), len(b))
	}
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("row %d differs at %d", i, j)
			}
		}
	}
	if len(a[0]) != 32 {
		t.Errorf("expected 32 dimensions, got %d", len(a[0]))
	}
}

func TestHashingEmbedder_EmptyTextIsZeroRow(t *testing.T) {
	rows, err := NewHashingEmbedder(16).Embed(context.Background(), "  at in  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single row, got %d", len(rows))
	}
	for _, v := range rows[0] {
		if v != 0 {
			t.Fatalf("expected zero row, got %v", rows[0])
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Senior Go/Backend Engineer at Acmé in Lahore")
	want := []string{"senior", "go", "backend", "engineer", "acme", "lahore"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

type countingEmbedder struct{ calls int }

func (c *countingEmbedder) Embed(context.Context, string) ([][]float32, error) {
	c.calls++
	return [][]float32{{1}}, nil
}

func TestWithRateLimit(t *testing.T) {
	inner := &countingEmbedder{}
	if got := WithRateLimit(inner, 0); got != model.Embedder(inner) {
		t.Error("expected zero limit to return the embedder unchanged")
	}

	limited := WithRateLimit(inner, 100)
	for i := 0; i < 3; i++ {
		if _, err := limited.Embed(context.Background(), "x"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 delegated calls, got %d", inner.calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := WithRateLimit(&countingEmbedder{}, 1)
	slow.Embed(context.Background(), "x") // drain the burst
	if _, err := slow.Embed(ctx, "x"); !errors.Is(err, model.ErrEmbedding) {
		t.Errorf("expected ErrEmbedding on cancelled wait, got %v", err)
	}
}
