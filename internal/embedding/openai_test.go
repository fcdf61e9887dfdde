package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

func newTestOpenAIModel(t *testing.T, handler http.HandlerFunc) *OpenAIModel {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	return &OpenAIModel{
		client: openai.NewClientWithConfig(cfg),
		model:  "text-embedding-3-small",
	}
}

// A well-formed response carrying no embeddings must surface as an error,
// never as an empty result the caller would index into.
func TestOpenAIEmbedEmptyResponse(t *testing.T) {
	m := newTestOpenAIModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[],"model":"text-embedding-3-small","usage":{"prompt_tokens":0,"total_tokens":0}}`))
	})

	if _, err := m.Embed(context.Background(), "some text"); err == nil {
		t.Fatal("Embed returned nil error on empty embedding response")
	}
	if _, err := m.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("EmbedBatch returned nil error on empty embedding response")
	}
}

func TestOpenAIEmbed(t *testing.T) {
	m := newTestOpenAIModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"text-embedding-3-small","usage":{"prompt_tokens":2,"total_tokens":2}}`))
	})

	vector, err := m.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vector) != 3 {
		t.Errorf("vector length = %d, want 3", len(vector))
	}
}
