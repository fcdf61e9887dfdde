package service

import (
	"context"
	"strings"
	"testing"

	"github.com/STop211650/ai-scrapbook/internal/llm"
	"github.com/STop211650/ai-scrapbook/internal/models"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/store"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newAskFixture(model *fakeLLM, items ...models.ContentItem) (*AskService, *fakeStore, *fakeIndex) {
	st := newFakeStore(items...)
	idx := &fakeIndex{}
	search := NewSearchService(st, idx, &fakeEmbedder{}, logger.New("test"))
	return NewAskService(search, st, model, logger.New("test")), st, idx
}

func withContent(it models.ContentItem, content, url string) models.ContentItem {
	it.Content = content
	it.SourceURL = url
	return it
}

// Citation mapping: [1] and [3] in the answer map to the first and third
// sources, ascending and deduplicated, with out-of-range numbers ignored.
func TestAskCitationMapping(t *testing.T) {
	model := &fakeLLM{response: "Gophers are burrowing rodents [3]. They dig tunnels [1]. Also [3] again and [7] is bogus."}
	svc, _, idx := newAskFixture(model,
		withContent(item("a", "u1", "Source One", models.ContentTypeArticle), "tunnel digging", "https://one.example"),
		withContent(item("b", "u1", "Source Two", models.ContentTypeArticle), "unrelated", "https://two.example"),
		withContent(item("c", "u1", "Source Three", models.ContentTypeArticle), "rodent facts", "https://three.example"),
	)
	idx.hits = []store.ScoredID{{ID: "a", Score: 0.9}, {ID: "b", Score: 0.8}, {ID: "c", Score: 0.7}}

	resp, err := svc.Ask(context.Background(), "u1", &AskRequest{Query: "what are gophers?", Mode: ModeSemantic})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if len(resp.Sources) != 2 {
		t.Fatalf("got %d cited sources, want 2: %+v", len(resp.Sources), resp.Sources)
	}
	if resp.Sources[0].ID != "a" || resp.Sources[0].CitationNumber != 1 {
		t.Errorf("Sources[0] = %+v, want id=a citation=1", resp.Sources[0])
	}
	if resp.Sources[1].ID != "c" || resp.Sources[1].CitationNumber != 3 {
		t.Errorf("Sources[1] = %+v, want id=c citation=3", resp.Sources[1])
	}
	if resp.TotalSourcesSearched != 3 {
		t.Errorf("TotalSourcesSearched = %d, want 3", resp.TotalSourcesSearched)
	}
}

// Zero retrieved candidates short-circuit to the canned answer without a
// model call.
func TestAskNoCandidatesSkipsModel(t *testing.T) {
	model := &fakeLLM{response: "should never be used"}
	svc, _, _ := newAskFixture(model)

	resp, err := svc.Ask(context.Background(), "u1", &AskRequest{Query: "anything", Mode: ModeSemantic})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if model.calls != 0 {
		t.Errorf("model called %d times, want 0", model.calls)
	}
	if resp.Answer != noContentAnswer {
		t.Errorf("Answer = %q, want the canned no-content answer", resp.Answer)
	}
	if len(resp.Sources) != 0 || resp.TotalSourcesSearched != 0 {
		t.Errorf("resp = %+v, want empty sources and zero total", resp)
	}
}

// The numbered source block keeps the retrieval order.
func TestAskPromptNumbersSourcesInOrder(t *testing.T) {
	model := &fakeLLM{response: "answer [1]"}
	svc, _, idx := newAskFixture(model,
		withContent(item("a", "u1", "Alpha", models.ContentTypeArticle), "alpha text", "https://a.example"),
		withContent(item("b", "u1", "Beta", models.ContentTypeArticle), "beta text", "https://b.example"),
	)
	idx.hits = []store.ScoredID{{ID: "b", Score: 0.9}, {ID: "a", Score: 0.8}}

	if _, err := svc.Ask(context.Background(), "u1", &AskRequest{Query: "q", Mode: ModeSemantic}); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	prompt := model.prompts[0]
	first := strings.Index(prompt, "[1] Beta (https://b.example)")
	second := strings.Index(prompt, "[2] Alpha (https://a.example)")
	if first < 0 || second < 0 || second < first {
		t.Errorf("source block not numbered in retrieval order:\n%s", prompt)
	}
}

func TestExcerptOf(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		if got := excerptOf("short.", 100); got != "short." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("cuts at sentence boundary", func(t *testing.T) {
		text := strings.Repeat("x", 60) + ". " + strings.Repeat("y", 60)
		got := excerptOf(text, 100)
		if !strings.HasSuffix(got, ".") {
			t.Errorf("excerpt did not end on the sentence boundary: %q", got)
		}
		if len(got) != 61 {
			t.Errorf("len = %d, want 61", len(got))
		}
	})

	t.Run("hard cut when no boundary", func(t *testing.T) {
		got := excerptOf(strings.Repeat("z", 200), 100)
		if !strings.HasSuffix(got, "...") {
			t.Errorf("hard cut missing ellipsis: %q", got)
		}
		if len(got) != 103 {
			t.Errorf("len = %d, want 103", len(got))
		}
	})
}

func TestCitedSourcesIgnoresMalformed(t *testing.T) {
	sources := []SourceContext{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	}
	cited := citedSources("claims [0] and [2] and [99] and [not-a-number]", sources)
	if len(cited) != 1 || cited[0].ID != "b" || cited[0].CitationNumber != 2 {
		t.Errorf("cited = %+v, want only source b as [2]", cited)
	}
}
