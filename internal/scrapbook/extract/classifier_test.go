package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

func newTestClassifier() *Classifier {
	return NewClassifier(nil, logger.New("test"))
}

func TestClassifyExtensionShortcut(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	c := newTestClassifier()

	tests := []struct {
		path string
		want URLKind
	}{
		{"/report.pdf", KindAsset},
		{"/archive.zip", KindAsset},
		{"/photo.jpeg", KindAsset},
	}
	for _, tt := range tests {
		if got := c.Classify(context.Background(), server.URL+tt.path); got != tt.want {
			t.Errorf("Classify(%s) = %q, want %q", tt.path, got, tt.want)
		}
	}

	if n := requests.Load(); n != 0 {
		t.Errorf("extension shortcut made %d network calls, want 0", n)
	}
}

func TestClassifyPageExtensionFallsThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!doctype html><html><body>hi</body></html>"))
	}))
	defer server.Close()

	c := newTestClassifier()
	if got := c.Classify(context.Background(), server.URL+"/index.html"); got != KindWebsite {
		t.Errorf("Classify(.html page) = %q, want website", got)
	}
}

func TestClassifyHeadProbeContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected %s request, HEAD should have been conclusive", r.Method)
		}
		w.Header().Set("Content-Type", "application/pdf")
	}))
	defer server.Close()

	c := newTestClassifier()
	if got := c.Classify(context.Background(), server.URL+"/download"); got != KindAsset {
		t.Errorf("Classify = %q, want asset", got)
	}
}

func TestClassifyHeadProbeDispositionFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
	}))
	defer server.Close()

	c := newTestClassifier()
	if got := c.Classify(context.Background(), server.URL+"/export"); got != KindAsset {
		t.Errorf("Classify = %q, want asset", got)
	}
}

func TestClassifyRangeProbeSniffsBinary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HEAD looks like HTML; the ranged GET reveals binary content.
		w.Header().Set("Content-Type", "text/html")
		if r.Method == http.MethodGet {
			w.Write([]byte("%PDF-1.7 binary payload"))
		}
	}))
	defer server.Close()

	c := newTestClassifier()
	if got := c.Classify(context.Background(), server.URL+"/doc"); got != KindAsset {
		t.Errorf("Classify = %q, want asset", got)
	}
}

func TestClassifyHTMLPageIsWebsite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.Method == http.MethodGet {
			w.Write([]byte("  \n<!DOCTYPE html>\n<html><head></head></html>"))
		}
	}))
	defer server.Close()

	c := newTestClassifier()
	if got := c.Classify(context.Background(), server.URL+"/page"); got != KindWebsite {
		t.Errorf("Classify = %q, want website", got)
	}
}

func TestClassifyUnreachableHostIsWebsite(t *testing.T) {
	c := newTestClassifier()
	if got := c.Classify(context.Background(), "http://127.0.0.1:1/page"); got != KindWebsite {
		t.Errorf("Classify(unreachable) = %q, want website", got)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		prefix string
		want   bool
	}{
		{"<!doctype html><html>", true},
		{"  \t\n<HTML lang=\"en\">", true},
		{"<head><title>x</title>", true},
		{"%PDF-1.7", false},
		{"{\"json\": true}", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksLikeHTML([]byte(tt.prefix)); got != tt.want {
			t.Errorf("looksLikeHTML(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}
