package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"ost-labs/orgmeta/internal/ai"
	"ost-labs/orgmeta/internal/cache"
)

// chatReply wraps raw model text in a chat completions response body.
func chatReply(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	if err != nil {
		t.Fatalf("failed to build reply: %v", err)
	}
	return body
}

func newEnricher(t *testing.T, handler http.Handler) (*Enricher, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	client, err := ai.NewClient(server.Client(), "test-key", "mistral-medium", server.URL)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	e := New(c, client)
	var logs bytes.Buffer
	e.SetLogger(log.New(&logs, "", 0))
	return e, &logs
}

func TestClassifyParsesFencedJSON(t *testing.T) {
	raw := "```json\n{\"Type\": \"Non-profit\", \"Location\": {\"Country\": \"US\"}, \"Confidence\": 0.91}\n```"
	e, _ := newEnricher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, raw))
	}))

	out := e.Classify(context.Background(), "https://example.org")

	if out.URL() != "https://example.org" {
		t.Fatalf("unexpected url: %s", out.URL())
	}
	if out["Type"] != "Non-profit" {
		t.Fatalf("unexpected type: %v", out["Type"])
	}
	if conf, ok := out.Confidence(); !ok || conf != 0.91 {
		t.Fatalf("unexpected confidence: %v (ok=%v)", conf, ok)
	}
	loc, ok := out["Location"].(map[string]any)
	if !ok || loc["Country"] != "US" {
		t.Fatalf("unexpected location: %v", out["Location"])
	}
	if _, failed := out.Exception(); failed {
		t.Fatal("result should not record an exception")
	}
}

func TestClassifyUsesCache(t *testing.T) {
	var requests atomic.Int32
	e, _ := newEnricher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write(chatReply(t, `{"Type": "Academic", "Confidence": 0.8}`))
	}))

	first := e.Classify(context.Background(), "https://example.org")
	second := e.Classify(context.Background(), "https://example.org")

	if got := requests.Load(); got != 1 {
		t.Fatalf("expected exactly one model call, got %d", got)
	}
	if first["Type"] != second["Type"] || first.URL() != second.URL() {
		t.Fatalf("cached result differs: %v vs %v", first, second)
	}
}

func TestClassifyRetriesAfterException(t *testing.T) {
	var requests atomic.Int32
	e, _ := newEnricher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(chatReply(t, `{"Type": "Government", "Confidence": 0.7}`))
	}))

	first := e.Classify(context.Background(), "https://example.org")
	if _, failed := first.Exception(); !failed {
		t.Fatalf("expected exception result, got %v", first)
	}
	if first.URL() != "https://example.org" {
		t.Fatalf("failed result lost its url: %v", first)
	}

	// A stored exception is treated as a miss and retried
	second := e.Classify(context.Background(), "https://example.org")
	if got := requests.Load(); got != 2 {
		t.Fatalf("expected a retry call, got %d total requests", got)
	}
	if second["Type"] != "Government" {
		t.Fatalf("retry did not return the fresh result: %v", second)
	}
}

func TestClassifyPermissionWarning(t *testing.T) {
	e, logs := newEnricher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"no access"}`))
	}))

	out := e.Classify(context.Background(), "https://example.org")

	exc, failed := out.Exception()
	if !failed || exc == "" {
		t.Fatalf("expected exception result, got %v", out)
	}
	if out.URL() != "https://example.org" {
		t.Fatalf("unexpected url: %s", out.URL())
	}
	if !strings.Contains(logs.String(), "permissions") {
		t.Fatalf("expected a permission warning, logs were: %q", logs.String())
	}
}

func TestClassifyParseFailure(t *testing.T) {
	e, logs := newEnricher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, `{"Type": "Non-profit", // inline comment breaks parsing`))
	}))

	out := e.Classify(context.Background(), "https://example.org")

	if _, failed := out.Exception(); !failed {
		t.Fatalf("expected exception result, got %v", out)
	}
	// Parse failures are not permission problems: no warning
	if strings.Contains(logs.String(), "permissions") {
		t.Fatalf("unexpected permission warning: %q", logs.String())
	}
}

func TestCleanResponse(t *testing.T) {
	in := "```json\n{\"Type\": \"Non-profit\",\n\"Confidence\": 0.91}\n```"
	want := `{"Type": "Non-profit","Confidence": 0.91}`
	if got := CleanResponse(in); got != want {
		t.Fatalf("unexpected cleanup: %q", got)
	}

	// Plain output passes through untouched
	if got := CleanResponse(`{"Type": "Other"}`); got != `{"Type": "Other"}` {
		t.Fatalf("plain output was mangled: %q", got)
	}
}

func TestParse(t *testing.T) {
	out, err := Parse("```json\n{\"Type\": \"Non-profit\", \"Location\": {\"Country\": \"US\"}, \"Confidence\": 0.91}\n```")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if out["Type"] != "Non-profit" {
		t.Fatalf("unexpected type: %v", out["Type"])
	}

	if _, err := Parse("not json at all"); err == nil {
		t.Fatal("expected parse error")
	}
}
