package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docmark/internal/chunker"
	"github.com/dgallion1/docmark/internal/config"
	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/pipeline"
	"github.com/dgallion1/docmark/internal/rank"
	"github.com/dgallion1/docmark/internal/relocate"
)

const testKey = "secret"

func testConfig() config.Config {
	return config.Config{
		DocmarkAPIKey:     testKey,
		Scorer:            config.ScorerLocal,
		WorkerCount:       1,
		MaxQueueSize:      4,
		MaxUploadBytes:    1 << 20,
		JobTTL:            time.Hour,
		MatchMaxErrors:    1,
		MatchInclusiveEnd: true,
		HighlightPrefix:   "docmark",
	}
}

func newTestServer(t *testing.T, start bool) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig()
	engine := pipeline.NewEngine(rank.LocalScorer{Chunk: chunker.Config{MinWords: 1}}, pipeline.EngineConfig{
		MaxErrors:    cfg.MatchMaxErrors,
		InclusiveEnd: cfg.MatchInclusiveEnd,
		Prefix:       cfg.HighlightPrefix,
	}, log)
	orch := pipeline.NewOrchestrator(cfg, engine, log)
	if start {
		orch.Start(context.Background())
	}
	srv := httptest.NewServer(NewServer(orch, nil, log, cfg))
	t.Cleanup(func() {
		srv.Close()
		orch.Stop()
	})
	return srv
}

func do(t *testing.T, method, url string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func postJSON(t *testing.T, url string, v any) (*http.Response, []byte) {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return do(t, http.MethodPost, url, bytes.NewReader(body), "application/json")
}

func readablePage() string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>Solar</title></head><body><article><p>")
	for i := range 12 {
		fmt.Fprintf(&sb, "Sentence number %d talks about solar power and panels in some detail. ", i)
	}
	sb.WriteString("</p></article><footer>Copyright</footer></body></html>")
	return sb.String()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, false)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t, false)

	for _, header := range []string{"", "Bearer wrong", "Basic secret"} {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/locate", strings.NewReader("{}"))
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, resp.StatusCode)
		}
	}
}

func TestLocate(t *testing.T) {
	srv := newTestServer(t, false)

	resp, body := postJSON(t, srv.URL+"/api/locate", map[string]any{
		"leaves": []map[string]any{
			{"handle": 0, "text": "Hello "},
			{"handle": 1, "text": "world"},
			{"handle": 2, "text": ". Bye."},
		},
		"sentences": []map[string]string{{"txt": "hello world", "level": "high"}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var out struct {
		Ranges map[string][]relocate.Range `json:"ranges"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	high := out.Ranges["high"]
	if len(high) != 1 {
		t.Fatalf("expected 1 high range, got %d", len(high))
	}
	want := relocate.Range{
		Start: relocate.Position{Leaf: 0, Offset: 0},
		End:   relocate.Position{Leaf: 2, Offset: 0},
	}
	if high[0] != want {
		t.Errorf("expected %+v, got %+v", want, high[0])
	}
	for _, level := range []string{"medium", "low"} {
		if got, ok := out.Ranges[level]; !ok || len(got) != 0 {
			t.Errorf("expected empty %s group, got %v (present=%v)", level, got, ok)
		}
	}
}

func TestLocate_BadRequests(t *testing.T) {
	srv := newTestServer(t, false)

	resp, _ := postJSON(t, srv.URL+"/api/locate", map[string]any{
		"sentences": []map[string]string{{"txt": "x", "level": "urgent"}},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown level, got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/locate", strings.NewReader("{not json"), "application/json")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed json, got %d", resp.StatusCode)
	}
}

func TestHighlight(t *testing.T) {
	srv := newTestServer(t, false)

	resp, body := postJSON(t, srv.URL+"/api/highlight", map[string]any{
		"html":         "<body><p>Hello <b>world</b>. Another sentence.</p></body>",
		"sentences":    []doctree.Sentence{{Text: "Hello world.", Level: doctree.LevelHigh}},
		"include_html": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var out highlightResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Marked != 3 {
		t.Errorf("expected 3 marks, got %d", out.Marked)
	}
	if !strings.Contains(out.HTML, `<mark class="docmark-high" data-docmark-level="high">world</mark>`) {
		t.Errorf("expected marked html, got %s", out.HTML)
	}
	if len(out.Ranges[doctree.LevelHigh]) != 1 {
		t.Errorf("expected 1 high range, got %v", out.Ranges)
	}
}

func TestRelevant(t *testing.T) {
	srv := newTestServer(t, false)

	resp, body := postJSON(t, srv.URL+"/api/relevant", map[string]string{"html": "<p>Too short.</p>"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unreadable page, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "not_readable") {
		t.Errorf("expected not_readable code, got %s", body)
	}

	resp, body = postJSON(t, srv.URL+"/api/relevant", map[string]string{"html": readablePage()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var out relevantResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Title != "Solar" {
		t.Errorf("expected title Solar, got %q", out.Title)
	}
	if len(out.Sentences) != 2 {
		t.Errorf("expected 2 of 12 sentences kept, got %d", len(out.Sentences))
	}
}

func TestDocumentLocate(t *testing.T) {
	srv := newTestServer(t, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "notes.txt")
	fw.Write([]byte("alpha beta\ngamma delta\n"))
	mw.WriteField("sentences", `[{"txt":"beta gamma","level":"low"}]`)
	mw.Close()

	resp, body := do(t, http.MethodPost, srv.URL+"/api/documents/locate", &buf, mw.FormDataContentType())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var out documentLocateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Format != "text" || len(out.Leaves) != 2 {
		t.Errorf("unexpected document %+v", out)
	}
	low := out.Ranges[doctree.LevelLow]
	if len(low) != 1 || low[0].Start != (relocate.Position{Leaf: 0, Offset: 6}) {
		t.Errorf("unexpected low ranges %+v", low)
	}
}

func TestDocumentLocate_Unsupported(t *testing.T) {
	srv := newTestServer(t, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "tool.exe")
	fw.Write([]byte("MZ"))
	mw.Close()

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/documents/locate", &buf, mw.FormDataContentType())
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestProcessLifecycle(t *testing.T) {
	srv := newTestServer(t, true)

	resp, body := postJSON(t, srv.URL+"/api/process", map[string]string{"html": readablePage(), "url": "https://example.com/solar"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.StatusCode, body)
	}
	var queued struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	if err := json.Unmarshal(body, &queued); err != nil {
		t.Fatal(err)
	}

	var snap pipeline.JobSnapshot
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, body = do(t, http.MethodGet, srv.URL+queued.PollURL, nil, "")
		if err := json.Unmarshal(body, &snap); err != nil {
			t.Fatal(err)
		}
		if snap.Status.Terminal() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, last status %q", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed job, got %q: %v", snap.Status, snap.Progress.Errors)
	}
	if snap.URL != "https://example.com/solar" {
		t.Errorf("expected url to be kept, got %q", snap.URL)
	}

	resp, body = do(t, http.MethodGet, srv.URL+"/api/process/"+queued.JobID+"/result", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var result pipeline.Result
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if result.Marked == 0 || !strings.Contains(result.HTML, "<mark") {
		t.Errorf("expected marked html in result, got marked=%d", result.Marked)
	}
}

func TestProcess_NotReadable(t *testing.T) {
	srv := newTestServer(t, true)

	_, body := postJSON(t, srv.URL+"/api/process", map[string]string{"html": "<p>short</p>"})
	var queued struct {
		JobID string `json:"job_id"`
	}
	json.Unmarshal(body, &queued)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, _ := do(t, http.MethodGet, srv.URL+"/api/process/"+queued.JobID+"/result", nil, "")
		if resp.StatusCode == http.StatusUnprocessableEntity {
			return
		}
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("unexpected status %d", resp.StatusCode)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state")
}

func TestProcess_QueueFull(t *testing.T) {
	srv := newTestServer(t, false) // no workers drain the queue

	codes := map[int]int{}
	for range testConfig().MaxQueueSize + 1 {
		resp, _ := postJSON(t, srv.URL+"/api/process", map[string]string{"html": "<p>x</p>"})
		codes[resp.StatusCode]++
	}
	if codes[http.StatusAccepted] != testConfig().MaxQueueSize || codes[http.StatusServiceUnavailable] != 1 {
		t.Errorf("unexpected status counts %v", codes)
	}
}

func TestProcess_UnknownJob(t *testing.T) {
	srv := newTestServer(t, false)
	for _, path := range []string{"/status", "/result"} {
		resp, _ := do(t, http.MethodGet, srv.URL+"/api/process/nope"+path, nil, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, resp.StatusCode)
		}
	}
}

func TestLLMStats_Unavailable(t *testing.T) {
	srv := newTestServer(t, false)
	resp, _ := do(t, http.MethodGet, srv.URL+"/api/stats/llm", nil, "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without model stats, got %d", resp.StatusCode)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"../../etc/passwd": "passwd",
		"report.pdf":       "report.pdf",
		"":                 "unnamed",
		"a..b.html":        "a_b.html",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
