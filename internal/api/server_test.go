package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docmark/internal/config"
	"github.com/dgallion1/docmark/internal/pipeline"
	"github.com/dgallion1/docmark/internal/project"
)

const testKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		DocmarkAPIKey:      testKey,
		WorkerCount:        1,
		MaxQueueSize:       4,
		MaxConcurrentParse: 2,
		MaxUploadBytes:     1 << 20,
		MaxNestingDepth:    16,
		SmartPunctuation:   true,
		JobTTL:             time.Hour,
	}
	store, err := project.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, store, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg)
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["status"]; got != "ok" {
		t.Errorf("expected status ok, got %v", got)
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	for _, header := range []string{"", "Bearer wrong", "Basic " + testKey} {
		req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"text":"x"}`))
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestParse(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/parse", strings.NewReader(`{"text":"# Hi\n\n- [ ] *task*"}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Blocks []json.RawMessage `json:"blocks"`
		Text   string            `json:"text"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(resp.Blocks))
	}
	want := `{"type":"unordered_list","items":[{"type":"item","checkbox":false,"inlines":[{"type":"emphasis","children":[{"type":"text","value":"task"}]}]}]}`
	if string(resp.Blocks[1]) != want {
		t.Errorf("expected %s, got %s", want, resp.Blocks[1])
	}
	if resp.Text != "Hi\ntask" {
		t.Errorf("expected plain text %q, got %q", "Hi\ntask", resp.Text)
	}
}

func TestParse_EmptyTextGivesEmptyBlocks(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/parse", strings.NewReader(`{"text":""}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"blocks":[]`) {
		t.Errorf("expected empty blocks array, got %s", rec.Body)
	}
}

func TestParse_SmartOverride(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/parse", strings.NewReader(`{"text":"it's","smart":false}`), "application/json")
	if got := decodeBody(t, rec)["text"]; got != "it's" {
		t.Errorf("expected plain apostrophe, got %v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/parse", strings.NewReader(`not json`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad json, got %d", rec.Code)
	}

	deep, _ := json.Marshal(map[string]string{"text": strings.Repeat(">", 40) + " x"})
	rec = do(t, s, http.MethodPost, "/api/parse", bytes.NewReader(deep), "application/json")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for deep nesting, got %d", rec.Code)
	}
	if msg, _ := decodeBody(t, rec)["error"].(string); !strings.Contains(msg, "depth") {
		t.Errorf("expected depth error message, got %q", msg)
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fw.Write(data)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func waitForJob(t *testing.T, s *Server, pollURL string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec := do(t, s, http.MethodGet, pollURL, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("poll: expected 200, got %d", rec.Code)
		}
		snap := decodeBody(t, rec)
		if pipeline.JobStatus(snap["status"].(string)).Done() {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish: %v", snap)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestServer(t)

	var img bytes.Buffer
	png.Encode(&img, image.NewGray(image.Rect(0, 0, 2, 2)))
	p := project.New()
	p.Entries = []project.Entry{{
		Title:       "Paper",
		Memo:        "**summary**",
		BinaryFiles: []project.BinaryFile{{FileType: project.BinaryPNG, FileName: "fig.png", Contents: img.Bytes()}},
	}}
	data, err := project.Encode(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, ct := multipartBody(t, "file", "paper.yml", data)
	rec := do(t, s, http.MethodPost, "/api/projects", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}
	accepted := decodeBody(t, rec)
	snap := waitForJob(t, s, accepted["poll_url"].(string))
	if snap["status"] != string(pipeline.StatusCompleted) {
		t.Fatalf("expected completed, got %v", snap)
	}
	if snap["project_id"] != p.ID {
		t.Errorf("expected project id %q, got %v", p.ID, snap["project_id"])
	}

	rec = do(t, s, http.MethodGet, "/api/projects/"+p.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got := decodeBody(t, rec)
	atts := got["attachments"].([]any)
	if len(atts) != 1 || atts[0].(map[string]any)["name"] != "0_fig.png" {
		t.Errorf("unexpected attachments: %v", atts)
	}

	rec = do(t, s, http.MethodGet, "/api/projects/"+p.ID+"/documents", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"type":"strong"`) {
		t.Errorf("expected parsed memo in documents, got %s", rec.Body)
	}

	rec = do(t, s, http.MethodGet, "/api/projects/"+p.ID+"/attachments/0_fig.png", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), img.Bytes()) {
		t.Error("attachment bytes differ from upload")
	}

	rec = do(t, s, http.MethodDelete, "/api/projects/"+p.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/projects/"+p.ID, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestUpload_Errors(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/projects", strings.NewReader("x"), "text/plain")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without multipart, got %d", rec.Code)
	}

	body, ct := multipartBody(t, "other", "p.yml", []byte("x"))
	rec = do(t, s, http.MethodPost, "/api/projects", body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without file field, got %d", rec.Code)
	}

	body, ct = multipartBody(t, "file", "bad.yml", []byte("id: x\nformat_version: 9.0.0\n"))
	rec = do(t, s, http.MethodPost, "/api/projects", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	snap := waitForJob(t, s, decodeBody(t, rec)["poll_url"].(string))
	if snap["status"] != string(pipeline.StatusFailed) {
		t.Errorf("expected failed job, got %v", snap)
	}
}

func TestBatchUpload(t *testing.T) {
	s := newTestServer(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i < 2; i++ {
		p := project.New()
		data, _ := project.Encode(p)
		fw, _ := mw.CreateFormFile("files", "p.yml")
		fw.Write(data)
	}
	mw.Close()

	rec := do(t, s, http.MethodPost, "/api/projects/batch", &buf, mw.FormDataContentType())
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	jobs := decodeBody(t, rec)["jobs"].([]any)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	for _, j := range jobs {
		waitForJob(t, s, j.(map[string]any)["poll_url"].(string))
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)
	id := project.NewID()
	paths := []string{
		"/api/projects/jobs/nope/status",
		"/api/projects/" + id,
		"/api/projects/" + id + "/documents",
		"/api/projects/" + id + "/attachments/a.png",
		"/api/projects/..%2f..%2fetc",
	}
	for _, p := range paths {
		rec := do(t, s, http.MethodGet, p, nil, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", p, rec.Code)
		}
	}
	rec := do(t, s, http.MethodDelete, "/api/projects/"+id, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete: expected 404, got %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/stats", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	stats := decodeBody(t, rec)
	if stats["max_nesting_depth"] != float64(16) {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"p.yml", "p.yml"},
		{"../../etc/passwd", "passwd"},
		{"a..b.yml", "a_b.yml"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
