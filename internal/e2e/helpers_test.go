package e2e

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "summaryd/internal/backend"
    "summaryd/internal/httpapi"
    "summaryd/internal/manager"
    "summaryd/internal/service"
)

// fakeModel is a loaded model whose behavior the test controls.
type fakeModel struct {
    mu    sync.Mutex
    calls int
    fail  error
    out   string
    seen  []backend.Params
}

func (m *fakeModel) Summarize(ctx context.Context, text string, p backend.Params) ([]backend.Generation, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.calls++
    m.seen = append(m.seen, p)
    if m.fail != nil {
        return nil, m.fail
    }
    if m.out == "" {
        return nil, nil
    }
    return []backend.Generation{{SummaryText: m.out}}, nil
}

func (m *fakeModel) Close() error { return nil }

func (m *fakeModel) set(out string, fail error) {
    m.mu.Lock()
    m.out, m.fail = out, fail
    m.mu.Unlock()
}

func (m *fakeModel) Calls() int {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.calls
}

// fakeLoader counts loads and can be told to fail or to block until released.
type fakeLoader struct {
    loads   atomic.Int64
    model   *fakeModel
    fail    atomic.Bool
    delay   time.Duration
}

func (l *fakeLoader) Load(ctx context.Context) (backend.Handle, error) {
    l.loads.Add(1)
    if l.delay > 0 {
        time.Sleep(l.delay)
    }
    if l.fail.Load() {
        return nil, errors.New("weights not found")
    }
    return l.model, nil
}

type stack struct {
    srv    *httptest.Server
    mgr    *manager.Manager
    loader *fakeLoader
    model  *fakeModel
}

// newStack wires the real manager, service and HTTP layer around a fake loader.
func newStack(t *testing.T, retry time.Duration) *stack {
    t.Helper()
    model := &fakeModel{out: "A short summary."}
    loader := &fakeLoader{model: model}
    return newStackWithLoader(t, loader, retry)
}

func newStackWithLoader(t *testing.T, loader *fakeLoader, retry time.Duration) *stack {
    t.Helper()
    mgr := manager.New(manager.Config{Name: "facebook/bart-large-cnn", Loader: loader, RetryInterval: retry})
    svc := service.New(mgr, service.Config{})
    srv := httptest.NewServer(httpapi.NewMux(svc))
    t.Cleanup(srv.Close)
    return &stack{srv: srv, mgr: mgr, loader: loader, model: loader.model}
}

func article(n int) string { return strings.Repeat("x", n) }

func summarizeBody(text string) []byte {
    b, _ := json.Marshal(map[string]any{"text": text})
    return b
}

func get(t *testing.T, url string) (*http.Response, []byte) {
    t.Helper()
    req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
    if err != nil { t.Fatalf("new req: %v", err) }
    resp, err := http.DefaultClient.Do(req)
    if err != nil { t.Fatalf("do: %v", err) }
    b, _ := io.ReadAll(resp.Body)
    _ = resp.Body.Close()
    return resp, b
}

func postJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
    t.Helper()
    req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
    if err != nil { t.Fatalf("new req: %v", err) }
    req.Header.Set("Content-Type", "application/json")
    resp, err := http.DefaultClient.Do(req)
    if err != nil { t.Fatalf("do: %v", err) }
    b, _ := io.ReadAll(resp.Body)
    _ = resp.Body.Close()
    return resp, b
}

type statusBody struct {
    ModelName    string `json:"model_name"`
    Status       string `json:"status"`
    IsReady      bool   `json:"is_ready"`
    State        string `json:"state"`
    LastError    string `json:"last_error"`
    LoadAttempts uint64 `json:"load_attempts"`
}

func getStatus(t *testing.T, base string) statusBody {
    t.Helper()
    resp, b := get(t, base+"/api/v1/status")
    if resp.StatusCode != http.StatusOK { t.Fatalf("/api/v1/status %d %s", resp.StatusCode, b) }
    var st statusBody
    if err := json.Unmarshal(b, &st); err != nil { t.Fatalf("status json: %v body=%s", err, b) }
    return st
}

func detail(t *testing.T, b []byte) string {
    t.Helper()
    var e struct{ Detail string `json:"detail"` }
    if err := json.Unmarshal(b, &e); err != nil { t.Fatalf("error json: %v body=%s", err, b) }
    return e.Detail
}

// postCode posts payload and returns the status code, or -1 on transport
// errors. Safe to call from goroutines other than the test's.
func postCode(url string, payload []byte) int {
    resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
    if err != nil {
        return -1
    }
    _, _ = io.Copy(io.Discard, resp.Body)
    _ = resp.Body.Close()
    return resp.StatusCode
}
