package e2e

import (
    "encoding/json"
    "fmt"
    "net"
    "net/http"
    "net/http/httptest"
    "os"
    "os/exec"
    "path/filepath"
    "runtime"
    "strings"
    "sync/atomic"
    "testing"
    "time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
    t.Helper()
    ln, err := net.Listen("tcp", "127.0.0.1:0")
    if err != nil { t.Fatalf("listen: %v", err) }
    defer ln.Close()
    return ln.Addr().(*net.TCPAddr).Port
}

func projectRootFromThisFile(t *testing.T) string {
    t.Helper()
    _, thisFile, _, ok := runtime.Caller(0)
    if !ok { t.Fatal("runtime.Caller failed") }
    // this file: <root>/internal/e2e/blackbox_test.go
    return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func buildBinary(t *testing.T) string {
    t.Helper()
    if testing.Short() { t.Skip("builds the binary") }
    binPath := filepath.Join(t.TempDir(), "summaryd")
    cmd := exec.Command("go", "build", "-o", binPath, "./cmd/summaryd")
    cmd.Dir = projectRootFromThisFile(t)
    cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
    if out, err := cmd.CombinedOutput(); err != nil {
        t.Fatalf("go build failed: %v\n%s", err, string(out))
    }
    return binPath
}

// startServer runs the binary and waits for /health.
func startServer(t *testing.T, bin string, args ...string) string {
    t.Helper()
    port := findFreePort(t)
    base := fmt.Sprintf("http://127.0.0.1:%d", port)
    cmd := exec.Command(bin, append([]string{"serve", "--addr", fmt.Sprintf("127.0.0.1:%d", port), "--log-format", "console"}, args...)...)
    cmd.Stdout = os.Stdout
    cmd.Stderr = os.Stderr
    if err := cmd.Start(); err != nil { t.Fatalf("start server: %v", err) }
    t.Cleanup(func() { _ = cmd.Process.Kill(); _ = cmd.Wait() })

    deadline := time.Now().Add(10 * time.Second)
    for {
        resp, err := http.Get(base + "/health")
        if err == nil {
            _ = resp.Body.Close()
            if resp.StatusCode == http.StatusOK { break }
        }
        if time.Now().After(deadline) { t.Fatalf("server did not become healthy in time") }
        time.Sleep(50 * time.Millisecond)
    }
    return base
}

// fakeLlamaServer mimics the llama.cpp server endpoints used by the
// llama-server backend.
func fakeLlamaServer(t *testing.T, completions *atomic.Int64) *httptest.Server {
    t.Helper()
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        switch r.URL.Path {
        case "/v1/models":
            _, _ = w.Write([]byte(`{"data":[{"id":"bart"}]}`))
        case "/v1/completions":
            completions.Add(1)
            var req struct{ Prompt string `json:"prompt"`; Temperature float64 `json:"temperature"` }
            _ = json.NewDecoder(r.Body).Decode(&req)
            if req.Temperature != 0 || !strings.Contains(req.Prompt, "xxxx") {
                http.Error(w, "unexpected request", http.StatusBadRequest)
                return
            }
            _, _ = w.Write([]byte(`{"choices":[{"text":" Blackbox summary. ","finish_reason":"stop"}]}`))
        default:
            http.NotFound(w, r)
        }
    }))
    t.Cleanup(srv.Close)
    return srv
}

func TestBlackbox_LlamaServerFlow(t *testing.T) {
    bin := buildBinary(t)
    var completions atomic.Int64
    llama := fakeLlamaServer(t, &completions)
    base := startServer(t, bin, "--backend", "llama-server", "--server-url", llama.URL, "--model-name", "bart")

    resp, body := get(t, base+"/readyz")
    if resp.StatusCode != http.StatusServiceUnavailable { t.Fatalf("/readyz initial %d %s", resp.StatusCode, body) }
    if st := getStatus(t, base); st.State != "unloaded" || st.ModelName != "bart" { t.Fatalf("status=%+v", st) }

    resp, body = postJSON(t, base+"/api/v1/summarize", summarizeBody(article(400)))
    if resp.StatusCode != http.StatusOK { t.Fatalf("summarize %d %s", resp.StatusCode, body) }
    if !strings.Contains(string(body), `"summary":"Blackbox summary."`) { t.Fatalf("body=%s", body) }
    if completions.Load() != 1 { t.Fatalf("completions=%d", completions.Load()) }

    if st := getStatus(t, base); !st.IsReady || st.Status != "Loaded" { t.Fatalf("status=%+v", st) }
    resp, body = get(t, base+"/metrics")
    if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "summaryd_inference_total") {
        t.Fatalf("/metrics %d", resp.StatusCode)
    }
}

func TestBlackbox_LlamaStubReportsLoadFailure(t *testing.T) {
    bin := buildBinary(t)
    model := filepath.Join(t.TempDir(), "bart.gguf")
    if err := os.WriteFile(model, nil, 0o644); err != nil { t.Fatalf("write model: %v", err) }
    base := startServer(t, bin, "--backend", "llama", "--model-path", model, "--load-retry-interval-ms", "0")

    resp, body := postJSON(t, base+"/api/v1/summarize", summarizeBody(article(400)))
    if resp.StatusCode != http.StatusServiceUnavailable { t.Fatalf("summarize %d %s", resp.StatusCode, body) }
    st := getStatus(t, base)
    if st.State != "load_failed" || st.Status != "Load failed" || st.LastError == "" { t.Fatalf("status=%+v", st) }

    // Liveness is unaffected.
    resp, _ = get(t, base+"/health")
    if resp.StatusCode != http.StatusOK { t.Fatalf("/health %d", resp.StatusCode) }
}
