package httpapi

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelInfo,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"DEBUG": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("short query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
}

func TestSummarizeLogs(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	r := NewMux(&mockService{})
	postSummarize(t, r, `{"text":"`+longText(160)+`"}`)
	out := buf.String()
	if !strings.Contains(out, `"message":"summarize start"`) || !strings.Contains(out, `"message":"summarize end"`) {
		t.Fatalf("missing summarize logs: %q", out)
	}
	if !strings.Contains(out, `"request_id"`) || !strings.Contains(out, `"status":200`) {
		t.Fatalf("missing fields: %q", out)
	}

	buf.Reset()
	req := httptest.NewRequest("POST", "/api/v1/summarize?log=off", strings.NewReader(`{"text":"`+longText(160)+`"}`))
	r.ServeHTTP(httptest.NewRecorder(), req)
	if buf.Len() != 0 {
		t.Fatalf("expected no logs with log=off, got %q", buf.String())
	}
}
