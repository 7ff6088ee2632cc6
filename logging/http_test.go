package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("docshare", INFO, &buf)

	var seen string
	handler := NewHTTPLogger(logger).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/documents/9", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Accept", "text/html")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	header := rr.Header().Get("X-Request-ID")
	if header == "" || header != seen {
		t.Fatalf("expected request id %q to reach handler, got %q", header, seen)
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != "WARN" || entry.Category != "http" || entry.RequestID != header {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Fields["status"] != float64(http.StatusNotFound) || entry.Fields["size"] != float64(len("missing")) {
		t.Fatalf("unexpected fields %+v", entry.Fields)
	}
	headers, _ := entry.Fields["request_headers"].(map[string]any)
	if _, ok := headers["Authorization"]; ok {
		t.Fatalf("expected authorization header to be dropped")
	}
	if headers["Accept"] != "text/html" {
		t.Fatalf("expected accept header to be logged, got %+v", headers)
	}
}
