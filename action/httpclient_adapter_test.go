package action

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mercurysync/graphrunner/httpclient"
)

// TestHTTPClient_ChunkedTransferDecoding exercises spec.md §8 scenario 3:
// a response sent with Transfer-Encoding: chunked decodes to the
// concatenation of its chunk payloads. Flushing between writes with no
// Content-Length set forces net/http's server to emit a real chunked
// response, so this drives the actual wire format rather than asserting
// against a mock.
func TestHTTPClient_ChunkedTransferDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "hello")
		flusher.Flush()
		io.WriteString(w, " world")
		flusher.Flush()
	}))
	defer srv.Close()

	client, err := NewHTTPClient(httpclient.Config{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	a := &Action{Name: "chunked", Protocol: ProtocolHTTP, Method: http.MethodGet, URL: srv.URL}
	prepared, err := client.Prepare(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := client.Dial(context.Background(), prepared)
	if err != nil {
		t.Fatal(err)
	}

	result, err := client.ExecutePrepared(context.Background(), prepared, conn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", result.Status)
	}
	if got := string(result.Body); got != "hello world" {
		t.Fatalf("expected body %q, got %q", "hello world", got)
	}
	if result.Headers.Get("Content-Length") != "" {
		t.Fatalf("expected no Content-Length on a chunked response, got %q", result.Headers.Get("Content-Length"))
	}
}
