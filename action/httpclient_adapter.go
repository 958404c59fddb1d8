package action

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mercurysync/graphrunner/httpclient"
)

// HTTPClient is the HTTP/1.1 and HTTP/2 reference ActionClient, adapted
// from httpclient.Client's request lifecycle. Transfer-Encoding: chunked
// responses are decoded by net/http's own chunked reader inside
// decodeBody, per the specification's exact chunk-parsing rule (a hex
// size line, that many bytes of data, a trailing CRLF, terminated by a
// zero-length chunk).
type HTTPClient struct {
	inner *httpclient.Client
}

// NewHTTPClient builds an HTTPClient over a configured httpclient.Client.
func NewHTTPClient(cfg httpclient.Config) (*HTTPClient, error) {
	c, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{inner: c}, nil
}

func (c *HTTPClient) Prepare(ctx context.Context, a *Action) (*Action, error) {
	prepared := a.Clone()
	if prepared.Method == "" {
		prepared.Method = http.MethodGet
	}
	return prepared, nil
}

// httpConn is a no-op Conn: the underlying *http.Client already pools
// its own transport connections, so the action pool here exists purely
// to enforce the admission/backpressure contract described in the
// specification.
type httpConn struct{}

func (httpConn) Reset(ctx context.Context) error { return nil }
func (httpConn) Close() error                     { return nil }

func (c *HTTPClient) Dial(ctx context.Context, a *Action) (Conn, error) {
	return httpConn{}, nil
}

func (c *HTTPClient) ExecutePrepared(ctx context.Context, a *Action, _ Conn) (*Result, error) {
	r := &Result{ActionName: a.Name}

	req, err := http.NewRequestWithContext(ctx, a.Method, a.URL, bytes.NewReader(a.Payload))
	if err != nil {
		return r, err
	}
	req.Header = a.Headers.Clone()

	connectEnd := time.Now()
	r.ConnectEnd = &connectEnd
	writeEnd := time.Now()
	r.WriteEnd = &writeEnd

	resp, err := c.inner.Unwrap().Do(req)
	if err != nil {
		readEnd := time.Now()
		r.ReadEnd = &readEnd
		return r, err
	}
	defer resp.Body.Close()

	r.Status = resp.StatusCode
	r.Headers = resp.Header

	body, err := decodeBody(resp)
	readEnd := time.Now()
	r.ReadEnd = &readEnd
	if err != nil {
		return r, err
	}
	r.Body = body
	return r, nil
}

func (c *HTTPClient) Close() error { return nil }

// decodeBody reads the response body honoring Transfer-Encoding: chunked
// (via http.Response's own chunked reader) and Content-Encoding
// gzip/deflate, per the specification's result-decoding rules.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		reader = flate.NewReader(reader)
	}

	return io.ReadAll(reader)
}
