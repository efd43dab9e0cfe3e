package quadriga

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPTransportPostsJSON(t *testing.T) {
	var seenBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/balance" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Content-Type"); got != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if r.ContentLength != int64(len(body)) {
			t.Errorf("ContentLength = %d, want %d", r.ContentLength, len(body))
		}
		seenBody = string(body)
		_, _ = w.Write([]byte(`{"btc_balance":"1.5"}`))
	}))
	defer srv.Close()

	c, err := NewPrivateClient(Credentials{APIKey: "k", APISecret: "s", ClientID: 1}, Options{
		BaseURL: srv.URL + "/v2/",
		Nonce:   NonceFunc(func() int64 { return 1000000000 }),
	})
	if err != nil {
		t.Fatalf("NewPrivateClient() error = %v", err)
	}
	resp, err := c.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if string(resp) != `{"btc_balance":"1.5"}` {
		t.Fatalf("response = %s", resp)
	}
	want := `{"key":"k","nonce":1000000000,"signature":"8bfc09b72c83f25b39571c9d8ab50ad383a600c3130e5ffd3a918d6759211d99"}`
	if seenBody != want {
		t.Fatalf("body = %s, want %s", seenBody, want)
	}
}

func TestHTTPTransportNon2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPOptions{})
	_, err := tr.Send(context.Background(), http.MethodGet, srv.URL+"/ticker", nil, nil)
	te, ok := AsTransportError(err)
	if !ok {
		t.Fatalf("Send() error = %v, want *TransportError", err)
	}
	if te.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("StatusCode = %d, want 503", te.StatusCode)
	}
	if string(te.Body) != "maintenance" {
		t.Fatalf("Body = %q", te.Body)
	}
	if !strings.Contains(te.Error(), "http status 503") {
		t.Fatalf("Error() = %q", te.Error())
	}
}

func TestHTTPTransportConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tr := NewHTTPTransport(HTTPOptions{Timeout: time.Second})
	_, err := tr.Send(context.Background(), http.MethodGet, url, nil, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Send() error = %v, want ErrTransport", err)
	}
	te, _ := AsTransportError(err)
	if te.Err == nil || te.StatusCode != 0 {
		t.Fatalf("TransportError = %+v, want wrapped network error", te)
	}
}

func TestHTTPTransportRateLimitHonoursContext(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPOptions{RatePerSec: 0.001, Burst: 1})
	if _, err := tr.Send(context.Background(), http.MethodGet, srv.URL, nil, nil); err != nil {
		t.Fatalf("first Send() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := tr.Send(ctx, http.MethodGet, srv.URL, nil, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("second Send() error = %v, want ErrTransport", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("server calls = %d, want 1", got)
	}
}
