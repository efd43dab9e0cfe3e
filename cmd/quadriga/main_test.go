package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"quadriga-client/internal/config"
	"quadriga-client/quadriga"
)

func TestParseCheckFlag(t *testing.T) {
	got, err := parseCheckFlag("default")
	if err != nil || !got.public || !got.private {
		t.Fatalf("parseCheckFlag(default) = %+v, %v", got, err)
	}
	got, err = parseCheckFlag(" public ")
	if err != nil || !got.public || got.private {
		t.Fatalf("parseCheckFlag(public) = %+v, %v", got, err)
	}
	if _, err := parseCheckFlag("public,stream"); err == nil {
		t.Fatalf("parseCheckFlag(stream) error = nil")
	}
	if _, err := parseCheckFlag(","); err == nil {
		t.Fatalf("parseCheckFlag(,) error = nil")
	}
}

func TestWriteBodyRawAndDecoded(t *testing.T) {
	body := []byte(`{"last":"10.5"}`)
	var buf bytes.Buffer
	if err := writeBody(&buf, body, false, nil); err != nil {
		t.Fatalf("writeBody(raw) error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != string(body) {
		t.Fatalf("raw output = %q", buf.String())
	}

	buf.Reset()
	decode := func(b []byte) (any, error) { return quadriga.DecodeTicker(b) }
	if err := writeBody(&buf, body, true, decode); err != nil {
		t.Fatalf("writeBody(decoded) error = %v", err)
	}
	if !strings.Contains(buf.String(), `"Last": "10.5"`) {
		t.Fatalf("decoded output = %q", buf.String())
	}
}

func TestParseAmount(t *testing.T) {
	if _, err := parseAmount("amount", "abc"); !quadriga.IsInvalidInput(err) {
		t.Fatalf("parseAmount(abc) error = %v, want invalid input", err)
	}
	d, err := parseAmount("amount", "0.25")
	if err != nil || d.String() != "0.25" {
		t.Fatalf("parseAmount(0.25) = %s, %v", d, err)
	}
}

func TestRunChecksAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/ticker":
			_, _ = w.Write([]byte(`{"last":"100","bid":"99","ask":"101","timestamp":"1500000000"}`))
		case "/v2/order_book":
			_, _ = w.Write([]byte(`{"timestamp":"1500000000","bids":[["99","1"]],"asks":[]}`))
		case "/v2/transactions":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	opts := quadriga.Options{BaseURL: srv.URL + "/v2/"}
	rt := &runtime{
		cfg:    config.Config{Exchange: config.ExchangeConfig{BaseURL: opts.BaseURL}},
		log:    zap.NewNop(),
		public: quadriga.NewPublicClient(opts),
	}
	var out bytes.Buffer
	r := runChecks(context.Background(), &out, rt, "btc_cad", selectedChecks{public: true, private: true})

	want := map[string]checkStatus{
		"public_ticker":       statusPass,
		"public_order_book":   statusPass,
		"public_transactions": statusFail,
		"private_balance":     statusSkip,
		"private_open_orders": statusSkip,
	}
	if len(r.Checks) != len(want) {
		t.Fatalf("checks = %d, want %d", len(r.Checks), len(want))
	}
	for _, c := range r.Checks {
		if c.Status != want[c.Name] {
			t.Fatalf("%s status = %s, want %s (%s)", c.Name, c.Status, want[c.Name], c.Error)
		}
	}
	if r.failed() != 1 {
		t.Fatalf("failed() = %d, want 1", r.failed())
	}
	if !strings.Contains(out.String(), "[PASS] public_ticker") {
		t.Fatalf("output = %q", out.String())
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := writeReport(path, r); err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), `"status": "SKIP"`) {
		t.Fatalf("report = %s", data)
	}
}
