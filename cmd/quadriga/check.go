package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"quadriga-client/quadriga"
)

type checkStatus string

const (
	statusPass checkStatus = "PASS"
	statusFail checkStatus = "FAIL"
	statusSkip checkStatus = "SKIP"
)

type checkResult struct {
	Name       string      `json:"name"`
	Status     checkStatus `json:"status"`
	DurationMs int64       `json:"duration_ms"`
	Detail     string      `json:"detail,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type report struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	BaseURL    string        `json:"base_url"`
	Book       string        `json:"book,omitempty"`
	Checks     []checkResult `json:"checks"`
}

func (r report) failed() int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == statusFail {
			n++
		}
	}
	return n
}

type selectedChecks struct {
	public  bool
	private bool
}

var checkCommand = &cli.Command{
	Name:  "check",
	Usage: "run read-only round trips against the API and report pass/fail",
	Flags: []cli.Flag{
		bookFlag,
		&cli.StringFlag{Name: "check", Value: "default", Usage: "checks to run: default | public | private | comma list"},
		&cli.StringFlag{Name: "out-json", Usage: "optional report `path`"},
		&cli.DurationFlag{Name: "timeout", Value: 60 * time.Second, Usage: "total timeout"},
	},
	Action: func(c *cli.Context) error {
		checks, err := parseCheckFlag(c.String("check"))
		if err != nil {
			return err
		}
		return withRuntime(c, func(rt *runtime) error {
			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()
			r := runChecks(ctx, c.App.Writer, rt, rt.book(c), checks)
			if path := c.String("out-json"); path != "" {
				if err := writeReport(path, r); err != nil {
					return err
				}
			}
			if n := r.failed(); n > 0 {
				return cli.Exit(fmt.Sprintf("%d check(s) failed", n), 1)
			}
			return nil
		})
	},
}

func runChecks(ctx context.Context, w io.Writer, rt *runtime, book quadriga.Book, checks selectedChecks) report {
	r := report{
		StartedAt: time.Now().UTC(),
		BaseURL:   rt.cfg.Exchange.BaseURL,
		Book:      string(book),
	}
	run := func(name string, fn func() (string, error)) {
		start := time.Now()
		detail, err := fn()
		cr := checkResult{
			Name:       name,
			DurationMs: time.Since(start).Milliseconds(),
			Detail:     detail,
		}
		switch {
		case errors.Is(err, errSkipped):
			cr.Status = statusSkip
		case err != nil:
			cr.Status = statusFail
			cr.Error = err.Error()
		default:
			cr.Status = statusPass
		}
		r.Checks = append(r.Checks, cr)
		rt.log.Debug("check finished", zap.String("check", name), zap.String("status", string(cr.Status)))
		switch cr.Status {
		case statusPass:
			fmt.Fprintf(w, "[PASS] %s (%dms)", name, cr.DurationMs)
			if cr.Detail != "" {
				fmt.Fprintf(w, " - %s", cr.Detail)
			}
			fmt.Fprintln(w)
		case statusSkip:
			fmt.Fprintf(w, "[SKIP] %s - %s\n", name, cr.Detail)
		default:
			fmt.Fprintf(w, "[FAIL] %s (%dms) - %s\n", name, cr.DurationMs, cr.Error)
		}
	}

	if checks.public {
		run("public_ticker", func() (string, error) {
			body, err := rt.public.Ticker(ctx, book)
			if err != nil {
				return "", err
			}
			tk, err := quadriga.DecodeTicker(body)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("last=%s bid=%s ask=%s", tk.Last, tk.Bid, tk.Ask), nil
		})
		run("public_order_book", func() (string, error) {
			body, err := rt.public.OrderBook(ctx, book, quadriga.Some(true))
			if err != nil {
				return "", err
			}
			ob, err := quadriga.DecodeOrderBook(body)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("bids=%d asks=%d", len(ob.Bids), len(ob.Asks)), nil
		})
		run("public_transactions", func() (string, error) {
			body, err := rt.public.Transactions(ctx, book, quadriga.Some(quadriga.Hour))
			if err != nil {
				return "", err
			}
			trades, err := quadriga.DecodeTransactions(body)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("trades=%d", len(trades)), nil
		})
	}

	if checks.private {
		run("private_balance", func() (string, error) {
			if rt.private == nil {
				return "no credentials configured", errSkipped
			}
			body, err := rt.private.Balance(ctx)
			if err != nil {
				return "", err
			}
			bal, err := quadriga.DecodeBalance(body)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("entries=%d", len(bal)), nil
		})
		run("private_open_orders", func() (string, error) {
			if rt.private == nil {
				return "no credentials configured", errSkipped
			}
			body, err := rt.private.OpenOrders(ctx, book)
			if err != nil {
				return "", err
			}
			orders, err := quadriga.DecodeOrders(body)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("open=%d", len(orders)), nil
		})
	}

	r.FinishedAt = time.Now().UTC()
	return r
}

var errSkipped = errors.New("skipped")

func parseCheckFlag(raw string) (selectedChecks, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "default" || raw == "all" {
		return selectedChecks{public: true, private: true}, nil
	}
	var out selectedChecks
	for _, p := range strings.Split(raw, ",") {
		switch strings.TrimSpace(p) {
		case "":
		case "public":
			out.public = true
		case "private":
			out.private = true
		default:
			return selectedChecks{}, fmt.Errorf("unknown check %q", p)
		}
	}
	if !out.public && !out.private {
		return selectedChecks{}, fmt.Errorf("no checks selected")
	}
	return out, nil
}

func writeReport(path string, r report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
