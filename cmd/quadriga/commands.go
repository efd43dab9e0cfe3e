package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"quadriga-client/quadriga"
)

var tickerCommand = &cli.Command{
	Name:  "ticker",
	Usage: "show trading information for a book",
	Flags: []cli.Flag{bookFlag, decodeFlag},
	Action: func(c *cli.Context) error {
		return withRuntime(c, func(rt *runtime) error {
			body, err := rt.public.Ticker(c.Context, rt.book(c))
			if err != nil {
				return err
			}
			return printBody(c, body, func(b []byte) (any, error) { return quadriga.DecodeTicker(b) })
		})
	},
}

var orderBookCommand = &cli.Command{
	Name:  "orderbook",
	Usage: "show bids and asks",
	Flags: []cli.Flag{
		bookFlag,
		decodeFlag,
		&cli.BoolFlag{Name: "group", Usage: "group orders with the same price"},
	},
	Action: func(c *cli.Context) error {
		return withRuntime(c, func(rt *runtime) error {
			var group quadriga.Optional[bool]
			if c.IsSet("group") {
				group = quadriga.Some(c.Bool("group"))
			}
			body, err := rt.public.OrderBook(c.Context, rt.book(c), group)
			if err != nil {
				return err
			}
			return printBody(c, body, func(b []byte) (any, error) { return quadriga.DecodeOrderBook(b) })
		})
	},
}

var tradesCommand = &cli.Command{
	Name:  "trades",
	Usage: "show recent public trades",
	Flags: []cli.Flag{
		bookFlag,
		decodeFlag,
		&cli.StringFlag{Name: "time", Usage: "timeframe: minute or hour"},
	},
	Action: func(c *cli.Context) error {
		return withRuntime(c, func(rt *runtime) error {
			var tf quadriga.Optional[quadriga.Timeframe]
			if raw := c.String("time"); raw != "" {
				parsed, err := quadriga.ParseTimeframe(raw)
				if err != nil {
					return err
				}
				tf = quadriga.Some(parsed)
			}
			body, err := rt.public.Transactions(c.Context, rt.book(c), tf)
			if err != nil {
				return err
			}
			return printBody(c, body, func(b []byte) (any, error) { return quadriga.DecodeTransactions(b) })
		})
	},
}

var balanceCommand = &cli.Command{
	Name:  "balance",
	Usage: "show account balances",
	Flags: []cli.Flag{decodeFlag},
	Action: func(c *cli.Context) error {
		return withPrivate(c, func(rt *runtime, p *quadriga.PrivateClient) error {
			body, err := p.Balance(c.Context)
			if err != nil {
				return err
			}
			return printBody(c, body, func(b []byte) (any, error) { return quadriga.DecodeBalance(b) })
		})
	},
}

var userTransactionsCommand = &cli.Command{
	Name:  "transactions",
	Usage: "list account transactions",
	Flags: []cli.Flag{
		bookFlag,
		&cli.IntFlag{Name: "offset", Usage: "skip this many transactions"},
		&cli.IntFlag{Name: "limit", Usage: "return at most this many transactions"},
		&cli.StringFlag{Name: "sort", Usage: "asc or desc"},
	},
	Action: func(c *cli.Context) error {
		return withPrivate(c, func(rt *runtime, p *quadriga.PrivateClient) error {
			req := quadriga.UserTransactionsRequest{Book: rt.book(c)}
			if c.IsSet("offset") {
				req.Offset = quadriga.Some(c.Int("offset"))
			}
			if c.IsSet("limit") {
				req.Limit = quadriga.Some(c.Int("limit"))
			}
			if c.IsSet("sort") {
				req.Sort = quadriga.Some(quadriga.SortOrder(c.String("sort")))
			}
			body, err := p.UserTransactions(c.Context, req)
			if err != nil {
				return err
			}
			return printBody(c, body, nil)
		})
	},
}

var openOrdersCommand = &cli.Command{
	Name:  "open-orders",
	Usage: "list open orders",
	Flags: []cli.Flag{bookFlag, decodeFlag},
	Action: func(c *cli.Context) error {
		return withPrivate(c, func(rt *runtime, p *quadriga.PrivateClient) error {
			body, err := p.OpenOrders(c.Context, rt.book(c))
			if err != nil {
				return err
			}
			return printBody(c, body, func(b []byte) (any, error) { return quadriga.DecodeOrders(b) })
		})
	},
}

var lookupCommand = &cli.Command{
	Name:      "lookup",
	Usage:     "show one or more orders",
	ArgsUsage: "ORDER_ID [ORDER_ID...]",
	Flags:     []cli.Flag{decodeFlag},
	Action: func(c *cli.Context) error {
		return withPrivate(c, func(rt *runtime, p *quadriga.PrivateClient) error {
			ids := c.Args().Slice()
			var (
				body []byte
				err  error
			)
			switch len(ids) {
			case 0:
				return errors.New("order id required")
			case 1:
				body, err = p.LookupOrder(c.Context, ids[0])
			default:
				body, err = p.LookupOrders(c.Context, ids)
			}
			if err != nil {
				return err
			}
			return printBody(c, body, func(b []byte) (any, error) { return quadriga.DecodeOrders(b) })
		})
	},
}

var cancelCommand = &cli.Command{
	Name:      "cancel",
	Usage:     "cancel an order",
	ArgsUsage: "ORDER_ID",
	Action: func(c *cli.Context) error {
		return withPrivate(c, func(rt *runtime, p *quadriga.PrivateClient) error {
			body, err := p.CancelOrder(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			return printBody(c, body, nil)
		})
	},
}

var orderCommand = &cli.Command{
	Name:  "order",
	Usage: "place a limit order, or a market order when --price is omitted",
	Flags: []cli.Flag{
		bookFlag,
		yesFlag,
		&cli.StringFlag{Name: "side", Required: true, Usage: "buy or sell"},
		&cli.StringFlag{Name: "amount", Required: true, Usage: "order `amount`"},
		&cli.StringFlag{Name: "price", Usage: "limit `price`"},
	},
	Action: func(c *cli.Context) error {
		side, err := quadriga.ParseDirection(c.String("side"))
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", c.String("amount"))
		if err != nil {
			return err
		}
		var price decimal.Decimal
		if c.IsSet("price") {
			if price, err = parseAmount("price", c.String("price")); err != nil {
				return err
			}
		}
		if !c.Bool(yesFlag.Name) {
			return errors.New("placing an order requires --yes")
		}
		return withPrivate(c, func(rt *runtime, p *quadriga.PrivateClient) error {
			var body []byte
			if c.IsSet("price") {
				body, err = p.LimitOrder(c.Context, side, amount, price, rt.book(c))
			} else {
				body, err = p.MarketOrder(c.Context, side, amount, rt.book(c))
			}
			if err != nil {
				return err
			}
			return printBody(c, body, nil)
		})
	},
}

var depositCommand = &cli.Command{
	Name:      "deposit-address",
	Usage:     "show the deposit address for a currency",
	ArgsUsage: "CURRENCY",
	Action: func(c *cli.Context) error {
		return withPrivate(c, func(rt *runtime, p *quadriga.PrivateClient) error {
			body, err := p.Deposit(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			return printBody(c, body, nil)
		})
	},
}

var withdrawCommand = &cli.Command{
	Name:      "withdraw",
	Usage:     "withdraw a currency to an address",
	ArgsUsage: "CURRENCY AMOUNT ADDRESS",
	Flags:     []cli.Flag{yesFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() != 3 {
			return errors.New("usage: withdraw CURRENCY AMOUNT ADDRESS")
		}
		currency, err := quadriga.ParseCurrency(c.Args().Get(0))
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", c.Args().Get(1))
		if err != nil {
			return err
		}
		if !c.Bool(yesFlag.Name) {
			return errors.New("withdrawing requires --yes")
		}
		return withPrivate(c, func(rt *runtime, p *quadriga.PrivateClient) error {
			body, err := p.Withdraw(c.Context, currency, amount, c.Args().Get(2))
			if err != nil {
				return err
			}
			return printBody(c, body, nil)
		})
	},
}

func withRuntime(c *cli.Context, fn func(rt *runtime) error) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()
	return fn(rt)
}

func withPrivate(c *cli.Context, fn func(rt *runtime, p *quadriga.PrivateClient) error) error {
	return withRuntime(c, func(rt *runtime) error {
		p, err := rt.requirePrivate()
		if err != nil {
			return err
		}
		return fn(rt, p)
	})
}

func parseAmount(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", quadriga.ErrInvalidInput, name, raw)
	}
	return d, nil
}

// printBody writes the raw body, or the typed decoding when --decode is set
// and a decoder exists.
func printBody(c *cli.Context, body []byte, decode func([]byte) (any, error)) error {
	return writeBody(c.App.Writer, body, c.Bool(decodeFlag.Name), decode)
}

func writeBody(w io.Writer, body []byte, decoded bool, decode func([]byte) (any, error)) error {
	if !decoded || decode == nil {
		_, err := fmt.Fprintln(w, string(body))
		return err
	}
	v, err := decode(body)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
