package quadriga

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The decoders below are optional conveniences for callers. Clients return
// raw bodies and never decode them.

type Ticker struct {
	High      decimal.Decimal
	Low       decimal.Decimal
	Last      decimal.Decimal
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Volume    decimal.Decimal
	VWAP      decimal.Decimal
	Timestamp time.Time
}

type tickerResponse struct {
	High      string      `json:"high"`
	Low       string      `json:"low"`
	Last      string      `json:"last"`
	Bid       string      `json:"bid"`
	Ask       string      `json:"ask"`
	Volume    string      `json:"volume"`
	VWAP      string      `json:"vwap"`
	Timestamp json.Number `json:"timestamp"`
}

func DecodeTicker(body []byte) (Ticker, error) {
	if remote, ok := ParseRemoteError(body); ok {
		return Ticker{}, remote
	}
	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Ticker{}, err
	}
	p := &parser{}
	t := Ticker{
		High:      p.decimal("high", resp.High),
		Low:       p.decimal("low", resp.Low),
		Last:      p.decimal("last", resp.Last),
		Bid:       p.decimal("bid", resp.Bid),
		Ask:       p.decimal("ask", resp.Ask),
		Volume:    p.decimal("volume", resp.Volume),
		VWAP:      p.decimal("vwap", resp.VWAP),
		Timestamp: p.unix("timestamp", resp.Timestamp.String()),
	}
	return t, p.err
}

type PriceLevel struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

type OrderBook struct {
	Timestamp time.Time
	Bids      []PriceLevel
	Asks      []PriceLevel
}

type orderBookResponse struct {
	Timestamp json.Number `json:"timestamp"`
	Bids      [][]string  `json:"bids"`
	Asks      [][]string  `json:"asks"`
}

func DecodeOrderBook(body []byte) (OrderBook, error) {
	if remote, ok := ParseRemoteError(body); ok {
		return OrderBook{}, remote
	}
	var resp orderBookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return OrderBook{}, err
	}
	p := &parser{}
	ob := OrderBook{
		Timestamp: p.unix("timestamp", resp.Timestamp.String()),
		Bids:      p.levels("bids", resp.Bids),
		Asks:      p.levels("asks", resp.Asks),
	}
	return ob, p.err
}

type Trade struct {
	ID     int64
	Side   Direction
	Price  decimal.Decimal
	Amount decimal.Decimal
	Time   time.Time
}

type tradeResponse struct {
	Tid    json.Number `json:"tid"`
	Side   string      `json:"side"`
	Price  string      `json:"price"`
	Amount string      `json:"amount"`
	Date   json.Number `json:"date"`
}

func DecodeTransactions(body []byte) ([]Trade, error) {
	if remote, ok := ParseRemoteError(body); ok {
		return nil, remote
	}
	var resp []tradeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	p := &parser{}
	trades := make([]Trade, 0, len(resp))
	for _, tr := range resp {
		var id int64
		if tr.Tid != "" {
			v, err := tr.Tid.Int64()
			if err != nil {
				p.fail("tid", tr.Tid.String(), err)
			}
			id = v
		}
		trades = append(trades, Trade{
			ID:     id,
			Side:   Direction(strings.ToLower(tr.Side)),
			Price:  p.decimal("price", tr.Price),
			Amount: p.decimal("amount", tr.Amount),
			Time:   p.unix("date", tr.Date.String()),
		})
	}
	return trades, p.err
}

// Balance maps response keys such as "btc_available" to amounts. Non-numeric
// entries are skipped.
type Balance map[string]decimal.Decimal

func (b Balance) Available(c Currency) decimal.Decimal { return b[string(c)+"_available"] }
func (b Balance) Reserved(c Currency) decimal.Decimal  { return b[string(c)+"_reserved"] }
func (b Balance) Total(c Currency) decimal.Decimal     { return b[string(c)+"_balance"] }

func DecodeBalance(body []byte) (Balance, error) {
	if remote, ok := ParseRemoteError(body); ok {
		return nil, remote
	}
	var raw map[string]any
	if err := (JSONCodec{}).Decode(body, &raw); err != nil {
		return nil, err
	}
	bal := make(Balance, len(raw))
	for k, v := range raw {
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case json.Number:
			s = val.String()
		default:
			continue
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			continue
		}
		bal[k] = d
	}
	return bal, nil
}

type OrderStatus int

const (
	OrderCancelled OrderStatus = iota - 1
	OrderActive
	OrderPartiallyFilled
	OrderFilled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderActive:
		return "active"
	case OrderPartiallyFilled:
		return "partially_filled"
	case OrderFilled:
		return "filled"
	case OrderCancelled:
		return "cancelled"
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

type Order struct {
	ID      string
	Book    Book
	Side    Direction
	Price   decimal.Decimal
	Amount  decimal.Decimal
	Status  OrderStatus
	Created time.Time
}

type orderResponse struct {
	ID       string      `json:"id"`
	Book     string      `json:"book"`
	Type     json.Number `json:"type"`
	Price    string      `json:"price"`
	Amount   string      `json:"amount"`
	Status   json.Number `json:"status"`
	Created  string      `json:"created"`
	Datetime string      `json:"datetime"`
}

// DecodeOrders decodes open_orders and lookup_order responses. Order type 0
// is a buy, 1 a sell; any other type, or a missing or unknown status, is a
// decode error.
func DecodeOrders(body []byte) ([]Order, error) {
	if remote, ok := ParseRemoteError(body); ok {
		return nil, remote
	}
	var resp []orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	p := &parser{}
	orders := make([]Order, 0, len(resp))
	for _, o := range resp {
		created := o.Created
		if created == "" {
			created = o.Datetime
		}
		orders = append(orders, Order{
			ID:      o.ID,
			Book:    Book(o.Book),
			Side:    p.orderSide("type", o.Type.String()),
			Price:   p.decimal("price", o.Price),
			Amount:  p.decimal("amount", o.Amount),
			Status:  p.orderStatus("status", o.Status.String()),
			Created: p.datetime("created", created),
		})
	}
	return orders, p.err
}

// parser keeps the first conversion error so decoders read straight through.
type parser struct {
	err error
}

func (p *parser) decimal(name, v string) decimal.Decimal {
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(name, v, err)
		return decimal.Zero
	}
	return d
}

func (p *parser) unix(name, v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(name, v, err)
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func (p *parser) datetime(name, v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", v, time.UTC)
	if err != nil {
		p.fail(name, v, err)
		return time.Time{}
	}
	return t
}

func (p *parser) orderSide(name, v string) Direction {
	switch v {
	case "0":
		return Buy
	case "1":
		return Sell
	}
	p.fail(name, v, fmt.Errorf("want 0 (buy) or 1 (sell)"))
	return ""
}

func (p *parser) orderStatus(name, v string) OrderStatus {
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, v, err)
		return OrderActive
	}
	s := OrderStatus(n)
	switch s {
	case OrderCancelled, OrderActive, OrderPartiallyFilled, OrderFilled:
		return s
	}
	p.fail(name, v, fmt.Errorf("unknown order status"))
	return s
}

func (p *parser) levels(name string, rows [][]string) []PriceLevel {
	out := make([]PriceLevel, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			p.fail(name, fmt.Sprint(row), fmt.Errorf("want [price, amount]"))
			continue
		}
		out = append(out, PriceLevel{
			Price:  p.decimal(name+" price", row[0]),
			Amount: p.decimal(name+" amount", row[1]),
		})
	}
	return out
}

func (p *parser) fail(name, v string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("decode %s %q: %w", name, v, err)
	}
}
