package quadriga

import (
	"context"
	"net/http"
)

// PublicClient reads market data. It holds no credentials.
type PublicClient struct {
	base
}

func NewPublicClient(opts Options) *PublicClient {
	return &PublicClient{base: newBase(opts)}
}

// Ticker always sends the book parameter, empty or not.
func (c *PublicClient) Ticker(ctx context.Context, book Book) ([]byte, error) {
	return c.get(ctx, "ticker", fields{"book": string(book)})
}

// OrderBook returns bids and asks. group merges orders at the same price.
func (c *PublicClient) OrderBook(ctx context.Context, book Book, group Optional[bool]) ([]byte, error) {
	params := fields{}
	params.putBook(book)
	putOptional(params, "group", group)
	return c.get(ctx, "order_book", params)
}

// Transactions returns recent trades within the given timeframe.
func (c *PublicClient) Transactions(ctx context.Context, book Book, timeframe Optional[Timeframe]) ([]byte, error) {
	params := fields{}
	params.putBook(book)
	if tf, ok := timeframe.Get(); ok {
		if err := tf.validate(); err != nil {
			return nil, err
		}
		params["time"] = string(tf)
	}
	return c.get(ctx, "transactions", params)
}

func (c *PublicClient) get(ctx context.Context, endpoint string, params fields) ([]byte, error) {
	urlStr := c.url(endpoint)
	if encoded := params.query(); encoded != "" {
		urlStr += "?" + encoded
	}
	return c.transport.Send(ctx, http.MethodGet, urlStr, nil, nil)
}
