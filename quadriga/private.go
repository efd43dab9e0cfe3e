package quadriga

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const contentTypeJSON = "application/json; charset=utf-8"

// PrivateClient signs and dispatches account operations. Calls are not
// serialized; use MonotonicNonce when issuing more than one call per second.
type PrivateClient struct {
	base
	signer *Signer
}

func NewPrivateClient(creds Credentials, opts Options) (*PrivateClient, error) {
	signer, err := NewSigner(creds, opts.Nonce)
	if err != nil {
		return nil, err
	}
	return &PrivateClient{base: newBase(opts), signer: signer}, nil
}

func (c *PrivateClient) Balance(ctx context.Context) ([]byte, error) {
	return c.post(ctx, "balance", nil)
}

func (c *PrivateClient) UserTransactions(ctx context.Context, req UserTransactionsRequest) ([]byte, error) {
	params := fields{}
	if v, ok := req.Offset.Get(); ok && v < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	if v, ok := req.Limit.Get(); ok && v < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	putOptional(params, "offset", req.Offset)
	putOptional(params, "limit", req.Limit)
	if sort, ok := req.Sort.Get(); ok {
		if err := sort.validate(); err != nil {
			return nil, err
		}
		params["sort"] = string(sort)
	}
	params.putBook(req.Book)
	return c.post(ctx, "user_transactions", params)
}

func (c *PrivateClient) OpenOrders(ctx context.Context, book Book) ([]byte, error) {
	params := fields{}
	params.putBook(book)
	return c.post(ctx, "open_orders", params)
}

// LookupOrder sends id as a single value.
func (c *PrivateClient) LookupOrder(ctx context.Context, id string) ([]byte, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return c.post(ctx, "lookup_order", fields{"id": id})
}

// LookupOrders sends id as an ordered list.
func (c *PrivateClient) LookupOrders(ctx context.Context, ids []string) ([]byte, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one order id required", ErrInvalidInput)
	}
	list := make([]string, len(ids))
	for i, id := range ids {
		if err := requireID(id); err != nil {
			return nil, err
		}
		list[i] = id
	}
	return c.post(ctx, "lookup_order", fields{"id": list})
}

func (c *PrivateClient) CancelOrder(ctx context.Context, id string) ([]byte, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return c.post(ctx, "cancel_order", fields{"id": id})
}

func (c *PrivateClient) LimitOrder(ctx context.Context, direction Direction, amount, price decimal.Decimal, book Book) ([]byte, error) {
	if err := direction.validate(); err != nil {
		return nil, err
	}
	params := fields{}
	if err := params.putPositive("amount", amount); err != nil {
		return nil, err
	}
	if err := params.putPositive("price", price); err != nil {
		return nil, err
	}
	params.putBook(book)
	return c.post(ctx, direction.endpoint(), params)
}

func (c *PrivateClient) MarketOrder(ctx context.Context, direction Direction, amount decimal.Decimal, book Book) ([]byte, error) {
	if err := direction.validate(); err != nil {
		return nil, err
	}
	params := fields{}
	if err := params.putPositive("amount", amount); err != nil {
		return nil, err
	}
	params.putBook(book)
	return c.post(ctx, direction.endpoint(), params)
}

// DepositAddress returns the deposit address for currency.
func (c *PrivateClient) DepositAddress(ctx context.Context, currency Currency) ([]byte, error) {
	endpoint, err := currency.DepositEndpoint()
	if err != nil {
		return nil, err
	}
	return c.post(ctx, endpoint, nil)
}

// Deposit is DepositAddress for a raw currency code such as "btc".
func (c *PrivateClient) Deposit(ctx context.Context, code string) ([]byte, error) {
	currency, err := ParseCurrency(code)
	if err != nil {
		return nil, err
	}
	return c.DepositAddress(ctx, currency)
}

func (c *PrivateClient) Withdraw(ctx context.Context, currency Currency, amount decimal.Decimal, address string) ([]byte, error) {
	endpoint, err := currency.WithdrawalEndpoint()
	if err != nil {
		return nil, err
	}
	params := fields{}
	if err := params.putPositive("amount", amount); err != nil {
		return nil, err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: withdrawal address required", ErrInvalidInput)
	}
	params["address"] = address
	return c.post(ctx, endpoint, params)
}

// WithdrawCode is Withdraw for a raw currency code such as "btc".
func (c *PrivateClient) WithdrawCode(ctx context.Context, code string, amount decimal.Decimal, address string) ([]byte, error) {
	currency, err := ParseCurrency(code)
	if err != nil {
		return nil, err
	}
	return c.Withdraw(ctx, currency, amount, address)
}

func (c *PrivateClient) post(ctx context.Context, endpoint string, params fields) ([]byte, error) {
	body, err := c.codec.Encode(c.signer.Envelope(params))
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", endpoint, err)
	}
	header := http.Header{}
	header.Set("Content-Type", contentTypeJSON)
	header.Set("Content-Length", strconv.Itoa(len(body)))

	start := time.Now()
	resp, err := c.transport.Send(ctx, http.MethodPost, c.url(endpoint), header, body)
	if err != nil {
		c.log.Debug("private call failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}
	c.log.Debug("private call",
		zap.String("endpoint", endpoint),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: order id required", ErrInvalidInput)
	}
	return nil
}
