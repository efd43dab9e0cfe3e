package quadriga

import (
	"fmt"
	"strings"
)

const DefaultBaseURL = "https://api.quadrigacx.com/v2/"

// Book identifies a trading pair such as "btc_cad". The empty Book means the
// exchange default pair.
type Book string

type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// ParseDirection accepts exactly "buy" or "sell"; case and spacing are not
// folded.
func ParseDirection(v string) (Direction, error) {
	d := Direction(v)
	if err := d.validate(); err != nil {
		return "", err
	}
	return d, nil
}

func (d Direction) validate() error {
	switch d {
	case Buy, Sell:
		return nil
	}
	return fmt.Errorf("%w: direction %q must be buy or sell", ErrInvalidInput, string(d))
}

// endpoint is the order endpoint for the direction.
func (d Direction) endpoint() string { return string(d) }

type Currency string

const (
	BTC Currency = "btc"
	BCH Currency = "bch"
	BTG Currency = "btg"
	LTC Currency = "ltc"
	ETH Currency = "eth"
)

var currencyEndpointPrefix = map[Currency]string{
	BTC: "bitcoin",
	BCH: "bitcoincash",
	BTG: "bitcoingold",
	LTC: "litecoin",
	ETH: "ether",
}

// Currencies lists the currencies that support deposits and withdrawals.
func Currencies() []Currency {
	return []Currency{BTC, BCH, BTG, LTC, ETH}
}

// ParseCurrency matches code exactly against the supported set, so "BTC" and
// " btc" are rejected.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(code)
	if _, ok := currencyEndpointPrefix[c]; !ok {
		return "", fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, code)
	}
	return c, nil
}

func (c Currency) DepositEndpoint() (string, error) {
	prefix, ok := currencyEndpointPrefix[c]
	if !ok {
		return "", fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, string(c))
	}
	return prefix + "_deposit_address", nil
}

func (c Currency) WithdrawalEndpoint() (string, error) {
	prefix, ok := currencyEndpointPrefix[c]
	if !ok {
		return "", fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, string(c))
	}
	return prefix + "_withdrawal", nil
}

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

func (s SortOrder) validate() error {
	switch s {
	case Ascending, Descending:
		return nil
	}
	return fmt.Errorf("%w: sort %q must be asc or desc", ErrInvalidInput, string(s))
}

// Timeframe bounds the public transactions export.
type Timeframe string

const (
	Minute Timeframe = "minute"
	Hour   Timeframe = "hour"
)

func ParseTimeframe(v string) (Timeframe, error) {
	tf := Timeframe(v)
	if err := tf.validate(); err != nil {
		return "", err
	}
	return tf, nil
}

func (t Timeframe) validate() error {
	switch t {
	case Minute, Hour:
		return nil
	}
	return fmt.Errorf("%w: timeframe %q must be minute or hour", ErrInvalidInput, string(t))
}

// Optional holds a value that may be unset. The zero value is unset.
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Optional[T]) IsSet() bool { return o.set }

// Credentials authenticate private calls. The secret never leaves the signer.
type Credentials struct {
	APIKey    string
	APISecret string
	ClientID  int64
}

func (c Credentials) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: api key required", ErrInvalidInput)
	}
	if c.APISecret == "" {
		return fmt.Errorf("%w: api secret required", ErrInvalidInput)
	}
	if c.ClientID <= 0 {
		return fmt.Errorf("%w: client id must be positive", ErrInvalidInput)
	}
	return nil
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{APIKey:%s ClientID:%d APISecret:<redacted>}", c.APIKey, c.ClientID)
}

func (c Credentials) GoString() string { return c.String() }

// UserTransactionsRequest filters the user_transactions endpoint. Unset
// fields are left out of the payload.
type UserTransactionsRequest struct {
	Offset Optional[int]
	Limit  Optional[int]
	Sort   Optional[SortOrder]
	Book   Book
}
