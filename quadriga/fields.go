package quadriga

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// fields collects operation parameters. Unset optionals never make it in.
type fields map[string]any

func putOptional[T any](f fields, key string, o Optional[T]) {
	if v, ok := o.Get(); ok {
		f[key] = v
	}
}

func (f fields) putBook(book Book) {
	if book != "" {
		f["book"] = string(book)
	}
}

func (f fields) putPositive(key string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidInput, key, v.String())
	}
	f[key] = v
	return nil
}

// query renders the fields as a URL query. Keys come out sorted.
func (f fields) query() string {
	values := url.Values{}
	for k, v := range f {
		values.Set(k, queryValue(v))
	}
	return values.Encode()
}

func queryValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case decimal.Decimal:
		return val.String()
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}
