package quadriga

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := JSONCodec{}
	payload := map[string]any{
		"key":       "abc",
		"nonce":     json.Number("1500000000"),
		"signature": "ff00",
		"amount":    json.Number("0.00012345"),
		"id":        []any{"a", "b", "c"},
		"book":      "btc_cad",
	}
	data, err := codec.Encode(payload)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, codec.Decode(data, &back))
	require.Equal(t, payload, back)
}

func TestJSONCodecWritesDecimalsAsNumbers(t *testing.T) {
	amount := decimal.RequireFromString("1.10")
	data, err := JSONCodec{}.Encode(map[string]any{
		"amount": amount,
		"price":  &amount,
		"nonce":  int64(7),
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"amount":1.1,"price":1.1,"nonce":7}`, string(data))
	require.NotContains(t, string(data), `"1.1"`)
}

func TestJSONCodecWritesNestedDecimalsAsNumbers(t *testing.T) {
	data, err := JSONCodec{}.Encode(map[string]any{
		"amounts": []decimal.Decimal{decimal.RequireFromString("0.5"), decimal.NewFromInt(2)},
		"mixed":   []any{"a", decimal.RequireFromString("1.25")},
		"order":   map[string]any{"price": decimal.RequireFromString("100.10")},
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"amounts":[0.5,2],"mixed":["a",1.25],"order":{"price":100.1}}`, string(data))
	require.NotContains(t, string(data), `"0.5"`)
}
