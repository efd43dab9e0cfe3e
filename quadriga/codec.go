package quadriga

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Codec turns request payloads into wire bytes and response bytes back into
// values.
type Codec interface {
	Encode(payload map[string]any) ([]byte, error)
	Decode(data []byte, v any) error
}

// JSONCodec encodes payloads as JSON objects with sorted keys. Decode keeps
// numbers as json.Number so nonces and amounts survive a round trip exactly.
type JSONCodec struct{}

func (JSONCodec) Encode(payload map[string]any) ([]byte, error) {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = wireValue(v)
	}
	return json.Marshal(out)
}

func (JSONCodec) Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// wireValue writes decimals as bare JSON numbers, including inside slices and
// nested maps; the exchange expects numeric amounts rather than quoted strings.
func wireValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return json.Number(val.String())
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return json.Number(val.String())
	case []decimal.Decimal:
		out := make([]any, len(val))
		for i, d := range val {
			out[i] = json.Number(d.String())
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = wireValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = wireValue(e)
		}
		return out
	}
	return v
}
