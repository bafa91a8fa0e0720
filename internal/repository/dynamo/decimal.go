package dynamo

import (
	"errors"
	"strconv"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// maxConvertDepth bounds the conversion walk. Real items are a handful of
// levels deep; anything past this is treated as malformed input.
const maxConvertDepth = 32

// ErrItemTooDeep is returned when an item nests deeper than maxConvertDepth.
var ErrItemTooDeep = errors.New("item nesting exceeds maximum depth")

// DecimalCodec lets the application speak float64 to a store that only has
// arbitrary-precision decimals. It decorates any ItemCodec: on the way in
// every float becomes a decimal built from the float's shortest decimal
// rendering, on the way out every decimal becomes a float again. The wrapped
// codec handles everything else.
type DecimalCodec struct {
	inner ItemCodec
}

func NewDecimalCodec(inner ItemCodec) *DecimalCodec {
	return &DecimalCodec{inner: inner}
}

func (c *DecimalCodec) Serialize(item map[string]any) (map[string]ddbtypes.AttributeValue, error) {
	converted, err := floatsToDecimals(item, 0)
	if err != nil {
		return nil, err
	}
	return c.inner.Serialize(converted.(map[string]any))
}

func (c *DecimalCodec) Deserialize(item map[string]ddbtypes.AttributeValue) (map[string]any, error) {
	out, err := c.inner.Deserialize(item)
	if err != nil {
		return nil, err
	}
	converted, err := decimalsToFloats(out, 0)
	if err != nil {
		return nil, err
	}
	return converted.(map[string]any), nil
}

func floatsToDecimals(v any, depth int) (any, error) {
	if depth > maxConvertDepth {
		return nil, ErrItemTooDeep
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			conv, err := floatsToDecimals(el, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			conv, err := floatsToDecimals(el, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case float64:
		// Parse the float's shortest decimal text rather than converting
		// the binary value, so 0.1 stores as "0.1" and not as its exact
		// base-2 expansion.
		d, err := decimal.NewFromString(strconv.FormatFloat(t, 'f', -1, 64))
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return v, nil
	}
}

func decimalsToFloats(v any, depth int) (any, error) {
	if depth > maxConvertDepth {
		return nil, ErrItemTooDeep
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			conv, err := decimalsToFloats(el, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			conv, err := decimalsToFloats(el, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case decimal.Decimal:
		return t.InexactFloat64(), nil
	default:
		return v, nil
	}
}
