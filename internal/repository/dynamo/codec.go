package dynamo

import (
	"errors"
	"fmt"
	"strconv"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// ItemCodec converts between free-form items and DynamoDB attribute values.
// These are the two hooks the decimal adapter wraps; everything else the
// data layer does goes through untouched.
type ItemCodec interface {
	Serialize(item map[string]any) (map[string]ddbtypes.AttributeValue, error)
	Deserialize(item map[string]ddbtypes.AttributeValue) (map[string]any, error)
}

// ErrFloatUnsupported mirrors the store's native behavior: DynamoDB numbers
// are arbitrary-precision decimals and there is no binary float type.
var ErrFloatUnsupported = errors.New("float types are not supported, use decimal values instead")

// Codec is the native item codec. Numbers must arrive as decimal.Decimal
// and come back the same way; plain floats are rejected.
type Codec struct{}

func (c Codec) Serialize(item map[string]any) (map[string]ddbtypes.AttributeValue, error) {
	out := make(map[string]ddbtypes.AttributeValue, len(item))
	for k, v := range item {
		av, err := c.toAttribute(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = av
	}
	return out, nil
}

func (c Codec) Deserialize(item map[string]ddbtypes.AttributeValue) (map[string]any, error) {
	out := make(map[string]any, len(item))
	for k, av := range item {
		v, err := c.fromAttribute(av)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func (c Codec) toAttribute(v any) (ddbtypes.AttributeValue, error) {
	switch t := v.(type) {
	case nil:
		return &ddbtypes.AttributeValueMemberNULL{Value: true}, nil
	case string:
		return &ddbtypes.AttributeValueMemberS{Value: t}, nil
	case bool:
		return &ddbtypes.AttributeValueMemberBOOL{Value: t}, nil
	case int:
		return &ddbtypes.AttributeValueMemberN{Value: strconv.Itoa(t)}, nil
	case int64:
		return &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(t, 10)}, nil
	case decimal.Decimal:
		return &ddbtypes.AttributeValueMemberN{Value: t.String()}, nil
	case float32, float64:
		return nil, ErrFloatUnsupported
	case []byte:
		return &ddbtypes.AttributeValueMemberB{Value: t}, nil
	case map[string]any:
		m, err := c.Serialize(t)
		if err != nil {
			return nil, err
		}
		return &ddbtypes.AttributeValueMemberM{Value: m}, nil
	case []any:
		l := make([]ddbtypes.AttributeValue, len(t))
		for i, el := range t {
			av, err := c.toAttribute(el)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			l[i] = av
		}
		return &ddbtypes.AttributeValueMemberL{Value: l}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %T", v)
	}
}

func (c Codec) fromAttribute(av ddbtypes.AttributeValue) (any, error) {
	switch t := av.(type) {
	case *ddbtypes.AttributeValueMemberNULL:
		return nil, nil
	case *ddbtypes.AttributeValueMemberS:
		return t.Value, nil
	case *ddbtypes.AttributeValueMemberBOOL:
		return t.Value, nil
	case *ddbtypes.AttributeValueMemberN:
		d, err := decimal.NewFromString(t.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.Value, err)
		}
		return d, nil
	case *ddbtypes.AttributeValueMemberB:
		return t.Value, nil
	case *ddbtypes.AttributeValueMemberM:
		return c.Deserialize(t.Value)
	case *ddbtypes.AttributeValueMemberL:
		l := make([]any, len(t.Value))
		for i, el := range t.Value {
			v, err := c.fromAttribute(el)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			l[i] = v
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unsupported attribute value %T", av)
	}
}
