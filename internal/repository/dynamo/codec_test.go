package dynamo

import (
	"testing"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RejectsFloats(t *testing.T) {
	_, err := Codec{}.Serialize(map[string]any{"temperature": 0.7})
	require.ErrorIs(t, err, ErrFloatUnsupported)

	_, err = Codec{}.Serialize(map[string]any{
		"metadata": map[string]any{"nested": []any{1.5}},
	})
	require.ErrorIs(t, err, ErrFloatUnsupported)
}

func TestCodec_ScalarMapping(t *testing.T) {
	item := map[string]any{
		"s":    "hello",
		"b":    true,
		"i":    42,
		"d":    decimal.RequireFromString("0.1"),
		"null": nil,
	}

	av, err := Codec{}.Serialize(item)
	require.NoError(t, err)

	assert.Equal(t, &ddbtypes.AttributeValueMemberS{Value: "hello"}, av["s"])
	assert.Equal(t, &ddbtypes.AttributeValueMemberBOOL{Value: true}, av["b"])
	assert.Equal(t, &ddbtypes.AttributeValueMemberN{Value: "42"}, av["i"])
	assert.Equal(t, &ddbtypes.AttributeValueMemberN{Value: "0.1"}, av["d"])
	assert.Equal(t, &ddbtypes.AttributeValueMemberNULL{Value: true}, av["null"])
}

func TestCodec_UnsupportedType(t *testing.T) {
	_, err := Codec{}.Serialize(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported attribute type")
}

func TestCodec_NumbersComeBackAsDecimals(t *testing.T) {
	av := map[string]ddbtypes.AttributeValue{
		"n": &ddbtypes.AttributeValueMemberN{Value: "0.30000000000000004"},
	}

	item, err := Codec{}.Deserialize(av)
	require.NoError(t, err)

	d, ok := item["n"].(decimal.Decimal)
	require.True(t, ok, "expected decimal.Decimal, got %T", item["n"])
	assert.Equal(t, "0.30000000000000004", d.String())
}
