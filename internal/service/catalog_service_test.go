package service

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	bedrocktypes "github.com/aws/aws-sdk-go-v2/service/bedrock/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepModelID(t *testing.T) {
	tests := []struct {
		id   string
		keep bool
	}{
		{"anthropic.claude-v2", true},
		{"anthropic.claude-v2:1", true},
		{"amazon.titan-text-express-v1", true},
		{"anthropic.claude-3-haiku-20240307-v1:0", true},
		{"anthropic.claude-instant-v1-100k", false},
		{"anthropic.claude-v1-100K", false},
		{"cohere.command-text", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.keep, keepModelID(tt.id))
		})
	}
}

type fakeModelLister struct {
	ids []string
}

func (f *fakeModelLister) ListFoundationModels(_ context.Context, _ *bedrock.ListFoundationModelsInput, _ ...func(*bedrock.Options)) (*bedrock.ListFoundationModelsOutput, error) {
	out := &bedrock.ListFoundationModelsOutput{}
	for _, id := range f.ids {
		out.ModelSummaries = append(out.ModelSummaries, bedrocktypes.FoundationModelSummary{
			ModelId: aws.String(id),
		})
	}
	return out, nil
}

func TestModelCatalog_List(t *testing.T) {
	catalog := NewModelCatalog(&fakeModelLister{ids: []string{
		"anthropic.claude-v2",
		"anthropic.claude-instant-v1-100k",
		"amazon.titan-text-express-v1",
		"cohere.command-text",
	}})

	ids, err := catalog.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"anthropic.claude-v2",
		"amazon.titan-text-express-v1",
	}, ids)
}
